package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"duel-arena/internal/app/arena"
	"duel-arena/internal/store"
)

type AdminHandlers struct {
	svc  *arena.Service
	ping func(ctx context.Context) error
}

// NewAdminHandlers takes the store's Ping, or nil when there is no database.
func NewAdminHandlers(svc *arena.Service, ping func(ctx context.Context) error) *AdminHandlers {
	return &AdminHandlers{svc: svc, ping: ping}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.ping == nil {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "memory"})
			return
		}
		if err := h.ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

func (h *AdminHandlers) Duels() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, h.svc.Duels())
	}
}

func (h *AdminHandlers) TransferIncidents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		critical := r.URL.Query().Get("critical") == "true"
		writeJSON(w, http.StatusOK, map[string]any{"items": h.svc.Incidents(critical)})
	}
}

func (h *AdminHandlers) Reload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := h.svc.ReloadConfig(r.Context())
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "invalid_config", "detail": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "config": cfg})
	}
}

func (h *AdminHandlers) Topup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PlayerID string `json:"player_id"`
			Amount   int64  `json:"amount"`
		}
		if !decodeJSON(r, &body) {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		bal, err := h.svc.Topup(r.Context(), body.PlayerID, body.Amount)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "player_id": body.PlayerID, "balance": bal})
	}
}

func (h *AdminHandlers) Ledger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := pagination(r)
		f := store.LedgerFilter{PlayerID: r.URL.Query().Get("player_id"), RefID: r.URL.Query().Get("ref_id")}
		if v := r.URL.Query().Get("from"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				f.From = &t
			}
		}
		if v := r.URL.Query().Get("to"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				f.To = &t
			}
		}
		items, err := h.svc.LedgerEntries(r.Context(), f, limit, offset)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}
