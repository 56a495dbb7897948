package httptransport

import (
	"net/http"

	"duel-arena/internal/app/arena"
	"duel-arena/internal/notify"
	"duel-arena/internal/world"

	"github.com/go-chi/chi/v5"
)

type PlayerHandlers struct {
	svc *arena.Service
	hub *notify.Hub
}

func NewPlayerHandlers(svc *arena.Service, hub *notify.Hub) *PlayerHandlers {
	return &PlayerHandlers{svc: svc, hub: hub}
}

func (h *PlayerHandlers) Join() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in arena.JoinInput
		if !decodeJSON(r, &in) {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.Join(r.Context(), in)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *PlayerHandlers) Move() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pos world.Position
		if !decodeJSON(r, &pos) {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if err := h.svc.Move(r.Context(), chi.URLParam(r, "player_id"), pos); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func (h *PlayerHandlers) Leave() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Leave(r.Context(), chi.URLParam(r, "player_id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *PlayerHandlers) Duel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Status(chi.URLParam(r, "player_id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *PlayerHandlers) SameSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, b := chi.URLParam(r, "player_id"), chi.URLParam(r, "other_id")
		writeJSON(w, http.StatusOK, map[string]any{"player_id": a, "other_id": b, "same_session": h.svc.SameSession(a, b)})
	}
}

// Events streams the player's notifications over a websocket. Reconnecting
// clients pass last_event_id to resume.
func (h *PlayerHandlers) Events() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := chi.URLParam(r, "player_id")
		if playerID == "" {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		lastEventID := r.URL.Query().Get("last_event_id")
		if lastEventID == "" {
			lastEventID = r.Header.Get("Last-Event-ID")
		}
		metricEventStreamsTotal.Add(1)
		metricEventStreamsActive.Add(1)
		defer metricEventStreamsActive.Add(-1)
		h.hub.Serve(w, r, playerID, lastEventID)
	}
}
