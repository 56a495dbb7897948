package httptransport

import (
	"net/http"

	"duel-arena/internal/app/arena"
)

type DuelHandlers struct {
	svc *arena.Service
}

func NewDuelHandlers(svc *arena.Service) *DuelHandlers {
	return &DuelHandlers{svc: svc}
}

func (h *DuelHandlers) Challenge() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricChallengeTotal.Add(1)
		var in arena.ChallengeInput
		if !decodeJSON(r, &in) {
			metricChallengeErrors.Add(1)
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		req, err := h.svc.Challenge(r.Context(), in)
		if err != nil {
			metricChallengeErrors.Add(1)
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, req)
	}
}

func (h *DuelHandlers) Accept() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricAcceptTotal.Add(1)
		var in arena.AcceptInput
		if !decodeJSON(r, &in) {
			metricAcceptErrors.Add(1)
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		sess, err := h.svc.Accept(r.Context(), in)
		if err != nil {
			metricAcceptErrors.Add(1)
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func (h *DuelHandlers) Damage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			AttackerID string `json:"attacker_id"`
			DefenderID string `json:"defender_id"`
		}
		if !decodeJSON(r, &body) {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.Damage(r.Context(), body.AttackerID, body.DefenderID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *DuelHandlers) Death() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			VictimID string `json:"victim_id"`
			KillerID string `json:"killer_id,omitempty"`
		}
		if !decodeJSON(r, &body) {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.Death(r.Context(), body.VictimID, body.KillerID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
