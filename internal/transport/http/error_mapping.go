package httptransport

import (
	"errors"
	"net/http"

	"duel-arena/internal/app/arena"
	"duel-arena/internal/duel"
	"duel-arena/internal/ledger"
	"duel-arena/internal/scheduler"
)

// MapDuelError turns a service error into a status and a stable error code.
func MapDuelError(err error) (int, string) {
	switch {
	case errors.Is(err, arena.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, arena.ErrPlayerOffline):
		return http.StatusNotFound, "player_offline"
	case errors.Is(err, arena.ErrHistoryUnavailable):
		return http.StatusNotImplemented, "ledger_history_unavailable"
	case errors.Is(err, ledger.ErrAccountNotFound):
		return http.StatusNotFound, "account_not_found"
	case errors.Is(err, scheduler.ErrLoopClosed):
		return http.StatusServiceUnavailable, "shutting_down"
	}
	switch duel.KindOf(err) {
	case duel.KindValidation:
		return http.StatusBadRequest, err.Error()
	case duel.KindPrecondition:
		if errors.Is(err, duel.ErrPlayerNotFound) {
			return http.StatusNotFound, err.Error()
		}
		return http.StatusConflict, err.Error()
	case duel.KindTransfer, duel.KindCritical:
		return http.StatusBadGateway, "stake_transfer_failed"
	default:
		if errors.Is(err, duel.ErrLedgerUnavailable) {
			return http.StatusServiceUnavailable, "ledger_unavailable"
		}
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status, code := MapDuelError(err)
	writeError(w, status, code)
}
