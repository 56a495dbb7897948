package httptransport

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"duel-arena/internal/duel"
	"duel-arena/internal/ledger"
)

func TestMapDuelError(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantErr  string
	}{
		{duel.ErrSelfChallenge, http.StatusBadRequest, "cannot_duel_self"},
		{duel.ErrAlreadyInDuel, http.StatusConflict, "already_in_duel"},
		{duel.ErrNoPendingRequest, http.StatusConflict, "no_pending_request"},
		{duel.ErrPlayerNotFound, http.StatusNotFound, "player_not_found"},
		{fmt.Errorf("%w: db down", duel.ErrLedgerUnavailable), http.StatusServiceUnavailable, "ledger_unavailable"},
		{&ledger.TransferError{Stage: ledger.StageDeposit, Err: errors.New("x")}, http.StatusBadGateway, "stake_transfer_failed"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		code, msg := MapDuelError(tt.err)
		if code != tt.wantCode || msg != tt.wantErr {
			t.Fatalf("MapDuelError(%v) = %d %s, want %d %s", tt.err, code, msg, tt.wantCode, tt.wantErr)
		}
	}
}
