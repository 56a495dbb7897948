package duel

import (
	"errors"

	"duel-arena/internal/ledger"
)

var (
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrBetOutOfRange = errors.New("bet_out_of_range")
	ErrSelfChallenge = errors.New("cannot_duel_self")

	ErrPlayerNotFound          = errors.New("player_not_found")
	ErrAlreadyInDuel           = errors.New("already_in_duel")
	ErrTargetInDuel            = errors.New("target_already_in_duel")
	ErrAlreadyInSession        = errors.New("already_in_session")
	ErrInsufficientFunds       = errors.New("not_enough_money")
	ErrTargetInsufficientFunds = errors.New("target_not_enough_money")
	ErrNotProximate            = errors.New("too_far_away")
	ErrRequestPending          = errors.New("request_already_pending")
	ErrNoPendingRequest        = errors.New("no_pending_request")

	ErrLedgerUnavailable = errors.New("ledger_unavailable")
)

type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindPrecondition
	KindTransfer
	KindCritical
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	case KindTransfer:
		return "transfer"
	case KindCritical:
		return "critical"
	default:
		return "internal"
	}
}

// KindOf classifies err. A lost session-start race (ErrAlreadyInSession)
// is a precondition failure like any other.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var te *ledger.TransferError
	if errors.As(err, &te) {
		if te.Critical {
			return KindCritical
		}
		return KindTransfer
	}
	switch {
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrBetOutOfRange),
		errors.Is(err, ErrSelfChallenge):
		return KindValidation
	case errors.Is(err, ErrPlayerNotFound),
		errors.Is(err, ErrAlreadyInDuel),
		errors.Is(err, ErrTargetInDuel),
		errors.Is(err, ErrAlreadyInSession),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrTargetInsufficientFunds),
		errors.Is(err, ErrNotProximate),
		errors.Is(err, ErrRequestPending),
		errors.Is(err, ErrNoPendingRequest):
		return KindPrecondition
	default:
		return KindInternal
	}
}
