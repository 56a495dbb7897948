package ledger

import (
	"context"
	"errors"
)

var (
	ErrAccountNotFound     = errors.New("account_not_found")
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrInvalidAmount       = errors.New("invalid_amount")
)

// Ledger holds per-player balances. Each call is a single atomic operation;
// callers never hold a lock across two calls.
type Ledger interface {
	Balance(ctx context.Context, playerID string) (int64, error)
	Withdraw(ctx context.Context, playerID string, amount int64, ref string) error
	Deposit(ctx context.Context, playerID string, amount int64, ref string) error
}

type Accounts interface {
	EnsureAccount(ctx context.Context, playerID string, initial int64) error
}

// Entry types written for duel stakes.
const (
	EntryStakeDebit  = "duel_stake_debit"
	EntryStakeCredit = "duel_stake_credit"
	EntryStakeRefund = "duel_stake_refund"
	EntryTopup       = "topup_credit"

	refTypeDuel = "duel"
)

type refKindKey struct{}

// WithEntryType labels the ledger entry written by the next Deposit made with
// the returned context. Stores without entry history ignore it.
func WithEntryType(ctx context.Context, entryType string) context.Context {
	return context.WithValue(ctx, refKindKey{}, entryType)
}

func entryTypeFrom(ctx context.Context, fallback string) string {
	if v, ok := ctx.Value(refKindKey{}).(string); ok && v != "" {
		return v
	}
	return fallback
}
