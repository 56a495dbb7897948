package ledger

import (
	"context"
	"errors"

	"duel-arena/internal/store"
)

// StoreLedger persists balances and entries in Postgres.
type StoreLedger struct {
	Store          *store.Store
	AllowOverdraft func() bool
}

func NewStoreLedger(s *store.Store, allowOverdraft func() bool) *StoreLedger {
	return &StoreLedger{Store: s, AllowOverdraft: allowOverdraft}
}

func (l *StoreLedger) Balance(ctx context.Context, playerID string) (int64, error) {
	bal, err := l.Store.GetAccountBalance(ctx, playerID)
	return bal, mapStoreErr(err)
}

func (l *StoreLedger) Withdraw(ctx context.Context, playerID string, amount int64, ref string) error {
	var err error
	if overdraft(l.AllowOverdraft) {
		_, err = l.Store.DebitOverdraft(ctx, playerID, amount, EntryStakeDebit, refTypeDuel, ref)
	} else {
		_, err = l.Store.Debit(ctx, playerID, amount, EntryStakeDebit, refTypeDuel, ref)
	}
	return mapStoreErr(err)
}

func (l *StoreLedger) Deposit(ctx context.Context, playerID string, amount int64, ref string) error {
	_, err := l.Store.Credit(ctx, playerID, amount, entryTypeFrom(ctx, EntryStakeCredit), refTypeDuel, ref)
	return mapStoreErr(err)
}

func (l *StoreLedger) EnsureAccount(ctx context.Context, playerID string, initial int64) error {
	return l.Store.EnsureAccount(ctx, playerID, initial)
}

func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrAccountNotFound
	case errors.Is(err, store.ErrInsufficientBalance):
		return ErrInsufficientBalance
	case errors.Is(err, store.ErrInvalidAmount):
		return ErrInvalidAmount
	default:
		return err
	}
}
