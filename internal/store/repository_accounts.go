package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

func (s *Store) GetAccountBalance(ctx context.Context, playerID string) (int64, error) {
	var bal int64
	err := s.Pool.QueryRow(ctx, `SELECT balance FROM accounts WHERE player_id = $1`, playerID).Scan(&bal)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return bal, nil
}

// EnsureAccount creates the account with an initial balance. An existing
// account is left untouched.
func (s *Store) EnsureAccount(ctx context.Context, playerID string, initial int64) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO accounts (player_id, balance) VALUES ($1, $2) ON CONFLICT (player_id) DO NOTHING`,
		playerID, initial)
	return err
}

// Debit removes amount from the account and records a negative ledger entry.
// It refuses to take the balance below zero.
func (s *Store) Debit(ctx context.Context, playerID string, amount int64, entryType, refType, refID string) (int64, error) {
	return s.applyDelta(ctx, playerID, -amount, amount, false, entryType, refType, refID)
}

// DebitOverdraft is Debit without the non-negative balance check.
func (s *Store) DebitOverdraft(ctx context.Context, playerID string, amount int64, entryType, refType, refID string) (int64, error) {
	return s.applyDelta(ctx, playerID, -amount, amount, true, entryType, refType, refID)
}

func (s *Store) Credit(ctx context.Context, playerID string, amount int64, entryType, refType, refID string) (int64, error) {
	return s.applyDelta(ctx, playerID, amount, amount, false, entryType, refType, refID)
}

func (s *Store) applyDelta(ctx context.Context, playerID string, delta, amount int64, overdraft bool, entryType, refType, refID string) (int64, error) {
	if amount < 0 {
		return 0, ErrInvalidAmount
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var bal int64
	if err := tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE player_id = $1 FOR UPDATE`, playerID).Scan(&bal); err != nil {
		return 0, mapNotFound(err)
	}
	newBal := bal + delta
	if delta < 0 && newBal < 0 && !overdraft {
		return 0, ErrInsufficientBalance
	}
	if _, err := tx.Exec(ctx,
		`UPDATE accounts SET balance = $1, updated_at = now() WHERE player_id = $2`,
		newBal, playerID); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO ledger_entries (id, player_id, type, amount, ref_type, ref_id) VALUES ($1, $2, $3, $4, $5, $6)`,
		NewID(), playerID, entryType, delta, refType, refID); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newBal, nil
}

func (s *Store) ListAccounts(ctx context.Context, playerID string, limit, offset int) ([]Account, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT player_id, balance, updated_at
		FROM accounts
		WHERE ($1 = '' OR player_id = $1)
		ORDER BY player_id
		LIMIT $2 OFFSET $3`, playerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Account, 0, limit)
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.PlayerID, &a.Balance, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
