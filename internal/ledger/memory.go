package ledger

import (
	"context"
	"errors"
	"sync"
)

type Op string

const (
	OpBalance  Op = "balance"
	OpWithdraw Op = "withdraw"
	OpDeposit  Op = "deposit"
)

var ErrInjected = errors.New("injected_failure")

// Memory is a process-local ledger. It backs servers started without
// Postgres and lets tests force individual operations to fail.
type Memory struct {
	// AllowOverdraft is consulted on every withdraw; nil never overdraws.
	AllowOverdraft func() bool

	mu       sync.Mutex
	balances map[string]int64
	failures map[Op]map[string]int
}

func NewMemory() *Memory {
	return &Memory{
		balances: map[string]int64{},
		failures: map[Op]map[string]int{},
	}
}

func (m *Memory) Set(playerID string, balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[playerID] = balance
}

// FailNext makes the next n calls of op for playerID fail; n < 0 fails forever.
func (m *Memory) FailNext(op Op, playerID string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures[op] == nil {
		m.failures[op] = map[string]int{}
	}
	m.failures[op][playerID] = n
}

func (m *Memory) failLocked(op Op, playerID string) bool {
	left, ok := m.failures[op][playerID]
	if !ok || left == 0 {
		return false
	}
	if left > 0 {
		m.failures[op][playerID] = left - 1
	}
	return true
}

func (m *Memory) Balance(_ context.Context, playerID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLocked(OpBalance, playerID) {
		return 0, ErrInjected
	}
	bal, ok := m.balances[playerID]
	if !ok {
		return 0, ErrAccountNotFound
	}
	return bal, nil
}

func (m *Memory) Withdraw(_ context.Context, playerID string, amount int64, _ string) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLocked(OpWithdraw, playerID) {
		return ErrInjected
	}
	bal, ok := m.balances[playerID]
	if !ok {
		return ErrAccountNotFound
	}
	if bal < amount && !overdraft(m.AllowOverdraft) {
		return ErrInsufficientBalance
	}
	m.balances[playerID] = bal - amount
	return nil
}

func (m *Memory) Deposit(_ context.Context, playerID string, amount int64, _ string) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLocked(OpDeposit, playerID) {
		return ErrInjected
	}
	bal, ok := m.balances[playerID]
	if !ok {
		return ErrAccountNotFound
	}
	m.balances[playerID] = bal + amount
	return nil
}

func (m *Memory) EnsureAccount(_ context.Context, playerID string, initial int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.balances[playerID]; !ok {
		m.balances[playerID] = initial
	}
	return nil
}

func overdraft(allow func() bool) bool {
	return allow != nil && allow()
}
