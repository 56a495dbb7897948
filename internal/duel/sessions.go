package duel

import (
	"sort"
	"sync"
	"time"

	"duel-arena/internal/store"
)

// SessionRegistry maps each participant to their live session. A player is
// in at most one non-ended session.
type SessionRegistry struct {
	mu       sync.RWMutex
	byPlayer map[string]*Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{byPlayer: map[string]*Session{}}
}

// Start re-checks both players under the registry lock, so of two racing
// starts for the same player exactly one wins.
func (r *SessionRegistry) Start(aID, bID string, bet int64, now time.Time) (*Session, error) {
	if aID == bID {
		return nil, ErrSelfChallenge
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range []string{aID, bID} {
		if s := r.byPlayer[id]; s != nil && s.IsActive() {
			return nil, ErrAlreadyInSession
		}
	}
	s := newSession(store.NewPrefixedID("duel"), aID, bID, bet, now)
	r.byPlayer[aID] = s
	r.byPlayer[bID] = s
	return s, nil
}

// Lookup returns nil when the player has no session entry.
func (r *SessionRegistry) Lookup(playerID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byPlayer[playerID]
}

// SameSession compares identity, not field values.
func (r *SessionRegistry) SameSession(aID, bID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, b := r.byPlayer[aID], r.byPlayer[bID]
	return a != nil && a == b
}

// End reports whether this call performed the transition to Ended.
func (r *SessionRegistry) End(s *Session, now time.Time) bool {
	if s == nil {
		return false
	}
	return s.end(now)
}

// RemoveParticipants drops both entries in one critical section. Entries
// already pointing at a newer session are left alone.
func (r *SessionRegistry) RemoveParticipants(s *Session) {
	if s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range []string{s.player1, s.player2} {
		if r.byPlayer[id] == s {
			delete(r.byPlayer, id)
		}
	}
}

// All returns each registered session once, oldest first.
func (r *SessionRegistry) All() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return distinctSessions(r.byPlayer)
}

func (r *SessionRegistry) Clear() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := distinctSessions(r.byPlayer)
	r.byPlayer = map[string]*Session{}
	return out
}

func distinctSessions(byPlayer map[string]*Session) []*Session {
	seen := make(map[*Session]struct{}, len(byPlayer)/2+1)
	out := make([]*Session, 0, len(byPlayer)/2+1)
	for _, s := range byPlayer {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].createdAt.Equal(out[j].createdAt) {
			return out[i].id < out[j].id
		}
		return out[i].createdAt.Before(out[j].createdAt)
	})
	return out
}
