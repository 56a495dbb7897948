package duel

import (
	"sync"
	"time"
)

// Request is a pending challenge. It is immutable; identity is the ID.
type Request struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	TargetID  string    `json:"target_id"`
	Bet       int64     `json:"bet"`
	CreatedAt time.Time `json:"created_at"`
}

func (r Request) Friendly() bool {
	return r.Bet <= 0
}

type State int

const (
	StateCountdown State = iota
	StateActive
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateCountdown:
		return "countdown"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Session is an accepted duel. Both participants' registry entries point at
// the same *Session; state changes go through promote and end only.
type Session struct {
	id        string
	player1   string
	player2   string
	bet       int64
	createdAt time.Time

	mu        sync.Mutex
	state     State
	startedAt time.Time
	endedAt   time.Time
}

func newSession(id, player1, player2 string, bet int64, now time.Time) *Session {
	return &Session{
		id:        id,
		player1:   player1,
		player2:   player2,
		bet:       bet,
		createdAt: now,
		state:     StateCountdown,
	}
}

func (s *Session) ID() string           { return s.id }
func (s *Session) Player1() string      { return s.player1 }
func (s *Session) Player2() string      { return s.player2 }
func (s *Session) Bet() int64           { return s.bet }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsActive is true until the session ends, countdown included.
func (s *Session) IsActive() bool {
	return s.State() != StateEnded
}

// IsStarted is true only after the countdown promoted the session.
func (s *Session) IsStarted() bool {
	return s.State() == StateActive
}

func (s *Session) Has(playerID string) bool {
	return playerID == s.player1 || playerID == s.player2
}

// Opponent returns "" when playerID is not a participant.
func (s *Session) Opponent(playerID string) string {
	switch playerID {
	case s.player1:
		return s.player2
	case s.player2:
		return s.player1
	default:
		return ""
	}
}

func (s *Session) promote(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCountdown {
		return false
	}
	s.state = StateActive
	s.startedAt = now
	return true
}

func (s *Session) end(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateEnded {
		return false
	}
	s.state = StateEnded
	s.endedAt = now
	return true
}

type SessionView struct {
	ID        string     `json:"id"`
	Player1ID string     `json:"player1_id"`
	Player2ID string     `json:"player2_id"`
	Bet       int64      `json:"bet"`
	State     string     `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := SessionView{
		ID:        s.id,
		Player1ID: s.player1,
		Player2ID: s.player2,
		Bet:       s.bet,
		State:     s.state.String(),
		CreatedAt: s.createdAt,
	}
	if !s.startedAt.IsZero() {
		t := s.startedAt
		v.StartedAt = &t
	}
	if !s.endedAt.IsZero() {
		t := s.endedAt
		v.EndedAt = &t
	}
	return v
}
