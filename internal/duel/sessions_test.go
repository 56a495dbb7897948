package duel

import (
	"errors"
	"sync"
	"testing"
)

func TestSessionRegistryStartAndLookup(t *testing.T) {
	r := NewSessionRegistry()
	s, err := r.Start("a", "b", 10, epoch)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if r.Lookup("a") != s || r.Lookup("b") != s {
		t.Fatalf("both participants should map to the session")
	}
	if !r.SameSession("a", "b") || r.SameSession("a", "c") {
		t.Fatalf("same session mismatch")
	}
	if s.Opponent("a") != "b" || s.Opponent("b") != "a" || s.Opponent("c") != "" {
		t.Fatalf("opponent mismatch")
	}
	if s.State() != StateCountdown || !s.IsActive() || s.IsStarted() {
		t.Fatalf("new session should be in countdown")
	}
}

func TestSessionRegistryOneSessionPerPlayer(t *testing.T) {
	r := NewSessionRegistry()
	if _, err := r.Start("a", "b", 0, epoch); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := r.Start("c", "b", 0, epoch); !errors.Is(err, ErrAlreadyInSession) {
		t.Fatalf("expected ErrAlreadyInSession, got %v", err)
	}
	if _, err := r.Start("a", "a", 0, epoch); !errors.Is(err, ErrSelfChallenge) {
		t.Fatalf("expected ErrSelfChallenge, got %v", err)
	}
}

func TestSessionRegistryConcurrentStartsOneWins(t *testing.T) {
	r := NewSessionRegistry()
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for _, other := range []string{"b", "c", "d", "e", "f"} {
		wg.Add(1)
		go func(other string) {
			defer wg.Done()
			if _, err := r.Start("a", other, 0, epoch); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(other)
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}

func TestSessionRegistryEndOnce(t *testing.T) {
	r := NewSessionRegistry()
	s, _ := r.Start("a", "b", 0, epoch)
	if !r.End(s, epoch) {
		t.Fatalf("first end should report true")
	}
	if r.End(s, epoch) {
		t.Fatalf("second end should report false")
	}
	if s.promote(epoch) {
		t.Fatalf("ended session must not be promoted")
	}
	r.RemoveParticipants(s)
	if r.Lookup("a") != nil || r.Lookup("b") != nil {
		t.Fatalf("participants not removed")
	}
}

func TestSessionRegistryRemoveLeavesNewerSession(t *testing.T) {
	r := NewSessionRegistry()
	old, _ := r.Start("a", "b", 0, epoch)
	r.End(old, epoch)
	newer, err := r.Start("a", "c", 0, epoch)
	if err != nil {
		t.Fatalf("start after end: %v", err)
	}
	r.RemoveParticipants(old)
	if r.Lookup("a") != newer {
		t.Fatalf("removing the old session dropped the newer mapping")
	}
	if r.Lookup("b") != nil {
		t.Fatalf("b should be removed")
	}
	if got := r.All(); len(got) != 1 || got[0] != newer {
		t.Fatalf("all: %v", got)
	}
}
