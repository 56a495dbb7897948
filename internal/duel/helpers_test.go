package duel

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"duel-arena/internal/config"
	"duel-arena/internal/ledger"
	"duel-arena/internal/scheduler"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type fakeWorld struct {
	mu      sync.Mutex
	names   map[string]string
	online  map[string]bool
	distant map[[2]string]bool
}

func newFakeWorld(ids ...string) *fakeWorld {
	w := &fakeWorld{names: map[string]string{}, online: map[string]bool{}, distant: map[[2]string]bool{}}
	for _, id := range ids {
		w.names[id] = strings.ToUpper(id[:1]) + id[1:]
		w.online[id] = true
	}
	return w
}

func (w *fakeWorld) Online(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online[id]
}

func (w *fakeWorld) Name(id string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.online[id] {
		return ""
	}
	return w.names[id]
}

func (w *fakeWorld) Lookup(name string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, n := range w.names {
		if strings.EqualFold(n, name) {
			return id, true
		}
	}
	return "", false
}

func (w *fakeWorld) CoLocated(a, b string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online[a] && w.online[b] && !w.distant[[2]string{a, b}] && !w.distant[[2]string{b, a}]
}

func (w *fakeWorld) setOnline(id string, online bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.online[id] = online
}

func (w *fakeWorld) setDistant(a, b string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.distant[[2]string{a, b}] = true
}

type recorder struct {
	mu  sync.Mutex
	got []Notification
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

func (r *recorder) keys(playerID string, ch Channel) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.got {
		if n.RecipientID == playerID && n.Channel == ch {
			out = append(out, n.TemplateKey)
		}
	}
	return out
}

func (r *recorder) has(playerID, key string) bool {
	for _, k := range r.keys(playerID, ChannelChat) {
		if k == key {
			return true
		}
	}
	return false
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = nil
}

type harness struct {
	c      *Coordinator
	clock  *scheduler.Manual
	ledger *ledger.Memory
	world  *fakeWorld
	notes  *recorder
	incs   *ledger.IncidentLog
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock:  scheduler.NewManual(epoch),
		ledger: ledger.NewMemory(),
		world:  newFakeWorld("alice", "bob", "carol", "dave"),
		notes:  &recorder{},
		incs:   ledger.NewIncidentLog(10),
	}
	for _, id := range []string{"alice", "bob", "carol", "dave"} {
		h.ledger.Set(id, 100)
	}
	h.c = NewCoordinator(config.DefaultDuel(), Deps{
		Ledger:    h.ledger,
		Proximity: h.world,
		Presence:  h.world,
		Scheduler: h.clock,
		Notifier:  h.notes,
		Incidents: h.incs,
	})
	return h
}

// startedDuel runs a challenge through accept and countdown.
func (h *harness) startedDuel(t *testing.T, sender, target string, bet int64) *Session {
	t.Helper()
	ctx := context.Background()
	if _, err := h.c.RequestDuel(ctx, sender, target, bet); err != nil {
		t.Fatalf("request: %v", err)
	}
	sess, err := h.c.AcceptDuel(ctx, target, sender)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	h.clock.Advance(h.c.Config().CountdownDuration())
	if !sess.IsStarted() {
		t.Fatalf("expected session started after countdown, state=%s", sess.State())
	}
	return sess
}

func (h *harness) balance(t *testing.T, id string) int64 {
	t.Helper()
	bal, err := h.ledger.Balance(context.Background(), id)
	if err != nil {
		t.Fatalf("balance %s: %v", id, err)
	}
	return bal
}
