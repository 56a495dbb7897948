package arena

import (
	"context"
	"errors"
	"testing"
	"time"

	"duel-arena/internal/config"
	"duel-arena/internal/duel"
	"duel-arena/internal/ledger"
	"duel-arena/internal/notify"
	"duel-arena/internal/scheduler"
	"duel-arena/internal/store"
	"duel-arena/internal/world"
)

type inline struct{}

func (inline) Do(_ context.Context, fn func()) error {
	fn()
	return nil
}

type fixture struct {
	svc   *Service
	clock *scheduler.Manual
	hub   *notify.Hub
	mem   *ledger.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := scheduler.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	cfg := config.DefaultDuel()
	tracker := world.NewTracker(func() float64 { return cfg.ProximityRadius })
	hub := notify.NewHub(50, clock.Now)
	mem := ledger.NewMemory()
	incidents := ledger.NewIncidentLog(10)
	coord := duel.NewCoordinator(cfg, duel.Deps{
		Ledger:    mem,
		Proximity: tracker,
		Presence:  tracker,
		Scheduler: clock,
		Notifier:  hub,
		Incidents: incidents,
	})
	svc := NewService(Deps{
		Coordinator:     coord,
		Tracker:         tracker,
		Hub:             hub,
		Exec:            inline{},
		Ledger:          mem,
		Accounts:        mem,
		Incidents:       incidents,
		StartingBalance: 100,
		LoadDuelConfig: func() (config.DuelConfig, error) {
			c := config.DefaultDuel()
			c.CountdownSeconds = 5
			return c, nil
		},
	})
	return &fixture{svc: svc, clock: clock, hub: hub, mem: mem}
}

func (f *fixture) join(t *testing.T, id, name string, x float64) {
	t.Helper()
	if _, err := f.svc.Join(context.Background(), JoinInput{PlayerID: id, Name: name, Position: world.Position{World: "overworld", X: x}}); err != nil {
		t.Fatalf("join %s: %v", id, err)
	}
}

func TestServiceFullDuel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.join(t, "p1", "Alice", 0)
	f.join(t, "p2", "Bob", 3)

	req, err := f.svc.Challenge(ctx, ChallengeInput{SenderID: "p1", Target: "bob", Bet: "40"})
	if err != nil {
		t.Fatalf("challenge: %v", err)
	}
	if req.TargetID != "p2" || req.Bet != 40 {
		t.Fatalf("request: %+v", req)
	}
	view, err := f.svc.Accept(ctx, AcceptInput{TargetID: "p2", Sender: "alice"})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if view.State != "countdown" {
		t.Fatalf("state = %s", view.State)
	}
	f.clock.Advance(3 * time.Second)

	dmg, _ := f.svc.Damage(ctx, "p1", "p2")
	if dmg.Decision != duel.DamageAllow {
		t.Fatalf("damage decision = %s", dmg.Decision)
	}
	death, err := f.svc.Death(ctx, "p2", "p1")
	if err != nil {
		t.Fatalf("death: %v", err)
	}
	if death.Resolution == nil || !death.Resolution.Settled || death.Resolution.WinnerID != "p1" {
		t.Fatalf("resolution: %+v", death.Resolution)
	}
	if bal, _ := f.svc.Balance(ctx, "p1"); bal != 140 {
		t.Fatalf("winner balance = %d", bal)
	}
	events := f.hub.Buffer("p1").ReplayAfter("")
	if len(events) == 0 || events[len(events)-1].TemplateKey != duel.TitleWin {
		t.Fatalf("winner events: %+v", events)
	}
}

func TestServiceLeaveForfeits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.join(t, "p1", "Alice", 0)
	f.join(t, "p2", "Bob", 1)
	f.svc.Challenge(ctx, ChallengeInput{SenderID: "p1", Target: "Bob"})
	if _, err := f.svc.Accept(ctx, AcceptInput{TargetID: "p2", Sender: "Alice"}); err != nil {
		t.Fatalf("accept: %v", err)
	}

	out, err := f.svc.Leave(ctx, "p2")
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if out.Forfeit == nil || out.Forfeit.WinnerID != "p1" {
		t.Fatalf("forfeit: %+v", out)
	}
	st, _ := f.svc.Status("p1")
	if st.InDuel || st.Session != nil {
		t.Fatalf("status after forfeit: %+v", st)
	}
	if _, err := f.svc.Leave(ctx, "p2"); !errors.Is(err, ErrPlayerOffline) {
		t.Fatalf("second leave: %v", err)
	}
}

func TestServiceRejectsFarPlayers(t *testing.T) {
	f := newFixture(t)
	f.join(t, "p1", "Alice", 0)
	f.join(t, "p2", "Bob", 50)
	_, err := f.svc.Challenge(context.Background(), ChallengeInput{SenderID: "p1", Target: "Bob"})
	if !errors.Is(err, duel.ErrNotProximate) {
		t.Fatalf("expected proximity error, got %v", err)
	}
	if err := f.svc.Move(context.Background(), "p2", world.Position{World: "overworld", X: 2}); err != nil {
		t.Fatalf("move: %v", err)
	}
	if _, err := f.svc.Challenge(context.Background(), ChallengeInput{SenderID: "p1", Target: "Bob"}); err != nil {
		t.Fatalf("challenge after move: %v", err)
	}
}

func TestServiceTopupAndReload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bal, err := f.svc.Topup(ctx, "p9", 25)
	if err != nil {
		t.Fatalf("topup: %v", err)
	}
	if bal != 125 {
		t.Fatalf("balance = %d", bal)
	}
	if _, err := f.svc.Topup(ctx, "p9", 0); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("zero topup: %v", err)
	}
	cfg, err := f.svc.ReloadConfig(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.CountdownSeconds != 5 {
		t.Fatalf("reloaded countdown = %d", cfg.CountdownSeconds)
	}
	if _, err := f.svc.LedgerEntries(ctx, store.LedgerFilter{}, 10, 0); !errors.Is(err, ErrHistoryUnavailable) {
		t.Fatalf("history without store: %v", err)
	}
}
