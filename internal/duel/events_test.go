package duel

import (
	"context"
	"errors"
	"testing"
)

func TestCombatDamagePolicy(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if got := h.c.OnCombatDamage("alice", "bob"); got != DamagePass {
		t.Fatalf("no duel: %s", got)
	}

	h.c.RequestDuel(ctx, "alice", "bob", 0)
	h.c.AcceptDuel(ctx, "bob", "alice")
	if got := h.c.OnCombatDamage("alice", "bob"); got != DamageDeny {
		t.Fatalf("countdown: %s", got)
	}
	h.clock.Advance(h.c.Config().CountdownDuration())

	if got := h.c.OnCombatDamage("alice", "bob"); got != DamageAllow {
		t.Fatalf("opponents: %s", got)
	}
	if got := h.c.OnCombatDamage("carol", "alice"); got != DamageDeny {
		t.Fatalf("outsider hitting duelist: %s", got)
	}
	if got := h.c.OnCombatDamage("bob", "carol"); got != DamageDeny {
		t.Fatalf("duelist hitting outsider: %s", got)
	}
}

func TestDeathByOpponentResolves(t *testing.T) {
	h := newHarness(t)
	h.startedDuel(t, "alice", "bob", 30)
	res := h.c.OnDeath(context.Background(), "bob", "alice")
	if !res.InDuel || !res.KeepInventory || res.Resolution == nil {
		t.Fatalf("death outcome: %+v", res)
	}
	if res.Resolution.WinnerID != "alice" || h.balance(t, "alice") != 130 {
		t.Fatalf("wrong resolution: %+v", res.Resolution)
	}
}

func TestEnvironmentDeathForfeits(t *testing.T) {
	h := newHarness(t)
	h.startedDuel(t, "alice", "bob", 0)
	res := h.c.OnDeath(context.Background(), "alice", "")
	if res.Resolution == nil || res.Resolution.WinnerID != "bob" {
		t.Fatalf("environment death should forfeit to bob: %+v", res)
	}
}

func TestDeathOutsideDuelIgnored(t *testing.T) {
	h := newHarness(t)
	if res := h.c.OnDeath(context.Background(), "alice", "bob"); res.InDuel || res.KeepInventory {
		t.Fatalf("unexpected duel death: %+v", res)
	}
}

func TestWorldInteractionBlockedOnlyWhileFighting(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.c.RequestDuel(ctx, "alice", "bob", 0)
	h.c.AcceptDuel(ctx, "bob", "alice")
	if !h.c.AllowWorldInteraction("alice") {
		t.Fatalf("countdown should not block interaction")
	}
	h.clock.Advance(h.c.Config().CountdownDuration())
	if h.c.AllowWorldInteraction("alice") {
		t.Fatalf("active duel should block interaction")
	}
	if !h.c.AllowWorldInteraction("carol") {
		t.Fatalf("bystander blocked")
	}
}

func TestChallengeAndAcceptCommands(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	req, err := h.c.OnChallengeCommand(ctx, "alice", "BOB", "25")
	if err != nil {
		t.Fatalf("challenge: %v", err)
	}
	if req.TargetID != "bob" || req.Bet != 25 {
		t.Fatalf("request: %+v", req)
	}
	if _, err := h.c.OnAcceptCommand(ctx, "bob", "nobody"); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("unknown sender: %v", err)
	}
	sess, err := h.c.OnAcceptCommand(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if sess.Bet() != 25 {
		t.Fatalf("bet = %d", sess.Bet())
	}
	if _, err := h.c.OnChallengeCommand(ctx, "alice", "carol", ""); !errors.Is(err, ErrAlreadyInDuel) {
		t.Fatalf("challenge while dueling: %v", err)
	}
}

func TestChallengeCommandValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.c.OnChallengeCommand(ctx, "alice", "ghost", ""); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("unknown target: %v", err)
	}
	h.world.setOnline("carol", false)
	if _, err := h.c.OnChallengeCommand(ctx, "alice", "carol", ""); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("offline target: %v", err)
	}
	if _, err := h.c.OnChallengeCommand(ctx, "alice", "bob", "abc"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("bad bet: %v", err)
	}
	if KindOf(ErrInvalidAmount) != KindValidation {
		t.Fatalf("kind mismatch")
	}
}

func TestParseBet(t *testing.T) {
	cases := map[string]struct {
		want int64
		ok   bool
	}{
		"":     {0, true},
		" 40 ": {40, true},
		"0":    {0, true},
		"-1":   {0, false},
		"1.5":  {0, false},
		"ten":  {0, false},
	}
	for in, tc := range cases {
		got, err := ParseBet(in)
		if (err == nil) != tc.ok || got != tc.want {
			t.Fatalf("ParseBet(%q) = %d, %v", in, got, err)
		}
	}
}
