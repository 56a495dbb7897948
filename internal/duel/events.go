package duel

import (
	"context"
	"strconv"
	"strings"
)

// DamageDecision is the verdict for one PvP damage event.
type DamageDecision string

const (
	// DamagePass leaves the event to other rules.
	DamagePass DamageDecision = "pass"
	// DamageAllow forces the damage through, overriding region protection.
	DamageAllow DamageDecision = "allow"
	// DamageDeny cancels the damage.
	DamageDeny DamageDecision = "deny"
)

// OnCombatDamage decides PvP damage between two players. Opponents of a
// started duel always hit each other; nobody else can touch a dueling
// player, and dueling players cannot touch anyone else.
func (c *Coordinator) OnCombatDamage(attackerID, defenderID string) DamageDecision {
	if attackerID == "" || defenderID == "" || attackerID == defenderID {
		return DamagePass
	}
	if c.SameSession(attackerID, defenderID) {
		if c.IsDuelActive(defenderID) {
			return DamageAllow
		}
		return DamageDeny
	}
	if c.IsInDuel(attackerID) || c.IsInDuel(defenderID) {
		return DamageDeny
	}
	return DamagePass
}

type DeathOutcome struct {
	InDuel        bool
	KeepInventory bool
	Resolution    *Outcome
}

// OnDeath resolves the victim's duel. Dying to anything but the opponent is
// a forfeit to the opponent. Duel deaths keep inventory.
func (c *Coordinator) OnDeath(ctx context.Context, victimID, killerID string) DeathOutcome {
	sess := c.sessions.Lookup(victimID)
	if sess == nil || !sess.IsActive() {
		return DeathOutcome{}
	}
	winnerID := sess.Opponent(victimID)
	if killerID != "" && sess.Has(killerID) && killerID != victimID {
		winnerID = killerID
	}
	res := DeathOutcome{InDuel: true, KeepInventory: true}
	if out, ok := c.ResolveDuel(ctx, winnerID, victimID); ok {
		res.Resolution = &out
	}
	return res
}

func (c *Coordinator) OnDisconnect(ctx context.Context, playerID string) DisconnectOutcome {
	return c.HandleDisconnect(ctx, playerID)
}

// OnChallengeCommand is the /duel <player> [bet] entry point.
func (c *Coordinator) OnChallengeCommand(ctx context.Context, senderID, targetName, betArg string) (Request, error) {
	if c.IsInDuel(senderID) {
		return Request{}, ErrAlreadyInDuel
	}
	targetID, ok := c.lookup(targetName)
	if !ok {
		return Request{}, ErrPlayerNotFound
	}
	bet, err := ParseBet(betArg)
	if err != nil {
		return Request{}, err
	}
	return c.RequestDuel(ctx, senderID, targetID, bet)
}

// OnAcceptCommand is the /duel accept <player> entry point.
func (c *Coordinator) OnAcceptCommand(ctx context.Context, targetID, senderName string) (*Session, error) {
	if c.IsInDuel(targetID) {
		return nil, ErrAlreadyInDuel
	}
	senderID, ok := c.lookup(senderName)
	if !ok {
		return nil, ErrPlayerNotFound
	}
	if c.IsInDuel(senderID) {
		return nil, ErrTargetInDuel
	}
	return c.AcceptDuel(ctx, targetID, senderID)
}

// AllowWorldInteraction is false while the player is in a started duel.
func (c *Coordinator) AllowWorldInteraction(playerID string) bool {
	return !c.IsDuelActive(playerID)
}

func (c *Coordinator) lookup(name string) (string, bool) {
	if c.presence == nil {
		return "", false
	}
	id, ok := c.presence.Lookup(name)
	if !ok || !c.presence.Online(id) {
		return "", false
	}
	return id, true
}

// ParseBet reads a whole-unit wager. An empty argument is a friendly duel.
func ParseBet(arg string) (int64, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return 0, nil
	}
	bet, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || bet < 0 {
		return 0, ErrInvalidAmount
	}
	return bet, nil
}
