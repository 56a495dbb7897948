package arena

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"duel-arena/internal/config"
	"duel-arena/internal/duel"
	"duel-arena/internal/ledger"
	"duel-arena/internal/notify"
	"duel-arena/internal/store"
	"duel-arena/internal/world"
)

// Executor runs fn on the coordination goroutine and waits for it.
type Executor interface {
	Do(ctx context.Context, fn func()) error
}

type Deps struct {
	Coordinator *duel.Coordinator
	Tracker     *world.Tracker
	Hub         *notify.Hub
	Exec        Executor
	Ledger      ledger.Ledger
	Accounts    ledger.Accounts
	Incidents   *ledger.IncidentLog
	// Store is nil when running on the in-memory ledger.
	Store           *store.Store
	StartingBalance int64
	LoadDuelConfig  func() (config.DuelConfig, error)
}

// Service is the host-facing surface of the arena. Every state change goes
// through Exec so coordinator callbacks never interleave.
type Service struct {
	coord     *duel.Coordinator
	tracker   *world.Tracker
	hub       *notify.Hub
	exec      Executor
	ledger    ledger.Ledger
	accounts  ledger.Accounts
	incidents *ledger.IncidentLog
	store     *store.Store
	starting  int64
	loadDuel  func() (config.DuelConfig, error)
}

func NewService(d Deps) *Service {
	loadDuel := d.LoadDuelConfig
	if loadDuel == nil {
		loadDuel = config.LoadDuel
	}
	return &Service{
		coord:     d.Coordinator,
		tracker:   d.Tracker,
		hub:       d.Hub,
		exec:      d.Exec,
		ledger:    d.Ledger,
		accounts:  d.Accounts,
		incidents: d.Incidents,
		store:     d.Store,
		starting:  d.StartingBalance,
		loadDuel:  loadDuel,
	}
}

func (s *Service) Join(ctx context.Context, in JoinInput) (*PlayerView, error) {
	in.PlayerID = strings.TrimSpace(in.PlayerID)
	in.Name = strings.TrimSpace(in.Name)
	if in.PlayerID == "" || in.Name == "" {
		return nil, ErrInvalidRequest
	}
	if s.accounts != nil {
		if err := s.accounts.EnsureAccount(ctx, in.PlayerID, s.starting); err != nil {
			return nil, err
		}
	}
	if err := s.exec.Do(ctx, func() { s.tracker.Join(in.PlayerID, in.Name, in.Position) }); err != nil {
		return nil, err
	}
	bal, err := s.ledger.Balance(ctx, in.PlayerID)
	if err != nil {
		return nil, err
	}
	log.Info().Str("player_id", in.PlayerID).Str("name", in.Name).Msg("player joined")
	return &PlayerView{PlayerID: in.PlayerID, Name: in.Name, Position: in.Position, Balance: bal}, nil
}

func (s *Service) Move(ctx context.Context, playerID string, pos world.Position) error {
	var moved bool
	if err := s.exec.Do(ctx, func() { moved = s.tracker.Move(playerID, pos) }); err != nil {
		return err
	}
	if !moved {
		return ErrPlayerOffline
	}
	return nil
}

// Leave settles the player's duel and pending requests before the player
// disappears from presence, so names still resolve in notifications.
func (s *Service) Leave(ctx context.Context, playerID string) (*LeaveResponse, error) {
	if !s.tracker.Online(playerID) {
		return nil, ErrPlayerOffline
	}
	var out duel.DisconnectOutcome
	err := s.exec.Do(ctx, func() {
		out = s.coord.OnDisconnect(ctx, playerID)
		s.tracker.Leave(playerID)
	})
	if err != nil {
		return nil, err
	}
	s.hub.Drop(playerID)
	log.Info().Str("player_id", playerID).Msg("player left")
	return &LeaveResponse{
		PlayerID:         playerID,
		Forfeit:          resolutionOf(out.Forfeit),
		ReceivedCanceled: len(out.Received),
		SentCanceled:     len(out.Sent),
	}, nil
}

func (s *Service) Challenge(ctx context.Context, in ChallengeInput) (*duel.Request, error) {
	if in.SenderID == "" || strings.TrimSpace(in.Target) == "" {
		return nil, ErrInvalidRequest
	}
	if !s.tracker.Online(in.SenderID) {
		return nil, ErrPlayerOffline
	}
	var (
		req duel.Request
		err error
	)
	if doErr := s.exec.Do(ctx, func() {
		req, err = s.coord.OnChallengeCommand(ctx, in.SenderID, strings.TrimSpace(in.Target), in.Bet)
	}); doErr != nil {
		return nil, doErr
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Service) Accept(ctx context.Context, in AcceptInput) (*duel.SessionView, error) {
	if in.TargetID == "" || strings.TrimSpace(in.Sender) == "" {
		return nil, ErrInvalidRequest
	}
	if !s.tracker.Online(in.TargetID) {
		return nil, ErrPlayerOffline
	}
	var (
		view duel.SessionView
		err  error
	)
	if doErr := s.exec.Do(ctx, func() {
		var sess *duel.Session
		sess, err = s.coord.OnAcceptCommand(ctx, in.TargetID, strings.TrimSpace(in.Sender))
		if err == nil {
			view = sess.View()
		}
	}); doErr != nil {
		return nil, doErr
	}
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *Service) Damage(ctx context.Context, attackerID, defenderID string) (*DamageResponse, error) {
	if attackerID == "" || defenderID == "" {
		return nil, ErrInvalidRequest
	}
	var d duel.DamageDecision
	if err := s.exec.Do(ctx, func() { d = s.coord.OnCombatDamage(attackerID, defenderID) }); err != nil {
		return nil, err
	}
	return &DamageResponse{Decision: d}, nil
}

func (s *Service) Death(ctx context.Context, victimID, killerID string) (*DeathResponse, error) {
	if victimID == "" {
		return nil, ErrInvalidRequest
	}
	var out duel.DeathOutcome
	if err := s.exec.Do(ctx, func() { out = s.coord.OnDeath(ctx, victimID, killerID) }); err != nil {
		return nil, err
	}
	return &DeathResponse{InDuel: out.InDuel, KeepInventory: out.KeepInventory, Resolution: resolutionOf(out.Resolution)}, nil
}

func (s *Service) Status(playerID string) (*DuelStatus, error) {
	if playerID == "" {
		return nil, ErrInvalidRequest
	}
	received, sent := s.coord.PendingFor(playerID)
	st := &DuelStatus{
		PlayerID:              playerID,
		InDuel:                s.coord.IsInDuel(playerID),
		Active:                s.coord.IsDuelActive(playerID),
		AllowWorldInteraction: s.coord.AllowWorldInteraction(playerID),
		PendingReceived:       received,
		PendingSent:           sent,
	}
	if v, ok := s.coord.SessionOf(playerID); ok {
		st.Session = &v
	}
	return st, nil
}

func (s *Service) SameSession(aID, bID string) bool {
	return s.coord.SameSession(aID, bID)
}

func (s *Service) Duels() *DuelList {
	return &DuelList{Items: s.coord.Sessions(), PendingCount: s.coord.PendingCount()}
}

func (s *Service) Incidents(criticalOnly bool) []ledger.Incident {
	if s.incidents == nil {
		return []ledger.Incident{}
	}
	return s.incidents.List(criticalOnly)
}

// Topup credits an account outside any duel and returns the new balance.
func (s *Service) Topup(ctx context.Context, playerID string, amount int64) (int64, error) {
	if playerID == "" || amount <= 0 {
		return 0, ErrInvalidRequest
	}
	if s.accounts != nil {
		if err := s.accounts.EnsureAccount(ctx, playerID, s.starting); err != nil {
			return 0, err
		}
	}
	if err := s.ledger.Deposit(ledger.WithEntryType(ctx, ledger.EntryTopup), playerID, amount, "topup"); err != nil {
		return 0, err
	}
	return s.ledger.Balance(ctx, playerID)
}

func (s *Service) Balance(ctx context.Context, playerID string) (int64, error) {
	return s.ledger.Balance(ctx, playerID)
}

// ReloadConfig re-reads the duel settings from the environment and applies
// them. Invalid settings leave the running config untouched.
func (s *Service) ReloadConfig(ctx context.Context) (config.DuelConfig, error) {
	cfg, err := s.loadDuel()
	if err != nil {
		return config.DuelConfig{}, err
	}
	var applyErr error
	if err := s.exec.Do(ctx, func() { applyErr = s.coord.SetConfig(cfg) }); err != nil {
		return config.DuelConfig{}, err
	}
	if applyErr != nil {
		return config.DuelConfig{}, applyErr
	}
	return cfg, nil
}

func (s *Service) LedgerEntries(ctx context.Context, f store.LedgerFilter, limit, offset int) ([]store.LedgerEntry, error) {
	if s.store == nil {
		return nil, ErrHistoryUnavailable
	}
	return s.store.ListLedgerEntries(ctx, f, limit, offset)
}

// IsNotFound reports whether err means the player or account is unknown.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlayerOffline) ||
		errors.Is(err, duel.ErrPlayerNotFound) ||
		errors.Is(err, ledger.ErrAccountNotFound)
}
