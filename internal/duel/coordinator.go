package duel

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"

	"duel-arena/internal/config"
	"duel-arena/internal/ledger"
	"duel-arena/internal/scheduler"
)

type Deps struct {
	Ledger    ledger.Ledger
	Proximity Proximity
	Presence  Presence
	Scheduler scheduler.Scheduler
	Notifier  Notifier
	// Incidents is optional; failed stake transfers are recorded there.
	Incidents *ledger.IncidentLog
}

// Coordinator owns the duel lifecycle: challenge, accept, countdown, fight
// and resolution. Every timer callback re-checks session state before acting.
type Coordinator struct {
	ledger    ledger.Ledger
	proximity Proximity
	presence  Presence
	sched     scheduler.Scheduler
	notifier  Notifier
	incidents *ledger.IncidentLog

	requests *RequestRegistry
	sessions *SessionRegistry

	cfgMu sync.RWMutex
	cfg   config.DuelConfig

	timerMu       sync.Mutex
	requestTimers map[string]scheduler.Timer
	sessionTimers map[string][]scheduler.Timer
}

func NewCoordinator(cfg config.DuelConfig, deps Deps) *Coordinator {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NotifierFunc(func(Notification) {})
	}
	return &Coordinator{
		ledger:        deps.Ledger,
		proximity:     deps.Proximity,
		presence:      deps.Presence,
		sched:         deps.Scheduler,
		notifier:      notifier,
		incidents:     deps.Incidents,
		requests:      NewRequestRegistry(deps.Scheduler.Now),
		sessions:      NewSessionRegistry(),
		cfg:           cfg,
		requestTimers: map[string]scheduler.Timer{},
		sessionTimers: map[string][]scheduler.Timer{},
	}
}

func (c *Coordinator) Config() config.DuelConfig {
	c.cfgMu.RLock()
	defer c.cfgMu.RUnlock()
	return c.cfg
}

// SetConfig applies to operations started after the call. Running timers
// keep the durations they were scheduled with.
func (c *Coordinator) SetConfig(cfg config.DuelConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfgMu.Lock()
	c.cfg = cfg
	c.cfgMu.Unlock()
	log.Info().
		Int("countdown_seconds", cfg.CountdownSeconds).
		Int("request_timeout_seconds", cfg.RequestTimeoutSecs).
		Float64("proximity_radius", cfg.ProximityRadius).
		Int64("min_bet", cfg.MinBet).
		Int64("max_bet", cfg.MaxBet).
		Msg("duel config applied")
	return nil
}

// RequestDuel records a challenge from sender to target and schedules its
// expiry.
func (c *Coordinator) RequestDuel(ctx context.Context, senderID, targetID string, bet int64) (Request, error) {
	cfg := c.Config()
	if err := c.checkRequest(ctx, cfg, senderID, targetID, bet); err != nil {
		metricRequestsRejected.Add(1)
		log.Debug().Err(err).Str("sender_id", senderID).Str("target_id", targetID).Int64("bet", bet).Msg("duel request rejected")
		return Request{}, err
	}
	req, err := c.requests.Create(senderID, targetID, bet)
	if err != nil {
		return Request{}, err
	}
	timer := c.sched.After(cfg.RequestTimeout(), func() { c.expireRequest(req) })
	c.timerMu.Lock()
	c.requestTimers[req.ID] = timer
	c.timerMu.Unlock()
	metricRequestsTotal.Add(1)

	senderName, targetName := c.displayName(senderID), c.displayName(targetID)
	if req.Friendly() {
		c.chat(senderID, KeyRequestSent, map[string]string{"player": targetName})
		c.chat(targetID, KeyRequestReceived, map[string]string{"player": senderName})
	} else {
		amount := strconv.FormatInt(bet, 10)
		c.chat(senderID, KeyRequestSentWithBet, map[string]string{"player": targetName, "amount": amount})
		c.chat(targetID, KeyRequestReceivedWithBet, map[string]string{"player": senderName, "amount": amount})
	}
	log.Debug().
		Str("request_id", req.ID).
		Str("sender_id", senderID).
		Str("target_id", targetID).
		Int64("bet", bet).
		Msg("duel request created")
	return req, nil
}

func (c *Coordinator) checkRequest(ctx context.Context, cfg config.DuelConfig, senderID, targetID string, bet int64) error {
	if senderID == targetID {
		return ErrSelfChallenge
	}
	if bet < 0 {
		return ErrInvalidAmount
	}
	if !cfg.BetInRange(bet) {
		return ErrBetOutOfRange
	}
	if c.IsInDuel(senderID) {
		return ErrAlreadyInDuel
	}
	if c.IsInDuel(targetID) {
		return ErrTargetInDuel
	}
	if _, ok := c.requests.Find(targetID, senderID); ok {
		return ErrRequestPending
	}
	if err := c.checkFunds(ctx, cfg, senderID, bet, ErrInsufficientFunds); err != nil {
		return err
	}
	if err := c.checkFunds(ctx, cfg, targetID, bet, ErrTargetInsufficientFunds); err != nil {
		return err
	}
	if !c.proximity.CoLocated(senderID, targetID) {
		return ErrNotProximate
	}
	return nil
}

// checkFunds treats a missing account as an empty one.
func (c *Coordinator) checkFunds(ctx context.Context, cfg config.DuelConfig, playerID string, bet int64, short error) error {
	if bet <= 0 || cfg.AllowNegativeBalance {
		return nil
	}
	bal, err := c.ledger.Balance(ctx, playerID)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return short
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	if bal < bet {
		return short
	}
	return nil
}

func (c *Coordinator) expireRequest(req Request) {
	c.timerMu.Lock()
	delete(c.requestTimers, req.ID)
	c.timerMu.Unlock()
	if !c.requests.Remove(req) {
		return
	}
	metricRequestsExpired.Add(1)
	c.chat(req.SenderID, KeyRequestExpired, map[string]string{"player": c.displayName(req.TargetID)})
	log.Debug().Str("request_id", req.ID).Str("sender_id", req.SenderID).Str("target_id", req.TargetID).Msg("duel request expired")
}

// AcceptDuel turns the pending request from sender into a session and starts
// its countdown. The request is consumed even when the session start loses a
// race; it is not re-created.
func (c *Coordinator) AcceptDuel(ctx context.Context, targetID, senderID string) (*Session, error) {
	req, ok := c.requests.Find(targetID, senderID)
	if !ok {
		return nil, ErrNoPendingRequest
	}
	cfg := c.Config()
	if !c.proximity.CoLocated(senderID, targetID) {
		return nil, ErrNotProximate
	}
	if err := c.checkFunds(ctx, cfg, senderID, req.Bet, ErrTargetInsufficientFunds); err != nil {
		return nil, err
	}
	if err := c.checkFunds(ctx, cfg, targetID, req.Bet, ErrInsufficientFunds); err != nil {
		return nil, err
	}
	if !c.requests.Remove(req) {
		// Expired or purged between Find and Remove.
		return nil, ErrNoPendingRequest
	}
	c.stopRequestTimer(req.ID)

	sess, err := c.sessions.Start(senderID, targetID, req.Bet, c.sched.Now())
	if err != nil {
		log.Warn().Err(err).Str("request_id", req.ID).Msg("duel session start failed")
		return nil, err
	}
	metricSessionsStarted.Add(1)

	c.chat(targetID, KeyDuelAccepted, map[string]string{"player": c.displayName(senderID)})
	c.chat(senderID, KeyDuelTargetAccepted, map[string]string{"player": c.displayName(targetID)})
	c.purgeRequests(senderID, true)
	c.purgeRequests(targetID, true)
	c.startCountdown(sess, cfg.CountdownSeconds)

	log.Info().
		Str("session_id", sess.ID()).
		Str("player1_id", senderID).
		Str("player2_id", targetID).
		Int64("bet", req.Bet).
		Msg("duel accepted")
	return sess, nil
}

// Outcome describes a resolved session. TransferErr is set when the stake
// could not be moved; the session is ended regardless.
type Outcome struct {
	SessionID   string
	WinnerID    string
	LoserID     string
	Bet         int64
	TransferErr error
}

// Settled reports whether the stake (if any) reached the winner.
func (o Outcome) Settled() bool {
	return o.TransferErr == nil
}

// ResolveDuel ends the session containing winner or loser. The caller's
// roles are trusted only as far as the session allows: if winnerID is not a
// participant, the loser's opponent wins. Returns false when no live session
// matched or another caller already resolved it.
func (c *Coordinator) ResolveDuel(ctx context.Context, winnerID, loserID string) (Outcome, bool) {
	sess := c.sessions.Lookup(winnerID)
	if sess == nil || !sess.IsActive() {
		sess = c.sessions.Lookup(loserID)
	}
	if sess == nil || !sess.IsActive() {
		return Outcome{}, false
	}
	if sess.Has(winnerID) && winnerID != loserID {
		loserID = sess.Opponent(winnerID)
	} else {
		winnerID = sess.Opponent(loserID)
	}
	if !c.sessions.End(sess, c.sched.Now()) {
		return Outcome{}, false
	}
	c.sessions.RemoveParticipants(sess)
	c.stopSessionTimers(sess.ID())
	metricSessionsResolved.Add(1)

	out := Outcome{SessionID: sess.ID(), WinnerID: winnerID, LoserID: loserID, Bet: sess.Bet()}
	if out.Bet > 0 {
		if err := ledger.Transfer(ctx, c.ledger, loserID, winnerID, out.Bet, sess.ID()); err != nil {
			out.TransferErr = err
			var te *ledger.TransferError
			if errors.As(err, &te) && c.incidents != nil {
				c.incidents.Record(c.sched.Now(), te)
			}
		}
	}

	winnerName, loserName := c.displayName(winnerID), c.displayName(loserID)
	amount := strconv.FormatInt(out.Bet, 10)
	switch {
	case out.Bet > 0 && out.Settled():
		c.chat(winnerID, KeyDuelWonWithBet, map[string]string{"player": loserName, "amount": amount})
		c.chat(loserID, KeyDuelLostWithBet, map[string]string{"player": winnerName, "amount": amount})
	default:
		c.chat(winnerID, KeyDuelWon, map[string]string{"player": loserName})
		c.chat(loserID, KeyDuelLost, map[string]string{"player": winnerName})
	}
	c.title(winnerID, TitleWin, nil)
	c.title(loserID, TitleLose, nil)
	if !out.Settled() {
		c.chat(winnerID, KeyDuelStakeFailed, map[string]string{"amount": amount})
		c.chat(loserID, KeyDuelStakeFailed, map[string]string{"amount": amount})
	}

	ev := log.Info()
	if !out.Settled() {
		ev = log.Warn().Err(out.TransferErr)
	}
	ev.Str("session_id", out.SessionID).
		Str("winner_id", winnerID).
		Str("loser_id", loserID).
		Int64("bet", out.Bet).
		Bool("settled", out.Settled()).
		Msg("duel resolved")
	return out, true
}

type DisconnectOutcome struct {
	Forfeit  *Outcome
	Received []Request
	Sent     []Request
}

// HandleDisconnect forfeits the player's live session to the opponent and
// purges every request the player sent or received. Senders of purged
// received requests are not told; targets of purged sent requests are.
func (c *Coordinator) HandleDisconnect(ctx context.Context, playerID string) DisconnectOutcome {
	var res DisconnectOutcome
	if sess := c.sessions.Lookup(playerID); sess != nil && sess.IsActive() {
		opponent := sess.Opponent(playerID)
		if out, ok := c.ResolveDuel(ctx, opponent, playerID); ok {
			res.Forfeit = &out
			c.chat(opponent, KeyDuelPlayerLeft, map[string]string{"player": c.displayName(playerID)})
		}
	}
	res.Received, res.Sent = c.purgeRequests(playerID, false)
	if res.Forfeit != nil || len(res.Received) > 0 || len(res.Sent) > 0 {
		log.Info().
			Str("player_id", playerID).
			Bool("forfeit", res.Forfeit != nil).
			Int("received_purged", len(res.Received)).
			Int("sent_purged", len(res.Sent)).
			Msg("player disconnect handled")
	}
	return res
}

// purgeRequests removes everything the player sent or received. Targets of
// sent requests are notified; senders of received requests only when
// notifyReceived is set.
func (c *Coordinator) purgeRequests(playerID string, notifyReceived bool) (received, sent []Request) {
	received, sent = c.requests.RemoveAllFor(playerID)
	name := c.displayName(playerID)
	for _, req := range sent {
		c.stopRequestTimer(req.ID)
		c.chat(req.TargetID, KeyRequestCancelled, map[string]string{"player": name})
	}
	for _, req := range received {
		c.stopRequestTimer(req.ID)
		if notifyReceived {
			c.chat(req.SenderID, KeyRequestCancelled, map[string]string{"player": name})
		}
	}
	return received, sent
}

// Shutdown ends every session without moving stakes and drops all pending
// requests and timers.
func (c *Coordinator) Shutdown(ctx context.Context) {
	now := c.sched.Now()
	ended := 0
	for _, sess := range c.sessions.Clear() {
		if c.sessions.End(sess, now) {
			ended++
		}
	}
	pending := c.requests.Clear()

	c.timerMu.Lock()
	for id, t := range c.requestTimers {
		t.Stop()
		delete(c.requestTimers, id)
	}
	for id, ts := range c.sessionTimers {
		for _, t := range ts {
			t.Stop()
		}
		delete(c.sessionTimers, id)
	}
	c.timerMu.Unlock()

	metricSessionsAbandoned.Add(int64(ended))
	log.Info().Int("sessions_ended", ended).Int("requests_dropped", len(pending)).Msg("duel coordinator shut down")
}

// IsInDuel is true during countdown and fight.
func (c *Coordinator) IsInDuel(playerID string) bool {
	sess := c.sessions.Lookup(playerID)
	return sess != nil && sess.IsActive()
}

// IsDuelActive is true only once the countdown has elapsed.
func (c *Coordinator) IsDuelActive(playerID string) bool {
	sess := c.sessions.Lookup(playerID)
	return sess != nil && sess.IsStarted()
}

func (c *Coordinator) SameSession(aID, bID string) bool {
	if aID == bID {
		return false
	}
	return c.sessions.SameSession(aID, bID)
}

func (c *Coordinator) SessionOf(playerID string) (SessionView, bool) {
	sess := c.sessions.Lookup(playerID)
	if sess == nil || !sess.IsActive() {
		return SessionView{}, false
	}
	return sess.View(), true
}

func (c *Coordinator) Sessions() []SessionView {
	all := c.sessions.All()
	out := make([]SessionView, 0, len(all))
	for _, s := range all {
		if s.IsActive() {
			out = append(out, s.View())
		}
	}
	return out
}

func (c *Coordinator) PendingFor(playerID string) (received, sent []Request) {
	return c.requests.ReceivedBy(playerID), c.requests.SentBy(playerID)
}

func (c *Coordinator) PendingCount() int {
	return c.requests.Len()
}

func (c *Coordinator) stopRequestTimer(requestID string) {
	c.timerMu.Lock()
	t, ok := c.requestTimers[requestID]
	delete(c.requestTimers, requestID)
	c.timerMu.Unlock()
	if ok {
		t.Stop()
	}
}

func (c *Coordinator) stopSessionTimers(sessionID string) {
	c.timerMu.Lock()
	ts := c.sessionTimers[sessionID]
	delete(c.sessionTimers, sessionID)
	c.timerMu.Unlock()
	for _, t := range ts {
		t.Stop()
	}
}

func (c *Coordinator) displayName(playerID string) string {
	if c.presence == nil {
		return unknownPlayer
	}
	if name := c.presence.Name(playerID); name != "" {
		return name
	}
	return unknownPlayer
}

// chat and title drop messages for players who are not online.
func (c *Coordinator) chat(playerID, key string, placeholders map[string]string) {
	c.send(playerID, ChannelChat, key, placeholders)
}

func (c *Coordinator) title(playerID, key string, placeholders map[string]string) {
	c.send(playerID, ChannelTitle, key, placeholders)
}

func (c *Coordinator) send(playerID string, ch Channel, key string, placeholders map[string]string) {
	if c.presence != nil && !c.presence.Online(playerID) {
		return
	}
	c.notifier.Notify(Notification{RecipientID: playerID, Channel: ch, TemplateKey: key, Placeholders: placeholders})
}
