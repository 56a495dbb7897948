package duel

import (
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"duel-arena/internal/scheduler"
)

// countdownJob is what a countdown timer knows about its session. It is
// resolved against the registry each time a timer fires.
type countdownJob struct {
	sessionID string
	player1   string
	player2   string
}

// startCountdown schedules one tick per second, counting down from seconds
// to 1, and the promotion to Active at seconds. Ticks and promotion are
// no-ops once the session has ended or left the registry.
func (c *Coordinator) startCountdown(sess *Session, seconds int) {
	job := countdownJob{sessionID: sess.ID(), player1: sess.Player1(), player2: sess.Player2()}
	timers := make([]scheduler.Timer, 0, seconds+1)
	for i := seconds; i > 0; i-- {
		remaining := i
		delay := time.Duration(seconds-remaining) * time.Second
		timers = append(timers, c.sched.After(delay, func() { c.countdownTick(job, remaining) }))
	}
	timers = append(timers, c.sched.After(time.Duration(seconds)*time.Second, func() { c.countdownElapsed(job) }))

	c.timerMu.Lock()
	c.sessionTimers[job.sessionID] = timers
	c.timerMu.Unlock()
}

// live returns the job's session if both players still map to it and it
// has not ended.
func (c *Coordinator) live(job countdownJob) *Session {
	sess := c.sessions.Lookup(job.player1)
	if sess == nil || sess.ID() != job.sessionID || !sess.IsActive() {
		return nil
	}
	if !c.sessions.SameSession(job.player1, job.player2) {
		return nil
	}
	return sess
}

func (c *Coordinator) countdownTick(job countdownJob, remaining int) {
	if c.live(job) == nil {
		return
	}
	p := map[string]string{"seconds": strconv.Itoa(remaining)}
	for _, id := range []string{job.player1, job.player2} {
		c.chat(id, KeyDuelCountdown, p)
		c.title(id, TitleCountdown, p)
	}
}

func (c *Coordinator) countdownElapsed(job countdownJob) {
	c.timerMu.Lock()
	delete(c.sessionTimers, job.sessionID)
	c.timerMu.Unlock()
	sess := c.live(job)
	if sess == nil || !sess.promote(c.sched.Now()) {
		return
	}
	metricSessionsPromoted.Add(1)
	for _, id := range []string{job.player1, job.player2} {
		c.chat(id, KeyDuelStarted, nil)
		c.title(id, TitleStart, nil)
	}
	log.Info().Str("session_id", job.sessionID).Msg("duel started")
}
