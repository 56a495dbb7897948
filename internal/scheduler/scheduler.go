// Package scheduler provides the single coordination thread that serializes
// duel state mutations, and the delayed callbacks that run on it.
package scheduler

import "time"

// Timer is a pending callback. Stop reports whether it prevented the run.
type Timer interface {
	Stop() bool
}

type Scheduler interface {
	After(d time.Duration, fn func()) Timer
	Now() time.Time
}

const (
	timerPending = iota
	timerFired
	timerStopped
)
