package ledger

import (
	"sync"
	"time"
)

type Incident struct {
	At       time.Time `json:"at"`
	Ref      string    `json:"ref"`
	From     string    `json:"from_id"`
	To       string    `json:"to_id"`
	Amount   int64     `json:"amount"`
	Stage    Stage     `json:"stage"`
	Refunded bool      `json:"refunded"`
	Critical bool      `json:"critical"`
	Cause    string    `json:"cause"`
}

// IncidentLog keeps the most recent failed transfers for operators.
type IncidentLog struct {
	mu    sync.Mutex
	max   int
	items []Incident
}

func NewIncidentLog(max int) *IncidentLog {
	if max <= 0 {
		max = 200
	}
	return &IncidentLog{max: max}
}

func (l *IncidentLog) Record(at time.Time, err *TransferError) {
	if err == nil {
		return
	}
	inc := Incident{
		At:       at,
		Ref:      err.Ref,
		From:     err.From,
		To:       err.To,
		Amount:   err.Amount,
		Stage:    err.Stage,
		Refunded: err.Refunded,
		Critical: err.Critical,
	}
	if err.Err != nil {
		inc.Cause = err.Err.Error()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, inc)
	if len(l.items) > l.max {
		l.items = l.items[len(l.items)-l.max:]
	}
}

// List returns incidents newest first; criticalOnly filters to unrecovered ones.
func (l *IncidentLog) List(criticalOnly bool) []Incident {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Incident, 0, len(l.items))
	for i := len(l.items) - 1; i >= 0; i-- {
		if criticalOnly && !l.items[i].Critical {
			continue
		}
		out = append(out, l.items[i])
	}
	return out
}
