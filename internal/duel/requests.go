package duel

import (
	"sync"
	"time"

	"duel-arena/internal/store"
)

// RequestRegistry stores pending requests once, by id, with two secondary
// indexes (by recipient and by sender) maintained under the same lock. A
// request is either in both indexes or in neither.
type RequestRegistry struct {
	now func() time.Time

	mu          sync.Mutex
	byID        map[string]Request
	byRecipient map[string][]string
	bySender    map[string][]string
}

func NewRequestRegistry(now func() time.Time) *RequestRegistry {
	if now == nil {
		now = time.Now
	}
	return &RequestRegistry{
		now:         now,
		byID:        map[string]Request{},
		byRecipient: map[string][]string{},
		bySender:    map[string][]string{},
	}
}

func (r *RequestRegistry) Create(senderID, targetID string, bet int64) (Request, error) {
	if bet < 0 {
		return Request{}, ErrInvalidAmount
	}
	req := Request{
		ID:        store.NewPrefixedID("req"),
		SenderID:  senderID,
		TargetID:  targetID,
		Bet:       bet,
		CreatedAt: r.now(),
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[req.ID] = req
	r.byRecipient[targetID] = append(r.byRecipient[targetID], req.ID)
	r.bySender[senderID] = append(r.bySender[senderID], req.ID)
	return req, nil
}

// Find scans the recipient's bucket for a request from senderID.
func (r *RequestRegistry) Find(recipientID, senderID string) (Request, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.byRecipient[recipientID] {
		if req := r.byID[id]; req.SenderID == senderID {
			return req, true
		}
	}
	return Request{}, false
}

func (r *RequestRegistry) Get(id string) (Request, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[id]
	return req, ok
}

// Remove reports whether this call removed the request. Removing an absent
// request is a no-op.
func (r *RequestRegistry) Remove(req Request) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(req.ID)
}

// RemoveAllFor removes every request the player sent or received. Each
// request is returned by exactly one remover, so a concurrent expiry either
// gets it first (and it is absent here) or loses.
func (r *RequestRegistry) RemoveAllFor(playerID string) (received, sent []Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range append([]string(nil), r.byRecipient[playerID]...) {
		if req, ok := r.byID[id]; ok && r.removeLocked(id) {
			received = append(received, req)
		}
	}
	for _, id := range append([]string(nil), r.bySender[playerID]...) {
		if req, ok := r.byID[id]; ok && r.removeLocked(id) {
			sent = append(sent, req)
		}
	}
	return received, sent
}

func (r *RequestRegistry) ReceivedBy(playerID string) []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collectLocked(r.byRecipient[playerID])
}

func (r *RequestRegistry) SentBy(playerID string) []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collectLocked(r.bySender[playerID])
}

func (r *RequestRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Clear drops everything and returns what was pending.
func (r *RequestRegistry) Clear() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Request, 0, len(r.byID))
	for _, req := range r.byID {
		out = append(out, req)
	}
	r.byID = map[string]Request{}
	r.byRecipient = map[string][]string{}
	r.bySender = map[string][]string{}
	return out
}

func (r *RequestRegistry) collectLocked(ids []string) []Request {
	out := make([]Request, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id])
	}
	return out
}

func (r *RequestRegistry) removeLocked(id string) bool {
	req, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)
	reindex(r.byRecipient, req.TargetID, id)
	reindex(r.bySender, req.SenderID, id)
	return true
}

// reindex rebuilds one bucket without id and drops the key once it is empty.
func reindex(index map[string][]string, key, id string) {
	old := index[key]
	kept := make([]string, 0, len(old))
	for _, v := range old {
		if v != id {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		delete(index, key)
		return
	}
	index[key] = kept
}
