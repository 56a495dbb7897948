package world

import (
	"math"
	"strings"
	"sync"
)

type Position struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
}

func (p Position) Distance(o Position) float64 {
	dx, dy, dz := p.X-o.X, p.Y-o.Y, p.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

type Player struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Position Position `json:"position"`
}

// Tracker is the host's view of who is online and where. It answers the
// proximity and name-directory questions the duel coordinator asks.
type Tracker struct {
	radius func() float64

	mu     sync.RWMutex
	byID   map[string]*Player
	byName map[string]string
}

// NewTracker reads the proximity radius through radius on every check so a
// config reload takes effect immediately.
func NewTracker(radius func() float64) *Tracker {
	return &Tracker{
		radius: radius,
		byID:   map[string]*Player{},
		byName: map[string]string{},
	}
}

func (t *Tracker) Join(id, name string, pos Position) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if old := t.byID[id]; old != nil {
		delete(t.byName, strings.ToLower(old.Name))
	}
	t.byID[id] = &Player{ID: id, Name: name, Position: pos}
	t.byName[strings.ToLower(name)] = id
}

func (t *Tracker) Move(id string, pos Position) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.byID[id]
	if p == nil {
		return false
	}
	p.Position = pos
	return true
}

func (t *Tracker) Leave(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.byID[id]
	if p == nil {
		return
	}
	delete(t.byID, id)
	if t.byName[strings.ToLower(p.Name)] == id {
		delete(t.byName, strings.ToLower(p.Name))
	}
}

func (t *Tracker) Online(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.byID[id]
	return ok
}

// Name returns the display name, or "" when the player is not online.
func (t *Tracker) Name(id string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if p := t.byID[id]; p != nil {
		return p.Name
	}
	return ""
}

// Lookup resolves an online player by name, ignoring case.
func (t *Tracker) Lookup(name string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byName[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

func (t *Tracker) Get(id string) (Player, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p := t.byID[id]
	if p == nil {
		return Player{}, false
	}
	return *p, true
}

// CoLocated is true when both players are online, in the same world and
// within the proximity radius of each other.
func (t *Tracker) CoLocated(a, b string) bool {
	t.mu.RLock()
	pa, pb := t.byID[a], t.byID[b]
	var pos1, pos2 Position
	if pa != nil && pb != nil {
		pos1, pos2 = pa.Position, pb.Position
	}
	t.mu.RUnlock()
	if pa == nil || pb == nil {
		return false
	}
	if pos1.World != pos2.World {
		return false
	}
	return pos1.Distance(pos2) <= t.radius()
}
