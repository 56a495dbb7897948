package notify

import (
	"expvar"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"duel-arena/internal/duel"
)

var metricDelivered = expvar.NewInt("duel_notifications_total")

// Hub routes duel notifications into per-player buffers.
type Hub struct {
	max int
	now func() time.Time

	mu      sync.Mutex
	buffers map[string]*Buffer
}

func NewHub(perPlayer int, now func() time.Time) *Hub {
	if now == nil {
		now = time.Now
	}
	return &Hub{max: perPlayer, now: now, buffers: map[string]*Buffer{}}
}

func (h *Hub) Notify(n duel.Notification) {
	buf := h.Buffer(n.RecipientID)
	ev := buf.Append(string(n.Channel), n.TemplateKey, n.Placeholders, h.now())
	metricDelivered.Add(1)
	log.Debug().
		Str("player_id", n.RecipientID).
		Str("channel", ev.Channel).
		Str("template_key", ev.TemplateKey).
		Str("event_id", ev.EventID).
		Msg("notification queued")
}

// Buffer returns the player's buffer, creating it on first use.
func (h *Hub) Buffer(playerID string) *Buffer {
	h.mu.Lock()
	defer h.mu.Unlock()
	buf := h.buffers[playerID]
	if buf == nil {
		buf = NewBuffer(playerID, h.max)
		h.buffers[playerID] = buf
	}
	return buf
}

// Drop closes the player's buffer and disconnects its watchers.
func (h *Hub) Drop(playerID string) {
	h.mu.Lock()
	buf := h.buffers[playerID]
	delete(h.buffers, playerID)
	h.mu.Unlock()
	if buf != nil {
		buf.Close()
	}
}

func (h *Hub) Close() {
	h.mu.Lock()
	bufs := h.buffers
	h.buffers = map[string]*Buffer{}
	h.mu.Unlock()
	for _, b := range bufs {
		b.Close()
	}
}
