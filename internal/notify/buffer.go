package notify

import (
	"strconv"
	"sync"
	"time"
)

// Event is one delivered notification as players receive it.
type Event struct {
	EventID      string            `json:"event_id"`
	Channel      string            `json:"channel"`
	TemplateKey  string            `json:"template_key"`
	PlayerID     string            `json:"player_id"`
	ServerTS     int64             `json:"server_ts"`
	Placeholders map[string]string `json:"placeholders,omitempty"`
}

// Buffer keeps the most recent events for one player and fans new ones out
// to live watchers. Slow watchers miss events rather than block appends.
type Buffer struct {
	mu       sync.Mutex
	playerID string
	nextID   int64
	max      int
	events   []Event
	watchers map[chan Event]struct{}
	closed   bool
}

func NewBuffer(playerID string, max int) *Buffer {
	if max <= 0 {
		max = 100
	}
	return &Buffer{
		playerID: playerID,
		max:      max,
		watchers: map[chan Event]struct{}{},
	}
}

func (b *Buffer) Append(channel, key string, placeholders map[string]string, at time.Time) Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return Event{}
	}
	b.nextID++
	ev := Event{
		EventID:      strconv.FormatInt(b.nextID, 10),
		Channel:      channel,
		TemplateKey:  key,
		PlayerID:     b.playerID,
		ServerTS:     at.UnixMilli(),
		Placeholders: placeholders,
	}
	b.events = append(b.events, ev)
	if len(b.events) > b.max {
		b.events = b.events[len(b.events)-b.max:]
	}
	for ch := range b.watchers {
		select {
		case ch <- ev:
		default:
		}
	}
	return ev
}

// ReplayAfter returns buffered events newer than lastEventID. An empty or
// unparsable id replays everything still buffered.
func (b *Buffer) ReplayAfter(lastEventID string) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	last, err := strconv.ParseInt(lastEventID, 10, 64)
	if lastEventID == "" || err != nil {
		out := make([]Event, len(b.events))
		copy(out, b.events)
		return out
	}
	out := make([]Event, 0, len(b.events))
	for _, ev := range b.events {
		id, _ := strconv.ParseInt(ev.EventID, 10, 64)
		if id > last {
			out = append(out, ev)
		}
	}
	return out
}

func (b *Buffer) Subscribe() chan Event {
	ch := make(chan Event, 32)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.watchers[ch] = struct{}{}
	return ch
}

func (b *Buffer) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.watchers[ch]; ok {
		delete(b.watchers, ch)
		close(ch)
	}
}

func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.watchers {
		close(ch)
		delete(b.watchers, ch)
	}
}
