package notify

import (
	"testing"
	"time"
)

var at = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestBufferOrderAndReplay(t *testing.T) {
	buf := NewBuffer("p1", 10)
	ev1 := buf.Append("chat", "a", nil, at)
	ev2 := buf.Append("chat", "b", nil, at)
	ev3 := buf.Append("title", "c", nil, at)

	if ev1.EventID != "1" || ev2.EventID != "2" || ev3.EventID != "3" {
		t.Fatalf("unexpected event ids: %s %s %s", ev1.EventID, ev2.EventID, ev3.EventID)
	}
	replay := buf.ReplayAfter("1")
	if len(replay) != 2 || replay[0].EventID != "2" || replay[1].EventID != "3" {
		t.Fatalf("unexpected replay: %+v", replay)
	}
	if all := buf.ReplayAfter("junk"); len(all) != 3 {
		t.Fatalf("unparsable id should replay everything, got %d", len(all))
	}
}

func TestBufferTrimsToMax(t *testing.T) {
	buf := NewBuffer("p1", 2)
	for i := 0; i < 5; i++ {
		buf.Append("chat", "k", nil, at)
	}
	got := buf.ReplayAfter("")
	if len(got) != 2 || got[0].EventID != "4" {
		t.Fatalf("unexpected tail: %+v", got)
	}
}

func TestBufferSubscribeAndClose(t *testing.T) {
	buf := NewBuffer("p1", 10)
	ch := buf.Subscribe()
	buf.Append("chat", "k", map[string]string{"player": "Bob"}, at)
	select {
	case ev := <-ch:
		if ev.TemplateKey != "k" || ev.Placeholders["player"] != "Bob" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("watcher not notified")
	}
	buf.Close()
	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed")
	}
	if ev := buf.Append("chat", "late", nil, at); ev.EventID != "" {
		t.Fatalf("append after close should be dropped")
	}
}
