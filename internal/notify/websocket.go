package notify

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	pingInterval = 15 * time.Second
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Serve upgrades the request and streams the player's events: first the
// replay after lastEventID, then live events until either side closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, playerID, lastEventID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Str("player_id", playerID).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	buf := h.Buffer(playerID)
	ch := buf.Subscribe()
	defer buf.Unsubscribe(ch)

	done := make(chan struct{})
	go readLoop(conn, done)

	var sent int64
	for _, ev := range buf.ReplayAfter(lastEventID) {
		if err := writeEvent(conn, ev); err != nil {
			return
		}
		sent, _ = strconv.ParseInt(ev.EventID, 10, 64)
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "player left"),
					time.Now().Add(writeTimeout))
				return
			}
			// Subscribed before replay; skip what the replay already covered.
			if id, _ := strconv.ParseInt(ev.EventID, 10, 64); id <= sent {
				continue
			}
			if err := writeEvent(conn, ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames so control messages are processed and a
// closed connection is noticed.
func readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, ev Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(ev)
}
