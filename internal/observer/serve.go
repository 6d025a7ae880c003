package observer

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	allowedOriginsMu sync.RWMutex
	allowedOrigins   map[string]bool
)

// SetAllowedOrigins configures the observer WebSocket's origin allowlist
// (§6's "allowed observer origins" config). An empty list disables the
// check (every origin allowed), matching local-dev defaults.
func SetAllowedOrigins(origins []string) {
	allowedOriginsMu.Lock()
	defer allowedOriginsMu.Unlock()
	if len(origins) == 0 {
		allowedOrigins = nil
		return
	}
	allowedOrigins = make(map[string]bool, len(origins))
	for _, o := range origins {
		allowedOrigins[o] = true
	}
}

func checkOrigin(r *http.Request) bool {
	allowedOriginsMu.RLock()
	defer allowedOriginsMu.RUnlock()
	if len(allowedOrigins) == 0 {
		return true
	}
	return allowedOrigins[r.Header.Get("Origin")]
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     checkOrigin,
}

// writeWait bounds how long a single observer write may take before the
// connection is abandoned.
const writeWait = 5 * time.Second

// SessionSnapshot is the data needed to build the initial session_state
// message; the caller assembles it under the session's lock so Serve never
// has to reach into session internals directly.
type SessionSnapshot struct {
	Status       string
	Transcript   []TranscriptLine
	MessageCount int
}

// Serve upgrades an HTTP request to the observer WebSocket, emits the
// initial session_state snapshot, then relays every broadcast for
// sessionID until the connection drops. Observer connections are
// best-effort: a drop here never affects the call itself.
func Serve(w http.ResponseWriter, r *http.Request, hub *Hub, sessionID string, snapshot SessionSnapshot) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("observer: upgrade failed", "session_id", sessionID, "error", err)
		return
	}
	defer conn.Close()

	sub := hub.Subscribe(sessionID)
	defer hub.Unsubscribe(sessionID, sub)

	initial := Event{
		Type:         "session_state",
		Status:       snapshot.Status,
		Transcript:   snapshot.Transcript,
		MessageCount: snapshot.MessageCount,
	}
	if !writeEvent(conn, initial) {
		return
	}

	// Drain and discard inbound frames; this is a read-only relay, but we
	// still need to notice when the remote closes the connection.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case data, ok := <-sub:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, ev Event) bool {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(ev); err != nil {
		slog.Error("observer: write session_state failed", "error", err)
		return false
	}
	return true
}
