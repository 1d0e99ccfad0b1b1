package api

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"emberline/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Localhost-only surface; anything browser-originated must
		// still come from this machine.
		origin := r.Header.Get("Origin")
		return origin == "" ||
			strings.HasPrefix(origin, "http://localhost") ||
			strings.HasPrefix(origin, "http://127.0.0.1")
	},
}

// LogHub fans engine log output out to websocket tail clients. It is
// an io.Writer so it can tee straight off the logger.
type LogHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewLogHub creates an empty hub.
func NewLogHub() *LogHub {
	return &LogHub{clients: make(map[*websocket.Conn]struct{})}
}

// Write broadcasts one log line to every tail client. Slow or dead
// clients get dropped rather than blocking the logger.
func (h *LogHub) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, p); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
	return len(p), nil
}

// ClientCount returns how many tails are attached.
func (h *LogHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// HandleTail upgrades the request and streams log output until the
// client goes away.
func (h *LogHub) HandleTail(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.For("api").Warn("log tail upgrade failed", "err", err)
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	// Reader just watches for close; tails never send anything we care
	// about.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.mu.Lock()
				delete(h.clients, conn)
				h.mu.Unlock()
				conn.Close()
				return
			}
		}
	}()
}
