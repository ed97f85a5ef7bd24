package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/mdserve/mdserve/internal/logging"
)

const (
	// writeWait bounds a single broadcast write to a peer.
	writeWait = 10 * time.Second
)

// Hub tracks live-reload websocket connections and broadcasts to them.
type Hub struct {
	logger logging.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub(logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Hub{
		logger:  logger.WithComponent("websocket"),
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// HandleWS upgrades the request and parks the connection until the peer
// disconnects. The viewer only listens, so the read loop exists purely to
// observe connection close.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The server binds to localhost for a local viewer; file:// pages
		// and editor previews connect without a matching Origin.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug(r.Context(), "viewer connected", "clients", count)

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}

// Broadcast sends a text message to every connected viewer. Failed peers
// are dropped.
func (h *Hub) Broadcast(message string) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		err := conn.Write(ctx, websocket.MessageText, []byte(message))
		cancel()
		if err != nil {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close(websocket.StatusAbnormalClosure, "write failed")
		}
	}
}

// CloseAll disconnects every viewer; used during shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clients = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}
