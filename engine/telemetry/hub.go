// Package telemetry streams engine statistics to websocket clients.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/spaghettifunk/tristris/engine/core"
)

const (
	writeWait = time.Second
	// sendQueue is how many messages a client may lag behind before it is
	// dropped.
	sendQueue = 16
)

// Hub fans published values out to every connected client as JSON text
// messages. Each client has its own writer goroutine, so Publish never waits
// on the network and is safe to call from any goroutine.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]*client
	last    []byte
	closed  bool

	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients:  map[*websocket.Conn]*client{},
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// ServeHTTP upgrades the request and registers the client. The last
// published value is sent right away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendQueue)}
	h.clients[conn] = c
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()

	go h.writePump(c)

	// Clients only listen; reading detects the close.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// HandleHealth reports the number of clients and the last published value.
func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	resp := struct {
		Clients int             `json:"clients"`
		Last    json.RawMessage `json:"last,omitempty"`
	}{Clients: len(h.clients), Last: h.last}
	h.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Publish encodes v and queues it for every client. Clients whose queue is
// full are dropped.
func (h *Hub) Publish(v any) error {
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.last = msg
	for conn, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			core.LogDebug("telemetry client %s is too slow, dropping it", conn.RemoteAddr())
			delete(h.clients, conn)
			close(c.send)
			conn.Close()
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client. Later publishes are ignored.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for conn, c := range h.clients {
		delete(h.clients, conn)
		close(c.send)
	}
	return nil
}

// client is the only writer of its connection. The send channel is closed
// with the hub lock held, once the client leaves the hub.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// writePump writes queued messages until the send channel is closed, then
// says goodbye and closes the connection.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			core.LogDebug("telemetry client %s dropped: %s", c.conn.RemoteAddr(), err)
			h.drop(c.conn)
			// drain until drop's close ends the range
			for range c.send {
			}
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
		time.Now().Add(writeWait))
}

// drop removes the client of conn if it is still registered.
func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if c, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(c.send)
	}
	h.mu.Unlock()
	conn.Close()
}

// Handler routes /ws to the hub and /health to its health report.
func Handler(h *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	mux.HandleFunc("/health", h.HandleHealth)
	return mux
}

// Serve runs the telemetry server on addr until ctx is done.
func Serve(ctx context.Context, addr string, h *Hub) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      Handler(h),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		core.LogInfo("telemetry listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		_ = h.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
