package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pythonsolar/harumiki-farm-v2/pkg/config"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/sensor"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/telemetry"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Allow same-origin requests, or requests with no Origin header
		// (direct connections from non-browser clients).
		return origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host
	},
	ReadBufferSize:  config.WSReadBufferSize,
	WriteBufferSize: config.WSWriteBufferSize,
}

// wsConn wraps a websocket connection with a write lock. The broadcast
// loop and the per-connection ping goroutine both write to the same
// connection, and gorilla/websocket permits only one concurrent writer.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(config.WSWriteDeadline))
	return c.conn.WriteMessage(messageType, data)
}

// Hub manages WebSocket connections for live sensor updates.
type Hub struct {
	clients map[*wsConn]bool

	register   chan *wsConn
	unregister chan *wsConn
	broadcast  chan []byte

	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*wsConn]bool),
		register:   make(chan *wsConn, config.WSChannelBuffer),
		unregister: make(chan *wsConn, config.WSChannelBuffer),
		broadcast:  make(chan []byte, config.WSBroadcastBuffer),
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				c.conn.Close()
			}
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("WebSocket client connected (total: %d)", count)
		case c := <-h.unregister:
			h.removeClients([]*wsConn{c})
		case message := <-h.broadcast:
			h.mu.RLock()
			conns := make([]*wsConn, 0, len(h.clients))
			for c := range h.clients {
				conns = append(conns, c)
			}
			h.mu.RUnlock()

			// Write outside the hub lock; wsConn serializes against
			// the ping goroutines.
			var failed []*wsConn
			for _, c := range conns {
				if err := c.write(websocket.TextMessage, message); err != nil {
					log.Printf("WebSocket write error: %v", err)
					failed = append(failed, c)
				}
			}

			// Remove failed connections directly rather than through
			// the unregister channel: Run is its only consumer, so a
			// burst of failures larger than the channel buffer would
			// deadlock the hub against itself.
			h.removeClients(failed)
		}
	}
}

// removeClients drops the given connections from the hub and closes them.
// Connections already removed are skipped.
func (h *Hub) removeClients(conns []*wsConn) {
	if len(conns) == 0 {
		return
	}

	h.mu.Lock()
	removed := 0
	for _, c := range conns {
		if _, ok := h.clients[c]; ok {
			delete(h.clients, c)
			c.conn.Close()
			removed++
		}
	}
	count := len(h.clients)
	h.mu.Unlock()

	if removed > 0 {
		log.Printf("WebSocket client disconnected (total: %d)", count)
	}
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(data interface{}) error {
	message, err := json.Marshal(data)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- message:
		return nil
	default:
		// Channel full, drop message to prevent blocking.
		log.Printf("Broadcast channel full, dropping message")
		return nil
	}
}

// HasClients returns true if any WebSocket clients are connected.
func (h *Hub) HasClients() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients) > 0
}

// HandleWebSocket handles WebSocket upgrade requests.
func (h *Handler) HandleWebSocket(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}

		client := &wsConn{conn: conn}
		hub.register <- client

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Ping sender keeps the connection alive through idle periods.
		// Pings go through the client's write lock so they can never
		// interleave with a broadcast frame.
		go func() {
			ticker := time.NewTicker(config.WSPingInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := client.write(websocket.PingMessage, nil); err != nil {
						return
					}
				}
			}
		}()

		defer func() {
			cancel()
			hub.unregister <- client
		}()

		conn.SetReadDeadline(time.Now().Add(config.WSReadDeadline))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(config.WSReadDeadline))
			return nil
		})

		// Read loop handles control frames and detects connection close.
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("WebSocket error: %v", err)
				}
				break
			}
		}
	}
}

// liveUpdate is one broadcast frame: the newest valid reading per series
// across every registered metric.
type liveUpdate struct {
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Readings  map[string]interface{} `json:"readings"`
}

// BroadcastLatest periodically fetches the newest readings and pushes
// them to connected WebSocket clients. Fetching is skipped entirely
// while no clients are connected.
func BroadcastLatest(ctx context.Context, registry *sensor.Registry, fetcher *telemetry.Fetcher, hub *Hub) {
	ticker := time.NewTicker(config.BroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !hub.HasClients() {
				continue
			}

			readings := make(map[string]interface{})
			for _, metric := range registry.Metrics() {
				for _, res := range fetcher.FetchLatest(ctx, metric.Series) {
					if res.Unavailable || res.Reading.Missing || sensor.IsSentinel(res.Reading.Value) || !res.Series.InRange(res.Reading.Value) {
						readings[res.Series.Key] = nil
						continue
					}
					readings[res.Series.Key] = map[string]interface{}{
						"value": res.Reading.Value,
						"time":  res.Reading.Timestamp.UTC().Format(time.RFC3339),
					}
				}
			}

			if err := hub.Broadcast(liveUpdate{
				Type:      "latest",
				Timestamp: time.Now().UTC(),
				Readings:  readings,
			}); err != nil {
				log.Printf("Failed to broadcast live update: %v", err)
			}
		}
	}
}
