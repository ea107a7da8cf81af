package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/senseihimanshu/blood-donation/internal/domain"
)

// Connection wraps websocket.Conn with metadata.
type Connection struct {
	Conn       *websocket.Conn
	ChannelKey string
	LastSeen   time.Time

	mu sync.Mutex // serializes writes on the conn
}

// Hub is the process-local session directory: every authenticated
// identity joins the channel equal to its own key. Rebuilt empty on
// restart; nothing is persisted.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]map[*Connection]struct{} // channel key -> set of connections
	logger      *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[string]map[*Connection]struct{}),
		logger:      logger,
	}
}

// Add registers a connection under the identity's channel.
func (h *Hub) Add(identity domain.Identity, conn *websocket.Conn) *Connection {
	key := identity.ChannelKey()
	c := &Connection{Conn: conn, ChannelKey: key, LastSeen: time.Now()}

	h.mu.Lock()
	if _, ok := h.connections[key]; !ok {
		h.connections[key] = make(map[*Connection]struct{})
	}
	h.connections[key][c] = struct{}{}
	total := len(h.connections[key])
	h.mu.Unlock()

	h.logger.Info("WS connected",
		zap.String("channel", key),
		zap.Int("sessions", total))
	return c
}

// Remove disconnects and removes a connection.
func (h *Hub) Remove(c *Connection) {
	h.mu.Lock()
	if conns, ok := h.connections[c.ChannelKey]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.connections, c.ChannelKey)
		}
	}
	h.mu.Unlock()

	_ = c.Conn.Close()
	h.logger.Info("WS disconnected", zap.String("channel", c.ChannelKey))
}

// Send delivers a JSON message to every live session on the identity's
// channel. Best effort: with no session registered the message is
// dropped, and a failed write evicts that session.
func (h *Hub) Send(identity domain.Identity, message interface{}) {
	key := identity.ChannelKey()

	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.connections[key]))
	for c := range h.connections[key] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.mu.Lock()
		err := c.Conn.WriteJSON(message)
		c.mu.Unlock()
		if err != nil {
			h.logger.Warn("WS send failed",
				zap.String("channel", key),
				zap.Error(err))
			h.Remove(c)
		}
	}
}

// Heartbeat pings all connections periodically and evicts stale ones.
func (h *Hub) Heartbeat(interval time.Duration) {
	ticker := time.NewTicker(interval)
	for range ticker.C {
		h.mu.RLock()
		var all []*Connection
		for _, conns := range h.connections {
			for c := range conns {
				all = append(all, c)
			}
		}
		h.mu.RUnlock()

		for _, c := range all {
			if time.Since(c.LastSeen) > 2*interval {
				h.Remove(c)
				continue
			}
			c.mu.Lock()
			_ = c.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second))
			c.mu.Unlock()
		}
	}
}
