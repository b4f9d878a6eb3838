// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Time allowed to write one frame to a client.
const writeWait = 10 * time.Second

// Conn is the part of *websocket.Conn the hub writes through.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Message is the envelope pushed to dashboard clients.
type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
}

type client struct {
	conn Conn
	// gorilla connections allow a single concurrent writer.
	wmu sync.Mutex
}

func (c *client) write(messageType int, data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

// Hub keeps every connected dashboard keyed by a per-connection id.
type Hub struct {
	clients map[string]*client
	mu      sync.RWMutex
	log     zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		log:     log,
	}
}

// Register adds conn and returns the id to unregister it with.
func (h *Hub) Register(conn Conn, username string) string {
	id := uuid.NewString()
	h.mu.Lock()
	h.clients[id] = &client{conn: conn}
	h.mu.Unlock()
	h.log.Debug().Str("conn", id).Str("user", username).Msg("websocket client registered")
	return id
}

func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		h.log.Debug().Str("conn", id).Msg("websocket client unregistered")
	}
}

// Len is the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send writes one message to a single client. An unknown id is not an error;
// the client may already be gone.
func (h *Hub) Send(id, event string, payload interface{}) error {
	h.mu.RLock()
	c, ok := h.clients[id]
	h.mu.RUnlock()
	if !ok {
		h.log.Debug().Str("conn", id).Msg("websocket client not found")
		return nil
	}
	data, err := json.Marshal(Message{Event: event, Payload: payload})
	if err != nil {
		return err
	}
	return c.write(websocket.TextMessage, data)
}

// Ping sends a keepalive ping to one client through its write lock.
func (h *Hub) Ping(id string) error {
	h.mu.RLock()
	c, ok := h.clients[id]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	return c.write(websocket.PingMessage, nil)
}

// Broadcast pushes event to every client. Clients that fail the write are
// closed and dropped.
func (h *Hub) Broadcast(event string, payload interface{}) {
	data, err := json.Marshal(Message{Event: event, Payload: payload})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("encode websocket message")
		return
	}

	h.mu.RLock()
	targets := make(map[string]*client, len(h.clients))
	for id, c := range h.clients {
		targets[id] = c
	}
	h.mu.RUnlock()

	for id, c := range targets {
		if err := c.write(websocket.TextMessage, data); err != nil {
			h.log.Warn().Err(err).Str("conn", id).Msg("dropping websocket client")
			h.Unregister(id)
			_ = c.conn.Close()
		}
	}
}
