package http

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/germain250/quizly/internal/domain"
)

// client is one websocket connection with its dedicated outbound queue.
// All writes to the underlying conn happen on the writer goroutine.
type client struct {
	id   string
	conn *websocket.Conn
	send chan domain.Event
}

// Hub tracks live connections and room subscriptions and implements the
// app.Gateway port: direct per-connection sends plus room broadcasts.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]*client
	rooms   map[string]map[string]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[string]*client),
		rooms:   make(map[string]map[string]struct{}),
	}
}

// register assigns a connection id and starts the writer goroutine.
func (h *Hub) register(conn *websocket.Conn) *client {
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan domain.Event, 32),
	}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	go h.writeLoop(c)
	return c
}

// unregister drops the connection and any room subscriptions it still
// holds, and stops its writer.
func (h *Hub) unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[connID]
	if !ok {
		return
	}
	delete(h.clients, connID)
	for _, members := range h.rooms {
		delete(members, connID)
	}
	close(c.send)
}

func (h *Hub) writeLoop(c *client) {
	for ev := range c.send {
		if err := c.conn.WriteJSON(ev); err != nil {
			h.logger.Debug("ws write error", "conn", c.id, "err", err)
			return
		}
	}
}

func (h *Hub) Join(code, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[code]
	if !ok {
		members = make(map[string]struct{})
		h.rooms[code] = members
	}
	members[connID] = struct{}{}
}

func (h *Hub) Leave(code, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[code]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, code)
		}
	}
}

func (h *Hub) Drop(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, code)
}

// Send queues an event for one connection. Holding the read lock while
// enqueueing keeps unregister from closing the channel mid-send.
func (h *Hub) Send(connID string, ev domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[connID]; ok {
		h.enqueue(c, ev)
	}
}

// Broadcast queues an event for every member of a room.
func (h *Hub) Broadcast(code string, ev domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for connID := range h.rooms[code] {
		if c, ok := h.clients[connID]; ok {
			h.enqueue(c, ev)
		}
	}
}

// enqueue drops the event when the client's queue is full rather than
// blocking the room's event stream on a slow connection.
func (h *Hub) enqueue(c *client, ev domain.Event) {
	select {
	case c.send <- ev:
	default:
		h.logger.Warn("dropping event for slow client", "conn", c.id, "type", ev.Type)
	}
}
