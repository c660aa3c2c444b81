package websocket

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

type Client struct {
	UserID uuid.UUID
	Conn   Conn
}

type delivery struct {
	userID uuid.UUID
	event  any
}

// Hub tracks live connections per user and pushes events to them. A user may hold several
// connections (one per open tab).
type Hub struct {
	clients   map[uuid.UUID]map[Conn]struct{}
	clientsMu sync.RWMutex

	register   chan *Client
	unregister chan *Client
	deliveries chan delivery
	done       chan struct{}
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[uuid.UUID]map[Conn]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliveries: make(chan delivery, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves the hub until ctx is cancelled. It must be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.log.Debug("client registered", zap.String("user_id", client.UserID.String()))
			h.clientsMu.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[Conn]struct{})
			}
			h.clients[client.UserID][client.Conn] = struct{}{}
			h.clientsMu.Unlock()
		case client := <-h.unregister:
			h.log.Debug("client unregistered", zap.String("user_id", client.UserID.String()))
			h.remove(client.UserID, client.Conn)
		case d := <-h.deliveries:
			h.deliver(d)
		}
	}
}

// Register adds a connection. Once the hub has stopped the connection is closed instead.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		_ = c.Conn.Close()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Push queues an event for every connection of userID. It never blocks; when the queue is
// full the event is dropped since the notification is already persisted.
func (h *Hub) Push(userID uuid.UUID, v any) {
	select {
	case h.deliveries <- delivery{userID: userID, event: v}:
	default:
		h.log.Warn("websocket queue full, dropping event", zap.String("user_id", userID.String()))
	}
}

func (h *Hub) Connected(userID uuid.UUID) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) deliver(d delivery) {
	h.clientsMu.RLock()
	conns := make([]Conn, 0, len(h.clients[d.userID]))
	for c := range h.clients[d.userID] {
		conns = append(conns, c)
	}
	h.clientsMu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(d.event); err != nil {
			h.log.Warn("error sending event to client", zap.String("user_id", d.userID.String()), zap.Error(err))
			_ = conn.Close()
			h.remove(d.userID, conn)
		}
	}
}

func (h *Hub) remove(userID uuid.UUID, conn Conn) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	conns, ok := h.clients[userID]
	if !ok {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(h.clients, userID)
	}
}

func (h *Hub) closeAll() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for userID, conns := range h.clients {
		for c := range conns {
			_ = c.Close()
		}
		delete(h.clients, userID)
	}
}
