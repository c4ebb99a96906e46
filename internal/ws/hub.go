package ws

import (
	"context"
	"log/slog"
	"sync"

	"friendship-service/internal/models"
)

// MessageSender dispatches inbound chat frames into the domain layer.
type MessageSender interface {
	SendMessage(ctx context.Context, msg *models.Message) error
}

// Hub is the registry of open WebSocket connections. Connections are held
// as a set, not keyed by user: one user may hold several sockets, and the
// user identity is recovered from the client at push time.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client

	sender MessageSender
}

func NewHub(sender MessageSender) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		sender:     sender,
	}
}

// Run owns registration and teardown. It must be started once, before any
// connection is accepted.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			slog.Info("websocket client registered", "user", client.Email)

		case client := <-h.unregister:
			h.removeClient(client)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Register announces a new connection to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister requests teardown of a connection. Safe to call more than
// once for the same client.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	client.closeSend()
	slog.Info("websocket client unregistered", "user", client.Email)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.closeSend()
		client.Conn.Close()
		delete(h.clients, client)
	}
}

// Push enqueues a payload on every open connection belonging to the user.
// It never blocks: delivery goes through each client's bounded queue, and
// a client whose queue is full is dropped. Called inline from the event
// bus, so this bound is what keeps slow sockets from delaying mutations.
func (h *Hub) Push(email string, payload []byte) {
	h.mu.RLock()
	var stale []*Client
	for client := range h.clients {
		if client.Email != email {
			continue
		}
		if !client.enqueue(payload) {
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stale {
		slog.Warn("dropping slow websocket client", "user", client.Email)
		h.removeClient(client)
	}
}

// ClientCount reports the number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
