package websocket

import (
	"context"
	"sync"

	"github.com/dennisdiepolder/fleetpulse/internal/metrics"
	"github.com/rs/zerolog"
)

// Hub fans shift clock snapshots out to every connected dashboard. The most
// recent message is replayed to each client as it registers.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	latest []byte
	mu     sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "ws_hub").Logger(),
	}
}

// Run serves register, unregister and broadcast requests until ctx is done,
// then disconnects every remaining client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.register:
			h.add(c)

		case c := <-h.unregister:
			h.remove(c, "client disconnected")

		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

// Broadcast queues a message for all connected clients. It is a no-op once
// the hub has stopped.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// Register hands an upgraded client to the hub
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client; safe to call after the hub stopped
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	latest := h.latest
	total := len(h.clients)
	h.mu.Unlock()

	metrics.Get().RecordWebSocketConnect()

	if latest != nil {
		select {
		case c.send <- latest:
		default:
		}
	}

	h.logger.Info().Str("client_id", c.id).Int("total_clients", total).Msg("client connected")
}

// remove drops c and closes its send channel; unknown clients are ignored
func (h *Hub) remove(c *Client, reason string) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	metrics.Get().RecordWebSocketDisconnect()
	h.logger.Info().Str("client_id", c.id).Int("total_clients", total).Msg(reason)
}

func (h *Hub) fanOut(msg []byte) {
	m := metrics.Get()

	h.mu.Lock()
	h.latest = msg
	var slow []*Client
	for c := range h.clients {
		select {
		case c.send <- msg:
			m.RecordWebSocketMessage()
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	// a dashboard that cannot keep up with one frame per tick is dropped
	for _, c := range slow {
		h.remove(c, "client too slow, dropped")
	}
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.remove(c, "hub stopped")
	}
}
