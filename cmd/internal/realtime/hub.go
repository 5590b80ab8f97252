package realtime

import (
	"log/slog"
	"sync"
)

// Hub fans availability snapshots out to every connected client and keeps
// the latest one for newcomers.
//
// Join/Leave are safe under concurrent Broadcast. Broadcast never blocks:
// a client whose queue is full misses that snapshot and gets the next one.
type Hub struct {
	log *slog.Logger

	mu      sync.RWMutex
	clients map[string]*Client
	latest  *Envelope
}

// NewHub constructs a Hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		log:     log,
		clients: make(map[string]*Client),
	}
}

// Join adds a client.
func (h *Hub) Join(client *Client) {
	if h == nil || client == nil || client.SessionID == "" {
		return
	}

	h.mu.Lock()
	h.clients[client.SessionID] = client
	n := len(h.clients)
	h.mu.Unlock()

	h.log.Info("feed.client.join", "session_id", client.SessionID, "clients", n)
}

// Leave removes a client and signals its shutdown.
func (h *Hub) Leave(sessionID string) {
	if h == nil || sessionID == "" {
		return
	}

	h.mu.Lock()
	cl := h.clients[sessionID]
	delete(h.clients, sessionID)
	n := len(h.clients)
	h.mu.Unlock()

	// Close after removal so no broadcaster holds a client being torn down.
	if cl != nil {
		cl.Close()
	}

	h.log.Info("feed.client.leave", "session_id", sessionID, "clients", n)
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Latest returns the most recently broadcast snapshot envelope.
func (h *Hub) Latest() (Envelope, bool) {
	if h == nil {
		return Envelope{}, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latest == nil {
		return Envelope{}, false
	}
	return *h.latest, true
}

// Broadcast records env as the latest snapshot and queues it for every client.
func (h *Hub) Broadcast(env Envelope) {
	if h == nil {
		return
	}

	h.mu.Lock()
	h.latest = &env
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for _, c := range h.clients {
		if c == nil {
			continue
		}

		select {
		case <-c.Done():
			continue
		default:
		}

		select {
		case c.Send <- env:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		h.log.Info("feed.broadcast.dropped", "dropped", dropped)
	}
}
