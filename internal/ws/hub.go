package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/playmatatu/arcade/internal/session"
)

// Hub maintains the set of active clients, grouped into one room per session
type Hub struct {
	rooms      map[string]map[string]*Client // session token -> client ID -> Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns
	sessions   *session.Manager
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub(sessions *session.Manager) *Hub {
	return &Hub{
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		sessions:   sessions,
	}
}

// Run serves register and unregister requests until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.join(client)
			log.Printf("[WS] Client %s joined session %s (room_size=%d)", client.id, client.token, h.RoomSize(client.token))
			client.sendState()
		case client := <-h.unregister:
			if h.leave(client) {
				log.Printf("[WS] Client %s left session %s", client.id, client.token)
			}
		}
	}
}

// attach hands c to the Run loop. It reports false once the hub has stopped.
func (h *Hub) attach(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// detach hands c to the Run loop for removal, or drops it if the hub has stopped.
func (h *Hub) detach(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) join(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.token]
	if !ok {
		room = make(map[string]*Client)
		h.rooms[c.token] = room
	}
	room[c.id] = c
}

// leave removes c and closes its send channel. It reports whether c was registered.
func (h *Hub) leave(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.token]
	if !ok || room[c.id] != c {
		return false
	}
	delete(room, c.id)
	if len(room) == 0 {
		delete(h.rooms, c.token)
	}
	close(c.send)
	return true
}

// RoomSize returns the number of clients watching a session.
func (h *Hub) RoomSize(token string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[token])
}

// BroadcastToSession sends a message to every client watching a session
func (h *Hub) BroadcastToSession(token string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}
	h.broadcastRaw(token, data)
}

func (h *Hub) broadcastRaw(token string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[token] {
		select {
		case client.send <- data:
		default:
			// Client's buffer is full
			log.Printf("[WS] Send buffer full for client %s in session %s, dropping message", client.id, token)
		}
	}
}

// closeRoom disconnects every client watching token.
func (h *Hub) closeRoom(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.rooms[token] {
		close(client.send)
	}
	delete(h.rooms, token)
}

// Dispatch routes a published payload to the room it belongs to. It has the
// session.Sink signature so it can be wired directly when Redis is absent.
func (h *Hub) Dispatch(channel string, payload []byte) {
	var head struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(payload, &head); err != nil || head.Token == "" {
		log.Printf("[WS] invalid %s payload: %v", channel, err)
		return
	}

	switch channel {
	case session.ChannelFrames:
		h.broadcastRaw(head.Token, payload)
	case session.ChannelClosed:
		if n := h.RoomSize(head.Token); n > 0 {
			log.Printf("[WS] broadcasting session_closed for %s (room_size=%d)", head.Token, n)
		}
		h.broadcastRaw(head.Token, payload)
		h.closeRoom(head.Token)
	default:
		log.Printf("[WS] unknown channel: %s", channel)
	}
}
