package hub

import (
	"encoding/json"
	"sync"
)

// EventReviewLikes is broadcast after a like toggle commits.
const EventReviewLikes = "review.likes"

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// LikesPayload carries the authoritative like count of a review.
type LikesPayload struct {
	ReviewID uint  `json:"review_id"`
	Likes    int64 `json:"likes"`
}

// Client is a buffered channel an SSE handler drains.
type Client chan []byte

// Hub fans review events out to every client watching that review.
type Hub struct {
	topics map[uint]map[Client]struct{}
	closed bool
	mu     sync.RWMutex
}

// GlobalHub is the instance the handlers publish to.
var GlobalHub = NewHub()

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		topics: make(map[uint]map[Client]struct{}),
	}
}

// Subscribe adds a client to the watchers of a review. On a closed hub the
// client's channel is closed at once.
func (h *Hub) Subscribe(reviewID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(client)
		return
	}
	if _, ok := h.topics[reviewID]; !ok {
		h.topics[reviewID] = make(map[Client]struct{})
	}
	h.topics[reviewID][client] = struct{}{}
}

// Unsubscribe removes a client and closes its channel.
func (h *Hub) Unsubscribe(reviewID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.topics[reviewID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client)
			if len(clients) == 0 {
				delete(h.topics, reviewID)
			}
		}
	}
}

// Close disconnects every client and refuses new ones. Handlers draining a
// client see its channel closed and return.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for reviewID, clients := range h.topics {
		for client := range clients {
			close(client)
		}
		delete(h.topics, reviewID)
	}
}

// Subscribers returns how many clients watch a review.
func (h *Hub) Subscribers(reviewID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[reviewID])
}

// Broadcast sends an event to all clients watching a review.
// Slow clients whose buffer is full miss the event rather than block the publisher.
func (h *Hub) Broadcast(reviewID uint, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.topics[reviewID]
	if !ok {
		return nil
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	for client := range clients {
		select {
		case client <- messageBytes:
		default:
		}
	}
	return nil
}
