package events

import (
	"log/slog"
	"sync"

	"github.com/terra-clan/graduate-survey/internal/models"
)

const defaultBuffer = 16

// Hub fans submission events out to live admin subscribers.
// A subscriber that falls behind loses events rather than blocking publishers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]chan models.SubmissionEvent
	nextID int
	buffer int
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		subs:   make(map[int]chan models.SubmissionEvent),
		buffer: defaultBuffer,
	}
}

// Subscribe registers a listener. Call the returned function to unsubscribe;
// it closes the channel.
func (h *Hub) Subscribe() (<-chan models.SubmissionEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan models.SubmissionEvent, h.buffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}

// Publish delivers an event to every subscriber
func (h *Hub) Publish(event models.SubmissionEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs {
		select {
		case ch <- event:
		default:
			slog.Warn("dropping submission event for slow subscriber", "subscriber", id, "submission_id", event.ID)
		}
	}
}

// Subscribers returns the number of live subscribers
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
