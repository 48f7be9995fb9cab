package engine

import (
	"sync"

	"github.com/iliyamo/wedding-seating-engine/internal/model"
)

// Hub fans plan events out to UI subscribers.  It is an explicit typed
// channel between the engine and its consumers rather than a global
// event bus: every subscriber gets its own buffered channel, and slow
// subscribers drop events instead of blocking the mutation path.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan model.Event
	next int
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan model.Event)}
}

// Subscribe registers a new subscriber and returns its event channel
// together with a cancel function.  The channel is closed on cancel.
func (h *Hub) Subscribe() (<-chan model.Event, func()) {
	h.mu.Lock()
	id := h.next
	h.next++
	ch := make(chan model.Event, 64)
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber without blocking.  Events to
// a subscriber with a full buffer are dropped; the UI resyncs from the
// query surface anyway.
func (h *Hub) Publish(ev model.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
