package app

import (
	"sync"

	"deepref-rcs-service/internal/domain"
)

// RecalcHub fans batch progress snapshots out to subscribers. Slow
// subscribers have their stale snapshot dropped rather than blocking the
// batch driver.
type RecalcHub struct {
	mu          sync.Mutex
	subscribers map[chan domain.BatchProgress]struct{}
	last        domain.BatchProgress
	hasLast     bool
}

func NewRecalcHub() *RecalcHub {
	return &RecalcHub{
		subscribers: make(map[chan domain.BatchProgress]struct{}),
	}
}

// Subscribe registers a listener. If a batch has already published
// progress, the latest snapshot is delivered immediately.
func (h *RecalcHub) Subscribe() (<-chan domain.BatchProgress, func()) {
	ch := make(chan domain.BatchProgress, 8)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	last, ok := h.last, h.hasLast
	h.mu.Unlock()

	if ok {
		ch <- last
	}

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers a snapshot to every subscriber, displacing an unread
// older snapshot if a subscriber's buffer is full.
func (h *RecalcHub) Publish(progress domain.BatchProgress) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = progress
	h.hasLast = true
	for ch := range h.subscribers {
		select {
		case ch <- progress:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- progress
		}
	}
}
