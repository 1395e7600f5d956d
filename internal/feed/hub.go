// Package feed is the in-process change notification channel: storage writes
// publish table-keyed events, and consumers rerun their pipelines from
// scratch on each one. No row diffs are carried.
package feed

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"agencypulse/server/internal/models"
)

var (
	ErrHubFull   = errors.New("feed hub is full")
	ErrHubClosed = errors.New("feed hub is closed")
)

// Hub fans change events out to per-table subscribers.
type Hub struct {
	events   chan models.ChangeEvent
	done     chan struct{}
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers map[string][]func(models.ChangeEvent)
}

// NewHub creates a hub with the specified event buffer size.
func NewHub(bufferSize int, logger *logrus.Logger) *Hub {
	return &Hub{
		events:   make(chan models.ChangeEvent, bufferSize),
		done:     make(chan struct{}),
		logger:   logger,
		handlers: make(map[string][]func(models.ChangeEvent)),
	}
}

// Publish queues an event for delivery. Non-blocking: a full buffer returns
// ErrHubFull rather than stalling the write path.
func (h *Hub) Publish(event models.ChangeEvent) error {
	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return ErrHubClosed
	}
	h.mu.RUnlock()

	select {
	case h.events <- event:
		h.logger.WithFields(logrus.Fields{
			"table": event.Table,
			"op":    event.Op,
		}).Debug("Published change event")
		return nil
	default:
		return ErrHubFull
	}
}

// Subscribe registers a handler for one table's change events.
func (h *Hub) Subscribe(table string, handler func(models.ChangeEvent)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[table] = append(h.handlers[table], handler)
}

// Start begins delivering events.
func (h *Hub) Start() {
	go h.deliver()
}

func (h *Hub) deliver() {
	for {
		select {
		case <-h.done:
			return
		case event := <-h.events:
			h.dispatch(event)
		}
	}
}

func (h *Hub) dispatch(event models.ChangeEvent) {
	h.mu.RLock()
	handlers := h.handlers[event.Table]
	h.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// Close stops delivery and rejects further publishes.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}

	h.closed = true
	close(h.done)
	return nil
}

// Len returns the number of undelivered events.
func (h *Hub) Len() int {
	return len(h.events)
}

// IsClosed reports whether the hub has been closed.
func (h *Hub) IsClosed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.closed
}
