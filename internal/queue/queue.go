// Package queue buffers bulk property import batches between the API intake
// and the background upsert workers.
package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"agencypulse/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("import queue is full")
	ErrQueueClosed = errors.New("import queue is closed")
)

// ImportQueue is an in-memory queue of property batches drained by a pool of
// workers. Intake is non-blocking: the API learns about back pressure
// immediately instead of stalling a request on a slow import.
type ImportQueue struct {
	batches chan []*models.PropertyDetails
	stop    chan struct{}
	workers int

	mu       sync.RWMutex
	closed   bool
	handlers []func([]*models.PropertyDetails) error

	wg     sync.WaitGroup
	logger *logrus.Logger
}

// NewImportQueue creates a queue holding up to bufferSize pending batches,
// drained by the given number of workers (at least one).
func NewImportQueue(bufferSize, workers int, logger *logrus.Logger) *ImportQueue {
	if workers < 1 {
		workers = 1
	}
	return &ImportQueue{
		batches: make(chan []*models.PropertyDetails, bufferSize),
		stop:    make(chan struct{}),
		workers: workers,
		logger:  logger,
	}
}

// Push queues a batch for import. A full queue returns ErrQueueFull.
func (q *ImportQueue) Push(batch []*models.PropertyDetails) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.batches <- batch:
		q.logger.WithFields(logrus.Fields{
			"batch_size": len(batch),
			"queued":     len(q.batches),
		}).Debug("Queued import batch")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler invoked for each drained batch. Handlers for one
// batch run in sequence on whichever worker picked it up.
func (q *ImportQueue) Subscribe(handler func([]*models.PropertyDetails) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start launches the worker pool. Batches are processed concurrently, one
// batch per worker at a time.
func (q *ImportQueue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.drain(i)
	}
	q.logger.WithField("workers", q.workers).Debug("Import workers started")
}

func (q *ImportQueue) drain(worker int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.stop:
			return
		case batch := <-q.batches:
			q.mu.RLock()
			handlers := q.handlers
			q.mu.RUnlock()

			for _, handler := range handlers {
				if err := handler(batch); err != nil {
					q.logger.WithError(err).WithFields(logrus.Fields{
						"worker":     worker,
						"batch_size": len(batch),
					}).Error("Import batch handler failed")
				}
			}
		}
	}
}

// Close rejects further pushes, stops the workers and waits for any batch in
// flight to finish. Batches still buffered are dropped. The batches channel is
// never closed, so a push racing Close cannot panic.
func (q *ImportQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.stop)
	q.mu.Unlock()

	q.wg.Wait()
	if dropped := len(q.batches); dropped > 0 {
		q.logger.WithField("dropped", dropped).Warn("Import queue closed with batches still buffered")
	}
	return nil
}

// Len returns the number of batches waiting for a worker.
func (q *ImportQueue) Len() int {
	return len(q.batches)
}

// IsClosed reports whether the queue has been closed.
func (q *ImportQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
