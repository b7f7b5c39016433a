package queue

import (
	"errors"
	"sync"

	"github.com/georgecharles/verygoodestates/internal/models"
	"github.com/sirupsen/logrus"
)

var (
	ErrQueueFull   = errors.New("listing queue is full")
	ErrQueueClosed = errors.New("listing queue is closed")
)

// Handler consumes one batch of listings
type Handler func([]*models.Property) error

// ListingQueue is a bounded in-memory queue of listing batches feeding
// subscribed handlers from a single worker goroutine
type ListingQueue struct {
	batches  chan []*models.Property
	stop     chan struct{}
	capacity int
	closed   bool
	started  bool
	mu       sync.RWMutex
	worker   sync.WaitGroup
	logger   *logrus.Logger
	handlers []Handler
}

// NewListingQueue returns a queue holding at most capacity pending batches
func NewListingQueue(capacity int, logger *logrus.Logger) *ListingQueue {
	return &ListingQueue{
		batches:  make(chan []*models.Property, capacity),
		stop:     make(chan struct{}),
		capacity: capacity,
		logger:   logger,
	}
}

// Push adds a batch without blocking. It fails with ErrQueueFull when the buffer
// is at capacity.
func (q *ListingQueue) Push(batch []*models.Property) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.batches <- batch:
		q.logger.WithFields(logrus.Fields{
			"batch_size": len(batch),
			"pending":    len(q.batches),
		}).Debug("Queued listing batch")
		return nil
	default:
		q.logger.WithField("capacity", q.capacity).Warn("Listing queue full, dropping batch")
		return ErrQueueFull
	}
}

// Subscribe registers handler for every batch the worker takes off the queue
func (q *ListingQueue) Subscribe(handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start launches the worker. Calling it more than once has no effect.
func (q *ListingQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started || q.closed {
		return
	}
	q.started = true

	q.worker.Add(1)
	go q.run()
}

func (q *ListingQueue) run() {
	defer q.worker.Done()

	for {
		select {
		case batch := <-q.batches:
			q.dispatch(batch)
		case <-q.stop:
			q.drain()
			return
		}
	}
}

func (q *ListingQueue) drain() {
	for n := len(q.batches); n > 0; n-- {
		q.dispatch(<-q.batches)
	}
}

func (q *ListingQueue) dispatch(batch []*models.Property) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for i, handle := range handlers {
		if err := handle(batch); err != nil {
			q.logger.WithError(err).WithFields(logrus.Fields{
				"handler":    i,
				"batch_size": len(batch),
			}).Error("Listing handler failed")
		}
	}
}

// Close rejects further pushes and waits for the worker to finish buffered batches
func (q *ListingQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.stop)
	q.mu.Unlock()

	q.worker.Wait()
	return nil
}

// Len is the number of pending batches
func (q *ListingQueue) Len() int {
	return len(q.batches)
}

func (q *ListingQueue) IsClosed() bool {
	q.mu.RLock()
	closed := q.closed
	q.mu.RUnlock()
	return closed
}
