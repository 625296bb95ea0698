package events

import (
	"context"
	"sync"
)

// DefaultQueueCap bounds how many undelivered events a session holds before
// the oldest are dropped. A consumerless session otherwise accumulates one
// progress event per second for the whole transfer.
const DefaultQueueCap = 1024

// Queue is a FIFO buffer of events for a single session.
//
// Push never blocks and never fails; when the buffer is full the oldest
// event is dropped. Pop blocks until an event is available or the context is
// cancelled. One producer and at most one consumer are supported.
type Queue struct {
	mu    sync.Mutex
	items []Event
	cap   int
	ready chan struct{}
}

// NewQueue creates a queue with [DefaultQueueCap] capacity.
func NewQueue() *Queue {
	return NewQueueWithCap(DefaultQueueCap)
}

// NewQueueWithCap creates a queue that drops the oldest event beyond cap.
// A cap of zero or less means unbounded.
func NewQueueWithCap(cap int) *Queue {
	return &Queue{cap: cap, ready: make(chan struct{}, 1)}
}

// Push appends an event, dropping the oldest one if the queue is at capacity.
func (q *Queue) Push(e Event) {
	q.mu.Lock()
	if q.cap > 0 && len(q.items) >= q.cap {
		q.items = q.items[1:]
	}
	q.items = append(q.items, e)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Pop removes and returns the oldest event, blocking until one is available.
// Returns ctx.Err if the context is cancelled while waiting.
func (q *Queue) Pop(ctx context.Context) (Event, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			e := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return e, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case <-q.ready:
		}
	}
}

// Len returns the number of undelivered events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
