// Copyright (c) 2025 @AmarnathCJD

package utils

import (
	"context"
	"sync"
)

// Queue is an unbounded FIFO. Push never blocks; Pop waits for an item or
// for ctx to end.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	notify chan struct{}
	done   chan struct{}
	closed bool
}

func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{notify: make(chan struct{}, 1), done: make(chan struct{})}
}

// Push appends v. It reports false once the queue is closed.
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, v)
	q.mu.Unlock()

	q.wake()
	return true
}

func (q *Queue[T]) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Pop returns the oldest item. ok is false when ctx is done, or the queue
// is closed and drained.
func (q *Queue[T]) Pop(ctx context.Context) (v T, ok bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			v = q.items[0]
			var zero T
			q.items[0] = zero
			q.items = q.items[1:]
			more := len(q.items) > 0
			q.mu.Unlock()
			if more {
				q.wake()
			}
			return v, true
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return v, false
		}

		select {
		case <-q.notify:
		case <-q.done:
		case <-ctx.Done():
			return v, false
		}
	}
}

// Close stops accepting items. Items already queued can still be popped.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.done)
	}
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
