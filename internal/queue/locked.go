package queue

import (
	"sync"

	equeue "github.com/eapache/queue"
)

// LockedQueue is a bounded FIFO guarded by a single mutex.
//
// Every Write and Read takes the same lock, so producers and consumers
// serialize on it. This is the coarse-locking baseline the lock-free rings
// are compared with.
type LockedQueue[T any] struct {
	mu   sync.Mutex
	q    *equeue.Queue
	size int
}

// NewLocked creates a LockedQueue holding at most size items.
// A size below 1 is treated as 1.
func NewLocked[T any](size int) *LockedQueue[T] {
	if size < 1 {
		size = 1
	}
	return &LockedQueue[T]{
		q:    equeue.New(),
		size: size,
	}
}

// Write adds an item to the queue.
// Returns false if the queue already holds size items.
func (q *LockedQueue[T]) Write(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.q.Length() >= q.size {
		return false
	}
	q.q.Add(v)
	return true
}

// Read removes and returns the oldest item.
// Returns false if the queue is empty.
func (q *LockedQueue[T]) Read() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.q.Length() == 0 {
		var zero T
		return zero, false
	}
	return q.q.Remove().(T), true
}

// Cap returns the maximum number of items the queue holds.
func (q *LockedQueue[T]) Cap() int {
	return q.size
}
