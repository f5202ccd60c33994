// Package queue defines the non-blocking queue contract shared by the rings
// in this module and the baselines they are measured against.
//
// This package offers three baseline implementations of the Queue interface:
//   - ChannelQueue: Standard library approach using buffered channels
//   - LockedQueue: Coarse locking, a sync.Mutex around an eapache/queue
//   - ShardedQueue: go-lock-free-ring's sharded MPSC ring
//
// The lock-free rings themselves live in internal/ring; *ring.Versioned and
// *ring.Claimed both satisfy Queue.
//
// # Versioned Safety (IMPORTANT)
//
// ring.Versioned is a Single-Producer Single-Consumer (SPSC) queue.
// Correct usage:
//   - Exactly ONE goroutine calls Write()
//   - Exactly ONE goroutine calls Read()
//   - These may be the same goroutine or different goroutines
package queue

// Queue is a non-blocking queue.
//
// Implementations never wait: Write returns false if full,
// Read returns false if empty.
type Queue[T any] interface {
	// Write adds an item to the queue.
	// Returns false if the queue is full.
	Write(T) bool

	// Read removes and returns an item from the queue.
	// Returns false if the queue is empty.
	Read() (T, bool)
}
