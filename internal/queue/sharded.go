package queue

import (
	"fmt"

	lfring "github.com/randomizedcoder/go-lock-free-ring"
)

// ShardedQueue adapts go-lock-free-ring's ShardedRing to Queue.
//
// ShardedRing is MPSC: producers are spread over shards by producer ID and a
// single consumer drains all shards. Order is FIFO per shard only. Write
// uses the adapter's own producer ID; WriteFrom lets several producers share
// one adapter.
type ShardedQueue[T any] struct {
	r        *lfring.ShardedRing
	producer uint64
}

// NewSharded creates a ShardedQueue with the given total size split across
// shards.
func NewSharded[T any](size, shards int) (*ShardedQueue[T], error) {
	if size < 1 || shards < 1 {
		return nil, fmt.Errorf("queue: sharded ring needs size and shards >= 1, got %d and %d", size, shards)
	}
	r, err := lfring.NewShardedRing(uint64(size), uint64(shards))
	if err != nil {
		return nil, fmt.Errorf("queue: sharded ring: %w", err)
	}
	return &ShardedQueue[T]{r: r}, nil
}

// Write adds an item on the adapter's producer shard.
// Returns false if that shard is full.
func (q *ShardedQueue[T]) Write(v T) bool {
	return q.r.Write(q.producer, v)
}

// WriteFrom adds an item on the shard owned by producerID.
func (q *ShardedQueue[T]) WriteFrom(producerID uint64, v T) bool {
	return q.r.Write(producerID, v)
}

// Read removes and returns an item from any shard.
// Returns false if every shard is empty.
//
// Only ONE goroutine may call Read().
func (q *ShardedQueue[T]) Read() (T, bool) {
	v, ok := q.r.TryRead()
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}
