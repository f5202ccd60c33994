package queue

// ChannelQueue is the buffered-channel baseline. Write and Read are
// non-blocking sends and receives (select with default), so a full or empty
// channel behaves like a full or empty ring.
type ChannelQueue[T any] struct {
	ch chan T
}

// NewChannel creates a ChannelQueue holding up to size items (minimum 1;
// an unbuffered channel would never accept a non-blocking send).
func NewChannel[T any](size int) *ChannelQueue[T] {
	return &ChannelQueue[T]{ch: make(chan T, max(size, 1))}
}

// Write sends v, or returns false if the buffer is full.
func (q *ChannelQueue[T]) Write(v T) bool {
	select {
	case q.ch <- v:
		return true
	default:
		return false
	}
}

// Read receives the oldest item, or returns false if the buffer is empty.
func (q *ChannelQueue[T]) Read() (T, bool) {
	select {
	case v := <-q.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Cap returns the buffer size.
func (q *ChannelQueue[T]) Cap() int {
	return cap(q.ch)
}
