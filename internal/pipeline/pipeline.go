// Package pipeline drives a queue with one producer loop and one consumer
// loop, and checks what came out the other end.
//
// The loops own everything the ring does not: retrying rejected writes,
// pacing the producer, idling on empty reads, and the completion protocol.
// The producer marks a done.Flag after its last successful Write; the
// consumer stops once it has observed the flag and then found the queue
// empty.
package pipeline

import "errors"

// ErrStreamMismatch is returned when the consumed stream differs from the
// produced one: missing, duplicated, out-of-range or reordered values.
var ErrStreamMismatch = errors.New("pipeline: consumed stream does not match produced stream")

// ctxCheckEvery is how many consecutive failed attempts a loop makes
// between context checks.
const ctxCheckEvery = 64

// Source yields the producer's items in order.
type Source[T any] interface {
	// Next returns the next item, or false when the source is exhausted.
	Next() (T, bool)
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func() (T, bool)

// Next calls f.
func (f SourceFunc[T]) Next() (T, bool) { return f() }

// Range returns a Source of 0, 1, ..., n-1.
func Range(n uint64) Source[uint64] {
	var i uint64
	return SourceFunc[uint64](func() (uint64, bool) {
		if i >= n {
			return 0, false
		}
		v := i
		i++
		return v, true
	})
}

// Slice returns a Source over the given items.
func Slice[T any](items []T) Source[T] {
	i := 0
	return SourceFunc[T](func() (T, bool) {
		if i >= len(items) {
			var zero T
			return zero, false
		}
		v := items[i]
		i++
		return v, true
	})
}
