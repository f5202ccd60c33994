package ring

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// yieldEvery bounds how often a contended Claimed operation calls
// runtime.Gosched while it waits for another goroutine to finish with a slot.
const yieldEvery = 64

type cell[T any] struct {
	seq atomic.Uint64 // position this cell is ready for
	val T
}

// Claimed is a bounded, lock-free MPMC (Multi-Producer Multi-Consumer) ring.
//
// Unlike Versioned, a producer or consumer first claims a position with a
// compare-and-swap on the shared index and only then touches the slot, so
// two goroutines can never act on the same position. Each cell carries the
// logical position it is ready for; that number plays the role of the
// version tag.
//
// All Cap() slots are usable.
type Claimed[T any] struct {
	cells []cell[T]
	mask  uint64
	size  uint64

	_ cpu.CacheLinePad

	tail     atomic.Uint64 // next position to write, claimed by producers
	writes   atomic.Uint64
	rejected atomic.Uint64

	_ cpu.CacheLinePad

	head   atomic.Uint64 // next position to read, claimed by consumers
	reads  atomic.Uint64
	misses atomic.Uint64

	_ cpu.CacheLinePad

	retries atomic.Uint64
}

// NewClaimed creates a Claimed ring.
// The capacity is rounded up to the next power of two, with a minimum of 2:
// with a single cell the sequence of a full cell equals the next claim
// position and a write would overwrite an unread value.
func NewClaimed[T any](capacity int) (*Claimed[T], error) {
	n, err := roundCapacity(capacity)
	if err != nil {
		return nil, err
	}
	if n < 2 {
		n = 2
	}

	cells := make([]cell[T], n)
	for i := uint64(0); i < n; i++ {
		cells[i].seq.Store(i)
	}

	return &Claimed[T]{
		cells: cells,
		mask:  n - 1,
		size:  n,
	}, nil
}

// Write pushes v into the ring.
// Returns false if the ring is full.
// Safe to call concurrently from many producer goroutines.
func (q *Claimed[T]) Write(v T) bool {
	var spins uint32
	for {
		pos := q.tail.Load()
		c := &q.cells[pos&q.mask]
		diff := int64(c.seq.Load()) - int64(pos)

		switch {
		case diff == 0:
			if q.tail.CompareAndSwap(pos, pos+1) {
				c.val = v
				q.writes.Add(1)
				c.seq.Store(pos + 1)
				return true
			}
		case diff < 0:
			// The consumer of the previous lap has not freed this cell.
			q.rejected.Add(1)
			return false
		}

		// Lost the claim, or the cell still belongs to a previous lap.
		q.retries.Add(1)
		spins++
		if spins%yieldEvery == 0 {
			runtime.Gosched()
		}
	}
}

// Read pops the oldest value.
// Returns false if the ring is empty.
// Safe to call concurrently from many consumer goroutines.
func (q *Claimed[T]) Read() (T, bool) {
	var zero T
	var spins uint32
	for {
		pos := q.head.Load()
		c := &q.cells[pos&q.mask]
		diff := int64(c.seq.Load()) - int64(pos+1)

		switch {
		case diff == 0:
			if q.head.CompareAndSwap(pos, pos+1) {
				v := c.val
				c.val = zero
				q.reads.Add(1)
				// Hand the cell to the producer of the next lap.
				c.seq.Store(pos + q.size)
				return v, true
			}
		case diff < 0:
			q.misses.Add(1)
			return zero, false
		}

		q.retries.Add(1)
		spins++
		if spins%yieldEvery == 0 {
			runtime.Gosched()
		}
	}
}

// Cap returns the number of slots (a power of two).
func (q *Claimed[T]) Cap() int {
	return int(q.size)
}

// Stats returns a snapshot of the ring's counters.
func (q *Claimed[T]) Stats() Stats {
	return Stats{
		Writes:          q.writes.Load(),
		WriteRejections: q.rejected.Load(),
		Reads:           q.reads.Load(),
		ReadMisses:      q.misses.Load(),
		Retries:         q.retries.Load(),
	}
}
