package ring

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// entry is the unit swapped into a slot: a value and the version it was
// published with. An entry is never modified while a slot points at it.
type entry[T any] struct {
	value   T
	version uint64
}

// slot owns two entries. cur is the published one; spare is the one the
// current owner of the slot (producer or consumer, decided by the indices)
// fills in before swapping it with cur.
type slot[T any] struct {
	cur   atomic.Pointer[entry[T]]
	spare *entry[T]
}

// Versioned is a lock-free SPSC (Single-Producer Single-Consumer) ring.
//
// WARNING: This ring is NOT safe for multiple producers or multiple consumers.
// The implementation includes runtime guards that panic if the SPSC contract
// is violated.
//
// Every successful Write and every successful Read bumps the version of the
// slot it touched by exactly one, so after N operations on a slot its
// version is N. Value and version are replaced together with a single
// compare-and-swap, so a reader can never see a value paired with the wrong
// version.
//
// One slot is always kept free to tell a full ring from an empty one:
// a ring of capacity C holds at most C-1 values.
type Versioned[T any] struct {
	slots []slot[T]
	mask  uint64

	_ cpu.CacheLinePad

	write    atomic.Uint64 // Written by producer, read by consumer
	writes   atomic.Uint64
	rejected atomic.Uint64
	writing  atomic.Uint32

	_ cpu.CacheLinePad

	read    atomic.Uint64 // Written by consumer, read by producer
	reads   atomic.Uint64
	misses  atomic.Uint64
	reading atomic.Uint32

	_ cpu.CacheLinePad

	retries atomic.Uint64
}

// New creates a Versioned ring.
// The capacity is rounded up to the next power of two; 0 yields capacity 1,
// which can never accept a value.
func New[T any](capacity int) (*Versioned[T], error) {
	n, err := roundCapacity(capacity)
	if err != nil {
		return nil, err
	}

	entries := make([]entry[T], 2*n)
	slots := make([]slot[T], n)
	for i := range slots {
		slots[i].cur.Store(&entries[2*i])
		slots[i].spare = &entries[2*i+1]
	}

	return &Versioned[T]{
		slots: slots,
		mask:  n - 1,
	}, nil
}

// MustNew is like New but panics if the capacity is invalid.
func MustNew[T any](capacity int) *Versioned[T] {
	r, err := New[T](capacity)
	if err != nil {
		panic(err)
	}
	return r
}

// Write publishes v into the next free slot.
// Returns false, without side effects, if the ring is full.
//
// SPSC CONTRACT: Only ONE goroutine may call Write().
func (r *Versioned[T]) Write(v T) bool {
	if !r.writing.CompareAndSwap(0, 1) {
		panic("ring: concurrent Write on SPSC Versioned ring - only one producer allowed")
	}
	defer r.writing.Store(0)

	w := r.write.Load()
	next := (w + 1) & r.mask

	// The full check and the index load happen here, in the same call that
	// acts on them.
	if next == r.read.Load() {
		r.rejected.Add(1)
		return false
	}

	s := &r.slots[w]
	fresh := s.spare
	for {
		cur := s.cur.Load()
		fresh.value = v
		fresh.version = cur.version + 1
		if s.cur.CompareAndSwap(cur, fresh) {
			s.spare = cur
			break
		}
		r.retries.Add(1)
	}

	r.writes.Add(1)

	// Publish: the slot swap above happens before this store.
	r.write.Store(next)
	return true
}

// Read removes and returns the oldest value.
// Returns false if the ring is empty.
// The consumed slot is reset to the zero value of T.
//
// SPSC CONTRACT: Only ONE goroutine may call Read().
func (r *Versioned[T]) Read() (T, bool) {
	if !r.reading.CompareAndSwap(0, 1) {
		panic("ring: concurrent Read on SPSC Versioned ring - only one consumer allowed")
	}
	defer r.reading.Store(0)

	var zero T

	rd := r.read.Load()
	if rd == r.write.Load() {
		r.misses.Add(1)
		return zero, false
	}

	s := &r.slots[rd]
	fresh := s.spare
	var v T
	for {
		cur := s.cur.Load()
		v = cur.value
		fresh.value = zero
		fresh.version = cur.version + 1
		if s.cur.CompareAndSwap(cur, fresh) {
			// Drop the reference held by the retired entry.
			cur.value = zero
			s.spare = cur
			break
		}
		r.retries.Add(1)
	}

	r.reads.Add(1)
	r.read.Store((rd + 1) & r.mask)
	return v, true
}

// Cap returns the physical number of slots (a power of two).
func (r *Versioned[T]) Cap() int {
	return len(r.slots)
}

// Usable returns how many values the ring can hold at once: Cap() - 1.
func (r *Versioned[T]) Usable() int {
	return len(r.slots) - 1
}

// Version returns the version tag of physical slot i&(Cap()-1).
// Intended for tests and diagnostics; it must not run concurrently
// with Write or Read.
func (r *Versioned[T]) Version(i int) uint64 {
	return r.slots[uint64(i)&r.mask].cur.Load().version
}

// Stats returns a snapshot of the ring's counters.
// Individual counters are loaded one by one and may be slightly out of step.
func (r *Versioned[T]) Stats() Stats {
	return Stats{
		Writes:          r.writes.Load(),
		WriteRejections: r.rejected.Load(),
		Reads:           r.reads.Load(),
		ReadMisses:      r.misses.Load(),
		Retries:         r.retries.Load(),
	}
}
