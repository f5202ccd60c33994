// Package ring provides fixed-capacity, lock-free ring buffers.
//
// Two implementations are offered:
//   - Versioned: single-producer single-consumer ring whose slots carry a
//     value together with a version tag, swapped as a unit by CAS
//   - Claimed: bounded multi-producer multi-consumer ring that reserves a
//     slot with a CAS on the shared index before touching it
//
// Neither ring blocks. Write returns false when the ring is full and Read
// returns false when it is empty; what to do next (spin, yield, sleep, drop)
// is up to the caller.
//
// # Versioned Safety (IMPORTANT)
//
// Versioned is a Single-Producer Single-Consumer (SPSC) ring.
// It is NOT safe for multiple goroutines to call Write() or Read() concurrently.
// Runtime guards panic on concurrent misuse. Use Claimed when more than one
// producer or consumer is needed.
package ring

import (
	"errors"
	"fmt"
)

// MaxCapacity is the largest capacity a ring can be created with.
const MaxCapacity uint64 = 1 << 32

// ErrInvalidCapacity is returned when the requested capacity is negative or
// cannot be rounded up to a power of two within MaxCapacity.
var ErrInvalidCapacity = errors.New("ring: invalid capacity")

// Stats is a snapshot of a ring's operation counters.
//
// Counters only grow. They are meant for monitoring; they must not be used
// to decide whether a Write or Read would succeed.
type Stats struct {
	Writes          uint64 // successful writes
	WriteRejections uint64 // writes refused because the ring was full
	Reads           uint64 // successful reads
	ReadMisses      uint64 // reads that found the ring empty
	Retries         uint64 // failed CAS attempts that were retried
}

// roundCapacity returns the smallest power of two >= requested, with a
// minimum of 1.
func roundCapacity(requested int) (uint64, error) {
	if requested < 0 || uint64(requested) > MaxCapacity {
		return 0, fmt.Errorf("%w: %d (must be between 0 and %d)", ErrInvalidCapacity, requested, MaxCapacity)
	}

	n := uint64(1)
	for n < uint64(requested) {
		n <<= 1
	}
	return n, nil
}
