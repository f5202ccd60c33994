// Package done provides the out-of-band "producer finished" signal that a
// consumer checks when a ring read comes back empty.
//
// An empty Read only means "no data yet". The consumer may stop polling once
// it has observed Finished() == true and, after that observation, a Read
// that still returns false. The producer calls Finish only after its last
// successful Write, so every value it wrote is visible by then.
//
// This package offers two implementations of the Flag interface:
//   - AtomicFlag: a single atomic.Bool
//   - ContextFlag: backed by context.Context cancellation
package done

// Flag is a one-way completion signal.
//
// Implementations must be safe for concurrent use:
//   - Multiple goroutines may call Finished() concurrently
//   - Finish() may be called concurrently with Finished()
type Flag interface {
	// Finished reports whether Finish has been called.
	Finished() bool

	// Finish marks the producer as done. Safe to call multiple times.
	Finish()
}
