package pace

import (
	"fmt"
	"sync/atomic"
	"time"
	_ "unsafe" // go:linkname
)

// nanotime is the runtime's monotonic clock in nanoseconds, without the
// cost of building a time.Time.
//
//go:linkname nanotime runtime.nanotime
func nanotime() int64

// Ticker tells a polling loop that its reporting interval has elapsed.
//
// Tick must be cheap: a consumer calls it on every loop iteration.
type Ticker interface {
	// Tick reports whether an interval has elapsed since the previous
	// true result. It never blocks.
	Tick() bool

	// Reset starts a new interval from now.
	Reset()

	// Stop releases the ticker's resources.
	Stop()
}

// ParseTicker maps a name to a progress Ticker with the given interval:
// "atomic" (or ""), "batch" (clock read every `every` calls) or "std".
// interval must be positive.
func ParseTicker(name string, interval time.Duration, every int) (Ticker, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("pace: ticker interval must be > 0, got %v", interval)
	}
	switch name {
	case "atomic", "":
		return NewAtomicTicker(interval), nil
	case "batch":
		return NewBatch(interval, every), nil
	case "std":
		return NewTicker(interval), nil
	default:
		return nil, fmt.Errorf("pace: unknown ticker %q (want atomic, batch or std)", name)
	}
}

// AtomicTicker reads the monotonic clock on every Tick and claims each
// elapsed interval with a CAS, so exactly one caller sees it even when
// several goroutines share the ticker.
type AtomicTicker struct {
	period int64 // nanoseconds
	last   atomic.Int64
}

// NewAtomicTicker creates an AtomicTicker whose first interval starts now.
func NewAtomicTicker(interval time.Duration) *AtomicTicker {
	t := &AtomicTicker{period: int64(interval)}
	t.last.Store(nanotime())
	return t
}

// Tick returns true once per elapsed interval.
func (a *AtomicTicker) Tick() bool {
	now := nanotime()
	last := a.last.Load()
	if now-last < a.period {
		return false
	}
	return a.last.CompareAndSwap(last, now)
}

func (a *AtomicTicker) Reset() { a.last.Store(nanotime()) }

func (a *AtomicTicker) Stop() {}

// Interval returns the ticker's interval.
func (a *AtomicTicker) Interval() time.Duration {
	return time.Duration(a.period)
}

// BatchTicker only looks at the clock on every N-th Tick. A consumer that
// calls Tick per item trades report punctuality for fewer clock reads.
// Not safe for concurrent use.
type BatchTicker struct {
	period int64
	every  int
	calls  int
	last   int64
}

// NewBatch creates a BatchTicker reading the clock every `every` calls
// (minimum 1).
func NewBatch(interval time.Duration, every int) *BatchTicker {
	return &BatchTicker{
		period: int64(interval),
		every:  max(every, 1),
		last:   nanotime(),
	}
}

// Tick returns true if, on a clock-reading call, the interval has elapsed.
func (b *BatchTicker) Tick() bool {
	b.calls++
	if b.calls < b.every {
		return false
	}
	b.calls = 0

	now := nanotime()
	if now-b.last < b.period {
		return false
	}
	b.last = now
	return true
}

// Reset clears the call count and starts a new interval.
func (b *BatchTicker) Reset() {
	b.calls = 0
	b.last = nanotime()
}

func (b *BatchTicker) Stop() {}

// Every returns how many calls pass between clock reads.
func (b *BatchTicker) Every() int {
	return b.every
}

// StdTicker polls a time.Ticker's channel without blocking. It is the
// reference the cheaper tickers are measured against.
type StdTicker struct {
	t      *time.Ticker
	period time.Duration
}

// NewTicker creates a StdTicker.
func NewTicker(interval time.Duration) *StdTicker {
	return &StdTicker{t: time.NewTicker(interval), period: interval}
}

// Tick returns true if a tick is pending on the channel.
func (s *StdTicker) Tick() bool {
	select {
	case <-s.t.C:
		return true
	default:
		return false
	}
}

func (s *StdTicker) Reset() { s.t.Reset(s.period) }

// Stop stops the underlying time.Ticker.
func (s *StdTicker) Stop() { s.t.Stop() }
