package pace

import (
	"fmt"
	"runtime"
	"time"
)

// Backoff decides what a caller does after a failed Write or Read.
// attempt counts consecutive failures, starting at 1.
type Backoff interface {
	Idle(attempt int)
}

// Spin retries immediately. Lowest latency, burns a core.
type Spin struct{}

// Idle does nothing.
func (Spin) Idle(int) {}

// Yield calls runtime.Gosched every N failed attempts.
type Yield struct {
	Every int
}

// Idle yields the processor when attempt is a multiple of Every.
func (y Yield) Idle(attempt int) {
	if y.Every <= 1 || attempt%y.Every == 0 {
		runtime.Gosched()
	}
}

// Sleep parks the goroutine for a fixed duration after every failure.
type Sleep struct {
	D time.Duration
}

// Idle sleeps for D.
func (s Sleep) Idle(int) {
	time.Sleep(s.D)
}

// ParseBackoff maps a name to a Backoff: "spin", "yield" (Gosched every 64
// attempts) or "sleep" (d per attempt, 50µs if d <= 0).
func ParseBackoff(name string, d time.Duration) (Backoff, error) {
	switch name {
	case "spin":
		return Spin{}, nil
	case "yield", "":
		return Yield{Every: 64}, nil
	case "sleep":
		if d <= 0 {
			d = 50 * time.Microsecond
		}
		return Sleep{D: d}, nil
	default:
		return nil, fmt.Errorf("pace: unknown backoff %q (want spin, yield or sleep)", name)
	}
}
