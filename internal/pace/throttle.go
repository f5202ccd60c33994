package pace

import (
	"context"
	"time"

	"github.com/valyala/fastrand"
	"golang.org/x/time/rate"
)

// Throttle paces a producer. Pause is called after the i-th accepted item
// (counting from 0) and returns ctx.Err() if the context ended while
// pausing.
type Throttle interface {
	Pause(ctx context.Context, i int) error
}

type never struct{}

// Never returns a Throttle that never pauses.
func Never() Throttle { return never{} }

func (never) Pause(context.Context, int) error { return nil }

// EveryN sleeps for a fixed duration every n items.
//
// With n=100 and d=1µs this is the classic "slow the writer down a little"
// loop used to let a consumer catch up.
type EveryN struct {
	n int
	d time.Duration
}

// NewEveryN creates an EveryN throttle. n < 1 or d <= 0 disables pausing.
func NewEveryN(n int, d time.Duration) *EveryN {
	return &EveryN{n: n, d: d}
}

// Pause sleeps when i is a multiple of n.
func (e *EveryN) Pause(ctx context.Context, i int) error {
	if e.n < 1 || e.d <= 0 || i%e.n != 0 {
		return nil
	}
	return sleep(ctx, e.d)
}

// Rate caps the producer at a steady number of items per second using a
// token bucket.
type Rate struct {
	l *rate.Limiter
}

// NewRate creates a Rate throttle. burst < 1 is treated as 1.
func NewRate(perSecond float64, burst int) *Rate {
	if burst < 1 {
		burst = 1
	}
	return &Rate{l: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Pause waits for the next token.
func (r *Rate) Pause(ctx context.Context, _ int) error {
	return r.l.Wait(ctx)
}

// Jitter sleeps for a random duration in [0, limit) every n items. Random
// pauses shake out interleavings a fixed cadence never produces.
type Jitter struct {
	n     int
	limit uint32 // nanoseconds
}

// NewJitter creates a Jitter throttle. limit is capped at ~4.29s.
func NewJitter(n int, limit time.Duration) *Jitter {
	limit = min(max(limit, 0), time.Duration(^uint32(0)))
	return &Jitter{n: n, limit: uint32(limit)}
}

// Pause sleeps for a random duration when i is a multiple of n.
func (j *Jitter) Pause(ctx context.Context, i int) error {
	if j.n < 1 || j.limit == 0 || i%j.n != 0 {
		return nil
	}
	return sleep(ctx, time.Duration(fastrand.Uint32n(j.limit)))
}

// Chain runs several throttles in order, stopping at the first error.
type Chain []Throttle

// Pause calls every throttle in the chain.
func (c Chain) Pause(ctx context.Context, i int) error {
	for _, t := range c {
		if err := t.Pause(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// sleep waits for d or until ctx ends. Pauses up to a millisecond use
// time.Sleep and check the context once afterwards.
func sleep(ctx context.Context, d time.Duration) error {
	if d > time.Millisecond {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	time.Sleep(d)
	return ctx.Err()
}
