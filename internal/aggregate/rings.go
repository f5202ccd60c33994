package aggregate

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/randomizedcoder/versioned-ring/internal/done"
	"github.com/randomizedcoder/versioned-ring/internal/ring"
)

// DefaultBatch is how many terms a worker folds into one partial sum before
// handing it to the aggregator.
const DefaultBatch = 4096

// lane is one worker's channel to the aggregator.
type lane struct {
	r    *ring.Versioned[float64]
	flag *done.AtomicFlag
	over bool
}

// RingsOptions tunes Rings. Zero values get defaults.
type RingsOptions struct {
	Capacity int // per-worker ring capacity, default 1024 (below 2 holds nothing)
	Batch    int // terms per partial sum, default DefaultBatch
}

// Rings splits the range across workers. Each worker sends partial sums over
// its own versioned ring; the calling goroutine is the single aggregator and
// polls every lane round-robin until all workers have finished and their
// rings are empty. One producer and one consumer per ring keeps every ring
// inside its SPSC contract.
func Rings(ctx context.Context, min, max, workers int, opts RingsOptions) (float64, error) {
	spans, err := Split(min, max, workers)
	if err != nil {
		return 0, err
	}
	if opts.Capacity < 2 {
		opts.Capacity = 1024
	}
	if opts.Batch < 1 {
		opts.Batch = DefaultBatch
	}

	lanes := make([]*lane, len(spans))
	for i := range lanes {
		r, err := ring.New[float64](opts.Capacity)
		if err != nil {
			return 0, err
		}
		lanes[i] = &lane{r: r, flag: done.NewAtomic()}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range spans {
		l := lanes[i]
		g.Go(func() error {
			defer l.flag.Finish()
			return work(gctx, l.r, s, opts.Batch)
		})
	}

	sum, aggErr := aggregate(gctx, lanes)
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return sum, aggErr
}

func work(ctx context.Context, r *ring.Versioned[float64], s Span, batch int) error {
	var partial float64
	n := 0
	send := func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		for attempt := 1; !r.Write(partial); attempt++ {
			if attempt%64 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
				runtime.Gosched()
			}
		}
		partial, n = 0, 0
		return nil
	}

	for i := s.Min; i < s.Max; i++ {
		partial += math.Sqrt(float64(i))
		n++
		if n == batch {
			if err := send(); err != nil {
				return err
			}
		}
	}
	if n > 0 {
		return send()
	}
	return nil
}

func aggregate(ctx context.Context, lanes []*lane) (float64, error) {
	var sum float64
	open := len(lanes)
	idle := 0
	for open > 0 {
		progressed := false
		for _, l := range lanes {
			if l.over {
				continue
			}
			if v, ok := l.r.Read(); ok {
				sum += v
				progressed = true
				continue
			}
			if l.flag.Finished() {
				if v, ok := l.r.Read(); ok {
					sum += v
					progressed = true
					continue
				}
				l.over = true
				open--
			}
		}

		if progressed {
			idle = 0
			continue
		}
		idle++
		if idle%64 == 0 {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			runtime.Gosched()
		}
	}
	return sum, nil
}
