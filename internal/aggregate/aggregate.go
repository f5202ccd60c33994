// Package aggregate sums √i over a range three ways, to show why handing
// partial results to a single owner beats sharing one accumulator.
//
//   - Serial: one goroutine, the reference result
//   - Locked: workers add every term into a mutex-guarded sum; correct but
//     dominated by lock traffic
//   - Rings: each worker owns an SPSC versioned ring to a single aggregator,
//     which is the only goroutine that touches the total
//
// Workers adding into a shared float with no lock would be a data race, so
// there is no such variant.
package aggregate

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRange is returned for an empty or inverted range or a worker
// count below 1.
var ErrInvalidRange = errors.New("aggregate: invalid range")

// Span is a half-open range [Min, Max).
type Span struct {
	Min, Max int
}

// Split divides [min, max) into at most workers contiguous, non-overlapping
// spans that together cover every value exactly once.
func Split(min, max, workers int) ([]Span, error) {
	if min >= max || workers < 1 {
		return nil, fmt.Errorf("%w: [%d, %d) with %d workers", ErrInvalidRange, min, max, workers)
	}

	total := max - min
	if workers > total {
		workers = total
	}

	spans := make([]Span, 0, workers)
	size, extra := total/workers, total%workers
	lo := min
	for i := 0; i < workers; i++ {
		hi := lo + size
		if i < extra {
			hi++
		}
		spans = append(spans, Span{Min: lo, Max: hi})
		lo = hi
	}
	return spans, nil
}

// Serial returns Σ√i for i in [min, max).
func Serial(min, max int) float64 {
	var sum float64
	for i := min; i < max; i++ {
		sum += math.Sqrt(float64(i))
	}
	return sum
}
