// Command sum computes Σ√i over [0, max) serially, with mutex-guarded
// workers, and with one versioned ring per worker feeding a single
// aggregator, and prints how long each took.
//
// Usage:
//
//	go run ./cmd/sum -max 10000000 -workers 8 -capacity 1024
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/randomizedcoder/versioned-ring/internal/aggregate"
)

func main() {
	upper := flag.Int("max", 10_000_000, "sum √i for i in [0, max)")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	capacity := flag.Int("capacity", 1024, "ring capacity per worker")
	flag.Parse()

	if _, err := maxprocs.Set(); err != nil {
		log.Err(err).Msg("[sum] setting GOMAXPROCS failed")
	}

	fmt.Printf("Summing √i for i in [0, %d) with %d workers (GOMAXPROCS=%d)\n",
		*upper, *workers, runtime.GOMAXPROCS(0))
	fmt.Println("─────────────────────────────────────────────────")

	start := time.Now()
	want := aggregate.Serial(0, *upper)
	serialDur := time.Since(start)

	start = time.Now()
	locked, err := aggregate.Locked(0, *upper, *workers)
	if err != nil {
		log.Err(err).Msg("[sum] locked")
		os.Exit(1)
	}
	lockedDur := time.Since(start)

	start = time.Now()
	rings, err := aggregate.Rings(context.Background(), 0, *upper, *workers, aggregate.RingsOptions{Capacity: *capacity})
	if err != nil {
		log.Err(err).Msg("[sum] rings")
		os.Exit(1)
	}
	ringsDur := time.Since(start)

	fmt.Printf("  %-8s %20.6f  %12v\n", "Serial", want, serialDur)
	fmt.Printf("  %-8s %20.6f  %12v  (%.2fx serial)\n", "Locked", locked, lockedDur, ratio(serialDur, lockedDur))
	fmt.Printf("  %-8s %20.6f  %12v  (%.2fx serial)\n", "Rings", rings, ringsDur, ratio(serialDur, ringsDur))

	// Summation order differs between strategies; allow float drift.
	tol := 1e-9 * math.Max(1, math.Abs(want))
	if math.Abs(locked-want) > tol || math.Abs(rings-want) > tol {
		log.Error().Float64("serial", want).Float64("locked", locked).Float64("rings", rings).Msg("[sum] results disagree")
		os.Exit(1)
	}
}

func ratio(base, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(base) / float64(d)
}
