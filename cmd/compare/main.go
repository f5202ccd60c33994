// Command compare times the queue implementations against each other, or the
// cost of the per-iteration done/tick checks a polling loop pays.
//
// Usage:
//
//	go run ./cmd/compare -n 10000000 -size 1024
//	go run ./cmd/compare -mode poll -n 10000000
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/randomizedcoder/versioned-ring/internal/done"
	"github.com/randomizedcoder/versioned-ring/internal/pace"
	"github.com/randomizedcoder/versioned-ring/internal/queue"
	"github.com/randomizedcoder/versioned-ring/internal/ring"
)

type candidate struct {
	name string
	run  func(n int) time.Duration
}

func main() {
	iterations := flag.Int("n", 10_000_000, "number of iterations")
	size := flag.Int("size", 1024, "queue size")
	mode := flag.String("mode", "queue", "what to compare: queue or poll")
	flag.Parse()

	var candidates []candidate
	switch *mode {
	case "queue":
		fmt.Printf("Benchmarking queues (%d iterations, size=%d)\n", *iterations, *size)
		candidates = queues(*size)
	case "poll":
		fmt.Printf("Benchmarking done+tick checks (%d iterations)\n", *iterations)
		candidates = pollers()
	default:
		fmt.Fprintf(os.Stderr, "unknown -mode %q (want queue or poll)\n", *mode)
		os.Exit(2)
	}
	fmt.Println("─────────────────────────────────────────────────")

	base := -1.0
	for _, c := range candidates {
		d := c.run(*iterations)
		perOp := float64(d.Nanoseconds()) / float64(*iterations)
		if base < 0 {
			base = perOp
		}
		fmt.Printf("  %-22s %12v  %8.2f ns/op  %6.2fx\n", c.name, d, perOp, base/perOp)
	}
	fmt.Println("\n(relative to the first row; higher is faster)")
}

// pushPop writes then reads one value per iteration on a single goroutine.
func pushPop(q queue.Queue[int]) func(n int) time.Duration {
	return func(n int) time.Duration {
		start := time.Now()
		for i := 0; i < n; i++ {
			q.Write(i)
			q.Read()
		}
		return time.Since(start)
	}
}

func queues(size int) []candidate {
	sharded, err := queue.NewSharded[int](size, 1)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	versioned, err := ring.New[int](size)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	claimed, err := ring.NewClaimed[int](size)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	return []candidate{
		{"Channel", pushPop(queue.NewChannel[int](size))},
		{"Locked", pushPop(queue.NewLocked[int](size))},
		{"Sharded(1)", pushPop(sharded)},
		{"Versioned", pushPop(versioned)},
		{"Claimed", pushPop(claimed)},
	}
}

// poll checks a done flag and a ticker once per iteration, the two checks a
// consumer loop does between reads.
func poll(flag done.Flag, ticker pace.Ticker) func(n int) time.Duration {
	return func(n int) time.Duration {
		defer ticker.Stop()
		start := time.Now()
		for i := 0; i < n; i++ {
			_ = flag.Finished()
			_ = ticker.Tick()
		}
		return time.Since(start)
	}
}

func pollers() []candidate {
	// Long interval so we measure check overhead, not actual ticks.
	interval := time.Hour
	return []candidate{
		{"Context+StdTicker", poll(done.NewContext(context.Background()), pace.NewTicker(interval))},
		{"Atomic+AtomicTicker", poll(done.NewAtomic(), pace.NewAtomicTicker(interval))},
		{"Atomic+BatchTicker", poll(done.NewAtomic(), pace.NewBatch(interval, 1000))},
	}
}
