package queue_test

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/randomizedcoder/versioned-ring/internal/queue"
)

// TestLockedQueue_Concurrent runs several producers and consumers against
// the mutex-guarded queue. Nothing may be lost or duplicated.
//
// Run with: go test -race ./internal/queue
func TestLockedQueue_Concurrent(t *testing.T) {
	const (
		N         = 40_000
		producers = 4
		consumers = 4
		per       = N / producers
	)

	q := queue.NewLocked[int](64)
	seen := make([]int32, N)
	var received atomic.Int64

	var wg sync.WaitGroup
	for c := 0; c < consumers; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for received.Load() < N {
				v, ok := q.Read()
				if !ok {
					runtime.Gosched()
					continue
				}
				atomic.AddInt32(&seen[v], 1)
				received.Add(1)
			}
		}()
	}

	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(from int) {
			defer wg.Done()
			for i := from; i < from+per; i++ {
				for !q.Write(i) {
					runtime.Gosched()
				}
			}
		}(p * per)
	}

	wg.Wait()

	for i := 0; i < N; i++ {
		if seen[i] != 1 {
			t.Fatalf("value %d seen %d times (expected 1)", i, seen[i])
		}
	}
}

// TestShardedQueue_MultiProducer drives the sharded ring with one producer
// ID per goroutine and a single consumer.
func TestShardedQueue_MultiProducer(t *testing.T) {
	const (
		N         = 40_000
		producers = 4
		per       = N / producers
	)

	q, err := queue.NewSharded[int](1024, producers)
	if err != nil {
		t.Fatalf("NewSharded: %v", err)
	}

	var pg sync.WaitGroup
	for p := 0; p < producers; p++ {
		pg.Add(1)
		go func(id uint64, from int) {
			defer pg.Done()
			for i := from; i < from+per; i++ {
				for !q.WriteFrom(id, i) {
					runtime.Gosched()
				}
			}
		}(uint64(p), p*per)
	}

	seen := make([]int, N)
	for received := 0; received < N; {
		v, ok := q.Read()
		if !ok {
			runtime.Gosched()
			continue
		}
		seen[v]++
		received++
	}
	pg.Wait()

	for i := 0; i < N; i++ {
		if seen[i] != 1 {
			t.Fatalf("value %d seen %d times (expected 1)", i, seen[i])
		}
	}
}
