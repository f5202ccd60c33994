package queue_test

import (
	"runtime"
	"testing"

	"github.com/randomizedcoder/versioned-ring/internal/queue"
	"github.com/randomizedcoder/versioned-ring/internal/ring"
)

// Sink variables to prevent compiler from eliminating benchmark loops
var sinkInt int
var sinkBool bool

// Direct type benchmarks (true performance floor)

func BenchmarkQueue_Channel_WriteRead_Direct(b *testing.B) {
	q := queue.NewChannel[int](1024)
	b.ReportAllocs()
	b.ResetTimer()

	var val int
	var ok bool
	for i := 0; i < b.N; i++ {
		q.Write(i)
		val, ok = q.Read()
	}
	sinkInt = val
	sinkBool = ok
}

func BenchmarkQueue_Locked_WriteRead_Direct(b *testing.B) {
	q := queue.NewLocked[int](1024)
	b.ReportAllocs()
	b.ResetTimer()

	var val int
	var ok bool
	for i := 0; i < b.N; i++ {
		q.Write(i)
		val, ok = q.Read()
	}
	sinkInt = val
	sinkBool = ok
}

func BenchmarkQueue_Versioned_WriteRead_Direct(b *testing.B) {
	q := ring.MustNew[int](1024)
	b.ReportAllocs()
	b.ResetTimer()

	var val int
	var ok bool
	for i := 0; i < b.N; i++ {
		q.Write(i)
		val, ok = q.Read()
	}
	sinkInt = val
	sinkBool = ok
}

// Interface benchmarks (with dynamic dispatch overhead)

func benchInterface(b *testing.B, q queue.Queue[int]) {
	b.ReportAllocs()
	b.ResetTimer()

	var val int
	var ok bool
	for i := 0; i < b.N; i++ {
		q.Write(i)
		val, ok = q.Read()
	}
	sinkInt = val
	sinkBool = ok
}

func BenchmarkQueue_Channel_WriteRead_Interface(b *testing.B) {
	benchInterface(b, queue.NewChannel[int](1024))
}

func BenchmarkQueue_Locked_WriteRead_Interface(b *testing.B) {
	benchInterface(b, queue.NewLocked[int](1024))
}

func BenchmarkQueue_Versioned_WriteRead_Interface(b *testing.B) {
	benchInterface(b, ring.MustNew[int](1024))
}

func BenchmarkQueue_Claimed_WriteRead_Interface(b *testing.B) {
	q, _ := ring.NewClaimed[int](1024)
	benchInterface(b, q)
}

func BenchmarkQueue_Sharded_WriteRead_Interface(b *testing.B) {
	q, err := queue.NewSharded[int](1024, 1)
	if err != nil {
		b.Fatal(err)
	}
	benchInterface(b, q)
}

// Cross-goroutine: one producer, one consumer

func benchSPSC(b *testing.B, q queue.Queue[int]) {
	done := make(chan struct{})

	go func() {
		for i := 0; i < b.N; i++ {
			for {
				if _, ok := q.Read(); ok {
					break
				}
				runtime.Gosched()
			}
		}
		close(done)
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for !q.Write(i) {
			runtime.Gosched()
		}
	}
	<-done
	b.StopTimer()
}

func BenchmarkQueue_Channel_SPSC(b *testing.B) {
	benchSPSC(b, queue.NewChannel[int](1024))
}

func BenchmarkQueue_Locked_SPSC(b *testing.B) {
	benchSPSC(b, queue.NewLocked[int](1024))
}

func BenchmarkQueue_Versioned_SPSC(b *testing.B) {
	benchSPSC(b, ring.MustNew[int](1024))
}
