package done_test

import (
	"context"
	"testing"

	"github.com/randomizedcoder/versioned-ring/internal/done"
)

var sinkBool bool

func benchFinished(b *testing.B, f done.Flag) {
	b.ReportAllocs()
	b.ResetTimer()

	var result bool
	for i := 0; i < b.N; i++ {
		result = f.Finished()
	}
	sinkBool = result
}

func BenchmarkFinished_Context(b *testing.B) {
	benchFinished(b, done.NewContext(context.Background()))
}

func BenchmarkFinished_Atomic(b *testing.B) {
	benchFinished(b, done.NewAtomic())
}

// Parallel readers of one flag, as when several consumers watch a producer.
func BenchmarkFinished_Atomic_Parallel(b *testing.B) {
	f := done.NewAtomic()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		var result bool
		for pb.Next() {
			result = f.Finished()
		}
		_ = result
	})
}
