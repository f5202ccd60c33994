package aggregate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/randomizedcoder/versioned-ring/internal/aggregate"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSplit(t *testing.T) {
	testCases := []struct {
		name             string
		min, max, worker int
		want             []aggregate.Span
	}{
		{"even", 0, 8, 4, []aggregate.Span{{0, 2}, {2, 4}, {4, 6}, {6, 8}}},
		{"remainder", 0, 10, 3, []aggregate.Span{{0, 4}, {4, 7}, {7, 10}}},
		{"more workers than values", 5, 7, 8, []aggregate.Span{{5, 6}, {6, 7}}},
		{"single", 3, 4, 1, []aggregate.Span{{3, 4}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := aggregate.Split(tc.min, tc.max, tc.worker)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestSplit_CoversEveryValueOnce(t *testing.T) {
	spans, err := aggregate.Split(1, 1_000_003, 7)
	require.NoError(t, err)

	next := 1
	for _, s := range spans {
		require.Equal(t, next, s.Min, "spans must be contiguous")
		require.Less(t, s.Min, s.Max)
		next = s.Max
	}
	require.Equal(t, 1_000_003, next)
}

func TestSplit_Invalid(t *testing.T) {
	for _, tc := range [][3]int{{5, 5, 1}, {6, 5, 1}, {0, 10, 0}} {
		_, err := aggregate.Split(tc[0], tc[1], tc[2])
		require.ErrorIs(t, err, aggregate.ErrInvalidRange)
	}
}

func TestSerial(t *testing.T) {
	// √0 + √1 + √2 + √3 + √4
	require.InDelta(t, 0+1+1.4142135623730951+1.7320508075688772+2, aggregate.Serial(0, 5), 1e-12)
	require.Zero(t, aggregate.Serial(3, 3))
}

func TestLocked_MatchesSerial(t *testing.T) {
	const max = 200_000
	want := aggregate.Serial(0, max)

	got, err := aggregate.Locked(0, max, 4)
	require.NoError(t, err)
	require.InEpsilon(t, want, got, 1e-9)
}

func TestRings_MatchesSerial(t *testing.T) {
	const max = 2_000_000
	want := aggregate.Serial(0, max)

	testCases := []struct {
		name    string
		workers int
		opts    aggregate.RingsOptions
	}{
		{"defaults", 4, aggregate.RingsOptions{}},
		{"tiny rings", 8, aggregate.RingsOptions{Capacity: 2, Batch: 1000}},
		{"one worker", 1, aggregate.RingsOptions{Batch: 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := aggregate.Rings(context.Background(), 0, max, tc.workers, tc.opts)
			require.NoError(t, err)
			require.InEpsilon(t, want, got, 1e-9)
		})
	}
}

func TestRings_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := aggregate.Rings(ctx, 0, 10_000_000, 4, aggregate.RingsOptions{Capacity: 2, Batch: 1})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRings_InvalidRange(t *testing.T) {
	_, err := aggregate.Rings(context.Background(), 10, 0, 2, aggregate.RingsOptions{})
	require.ErrorIs(t, err, aggregate.ErrInvalidRange)
}
