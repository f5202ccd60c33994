// Package pace holds the waiting policies that the rings leave to their
// callers.
//
// A ring never blocks: a failed Write means backpressure and a failed Read
// means no data yet. What happens next is decided here:
//   - Throttle: how a producer slows itself down between accepted items
//   - Backoff: what a producer or consumer does after a failed attempt
//   - Ticker: when a polling loop should do its periodic work (progress
//     reports), checked without a channel receive on every iteration
package pace
