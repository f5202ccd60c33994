// Package combined holds benchmarks that run the rings, queues, done flags
// and tickers together in the loops they are used in.
//
// A consumer loop pays for the done check, the tick check and the read on
// every iteration; measuring them together captures interactions an
// isolated micro-benchmark misses.
package combined
