package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/randomizedcoder/versioned-ring/internal/done"
	"github.com/randomizedcoder/versioned-ring/internal/pace"
	"github.com/randomizedcoder/versioned-ring/internal/queue"
)

// ConsumerReport summarizes a consumer run.
type ConsumerReport struct {
	Received uint64 // items read
	Misses   uint64 // reads that found the queue empty
}

// Consumer drains a queue until its producer has finished.
type Consumer[T any] struct {
	Queue queue.Queue[T]
	Flag  done.Flag

	Backoff pace.Backoff // runs after every empty read

	// Ticker, if set, paces calls to OnProgress and progress log lines.
	Ticker     pace.Ticker
	OnProgress func(ConsumerReport)
	Logger     zerolog.Logger
}

// Run reads until it has seen the flag finished and, after that, an empty
// read. sink receives every item in order. Returns ctx.Err() if the context
// ends first.
func (c *Consumer[T]) Run(ctx context.Context, sink func(T)) (ConsumerReport, error) {
	backoff := c.Backoff
	if backoff == nil {
		backoff = pace.Yield{Every: ctxCheckEvery}
	}

	var rep ConsumerReport
	attempt := 0
	for {
		if c.Ticker != nil && c.Ticker.Tick() {
			c.progress(rep)
		}

		if v, ok := c.Queue.Read(); ok {
			attempt = 0
			rep.Received++
			sink(v)
			continue
		}
		rep.Misses++

		if c.Flag.Finished() {
			// Writes made before Finish are visible now; one more empty
			// read means the stream is over.
			if v, ok := c.Queue.Read(); ok {
				rep.Received++
				sink(v)
				continue
			}
			rep.Misses++
			if c.OnProgress != nil {
				c.OnProgress(rep)
			}
			c.Logger.Debug().Uint64("received", rep.Received).Msg("[consumer] producer finished, queue drained")
			return rep, nil
		}

		attempt++
		if attempt%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return rep, err
			}
		}
		backoff.Idle(attempt)
	}
}

func (c *Consumer[T]) progress(rep ConsumerReport) {
	c.Logger.Info().
		Uint64("received", rep.Received).
		Uint64("misses", rep.Misses).
		Msg("[consumer] progress")
	if c.OnProgress != nil {
		c.OnProgress(rep)
	}
}
