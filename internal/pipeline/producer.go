package pipeline

import (
	"context"

	"github.com/randomizedcoder/versioned-ring/internal/done"
	"github.com/randomizedcoder/versioned-ring/internal/pace"
	"github.com/randomizedcoder/versioned-ring/internal/queue"
)

// ProducerReport summarizes a producer run.
type ProducerReport struct {
	Accepted   uint64 // items the queue accepted
	Rejections uint64 // writes refused because the queue was full
}

// Producer writes every item of a Source into a queue.
//
// Zero-valued optional fields get defaults: no throttle and a Yield backoff.
type Producer[T any] struct {
	Queue queue.Queue[T]
	Flag  done.Flag

	Throttle pace.Throttle // paces accepted items
	Backoff  pace.Backoff  // runs after every rejected write

	// OnWrite, if set, is called with each accepted item, in order.
	OnWrite func(T)
}

// Run writes items until src is exhausted or ctx ends. A rejected write is
// retried until it succeeds. The flag is marked finished when Run returns,
// whatever the reason, so a consumer never waits forever.
func (p *Producer[T]) Run(ctx context.Context, src Source[T]) (ProducerReport, error) {
	defer p.Flag.Finish()

	throttle := p.Throttle
	if throttle == nil {
		throttle = pace.Never()
	}
	backoff := p.Backoff
	if backoff == nil {
		backoff = pace.Yield{Every: ctxCheckEvery}
	}

	var rep ProducerReport
	for i := 0; ; i++ {
		v, ok := src.Next()
		if !ok {
			return rep, nil
		}

		for attempt := 1; !p.Queue.Write(v); attempt++ {
			rep.Rejections++
			if attempt%ctxCheckEvery == 0 {
				if err := ctx.Err(); err != nil {
					return rep, err
				}
			}
			backoff.Idle(attempt)
		}
		rep.Accepted++
		if p.OnWrite != nil {
			p.OnWrite(v)
		}

		if err := throttle.Pause(ctx, i); err != nil {
			return rep, err
		}
	}
}
