package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/randomizedcoder/versioned-ring/internal/affinity"
	"github.com/randomizedcoder/versioned-ring/internal/done"
	"github.com/randomizedcoder/versioned-ring/internal/pace"
	"github.com/randomizedcoder/versioned-ring/internal/ring"
)

// Config describes one stress run: Items sequential values pushed through a
// versioned ring by one producer and drained by one consumer.
type Config struct {
	Items    uint64
	Capacity int

	Throttle        pace.Throttle
	ProducerBackoff pace.Backoff
	ConsumerBackoff pace.Backoff

	// ReportEvery is the progress interval; 0 disables progress reports.
	// ReportTicker picks the clock check behind it: "atomic" (default),
	// "batch" or "std"; see pace.ParseTicker.
	ReportEvery  time.Duration
	ReportTicker string
	OnProgress   func(ConsumerReport)

	// Pin binds the producer and consumer loops to ProducerCPU and
	// ConsumerCPU.
	Pin         bool
	ProducerCPU int
	ConsumerCPU int

	// OnRing, if set, is called with the ring before any goroutine starts.
	OnRing func(*ring.Versioned[uint64])

	Logger zerolog.Logger
}

// Result is the outcome of Run.
type Result struct {
	Producer ProducerReport
	Consumer ConsumerReport
	Summary  Summary
	Stats    ring.Stats
	Elapsed  time.Duration

	ProducerDigest uint64
	ConsumerDigest uint64
}

// reportBatch is how many consumer iterations a "batch" progress ticker
// lets pass between clock reads.
const reportBatch = 1024

// Run pushes 0..Items-1 through a fresh ring and verifies the consumed
// stream. The returned error wraps ErrStreamMismatch on a bad stream; the
// Result is filled in either way. A ring without usable slots (Capacity 0
// or 1) is rejected with ring.ErrInvalidCapacity, since no item could ever
// be written.
func Run(ctx context.Context, cfg Config) (Result, error) {
	r, err := ring.New[uint64](cfg.Capacity)
	if err != nil {
		return Result{}, err
	}
	if r.Usable() == 0 {
		return Result{}, fmt.Errorf("%w: capacity %d leaves no usable slot", ring.ErrInvalidCapacity, cfg.Capacity)
	}

	var ticker pace.Ticker
	if cfg.ReportEvery > 0 {
		if ticker, err = pace.ParseTicker(cfg.ReportTicker, cfg.ReportEvery, reportBatch); err != nil {
			return Result{}, fmt.Errorf("pipeline: %w", err)
		}
		defer ticker.Stop()
	}
	if cfg.OnRing != nil {
		cfg.OnRing(r)
	}

	flag := done.NewAtomic()
	produced := NewDigest()
	verifier := NewVerifier(cfg.Items)

	producer := &Producer[uint64]{
		Queue:    r,
		Flag:     flag,
		Throttle: cfg.Throttle,
		Backoff:  cfg.ProducerBackoff,
		OnWrite:  produced.Add,
	}
	consumer := &Consumer[uint64]{
		Queue:      r,
		Flag:       flag,
		Backoff:    cfg.ConsumerBackoff,
		Ticker:     ticker,
		OnProgress: cfg.OnProgress,
		Logger:     cfg.Logger,
	}

	cfg.Logger.Info().
		Uint64("items", cfg.Items).
		Int("capacity", r.Cap()).
		Int("usable", r.Usable()).
		Msg("[pipeline] starting")

	var res Result
	g, gctx := errgroup.WithContext(ctx)
	start := time.Now()

	g.Go(func() error {
		if err := pin(cfg.Pin, cfg.ProducerCPU, "producer", cfg.Logger); err != nil {
			flag.Finish()
			return err
		}
		rep, err := producer.Run(gctx, Range(cfg.Items))
		res.Producer = rep
		return err
	})
	g.Go(func() error {
		if err := pin(cfg.Pin, cfg.ConsumerCPU, "consumer", cfg.Logger); err != nil {
			return err
		}
		rep, err := consumer.Run(gctx, verifier.Observe)
		res.Consumer = rep
		return err
	})

	err = g.Wait()
	res.Elapsed = time.Since(start)
	res.Stats = r.Stats()
	res.Summary = verifier.Summary()
	res.ProducerDigest = produced.Sum64()
	res.ConsumerDigest = verifier.Sum64()
	if err != nil {
		return res, err
	}

	if err := verifier.Check(res.ProducerDigest); err != nil {
		return res, err
	}
	if res.Producer.Accepted != cfg.Items {
		return res, fmt.Errorf("%w: producer accepted %d of %d items", ErrStreamMismatch, res.Producer.Accepted, cfg.Items)
	}
	return res, nil
}

func pin(enabled bool, cpu int, role string, log zerolog.Logger) error {
	if !enabled {
		return nil
	}
	if err := affinity.Pin(cpu); err != nil {
		return fmt.Errorf("pipeline: pin %s: %w", role, err)
	}
	log.Debug().Int("cpu", cpu).Msgf("[pipeline] %s pinned", role)
	return nil
}
