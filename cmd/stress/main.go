// Command stress pushes a sequence of integers through a versioned SPSC ring
// and verifies that the consumer saw every value exactly once, in order.
//
// Usage:
//
//	go run ./cmd/stress -n 1000000 -capacity 1023
//	go run ./cmd/stress -backoff sleep -producer-backoff spin -ticker batch
//	go run ./cmd/stress -config stress.yaml -metrics-addr :9100
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	vm "github.com/VictoriaMetrics/metrics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/randomizedcoder/versioned-ring/internal/config"
	"github.com/randomizedcoder/versioned-ring/internal/metrics"
	"github.com/randomizedcoder/versioned-ring/internal/pipeline"
	"github.com/randomizedcoder/versioned-ring/internal/ring"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Err(err).Msg("[stress] failed")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	lvl, _ := zerolog.ParseLevel(cfg.Log.Level)
	zerolog.SetGlobalLevel(lvl)

	if _, err := maxprocs.Set(); err != nil {
		return fmt.Errorf("set GOMAXPROCS: %w", err)
	}
	log.Info().Msgf("[stress] GOMAXPROCS=%d", runtime.GOMAXPROCS(0))

	pc, err := cfg.Pipeline(log.Logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Addr != "" {
		vm.ExposeMetadata(true)
		reg := metrics.New()
		reg.WithProcess = true
		pc.OnRing = func(r *ring.Versioned[uint64]) { reg.RegisterRing("stress", r.Stats) }
		pc.OnProgress = reg.ConsumerProgress("stress")

		srv := metrics.NewServer(cfg.Metrics.Addr, reg, log.Logger)
		go func() {
			if err := srv.ListenAndServe(); err != nil {
				log.Err(err).Msg("[metrics] server stopped")
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				log.Err(err).Msg("[metrics] shutdown")
			}
		}()
	}

	res, err := pipeline.Run(ctx, pc)

	s := res.Summary
	log.Info().
		Uint64("accepted", res.Producer.Accepted).
		Uint64("rejections", res.Producer.Rejections).
		Uint64("received", res.Consumer.Received).
		Uint64("misses", res.Consumer.Misses).
		Uint64("missing", s.Missing).
		Uint64("duplicates", s.Duplicates).
		Uint64("reordered", s.Reordered).
		Uint64("cas_retries", res.Stats.Retries).
		Str("producer_digest", fmt.Sprintf("%016x", res.ProducerDigest)).
		Str("consumer_digest", fmt.Sprintf("%016x", res.ConsumerDigest)).
		Dur("elapsed", res.Elapsed).
		Msg("[stress] done")

	if err != nil {
		return fmt.Errorf("stress run: %w", err)
	}

	perItem := float64(res.Elapsed.Nanoseconds()) / float64(max(res.Consumer.Received, 1))
	log.Info().Msgf("[stress] verified %d items, %.2f ns/item", res.Consumer.Received, perItem)
	return nil
}

// parseArgs builds the run configuration: defaults, then the -config file
// if given, then any flag set on the command line.
func parseArgs(args []string) (config.Stress, error) {
	fs := flag.NewFlagSet("stress", flag.ContinueOnError)
	def := config.Default()
	path := fs.String("config", "", "YAML config file (flags override it)")
	items := fs.Uint64("n", def.Items, "number of items to push")
	capacity := fs.Int("capacity", def.Capacity, "requested ring capacity (rounded up to a power of two)")
	delayEvery := fs.Int("delay-every", def.Producer.DelayEvery, "pause the producer every N items (0 = never)")
	delay := fs.Duration("delay", def.Producer.Delay, "producer pause length")
	rate := fs.Float64("rate", def.Producer.Rate, "producer items/second (0 = unlimited)")
	jitter := fs.Duration("jitter", def.Producer.Jitter, "max random producer pause (0 = off)")
	backoff := fs.String("backoff", def.Consumer.Backoff, "consumer backoff on an empty read: spin, yield or sleep")
	producerBackoff := fs.String("producer-backoff", def.Producer.Backoff, "producer backoff on a full ring: spin, yield or sleep")
	ticker := fs.String("ticker", def.Consumer.Ticker, "progress ticker: atomic, batch or std")
	pin := fs.Bool("pin", def.Pin.Enabled, "pin producer and consumer to CPUs")
	metricsAddr := fs.String("metrics-addr", def.Metrics.Addr, "serve /metrics on this address (empty = off)")
	level := fs.String("log-level", def.Log.Level, "log level")
	report := fs.Duration("report", def.Consumer.ReportEvery, "progress report interval (0 = off)")
	if err := fs.Parse(args); err != nil {
		return config.Stress{}, err
	}

	cfg := def
	if *path != "" {
		var err error
		if cfg, err = config.Load(*path); err != nil {
			return config.Stress{}, err
		}
	}

	// Only flags given on the command line override the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "n":
			cfg.Items = *items
		case "capacity":
			cfg.Capacity = *capacity
		case "delay-every":
			cfg.Producer.DelayEvery = *delayEvery
		case "delay":
			cfg.Producer.Delay = *delay
		case "rate":
			cfg.Producer.Rate = *rate
		case "jitter":
			cfg.Producer.Jitter = *jitter
		case "backoff":
			cfg.Consumer.Backoff = *backoff
		case "producer-backoff":
			cfg.Producer.Backoff = *producerBackoff
		case "ticker":
			cfg.Consumer.Ticker = *ticker
		case "pin":
			cfg.Pin.Enabled = *pin
		case "metrics-addr":
			cfg.Metrics.Addr = *metricsAddr
		case "log-level":
			cfg.Log.Level = *level
		case "report":
			cfg.Consumer.ReportEvery = *report
		}
	})

	return cfg, nil
}
