// Package config loads the stress command's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/randomizedcoder/versioned-ring/internal/pace"
	"github.com/randomizedcoder/versioned-ring/internal/pipeline"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid")

// Stress is the whole stress-run configuration, one field per YAML
// section.
type Stress struct {
	Items    uint64   `yaml:"items"`
	Capacity int      `yaml:"capacity"`
	Producer Producer `yaml:"producer"`
	Consumer Consumer `yaml:"consumer"`
	Pin      Pin      `yaml:"pin"`
	Metrics  Metrics  `yaml:"metrics"`
	Log      Log      `yaml:"log"`
}

// Producer paces the writer and picks what it does when the ring is full.
// Delay, Rate and Jitter combine; zero values switch each one off.
type Producer struct {
	DelayEvery int           `yaml:"delay_every"`
	Delay      time.Duration `yaml:"delay"`
	Rate       float64       `yaml:"rate"`   // items/second, 0 = unlimited
	Jitter     time.Duration `yaml:"jitter"` // max random pause, 0 = off
	Backoff    string        `yaml:"backoff"`
}

// Consumer picks the reader's idle policy and its progress reporting.
// Ticker is "atomic", "batch" or "std".
type Consumer struct {
	Backoff     string        `yaml:"backoff"`
	ReportEvery time.Duration `yaml:"report_every"`
	Ticker      string        `yaml:"ticker"`
}

// Pin binds the producer and consumer OS threads to CPUs (Linux only).
type Pin struct {
	Enabled     bool `yaml:"enabled"`
	ProducerCPU int  `yaml:"producer_cpu"`
	ConsumerCPU int  `yaml:"consumer_cpu"`
}

// Metrics enables the /metrics endpoint when Addr is non-empty.
type Metrics struct {
	Addr string `yaml:"addr"`
}

// Log sets the zerolog level by name.
type Log struct {
	Level string `yaml:"level"`
}

// Default returns the classic stress run: a million items through a
// 1023-slot request (1024 physical), with a 1µs pause every 100 items.
func Default() Stress {
	return Stress{
		Items:    1_000_000,
		Capacity: 1023,
		Producer: Producer{
			DelayEvery: 100,
			Delay:      time.Microsecond,
			Backoff:    "yield",
		},
		Consumer: Consumer{
			Backoff:     "yield",
			ReportEvery: time.Second,
			Ticker:      "atomic",
		},
		Pin: Pin{ConsumerCPU: 1},
		Log: Log{Level: "info"},
	}
}

// Load reads a YAML file over Default. Keys missing from the file keep
// their default values.
func Load(path string) (Stress, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Stress{}, fmt.Errorf("resolve config path: %w", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return Stress{}, fmt.Errorf("read config yaml file %s: %w", abs, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Stress{}, fmt.Errorf("%s: %w", abs, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default.
func Parse(data []byte) (Stress, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Stress{}, fmt.Errorf("unmarshal yaml: %w", err)
	}
	return cfg, nil
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (s Stress) Validate() error {
	switch {
	case s.Items == 0:
		return fmt.Errorf("%w: items must be > 0", ErrInvalidConfig)
	case s.Capacity < 2:
		return fmt.Errorf("%w: capacity %d holds no values (need >= 2)", ErrInvalidConfig, s.Capacity)
	case s.Producer.DelayEvery < 0:
		return fmt.Errorf("%w: producer.delay_every must be >= 0", ErrInvalidConfig)
	case s.Producer.Delay < 0 || s.Producer.Jitter < 0:
		return fmt.Errorf("%w: producer delays must be >= 0", ErrInvalidConfig)
	case s.Producer.Rate < 0:
		return fmt.Errorf("%w: producer.rate must be >= 0", ErrInvalidConfig)
	case s.Consumer.ReportEvery < 0:
		return fmt.Errorf("%w: consumer.report_every must be >= 0", ErrInvalidConfig)
	case s.Pin.Enabled && (s.Pin.ProducerCPU < 0 || s.Pin.ConsumerCPU < 0):
		return fmt.Errorf("%w: pin cpus must be >= 0", ErrInvalidConfig)
	}
	if _, err := pace.ParseBackoff(s.Producer.Backoff, 0); err != nil {
		return fmt.Errorf("%w: producer.backoff: %v", ErrInvalidConfig, err)
	}
	if _, err := pace.ParseBackoff(s.Consumer.Backoff, 0); err != nil {
		return fmt.Errorf("%w: consumer.backoff: %v", ErrInvalidConfig, err)
	}
	if s.Consumer.ReportEvery > 0 {
		t, err := pace.ParseTicker(s.Consumer.Ticker, s.Consumer.ReportEvery, 1)
		if err != nil {
			return fmt.Errorf("%w: consumer.ticker: %v", ErrInvalidConfig, err)
		}
		t.Stop()
	}
	if _, err := zerolog.ParseLevel(s.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Throttle builds the producer's pacing from the delay, rate and jitter
// settings. Unset settings contribute nothing.
func (s Stress) Throttle() pace.Throttle {
	var chain pace.Chain
	p := s.Producer
	if p.DelayEvery > 0 && p.Delay > 0 {
		chain = append(chain, pace.NewEveryN(p.DelayEvery, p.Delay))
	}
	if p.Rate > 0 {
		chain = append(chain, pace.NewRate(p.Rate, 1))
	}
	if p.Jitter > 0 {
		chain = append(chain, pace.NewJitter(max(p.DelayEvery, 1), p.Jitter))
	}

	switch len(chain) {
	case 0:
		return pace.Never()
	case 1:
		return chain[0]
	default:
		return chain
	}
}

// Pipeline converts a validated Stress into a pipeline.Config.
func (s Stress) Pipeline(log zerolog.Logger) (pipeline.Config, error) {
	if err := s.Validate(); err != nil {
		return pipeline.Config{}, err
	}
	pb, _ := pace.ParseBackoff(s.Producer.Backoff, 0)
	cb, _ := pace.ParseBackoff(s.Consumer.Backoff, 0)

	return pipeline.Config{
		Items:           s.Items,
		Capacity:        s.Capacity,
		Throttle:        s.Throttle(),
		ProducerBackoff: pb,
		ConsumerBackoff: cb,
		ReportEvery:     s.Consumer.ReportEvery,
		ReportTicker:    s.Consumer.Ticker,
		Pin:             s.Pin.Enabled,
		ProducerCPU:     s.Pin.ProducerCPU,
		ConsumerCPU:     s.Pin.ConsumerCPU,
		Logger:          log,
	}, nil
}
