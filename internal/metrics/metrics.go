// Package metrics exports ring and pipeline counters in Prometheus text
// format using VictoriaMetrics/metrics, and serves them over fasthttp.
package metrics

import (
	"fmt"
	"io"
	"sync"

	"github.com/VictoriaMetrics/metrics"

	"github.com/randomizedcoder/versioned-ring/internal/pipeline"
	"github.com/randomizedcoder/versioned-ring/internal/ring"
)

const prefix = "vring_"

// Registry is a set of metrics owned by one process or test.
type Registry struct {
	set *metrics.Set

	mu      sync.Mutex
	refresh []func()

	// WithProcess adds Go runtime and process metrics to the output.
	WithProcess bool
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{set: metrics.NewSet()}
}

// RegisterRing exposes a ring's Stats as counters under the label
// ring=name. stats is read once per scrape and the counters are set to
// its values, which only grow.
func (r *Registry) RegisterRing(name string, stats func() ring.Stats) {
	counter := func(metric string) *metrics.Counter {
		return r.set.GetOrCreateCounter(fmt.Sprintf(`%s%s{ring=%q}`, prefix, metric, name))
	}
	writes := counter("writes_total")
	rejected := counter("write_rejections_total")
	reads := counter("reads_total")
	misses := counter("read_misses_total")
	retries := counter("cas_retries_total")

	r.mu.Lock()
	r.refresh = append(r.refresh, func() {
		s := stats()
		writes.Set(s.Writes)
		rejected.Set(s.WriteRejections)
		reads.Set(s.Reads)
		misses.Set(s.ReadMisses)
		retries.Set(s.Retries)
	})
	r.mu.Unlock()
}

// ConsumerProgress returns a callback for pipeline.Consumer.OnProgress that
// records the consumer's counters under the label consumer=name.
func (r *Registry) ConsumerProgress(name string) func(pipeline.ConsumerReport) {
	received := r.set.GetOrCreateCounter(fmt.Sprintf(`%sconsumer_received_total{consumer=%q}`, prefix, name))
	misses := r.set.GetOrCreateCounter(fmt.Sprintf(`%sconsumer_misses_total{consumer=%q}`, prefix, name))
	return func(rep pipeline.ConsumerReport) {
		received.Set(rep.Received)
		misses.Set(rep.Misses)
	}
}

// WritePrometheus writes every registered metric to w.
func (r *Registry) WritePrometheus(w io.Writer) {
	r.mu.Lock()
	for _, f := range r.refresh {
		f()
	}
	r.mu.Unlock()

	r.set.WritePrometheus(w)
	if r.WithProcess {
		metrics.WriteProcessMetrics(w)
	}
}
