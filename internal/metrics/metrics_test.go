package metrics_test

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	vm "github.com/VictoriaMetrics/metrics"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/randomizedcoder/versioned-ring/internal/metrics"
	"github.com/randomizedcoder/versioned-ring/internal/pipeline"
	"github.com/randomizedcoder/versioned-ring/internal/ring"
)

func TestRegistry_RingStats(t *testing.T) {
	r := ring.MustNew[int](4)
	r.Write(1)
	r.Write(2)
	r.Read()
	r.Read()
	r.Read() // miss

	reg := metrics.New()
	reg.RegisterRing("test", r.Stats)

	var buf bytes.Buffer
	reg.WritePrometheus(&buf)
	out := buf.String()

	require.Contains(t, out, `vring_writes_total{ring="test"} 2`)
	require.Contains(t, out, `vring_reads_total{ring="test"} 2`)
	require.Contains(t, out, `vring_read_misses_total{ring="test"} 1`)
	require.Contains(t, out, `vring_write_rejections_total{ring="test"} 0`)

	// Gauges read the ring on every scrape.
	r.Write(3)
	buf.Reset()
	reg.WritePrometheus(&buf)
	require.Contains(t, buf.String(), `vring_writes_total{ring="test"} 3`)
}

func TestRegistry_ConsumerProgress(t *testing.T) {
	reg := metrics.New()
	observe := reg.ConsumerProgress("c1")
	observe(pipeline.ConsumerReport{Received: 42, Misses: 7})

	var buf bytes.Buffer
	reg.WritePrometheus(&buf)
	require.Contains(t, buf.String(), `vring_consumer_received_total{consumer="c1"} 42`)
	require.Contains(t, buf.String(), `vring_consumer_misses_total{consumer="c1"} 7`)
}

func TestRegistry_ProcessMetrics(t *testing.T) {
	reg := metrics.New()
	reg.WithProcess = true

	var buf bytes.Buffer
	reg.WritePrometheus(&buf)
	require.Contains(t, buf.String(), "go_goroutines")
}

func TestServer(t *testing.T) {
	r := ring.MustNew[int](4)
	r.Write(1)

	reg := metrics.New()
	reg.RegisterRing("served", r.Stats)

	ln := fasthttputil.NewInmemoryListener()
	srv := metrics.NewServer("inmemory", reg, zerolog.Nop())
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	client := &fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return ln.Dial() },
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI("http://inmemory/metrics")
	require.NoError(t, client.DoTimeout(req, resp, time.Second))
	require.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	require.Contains(t, string(resp.Body()), `vring_writes_total{ring="served"} 1`)

	req.SetRequestURI("http://inmemory/nope")
	require.NoError(t, client.DoTimeout(req, resp, time.Second))
	require.Equal(t, fasthttp.StatusNotFound, resp.StatusCode())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	require.NoError(t, <-errc)
}

func TestRegistry_RingStatsAreCounters(t *testing.T) {
	vm.ExposeMetadata(true)
	defer vm.ExposeMetadata(false)

	r := ring.MustNew[int](4)
	reg := metrics.New()
	reg.RegisterRing("typed", r.Stats)

	var buf bytes.Buffer
	reg.WritePrometheus(&buf)
	require.Contains(t, buf.String(), "# TYPE vring_writes_total counter")
	require.Contains(t, buf.String(), "# TYPE vring_cas_retries_total counter")
}
