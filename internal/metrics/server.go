package metrics

import (
	"context"
	"net"

	"github.com/fasthttp/router"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// Server serves a Registry at GET /metrics.
type Server struct {
	addr string
	srv  *fasthttp.Server
	log  zerolog.Logger
}

// NewServer creates a Server for reg listening on addr.
func NewServer(addr string, reg *Registry, log zerolog.Logger) *Server {
	r := router.New()
	r.GET("/metrics", func(ctx *fasthttp.RequestCtx) {
		ctx.SetContentType("text/plain; version=0.0.4; charset=utf-8")
		reg.WritePrometheus(ctx)
	})

	return &Server{
		addr: addr,
		srv: &fasthttp.Server{
			Handler: r.Handler,
			Name:    "vring-metrics",
		},
		log: log,
	}
}

// ListenAndServe blocks serving on the configured address.
func (s *Server) ListenAndServe() error {
	s.log.Info().Msgf("[metrics] serving on http://%s/metrics", s.addr)
	return s.srv.ListenAndServe(s.addr)
}

// Serve blocks serving on ln.
func (s *Server) Serve(ln net.Listener) error {
	return s.srv.Serve(ln)
}

// Shutdown stops the server, waiting for open requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.ShutdownWithContext(ctx)
}
