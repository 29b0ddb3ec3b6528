// Package server wires the relay, the page and the health endpoints into one
// http.Server and owns its lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spacesedan/sentilens/config"
	"github.com/spacesedan/sentilens/internal/clients"
	"github.com/spacesedan/sentilens/internal/monitoring"
	"github.com/spacesedan/sentilens/internal/relay"
	"github.com/spacesedan/sentilens/internal/web"
)

const SHUTDOWN_TIMEOUT = 10 * time.Second

type Server struct {
	cfg      config.Config
	upstream *clients.UpstreamClient
	monitor  *monitoring.UpstreamMonitor
	http     *http.Server
}

func New(cfg config.Config) *Server {
	upstream := clients.NewUpstreamClient(cfg.PredictURL(), cfg.HealthURL(), cfg.UpstreamTimeout)
	monitor := monitoring.NewUpstreamMonitor(upstream, cfg.HealthcheckInterval)

	rl := relay.NewRelay(upstream)
	mux := http.NewServeMux()
	registerRoutes(mux, rl, web.NewPage(rl), monitor)

	return &Server{
		cfg:      cfg,
		upstream: upstream,
		monitor:  monitor,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           withRequestLogging(mux),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			// leave room for a full upstream wait plus the response write
			WriteTimeout: cfg.UpstreamTimeout + 5*time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the HTTP server on ln alongside the upstream health monitor and
// shuts both down gracefully once ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.upstream.Close()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("[Server] Listening",
			slog.String("addr", ln.Addr().String()),
			slog.String("upstream", s.cfg.PredictURL()))
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return s.monitor.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("[Server] Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}
