// Package server provides the HTTP server for rate limit decisions.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/throttlegate/throttlegate/pkg/config"
	"github.com/throttlegate/throttlegate/pkg/server/middleware"
	"github.com/throttlegate/throttlegate/pkg/telemetry/health"
	"github.com/throttlegate/throttlegate/pkg/telemetry/metrics"
)

// Server is the HTTP server exposing the rate limit decision endpoint
// alongside health and metrics endpoints.
type Server struct {
	config       *config.Config
	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer wires the decision service, health checker, and metrics
// collector into an HTTP server built from cfg.
func NewServer(cfg *config.Config, service DecisionService, checker *health.Checker, collector *metrics.Collector) *Server {
	srv := &Server{config: cfg}
	srv.httpServer = &http.Server{
		Addr:         cfg.Server.ListenAddress,
		Handler:      srv.buildHandler(service, checker, collector),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return srv
}

// buildHandler registers routes and applies the middleware chain, innermost
// to outermost: Timeout, CORS, RequestID, Logging, Recovery.
func (s *Server) buildHandler(service DecisionService, checker *health.Checker, collector *metrics.Collector) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/rate-limit/check", newRateLimitHandler(service, collector))
	mux.Handle("/health", healthHandler{})
	mux.Handle("/ready", readinessHandler(checker))
	mux.Handle("/live", livenessHandler(checker))
	if collector != nil && s.config.Telemetry.Metrics.Enabled {
		mux.Handle(s.config.Telemetry.Metrics.Path, collector.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.Timeout(s.config.Server.WriteTimeout)(handler)
	handler = middleware.CORS(middleware.CORSConfig{
		Enabled:        s.config.Server.CORS.Enabled,
		AllowedOrigins: s.config.Server.CORS.AllowedOrigins,
	})(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Logging(handler)
	handler = middleware.Recovery(handler)

	return handler
}

// Start begins serving and blocks until the listener stops, either from a
// server error or a call to Shutdown (which closes the listener via
// http.Server.Shutdown, returning http.ErrServerClosed here).
func (s *Server) Start() error {
	s.mu.Lock()
	s.isRunning = true
	s.mu.Unlock()

	slog.Info("starting rate limit server", "address", s.config.Server.ListenAddress)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully drains in-flight requests until they finish or ctx is
// done. The deadline comes from ctx alone; cfg.Server.ShutdownTimeout is only
// reported in the log line.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		slog.Info("shutting down rate limit server", "timeout", s.config.Server.ShutdownTimeout.String())
		if err := s.httpServer.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	})
	return shutdownErr
}

// IsRunning reports whether the server has been started and not yet shut down.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the fully wrapped HTTP handler, primarily for tests that
// want to drive the server with httptest without binding a real listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
