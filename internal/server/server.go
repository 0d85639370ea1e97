// Package server wires the API, dashboard, and metrics handlers into one
// HTTP server.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/moodlog/internal/api"
	"github.com/xaenox/moodlog/internal/metrics"
	"github.com/xaenox/moodlog/internal/web"
)

// Config configures the HTTP server.
type Config struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration

	// RateLimit is requests/second per client IP; 0 disables limiting.
	RateLimit float64
	RateBurst int
}

// DefaultConfig returns sensible server defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8000,
		ReadTimeout:     30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server hosting the query service and the dashboard.
type Server struct {
	cfg        Config
	logger     *zap.Logger
	httpServer *http.Server

	apiHandler *api.Handler
	webHandler *web.Handler
	collector  *metrics.Collector

	mu      sync.Mutex
	started bool
}

func New(cfg Config, apiHandler *api.Handler, webHandler *web.Handler, collector *metrics.Collector, logger *zap.Logger) *Server {
	if cfg.Port == 0 {
		cfg = DefaultConfig()
	}
	return &Server{
		cfg:        cfg,
		logger:     logger,
		apiHandler: apiHandler,
		webHandler: webHandler,
		collector:  collector,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("server already started")
	}
	s.started = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: s.cfg.ReadTimeout,
		// No write timeout: SSE streams stay open indefinitely and the
		// inference call itself is unbounded.
	}

	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP shutdown error", zap.Error(err))
		return err
	}

	s.started = false
	s.logger.Info("Server stopped")
	return nil
}

// setupRoutes configures all HTTP routes and middleware.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	s.apiHandler.RegisterRoutes(mux)
	if s.webHandler != nil {
		s.webHandler.RegisterRoutes(mux)
	}
	if s.collector != nil {
		mux.HandleFunc("GET /metrics", s.collector.Handler())
	}

	var handler http.Handler = mux
	if s.cfg.RateLimit > 0 {
		limiter := NewRateLimiter(RateLimiterConfig{
			RequestsPerSecond: s.cfg.RateLimit,
			Burst:             s.cfg.RateBurst,
			CleanupInterval:   time.Minute,
		})
		handler = limiter.Middleware(handler)
	}

	return s.loggingMiddleware(handler)
}
