// Package api provides the HTTP REST surface for the RAG service.
//
// Endpoints:
//
//	POST /rag        → static RAG flow
//	POST /rag-agent  → agentic RAG flow
//	GET  /status     → fixed liveness acknowledgement
//	GET  /health     → liveness probe
//	GET  /ready      → readiness probe (pings PostgreSQL)
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: HTTP middleware (recovery, request ID, logging)
//   - status.go: status and probe endpoints
//   - workflow.go: RAG flow endpoints
//   - response.go: JSON response helpers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koopa0/ragapi/internal/log"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:8080"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	// This prevents Slowloris attacks (CWE-400).
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// Generous because a single request may span several model round trips.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the maximum time to wait for the next request on keep-alive connections.
	IdleTimeout = 120 * time.Second
)

// Server is the HTTP server for the RAG REST API.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger

	// Handlers
	status   *StatusHandler
	workflow *WorkflowHandler
}

// NewServer creates a new HTTP server with all routes registered.
// pool may be nil; readiness then reports unavailable.
func NewServer(runner Runner, pool *pgxpool.Pool, logger log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:      mux,
		logger:   logger,
		status:   NewStatusHandler(pool, logger),
		workflow: NewWorkflowHandler(runner, logger),
	}

	s.status.RegisterRoutes(mux)
	s.workflow.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → request ID → logging → handler
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		requestIDMiddleware,
		loggingMiddleware(s.logger),
	)
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
