// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

// Package server exposes the policy ingest and permission check HTTP API.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/docgate/docgate/internal/access/policy"
	"github.com/docgate/docgate/internal/access/policy/store"
	"github.com/docgate/docgate/internal/observability"
)

const (
	// callerIDHeader carries the caller identity for policy ingest. Requests
	// without it record "unknown" as the policy creator.
	callerIDHeader = "X-Caller-Id"

	maxIngestBodyBytes = 1 << 20
)

// Server serves the decision API: health, policy ingest and retrieval, and
// permission checks.
type Server struct {
	addr       string
	listener   net.Listener
	httpServer *http.Server
	decisions  *policy.Service
	policies   store.PolicyStore
	metrics    *observability.Metrics
	running    atomic.Bool
}

// NewServer creates an API server. metrics may be nil, in which case
// requests are not instrumented.
func NewServer(addr string, decisions *policy.Service, policies store.PolicyStore, metrics *observability.Metrics) *Server {
	return &Server{
		addr:      addr,
		decisions: decisions,
		policies:  policies,
		metrics:   metrics,
	}
}

// Start begins serving the API. It returns an error channel that receives
// any serve error; the channel closes on graceful shutdown.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	slog.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}

	slog.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// Handler returns the API routes as an http.Handler for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.instrument("/health", s.handleHealth))
	mux.HandleFunc("GET /resource/policy", s.instrument("/resource/policy", s.handleGetPolicy))
	mux.HandleFunc("POST /resource/policy", s.instrument("/resource/policy", s.handlePutPolicy))
	mux.HandleFunc("GET /user/policy", s.instrument("/user/policy", s.handleGetUserPolicy))
	mux.HandleFunc("POST /user/policy", s.instrument("/user/policy", s.handlePutUserPolicy))
	mux.HandleFunc("GET /permission-check", s.instrument("/permission-check", s.handlePermissionCheck))
	return mux
}

// instrument wraps a handler to record request metrics by route and status.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next(w, r)
			return
		}
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)
		s.metrics.RequestsTotal.WithLabelValues(route, httpStatusLabel(sw.status)).Inc()
		s.metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// statusWriter captures the response status for metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
