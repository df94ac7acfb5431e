// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

// Package observability provides HTTP endpoints for metrics and health checks.
package observability

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"

	"github.com/gocmis/gocmis/internal/codec"
)

// Error codes raised by this package.
const (
	CodeAlreadyRunning = "OBSERVABILITY_ALREADY_RUNNING"
	CodeListen         = "OBSERVABILITY_LISTEN_FAILED"
	CodeShutdown       = "OBSERVABILITY_SHUTDOWN_FAILED"
)

// Result labels for repository lifecycle metrics.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// ReadinessChecker returns whether the service is ready to accept requests.
type ReadinessChecker func() bool

// responseWriteFailures is a package-level counter for responses that
// could not be delivered. Handlers record into it without access to the
// Server instance.
var responseWriteFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gocmis_response_write_failures_total",
		Help: "Total number of CMIS responses that failed to reach the client, by operation",
	},
	[]string{"operation"},
)

// RecordResponseWriteFailure increments the response write failure counter.
func RecordResponseWriteFailure(operation string) {
	responseWriteFailures.WithLabelValues(operation).Inc()
}

// Metrics contains repository lifecycle metrics.
type Metrics struct {
	// SnapshotsTotal counts snapshot saves and restores by result.
	SnapshotsTotal *prometheus.CounterVec
	// SeedsTotal counts seed file loads by result.
	SeedsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers the lifecycle metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SnapshotsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gocmis_snapshots_total",
				Help: "Total number of repository snapshot operations by op and result",
			},
			[]string{"op", "result"},
		),
		SeedsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gocmis_seeds_total",
				Help: "Total number of seed file loads by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(m.SnapshotsTotal)
	reg.MustRegister(m.SeedsTotal)
	reg.MustRegister(responseWriteFailures)

	return m
}

// RecordSnapshot counts one snapshot operation ("save" or "restore").
// It is a no-op on a nil receiver.
func (m *Metrics) RecordSnapshot(op string, err error) {
	if m == nil {
		return
	}
	m.SnapshotsTotal.WithLabelValues(op, resultOf(err)).Inc()
}

// RecordSeed counts one seed file load.
func (m *Metrics) RecordSeed(err error) {
	if m == nil {
		return
	}
	m.SeedsTotal.WithLabelValues(resultOf(err)).Inc()
}

func resultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

// Server provides HTTP endpoints for observability (metrics and health probes).
type Server struct {
	addr       string
	listener   net.Listener
	httpServer *http.Server
	registry   *prometheus.Registry
	metrics    *Metrics
	isReady    ReadinessChecker
	running    atomic.Bool
}

// NewServer creates a new observability server. Its registry carries the
// Go runtime and process collectors, the codec conversion metrics and the
// lifecycle metrics; callers add their own collectors through Registry.
// addr: listen address in "host:port" format (e.g., "127.0.0.1:9100", ":9100" for all interfaces).
func NewServer(addr string, readinessChecker ReadinessChecker) *Server {
	// A private registry keeps repeated construction in tests from
	// colliding on the global one.
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	codec.RegisterMetrics(registry)

	return &Server{
		addr:     addr,
		registry: registry,
		metrics:  NewMetrics(registry),
		isReady:  readinessChecker,
	}
}

// Metrics returns the lifecycle metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Registry returns the registry served on /metrics.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Start begins serving observability endpoints.
// It returns an error channel that will receive any errors from the HTTP server
// after it starts. The channel is closed when the server stops gracefully.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Code(CodeAlreadyRunning).Errorf("observability server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.Code(CodeListen).With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/healthz/liveness", s.handleLiveness)
	mux.HandleFunc("/healthz/readiness", s.handleReadiness)

	httpSrv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		// Use local httpSrv to avoid race with subsequent Start() calls
		if serveErr := httpSrv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("observability server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	slog.Info("observability server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the observability server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			// Restore running state on failure so the server can be stopped again
			s.running.Store(true)
			return oops.Code(CodeShutdown).Wrap(err)
		}
	}

	slog.Info("observability server stopped")
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

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // health check write error is acceptable, client may disconnect
	w.Write([]byte("ok\n"))
}

// handleReadiness answers 503 until the repository is loaded.
func (s *Server) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if s.isReady == nil || s.isReady() {
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck // health check write error is acceptable, client may disconnect
		w.Write([]byte("ok\n"))
		return
	}

	w.WriteHeader(http.StatusServiceUnavailable)
	//nolint:errcheck // health check write error is acceptable, client may disconnect
	w.Write([]byte("not ready\n"))
}
