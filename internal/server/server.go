// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"
)

// Error codes raised by this package.
const (
	CodeAlreadyRunning = "SERVER_ALREADY_RUNNING"
	CodeListen         = "SERVER_LISTEN_FAILED"
	CodeShutdown       = "SERVER_SHUTDOWN_FAILED"
)

// Server listens for CMIS requests and hands them to a Handler.
type Server struct {
	addr       string
	handler    http.Handler
	log        *slog.Logger
	listener   net.Listener
	httpServer *http.Server
	tlsConfig  *tls.Config
	running    atomic.Bool
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithTLSConfig serves HTTPS with cfg. A nil cfg serves plain HTTP.
func WithTLSConfig(cfg *tls.Config) ServerOption {
	return func(s *Server) { s.tlsConfig = cfg }
}

// NewServer creates a server for handler.
// addr: listen address in "host:port" format (e.g., "127.0.0.1:8080", ":0" for any free port).
func NewServer(addr string, handler http.Handler, log *slog.Logger, opts ...ServerOption) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{addr: addr, handler: handler, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins serving. The returned channel receives a serve failure and
// is closed when the server stops.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Code(CodeAlreadyRunning).Errorf("cmis server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.Code(CodeListen).With("addr", s.addr).Wrap(err)
	}
	if s.tlsConfig != nil {
		listener = tls.NewListener(listener, s.tlsConfig)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.log.Error("cmis server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.log.Info("cmis server started", "addr", listener.Addr().String(), "tls", s.tlsConfig != nil)
	return errCh, nil
}

// Stop gracefully shuts the server down, waiting for requests in flight
// until ctx is done.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.Code(CodeShutdown).Wrap(err)
		}
	}
	s.log.Info("cmis server stopped")
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

// URL returns the base URL clients connect to.
func (s *Server) URL() string {
	addr := s.Addr()
	switch {
	case addr == "":
		return ""
	case s.tlsConfig != nil:
		return "https://" + addr
	}
	return "http://" + addr
}
