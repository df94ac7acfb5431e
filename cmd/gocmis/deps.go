// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package main

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gocmis/gocmis/internal/observability"
	"github.com/gocmis/gocmis/internal/server"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// CMISServerFactory creates the CMIS endpoint server. tlsConfig is nil
	// for plain HTTP.
	// Default: server.NewServer
	CMISServerFactory func(addr string, handler http.Handler, tlsConfig *tls.Config, log *slog.Logger) CMISServer

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer

	// SnapshotPathGetter returns the default snapshot location, used when
	// the configuration names none and persistence is requested.
	// Default: xdg.SnapshotFile
	SnapshotPathGetter func() (string, error)

	// CertsDirGetter returns the default certificate directory, used when
	// TLS is enabled and the configuration names none.
	// Default: xdg.CertsDir
	CertsDirGetter func() (string, error)

	// Signals receives the signals that trigger shutdown. Nil means
	// SIGINT and SIGTERM.
	Signals chan os.Signal

	// Ready is called once the CMIS endpoint accepts requests.
	Ready func(cmisAddr, metricsAddr string)
}

// CMISServer wraps the methods used from server.Server.
type CMISServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Registry() *prometheus.Registry
	Metrics() *observability.Metrics
}

var (
	_ CMISServer          = (*server.Server)(nil)
	_ ObservabilityServer = (*observability.Server)(nil)
)
