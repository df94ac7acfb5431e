// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/internal/config"
	"github.com/gocmis/gocmis/internal/inmemory"
	"github.com/gocmis/gocmis/internal/jsonconv"
	"github.com/gocmis/gocmis/internal/logging"
	"github.com/gocmis/gocmis/internal/observability"
	"github.com/gocmis/gocmis/internal/server"
	cmistls "github.com/gocmis/gocmis/internal/tls"
	"github.com/gocmis/gocmis/internal/wsconv"
	"github.com/gocmis/gocmis/internal/xdg"
	"github.com/gocmis/gocmis/internal/xmlconv"
	"github.com/gocmis/gocmis/pkg/errutil"
)

// shutdownTimeout bounds how long requests in flight may take to finish.
const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an in-memory CMIS repository over HTTP",
		Long: `Serve an in-memory CMIS repository on the Browser binding URL layout,
answering in JSON, XML or SOAP as each request asks. The repository can be
restored from and saved to a snapshot file, and seeded from a YAML file.
Metrics and health probes are served on a separate address.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runServeWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}

	config.BindServerFlags(cmd.Flags())
	config.BindLogFlags(cmd.Flags())

	return cmd
}

// runServeWithDeps runs the server until a signal arrives, ctx ends or a
// listener fails. If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	if deps.CMISServerFactory == nil {
		deps.CMISServerFactory = func(addr string, handler http.Handler, tlsConfig *tls.Config, log *slog.Logger) CMISServer {
			return server.NewServer(addr, handler, log, server.WithTLSConfig(tlsConfig))
		}
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}
	if deps.SnapshotPathGetter == nil {
		deps.SnapshotPathGetter = xdg.SnapshotFile
	}
	if deps.CertsDirGetter == nil {
		deps.CertsDirGetter = xdg.CertsDir
	}
	if ctx == nil {
		ctx = context.Background()
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger := logging.SetDefault(logging.Options{
		Service: serviceName,
		Version: version,
		Format:  cfg.Log.Format,
		Level:   level,
		Writer:  cmd.ErrOrStderr(),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Observability comes up first so readiness reports 503 while the
	// repository loads.
	var ready atomic.Bool
	var obsServer ObservabilityServer
	var handlerMetrics *server.Metrics
	var lifecycle *observability.Metrics
	if cfg.Server.MetricsAddr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Server.MetricsAddr, ready.Load)
		handlerMetrics = server.NewMetrics(obsServer.Registry())
		lifecycle = obsServer.Metrics()
		obsErrChan, startErr := obsServer.Start()
		if startErr != nil {
			return fmt.Errorf("failed to start observability server: %w", startErr)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
	}
	stopObs := func() {
		if obsServer == nil {
			return
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if stopErr := obsServer.Stop(shutdownCtx); stopErr != nil {
			slog.Warn("error stopping observability server", "error", stopErr)
		}
	}

	snapshotPath, err := snapshotPath(cfg, deps)
	if err != nil {
		stopObs()
		return fmt.Errorf("failed to resolve snapshot path: %w", err)
	}

	repo, err := openRepository(ctx, cfg, logger, snapshotPath, lifecycle)
	if err != nil {
		stopObs()
		return err
	}

	handler := server.NewHandler(repo,
		server.WithCodecs(codecsFor(cfg.Server.DefaultFormat)),
		server.WithVersion(cfg.Version()),
		server.WithLogger(logger),
		server.WithMetrics(handlerMetrics),
	)
	tlsConfig, err := serverTLS(cfg, deps)
	if err != nil {
		stopObs()
		return fmt.Errorf("failed to prepare TLS: %w", err)
	}
	cmisServer := deps.CMISServerFactory(cfg.Server.Addr, handler, tlsConfig, logger)
	cmisErrChan, err := cmisServer.Start()
	if err != nil {
		stopObs()
		return fmt.Errorf("failed to start CMIS server: %w", err)
	}
	go monitorServerErrors(ctx, cancel, cmisErrChan, "cmis")
	ready.Store(true)

	sigChan := deps.Signals
	if sigChan == nil {
		sigChan = make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
	}

	metricsAddr := ""
	if obsServer != nil {
		metricsAddr = obsServer.Addr()
	}
	cmd.Println("CMIS server started")
	slog.Info("gocmis ready",
		"repository_id", repo.ID(),
		"cmis_addr", cmisServer.Addr(),
		"metrics_addr", metricsAddr,
		"cmis_version", string(cfg.Version()),
		"tls", tlsConfig != nil,
	)
	if deps.Ready != nil {
		deps.Ready(cmisServer.Addr(), metricsAddr)
	}

	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	slog.Info("shutting down...")
	ready.Store(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if stopErr := cmisServer.Stop(shutdownCtx); stopErr != nil {
		slog.Warn("error stopping CMIS server", "error", stopErr)
	}

	var saveErr error
	if snapshotPath != "" {
		saveErr = repo.SaveFile(snapshotPath)
		lifecycle.RecordSnapshot("save", saveErr)
		if saveErr != nil {
			errutil.LogError(logger, "snapshot save failed", saveErr)
		} else {
			slog.Info("snapshot saved", "path", snapshotPath)
		}
	}

	stopObs()
	slog.Info("shutdown complete")
	if saveErr != nil {
		return fmt.Errorf("failed to save snapshot: %w", saveErr)
	}
	return nil
}

// snapshotPath returns where the repository is persisted, or "" when it
// is not.
func snapshotPath(cfg *config.Config, deps *ServeDeps) (string, error) {
	if cfg.Repository.SnapshotFile != "" {
		return cfg.Repository.SnapshotFile, nil
	}
	if !cfg.Repository.Persist {
		return "", nil
	}
	return deps.SnapshotPathGetter()
}

// serverTLS returns the HTTPS configuration, or nil when TLS is off. The
// certificate covers the host of the listen address.
func serverTLS(cfg *config.Config, deps *ServeDeps) (*tls.Config, error) {
	if !cfg.Server.TLS {
		return nil, nil
	}
	dir := cfg.Server.CertsDir
	if dir == "" {
		var err error
		if dir, err = deps.CertsDirGetter(); err != nil {
			return nil, err
		}
	}
	var hosts []string
	if host, _, err := net.SplitHostPort(cfg.Server.Addr); err == nil && host != "" {
		hosts = append(hosts, host)
	}
	return cmistls.ServerConfig(dir, cfg.Repository.ID, hosts)
}

// openRepository builds the repository from its type system, then restores
// the snapshot if one exists, or else loads the seed file.
func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger, snapshot string, lifecycle *observability.Metrics) (*inmemory.Repository, error) {
	opts := inmemory.Options{
		ID:              cfg.Repository.ID,
		Name:            cfg.Repository.Name,
		Version:         cfg.Version(),
		CompressContent: cfg.Repository.CompressContent,
		ProductVersion:  version,
		Logger:          logger,
	}
	if cfg.Repository.TypesFile != "" {
		types, err := loadTypes(cfg.Repository.TypesFile, cfg.Version())
		if err != nil {
			return nil, fmt.Errorf("failed to load type system: %w", err)
		}
		opts.Types = types
	}

	repo, err := inmemory.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}

	if snapshot != "" {
		err := repo.LoadFile(snapshot)
		switch {
		case err == nil:
			lifecycle.RecordSnapshot("restore", nil)
			slog.Info("snapshot restored", "path", snapshot)
			return repo, nil
		case errors.Is(err, fs.ErrNotExist):
			slog.Info("no snapshot yet", "path", snapshot)
		default:
			lifecycle.RecordSnapshot("restore", err)
			return nil, fmt.Errorf("failed to restore snapshot: %w", err)
		}
	}

	if cfg.Repository.SeedFile != "" {
		err := seedRepository(ctx, repo, cfg.Repository.SeedFile)
		lifecycle.RecordSeed(err)
		if err != nil {
			return nil, fmt.Errorf("failed to seed repository: %w", err)
		}
		slog.Info("repository seeded", "path", cfg.Repository.SeedFile)
	}
	return repo, nil
}

func seedRepository(ctx context.Context, repo *inmemory.Repository, path string) error {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return repo.Seed(ctx, f)
}

// codecsFor returns the codec registry with format as its default. Every
// codec is instrumented for the conversion metrics.
func codecsFor(format string) *codec.Registry {
	all := []codec.Codec{jsonconv.New(), xmlconv.New(), wsconv.New()}
	ordered := make([]codec.Codec, 0, len(all))
	for _, c := range all {
		if c.Name() == format {
			ordered = append(ordered, codec.Instrument(c))
		}
	}
	for _, c := range all {
		if c.Name() != format {
			ordered = append(ordered, codec.Instrument(c))
		}
	}
	return codec.NewRegistry(ordered...)
}

// monitorServerErrors monitors a server's error channel and cancels the context on error.
// It exits when either an error is received, the channel is closed, or the context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
