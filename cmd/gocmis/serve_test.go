// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocmis/gocmis/internal/binding"
	"github.com/gocmis/gocmis/internal/config"
	cmistls "github.com/gocmis/gocmis/internal/tls"
)

type addrs struct{ cmis, metrics string }

// startServe runs the serve command in the background and waits until it
// is ready. The returned function stops it and returns its error.
func startServe(t *testing.T, cfg *config.Config) (addrs, func() error) {
	t.Helper()
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	ctx, cancel := context.WithCancel(context.Background())
	readyCh := make(chan addrs, 1)
	deps := &ServeDeps{
		Ready: func(cmisAddr, metricsAddr string) { readyCh <- addrs{cmisAddr, metricsAddr} },
	}

	cmd := &cobra.Command{}
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(io.Discard)

	done := make(chan error, 1)
	go func() { done <- runServeWithDeps(ctx, cfg, cmd, deps) }()

	select {
	case a := <-readyCh:
		return a, func() error {
			cancel()
			select {
			case err := <-done:
				return err
			case <-time.After(10 * time.Second):
				t.Fatal("serve did not stop")
				return nil
			}
		}
	case err := <-done:
		cancel()
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(10 * time.Second):
		cancel()
		t.Fatal("serve did not become ready")
	}
	return addrs{}, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.MetricsAddr = "127.0.0.1:0"
	cfg.Repository.ID = "docs"
	return cfg
}

func clientFor(t *testing.T, addr string) *binding.Client {
	t.Helper()
	port, err := binding.NewHTTPPort("http://"+addr, binding.WithRetries(0, 0))
	require.NoError(t, err)
	return binding.NewClient(port)
}

func TestServe_SeedSnapshotRestore(t *testing.T) {
	snapshot := filepath.Join(t.TempDir(), "state", "repository.snapshot")

	cfg := testConfig(t)
	cfg.Repository.SnapshotFile = snapshot
	cfg.Repository.SeedFile = "testdata/seed.yaml"
	cfg.Repository.TypesFile = "testdata/types.yaml"

	a, stop := startServe(t, cfg)
	ctx := context.Background()

	od, err := clientFor(t, a.cmis).GetObjectByPath(ctx, "docs", "/reports/q1.txt", binding.ObjectOptions{})
	require.NoError(t, err)
	seededID := od.ID()

	td, err := clientFor(t, a.cmis).GetTypeDefinition(ctx, "docs", "my:invoice")
	require.NoError(t, err)
	assert.Equal(t, "Invoice", td.DisplayName())

	resp, err := http.Get("http://" + a.metrics + "/healthz/readiness") //nolint:noctx // test request
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get("http://" + a.metrics + "/metrics") //nolint:noctx // test request
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "gocmis_requests_total")
	assert.Contains(t, string(body), `gocmis_seeds_total{result="success"} 1`)

	require.NoError(t, stop())
	_, err = os.Stat(snapshot)
	require.NoError(t, err, "snapshot written at shutdown")

	// The second run restores the snapshot and does not seed again.
	cfg2 := testConfig(t)
	cfg2.Repository.SnapshotFile = snapshot
	cfg2.Repository.TypesFile = "testdata/types.yaml"
	a2, stop2 := startServe(t, cfg2)
	defer func() { require.NoError(t, stop2()) }()

	od, err = clientFor(t, a2.cmis).GetObjectByPath(ctx, "docs", "/reports/q1.txt", binding.ObjectOptions{})
	require.NoError(t, err)
	assert.Equal(t, seededID, od.ID())
}

func TestServe_NoMetricsAndXMLDefault(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.MetricsAddr = ""
	cfg.Server.DefaultFormat = "xml"

	a, stop := startServe(t, cfg)
	defer func() { require.NoError(t, stop()) }()
	assert.Empty(t, a.metrics)

	resp, err := http.Get("http://" + a.cmis + "/browser/docs") //nolint:noctx // test request
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "application/xml"))
}

func TestServe_TLS(t *testing.T) {
	certs := filepath.Join(t.TempDir(), "certs")
	cfg := testConfig(t)
	cfg.Server.MetricsAddr = ""
	cfg.Server.TLS = true
	cfg.Server.CertsDir = certs

	a, stop := startServe(t, cfg)
	defer func() { require.NoError(t, stop()) }()

	tlsConfig, err := cmistls.ClientConfig(filepath.Join(certs, cmistls.CAName+".crt"))
	require.NoError(t, err)
	client := &http.Client{Transport: &http.Transport{TLSClientConfig: tlsConfig}, Timeout: 5 * time.Second}
	port, err := binding.NewHTTPPort("https://"+a.cmis, binding.WithHTTPClient(client), binding.WithRetries(0, 0))
	require.NoError(t, err)

	info, err := binding.NewClient(port).GetRepositoryInfo(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, "docs", info.ID)
}

func TestServerTLS(t *testing.T) {
	deps := &ServeDeps{CertsDirGetter: func() (string, error) { return filepath.Join(t.TempDir(), "certs"), nil }}

	cfg := config.Default()
	got, err := serverTLS(cfg, deps)
	require.NoError(t, err)
	assert.Nil(t, got, "TLS is off by default")

	cfg.Server.TLS = true
	cfg.Server.Addr = "10.1.2.3:8443"
	got, err = serverTLS(cfg, deps)
	require.NoError(t, err)
	require.Len(t, got.Certificates, 1)
	assert.NoError(t, got.Certificates[0].Leaf.VerifyHostname("10.1.2.3"))
}

func TestServe_StartupFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "missing types file",
			mutate:  func(c *config.Config) { c.Repository.TypesFile = "testdata/absent.yaml" },
			wantErr: "failed to load type system",
		},
		{
			name:    "missing seed file",
			mutate:  func(c *config.Config) { c.Repository.SeedFile = "testdata/absent.yaml" },
			wantErr: "failed to seed repository",
		},
		{
			name:    "unusable listen address",
			mutate:  func(c *config.Config) { c.Server.Addr = "256.0.0.1:bad" },
			wantErr: "failed to start CMIS server",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := slog.Default()
			defer slog.SetDefault(original)

			cfg := testConfig(t)
			tt.mutate(cfg)
			cmd := &cobra.Command{}
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)

			err := runServeWithDeps(context.Background(), cfg, cmd, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestServe_CorruptSnapshot(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	snapshot := filepath.Join(t.TempDir(), "repository.snapshot")
	require.NoError(t, os.WriteFile(snapshot, []byte("not a snapshot"), 0o600))

	cfg := testConfig(t)
	cfg.Repository.SnapshotFile = snapshot
	cmd := &cobra.Command{}
	cmd.SetErr(io.Discard)

	err := runServeWithDeps(context.Background(), cfg, cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to restore snapshot")
}

func TestSnapshotPath(t *testing.T) {
	deps := &ServeDeps{SnapshotPathGetter: func() (string, error) { return "/data/gocmis/repository.snapshot", nil }}

	tests := []struct {
		name    string
		file    string
		persist bool
		want    string
	}{
		{name: "disabled", want: ""},
		{name: "explicit file", file: "/tmp/x.snapshot", want: "/tmp/x.snapshot"},
		{name: "explicit file wins over persist", file: "/tmp/x.snapshot", persist: true, want: "/tmp/x.snapshot"},
		{name: "persist uses data dir", persist: true, want: "/data/gocmis/repository.snapshot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Repository.SnapshotFile = tt.file
			cfg.Repository.Persist = tt.persist
			got, err := snapshotPath(cfg, deps)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCodecsFor_DefaultFirst(t *testing.T) {
	for _, format := range config.Formats {
		c, err := codecsFor(format).Negotiate("", "")
		require.NoError(t, err)
		assert.Equal(t, format, c.Name())
	}
}

func TestServe_SignalStops(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	sig := make(chan os.Signal, 1)
	readyCh := make(chan struct{})
	deps := &ServeDeps{
		Signals: sig,
		Ready:   func(string, string) { close(readyCh) },
	}
	cmd := &cobra.Command{}
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)

	done := make(chan error, 1)
	go func() { done <- runServeWithDeps(context.Background(), testConfig(t), cmd, deps) }()

	<-readyCh
	sig <- os.Interrupt
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop on signal")
	}
	assert.Contains(t, out.String(), "CMIS server started")
}
