// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocmis/gocmis/internal/inmemory"
	"github.com/gocmis/gocmis/internal/observability"
	"github.com/gocmis/gocmis/internal/server"
	cmistls "github.com/gocmis/gocmis/internal/tls"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// runningServer starts a CMIS endpoint and a health server whose
// readiness is ready.
func runningServer(t *testing.T, ready bool) (cmisURL, metricsAddr string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	repo, err := inmemory.New(inmemory.Options{ID: "docs", Name: "Documents", Logger: discard()})
	require.NoError(t, err)
	srv := httptest.NewServer(server.NewHandler(repo, server.WithLogger(discard())))
	t.Cleanup(srv.Close)

	obs := observability.NewServer("127.0.0.1:0", func() bool { return ready })
	_, err = obs.Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Stop(ctx)
	})
	return srv.URL, obs.Addr()
}

func TestStatus_Properties(t *testing.T) {
	cmd := NewStatusCmd()

	assert.Equal(t, "status", cmd.Use)
	assert.Contains(t, cmd.Short, "status")
	assert.Contains(t, cmd.Long, "health")
}

func TestStatus_JSON(t *testing.T) {
	url, metricsAddr := runningServer(t, true)

	out, _, err := execute(t, "", "status", "--json", "--url", url, "--metrics-addr", metricsAddr, "--repository-id", "docs")
	require.NoError(t, err)

	var status ServerStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.True(t, status.Reachable)
	assert.Equal(t, "ready", status.Ready)
	assert.Equal(t, "docs", status.RepositoryID)
	assert.Equal(t, "Documents", status.RepositoryName)
	assert.Equal(t, "1.1", status.CMISVersion)
	assert.NotEmpty(t, status.RootFolderID)
	assert.Empty(t, status.Error)
}

func TestStatus_TableNotReady(t *testing.T) {
	url, metricsAddr := runningServer(t, false)

	out, _, err := execute(t, "", "status", "--url", url, "--metrics-addr", metricsAddr, "--repository-id", "docs")
	require.NoError(t, err)
	assert.Contains(t, out, "running")
	assert.Contains(t, out, "not ready")
	assert.Contains(t, out, "Documents")
}

func TestStatus_UnknownRepositoryIsStillReachable(t *testing.T) {
	url, _ := runningServer(t, true)

	out, _, err := execute(t, "", "status", "--json", "--url", url, "--metrics-addr", "", "--repository-id", "missing")
	require.NoError(t, err)

	var status ServerStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.True(t, status.Reachable)
	assert.Empty(t, status.Ready)
	assert.NotEmpty(t, status.Error)
}

func TestStatus_TLSWithCAFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	certs := t.TempDir()
	tlsConfig, err := cmistls.ServerConfig(certs, "docs", []string{"127.0.0.1"})
	require.NoError(t, err)

	repo, err := inmemory.New(inmemory.Options{ID: "docs", Logger: discard()})
	require.NoError(t, err)
	srv := httptest.NewUnstartedServer(server.NewHandler(repo, server.WithLogger(discard())))
	srv.TLS = tlsConfig
	srv.StartTLS()
	t.Cleanup(srv.Close)

	out, _, err := execute(t, "", "status", "--json", "--url", srv.URL, "--metrics-addr", "",
		"--repository-id", "docs", "--ca-file", filepath.Join(certs, cmistls.CAName+".crt"))
	require.NoError(t, err)

	var status ServerStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.True(t, status.Reachable)
	assert.Equal(t, "docs", status.RepositoryID)
}

func TestStatus_Unreachable(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	out, _, err := execute(t, "", "status", "--url", "http://127.0.0.1:1", "--retries", "0", "--metrics-addr", "127.0.0.1:1", "--timeout", "2s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not reachable")
	assert.Contains(t, out, "unreachable")
}

func TestFormatStatusTable(t *testing.T) {
	out := formatStatusTable(ServerStatus{URL: "http://x", Reachable: true, RepositoryID: "docs"})

	assert.Contains(t, out, "URL")
	assert.Contains(t, out, "running")
	assert.Contains(t, out, "docs")
	assert.False(t, strings.Contains(out, "ERROR"), "no error row without an error")
}
