// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package server_test

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gocmis/gocmis/internal/inmemory"
	"github.com/gocmis/gocmis/internal/server"
	cmistls "github.com/gocmis/gocmis/internal/tls"
	"github.com/gocmis/gocmis/pkg/errutil"
)

func TestServer_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo, err := inmemory.New(inmemory.Options{ID: repoID, Logger: discard()})
	require.NoError(t, err)
	srv := server.NewServer("127.0.0.1:0", server.NewHandler(repo, server.WithLogger(discard())), discard())
	assert.Empty(t, srv.URL())

	errCh, err := srv.Start()
	require.NoError(t, err)
	require.NotEmpty(t, srv.Addr())

	tr := &http.Transport{DisableKeepAlives: true}
	client := &http.Client{Transport: tr, Timeout: 5 * time.Second}
	resp, err := client.Get(srv.URL() + "/browser/" + repoID) //nolint:noctx // test request
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	tr.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))

	_, open := <-errCh
	assert.False(t, open, "error channel should be closed after a clean stop")

	// Stopping twice is a no-op.
	require.NoError(t, srv.Stop(ctx))
}

func TestServer_StartTwice(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo, err := inmemory.New(inmemory.Options{ID: repoID, Logger: discard()})
	require.NoError(t, err)
	srv := server.NewServer("127.0.0.1:0", server.NewHandler(repo), discard())

	_, err = srv.Start()
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, srv.Stop(context.Background()))
	}()

	_, err = srv.Start()
	errutil.AssertErrorCode(t, err, server.CodeAlreadyRunning)
}

func TestServer_ListenFailure(t *testing.T) {
	srv := server.NewServer("256.0.0.1:bad", http.NotFoundHandler(), discard())
	_, err := srv.Start()
	errutil.AssertErrorCode(t, err, server.CodeListen)

	// A failed start leaves the server startable.
	_, err = srv.Start()
	errutil.AssertErrorCode(t, err, server.CodeListen)
}

func TestServer_TLS(t *testing.T) {
	defer goleak.VerifyNone(t)

	certs := t.TempDir()
	serverConfig, err := cmistls.ServerConfig(certs, repoID, []string{"127.0.0.1"})
	require.NoError(t, err)
	clientConfig, err := cmistls.ClientConfig(filepath.Join(certs, cmistls.CAName+".crt"))
	require.NoError(t, err)

	repo, err := inmemory.New(inmemory.Options{ID: repoID, Logger: discard()})
	require.NoError(t, err)
	srv := server.NewServer("127.0.0.1:0", server.NewHandler(repo, server.WithLogger(discard())), discard(),
		server.WithTLSConfig(serverConfig))

	_, err = srv.Start()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(srv.URL(), "https://"))

	tr := &http.Transport{TLSClientConfig: clientConfig, DisableKeepAlives: true}
	client := &http.Client{Transport: tr, Timeout: 5 * time.Second}
	resp, err := client.Get(srv.URL() + "/browser/" + repoID) //nolint:noctx // test request
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	tr.CloseIdleConnections()

	require.NoError(t, srv.Stop(context.Background()))
}
