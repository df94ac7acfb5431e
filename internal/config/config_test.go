// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocmis/gocmis/pkg/cmis"
	"github.com/gocmis/gocmis/pkg/errutil"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func serveFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	BindServerFlags(fs)
	BindLogFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestDefault_Validates(t *testing.T) {
	require.NoError(t, Default().Validate())
	assert.Equal(t, cmis.Version11, Default().Version())
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_XDGFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	dir := filepath.Join(home, "gocmis")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("repository:\n  id: from-xdg\n"), 0o600))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "from-xdg", cfg.Repository.ID)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
server:
  addr: 0.0.0.0:9000
  cmis_version: "1.0"
  default_format: xml
log:
  format: text
  level: debug
repository:
  id: docs
  compress_content: true
client:
  backoff: 250ms
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, cmis.Version10, cfg.Version())
	assert.Equal(t, "xml", cfg.Server.DefaultFormat)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "docs", cfg.Repository.ID)
	assert.True(t, cfg.Repository.CompressContent)
	assert.Equal(t, 250*time.Millisecond, cfg.Client.Backoff)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, Default().Server.MetricsAddr, cfg.Server.MetricsAddr)
	assert.Equal(t, Default().Repository.Name, cfg.Repository.Name)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeFile(t, "server:\n  addr: 0.0.0.0:9000\nrepository:\n  id: docs\n")
	fs := serveFlags(t, "--addr", "127.0.0.1:7000", "--compress-content", "--tls", "--certs-dir", "/etc/gocmis/certs")

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
	assert.True(t, cfg.Repository.CompressContent)
	assert.True(t, cfg.Server.TLS)
	assert.Equal(t, "/etc/gocmis/certs", cfg.Server.CertsDir)
	// An unset flag leaves the file value alone.
	assert.Equal(t, "docs", cfg.Repository.ID)
}

func TestLoad_ClientFlags(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	fs := pflag.NewFlagSet("status", pflag.ContinueOnError)
	BindClientFlags(fs)
	require.NoError(t, fs.Parse([]string{"--url", "http://cmis.example:8080", "--retries", "0", "--timeout", "2s", "--ca-file", "/tmp/root-ca.crt"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "http://cmis.example:8080", cfg.Client.BaseURL)
	assert.Equal(t, uint64(0), cfg.Client.Retries)
	assert.Equal(t, 2*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "/tmp/root-ca.crt", cfg.Client.CAFile)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	errutil.AssertErrorCode(t, err, CodeLoad)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeFile(t, "server: [unterminated\n")
	_, err := Load(path, nil)
	errutil.AssertErrorCode(t, err, CodeLoad)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantKey string
	}{
		{name: "empty addr", mutate: func(c *Config) { c.Server.Addr = "" }, wantKey: "server.addr"},
		{name: "unknown version", mutate: func(c *Config) { c.Server.CMISVersion = "2.0" }, wantKey: "server.cmis_version"},
		{name: "unknown format", mutate: func(c *Config) { c.Server.DefaultFormat = "atom" }, wantKey: "server.default_format"},
		{name: "unknown log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantKey: "log.format"},
		{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantKey: "log.level"},
		{name: "empty repository id", mutate: func(c *Config) { c.Repository.ID = "" }, wantKey: "repository.id"},
		{name: "negative timeout", mutate: func(c *Config) { c.Client.Timeout = -time.Second }, wantKey: "client.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			errutil.AssertErrorCode(t, err, CodeInvalid)
			errutil.AssertErrorContext(t, err, "key", tt.wantKey)
		})
	}
}

func TestLoad_InvalidFileValue(t *testing.T) {
	path := writeFile(t, "log:\n  format: xml\n")
	_, err := Load(path, nil)
	errutil.AssertErrorCode(t, err, CodeInvalid)
}
