// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

// Package config loads gocmis configuration in layers: built-in defaults,
// then an optional YAML file, then command-line flags.
package config

import (
	"errors"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/gocmis/gocmis/internal/logging"
	"github.com/gocmis/gocmis/internal/xdg"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// Error codes raised by this package.
const (
	CodeInvalid = "CONFIG_INVALID"
	CodeLoad    = "CONFIG_LOAD_FAILED"
)

// Formats lists the wire formats the server can default to.
var Formats = []string{"json", "xml", "ws"}

// Config is the complete gocmis configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Log        LogConfig        `koanf:"log"`
	Repository RepositoryConfig `koanf:"repository"`
	Client     ClientConfig     `koanf:"client"`
}

// ServerConfig configures the CMIS endpoint.
type ServerConfig struct {
	Addr string `koanf:"addr"`
	// MetricsAddr serves metrics and health probes; empty disables them.
	MetricsAddr   string `koanf:"metrics_addr"`
	CMISVersion   string `koanf:"cmis_version"`
	DefaultFormat string `koanf:"default_format"`
	// TLS serves HTTPS with certificates kept in CertsDir, generated on
	// first use. An empty CertsDir means XDG_CONFIG_HOME/gocmis/certs.
	TLS      bool   `koanf:"tls"`
	CertsDir string `koanf:"certs_dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// RepositoryConfig configures the in-memory repository.
type RepositoryConfig struct {
	ID   string `koanf:"id"`
	Name string `koanf:"name"`
	// TypesFile is a YAML type system; empty means the standard base types.
	TypesFile string `koanf:"types_file"`
	// SnapshotFile is restored at startup when present and written at
	// shutdown.
	SnapshotFile string `koanf:"snapshot_file"`
	// Persist enables snapshots at the XDG data location when
	// SnapshotFile is empty. With neither set the repository is
	// discarded at shutdown.
	Persist bool `koanf:"persist"`
	// SeedFile populates an empty repository at startup.
	SeedFile        string `koanf:"seed_file"`
	CompressContent bool   `koanf:"compress_content"`
}

// ClientConfig configures commands that talk to a running server.
type ClientConfig struct {
	BaseURL string        `koanf:"base_url"`
	Retries uint64        `koanf:"retries"`
	Backoff time.Duration `koanf:"backoff"`
	Timeout time.Duration `koanf:"timeout"`
	// CAFile is an extra CA certificate trusted for HTTPS endpoints.
	CAFile string `koanf:"ca_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          "127.0.0.1:8080",
			MetricsAddr:   "127.0.0.1:9100",
			CMISVersion:   string(cmis.Version11),
			DefaultFormat: "json",
		},
		Log: LogConfig{Format: "json", Level: "info"},
		Repository: RepositoryConfig{
			ID:   "default",
			Name: "GoCMIS in-memory repository",
		},
		Client: ClientConfig{
			BaseURL: "http://127.0.0.1:8080",
			Retries: 3,
			Backoff: 100 * time.Millisecond,
			Timeout: 30 * time.Second,
		},
	}
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"addr":             "server.addr",
	"metrics-addr":     "server.metrics_addr",
	"cmis-version":     "server.cmis_version",
	"default-format":   "server.default_format",
	"tls":              "server.tls",
	"certs-dir":        "server.certs_dir",
	"log-format":       "log.format",
	"log-level":        "log.level",
	"repository-id":    "repository.id",
	"repository-name":  "repository.name",
	"types-file":       "repository.types_file",
	"snapshot-file":    "repository.snapshot_file",
	"persist":          "repository.persist",
	"seed-file":        "repository.seed_file",
	"compress-content": "repository.compress_content",
	"url":              "client.base_url",
	"retries":          "client.retries",
	"timeout":          "client.timeout",
	"ca-file":          "client.ca_file",
}

// BindServerFlags registers the flags of the serve command with their
// built-in defaults.
func BindServerFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("addr", d.Server.Addr, "CMIS endpoint listen address")
	fs.String("metrics-addr", d.Server.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.String("cmis-version", d.Server.CMISVersion, "CMIS version served when a request names none")
	fs.String("default-format", d.Server.DefaultFormat, "wire format used when a request names none (json, xml or ws)")
	fs.Bool("tls", false, "serve HTTPS with generated certificates")
	fs.String("certs-dir", "", "TLS certificate directory (default: XDG_CONFIG_HOME/gocmis/certs)")
	fs.String("repository-id", d.Repository.ID, "repository id")
	fs.String("repository-name", d.Repository.Name, "repository display name")
	fs.String("types-file", "", "YAML type system file (default: the standard base types)")
	fs.String("snapshot-file", "", "snapshot restored at startup and written at shutdown")
	fs.Bool("persist", false, "snapshot to XDG_DATA_HOME/gocmis when no snapshot file is set")
	fs.String("seed-file", "", "YAML seed file loaded into an empty repository")
	fs.Bool("compress-content", false, "keep content streams zstd-compressed in memory")
}

// BindLogFlags registers the logging flags.
func BindLogFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("log-format", d.Log.Format, "log format (json or text)")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn or error)")
}

// BindClientFlags registers the flags of commands that call a server.
func BindClientFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("url", d.Client.BaseURL, "base URL of the CMIS endpoint")
	fs.Uint64("retries", d.Client.Retries, "retries of failed transport attempts")
	fs.Duration("timeout", d.Client.Timeout, "request timeout")
	fs.String("ca-file", "", "CA certificate trusted for HTTPS endpoints")
}

// Load builds the configuration. path names a YAML file; when empty the
// default file under the XDG config directory is used if it exists.
// flags, when not nil, override file values wherever the user set them.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		if p, err := xdg.ConfigFile(); err == nil {
			path = p
		}
	}
	if path != "" {
		_, statErr := os.Stat(path)
		switch {
		case statErr == nil:
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, oops.Code(CodeLoad).With("path", path).Wrapf(err, "load config file")
			}
		case explicit || !errors.Is(statErr, fs.ErrNotExist):
			return nil, oops.Code(CodeLoad).With("path", path).Wrap(statErr)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code(CodeLoad).Wrapf(err, "load flags")
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code(CodeInvalid).Wrapf(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	errb := oops.Code(CodeInvalid)
	if c.Server.Addr == "" {
		return errb.With("key", "server.addr").Errorf("server.addr is required")
	}
	if _, err := cmis.ParseVersion(c.Server.CMISVersion); err != nil {
		return errb.With("key", "server.cmis_version").Errorf("server.cmis_version: %v", err)
	}
	if !slices.Contains(Formats, c.Server.DefaultFormat) {
		return errb.With("key", "server.default_format").Errorf("server.default_format must be one of %v, got %q", Formats, c.Server.DefaultFormat)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return errb.With("key", "log.format").Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errb.With("key", "log.level").Errorf("log.level: %v", err)
	}
	if c.Repository.ID == "" {
		return errb.With("key", "repository.id").Errorf("repository.id is required")
	}
	if c.Client.Timeout < 0 {
		return errb.With("key", "client.timeout").Errorf("client.timeout must not be negative")
	}
	return nil
}

// Version returns the configured CMIS version.
func (c *Config) Version() cmis.Version {
	v, err := cmis.ParseVersion(c.Server.CMISVersion)
	if err != nil {
		return cmis.Version11
	}
	return v
}
