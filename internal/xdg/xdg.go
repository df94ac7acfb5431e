// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

// Package xdg provides XDG Base Directory paths for gocmis: the default
// config file, TLS certificates and repository snapshots.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "gocmis"

// Names of the files gocmis keeps in its directories.
const (
	ConfigFileName   = "config.yaml"
	SnapshotFileName = "repository.snapshot"
	CertsDirName     = "certs"
)

// CodeNoHome is raised when neither the XDG variable nor HOME is set.
const CodeNoHome = "XDG_NO_HOME"

// dir resolves env, or HOME joined with fallback.
func dir(env string, fallback ...string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home := os.Getenv("HOME")
	if home == "" {
		return "", oops.Code(CodeNoHome).With("variable", env).Errorf("neither %s nor HOME is set", env)
	}
	return filepath.Join(append(append([]string{home}, fallback...), appName)...), nil
}

// ConfigDir returns the XDG config directory for gocmis.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() (string, error) {
	return dir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the XDG data directory for gocmis.
// Checks XDG_DATA_HOME first, falls back to ~/.local/share.
func DataDir() (string, error) {
	return dir("XDG_DATA_HOME", ".local", "share")
}

// StateDir returns the XDG state directory for gocmis.
// Checks XDG_STATE_HOME first, falls back to ~/.local/state.
func StateDir() (string, error) {
	return dir("XDG_STATE_HOME", ".local", "state")
}

// ConfigFile returns the default config file path.
func ConfigFile() (string, error) {
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, ConfigFileName), nil
}

// CertsDir returns the directory the generated TLS certificates are kept in.
func CertsDir() (string, error) {
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, CertsDirName), nil
}

// SnapshotFile returns the default repository snapshot path.
func SnapshotFile() (string, error) {
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, SnapshotFileName), nil
}

// EnsureDir creates a directory and all parent directories if they don't exist.
// Directories are created with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return oops.With("path", path).Wrapf(err, "create directory")
	}
	return nil
}
