// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package cmis

import (
	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
)

// Version is a CMIS protocol version.
type Version string

// Supported protocol versions.
const (
	Version10 Version = "1.0"
	Version11 Version = "1.1"
)

var (
	semver10 = semver.MustParse("1.0.0")
	semver11 = semver.MustParse("1.1.0")
)

// ParseVersion parses a protocol version such as "1.1" or "1.0.0".
func ParseVersion(s string) (Version, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return "", oops.Code(CodeUnknownVersion).With("version", s).Wrap(err)
	}
	switch {
	case v.Equal(semver10):
		return Version10, nil
	case v.Equal(semver11):
		return Version11, nil
	default:
		return "", oops.Code(CodeUnknownVersion).With("version", s).Errorf("unsupported CMIS version %q", s)
	}
}

// Valid reports whether v is a known protocol version.
func (v Version) Valid() bool {
	return v == Version10 || v == Version11
}

// Supports reports whether constructs introduced in since are legal in v.
func (v Version) Supports(since Version) bool {
	return v.semver().Compare(since.semver()) >= 0
}

// Is11 reports whether v is CMIS 1.1 or later.
func (v Version) Is11() bool {
	return v.Supports(Version11)
}

func (v Version) semver() *semver.Version {
	if v == Version11 {
		return semver11
	}
	return semver10
}

func (v Version) String() string {
	return string(v)
}
