// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package errutil

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// AssertErrorCode asserts that err is an oops error with the given code.
func AssertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	assert.Equal(t, code, oopsErr.Code())
}

// AssertErrorContext asserts that err is an oops error with the given context key/value.
func AssertErrorContext(t *testing.T, err error, key string, value any) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	ctx := oopsErr.Context()
	assert.Contains(t, ctx, key)
	assert.Equal(t, value, ctx[key])
}

// AssertServiceError asserts that err is a service error of kind.
func AssertServiceError(t *testing.T, err error, kind cmis.ErrorKind) {
	t.Helper()
	se, ok := cmis.AsServiceError(err)
	require.True(t, ok, "expected service error, got %T: %v", err, err)
	assert.Equal(t, kind, se.Kind)
}
