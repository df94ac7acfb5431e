// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package binding_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocmis/gocmis/internal/binding"
	"github.com/gocmis/gocmis/pkg/cmis"
)

func TestFaultToError_EveryKind(t *testing.T) {
	for _, k := range cmis.ErrorKinds {
		t.Run(string(k), func(t *testing.T) {
			err := binding.FaultToError(string(k), "boom", 7)
			se, ok := cmis.AsServiceError(err)
			require.True(t, ok)
			assert.Equal(t, k, se.Kind)
			assert.Equal(t, "boom", se.Message)
			assert.Equal(t, int64(7), se.Code)
		})
	}
}

func TestFaultToError_TypedErrors(t *testing.T) {
	tests := []struct {
		kind   string
		target any
	}{
		{"objectNotFound", new(*cmis.ObjectNotFoundError)},
		{"OBJECTNOTFOUND", new(*cmis.ObjectNotFoundError)},
		{"constraint", new(*cmis.ConstraintError)},
		{"permissionDenied", new(*cmis.PermissionDeniedError)},
		{" versioning ", new(*cmis.VersioningError)},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			err := binding.FaultToError(tt.kind, "m", 0)
			assert.True(t, errors.As(err, tt.target), "got %T", err)
		})
	}
}

func TestFaultToError_UnknownKindIsRuntime(t *testing.T) {
	err := binding.FaultToError("somethingElse", "original text", 3)

	var rt *cmis.RuntimeError
	require.True(t, errors.As(err, &rt))
	assert.Equal(t, "original text", rt.Message)
	assert.Equal(t, "somethingElse", rt.OriginalKind())
	assert.Contains(t, err.Error(), "somethingElse")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind cmis.ErrorKind
		want int
	}{
		{cmis.ErrorKindObjectNotFound, http.StatusNotFound},
		{cmis.ErrorKindPermissionDenied, http.StatusForbidden},
		{cmis.ErrorKindStreamNotSupported, http.StatusForbidden},
		{cmis.ErrorKindConstraint, http.StatusConflict},
		{cmis.ErrorKindContentAlreadyExists, http.StatusConflict},
		{cmis.ErrorKindNameConstraintViolation, http.StatusConflict},
		{cmis.ErrorKindUpdateConflict, http.StatusConflict},
		{cmis.ErrorKindVersioning, http.StatusConflict},
		{cmis.ErrorKindInvalidArgument, http.StatusBadRequest},
		{cmis.ErrorKindFilterNotValid, http.StatusBadRequest},
		{cmis.ErrorKindNotSupported, http.StatusMethodNotAllowed},
		{cmis.ErrorKindRuntime, http.StatusInternalServerError},
		{cmis.ErrorKindStorage, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, binding.HTTPStatus(tt.kind))
		})
	}
}

func TestErrorBodyFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"service error", cmis.NewServiceError(cmis.ErrorKindUpdateConflict, "stale", 0), "updateConflict"},
		{"malformed input", cmis.MalformedInput("/properties", "bad"), "invalidArgument"},
		{"version violation", cmis.VersionViolation(cmis.Version10, "item type"), "notSupported"},
		{"plain error", errors.New("disk on fire"), "runtime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := binding.ErrorBodyFor(tt.err)
			assert.Equal(t, tt.want, body.Exception)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestWriteErrorBody_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binding.WriteErrorBody(&buf, cmis.NewServiceError(cmis.ErrorKindObjectNotFound, "no such object", 404)))

	var body binding.ErrorBody
	require.NoError(t, json.Unmarshal(buf.Bytes(), &body))
	assert.Equal(t, binding.ErrorBody{Exception: "objectNotFound", Message: "no such object", Code: 404}, body)

	var nf *cmis.ObjectNotFoundError
	assert.True(t, errors.As(body.Err(), &nf))
}
