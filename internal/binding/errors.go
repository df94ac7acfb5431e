// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package binding

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/samber/oops"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// Error codes raised by this package.
const (
	CodeTransport   = "BINDING_TRANSPORT"
	CodeBadResponse = "BINDING_BAD_RESPONSE"
	CodeBadRequest  = "BINDING_BAD_REQUEST"
)

// kindsByName indexes every fault kind by its lower-cased name, so a
// fault written as "objectNotFound" or "OBJECTNOTFOUND" maps the same way.
var kindsByName = func() map[string]cmis.ErrorKind {
	m := make(map[string]cmis.ErrorKind, len(cmis.ErrorKinds))
	for _, k := range cmis.ErrorKinds {
		m[strings.ToLower(string(k))] = k
	}
	return m
}()

// FaultToError maps a fault reported by a remote endpoint to its typed
// service error. Every kind maps to exactly one error type; unknown kinds
// become a runtime error that keeps the original kind and message.
func FaultToError(kind, message string, code int64) error {
	k, ok := kindsByName[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		k = cmis.ErrorKind(kind)
	}
	return cmis.NewServiceError(k, message, code)
}

// HTTPStatus is the HTTP status a service error of kind k is reported with.
func HTTPStatus(k cmis.ErrorKind) int {
	switch k {
	case cmis.ErrorKindObjectNotFound:
		return http.StatusNotFound
	case cmis.ErrorKindPermissionDenied, cmis.ErrorKindStreamNotSupported:
		return http.StatusForbidden
	case cmis.ErrorKindConstraint, cmis.ErrorKindContentAlreadyExists,
		cmis.ErrorKindNameConstraintViolation, cmis.ErrorKindUpdateConflict,
		cmis.ErrorKindVersioning:
		return http.StatusConflict
	case cmis.ErrorKindInvalidArgument, cmis.ErrorKindFilterNotValid:
		return http.StatusBadRequest
	case cmis.ErrorKindNotSupported:
		return http.StatusMethodNotAllowed
	}
	return http.StatusInternalServerError
}

// kindForStatus guesses the fault kind of an error response that carries
// no error body.
func kindForStatus(status int) cmis.ErrorKind {
	switch status {
	case http.StatusNotFound:
		return cmis.ErrorKindObjectNotFound
	case http.StatusForbidden, http.StatusUnauthorized:
		return cmis.ErrorKindPermissionDenied
	case http.StatusConflict:
		return cmis.ErrorKindConstraint
	case http.StatusBadRequest:
		return cmis.ErrorKindInvalidArgument
	case http.StatusMethodNotAllowed:
		return cmis.ErrorKindNotSupported
	}
	return cmis.ErrorKindRuntime
}

// ErrorBody is the JSON document an endpoint answers a failed request with.
type ErrorBody struct {
	Exception string `json:"exception"`
	Message   string `json:"message"`
	Code      int64  `json:"code,omitempty"`
}

// ErrorBodyFor describes err.
func ErrorBodyFor(err error) ErrorBody {
	if se, ok := cmis.AsServiceError(err); ok {
		return ErrorBody{Exception: se.OriginalKind(), Message: se.Message, Code: se.Code}
	}
	return ErrorBody{Exception: string(ConversionKind(err)), Message: err.Error()}
}

// ConversionKind is the fault kind a failed conversion is reported as.
// Errors that are not conversion failures are runtime faults.
func ConversionKind(err error) cmis.ErrorKind {
	switch {
	case errors.Is(err, cmis.ErrMalformedInput):
		return cmis.ErrorKindInvalidArgument
	case errors.Is(err, cmis.ErrVersionViolation):
		return cmis.ErrorKindNotSupported
	case errors.Is(err, cmis.ErrInvalidData):
		return cmis.ErrorKindConstraint
	}
	return cmis.KindOf(err)
}

// Err returns the typed service error the body describes.
func (b ErrorBody) Err() error {
	return FaultToError(b.Exception, b.Message, b.Code)
}

// WriteErrorBody writes the error body for err.
func WriteErrorBody(w io.Writer, err error) error {
	if encErr := json.NewEncoder(w).Encode(ErrorBodyFor(err)); encErr != nil {
		return oops.Code(CodeTransport).Wrapf(encErr, "write error body")
	}
	return nil
}

// TransportError reports a request that never produced a CMIS answer: the
// connection failed, or a gateway answered in place of the endpoint.
// Transport errors are the only errors an [HTTPPort] retries.
type TransportError struct {
	Method string
	URL    string
	// Status is the HTTP status, or 0 when no response arrived.
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// retryableStatus reports whether a response status without an error body
// means the endpoint was not reached.
func retryableStatus(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusTooManyRequests:
		return true
	}
	return false
}
