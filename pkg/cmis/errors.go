// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package cmis

import (
	"errors"
	"fmt"

	"github.com/samber/oops"
)

// Error codes attached to oops errors raised by the data model and the
// converters.
const (
	CodeVersionViolation  = "CMIS_VERSION_VIOLATION"
	CodeMalformedInput    = "CMIS_MALFORMED_INPUT"
	CodeUnknownVersion    = "CMIS_UNKNOWN_VERSION"
	CodeInvalidData       = "CMIS_INVALID_DATA"
	CodeInvalidTypeSystem = "CMIS_INVALID_TYPE_SYSTEM"
)

// Sentinel errors wrapped by conversion and validation failures.
var (
	// ErrVersionViolation means a construct has no representation in the
	// requested protocol version.
	ErrVersionViolation = errors.New("construct not legal in CMIS version")
	// ErrMalformedInput means a wire document could not be decoded.
	ErrMalformedInput = errors.New("malformed CMIS input")
	// ErrInvalidData means an in-memory data object breaks a model rule.
	ErrInvalidData = errors.New("invalid CMIS data")
)

// VersionViolation builds the error returned when what cannot be written
// under version v.
func VersionViolation(v Version, what string) error {
	return oops.Code(CodeVersionViolation).
		With("version", string(v)).
		With("element", what).
		Wrapf(ErrVersionViolation, "%s requires CMIS %s or later, target is %s", what, Version11, v)
}

// MalformedInput builds the error returned by decoders. path identifies the
// offending element.
func MalformedInput(path, format string, args ...any) error {
	return oops.Code(CodeMalformedInput).
		With("path", path).
		Wrapf(ErrMalformedInput, "%s: %s", path, fmt.Sprintf(format, args...))
}

func invalidData(kind, id, format string, args ...any) error {
	return oops.Code(CodeInvalidData).
		With(kind, id).
		Wrapf(ErrInvalidData, "%s %q: %s", kind, id, fmt.Sprintf(format, args...))
}

// ErrorKind is the closed set of CMIS service fault kinds.
type ErrorKind string

// Service fault kinds, named as they appear in faults and error bodies.
const (
	ErrorKindConstraint              ErrorKind = "constraint"
	ErrorKindContentAlreadyExists    ErrorKind = "contentAlreadyExists"
	ErrorKindFilterNotValid          ErrorKind = "filterNotValid"
	ErrorKindInvalidArgument         ErrorKind = "invalidArgument"
	ErrorKindNameConstraintViolation ErrorKind = "nameConstraintViolation"
	ErrorKindNotSupported            ErrorKind = "notSupported"
	ErrorKindObjectNotFound          ErrorKind = "objectNotFound"
	ErrorKindPermissionDenied        ErrorKind = "permissionDenied"
	ErrorKindRuntime                 ErrorKind = "runtime"
	ErrorKindStorage                 ErrorKind = "storage"
	ErrorKindStreamNotSupported      ErrorKind = "streamNotSupported"
	ErrorKindUpdateConflict          ErrorKind = "updateConflict"
	ErrorKindVersioning              ErrorKind = "versioning"
)

// ErrorKinds lists every fault kind.
var ErrorKinds = []ErrorKind{
	ErrorKindConstraint, ErrorKindContentAlreadyExists, ErrorKindFilterNotValid,
	ErrorKindInvalidArgument, ErrorKindNameConstraintViolation, ErrorKindNotSupported,
	ErrorKindObjectNotFound, ErrorKindPermissionDenied, ErrorKindRuntime,
	ErrorKindStorage, ErrorKindStreamNotSupported, ErrorKindUpdateConflict,
	ErrorKindVersioning,
}

// Valid reports whether k is a known kind.
func (k ErrorKind) Valid() bool {
	switch k {
	case ErrorKindConstraint, ErrorKindContentAlreadyExists, ErrorKindFilterNotValid,
		ErrorKindInvalidArgument, ErrorKindNameConstraintViolation, ErrorKindNotSupported,
		ErrorKindObjectNotFound, ErrorKindPermissionDenied, ErrorKindRuntime,
		ErrorKindStorage, ErrorKindStreamNotSupported, ErrorKindUpdateConflict,
		ErrorKindVersioning:
		return true
	}
	return false
}

// ServiceError is the common part of every typed CMIS service error.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Code    int64

	unknownKind string
}

func (e *ServiceError) Error() string {
	if e.unknownKind != "" {
		return fmt.Sprintf("%s (unknown kind %q): %s", e.Kind, e.unknownKind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// OriginalKind returns the kind string the error was created with. It
// differs from Kind only for unrecognized kinds mapped to RUNTIME.
func (e *ServiceError) OriginalKind() string {
	if e.unknownKind != "" {
		return e.unknownKind
	}
	return string(e.Kind)
}

// Service returns e itself; it is promoted to every typed error so callers
// can reach the common fields through [AsServiceError].
func (e *ServiceError) Service() *ServiceError { return e }

// ServiceFault is implemented by every typed service error.
type ServiceFault interface {
	error
	Service() *ServiceError
}

// AsServiceError extracts the service error carried by err, if any.
func AsServiceError(err error) (*ServiceError, bool) {
	var fault ServiceFault
	if errors.As(err, &fault) {
		return fault.Service(), true
	}
	return nil, false
}

// KindOf returns the fault kind of err, or RUNTIME for errors that are not
// service errors.
func KindOf(err error) ErrorKind {
	if se, ok := AsServiceError(err); ok {
		return se.Kind
	}
	return ErrorKindRuntime
}

// Typed service errors, one per kind.
type (
	ConstraintError              struct{ ServiceError }
	ContentAlreadyExistsError    struct{ ServiceError }
	FilterNotValidError          struct{ ServiceError }
	InvalidArgumentError         struct{ ServiceError }
	NameConstraintViolationError struct{ ServiceError }
	NotSupportedError            struct{ ServiceError }
	ObjectNotFoundError          struct{ ServiceError }
	PermissionDeniedError        struct{ ServiceError }
	RuntimeError                 struct{ ServiceError }
	StorageError                 struct{ ServiceError }
	StreamNotSupportedError      struct{ ServiceError }
	UpdateConflictError          struct{ ServiceError }
	VersioningError              struct{ ServiceError }
)

// NewServiceError maps a fault kind to its typed error. The mapping is
// total: an unknown kind yields a *RuntimeError whose Error text names the
// unknown kind while Message keeps the original text.
func NewServiceError(kind ErrorKind, message string, code int64) ServiceFault {
	se := ServiceError{Kind: kind, Message: message, Code: code}
	switch kind {
	case ErrorKindConstraint:
		return &ConstraintError{se}
	case ErrorKindContentAlreadyExists:
		return &ContentAlreadyExistsError{se}
	case ErrorKindFilterNotValid:
		return &FilterNotValidError{se}
	case ErrorKindInvalidArgument:
		return &InvalidArgumentError{se}
	case ErrorKindNameConstraintViolation:
		return &NameConstraintViolationError{se}
	case ErrorKindNotSupported:
		return &NotSupportedError{se}
	case ErrorKindObjectNotFound:
		return &ObjectNotFoundError{se}
	case ErrorKindPermissionDenied:
		return &PermissionDeniedError{se}
	case ErrorKindRuntime:
		return &RuntimeError{se}
	case ErrorKindStorage:
		return &StorageError{se}
	case ErrorKindStreamNotSupported:
		return &StreamNotSupportedError{se}
	case ErrorKindUpdateConflict:
		return &UpdateConflictError{se}
	case ErrorKindVersioning:
		return &VersioningError{se}
	default:
		return &RuntimeError{ServiceError{Kind: ErrorKindRuntime, Message: message, Code: code, unknownKind: string(kind)}}
	}
}
