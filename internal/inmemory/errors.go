// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package inmemory

import (
	"errors"
	"fmt"

	"github.com/samber/oops"

	"github.com/gocmis/gocmis/internal/typesys"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// Error codes for failures that are not CMIS service faults.
const (
	CodeInvalidOptions = "INMEMORY_INVALID_OPTIONS"
	CodeSnapshot       = "INMEMORY_SNAPSHOT"
	CodeSeed           = "INMEMORY_SEED"
)

func fault(kind cmis.ErrorKind, format string, args ...any) error {
	return cmis.NewServiceError(kind, fmt.Sprintf(format, args...), 0)
}

func notFound(format string, args ...any) error {
	return fault(cmis.ErrorKindObjectNotFound, format, args...)
}

func invalidArgument(format string, args ...any) error {
	return fault(cmis.ErrorKindInvalidArgument, format, args...)
}

func constraint(format string, args ...any) error {
	return fault(cmis.ErrorKindConstraint, format, args...)
}

func versioning(format string, args ...any) error {
	return fault(cmis.ErrorKindVersioning, format, args...)
}

// typeError turns a type registry failure into a service fault.
func typeError(err error) error {
	if errors.Is(err, typesys.ErrTypeNotFound) {
		return fault(cmis.ErrorKindObjectNotFound, "%s", err.Error())
	}
	return oops.Wrap(err)
}
