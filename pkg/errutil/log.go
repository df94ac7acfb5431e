// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

// Package errutil logs and asserts structured errors: oops errors with
// their code and context, and CMIS service errors with their fault kind.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// Attrs returns the structured attributes describing err.
// Service errors contribute their kind and numeric code; oops errors their
// code and context.
func Attrs(err error) []any {
	attrs := []any{"error", err.Error()}
	if se, ok := cmis.AsServiceError(err); ok {
		attrs = append(attrs, "kind", se.OriginalKind())
		if se.Code != 0 {
			attrs = append(attrs, "cmis_code", se.Code)
		}
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		if code := oopsErr.Code(); code != nil && code != "" {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
	}
	return attrs
}

// LogError logs err at error level with its structured attributes.
func LogError(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, Attrs(err)...)
}

// LogWarn logs err at warn level. Client faults such as a missing object
// are expected and are logged here rather than as errors.
func LogWarn(logger *slog.Logger, msg string, err error) {
	logger.Warn(msg, Attrs(err)...)
}
