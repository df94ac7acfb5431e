// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gocmis/gocmis/internal/binding"
	"github.com/gocmis/gocmis/internal/observability"
	"github.com/gocmis/gocmis/internal/wsconv"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// respond writes the result of an operation: nothing, a content stream, or
// a document in the negotiated format. Documents are encoded before the
// status is written so encode failures still produce an error response.
func (h *Handler) respond(x *exchange, result any) error {
	switch v := result.(type) {
	case nil:
		x.status = http.StatusNoContent
		x.w.WriteHeader(x.status)
		return nil
	case *cmis.ContentStream:
		h.writeContent(x, v)
		return nil
	}

	var buf bytes.Buffer
	if err := binding.Transport(x.codec).Encode(&buf, x.version, result); err != nil {
		return err
	}
	x.status = http.StatusOK
	x.w.Header().Set("Content-Type", x.codec.ContentType())
	x.w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	x.w.WriteHeader(x.status)
	if _, err := buf.WriteTo(x.w); err != nil {
		observability.RecordResponseWriteFailure(x.operation)
		h.log.Debug("response write failed", "operation", x.operation, "error", err)
	}
	return nil
}

// writeContent streams cs to the client and closes it.
func (h *Handler) writeContent(x *exchange, cs *cmis.ContentStream) {
	defer cs.Close()

	hdr := x.w.Header()
	hdr.Set("Content-Type", orDefault(cs.MimeType, "application/octet-stream"))
	if cs.Filename != "" {
		hdr.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": cs.Filename}))
	}
	if n, ok := cs.KnownLength(); ok {
		hdr.Set("Content-Length", strconv.FormatInt(n, 10))
	}
	x.status = http.StatusOK
	x.w.WriteHeader(x.status)
	if x.r.Method == http.MethodHead || cs.Stream == nil {
		return
	}
	if _, err := io.Copy(x.w, cs.Stream); err != nil {
		observability.RecordResponseWriteFailure(x.operation)
		h.log.Warn("content download interrupted", "repository", x.repositoryID, "error", err)
	}
}

// asFault turns any error into the service error it is reported as.
func asFault(err error) cmis.ServiceFault {
	var fault cmis.ServiceFault
	if errors.As(err, &fault) {
		return fault
	}
	kind := binding.ConversionKind(err)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = cmis.ErrorKindRuntime
	}
	return cmis.NewServiceError(kind, err.Error(), 0)
}

// writeFault writes a SOAP fault to Web Services clients and a JSON error
// body to everyone else.
func (h *Handler) writeFault(x *exchange, operation string, fault cmis.ServiceFault) {
	var err error
	if x.codec != nil && x.codec.Name() == wsconv.New().Name() {
		x.w.Header().Set("Content-Type", wsconv.ContentType)
		x.w.WriteHeader(x.status)
		err = wsconv.EncodeFault(x.w, fault)
	} else {
		x.w.Header().Set("Content-Type", "application/json")
		x.w.WriteHeader(x.status)
		err = binding.WriteErrorBody(x.w, fault)
	}
	if err != nil {
		observability.RecordResponseWriteFailure(operation)
		h.log.Debug("fault write failed", "operation", operation, "error", err)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func invalidArgument(format string, args ...any) error {
	return cmis.NewServiceError(cmis.ErrorKindInvalidArgument, fmt.Sprintf(format, args...), 0)
}
