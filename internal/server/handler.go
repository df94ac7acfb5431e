// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

// Package server is the server side of the CMIS HTTP binding: it decodes
// requests addressed to a repository or object URL, dispatches them to a
// Repository and answers in the negotiated wire format.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gocmis/gocmis/internal/binding"
	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/internal/jsonconv"
	"github.com/gocmis/gocmis/internal/wsconv"
	"github.com/gocmis/gocmis/internal/xmlconv"
	"github.com/gocmis/gocmis/pkg/cmis"
	"github.com/gocmis/gocmis/pkg/errutil"
)

var tracer = otel.Tracer("gocmis/server")

// Repository is the backing store a Handler serves.
type Repository interface {
	binding.Services
}

// Handler serves the CMIS HTTP binding for one Repository.
type Handler struct {
	repo    Repository
	codecs  *codec.Registry
	version cmis.Version
	log     *slog.Logger
	metrics *Metrics
	mux     *http.ServeMux
}

// Option configures a Handler.
type Option func(*Handler)

// WithCodecs sets the formats the handler speaks. The first codec is used
// when a request names none. The default serves json, xml and ws.
func WithCodecs(r *codec.Registry) Option {
	return func(h *Handler) {
		h.codecs = r
	}
}

// WithVersion sets the CMIS version used when a request names none.
func WithVersion(v cmis.Version) Option {
	return func(h *Handler) {
		h.version = v
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		h.log = l
	}
}

// WithMetrics records every request in m.
func WithMetrics(m *Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// DefaultCodecs returns a registry with the JSON, XML and Web Services
// codecs, JSON first.
func DefaultCodecs() *codec.Registry {
	return codec.NewRegistry(jsonconv.New(), xmlconv.New(), wsconv.New())
}

// NewHandler returns a handler serving repo.
func NewHandler(repo Repository, opts ...Option) *Handler {
	h := &Handler{
		repo:    repo,
		version: cmis.Version11,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.codecs == nil {
		h.codecs = DefaultCodecs()
	}
	h.mux = http.NewServeMux()
	h.mux.HandleFunc(binding.BasePath+"/{repository}", func(w http.ResponseWriter, r *http.Request) {
		h.serve(w, r, false)
	})
	h.mux.HandleFunc(binding.BasePath+"/{repository}/"+binding.ObjectPath, func(w http.ResponseWriter, r *http.Request) {
		h.serve(w, r, true)
	})
	return h
}

// ServeHTTP implements [http.Handler].
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// exchange is one request in flight.
type exchange struct {
	w            http.ResponseWriter
	r            *http.Request
	repositoryID string
	q            binding.Query
	operation    string
	codec        codec.Codec
	version      cmis.Version
	status       int
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, object bool) {
	start := time.Now()
	x := &exchange{
		w:            w,
		r:            r,
		repositoryID: r.PathValue("repository"),
		q:            binding.Query{Values: r.URL.Query()},
	}
	name, op, err := h.resolve(x, object)
	if name == "" {
		name = "unknown"
	}
	x.operation = name

	ctx, span := tracer.Start(r.Context(), "cmis."+name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("cmis.repository_id", x.repositoryID),
			attribute.String("cmis.operation", name),
		),
	)
	defer span.End()

	if err == nil {
		span.SetAttributes(
			attribute.String("cmis.format", x.codec.Name()),
			attribute.String("cmis.version", string(x.version)),
		)
		err = h.run(ctx, x, op)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.fail(x, name, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", x.status))
	h.metrics.record(name, x.status, time.Since(start))
	h.log.Debug("cmis request",
		"operation", name,
		"repository", x.repositoryID,
		"status", x.status,
		"duration", time.Since(start))
}

// resolve picks the operation a request names and negotiates its format
// and version.
func (h *Handler) resolve(x *exchange, object bool) (string, *operation, error) {
	name, op, err := lookup(x.r.Method, x.q, object)

	c, cerr := h.codecs.Negotiate(x.q.String(binding.ParamFormat), x.r.Header.Get("Accept"))
	if cerr != nil {
		// Errors are still answered, in the default format.
		c, _ = h.codecs.Negotiate("", "")
		if err == nil {
			err = invalidArgument("%v", cerr)
		}
	}
	x.codec = c

	x.version = h.version
	if s := x.q.String(binding.ParamVersion); s != "" {
		v, verr := cmis.ParseVersion(s)
		if verr != nil && err == nil {
			err = invalidArgument("parameter %s: unknown CMIS version %q", binding.ParamVersion, s)
		}
		if verr == nil {
			x.version = v
		}
	}
	return name, op, err
}

func (h *Handler) run(ctx context.Context, x *exchange, op *operation) error {
	in, err := readBody(x, op)
	if err != nil {
		return err
	}
	defer in.close()

	c := &call{
		repo:         h.repo,
		repositoryID: x.repositoryID,
		q:            x.q,
		in:           in,
	}
	result, err := op.run(ctx, c)
	if err != nil {
		return err
	}
	return h.respond(x, result)
}

// fail answers a failed request. Client faults are logged at warn level;
// runtime and storage faults at error level.
func (h *Handler) fail(x *exchange, operation string, err error) {
	fault := asFault(err)
	x.status = binding.HTTPStatus(fault.Service().Kind)
	log := h.log.With("operation", operation, "repository", x.repositoryID)
	if x.status >= http.StatusInternalServerError {
		errutil.LogError(log, "cmis request failed", err)
	} else {
		errutil.LogWarn(log, "cmis request rejected", err)
	}
	h.writeFault(x, operation, fault)
}
