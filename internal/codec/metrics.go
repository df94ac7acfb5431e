// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package codec

import (
	"errors"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// Result labels for conversion metrics.
const (
	ResultSuccess          = "success"
	ResultError            = "error"
	ResultVersionViolation = "version_violation"
	ResultMalformed        = "malformed"
)

// Conversions counts encode and decode calls.
// Use RegisterMetrics to register this with a Prometheus registry.
var Conversions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gocmis_conversions_total",
		Help: "Total number of CMIS encode and decode calls",
	},
	[]string{"format", "kind", "op", "result"},
)

// ConversionDuration records how long conversions take.
// Use RegisterMetrics to register this with a Prometheus registry.
var ConversionDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "gocmis_conversion_duration_seconds",
		Help:    "CMIS encode and decode duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"format", "op"},
)

// RegisterMetrics registers codec metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Conversions)
	reg.MustRegister(ConversionDuration)
}

// RecordConversion counts one conversion and its duration.
func RecordConversion(format string, kind Kind, op string, err error, duration time.Duration) {
	Conversions.WithLabelValues(format, string(kind), op, resultOf(err)).Inc()
	ConversionDuration.WithLabelValues(format, op).Observe(duration.Seconds())
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, cmis.ErrVersionViolation):
		return ResultVersionViolation
	case errors.Is(err, cmis.ErrMalformedInput):
		return ResultMalformed
	}
	return ResultError
}

// Instrument wraps c so that every call is recorded in the conversion
// metrics.
func Instrument(c Codec) Codec {
	return &instrumented{Codec: c}
}

type instrumented struct {
	Codec
}

func (i *instrumented) Encode(w io.Writer, v cmis.Version, value any) error {
	start := time.Now()
	err := i.Codec.Encode(w, v, value)
	kind, _ := KindOf(value)
	RecordConversion(i.Name(), kind, "encode", err, time.Since(start))
	return err
}

func (i *instrumented) Decode(r io.Reader, v cmis.Version, k Kind, opts ...DecodeOption) (any, error) {
	start := time.Now()
	value, err := i.Codec.Decode(r, v, k, opts...)
	RecordConversion(i.Name(), k, "decode", err, time.Since(start))
	return value, err
}
