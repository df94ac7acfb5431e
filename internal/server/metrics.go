// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts and times the requests a Handler serves.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the request metrics and registers them with reg.
// Panics if registration fails (following prometheus convention).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gocmis_requests_total",
				Help: "Total number of CMIS requests by operation and HTTP status",
			},
			[]string{"operation", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gocmis_request_duration_seconds",
				Help:    "CMIS request duration in seconds by operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.RequestDuration)
	return m
}

// record is a no-op on a nil receiver.
func (m *Metrics) record(operation string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(d.Seconds())
}
