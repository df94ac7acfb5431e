// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package codec_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/pkg/cmis"
)

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	codec.RegisterMetrics(reg)

	codec.RecordConversion("xml", codec.KindAcl, "encode", nil, 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	registered := make(map[string]bool)
	for _, family := range families {
		registered[family.GetName()] = true
	}
	assert.True(t, registered["gocmis_conversions_total"])
	assert.True(t, registered["gocmis_conversion_duration_seconds"])

	assert.Panics(t, func() { codec.RegisterMetrics(reg) })
}

func TestInstrument_RecordsResults(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		result string
	}{
		{"success", nil, codec.ResultSuccess},
		{"version violation", cmis.VersionViolation(cmis.Version10, "bulkUpdate"), codec.ResultVersionViolation},
		{"malformed", cmis.MalformedInput("/x", "bad"), codec.ResultMalformed},
		{"other", errors.New("disk full"), codec.ResultError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := "fake-" + strings.ReplaceAll(tt.name, " ", "-")
			c := codec.Instrument(&fakeCodec{name: name, contentType: "text/plain", err: tt.err})
			assert.Equal(t, name, c.Name())

			encodes := codec.Conversions.WithLabelValues(name, string(codec.KindProperties), "encode", tt.result)
			decodes := codec.Conversions.WithLabelValues(name, string(codec.KindAcl), "decode", tt.result)
			before := testutil.ToFloat64(encodes)

			var buf bytes.Buffer
			err := c.Encode(&buf, cmis.Version11, cmis.NewProperties())
			assert.Equal(t, tt.err, err)
			_, err = c.Decode(&buf, cmis.Version11, codec.KindAcl)
			assert.Equal(t, tt.err, err)

			assert.Equal(t, before+1, testutil.ToFloat64(encodes))
			assert.Equal(t, float64(1), testutil.ToFloat64(decodes))
		})
	}
}
