// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package jsonconv_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/internal/jsonconv"
	"github.com/gocmis/gocmis/pkg/cmis/cmistest"
	"github.com/gocmis/gocmis/pkg/errutil"
)

func TestGenerateSchema_AllKinds(t *testing.T) {
	for _, k := range codec.Kinds {
		t.Run(string(k), func(t *testing.T) {
			data, err := jsonconv.GenerateSchema(k)
			require.NoError(t, err)

			var doc map[string]any
			require.NoError(t, json.Unmarshal(data, &doc))
			assert.Equal(t, jsonconv.SchemaID(k), doc["$id"])
			assert.Contains(t, doc, "$schema")
		})
	}
}

func TestGenerateSchema_UnknownKind(t *testing.T) {
	_, err := jsonconv.GenerateSchema(codec.Kind("bogus"))
	require.Error(t, err)
}

func TestValidate_EncodedSamples(t *testing.T) {
	c := jsonconv.New()
	for _, v := range versions {
		for _, s := range cmistest.Samples(v) {
			t.Run(string(v)+"/"+s.Name, func(t *testing.T) {
				kind, ok := codec.KindOf(s.Value)
				require.True(t, ok)

				var buf bytes.Buffer
				require.NoError(t, c.Encode(&buf, v, s.Value))
				assert.NoError(t, jsonconv.Validate(kind, buf.Bytes()), buf.String())
			})
		}
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		kind codec.Kind
		doc  string
	}{
		{"ace without principal", codec.KindAcl, `{"aces":[{"permissions":["cmis:read"]}]}`},
		{"acl without aces", codec.KindAcl, `{"isExact":true}`},
		{"unknown property type", codec.KindProperties, `{"properties":{"cmis:name":{"id":"cmis:name","type":"text","value":"x"}}}`},
		{"unknown cardinality", codec.KindProperties, `{"properties":{"cmis:name":{"id":"cmis:name","cardinality":"many"}}}`},
		{"nested value array", codec.KindProperties, `{"properties":{"tags":{"id":"tags","value":[["a"]]}}}`},
		{"not json", codec.KindObject, `{"properties":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := jsonconv.Validate(tt.kind, []byte(tt.doc))
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, jsonconv.CodeSchemaInvalid)
		})
	}
}

func TestValidate_AllowsExtensions(t *testing.T) {
	doc := `{"aces":[{"principal":{"principalId":"alice","vendor":1},"permissions":["cmis:read"],"isDirect":true}],"audit":{"level":"2"}}`
	assert.NoError(t, jsonconv.Validate(codec.KindAcl, []byte(doc)))
}
