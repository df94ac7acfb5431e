// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package codec_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/pkg/cmis"
	"github.com/gocmis/gocmis/pkg/errutil"
)

type fakeCodec struct {
	name        string
	contentType string
	err         error
}

func (f *fakeCodec) Name() string        { return f.name }
func (f *fakeCodec) ContentType() string { return f.contentType }

func (f *fakeCodec) Encode(w io.Writer, _ cmis.Version, _ any) error {
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, f.name)
	return err
}

func (f *fakeCodec) Decode(_ io.Reader, _ cmis.Version, _ codec.Kind, _ ...codec.DecodeOption) (any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return cmis.NewProperties(), nil
}

func newTestRegistry() *codec.Registry {
	return codec.NewRegistry(
		&fakeCodec{name: "xml", contentType: "application/xml"},
		&fakeCodec{name: "json", contentType: "application/json; charset=utf-8"},
		&fakeCodec{name: "ws", contentType: "text/xml"},
	)
}

func TestRegistry_Lookup(t *testing.T) {
	r := newTestRegistry()
	assert.Equal(t, []string{"xml", "json", "ws"}, r.Names())

	c, err := r.Lookup("JSON")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	_, err = r.Lookup("yaml")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, codec.CodeUnknownFormat)
	errutil.AssertErrorContext(t, err, "format", "yaml")
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := newTestRegistry()
	r.Register(&fakeCodec{name: "json", contentType: "application/json"})

	assert.Equal(t, []string{"xml", "json", "ws"}, r.Names())
	c, err := r.Lookup("json")
	require.NoError(t, err)
	assert.Equal(t, "application/json", c.ContentType())
}

func TestRegistry_ForContentType(t *testing.T) {
	r := newTestRegistry()

	tests := []struct {
		contentType string
		want        string
		found       bool
	}{
		{"application/xml", "xml", true},
		{"application/json", "json", true},
		{"application/json; charset=utf-8", "json", true},
		{"TEXT/XML", "ws", true},
		{"application/atom+xml", "", false},
		{"not a media type;;", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			c, ok := r.ForContentType(tt.contentType)
			require.Equal(t, tt.found, ok)
			if ok {
				assert.Equal(t, tt.want, c.Name())
			}
		})
	}
}

func TestRegistry_Negotiate(t *testing.T) {
	r := newTestRegistry()

	tests := []struct {
		name    string
		format  string
		accept  string
		want    string
		wantErr bool
	}{
		{name: "explicit format", format: "ws", accept: "application/json", want: "ws"},
		{name: "accept header", accept: "text/html, application/json;q=0.9", want: "json"},
		{name: "no match uses default", accept: "text/html", want: "xml"},
		{name: "empty", want: "xml"},
		{name: "unknown format", format: "csv", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := r.Negotiate(tt.format, tt.accept)
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, codec.CodeUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Name())
		})
	}
}

func TestRegistry_NegotiateEmpty(t *testing.T) {
	_, err := codec.NewRegistry().Negotiate("", "")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, codec.CodeUnknownFormat)
}

func TestParseKind(t *testing.T) {
	for _, k := range codec.Kinds {
		got, err := codec.ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := codec.ParseKind("folder")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, codec.CodeUnknownKind)
}

func TestKindOf(t *testing.T) {
	k, ok := codec.KindOf(cmis.NewProperties())
	assert.True(t, ok)
	assert.Equal(t, codec.KindProperties, k)

	k, ok = codec.KindOf([]*cmis.TypeDefinitionContainer{})
	assert.True(t, ok)
	assert.Equal(t, codec.KindTypeTree, k)

	_, ok = codec.KindOf(42)
	assert.False(t, ok)
}

func TestDecodeOptions_CheckProperty(t *testing.T) {
	def := &cmis.PropertyDefinition{
		ID:           "my:status",
		PropertyType: cmis.PropertyTypeString,
		Cardinality:  cmis.CardinalitySingle,
		Updatability: cmis.UpdatabilityReadWrite,
	}
	td := cmis.NewTypeDefinitionBuilder("my:doc", cmis.BaseTypeDocument).
		ParentTypeID("cmis:document").
		PropertyDefinition(def).
		MustBuild()
	opts := codec.NewDecodeOptions(codec.WithDefinitions(td))

	got, ok := opts.Definition("my:status")
	require.True(t, ok)
	assert.Equal(t, def.ID, got.ID)

	assert.NoError(t, opts.CheckProperty("/p", cmis.NewStringProperty("my:status", "a")))
	assert.NoError(t, opts.CheckProperty("/p", cmis.NewStringProperty("my:other", "a", "b")))

	err := opts.CheckProperty("/p", cmis.NewStringProperty("my:status", "a", "b"))
	require.Error(t, err)
	assert.ErrorIs(t, err, cmis.ErrMalformedInput)

	_, ok = codec.NewDecodeOptions().Definition("my:status")
	assert.False(t, ok)
}
