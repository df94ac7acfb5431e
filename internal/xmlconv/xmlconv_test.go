// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package xmlconv_test

import (
	"bytes"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/internal/xmlconv"
	"github.com/gocmis/gocmis/pkg/cmis"
	"github.com/gocmis/gocmis/pkg/cmis/cmistest"
	"github.com/gocmis/gocmis/pkg/errutil"
)

var versions = []cmis.Version{cmis.Version10, cmis.Version11}

const header = `<cmis:properties xmlns:cmis="` + xmlconv.NamespaceCMIS + `" xmlns:v="urn:vendor">`

func TestCodec_RoundTrip(t *testing.T) {
	c := xmlconv.New()
	for _, v := range versions {
		for _, s := range cmistest.Samples(v) {
			t.Run(string(v)+"/"+s.Name, func(t *testing.T) {
				kind, ok := codec.KindOf(s.Value)
				require.True(t, ok)

				var buf bytes.Buffer
				require.NoError(t, c.Encode(&buf, v, s.Value))

				got, err := c.Decode(&buf, v, kind)
				require.NoError(t, err)
				assert.True(t, cmistest.Equal(s.Value, got), "round trip changed the value:\n%s", buf.String())
			})
		}
	}
}

func TestEncodeObject_Extensions(t *testing.T) {
	want := cmistest.Object(cmis.Version11)

	var buf bytes.Buffer
	require.NoError(t, xmlconv.EncodeObject(&buf, cmis.Version11, want))
	assert.Contains(t, buf.String(), `<color xmlns="`+cmistest.VendorNS+`" scheme="rgb">blue</color>`)
	assert.Contains(t, buf.String(), `<plain xmlns="">no namespace</plain>`)

	got, err := xmlconv.DecodeObject(&buf, cmis.Version11)
	require.NoError(t, err)
	cmistest.AssertExtensionsEqual(t, want.Extensions(), got.Extensions())
	cmistest.AssertObjectDataEqual(t, want, got)
}

func TestProperties_LocalNamespaceIsNotCarried(t *testing.T) {
	p := cmis.NewStringProperty("my:title", "Report")
	p.SetIdentity(cmis.PropertyIdentity{
		ID: "my:title", LocalName: "title", LocalNamespace: "urn:local", QueryName: "my:title", DisplayName: "Title",
	})
	want := cmis.NewProperties(p)

	var buf bytes.Buffer
	require.NoError(t, xmlconv.EncodeProperties(&buf, cmis.Version11, want))
	assert.NotContains(t, buf.String(), "urn:local")

	got, err := xmlconv.DecodeProperties(&buf, cmis.Version11)
	require.NoError(t, err)
	cmistest.AssertPropertiesEqual(t, want, got)

	gp, ok := got.Get("my:title")
	require.True(t, ok)
	assert.Equal(t, "title", gp.Identity().LocalName)
	assert.Empty(t, gp.Identity().LocalNamespace)
}

func TestEncodeProperties_ReportScenario(t *testing.T) {
	ps := cmis.NewProperties(
		cmis.NewStringProperty(cmis.PropName, "Report.docx"),
		cmis.NewIntegerPropertyInt64(cmis.PropContentStreamLength, 12345),
	)

	var buf bytes.Buffer
	require.NoError(t, xmlconv.EncodeProperties(&buf, cmis.Version11, ps))
	doc := buf.String()
	assert.True(t, strings.HasPrefix(doc, `<cmis:properties xmlns:cmis="`+xmlconv.NamespaceCMIS+`"`), doc)
	assert.Contains(t, doc, `<cmis:propertyString propertyDefinitionId="cmis:name"><cmis:value>Report.docx</cmis:value></cmis:propertyString>`)
	assert.Contains(t, doc, `<cmis:propertyInteger propertyDefinitionId="cmis:contentStreamLength"><cmis:value>12345</cmis:value></cmis:propertyInteger>`)

	got, err := xmlconv.DecodeProperties(strings.NewReader(doc), cmis.Version11)
	require.NoError(t, err)
	assert.Equal(t, "Report.docx", got.Name())
	assert.Equal(t, int64(12345), got.IntegerValue(cmis.PropContentStreamLength).Int64())
	cmistest.AssertPropertiesEqual(t, ps, got)
}

func TestEncode_VersionViolations(t *testing.T) {
	item := cmistest.TypeDefinitions(cmis.Version11)[4]
	require.Equal(t, cmis.BaseTypeItem, item.BaseTypeID())

	itemObject := &cmis.ObjectData{Properties: cmis.NewProperties(
		cmis.NewIDProperty(cmis.PropObjectID, "item-1"),
		cmis.NewIDProperty(cmis.PropBaseTypeID, string(cmis.BaseTypeItem)),
	)}

	tests := []struct {
		name  string
		value any
	}{
		{"item type definition", item},
		{"item object", itemObject},
		{"item in changesOnType", cmistest.RepositoryInfo(cmis.Version11)},
		{"bulk update", cmistest.BulkUpdate()},
		{"item type in list", &cmis.TypeDefinitionList{Types: []*cmis.TypeDefinition{item}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := xmlconv.New().Encode(&buf, cmis.Version10, tt.value)
			require.Error(t, err)
			assert.True(t, errors.Is(err, cmis.ErrVersionViolation), "got %v", err)

			buf.Reset()
			assert.NoError(t, xmlconv.New().Encode(&buf, cmis.Version11, tt.value))
		})
	}
}

func TestEncodeObject_DropsNewerConstructsUnder10(t *testing.T) {
	o := cmistest.Object(cmis.Version11)

	var buf bytes.Buffer
	require.NoError(t, xmlconv.EncodeObject(&buf, cmis.Version10, o))
	doc := buf.String()
	assert.NotContains(t, doc, "canCreateItem")
	assert.NotContains(t, doc, cmis.PropContentStreamHash)
	assert.NotContains(t, doc, cmis.PropSecondaryObjectTypeIDs)

	got, err := xmlconv.DecodeObject(strings.NewReader(doc), cmis.Version10)
	require.NoError(t, err)
	assert.False(t, got.AllowableActions.Has(cmis.ActionCanCreateItem))
	assert.True(t, got.AllowableActions.Has(cmis.ActionCanGetProperties))
	assert.False(t, got.Properties.Has(cmis.PropContentStreamHash))
	assert.Equal(t, "Report.docx", got.Properties.Name())
}

func TestEncodeRepositoryInfo_DropsNewerCapabilitiesUnder10(t *testing.T) {
	info := cmistest.RepositoryInfo(cmis.Version11)
	info.ChangesOnType = info.ChangesOnType[:2]

	var buf bytes.Buffer
	require.NoError(t, xmlconv.EncodeRepositoryInfo(&buf, cmis.Version10, info))
	doc := buf.String()
	for _, name := range []string{"capabilityOrderBy", "capabilityCreatablePropertyTypes", "capabilityNewTypeSettableAttributes", "extendedFeatures"} {
		assert.NotContains(t, doc, name)
	}
}

func TestDecodeRepositoryInfo_10KeepsNewerElementsAsExtensions(t *testing.T) {
	want := cmistest.RepositoryInfo(cmis.Version11)

	var buf bytes.Buffer
	require.NoError(t, xmlconv.EncodeRepositoryInfo(&buf, cmis.Version11, want))

	old, err := xmlconv.DecodeRepositoryInfo(&buf, cmis.Version10)
	require.NoError(t, err)
	assert.Equal(t, cmis.CapabilityOrderBy(""), old.Capabilities.OrderBy)
	assert.Nil(t, old.Capabilities.CreatablePropertyTypes)
	assert.Empty(t, old.ExtensionFeatures)
	assert.Contains(t, extensionNames(old.Capabilities.Extensions()), "capabilityOrderBy")
	assert.Contains(t, extensionNames(old.Extensions()), "extendedFeatures")

	// Written back under 1.0 the preserved elements reappear, and a 1.1
	// reader recognizes them again.
	old.ChangesOnType = old.ChangesOnType[:2]
	buf.Reset()
	require.NoError(t, xmlconv.EncodeRepositoryInfo(&buf, cmis.Version10, old))

	got, err := xmlconv.DecodeRepositoryInfo(&buf, cmis.Version11)
	require.NoError(t, err)
	assert.Equal(t, cmis.OrderByCommon, got.Capabilities.OrderBy)
	require.Len(t, got.ExtensionFeatures, 1)
	assert.Equal(t, "http://example.com/feature/audit", got.ExtensionFeatures[0].ID)
}

func TestDecodeProperties_UnknownElementsBecomeExtensions(t *testing.T) {
	doc := header +
		`<cmis:propertyId propertyDefinitionId="cmis:objectId">` +
		`<cmis:value>a</cmis:value><v:note>x</v:note>` +
		`</cmis:propertyId>` +
		`<v:marker v:flag="on"><v:inner>1</v:inner></v:marker>` +
		`</cmis:properties>`

	got, err := xmlconv.DecodeProperties(strings.NewReader(doc), cmis.Version11)
	require.NoError(t, err)
	assert.Equal(t, "a", got.ObjectID())

	p, ok := got.Get(cmis.PropObjectID)
	require.True(t, ok)
	cmistest.AssertExtensionsEqual(t, []cmis.ExtensionElement{
		cmis.NewExtensionLeaf("urn:vendor", "note", "x", nil),
	}, p.Extensions())

	cmistest.AssertExtensionsEqual(t, []cmis.ExtensionElement{
		cmis.NewExtensionNode("urn:vendor", "marker", map[string]string{"{urn:vendor}flag": "on"},
			cmis.NewExtensionLeaf("urn:vendor", "inner", "1", nil)),
	}, got.Extensions())
}

func TestDecodeProperties_Cardinality(t *testing.T) {
	defs := cmistest.TypeDefinitions(cmis.Version11)[0]

	tests := []struct {
		name    string
		body    string
		wantErr bool
		wantLen int
	}{
		{
			name:    "single with two values",
			body:    `<cmis:propertyString propertyDefinitionId="my:status"><cmis:value>a</cmis:value><cmis:value>b</cmis:value></cmis:propertyString>`,
			wantErr: true,
		},
		{
			name:    "single with one value",
			body:    `<cmis:propertyString propertyDefinitionId="my:status"><cmis:value>a</cmis:value></cmis:propertyString>`,
			wantLen: 1,
		},
		{
			name:    "empty multi",
			body:    `<cmis:propertyInteger propertyDefinitionId="my:pages"/>`,
			wantLen: 0,
		},
		{
			name:    "type mismatch",
			body:    `<cmis:propertyString propertyDefinitionId="my:pages"><cmis:value>1</cmis:value></cmis:propertyString>`,
			wantErr: true,
		},
		{
			name:    "undefined property",
			body:    `<cmis:propertyId propertyDefinitionId="my:other"><cmis:value>1</cmis:value><cmis:value>2</cmis:value></cmis:propertyId>`,
			wantLen: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := xmlconv.DecodeProperties(strings.NewReader(header+tt.body+`</cmis:properties>`),
				cmis.Version11, codec.WithDefinitions(defs))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, cmis.ErrMalformedInput), "got %v", err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, 1, got.Len())
			p := got.List()[0]
			assert.Equal(t, tt.wantLen, p.Len())
		})
	}
}

func TestDecodeProperties_EmptyMultiValueIsEmptyList(t *testing.T) {
	doc := header + `<cmis:propertyInteger propertyDefinitionId="my:pages"></cmis:propertyInteger></cmis:properties>`

	got, err := xmlconv.DecodeProperties(strings.NewReader(doc), cmis.Version10)
	require.NoError(t, err)
	_, ok := cmis.FirstValue[*big.Int](got, "my:pages")
	assert.False(t, ok)

	p, ok := got.Get("my:pages")
	require.True(t, ok)
	ip, ok := p.(*cmis.IntegerProperty)
	require.True(t, ok)
	assert.NotNil(t, ip.Values())
	assert.Empty(t, ip.Values())
}

func TestEncodeProperties_TruncatesDateTime(t *testing.T) {
	ps := cmis.NewProperties(cmis.NewDateTimeProperty("my:due", cmistest.Instant.Add(750*time.Millisecond)))

	var buf bytes.Buffer
	require.NoError(t, xmlconv.EncodeProperties(&buf, cmis.Version11, ps))
	assert.Contains(t, buf.String(), "<cmis:value>2026-03-14T15:09:26+02:00</cmis:value>")

	got, err := xmlconv.DecodeProperties(&buf, cmis.Version11)
	require.NoError(t, err)
	due, ok := cmis.FirstValue[time.Time](got, "my:due")
	require.True(t, ok)
	assert.True(t, due.Equal(cmistest.Instant), "got %s", due)
}

func TestDecode_MalformedInput(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantPath string
	}{
		{
			name:     "bad integer",
			doc:      header + `<cmis:propertyInteger propertyDefinitionId="n"><cmis:value>abc</cmis:value></cmis:propertyInteger></cmis:properties>`,
			wantPath: "/properties/propertyInteger[1]/value[1]",
		},
		{
			name:     "bad boolean in second property",
			doc:      header + `<cmis:propertyBoolean propertyDefinitionId="a"/><cmis:propertyBoolean propertyDefinitionId="b"><cmis:value>yes</cmis:value></cmis:propertyBoolean></cmis:properties>`,
			wantPath: "/properties/propertyBoolean[2]/value[1]",
		},
		{
			name:     "missing property id",
			doc:      header + `<cmis:propertyString><cmis:value>x</cmis:value></cmis:propertyString></cmis:properties>`,
			wantPath: "/properties/propertyString[1]",
		},
		{
			name:     "duplicate property",
			doc:      header + `<cmis:propertyId propertyDefinitionId="x"/><cmis:propertyId propertyDefinitionId="x"/></cmis:properties>`,
			wantPath: "/properties/propertyId[2]",
		},
		{
			name:     "wrong document element",
			doc:      `<cmis:acl xmlns:cmis="` + xmlconv.NamespaceCMIS + `"/>`,
			wantPath: "/acl",
		},
		{
			name:     "unterminated element",
			doc:      header + `<cmis:propertyId propertyDefinitionId="x">`,
			wantPath: "/properties/propertyId[1]",
		},
		{
			name:     "empty document",
			doc:      "  ",
			wantPath: "/",
		},
		{
			name:     "second document element",
			doc:      header + `</cmis:properties><cmis:properties xmlns:cmis="` + xmlconv.NamespaceCMIS + `"/>`,
			wantPath: "/",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := xmlconv.DecodeProperties(strings.NewReader(tt.doc), cmis.Version11)
			require.Error(t, err)
			assert.True(t, errors.Is(err, cmis.ErrMalformedInput), "got %v", err)
			errutil.AssertErrorCode(t, err, cmis.CodeMalformedInput)
			errutil.AssertErrorContext(t, err, "path", tt.wantPath)
		})
	}
}

func TestDecodeAcl_ExactFlag(t *testing.T) {
	for _, v := range versions {
		t.Run(string(v), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, xmlconv.EncodeAcl(&buf, v, cmistest.Acl()))
			assert.Contains(t, buf.String(), "<cmis:exact>true</cmis:exact>")

			got, err := xmlconv.DecodeAcl(&buf, v)
			require.NoError(t, err)
			cmistest.AssertAclEqual(t, cmistest.Acl(), got)
		})
	}
}

func TestEncodeObject_ExactACLSibling(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, xmlconv.EncodeObject(&buf, cmis.Version11, cmistest.Object(cmis.Version11)))
	assert.Contains(t, buf.String(), "</cmis:acl><cmis:exactACL>true</cmis:exactACL>")
}

func TestEncodeObject_RelationshipsOneLevel(t *testing.T) {
	o := cmistest.Object(cmis.Version11)
	o.Relationships[0].Relationships = []*cmis.ObjectData{cmistest.Object(cmis.Version11)}

	var buf bytes.Buffer
	require.NoError(t, xmlconv.EncodeObject(&buf, cmis.Version11, o))
	assert.Equal(t, 1, strings.Count(buf.String(), "<cmis:relationship>"))
}

func TestEncode_UnknownVersion(t *testing.T) {
	var buf bytes.Buffer
	err := xmlconv.EncodeProperties(&buf, cmis.Version("0.9"), cmistest.Properties())
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, cmis.CodeUnknownVersion)

	_, err = xmlconv.DecodeProperties(strings.NewReader(header+`</cmis:properties>`), cmis.Version("2.0"))
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, cmis.CodeUnknownVersion)
}

func TestCodec_Errors(t *testing.T) {
	c := xmlconv.New()
	assert.Equal(t, "xml", c.Name())
	assert.Equal(t, xmlconv.ContentType, c.ContentType())

	err := c.Encode(&bytes.Buffer{}, cmis.Version11, "not a data object")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, codec.CodeWrongType)

	got, err := c.Decode(strings.NewReader(""), cmis.Version11, codec.Kind("nonsense"))
	require.Error(t, err)
	assert.Nil(t, got)
	errutil.AssertErrorCode(t, err, codec.CodeUnknownKind)

	got, err = c.Decode(strings.NewReader("<broken"), cmis.Version11, codec.KindObject)
	require.Error(t, err)
	assert.Nil(t, got)
}

func extensionNames(ext []cmis.ExtensionElement) []string {
	names := make([]string, 0, len(ext))
	for _, x := range ext {
		names = append(names, x.Name())
	}
	return names
}
