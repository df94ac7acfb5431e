// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package wsconv_test

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/internal/wsconv"
	"github.com/gocmis/gocmis/pkg/cmis"
	"github.com/gocmis/gocmis/pkg/cmis/cmistest"
	"github.com/gocmis/gocmis/pkg/errutil"
)

var versions = []cmis.Version{cmis.Version10, cmis.Version11}

const header = `<properties xmlns="` + wsconv.NamespaceCMIS + `" xmlns:v="urn:vendor">`

func TestCodec_RoundTrip(t *testing.T) {
	c := wsconv.New()
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

func TestRootName(t *testing.T) {
	for _, k := range codec.Kinds {
		name, ok := wsconv.RootName(k)
		assert.True(t, ok, "kind %s", k)
		assert.NotEmpty(t, name, "kind %s", k)
	}
	_, ok := wsconv.RootName(codec.Kind("bogus"))
	assert.False(t, ok)
}

func TestEncodeObject_Extensions(t *testing.T) {
	want := cmistest.Object(cmis.Version11)

	var buf bytes.Buffer
	require.NoError(t, wsconv.EncodeObject(&buf, cmis.Version11, want))
	doc := buf.String()
	assert.True(t, strings.HasPrefix(doc, `<object xmlns="`+wsconv.NamespaceCMIS+`">`), doc)
	assert.Contains(t, doc, `<color xmlns="`+cmistest.VendorNS+`" scheme="rgb">blue</color>`)
	assert.Contains(t, doc, `<plain xmlns="">no namespace</plain>`)

	got, err := wsconv.DecodeObject(&buf, cmis.Version11)
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
	require.NoError(t, wsconv.EncodeProperties(&buf, cmis.Version11, want))
	assert.NotContains(t, buf.String(), "urn:local")

	got, err := wsconv.DecodeProperties(&buf, cmis.Version11)
	require.NoError(t, err)
	cmistest.AssertPropertiesEqual(t, want, got)

	gp, ok := got.Get("my:title")
	require.True(t, ok)
	assert.Equal(t, "title", gp.Identity().LocalName)
	assert.Empty(t, gp.Identity().LocalNamespace)
}

func TestAllowableActions_RoundTripKeepsActions(t *testing.T) {
	for _, v := range versions {
		t.Run(string(v), func(t *testing.T) {
			want := cmis.NewAllowableActions(cmis.ActionCanDeleteObject, cmis.ActionCanGetProperties, cmis.ActionCanCreateItem)

			var buf bytes.Buffer
			require.NoError(t, wsconv.EncodeAllowableActions(&buf, v, want))
			assert.NotContains(t, buf.String(), `xmlns=""`)

			got, err := wsconv.DecodeAllowableActions(&buf, v)
			require.NoError(t, err)
			assert.Equal(t, want.For(v), got.List())
			assert.Empty(t, got.Extensions())
		})
	}
}

func TestEncode_NoNamespaceExtensionsAreWellFormed(t *testing.T) {
	plain := cmis.NewExtensionLeaf("", "plain", "top", map[string]string{"a": "1"})
	nested := cmis.NewExtensionNode(cmistest.VendorNS, "box", nil,
		cmis.NewExtensionLeaf("", "inner", "deep", nil),
		cmis.NewExtensionLeaf(cmistest.VendorNS, "sibling", "x", nil),
	)
	acl := cmistest.Acl()
	acl.SetExtensions([]cmis.ExtensionElement{plain, nested})
	acl.Aces[0].SetExtensions([]cmis.ExtensionElement{plain})

	var buf bytes.Buffer
	require.NoError(t, wsconv.EncodeAcl(&buf, cmis.Version11, acl))
	doc := buf.String()
	assert.NotContains(t, doc, `xmlns="" xmlns=""`)
	assert.Contains(t, doc, `<plain xmlns="" a="1">top</plain>`)
	assert.Contains(t, doc, `<inner xmlns="">deep</inner>`)

	// Every start element must be well formed for a strict reader.
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}

	got, err := wsconv.DecodeAcl(strings.NewReader(doc), cmis.Version11)
	require.NoError(t, err)
	cmistest.AssertExtensionsEqual(t, acl.Extensions(), got.Extensions())
	cmistest.AssertExtensionsEqual(t, acl.Aces[0].Extensions(), got.Aces[0].Extensions())
}

func TestEncodeObject_ExactACLSibling(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, wsconv.EncodeObject(&buf, cmis.Version11, cmistest.Object(cmis.Version11)))
	doc := buf.String()
	assert.Contains(t, doc, "</acl><exactACL>true</exactACL>")
	assert.NotContains(t, doc, "<exact>")

	buf.Reset()
	require.NoError(t, wsconv.EncodeAcl(&buf, cmis.Version11, cmistest.Acl()))
	assert.Contains(t, buf.String(), "<exact>true</exact></acl>")
}

func TestEncodeProperties_ReportScenario(t *testing.T) {
	ps := cmis.NewProperties(
		cmis.NewStringProperty(cmis.PropName, "Report.docx"),
		cmis.NewIntegerPropertyInt64(cmis.PropContentStreamLength, 12345),
	)

	var buf bytes.Buffer
	require.NoError(t, wsconv.EncodeProperties(&buf, cmis.Version11, ps))
	doc := buf.String()
	assert.Contains(t, doc, `<propertyString propertyDefinitionId="cmis:name"><value>Report.docx</value></propertyString>`)
	assert.Contains(t, doc, `<propertyInteger propertyDefinitionId="cmis:contentStreamLength"><value>12345</value></propertyInteger>`)

	got, err := wsconv.DecodeProperties(strings.NewReader(doc), cmis.Version11)
	require.NoError(t, err)
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
		{"item object in list", &cmis.ObjectList{Objects: []*cmis.ObjectData{itemObject}}},
		{"item type in tree", []*cmis.TypeDefinitionContainer{{Type: item}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := wsconv.New().Encode(&buf, cmis.Version10, tt.value)
			require.Error(t, err)
			assert.True(t, errors.Is(err, cmis.ErrVersionViolation), "got %v", err)
			assert.Zero(t, buf.Len(), "nothing is written on failure")

			buf.Reset()
			assert.NoError(t, wsconv.New().Encode(&buf, cmis.Version11, tt.value))
		})
	}
}

func TestEncodeObject_DropsNewerConstructsUnder10(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, wsconv.EncodeObject(&buf, cmis.Version10, cmistest.Object(cmis.Version11)))
	doc := buf.String()
	assert.NotContains(t, doc, "canCreateItem")
	assert.NotContains(t, doc, cmis.PropContentStreamHash)
	assert.NotContains(t, doc, cmis.PropSecondaryObjectTypeIDs)

	got, err := wsconv.DecodeObject(strings.NewReader(doc), cmis.Version10)
	require.NoError(t, err)
	assert.True(t, got.AllowableActions.Has(cmis.ActionCanGetProperties))
	assert.False(t, got.AllowableActions.Has(cmis.ActionCanCreateItem))
}

func TestDecodeAllowableActions_NewerActionIsExtensionUnder10(t *testing.T) {
	doc := `<allowableActions xmlns="` + wsconv.NamespaceCMIS + `">` +
		`<canDeleteObject>true</canDeleteObject>` +
		`<canCreateItem>true</canCreateItem>` +
		`<canMoveObject>false</canMoveObject>` +
		`</allowableActions>`

	old, err := wsconv.DecodeAllowableActions(strings.NewReader(doc), cmis.Version10)
	require.NoError(t, err)
	assert.Equal(t, []cmis.Action{cmis.ActionCanDeleteObject}, old.List())
	cmistest.AssertExtensionsEqual(t, []cmis.ExtensionElement{
		cmis.NewExtensionLeaf(wsconv.NamespaceCMIS, "canCreateItem", "true", nil),
	}, old.Extensions())

	cur, err := wsconv.DecodeAllowableActions(strings.NewReader(doc), cmis.Version11)
	require.NoError(t, err)
	assert.True(t, cur.Has(cmis.ActionCanCreateItem))
	assert.False(t, cur.Has(cmis.ActionCanMoveObject))
	assert.Empty(t, cur.Extensions())
}

func TestDecodeRepositoryInfo_10KeepsNewerElementsAsExtensions(t *testing.T) {
	want := cmistest.RepositoryInfo(cmis.Version11)
	want.ChangesOnType = want.ChangesOnType[:2]

	var buf bytes.Buffer
	require.NoError(t, wsconv.EncodeRepositoryInfo(&buf, cmis.Version11, want))

	old, err := wsconv.DecodeRepositoryInfo(&buf, cmis.Version10)
	require.NoError(t, err)
	assert.Equal(t, cmis.CapabilityOrderBy(""), old.Capabilities.OrderBy)
	assert.Nil(t, old.Capabilities.CreatablePropertyTypes)
	assert.Nil(t, old.Capabilities.NewTypeSettableAttributes)
	assert.Empty(t, old.ExtensionFeatures)
	assert.Contains(t, extensionNames(old.Capabilities.Extensions()), "capabilityOrderBy")
	assert.Contains(t, extensionNames(old.Capabilities.Extensions()), "capabilityCreatablePropertyTypes")
	assert.Contains(t, extensionNames(old.Extensions()), "extendedFeatures")

	// Written back under 1.0 the preserved elements reappear, and a 1.1
	// reader recognizes them again.
	buf.Reset()
	require.NoError(t, wsconv.EncodeRepositoryInfo(&buf, cmis.Version10, old))

	got, err := wsconv.DecodeRepositoryInfo(&buf, cmis.Version11)
	require.NoError(t, err)
	assert.Equal(t, cmis.OrderByCommon, got.Capabilities.OrderBy)
	assert.Equal(t, want.Capabilities.CreatablePropertyTypes.CanCreate, got.Capabilities.CreatablePropertyTypes.CanCreate)
	require.Len(t, got.ExtensionFeatures, 1)
	assert.Equal(t, want.ExtensionFeatures[0].ID, got.ExtensionFeatures[0].ID)
}

func TestDecodeTypeDefinition_10KeepsTypeMutabilityAsExtension(t *testing.T) {
	want := cmistest.TypeDefinitions(cmis.Version11)[1]
	require.NotNil(t, want.TypeMutability())

	var buf bytes.Buffer
	require.NoError(t, wsconv.EncodeTypeDefinition(&buf, cmis.Version11, want))
	assert.Contains(t, buf.String(), `xsi:type="cmis:cmisTypeFolderDefinitionType"`)

	old, err := wsconv.DecodeTypeDefinition(&buf, cmis.Version10)
	require.NoError(t, err)
	assert.Nil(t, old.TypeMutability())
	assert.Equal(t, []string{"typeMutability"}, extensionNames(old.Extensions()))

	buf.Reset()
	require.NoError(t, wsconv.EncodeTypeDefinition(&buf, cmis.Version10, old))
	got, err := wsconv.DecodeTypeDefinition(&buf, cmis.Version11)
	require.NoError(t, err)
	assert.True(t, cmis.TypeMutabilityEqual(want.TypeMutability(), got.TypeMutability()))
	assert.Empty(t, got.Extensions())
}

func TestDecodeTypeDefinition_PropertyDefinitionsInterleaved(t *testing.T) {
	doc := `<type xmlns="` + wsconv.NamespaceCMIS + `" xmlns:v="urn:vendor">` +
		`<id>my:doc</id><baseId>cmis:document</baseId><parentId>cmis:document</parentId>` +
		`<propertyStringDefinition><id>my:a</id><propertyType>string</propertyType>` +
		`<cardinality>single</cardinality><updatability>readwrite</updatability>` +
		`<required>false</required><queryable>true</queryable><orderable>false</orderable>` +
		`<maxLength>10</maxLength><choice displayName="one"><value>1</value></choice></propertyStringDefinition>` +
		`<v:hint>x</v:hint>` +
		`<propertyIntegerDefinition><id>my:b</id><propertyType>integer</propertyType>` +
		`<cardinality>multi</cardinality><updatability>readonly</updatability>` +
		`<required>false</required><queryable>false</queryable><orderable>false</orderable>` +
		`<maxValue>9</maxValue><minValue>-1</minValue></propertyIntegerDefinition>` +
		`<versionable>true</versionable>` +
		`</type>`

	td, err := wsconv.DecodeTypeDefinition(strings.NewReader(doc), cmis.Version11)
	require.NoError(t, err)
	assert.Equal(t, "my:doc", td.LocalName(), "local name defaults to the id")
	assert.True(t, td.Versionable())

	pds := td.PropertyDefinitions()
	require.Len(t, pds, 2)
	assert.Equal(t, "my:a", pds[0].ID)
	assert.Equal(t, int64(10), pds[0].MaxLength.Int64())
	require.Len(t, pds[0].Choices, 1)
	assert.Equal(t, []any{"1"}, pds[0].Choices[0].Values)
	assert.Equal(t, int64(-1), pds[1].MinInteger.Int64())
	assert.Equal(t, int64(9), pds[1].MaxInteger.Int64())
	cmistest.AssertExtensionsEqual(t, []cmis.ExtensionElement{
		cmis.NewExtensionLeaf("urn:vendor", "hint", "x", nil),
	}, td.Extensions())
}

func TestDecodeProperties_UnknownElementsBecomeExtensions(t *testing.T) {
	doc := header +
		`<propertyId propertyDefinitionId="cmis:objectId">` +
		`<value>a</value><v:note>x</v:note>` +
		`</propertyId>` +
		`<v:marker v:flag="on"><v:inner>1</v:inner></v:marker>` +
		`</properties>`

	got, err := wsconv.DecodeProperties(strings.NewReader(doc), cmis.Version11)
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
			body:    `<propertyString propertyDefinitionId="my:status"><value>a</value><value>b</value></propertyString>`,
			wantErr: true,
		},
		{
			name:    "single with one value",
			body:    `<propertyString propertyDefinitionId="my:status"><value>a</value></propertyString>`,
			wantLen: 1,
		},
		{
			name:    "empty multi",
			body:    `<propertyInteger propertyDefinitionId="my:pages"/>`,
			wantLen: 0,
		},
		{
			name:    "type mismatch",
			body:    `<propertyString propertyDefinitionId="my:pages"><value>1</value></propertyString>`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := wsconv.DecodeProperties(strings.NewReader(header+tt.body+`</properties>`),
				cmis.Version11, codec.WithDefinitions(defs))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, cmis.ErrMalformedInput), "got %v", err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, 1, got.Len())
			assert.Equal(t, tt.wantLen, got.List()[0].Len())
		})
	}
}

func TestDecode_MalformedInput(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantPath string
	}{
		{
			name:     "bad integer",
			doc:      header + `<propertyInteger propertyDefinitionId="n"><value>abc</value></propertyInteger></properties>`,
			wantPath: "/properties/propertyInteger[1]/value[1]",
		},
		{
			name:     "bad boolean in second property",
			doc:      header + `<propertyBoolean propertyDefinitionId="a"/><propertyBoolean propertyDefinitionId="b"><value>yes</value></propertyBoolean></properties>`,
			wantPath: "/properties/propertyBoolean[2]/value[1]",
		},
		{
			name:     "missing property id",
			doc:      header + `<propertyString><value>x</value></propertyString></properties>`,
			wantPath: "/properties/propertyString[1]",
		},
		{
			name:     "duplicate property",
			doc:      header + `<propertyId propertyDefinitionId="x"/><propertyId propertyDefinitionId="x"/></properties>`,
			wantPath: "/properties/propertyId[2]",
		},
		{
			name:     "wrong document element",
			doc:      `<acl xmlns="` + wsconv.NamespaceCMIS + `"/>`,
			wantPath: "/acl",
		},
		{
			name:     "unterminated element",
			doc:      header + "\n" + `<propertyId propertyDefinitionId="x">`,
			wantPath: "/properties (line 2)",
		},
		{
			name:     "empty document",
			doc:      "  ",
			wantPath: "/",
		},
		{
			name:     "second document element",
			doc:      header + `</properties><properties xmlns="` + wsconv.NamespaceCMIS + `"/>`,
			wantPath: "/",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wsconv.DecodeProperties(strings.NewReader(tt.doc), cmis.Version11)
			require.Error(t, err)
			assert.True(t, errors.Is(err, cmis.ErrMalformedInput), "got %v", err)
			errutil.AssertErrorCode(t, err, cmis.CodeMalformedInput)
			errutil.AssertErrorContext(t, err, "path", tt.wantPath)
		})
	}
}

func TestDecodeObject_MalformedPaths(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantPath string
	}{
		{
			name:     "bad rendition length",
			body:     `<rendition><streamId>s</streamId><mimetype>a/b</mimetype><kind>k</kind></rendition><rendition><streamId>t</streamId><mimetype>a/b</mimetype><length>big</length><kind>k</kind></rendition>`,
			wantPath: "/object/rendition[2]/length",
		},
		{
			name:     "bad change type",
			body:     `<changeEventInfo><changeType>renamed</changeType><changeTime>2026-03-14T15:09:26Z</changeTime></changeEventInfo>`,
			wantPath: "/object/changeEventInfo/changeType",
		},
		{
			name:     "bad action flag",
			body:     `<allowableActions><canDeleteObject>maybe</canDeleteObject></allowableActions>`,
			wantPath: "/object/allowableActions/canDeleteObject",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `<object xmlns="` + wsconv.NamespaceCMIS + `">` + tt.body + `</object>`
			_, err := wsconv.DecodeObject(strings.NewReader(doc), cmis.Version11)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, cmis.CodeMalformedInput)
			errutil.AssertErrorContext(t, err, "path", tt.wantPath)
		})
	}
}

func TestEncode_UnknownVersion(t *testing.T) {
	var buf bytes.Buffer
	err := wsconv.EncodeProperties(&buf, cmis.Version("2.0"), cmistest.Properties())
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, cmis.CodeUnknownVersion)

	_, err = wsconv.DecodeProperties(strings.NewReader(header+`</properties>`), cmis.Version("0.9"))
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, cmis.CodeUnknownVersion)
}

func TestCodec_Errors(t *testing.T) {
	c := wsconv.New()
	assert.Equal(t, "ws", c.Name())
	assert.Equal(t, wsconv.ContentType, c.ContentType())

	err := c.Encode(&bytes.Buffer{}, cmis.Version11, "not a data object")
	errutil.AssertErrorCode(t, err, codec.CodeWrongType)

	got, err := c.Decode(strings.NewReader(header+`</properties>`), cmis.Version11, codec.Kind("bogus"))
	assert.Nil(t, got)
	errutil.AssertErrorCode(t, err, codec.CodeUnknownKind)

	got, err = c.Decode(strings.NewReader("<"), cmis.Version11, codec.KindObject)
	assert.Nil(t, got)
	require.Error(t, err)
}

func extensionNames(ext []cmis.ExtensionElement) []string {
	names := make([]string, 0, len(ext))
	for _, x := range ext {
		names = append(names, x.Name())
	}
	return names
}
