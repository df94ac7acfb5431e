// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package wsconv_test

import (
	"bytes"
	"errors"
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

func TestEnvelope_RoundTrip(t *testing.T) {
	want := cmistest.Object(cmis.Version11)

	var buf bytes.Buffer
	require.NoError(t, wsconv.EncodeEnvelope(&buf, cmis.Version11, want))
	assert.Contains(t, buf.String(), `<Envelope xmlns="`+wsconv.NamespaceSOAP+`">`)

	got, err := wsconv.DecodeEnvelope(&buf, cmis.Version11, codec.KindObject)
	require.NoError(t, err)
	od, ok := got.(*cmis.ObjectData)
	require.True(t, ok)
	cmistest.AssertObjectDataEqual(t, want, od)
}

func TestDecodeEnvelope_PrefixesDeclaredOnEnvelope(t *testing.T) {
	doc := `<?xml version="1.0"?>` +
		`<soapenv:Envelope xmlns:soapenv="` + wsconv.NamespaceSOAP + `" xmlns:cmis="` + wsconv.NamespaceCMIS + `" xmlns:v="urn:vendor">` +
		`<soapenv:Header><v:trace>abc</v:trace></soapenv:Header>` +
		`<soapenv:Body>` +
		`<cmis:properties>` +
		`<cmis:propertyString propertyDefinitionId="cmis:name"><cmis:value>Report.docx</cmis:value></cmis:propertyString>` +
		`<v:marker v:flag="on"/><plain>text</plain>` +
		`</cmis:properties>` +
		`</soapenv:Body></soapenv:Envelope>`

	got, err := wsconv.DecodeEnvelope(strings.NewReader(doc), cmis.Version11, codec.KindProperties)
	require.NoError(t, err)
	ps, ok := got.(*cmis.Properties)
	require.True(t, ok)
	assert.Equal(t, "Report.docx", ps.Name())
	cmistest.AssertExtensionsEqual(t, []cmis.ExtensionElement{
		cmis.NewExtensionLeaf("urn:vendor", "marker", "", map[string]string{"{urn:vendor}flag": "on"}),
		cmis.NewExtensionLeaf("", "plain", "text", nil),
	}, ps.Extensions())
}

func TestDecodeEnvelope_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantPath string
	}{
		{
			name:     "not an envelope",
			doc:      `<properties xmlns="` + wsconv.NamespaceCMIS + `"/>`,
			wantPath: "/properties",
		},
		{
			name:     "no body",
			doc:      `<Envelope xmlns="` + wsconv.NamespaceSOAP + `"><Header/></Envelope>`,
			wantPath: "/Envelope",
		},
		{
			name:     "empty body",
			doc:      `<Envelope xmlns="` + wsconv.NamespaceSOAP + `"><Body> </Body></Envelope>`,
			wantPath: "/Envelope/Body",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wsconv.DecodeEnvelope(strings.NewReader(tt.doc), cmis.Version11, codec.KindProperties)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, cmis.CodeMalformedInput)
			errutil.AssertErrorContext(t, err, "path", tt.wantPath)
		})
	}
}

func TestFault_EveryKindRoundTrips(t *testing.T) {
	for _, kind := range cmis.ErrorKinds {
		t.Run(string(kind), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, wsconv.EncodeFault(&buf, cmis.NewServiceError(kind, "it failed", 42)))

			got, err := wsconv.DecodeEnvelope(&buf, cmis.Version11, codec.KindObject)
			assert.Nil(t, got)
			require.Error(t, err)
			se, ok := cmis.AsServiceError(err)
			require.True(t, ok, "got %T", err)
			assert.Equal(t, kind, se.Kind)
			assert.Equal(t, "it failed", se.Message)
			assert.Equal(t, int64(42), se.Code)
		})
	}
}

func TestEncodeFault_Document(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantType string
	}{
		{"client fault", cmis.NewServiceError(cmis.ErrorKindObjectNotFound, "no such object", 0), wsconv.FaultCodeClient, "objectNotFound"},
		{"server fault", cmis.NewServiceError(cmis.ErrorKindStorage, "disk full", 0), wsconv.FaultCodeServer, "storage"},
		{"plain error", errors.New("boom"), wsconv.FaultCodeServer, "runtime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, wsconv.EncodeFault(&buf, tt.err))
			doc := buf.String()
			assert.Contains(t, doc, "<faultcode>"+tt.wantCode+"</faultcode>")
			assert.Contains(t, doc, `<cmisFault xmlns="`+wsconv.NamespaceMessaging+`"><type>`+tt.wantType+`</type>`)
		})
	}
}

func TestDecodeFault_UnknownKindBecomesRuntime(t *testing.T) {
	doc := `<s:Envelope xmlns:s="` + wsconv.NamespaceSOAP + `"><s:Body><s:Fault>` +
		`<faultcode>s:Server</faultcode><faultstring>odd</faultstring>` +
		`<detail><m:cmisFault xmlns:m="` + wsconv.NamespaceMessaging + `">` +
		`<m:type>quotaExceeded</m:type><m:code>7</m:code><m:message>over quota</m:message>` +
		`</m:cmisFault></detail>` +
		`</s:Fault></s:Body></s:Envelope>`

	_, err := wsconv.DecodeEnvelope(strings.NewReader(doc), cmis.Version11, codec.KindObject)
	var rt *cmis.RuntimeError
	require.True(t, errors.As(err, &rt), "got %T", err)
	assert.Equal(t, cmis.ErrorKindRuntime, rt.Kind)
	assert.Equal(t, "quotaExceeded", rt.OriginalKind())
	assert.Equal(t, "over quota", rt.Message)
	assert.Equal(t, int64(7), rt.Code)
	assert.Contains(t, err.Error(), "quotaExceeded")
}

func TestDecodeFault_WithoutDetail(t *testing.T) {
	doc := `<Envelope xmlns="` + wsconv.NamespaceSOAP + `"><Body><Fault>` +
		`<faultcode>Server</faultcode><faultstring>gateway timeout</faultstring>` +
		`</Fault></Body></Envelope>`

	_, err := wsconv.DecodeEnvelope(strings.NewReader(doc), cmis.Version11, codec.KindObject)
	require.Error(t, err)
	assert.Equal(t, cmis.ErrorKindRuntime, cmis.KindOf(err))
	se, ok := cmis.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "gateway timeout", se.Message)
}
