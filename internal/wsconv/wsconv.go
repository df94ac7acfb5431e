// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

// Package wsconv converts CMIS data objects to and from the documents of the
// Web Services binding. Each data object is bound to a set of wire structs
// that encoding/xml marshals directly; elements the structs have no field
// for are captured and preserved as extension elements. SOAP 1.1 envelopes
// and cmisFault bodies are handled in soap.go.
package wsconv

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/samber/oops"

	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// Namespaces used by Web Services documents.
const (
	NamespaceCMIS      = "http://docs.oasis-open.org/ns/cmis/core/200908/"
	NamespaceMessaging = "http://docs.oasis-open.org/ns/cmis/messaging/200908/"
	NamespaceXSI       = "http://www.w3.org/2001/XMLSchema-instance"
)

// ContentType is the MIME type of SOAP 1.1 messages.
const ContentType = "text/xml; charset=utf-8"

// CodeWrite marks failures of the underlying writer.
const CodeWrite = "WS_WRITE_FAILED"

// Document element names per kind. Every document element is in the CMIS
// core namespace.
var rootNames = map[codec.Kind]string{
	codec.KindProperties:         "properties",
	codec.KindObject:             "object",
	codec.KindObjectList:         "objects",
	codec.KindObjectInFolderList: "children",
	codec.KindObjectParents:      "parents",
	codec.KindObjectTree:         "descendants",
	codec.KindTypeDefinition:     "type",
	codec.KindTypeDefinitionList: "types",
	codec.KindTypeTree:           "typeDescendants",
	codec.KindAcl:                "acl",
	codec.KindAllowableActions:   "allowableActions",
	codec.KindRepositoryInfo:     "repositoryInfo",
	codec.KindRendition:          "rendition",
	codec.KindChangeEventInfo:    "changeEventInfo",
	codec.KindQuery:              "query",
	codec.KindBulkUpdate:         "bulkUpdate",
}

// RootName returns the document element name used for kind k.
func RootName(k codec.Kind) (string, bool) {
	name, ok := rootNames[k]
	return name, ok
}

func unknownVersion(v cmis.Version) error {
	return oops.Code(cmis.CodeUnknownVersion).With("version", string(v)).Errorf("unknown CMIS version %q", v)
}

// marshal writes wire as the document element root.
func marshal(w io.Writer, root string, wire any) error {
	enc := xml.NewEncoder(w)
	if err := enc.EncodeElement(wire, xml.StartElement{Name: xml.Name{Space: NamespaceCMIS, Local: root}}); err != nil {
		return oops.Code(CodeWrite).With("element", root).Wrapf(err, "marshal %s", root)
	}
	if err := enc.Flush(); err != nil {
		return oops.Code(CodeWrite).Wrapf(err, "flush xml")
	}
	return nil
}

// encode converts value with build and marshals the result.
func encode[T, W any](w io.Writer, v cmis.Version, root string, value T, build func(e encoder, value T) (W, error)) error {
	if !v.Valid() {
		return unknownVersion(v)
	}
	wire, err := build(encoder{v: v}, value)
	if err != nil {
		return err
	}
	return marshal(w, root, wire)
}

// unmarshal reads the document element root into wire.
func unmarshal(r io.Reader, root string, wire any) error {
	dec := xml.NewDecoder(r)
	start, err := documentElement(dec)
	if err != nil {
		return err
	}
	if start.Name.Space != NamespaceCMIS || start.Name.Local != root {
		return cmis.MalformedInput("/"+start.Name.Local, "expected {%s}%s, found {%s}%s",
			NamespaceCMIS, root, start.Name.Space, start.Name.Local)
	}
	if err := dec.DecodeElement(wire, &start); err != nil {
		return syntaxError("/"+root, err)
	}
	return trailing(dec)
}

// decode unmarshals the document element root and converts it with conv.
func decode[T, W any](r io.Reader, v cmis.Version, opts []codec.DecodeOption, root string, conv func(d decoder, wire *W) (T, error)) (T, error) {
	var zero T
	if !v.Valid() {
		return zero, unknownVersion(v)
	}
	var wire W
	if err := unmarshal(r, root, &wire); err != nil {
		return zero, err
	}
	return conv(decoder{v: v, opts: codec.NewDecodeOptions(opts...), path: "/" + root}, &wire)
}

func documentElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return xml.StartElement{}, cmis.MalformedInput("/", "empty document")
		}
		if err != nil {
			return xml.StartElement{}, syntaxError("/", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, nil
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return xml.StartElement{}, cmis.MalformedInput("/", "text before document element")
			}
		}
	}
}

// trailing checks that nothing but whitespace follows the document element.
func trailing(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return syntaxError("/", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return cmis.MalformedInput("/", "second document element %s", t.Name.Local)
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return cmis.MalformedInput("/", "text after document element")
			}
		}
	}
}

// syntaxError wraps a decoder failure. The line number stands in for the
// element path, which encoding/xml does not report.
func syntaxError(path string, err error) error {
	if errors.Is(err, cmis.ErrMalformedInput) {
		return err
	}
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return cmis.MalformedInput(fmt.Sprintf("%s (line %d)", path, se.Line), "%s", se.Msg)
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return cmis.MalformedInput(path, "unexpected end of document")
	}
	return cmis.MalformedInput(path, "%v", err)
}

// encoder carries the target version through the wire builders.
type encoder struct {
	v cmis.Version
}

func (e encoder) violation(what string) error {
	return cmis.VersionViolation(e.v, what)
}

// decoder carries the source version, the decode options and the path of
// the element being converted.
type decoder struct {
	v    cmis.Version
	opts codec.DecodeOptions
	path string
}

// at descends into the child name. index is 1-based; zero means the child
// is not repeated.
func (d decoder) at(name string, index int) decoder {
	if index > 0 {
		name += "[" + strconv.Itoa(index) + "]"
	}
	d.path += "/" + name
	return d
}

func (d decoder) malformed(format string, args ...any) error {
	return cmis.MalformedInput(d.path, format, args...)
}

func (d decoder) integer(name, s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	i, err := cmis.ParseInteger(s)
	if err != nil {
		return nil, d.at(name, 0).malformed("%v", err)
	}
	return i, nil
}

// demote turns a bound element that version d.v does not define into an
// extension element.
func (d decoder) demote(local string, v any) (cmis.ExtensionElement, error) {
	x, err := demote(local, v)
	if err != nil {
		return cmis.ExtensionElement{}, d.at(local, 0).malformed("%v", err)
	}
	return x, nil
}

// parseEnum parses the text of child name. An empty name means d already
// points at the element.
func parseEnum[E ~string](d decoder, name, kind, s string, valid func(E) bool) (E, error) {
	if s == "" {
		return "", nil
	}
	e, err := cmis.ParseEnum(kind, strings.TrimSpace(s), valid)
	if err != nil {
		if name != "" {
			d = d.at(name, 0)
		}
		return "", d.malformed("%v", err)
	}
	return e, nil
}

func invalidValue(err error) error {
	return oops.Code(cmis.CodeInvalidData).Wrap(err)
}

func formatInteger(i *big.Int) string {
	if i == nil {
		return ""
	}
	return i.String()
}
