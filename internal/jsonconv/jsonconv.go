// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

// Package jsonconv converts CMIS data objects to and from the JSON documents
// of the Browser binding.
//
// Encoding builds insertion-ordered JSON objects, so members always appear
// in schema order followed by extensions. Decoding walks the document once
// with jsonparser, dispatching on member names; members the decoder does
// not bind under the source version become extension elements.
//
// Extension elements use this convention: the member name is the element's
// local name, or {namespace}name when it has a namespace. A leaf without
// attributes is a JSON string. Anything else is a JSON object holding one
// "@name" member per attribute, "#text" for a leaf value, and one member
// per child. A run of siblings sharing a name becomes a JSON array; a name
// that recurs after other siblings is written again as name#2, name#3 and
// so on, which keeps document order.
package jsonconv

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/samber/oops"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// ContentType is the MIME type of documents written by this package.
const ContentType = "application/json"

// Error codes raised by this package besides the cmis ones.
const (
	CodeWrite = "JSON_WRITE_FAILED"
	CodeRead  = "JSON_READ_FAILED"
)

// object is a JSON object that keeps its members in insertion order.
type object = orderedmap.OrderedMap[string, any]

func newObject() *object {
	return orderedmap.New[string, any]()
}

// setString sets key unless s is empty.
func setString(o *object, key, s string) {
	if s != "" {
		o.Set(key, s)
	}
}

// setBool sets key unless b is nil.
func setBool(o *object, key string, b *bool) {
	if b != nil {
		o.Set(key, *b)
	}
}

// setInteger sets key to a JSON number unless i is nil.
func setInteger(o *object, key string, i *big.Int) {
	if i != nil {
		o.Set(key, json.Number(i.String()))
	}
}

// setStrings sets key to a JSON array unless ss is empty.
func setStrings(o *object, key string, ss []string) {
	if len(ss) > 0 {
		o.Set(key, ss)
	}
}

func unknownVersion(v cmis.Version) error {
	return oops.Code(cmis.CodeUnknownVersion).With("version", string(v)).Errorf("unknown CMIS version %q", v)
}

func invalidValue(err error) error {
	return oops.Code(cmis.CodeInvalidData).Wrap(err)
}

// encode converts value with build and writes the resulting document.
func encode[T any](w io.Writer, v cmis.Version, value T, build func(e encoder, value T) (any, error)) error {
	if !v.Valid() {
		return unknownVersion(v)
	}
	doc, err := build(encoder{v: v}, value)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := writeValue(&buf, doc); err != nil {
		return oops.Code(CodeWrite).Wrapf(err, "write json")
	}
	buf.WriteByte('\n')
	if _, err := buf.WriteTo(w); err != nil {
		return oops.Code(CodeWrite).Wrapf(err, "write json")
	}
	return nil
}

// writeValue writes v without HTML escaping. Objects and arrays are walked
// here because the ordered map's own MarshalJSON escapes what it nests.
func writeValue(b *bytes.Buffer, v any) error {
	switch x := v.(type) {
	case *object:
		if x == nil {
			b.WriteString("null")
			return nil
		}
		b.WriteByte('{')
		for p := x.Oldest(); p != nil; p = p.Next() {
			if p != x.Oldest() {
				b.WriteByte(',')
			}
			if err := writeScalar(b, p.Key); err != nil {
				return err
			}
			b.WriteByte(':')
			if err := writeValue(b, p.Value); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case []any:
		b.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeValue(b, e); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	default:
		return writeScalar(b, v)
	}
	return nil
}

func writeScalar(b *bytes.Buffer, v any) error {
	enc := json.NewEncoder(b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	b.Truncate(b.Len() - 1)
	return nil
}

// decode reads one document whose top level has type want and converts it
// with conv.
func decode[T any](r io.Reader, v cmis.Version, opts []codec.DecodeOption, want jsonparser.ValueType, conv func(d decoder, val value) (T, error)) (T, error) {
	var zero T
	if !v.Valid() {
		return zero, unknownVersion(v)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return zero, oops.Code(CodeRead).Wrapf(err, "read json")
	}
	if err := checkSyntax(data); err != nil {
		return zero, err
	}
	raw, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return zero, cmis.MalformedInput("/", "%v", err)
	}
	if typ != want {
		return zero, cmis.MalformedInput("/", "expected %s document, found %s", want, typ)
	}
	return conv(decoder{v: v, opts: codec.NewDecodeOptions(opts...)}, value{raw: raw, typ: typ})
}

// checkSyntax rejects documents that are not exactly one JSON value.
// jsonparser tolerates some malformed input, so the token stream is checked
// first; the error names the member or array element being read.
func checkSyntax(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return cmis.MalformedInput("/", "empty document")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var (
		stack   []frame
		started bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if len(stack) > 0 {
				return cmis.MalformedInput(framePath(stack[:len(stack)-1]), "unterminated %s", stack[len(stack)-1].kind())
			}
			return nil
		}
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return cmis.MalformedInput(framePath(stack), "unexpected end of document")
			}
			return cmis.MalformedInput(framePath(stack), "%v", err)
		}
		if started && len(stack) == 0 {
			return cmis.MalformedInput("/", "data after top-level value")
		}
		started = true
		delim, isDelim := tok.(json.Delim)
		if isDelim && (delim == '}' || delim == ']') {
			stack = stack[:len(stack)-1]
			if n := len(stack); n > 0 {
				stack[n-1].done()
			}
			continue
		}
		if n := len(stack); n > 0 {
			f := &stack[n-1]
			if f.object && !f.keyed {
				f.key, _ = tok.(string)
				f.keyed = true
				continue
			}
			f.advance()
			if !isDelim {
				f.done()
			}
		}
		if isDelim {
			stack = append(stack, frame{object: delim == '{', index: -1})
		}
	}
}

// frame is one open object or array while checking syntax. key is the
// member whose value is being read, if any.
type frame struct {
	object bool
	keyed  bool
	key    string
	index  int
}

func (f frame) kind() string {
	if f.object {
		return "object"
	}
	return "array"
}

// advance records that a value started in the frame.
func (f *frame) advance() {
	if f.object {
		f.keyed = false
		return
	}
	f.index++
}

// done records that the current value of the frame is complete.
func (f *frame) done() {
	if f.object {
		f.key = ""
	}
}

func framePath(stack []frame) string {
	var b strings.Builder
	for _, f := range stack {
		switch {
		case f.object && f.key != "":
			b.WriteString("/" + escapePointer(f.key))
		case !f.object && f.index >= 0:
			b.WriteString("/" + strconv.Itoa(f.index))
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// escapePointer escapes a member name as a JSON Pointer reference token.
func escapePointer(s string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(s)
}

// encoder carries the target version through the document builders.
type encoder struct {
	v cmis.Version
}

func (e encoder) violation(what string) error {
	return cmis.VersionViolation(e.v, what)
}

// value is one JSON value as reported by jsonparser. String values are
// still escaped and carry no quotes.
type value struct {
	raw []byte
	typ jsonparser.ValueType
}

func (val value) null() bool {
	return val.typ == jsonparser.Null
}

// decoder carries the source version, the decode options and the JSON
// Pointer of the value being converted.
type decoder struct {
	v    cmis.Version
	opts codec.DecodeOptions
	path string
}

// at descends into the member key.
func (d decoder) at(key string) decoder {
	d.path += "/" + escapePointer(key)
	return d
}

// index descends into array element i.
func (d decoder) index(i int) decoder {
	d.path += "/" + strconv.Itoa(i)
	return d
}

func (d decoder) where() string {
	if d.path == "" {
		return "/"
	}
	return d.path
}

func (d decoder) malformed(format string, args ...any) error {
	return cmis.MalformedInput(d.where(), format, args...)
}

// members calls fn for every member of an object value in document order.
func (d decoder) members(val value, fn func(key string, d decoder, val value) error) error {
	if val.typ != jsonparser.Object {
		return d.malformed("expected object, found %s", val.typ)
	}
	err := jsonparser.ObjectEach(val.raw, func(k, raw []byte, typ jsonparser.ValueType, _ int) error {
		key := string(k)
		return fn(key, d.at(key), value{raw: raw, typ: typ})
	})
	return d.wrap(err)
}

// each calls fn for every element of an array value in document order.
func (d decoder) each(val value, fn func(d decoder, val value) error) error {
	if val.typ != jsonparser.Array {
		return d.malformed("expected array, found %s", val.typ)
	}
	var (
		i        int
		firstErr error
	)
	_, err := jsonparser.ArrayEach(val.raw, func(raw []byte, typ jsonparser.ValueType, _ int, err error) {
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = d.index(i).malformed("%v", err)
			return
		}
		firstErr = fn(d.index(i), value{raw: raw, typ: typ})
		i++
	})
	if firstErr != nil {
		return firstErr
	}
	return d.wrap(err)
}

// items is each for members holding repeated values. A lone value is
// taken as a one-element array, which is how a single repeated extension
// element is written.
func (d decoder) items(val value, fn func(d decoder, val value) error) error {
	if val.typ != jsonparser.Array {
		return fn(d, val)
	}
	return d.each(val, fn)
}

// wrap turns a jsonparser failure into a malformed-input error at d.
func (d decoder) wrap(err error) error {
	if err == nil || errors.Is(err, cmis.ErrMalformedInput) || errors.Is(err, cmis.ErrInvalidData) {
		return err
	}
	return d.malformed("%v", err)
}

// fields decodes the members of an object value. Members bound by ks under
// the source version go to bind unless they are null; every other member
// becomes an extension element, returned in document order.
func (d decoder) fields(val value, ks keys, bind func(key string, d decoder, val value) error) ([]cmis.ExtensionElement, error) {
	var ext []cmis.ExtensionElement
	err := d.members(val, func(key string, d decoder, val value) error {
		if !ks.bound(key, d.v) {
			xs, err := d.extensions(key, val)
			ext = append(ext, xs...)
			return err
		}
		if val.null() {
			return nil
		}
		return bind(key, d, val)
	})
	if err != nil {
		return nil, err
	}
	return ext, nil
}

func (d decoder) str(val value) (string, error) {
	switch val.typ {
	case jsonparser.String:
		s, err := jsonparser.ParseString(val.raw)
		if err != nil {
			return "", d.malformed("%v", err)
		}
		return s, nil
	case jsonparser.Null:
		return "", nil
	}
	return "", d.malformed("expected string, found %s", val.typ)
}

// scalar returns the text of a string, number or boolean value.
func (d decoder) scalar(val value) (string, error) {
	switch val.typ {
	case jsonparser.Number, jsonparser.Boolean:
		return string(val.raw), nil
	}
	return d.str(val)
}

// boolean accepts a JSON boolean or the strings "true" and "false", the
// form a value takes after a trip through an extension element.
func (d decoder) boolean(val value) (bool, error) {
	if val.typ == jsonparser.String {
		switch string(val.raw) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	if val.typ != jsonparser.Boolean {
		return false, d.malformed("expected boolean, found %s", val.typ)
	}
	b, err := jsonparser.ParseBoolean(val.raw)
	if err != nil {
		return false, d.malformed("%v", err)
	}
	return b, nil
}

func (d decoder) optBool(val value) (*bool, error) {
	b, err := d.boolean(val)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// integer accepts a JSON number or a numeric string.
func (d decoder) integer(val value) (*big.Int, error) {
	switch val.typ {
	case jsonparser.Number, jsonparser.String:
		s, err := d.scalar(val)
		if err != nil {
			return nil, err
		}
		i, err := cmis.ParseInteger(s)
		if err != nil {
			return nil, d.malformed("%v", err)
		}
		return i, nil
	}
	return nil, d.malformed("expected integer, found %s", val.typ)
}

func (d decoder) strings(val value) ([]string, error) {
	var out []string
	err := d.each(val, func(d decoder, val value) error {
		s, err := d.str(val)
		if err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	return out, err
}

// parseEnum parses a string value as one of the values accepted by valid.
func parseEnum[E ~string](d decoder, kind string, val value, valid func(E) bool) (E, error) {
	s, err := d.str(val)
	if err != nil || s == "" {
		return "", err
	}
	e, err := cmis.ParseEnum(kind, s, valid)
	if err != nil {
		return "", d.malformed("%v", err)
	}
	return e, nil
}

// keys maps the member names an object binds to the version that
// introduced them.
type keys map[string]cmis.Version

func newKeys(names ...string) keys {
	return keys{}.with(cmis.Version10, names...)
}

// with returns a copy of ks that also binds names from version since on.
func (ks keys) with(since cmis.Version, names ...string) keys {
	out := make(keys, len(ks)+len(names))
	for k, v := range ks {
		out[k] = v
	}
	for _, n := range names {
		out[n] = since
	}
	return out
}

func (ks keys) bound(name string, v cmis.Version) bool {
	since, ok := ks[name]
	return ok && v.Supports(since)
}
