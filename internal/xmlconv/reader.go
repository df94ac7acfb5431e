// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package xmlconv

import (
	"encoding/xml"
	"errors"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// reader is a forward-only cursor over a decoder's token stream. It keeps
// the element path for error messages and never backtracks.
type reader struct {
	dec  *xml.Decoder
	v    cmis.Version
	opts codec.DecodeOptions
	path []string
}

func newReader(r io.Reader, v cmis.Version, opts []codec.DecodeOption) *reader {
	return &reader{dec: xml.NewDecoder(r), v: v, opts: codec.NewDecodeOptions(opts...)}
}

func (r *reader) where() string {
	if len(r.path) == 0 {
		return "/"
	}
	return "/" + strings.Join(r.path, "/")
}

func (r *reader) malformed(format string, args ...any) error {
	return cmis.MalformedInput(r.where(), format, args...)
}

// token returns the next element or character token.
func (r *reader) token() (xml.Token, error) {
	for {
		tok, err := r.dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, r.malformed("unexpected end of document")
		}
		if err != nil {
			return nil, r.malformed("%v", err)
		}
		switch tok.(type) {
		case xml.StartElement, xml.EndElement, xml.CharData:
			return tok, nil
		}
	}
}

// root advances to the document element and checks its name.
func (r *reader) root(space, local string) (xml.StartElement, error) {
	for {
		tok, err := r.dec.Token()
		if errors.Is(err, io.EOF) {
			return xml.StartElement{}, r.malformed("empty document")
		}
		if err != nil {
			return xml.StartElement{}, r.malformed("%v", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			r.path = append(r.path, t.Name.Local)
			if t.Name.Space != space || t.Name.Local != local {
				return t, r.malformed("expected {%s}%s, found %s", space, local, expandedName(t.Name))
			}
			return t, nil
		case xml.CharData:
			if len(strings.TrimSpace(string(t))) > 0 {
				return xml.StartElement{}, r.malformed("text before document element")
			}
		}
	}
}

// children calls fn for every child element of the element most recently
// opened and consumes its end tag. fn must consume the child it is given.
func (r *reader) children(fn func(el xml.StartElement) error) error {
	counts := map[string]int{}
	for {
		tok, err := r.token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			counts[t.Name.Local]++
			r.path = append(r.path, t.Name.Local+"["+strconv.Itoa(counts[t.Name.Local])+"]")
			if err := fn(t); err != nil {
				return err
			}
			r.path = r.path[:len(r.path)-1]
		case xml.EndElement:
			return nil
		}
	}
}

// text reads the character content of a simple element.
func (r *reader) text() (string, error) {
	var sb strings.Builder
	for {
		tok, err := r.token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			return "", r.malformed("unexpected element %s in text content", expandedName(t.Name))
		case xml.EndElement:
			return sb.String(), nil
		}
	}
}

func (r *reader) boolean() (bool, error) {
	s, err := r.text()
	if err != nil {
		return false, err
	}
	b, err := cmis.ParseBoolean(s)
	if err != nil {
		return false, r.malformed("%v", err)
	}
	return b, nil
}

func (r *reader) boolPtr() (*bool, error) {
	b, err := r.boolean()
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *reader) integer() (*big.Int, error) {
	s, err := r.text()
	if err != nil {
		return nil, err
	}
	i, err := cmis.ParseInteger(s)
	if err != nil {
		return nil, r.malformed("%v", err)
	}
	return i, nil
}

// enum reads a text element and checks it with valid.
func enum[E ~string](r *reader, kind string, valid func(E) bool) (E, error) {
	s, err := r.text()
	if err != nil {
		return "", err
	}
	e, err := cmis.ParseEnum(kind, strings.TrimSpace(s), valid)
	if err != nil {
		return "", r.malformed("%v", err)
	}
	return e, nil
}

// extensionAdder is implemented by every data object through its embedded
// extension holder.
type extensionAdder interface {
	AddExtension(e cmis.ExtensionElement)
}

// extList collects extensions for values assembled through builders.
type extList []cmis.ExtensionElement

func (l *extList) AddExtension(e cmis.ExtensionElement) { *l = append(*l, e) }

// unknown captures el verbatim into h.
func (r *reader) unknown(el xml.StartElement, h extensionAdder) error {
	x, err := r.extension(el)
	if err != nil {
		return err
	}
	h.AddExtension(x)
	return nil
}

func (r *reader) extension(el xml.StartElement) (cmis.ExtensionElement, error) {
	var attrs map[string]string
	for _, a := range el.Attr {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs[expandedName(a.Name)] = a.Value
	}

	var (
		kids []cmis.ExtensionElement
		sb   strings.Builder
	)
	counts := map[string]int{}
	for {
		tok, err := r.token()
		if err != nil {
			return cmis.ExtensionElement{}, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			counts[t.Name.Local]++
			r.path = append(r.path, t.Name.Local+"["+strconv.Itoa(counts[t.Name.Local])+"]")
			child, err := r.extension(t)
			if err != nil {
				return cmis.ExtensionElement{}, err
			}
			r.path = r.path[:len(r.path)-1]
			kids = append(kids, child)
		case xml.EndElement:
			if len(kids) > 0 {
				return cmis.NewExtensionNode(el.Name.Space, el.Name.Local, attrs, kids...), nil
			}
			return cmis.NewExtensionLeaf(el.Name.Space, el.Name.Local, sb.String(), attrs), nil
		}
	}
}

// is reports whether el is the CMIS core element local.
func is(el xml.StartElement, local string) bool {
	return el.Name.Space == NamespaceCMIS && el.Name.Local == local
}

// is11 is is for elements that exist only in CMIS 1.1. Under 1.0 they
// are unknown and end up as extensions.
func (r *reader) is11(el xml.StartElement, local string) bool {
	return r.v.Is11() && is(el, local)
}

// attrValue returns the value of the unqualified attribute name.
func attrValue(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// skip consumes an element the owning value has no place for.
func (r *reader) skip() error {
	if err := r.dec.Skip(); err != nil {
		return r.malformed("%v", err)
	}
	return nil
}
