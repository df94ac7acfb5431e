// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package xmlconv

import (
	"encoding/xml"
	"io"
	"math/big"
	"strings"

	"github.com/samber/oops"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// Namespaces of the CMIS XML vocabulary.
const (
	NamespaceCMIS     = "http://docs.oasis-open.org/ns/cmis/core/200908/"
	NamespaceRestAtom = "http://docs.oasis-open.org/ns/cmis/restatom/200908/"
	NamespaceXSI      = "http://www.w3.org/2001/XMLSchema-instance"
)

// writer emits CMIS elements with fixed prefixes declared on the document
// element. The first error sticks; later calls do nothing.
type writer struct {
	enc *xml.Encoder
	v   cmis.Version
	// defaults tracks the default namespace in scope for each open
	// element. Only extension elements change it.
	defaults []string
	err      error
}

func newWriter(w io.Writer, v cmis.Version) *writer {
	return &writer{enc: xml.NewEncoder(w), v: v}
}

func (w *writer) fail(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

func (w *writer) scope() string {
	if len(w.defaults) == 0 {
		return ""
	}
	return w.defaults[len(w.defaults)-1]
}

func (w *writer) start(name string, defaultNS string, attrs []xml.Attr) {
	if w.err != nil {
		return
	}
	w.defaults = append(w.defaults, defaultNS)
	w.fail(w.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs}))
}

// open starts a CMIS element, keeping the default namespace in scope. The
// document element also declares the CMIS prefixes.
func (w *writer) open(name string, attrs ...xml.Attr) {
	if len(w.defaults) == 0 {
		decl := []xml.Attr{
			attr("xmlns:cmis", NamespaceCMIS),
			attr("xmlns:cmisra", NamespaceRestAtom),
			attr("xmlns:xsi", NamespaceXSI),
		}
		attrs = append(decl, attrs...)
	}
	w.start(name, w.scope(), attrs)
}

func (w *writer) close(name string) {
	if w.err != nil {
		return
	}
	w.defaults = w.defaults[:len(w.defaults)-1]
	w.fail(w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}}))
}

func (w *writer) chars(s string) {
	if w.err != nil || s == "" {
		return
	}
	w.fail(w.enc.EncodeToken(xml.CharData(s)))
}

// text writes <name>s</name>.
func (w *writer) text(name, s string) {
	w.open(name)
	w.chars(s)
	w.close(name)
}

// optText writes the element only when s is not empty.
func (w *writer) optText(name, s string) {
	if s != "" {
		w.text(name, s)
	}
}

func (w *writer) boolean(name string, b bool) {
	if b {
		w.text(name, "true")
	} else {
		w.text(name, "false")
	}
}

func (w *writer) optBoolean(name string, b *bool) {
	if b != nil {
		w.boolean(name, *b)
	}
}

func (w *writer) integer(name string, i *big.Int) {
	if i != nil {
		w.text(name, i.String())
	}
}

func (w *writer) texts(name string, values []string) {
	for _, s := range values {
		w.text(name, s)
	}
}

// extensions writes opaque elements, declaring their namespace as the
// default namespace whenever it differs from the one in scope.
func (w *writer) extensions(ext []cmis.ExtensionElement) {
	for _, x := range ext {
		w.extension(x)
	}
}

func (w *writer) extension(x cmis.ExtensionElement) {
	var attrs []xml.Attr
	if x.Namespace() != w.scope() {
		attrs = append(attrs, attr("xmlns", x.Namespace()))
	}
	for _, key := range x.AttributeNames() {
		value, _ := x.Attribute(key)
		space, local := splitExpanded(key)
		attrs = append(attrs, xml.Attr{Name: xml.Name{Space: space, Local: local}, Value: value})
	}
	w.start(x.Name(), x.Namespace(), attrs)
	if x.IsLeaf() {
		w.chars(x.Value())
	} else {
		w.extensions(x.Children())
	}
	w.close(x.Name())
}

// violation records a version violation for what.
func (w *writer) violation(what string) {
	w.fail(cmis.VersionViolation(w.v, what))
}

func (w *writer) finish() error {
	if w.err != nil {
		return w.err
	}
	if err := w.enc.Flush(); err != nil {
		return oops.Code(CodeWrite).Wrapf(err, "flush xml")
	}
	return nil
}

// CodeWrite marks failures of the underlying writer.
const CodeWrite = "XML_WRITE_FAILED"

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// splitExpanded splits "{space}local" attribute keys.
func splitExpanded(key string) (space, local string) {
	if strings.HasPrefix(key, "{") {
		if end := strings.IndexByte(key, '}'); end > 0 {
			return key[1:end], key[end+1:]
		}
	}
	return "", key
}

func expandedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return "{" + n.Space + "}" + n.Local
}
