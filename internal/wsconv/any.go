// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package wsconv

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// anyElement captures an element the bound structs have no field for.
type anyElement struct {
	XMLName  xml.Name
	Attrs    []xml.Attr   `xml:",any,attr"`
	Text     string       `xml:",chardata"`
	Children []anyElement `xml:",any"`
}

// extensions converts captured elements into extension elements.
func extensions(els []anyElement) []cmis.ExtensionElement {
	if len(els) == 0 {
		return nil
	}
	out := make([]cmis.ExtensionElement, 0, len(els))
	for _, a := range els {
		out = append(out, a.extension())
	}
	return out
}

func (a anyElement) extension() cmis.ExtensionElement {
	var attrs map[string]string
	for _, at := range a.Attrs {
		if at.Name.Space == "xmlns" || (at.Name.Space == "" && at.Name.Local == "xmlns") {
			continue
		}
		if attrs == nil {
			attrs = make(map[string]string)
		}
		key := at.Name.Local
		if at.Name.Space != "" {
			key = "{" + at.Name.Space + "}" + at.Name.Local
		}
		attrs[key] = at.Value
	}
	if len(a.Children) == 0 {
		return cmis.NewExtensionLeaf(a.XMLName.Space, a.XMLName.Local, a.Text, attrs)
	}
	return cmis.NewExtensionNode(a.XMLName.Space, a.XMLName.Local, attrs, extensions(a.Children)...)
}

// MarshalXML writes the element with its own namespace declaration. Bound
// elements inherit the CMIS default namespace, so an element without a
// namespace always undeclares it.
func (a anyElement) MarshalXML(enc *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: a.XMLName}
	if a.XMLName.Space == "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "xmlns"}})
	}
	for _, at := range a.Attrs {
		if at.Name.Space == "xmlns" || (at.Name.Space == "" && at.Name.Local == "xmlns") {
			continue
		}
		start.Attr = append(start.Attr, at)
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if len(a.Children) == 0 {
		if a.Text != "" {
			if err := enc.EncodeToken(xml.CharData(a.Text)); err != nil {
				return err
			}
		}
	}
	for _, c := range a.Children {
		if err := c.MarshalXML(enc, xml.StartElement{}); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// anyElements converts extension elements for marshaling.
func anyElements(ext []cmis.ExtensionElement) []anyElement {
	if len(ext) == 0 {
		return nil
	}
	out := make([]anyElement, 0, len(ext))
	for _, x := range ext {
		out = append(out, anyElementOf(x))
	}
	return out
}

func anyElementOf(x cmis.ExtensionElement) anyElement {
	a := anyElement{XMLName: xml.Name{Space: x.Namespace(), Local: x.Name()}}
	for _, key := range x.AttributeNames() {
		value, _ := x.Attribute(key)
		var name xml.Name
		if rest, ok := strings.CutPrefix(key, "{"); ok {
			if space, local, found := strings.Cut(rest, "}"); found {
				name = xml.Name{Space: space, Local: local}
			}
		}
		if name.Local == "" {
			name.Local = key
		}
		a.Attrs = append(a.Attrs, xml.Attr{Name: name, Value: value})
	}
	if x.IsLeaf() {
		a.Text = x.Value()
	} else {
		a.Children = anyElements(x.Children())
	}
	return a
}

// demote re-captures a bound value as an extension element. Decoders use
// it for elements the target version does not define.
func demote(local string, v any) (cmis.ExtensionElement, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	if err := enc.EncodeElement(v, xml.StartElement{Name: xml.Name{Space: NamespaceCMIS, Local: local}}); err != nil {
		return cmis.ExtensionElement{}, err
	}
	if err := enc.Flush(); err != nil {
		return cmis.ExtensionElement{}, err
	}
	var a anyElement
	if err := xml.Unmarshal(buf.Bytes(), &a); err != nil {
		return cmis.ExtensionElement{}, err
	}
	return a.extension(), nil
}
