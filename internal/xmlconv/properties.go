// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package xmlconv

import (
	"encoding/xml"

	"github.com/samber/oops"

	"github.com/gocmis/gocmis/pkg/cmis"
)

var propertyElements = map[cmis.PropertyType]string{
	cmis.PropertyTypeBoolean:  "propertyBoolean",
	cmis.PropertyTypeID:       "propertyId",
	cmis.PropertyTypeInteger:  "propertyInteger",
	cmis.PropertyTypeDateTime: "propertyDateTime",
	cmis.PropertyTypeDecimal:  "propertyDecimal",
	cmis.PropertyTypeHTML:     "propertyHtml",
	cmis.PropertyTypeString:   "propertyString",
	cmis.PropertyTypeURI:      "propertyUri",
}

var propertyTypes = func() map[string]cmis.PropertyType {
	m := make(map[string]cmis.PropertyType, len(propertyElements))
	for t, name := range propertyElements {
		m[name] = t
	}
	return m
}()

// PropertyElement returns the wire element name for property type t.
func PropertyElement(t cmis.PropertyType) string {
	return propertyElements[t]
}

// properties writes the property bag. Properties introduced in CMIS 1.1
// are left out of 1.0 documents.
func (w *writer) properties(name string, ps *cmis.Properties) {
	w.open(name)
	for _, p := range ps.List() {
		if !cmis.PropertyLegalIn(p.Identity().ID, w.v) {
			continue
		}
		w.property(p)
	}
	w.extensions(ps.Extensions())
	w.close(name)
}

func (w *writer) property(p cmis.Property) {
	el := "cmis:" + propertyElements[p.Type()]
	id := p.Identity()
	attrs := []xml.Attr{attr("propertyDefinitionId", id.ID)}
	if id.LocalName != "" {
		attrs = append(attrs, attr("localName", id.LocalName))
	}
	if id.DisplayName != "" {
		attrs = append(attrs, attr("displayName", id.DisplayName))
	}
	if id.QueryName != "" {
		attrs = append(attrs, attr("queryName", id.QueryName))
	}
	w.open(el, attrs...)
	w.values(p.Type(), p.AnyValues())
	w.extensions(p.Extensions())
	w.close(el)
}

func (w *writer) values(t cmis.PropertyType, values []any) {
	for _, v := range values {
		s, err := cmis.FormatValue(t, v)
		if err != nil {
			w.fail(oops.Code(cmis.CodeInvalidData).Wrap(err))
			return
		}
		w.text("cmis:value", s)
	}
}

// properties reads a property bag. Property types and cardinality are
// checked against the configured definitions.
func (r *reader) properties() (*cmis.Properties, error) {
	ps := cmis.NewProperties()
	err := r.children(func(el xml.StartElement) error {
		t, ok := propertyTypes[el.Name.Local]
		if !ok || el.Name.Space != NamespaceCMIS {
			return r.unknown(el, ps)
		}
		p, err := r.property(el, t)
		if err != nil {
			return err
		}
		if ps.Has(p.Identity().ID) {
			return r.malformed("duplicate property %q", p.Identity().ID)
		}
		ps.Set(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ps, nil
}

func (r *reader) property(el xml.StartElement, t cmis.PropertyType) (cmis.Property, error) {
	id := attrValue(el, "propertyDefinitionId")
	if id == "" {
		return nil, r.malformed("missing propertyDefinitionId")
	}
	var (
		values []any
		ext    extList
	)
	err := r.children(func(child xml.StartElement) error {
		if !is(child, "value") {
			return r.unknown(child, &ext)
		}
		s, err := r.text()
		if err != nil {
			return err
		}
		v, err := cmis.ParseValue(t, s)
		if err != nil {
			return r.malformed("%v", err)
		}
		values = append(values, v)
		return nil
	})
	if err != nil {
		return nil, err
	}

	p, err := cmis.NewPropertyFromValues(t, id, values)
	if err != nil {
		return nil, r.malformed("%v", err)
	}
	p.SetIdentity(cmis.PropertyIdentity{
		ID:          id,
		LocalName:   attrValue(el, "localName"),
		DisplayName: attrValue(el, "displayName"),
		QueryName:   attrValue(el, "queryName"),
	})
	p.SetExtensions(ext)
	if err := r.opts.CheckProperty(r.where(), p); err != nil {
		return nil, err
	}
	return p, nil
}
