// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package wsconv

import (
	"encoding/xml"

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

type wireProperty struct {
	XMLName     xml.Name
	ID          string       `xml:"propertyDefinitionId,attr"`
	LocalName   string       `xml:"localName,attr,omitempty"`
	DisplayName string       `xml:"displayName,attr,omitempty"`
	QueryName   string       `xml:"queryName,attr,omitempty"`
	Values      []string     `xml:"value"`
	Any         []anyElement `xml:",any"`
}

// propertyChoice is one child of a properties element: either a property
// of any type or an unknown element.
type propertyChoice struct {
	property *wireProperty
	ext      *anyElement
}

func (c *propertyChoice) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	if _, ok := propertyTypes[start.Name.Local]; ok && start.Name.Space == NamespaceCMIS {
		c.property = &wireProperty{}
		return d.DecodeElement(c.property, &start)
	}
	c.ext = &anyElement{}
	return d.DecodeElement(c.ext, &start)
}

func (c propertyChoice) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	if c.property != nil {
		return e.EncodeElement(c.property, xml.StartElement{Name: xml.Name{Local: c.property.XMLName.Local}})
	}
	return e.Encode(c.ext)
}

type wireProperties struct {
	Items []propertyChoice `xml:",any"`
}

func (e encoder) properties(ps *cmis.Properties) (*wireProperties, error) {
	if ps == nil {
		return nil, nil
	}
	out := &wireProperties{}
	for _, p := range ps.List() {
		if !cmis.PropertyLegalIn(p.Identity().ID, e.v) {
			continue
		}
		wp, err := e.property(p)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, propertyChoice{property: wp})
	}
	for _, a := range anyElements(ps.Extensions()) {
		out.Items = append(out.Items, propertyChoice{ext: &a})
	}
	return out, nil
}

func (e encoder) property(p cmis.Property) (*wireProperty, error) {
	id := p.Identity()
	wp := &wireProperty{
		XMLName:     xml.Name{Local: propertyElements[p.Type()]},
		ID:          id.ID,
		LocalName:   id.LocalName,
		DisplayName: id.DisplayName,
		QueryName:   id.QueryName,
		Any:         anyElements(p.Extensions()),
	}
	values, err := formatValues(p.Type(), p.AnyValues())
	if err != nil {
		return nil, invalidValue(err)
	}
	wp.Values = values
	return wp, nil
}

func formatValues(t cmis.PropertyType, values []any) ([]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, err := cmis.FormatValue(t, v)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (d decoder) properties(w *wireProperties) (*cmis.Properties, error) {
	if w == nil {
		return nil, nil
	}
	ps := cmis.NewProperties()
	counts := map[string]int{}
	var ext []cmis.ExtensionElement
	for _, item := range w.Items {
		if item.ext != nil {
			ext = append(ext, item.ext.extension())
			continue
		}
		name := item.property.XMLName.Local
		counts[name]++
		p, err := d.at(name, counts[name]).property(item.property)
		if err != nil {
			return nil, err
		}
		if ps.Has(p.Identity().ID) {
			return nil, d.at(name, counts[name]).malformed("duplicate property %q", p.Identity().ID)
		}
		ps.Set(p)
	}
	ps.SetExtensions(ext)
	return ps, nil
}

func (d decoder) property(w *wireProperty) (cmis.Property, error) {
	if w.ID == "" {
		return nil, d.malformed("missing propertyDefinitionId")
	}
	t := propertyTypes[w.XMLName.Local]
	values, err := d.values(t, w.Values)
	if err != nil {
		return nil, err
	}
	p, err := cmis.NewPropertyFromValues(t, w.ID, values)
	if err != nil {
		return nil, d.malformed("%v", err)
	}
	p.SetIdentity(cmis.PropertyIdentity{
		ID:          w.ID,
		LocalName:   w.LocalName,
		DisplayName: w.DisplayName,
		QueryName:   w.QueryName,
	})
	p.SetExtensions(extensions(w.Any))
	if err := d.opts.CheckProperty(d.path, p); err != nil {
		return nil, err
	}
	return p, nil
}

// values parses the value children of a property, default value or choice.
func (d decoder) values(t cmis.PropertyType, raw []string) ([]any, error) {
	var values []any
	for i, s := range raw {
		v, err := cmis.ParseValue(t, s)
		if err != nil {
			return nil, d.at("value", i+1).malformed("%v", err)
		}
		values = append(values, v)
	}
	return values, nil
}
