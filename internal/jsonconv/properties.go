// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package jsonconv

import (
	"encoding/json"
	"time"

	"github.com/buger/jsonparser"

	"github.com/gocmis/gocmis/pkg/cmis"
)

var propertyKeys = newKeys("id", "localName", "localNamespace", "displayName", "queryName", "type", "cardinality", "value")

// propertiesKeys are the members a property bag occupies in its enclosing
// object.
var propertiesKeys = newKeys("properties", "propertiesExtension")

// properties writes a property bag as the member "properties" of o, with
// the bag's own extensions in "propertiesExtension". Standard properties
// that v does not define are left out.
func (e encoder) properties(o *object, ps *cmis.Properties) error {
	if ps == nil {
		return nil
	}
	props := newObject()
	for _, p := range ps.List() {
		id := p.Identity().ID
		if !cmis.PropertyLegalIn(id, e.v) {
			continue
		}
		po, err := e.property(p)
		if err != nil {
			return err
		}
		props.Set(id, po)
	}
	o.Set("properties", props)
	if ext := ps.Extensions(); len(ext) > 0 {
		pe := newObject()
		e.extensions(pe, nil, ext)
		o.Set("propertiesExtension", pe)
	}
	return nil
}

// property writes one property. A single value is written as a scalar,
// any other count as an array.
func (e encoder) property(p cmis.Property) (*object, error) {
	id := p.Identity()
	o := newObject()
	o.Set("id", id.ID)
	setString(o, "localName", id.LocalName)
	setString(o, "localNamespace", id.LocalNamespace)
	setString(o, "displayName", id.DisplayName)
	setString(o, "queryName", id.QueryName)
	o.Set("type", string(p.Type()))
	values, err := jsonValues(p.Type(), p.AnyValues())
	if err != nil {
		return nil, err
	}
	if len(values) == 1 {
		o.Set("value", values[0])
	} else {
		o.Set("value", values)
	}
	e.extensions(o, propertyKeys, p.Extensions())
	return o, nil
}

// jsonValues converts property values to JSON values. The result is never
// nil so an empty list is written as [].
func jsonValues(t cmis.PropertyType, values []any) ([]any, error) {
	out := make([]any, 0, len(values))
	for _, v := range values {
		jv, err := jsonValue(t, v)
		if err != nil {
			return nil, err
		}
		out = append(out, jv)
	}
	return out, nil
}

// jsonValue converts one value. Integers and decimals are written as JSON
// numbers with their exact digits; datetimes as xsd:dateTime strings so
// the zone offset survives.
func jsonValue(t cmis.PropertyType, v any) (any, error) {
	s, err := cmis.FormatValue(t, v)
	if err != nil {
		return nil, invalidValue(err)
	}
	switch t {
	case cmis.PropertyTypeBoolean:
		return s == "true", nil
	case cmis.PropertyTypeInteger, cmis.PropertyTypeDecimal:
		return json.Number(s), nil
	}
	return s, nil
}

// properties reads a property bag. Member names are property ids and must
// be unique.
func (d decoder) properties(val value) (*cmis.Properties, error) {
	ps := cmis.NewProperties()
	err := d.members(val, func(key string, d decoder, val value) error {
		if ps.Has(key) {
			return d.malformed("duplicate property %q", key)
		}
		p, err := d.property(key, val)
		if err != nil {
			return err
		}
		ps.Set(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ps, nil
}

// property reads one property. The value member is converted once the
// whole object has been read, since it may precede the type.
func (d decoder) property(key string, val value) (cmis.Property, error) {
	var (
		id       cmis.PropertyIdentity
		t        cmis.PropertyType
		card     cmis.Cardinality
		rawValue *value
	)
	ext, err := d.fields(val, propertyKeys, func(k string, d decoder, val value) error {
		var err error
		switch k {
		case "id":
			id.ID, err = d.str(val)
		case "localName":
			id.LocalName, err = d.str(val)
		case "localNamespace":
			id.LocalNamespace, err = d.str(val)
		case "displayName":
			id.DisplayName, err = d.str(val)
		case "queryName":
			id.QueryName, err = d.str(val)
		case "type":
			t, err = parseEnum(d, "property type", val, cmis.PropertyType.Valid)
		case "cardinality":
			card, err = parseEnum(d, "cardinality", val, cmis.Cardinality.Valid)
		case "value":
			rawValue = &val
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	switch {
	case id.ID == "":
		id.ID = key
	case id.ID != key:
		return nil, d.at("id").malformed("id %q does not match member name %q", id.ID, key)
	}
	if t == "" {
		pd, ok := d.opts.Definition(id.ID)
		if !ok {
			return nil, d.malformed("property %q has no type", id.ID)
		}
		t = pd.PropertyType
	}
	var values []any
	if rawValue != nil {
		if values, err = d.at("value").propertyValues(t, *rawValue); err != nil {
			return nil, err
		}
	}
	if card == cmis.CardinalitySingle && len(values) > 1 {
		return nil, d.at("value").malformed("single-valued property %q has %d values", id.ID, len(values))
	}
	p, err := cmis.NewPropertyFromValues(t, id.ID, values)
	if err != nil {
		return nil, d.malformed("%v", err)
	}
	p.SetIdentity(id)
	p.SetExtensions(ext)
	if err := d.opts.CheckProperty(d.where(), p); err != nil {
		return nil, err
	}
	return p, nil
}

// propertyValues reads a scalar or an array of values of type t. Null
// means no value.
func (d decoder) propertyValues(t cmis.PropertyType, val value) ([]any, error) {
	switch val.typ {
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Array:
		var values []any
		err := d.each(val, func(d decoder, val value) error {
			v, err := d.propertyValue(t, val)
			if err != nil {
				return err
			}
			values = append(values, v)
			return nil
		})
		return values, err
	}
	v, err := d.propertyValue(t, val)
	if err != nil {
		return nil, err
	}
	return []any{v}, nil
}

// propertyValue reads one value. Strings are parsed as literals of t;
// numbers are accepted for integers, decimals and, as milliseconds since
// the epoch, datetimes.
func (d decoder) propertyValue(t cmis.PropertyType, val value) (any, error) {
	var s string
	switch val.typ {
	case jsonparser.String:
		str, err := d.str(val)
		if err != nil {
			return nil, err
		}
		s = str
	case jsonparser.Number:
		switch t {
		case cmis.PropertyTypeInteger, cmis.PropertyTypeDecimal:
			s = string(val.raw)
		case cmis.PropertyTypeDateTime:
			ms, err := jsonparser.ParseInt(val.raw)
			if err != nil {
				return nil, d.malformed("invalid datetime %s", val.raw)
			}
			return cmis.TruncateDateTime(time.UnixMilli(ms).UTC()), nil
		default:
			return nil, d.malformed("number is not a %s value", t)
		}
	case jsonparser.Boolean:
		if t != cmis.PropertyTypeBoolean {
			return nil, d.malformed("boolean is not a %s value", t)
		}
		s = string(val.raw)
	default:
		return nil, d.malformed("%s is not a %s value", val.typ, t)
	}
	v, err := cmis.ParseValue(t, s)
	if err != nil {
		return nil, d.malformed("%v", err)
	}
	return v, nil
}

// bag reads the properties and propertiesExtension members of the
// enclosing object. Either may be absent.
type bag struct {
	props *cmis.Properties
	ext   []cmis.ExtensionElement
}

func (b *bag) bind(key string, d decoder, val value) error {
	switch key {
	case "properties":
		ps, err := d.properties(val)
		if err != nil {
			return err
		}
		b.props = ps
	case "propertiesExtension":
		ext, err := d.fields(val, nil, nil)
		if err != nil {
			return err
		}
		b.ext = append(b.ext, ext...)
	}
	return nil
}

// result attaches the bag extensions to the decoded properties.
func (b *bag) result() *cmis.Properties {
	if b.props == nil && len(b.ext) == 0 {
		return nil
	}
	if b.props == nil {
		b.props = cmis.NewProperties()
	}
	b.props.SetExtensions(b.ext)
	return b.props
}
