// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package jsonconv

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gocmis/gocmis/pkg/cmis"
)

var (
	typeKeys = newKeys("id", "localName", "localNamespace", "displayName", "queryName", "description",
		"baseId", "parentId", "creatable", "fileable", "queryable", "fulltextIndexed",
		"includedInSupertypeQuery", "controllablePolicy", "controllableACL", "propertyDefinitions",
		"versionable", "contentStreamAllowed", "allowedSourceTypes", "allowedTargetTypes").
		with(cmis.Version11, "typeMutability")
	mutabilityKeys = newKeys("create", "update", "delete")
	propDefKeys    = newKeys("id", "localName", "localNamespace", "displayName", "queryName", "description",
		"propertyType", "cardinality", "updatability", "inherited", "required", "queryable", "orderable",
		"openChoice", "defaultValue", "maxLength", "minValue", "maxValue", "precision", "resolution", "choice")
	typeListKeys  = newKeys("types", "hasMoreItems", "numItems")
	typeContKeys  = newKeys("type", "children")
	choiceMembers = map[string]bool{"displayName": true, "value": true, "choice": true}
)

// typeDefinition writes a type definition. Item and secondary types fail
// under 1.0.
func (e encoder) typeDefinition(td *cmis.TypeDefinition) (*object, error) {
	if !td.LegalIn(e.v) {
		return nil, e.violation("base type " + string(td.BaseTypeID()))
	}
	o := newObject()
	o.Set("id", td.ID())
	o.Set("localName", td.LocalName())
	setString(o, "localNamespace", td.LocalNamespace())
	setString(o, "displayName", td.DisplayName())
	o.Set("queryName", td.QueryName())
	setString(o, "description", td.Description())
	o.Set("baseId", string(td.BaseTypeID()))
	setString(o, "parentId", td.ParentTypeID())
	o.Set("creatable", td.Creatable())
	o.Set("fileable", td.Fileable())
	o.Set("queryable", td.Queryable())
	o.Set("fulltextIndexed", td.FulltextIndexed())
	o.Set("includedInSupertypeQuery", td.IncludedInSupertypeQuery())
	o.Set("controllablePolicy", td.ControllablePolicy())
	o.Set("controllableACL", td.ControllableACL())
	if m := td.TypeMutability(); m != nil && e.v.Is11() {
		mo := newObject()
		mo.Set("create", m.Create)
		mo.Set("update", m.Update)
		mo.Set("delete", m.Delete)
		e.extensions(mo, mutabilityKeys, m.Extensions())
		o.Set("typeMutability", mo)
	}
	if pds := td.PropertyDefinitions(); len(pds) > 0 {
		defs := newObject()
		for _, pd := range pds {
			po, err := e.propertyDefinition(pd)
			if err != nil {
				return nil, err
			}
			defs.Set(pd.ID, po)
		}
		o.Set("propertyDefinitions", defs)
	}
	switch td.BaseTypeID() {
	case cmis.BaseTypeDocument:
		o.Set("versionable", td.Versionable())
		setString(o, "contentStreamAllowed", string(td.ContentStreamAllowed()))
	case cmis.BaseTypeRelationship:
		o.Set("allowedSourceTypes", nonNil(td.AllowedSourceTypes()))
		o.Set("allowedTargetTypes", nonNil(td.AllowedTargetTypes()))
	}
	e.extensions(o, typeKeys, td.Extensions())
	return o, nil
}

func (e encoder) propertyDefinition(pd *cmis.PropertyDefinition) (*object, error) {
	o := newObject()
	o.Set("id", pd.ID)
	setString(o, "localName", pd.LocalName)
	setString(o, "localNamespace", pd.LocalNamespace)
	setString(o, "displayName", pd.DisplayName)
	setString(o, "queryName", pd.QueryName)
	setString(o, "description", pd.Description)
	o.Set("propertyType", string(pd.PropertyType))
	o.Set("cardinality", string(pd.Cardinality))
	o.Set("updatability", string(pd.Updatability))
	setBool(o, "inherited", pd.Inherited)
	o.Set("required", pd.Required)
	o.Set("queryable", pd.Queryable)
	o.Set("orderable", pd.Orderable)
	setBool(o, "openChoice", pd.OpenChoice)
	if len(pd.DefaultValue) > 0 {
		values, err := jsonValues(pd.PropertyType, pd.DefaultValue)
		if err != nil {
			return nil, err
		}
		if len(values) == 1 {
			o.Set("defaultValue", values[0])
		} else {
			o.Set("defaultValue", values)
		}
	}
	switch pd.PropertyType {
	case cmis.PropertyTypeString:
		setInteger(o, "maxLength", pd.MaxLength)
	case cmis.PropertyTypeInteger:
		setInteger(o, "minValue", pd.MinInteger)
		setInteger(o, "maxValue", pd.MaxInteger)
	case cmis.PropertyTypeDecimal:
		if pd.MinDecimal != nil {
			o.Set("minValue", json.Number(pd.MinDecimal.String()))
		}
		if pd.MaxDecimal != nil {
			o.Set("maxValue", json.Number(pd.MaxDecimal.String()))
		}
		setString(o, "precision", string(pd.Precision))
	case cmis.PropertyTypeDateTime:
		setString(o, "resolution", string(pd.Resolution))
	}
	if len(pd.Choices) > 0 {
		choices, err := jsonChoices(pd.PropertyType, pd.Choices)
		if err != nil {
			return nil, err
		}
		o.Set("choice", choices)
	}
	e.extensions(o, propDefKeys, pd.Extensions())
	return o, nil
}

func jsonChoices(t cmis.PropertyType, choices []cmis.Choice) ([]any, error) {
	out := make([]any, 0, len(choices))
	for _, c := range choices {
		o := newObject()
		setString(o, "displayName", c.DisplayName)
		values, err := jsonValues(t, c.Values)
		if err != nil {
			return nil, err
		}
		o.Set("value", values)
		if len(c.Choices) > 0 {
			children, err := jsonChoices(t, c.Choices)
			if err != nil {
				return nil, err
			}
			o.Set("choice", children)
		}
		out = append(out, o)
	}
	return out, nil
}

func (e encoder) typeList(l *cmis.TypeDefinitionList) (any, error) {
	types := make([]any, 0, len(l.Types))
	for _, td := range l.Types {
		o, err := e.typeDefinition(td)
		if err != nil {
			return nil, err
		}
		types = append(types, o)
	}
	o := newObject()
	o.Set("types", types)
	o.Set("hasMoreItems", l.HasMoreItems)
	setInteger(o, "numItems", l.NumItems)
	e.extensions(o, typeListKeys, l.Extensions())
	return o, nil
}

func (e encoder) typeTree(tree []*cmis.TypeDefinitionContainer) (any, error) {
	out := make([]any, 0, len(tree))
	for _, c := range tree {
		td, err := e.typeDefinition(c.Type)
		if err != nil {
			return nil, err
		}
		o := newObject()
		o.Set("type", td)
		if len(c.Children) > 0 {
			children, err := e.typeTree(c.Children)
			if err != nil {
				return nil, err
			}
			o.Set("children", children)
		}
		e.extensions(o, typeContKeys, c.Extensions())
		out = append(out, o)
	}
	return out, nil
}

// typeDefinition reads a type definition. Members may come in any order,
// so builder calls are collected and replayed once id and baseId are known.
func (d decoder) typeDefinition(val value) (*cmis.TypeDefinition, error) {
	var (
		id   string
		base cmis.BaseTypeID
		sets []func(b *cmis.TypeDefinitionBuilder)
	)
	set := func(f func(b *cmis.TypeDefinitionBuilder)) { sets = append(sets, f) }
	str := func(d decoder, val value, f func(b *cmis.TypeDefinitionBuilder, s string) *cmis.TypeDefinitionBuilder) error {
		s, err := d.str(val)
		if err == nil {
			set(func(b *cmis.TypeDefinitionBuilder) { f(b, s) })
		}
		return err
	}
	flag := func(d decoder, val value, f func(b *cmis.TypeDefinitionBuilder, v bool) *cmis.TypeDefinitionBuilder) error {
		v, err := d.boolean(val)
		if err == nil {
			set(func(b *cmis.TypeDefinitionBuilder) { f(b, v) })
		}
		return err
	}

	ext, err := d.fields(val, typeKeys, func(key string, d decoder, val value) error {
		switch key {
		case "id":
			var err error
			id, err = d.str(val)
			return err
		case "baseId":
			var err error
			base, err = parseEnum(d, "base type", val, cmis.BaseTypeID.Valid)
			return err
		case "localName":
			return str(d, val, (*cmis.TypeDefinitionBuilder).LocalName)
		case "localNamespace":
			return str(d, val, (*cmis.TypeDefinitionBuilder).LocalNamespace)
		case "displayName":
			return str(d, val, (*cmis.TypeDefinitionBuilder).DisplayName)
		case "queryName":
			return str(d, val, (*cmis.TypeDefinitionBuilder).QueryName)
		case "description":
			return str(d, val, (*cmis.TypeDefinitionBuilder).Description)
		case "parentId":
			return str(d, val, (*cmis.TypeDefinitionBuilder).ParentTypeID)
		case "creatable":
			return flag(d, val, (*cmis.TypeDefinitionBuilder).Creatable)
		case "fileable":
			return flag(d, val, (*cmis.TypeDefinitionBuilder).Fileable)
		case "queryable":
			return flag(d, val, (*cmis.TypeDefinitionBuilder).Queryable)
		case "fulltextIndexed":
			return flag(d, val, (*cmis.TypeDefinitionBuilder).FulltextIndexed)
		case "includedInSupertypeQuery":
			return flag(d, val, (*cmis.TypeDefinitionBuilder).IncludedInSupertypeQuery)
		case "controllablePolicy":
			return flag(d, val, (*cmis.TypeDefinitionBuilder).ControllablePolicy)
		case "controllableACL":
			return flag(d, val, (*cmis.TypeDefinitionBuilder).ControllableACL)
		case "versionable":
			return flag(d, val, (*cmis.TypeDefinitionBuilder).Versionable)
		case "contentStreamAllowed":
			csa, err := parseEnum(d, "contentStreamAllowed", val, cmis.ContentStreamAllowed.Valid)
			if err == nil {
				set(func(b *cmis.TypeDefinitionBuilder) { b.ContentStreamAllowed(csa) })
			}
			return err
		case "allowedSourceTypes", "allowedTargetTypes":
			ids, err := d.strings(val)
			if err != nil || len(ids) == 0 {
				return err
			}
			if key == "allowedSourceTypes" {
				set(func(b *cmis.TypeDefinitionBuilder) { b.AllowedSourceTypes(ids...) })
			} else {
				set(func(b *cmis.TypeDefinitionBuilder) { b.AllowedTargetTypes(ids...) })
			}
			return nil
		case "typeMutability":
			m, err := d.typeMutability(val)
			if err == nil {
				set(func(b *cmis.TypeDefinitionBuilder) { b.TypeMutability(m) })
			}
			return err
		case "propertyDefinitions":
			return d.members(val, func(key string, d decoder, val value) error {
				pd, err := d.propertyDefinition(key, val)
				if err == nil {
					set(func(b *cmis.TypeDefinitionBuilder) { b.PropertyDefinition(pd) })
				}
				return err
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if id == "" || base == "" {
		return nil, d.malformed("type definition needs id and baseId")
	}

	b := cmis.NewTypeDefinitionBuilder(id, base)
	for _, f := range sets {
		f(b)
	}
	b.Extensions(ext)
	td, err := b.Build()
	if err != nil {
		return nil, d.malformed("%v", err)
	}
	return td, nil
}

func (d decoder) typeMutability(val value) (*cmis.TypeMutability, error) {
	m := &cmis.TypeMutability{}
	ext, err := d.fields(val, mutabilityKeys, func(key string, d decoder, val value) error {
		var err error
		switch key {
		case "create":
			m.Create, err = d.boolean(val)
		case "update":
			m.Update, err = d.boolean(val)
		case "delete":
			m.Delete, err = d.boolean(val)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	m.SetExtensions(ext)
	return m, nil
}

// propertyDefinition reads the definition stored under key. Typed members
// are converted after the whole object is read, since they may precede
// propertyType.
func (d decoder) propertyDefinition(key string, val value) (*cmis.PropertyDefinition, error) {
	pd := &cmis.PropertyDefinition{}
	var defaults, minValue, maxValue, choices *value
	ext, err := d.fields(val, propDefKeys, func(k string, d decoder, val value) error {
		var err error
		switch k {
		case "id":
			pd.ID, err = d.str(val)
		case "localName":
			pd.LocalName, err = d.str(val)
		case "localNamespace":
			pd.LocalNamespace, err = d.str(val)
		case "displayName":
			pd.DisplayName, err = d.str(val)
		case "queryName":
			pd.QueryName, err = d.str(val)
		case "description":
			pd.Description, err = d.str(val)
		case "propertyType":
			pd.PropertyType, err = parseEnum(d, "property type", val, cmis.PropertyType.Valid)
		case "cardinality":
			pd.Cardinality, err = parseEnum(d, "cardinality", val, cmis.Cardinality.Valid)
		case "updatability":
			pd.Updatability, err = parseEnum(d, "updatability", val, cmis.Updatability.Valid)
		case "inherited":
			pd.Inherited, err = d.optBool(val)
		case "required":
			pd.Required, err = d.boolean(val)
		case "queryable":
			pd.Queryable, err = d.boolean(val)
		case "orderable":
			pd.Orderable, err = d.boolean(val)
		case "openChoice":
			pd.OpenChoice, err = d.optBool(val)
		case "defaultValue":
			defaults = &val
		case "maxLength":
			pd.MaxLength, err = d.integer(val)
		case "minValue":
			minValue = &val
		case "maxValue":
			maxValue = &val
		case "precision":
			pd.Precision, err = parseEnum(d, "decimal precision", val, cmis.DecimalPrecision.Valid)
		case "resolution":
			pd.Resolution, err = parseEnum(d, "datetime resolution", val, cmis.DateTimeResolution.Valid)
		case "choice":
			choices = &val
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	switch {
	case pd.ID == "":
		pd.ID = key
	case pd.ID != key:
		return nil, d.at("id").malformed("id %q does not match member name %q", pd.ID, key)
	}
	if pd.PropertyType == "" {
		return nil, d.malformed("property definition %q has no propertyType", pd.ID)
	}
	if defaults != nil {
		if pd.DefaultValue, err = d.at("defaultValue").propertyValues(pd.PropertyType, *defaults); err != nil {
			return nil, err
		}
	}
	if choices != nil {
		if pd.Choices, err = d.at("choice").choices(pd.PropertyType, *choices); err != nil {
			return nil, err
		}
	}
	if err := d.bound(pd, "minValue", minValue, &pd.MinInteger, &pd.MinDecimal); err != nil {
		return nil, err
	}
	if err := d.bound(pd, "maxValue", maxValue, &pd.MaxInteger, &pd.MaxDecimal); err != nil {
		return nil, err
	}
	pd.SetExtensions(ext)
	return pd, nil
}

// bound parses a minValue or maxValue member according to the property
// type. Bounds on other types are ignored.
func (d decoder) bound(pd *cmis.PropertyDefinition, key string, val *value, ints **big.Int, decs **decimal.Decimal) error {
	if val == nil {
		return nil
	}
	d = d.at(key)
	switch pd.PropertyType {
	case cmis.PropertyTypeInteger:
		i, err := d.integer(*val)
		if err != nil {
			return err
		}
		*ints = i
	case cmis.PropertyTypeDecimal:
		s, err := d.scalar(*val)
		if err != nil {
			return err
		}
		dec, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return d.malformed("invalid decimal %q", s)
		}
		*decs = &dec
	}
	return nil
}

// choices reads a choice array. Choice objects take no extensions.
func (d decoder) choices(t cmis.PropertyType, val value) ([]cmis.Choice, error) {
	var out []cmis.Choice
	err := d.each(val, func(d decoder, val value) error {
		var c cmis.Choice
		err := d.members(val, func(key string, d decoder, val value) error {
			if !choiceMembers[key] || val.null() {
				return nil
			}
			var err error
			switch key {
			case "displayName":
				c.DisplayName, err = d.str(val)
			case "value":
				c.Values, err = d.propertyValues(t, val)
			case "choice":
				c.Choices, err = d.choices(t, val)
			}
			return err
		})
		out = append(out, c)
		return err
	})
	return out, err
}

func (d decoder) typeList(val value) (*cmis.TypeDefinitionList, error) {
	l := &cmis.TypeDefinitionList{}
	ext, err := d.fields(val, typeListKeys, func(key string, d decoder, val value) error {
		var err error
		switch key {
		case "types":
			err = d.each(val, func(d decoder, val value) error {
				td, err := d.typeDefinition(val)
				if err == nil {
					l.Types = append(l.Types, td)
				}
				return err
			})
		case "hasMoreItems":
			l.HasMoreItems, err = d.boolean(val)
		case "numItems":
			l.NumItems, err = d.integer(val)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	l.SetExtensions(ext)
	return l, nil
}

func (d decoder) typeTree(val value) ([]*cmis.TypeDefinitionContainer, error) {
	var out []*cmis.TypeDefinitionContainer
	err := d.each(val, func(d decoder, val value) error {
		c := &cmis.TypeDefinitionContainer{}
		ext, err := d.fields(val, typeContKeys, func(key string, d decoder, val value) error {
			var err error
			switch key {
			case "type":
				c.Type, err = d.typeDefinition(val)
			case "children":
				c.Children, err = d.typeTree(val)
			}
			return err
		})
		if err != nil {
			return err
		}
		if c.Type == nil {
			return d.malformed("type container without type")
		}
		c.SetExtensions(ext)
		out = append(out, c)
		return nil
	})
	return out, err
}
