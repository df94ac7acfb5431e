// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package xmlconv

import (
	"encoding/xml"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gocmis/gocmis/pkg/cmis"
)

var typeDefinitionXSITypes = map[cmis.BaseTypeID]string{
	cmis.BaseTypeDocument:     "cmis:cmisTypeDocumentDefinitionType",
	cmis.BaseTypeFolder:       "cmis:cmisTypeFolderDefinitionType",
	cmis.BaseTypeRelationship: "cmis:cmisTypeRelationshipDefinitionType",
	cmis.BaseTypePolicy:       "cmis:cmisTypePolicyDefinitionType",
	cmis.BaseTypeItem:         "cmis:cmisTypeItemDefinitionType",
	cmis.BaseTypeSecondary:    "cmis:cmisTypeSecondaryDefinitionType",
}

// typeDefinition writes a type definition. Item and secondary types have
// no CMIS 1.0 representation and fail the whole document.
func (w *writer) typeDefinition(name string, td *cmis.TypeDefinition) {
	if !td.LegalIn(w.v) {
		w.violation("base type " + string(td.BaseTypeID()))
		return
	}
	w.open(name, attr("xsi:type", typeDefinitionXSITypes[td.BaseTypeID()]))
	w.text("cmis:id", td.ID())
	w.text("cmis:localName", td.LocalName())
	w.optText("cmis:localNamespace", td.LocalNamespace())
	w.optText("cmis:displayName", td.DisplayName())
	w.text("cmis:queryName", td.QueryName())
	w.optText("cmis:description", td.Description())
	w.text("cmis:baseId", string(td.BaseTypeID()))
	w.optText("cmis:parentId", td.ParentTypeID())
	w.boolean("cmis:creatable", td.Creatable())
	w.boolean("cmis:fileable", td.Fileable())
	w.boolean("cmis:queryable", td.Queryable())
	w.boolean("cmis:fulltextIndexed", td.FulltextIndexed())
	w.boolean("cmis:includedInSupertypeQuery", td.IncludedInSupertypeQuery())
	w.boolean("cmis:controllablePolicy", td.ControllablePolicy())
	w.boolean("cmis:controllableACL", td.ControllableACL())
	if m := td.TypeMutability(); m != nil && w.v.Is11() {
		w.open("cmis:typeMutability")
		w.boolean("cmis:create", m.Create)
		w.boolean("cmis:update", m.Update)
		w.boolean("cmis:delete", m.Delete)
		w.extensions(m.Extensions())
		w.close("cmis:typeMutability")
	}
	for _, pd := range td.PropertyDefinitions() {
		w.propertyDefinition(pd)
	}
	switch td.BaseTypeID() {
	case cmis.BaseTypeDocument:
		w.boolean("cmis:versionable", td.Versionable())
		w.optText("cmis:contentStreamAllowed", string(td.ContentStreamAllowed()))
	case cmis.BaseTypeRelationship:
		w.texts("cmis:allowedSourceTypes", td.AllowedSourceTypes())
		w.texts("cmis:allowedTargetTypes", td.AllowedTargetTypes())
	}
	w.extensions(td.Extensions())
	w.close(name)
}

func (w *writer) propertyDefinition(pd *cmis.PropertyDefinition) {
	el := "cmis:" + propertyElements[pd.PropertyType] + "Definition"
	w.open(el)
	w.text("cmis:id", pd.ID)
	w.optText("cmis:localName", pd.LocalName)
	w.optText("cmis:localNamespace", pd.LocalNamespace)
	w.optText("cmis:displayName", pd.DisplayName)
	w.optText("cmis:queryName", pd.QueryName)
	w.optText("cmis:description", pd.Description)
	w.text("cmis:propertyType", string(pd.PropertyType))
	w.text("cmis:cardinality", string(pd.Cardinality))
	w.text("cmis:updatability", string(pd.Updatability))
	w.optBoolean("cmis:inherited", pd.Inherited)
	w.boolean("cmis:required", pd.Required)
	w.boolean("cmis:queryable", pd.Queryable)
	w.boolean("cmis:orderable", pd.Orderable)
	w.optBoolean("cmis:openChoice", pd.OpenChoice)
	if len(pd.DefaultValue) > 0 {
		w.open("cmis:defaultValue", attr("propertyDefinitionId", pd.ID))
		w.values(pd.PropertyType, pd.DefaultValue)
		w.close("cmis:defaultValue")
	}
	switch pd.PropertyType {
	case cmis.PropertyTypeString:
		w.integer("cmis:maxLength", pd.MaxLength)
	case cmis.PropertyTypeInteger:
		w.integer("cmis:maxValue", pd.MaxInteger)
		w.integer("cmis:minValue", pd.MinInteger)
	case cmis.PropertyTypeDecimal:
		if pd.MaxDecimal != nil {
			w.text("cmis:maxValue", pd.MaxDecimal.String())
		}
		if pd.MinDecimal != nil {
			w.text("cmis:minValue", pd.MinDecimal.String())
		}
		w.optText("cmis:precision", string(pd.Precision))
	case cmis.PropertyTypeDateTime:
		w.optText("cmis:resolution", string(pd.Resolution))
	}
	w.choices(pd.PropertyType, pd.Choices)
	w.extensions(pd.Extensions())
	w.close(el)
}

func (w *writer) choices(t cmis.PropertyType, choices []cmis.Choice) {
	for _, c := range choices {
		w.open("cmis:choice", attr("displayName", c.DisplayName))
		w.values(t, c.Values)
		w.choices(t, c.Choices)
		w.close("cmis:choice")
	}
}

func (w *writer) typeList(name string, l *cmis.TypeDefinitionList) {
	w.open(name)
	for _, td := range l.Types {
		w.typeDefinition("cmis:types", td)
	}
	w.boolean("cmis:hasMoreItems", l.HasMoreItems)
	w.integer("cmis:numItems", l.NumItems)
	w.extensions(l.Extensions())
	w.close(name)
}

func (w *writer) typeContainer(name string, c *cmis.TypeDefinitionContainer) {
	w.open(name)
	w.typeDefinition("cmis:type", c.Type)
	for _, child := range c.Children {
		w.typeContainer("cmis:children", child)
	}
	w.extensions(c.Extensions())
	w.close(name)
}

// typeDefinition reads a type definition. Elements may come in any order,
// so builder calls are recorded and replayed once id and base are known.
func (r *reader) typeDefinition() (*cmis.TypeDefinition, error) {
	var (
		id   string
		base cmis.BaseTypeID
		sets []func(b *cmis.TypeDefinitionBuilder)
		ext  extList
	)
	set := func(f func(b *cmis.TypeDefinitionBuilder)) { sets = append(sets, f) }
	str := func(f func(b *cmis.TypeDefinitionBuilder, s string) *cmis.TypeDefinitionBuilder) error {
		s, err := r.text()
		if err == nil {
			set(func(b *cmis.TypeDefinitionBuilder) { f(b, s) })
		}
		return err
	}
	flag := func(f func(b *cmis.TypeDefinitionBuilder, v bool) *cmis.TypeDefinitionBuilder) error {
		v, err := r.boolean()
		if err == nil {
			set(func(b *cmis.TypeDefinitionBuilder) { f(b, v) })
		}
		return err
	}
	var sources, targets []string

	err := r.children(func(el xml.StartElement) error {
		var err error
		switch {
		case is(el, "id"):
			id, err = r.text()
		case is(el, "baseId"):
			base, err = enum(r, "base type", cmis.BaseTypeID.Valid)
		case is(el, "localName"):
			err = str((*cmis.TypeDefinitionBuilder).LocalName)
		case is(el, "localNamespace"):
			err = str((*cmis.TypeDefinitionBuilder).LocalNamespace)
		case is(el, "displayName"):
			err = str((*cmis.TypeDefinitionBuilder).DisplayName)
		case is(el, "queryName"):
			err = str((*cmis.TypeDefinitionBuilder).QueryName)
		case is(el, "description"):
			err = str((*cmis.TypeDefinitionBuilder).Description)
		case is(el, "parentId"):
			err = str((*cmis.TypeDefinitionBuilder).ParentTypeID)
		case is(el, "creatable"):
			err = flag((*cmis.TypeDefinitionBuilder).Creatable)
		case is(el, "fileable"):
			err = flag((*cmis.TypeDefinitionBuilder).Fileable)
		case is(el, "queryable"):
			err = flag((*cmis.TypeDefinitionBuilder).Queryable)
		case is(el, "fulltextIndexed"):
			err = flag((*cmis.TypeDefinitionBuilder).FulltextIndexed)
		case is(el, "includedInSupertypeQuery"):
			err = flag((*cmis.TypeDefinitionBuilder).IncludedInSupertypeQuery)
		case is(el, "controllablePolicy"):
			err = flag((*cmis.TypeDefinitionBuilder).ControllablePolicy)
		case is(el, "controllableACL"):
			err = flag((*cmis.TypeDefinitionBuilder).ControllableACL)
		case is(el, "versionable"):
			err = flag((*cmis.TypeDefinitionBuilder).Versionable)
		case is(el, "contentStreamAllowed"):
			var csa cmis.ContentStreamAllowed
			if csa, err = enum(r, "contentStreamAllowed", cmis.ContentStreamAllowed.Valid); err == nil {
				set(func(b *cmis.TypeDefinitionBuilder) { b.ContentStreamAllowed(csa) })
			}
		case is(el, "allowedSourceTypes"):
			var s string
			if s, err = r.text(); err == nil {
				sources = append(sources, s)
			}
		case is(el, "allowedTargetTypes"):
			var s string
			if s, err = r.text(); err == nil {
				targets = append(targets, s)
			}
		case r.is11(el, "typeMutability"):
			var m *cmis.TypeMutability
			if m, err = r.typeMutability(); err == nil {
				set(func(b *cmis.TypeDefinitionBuilder) { b.TypeMutability(m) })
			}
		case el.Name.Space == NamespaceCMIS && isPropertyDefinition(el.Name.Local):
			var pd *cmis.PropertyDefinition
			if pd, err = r.propertyDefinition(el); err == nil {
				set(func(b *cmis.TypeDefinitionBuilder) { b.PropertyDefinition(pd) })
			}
		default:
			err = r.unknown(el, &ext)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if id == "" || base == "" {
		return nil, r.malformed("type definition needs id and baseId")
	}

	b := cmis.NewTypeDefinitionBuilder(id, base)
	for _, f := range sets {
		f(b)
	}
	if len(sources) > 0 {
		b.AllowedSourceTypes(sources...)
	}
	if len(targets) > 0 {
		b.AllowedTargetTypes(targets...)
	}
	b.Extensions(ext)
	td, err := b.Build()
	if err != nil {
		return nil, r.malformed("%v", err)
	}
	return td, nil
}

func (r *reader) typeMutability() (*cmis.TypeMutability, error) {
	m := &cmis.TypeMutability{}
	err := r.children(func(el xml.StartElement) error {
		var err error
		switch {
		case is(el, "create"):
			m.Create, err = r.boolean()
		case is(el, "update"):
			m.Update, err = r.boolean()
		case is(el, "delete"):
			m.Delete, err = r.boolean()
		default:
			err = r.unknown(el, m)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func isPropertyDefinition(local string) bool {
	name, ok := strings.CutSuffix(local, "Definition")
	if !ok {
		return false
	}
	_, known := propertyTypes[name]
	return known
}

func (r *reader) propertyDefinition(start xml.StartElement) (*cmis.PropertyDefinition, error) {
	name, _ := strings.CutSuffix(start.Name.Local, "Definition")
	elementType := propertyTypes[name]
	pd := &cmis.PropertyDefinition{PropertyType: elementType}

	var minValue, maxValue string
	err := r.children(func(el xml.StartElement) error {
		var err error
		switch {
		case is(el, "id"):
			pd.ID, err = r.text()
		case is(el, "localName"):
			pd.LocalName, err = r.text()
		case is(el, "localNamespace"):
			pd.LocalNamespace, err = r.text()
		case is(el, "displayName"):
			pd.DisplayName, err = r.text()
		case is(el, "queryName"):
			pd.QueryName, err = r.text()
		case is(el, "description"):
			pd.Description, err = r.text()
		case is(el, "propertyType"):
			var t cmis.PropertyType
			if t, err = enum(r, "property type", cmis.PropertyType.Valid); err == nil && t != elementType {
				err = r.malformed("propertyType %s does not match element %s", t, start.Name.Local)
			}
		case is(el, "cardinality"):
			pd.Cardinality, err = enum(r, "cardinality", cmis.Cardinality.Valid)
		case is(el, "updatability"):
			pd.Updatability, err = enum(r, "updatability", cmis.Updatability.Valid)
		case is(el, "inherited"):
			pd.Inherited, err = r.boolPtr()
		case is(el, "required"):
			pd.Required, err = r.boolean()
		case is(el, "queryable"):
			pd.Queryable, err = r.boolean()
		case is(el, "orderable"):
			pd.Orderable, err = r.boolean()
		case is(el, "openChoice"):
			pd.OpenChoice, err = r.boolPtr()
		case is(el, "defaultValue"):
			pd.DefaultValue, err = r.valueList(elementType)
		case is(el, "choice"):
			var c cmis.Choice
			if c, err = r.choice(el, elementType); err == nil {
				pd.Choices = append(pd.Choices, c)
			}
		case is(el, "maxLength"):
			pd.MaxLength, err = r.integer()
		case is(el, "minValue"):
			minValue, err = r.text()
		case is(el, "maxValue"):
			maxValue, err = r.text()
		case is(el, "precision"):
			pd.Precision, err = enum(r, "decimal precision", cmis.DecimalPrecision.Valid)
		case is(el, "resolution"):
			pd.Resolution, err = enum(r, "datetime resolution", cmis.DateTimeResolution.Valid)
		default:
			err = r.unknown(el, pd)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := r.bounds(pd, minValue, maxValue); err != nil {
		return nil, err
	}
	return pd, nil
}

// bounds parses minValue and maxValue according to the property type.
func (r *reader) bounds(pd *cmis.PropertyDefinition, minValue, maxValue string) error {
	for _, b := range []struct {
		s    string
		ints **big.Int
		decs **decimal.Decimal
	}{
		{minValue, &pd.MinInteger, &pd.MinDecimal},
		{maxValue, &pd.MaxInteger, &pd.MaxDecimal},
	} {
		if b.s == "" {
			continue
		}
		switch pd.PropertyType {
		case cmis.PropertyTypeInteger:
			i, err := cmis.ParseInteger(b.s)
			if err != nil {
				return r.malformed("%v", err)
			}
			*b.ints = i
		case cmis.PropertyTypeDecimal:
			d, err := decimal.NewFromString(strings.TrimSpace(b.s))
			if err != nil {
				return r.malformed("invalid decimal %q", b.s)
			}
			*b.decs = &d
		}
	}
	return nil
}

// valueList reads the value children of a defaultValue or choice element.
func (r *reader) valueList(t cmis.PropertyType) ([]any, error) {
	var values []any
	err := r.children(func(el xml.StartElement) error {
		if !is(el, "value") {
			return r.skip()
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
	return values, err
}

func (r *reader) choice(start xml.StartElement, t cmis.PropertyType) (cmis.Choice, error) {
	c := cmis.Choice{DisplayName: attrValue(start, "displayName")}
	err := r.children(func(el xml.StartElement) error {
		switch {
		case is(el, "value"):
			s, err := r.text()
			if err != nil {
				return err
			}
			v, err := cmis.ParseValue(t, s)
			if err != nil {
				return r.malformed("%v", err)
			}
			c.Values = append(c.Values, v)
			return nil
		case is(el, "choice"):
			child, err := r.choice(el, t)
			if err == nil {
				c.Choices = append(c.Choices, child)
			}
			return err
		}
		return r.skip()
	})
	return c, err
}

func (r *reader) typeList() (*cmis.TypeDefinitionList, error) {
	l := &cmis.TypeDefinitionList{}
	err := r.children(func(el xml.StartElement) error {
		var err error
		switch {
		case is(el, "types"):
			var td *cmis.TypeDefinition
			if td, err = r.typeDefinition(); err == nil {
				l.Types = append(l.Types, td)
			}
		case is(el, "hasMoreItems"):
			l.HasMoreItems, err = r.boolean()
		case is(el, "numItems"):
			l.NumItems, err = r.integer()
		default:
			err = r.unknown(el, l)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *reader) typeContainer() (*cmis.TypeDefinitionContainer, error) {
	c := &cmis.TypeDefinitionContainer{}
	err := r.children(func(el xml.StartElement) error {
		var err error
		switch {
		case is(el, "type"):
			c.Type, err = r.typeDefinition()
		case is(el, "children"):
			var child *cmis.TypeDefinitionContainer
			if child, err = r.typeContainer(); err == nil {
				c.Children = append(c.Children, child)
			}
		default:
			err = r.unknown(el, c)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if c.Type == nil {
		return nil, r.malformed("type container without type")
	}
	return c, nil
}
