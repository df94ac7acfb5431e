// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package wsconv

import (
	"encoding/xml"
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

// wireTypeDefinition binds a type definition. The xsi:type value is a
// QName, so the element declares both prefixes it relies on. Definitions
// receives every unbound child on decode; Ext is only written.
type wireTypeDefinition struct {
	XMLNSXSI                 string              `xml:"xmlns:xsi,attr,omitempty"`
	XMLNSCMIS                string              `xml:"xmlns:cmis,attr,omitempty"`
	XSIType                  string              `xml:"xsi:type,attr,omitempty"`
	ID                       string              `xml:"id"`
	LocalName                string              `xml:"localName"`
	LocalNamespace           string              `xml:"localNamespace,omitempty"`
	DisplayName              string              `xml:"displayName,omitempty"`
	QueryName                string              `xml:"queryName"`
	Description              string              `xml:"description,omitempty"`
	BaseID                   string              `xml:"baseId"`
	ParentID                 string              `xml:"parentId,omitempty"`
	Creatable                *bool               `xml:"creatable"`
	Fileable                 *bool               `xml:"fileable"`
	Queryable                *bool               `xml:"queryable"`
	FulltextIndexed          *bool               `xml:"fulltextIndexed"`
	IncludedInSupertypeQuery *bool               `xml:"includedInSupertypeQuery"`
	ControllablePolicy       *bool               `xml:"controllablePolicy"`
	ControllableACL          *bool               `xml:"controllableACL"`
	TypeMutability           *wireTypeMutability `xml:"typeMutability"`
	Definitions              []definitionChoice  `xml:",any"`
	Versionable              *bool               `xml:"versionable"`
	ContentStreamAllowed     string              `xml:"contentStreamAllowed,omitempty"`
	AllowedSourceTypes       []string            `xml:"allowedSourceTypes"`
	AllowedTargetTypes       []string            `xml:"allowedTargetTypes"`
	Ext                      []anyElement        `xml:",any"`
}

type wireTypeMutability struct {
	Create bool         `xml:"create"`
	Update bool         `xml:"update"`
	Delete bool         `xml:"delete"`
	Any    []anyElement `xml:",any"`
}

type wirePropertyDefinition struct {
	XMLName        xml.Name
	ID             string            `xml:"id"`
	LocalName      string            `xml:"localName,omitempty"`
	LocalNamespace string            `xml:"localNamespace,omitempty"`
	DisplayName    string            `xml:"displayName,omitempty"`
	QueryName      string            `xml:"queryName,omitempty"`
	Description    string            `xml:"description,omitempty"`
	PropertyType   string            `xml:"propertyType"`
	Cardinality    string            `xml:"cardinality"`
	Updatability   string            `xml:"updatability"`
	Inherited      *bool             `xml:"inherited"`
	Required       bool              `xml:"required"`
	Queryable      bool              `xml:"queryable"`
	Orderable      bool              `xml:"orderable"`
	OpenChoice     *bool             `xml:"openChoice"`
	DefaultValue   *wireDefaultValue `xml:"defaultValue"`
	MaxLength      string            `xml:"maxLength,omitempty"`
	MaxValue       string            `xml:"maxValue,omitempty"`
	MinValue       string            `xml:"minValue,omitempty"`
	Precision      string            `xml:"precision,omitempty"`
	Resolution     string            `xml:"resolution,omitempty"`
	Choices        []*wireChoice     `xml:"choice"`
	Any            []anyElement      `xml:",any"`
}

type wireDefaultValue struct {
	PropertyDefinitionID string   `xml:"propertyDefinitionId,attr,omitempty"`
	Values               []string `xml:"value"`
}

type wireChoice struct {
	DisplayName string        `xml:"displayName,attr"`
	Values      []string      `xml:"value"`
	Choices     []*wireChoice `xml:"choice"`
}

// definitionChoice is one unbound child of a type definition: a property
// definition or an unknown element.
type definitionChoice struct {
	definition *wirePropertyDefinition
	ext        *anyElement
}

func (c *definitionChoice) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	if start.Name.Space == NamespaceCMIS && isPropertyDefinition(start.Name.Local) {
		c.definition = &wirePropertyDefinition{}
		return d.DecodeElement(c.definition, &start)
	}
	c.ext = &anyElement{}
	return d.DecodeElement(c.ext, &start)
}

func (c definitionChoice) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	if c.definition != nil {
		return e.EncodeElement(c.definition, xml.StartElement{Name: xml.Name{Local: c.definition.XMLName.Local}})
	}
	return e.Encode(c.ext)
}

func isPropertyDefinition(local string) bool {
	name, ok := strings.CutSuffix(local, "Definition")
	if !ok {
		return false
	}
	_, known := propertyTypes[name]
	return known
}

type wireTypeList struct {
	Types        []*wireTypeDefinition `xml:"types"`
	HasMoreItems bool                  `xml:"hasMoreItems"`
	NumItems     string                `xml:"numItems,omitempty"`
	Any          []anyElement          `xml:",any"`
}

type wireTypeContainer struct {
	Type     *wireTypeDefinition  `xml:"type"`
	Children []*wireTypeContainer `xml:"children"`
	Any      []anyElement         `xml:",any"`
}

type wireTypeTree struct {
	Types []*wireTypeContainer `xml:"types"`
}

// typeDefinition builds the wire form of td. Item and secondary types have
// no CMIS 1.0 representation and fail the whole document.
func (e encoder) typeDefinition(td *cmis.TypeDefinition) (*wireTypeDefinition, error) {
	if !td.LegalIn(e.v) {
		return nil, e.violation("base type " + string(td.BaseTypeID()))
	}
	out := &wireTypeDefinition{
		XMLNSXSI:                 NamespaceXSI,
		XMLNSCMIS:                NamespaceCMIS,
		XSIType:                  typeDefinitionXSITypes[td.BaseTypeID()],
		ID:                       td.ID(),
		LocalName:                td.LocalName(),
		LocalNamespace:           td.LocalNamespace(),
		DisplayName:              td.DisplayName(),
		QueryName:                td.QueryName(),
		Description:              td.Description(),
		BaseID:                   string(td.BaseTypeID()),
		ParentID:                 td.ParentTypeID(),
		Creatable:                cmis.Bool(td.Creatable()),
		Fileable:                 cmis.Bool(td.Fileable()),
		Queryable:                cmis.Bool(td.Queryable()),
		FulltextIndexed:          cmis.Bool(td.FulltextIndexed()),
		IncludedInSupertypeQuery: cmis.Bool(td.IncludedInSupertypeQuery()),
		ControllablePolicy:       cmis.Bool(td.ControllablePolicy()),
		ControllableACL:          cmis.Bool(td.ControllableACL()),
		Ext:                      anyElements(td.Extensions()),
	}
	if m := td.TypeMutability(); m != nil && e.v.Is11() {
		out.TypeMutability = &wireTypeMutability{Create: m.Create, Update: m.Update, Delete: m.Delete, Any: anyElements(m.Extensions())}
	}
	for _, pd := range td.PropertyDefinitions() {
		wpd, err := e.propertyDefinition(pd)
		if err != nil {
			return nil, err
		}
		out.Definitions = append(out.Definitions, definitionChoice{definition: wpd})
	}
	switch td.BaseTypeID() {
	case cmis.BaseTypeDocument:
		out.Versionable = cmis.Bool(td.Versionable())
		out.ContentStreamAllowed = string(td.ContentStreamAllowed())
	case cmis.BaseTypeRelationship:
		out.AllowedSourceTypes = td.AllowedSourceTypes()
		out.AllowedTargetTypes = td.AllowedTargetTypes()
	}
	return out, nil
}

func (e encoder) propertyDefinition(pd *cmis.PropertyDefinition) (*wirePropertyDefinition, error) {
	out := &wirePropertyDefinition{
		XMLName:        xml.Name{Local: propertyElements[pd.PropertyType] + "Definition"},
		ID:             pd.ID,
		LocalName:      pd.LocalName,
		LocalNamespace: pd.LocalNamespace,
		DisplayName:    pd.DisplayName,
		QueryName:      pd.QueryName,
		Description:    pd.Description,
		PropertyType:   string(pd.PropertyType),
		Cardinality:    string(pd.Cardinality),
		Updatability:   string(pd.Updatability),
		Inherited:      pd.Inherited,
		Required:       pd.Required,
		Queryable:      pd.Queryable,
		Orderable:      pd.Orderable,
		OpenChoice:     pd.OpenChoice,
		Any:            anyElements(pd.Extensions()),
	}
	if len(pd.DefaultValue) > 0 {
		values, err := formatValues(pd.PropertyType, pd.DefaultValue)
		if err != nil {
			return nil, invalidValue(err)
		}
		out.DefaultValue = &wireDefaultValue{PropertyDefinitionID: pd.ID, Values: values}
	}
	switch pd.PropertyType {
	case cmis.PropertyTypeString:
		out.MaxLength = formatInteger(pd.MaxLength)
	case cmis.PropertyTypeInteger:
		out.MaxValue = formatInteger(pd.MaxInteger)
		out.MinValue = formatInteger(pd.MinInteger)
	case cmis.PropertyTypeDecimal:
		if pd.MaxDecimal != nil {
			out.MaxValue = pd.MaxDecimal.String()
		}
		if pd.MinDecimal != nil {
			out.MinValue = pd.MinDecimal.String()
		}
		out.Precision = string(pd.Precision)
	case cmis.PropertyTypeDateTime:
		out.Resolution = string(pd.Resolution)
	}
	choices, err := wireChoices(pd.PropertyType, pd.Choices)
	if err != nil {
		return nil, err
	}
	out.Choices = choices
	return out, nil
}

func wireChoices(t cmis.PropertyType, choices []cmis.Choice) ([]*wireChoice, error) {
	var out []*wireChoice
	for _, c := range choices {
		values, err := formatValues(t, c.Values)
		if err != nil {
			return nil, invalidValue(err)
		}
		children, err := wireChoices(t, c.Choices)
		if err != nil {
			return nil, err
		}
		out = append(out, &wireChoice{DisplayName: c.DisplayName, Values: values, Choices: children})
	}
	return out, nil
}

func (e encoder) typeList(l *cmis.TypeDefinitionList) (*wireTypeList, error) {
	out := &wireTypeList{
		HasMoreItems: l.HasMoreItems,
		NumItems:     formatInteger(l.NumItems),
		Any:          anyElements(l.Extensions()),
	}
	for _, td := range l.Types {
		wt, err := e.typeDefinition(td)
		if err != nil {
			return nil, err
		}
		out.Types = append(out.Types, wt)
	}
	return out, nil
}

func (e encoder) typeContainer(c *cmis.TypeDefinitionContainer) (*wireTypeContainer, error) {
	wt, err := e.typeDefinition(c.Type)
	if err != nil {
		return nil, err
	}
	out := &wireTypeContainer{Type: wt, Any: anyElements(c.Extensions())}
	for _, child := range c.Children {
		wc, err := e.typeContainer(child)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, wc)
	}
	return out, nil
}

func (e encoder) typeTree(tree []*cmis.TypeDefinitionContainer) (*wireTypeTree, error) {
	out := &wireTypeTree{}
	for _, c := range tree {
		wc, err := e.typeContainer(c)
		if err != nil {
			return nil, err
		}
		out.Types = append(out.Types, wc)
	}
	return out, nil
}

// typeDefinition converts a bound type definition. Builder setters run
// only for elements that were present, so absent elements keep the
// builder's defaults.
func (d decoder) typeDefinition(w *wireTypeDefinition) (*cmis.TypeDefinition, error) {
	if w == nil {
		return nil, nil
	}
	base, err := parseEnum(d, "baseId", "base type", w.BaseID, cmis.BaseTypeID.Valid)
	if err != nil {
		return nil, err
	}
	if w.ID == "" || base == "" {
		return nil, d.malformed("type definition needs id and baseId")
	}
	b := cmis.NewTypeDefinitionBuilder(w.ID, base)
	for _, s := range []struct {
		value string
		set   func(b *cmis.TypeDefinitionBuilder, s string) *cmis.TypeDefinitionBuilder
	}{
		{w.LocalName, (*cmis.TypeDefinitionBuilder).LocalName},
		{w.LocalNamespace, (*cmis.TypeDefinitionBuilder).LocalNamespace},
		{w.DisplayName, (*cmis.TypeDefinitionBuilder).DisplayName},
		{w.QueryName, (*cmis.TypeDefinitionBuilder).QueryName},
		{w.Description, (*cmis.TypeDefinitionBuilder).Description},
		{w.ParentID, (*cmis.TypeDefinitionBuilder).ParentTypeID},
	} {
		if s.value != "" {
			s.set(b, s.value)
		}
	}
	for _, f := range []struct {
		value *bool
		set   func(b *cmis.TypeDefinitionBuilder, v bool) *cmis.TypeDefinitionBuilder
	}{
		{w.Creatable, (*cmis.TypeDefinitionBuilder).Creatable},
		{w.Fileable, (*cmis.TypeDefinitionBuilder).Fileable},
		{w.Queryable, (*cmis.TypeDefinitionBuilder).Queryable},
		{w.FulltextIndexed, (*cmis.TypeDefinitionBuilder).FulltextIndexed},
		{w.IncludedInSupertypeQuery, (*cmis.TypeDefinitionBuilder).IncludedInSupertypeQuery},
		{w.ControllablePolicy, (*cmis.TypeDefinitionBuilder).ControllablePolicy},
		{w.ControllableACL, (*cmis.TypeDefinitionBuilder).ControllableACL},
		{w.Versionable, (*cmis.TypeDefinitionBuilder).Versionable},
	} {
		if f.value != nil {
			f.set(b, *f.value)
		}
	}
	if w.ContentStreamAllowed != "" {
		csa, err := parseEnum(d, "contentStreamAllowed", "contentStreamAllowed", w.ContentStreamAllowed, cmis.ContentStreamAllowed.Valid)
		if err != nil {
			return nil, err
		}
		b.ContentStreamAllowed(csa)
	}
	if len(w.AllowedSourceTypes) > 0 {
		b.AllowedSourceTypes(w.AllowedSourceTypes...)
	}
	if len(w.AllowedTargetTypes) > 0 {
		b.AllowedTargetTypes(w.AllowedTargetTypes...)
	}

	var ext []cmis.ExtensionElement
	counts := map[string]int{}
	for _, item := range w.Definitions {
		if item.ext != nil {
			ext = append(ext, item.ext.extension())
			continue
		}
		name := item.definition.XMLName.Local
		counts[name]++
		pd, err := d.at(name, counts[name]).propertyDefinition(item.definition)
		if err != nil {
			return nil, err
		}
		b.PropertyDefinition(pd)
	}
	if m := w.TypeMutability; m != nil {
		if d.v.Is11() {
			tm := &cmis.TypeMutability{Create: m.Create, Update: m.Update, Delete: m.Delete}
			tm.SetExtensions(extensions(m.Any))
			b.TypeMutability(tm)
		} else {
			x, err := d.demote("typeMutability", m)
			if err != nil {
				return nil, err
			}
			ext = append(ext, x)
		}
	}
	b.Extensions(ext)
	td, err := b.Build()
	if err != nil {
		return nil, d.malformed("%v", err)
	}
	return td, nil
}

func (d decoder) propertyDefinition(w *wirePropertyDefinition) (*cmis.PropertyDefinition, error) {
	name, _ := strings.CutSuffix(w.XMLName.Local, "Definition")
	elementType := propertyTypes[name]
	t, err := parseEnum(d, "propertyType", "property type", w.PropertyType, cmis.PropertyType.Valid)
	if err != nil {
		return nil, err
	}
	if t != "" && t != elementType {
		return nil, d.at("propertyType", 0).malformed("propertyType %s does not match element %s", t, w.XMLName.Local)
	}
	pd := &cmis.PropertyDefinition{
		ID:             w.ID,
		LocalName:      w.LocalName,
		LocalNamespace: w.LocalNamespace,
		DisplayName:    w.DisplayName,
		QueryName:      w.QueryName,
		Description:    w.Description,
		PropertyType:   elementType,
		Inherited:      w.Inherited,
		Required:       w.Required,
		Queryable:      w.Queryable,
		Orderable:      w.Orderable,
		OpenChoice:     w.OpenChoice,
	}
	if pd.Cardinality, err = parseEnum(d, "cardinality", "cardinality", w.Cardinality, cmis.Cardinality.Valid); err != nil {
		return nil, err
	}
	if pd.Updatability, err = parseEnum(d, "updatability", "updatability", w.Updatability, cmis.Updatability.Valid); err != nil {
		return nil, err
	}
	if pd.Precision, err = parseEnum(d, "precision", "decimal precision", w.Precision, cmis.DecimalPrecision.Valid); err != nil {
		return nil, err
	}
	if pd.Resolution, err = parseEnum(d, "resolution", "datetime resolution", w.Resolution, cmis.DateTimeResolution.Valid); err != nil {
		return nil, err
	}
	if w.DefaultValue != nil {
		if pd.DefaultValue, err = d.at("defaultValue", 0).values(elementType, w.DefaultValue.Values); err != nil {
			return nil, err
		}
	}
	if pd.MaxLength, err = d.integer("maxLength", w.MaxLength); err != nil {
		return nil, err
	}
	if err := d.bounds(pd, w.MinValue, w.MaxValue); err != nil {
		return nil, err
	}
	if pd.Choices, err = d.choices(elementType, w.Choices); err != nil {
		return nil, err
	}
	pd.SetExtensions(extensions(w.Any))
	return pd, nil
}

// bounds parses minValue and maxValue according to the property type.
func (d decoder) bounds(pd *cmis.PropertyDefinition, minValue, maxValue string) error {
	var err error
	switch pd.PropertyType {
	case cmis.PropertyTypeInteger:
		if pd.MinInteger, err = d.integer("minValue", minValue); err != nil {
			return err
		}
		pd.MaxInteger, err = d.integer("maxValue", maxValue)
	case cmis.PropertyTypeDecimal:
		if pd.MinDecimal, err = d.decimal("minValue", minValue); err != nil {
			return err
		}
		pd.MaxDecimal, err = d.decimal("maxValue", maxValue)
	}
	return err
}

func (d decoder) decimal(name, s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, d.at(name, 0).malformed("invalid decimal %q", s)
	}
	return &v, nil
}

func (d decoder) choices(t cmis.PropertyType, ws []*wireChoice) ([]cmis.Choice, error) {
	var out []cmis.Choice
	for i, w := range ws {
		at := d.at("choice", i+1)
		values, err := at.values(t, w.Values)
		if err != nil {
			return nil, err
		}
		children, err := at.choices(t, w.Choices)
		if err != nil {
			return nil, err
		}
		out = append(out, cmis.Choice{DisplayName: w.DisplayName, Values: values, Choices: children})
	}
	return out, nil
}

func (d decoder) typeList(w *wireTypeList) (*cmis.TypeDefinitionList, error) {
	l := &cmis.TypeDefinitionList{HasMoreItems: w.HasMoreItems}
	for i, wt := range w.Types {
		td, err := d.at("types", i+1).typeDefinition(wt)
		if err != nil {
			return nil, err
		}
		l.Types = append(l.Types, td)
	}
	var err error
	if l.NumItems, err = d.integer("numItems", w.NumItems); err != nil {
		return nil, err
	}
	l.SetExtensions(extensions(w.Any))
	return l, nil
}

func (d decoder) typeContainer(w *wireTypeContainer) (*cmis.TypeDefinitionContainer, error) {
	if w.Type == nil {
		return nil, d.malformed("type container without type")
	}
	td, err := d.at("type", 0).typeDefinition(w.Type)
	if err != nil {
		return nil, err
	}
	c := &cmis.TypeDefinitionContainer{Type: td}
	for i, wc := range w.Children {
		child, err := d.at("children", i+1).typeContainer(wc)
		if err != nil {
			return nil, err
		}
		c.Children = append(c.Children, child)
	}
	c.SetExtensions(extensions(w.Any))
	return c, nil
}

func (d decoder) typeTree(w *wireTypeTree) ([]*cmis.TypeDefinitionContainer, error) {
	var out []*cmis.TypeDefinitionContainer
	for i, wc := range w.Types {
		c, err := d.at("types", i+1).typeContainer(wc)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
