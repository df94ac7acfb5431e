// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package typesys

import (
	"io"
	"math/big"

	"github.com/samber/oops"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// File is the YAML layout of a type-system file.
type File struct {
	Types []TypeSpec `yaml:"types"`
}

// TypeSpec describes one subtype in a type-system file.
type TypeSpec struct {
	ID                       string          `yaml:"id"`
	Base                     cmis.BaseTypeID `yaml:"base"`
	Parent                   string          `yaml:"parent"`
	LocalName                string          `yaml:"localName,omitempty"`
	LocalNamespace           string          `yaml:"localNamespace,omitempty"`
	QueryName                string          `yaml:"queryName,omitempty"`
	DisplayName              string          `yaml:"displayName,omitempty"`
	Description              string          `yaml:"description,omitempty"`
	Creatable                *bool           `yaml:"creatable,omitempty"`
	Fileable                 *bool           `yaml:"fileable,omitempty"`
	Queryable                *bool           `yaml:"queryable,omitempty"`
	FulltextIndexed          bool            `yaml:"fulltextIndexed,omitempty"`
	IncludedInSupertypeQuery *bool           `yaml:"includedInSupertypeQuery,omitempty"`
	ControllablePolicy       bool            `yaml:"controllablePolicy,omitempty"`
	ControllableACL          bool            `yaml:"controllableACL,omitempty"`
	Versionable              bool            `yaml:"versionable,omitempty"`
	ContentStreamAllowed     string          `yaml:"contentStreamAllowed,omitempty"`
	AllowedSourceTypes       []string        `yaml:"allowedSourceTypes,omitempty"`
	AllowedTargetTypes       []string        `yaml:"allowedTargetTypes,omitempty"`
	Mutability               *MutabilitySpec `yaml:"typeMutability,omitempty"`
	Properties               []PropertySpec  `yaml:"properties,omitempty"`
}

// MutabilitySpec is the YAML form of [cmis.TypeMutability].
type MutabilitySpec struct {
	Create bool `yaml:"create"`
	Update bool `yaml:"update"`
	Delete bool `yaml:"delete"`
}

// PropertySpec describes one property definition. Values are written as
// YAML scalars and parsed according to Type.
type PropertySpec struct {
	ID           string       `yaml:"id"`
	LocalName    string       `yaml:"localName,omitempty"`
	QueryName    string       `yaml:"queryName,omitempty"`
	DisplayName  string       `yaml:"displayName,omitempty"`
	Description  string       `yaml:"description,omitempty"`
	Type         string       `yaml:"type"`
	Cardinality  string       `yaml:"cardinality,omitempty"`
	Updatability string       `yaml:"updatability,omitempty"`
	Required     bool         `yaml:"required,omitempty"`
	Queryable    *bool        `yaml:"queryable,omitempty"`
	Orderable    bool         `yaml:"orderable,omitempty"`
	OpenChoice   *bool        `yaml:"openChoice,omitempty"`
	Default      []yaml.Node  `yaml:"default,omitempty"`
	Choices      []ChoiceSpec `yaml:"choices,omitempty"`
	MinValue     string       `yaml:"minValue,omitempty"`
	MaxValue     string       `yaml:"maxValue,omitempty"`
	MaxLength    string       `yaml:"maxLength,omitempty"`
	Precision    string       `yaml:"precision,omitempty"`
	Resolution   string       `yaml:"resolution,omitempty"`
}

// ChoiceSpec is the YAML form of [cmis.Choice].
type ChoiceSpec struct {
	DisplayName string       `yaml:"displayName"`
	Values      []yaml.Node  `yaml:"values,omitempty"`
	Choices     []ChoiceSpec `yaml:"choices,omitempty"`
}

// ParseTypes decodes a type-system file into type definitions.
func ParseTypes(data []byte) ([]*cmis.TypeDefinition, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, oops.Code(cmis.CodeInvalidTypeSystem).Wrapf(err, "parse type file")
	}
	out := make([]*cmis.TypeDefinition, 0, len(f.Types))
	for i := range f.Types {
		td, err := f.Types[i].build()
		if err != nil {
			return nil, err
		}
		out = append(out, td)
	}
	return out, nil
}

// LoadYAML reads a type-system file and returns a registry holding the
// base types of v plus the file's types.
func LoadYAML(r io.Reader, v cmis.Version) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, oops.Code(cmis.CodeInvalidTypeSystem).Wrapf(err, "read type file")
	}
	types, err := ParseTypes(data)
	if err != nil {
		return nil, err
	}
	for _, td := range types {
		if !td.LegalIn(v) {
			return nil, invalid(td.ID(), "base type "+string(td.BaseTypeID())+" is not available in CMIS "+string(v))
		}
	}
	return NewStandardRegistry(v, types...)
}

func (ts *TypeSpec) build() (*cmis.TypeDefinition, error) {
	b := cmis.NewTypeDefinitionBuilder(ts.ID, ts.Base).
		ParentTypeID(ts.Parent).
		LocalNamespace(ts.LocalNamespace).
		DisplayName(ts.DisplayName).
		Description(ts.Description).
		Creatable(boolOr(ts.Creatable, true)).
		Fileable(boolOr(ts.Fileable, ts.Base != cmis.BaseTypeRelationship && ts.Base != cmis.BaseTypeSecondary)).
		Queryable(boolOr(ts.Queryable, true)).
		FulltextIndexed(ts.FulltextIndexed).
		IncludedInSupertypeQuery(boolOr(ts.IncludedInSupertypeQuery, true)).
		ControllablePolicy(ts.ControllablePolicy).
		ControllableACL(ts.ControllableACL).
		Versionable(ts.Versionable).
		ContentStreamAllowed(cmis.ContentStreamAllowed(ts.ContentStreamAllowed)).
		AllowedSourceTypes(ts.AllowedSourceTypes...).
		AllowedTargetTypes(ts.AllowedTargetTypes...)
	if ts.LocalName != "" {
		b.LocalName(ts.LocalName)
	}
	if ts.QueryName != "" {
		b.QueryName(ts.QueryName)
	}
	if ts.Mutability != nil {
		b.TypeMutability(&cmis.TypeMutability{
			Create: ts.Mutability.Create,
			Update: ts.Mutability.Update,
			Delete: ts.Mutability.Delete,
		})
	}
	for i := range ts.Properties {
		pd, err := ts.Properties[i].definition()
		if err != nil {
			return nil, oops.Code(cmis.CodeInvalidTypeSystem).With("type_id", ts.ID).Wrap(err)
		}
		b.PropertyDefinition(pd)
	}
	td, err := b.Build()
	if err != nil {
		return nil, oops.Code(cmis.CodeInvalidTypeSystem).With("type_id", ts.ID).Wrap(err)
	}
	return td, nil
}

func (ps *PropertySpec) definition() (*cmis.PropertyDefinition, error) {
	pd := &cmis.PropertyDefinition{
		ID:           ps.ID,
		LocalName:    ps.LocalName,
		QueryName:    ps.QueryName,
		DisplayName:  ps.DisplayName,
		Description:  ps.Description,
		PropertyType: cmis.PropertyType(ps.Type),
		Cardinality:  cmis.Cardinality(orDefault(ps.Cardinality, string(cmis.CardinalitySingle))),
		Updatability: cmis.Updatability(orDefault(ps.Updatability, string(cmis.UpdatabilityReadWrite))),
		Inherited:    cmis.Bool(false),
		Required:     ps.Required,
		Queryable:    boolOr(ps.Queryable, true),
		Orderable:    ps.Orderable,
		OpenChoice:   ps.OpenChoice,
		Precision:    cmis.DecimalPrecision(ps.Precision),
		Resolution:   cmis.DateTimeResolution(ps.Resolution),
	}
	if pd.LocalName == "" {
		pd.LocalName = ps.ID
	}
	if pd.QueryName == "" {
		pd.QueryName = ps.ID
	}
	if !pd.PropertyType.Valid() {
		return nil, oops.With("property_id", ps.ID).Errorf("property %q: unknown type %q", ps.ID, ps.Type)
	}

	var err error
	if pd.DefaultValue, err = parseNodes(pd.PropertyType, ps.Default); err != nil {
		return nil, oops.With("property_id", ps.ID).Wrapf(err, "default value")
	}
	if pd.Choices, err = parseChoices(pd.PropertyType, ps.Choices); err != nil {
		return nil, oops.With("property_id", ps.ID).Wrapf(err, "choices")
	}
	if ps.MaxLength != "" {
		if pd.MaxLength, err = cmis.ParseInteger(ps.MaxLength); err != nil {
			return nil, oops.With("property_id", ps.ID).Wrapf(err, "maxLength")
		}
	}
	if err := ps.parseBounds(pd); err != nil {
		return nil, oops.With("property_id", ps.ID).Wrap(err)
	}
	return pd, nil
}

func (ps *PropertySpec) parseBounds(pd *cmis.PropertyDefinition) error {
	parseInt := func(s string) (*big.Int, error) {
		if s == "" {
			return nil, nil
		}
		return cmis.ParseInteger(s)
	}
	parseDec := func(s string) (*decimal.Decimal, error) {
		if s == "" {
			return nil, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, err
		}
		return &d, nil
	}

	var err error
	switch pd.PropertyType {
	case cmis.PropertyTypeInteger:
		if pd.MinInteger, err = parseInt(ps.MinValue); err != nil {
			return err
		}
		pd.MaxInteger, err = parseInt(ps.MaxValue)
	case cmis.PropertyTypeDecimal:
		if pd.MinDecimal, err = parseDec(ps.MinValue); err != nil {
			return err
		}
		pd.MaxDecimal, err = parseDec(ps.MaxValue)
	}
	return err
}

func parseNodes(t cmis.PropertyType, nodes []yaml.Node) ([]any, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	out := make([]any, 0, len(nodes))
	for i := range nodes {
		v, err := cmis.ParseValue(t, nodes[i].Value)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseChoices(t cmis.PropertyType, specs []ChoiceSpec) ([]cmis.Choice, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make([]cmis.Choice, 0, len(specs))
	for _, cs := range specs {
		values, err := parseNodes(t, cs.Values)
		if err != nil {
			return nil, err
		}
		children, err := parseChoices(t, cs.Choices)
		if err != nil {
			return nil, err
		}
		out = append(out, cmis.Choice{DisplayName: cs.DisplayName, Values: values, Choices: children})
	}
	return out, nil
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
