// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package cmis

import (
	"math/big"
	"slices"

	"github.com/shopspring/decimal"
)

// Choice is one entry of a property definition's choice list. Choices nest
// to form hierarchies; a choice with children usually carries no values.
type Choice struct {
	DisplayName string
	Values      []any
	Choices     []Choice
}

// PropertyDefinition is the schema of one property of a type. Constraint
// fields only apply to the property types named in their comments and are
// ignored by encoders otherwise.
type PropertyDefinition struct {
	ExtensionHolder

	ID             string
	LocalName      string
	LocalNamespace string
	QueryName      string
	DisplayName    string
	Description    string

	PropertyType PropertyType
	Cardinality  Cardinality
	Updatability Updatability
	Inherited    *bool
	Required     bool
	Queryable    bool
	Orderable    bool
	OpenChoice   *bool

	DefaultValue []any
	Choices      []Choice

	// INTEGER bounds.
	MinInteger *big.Int
	MaxInteger *big.Int
	// DECIMAL bounds and precision.
	MinDecimal *decimal.Decimal
	MaxDecimal *decimal.Decimal
	Precision  DecimalPrecision
	// DATETIME resolution.
	Resolution DateTimeResolution
	// STRING maximum length.
	MaxLength *big.Int
}

// PropertyDefinitionLookup resolves property ids to definitions. Decoders
// use it to enforce cardinality and value types.
type PropertyDefinitionLookup interface {
	PropertyDefinition(id string) (*PropertyDefinition, bool)
}

// PropertyDefinitionMap is a map-backed [PropertyDefinitionLookup].
type PropertyDefinitionMap map[string]*PropertyDefinition

// PropertyDefinition implements [PropertyDefinitionLookup].
func (m PropertyDefinitionMap) PropertyDefinition(id string) (*PropertyDefinition, bool) {
	pd, ok := m[id]
	return pd, ok
}

// Validate checks the definition for internal consistency.
func (pd *PropertyDefinition) Validate() error {
	if pd.ID == "" {
		return invalidData("property definition", pd.ID, "id is required")
	}
	if !pd.PropertyType.Valid() {
		return invalidData("property definition", pd.ID, "unknown property type %q", pd.PropertyType)
	}
	if !pd.Cardinality.Valid() {
		return invalidData("property definition", pd.ID, "unknown cardinality %q", pd.Cardinality)
	}
	if !pd.Updatability.Valid() {
		return invalidData("property definition", pd.ID, "unknown updatability %q", pd.Updatability)
	}
	if pd.Cardinality == CardinalitySingle && len(pd.DefaultValue) > 1 {
		return invalidData("property definition", pd.ID, "single-valued property has %d default values", len(pd.DefaultValue))
	}
	for _, v := range pd.DefaultValue {
		if !ValueMatchesType(pd.PropertyType, v) {
			return invalidData("property definition", pd.ID, "default value %v does not match type %s", v, pd.PropertyType)
		}
	}
	if err := pd.validateChoices(pd.Choices); err != nil {
		return err
	}
	if pd.Precision != "" && !pd.Precision.Valid() {
		return invalidData("property definition", pd.ID, "unknown decimal precision %q", pd.Precision)
	}
	if pd.Resolution != "" && !pd.Resolution.Valid() {
		return invalidData("property definition", pd.ID, "unknown datetime resolution %q", pd.Resolution)
	}
	if pd.MinInteger != nil && pd.MaxInteger != nil && pd.MinInteger.Cmp(pd.MaxInteger) > 0 {
		return invalidData("property definition", pd.ID, "minimum %s exceeds maximum %s", pd.MinInteger, pd.MaxInteger)
	}
	if pd.MinDecimal != nil && pd.MaxDecimal != nil && pd.MinDecimal.GreaterThan(*pd.MaxDecimal) {
		return invalidData("property definition", pd.ID, "minimum %s exceeds maximum %s", pd.MinDecimal, pd.MaxDecimal)
	}
	return nil
}

func (pd *PropertyDefinition) validateChoices(choices []Choice) error {
	for _, c := range choices {
		for _, v := range c.Values {
			if !ValueMatchesType(pd.PropertyType, v) {
				return invalidData("property definition", pd.ID, "choice %q value %v does not match type %s", c.DisplayName, v, pd.PropertyType)
			}
		}
		if err := pd.validateChoices(c.Choices); err != nil {
			return err
		}
	}
	return nil
}

// CheckProperty verifies that p agrees with the definition in type and
// cardinality.
func (pd *PropertyDefinition) CheckProperty(p Property) error {
	if p.Type() != pd.PropertyType {
		return invalidData("property", pd.ID, "has type %s, definition says %s", p.Type(), pd.PropertyType)
	}
	if pd.Cardinality == CardinalitySingle && p.Len() > 1 {
		return invalidData("property", pd.ID, "single-valued property has %d values", p.Len())
	}
	return nil
}

// Clone returns a deep copy of the definition.
func (pd *PropertyDefinition) Clone() *PropertyDefinition {
	if pd == nil {
		return nil
	}
	c := *pd
	c.ExtensionHolder = ExtensionHolder{}
	c.SetExtensions(pd.Extensions())
	c.Inherited = cloneBool(pd.Inherited)
	c.OpenChoice = cloneBool(pd.OpenChoice)
	c.DefaultValue = slices.Clone(pd.DefaultValue)
	c.Choices = cloneChoices(pd.Choices)
	c.MinInteger = cloneBig(pd.MinInteger)
	c.MaxInteger = cloneBig(pd.MaxInteger)
	c.MaxLength = cloneBig(pd.MaxLength)
	return &c
}

func cloneChoices(cs []Choice) []Choice {
	if cs == nil {
		return nil
	}
	out := make([]Choice, len(cs))
	for i, c := range cs {
		out[i] = Choice{
			DisplayName: c.DisplayName,
			Values:      slices.Clone(c.Values),
			Choices:     cloneChoices(c.Choices),
		}
	}
	return out
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func cloneBig(b *big.Int) *big.Int {
	if b == nil {
		return nil
	}
	return new(big.Int).Set(b)
}

// Bool returns a pointer to b, for the optional flags of data objects.
func Bool(b bool) *bool {
	return &b
}

// PropertyDefinitionEqual compares every field of two definitions.
func PropertyDefinitionEqual(a, b *PropertyDefinition) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID == b.ID &&
		a.LocalName == b.LocalName &&
		a.LocalNamespace == b.LocalNamespace &&
		a.QueryName == b.QueryName &&
		a.DisplayName == b.DisplayName &&
		a.Description == b.Description &&
		a.PropertyType == b.PropertyType &&
		a.Cardinality == b.Cardinality &&
		a.Updatability == b.Updatability &&
		boolPtrEqual(a.Inherited, b.Inherited) &&
		a.Required == b.Required &&
		a.Queryable == b.Queryable &&
		a.Orderable == b.Orderable &&
		boolPtrEqual(a.OpenChoice, b.OpenChoice) &&
		valuesEqual(a.DefaultValue, b.DefaultValue) &&
		choicesEqual(a.Choices, b.Choices) &&
		bigEqual(a.MinInteger, b.MinInteger) &&
		bigEqual(a.MaxInteger, b.MaxInteger) &&
		decimalPtrEqual(a.MinDecimal, b.MinDecimal) &&
		decimalPtrEqual(a.MaxDecimal, b.MaxDecimal) &&
		a.Precision == b.Precision &&
		a.Resolution == b.Resolution &&
		bigEqual(a.MaxLength, b.MaxLength) &&
		ExtensionsEqual(a.Extensions(), b.Extensions())
}

func choicesEqual(a, b []Choice) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].DisplayName != b[i].DisplayName ||
			!valuesEqual(a[i].Values, b[i].Values) ||
			!choicesEqual(a[i].Choices, b[i].Choices) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ValueEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func bigEqual(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Cmp(b) == 0
}

func decimalPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
