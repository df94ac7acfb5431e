// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package cmis

import (
	"math/big"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// PropertyValue is the closed set of Go types that property values use.
//
//	BOOLEAN                 bool
//	ID, STRING, HTML, URI   string
//	INTEGER                 *big.Int
//	DECIMAL                 decimal.Decimal
//	DATETIME                time.Time
type PropertyValue interface {
	bool | string | *big.Int | decimal.Decimal | time.Time
}

// PropertyIdentity names a property within an object's property set.
type PropertyIdentity struct {
	ID        string
	LocalName string
	// LocalNamespace is carried by the browser binding only. The XML
	// encodings have no place for it, so property equality ignores it.
	LocalNamespace string
	QueryName      string
	DisplayName    string
}

// Identity returns the identity itself; it is promoted to every property.
func (pi PropertyIdentity) Identity() PropertyIdentity {
	return pi
}

// SetIdentity replaces the identity metadata. The id is replaced too, so
// callers moving a property between bags must keep it unique.
func (pi *PropertyIdentity) SetIdentity(id PropertyIdentity) {
	*pi = id
}

// Property is the type-erased view of a [PropertyData].
type Property interface {
	Extensible
	Identity() PropertyIdentity
	SetIdentity(id PropertyIdentity)
	Type() PropertyType
	Len() int
	AnyValues() []any
	AnyFirstValue() any
}

// PropertyData holds the ordered values of one property.
//
// Values is never nil: an empty slice means "no value". A property missing
// from a [Properties] bag means "not fetched" instead.
type PropertyData[T PropertyValue] struct {
	PropertyIdentity
	ExtensionHolder
	kind   PropertyType
	values []T
}

// Convenience names for the typed property variants.
type (
	BooleanProperty  = PropertyData[bool]
	StringProperty   = PropertyData[string]
	IntegerProperty  = PropertyData[*big.Int]
	DecimalProperty  = PropertyData[decimal.Decimal]
	DateTimeProperty = PropertyData[time.Time]
)

func newProperty[T PropertyValue](kind PropertyType, id string, values []T) *PropertyData[T] {
	p := &PropertyData[T]{
		PropertyIdentity: PropertyIdentity{ID: id},
		kind:             kind,
	}
	p.SetValues(values)
	return p
}

// NewBooleanProperty creates a BOOLEAN property.
func NewBooleanProperty(id string, values ...bool) *BooleanProperty {
	return newProperty(PropertyTypeBoolean, id, values)
}

// NewIDProperty creates an ID property.
func NewIDProperty(id string, values ...string) *StringProperty {
	return newProperty(PropertyTypeID, id, values)
}

// NewStringProperty creates a STRING property.
func NewStringProperty(id string, values ...string) *StringProperty {
	return newProperty(PropertyTypeString, id, values)
}

// NewHTMLProperty creates an HTML property.
func NewHTMLProperty(id string, values ...string) *StringProperty {
	return newProperty(PropertyTypeHTML, id, values)
}

// NewURIProperty creates a URI property.
func NewURIProperty(id string, values ...string) *StringProperty {
	return newProperty(PropertyTypeURI, id, values)
}

// NewIntegerProperty creates an INTEGER property.
func NewIntegerProperty(id string, values ...*big.Int) *IntegerProperty {
	return newProperty(PropertyTypeInteger, id, values)
}

// NewIntegerPropertyInt64 creates an INTEGER property from int64 values.
func NewIntegerPropertyInt64(id string, values ...int64) *IntegerProperty {
	bigs := make([]*big.Int, len(values))
	for i, v := range values {
		bigs[i] = big.NewInt(v)
	}
	return NewIntegerProperty(id, bigs...)
}

// NewDecimalProperty creates a DECIMAL property.
func NewDecimalProperty(id string, values ...decimal.Decimal) *DecimalProperty {
	return newProperty(PropertyTypeDecimal, id, values)
}

// NewDateTimeProperty creates a DATETIME property.
func NewDateTimeProperty(id string, values ...time.Time) *DateTimeProperty {
	return newProperty(PropertyTypeDateTime, id, values)
}

// Type returns the declared property type.
func (p *PropertyData[T]) Type() PropertyType {
	return p.kind
}

// Len returns the number of values.
func (p *PropertyData[T]) Len() int {
	return len(p.values)
}

// Values returns a copy of the values. The result is never nil.
func (p *PropertyData[T]) Values() []T {
	out := make([]T, len(p.values))
	copy(out, p.values)
	return out
}

// FirstValue returns the first value, or false when there is none.
func (p *PropertyData[T]) FirstValue() (T, bool) {
	if len(p.values) == 0 {
		var zero T
		return zero, false
	}
	return p.values[0], true
}

// SetValue replaces the values with v. A nil INTEGER value empties the
// property instead of storing a nil element.
func (p *PropertyData[T]) SetValue(v T) {
	if isNilValue(v) {
		p.values = []T{}
		return
	}
	p.values = []T{v}
}

// SetValues replaces the values wholesale. A nil slice empties the
// property; nil INTEGER elements are skipped.
func (p *PropertyData[T]) SetValues(values []T) {
	out := make([]T, 0, len(values))
	for _, v := range values {
		if !isNilValue(v) {
			out = append(out, v)
		}
	}
	p.values = out
}

// Clear removes every value.
func (p *PropertyData[T]) Clear() {
	p.values = []T{}
}

// AnyValues returns the values as a slice of any.
func (p *PropertyData[T]) AnyValues() []any {
	out := make([]any, len(p.values))
	for i, v := range p.values {
		out[i] = v
	}
	return out
}

// AnyFirstValue returns the first value as any, or nil.
func (p *PropertyData[T]) AnyFirstValue() any {
	if len(p.values) == 0 {
		return nil
	}
	return p.values[0]
}

// Clone returns a deep copy of the property.
func (p *PropertyData[T]) Clone() *PropertyData[T] {
	c := &PropertyData[T]{
		PropertyIdentity: p.PropertyIdentity,
		kind:             p.kind,
		values:           slices.Clone(p.values),
	}
	if c.values == nil {
		c.values = []T{}
	}
	c.SetExtensions(p.Extensions())
	return c
}

func isNilValue(v any) bool {
	b, ok := v.(*big.Int)
	return ok && b == nil
}

// NewPropertyFromValues builds a property of type t from type-erased
// values, as decoders and repositories hold them. It fails when a value
// does not match t.
func NewPropertyFromValues(t PropertyType, id string, values []any) (Property, error) {
	switch t {
	case PropertyTypeBoolean:
		vs, err := castValues[bool](t, id, values)
		if err != nil {
			return nil, err
		}
		return NewBooleanProperty(id, vs...), nil
	case PropertyTypeID, PropertyTypeString, PropertyTypeHTML, PropertyTypeURI:
		vs, err := castValues[string](t, id, values)
		if err != nil {
			return nil, err
		}
		return newProperty(t, id, vs), nil
	case PropertyTypeInteger:
		vs, err := castValues[*big.Int](t, id, values)
		if err != nil {
			return nil, err
		}
		return NewIntegerProperty(id, vs...), nil
	case PropertyTypeDecimal:
		vs, err := castValues[decimal.Decimal](t, id, values)
		if err != nil {
			return nil, err
		}
		return NewDecimalProperty(id, vs...), nil
	case PropertyTypeDateTime:
		vs, err := castValues[time.Time](t, id, values)
		if err != nil {
			return nil, err
		}
		return NewDateTimeProperty(id, vs...), nil
	default:
		return nil, invalidData("property", id, "unknown property type %q", t)
	}
}

func castValues[T PropertyValue](t PropertyType, id string, values []any) ([]T, error) {
	out := make([]T, 0, len(values))
	for i, v := range values {
		tv, ok := v.(T)
		if !ok {
			return nil, invalidData("property", id, "value %d has type %T, want %s", i, v, t)
		}
		out = append(out, tv)
	}
	return out, nil
}

// ValueMatchesType reports whether v is a legal Go value for t.
func ValueMatchesType(t PropertyType, v any) bool {
	switch v.(type) {
	case bool:
		return t == PropertyTypeBoolean
	case string:
		return t == PropertyTypeID || t == PropertyTypeString || t == PropertyTypeHTML || t == PropertyTypeURI
	case *big.Int:
		return t == PropertyTypeInteger
	case decimal.Decimal:
		return t == PropertyTypeDecimal
	case time.Time:
		return t == PropertyTypeDateTime
	}
	return false
}

// ValueEqual compares two property values of the same type. Datetimes
// must denote the same instant with the same zone offset.
func ValueEqual(a, b any) bool {
	switch av := a.(type) {
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case *big.Int:
		bv, ok := b.(*big.Int)
		if !ok || av == nil || bv == nil {
			return ok && av == bv
		}
		return av.Cmp(bv) == 0
	case decimal.Decimal:
		bv, ok := b.(decimal.Decimal)
		return ok && av.Equal(bv)
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok || !av.Equal(bv) {
			return false
		}
		_, ao := av.Zone()
		_, bo := bv.Zone()
		return ao == bo
	}
	return false
}

// PropertyEqual compares identity, type, values and extensions. The local
// namespace is not part of the comparison.
func PropertyEqual(a, b Property) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ai, bi := a.Identity(), b.Identity()
	ai.LocalNamespace, bi.LocalNamespace = "", ""
	if ai != bi || a.Type() != b.Type() || a.Len() != b.Len() {
		return false
	}
	av, bv := a.AnyValues(), b.AnyValues()
	for i := range av {
		if !ValueEqual(av[i], bv[i]) {
			return false
		}
	}
	return ExtensionsEqual(a.Extensions(), b.Extensions())
}
