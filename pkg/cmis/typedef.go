// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package cmis

import (
	"math/big"
	"slices"
)

// TypeMutability says whether clients may create, update or delete
// subtypes of a type. CMIS 1.1 only.
type TypeMutability struct {
	ExtensionHolder
	Create bool
	Update bool
	Delete bool
}

// TypeDefinition describes one object type. It is a single variant keyed by
// the base type id: document-only and relationship-only fields are zero on
// every other base type. Values are immutable once built; use
// [TypeDefinitionBuilder] to assemble or derive one.
type TypeDefinition struct {
	ext []ExtensionElement

	id             string
	localName      string
	localNamespace string
	queryName      string
	displayName    string
	description    string
	baseTypeID     BaseTypeID
	parentTypeID   string

	creatable                bool
	fileable                 bool
	queryable                bool
	fulltextIndexed          bool
	includedInSupertypeQuery bool
	controllablePolicy       bool
	controllableACL          bool

	propertyDefs []*PropertyDefinition
	propertyIdx  map[string]int
	mutability   *TypeMutability

	versionable          bool
	contentStreamAllowed ContentStreamAllowed

	allowedSourceTypes []string
	allowedTargetTypes []string
}

func (td *TypeDefinition) ID() string                     { return td.id }
func (td *TypeDefinition) LocalName() string              { return td.localName }
func (td *TypeDefinition) LocalNamespace() string         { return td.localNamespace }
func (td *TypeDefinition) QueryName() string              { return td.queryName }
func (td *TypeDefinition) DisplayName() string            { return td.displayName }
func (td *TypeDefinition) Description() string            { return td.description }
func (td *TypeDefinition) BaseTypeID() BaseTypeID         { return td.baseTypeID }
func (td *TypeDefinition) ParentTypeID() string           { return td.parentTypeID }
func (td *TypeDefinition) Creatable() bool                { return td.creatable }
func (td *TypeDefinition) Fileable() bool                 { return td.fileable }
func (td *TypeDefinition) Queryable() bool                { return td.queryable }
func (td *TypeDefinition) FulltextIndexed() bool          { return td.fulltextIndexed }
func (td *TypeDefinition) IncludedInSupertypeQuery() bool { return td.includedInSupertypeQuery }
func (td *TypeDefinition) ControllablePolicy() bool       { return td.controllablePolicy }
func (td *TypeDefinition) ControllableACL() bool          { return td.controllableACL }

// IsBaseType reports whether td is the root of its base type tree.
func (td *TypeDefinition) IsBaseType() bool {
	return td.parentTypeID == ""
}

// Versionable applies to document types.
func (td *TypeDefinition) Versionable() bool { return td.versionable }

// ContentStreamAllowed applies to document types; empty otherwise.
func (td *TypeDefinition) ContentStreamAllowed() ContentStreamAllowed {
	return td.contentStreamAllowed
}

// AllowedSourceTypes applies to relationship types. Empty means any type.
func (td *TypeDefinition) AllowedSourceTypes() []string { return slices.Clone(td.allowedSourceTypes) }

// AllowedTargetTypes applies to relationship types. Empty means any type.
func (td *TypeDefinition) AllowedTargetTypes() []string { return slices.Clone(td.allowedTargetTypes) }

// TypeMutability returns the mutability flags, or nil when the type does
// not declare them.
func (td *TypeDefinition) TypeMutability() *TypeMutability {
	if td.mutability == nil {
		return nil
	}
	m := *td.mutability
	m.ExtensionHolder = ExtensionHolder{}
	m.SetExtensions(td.mutability.Extensions())
	return &m
}

// Extensions returns the extension elements of the definition.
func (td *TypeDefinition) Extensions() []ExtensionElement { return slices.Clone(td.ext) }

// PropertyDefinitions returns the property definitions in declaration
// order. The definitions are shared and must not be modified.
func (td *TypeDefinition) PropertyDefinitions() []*PropertyDefinition {
	return slices.Clone(td.propertyDefs)
}

// PropertyDefinition implements [PropertyDefinitionLookup].
func (td *TypeDefinition) PropertyDefinition(id string) (*PropertyDefinition, bool) {
	i, ok := td.propertyIdx[id]
	if !ok {
		return nil, false
	}
	return td.propertyDefs[i], true
}

// WithoutPropertyDefinitions returns a copy of td with no property
// definitions, as sent when a client does not ask for them.
func (td *TypeDefinition) WithoutPropertyDefinitions() *TypeDefinition {
	c := *td
	c.propertyDefs = nil
	c.propertyIdx = nil
	return &c
}

// LegalIn reports whether td can be written in a document of version v.
func (td *TypeDefinition) LegalIn(v Version) bool {
	return td.baseTypeID.LegalIn(v)
}

// TypeDefinitionBuilder assembles a [TypeDefinition]. Build validates the
// result; the builder may be reused afterwards.
type TypeDefinitionBuilder struct {
	td  TypeDefinition
	err error
}

// NewTypeDefinitionBuilder starts a type with the given id and base type.
// The query name and local name default to the id.
func NewTypeDefinitionBuilder(id string, base BaseTypeID) *TypeDefinitionBuilder {
	return &TypeDefinitionBuilder{td: TypeDefinition{
		id:         id,
		localName:  id,
		queryName:  id,
		baseTypeID: base,
	}}
}

// DeriveTypeDefinition starts a builder seeded with every field of td.
func DeriveTypeDefinition(td *TypeDefinition) *TypeDefinitionBuilder {
	b := &TypeDefinitionBuilder{td: *td}
	b.td.ext = slices.Clone(td.ext)
	b.td.propertyDefs = nil
	b.td.propertyIdx = nil
	for _, pd := range td.propertyDefs {
		b.PropertyDefinition(pd.Clone())
	}
	b.td.mutability = td.TypeMutability()
	b.td.allowedSourceTypes = slices.Clone(td.allowedSourceTypes)
	b.td.allowedTargetTypes = slices.Clone(td.allowedTargetTypes)
	return b
}

func (b *TypeDefinitionBuilder) LocalName(s string) *TypeDefinitionBuilder {
	b.td.localName = s
	return b
}

func (b *TypeDefinitionBuilder) LocalNamespace(s string) *TypeDefinitionBuilder {
	b.td.localNamespace = s
	return b
}

func (b *TypeDefinitionBuilder) QueryName(s string) *TypeDefinitionBuilder {
	b.td.queryName = s
	return b
}

func (b *TypeDefinitionBuilder) DisplayName(s string) *TypeDefinitionBuilder {
	b.td.displayName = s
	return b
}

func (b *TypeDefinitionBuilder) Description(s string) *TypeDefinitionBuilder {
	b.td.description = s
	return b
}

func (b *TypeDefinitionBuilder) BaseTypeID(base BaseTypeID) *TypeDefinitionBuilder {
	b.td.baseTypeID = base
	return b
}

// ParentTypeID sets the parent; leave it empty for base types.
func (b *TypeDefinitionBuilder) ParentTypeID(s string) *TypeDefinitionBuilder {
	b.td.parentTypeID = s
	return b
}

func (b *TypeDefinitionBuilder) Creatable(v bool) *TypeDefinitionBuilder {
	b.td.creatable = v
	return b
}

func (b *TypeDefinitionBuilder) Fileable(v bool) *TypeDefinitionBuilder {
	b.td.fileable = v
	return b
}

func (b *TypeDefinitionBuilder) Queryable(v bool) *TypeDefinitionBuilder {
	b.td.queryable = v
	return b
}

func (b *TypeDefinitionBuilder) FulltextIndexed(v bool) *TypeDefinitionBuilder {
	b.td.fulltextIndexed = v
	return b
}

func (b *TypeDefinitionBuilder) IncludedInSupertypeQuery(v bool) *TypeDefinitionBuilder {
	b.td.includedInSupertypeQuery = v
	return b
}

func (b *TypeDefinitionBuilder) ControllablePolicy(v bool) *TypeDefinitionBuilder {
	b.td.controllablePolicy = v
	return b
}

func (b *TypeDefinitionBuilder) ControllableACL(v bool) *TypeDefinitionBuilder {
	b.td.controllableACL = v
	return b
}

// TypeMutability sets the 1.1 mutability flags; nil clears them.
func (b *TypeDefinitionBuilder) TypeMutability(m *TypeMutability) *TypeDefinitionBuilder {
	if m == nil {
		b.td.mutability = nil
		return b
	}
	c := *m
	c.ExtensionHolder = ExtensionHolder{}
	c.SetExtensions(m.Extensions())
	b.td.mutability = &c
	return b
}

func (b *TypeDefinitionBuilder) Versionable(v bool) *TypeDefinitionBuilder {
	b.td.versionable = v
	return b
}

func (b *TypeDefinitionBuilder) ContentStreamAllowed(c ContentStreamAllowed) *TypeDefinitionBuilder {
	b.td.contentStreamAllowed = c
	return b
}

func (b *TypeDefinitionBuilder) AllowedSourceTypes(ids ...string) *TypeDefinitionBuilder {
	b.td.allowedSourceTypes = slices.Clone(ids)
	return b
}

func (b *TypeDefinitionBuilder) AllowedTargetTypes(ids ...string) *TypeDefinitionBuilder {
	b.td.allowedTargetTypes = slices.Clone(ids)
	return b
}

// PropertyDefinition appends a property definition. A duplicate id makes
// Build fail.
func (b *TypeDefinitionBuilder) PropertyDefinition(pd *PropertyDefinition) *TypeDefinitionBuilder {
	if pd == nil {
		return b
	}
	if b.td.propertyIdx == nil {
		b.td.propertyIdx = make(map[string]int)
	}
	if _, dup := b.td.propertyIdx[pd.ID]; dup {
		if b.err == nil {
			b.err = invalidData("type", b.td.id, "duplicate property definition %q", pd.ID)
		}
		return b
	}
	b.td.propertyIdx[pd.ID] = len(b.td.propertyDefs)
	b.td.propertyDefs = append(b.td.propertyDefs, pd)
	return b
}

// Extensions replaces the extension elements.
func (b *TypeDefinitionBuilder) Extensions(ext []ExtensionElement) *TypeDefinitionBuilder {
	b.td.ext = slices.Clone(ext)
	return b
}

// Build validates and returns the type definition.
func (b *TypeDefinitionBuilder) Build() (*TypeDefinition, error) {
	if b.err != nil {
		return nil, b.err
	}
	td := b.td
	if td.id == "" {
		return nil, invalidData("type", td.id, "id is required")
	}
	if !td.baseTypeID.Valid() {
		return nil, invalidData("type", td.id, "unknown base type %q", td.baseTypeID)
	}
	if td.parentTypeID == "" && td.id != string(td.baseTypeID) {
		return nil, invalidData("type", td.id, "only the base type %s may omit a parent", td.baseTypeID)
	}
	if td.parentTypeID != "" && td.id == string(td.baseTypeID) {
		return nil, invalidData("type", td.id, "base type cannot have parent %q", td.parentTypeID)
	}
	if td.parentTypeID == td.id {
		return nil, invalidData("type", td.id, "type is its own parent")
	}
	if td.baseTypeID != BaseTypeDocument && (td.versionable || td.contentStreamAllowed != "") {
		return nil, invalidData("type", td.id, "versionable and contentStreamAllowed apply only to document types")
	}
	if td.contentStreamAllowed != "" && !td.contentStreamAllowed.Valid() {
		return nil, invalidData("type", td.id, "unknown contentStreamAllowed %q", td.contentStreamAllowed)
	}
	if td.baseTypeID != BaseTypeRelationship && (len(td.allowedSourceTypes) > 0 || len(td.allowedTargetTypes) > 0) {
		return nil, invalidData("type", td.id, "allowed source and target types apply only to relationship types")
	}
	for _, pd := range td.propertyDefs {
		if err := pd.Validate(); err != nil {
			return nil, err
		}
	}
	td.propertyDefs = slices.Clone(td.propertyDefs)
	idx := make(map[string]int, len(td.propertyDefs))
	for i, pd := range td.propertyDefs {
		idx[pd.ID] = i
	}
	td.propertyIdx = idx
	td.ext = slices.Clone(td.ext)
	td.allowedSourceTypes = slices.Clone(td.allowedSourceTypes)
	td.allowedTargetTypes = slices.Clone(td.allowedTargetTypes)
	return &td, nil
}

// MustBuild is Build for static type systems; it panics on error.
func (b *TypeDefinitionBuilder) MustBuild() *TypeDefinition {
	td, err := b.Build()
	if err != nil {
		panic(err)
	}
	return td
}

// TypeDefinitionList is one page of type definitions.
type TypeDefinitionList struct {
	ExtensionHolder
	Types        []*TypeDefinition
	HasMoreItems bool
	NumItems     *big.Int
}

// TypeDefinitionContainer is one node of a type tree.
type TypeDefinitionContainer struct {
	ExtensionHolder
	Type     *TypeDefinition
	Children []*TypeDefinitionContainer
}

// TypeDefinitionEqual compares every field of two type definitions,
// including property definitions in order.
func TypeDefinitionEqual(a, b *TypeDefinition) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.id != b.id || a.localName != b.localName || a.localNamespace != b.localNamespace ||
		a.queryName != b.queryName || a.displayName != b.displayName || a.description != b.description ||
		a.baseTypeID != b.baseTypeID || a.parentTypeID != b.parentTypeID {
		return false
	}
	if a.creatable != b.creatable || a.fileable != b.fileable || a.queryable != b.queryable ||
		a.fulltextIndexed != b.fulltextIndexed || a.includedInSupertypeQuery != b.includedInSupertypeQuery ||
		a.controllablePolicy != b.controllablePolicy || a.controllableACL != b.controllableACL {
		return false
	}
	if a.versionable != b.versionable || a.contentStreamAllowed != b.contentStreamAllowed ||
		!slices.Equal(a.allowedSourceTypes, b.allowedSourceTypes) ||
		!slices.Equal(a.allowedTargetTypes, b.allowedTargetTypes) {
		return false
	}
	if !TypeMutabilityEqual(a.mutability, b.mutability) {
		return false
	}
	if len(a.propertyDefs) != len(b.propertyDefs) {
		return false
	}
	for i := range a.propertyDefs {
		if !PropertyDefinitionEqual(a.propertyDefs[i], b.propertyDefs[i]) {
			return false
		}
	}
	return ExtensionsEqual(a.ext, b.ext)
}

// TypeMutabilityEqual compares two mutability triples.
func TypeMutabilityEqual(a, b *TypeMutability) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Create == b.Create && a.Update == b.Update && a.Delete == b.Delete &&
		ExtensionsEqual(a.Extensions(), b.Extensions())
}

// TypeDefinitionListEqual compares two pages of type definitions.
func TypeDefinitionListEqual(a, b *TypeDefinitionList) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.HasMoreItems != b.HasMoreItems || !bigEqual(a.NumItems, b.NumItems) || len(a.Types) != len(b.Types) {
		return false
	}
	for i := range a.Types {
		if !TypeDefinitionEqual(a.Types[i], b.Types[i]) {
			return false
		}
	}
	return ExtensionsEqual(a.Extensions(), b.Extensions())
}

// TypeDefinitionContainersEqual compares two type forests.
func TypeDefinitionContainersEqual(a, b []*TypeDefinitionContainer) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !TypeDefinitionEqual(a[i].Type, b[i].Type) ||
			!TypeDefinitionContainersEqual(a[i].Children, b[i].Children) ||
			!ExtensionsEqual(a[i].Extensions(), b[i].Extensions()) {
			return false
		}
	}
	return true
}
