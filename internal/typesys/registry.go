// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

// Package typesys holds a repository's type system: the flat map of type
// definitions, its load-time validation and the tree walks built on it.
package typesys

import (
	"errors"
	"math/big"
	"slices"
	"sync"

	"github.com/samber/oops"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// ErrTypeNotFound indicates no type has the requested id.
var ErrTypeNotFound = errors.New("type not found")

// ErrInvalidTypeSystem indicates the type definitions do not form a valid
// forest of base types and subtypes.
var ErrInvalidTypeSystem = errors.New("invalid type system")

// Registry is a validated set of type definitions keyed by id.
// It is safe for concurrent use by multiple goroutines.
type Registry struct {
	mu       sync.RWMutex
	types    map[string]*cmis.TypeDefinition
	children map[string][]string
	order    []string
}

// NewRegistry validates types and builds a registry from them. Every
// non-base type must name an existing parent with the same base type, and
// no type may be its own ancestor.
func NewRegistry(types []*cmis.TypeDefinition) (*Registry, error) {
	r := &Registry{
		types:    make(map[string]*cmis.TypeDefinition, len(types)),
		children: make(map[string][]string),
	}
	for _, td := range types {
		if td == nil {
			continue
		}
		if _, dup := r.types[td.ID()]; dup {
			return nil, invalid(td.ID(), "duplicate type id")
		}
		r.types[td.ID()] = td
		r.order = append(r.order, td.ID())
	}
	for _, id := range r.order {
		if err := r.checkParent(r.types[id]); err != nil {
			return nil, err
		}
	}
	if err := r.checkAcyclic(); err != nil {
		return nil, err
	}
	for _, id := range r.order {
		if parent := r.types[id].ParentTypeID(); parent != "" {
			r.children[parent] = append(r.children[parent], id)
		}
	}
	return r, nil
}

// MustNewRegistry is NewRegistry for static type systems.
func MustNewRegistry(types []*cmis.TypeDefinition) *Registry {
	r, err := NewRegistry(types)
	if err != nil {
		panic(err)
	}
	return r
}

func invalid(typeID, msg string) error {
	return oops.Code(cmis.CodeInvalidTypeSystem).
		With("type_id", typeID).
		Wrapf(ErrInvalidTypeSystem, "type %q: %s", typeID, msg)
}

func (r *Registry) checkParent(td *cmis.TypeDefinition) error {
	if td.IsBaseType() {
		if td.ID() != string(td.BaseTypeID()) {
			return invalid(td.ID(), "only base types may omit a parent")
		}
		return nil
	}
	parent, ok := r.types[td.ParentTypeID()]
	if !ok {
		return invalid(td.ID(), "unknown parent type "+td.ParentTypeID())
	}
	if parent.BaseTypeID() != td.BaseTypeID() {
		return invalid(td.ID(), "base type differs from parent "+parent.ID())
	}
	return nil
}

// checkAcyclic walks every parent chain. A chain longer than the number of
// types must revisit a type.
func (r *Registry) checkAcyclic() error {
	for _, id := range r.order {
		seen := map[string]struct{}{id: {}}
		cur := r.types[id]
		for cur.ParentTypeID() != "" {
			next := cur.ParentTypeID()
			if _, loop := seen[next]; loop {
				return invalid(id, "type is its own ancestor")
			}
			seen[next] = struct{}{}
			cur = r.types[next]
		}
	}
	return nil
}

// Register adds a subtype to the registry.
func (r *Registry) Register(td *cmis.TypeDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.types[td.ID()]; dup {
		return invalid(td.ID(), "duplicate type id")
	}
	if td.IsBaseType() {
		return invalid(td.ID(), "base types cannot be added")
	}
	if err := r.checkParent(td); err != nil {
		return err
	}
	r.types[td.ID()] = td
	r.order = append(r.order, td.ID())
	r.children[td.ParentTypeID()] = append(r.children[td.ParentTypeID()], td.ID())
	return nil
}

// Unregister removes a type without subtypes.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	td, ok := r.types[id]
	if !ok {
		return notFound(id)
	}
	if td.IsBaseType() {
		return invalid(id, "base types cannot be removed")
	}
	if len(r.children[id]) > 0 {
		return invalid(id, "type has subtypes")
	}
	delete(r.types, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	parent := td.ParentTypeID()
	r.children[parent] = slices.DeleteFunc(r.children[parent], func(s string) bool { return s == id })
	return nil
}

func notFound(id string) error {
	return oops.With("type_id", id).Wrapf(ErrTypeNotFound, "type %q", id)
}

// Type returns the definition with the given id.
func (r *Registry) Type(id string) (*cmis.TypeDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	td, ok := r.types[id]
	return td, ok
}

// BaseType returns the base type of the type with the given id. This is a
// direct lookup of the base type id, not a walk.
func (r *Registry) BaseType(id string) (*cmis.TypeDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	td, ok := r.types[id]
	if !ok {
		return nil, false
	}
	base, ok := r.types[string(td.BaseTypeID())]
	return base, ok
}

// ParentType returns the parent of the type with the given id. It returns
// false for base types.
func (r *Registry) ParentType(id string) (*cmis.TypeDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	td, ok := r.types[id]
	if !ok || td.IsBaseType() {
		return nil, false
	}
	parent, ok := r.types[td.ParentTypeID()]
	return parent, ok
}

// Types returns every definition in registration order.
func (r *Registry) Types() []*cmis.TypeDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*cmis.TypeDefinition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.types[id])
	}
	return out
}

// BaseTypes returns the registered base types in registration order.
func (r *Registry) BaseTypes() []*cmis.TypeDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*cmis.TypeDefinition
	for _, id := range r.order {
		if td := r.types[id]; td.IsBaseType() {
			out = append(out, td)
		}
	}
	return out
}

// IsSubtypeOf reports whether id equals ancestor or descends from it.
func (r *Registry) IsSubtypeOf(id, ancestor string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for cur, ok := r.types[id]; ok; cur, ok = r.types[cur.ParentTypeID()] {
		if cur.ID() == ancestor {
			return true
		}
		if cur.IsBaseType() {
			break
		}
	}
	return false
}

// PropertyDefinition looks a property up in the type and its ancestors.
func (r *Registry) PropertyDefinition(typeID, propertyID string) (*cmis.PropertyDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for cur, ok := r.types[typeID]; ok; cur, ok = r.types[cur.ParentTypeID()] {
		if pd, found := cur.PropertyDefinition(propertyID); found {
			return pd, true
		}
		if cur.IsBaseType() {
			break
		}
	}
	return nil, false
}

// Lookup returns a property-definition lookup scoped to one type and its
// ancestors.
func (r *Registry) Lookup(typeID string) cmis.PropertyDefinitionLookup {
	return typeLookup{r: r, typeID: typeID}
}

type typeLookup struct {
	r      *Registry
	typeID string
}

func (l typeLookup) PropertyDefinition(id string) (*cmis.PropertyDefinition, bool) {
	return l.r.PropertyDefinition(l.typeID, id)
}

// AllPropertyDefinitions resolves property ids against every type. The
// first definition registered for an id wins.
func (r *Registry) AllPropertyDefinitions() cmis.PropertyDefinitionMap {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := make(cmis.PropertyDefinitionMap)
	for _, id := range r.order {
		for _, pd := range r.types[id].PropertyDefinitions() {
			if _, ok := m[pd.ID]; !ok {
				m[pd.ID] = pd
			}
		}
	}
	return m
}

// Children returns one page of the direct subtypes of typeID, or of the
// base types when typeID is empty. maxItems <= 0 means no limit.
func (r *Registry) Children(typeID string, includePropertyDefinitions bool, maxItems, skipCount int) (*cmis.TypeDefinitionList, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	if typeID == "" {
		for _, id := range r.order {
			if r.types[id].IsBaseType() {
				ids = append(ids, id)
			}
		}
	} else {
		if _, ok := r.types[typeID]; !ok {
			return nil, notFound(typeID)
		}
		ids = r.children[typeID]
	}

	total := len(ids)
	skipCount = max(skipCount, 0)
	if skipCount > total {
		skipCount = total
	}
	end := total
	if maxItems > 0 && skipCount+maxItems < total {
		end = skipCount + maxItems
	}

	list := &cmis.TypeDefinitionList{
		HasMoreItems: end < total,
		NumItems:     big.NewInt(int64(total)),
	}
	for _, id := range ids[skipCount:end] {
		list.Types = append(list.Types, r.view(r.types[id], includePropertyDefinitions))
	}
	return list, nil
}

// Descendants builds the subtype tree below typeID down to depth levels.
// depth <= 0 means unlimited. An empty typeID returns one tree per base
// type; otherwise the result holds the children of typeID as roots.
func (r *Registry) Descendants(typeID string, depth int, includePropertyDefinitions bool) ([]*cmis.TypeDefinitionContainer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var roots []string
	if typeID == "" {
		for _, id := range r.order {
			if r.types[id].IsBaseType() {
				roots = append(roots, id)
			}
		}
	} else {
		if _, ok := r.types[typeID]; !ok {
			return nil, notFound(typeID)
		}
		roots = r.children[typeID]
	}

	type frame struct {
		node  *cmis.TypeDefinitionContainer
		level int
	}
	out := make([]*cmis.TypeDefinitionContainer, 0, len(roots))
	queue := make([]frame, 0, len(roots))
	for _, id := range roots {
		n := &cmis.TypeDefinitionContainer{Type: r.view(r.types[id], includePropertyDefinitions)}
		out = append(out, n)
		queue = append(queue, frame{node: n, level: 1})
	}
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if depth > 0 && f.level >= depth {
			continue
		}
		for _, child := range r.children[f.node.Type.ID()] {
			n := &cmis.TypeDefinitionContainer{Type: r.view(r.types[child], includePropertyDefinitions)}
			f.node.Children = append(f.node.Children, n)
			queue = append(queue, frame{node: n, level: f.level + 1})
		}
	}
	return out, nil
}

// Walk calls fn for typeID and every descendant, parents before children.
// Returning false from fn skips the subtree. fn must not call back into
// the registry.
func (r *Registry) Walk(typeID string, fn func(td *cmis.TypeDefinition, depth int) bool) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.types[typeID]; !ok {
		return notFound(typeID)
	}
	type frame struct {
		id    string
		depth int
	}
	stack := []frame{{id: typeID}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(r.types[f.id], f.depth) {
			continue
		}
		kids := r.children[f.id]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: kids[i], depth: f.depth + 1})
		}
	}
	return nil
}

func (r *Registry) view(td *cmis.TypeDefinition, includePropertyDefinitions bool) *cmis.TypeDefinition {
	if includePropertyDefinitions {
		return td
	}
	return td.WithoutPropertyDefinitions()
}
