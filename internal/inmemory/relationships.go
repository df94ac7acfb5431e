// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package inmemory

import (
	"cmp"
	"context"
	"math/big"
	"slices"

	"github.com/gocmis/gocmis/internal/binding"
	"github.com/gocmis/gocmis/pkg/cmis"
)

func relationshipDirection(inc cmis.IncludeRelationships) binding.RelationshipDirection {
	switch inc {
	case cmis.IncludeRelationshipsTarget:
		return binding.RelationshipDirectionTarget
	case cmis.IncludeRelationshipsBoth:
		return binding.RelationshipDirectionEither
	default:
		return binding.RelationshipDirectionSource
	}
}

// relationshipsOf returns the relationships that have objectID in the role
// selected by dir, oldest first.
func (r *Repository) relationshipsOf(objectID string, dir binding.RelationshipDirection) []*object {
	var out []*object
	for _, o := range r.objects {
		if o.base != cmis.BaseTypeRelationship {
			continue
		}
		src := o.props.StringValue(cmis.PropSourceID)
		tgt := o.props.StringValue(cmis.PropTargetID)
		if (dir != binding.RelationshipDirectionTarget && src == objectID) ||
			(dir != binding.RelationshipDirectionSource && tgt == objectID) {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b *object) int { return cmp.Compare(a.id, b.id) })
	return out
}

// CreateRelationship implements [binding.ObjectService].
func (r *Repository) CreateRelationship(ctx context.Context, repositoryID string, props *cmis.Properties) (string, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	td, err := r.creatableType(props, cmis.BaseTypeRelationship)
	if err != nil {
		return "", err
	}
	set, err := r.checkCreate(td, props)
	if err != nil {
		return "", err
	}
	for _, end := range []struct {
		prop    string
		allowed []string
	}{
		{cmis.PropSourceID, td.AllowedSourceTypes()},
		{cmis.PropTargetID, td.AllowedTargetTypes()},
	} {
		id := set.StringValue(end.prop)
		o, err := r.lookup(id)
		if err != nil {
			return "", err
		}
		if o.base == cmis.BaseTypeRelationship {
			return "", constraint("%s %q is a relationship", end.prop, id)
		}
		if len(end.allowed) > 0 && !slices.ContainsFunc(end.allowed, func(t string) bool {
			return o.typeID == t || r.types.IsSubtypeOf(o.typeID, t)
		}) {
			return "", constraint("type %q is not allowed as %s of %q", o.typeID, end.prop, td.ID())
		}
	}

	o := &object{base: cmis.BaseTypeRelationship, typeID: td.ID(), props: set}
	r.create(o)
	r.record(o, cmis.ChangeTypeCreated)
	return o.id, nil
}

// GetObjectRelationships implements [binding.RelationshipService].
func (r *Repository) GetObjectRelationships(ctx context.Context, repositoryID, objectID string, includeSubRelationshipTypes bool, direction binding.RelationshipDirection, typeID string, p binding.Paging) (*cmis.ObjectList, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	if direction == "" {
		direction = binding.RelationshipDirectionSource
	}
	if !direction.Valid() {
		return nil, invalidArgument("unknown relationship direction %q", direction)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, err := r.lookup(objectID); err != nil {
		return nil, err
	}
	if typeID != "" {
		td, ok := r.types.Type(typeID)
		if !ok || td.BaseTypeID() != cmis.BaseTypeRelationship {
			return nil, invalidArgument("%q is not a relationship type", typeID)
		}
	}
	rels := slices.DeleteFunc(r.relationshipsOf(objectID, direction), func(o *object) bool {
		if typeID == "" || o.typeID == typeID {
			return false
		}
		return !includeSubRelationshipTypes || !r.types.IsSubtypeOf(o.typeID, typeID)
	})
	total := len(rels)
	rels, hasMore := page(rels, p)
	list := &cmis.ObjectList{HasMoreItems: hasMore, NumItems: big.NewInt(int64(total))}
	for _, o := range rels {
		list.Objects = append(list.Objects, &cmis.ObjectData{Properties: r.properties(o)})
	}
	return list, nil
}
