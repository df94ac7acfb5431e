// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package typesys_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocmis/gocmis/internal/typesys"
	"github.com/gocmis/gocmis/pkg/cmis"
	"github.com/gocmis/gocmis/pkg/errutil"
)

func subtype(id, parent string, base cmis.BaseTypeID) *cmis.TypeDefinition {
	return cmis.NewTypeDefinitionBuilder(id, base).ParentTypeID(parent).MustBuild()
}

// tree:
//
//	cmis:document
//	  a
//	    a1
//	      a11
//	    a2
//	  b
func testRegistry(t *testing.T) *typesys.Registry {
	t.Helper()
	r, err := typesys.NewStandardRegistry(cmis.Version11,
		subtype("a", "cmis:document", cmis.BaseTypeDocument),
		subtype("a1", "a", cmis.BaseTypeDocument),
		subtype("a11", "a1", cmis.BaseTypeDocument),
		subtype("a2", "a", cmis.BaseTypeDocument),
		subtype("b", "cmis:document", cmis.BaseTypeDocument),
	)
	require.NoError(t, err)
	return r
}

func TestNewRegistry_Rejects(t *testing.T) {
	doc := typesys.BaseTypes(cmis.Version10)[0]
	tests := []struct {
		name  string
		types []*cmis.TypeDefinition
	}{
		{"duplicate id", []*cmis.TypeDefinition{doc, doc}},
		{"unknown parent", []*cmis.TypeDefinition{doc, subtype("x", "missing", cmis.BaseTypeDocument)}},
		{"base mismatch", []*cmis.TypeDefinition{doc, subtype("x", "cmis:document", cmis.BaseTypeFolder)}},
		{"cycle", []*cmis.TypeDefinition{
			doc,
			subtype("x", "y", cmis.BaseTypeDocument),
			subtype("y", "x", cmis.BaseTypeDocument),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := typesys.NewRegistry(tt.types)
			require.Error(t, err)
			assert.ErrorIs(t, err, typesys.ErrInvalidTypeSystem)
			errutil.AssertErrorCode(t, err, cmis.CodeInvalidTypeSystem)
		})
	}
}

func TestRegistry_BaseAndParent(t *testing.T) {
	r := testRegistry(t)

	base, ok := r.BaseType("a11")
	require.True(t, ok)
	assert.Equal(t, "cmis:document", base.ID())

	parent, ok := r.ParentType("a11")
	require.True(t, ok)
	assert.Equal(t, "a1", parent.ID())

	_, ok = r.ParentType("cmis:document")
	assert.False(t, ok, "base types have no parent")

	assert.True(t, r.IsSubtypeOf("a11", "a"))
	assert.False(t, r.IsSubtypeOf("b", "a"))
}

func TestRegistry_PropertyDefinitionInherited(t *testing.T) {
	r := testRegistry(t)

	pd, ok := r.PropertyDefinition("a11", cmis.PropName)
	require.True(t, ok)
	assert.Equal(t, cmis.PropertyTypeString, pd.PropertyType)

	_, ok = r.Lookup("a11").PropertyDefinition(cmis.PropPath)
	assert.False(t, ok, "folder properties do not apply to documents")
}

func TestRegistry_Children(t *testing.T) {
	r := testRegistry(t)

	tests := []struct {
		name     string
		typeID   string
		max      int
		skip     int
		wantIDs  []string
		wantMore bool
	}{
		{"all children", "a", 0, 0, []string{"a1", "a2"}, false},
		{"first page", "cmis:document", 1, 0, []string{"a"}, true},
		{"second page", "cmis:document", 1, 1, []string{"b"}, false},
		{"skip past end", "a", 5, 10, nil, false},
		{"base types", "", 0, 0, []string{"cmis:document", "cmis:folder", "cmis:relationship", "cmis:policy", "cmis:item", "cmis:secondary"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := r.Children(tt.typeID, false, tt.max, tt.skip)
			require.NoError(t, err)
			var ids []string
			for _, td := range list.Types {
				ids = append(ids, td.ID())
				assert.Empty(t, td.PropertyDefinitions())
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantMore, list.HasMoreItems)
		})
	}

	list, err := r.Children("", true, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(6), list.NumItems)
	assert.NotEmpty(t, list.Types[0].PropertyDefinitions())

	_, err = r.Children("nope", false, 0, 0)
	assert.ErrorIs(t, err, typesys.ErrTypeNotFound)
}

func TestRegistry_DescendantsDepth(t *testing.T) {
	r := testRegistry(t)

	tests := []struct {
		name  string
		depth int
		want  map[string][]string
	}{
		{"depth 1", 1, map[string][]string{"a": nil, "b": nil}},
		{"depth 2", 2, map[string][]string{"a": {"a1", "a2"}, "a1": nil, "a2": nil, "b": nil}},
		{"unlimited", -1, map[string][]string{"a": {"a1", "a2"}, "a1": {"a11"}, "a11": nil, "a2": nil, "b": nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roots, err := r.Descendants("cmis:document", tt.depth, false)
			require.NoError(t, err)
			got := map[string][]string{}
			var collect func(cs []*cmis.TypeDefinitionContainer)
			collect = func(cs []*cmis.TypeDefinitionContainer) {
				for _, c := range cs {
					var kids []string
					for _, k := range c.Children {
						kids = append(kids, k.Type.ID())
					}
					got[c.Type.ID()] = kids
					collect(c.Children)
				}
			}
			collect(roots)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_DescendantsAllBaseTypes(t *testing.T) {
	r := testRegistry(t)

	roots, err := r.Descendants("", 1, false)
	require.NoError(t, err)
	assert.Len(t, roots, 6)
	for _, root := range roots {
		assert.Empty(t, root.Children)
	}
}

func TestRegistry_Walk(t *testing.T) {
	r := testRegistry(t)

	var visited []string
	err := r.Walk("a", func(td *cmis.TypeDefinition, depth int) bool {
		visited = append(visited, td.ID())
		return td.ID() != "a1"
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a1", "a2"}, visited)
}

func TestRegistry_RegisterUnregister(t *testing.T) {
	r := testRegistry(t)

	require.NoError(t, r.Register(subtype("c", "b", cmis.BaseTypeDocument)))
	assert.True(t, r.IsSubtypeOf("c", "b"))

	err := r.Register(subtype("c", "b", cmis.BaseTypeDocument))
	assert.ErrorIs(t, err, typesys.ErrInvalidTypeSystem)

	err = r.Unregister("b")
	assert.ErrorIs(t, err, typesys.ErrInvalidTypeSystem, "b has a subtype")

	require.NoError(t, r.Unregister("c"))
	require.NoError(t, r.Unregister("b"))
	_, ok := r.Type("b")
	assert.False(t, ok)
}

func TestBaseTypes_PerVersion(t *testing.T) {
	v10 := typesys.BaseTypes(cmis.Version10)
	v11 := typesys.BaseTypes(cmis.Version11)
	assert.Len(t, v10, 4)
	assert.Len(t, v11, 6)

	_, ok := v10[0].PropertyDefinition(cmis.PropContentStreamHash)
	assert.False(t, ok)
	_, ok = v11[0].PropertyDefinition(cmis.PropContentStreamHash)
	assert.True(t, ok)
	for _, td := range v10 {
		assert.Nil(t, td.TypeMutability())
	}
}
