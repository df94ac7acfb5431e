// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package cmistest

import (
	"math/big"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// Sample is one data object used by converter round-trip tests.
type Sample struct {
	Name  string
	Value any
}

// Samples returns one value of every data-object kind legal in v.
func Samples(v cmis.Version) []Sample {
	obj := Object(v)
	types := TypeDefinitions(v)

	child := &cmis.ObjectInFolderData{Object: ObjectList(v).Objects[1], PathSegment: "child.txt"}
	folder := &cmis.ObjectInFolderData{
		Object: &cmis.ObjectData{Properties: cmis.NewProperties(
			cmis.NewIDProperty(cmis.PropObjectID, "folder-1"),
			cmis.NewIDProperty(cmis.PropBaseTypeID, string(cmis.BaseTypeFolder)),
		)},
		PathSegment: "reports",
	}
	folder.SetExtensions(Extensions()[:1])

	out := []Sample{
		{"properties", Properties()},
		{"object", obj},
		{"object list", ObjectList(v)},
		{"object in folder list", &cmis.ObjectInFolderList{
			Objects:      []*cmis.ObjectInFolderData{folder, child},
			HasMoreItems: false,
			NumItems:     big.NewInt(2),
		}},
		{"object parents", []*cmis.ObjectParentData{
			{Object: folder.Object, RelativePathSegment: "Report.docx"},
		}},
		{"object tree", []*cmis.ObjectInFolderContainer{{
			Object:   folder,
			Children: []*cmis.ObjectInFolderContainer{{Object: child}},
		}}},
		{"type definition", types[0]},
		{"type definition list", &cmis.TypeDefinitionList{
			Types:        types,
			HasMoreItems: true,
			NumItems:     big.NewInt(int64(len(types) + 3)),
		}},
		{"type tree", []*cmis.TypeDefinitionContainer{{
			Type: types[0],
			Children: []*cmis.TypeDefinitionContainer{
				{Type: types[1]},
				{Type: types[2], Children: []*cmis.TypeDefinitionContainer{{Type: types[3]}}},
			},
		}}},
		{"acl", Acl()},
		{"allowable actions", obj.AllowableActions},
		{"repository info", RepositoryInfo(v)},
		{"rendition", obj.Renditions[0]},
		{"change event", obj.ChangeEventInfo},
		{"query", Query()},
	}
	if v.Is11() {
		out = append(out, Sample{"bulk update", BulkUpdate()})
	}
	return out
}

// Equal compares two data objects of the same kind. Values of different
// or unknown kinds are never equal.
func Equal(a, b any) bool {
	switch av := a.(type) {
	case *cmis.Properties:
		bv, ok := b.(*cmis.Properties)
		return ok && cmis.PropertiesEqual(av, bv)
	case *cmis.ObjectData:
		bv, ok := b.(*cmis.ObjectData)
		return ok && cmis.ObjectDataEqual(av, bv)
	case *cmis.ObjectList:
		bv, ok := b.(*cmis.ObjectList)
		return ok && cmis.ObjectListEqual(av, bv)
	case *cmis.ObjectInFolderList:
		bv, ok := b.(*cmis.ObjectInFolderList)
		return ok && cmis.ObjectInFolderListEqual(av, bv)
	case []*cmis.ObjectParentData:
		bv, ok := b.([]*cmis.ObjectParentData)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !cmis.ObjectParentDataEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case []*cmis.ObjectInFolderContainer:
		bv, ok := b.([]*cmis.ObjectInFolderContainer)
		return ok && cmis.ObjectInFolderContainersEqual(av, bv)
	case *cmis.TypeDefinition:
		bv, ok := b.(*cmis.TypeDefinition)
		return ok && cmis.TypeDefinitionEqual(av, bv)
	case *cmis.TypeDefinitionList:
		bv, ok := b.(*cmis.TypeDefinitionList)
		return ok && cmis.TypeDefinitionListEqual(av, bv)
	case []*cmis.TypeDefinitionContainer:
		bv, ok := b.([]*cmis.TypeDefinitionContainer)
		return ok && cmis.TypeDefinitionContainersEqual(av, bv)
	case *cmis.Acl:
		bv, ok := b.(*cmis.Acl)
		return ok && cmis.AclEqual(av, bv)
	case *cmis.AllowableActions:
		bv, ok := b.(*cmis.AllowableActions)
		return ok && cmis.AllowableActionsEqual(av, bv)
	case *cmis.RepositoryInfo:
		bv, ok := b.(*cmis.RepositoryInfo)
		return ok && cmis.RepositoryInfoEqual(av, bv)
	case *cmis.Rendition:
		bv, ok := b.(*cmis.Rendition)
		return ok && cmis.RenditionEqual(av, bv)
	case *cmis.ChangeEventInfo:
		bv, ok := b.(*cmis.ChangeEventInfo)
		return ok && cmis.ChangeEventInfoEqual(av, bv)
	case *cmis.QueryStatement:
		bv, ok := b.(*cmis.QueryStatement)
		return ok && cmis.QueryStatementEqual(av, bv)
	case *cmis.BulkUpdate:
		bv, ok := b.(*cmis.BulkUpdate)
		return ok && cmis.BulkUpdateEqual(av, bv)
	}
	return false
}
