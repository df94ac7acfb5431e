// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package cmis

import "math/big"

// ObjectList is one page of objects, as returned by queries, change logs
// and relationship listings. NumItems is nil when the total is unknown.
type ObjectList struct {
	ExtensionHolder
	Objects      []*ObjectData
	HasMoreItems bool
	NumItems     *big.Int
}

// ObjectInFolderData is a child of a folder together with its path
// segment.
type ObjectInFolderData struct {
	ExtensionHolder
	Object      *ObjectData
	PathSegment string
}

// ObjectInFolderList is one page of folder children.
type ObjectInFolderList struct {
	ExtensionHolder
	Objects      []*ObjectInFolderData
	HasMoreItems bool
	NumItems     *big.Int
}

// ObjectParentData is a parent folder together with the child's path
// segment relative to it.
type ObjectParentData struct {
	ExtensionHolder
	Object              *ObjectData
	RelativePathSegment string
}

// ObjectInFolderContainer is one node of a folder tree.
type ObjectInFolderContainer struct {
	ExtensionHolder
	Object   *ObjectInFolderData
	Children []*ObjectInFolderContainer
}

// ObjectListEqual compares two pages of objects.
func ObjectListEqual(a, b *ObjectList) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.HasMoreItems != b.HasMoreItems || !bigEqual(a.NumItems, b.NumItems) || len(a.Objects) != len(b.Objects) {
		return false
	}
	for i := range a.Objects {
		if !ObjectDataEqual(a.Objects[i], b.Objects[i]) {
			return false
		}
	}
	return ExtensionsEqual(a.Extensions(), b.Extensions())
}

// ObjectInFolderDataEqual compares two folder children.
func ObjectInFolderDataEqual(a, b *ObjectInFolderData) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.PathSegment == b.PathSegment &&
		ObjectDataEqual(a.Object, b.Object) &&
		ExtensionsEqual(a.Extensions(), b.Extensions())
}

// ObjectInFolderListEqual compares two pages of folder children.
func ObjectInFolderListEqual(a, b *ObjectInFolderList) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.HasMoreItems != b.HasMoreItems || !bigEqual(a.NumItems, b.NumItems) || len(a.Objects) != len(b.Objects) {
		return false
	}
	for i := range a.Objects {
		if !ObjectInFolderDataEqual(a.Objects[i], b.Objects[i]) {
			return false
		}
	}
	return ExtensionsEqual(a.Extensions(), b.Extensions())
}

// ObjectParentDataEqual compares two parent entries.
func ObjectParentDataEqual(a, b *ObjectParentData) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.RelativePathSegment == b.RelativePathSegment &&
		ObjectDataEqual(a.Object, b.Object) &&
		ExtensionsEqual(a.Extensions(), b.Extensions())
}

// ObjectInFolderContainersEqual compares two folder trees.
func ObjectInFolderContainersEqual(a, b []*ObjectInFolderContainer) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ObjectInFolderDataEqual(a[i].Object, b[i].Object) ||
			!ObjectInFolderContainersEqual(a[i].Children, b[i].Children) ||
			!ExtensionsEqual(a[i].Extensions(), b[i].Extensions()) {
			return false
		}
	}
	return true
}
