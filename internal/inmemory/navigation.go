// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package inmemory

import (
	"context"
	"math/big"
	"slices"

	"github.com/gocmis/gocmis/internal/binding"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// GetChildren implements [binding.NavigationService]. Children are listed
// in filing order; documents show their latest version.
func (r *Repository) GetChildren(ctx context.Context, repositoryID, folderID string, opts binding.ObjectOptions, p binding.Paging) (*cmis.ObjectInFolderList, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, err := r.folder(folderID)
	if err != nil {
		return nil, err
	}
	kids := r.childObjects(f.id)
	total := len(kids)
	kids, hasMore := page(kids, p)
	list := &cmis.ObjectInFolderList{HasMoreItems: hasMore, NumItems: big.NewInt(int64(total))}
	for _, c := range kids {
		od, err := r.objectData(c, opts)
		if err != nil {
			return nil, err
		}
		list.Objects = append(list.Objects, &cmis.ObjectInFolderData{Object: od, PathSegment: c.name()})
	}
	return list, nil
}

// GetDescendants implements [binding.NavigationService].
func (r *Repository) GetDescendants(ctx context.Context, repositoryID, folderID string, depth int, opts binding.ObjectOptions) ([]*cmis.ObjectInFolderContainer, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, err := r.folder(folderID)
	if err != nil {
		return nil, err
	}
	return r.descendants(f, depth, 1, opts)
}

func (r *Repository) descendants(f *object, depth, level int, opts binding.ObjectOptions) ([]*cmis.ObjectInFolderContainer, error) {
	var out []*cmis.ObjectInFolderContainer
	for _, c := range r.childObjects(f.id) {
		od, err := r.objectData(c, opts)
		if err != nil {
			return nil, err
		}
		node := &cmis.ObjectInFolderContainer{Object: &cmis.ObjectInFolderData{Object: od, PathSegment: c.name()}}
		if c.base == cmis.BaseTypeFolder && (depth <= 0 || level < depth) {
			if node.Children, err = r.descendants(c, depth, level+1, opts); err != nil {
				return nil, err
			}
		}
		out = append(out, node)
	}
	return out, nil
}

// GetObjectParents implements [binding.NavigationService].
func (r *Repository) GetObjectParents(ctx context.Context, repositoryID, objectID string, opts binding.ObjectOptions) ([]*cmis.ObjectParentData, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, err := r.lookup(objectID)
	if err != nil {
		return nil, err
	}
	if o.id == r.rootID {
		return nil, invalidArgument("the root folder has no parent")
	}
	if o.base == cmis.BaseTypeRelationship {
		return nil, constraint("relationships are not fileable")
	}
	var out []*cmis.ObjectParentData
	for _, id := range r.parentIDs(o) {
		od, err := r.objectData(r.objects[id], opts)
		if err != nil {
			return nil, err
		}
		out = append(out, &cmis.ObjectParentData{Object: od, RelativePathSegment: o.name()})
	}
	return out, nil
}

// AddObjectToFolder implements [binding.MultiFilingService]. Filing is
// never version specific, so allVersions is ignored.
func (r *Repository) AddObjectToFolder(ctx context.Context, repositoryID, objectID, folderID string, _ bool) error {
	if err := r.begin(ctx, repositoryID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	o, err := r.lookup(objectID)
	if err != nil {
		return err
	}
	if o.base == cmis.BaseTypeFolder || o.base == cmis.BaseTypeRelationship {
		return constraint("objects of base type %s cannot be multi-filed", o.base)
	}
	f, err := r.folder(folderID)
	if err != nil {
		return err
	}
	if slices.Contains(r.parentIDs(o), f.id) {
		return constraint("object %q is already filed in folder %q", objectID, f.id)
	}
	if err := r.checkName(f.id, o.name(), filingID(o)); err != nil {
		return err
	}
	r.file(o, f.id)
	r.record(o, cmis.ChangeTypeUpdated)
	return nil
}

// RemoveObjectFromFolder implements [binding.MultiFilingService]. An
// object must stay filed in at least one folder.
func (r *Repository) RemoveObjectFromFolder(ctx context.Context, repositoryID, objectID, folderID string) error {
	if err := r.begin(ctx, repositoryID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	o, err := r.lookup(objectID)
	if err != nil {
		return err
	}
	if o.base == cmis.BaseTypeFolder {
		return constraint("folders cannot be unfiled")
	}
	parents := r.parentIDs(o)
	if folderID == "" || (len(parents) == 1 && parents[0] == folderID) {
		return constraint("unfiling is not supported")
	}
	if !slices.Contains(parents, folderID) {
		return invalidArgument("object %q is not filed in folder %q", objectID, folderID)
	}
	r.unfile(o, folderID)
	r.record(o, cmis.ChangeTypeUpdated)
	return nil
}
