// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package inmemory

import (
	"context"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// allowableActions derives what can currently be done with o. Access
// control is not enforced, so only object state matters.
func (r *Repository) allowableActions(o *object) *cmis.AllowableActions {
	aa := cmis.NewAllowableActions(
		cmis.ActionCanGetProperties,
		cmis.ActionCanGetObjectRelationships,
		cmis.ActionCanGetAppliedPolicies,
		cmis.ActionCanGetACL,
	)
	td, _ := r.types.Type(o.typeID)
	if td != nil && td.ControllablePolicy() {
		aa.Add(cmis.ActionCanApplyPolicy)
	}
	if len(o.policies) > 0 {
		aa.Add(cmis.ActionCanRemovePolicy)
	}
	if td != nil && td.ControllableACL() {
		aa.Add(cmis.ActionCanApplyACL)
	}

	root := o.id == r.rootID
	switch o.base {
	case cmis.BaseTypeFolder:
		aa.Add(cmis.ActionCanGetChildren)
		aa.Add(cmis.ActionCanGetDescendants)
		aa.Add(cmis.ActionCanGetFolderTree)
		aa.Add(cmis.ActionCanCreateDocument)
		aa.Add(cmis.ActionCanCreateFolder)
		aa.Add(cmis.ActionCanCreateRelationship)
		if r.version.Is11() {
			aa.Add(cmis.ActionCanCreateItem)
		}
		aa.Add(cmis.ActionCanUpdateProperties)
		if !root {
			aa.Add(cmis.ActionCanGetFolderParent)
			aa.Add(cmis.ActionCanGetObjectParents)
			aa.Add(cmis.ActionCanMoveObject)
			aa.Add(cmis.ActionCanDeleteTree)
			if len(r.children[o.id]) == 0 {
				aa.Add(cmis.ActionCanDeleteObject)
			}
		}
	case cmis.BaseTypeDocument:
		r.documentActions(o, td, aa)
	case cmis.BaseTypeRelationship:
		aa.Add(cmis.ActionCanUpdateProperties)
		aa.Add(cmis.ActionCanDeleteObject)
	default:
		aa.Add(cmis.ActionCanUpdateProperties)
		aa.Add(cmis.ActionCanDeleteObject)
		aa.Add(cmis.ActionCanAddObjectToFolder)
		if len(o.parents) > 0 {
			aa.Add(cmis.ActionCanGetObjectParents)
			aa.Add(cmis.ActionCanMoveObject)
			aa.Add(cmis.ActionCanRemoveObjectFromFolder)
		}
	}
	return aa
}

func (r *Repository) documentActions(o *object, td *cmis.TypeDefinition, aa *cmis.AllowableActions) {
	s := r.series[o.seriesID]
	checkedOut := s != nil && s.pwc != ""
	writable := o.pwc || (!checkedOut && s != nil && s.latest() == o.id)

	aa.Add(cmis.ActionCanGetAllVersions)
	aa.Add(cmis.ActionCanGetRenditions)
	aa.Add(cmis.ActionCanDeleteObject)
	if len(r.parentIDs(o)) > 0 {
		aa.Add(cmis.ActionCanGetObjectParents)
		aa.Add(cmis.ActionCanMoveObject)
		aa.Add(cmis.ActionCanRemoveObjectFromFolder)
	}
	aa.Add(cmis.ActionCanAddObjectToFolder)
	if o.content != nil {
		aa.Add(cmis.ActionCanGetContentStream)
	}
	if writable {
		aa.Add(cmis.ActionCanUpdateProperties)
		if td == nil || td.ContentStreamAllowed() != cmis.ContentStreamNotAllowed {
			aa.Add(cmis.ActionCanSetContentStream)
		}
		if o.content != nil && (td == nil || td.ContentStreamAllowed() != cmis.ContentStreamRequired) {
			aa.Add(cmis.ActionCanDeleteContentStream)
		}
	}
	switch {
	case o.pwc:
		aa.Add(cmis.ActionCanCheckIn)
		aa.Add(cmis.ActionCanCancelCheckOut)
	case td != nil && td.Versionable() && !checkedOut && s.latest() == o.id:
		aa.Add(cmis.ActionCanCheckOut)
	}
}

// GetAllowableActions implements [binding.ObjectService].
func (r *Repository) GetAllowableActions(ctx context.Context, repositoryID, objectID string) (*cmis.AllowableActions, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, err := r.lookup(objectID)
	if err != nil {
		return nil, err
	}
	return r.allowableActions(o), nil
}
