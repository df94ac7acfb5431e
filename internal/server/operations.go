// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package server

import (
	"context"
	"fmt"
	"math/big"
	"net/http"

	"github.com/gocmis/gocmis/internal/binding"
	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// operation is one selector or action.
type operation struct {
	// object marks operations served at the object URL.
	object bool
	// parts are the documents the request body may carry. A body that is
	// not multipart holds the first of them.
	parts []partSpec
	// content marks operations accepting a content stream.
	content bool
	run     func(ctx context.Context, c *call) (any, error)
}

type partSpec struct {
	name string
	kind codec.Kind
}

var (
	propertiesPart = []partSpec{{binding.PartProperties, codec.KindProperties}}
	aclParts       = []partSpec{{binding.PartAddACEs, codec.KindAcl}, {binding.PartRemoveACEs, codec.KindAcl}}
)

// call carries the decoded arguments of a request to its operation.
type call struct {
	repo         Repository
	repositoryID string
	q            binding.Query
	in           *body
}

func (c *call) objectID() (string, error) {
	return c.q.Required(binding.ParamObjectID)
}

func (c *call) properties() *cmis.Properties {
	props, _ := c.in.docs[binding.PartProperties].(*cmis.Properties)
	return props
}

func (c *call) acl(name string) *cmis.Acl {
	acl, _ := c.in.docs[name].(*cmis.Acl)
	return acl
}

// object answers a write with the object it created or changed.
func (c *call) object(ctx context.Context, id string, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return c.repo.GetObject(ctx, c.repositoryID, id, binding.ObjectOptions{})
}

// empty answers a write that returns nothing.
func empty(err error) (any, error) {
	return nil, err
}

func objectList(objects []*cmis.ObjectData, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return &cmis.ObjectList{Objects: objects, NumItems: big.NewInt(int64(len(objects)))}, nil
}

// lookup finds the operation a request names. The name is empty when the
// request names no known operation.
func lookup(method string, q binding.Query, object bool) (string, *operation, error) {
	var (
		name  string
		table map[string]*operation
	)
	switch method {
	case http.MethodGet, http.MethodHead:
		name, table = q.String(binding.ParamSelector), selectors
		if name == "" {
			name = binding.SelectorRepositoryInfo
			if object {
				name = binding.SelectorObject
			}
		}
	case http.MethodPost:
		name, table = q.String(binding.ParamAction), actions
		if name == "" {
			return "", nil, invalidArgument("parameter %s is required", binding.ParamAction)
		}
	default:
		return "", nil, cmis.NewServiceError(cmis.ErrorKindNotSupported, fmt.Sprintf("method %s is not supported", method), 0)
	}
	op, ok := table[name]
	if !ok {
		return "", nil, invalidArgument("unknown operation %q", name)
	}
	if op.object != object {
		where := "repository"
		if object {
			where = "object"
		}
		return name, nil, invalidArgument("operation %q is not served at the %s url", name, where)
	}
	return name, op, nil
}

var selectors = map[string]*operation{
	binding.SelectorRepositoryInfo: {run: func(ctx context.Context, c *call) (any, error) {
		return c.repo.GetRepositoryInfo(ctx, c.repositoryID)
	}},
	binding.SelectorTypeChildren: {run: func(ctx context.Context, c *call) (any, error) {
		withDefs, err := c.q.Bool(binding.ParamIncludePropertyDefinitions, false)
		if err != nil {
			return nil, err
		}
		page, err := c.q.Paging()
		if err != nil {
			return nil, err
		}
		return c.repo.GetTypeChildren(ctx, c.repositoryID, c.q.String(binding.ParamTypeID), withDefs, page)
	}},
	binding.SelectorTypeDescendants: {run: func(ctx context.Context, c *call) (any, error) {
		depth, err := c.q.Int(binding.ParamDepth, -1)
		if err != nil {
			return nil, err
		}
		withDefs, err := c.q.Bool(binding.ParamIncludePropertyDefinitions, false)
		if err != nil {
			return nil, err
		}
		return c.repo.GetTypeDescendants(ctx, c.repositoryID, c.q.String(binding.ParamTypeID), depth, withDefs)
	}},
	binding.SelectorTypeDefinition: {run: func(ctx context.Context, c *call) (any, error) {
		typeID, err := c.q.Required(binding.ParamTypeID)
		if err != nil {
			return nil, err
		}
		return c.repo.GetTypeDefinition(ctx, c.repositoryID, typeID)
	}},
	binding.SelectorContentChanges: {run: func(ctx context.Context, c *call) (any, error) {
		withProps, err := c.q.Bool(binding.ParamIncludeProperties, false)
		if err != nil {
			return nil, err
		}
		maxItems, err := c.q.Int(binding.ParamMaxItems, 0)
		if err != nil {
			return nil, err
		}
		return c.repo.GetContentChanges(ctx, c.repositoryID, c.q.String(binding.ParamChangeLogToken), withProps, maxItems)
	}},

	binding.SelectorObject: {object: true, run: func(ctx context.Context, c *call) (any, error) {
		opts, err := c.q.ObjectOptions()
		if err != nil {
			return nil, err
		}
		if p := c.q.String(binding.ParamPath); p != "" {
			return c.repo.GetObjectByPath(ctx, c.repositoryID, p, opts)
		}
		id := c.q.String(binding.ParamObjectID)
		if id == "" {
			info, err := c.repo.GetRepositoryInfo(ctx, c.repositoryID)
			if err != nil {
				return nil, err
			}
			id = info.RootFolderID
		}
		return c.repo.GetObject(ctx, c.repositoryID, id, opts)
	}},
	binding.SelectorProperties: {object: true, run: func(ctx context.Context, c *call) (any, error) {
		id, err := c.objectID()
		if err != nil {
			return nil, err
		}
		return c.repo.GetProperties(ctx, c.repositoryID, id, c.q.String(binding.ParamFilter))
	}},
	binding.SelectorAllowableActions: {object: true, run: func(ctx context.Context, c *call) (any, error) {
		id, err := c.objectID()
		if err != nil {
			return nil, err
		}
		return c.repo.GetAllowableActions(ctx, c.repositoryID, id)
	}},
	binding.SelectorRenditions: {object: true, run: func(ctx context.Context, c *call) (any, error) {
		id, err := c.objectID()
		if err != nil {
			return nil, err
		}
		page, err := c.q.Paging()
		if err != nil {
			return nil, err
		}
		renditions, err := c.repo.GetRenditions(ctx, c.repositoryID, id, c.q.String(binding.ParamRenditionFilter), page)
		if err != nil {
			return nil, err
		}
		return &cmis.ObjectData{
			Properties: cmis.NewProperties(cmis.NewIDProperty(cmis.PropObjectID, id)),
			Renditions: renditions,
		}, nil
	}},
	binding.SelectorContent: {object: true, run: func(ctx context.Context, c *call) (any, error) {
		id, err := c.objectID()
		if err != nil {
			return nil, err
		}
		return c.repo.GetContentStream(ctx, c.repositoryID, id, c.q.String(binding.ParamStreamID))
	}},
	binding.SelectorChildren: {object: true, run: func(ctx context.Context, c *call) (any, error) {
		id, err := c.objectID()
		if err != nil {
			return nil, err
		}
		opts, err := c.q.ObjectOptions()
		if err != nil {
			return nil, err
		}
		page, err := c.q.Paging()
		if err != nil {
			return nil, err
		}
		return c.repo.GetChildren(ctx, c.repositoryID, id, opts, page)
	}},
	binding.SelectorDescendants: {object: true, run: func(ctx context.Context, c *call) (any, error) {
		id, err := c.objectID()
		if err != nil {
			return nil, err
		}
		depth, err := c.q.Int(binding.ParamDepth, -1)
		if err != nil {
			return nil, err
		}
		opts, err := c.q.ObjectOptions()
		if err != nil {
			return nil, err
		}
		return c.repo.GetDescendants(ctx, c.repositoryID, id, depth, opts)
	}},
	binding.SelectorParents: {object: true, run: func(ctx context.Context, c *call) (any, error) {
		id, err := c.objectID()
		if err != nil {
			return nil, err
		}
		opts, err := c.q.ObjectOptions()
		if err != nil {
			return nil, err
		}
		return c.repo.GetObjectParents(ctx, c.repositoryID, id, opts)
	}},
	binding.SelectorACL: {object: true, run: func(ctx context.Context, c *call) (any, error) {
		id, err := c.objectID()
		if err != nil {
			return nil, err
		}
		basic, err := c.q.Bool(binding.ParamOnlyBasicPermissions, true)
		if err != nil {
			return nil, err
		}
		return c.repo.GetAcl(ctx, c.repositoryID, id, basic)
	}},
	binding.SelectorPolicies: {object: true, run: func(ctx context.Context, c *call) (any, error) {
		id, err := c.objectID()
		if err != nil {
			return nil, err
		}
		return objectList(c.repo.GetAppliedPolicies(ctx, c.repositoryID, id, c.q.String(binding.ParamFilter)))
	}},
	binding.SelectorRelationships: {object: true, run: func(ctx context.Context, c *call) (any, error) {
		id, err := c.objectID()
		if err != nil {
			return nil, err
		}
		subTypes, err := c.q.Bool(binding.ParamIncludeSubRelationshipTypes, false)
		if err != nil {
			return nil, err
		}
		page, err := c.q.Paging()
		if err != nil {
			return nil, err
		}
		direction := binding.RelationshipDirection(c.q.String(binding.ParamRelationshipDirection))
		return c.repo.GetObjectRelationships(ctx, c.repositoryID, id, subTypes, direction, c.q.String(binding.ParamTypeID), page)
	}},
	binding.SelectorVersions: {object: true, run: func(ctx context.Context, c *call) (any, error) {
		id, err := c.objectID()
		if err != nil {
			return nil, err
		}
		return objectList(c.repo.GetAllVersions(ctx, c.repositoryID, id, c.q.String(binding.ParamFilter)))
	}},
}

var actions = map[string]*operation{
	binding.ActionQuery: {
		parts: []partSpec{{binding.PartQuery, codec.KindQuery}},
		run: func(ctx context.Context, c *call) (any, error) {
			stmt, ok := c.in.docs[binding.PartQuery].(*cmis.QueryStatement)
			if !ok {
				return nil, invalidArgument("request carries no query statement")
			}
			return c.repo.Query(ctx, c.repositoryID, stmt)
		},
	},

	binding.ActionCreateDocument: {object: true, parts: propertiesPart, content: true,
		run: func(ctx context.Context, c *call) (any, error) {
			state := cmis.VersioningState(c.q.String(binding.ParamVersioningState))
			id, err := c.repo.CreateDocument(ctx, c.repositoryID, c.properties(), c.q.String(binding.ParamFolderID), c.in.takeContent(), state)
			return c.object(ctx, id, err)
		}},
	binding.ActionCreateFolder: {object: true, parts: propertiesPart,
		run: func(ctx context.Context, c *call) (any, error) {
			folderID, err := c.q.Required(binding.ParamFolderID)
			if err != nil {
				return nil, err
			}
			id, err := c.repo.CreateFolder(ctx, c.repositoryID, c.properties(), folderID)
			return c.object(ctx, id, err)
		}},
	binding.ActionCreateRelationship: {object: true, parts: propertiesPart,
		run: func(ctx context.Context, c *call) (any, error) {
			id, err := c.repo.CreateRelationship(ctx, c.repositoryID, c.properties())
			return c.object(ctx, id, err)
		}},
	binding.ActionCreatePolicy: {object: true, parts: propertiesPart,
		run: func(ctx context.Context, c *call) (any, error) {
			id, err := c.repo.CreatePolicy(ctx, c.repositoryID, c.properties(), c.q.String(binding.ParamFolderID))
			return c.object(ctx, id, err)
		}},
	binding.ActionUpdate: {object: true, parts: propertiesPart,
		run: func(ctx context.Context, c *call) (any, error) {
			objectID, err := c.objectID()
			if err != nil {
				return nil, err
			}
			id, err := c.repo.UpdateProperties(ctx, c.repositoryID, objectID, c.q.String(binding.ParamChangeToken), c.properties())
			return c.object(ctx, id, err)
		}},
	binding.ActionDelete: {object: true,
		run: func(ctx context.Context, c *call) (any, error) {
			id, err := c.objectID()
			if err != nil {
				return nil, err
			}
			all, err := c.q.Bool(binding.ParamAllVersions, true)
			if err != nil {
				return nil, err
			}
			return empty(c.repo.DeleteObject(ctx, c.repositoryID, id, all))
		}},
	binding.ActionSetContent: {object: true, content: true,
		run: func(ctx context.Context, c *call) (any, error) {
			objectID, err := c.objectID()
			if err != nil {
				return nil, err
			}
			overwrite, err := c.q.Bool(binding.ParamOverwrite, true)
			if err != nil {
				return nil, err
			}
			content := c.in.takeContent()
			if content == nil {
				return nil, invalidArgument("request carries no content")
			}
			id, err := c.repo.SetContentStream(ctx, c.repositoryID, objectID, overwrite, content)
			return c.object(ctx, id, err)
		}},
	binding.ActionDeleteContent: {object: true,
		run: func(ctx context.Context, c *call) (any, error) {
			objectID, err := c.objectID()
			if err != nil {
				return nil, err
			}
			id, err := c.repo.DeleteContentStream(ctx, c.repositoryID, objectID)
			return c.object(ctx, id, err)
		}},
	binding.ActionMove: {object: true,
		run: func(ctx context.Context, c *call) (any, error) {
			objectID, err := c.objectID()
			if err != nil {
				return nil, err
			}
			target, err := c.q.Required(binding.ParamTargetFolderID)
			if err != nil {
				return nil, err
			}
			id, err := c.repo.MoveObject(ctx, c.repositoryID, objectID, target, c.q.String(binding.ParamSourceFolderID))
			return c.object(ctx, id, err)
		}},
	binding.ActionBulkUpdate: {object: true, parts: []partSpec{{binding.PartBulkUpdate, codec.KindBulkUpdate}},
		run: func(ctx context.Context, c *call) (any, error) {
			update, ok := c.in.docs[binding.PartBulkUpdate].(*cmis.BulkUpdate)
			if !ok {
				return nil, invalidArgument("request carries no bulk update")
			}
			updated, err := c.repo.BulkUpdateProperties(ctx, c.repositoryID, update)
			if err != nil {
				return nil, err
			}
			return &cmis.BulkUpdate{Objects: updated}, nil
		}},
	binding.ActionApplyACL: {object: true, parts: aclParts,
		run: func(ctx context.Context, c *call) (any, error) {
			id, err := c.objectID()
			if err != nil {
				return nil, err
			}
			propagation := cmis.AclPropagation(c.q.String(binding.ParamACLPropagation))
			return c.repo.ApplyAcl(ctx, c.repositoryID, id, c.acl(binding.PartAddACEs), c.acl(binding.PartRemoveACEs), propagation)
		}},
	binding.ActionApplyPolicy: {object: true,
		run: func(ctx context.Context, c *call) (any, error) {
			id, err := c.objectID()
			if err != nil {
				return nil, err
			}
			policyID, err := c.q.Required(binding.ParamPolicyID)
			if err != nil {
				return nil, err
			}
			return empty(c.repo.ApplyPolicy(ctx, c.repositoryID, policyID, id))
		}},
	binding.ActionRemovePolicy: {object: true,
		run: func(ctx context.Context, c *call) (any, error) {
			id, err := c.objectID()
			if err != nil {
				return nil, err
			}
			policyID, err := c.q.Required(binding.ParamPolicyID)
			if err != nil {
				return nil, err
			}
			return empty(c.repo.RemovePolicy(ctx, c.repositoryID, policyID, id))
		}},
	binding.ActionCheckOut: {object: true,
		run: func(ctx context.Context, c *call) (any, error) {
			objectID, err := c.objectID()
			if err != nil {
				return nil, err
			}
			id, err := c.repo.CheckOut(ctx, c.repositoryID, objectID)
			return c.object(ctx, id, err)
		}},
	binding.ActionCancelCheckOut: {object: true,
		run: func(ctx context.Context, c *call) (any, error) {
			id, err := c.objectID()
			if err != nil {
				return nil, err
			}
			return empty(c.repo.CancelCheckOut(ctx, c.repositoryID, id))
		}},
	binding.ActionCheckIn: {object: true, parts: propertiesPart, content: true,
		run: func(ctx context.Context, c *call) (any, error) {
			objectID, err := c.objectID()
			if err != nil {
				return nil, err
			}
			major, err := c.q.Bool(binding.ParamMajor, true)
			if err != nil {
				return nil, err
			}
			id, err := c.repo.CheckIn(ctx, c.repositoryID, objectID, major, c.properties(), c.in.takeContent(), c.q.String(binding.ParamCheckinComment))
			return c.object(ctx, id, err)
		}},
	binding.ActionAddObjectToFolder: {object: true,
		run: func(ctx context.Context, c *call) (any, error) {
			id, err := c.objectID()
			if err != nil {
				return nil, err
			}
			folderID, err := c.q.Required(binding.ParamFolderID)
			if err != nil {
				return nil, err
			}
			all, err := c.q.Bool(binding.ParamAllVersions, true)
			if err != nil {
				return nil, err
			}
			return empty(c.repo.AddObjectToFolder(ctx, c.repositoryID, id, folderID, all))
		}},
	binding.ActionRemoveObjectFromFolder: {object: true,
		run: func(ctx context.Context, c *call) (any, error) {
			id, err := c.objectID()
			if err != nil {
				return nil, err
			}
			return empty(c.repo.RemoveObjectFromFolder(ctx, c.repositoryID, id, c.q.String(binding.ParamFolderID)))
		}},
}
