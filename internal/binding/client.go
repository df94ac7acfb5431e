// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package binding

import (
	"context"
	"net/url"
	"strconv"

	"github.com/samber/oops"

	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// Client implements every CMIS service as a thin proxy over a Port. It
// holds no state of its own.
type Client struct {
	port Port
}

var _ Services = (*Client)(nil)

// NewClient returns a client sending its calls through port.
func NewClient(port Port) *Client {
	return &Client{port: port}
}

// call sends req and type-asserts the decoded result.
func call[T any](ctx context.Context, port Port, req *Request) (T, error) {
	var zero T
	if req.Params == nil {
		req.Params = url.Values{}
	}
	resp, err := port.Call(ctx, req)
	if err != nil {
		return zero, err
	}
	v, ok := resp.Value.(T)
	if !ok {
		return zero, oops.Code(CodeBadResponse).
			With("kind", string(req.Result)).
			Errorf("expected %T in response, got %T", zero, resp.Value)
	}
	return v, nil
}

// objectCall sends a request answered with an object and returns the
// object's id.
func (c *Client) objectCall(ctx context.Context, req *Request) (string, error) {
	req.Result = codec.KindObject
	od, err := call[*cmis.ObjectData](ctx, c.port, req)
	if err != nil {
		return "", err
	}
	return od.ID(), nil
}

// noResult sends a request answered with no document.
func (c *Client) noResult(ctx context.Context, req *Request) error {
	if req.Params == nil {
		req.Params = url.Values{}
	}
	_, err := c.port.Call(ctx, req)
	return err
}

func objectParams(objectID string) url.Values {
	return url.Values{ParamObjectID: {objectID}}
}

func propertiesPart(props *cmis.Properties) []Part {
	if props == nil {
		props = cmis.NewProperties()
	}
	return []Part{{Name: PartProperties, Kind: codec.KindProperties, Value: props}}
}

// GetRepositoryInfo implements [RepositoryService].
func (c *Client) GetRepositoryInfo(ctx context.Context, repositoryID string) (*cmis.RepositoryInfo, error) {
	return call[*cmis.RepositoryInfo](ctx, c.port, &Request{
		RepositoryID: repositoryID,
		Selector:     SelectorRepositoryInfo,
		Result:       codec.KindRepositoryInfo,
	})
}

// GetTypeChildren implements [RepositoryService].
func (c *Client) GetTypeChildren(ctx context.Context, repositoryID, typeID string, includePropertyDefinitions bool, page Paging) (*cmis.TypeDefinitionList, error) {
	q := url.Values{}
	setString(q, ParamTypeID, typeID)
	setBool(q, ParamIncludePropertyDefinitions, includePropertyDefinitions)
	page.encode(q)
	return call[*cmis.TypeDefinitionList](ctx, c.port, &Request{
		RepositoryID: repositoryID,
		Selector:     SelectorTypeChildren,
		Params:       q,
		Result:       codec.KindTypeDefinitionList,
	})
}

// GetTypeDescendants implements [RepositoryService].
func (c *Client) GetTypeDescendants(ctx context.Context, repositoryID, typeID string, depth int, includePropertyDefinitions bool) ([]*cmis.TypeDefinitionContainer, error) {
	q := url.Values{}
	setString(q, ParamTypeID, typeID)
	setInt(q, ParamDepth, depth)
	setBool(q, ParamIncludePropertyDefinitions, includePropertyDefinitions)
	return call[[]*cmis.TypeDefinitionContainer](ctx, c.port, &Request{
		RepositoryID: repositoryID,
		Selector:     SelectorTypeDescendants,
		Params:       q,
		Result:       codec.KindTypeTree,
	})
}

// GetTypeDefinition implements [RepositoryService].
func (c *Client) GetTypeDefinition(ctx context.Context, repositoryID, typeID string) (*cmis.TypeDefinition, error) {
	return call[*cmis.TypeDefinition](ctx, c.port, &Request{
		RepositoryID: repositoryID,
		Selector:     SelectorTypeDefinition,
		Params:       url.Values{ParamTypeID: {typeID}},
		Result:       codec.KindTypeDefinition,
	})
}

// GetObject implements [ObjectService].
func (c *Client) GetObject(ctx context.Context, repositoryID, objectID string, opts ObjectOptions) (*cmis.ObjectData, error) {
	q := objectParams(objectID)
	opts.encode(q)
	return call[*cmis.ObjectData](ctx, c.port, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Selector:     SelectorObject,
		Params:       q,
		Result:       codec.KindObject,
	})
}

// GetObjectByPath implements [ObjectService].
func (c *Client) GetObjectByPath(ctx context.Context, repositoryID, path string, opts ObjectOptions) (*cmis.ObjectData, error) {
	q := url.Values{ParamPath: {path}}
	opts.encode(q)
	return call[*cmis.ObjectData](ctx, c.port, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Selector:     SelectorObject,
		Params:       q,
		Result:       codec.KindObject,
	})
}

// GetProperties implements [ObjectService].
func (c *Client) GetProperties(ctx context.Context, repositoryID, objectID, filter string) (*cmis.Properties, error) {
	q := objectParams(objectID)
	setString(q, ParamFilter, filter)
	return call[*cmis.Properties](ctx, c.port, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Selector:     SelectorProperties,
		Params:       q,
		Result:       codec.KindProperties,
	})
}

// GetAllowableActions implements [ObjectService].
func (c *Client) GetAllowableActions(ctx context.Context, repositoryID, objectID string) (*cmis.AllowableActions, error) {
	return call[*cmis.AllowableActions](ctx, c.port, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Selector:     SelectorAllowableActions,
		Params:       objectParams(objectID),
		Result:       codec.KindAllowableActions,
	})
}

// GetRenditions implements [ObjectService]. Renditions travel as the
// rendition list of an otherwise empty object.
func (c *Client) GetRenditions(ctx context.Context, repositoryID, objectID, renditionFilter string, page Paging) ([]*cmis.Rendition, error) {
	q := objectParams(objectID)
	setString(q, ParamRenditionFilter, renditionFilter)
	page.encode(q)
	od, err := call[*cmis.ObjectData](ctx, c.port, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Selector:     SelectorRenditions,
		Params:       q,
		Result:       codec.KindObject,
	})
	if err != nil {
		return nil, err
	}
	return od.Renditions, nil
}

// CreateDocument implements [ObjectService].
func (c *Client) CreateDocument(ctx context.Context, repositoryID string, props *cmis.Properties, folderID string, content *cmis.ContentStream, state cmis.VersioningState) (string, error) {
	q := url.Values{}
	setString(q, ParamFolderID, folderID)
	setString(q, ParamVersioningState, string(state))
	return c.objectCall(ctx, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Action:       ActionCreateDocument,
		Params:       q,
		Parts:        propertiesPart(props),
		Content:      content,
	})
}

// CreateFolder implements [ObjectService].
func (c *Client) CreateFolder(ctx context.Context, repositoryID string, props *cmis.Properties, folderID string) (string, error) {
	return c.objectCall(ctx, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Action:       ActionCreateFolder,
		Params:       url.Values{ParamFolderID: {folderID}},
		Parts:        propertiesPart(props),
	})
}

// CreateRelationship implements [ObjectService].
func (c *Client) CreateRelationship(ctx context.Context, repositoryID string, props *cmis.Properties) (string, error) {
	return c.objectCall(ctx, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Action:       ActionCreateRelationship,
		Parts:        propertiesPart(props),
	})
}

// CreatePolicy implements [ObjectService].
func (c *Client) CreatePolicy(ctx context.Context, repositoryID string, props *cmis.Properties, folderID string) (string, error) {
	q := url.Values{}
	setString(q, ParamFolderID, folderID)
	return c.objectCall(ctx, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Action:       ActionCreatePolicy,
		Params:       q,
		Parts:        propertiesPart(props),
	})
}

// UpdateProperties implements [ObjectService].
func (c *Client) UpdateProperties(ctx context.Context, repositoryID, objectID, changeToken string, props *cmis.Properties) (string, error) {
	q := objectParams(objectID)
	setString(q, ParamChangeToken, changeToken)
	return c.objectCall(ctx, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Action:       ActionUpdate,
		Params:       q,
		Parts:        propertiesPart(props),
	})
}

// DeleteObject implements [ObjectService].
func (c *Client) DeleteObject(ctx context.Context, repositoryID, objectID string, allVersions bool) error {
	q := objectParams(objectID)
	q.Set(ParamAllVersions, strconv.FormatBool(allVersions))
	return c.noResult(ctx, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Action:       ActionDelete,
		Params:       q,
	})
}

// GetContentStream implements [ObjectService].
func (c *Client) GetContentStream(ctx context.Context, repositoryID, objectID, streamID string) (*cmis.ContentStream, error) {
	q := objectParams(objectID)
	setString(q, ParamStreamID, streamID)
	resp, err := c.port.Call(ctx, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Selector:     SelectorContent,
		Params:       q,
	})
	if err != nil {
		return nil, err
	}
	if resp.Content == nil {
		return nil, oops.Code(CodeBadResponse).Errorf("content response carries no stream")
	}
	return resp.Content, nil
}

// SetContentStream implements [ObjectService].
func (c *Client) SetContentStream(ctx context.Context, repositoryID, objectID string, overwrite bool, content *cmis.ContentStream) (string, error) {
	q := objectParams(objectID)
	q.Set(ParamOverwrite, strconv.FormatBool(overwrite))
	if content != nil {
		setString(q, ParamFilename, content.Filename)
	}
	return c.objectCall(ctx, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Action:       ActionSetContent,
		Params:       q,
		Content:      content,
	})
}

// DeleteContentStream implements [ObjectService].
func (c *Client) DeleteContentStream(ctx context.Context, repositoryID, objectID string) (string, error) {
	return c.objectCall(ctx, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Action:       ActionDeleteContent,
		Params:       objectParams(objectID),
	})
}

// MoveObject implements [ObjectService].
func (c *Client) MoveObject(ctx context.Context, repositoryID, objectID, targetFolderID, sourceFolderID string) (string, error) {
	q := objectParams(objectID)
	q.Set(ParamTargetFolderID, targetFolderID)
	setString(q, ParamSourceFolderID, sourceFolderID)
	return c.objectCall(ctx, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Action:       ActionMove,
		Params:       q,
	})
}

// BulkUpdateProperties implements [ObjectService]. The result travels as
// the object list of a bulk update document.
func (c *Client) BulkUpdateProperties(ctx context.Context, repositoryID string, update *cmis.BulkUpdate) ([]*cmis.BulkUpdateObjectIDAndChangeToken, error) {
	bu, err := call[*cmis.BulkUpdate](ctx, c.port, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Action:       ActionBulkUpdate,
		Parts:        []Part{{Name: PartBulkUpdate, Kind: codec.KindBulkUpdate, Value: update}},
		Result:       codec.KindBulkUpdate,
	})
	if err != nil {
		return nil, err
	}
	return bu.Objects, nil
}

// GetChildren implements [NavigationService].
func (c *Client) GetChildren(ctx context.Context, repositoryID, folderID string, opts ObjectOptions, page Paging) (*cmis.ObjectInFolderList, error) {
	q := objectParams(folderID)
	opts.encode(q)
	page.encode(q)
	return call[*cmis.ObjectInFolderList](ctx, c.port, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Selector:     SelectorChildren,
		Params:       q,
		Result:       codec.KindObjectInFolderList,
	})
}

// GetDescendants implements [NavigationService].
func (c *Client) GetDescendants(ctx context.Context, repositoryID, folderID string, depth int, opts ObjectOptions) ([]*cmis.ObjectInFolderContainer, error) {
	q := objectParams(folderID)
	setInt(q, ParamDepth, depth)
	opts.encode(q)
	return call[[]*cmis.ObjectInFolderContainer](ctx, c.port, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Selector:     SelectorDescendants,
		Params:       q,
		Result:       codec.KindObjectTree,
	})
}

// GetObjectParents implements [NavigationService].
func (c *Client) GetObjectParents(ctx context.Context, repositoryID, objectID string, opts ObjectOptions) ([]*cmis.ObjectParentData, error) {
	q := objectParams(objectID)
	opts.encode(q)
	return call[[]*cmis.ObjectParentData](ctx, c.port, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Selector:     SelectorParents,
		Params:       q,
		Result:       codec.KindObjectParents,
	})
}

// Query implements [DiscoveryService].
func (c *Client) Query(ctx context.Context, repositoryID string, query *cmis.QueryStatement) (*cmis.ObjectList, error) {
	return call[*cmis.ObjectList](ctx, c.port, &Request{
		RepositoryID: repositoryID,
		Action:       ActionQuery,
		Parts:        []Part{{Name: PartQuery, Kind: codec.KindQuery, Value: query}},
		Result:       codec.KindObjectList,
	})
}

// GetContentChanges implements [DiscoveryService].
func (c *Client) GetContentChanges(ctx context.Context, repositoryID, changeLogToken string, includeProperties bool, maxItems int) (*cmis.ObjectList, error) {
	q := url.Values{}
	setString(q, ParamChangeLogToken, changeLogToken)
	setBool(q, ParamIncludeProperties, includeProperties)
	setInt(q, ParamMaxItems, maxItems)
	return call[*cmis.ObjectList](ctx, c.port, &Request{
		RepositoryID: repositoryID,
		Selector:     SelectorContentChanges,
		Params:       q,
		Result:       codec.KindObjectList,
	})
}

// GetAcl implements [AclService].
func (c *Client) GetAcl(ctx context.Context, repositoryID, objectID string, onlyBasicPermissions bool) (*cmis.Acl, error) {
	q := objectParams(objectID)
	q.Set(ParamOnlyBasicPermissions, strconv.FormatBool(onlyBasicPermissions))
	return call[*cmis.Acl](ctx, c.port, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Selector:     SelectorACL,
		Params:       q,
		Result:       codec.KindAcl,
	})
}

// ApplyAcl implements [AclService].
func (c *Client) ApplyAcl(ctx context.Context, repositoryID, objectID string, add, remove *cmis.Acl, propagation cmis.AclPropagation) (*cmis.Acl, error) {
	q := objectParams(objectID)
	setString(q, ParamACLPropagation, string(propagation))
	var parts []Part
	if add != nil {
		parts = append(parts, Part{Name: PartAddACEs, Kind: codec.KindAcl, Value: add})
	}
	if remove != nil {
		parts = append(parts, Part{Name: PartRemoveACEs, Kind: codec.KindAcl, Value: remove})
	}
	if len(parts) == 1 {
		// A lone document has no part name on the wire, so always name
		// both lists.
		empty := &cmis.Acl{}
		if add == nil {
			parts = []Part{{Name: PartAddACEs, Kind: codec.KindAcl, Value: empty}, parts[0]}
		} else {
			parts = append(parts, Part{Name: PartRemoveACEs, Kind: codec.KindAcl, Value: empty})
		}
	}
	return call[*cmis.Acl](ctx, c.port, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Action:       ActionApplyACL,
		Params:       q,
		Parts:        parts,
		Result:       codec.KindAcl,
	})
}

// ApplyPolicy implements [PolicyService].
func (c *Client) ApplyPolicy(ctx context.Context, repositoryID, policyID, objectID string) error {
	q := objectParams(objectID)
	q.Set(ParamPolicyID, policyID)
	return c.noResult(ctx, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Action:       ActionApplyPolicy,
		Params:       q,
	})
}

// RemovePolicy implements [PolicyService].
func (c *Client) RemovePolicy(ctx context.Context, repositoryID, policyID, objectID string) error {
	q := objectParams(objectID)
	q.Set(ParamPolicyID, policyID)
	return c.noResult(ctx, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Action:       ActionRemovePolicy,
		Params:       q,
	})
}

// GetAppliedPolicies implements [PolicyService].
func (c *Client) GetAppliedPolicies(ctx context.Context, repositoryID, objectID, filter string) ([]*cmis.ObjectData, error) {
	q := objectParams(objectID)
	setString(q, ParamFilter, filter)
	list, err := call[*cmis.ObjectList](ctx, c.port, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Selector:     SelectorPolicies,
		Params:       q,
		Result:       codec.KindObjectList,
	})
	if err != nil {
		return nil, err
	}
	return list.Objects, nil
}

// GetObjectRelationships implements [RelationshipService].
func (c *Client) GetObjectRelationships(ctx context.Context, repositoryID, objectID string, includeSubRelationshipTypes bool, direction RelationshipDirection, typeID string, page Paging) (*cmis.ObjectList, error) {
	q := objectParams(objectID)
	setBool(q, ParamIncludeSubRelationshipTypes, includeSubRelationshipTypes)
	setString(q, ParamRelationshipDirection, string(direction))
	setString(q, ParamTypeID, typeID)
	page.encode(q)
	return call[*cmis.ObjectList](ctx, c.port, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Selector:     SelectorRelationships,
		Params:       q,
		Result:       codec.KindObjectList,
	})
}

// CheckOut implements [VersioningService].
func (c *Client) CheckOut(ctx context.Context, repositoryID, objectID string) (string, error) {
	return c.objectCall(ctx, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Action:       ActionCheckOut,
		Params:       objectParams(objectID),
	})
}

// CancelCheckOut implements [VersioningService].
func (c *Client) CancelCheckOut(ctx context.Context, repositoryID, objectID string) error {
	return c.noResult(ctx, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Action:       ActionCancelCheckOut,
		Params:       objectParams(objectID),
	})
}

// CheckIn implements [VersioningService].
func (c *Client) CheckIn(ctx context.Context, repositoryID, objectID string, major bool, props *cmis.Properties, content *cmis.ContentStream, comment string) (string, error) {
	q := objectParams(objectID)
	q.Set(ParamMajor, strconv.FormatBool(major))
	setString(q, ParamCheckinComment, comment)
	return c.objectCall(ctx, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Action:       ActionCheckIn,
		Params:       q,
		Parts:        propertiesPart(props),
		Content:      content,
	})
}

// GetAllVersions implements [VersioningService].
func (c *Client) GetAllVersions(ctx context.Context, repositoryID, objectID, filter string) ([]*cmis.ObjectData, error) {
	q := objectParams(objectID)
	setString(q, ParamFilter, filter)
	list, err := call[*cmis.ObjectList](ctx, c.port, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Selector:     SelectorVersions,
		Params:       q,
		Result:       codec.KindObjectList,
	})
	if err != nil {
		return nil, err
	}
	return list.Objects, nil
}

// AddObjectToFolder implements [MultiFilingService].
func (c *Client) AddObjectToFolder(ctx context.Context, repositoryID, objectID, folderID string, allVersions bool) error {
	q := objectParams(objectID)
	q.Set(ParamFolderID, folderID)
	q.Set(ParamAllVersions, strconv.FormatBool(allVersions))
	return c.noResult(ctx, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Action:       ActionAddObjectToFolder,
		Params:       q,
	})
}

// RemoveObjectFromFolder implements [MultiFilingService].
func (c *Client) RemoveObjectFromFolder(ctx context.Context, repositoryID, objectID, folderID string) error {
	q := objectParams(objectID)
	q.Set(ParamFolderID, folderID)
	return c.noResult(ctx, &Request{
		RepositoryID: repositoryID,
		Object:       true,
		Action:       ActionRemoveObjectFromFolder,
		Params:       q,
	})
}
