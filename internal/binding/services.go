// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package binding

import (
	"context"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// Paging selects one page of a listing. MaxItems <= 0 means no limit.
type Paging struct {
	MaxItems  int
	SkipCount int
}

// ObjectOptions selects the optional parts of returned objects.
type ObjectOptions struct {
	// Filter is a comma-separated list of property query names; empty or
	// "*" returns every property.
	Filter                  string
	IncludeAllowableActions bool
	IncludeRelationships    cmis.IncludeRelationships
	RenditionFilter         string
	IncludePolicyIDs        bool
	IncludeACL              bool
}

// RelationshipDirection selects relationships by the role of the object.
type RelationshipDirection string

// Relationship directions.
const (
	RelationshipDirectionSource RelationshipDirection = "source"
	RelationshipDirectionTarget RelationshipDirection = "target"
	RelationshipDirectionEither RelationshipDirection = "either"
)

// Valid reports whether d is a known direction.
func (d RelationshipDirection) Valid() bool {
	switch d {
	case RelationshipDirectionSource, RelationshipDirectionTarget, RelationshipDirectionEither:
		return true
	}
	return false
}

// RepositoryService describes a repository and its type system.
type RepositoryService interface {
	GetRepositoryInfo(ctx context.Context, repositoryID string) (*cmis.RepositoryInfo, error)
	GetTypeChildren(ctx context.Context, repositoryID, typeID string, includePropertyDefinitions bool, page Paging) (*cmis.TypeDefinitionList, error)
	GetTypeDescendants(ctx context.Context, repositoryID, typeID string, depth int, includePropertyDefinitions bool) ([]*cmis.TypeDefinitionContainer, error)
	GetTypeDefinition(ctx context.Context, repositoryID, typeID string) (*cmis.TypeDefinition, error)
}

// ObjectService creates, reads, updates and deletes objects and content.
type ObjectService interface {
	GetObject(ctx context.Context, repositoryID, objectID string, opts ObjectOptions) (*cmis.ObjectData, error)
	GetObjectByPath(ctx context.Context, repositoryID, path string, opts ObjectOptions) (*cmis.ObjectData, error)
	GetProperties(ctx context.Context, repositoryID, objectID, filter string) (*cmis.Properties, error)
	GetAllowableActions(ctx context.Context, repositoryID, objectID string) (*cmis.AllowableActions, error)
	GetRenditions(ctx context.Context, repositoryID, objectID, renditionFilter string, page Paging) ([]*cmis.Rendition, error)
	// CreateDocument creates a document in state, or in the repository
	// default state when state is empty.
	CreateDocument(ctx context.Context, repositoryID string, props *cmis.Properties, folderID string, content *cmis.ContentStream, state cmis.VersioningState) (string, error)
	CreateFolder(ctx context.Context, repositoryID string, props *cmis.Properties, folderID string) (string, error)
	CreateRelationship(ctx context.Context, repositoryID string, props *cmis.Properties) (string, error)
	CreatePolicy(ctx context.Context, repositoryID string, props *cmis.Properties, folderID string) (string, error)
	// UpdateProperties returns the id of the updated object, which may
	// differ from objectID.
	UpdateProperties(ctx context.Context, repositoryID, objectID, changeToken string, props *cmis.Properties) (string, error)
	DeleteObject(ctx context.Context, repositoryID, objectID string, allVersions bool) error
	// GetContentStream returns the content of a document, or of one of its
	// renditions when streamID is set. The caller closes the stream.
	GetContentStream(ctx context.Context, repositoryID, objectID, streamID string) (*cmis.ContentStream, error)
	SetContentStream(ctx context.Context, repositoryID, objectID string, overwrite bool, content *cmis.ContentStream) (string, error)
	DeleteContentStream(ctx context.Context, repositoryID, objectID string) (string, error)
	MoveObject(ctx context.Context, repositoryID, objectID, targetFolderID, sourceFolderID string) (string, error)
	// BulkUpdateProperties returns one entry per object that was updated.
	BulkUpdateProperties(ctx context.Context, repositoryID string, update *cmis.BulkUpdate) ([]*cmis.BulkUpdateObjectIDAndChangeToken, error)
}

// NavigationService walks the folder hierarchy.
type NavigationService interface {
	GetChildren(ctx context.Context, repositoryID, folderID string, opts ObjectOptions, page Paging) (*cmis.ObjectInFolderList, error)
	// GetDescendants returns the tree below folderID; depth <= 0 means
	// unlimited.
	GetDescendants(ctx context.Context, repositoryID, folderID string, depth int, opts ObjectOptions) ([]*cmis.ObjectInFolderContainer, error)
	GetObjectParents(ctx context.Context, repositoryID, objectID string, opts ObjectOptions) ([]*cmis.ObjectParentData, error)
}

// DiscoveryService runs queries and reads the change log.
type DiscoveryService interface {
	Query(ctx context.Context, repositoryID string, query *cmis.QueryStatement) (*cmis.ObjectList, error)
	// GetContentChanges returns change-log entries starting at
	// changeLogToken, or at the first entry when it is empty. Every entry
	// carries its own token as cmis:changeToken.
	GetContentChanges(ctx context.Context, repositoryID, changeLogToken string, includeProperties bool, maxItems int) (*cmis.ObjectList, error)
}

// AclService reads and changes access control lists.
type AclService interface {
	GetAcl(ctx context.Context, repositoryID, objectID string, onlyBasicPermissions bool) (*cmis.Acl, error)
	ApplyAcl(ctx context.Context, repositoryID, objectID string, add, remove *cmis.Acl, propagation cmis.AclPropagation) (*cmis.Acl, error)
}

// PolicyService applies policies to objects.
type PolicyService interface {
	ApplyPolicy(ctx context.Context, repositoryID, policyID, objectID string) error
	RemovePolicy(ctx context.Context, repositoryID, policyID, objectID string) error
	GetAppliedPolicies(ctx context.Context, repositoryID, objectID, filter string) ([]*cmis.ObjectData, error)
}

// RelationshipService lists the relationships of an object.
type RelationshipService interface {
	GetObjectRelationships(ctx context.Context, repositoryID, objectID string, includeSubRelationshipTypes bool, direction RelationshipDirection, typeID string, page Paging) (*cmis.ObjectList, error)
}

// VersioningService manages version series and private working copies.
type VersioningService interface {
	// CheckOut returns the id of the private working copy.
	CheckOut(ctx context.Context, repositoryID, objectID string) (string, error)
	CancelCheckOut(ctx context.Context, repositoryID, objectID string) error
	// CheckIn returns the id of the new version.
	CheckIn(ctx context.Context, repositoryID, objectID string, major bool, props *cmis.Properties, content *cmis.ContentStream, comment string) (string, error)
	GetAllVersions(ctx context.Context, repositoryID, objectID, filter string) ([]*cmis.ObjectData, error)
}

// MultiFilingService files objects in more than one folder.
type MultiFilingService interface {
	AddObjectToFolder(ctx context.Context, repositoryID, objectID, folderID string, allVersions bool) error
	RemoveObjectFromFolder(ctx context.Context, repositoryID, objectID, folderID string) error
}

// Services is a complete CMIS service endpoint.
type Services interface {
	RepositoryService
	ObjectService
	NavigationService
	DiscoveryService
	AclService
	PolicyService
	RelationshipService
	VersioningService
	MultiFilingService
}
