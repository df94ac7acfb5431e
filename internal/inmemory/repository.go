// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

// Package inmemory is a complete CMIS repository held in process memory.
// It implements every binding service over a folder tree with multi-filing,
// version series with private working copies, ACLs, policies,
// relationships, renditions and a change log, and can snapshot its state
// to CBOR.
package inmemory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/gocmis/gocmis/internal/binding"
	"github.com/gocmis/gocmis/internal/typesys"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// Repository defaults.
const (
	DefaultPrincipal = "system"
	RootFolderName   = "root"
	ProductName      = "GoCMIS In-Memory Repository"
	VendorName       = "GoCMIS"
)

// Options configures a Repository.
type Options struct {
	ID          string
	Name        string
	Description string
	// Version is the CMIS version the repository implements. Defaults to
	// 1.1.
	Version cmis.Version
	// Types is the type system. Nil means the standard base types of
	// Version.
	Types *typesys.Registry
	// CompressContent keeps content streams zstd-compressed.
	CompressContent bool
	// Principal is recorded as creator and modifier of objects.
	Principal      string
	ProductVersion string
	Logger         *slog.Logger
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// Repository is an in-memory CMIS repository. It is safe for concurrent
// use.
type Repository struct {
	mu sync.RWMutex

	id          string
	name        string
	description string
	version     cmis.Version
	product     string
	principal   string
	compress    bool
	types       *typesys.Registry
	log         *slog.Logger
	now         func() time.Time

	rootID   string
	objects  map[string]*object
	series   map[string]*versionSeries
	children map[string][]string
	changes  []*change
}

var _ binding.Services = (*Repository)(nil)

// New creates a repository holding only its root folder.
func New(opts Options) (*Repository, error) {
	if opts.ID == "" {
		return nil, oops.Code(CodeInvalidOptions).Errorf("repository id is required")
	}
	if opts.Version == "" {
		opts.Version = cmis.Version11
	}
	if !opts.Version.Valid() {
		return nil, oops.Code(CodeInvalidOptions).With("version", string(opts.Version)).Errorf("unsupported CMIS version %q", opts.Version)
	}
	if opts.Types == nil {
		types, err := typesys.NewStandardRegistry(opts.Version)
		if err != nil {
			return nil, oops.Code(CodeInvalidOptions).Wrap(err)
		}
		opts.Types = types
	}
	if opts.Name == "" {
		opts.Name = opts.ID
	}
	if opts.Principal == "" {
		opts.Principal = DefaultPrincipal
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	r := &Repository{
		id:          opts.ID,
		name:        opts.Name,
		description: opts.Description,
		version:     opts.Version,
		product:     opts.ProductVersion,
		principal:   opts.Principal,
		compress:    opts.CompressContent,
		types:       opts.Types,
		log:         opts.Logger.With("repository_id", opts.ID),
		now:         opts.Now,
	}
	r.reset()
	return r, nil
}

// reset drops all objects and creates a fresh root folder.
func (r *Repository) reset() {
	r.objects = map[string]*object{}
	r.series = map[string]*versionSeries{}
	r.children = map[string][]string{}
	r.changes = nil

	now := r.now()
	root := &object{
		id:     newID(now),
		base:   cmis.BaseTypeFolder,
		typeID: string(cmis.BaseTypeFolder),
		props:  cmis.NewProperties(cmis.NewStringProperty(cmis.PropName, RootFolderName)),
		aces:   []*cmis.Ace{cmis.NewAce(PrincipalAnyone, PermissionAll)},
	}
	r.stamp(root, now, true)
	r.objects[root.id] = root
	r.rootID = root.id
}

// ID returns the repository id.
func (r *Repository) ID() string { return r.id }

// RootFolderID returns the id of the root folder.
func (r *Repository) RootFolderID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rootID
}

// Version returns the CMIS version the repository implements.
func (r *Repository) Version() cmis.Version { return r.version }

// Types returns the type registry.
func (r *Repository) Types() *typesys.Registry { return r.types }

// begin validates the common arguments of a service call.
func (r *Repository) begin(ctx context.Context, repositoryID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if repositoryID != r.id {
		return notFound("unknown repository %q", repositoryID)
	}
	return nil
}

// GetRepositoryInfo implements [binding.RepositoryService].
func (r *Repository) GetRepositoryInfo(ctx context.Context, repositoryID string) (*cmis.RepositoryInfo, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	info := &cmis.RepositoryInfo{
		ID:                   r.id,
		Name:                 r.name,
		Description:          r.description,
		VendorName:           VendorName,
		ProductName:          ProductName,
		ProductVersion:       r.product,
		RootFolderID:         r.rootID,
		LatestChangeLogToken: r.latestToken(),
		CmisVersionSupported: string(r.version),
		ChangesIncomplete:    cmis.Bool(false),
		ChangesOnType: []cmis.BaseTypeID{
			cmis.BaseTypeDocument, cmis.BaseTypeFolder, cmis.BaseTypeRelationship, cmis.BaseTypePolicy,
		},
		PrincipalAnonymous: "anonymous",
		PrincipalAnyone:    PrincipalAnyone,
		Capabilities: &cmis.RepositoryCapabilities{
			Acl:                  cmis.AclManage,
			Changes:              cmis.ChangesProperties,
			ContentStreamUpdates: cmis.ContentStreamUpdatesAnytime,
			GetDescendants:       true,
			GetFolderTree:        true,
			MultiFiling:          true,
			PWCUpdatable:         true,
			Query:                cmis.QueryMetadataOnly,
			Renditions:           cmis.RenditionsRead,
			Join:                 cmis.JoinNone,
		},
		AclCapabilities: aclCapabilities(),
	}
	if r.version.Is11() {
		info.Capabilities.OrderBy = cmis.OrderByCommon
		info.Capabilities.CreatablePropertyTypes = &cmis.CreatablePropertyTypes{}
		info.Capabilities.NewTypeSettableAttributes = &cmis.NewTypeSettableAttributes{}
	}
	return info, nil
}

// GetTypeChildren implements [binding.RepositoryService].
func (r *Repository) GetTypeChildren(ctx context.Context, repositoryID, typeID string, includePropertyDefinitions bool, page binding.Paging) (*cmis.TypeDefinitionList, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	list, err := r.types.Children(typeID, includePropertyDefinitions, page.MaxItems, page.SkipCount)
	if err != nil {
		return nil, typeError(err)
	}
	return list, nil
}

// GetTypeDescendants implements [binding.RepositoryService].
func (r *Repository) GetTypeDescendants(ctx context.Context, repositoryID, typeID string, depth int, includePropertyDefinitions bool) ([]*cmis.TypeDefinitionContainer, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	if depth == 0 {
		return nil, invalidArgument("depth must not be 0")
	}
	tree, err := r.types.Descendants(typeID, depth, includePropertyDefinitions)
	if err != nil {
		return nil, typeError(err)
	}
	return tree, nil
}

// GetTypeDefinition implements [binding.RepositoryService].
func (r *Repository) GetTypeDefinition(ctx context.Context, repositoryID, typeID string) (*cmis.TypeDefinition, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	td, ok := r.types.Type(typeID)
	if !ok {
		return nil, notFound("type %q", typeID)
	}
	return td, nil
}
