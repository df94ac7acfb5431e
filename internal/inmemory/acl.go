// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package inmemory

import (
	"context"
	"slices"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// Basic permissions and the principal that stands for every user.
const (
	PermissionRead  = "cmis:read"
	PermissionWrite = "cmis:write"
	PermissionAll   = "cmis:all"

	PrincipalAnyone = "anyone"
)

var basicPermissions = []string{PermissionRead, PermissionWrite, PermissionAll}

func aclCapabilities() *cmis.AclCapabilities {
	mapping := func(key string, perms ...string) *cmis.PermissionMapping {
		return &cmis.PermissionMapping{Key: key, Permissions: perms}
	}
	return &cmis.AclCapabilities{
		SupportedPermissions: cmis.SupportedPermissionsBasic,
		Propagation:          cmis.AclPropagationObjectOnly,
		Permissions: []*cmis.PermissionDefinition{
			{ID: PermissionRead, Description: "Read"},
			{ID: PermissionWrite, Description: "Write"},
			{ID: PermissionAll, Description: "All"},
		},
		PermissionMapping: []*cmis.PermissionMapping{
			mapping("canGetProperties.Object", PermissionRead),
			mapping("canGetChildren.Folder", PermissionRead),
			mapping("canViewContent.Object", PermissionRead),
			mapping("canUpdateProperties.Object", PermissionWrite),
			mapping("canSetContent.Document", PermissionWrite),
			mapping("canCreateDocument.Folder", PermissionWrite),
			mapping("canCreateFolder.Folder", PermissionWrite),
			mapping("canDelete.Object", PermissionWrite),
			mapping("canApplyACL.Object", PermissionAll),
		},
	}
}

// acl returns the stored ACL of o. Nothing is inherited, so it is exact.
func (r *Repository) acl(o *object) *cmis.Acl {
	out := &cmis.Acl{IsExact: cmis.Bool(true)}
	for _, ace := range o.aces {
		out.Aces = append(out.Aces, cmis.NewAce(ace.Principal.ID, ace.Permissions...))
	}
	return out
}

// GetAcl implements [binding.AclService]. Only basic permissions exist, so
// onlyBasicPermissions changes nothing.
func (r *Repository) GetAcl(ctx context.Context, repositoryID, objectID string, _ bool) (*cmis.Acl, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, err := r.lookup(objectID)
	if err != nil {
		return nil, err
	}
	return r.acl(o), nil
}

// ApplyAcl implements [binding.AclService]. Entries are merged per
// principal; removing a permission the principal does not hold is an
// error. Propagation is always object-only.
func (r *Repository) ApplyAcl(ctx context.Context, repositoryID, objectID string, add, remove *cmis.Acl, propagation cmis.AclPropagation) (*cmis.Acl, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	if propagation != "" && !propagation.Valid() {
		return nil, invalidArgument("unknown ACL propagation %q", propagation)
	}
	if propagation == cmis.AclPropagationPropagate {
		return nil, constraint("ACL propagation %q is not supported", propagation)
	}
	for _, acl := range []*cmis.Acl{add, remove} {
		if acl == nil {
			continue
		}
		if err := acl.Validate(); err != nil {
			return nil, invalidArgument("%v", err)
		}
		for _, ace := range acl.Aces {
			for _, perm := range ace.Permissions {
				if !slices.Contains(basicPermissions, perm) {
					return nil, constraint("unsupported permission %q", perm)
				}
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	o, err := r.lookup(objectID)
	if err != nil {
		return nil, err
	}
	if td, ok := r.types.Type(o.typeID); ok && !td.ControllableACL() {
		return nil, constraint("type %q is not ACL-controllable", o.typeID)
	}

	aces := make([]*cmis.Ace, 0, len(o.aces))
	for _, ace := range o.aces {
		aces = append(aces, cmis.NewAce(ace.Principal.ID, ace.Permissions...))
	}
	if remove != nil {
		for _, rm := range remove.Aces {
			i := slices.IndexFunc(aces, func(a *cmis.Ace) bool { return a.Principal.ID == rm.Principal.ID })
			if i < 0 {
				return nil, constraint("principal %q has no entry to remove", rm.Principal.ID)
			}
			for _, perm := range rm.Permissions {
				j := slices.Index(aces[i].Permissions, perm)
				if j < 0 {
					return nil, constraint("principal %q does not hold %q", rm.Principal.ID, perm)
				}
				aces[i].Permissions = slices.Delete(aces[i].Permissions, j, j+1)
			}
		}
	}
	if add != nil {
		for _, ad := range add.Aces {
			i := slices.IndexFunc(aces, func(a *cmis.Ace) bool { return a.Principal.ID == ad.Principal.ID })
			if i < 0 {
				aces = append(aces, cmis.NewAce(ad.Principal.ID))
				i = len(aces) - 1
			}
			for _, perm := range ad.Permissions {
				if !slices.Contains(aces[i].Permissions, perm) {
					aces[i].Permissions = append(aces[i].Permissions, perm)
				}
			}
		}
	}
	o.aces = slices.DeleteFunc(aces, func(a *cmis.Ace) bool { return len(a.Permissions) == 0 })
	r.record(o, cmis.ChangeTypeSecurity)
	return r.acl(o), nil
}

// ApplyPolicy implements [binding.PolicyService].
func (r *Repository) ApplyPolicy(ctx context.Context, repositoryID, policyID, objectID string) error {
	if err := r.begin(ctx, repositoryID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	policy, o, err := r.policyTarget(policyID, objectID)
	if err != nil {
		return err
	}
	if td, ok := r.types.Type(o.typeID); ok && !td.ControllablePolicy() {
		return constraint("type %q is not policy-controllable", o.typeID)
	}
	if slices.Contains(o.policies, policy.id) {
		return nil
	}
	o.policies = append(o.policies, policy.id)
	r.record(o, cmis.ChangeTypeSecurity)
	return nil
}

// RemovePolicy implements [binding.PolicyService].
func (r *Repository) RemovePolicy(ctx context.Context, repositoryID, policyID, objectID string) error {
	if err := r.begin(ctx, repositoryID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	policy, o, err := r.policyTarget(policyID, objectID)
	if err != nil {
		return err
	}
	i := slices.Index(o.policies, policy.id)
	if i < 0 {
		return constraint("policy %q is not applied to %q", policyID, objectID)
	}
	o.policies = slices.Delete(o.policies, i, i+1)
	r.record(o, cmis.ChangeTypeSecurity)
	return nil
}

func (r *Repository) policyTarget(policyID, objectID string) (policy, o *object, err error) {
	if policy, err = r.lookup(policyID); err != nil {
		return nil, nil, err
	}
	if policy.base != cmis.BaseTypePolicy {
		return nil, nil, invalidArgument("object %q is not a policy", policyID)
	}
	if o, err = r.lookup(objectID); err != nil {
		return nil, nil, err
	}
	return policy, o, nil
}

// GetAppliedPolicies implements [binding.PolicyService].
func (r *Repository) GetAppliedPolicies(ctx context.Context, repositoryID, objectID, filter string) ([]*cmis.ObjectData, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, err := r.lookup(objectID)
	if err != nil {
		return nil, err
	}
	f := parsePropertyFilter(filter)
	out := make([]*cmis.ObjectData, 0, len(o.policies))
	for _, id := range o.policies {
		p, ok := r.objects[id]
		if !ok {
			continue
		}
		props, err := r.applyFilter(f, p.typeID, r.properties(p))
		if err != nil {
			return nil, err
		}
		out = append(out, &cmis.ObjectData{Properties: props})
	}
	return out, nil
}

// policyInUse reports whether any object has policyID applied.
func (r *Repository) policyInUse(policyID string) bool {
	for _, o := range r.objects {
		if slices.Contains(o.policies, policyID) {
			return true
		}
	}
	return false
}
