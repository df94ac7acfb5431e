// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package cmis

import "slices"

// Principal identifies who an ACE grants permissions to.
type Principal struct {
	ExtensionHolder
	ID string
}

// Ace is one access control entry.
type Ace struct {
	ExtensionHolder
	Principal   Principal
	Permissions []string
	// Direct is false for entries inherited from elsewhere.
	Direct bool
}

// NewAce creates a direct entry for principal.
func NewAce(principal string, permissions ...string) *Ace {
	return &Ace{
		Principal:   Principal{ID: principal},
		Permissions: slices.Clone(permissions),
		Direct:      true,
	}
}

// Acl is an ordered list of entries. IsExact is nil when the repository
// cannot tell whether the list is the complete effective ACL.
type Acl struct {
	ExtensionHolder
	Aces    []*Ace
	IsExact *bool
}

// Validate checks that every entry names a principal and at least one
// permission.
func (a *Acl) Validate() error {
	for i, ace := range a.Aces {
		if ace == nil {
			return invalidData("ace", "", "entry %d is nil", i)
		}
		if ace.Principal.ID == "" {
			return invalidData("ace", "", "entry %d has no principal", i)
		}
		if len(ace.Permissions) == 0 {
			return invalidData("ace", ace.Principal.ID, "entry %d has no permissions", i)
		}
	}
	return nil
}

// AceEqual compares two entries.
func AceEqual(a, b *Ace) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Principal.ID == b.Principal.ID &&
		ExtensionsEqual(a.Principal.Extensions(), b.Principal.Extensions()) &&
		slices.Equal(a.Permissions, b.Permissions) &&
		a.Direct == b.Direct &&
		ExtensionsEqual(a.Extensions(), b.Extensions())
}

// AclEqual compares two ACLs entry by entry, in order.
func AclEqual(a, b *Acl) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if len(a.Aces) != len(b.Aces) || !boolPtrEqual(a.IsExact, b.IsExact) {
		return false
	}
	for i := range a.Aces {
		if !AceEqual(a.Aces[i], b.Aces[i]) {
			return false
		}
	}
	return ExtensionsEqual(a.Extensions(), b.Extensions())
}
