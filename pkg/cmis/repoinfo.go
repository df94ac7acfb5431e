// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package cmis

import "slices"

// RepositoryInfo describes a repository. Clients fetch it once per session
// and treat it as an immutable snapshot.
type RepositoryInfo struct {
	ExtensionHolder
	ID                   string
	Name                 string
	Description          string
	VendorName           string
	ProductName          string
	ProductVersion       string
	RootFolderID         string
	LatestChangeLogToken string
	Capabilities         *RepositoryCapabilities
	AclCapabilities      *AclCapabilities
	CmisVersionSupported string
	ThinClientURI        string
	ChangesIncomplete    *bool
	ChangesOnType        []BaseTypeID
	PrincipalAnonymous   string
	PrincipalAnyone      string
	// ExtensionFeatures is CMIS 1.1 only.
	ExtensionFeatures []*ExtensionFeature
}

// RepositoryCapabilities holds the capability flags of a repository.
// OrderBy, CreatablePropertyTypes and NewTypeSettableAttributes are CMIS
// 1.1 only.
type RepositoryCapabilities struct {
	ExtensionHolder
	Acl                       CapabilityAcl
	AllVersionsSearchable     bool
	Changes                   CapabilityChanges
	ContentStreamUpdates      CapabilityContentStreamUpdates
	GetDescendants            bool
	GetFolderTree             bool
	OrderBy                   CapabilityOrderBy
	MultiFiling               bool
	PWCSearchable             bool
	PWCUpdatable              bool
	Query                     CapabilityQuery
	Renditions                CapabilityRenditions
	Unfiling                  bool
	VersionSpecificFiling     bool
	Join                      CapabilityJoin
	CreatablePropertyTypes    *CreatablePropertyTypes
	NewTypeSettableAttributes *NewTypeSettableAttributes
}

// CreatablePropertyTypes lists the property types clients may use in new
// types.
type CreatablePropertyTypes struct {
	ExtensionHolder
	CanCreate []PropertyType
}

// NewTypeSettableAttributes says which type attributes clients may set
// when creating types.
type NewTypeSettableAttributes struct {
	ExtensionHolder
	ID                       bool
	LocalName                bool
	LocalNamespace           bool
	DisplayName              bool
	QueryName                bool
	Description              bool
	Creatable                bool
	Fileable                 bool
	Queryable                bool
	FulltextIndexed          bool
	IncludedInSupertypeQuery bool
	ControllablePolicy       bool
	ControllableACL          bool
}

// AclCapabilities describes the permission model of a repository.
type AclCapabilities struct {
	ExtensionHolder
	SupportedPermissions SupportedPermissions
	Propagation          AclPropagation
	Permissions          []*PermissionDefinition
	PermissionMapping    []*PermissionMapping
}

// PermissionDefinition names one repository permission.
type PermissionDefinition struct {
	ExtensionHolder
	ID          string
	Description string
}

// PermissionMapping maps an allowable-action key to the permissions it
// requires.
type PermissionMapping struct {
	ExtensionHolder
	Key         string
	Permissions []string
}

// ExtensionFeature announces a vendor feature. CMIS 1.1 only.
type ExtensionFeature struct {
	ExtensionHolder
	ID           string
	URL          string
	CommonName   string
	VersionLabel string
	Description  string
	FeatureData  []FeatureData
}

// FeatureData is one key/value pair of an extension feature.
type FeatureData struct {
	Key   string
	Value string
}

// RepositoryInfoEqual compares every field of two repository descriptors.
func RepositoryInfoEqual(a, b *RepositoryInfo) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.ID != b.ID || a.Name != b.Name || a.Description != b.Description ||
		a.VendorName != b.VendorName || a.ProductName != b.ProductName || a.ProductVersion != b.ProductVersion ||
		a.RootFolderID != b.RootFolderID || a.LatestChangeLogToken != b.LatestChangeLogToken ||
		a.CmisVersionSupported != b.CmisVersionSupported || a.ThinClientURI != b.ThinClientURI ||
		!boolPtrEqual(a.ChangesIncomplete, b.ChangesIncomplete) || !slices.Equal(a.ChangesOnType, b.ChangesOnType) ||
		a.PrincipalAnonymous != b.PrincipalAnonymous || a.PrincipalAnyone != b.PrincipalAnyone {
		return false
	}
	if !RepositoryCapabilitiesEqual(a.Capabilities, b.Capabilities) || !AclCapabilitiesEqual(a.AclCapabilities, b.AclCapabilities) {
		return false
	}
	if len(a.ExtensionFeatures) != len(b.ExtensionFeatures) {
		return false
	}
	for i := range a.ExtensionFeatures {
		if !ExtensionFeatureEqual(a.ExtensionFeatures[i], b.ExtensionFeatures[i]) {
			return false
		}
	}
	return ExtensionsEqual(a.Extensions(), b.Extensions())
}

// RepositoryCapabilitiesEqual compares two capability sets.
func RepositoryCapabilitiesEqual(a, b *RepositoryCapabilities) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Acl != b.Acl || a.AllVersionsSearchable != b.AllVersionsSearchable || a.Changes != b.Changes ||
		a.ContentStreamUpdates != b.ContentStreamUpdates || a.GetDescendants != b.GetDescendants ||
		a.GetFolderTree != b.GetFolderTree || a.OrderBy != b.OrderBy || a.MultiFiling != b.MultiFiling ||
		a.PWCSearchable != b.PWCSearchable || a.PWCUpdatable != b.PWCUpdatable || a.Query != b.Query ||
		a.Renditions != b.Renditions || a.Unfiling != b.Unfiling ||
		a.VersionSpecificFiling != b.VersionSpecificFiling || a.Join != b.Join {
		return false
	}
	if (a.CreatablePropertyTypes == nil) != (b.CreatablePropertyTypes == nil) {
		return false
	}
	if a.CreatablePropertyTypes != nil {
		if !slices.Equal(a.CreatablePropertyTypes.CanCreate, b.CreatablePropertyTypes.CanCreate) ||
			!ExtensionsEqual(a.CreatablePropertyTypes.Extensions(), b.CreatablePropertyTypes.Extensions()) {
			return false
		}
	}
	if (a.NewTypeSettableAttributes == nil) != (b.NewTypeSettableAttributes == nil) {
		return false
	}
	if a.NewTypeSettableAttributes != nil {
		if !newTypeSettableAttributesEqual(a.NewTypeSettableAttributes, b.NewTypeSettableAttributes) {
			return false
		}
	}
	return ExtensionsEqual(a.Extensions(), b.Extensions())
}

func newTypeSettableAttributesEqual(a, b *NewTypeSettableAttributes) bool {
	return a.ID == b.ID && a.LocalName == b.LocalName && a.LocalNamespace == b.LocalNamespace &&
		a.DisplayName == b.DisplayName && a.QueryName == b.QueryName && a.Description == b.Description &&
		a.Creatable == b.Creatable && a.Fileable == b.Fileable && a.Queryable == b.Queryable &&
		a.FulltextIndexed == b.FulltextIndexed && a.IncludedInSupertypeQuery == b.IncludedInSupertypeQuery &&
		a.ControllablePolicy == b.ControllablePolicy && a.ControllableACL == b.ControllableACL &&
		ExtensionsEqual(a.Extensions(), b.Extensions())
}

// AclCapabilitiesEqual compares two ACL capability descriptors.
func AclCapabilitiesEqual(a, b *AclCapabilities) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.SupportedPermissions != b.SupportedPermissions || a.Propagation != b.Propagation ||
		len(a.Permissions) != len(b.Permissions) || len(a.PermissionMapping) != len(b.PermissionMapping) {
		return false
	}
	for i := range a.Permissions {
		x, y := a.Permissions[i], b.Permissions[i]
		if x.ID != y.ID || x.Description != y.Description || !ExtensionsEqual(x.Extensions(), y.Extensions()) {
			return false
		}
	}
	for i := range a.PermissionMapping {
		x, y := a.PermissionMapping[i], b.PermissionMapping[i]
		if x.Key != y.Key || !slices.Equal(x.Permissions, y.Permissions) || !ExtensionsEqual(x.Extensions(), y.Extensions()) {
			return false
		}
	}
	return ExtensionsEqual(a.Extensions(), b.Extensions())
}

// ExtensionFeatureEqual compares two extension features.
func ExtensionFeatureEqual(a, b *ExtensionFeature) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID == b.ID && a.URL == b.URL && a.CommonName == b.CommonName &&
		a.VersionLabel == b.VersionLabel && a.Description == b.Description &&
		slices.Equal(a.FeatureData, b.FeatureData) &&
		ExtensionsEqual(a.Extensions(), b.Extensions())
}
