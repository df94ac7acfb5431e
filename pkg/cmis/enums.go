// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package cmis

import (
	"github.com/samber/oops"
)

// BaseTypeID identifies one of the CMIS base object types.
type BaseTypeID string

// Base object types. Item and secondary exist only in CMIS 1.1.
const (
	BaseTypeDocument     BaseTypeID = "cmis:document"
	BaseTypeFolder       BaseTypeID = "cmis:folder"
	BaseTypeRelationship BaseTypeID = "cmis:relationship"
	BaseTypePolicy       BaseTypeID = "cmis:policy"
	BaseTypeItem         BaseTypeID = "cmis:item"
	BaseTypeSecondary    BaseTypeID = "cmis:secondary"
)

// BaseTypeIDs lists every base type in declaration order.
var BaseTypeIDs = []BaseTypeID{
	BaseTypeDocument, BaseTypeFolder, BaseTypeRelationship,
	BaseTypePolicy, BaseTypeItem, BaseTypeSecondary,
}

// Valid reports whether b is a known base type.
func (b BaseTypeID) Valid() bool {
	switch b {
	case BaseTypeDocument, BaseTypeFolder, BaseTypeRelationship, BaseTypePolicy, BaseTypeItem, BaseTypeSecondary:
		return true
	}
	return false
}

// MinVersion returns the first protocol version that defines b.
func (b BaseTypeID) MinVersion() Version {
	if b == BaseTypeItem || b == BaseTypeSecondary {
		return Version11
	}
	return Version10
}

// LegalIn reports whether b can be written in a document of version v.
func (b BaseTypeID) LegalIn(v Version) bool {
	return b.Valid() && v.Supports(b.MinVersion())
}

// PropertyType is the closed set of CMIS property value types.
type PropertyType string

// Property value types.
const (
	PropertyTypeBoolean  PropertyType = "boolean"
	PropertyTypeID       PropertyType = "id"
	PropertyTypeInteger  PropertyType = "integer"
	PropertyTypeDateTime PropertyType = "datetime"
	PropertyTypeDecimal  PropertyType = "decimal"
	PropertyTypeHTML     PropertyType = "html"
	PropertyTypeString   PropertyType = "string"
	PropertyTypeURI      PropertyType = "uri"
)

// PropertyTypes lists every property type in wire order.
var PropertyTypes = []PropertyType{
	PropertyTypeBoolean, PropertyTypeID, PropertyTypeInteger, PropertyTypeDateTime,
	PropertyTypeDecimal, PropertyTypeHTML, PropertyTypeString, PropertyTypeURI,
}

// Valid reports whether t is a known property type.
func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeBoolean, PropertyTypeID, PropertyTypeInteger, PropertyTypeDateTime,
		PropertyTypeDecimal, PropertyTypeHTML, PropertyTypeString, PropertyTypeURI:
		return true
	}
	return false
}

// Cardinality says whether a property holds at most one or many values.
type Cardinality string

// Cardinalities.
const (
	CardinalitySingle Cardinality = "single"
	CardinalityMulti  Cardinality = "multi"
)

// Valid reports whether c is a known cardinality.
func (c Cardinality) Valid() bool {
	return c == CardinalitySingle || c == CardinalityMulti
}

// Updatability says when a property value may be changed.
type Updatability string

// Updatability values.
const (
	UpdatabilityReadOnly       Updatability = "readonly"
	UpdatabilityReadWrite      Updatability = "readwrite"
	UpdatabilityWhenCheckedOut Updatability = "whencheckedout"
	UpdatabilityOnCreate       Updatability = "oncreate"
)

// Valid reports whether u is a known updatability.
func (u Updatability) Valid() bool {
	switch u {
	case UpdatabilityReadOnly, UpdatabilityReadWrite, UpdatabilityWhenCheckedOut, UpdatabilityOnCreate:
		return true
	}
	return false
}

// ContentStreamAllowed says whether documents of a type carry content.
type ContentStreamAllowed string

// Content stream rules for document types.
const (
	ContentStreamNotAllowed ContentStreamAllowed = "notallowed"
	ContentStreamAllowedOpt ContentStreamAllowed = "allowed"
	ContentStreamRequired   ContentStreamAllowed = "required"
)

// Valid reports whether c is a known content stream rule.
func (c ContentStreamAllowed) Valid() bool {
	return c == ContentStreamNotAllowed || c == ContentStreamAllowedOpt || c == ContentStreamRequired
}

// DecimalPrecision is the precision constraint of a decimal property.
type DecimalPrecision string

// Decimal precisions.
const (
	DecimalPrecision32 DecimalPrecision = "32"
	DecimalPrecision64 DecimalPrecision = "64"
)

// Valid reports whether p is a known precision.
func (p DecimalPrecision) Valid() bool {
	return p == DecimalPrecision32 || p == DecimalPrecision64
}

// DateTimeResolution is the resolution constraint of a datetime property.
type DateTimeResolution string

// Datetime resolutions.
const (
	DateTimeResolutionYear DateTimeResolution = "year"
	DateTimeResolutionDate DateTimeResolution = "date"
	DateTimeResolutionTime DateTimeResolution = "time"
)

// Valid reports whether r is a known resolution.
func (r DateTimeResolution) Valid() bool {
	return r == DateTimeResolutionYear || r == DateTimeResolutionDate || r == DateTimeResolutionTime
}

// ChangeType classifies a change-log entry.
type ChangeType string

// Change types.
const (
	ChangeTypeCreated  ChangeType = "created"
	ChangeTypeUpdated  ChangeType = "updated"
	ChangeTypeDeleted  ChangeType = "deleted"
	ChangeTypeSecurity ChangeType = "security"
)

// Valid reports whether c is a known change type.
func (c ChangeType) Valid() bool {
	switch c {
	case ChangeTypeCreated, ChangeTypeUpdated, ChangeTypeDeleted, ChangeTypeSecurity:
		return true
	}
	return false
}

// AclPropagation describes how a repository propagates ACL changes.
type AclPropagation string

// ACL propagation modes.
const (
	AclPropagationRepositoryDetermined AclPropagation = "repositorydetermined"
	AclPropagationObjectOnly           AclPropagation = "objectonly"
	AclPropagationPropagate            AclPropagation = "propagate"
)

// Valid reports whether a is a known propagation mode.
func (a AclPropagation) Valid() bool {
	return a == AclPropagationRepositoryDetermined || a == AclPropagationObjectOnly || a == AclPropagationPropagate
}

// SupportedPermissions says which permission sets a repository exposes.
type SupportedPermissions string

// Supported permission sets.
const (
	SupportedPermissionsBasic      SupportedPermissions = "basic"
	SupportedPermissionsRepository SupportedPermissions = "repository"
	SupportedPermissionsBoth       SupportedPermissions = "both"
)

// Valid reports whether s is a known permission set.
func (s SupportedPermissions) Valid() bool {
	return s == SupportedPermissionsBasic || s == SupportedPermissionsRepository || s == SupportedPermissionsBoth
}

// CapabilityContentStreamUpdates says when content may be replaced.
type CapabilityContentStreamUpdates string

// Content stream update capabilities.
const (
	ContentStreamUpdatesAnytime CapabilityContentStreamUpdates = "anytime"
	ContentStreamUpdatesPWCOnly CapabilityContentStreamUpdates = "pwconly"
	ContentStreamUpdatesNone    CapabilityContentStreamUpdates = "none"
)

// Valid reports whether c is known.
func (c CapabilityContentStreamUpdates) Valid() bool {
	return c == ContentStreamUpdatesAnytime || c == ContentStreamUpdatesPWCOnly || c == ContentStreamUpdatesNone
}

// CapabilityChanges says what the change log records.
type CapabilityChanges string

// Change log capabilities.
const (
	ChangesNone          CapabilityChanges = "none"
	ChangesObjectIDsOnly CapabilityChanges = "objectidsonly"
	ChangesProperties    CapabilityChanges = "properties"
	ChangesAll           CapabilityChanges = "all"
)

// Valid reports whether c is known.
func (c CapabilityChanges) Valid() bool {
	switch c {
	case ChangesNone, ChangesObjectIDsOnly, ChangesProperties, ChangesAll:
		return true
	}
	return false
}

// CapabilityRenditions says whether renditions can be read.
type CapabilityRenditions string

// Rendition capabilities.
const (
	RenditionsNone CapabilityRenditions = "none"
	RenditionsRead CapabilityRenditions = "read"
)

// Valid reports whether c is known.
func (c CapabilityRenditions) Valid() bool {
	return c == RenditionsNone || c == RenditionsRead
}

// CapabilityQuery says which query forms a repository supports.
type CapabilityQuery string

// Query capabilities.
const (
	QueryNone         CapabilityQuery = "none"
	QueryMetadataOnly CapabilityQuery = "metadataonly"
	QueryFulltextOnly CapabilityQuery = "fulltextonly"
	QueryBothSeparate CapabilityQuery = "bothseparate"
	QueryBothCombined CapabilityQuery = "bothcombined"
)

// Valid reports whether c is known.
func (c CapabilityQuery) Valid() bool {
	switch c {
	case QueryNone, QueryMetadataOnly, QueryFulltextOnly, QueryBothSeparate, QueryBothCombined:
		return true
	}
	return false
}

// CapabilityJoin says which query joins are supported.
type CapabilityJoin string

// Join capabilities.
const (
	JoinNone          CapabilityJoin = "none"
	JoinInnerOnly     CapabilityJoin = "inneronly"
	JoinInnerAndOuter CapabilityJoin = "innerandouter"
)

// Valid reports whether c is known.
func (c CapabilityJoin) Valid() bool {
	return c == JoinNone || c == JoinInnerOnly || c == JoinInnerAndOuter
}

// CapabilityAcl says whether ACLs can be read or managed.
type CapabilityAcl string

// ACL capabilities.
const (
	AclNone     CapabilityAcl = "none"
	AclDiscover CapabilityAcl = "discover"
	AclManage   CapabilityAcl = "manage"
)

// Valid reports whether c is known.
func (c CapabilityAcl) Valid() bool {
	return c == AclNone || c == AclDiscover || c == AclManage
}

// CapabilityOrderBy says which properties can be used to sort (CMIS 1.1).
type CapabilityOrderBy string

// Order-by capabilities.
const (
	OrderByNone   CapabilityOrderBy = "none"
	OrderByCommon CapabilityOrderBy = "common"
	OrderByCustom CapabilityOrderBy = "custom"
)

// Valid reports whether c is known.
func (c CapabilityOrderBy) Valid() bool {
	return c == OrderByNone || c == OrderByCommon || c == OrderByCustom
}

// IncludeRelationships selects which relationships are returned with objects.
type IncludeRelationships string

// Relationship inclusion modes.
const (
	IncludeRelationshipsNone   IncludeRelationships = "none"
	IncludeRelationshipsSource IncludeRelationships = "source"
	IncludeRelationshipsTarget IncludeRelationships = "target"
	IncludeRelationshipsBoth   IncludeRelationships = "both"
)

// Valid reports whether i is known.
func (i IncludeRelationships) Valid() bool {
	switch i {
	case IncludeRelationshipsNone, IncludeRelationshipsSource, IncludeRelationshipsTarget, IncludeRelationshipsBoth:
		return true
	}
	return false
}

// VersioningState is the state a new document version is created in.
type VersioningState string

// Versioning states.
const (
	VersioningStateNone       VersioningState = "none"
	VersioningStateCheckedOut VersioningState = "checkedout"
	VersioningStateMajor      VersioningState = "major"
	VersioningStateMinor      VersioningState = "minor"
)

// Valid reports whether s is known.
func (s VersioningState) Valid() bool {
	switch s {
	case VersioningStateNone, VersioningStateCheckedOut, VersioningStateMajor, VersioningStateMinor:
		return true
	}
	return false
}

// ParseEnum converts s into the enum E, failing with a malformed-input
// error when valid rejects it. kind names the enum in the error.
func ParseEnum[E ~string](kind, s string, valid func(E) bool) (E, error) {
	e := E(s)
	if !valid(e) {
		return "", oops.Code(CodeMalformedInput).
			With("enum", kind).
			With("value", s).
			Wrapf(ErrMalformedInput, "unknown %s %q", kind, s)
	}
	return e, nil
}
