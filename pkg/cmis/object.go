// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package cmis

import (
	"math/big"
	"slices"
	"time"
)

// ObjectData is one CMIS object as it travels over the wire. Every part
// except Properties is optional and nil when not requested.
type ObjectData struct {
	ExtensionHolder
	Properties       *Properties
	AllowableActions *AllowableActions
	Acl              *Acl
	PolicyIDs        *PolicyIDList
	Renditions       []*Rendition
	// Relationships are never expanded beyond one level.
	Relationships   []*ObjectData
	ChangeEventInfo *ChangeEventInfo
}

// ID returns cmis:objectId, or "" when properties were not fetched.
func (o *ObjectData) ID() string {
	return o.Properties.ObjectID()
}

// BaseTypeID returns cmis:baseTypeId.
func (o *ObjectData) BaseTypeID() BaseTypeID {
	return o.Properties.BaseTypeID()
}

// PolicyIDList holds the ids of policies applied to an object.
type PolicyIDList struct {
	ExtensionHolder
	IDs []string
}

// ChangeEventInfo describes the change-log entry an object stands for.
type ChangeEventInfo struct {
	ExtensionHolder
	ChangeType ChangeType
	ChangeTime time.Time
}

// Rendition describes an alternate representation of a document.
type Rendition struct {
	ExtensionHolder
	StreamID            string
	MimeType            string
	Length              *big.Int
	Kind                string
	Title               string
	Height              *big.Int
	Width               *big.Int
	RenditionDocumentID string
}

// ObjectDataEqual compares every part of two objects, recursing into
// relationships.
func ObjectDataEqual(a, b *ObjectData) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !PropertiesEqual(a.Properties, b.Properties) ||
		!AllowableActionsEqual(a.AllowableActions, b.AllowableActions) ||
		!AclEqual(a.Acl, b.Acl) ||
		!PolicyIDListEqual(a.PolicyIDs, b.PolicyIDs) ||
		!ChangeEventInfoEqual(a.ChangeEventInfo, b.ChangeEventInfo) {
		return false
	}
	if len(a.Renditions) != len(b.Renditions) || len(a.Relationships) != len(b.Relationships) {
		return false
	}
	for i := range a.Renditions {
		if !RenditionEqual(a.Renditions[i], b.Renditions[i]) {
			return false
		}
	}
	for i := range a.Relationships {
		if !ObjectDataEqual(a.Relationships[i], b.Relationships[i]) {
			return false
		}
	}
	return ExtensionsEqual(a.Extensions(), b.Extensions())
}

// PolicyIDListEqual compares two policy id lists.
func PolicyIDListEqual(a, b *PolicyIDList) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return slices.Equal(a.IDs, b.IDs) && ExtensionsEqual(a.Extensions(), b.Extensions())
}

// ChangeEventInfoEqual compares change type and instant. Zone offsets must
// match too.
func ChangeEventInfoEqual(a, b *ChangeEventInfo) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ChangeType == b.ChangeType &&
		ValueEqual(a.ChangeTime, b.ChangeTime) &&
		ExtensionsEqual(a.Extensions(), b.Extensions())
}

// RenditionEqual compares two renditions.
func RenditionEqual(a, b *Rendition) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.StreamID == b.StreamID &&
		a.MimeType == b.MimeType &&
		bigEqual(a.Length, b.Length) &&
		a.Kind == b.Kind &&
		a.Title == b.Title &&
		bigEqual(a.Height, b.Height) &&
		bigEqual(a.Width, b.Width) &&
		a.RenditionDocumentID == b.RenditionDocumentID &&
		ExtensionsEqual(a.Extensions(), b.Extensions())
}

// AllowableActionsEqual compares two action sets and their extensions.
func AllowableActionsEqual(a, b *AllowableActions) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return slices.Equal(a.List(), b.List()) && ExtensionsEqual(a.Extensions(), b.Extensions())
}
