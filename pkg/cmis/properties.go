// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package cmis

import (
	"math/big"
	"time"
)

// Well-known property ids.
const (
	PropName                      = "cmis:name"
	PropDescription               = "cmis:description"
	PropObjectID                  = "cmis:objectId"
	PropBaseTypeID                = "cmis:baseTypeId"
	PropObjectTypeID              = "cmis:objectTypeId"
	PropSecondaryObjectTypeIDs    = "cmis:secondaryObjectTypeIds"
	PropCreatedBy                 = "cmis:createdBy"
	PropCreationDate              = "cmis:creationDate"
	PropLastModifiedBy            = "cmis:lastModifiedBy"
	PropLastModificationDate      = "cmis:lastModificationDate"
	PropChangeToken               = "cmis:changeToken"
	PropIsImmutable               = "cmis:isImmutable"
	PropIsLatestVersion           = "cmis:isLatestVersion"
	PropIsMajorVersion            = "cmis:isMajorVersion"
	PropIsLatestMajorVersion      = "cmis:isLatestMajorVersion"
	PropIsPrivateWorkingCopy      = "cmis:isPrivateWorkingCopy"
	PropVersionLabel              = "cmis:versionLabel"
	PropVersionSeriesID           = "cmis:versionSeriesId"
	PropIsVersionSeriesCheckedOut = "cmis:isVersionSeriesCheckedOut"
	PropVersionSeriesCheckedOutBy = "cmis:versionSeriesCheckedOutBy"
	PropVersionSeriesCheckedOutID = "cmis:versionSeriesCheckedOutId"
	PropCheckinComment            = "cmis:checkinComment"
	PropContentStreamLength       = "cmis:contentStreamLength"
	PropContentStreamMimeType     = "cmis:contentStreamMimeType"
	PropContentStreamFileName     = "cmis:contentStreamFileName"
	PropContentStreamID           = "cmis:contentStreamId"
	PropContentStreamHash         = "cmis:contentStreamHash"
	PropParentID                  = "cmis:parentId"
	PropPath                      = "cmis:path"
	PropAllowedChildObjectTypeIDs = "cmis:allowedChildObjectTypeIds"
	PropSourceID                  = "cmis:sourceId"
	PropTargetID                  = "cmis:targetId"
	PropPolicyText                = "cmis:policyText"
)

// properties11 are the standard properties introduced by CMIS 1.1.
var properties11 = map[string]struct{}{
	PropContentStreamHash:      {},
	PropSecondaryObjectTypeIDs: {},
	PropIsPrivateWorkingCopy:   {},
}

// PropertyLegalIn reports whether the property id can be written under v.
// Only the standard 1.1 properties are restricted.
func PropertyLegalIn(id string, v Version) bool {
	if _, ok := properties11[id]; ok {
		return v.Is11()
	}
	return true
}

// TruncateDateTime drops the sub-second part of t, keeping its location.
// Datetimes travel on the wire with second resolution.
func TruncateDateTime(t time.Time) time.Time {
	return t.Truncate(time.Second)
}

// Properties is an ordered property bag indexed by property id. Setting a
// property whose id is already present replaces it in place.
type Properties struct {
	ExtensionHolder
	list  []Property
	index map[string]int
}

// NewProperties creates a bag holding props in order.
func NewProperties(props ...Property) *Properties {
	ps := &Properties{}
	for _, p := range props {
		ps.Set(p)
	}
	return ps
}

// Set adds or replaces a property. Nil properties are ignored.
func (ps *Properties) Set(p Property) {
	if p == nil {
		return
	}
	if ps.index == nil {
		ps.index = make(map[string]int)
	}
	id := p.Identity().ID
	if i, ok := ps.index[id]; ok {
		ps.list[i] = p
		return
	}
	ps.index[id] = len(ps.list)
	ps.list = append(ps.list, p)
}

// Get returns the property with the given id.
func (ps *Properties) Get(id string) (Property, bool) {
	if ps == nil {
		return nil, false
	}
	i, ok := ps.index[id]
	if !ok {
		return nil, false
	}
	return ps.list[i], true
}

// Has reports whether a property with the given id is present.
func (ps *Properties) Has(id string) bool {
	_, ok := ps.Get(id)
	return ok
}

// Remove deletes the property with the given id, keeping the order of the
// remaining properties.
func (ps *Properties) Remove(id string) {
	if ps == nil {
		return
	}
	i, ok := ps.index[id]
	if !ok {
		return
	}
	ps.list = append(ps.list[:i], ps.list[i+1:]...)
	delete(ps.index, id)
	for j := i; j < len(ps.list); j++ {
		ps.index[ps.list[j].Identity().ID] = j
	}
}

// List returns the properties in insertion order.
func (ps *Properties) List() []Property {
	if ps == nil {
		return nil
	}
	out := make([]Property, len(ps.list))
	copy(out, ps.list)
	return out
}

// Len returns the number of properties.
func (ps *Properties) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.list)
}

// IDs returns the property ids in order.
func (ps *Properties) IDs() []string {
	out := make([]string, 0, ps.Len())
	for _, p := range ps.List() {
		out = append(out, p.Identity().ID)
	}
	return out
}

// FirstValue returns the first value of the property with the given id when
// it is present, non-empty and of type T.
func FirstValue[T PropertyValue](ps *Properties, id string) (T, bool) {
	var zero T
	p, ok := ps.Get(id)
	if !ok {
		return zero, false
	}
	typed, ok := p.(*PropertyData[T])
	if !ok {
		return zero, false
	}
	return typed.FirstValue()
}

// StringValue returns the first value of a string-like property, or "".
func (ps *Properties) StringValue(id string) string {
	v, _ := FirstValue[string](ps, id)
	return v
}

// IntegerValue returns the first value of an INTEGER property, or nil.
func (ps *Properties) IntegerValue(id string) *big.Int {
	v, _ := FirstValue[*big.Int](ps, id)
	return v
}

// BooleanValue returns the first value of a BOOLEAN property.
func (ps *Properties) BooleanValue(id string) (value, ok bool) {
	return FirstValue[bool](ps, id)
}

// ObjectID returns cmis:objectId.
func (ps *Properties) ObjectID() string { return ps.StringValue(PropObjectID) }

// BaseTypeID returns cmis:baseTypeId.
func (ps *Properties) BaseTypeID() BaseTypeID { return BaseTypeID(ps.StringValue(PropBaseTypeID)) }

// ObjectTypeID returns cmis:objectTypeId.
func (ps *Properties) ObjectTypeID() string { return ps.StringValue(PropObjectTypeID) }

// Name returns cmis:name.
func (ps *Properties) Name() string { return ps.StringValue(PropName) }

// Clone returns a copy of the bag. Properties built by this package are
// deep-copied.
func (ps *Properties) Clone() *Properties {
	if ps == nil {
		return nil
	}
	c := NewProperties()
	for _, p := range ps.list {
		c.Set(cloneProperty(p))
	}
	c.SetExtensions(ps.Extensions())
	return c
}

func cloneProperty(p Property) Property {
	switch tp := p.(type) {
	case *BooleanProperty:
		return tp.Clone()
	case *StringProperty:
		return tp.Clone()
	case *IntegerProperty:
		return tp.Clone()
	case *DecimalProperty:
		return tp.Clone()
	case *DateTimeProperty:
		return tp.Clone()
	}
	return p
}

// PropertiesEqual compares two bags property by property, in order.
func PropertiesEqual(a, b *Properties) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.list {
		if !PropertyEqual(a.list[i], b.list[i]) {
			return false
		}
	}
	return ExtensionsEqual(a.Extensions(), b.Extensions())
}
