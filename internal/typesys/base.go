// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package typesys

import (
	"strings"

	"github.com/gocmis/gocmis/pkg/cmis"
)

type propSpec struct {
	id       string
	typ      cmis.PropertyType
	multi    bool
	upd      cmis.Updatability
	required bool
	since    cmis.Version
}

var objectProps = []propSpec{
	{id: cmis.PropName, typ: cmis.PropertyTypeString, upd: cmis.UpdatabilityReadWrite, required: true},
	{id: cmis.PropDescription, typ: cmis.PropertyTypeString, upd: cmis.UpdatabilityReadWrite, since: cmis.Version11},
	{id: cmis.PropObjectID, typ: cmis.PropertyTypeID, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropBaseTypeID, typ: cmis.PropertyTypeID, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropObjectTypeID, typ: cmis.PropertyTypeID, upd: cmis.UpdatabilityOnCreate, required: true},
	{id: cmis.PropSecondaryObjectTypeIDs, typ: cmis.PropertyTypeID, multi: true, upd: cmis.UpdatabilityReadWrite, since: cmis.Version11},
	{id: cmis.PropCreatedBy, typ: cmis.PropertyTypeString, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropCreationDate, typ: cmis.PropertyTypeDateTime, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropLastModifiedBy, typ: cmis.PropertyTypeString, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropLastModificationDate, typ: cmis.PropertyTypeDateTime, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropChangeToken, typ: cmis.PropertyTypeString, upd: cmis.UpdatabilityReadOnly},
}

var documentProps = []propSpec{
	{id: cmis.PropIsImmutable, typ: cmis.PropertyTypeBoolean, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropIsLatestVersion, typ: cmis.PropertyTypeBoolean, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropIsMajorVersion, typ: cmis.PropertyTypeBoolean, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropIsLatestMajorVersion, typ: cmis.PropertyTypeBoolean, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropIsPrivateWorkingCopy, typ: cmis.PropertyTypeBoolean, upd: cmis.UpdatabilityReadOnly, since: cmis.Version11},
	{id: cmis.PropVersionLabel, typ: cmis.PropertyTypeString, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropVersionSeriesID, typ: cmis.PropertyTypeID, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropIsVersionSeriesCheckedOut, typ: cmis.PropertyTypeBoolean, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropVersionSeriesCheckedOutBy, typ: cmis.PropertyTypeString, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropVersionSeriesCheckedOutID, typ: cmis.PropertyTypeID, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropCheckinComment, typ: cmis.PropertyTypeString, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropContentStreamLength, typ: cmis.PropertyTypeInteger, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropContentStreamMimeType, typ: cmis.PropertyTypeString, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropContentStreamFileName, typ: cmis.PropertyTypeString, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropContentStreamID, typ: cmis.PropertyTypeID, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropContentStreamHash, typ: cmis.PropertyTypeString, multi: true, upd: cmis.UpdatabilityReadOnly, since: cmis.Version11},
}

var folderProps = []propSpec{
	{id: cmis.PropParentID, typ: cmis.PropertyTypeID, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropPath, typ: cmis.PropertyTypeString, upd: cmis.UpdatabilityReadOnly},
	{id: cmis.PropAllowedChildObjectTypeIDs, typ: cmis.PropertyTypeID, multi: true, upd: cmis.UpdatabilityReadOnly},
}

var relationshipProps = []propSpec{
	{id: cmis.PropSourceID, typ: cmis.PropertyTypeID, upd: cmis.UpdatabilityOnCreate, required: true},
	{id: cmis.PropTargetID, typ: cmis.PropertyTypeID, upd: cmis.UpdatabilityOnCreate, required: true},
}

var policyProps = []propSpec{
	{id: cmis.PropPolicyText, typ: cmis.PropertyTypeString, upd: cmis.UpdatabilityReadWrite},
}

func (s propSpec) definition() *cmis.PropertyDefinition {
	local := strings.TrimPrefix(s.id, "cmis:")
	card := cmis.CardinalitySingle
	if s.multi {
		card = cmis.CardinalityMulti
	}
	return &cmis.PropertyDefinition{
		ID:           s.id,
		LocalName:    local,
		QueryName:    s.id,
		DisplayName:  local,
		PropertyType: s.typ,
		Cardinality:  card,
		Updatability: s.upd,
		Inherited:    cmis.Bool(false),
		Required:     s.required,
		Queryable:    true,
		Orderable:    !s.multi,
		OpenChoice:   cmis.Bool(false),
	}
}

// BaseTypes returns the standard base type definitions legal in v, with
// the standard property definitions of that version.
func BaseTypes(v cmis.Version) []*cmis.TypeDefinition {
	doc := baseBuilder(cmis.BaseTypeDocument, "Document", v, objectProps, documentProps).
		Creatable(true).Fileable(true).
		Versionable(true).
		ContentStreamAllowed(cmis.ContentStreamAllowedOpt)
	folder := baseBuilder(cmis.BaseTypeFolder, "Folder", v, objectProps, folderProps).
		Creatable(true).Fileable(true)
	rel := baseBuilder(cmis.BaseTypeRelationship, "Relationship", v, objectProps, relationshipProps).
		Creatable(true)
	policy := baseBuilder(cmis.BaseTypePolicy, "Policy", v, objectProps, policyProps).
		Creatable(true).Fileable(true)

	out := []*cmis.TypeDefinition{doc.MustBuild(), folder.MustBuild(), rel.MustBuild(), policy.MustBuild()}
	if v.Is11() {
		item := baseBuilder(cmis.BaseTypeItem, "Item", v, objectProps).
			Creatable(true).Fileable(true)
		secondary := baseBuilder(cmis.BaseTypeSecondary, "Secondary Type", v).
			ControllablePolicy(false).ControllableACL(false)
		out = append(out, item.MustBuild(), secondary.MustBuild())
	}
	return out
}

func baseBuilder(base cmis.BaseTypeID, display string, v cmis.Version, groups ...[]propSpec) *cmis.TypeDefinitionBuilder {
	b := cmis.NewTypeDefinitionBuilder(string(base), base).
		LocalName(strings.TrimPrefix(string(base), "cmis:")).
		DisplayName(display).
		Description(display + " base type").
		Queryable(true).
		FulltextIndexed(false).
		IncludedInSupertypeQuery(true).
		ControllablePolicy(true).
		ControllableACL(true)
	for _, group := range groups {
		for _, spec := range group {
			if spec.since != "" && !v.Supports(spec.since) {
				continue
			}
			b.PropertyDefinition(spec.definition())
		}
	}
	if v.Is11() {
		b.TypeMutability(&cmis.TypeMutability{Create: true})
	}
	return b
}

// NewStandardRegistry returns a registry holding the base types of v plus
// extra subtypes.
func NewStandardRegistry(v cmis.Version, extra ...*cmis.TypeDefinition) (*Registry, error) {
	return NewRegistry(append(BaseTypes(v), extra...))
}
