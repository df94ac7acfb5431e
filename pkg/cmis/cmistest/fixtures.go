// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

// Package cmistest provides fixtures and assertions for tests that work
// with CMIS data objects.
package cmistest

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// VendorNS is the namespace used by fixture extensions.
const VendorNS = "http://example.com/cmis/vendor"

// Instant is a fixed datetime with whole seconds and a non-UTC offset.
var Instant = time.Date(2026, time.March, 14, 15, 9, 26, 0, time.FixedZone("", 2*3600))

// BigInteger returns an integer wider than 64 bits.
func BigInteger() *big.Int {
	v, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	return v
}

// Extensions returns a nested extension list exercising namespaces,
// attributes, leaves and nodes.
func Extensions() []cmis.ExtensionElement {
	return []cmis.ExtensionElement{
		cmis.NewExtensionLeaf(VendorNS, "color", "blue", map[string]string{"scheme": "rgb"}),
		cmis.NewExtensionNode(VendorNS, "audit", map[string]string{"level": "2"},
			cmis.NewExtensionLeaf(VendorNS, "user", "alice", nil),
			cmis.NewExtensionNode("http://example.com/other", "nested", nil,
				cmis.NewExtensionLeaf("http://example.com/other", "deep", "1", nil),
				cmis.NewExtensionLeaf("", "plain", "no namespace", nil),
			),
		),
		cmis.NewExtensionLeaf(VendorNS, "flag", "", nil),
	}
}

// Properties returns a property bag holding every property type, multi and
// empty values, and values beyond native precision.
func Properties() *cmis.Properties {
	name := cmis.NewStringProperty(cmis.PropName, "Report.docx")
	name.LocalName = "name"
	name.QueryName = cmis.PropName
	name.DisplayName = "Name"

	ps := cmis.NewProperties(
		cmis.NewIDProperty(cmis.PropObjectID, "doc-1"),
		cmis.NewIDProperty(cmis.PropBaseTypeID, string(cmis.BaseTypeDocument)),
		cmis.NewIDProperty(cmis.PropObjectTypeID, "cmis:document"),
		name,
		cmis.NewIntegerProperty(cmis.PropContentStreamLength, big.NewInt(12345)),
		cmis.NewBooleanProperty(cmis.PropIsLatestVersion, true),
		cmis.NewDateTimeProperty(cmis.PropCreationDate, Instant),
		cmis.NewDecimalProperty("my:amount", decimal.RequireFromString("12345678901234567890.123456789")),
		cmis.NewIntegerProperty("my:huge", BigInteger()),
		cmis.NewHTMLProperty("my:summary", "<p>Q1 &amp; Q2</p>"),
		cmis.NewURIProperty("my:link", "http://example.com/report?a=1&b=2"),
		cmis.NewStringProperty("my:tags", "red", "green", "blue"),
		cmis.NewStringProperty("my:empty"),
		cmis.NewDateTimeProperty("my:dates", Instant, Instant.Add(48*time.Hour).UTC()),
	)
	ps.SetExtensions(Extensions()[:1])
	return ps
}

// Object returns an object exercising every optional part legal in v.
func Object(v cmis.Version) *cmis.ObjectData {
	actions := cmis.NewAllowableActions(
		cmis.ActionCanGetProperties, cmis.ActionCanUpdateProperties,
		cmis.ActionCanGetContentStream, cmis.ActionCanDeleteObject,
	)
	if v.Is11() {
		actions.Add(cmis.ActionCanCreateItem)
	}

	rel := &cmis.ObjectData{Properties: cmis.NewProperties(
		cmis.NewIDProperty(cmis.PropObjectID, "rel-1"),
		cmis.NewIDProperty(cmis.PropBaseTypeID, string(cmis.BaseTypeRelationship)),
		cmis.NewIDProperty(cmis.PropSourceID, "doc-1"),
		cmis.NewIDProperty(cmis.PropTargetID, "doc-2"),
	)}

	od := &cmis.ObjectData{
		Properties:       Properties(),
		AllowableActions: actions,
		Acl:              Acl(),
		PolicyIDs:        &cmis.PolicyIDList{IDs: []string{"policy-1", "policy-2"}},
		Renditions: []*cmis.Rendition{{
			StreamID: "thumb-1",
			MimeType: "image/png",
			Length:   big.NewInt(2048),
			Kind:     "cmis:thumbnail",
			Title:    "Thumbnail",
			Height:   big.NewInt(100),
			Width:    big.NewInt(80),
		}},
		Relationships: []*cmis.ObjectData{rel},
		ChangeEventInfo: &cmis.ChangeEventInfo{
			ChangeType: cmis.ChangeTypeUpdated,
			ChangeTime: Instant,
		},
	}
	if v.Is11() {
		od.Properties.Set(cmis.NewStringProperty(cmis.PropContentStreamHash, "{sha-256}abcd"))
		od.Properties.Set(cmis.NewIDProperty(cmis.PropSecondaryObjectTypeIDs, "my:classified"))
	}
	od.SetExtensions(Extensions())
	return od
}

// Acl returns an ACL with two entries and an exact flag.
func Acl() *cmis.Acl {
	inherited := cmis.NewAce("GROUP_everyone", "cmis:read")
	inherited.Direct = false
	return &cmis.Acl{
		Aces: []*cmis.Ace{
			cmis.NewAce("alice", "cmis:read", "cmis:write"),
			inherited,
		},
		IsExact: cmis.Bool(true),
	}
}

// TypeDefinitions returns one definition per base type legal in v, each a
// subtype with property definitions covering every constraint.
func TypeDefinitions(v cmis.Version) []*cmis.TypeDefinition {
	out := []*cmis.TypeDefinition{
		typeBuilder("my:invoice", cmis.BaseTypeDocument, v).
			Versionable(true).
			ContentStreamAllowed(cmis.ContentStreamAllowedOpt).
			PropertyDefinition(stringDefinition()).
			PropertyDefinition(integerDefinition()).
			PropertyDefinition(decimalDefinition()).
			PropertyDefinition(dateTimeDefinition()).
			PropertyDefinition(booleanDefinition()).
			MustBuild(),
		typeBuilder("my:project", cmis.BaseTypeFolder, v).MustBuild(),
		typeBuilder("my:references", cmis.BaseTypeRelationship, v).
			AllowedSourceTypes("my:invoice", "cmis:document").
			AllowedTargetTypes("cmis:folder").
			MustBuild(),
		typeBuilder("my:retention", cmis.BaseTypePolicy, v).MustBuild(),
	}
	if v.Is11() {
		out = append(out,
			typeBuilder("my:contact", cmis.BaseTypeItem, v).MustBuild(),
			typeBuilder("my:classified", cmis.BaseTypeSecondary, v).
				PropertyDefinition(stringDefinition()).
				MustBuild(),
		)
	}
	return out
}

func typeBuilder(id string, base cmis.BaseTypeID, v cmis.Version) *cmis.TypeDefinitionBuilder {
	b := cmis.NewTypeDefinitionBuilder(id, base).
		ParentTypeID(string(base)).
		LocalName(id[3:]).
		LocalNamespace(VendorNS).
		DisplayName(id).
		Description("fixture type " + id).
		Creatable(true).
		Fileable(base != cmis.BaseTypeRelationship && base != cmis.BaseTypeSecondary).
		Queryable(true).
		IncludedInSupertypeQuery(true).
		ControllableACL(true)
	if v.Is11() {
		b.TypeMutability(&cmis.TypeMutability{Create: true, Update: false, Delete: true})
	}
	return b
}

func stringDefinition() *cmis.PropertyDefinition {
	return &cmis.PropertyDefinition{
		ID:           "my:status",
		LocalName:    "status",
		QueryName:    "my:status",
		DisplayName:  "Status",
		Description:  "workflow state",
		PropertyType: cmis.PropertyTypeString,
		Cardinality:  cmis.CardinalitySingle,
		Updatability: cmis.UpdatabilityReadWrite,
		Inherited:    cmis.Bool(false),
		Required:     true,
		Queryable:    true,
		Orderable:    true,
		OpenChoice:   cmis.Bool(false),
		DefaultValue: []any{"draft"},
		MaxLength:    big.NewInt(64),
		Choices: []cmis.Choice{
			{DisplayName: "Draft", Values: []any{"draft"}},
			{DisplayName: "Final", Values: []any{"final"}, Choices: []cmis.Choice{
				{DisplayName: "Archived", Values: []any{"archived"}},
			}},
		},
	}
}

func integerDefinition() *cmis.PropertyDefinition {
	return &cmis.PropertyDefinition{
		ID:           "my:pages",
		LocalName:    "pages",
		QueryName:    "my:pages",
		DisplayName:  "Pages",
		PropertyType: cmis.PropertyTypeInteger,
		Cardinality:  cmis.CardinalityMulti,
		Updatability: cmis.UpdatabilityOnCreate,
		Queryable:    true,
		DefaultValue: []any{big.NewInt(1), big.NewInt(2)},
		MinInteger:   big.NewInt(0),
		MaxInteger:   BigInteger(),
	}
}

func decimalDefinition() *cmis.PropertyDefinition {
	lo := decimal.RequireFromString("-10.5")
	hi := decimal.RequireFromString("99999999999999999999.99")
	return &cmis.PropertyDefinition{
		ID:           "my:amount",
		LocalName:    "amount",
		QueryName:    "my:amount",
		PropertyType: cmis.PropertyTypeDecimal,
		Cardinality:  cmis.CardinalitySingle,
		Updatability: cmis.UpdatabilityReadWrite,
		MinDecimal:   &lo,
		MaxDecimal:   &hi,
		Precision:    cmis.DecimalPrecision64,
	}
}

func dateTimeDefinition() *cmis.PropertyDefinition {
	return &cmis.PropertyDefinition{
		ID:           "my:due",
		LocalName:    "due",
		QueryName:    "my:due",
		PropertyType: cmis.PropertyTypeDateTime,
		Cardinality:  cmis.CardinalitySingle,
		Updatability: cmis.UpdatabilityWhenCheckedOut,
		DefaultValue: []any{Instant},
		Resolution:   cmis.DateTimeResolutionTime,
	}
}

func booleanDefinition() *cmis.PropertyDefinition {
	return &cmis.PropertyDefinition{
		ID:           "my:paid",
		LocalName:    "paid",
		QueryName:    "my:paid",
		PropertyType: cmis.PropertyTypeBoolean,
		Cardinality:  cmis.CardinalitySingle,
		Updatability: cmis.UpdatabilityReadOnly,
		Inherited:    cmis.Bool(true),
		DefaultValue: []any{false},
	}
}

// RepositoryInfo returns a repository descriptor with every section legal
// in v.
func RepositoryInfo(v cmis.Version) *cmis.RepositoryInfo {
	caps := &cmis.RepositoryCapabilities{
		Acl:                   cmis.AclManage,
		AllVersionsSearchable: true,
		Changes:               cmis.ChangesProperties,
		ContentStreamUpdates:  cmis.ContentStreamUpdatesAnytime,
		GetDescendants:        true,
		GetFolderTree:         true,
		MultiFiling:           true,
		PWCUpdatable:          true,
		Query:                 cmis.QueryMetadataOnly,
		Renditions:            cmis.RenditionsRead,
		Unfiling:              true,
		Join:                  cmis.JoinNone,
	}
	info := &cmis.RepositoryInfo{
		ID:                   "repo-1",
		Name:                 "Fixture Repository",
		Description:          "repository used by tests",
		VendorName:           "GoCMIS",
		ProductName:          "gocmis",
		ProductVersion:       "0.1.0",
		RootFolderID:         "root",
		LatestChangeLogToken: "01J0000000000000000000000",
		Capabilities:         caps,
		AclCapabilities: &cmis.AclCapabilities{
			SupportedPermissions: cmis.SupportedPermissionsBoth,
			Propagation:          cmis.AclPropagationObjectOnly,
			Permissions: []*cmis.PermissionDefinition{
				{ID: "cmis:read", Description: "Read"},
				{ID: "cmis:write", Description: "Write"},
				{ID: "cmis:all", Description: "All"},
			},
			PermissionMapping: []*cmis.PermissionMapping{
				{Key: "canGetProperties.Object", Permissions: []string{"cmis:read"}},
				{Key: "canUpdateProperties.Object", Permissions: []string{"cmis:write", "cmis:all"}},
			},
		},
		CmisVersionSupported: string(v),
		ThinClientURI:        "http://example.com/ui",
		ChangesIncomplete:    cmis.Bool(false),
		ChangesOnType:        []cmis.BaseTypeID{cmis.BaseTypeDocument, cmis.BaseTypeFolder},
		PrincipalAnonymous:   "anonymous",
		PrincipalAnyone:      "GROUP_everyone",
	}
	if v.Is11() {
		caps.OrderBy = cmis.OrderByCommon
		caps.CreatablePropertyTypes = &cmis.CreatablePropertyTypes{
			CanCreate: []cmis.PropertyType{cmis.PropertyTypeString, cmis.PropertyTypeInteger},
		}
		caps.NewTypeSettableAttributes = &cmis.NewTypeSettableAttributes{
			ID: true, LocalName: true, DisplayName: true, QueryName: true, Creatable: true,
		}
		info.ChangesOnType = append(info.ChangesOnType, cmis.BaseTypeItem)
		info.ExtensionFeatures = []*cmis.ExtensionFeature{{
			ID:           "http://example.com/feature/audit",
			URL:          "http://example.com/docs/audit",
			CommonName:   "Audit",
			VersionLabel: "1.0",
			Description:  "audit trail",
			FeatureData:  []cmis.FeatureData{{Key: "retention", Value: "30d"}},
		}}
	}
	info.SetExtensions(Extensions()[1:2])
	return info
}

// Query returns a query statement with every optional field set.
func Query() *cmis.QueryStatement {
	return &cmis.QueryStatement{
		Statement:               "SELECT * FROM cmis:document WHERE cmis:name LIKE 'R%'",
		SearchAllVersions:       cmis.Bool(false),
		IncludeAllowableActions: cmis.Bool(true),
		IncludeRelationships:    cmis.IncludeRelationshipsSource,
		RenditionFilter:         "cmis:thumbnail",
		MaxItems:                big.NewInt(100),
		SkipCount:               big.NewInt(0),
	}
}

// BulkUpdate returns a bulk update request.
func BulkUpdate() *cmis.BulkUpdate {
	return &cmis.BulkUpdate{
		Objects: []*cmis.BulkUpdateObjectIDAndChangeToken{
			{ID: "doc-1", ChangeToken: "1"},
			{ID: "doc-2"},
		},
		Properties: cmis.NewProperties(
			cmis.NewStringProperty("my:status", "final"),
		),
		AddSecondaryTypeIDs:    []string{"my:classified"},
		RemoveSecondaryTypeIDs: []string{"my:draft"},
	}
}

// ObjectList returns a page holding two objects.
func ObjectList(v cmis.Version) *cmis.ObjectList {
	second := &cmis.ObjectData{Properties: cmis.NewProperties(
		cmis.NewIDProperty(cmis.PropObjectID, "doc-2"),
		cmis.NewIDProperty(cmis.PropBaseTypeID, string(cmis.BaseTypeDocument)),
	)}
	return &cmis.ObjectList{
		Objects:      []*cmis.ObjectData{Object(v), second},
		HasMoreItems: true,
		NumItems:     big.NewInt(42),
	}
}
