// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package jsonconv

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/gocmis/gocmis/internal/codec"
)

// Schema error codes.
const (
	CodeSchemaInvalid = "JSON_SCHEMA_INVALID"
	CodeSchemaBroken  = "JSON_SCHEMA_BROKEN"
)

// SchemaID returns the $id of the schema for documents of kind k.
func SchemaID(k codec.Kind) string {
	return "https://gocmis.dev/schemas/" + string(k) + ".schema.json"
}

// The doc types below describe the documents written by this package.
// They exist for schema generation only. Extensions are allowed wherever
// an object is, so every schema object admits additional members.

type docValue struct{}

// JSONSchema accepts a single value or an array of values.
func (docValue) JSONSchema() *jsonschema.Schema {
	scalar := func() []*jsonschema.Schema {
		return []*jsonschema.Schema{{Type: "string"}, {Type: "number"}, {Type: "boolean"}}
	}
	return &jsonschema.Schema{OneOf: append(scalar(),
		&jsonschema.Schema{Type: "null"},
		&jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{OneOf: scalar()}},
	)}
}

type docInteger struct{}

// JSONSchema accepts a JSON integer or a string of digits.
func (docInteger) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{OneOf: []*jsonschema.Schema{
		{Type: "integer"},
		{Type: "string", Pattern: `^\s*[+-]?[0-9]+\s*$`},
	}}
}

type docNumber struct{}

// JSONSchema accepts a JSON number or a numeric string.
func (docNumber) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{OneOf: []*jsonschema.Schema{{Type: "number"}, {Type: "string"}}}
}

type docProperty struct {
	ID             string   `json:"id,omitempty"`
	LocalName      string   `json:"localName,omitempty"`
	LocalNamespace string   `json:"localNamespace,omitempty"`
	DisplayName    string   `json:"displayName,omitempty"`
	QueryName      string   `json:"queryName,omitempty"`
	Type           string   `json:"type,omitempty" jsonschema:"enum=boolean,enum=id,enum=integer,enum=datetime,enum=decimal,enum=html,enum=string,enum=uri"`
	Cardinality    string   `json:"cardinality,omitempty" jsonschema:"enum=single,enum=multi"`
	Value          docValue `json:"value,omitempty"`
}

type docProperties struct {
	Properties          map[string]docProperty `json:"properties,omitempty"`
	PropertiesExtension map[string]any         `json:"propertiesExtension,omitempty"`
}

type docObject struct {
	docProperties
	AllowableActions map[string]any  `json:"allowableActions,omitempty"`
	Relationships    []docObject     `json:"relationships,omitempty"`
	ChangeEventInfo  *docChangeEvent `json:"changeEventInfo,omitempty"`
	Acl              *docAcl         `json:"acl,omitempty"`
	ExactACL         *bool           `json:"exactACL,omitempty"`
	PolicyIDs        *docPolicyIDs   `json:"policyIds,omitempty"`
	Renditions       []docRendition  `json:"renditions,omitempty"`
}

type docChangeEvent struct {
	ChangeType string `json:"changeType,omitempty" jsonschema:"enum=created,enum=updated,enum=deleted,enum=security"`
	ChangeTime string `json:"changeTime,omitempty"`
}

type docAcl struct {
	Aces    []docAce `json:"aces" jsonschema:"required"`
	IsExact *bool    `json:"isExact,omitempty"`
}

type docAce struct {
	Principal   docPrincipal `json:"principal" jsonschema:"required"`
	Permissions []string     `json:"permissions,omitempty"`
	IsDirect    bool         `json:"isDirect,omitempty"`
}

type docPrincipal struct {
	PrincipalID string `json:"principalId" jsonschema:"required"`
}

type docPolicyIDs struct {
	IDs []string `json:"ids,omitempty"`
}

type docRendition struct {
	StreamID            string     `json:"streamId,omitempty"`
	MimeType            string     `json:"mimeType,omitempty"`
	Length              docInteger `json:"length,omitempty"`
	Kind                string     `json:"kind,omitempty"`
	Title               string     `json:"title,omitempty"`
	Height              docInteger `json:"height,omitempty"`
	Width               docInteger `json:"width,omitempty"`
	RenditionDocumentID string     `json:"renditionDocumentId,omitempty"`
}

type docObjectList struct {
	Objects      []docObject `json:"objects" jsonschema:"required"`
	HasMoreItems bool        `json:"hasMoreItems,omitempty"`
	NumItems     docInteger  `json:"numItems,omitempty"`
}

type docObjectInFolder struct {
	Object      *docObject `json:"object,omitempty"`
	PathSegment string     `json:"pathSegment,omitempty"`
}

type docObjectInFolderList struct {
	Objects      []docObjectInFolder `json:"objects" jsonschema:"required"`
	HasMoreItems bool                `json:"hasMoreItems,omitempty"`
	NumItems     docInteger          `json:"numItems,omitempty"`
}

type docObjectParent struct {
	Object              *docObject `json:"object,omitempty"`
	RelativePathSegment string     `json:"relativePathSegment,omitempty"`
}

type docObjectContainer struct {
	Object   docObjectInFolder    `json:"object" jsonschema:"required"`
	Children []docObjectContainer `json:"children,omitempty"`
}

type docTypeDefinition struct {
	ID                       string                           `json:"id" jsonschema:"required"`
	LocalName                string                           `json:"localName,omitempty"`
	LocalNamespace           string                           `json:"localNamespace,omitempty"`
	DisplayName              string                           `json:"displayName,omitempty"`
	QueryName                string                           `json:"queryName,omitempty"`
	Description              string                           `json:"description,omitempty"`
	BaseID                   string                           `json:"baseId" jsonschema:"required,enum=cmis:document,enum=cmis:folder,enum=cmis:relationship,enum=cmis:policy,enum=cmis:item,enum=cmis:secondary"`
	ParentID                 string                           `json:"parentId,omitempty"`
	Creatable                bool                             `json:"creatable,omitempty"`
	Fileable                 bool                             `json:"fileable,omitempty"`
	Queryable                bool                             `json:"queryable,omitempty"`
	FulltextIndexed          bool                             `json:"fulltextIndexed,omitempty"`
	IncludedInSupertypeQuery bool                             `json:"includedInSupertypeQuery,omitempty"`
	ControllablePolicy       bool                             `json:"controllablePolicy,omitempty"`
	ControllableACL          bool                             `json:"controllableACL,omitempty"`
	TypeMutability           *docTypeMutability               `json:"typeMutability,omitempty"`
	PropertyDefinitions      map[string]docPropertyDefinition `json:"propertyDefinitions,omitempty"`
	Versionable              bool                             `json:"versionable,omitempty"`
	ContentStreamAllowed     string                           `json:"contentStreamAllowed,omitempty" jsonschema:"enum=notallowed,enum=allowed,enum=required"`
	AllowedSourceTypes       []string                         `json:"allowedSourceTypes,omitempty"`
	AllowedTargetTypes       []string                         `json:"allowedTargetTypes,omitempty"`
}

type docTypeMutability struct {
	Create bool `json:"create,omitempty"`
	Update bool `json:"update,omitempty"`
	Delete bool `json:"delete,omitempty"`
}

type docPropertyDefinition struct {
	ID             string      `json:"id,omitempty"`
	LocalName      string      `json:"localName,omitempty"`
	LocalNamespace string      `json:"localNamespace,omitempty"`
	DisplayName    string      `json:"displayName,omitempty"`
	QueryName      string      `json:"queryName,omitempty"`
	Description    string      `json:"description,omitempty"`
	PropertyType   string      `json:"propertyType" jsonschema:"required,enum=boolean,enum=id,enum=integer,enum=datetime,enum=decimal,enum=html,enum=string,enum=uri"`
	Cardinality    string      `json:"cardinality,omitempty" jsonschema:"enum=single,enum=multi"`
	Updatability   string      `json:"updatability,omitempty" jsonschema:"enum=readonly,enum=readwrite,enum=whencheckedout,enum=oncreate"`
	Inherited      *bool       `json:"inherited,omitempty"`
	Required       bool        `json:"required,omitempty"`
	Queryable      bool        `json:"queryable,omitempty"`
	Orderable      bool        `json:"orderable,omitempty"`
	OpenChoice     *bool       `json:"openChoice,omitempty"`
	DefaultValue   docValue    `json:"defaultValue,omitempty"`
	MaxLength      docInteger  `json:"maxLength,omitempty"`
	MinValue       docNumber   `json:"minValue,omitempty"`
	MaxValue       docNumber   `json:"maxValue,omitempty"`
	Precision      string      `json:"precision,omitempty" jsonschema:"enum=32,enum=64"`
	Resolution     string      `json:"resolution,omitempty" jsonschema:"enum=year,enum=date,enum=time"`
	Choice         []docChoice `json:"choice,omitempty"`
}

type docChoice struct {
	DisplayName string      `json:"displayName,omitempty"`
	Value       docValue    `json:"value,omitempty"`
	Choice      []docChoice `json:"choice,omitempty"`
}

type docTypeList struct {
	Types        []docTypeDefinition `json:"types" jsonschema:"required"`
	HasMoreItems bool                `json:"hasMoreItems,omitempty"`
	NumItems     docInteger          `json:"numItems,omitempty"`
}

type docTypeContainer struct {
	Type     docTypeDefinition  `json:"type" jsonschema:"required"`
	Children []docTypeContainer `json:"children,omitempty"`
}

type docRepositoryInfo struct {
	RepositoryID          string                `json:"repositoryId" jsonschema:"required"`
	RepositoryName        string                `json:"repositoryName,omitempty"`
	RepositoryDescription string                `json:"repositoryDescription,omitempty"`
	VendorName            string                `json:"vendorName,omitempty"`
	ProductName           string                `json:"productName,omitempty"`
	ProductVersion        string                `json:"productVersion,omitempty"`
	RootFolderID          string                `json:"rootFolderId,omitempty"`
	LatestChangeLogToken  string                `json:"latestChangeLogToken,omitempty"`
	Capabilities          *docCapabilities      `json:"capabilities,omitempty"`
	AclCapabilities       *docAclCapabilities   `json:"aclCapabilities,omitempty"`
	CmisVersionSupported  string                `json:"cmisVersionSupported,omitempty"`
	ThinClientURI         string                `json:"thinClientURI,omitempty"`
	ChangesIncomplete     *bool                 `json:"changesIncomplete,omitempty"`
	ChangesOnType         []string              `json:"changesOnType,omitempty"`
	PrincipalIDAnonymous  string                `json:"principalIdAnonymous,omitempty"`
	PrincipalIDAnyone     string                `json:"principalIdAnyone,omitempty"`
	ExtendedFeatures      []docExtensionFeature `json:"extendedFeatures,omitempty"`
}

type docCapabilities struct {
	ACL                       string         `json:"capabilityACL,omitempty"`
	AllVersionsSearchable     bool           `json:"capabilityAllVersionsSearchable,omitempty"`
	Changes                   string         `json:"capabilityChanges,omitempty"`
	ContentStreamUpdatability string         `json:"capabilityContentStreamUpdatability,omitempty"`
	GetDescendants            bool           `json:"capabilityGetDescendants,omitempty"`
	GetFolderTree             bool           `json:"capabilityGetFolderTree,omitempty"`
	OrderBy                   string         `json:"capabilityOrderBy,omitempty"`
	Multifiling               bool           `json:"capabilityMultifiling,omitempty"`
	PWCSearchable             bool           `json:"capabilityPWCSearchable,omitempty"`
	PWCUpdatable              bool           `json:"capabilityPWCUpdatable,omitempty"`
	Query                     string         `json:"capabilityQuery,omitempty"`
	Renditions                string         `json:"capabilityRenditions,omitempty"`
	Unfiling                  bool           `json:"capabilityUnfiling,omitempty"`
	VersionSpecificFiling     bool           `json:"capabilityVersionSpecificFiling,omitempty"`
	Join                      string         `json:"capabilityJoin,omitempty"`
	CreatablePropertyTypes    *docCreatable  `json:"capabilityCreatablePropertyTypes,omitempty"`
	NewTypeSettableAttributes map[string]any `json:"capabilityNewTypeSettableAttributes,omitempty"`
}

type docCreatable struct {
	CanCreate []string `json:"canCreate,omitempty"`
}

type docAclCapabilities struct {
	SupportedPermissions string                 `json:"supportedPermissions,omitempty"`
	Propagation          string                 `json:"propagation,omitempty"`
	Permissions          []docPermission        `json:"permissions,omitempty"`
	PermissionMapping    []docPermissionMapping `json:"permissionMapping,omitempty"`
}

type docPermission struct {
	Permission  string `json:"permission" jsonschema:"required"`
	Description string `json:"description,omitempty"`
}

type docPermissionMapping struct {
	Key        string   `json:"key" jsonschema:"required"`
	Permission []string `json:"permission,omitempty"`
}

type docExtensionFeature struct {
	ID           string            `json:"id" jsonschema:"required"`
	URL          string            `json:"url,omitempty"`
	CommonName   string            `json:"commonName,omitempty"`
	VersionLabel string            `json:"versionLabel,omitempty"`
	Description  string            `json:"description,omitempty"`
	FeatureData  map[string]string `json:"featureData,omitempty"`
}

type docQuery struct {
	Statement               string     `json:"statement" jsonschema:"required"`
	SearchAllVersions       *bool      `json:"searchAllVersions,omitempty"`
	IncludeAllowableActions *bool      `json:"includeAllowableActions,omitempty"`
	IncludeRelationships    string     `json:"includeRelationships,omitempty" jsonschema:"enum=none,enum=source,enum=target,enum=both"`
	RenditionFilter         string     `json:"renditionFilter,omitempty"`
	MaxItems                docInteger `json:"maxItems,omitempty"`
	SkipCount               docInteger `json:"skipCount,omitempty"`
}

type docBulkUpdate struct {
	docProperties
	ObjectIDAndChangeToken []docObjectIDAndChangeToken `json:"objectIdAndChangeToken,omitempty"`
	AddSecondaryTypeIDs    []string                    `json:"addSecondaryTypeIds,omitempty"`
	RemoveSecondaryTypeIDs []string                    `json:"removeSecondaryTypeIds,omitempty"`
}

type docObjectIDAndChangeToken struct {
	ID          string `json:"id" jsonschema:"required"`
	NewID       string `json:"newId,omitempty"`
	ChangeToken string `json:"changeToken,omitempty"`
}

// docRoots maps every kind to the doc type of its top-level value.
var docRoots = map[codec.Kind]any{
	codec.KindProperties:         docProperties{},
	codec.KindObject:             docObject{},
	codec.KindObjectList:         docObjectList{},
	codec.KindObjectInFolderList: docObjectInFolderList{},
	codec.KindObjectParents:      []docObjectParent{},
	codec.KindObjectTree:         []docObjectContainer{},
	codec.KindTypeDefinition:     docTypeDefinition{},
	codec.KindTypeDefinitionList: docTypeList{},
	codec.KindTypeTree:           []docTypeContainer{},
	codec.KindAcl:                docAcl{},
	codec.KindAllowableActions:   map[string]any{},
	codec.KindRepositoryInfo:     docRepositoryInfo{},
	codec.KindRendition:          docRendition{},
	codec.KindChangeEventInfo:    docChangeEvent{},
	codec.KindQuery:              docQuery{},
	codec.KindBulkUpdate:         docBulkUpdate{},
}

// GenerateSchema generates the JSON Schema of documents of kind k.
func GenerateSchema(k codec.Kind) ([]byte, error) {
	root, ok := docRoots[k]
	if !ok {
		_, err := codec.ParseKind(string(k))
		if err == nil {
			err = oops.Code(CodeSchemaBroken).Errorf("no schema for kind %q", k)
		}
		return nil, err
	}
	r := jsonschema.Reflector{
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
		Namer: func(t reflect.Type) string {
			return strings.TrimPrefix(t.Name(), "doc")
		},
	}
	schema := r.Reflect(root)
	schema.ID = jsonschema.ID(SchemaID(k))
	schema.Title = "CMIS Browser binding " + string(k)

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code(CodeSchemaBroken).Wrapf(err, "marshal schema")
	}
	return data, nil
}

var (
	schemaMu    sync.Mutex
	schemaCache = map[codec.Kind]*jschema.Schema{}
)

// Validate checks data against the schema of kind k. Decoding enforces
// more than the schema does; Validate is for reporting every structural
// problem of a document at once.
func Validate(k codec.Kind, data []byte) error {
	sch, err := compiledSchema(k)
	if err != nil {
		return err
	}
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return oops.Code(CodeSchemaInvalid).With("kind", string(k)).Wrapf(err, "parse %s document", k)
	}
	if err := sch.Validate(doc); err != nil {
		return oops.Code(CodeSchemaInvalid).With("kind", string(k)).Wrapf(err, "validate %s document", k)
	}
	return nil
}

func compiledSchema(k codec.Kind) (*jschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	if sch, ok := schemaCache[k]; ok {
		return sch, nil
	}
	data, err := GenerateSchema(k)
	if err != nil {
		return nil, err
	}
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, oops.Code(CodeSchemaBroken).Wrapf(err, "parse schema")
	}
	c := jschema.NewCompiler()
	if err := c.AddResource(SchemaID(k), doc); err != nil {
		return nil, oops.Code(CodeSchemaBroken).Wrapf(err, "add schema resource")
	}
	sch, err := c.Compile(SchemaID(k))
	if err != nil {
		return nil, oops.Code(CodeSchemaBroken).Wrapf(err, "compile schema")
	}
	schemaCache[k] = sch
	return sch, nil
}
