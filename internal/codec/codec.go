// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

// Package codec defines the interface shared by the CMIS wire converters
// and a registry that selects one by format name or content type.
package codec

import (
	"io"

	"github.com/samber/oops"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// Kind names a data-object kind a codec can encode and decode.
type Kind string

// Data-object kinds and the Go type each one travels as.
const (
	KindProperties         Kind = "properties"         // *cmis.Properties
	KindObject             Kind = "object"             // *cmis.ObjectData
	KindObjectList         Kind = "objectList"         // *cmis.ObjectList
	KindObjectInFolderList Kind = "objectInFolderList" // *cmis.ObjectInFolderList
	KindObjectParents      Kind = "objectParents"      // []*cmis.ObjectParentData
	KindObjectTree         Kind = "objectTree"         // []*cmis.ObjectInFolderContainer
	KindTypeDefinition     Kind = "typeDefinition"     // *cmis.TypeDefinition
	KindTypeDefinitionList Kind = "typeDefinitionList" // *cmis.TypeDefinitionList
	KindTypeTree           Kind = "typeTree"           // []*cmis.TypeDefinitionContainer
	KindAcl                Kind = "acl"                // *cmis.Acl
	KindAllowableActions   Kind = "allowableActions"   // *cmis.AllowableActions
	KindRepositoryInfo     Kind = "repositoryInfo"     // *cmis.RepositoryInfo
	KindRendition          Kind = "rendition"          // *cmis.Rendition
	KindChangeEventInfo    Kind = "changeEventInfo"    // *cmis.ChangeEventInfo
	KindQuery              Kind = "query"              // *cmis.QueryStatement
	KindBulkUpdate         Kind = "bulkUpdate"         // *cmis.BulkUpdate
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{
	KindProperties, KindObject, KindObjectList, KindObjectInFolderList,
	KindObjectParents, KindObjectTree, KindTypeDefinition, KindTypeDefinitionList,
	KindTypeTree, KindAcl, KindAllowableActions, KindRepositoryInfo,
	KindRendition, KindChangeEventInfo, KindQuery, KindBulkUpdate,
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind converts a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", oops.Code(CodeUnknownKind).With("kind", s).Errorf("unknown data-object kind %q", s)
	}
	return k, nil
}

// Error codes raised by this package.
const (
	CodeUnknownKind   = "CODEC_UNKNOWN_KIND"
	CodeUnknownFormat = "CODEC_UNKNOWN_FORMAT"
	CodeWrongType     = "CODEC_WRONG_TYPE"
)

// Codec converts CMIS data objects to and from one wire format. Every call
// is independent: implementations hold no per-call state and are safe for
// concurrent use. Callers own r and w and close them.
type Codec interface {
	// Name is the short format name, e.g. "xml".
	Name() string
	// ContentType is the MIME type of encoded documents.
	ContentType() string
	// Encode writes value, which must be the Go type listed for its kind.
	Encode(w io.Writer, v cmis.Version, value any) error
	// Decode reads one document of kind k.
	Decode(r io.Reader, v cmis.Version, k Kind, opts ...DecodeOption) (any, error)
}

// DecodeOption configures a decode call.
type DecodeOption func(*DecodeOptions)

// DecodeOptions holds the settings built from DecodeOption values.
type DecodeOptions struct {
	// Definitions, when set, supplies property definitions used to check
	// property types and cardinality while decoding.
	Definitions cmis.PropertyDefinitionLookup
}

// WithDefinitions checks decoded properties against the definitions in l.
func WithDefinitions(l cmis.PropertyDefinitionLookup) DecodeOption {
	return func(o *DecodeOptions) {
		o.Definitions = l
	}
}

// NewDecodeOptions applies opts to a zero DecodeOptions.
func NewDecodeOptions(opts ...DecodeOption) DecodeOptions {
	var o DecodeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Definition looks up a property definition when a lookup is configured.
func (o DecodeOptions) Definition(id string) (*cmis.PropertyDefinition, bool) {
	if o.Definitions == nil {
		return nil, false
	}
	return o.Definitions.PropertyDefinition(id)
}

// CheckProperty validates a decoded property against its definition, if
// one is known. path locates the property in the source document.
func (o DecodeOptions) CheckProperty(path string, p cmis.Property) error {
	pd, ok := o.Definition(p.Identity().ID)
	if !ok {
		return nil
	}
	if err := pd.CheckProperty(p); err != nil {
		return cmis.MalformedInput(path, "%v", err)
	}
	return nil
}

// WrongType is returned by Encode when value does not match any kind.
func WrongType(format string, value any) error {
	return oops.Code(CodeWrongType).
		With("format", format).
		Errorf("%s codec cannot encode %T", format, value)
}

// KindOf returns the kind of a data-object value.
func KindOf(value any) (Kind, bool) {
	switch value.(type) {
	case *cmis.Properties:
		return KindProperties, true
	case *cmis.ObjectData:
		return KindObject, true
	case *cmis.ObjectList:
		return KindObjectList, true
	case *cmis.ObjectInFolderList:
		return KindObjectInFolderList, true
	case []*cmis.ObjectParentData:
		return KindObjectParents, true
	case []*cmis.ObjectInFolderContainer:
		return KindObjectTree, true
	case *cmis.TypeDefinition:
		return KindTypeDefinition, true
	case *cmis.TypeDefinitionList:
		return KindTypeDefinitionList, true
	case []*cmis.TypeDefinitionContainer:
		return KindTypeTree, true
	case *cmis.Acl:
		return KindAcl, true
	case *cmis.AllowableActions:
		return KindAllowableActions, true
	case *cmis.RepositoryInfo:
		return KindRepositoryInfo, true
	case *cmis.Rendition:
		return KindRendition, true
	case *cmis.ChangeEventInfo:
		return KindChangeEventInfo, true
	case *cmis.QueryStatement:
		return KindQuery, true
	case *cmis.BulkUpdate:
		return KindBulkUpdate, true
	}
	return "", false
}
