// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package jsonconv

import (
	"io"

	"github.com/buger/jsonparser"

	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// EncodeProperties writes a property bag as a document with the members
// "properties" and, when the bag has extensions, "propertiesExtension".
func EncodeProperties(w io.Writer, v cmis.Version, ps *cmis.Properties) error {
	return encode(w, v, ps, func(e encoder, ps *cmis.Properties) (any, error) {
		o := newObject()
		return o, e.properties(o, ps)
	})
}

// DecodeProperties reads a property bag. Unknown top-level members are
// kept as extensions of the bag.
func DecodeProperties(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.Properties, error) {
	return decode(r, v, opts, jsonparser.Object, func(d decoder, val value) (*cmis.Properties, error) {
		var props bag
		ext, err := d.fields(val, propertiesKeys, props.bind)
		if err != nil {
			return nil, err
		}
		props.ext = append(props.ext, ext...)
		if ps := props.result(); ps != nil {
			return ps, nil
		}
		return cmis.NewProperties(), nil
	})
}

// EncodeObject writes one object with its relationships expanded.
func EncodeObject(w io.Writer, v cmis.Version, od *cmis.ObjectData) error {
	return encode(w, v, od, func(e encoder, od *cmis.ObjectData) (any, error) { return e.object(od, 0) })
}

// DecodeObject reads one object.
func DecodeObject(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.ObjectData, error) {
	return decode(r, v, opts, jsonparser.Object, decoder.object)
}

// EncodeObjectList writes a page of objects.
func EncodeObjectList(w io.Writer, v cmis.Version, l *cmis.ObjectList) error {
	return encode(w, v, l, encoder.objectList)
}

// DecodeObjectList reads a page of objects.
func DecodeObjectList(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.ObjectList, error) {
	return decode(r, v, opts, jsonparser.Object, decoder.objectList)
}

// EncodeObjectInFolderList writes a page of folder children.
func EncodeObjectInFolderList(w io.Writer, v cmis.Version, l *cmis.ObjectInFolderList) error {
	return encode(w, v, l, encoder.objectInFolderList)
}

// DecodeObjectInFolderList reads a page of folder children.
func DecodeObjectInFolderList(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.ObjectInFolderList, error) {
	return decode(r, v, opts, jsonparser.Object, decoder.objectInFolderList)
}

// EncodeObjectParents writes the parents of an object as a JSON array.
func EncodeObjectParents(w io.Writer, v cmis.Version, parents []*cmis.ObjectParentData) error {
	return encode(w, v, parents, encoder.objectParents)
}

// DecodeObjectParents reads a parents array.
func DecodeObjectParents(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) ([]*cmis.ObjectParentData, error) {
	return decode(r, v, opts, jsonparser.Array, decoder.objectParents)
}

// EncodeObjectTree writes a folder tree as a JSON array of containers.
func EncodeObjectTree(w io.Writer, v cmis.Version, tree []*cmis.ObjectInFolderContainer) error {
	return encode(w, v, tree, encoder.objectTree)
}

// DecodeObjectTree reads a folder tree.
func DecodeObjectTree(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) ([]*cmis.ObjectInFolderContainer, error) {
	return decode(r, v, opts, jsonparser.Array, decoder.objectTree)
}

// EncodeTypeDefinition writes a type definition. It fails with
// [cmis.ErrVersionViolation] for item and secondary types under 1.0.
func EncodeTypeDefinition(w io.Writer, v cmis.Version, td *cmis.TypeDefinition) error {
	return encode(w, v, td, func(e encoder, td *cmis.TypeDefinition) (any, error) { return e.typeDefinition(td) })
}

// DecodeTypeDefinition reads a type definition.
func DecodeTypeDefinition(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.TypeDefinition, error) {
	return decode(r, v, opts, jsonparser.Object, decoder.typeDefinition)
}

// EncodeTypeDefinitionList writes a page of type definitions.
func EncodeTypeDefinitionList(w io.Writer, v cmis.Version, l *cmis.TypeDefinitionList) error {
	return encode(w, v, l, encoder.typeList)
}

// DecodeTypeDefinitionList reads a page of type definitions.
func DecodeTypeDefinitionList(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.TypeDefinitionList, error) {
	return decode(r, v, opts, jsonparser.Object, decoder.typeList)
}

// EncodeTypeTree writes a type hierarchy as a JSON array of containers.
func EncodeTypeTree(w io.Writer, v cmis.Version, tree []*cmis.TypeDefinitionContainer) error {
	return encode(w, v, tree, encoder.typeTree)
}

// DecodeTypeTree reads a type hierarchy.
func DecodeTypeTree(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) ([]*cmis.TypeDefinitionContainer, error) {
	return decode(r, v, opts, jsonparser.Array, decoder.typeTree)
}

// EncodeAcl writes an ACL, including its exact flag.
func EncodeAcl(w io.Writer, v cmis.Version, acl *cmis.Acl) error {
	return encode(w, v, acl, func(e encoder, acl *cmis.Acl) (any, error) { return e.acl(acl, true), nil })
}

// DecodeAcl reads an ACL.
func DecodeAcl(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.Acl, error) {
	return decode(r, v, opts, jsonparser.Object, decoder.acl)
}

// EncodeAllowableActions writes the granted actions legal in v.
func EncodeAllowableActions(w io.Writer, v cmis.Version, aa *cmis.AllowableActions) error {
	return encode(w, v, aa, func(e encoder, aa *cmis.AllowableActions) (any, error) { return e.allowableActions(aa), nil })
}

// DecodeAllowableActions reads an allowable-actions set.
func DecodeAllowableActions(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.AllowableActions, error) {
	return decode(r, v, opts, jsonparser.Object, decoder.allowableActions)
}

// EncodeRepositoryInfo writes a repository descriptor.
func EncodeRepositoryInfo(w io.Writer, v cmis.Version, ri *cmis.RepositoryInfo) error {
	return encode(w, v, ri, encoder.repositoryInfo)
}

// DecodeRepositoryInfo reads a repository descriptor.
func DecodeRepositoryInfo(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.RepositoryInfo, error) {
	return decode(r, v, opts, jsonparser.Object, decoder.repositoryInfo)
}

// EncodeRendition writes one rendition.
func EncodeRendition(w io.Writer, v cmis.Version, rd *cmis.Rendition) error {
	return encode(w, v, rd, func(e encoder, rd *cmis.Rendition) (any, error) { return e.rendition(rd), nil })
}

// DecodeRendition reads one rendition.
func DecodeRendition(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.Rendition, error) {
	return decode(r, v, opts, jsonparser.Object, decoder.rendition)
}

// EncodeChangeEventInfo writes change-event information.
func EncodeChangeEventInfo(w io.Writer, v cmis.Version, ce *cmis.ChangeEventInfo) error {
	return encode(w, v, ce, func(e encoder, ce *cmis.ChangeEventInfo) (any, error) { return e.changeEvent(ce), nil })
}

// DecodeChangeEventInfo reads change-event information.
func DecodeChangeEventInfo(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.ChangeEventInfo, error) {
	return decode(r, v, opts, jsonparser.Object, decoder.changeEvent)
}

// EncodeQuery writes a query request.
func EncodeQuery(w io.Writer, v cmis.Version, q *cmis.QueryStatement) error {
	return encode(w, v, q, encoder.query)
}

// DecodeQuery reads a query request.
func DecodeQuery(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.QueryStatement, error) {
	return decode(r, v, opts, jsonparser.Object, decoder.query)
}

// EncodeBulkUpdate writes a bulk update request. It fails with
// [cmis.ErrVersionViolation] under 1.0.
func EncodeBulkUpdate(w io.Writer, v cmis.Version, bu *cmis.BulkUpdate) error {
	return encode(w, v, bu, encoder.bulkUpdate)
}

// DecodeBulkUpdate reads a bulk update request.
func DecodeBulkUpdate(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.BulkUpdate, error) {
	return decode(r, v, opts, jsonparser.Object, decoder.bulkUpdate)
}

// Codec is the JSON [codec.Codec].
type Codec struct{}

// New returns the JSON codec.
func New() *Codec { return &Codec{} }

// Name implements [codec.Codec].
func (*Codec) Name() string { return "json" }

// ContentType implements [codec.Codec].
func (*Codec) ContentType() string { return ContentType }

// Encode implements [codec.Codec].
func (c *Codec) Encode(w io.Writer, v cmis.Version, value any) error {
	switch tv := value.(type) {
	case *cmis.Properties:
		return EncodeProperties(w, v, tv)
	case *cmis.ObjectData:
		return EncodeObject(w, v, tv)
	case *cmis.ObjectList:
		return EncodeObjectList(w, v, tv)
	case *cmis.ObjectInFolderList:
		return EncodeObjectInFolderList(w, v, tv)
	case []*cmis.ObjectParentData:
		return EncodeObjectParents(w, v, tv)
	case []*cmis.ObjectInFolderContainer:
		return EncodeObjectTree(w, v, tv)
	case *cmis.TypeDefinition:
		return EncodeTypeDefinition(w, v, tv)
	case *cmis.TypeDefinitionList:
		return EncodeTypeDefinitionList(w, v, tv)
	case []*cmis.TypeDefinitionContainer:
		return EncodeTypeTree(w, v, tv)
	case *cmis.Acl:
		return EncodeAcl(w, v, tv)
	case *cmis.AllowableActions:
		return EncodeAllowableActions(w, v, tv)
	case *cmis.RepositoryInfo:
		return EncodeRepositoryInfo(w, v, tv)
	case *cmis.Rendition:
		return EncodeRendition(w, v, tv)
	case *cmis.ChangeEventInfo:
		return EncodeChangeEventInfo(w, v, tv)
	case *cmis.QueryStatement:
		return EncodeQuery(w, v, tv)
	case *cmis.BulkUpdate:
		return EncodeBulkUpdate(w, v, tv)
	}
	return codec.WrongType(c.Name(), value)
}

// Decode implements [codec.Codec].
func (c *Codec) Decode(r io.Reader, v cmis.Version, k codec.Kind, opts ...codec.DecodeOption) (any, error) {
	switch k {
	case codec.KindProperties:
		return result(DecodeProperties(r, v, opts...))
	case codec.KindObject:
		return result(DecodeObject(r, v, opts...))
	case codec.KindObjectList:
		return result(DecodeObjectList(r, v, opts...))
	case codec.KindObjectInFolderList:
		return result(DecodeObjectInFolderList(r, v, opts...))
	case codec.KindObjectParents:
		return result(DecodeObjectParents(r, v, opts...))
	case codec.KindObjectTree:
		return result(DecodeObjectTree(r, v, opts...))
	case codec.KindTypeDefinition:
		return result(DecodeTypeDefinition(r, v, opts...))
	case codec.KindTypeDefinitionList:
		return result(DecodeTypeDefinitionList(r, v, opts...))
	case codec.KindTypeTree:
		return result(DecodeTypeTree(r, v, opts...))
	case codec.KindAcl:
		return result(DecodeAcl(r, v, opts...))
	case codec.KindAllowableActions:
		return result(DecodeAllowableActions(r, v, opts...))
	case codec.KindRepositoryInfo:
		return result(DecodeRepositoryInfo(r, v, opts...))
	case codec.KindRendition:
		return result(DecodeRendition(r, v, opts...))
	case codec.KindChangeEventInfo:
		return result(DecodeChangeEventInfo(r, v, opts...))
	case codec.KindQuery:
		return result(DecodeQuery(r, v, opts...))
	case codec.KindBulkUpdate:
		return result(DecodeBulkUpdate(r, v, opts...))
	}
	_, err := codec.ParseKind(string(k))
	return nil, err
}

func result[T any](value T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return value, nil
}
