// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

// Package xmlconv converts CMIS data objects to and from the XML
// vocabulary of the CMIS core and RESTful AtomPub schemas.
//
// Decoding is a single forward pass over the token stream. Elements the
// decoder does not know, including CMIS 1.1 elements read under 1.0, are
// kept verbatim as extensions of the enclosing data object. Encoding writes
// known fields in schema order followed by the extensions.
package xmlconv

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/samber/oops"

	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// ContentType is the MIME type of documents written by this package.
const ContentType = "application/xml"

func encode(w io.Writer, v cmis.Version, fn func(wr *writer)) error {
	if !v.Valid() {
		return unknownVersion(v)
	}
	wr := newWriter(w, v)
	fn(wr)
	return wr.finish()
}

func decode[T any](r io.Reader, v cmis.Version, opts []codec.DecodeOption, space, local string, fn func(rd *reader) (T, error)) (T, error) {
	var zero T
	if !v.Valid() {
		return zero, unknownVersion(v)
	}
	rd := newReader(r, v, opts)
	if _, err := rd.root(space, local); err != nil {
		return zero, err
	}
	value, err := fn(rd)
	if err != nil {
		return zero, err
	}
	rd.path = nil
	if err := rd.end(); err != nil {
		return zero, err
	}
	return value, nil
}

// end checks that nothing but whitespace follows the document element.
func (r *reader) end() error {
	for {
		tok, err := r.dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return r.malformed("%v", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return r.malformed("second document element %s", t.Name.Local)
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return r.malformed("text after document element")
			}
		}
	}
}

func unknownVersion(v cmis.Version) error {
	return oops.Code(cmis.CodeUnknownVersion).With("version", string(v)).Errorf("unknown CMIS version %q", v)
}

// EncodeProperties writes a property bag.
func EncodeProperties(w io.Writer, v cmis.Version, ps *cmis.Properties) error {
	return encode(w, v, func(wr *writer) { wr.properties("cmis:properties", ps) })
}

// DecodeProperties reads a property bag.
func DecodeProperties(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.Properties, error) {
	return decode(r, v, opts, NamespaceCMIS, "properties", (*reader).properties)
}

// EncodeObject writes one object with its relationships.
func EncodeObject(w io.Writer, v cmis.Version, o *cmis.ObjectData) error {
	return encode(w, v, func(wr *writer) { wr.object("cmisra:object", o, 0) })
}

// DecodeObject reads one object.
func DecodeObject(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.ObjectData, error) {
	return decode(r, v, opts, NamespaceRestAtom, "object", func(rd *reader) (*cmis.ObjectData, error) {
		return rd.object(0)
	})
}

// EncodeObjectList writes a page of objects.
func EncodeObjectList(w io.Writer, v cmis.Version, l *cmis.ObjectList) error {
	return encode(w, v, func(wr *writer) { wr.objectList("cmisra:objectList", l) })
}

// DecodeObjectList reads a page of objects.
func DecodeObjectList(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.ObjectList, error) {
	return decode(r, v, opts, NamespaceRestAtom, "objectList", (*reader).objectList)
}

// EncodeObjectInFolderList writes a page of folder children.
func EncodeObjectInFolderList(w io.Writer, v cmis.Version, l *cmis.ObjectInFolderList) error {
	return encode(w, v, func(wr *writer) { wr.objectInFolderList("cmisra:objectInFolderList", l) })
}

// DecodeObjectInFolderList reads a page of folder children.
func DecodeObjectInFolderList(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.ObjectInFolderList, error) {
	return decode(r, v, opts, NamespaceRestAtom, "objectInFolderList", (*reader).objectInFolderList)
}

// EncodeObjectParents writes the parents of an object.
func EncodeObjectParents(w io.Writer, v cmis.Version, parents []*cmis.ObjectParentData) error {
	return encode(w, v, func(wr *writer) { wr.objectParents("cmisra:objectParents", parents) })
}

// DecodeObjectParents reads the parents of an object.
func DecodeObjectParents(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) ([]*cmis.ObjectParentData, error) {
	return decode(r, v, opts, NamespaceRestAtom, "objectParents", (*reader).objectParents)
}

// EncodeObjectTree writes a folder tree.
func EncodeObjectTree(w io.Writer, v cmis.Version, tree []*cmis.ObjectInFolderContainer) error {
	return encode(w, v, func(wr *writer) {
		wr.open("cmisra:objectTree")
		for _, c := range tree {
			wr.objectContainer("cmis:container", c)
		}
		wr.close("cmisra:objectTree")
	})
}

// DecodeObjectTree reads a folder tree.
func DecodeObjectTree(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) ([]*cmis.ObjectInFolderContainer, error) {
	return decode(r, v, opts, NamespaceRestAtom, "objectTree", func(rd *reader) ([]*cmis.ObjectInFolderContainer, error) {
		var out []*cmis.ObjectInFolderContainer
		err := rd.children(func(el xml.StartElement) error {
			if !is(el, "container") {
				return rd.skip()
			}
			c, err := rd.objectContainer()
			if err == nil {
				out = append(out, c)
			}
			return err
		})
		return out, err
	})
}

// EncodeTypeDefinition writes a type definition. It fails with
// [cmis.ErrVersionViolation] for item and secondary types under 1.0.
func EncodeTypeDefinition(w io.Writer, v cmis.Version, td *cmis.TypeDefinition) error {
	return encode(w, v, func(wr *writer) { wr.typeDefinition("cmisra:type", td) })
}

// DecodeTypeDefinition reads a type definition.
func DecodeTypeDefinition(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.TypeDefinition, error) {
	return decode(r, v, opts, NamespaceRestAtom, "type", (*reader).typeDefinition)
}

// EncodeTypeDefinitionList writes a page of type definitions.
func EncodeTypeDefinitionList(w io.Writer, v cmis.Version, l *cmis.TypeDefinitionList) error {
	return encode(w, v, func(wr *writer) { wr.typeList("cmisra:typeList", l) })
}

// DecodeTypeDefinitionList reads a page of type definitions.
func DecodeTypeDefinitionList(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.TypeDefinitionList, error) {
	return decode(r, v, opts, NamespaceRestAtom, "typeList", (*reader).typeList)
}

// EncodeTypeTree writes a type hierarchy.
func EncodeTypeTree(w io.Writer, v cmis.Version, tree []*cmis.TypeDefinitionContainer) error {
	return encode(w, v, func(wr *writer) {
		wr.open("cmisra:typeTree")
		for _, c := range tree {
			wr.typeContainer("cmis:container", c)
		}
		wr.close("cmisra:typeTree")
	})
}

// DecodeTypeTree reads a type hierarchy.
func DecodeTypeTree(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) ([]*cmis.TypeDefinitionContainer, error) {
	return decode(r, v, opts, NamespaceRestAtom, "typeTree", func(rd *reader) ([]*cmis.TypeDefinitionContainer, error) {
		var out []*cmis.TypeDefinitionContainer
		err := rd.children(func(el xml.StartElement) error {
			if !is(el, "container") {
				return rd.skip()
			}
			c, err := rd.typeContainer()
			if err == nil {
				out = append(out, c)
			}
			return err
		})
		return out, err
	})
}

// EncodeAcl writes an ACL, including its exact flag.
func EncodeAcl(w io.Writer, v cmis.Version, acl *cmis.Acl) error {
	return encode(w, v, func(wr *writer) { wr.acl("cmis:acl", acl, true) })
}

// DecodeAcl reads an ACL.
func DecodeAcl(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.Acl, error) {
	return decode(r, v, opts, NamespaceCMIS, "acl", (*reader).acl)
}

// EncodeAllowableActions writes the actions legal in v; canCreateItem is
// dropped under 1.0.
func EncodeAllowableActions(w io.Writer, v cmis.Version, aa *cmis.AllowableActions) error {
	return encode(w, v, func(wr *writer) { wr.allowableActions("cmis:allowableActions", aa) })
}

// DecodeAllowableActions reads an allowable-actions set.
func DecodeAllowableActions(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.AllowableActions, error) {
	return decode(r, v, opts, NamespaceCMIS, "allowableActions", (*reader).allowableActions)
}

// EncodeRepositoryInfo writes a repository descriptor.
func EncodeRepositoryInfo(w io.Writer, v cmis.Version, ri *cmis.RepositoryInfo) error {
	return encode(w, v, func(wr *writer) { wr.repositoryInfo("cmisra:repositoryInfo", ri) })
}

// DecodeRepositoryInfo reads a repository descriptor.
func DecodeRepositoryInfo(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.RepositoryInfo, error) {
	return decode(r, v, opts, NamespaceRestAtom, "repositoryInfo", (*reader).repositoryInfo)
}

// EncodeRendition writes one rendition.
func EncodeRendition(w io.Writer, v cmis.Version, rd *cmis.Rendition) error {
	return encode(w, v, func(wr *writer) { wr.rendition("cmis:rendition", rd) })
}

// DecodeRendition reads one rendition.
func DecodeRendition(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.Rendition, error) {
	return decode(r, v, opts, NamespaceCMIS, "rendition", (*reader).rendition)
}

// EncodeChangeEventInfo writes change-event information.
func EncodeChangeEventInfo(w io.Writer, v cmis.Version, ce *cmis.ChangeEventInfo) error {
	return encode(w, v, func(wr *writer) { wr.changeEvent("cmis:changeEventInfo", ce) })
}

// DecodeChangeEventInfo reads change-event information.
func DecodeChangeEventInfo(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.ChangeEventInfo, error) {
	return decode(r, v, opts, NamespaceCMIS, "changeEventInfo", (*reader).changeEvent)
}

// EncodeQuery writes a query request.
func EncodeQuery(w io.Writer, v cmis.Version, q *cmis.QueryStatement) error {
	return encode(w, v, func(wr *writer) { wr.query("cmis:query", q) })
}

// DecodeQuery reads a query request.
func DecodeQuery(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.QueryStatement, error) {
	return decode(r, v, opts, NamespaceCMIS, "query", (*reader).query)
}

// EncodeBulkUpdate writes a bulk update request. It fails with
// [cmis.ErrVersionViolation] under 1.0.
func EncodeBulkUpdate(w io.Writer, v cmis.Version, bu *cmis.BulkUpdate) error {
	return encode(w, v, func(wr *writer) { wr.bulkUpdate("cmis:bulkUpdate", bu) })
}

// DecodeBulkUpdate reads a bulk update request.
func DecodeBulkUpdate(r io.Reader, v cmis.Version, opts ...codec.DecodeOption) (*cmis.BulkUpdate, error) {
	return decode(r, v, opts, NamespaceCMIS, "bulkUpdate", (*reader).bulkUpdate)
}

// Codec is the XML [codec.Codec].
type Codec struct{}

// New returns the XML codec.
func New() *Codec { return &Codec{} }

// Name implements [codec.Codec].
func (*Codec) Name() string { return "xml" }

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

// result drops typed nil values so failed decodes return a nil interface.
func result[T any](value T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return value, nil
}
