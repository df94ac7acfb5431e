// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package wsconv

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/gocmis/gocmis/pkg/cmis"
)

type wireObject struct {
	Properties       *wireProperties       `xml:"properties"`
	AllowableActions *wireAllowableActions `xml:"allowableActions"`
	Relationships    []*wireObject         `xml:"relationship"`
	ChangeEventInfo  *wireChangeEvent      `xml:"changeEventInfo"`
	Acl              *wireAcl              `xml:"acl"`
	ExactACL         *bool                 `xml:"exactACL"`
	PolicyIDs        *wirePolicyIDs        `xml:"policyIds"`
	Renditions       []*wireRendition      `xml:"rendition"`
	Any              []anyElement          `xml:",any"`
}

// wireAllowableActions binds every child generically; the action names
// are a closed set checked during conversion.
type wireAllowableActions struct {
	Items []anyElement `xml:",any"`
}

type wireAcl struct {
	Permissions []*wireAce   `xml:"permission"`
	Exact       *bool        `xml:"exact"`
	Any         []anyElement `xml:",any"`
}

type wireAce struct {
	Principal   wirePrincipal `xml:"principal"`
	Permissions []string      `xml:"permission"`
	Direct      bool          `xml:"direct"`
	Any         []anyElement  `xml:",any"`
}

type wirePrincipal struct {
	ID  string       `xml:"principalId"`
	Any []anyElement `xml:",any"`
}

type wirePolicyIDs struct {
	IDs []string     `xml:"policyId"`
	Any []anyElement `xml:",any"`
}

type wireRendition struct {
	StreamID            string       `xml:"streamId"`
	MimeType            string       `xml:"mimetype"`
	Length              string       `xml:"length,omitempty"`
	Kind                string       `xml:"kind"`
	Title               string       `xml:"title,omitempty"`
	Height              string       `xml:"height,omitempty"`
	Width               string       `xml:"width,omitempty"`
	RenditionDocumentID string       `xml:"renditionDocumentId,omitempty"`
	Any                 []anyElement `xml:",any"`
}

type wireChangeEvent struct {
	ChangeType string       `xml:"changeType"`
	ChangeTime string       `xml:"changeTime"`
	Any        []anyElement `xml:",any"`
}

type wireObjectList struct {
	Objects      []*wireObject `xml:"objects"`
	HasMoreItems bool          `xml:"hasMoreItems"`
	NumItems     string        `xml:"numItems,omitempty"`
	Any          []anyElement  `xml:",any"`
}

type wireObjectInFolder struct {
	Object      *wireObject  `xml:"object"`
	PathSegment string       `xml:"pathSegment,omitempty"`
	Any         []anyElement `xml:",any"`
}

type wireObjectInFolderList struct {
	Objects      []*wireObjectInFolder `xml:"objects"`
	HasMoreItems bool                  `xml:"hasMoreItems"`
	NumItems     string                `xml:"numItems,omitempty"`
	Any          []anyElement          `xml:",any"`
}

type wireObjectParent struct {
	Object              *wireObject  `xml:"object"`
	RelativePathSegment string       `xml:"relativePathSegment,omitempty"`
	Any                 []anyElement `xml:",any"`
}

type wireObjectParents struct {
	Parents []*wireObjectParent `xml:"parents"`
}

type wireObjectContainer struct {
	ObjectInFolder *wireObjectInFolder    `xml:"objectInFolder"`
	Children       []*wireObjectContainer `xml:"children"`
	Any            []anyElement           `xml:",any"`
}

type wireObjectTree struct {
	Objects []*wireObjectContainer `xml:"objects"`
}

// object builds the wire form of o. Relationships are converted one level
// deep; their own relationships are dropped.
func (e encoder) object(o *cmis.ObjectData, depth int) (*wireObject, error) {
	if o == nil {
		return nil, nil
	}
	if bt := o.BaseTypeID(); bt != "" && !bt.LegalIn(e.v) {
		return nil, e.violation("base type " + string(bt))
	}
	props, err := e.properties(o.Properties)
	if err != nil {
		return nil, err
	}
	out := &wireObject{
		Properties:       props,
		AllowableActions: e.allowableActions(o.AllowableActions),
		ChangeEventInfo:  e.changeEvent(o.ChangeEventInfo),
		Any:              anyElements(o.Extensions()),
	}
	if depth == 0 {
		for _, rel := range o.Relationships {
			wr, err := e.object(rel, depth+1)
			if err != nil {
				return nil, err
			}
			out.Relationships = append(out.Relationships, wr)
		}
	}
	if o.Acl != nil {
		out.Acl = e.acl(o.Acl, false)
		out.ExactACL = o.Acl.IsExact
	}
	if o.PolicyIDs != nil {
		out.PolicyIDs = &wirePolicyIDs{IDs: o.PolicyIDs.IDs, Any: anyElements(o.PolicyIDs.Extensions())}
	}
	for _, rd := range o.Renditions {
		out.Renditions = append(out.Renditions, e.rendition(rd))
	}
	return out, nil
}

func (e encoder) allowableActions(aa *cmis.AllowableActions) *wireAllowableActions {
	if aa == nil {
		return nil
	}
	out := &wireAllowableActions{}
	for _, a := range aa.For(e.v) {
		out.Items = append(out.Items, anyElement{XMLName: xml.Name{Space: NamespaceCMIS, Local: string(a)}, Text: "true"})
	}
	out.Items = append(out.Items, anyElements(aa.Extensions())...)
	return out
}

// acl builds the wire form of an ACL. Standalone ACL documents carry the
// exact flag inside; objects carry it as a sibling.
func (e encoder) acl(acl *cmis.Acl, exactInside bool) *wireAcl {
	out := &wireAcl{Any: anyElements(acl.Extensions())}
	for _, ace := range acl.Aces {
		out.Permissions = append(out.Permissions, &wireAce{
			Principal:   wirePrincipal{ID: ace.Principal.ID, Any: anyElements(ace.Principal.Extensions())},
			Permissions: ace.Permissions,
			Direct:      ace.Direct,
			Any:         anyElements(ace.Extensions()),
		})
	}
	if exactInside {
		out.Exact = acl.IsExact
	}
	return out
}

func (e encoder) rendition(rd *cmis.Rendition) *wireRendition {
	return &wireRendition{
		StreamID:            rd.StreamID,
		MimeType:            rd.MimeType,
		Length:              formatInteger(rd.Length),
		Kind:                rd.Kind,
		Title:               rd.Title,
		Height:              formatInteger(rd.Height),
		Width:               formatInteger(rd.Width),
		RenditionDocumentID: rd.RenditionDocumentID,
		Any:                 anyElements(rd.Extensions()),
	}
}

func (e encoder) changeEvent(ce *cmis.ChangeEventInfo) *wireChangeEvent {
	if ce == nil {
		return nil
	}
	return &wireChangeEvent{
		ChangeType: string(ce.ChangeType),
		ChangeTime: cmis.FormatDateTime(ce.ChangeTime),
		Any:        anyElements(ce.Extensions()),
	}
}

func (e encoder) objectList(l *cmis.ObjectList) (*wireObjectList, error) {
	out := &wireObjectList{
		HasMoreItems: l.HasMoreItems,
		NumItems:     formatInteger(l.NumItems),
		Any:          anyElements(l.Extensions()),
	}
	for _, o := range l.Objects {
		wo, err := e.object(o, 0)
		if err != nil {
			return nil, err
		}
		out.Objects = append(out.Objects, wo)
	}
	return out, nil
}

func (e encoder) objectInFolder(f *cmis.ObjectInFolderData) (*wireObjectInFolder, error) {
	if f == nil {
		return nil, nil
	}
	wo, err := e.object(f.Object, 0)
	if err != nil {
		return nil, err
	}
	return &wireObjectInFolder{Object: wo, PathSegment: f.PathSegment, Any: anyElements(f.Extensions())}, nil
}

func (e encoder) objectInFolderList(l *cmis.ObjectInFolderList) (*wireObjectInFolderList, error) {
	out := &wireObjectInFolderList{
		HasMoreItems: l.HasMoreItems,
		NumItems:     formatInteger(l.NumItems),
		Any:          anyElements(l.Extensions()),
	}
	for _, f := range l.Objects {
		wf, err := e.objectInFolder(f)
		if err != nil {
			return nil, err
		}
		out.Objects = append(out.Objects, wf)
	}
	return out, nil
}

func (e encoder) objectParents(parents []*cmis.ObjectParentData) (*wireObjectParents, error) {
	out := &wireObjectParents{}
	for _, p := range parents {
		wo, err := e.object(p.Object, 0)
		if err != nil {
			return nil, err
		}
		out.Parents = append(out.Parents, &wireObjectParent{
			Object:              wo,
			RelativePathSegment: p.RelativePathSegment,
			Any:                 anyElements(p.Extensions()),
		})
	}
	return out, nil
}

func (e encoder) objectContainer(c *cmis.ObjectInFolderContainer) (*wireObjectContainer, error) {
	wf, err := e.objectInFolder(c.Object)
	if err != nil {
		return nil, err
	}
	out := &wireObjectContainer{ObjectInFolder: wf, Any: anyElements(c.Extensions())}
	for _, child := range c.Children {
		wc, err := e.objectContainer(child)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, wc)
	}
	return out, nil
}

func (e encoder) objectTree(tree []*cmis.ObjectInFolderContainer) (*wireObjectTree, error) {
	out := &wireObjectTree{}
	for _, c := range tree {
		wc, err := e.objectContainer(c)
		if err != nil {
			return nil, err
		}
		out.Objects = append(out.Objects, wc)
	}
	return out, nil
}

func (d decoder) object(w *wireObject, depth int) (*cmis.ObjectData, error) {
	if w == nil {
		return nil, nil
	}
	o := &cmis.ObjectData{}
	var err error
	if o.Properties, err = d.at("properties", 0).properties(w.Properties); err != nil {
		return nil, err
	}
	if o.AllowableActions, err = d.at("allowableActions", 0).allowableActions(w.AllowableActions); err != nil {
		return nil, err
	}
	if depth == 0 {
		for i, wr := range w.Relationships {
			rel, err := d.at("relationship", i+1).object(wr, depth+1)
			if err != nil {
				return nil, err
			}
			o.Relationships = append(o.Relationships, rel)
		}
	}
	if o.ChangeEventInfo, err = d.at("changeEventInfo", 0).changeEvent(w.ChangeEventInfo); err != nil {
		return nil, err
	}
	if w.Acl != nil {
		o.Acl = d.acl(w.Acl)
	}
	if w.ExactACL != nil {
		if o.Acl == nil {
			o.Acl = &cmis.Acl{}
		}
		o.Acl.IsExact = w.ExactACL
	}
	if w.PolicyIDs != nil {
		o.PolicyIDs = &cmis.PolicyIDList{IDs: w.PolicyIDs.IDs}
		o.PolicyIDs.SetExtensions(extensions(w.PolicyIDs.Any))
	}
	for i, wr := range w.Renditions {
		rd, err := d.at("rendition", i+1).rendition(wr)
		if err != nil {
			return nil, err
		}
		o.Renditions = append(o.Renditions, rd)
	}
	o.SetExtensions(extensions(w.Any))
	return o, nil
}

func (d decoder) allowableActions(w *wireAllowableActions) (*cmis.AllowableActions, error) {
	if w == nil {
		return nil, nil
	}
	aa := cmis.NewAllowableActions()
	var ext []cmis.ExtensionElement
	for _, item := range w.Items {
		a := cmis.Action(item.XMLName.Local)
		if item.XMLName.Space != NamespaceCMIS || !a.LegalIn(d.v) || len(item.Children) > 0 {
			ext = append(ext, item.extension())
			continue
		}
		allowed, err := strconv.ParseBool(strings.TrimSpace(item.Text))
		if err != nil {
			return nil, d.at(item.XMLName.Local, 0).malformed("invalid boolean %q", item.Text)
		}
		if allowed {
			aa.Add(a)
		}
	}
	aa.SetExtensions(ext)
	return aa, nil
}

func (d decoder) acl(w *wireAcl) *cmis.Acl {
	acl := &cmis.Acl{IsExact: w.Exact}
	for _, wa := range w.Permissions {
		ace := &cmis.Ace{
			Principal:   cmis.Principal{ID: wa.Principal.ID},
			Permissions: wa.Permissions,
			Direct:      wa.Direct,
		}
		ace.Principal.SetExtensions(extensions(wa.Principal.Any))
		ace.SetExtensions(extensions(wa.Any))
		acl.Aces = append(acl.Aces, ace)
	}
	acl.SetExtensions(extensions(w.Any))
	return acl
}

func (d decoder) rendition(w *wireRendition) (*cmis.Rendition, error) {
	rd := &cmis.Rendition{
		StreamID:            w.StreamID,
		MimeType:            w.MimeType,
		Kind:                w.Kind,
		Title:               w.Title,
		RenditionDocumentID: w.RenditionDocumentID,
	}
	var err error
	if rd.Length, err = d.integer("length", w.Length); err != nil {
		return nil, err
	}
	if rd.Height, err = d.integer("height", w.Height); err != nil {
		return nil, err
	}
	if rd.Width, err = d.integer("width", w.Width); err != nil {
		return nil, err
	}
	rd.SetExtensions(extensions(w.Any))
	return rd, nil
}

func (d decoder) changeEvent(w *wireChangeEvent) (*cmis.ChangeEventInfo, error) {
	if w == nil {
		return nil, nil
	}
	ct, err := parseEnum(d, "changeType", "change type", w.ChangeType, cmis.ChangeType.Valid)
	if err != nil {
		return nil, err
	}
	t, err := cmis.ParseDateTime(w.ChangeTime)
	if err != nil {
		return nil, d.at("changeTime", 0).malformed("%v", err)
	}
	ce := &cmis.ChangeEventInfo{ChangeType: ct, ChangeTime: t}
	ce.SetExtensions(extensions(w.Any))
	return ce, nil
}

func (d decoder) objectList(w *wireObjectList) (*cmis.ObjectList, error) {
	l := &cmis.ObjectList{HasMoreItems: w.HasMoreItems}
	for i, wo := range w.Objects {
		o, err := d.at("objects", i+1).object(wo, 0)
		if err != nil {
			return nil, err
		}
		l.Objects = append(l.Objects, o)
	}
	var err error
	if l.NumItems, err = d.integer("numItems", w.NumItems); err != nil {
		return nil, err
	}
	l.SetExtensions(extensions(w.Any))
	return l, nil
}

func (d decoder) objectInFolder(w *wireObjectInFolder) (*cmis.ObjectInFolderData, error) {
	if w == nil {
		return nil, nil
	}
	o, err := d.at("object", 0).object(w.Object, 0)
	if err != nil {
		return nil, err
	}
	f := &cmis.ObjectInFolderData{Object: o, PathSegment: w.PathSegment}
	f.SetExtensions(extensions(w.Any))
	return f, nil
}

func (d decoder) objectInFolderList(w *wireObjectInFolderList) (*cmis.ObjectInFolderList, error) {
	l := &cmis.ObjectInFolderList{HasMoreItems: w.HasMoreItems}
	for i, wf := range w.Objects {
		f, err := d.at("objects", i+1).objectInFolder(wf)
		if err != nil {
			return nil, err
		}
		l.Objects = append(l.Objects, f)
	}
	var err error
	if l.NumItems, err = d.integer("numItems", w.NumItems); err != nil {
		return nil, err
	}
	l.SetExtensions(extensions(w.Any))
	return l, nil
}

func (d decoder) objectParents(w *wireObjectParents) ([]*cmis.ObjectParentData, error) {
	var out []*cmis.ObjectParentData
	for i, wp := range w.Parents {
		o, err := d.at("parents", i+1).at("object", 0).object(wp.Object, 0)
		if err != nil {
			return nil, err
		}
		p := &cmis.ObjectParentData{Object: o, RelativePathSegment: wp.RelativePathSegment}
		p.SetExtensions(extensions(wp.Any))
		out = append(out, p)
	}
	return out, nil
}

func (d decoder) objectContainer(w *wireObjectContainer) (*cmis.ObjectInFolderContainer, error) {
	f, err := d.at("objectInFolder", 0).objectInFolder(w.ObjectInFolder)
	if err != nil {
		return nil, err
	}
	c := &cmis.ObjectInFolderContainer{Object: f}
	for i, wc := range w.Children {
		child, err := d.at("children", i+1).objectContainer(wc)
		if err != nil {
			return nil, err
		}
		c.Children = append(c.Children, child)
	}
	c.SetExtensions(extensions(w.Any))
	return c, nil
}

func (d decoder) objectTree(w *wireObjectTree) ([]*cmis.ObjectInFolderContainer, error) {
	var out []*cmis.ObjectInFolderContainer
	for i, wc := range w.Objects {
		c, err := d.at("objects", i+1).objectContainer(wc)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
