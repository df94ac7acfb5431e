// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package jsonconv

import (
	"time"

	"github.com/gocmis/gocmis/pkg/cmis"
)

var (
	objectKeys = propertiesKeys.with(cmis.Version10,
		"allowableActions", "relationships", "changeEventInfo", "acl", "exactACL", "policyIds", "renditions")
	aclKeys         = newKeys("aces", "isExact")
	aceKeys         = newKeys("principal", "permissions", "isDirect")
	principalKeys   = newKeys("principalId")
	policyIDKeys    = newKeys("ids")
	renditionKeys   = newKeys("streamId", "mimeType", "length", "kind", "title", "height", "width", "renditionDocumentId")
	changeEventKeys = newKeys("changeType", "changeTime")
	listKeys        = newKeys("objects", "hasMoreItems", "numItems")
	inFolderKeys    = newKeys("object", "pathSegment")
	parentKeys      = newKeys("object", "relativePathSegment")
	containerKeys   = newKeys("object", "children")
	allowableActKeys = func() keys {
		ks := keys{}
		for _, a := range cmis.Actions {
			since := cmis.Version11
			if a.LegalIn(cmis.Version10) {
				since = cmis.Version10
			}
			ks[string(a)] = since
		}
		return ks
	}()
)

// object writes one object. Relationships are expanded for top-level
// objects only.
func (e encoder) object(od *cmis.ObjectData, depth int) (*object, error) {
	if bt := od.BaseTypeID(); bt != "" && !bt.LegalIn(e.v) {
		return nil, e.violation("base type " + string(bt))
	}
	o := newObject()
	if err := e.properties(o, od.Properties); err != nil {
		return nil, err
	}
	if od.AllowableActions != nil {
		o.Set("allowableActions", e.allowableActions(od.AllowableActions))
	}
	if depth == 0 && len(od.Relationships) > 0 {
		rels := make([]any, 0, len(od.Relationships))
		for _, rel := range od.Relationships {
			ro, err := e.object(rel, depth+1)
			if err != nil {
				return nil, err
			}
			rels = append(rels, ro)
		}
		o.Set("relationships", rels)
	}
	if od.ChangeEventInfo != nil {
		o.Set("changeEventInfo", e.changeEvent(od.ChangeEventInfo))
	}
	if od.Acl != nil {
		o.Set("acl", e.acl(od.Acl, false))
		setBool(o, "exactACL", od.Acl.IsExact)
	}
	if od.PolicyIDs != nil {
		po := newObject()
		po.Set("ids", nonNil(od.PolicyIDs.IDs))
		e.extensions(po, policyIDKeys, od.PolicyIDs.Extensions())
		o.Set("policyIds", po)
	}
	if len(od.Renditions) > 0 {
		rds := make([]any, 0, len(od.Renditions))
		for _, rd := range od.Renditions {
			rds = append(rds, e.rendition(rd))
		}
		o.Set("renditions", rds)
	}
	e.extensions(o, objectKeys, od.Extensions())
	return o, nil
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

// allowableActions writes the granted actions as true members. Actions v
// does not define are dropped.
func (e encoder) allowableActions(aa *cmis.AllowableActions) *object {
	o := newObject()
	for _, a := range aa.For(e.v) {
		o.Set(string(a), true)
	}
	e.extensions(o, allowableActKeys, aa.Extensions())
	return o
}

// acl writes an ACL. Standalone ACL documents carry isExact inside; objects
// carry it as the exactACL sibling.
func (e encoder) acl(acl *cmis.Acl, exactInside bool) *object {
	aces := make([]any, 0, len(acl.Aces))
	for _, ace := range acl.Aces {
		principal := newObject()
		principal.Set("principalId", ace.Principal.ID)
		e.extensions(principal, principalKeys, ace.Principal.Extensions())

		ao := newObject()
		ao.Set("principal", principal)
		ao.Set("permissions", nonNil(ace.Permissions))
		ao.Set("isDirect", ace.Direct)
		e.extensions(ao, aceKeys, ace.Extensions())
		aces = append(aces, ao)
	}
	o := newObject()
	o.Set("aces", aces)
	if exactInside {
		setBool(o, "isExact", acl.IsExact)
	}
	e.extensions(o, aclKeys, acl.Extensions())
	return o
}

func (e encoder) rendition(rd *cmis.Rendition) *object {
	o := newObject()
	setString(o, "streamId", rd.StreamID)
	setString(o, "mimeType", rd.MimeType)
	setInteger(o, "length", rd.Length)
	setString(o, "kind", rd.Kind)
	setString(o, "title", rd.Title)
	setInteger(o, "height", rd.Height)
	setInteger(o, "width", rd.Width)
	setString(o, "renditionDocumentId", rd.RenditionDocumentID)
	e.extensions(o, renditionKeys, rd.Extensions())
	return o
}

func (e encoder) changeEvent(ce *cmis.ChangeEventInfo) *object {
	o := newObject()
	setString(o, "changeType", string(ce.ChangeType))
	if !ce.ChangeTime.IsZero() {
		o.Set("changeTime", cmis.FormatDateTime(ce.ChangeTime))
	}
	e.extensions(o, changeEventKeys, ce.Extensions())
	return o
}

func (e encoder) objectList(l *cmis.ObjectList) (any, error) {
	objs := make([]any, 0, len(l.Objects))
	for _, od := range l.Objects {
		o, err := e.object(od, 0)
		if err != nil {
			return nil, err
		}
		objs = append(objs, o)
	}
	o := newObject()
	o.Set("objects", objs)
	o.Set("hasMoreItems", l.HasMoreItems)
	setInteger(o, "numItems", l.NumItems)
	e.extensions(o, listKeys, l.Extensions())
	return o, nil
}

func (e encoder) objectInFolder(f *cmis.ObjectInFolderData) (*object, error) {
	o := newObject()
	if f.Object != nil {
		obj, err := e.object(f.Object, 0)
		if err != nil {
			return nil, err
		}
		o.Set("object", obj)
	}
	setString(o, "pathSegment", f.PathSegment)
	e.extensions(o, inFolderKeys, f.Extensions())
	return o, nil
}

func (e encoder) objectInFolderList(l *cmis.ObjectInFolderList) (any, error) {
	objs := make([]any, 0, len(l.Objects))
	for _, f := range l.Objects {
		o, err := e.objectInFolder(f)
		if err != nil {
			return nil, err
		}
		objs = append(objs, o)
	}
	o := newObject()
	o.Set("objects", objs)
	o.Set("hasMoreItems", l.HasMoreItems)
	setInteger(o, "numItems", l.NumItems)
	e.extensions(o, listKeys, l.Extensions())
	return o, nil
}

func (e encoder) objectParents(parents []*cmis.ObjectParentData) (any, error) {
	out := make([]any, 0, len(parents))
	for _, p := range parents {
		o := newObject()
		if p.Object != nil {
			obj, err := e.object(p.Object, 0)
			if err != nil {
				return nil, err
			}
			o.Set("object", obj)
		}
		setString(o, "relativePathSegment", p.RelativePathSegment)
		e.extensions(o, parentKeys, p.Extensions())
		out = append(out, o)
	}
	return out, nil
}

func (e encoder) objectContainer(c *cmis.ObjectInFolderContainer) (*object, error) {
	o := newObject()
	if c.Object != nil {
		f, err := e.objectInFolder(c.Object)
		if err != nil {
			return nil, err
		}
		o.Set("object", f)
	}
	if len(c.Children) > 0 {
		children, err := e.objectTree(c.Children)
		if err != nil {
			return nil, err
		}
		o.Set("children", children)
	}
	e.extensions(o, containerKeys, c.Extensions())
	return o, nil
}

func (e encoder) objectTree(tree []*cmis.ObjectInFolderContainer) (any, error) {
	out := make([]any, 0, len(tree))
	for _, c := range tree {
		o, err := e.objectContainer(c)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (d decoder) object(val value) (*cmis.ObjectData, error) {
	od := &cmis.ObjectData{}
	var (
		props bag
		exact *bool
	)
	ext, err := d.fields(val, objectKeys, func(key string, d decoder, val value) error {
		var err error
		switch key {
		case "properties", "propertiesExtension":
			err = props.bind(key, d, val)
		case "allowableActions":
			od.AllowableActions, err = d.allowableActions(val)
		case "relationships":
			err = d.each(val, func(d decoder, val value) error {
				rel, err := d.object(val)
				if err != nil {
					return err
				}
				od.Relationships = append(od.Relationships, rel)
				return nil
			})
		case "changeEventInfo":
			od.ChangeEventInfo, err = d.changeEvent(val)
		case "acl":
			od.Acl, err = d.acl(val)
		case "exactACL":
			exact, err = d.optBool(val)
		case "policyIds":
			od.PolicyIDs, err = d.policyIDs(val)
		case "renditions":
			err = d.each(val, func(d decoder, val value) error {
				rd, err := d.rendition(val)
				if err != nil {
					return err
				}
				od.Renditions = append(od.Renditions, rd)
				return nil
			})
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	od.Properties = props.result()
	if exact != nil {
		if od.Acl == nil {
			od.Acl = &cmis.Acl{}
		}
		od.Acl.IsExact = exact
	}
	od.SetExtensions(ext)
	return od, nil
}

// allowableActions reads the action flags. Actions set to false are not
// granted; names the source version does not define are extensions.
func (d decoder) allowableActions(val value) (*cmis.AllowableActions, error) {
	aa := cmis.NewAllowableActions()
	ext, err := d.fields(val, allowableActKeys, func(key string, d decoder, val value) error {
		granted, err := d.boolean(val)
		if err != nil {
			return err
		}
		if granted {
			aa.Add(cmis.Action(key))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	aa.SetExtensions(ext)
	return aa, nil
}

func (d decoder) acl(val value) (*cmis.Acl, error) {
	acl := &cmis.Acl{}
	ext, err := d.fields(val, aclKeys, func(key string, d decoder, val value) error {
		var err error
		switch key {
		case "aces":
			err = d.each(val, func(d decoder, val value) error {
				ace, err := d.ace(val)
				if err != nil {
					return err
				}
				acl.Aces = append(acl.Aces, ace)
				return nil
			})
		case "isExact":
			acl.IsExact, err = d.optBool(val)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	acl.SetExtensions(ext)
	return acl, nil
}

func (d decoder) ace(val value) (*cmis.Ace, error) {
	ace := &cmis.Ace{}
	ext, err := d.fields(val, aceKeys, func(key string, d decoder, val value) error {
		var err error
		switch key {
		case "principal":
			var pext []cmis.ExtensionElement
			pext, err = d.fields(val, principalKeys, func(_ string, d decoder, val value) error {
				var err error
				ace.Principal.ID, err = d.str(val)
				return err
			})
			ace.Principal.SetExtensions(pext)
		case "permissions":
			ace.Permissions, err = d.strings(val)
		case "isDirect":
			ace.Direct, err = d.boolean(val)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if ace.Principal.ID == "" {
		return nil, d.malformed("ace without principalId")
	}
	ace.SetExtensions(ext)
	return ace, nil
}

func (d decoder) policyIDs(val value) (*cmis.PolicyIDList, error) {
	pl := &cmis.PolicyIDList{}
	ext, err := d.fields(val, policyIDKeys, func(_ string, d decoder, val value) error {
		var err error
		pl.IDs, err = d.strings(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	pl.SetExtensions(ext)
	return pl, nil
}

func (d decoder) rendition(val value) (*cmis.Rendition, error) {
	rd := &cmis.Rendition{}
	ext, err := d.fields(val, renditionKeys, func(key string, d decoder, val value) error {
		var err error
		switch key {
		case "streamId":
			rd.StreamID, err = d.str(val)
		case "mimeType":
			rd.MimeType, err = d.str(val)
		case "length":
			rd.Length, err = d.integer(val)
		case "kind":
			rd.Kind, err = d.str(val)
		case "title":
			rd.Title, err = d.str(val)
		case "height":
			rd.Height, err = d.integer(val)
		case "width":
			rd.Width, err = d.integer(val)
		case "renditionDocumentId":
			rd.RenditionDocumentID, err = d.str(val)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	rd.SetExtensions(ext)
	return rd, nil
}

func (d decoder) changeEvent(val value) (*cmis.ChangeEventInfo, error) {
	ce := &cmis.ChangeEventInfo{}
	ext, err := d.fields(val, changeEventKeys, func(key string, d decoder, val value) error {
		var err error
		switch key {
		case "changeType":
			ce.ChangeType, err = parseEnum(d, "change type", val, cmis.ChangeType.Valid)
		case "changeTime":
			ce.ChangeTime, err = d.dateTime(val)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	ce.SetExtensions(ext)
	return ce, nil
}

// dateTime reads an xsd:dateTime string or milliseconds since the epoch.
func (d decoder) dateTime(val value) (time.Time, error) {
	v, err := d.propertyValue(cmis.PropertyTypeDateTime, val)
	if err != nil {
		return time.Time{}, err
	}
	return v.(time.Time), nil
}

func (d decoder) objectList(val value) (*cmis.ObjectList, error) {
	l := &cmis.ObjectList{}
	ext, err := d.fields(val, listKeys, func(key string, d decoder, val value) error {
		var err error
		switch key {
		case "objects":
			err = d.each(val, func(d decoder, val value) error {
				od, err := d.object(val)
				if err != nil {
					return err
				}
				l.Objects = append(l.Objects, od)
				return nil
			})
		case "hasMoreItems":
			l.HasMoreItems, err = d.boolean(val)
		case "numItems":
			l.NumItems, err = d.integer(val)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	l.SetExtensions(ext)
	return l, nil
}

func (d decoder) objectInFolder(val value) (*cmis.ObjectInFolderData, error) {
	f := &cmis.ObjectInFolderData{}
	ext, err := d.fields(val, inFolderKeys, func(key string, d decoder, val value) error {
		var err error
		switch key {
		case "object":
			f.Object, err = d.object(val)
		case "pathSegment":
			f.PathSegment, err = d.str(val)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	f.SetExtensions(ext)
	return f, nil
}

func (d decoder) objectInFolderList(val value) (*cmis.ObjectInFolderList, error) {
	l := &cmis.ObjectInFolderList{}
	ext, err := d.fields(val, listKeys, func(key string, d decoder, val value) error {
		var err error
		switch key {
		case "objects":
			err = d.each(val, func(d decoder, val value) error {
				f, err := d.objectInFolder(val)
				if err != nil {
					return err
				}
				l.Objects = append(l.Objects, f)
				return nil
			})
		case "hasMoreItems":
			l.HasMoreItems, err = d.boolean(val)
		case "numItems":
			l.NumItems, err = d.integer(val)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	l.SetExtensions(ext)
	return l, nil
}

func (d decoder) objectParents(val value) ([]*cmis.ObjectParentData, error) {
	var out []*cmis.ObjectParentData
	err := d.each(val, func(d decoder, val value) error {
		p := &cmis.ObjectParentData{}
		ext, err := d.fields(val, parentKeys, func(key string, d decoder, val value) error {
			var err error
			switch key {
			case "object":
				p.Object, err = d.object(val)
			case "relativePathSegment":
				p.RelativePathSegment, err = d.str(val)
			}
			return err
		})
		if err != nil {
			return err
		}
		p.SetExtensions(ext)
		out = append(out, p)
		return nil
	})
	return out, err
}

func (d decoder) objectContainer(val value) (*cmis.ObjectInFolderContainer, error) {
	c := &cmis.ObjectInFolderContainer{}
	ext, err := d.fields(val, containerKeys, func(key string, d decoder, val value) error {
		var err error
		switch key {
		case "object":
			c.Object, err = d.objectInFolder(val)
		case "children":
			c.Children, err = d.objectTree(val)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if c.Object == nil {
		return nil, d.malformed("container without object")
	}
	c.SetExtensions(ext)
	return c, nil
}

func (d decoder) objectTree(val value) ([]*cmis.ObjectInFolderContainer, error) {
	var out []*cmis.ObjectInFolderContainer
	err := d.each(val, func(d decoder, val value) error {
		c, err := d.objectContainer(val)
		if err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	return out, err
}
