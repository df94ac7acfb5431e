// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package xmlconv

import (
	"encoding/xml"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// object writes the content of a cmisObjectType element. Relationships
// are written one level deep; their own relationships are dropped.
func (w *writer) object(name string, o *cmis.ObjectData, depth int) {
	if bt := o.BaseTypeID(); bt != "" && !bt.LegalIn(w.v) {
		w.violation("base type " + string(bt))
		return
	}
	w.open(name)
	if o.Properties != nil {
		w.properties("cmis:properties", o.Properties)
	}
	if o.AllowableActions != nil {
		w.allowableActions("cmis:allowableActions", o.AllowableActions)
	}
	if depth == 0 {
		for _, rel := range o.Relationships {
			w.object("cmis:relationship", rel, depth+1)
		}
	}
	if o.ChangeEventInfo != nil {
		w.changeEvent("cmis:changeEventInfo", o.ChangeEventInfo)
	}
	if o.Acl != nil {
		w.acl("cmis:acl", o.Acl, false)
		w.optBoolean("cmis:exactACL", o.Acl.IsExact)
	}
	if o.PolicyIDs != nil {
		w.open("cmis:policyIds")
		w.texts("cmis:policyId", o.PolicyIDs.IDs)
		w.extensions(o.PolicyIDs.Extensions())
		w.close("cmis:policyIds")
	}
	for _, rd := range o.Renditions {
		w.rendition("cmis:rendition", rd)
	}
	w.extensions(o.Extensions())
	w.close(name)
}

func (w *writer) allowableActions(name string, aa *cmis.AllowableActions) {
	w.open(name)
	for _, a := range aa.For(w.v) {
		w.boolean("cmis:"+string(a), true)
	}
	w.extensions(aa.Extensions())
	w.close(name)
}

// acl writes the entries. When exactInside is set the exact flag is
// written as the last known child, as standalone ACL documents carry it.
func (w *writer) acl(name string, acl *cmis.Acl, exactInside bool) {
	w.open(name)
	for _, ace := range acl.Aces {
		w.open("cmis:permission")
		w.open("cmis:principal")
		w.text("cmis:principalId", ace.Principal.ID)
		w.extensions(ace.Principal.Extensions())
		w.close("cmis:principal")
		w.texts("cmis:permission", ace.Permissions)
		w.boolean("cmis:direct", ace.Direct)
		w.extensions(ace.Extensions())
		w.close("cmis:permission")
	}
	if exactInside {
		w.optBoolean("cmis:exact", acl.IsExact)
	}
	w.extensions(acl.Extensions())
	w.close(name)
}

func (w *writer) rendition(name string, rd *cmis.Rendition) {
	w.open(name)
	w.text("cmis:streamId", rd.StreamID)
	w.text("cmis:mimetype", rd.MimeType)
	w.integer("cmis:length", rd.Length)
	w.text("cmis:kind", rd.Kind)
	w.optText("cmis:title", rd.Title)
	w.integer("cmis:height", rd.Height)
	w.integer("cmis:width", rd.Width)
	w.optText("cmis:renditionDocumentId", rd.RenditionDocumentID)
	w.extensions(rd.Extensions())
	w.close(name)
}

func (w *writer) changeEvent(name string, ce *cmis.ChangeEventInfo) {
	w.open(name)
	w.text("cmis:changeType", string(ce.ChangeType))
	w.text("cmis:changeTime", cmis.FormatDateTime(ce.ChangeTime))
	w.extensions(ce.Extensions())
	w.close(name)
}

func (w *writer) objectList(name string, l *cmis.ObjectList) {
	w.open(name)
	for _, o := range l.Objects {
		w.object("cmis:objects", o, 0)
	}
	w.boolean("cmis:hasMoreItems", l.HasMoreItems)
	w.integer("cmis:numItems", l.NumItems)
	w.extensions(l.Extensions())
	w.close(name)
}

func (w *writer) objectInFolder(name string, f *cmis.ObjectInFolderData) {
	w.open(name)
	if f.Object != nil {
		w.object("cmis:object", f.Object, 0)
	}
	w.optText("cmis:pathSegment", f.PathSegment)
	w.extensions(f.Extensions())
	w.close(name)
}

func (w *writer) objectInFolderList(name string, l *cmis.ObjectInFolderList) {
	w.open(name)
	for _, f := range l.Objects {
		w.objectInFolder("cmis:objects", f)
	}
	w.boolean("cmis:hasMoreItems", l.HasMoreItems)
	w.integer("cmis:numItems", l.NumItems)
	w.extensions(l.Extensions())
	w.close(name)
}

func (w *writer) objectParents(name string, parents []*cmis.ObjectParentData) {
	w.open(name)
	for _, p := range parents {
		w.open("cmis:parents")
		if p.Object != nil {
			w.object("cmis:object", p.Object, 0)
		}
		w.optText("cmis:relativePathSegment", p.RelativePathSegment)
		w.extensions(p.Extensions())
		w.close("cmis:parents")
	}
	w.close(name)
}

func (w *writer) objectContainer(name string, c *cmis.ObjectInFolderContainer) {
	w.open(name)
	if c.Object != nil {
		w.objectInFolder("cmis:objectInFolder", c.Object)
	}
	for _, child := range c.Children {
		w.objectContainer("cmis:children", child)
	}
	w.extensions(c.Extensions())
	w.close(name)
}

func (r *reader) object(depth int) (*cmis.ObjectData, error) {
	o := &cmis.ObjectData{}
	var exact *bool
	err := r.children(func(el xml.StartElement) error {
		var err error
		switch {
		case is(el, "properties"):
			o.Properties, err = r.properties()
		case is(el, "allowableActions"):
			o.AllowableActions, err = r.allowableActions()
		case is(el, "relationship") && depth == 0:
			var rel *cmis.ObjectData
			if rel, err = r.object(depth + 1); err == nil {
				o.Relationships = append(o.Relationships, rel)
			}
		case is(el, "changeEventInfo"):
			o.ChangeEventInfo, err = r.changeEvent()
		case is(el, "acl"):
			o.Acl, err = r.acl()
		case is(el, "exactACL"):
			exact, err = r.boolPtr()
		case is(el, "policyIds"):
			o.PolicyIDs, err = r.policyIDs()
		case is(el, "rendition"):
			var rd *cmis.Rendition
			if rd, err = r.rendition(); err == nil {
				o.Renditions = append(o.Renditions, rd)
			}
		default:
			err = r.unknown(el, o)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if exact != nil {
		if o.Acl == nil {
			o.Acl = &cmis.Acl{}
		}
		o.Acl.IsExact = exact
	}
	return o, nil
}

func (r *reader) allowableActions() (*cmis.AllowableActions, error) {
	aa := cmis.NewAllowableActions()
	err := r.children(func(el xml.StartElement) error {
		a := cmis.Action(el.Name.Local)
		if el.Name.Space != NamespaceCMIS || !a.Valid() || !a.LegalIn(r.v) {
			return r.unknown(el, aa)
		}
		allowed, err := r.boolean()
		if err != nil {
			return err
		}
		if allowed {
			aa.Add(a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return aa, nil
}

func (r *reader) acl() (*cmis.Acl, error) {
	acl := &cmis.Acl{}
	err := r.children(func(el xml.StartElement) error {
		switch {
		case is(el, "permission"):
			ace, err := r.ace()
			if err != nil {
				return err
			}
			acl.Aces = append(acl.Aces, ace)
			return nil
		case is(el, "exact"):
			var err error
			acl.IsExact, err = r.boolPtr()
			return err
		}
		return r.unknown(el, acl)
	})
	if err != nil {
		return nil, err
	}
	return acl, nil
}

func (r *reader) ace() (*cmis.Ace, error) {
	ace := &cmis.Ace{}
	err := r.children(func(el xml.StartElement) error {
		var err error
		switch {
		case is(el, "principal"):
			err = r.children(func(pel xml.StartElement) error {
				if is(pel, "principalId") {
					var perr error
					ace.Principal.ID, perr = r.text()
					return perr
				}
				return r.unknown(pel, &ace.Principal)
			})
		case is(el, "permission"):
			var p string
			if p, err = r.text(); err == nil {
				ace.Permissions = append(ace.Permissions, p)
			}
		case is(el, "direct"):
			ace.Direct, err = r.boolean()
		default:
			err = r.unknown(el, ace)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return ace, nil
}

func (r *reader) policyIDs() (*cmis.PolicyIDList, error) {
	pl := &cmis.PolicyIDList{}
	err := r.children(func(el xml.StartElement) error {
		if !is(el, "policyId") {
			return r.unknown(el, pl)
		}
		id, err := r.text()
		if err == nil {
			pl.IDs = append(pl.IDs, id)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return pl, nil
}

func (r *reader) rendition() (*cmis.Rendition, error) {
	rd := &cmis.Rendition{}
	err := r.children(func(el xml.StartElement) error {
		var err error
		switch {
		case is(el, "streamId"):
			rd.StreamID, err = r.text()
		case is(el, "mimetype"):
			rd.MimeType, err = r.text()
		case is(el, "length"):
			rd.Length, err = r.integer()
		case is(el, "kind"):
			rd.Kind, err = r.text()
		case is(el, "title"):
			rd.Title, err = r.text()
		case is(el, "height"):
			rd.Height, err = r.integer()
		case is(el, "width"):
			rd.Width, err = r.integer()
		case is(el, "renditionDocumentId"):
			rd.RenditionDocumentID, err = r.text()
		default:
			err = r.unknown(el, rd)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return rd, nil
}

func (r *reader) changeEvent() (*cmis.ChangeEventInfo, error) {
	ce := &cmis.ChangeEventInfo{}
	err := r.children(func(el xml.StartElement) error {
		var err error
		switch {
		case is(el, "changeType"):
			ce.ChangeType, err = enum(r, "change type", cmis.ChangeType.Valid)
		case is(el, "changeTime"):
			var s string
			if s, err = r.text(); err == nil {
				if ce.ChangeTime, err = cmis.ParseDateTime(s); err != nil {
					err = r.malformed("%v", err)
				}
			}
		default:
			err = r.unknown(el, ce)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return ce, nil
}

func (r *reader) objectList() (*cmis.ObjectList, error) {
	l := &cmis.ObjectList{}
	err := r.children(func(el xml.StartElement) error {
		var err error
		switch {
		case is(el, "objects"):
			var o *cmis.ObjectData
			if o, err = r.object(0); err == nil {
				l.Objects = append(l.Objects, o)
			}
		case is(el, "hasMoreItems"):
			l.HasMoreItems, err = r.boolean()
		case is(el, "numItems"):
			l.NumItems, err = r.integer()
		default:
			err = r.unknown(el, l)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *reader) objectInFolder() (*cmis.ObjectInFolderData, error) {
	f := &cmis.ObjectInFolderData{}
	err := r.children(func(el xml.StartElement) error {
		var err error
		switch {
		case is(el, "object"):
			f.Object, err = r.object(0)
		case is(el, "pathSegment"):
			f.PathSegment, err = r.text()
		default:
			err = r.unknown(el, f)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *reader) objectInFolderList() (*cmis.ObjectInFolderList, error) {
	l := &cmis.ObjectInFolderList{}
	err := r.children(func(el xml.StartElement) error {
		var err error
		switch {
		case is(el, "objects"):
			var f *cmis.ObjectInFolderData
			if f, err = r.objectInFolder(); err == nil {
				l.Objects = append(l.Objects, f)
			}
		case is(el, "hasMoreItems"):
			l.HasMoreItems, err = r.boolean()
		case is(el, "numItems"):
			l.NumItems, err = r.integer()
		default:
			err = r.unknown(el, l)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *reader) objectParents() ([]*cmis.ObjectParentData, error) {
	var out []*cmis.ObjectParentData
	err := r.children(func(el xml.StartElement) error {
		if !is(el, "parents") {
			return r.skip()
		}
		p := &cmis.ObjectParentData{}
		err := r.children(func(pel xml.StartElement) error {
			var err error
			switch {
			case is(pel, "object"):
				p.Object, err = r.object(0)
			case is(pel, "relativePathSegment"):
				p.RelativePathSegment, err = r.text()
			default:
				err = r.unknown(pel, p)
			}
			return err
		})
		if err == nil {
			out = append(out, p)
		}
		return err
	})
	return out, err
}

func (r *reader) objectContainer() (*cmis.ObjectInFolderContainer, error) {
	c := &cmis.ObjectInFolderContainer{}
	err := r.children(func(el xml.StartElement) error {
		var err error
		switch {
		case is(el, "objectInFolder"):
			c.Object, err = r.objectInFolder()
		case is(el, "children"):
			var child *cmis.ObjectInFolderContainer
			if child, err = r.objectContainer(); err == nil {
				c.Children = append(c.Children, child)
			}
		default:
			err = r.unknown(el, c)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
