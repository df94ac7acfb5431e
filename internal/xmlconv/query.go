// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package xmlconv

import (
	"encoding/xml"

	"github.com/gocmis/gocmis/pkg/cmis"
)

func (w *writer) query(name string, q *cmis.QueryStatement) {
	w.open(name)
	w.text("cmis:statement", q.Statement)
	w.optBoolean("cmis:searchAllVersions", q.SearchAllVersions)
	w.optBoolean("cmis:includeAllowableActions", q.IncludeAllowableActions)
	w.optText("cmis:includeRelationships", string(q.IncludeRelationships))
	w.optText("cmis:renditionFilter", q.RenditionFilter)
	w.integer("cmis:maxItems", q.MaxItems)
	w.integer("cmis:skipCount", q.SkipCount)
	w.extensions(q.Extensions())
	w.close(name)
}

// bulkUpdate writes a bulk update request, which CMIS 1.0 does not have.
func (w *writer) bulkUpdate(name string, bu *cmis.BulkUpdate) {
	if !w.v.Is11() {
		w.violation("bulkUpdate")
		return
	}
	w.open(name)
	for _, o := range bu.Objects {
		w.open("cmis:objectIdAndChangeToken")
		w.text("cmis:id", o.ID)
		w.optText("cmis:newId", o.NewID)
		w.optText("cmis:changeToken", o.ChangeToken)
		w.extensions(o.Extensions())
		w.close("cmis:objectIdAndChangeToken")
	}
	if bu.Properties != nil {
		w.properties("cmis:properties", bu.Properties)
	}
	w.texts("cmis:addSecondaryTypeIds", bu.AddSecondaryTypeIDs)
	w.texts("cmis:removeSecondaryTypeIds", bu.RemoveSecondaryTypeIDs)
	w.extensions(bu.Extensions())
	w.close(name)
}

func (r *reader) query() (*cmis.QueryStatement, error) {
	q := &cmis.QueryStatement{}
	err := r.children(func(el xml.StartElement) error {
		var err error
		switch {
		case is(el, "statement"):
			q.Statement, err = r.text()
		case is(el, "searchAllVersions"):
			q.SearchAllVersions, err = r.boolPtr()
		case is(el, "includeAllowableActions"):
			q.IncludeAllowableActions, err = r.boolPtr()
		case is(el, "includeRelationships"):
			q.IncludeRelationships, err = enum(r, "includeRelationships", cmis.IncludeRelationships.Valid)
		case is(el, "renditionFilter"):
			q.RenditionFilter, err = r.text()
		case is(el, "maxItems"):
			q.MaxItems, err = r.integer()
		case is(el, "skipCount"):
			q.SkipCount, err = r.integer()
		default:
			err = r.unknown(el, q)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *reader) bulkUpdate() (*cmis.BulkUpdate, error) {
	bu := &cmis.BulkUpdate{}
	err := r.children(func(el xml.StartElement) error {
		var err error
		switch {
		case is(el, "objectIdAndChangeToken"):
			o := &cmis.BulkUpdateObjectIDAndChangeToken{}
			err = r.children(func(oel xml.StartElement) error {
				var err error
				switch {
				case is(oel, "id"):
					o.ID, err = r.text()
				case is(oel, "newId"):
					o.NewID, err = r.text()
				case is(oel, "changeToken"):
					o.ChangeToken, err = r.text()
				default:
					err = r.unknown(oel, o)
				}
				return err
			})
			bu.Objects = append(bu.Objects, o)
		case is(el, "properties"):
			bu.Properties, err = r.properties()
		case is(el, "addSecondaryTypeIds"):
			var s string
			if s, err = r.text(); err == nil {
				bu.AddSecondaryTypeIDs = append(bu.AddSecondaryTypeIDs, s)
			}
		case is(el, "removeSecondaryTypeIds"):
			var s string
			if s, err = r.text(); err == nil {
				bu.RemoveSecondaryTypeIDs = append(bu.RemoveSecondaryTypeIDs, s)
			}
		default:
			err = r.unknown(el, bu)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return bu, nil
}
