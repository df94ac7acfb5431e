// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package jsonconv

import (
	"github.com/gocmis/gocmis/pkg/cmis"
)

var (
	queryKeys = newKeys("statement", "searchAllVersions", "includeAllowableActions", "includeRelationships",
		"renditionFilter", "maxItems", "skipCount")
	bulkUpdateKeys = propertiesKeys.with(cmis.Version10, "objectIdAndChangeToken", "addSecondaryTypeIds", "removeSecondaryTypeIds")
	idAndTokenKeys = newKeys("id", "newId", "changeToken")
)

func (e encoder) query(q *cmis.QueryStatement) (any, error) {
	o := newObject()
	o.Set("statement", q.Statement)
	setBool(o, "searchAllVersions", q.SearchAllVersions)
	setBool(o, "includeAllowableActions", q.IncludeAllowableActions)
	setString(o, "includeRelationships", string(q.IncludeRelationships))
	setString(o, "renditionFilter", q.RenditionFilter)
	setInteger(o, "maxItems", q.MaxItems)
	setInteger(o, "skipCount", q.SkipCount)
	e.extensions(o, queryKeys, q.Extensions())
	return o, nil
}

// bulkUpdate writes a bulk update request, which 1.0 does not have.
func (e encoder) bulkUpdate(bu *cmis.BulkUpdate) (any, error) {
	if !e.v.Is11() {
		return nil, e.violation("bulkUpdate")
	}
	o := newObject()
	objs := make([]any, 0, len(bu.Objects))
	for _, obj := range bu.Objects {
		entry := newObject()
		entry.Set("id", obj.ID)
		setString(entry, "newId", obj.NewID)
		setString(entry, "changeToken", obj.ChangeToken)
		e.extensions(entry, idAndTokenKeys, obj.Extensions())
		objs = append(objs, entry)
	}
	o.Set("objectIdAndChangeToken", objs)
	if err := e.properties(o, bu.Properties); err != nil {
		return nil, err
	}
	setStrings(o, "addSecondaryTypeIds", bu.AddSecondaryTypeIDs)
	setStrings(o, "removeSecondaryTypeIds", bu.RemoveSecondaryTypeIDs)
	e.extensions(o, bulkUpdateKeys, bu.Extensions())
	return o, nil
}

func (d decoder) query(val value) (*cmis.QueryStatement, error) {
	q := &cmis.QueryStatement{}
	ext, err := d.fields(val, queryKeys, func(key string, d decoder, val value) error {
		var err error
		switch key {
		case "statement":
			q.Statement, err = d.str(val)
		case "searchAllVersions":
			q.SearchAllVersions, err = d.optBool(val)
		case "includeAllowableActions":
			q.IncludeAllowableActions, err = d.optBool(val)
		case "includeRelationships":
			q.IncludeRelationships, err = parseEnum(d, key, val, cmis.IncludeRelationships.Valid)
		case "renditionFilter":
			q.RenditionFilter, err = d.str(val)
		case "maxItems":
			q.MaxItems, err = d.integer(val)
		case "skipCount":
			q.SkipCount, err = d.integer(val)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	q.SetExtensions(ext)
	return q, nil
}

func (d decoder) bulkUpdate(val value) (*cmis.BulkUpdate, error) {
	bu := &cmis.BulkUpdate{}
	var props bag
	ext, err := d.fields(val, bulkUpdateKeys, func(key string, d decoder, val value) error {
		var err error
		switch key {
		case "properties", "propertiesExtension":
			err = props.bind(key, d, val)
		case "objectIdAndChangeToken":
			err = d.each(val, func(d decoder, val value) error {
				obj := &cmis.BulkUpdateObjectIDAndChangeToken{}
				ext, err := d.fields(val, idAndTokenKeys, func(key string, d decoder, val value) error {
					var err error
					switch key {
					case "id":
						obj.ID, err = d.str(val)
					case "newId":
						obj.NewID, err = d.str(val)
					case "changeToken":
						obj.ChangeToken, err = d.str(val)
					}
					return err
				})
				obj.SetExtensions(ext)
				bu.Objects = append(bu.Objects, obj)
				return err
			})
		case "addSecondaryTypeIds":
			bu.AddSecondaryTypeIDs, err = d.strings(val)
		case "removeSecondaryTypeIds":
			bu.RemoveSecondaryTypeIDs, err = d.strings(val)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	bu.Properties = props.result()
	bu.SetExtensions(ext)
	return bu, nil
}
