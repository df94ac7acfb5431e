// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package wsconv

import (
	"github.com/gocmis/gocmis/pkg/cmis"
)

type wireQuery struct {
	Statement               string       `xml:"statement"`
	SearchAllVersions       *bool        `xml:"searchAllVersions"`
	IncludeAllowableActions *bool        `xml:"includeAllowableActions"`
	IncludeRelationships    string       `xml:"includeRelationships,omitempty"`
	RenditionFilter         string       `xml:"renditionFilter,omitempty"`
	MaxItems                string       `xml:"maxItems,omitempty"`
	SkipCount               string       `xml:"skipCount,omitempty"`
	Any                     []anyElement `xml:",any"`
}

type wireBulkUpdate struct {
	Objects                []*wireObjectIDAndChangeToken `xml:"objectIdAndChangeToken"`
	Properties             *wireProperties               `xml:"properties"`
	AddSecondaryTypeIDs    []string                      `xml:"addSecondaryTypeIds"`
	RemoveSecondaryTypeIDs []string                      `xml:"removeSecondaryTypeIds"`
	Any                    []anyElement                  `xml:",any"`
}

type wireObjectIDAndChangeToken struct {
	ID          string       `xml:"id"`
	NewID       string       `xml:"newId,omitempty"`
	ChangeToken string       `xml:"changeToken,omitempty"`
	Any         []anyElement `xml:",any"`
}

func (e encoder) query(q *cmis.QueryStatement) (*wireQuery, error) {
	return &wireQuery{
		Statement:               q.Statement,
		SearchAllVersions:       q.SearchAllVersions,
		IncludeAllowableActions: q.IncludeAllowableActions,
		IncludeRelationships:    string(q.IncludeRelationships),
		RenditionFilter:         q.RenditionFilter,
		MaxItems:                formatInteger(q.MaxItems),
		SkipCount:               formatInteger(q.SkipCount),
		Any:                     anyElements(q.Extensions()),
	}, nil
}

// bulkUpdate builds a bulk update request, which CMIS 1.0 does not have.
func (e encoder) bulkUpdate(bu *cmis.BulkUpdate) (*wireBulkUpdate, error) {
	if !e.v.Is11() {
		return nil, e.violation("bulkUpdate")
	}
	props, err := e.properties(bu.Properties)
	if err != nil {
		return nil, err
	}
	out := &wireBulkUpdate{
		Properties:             props,
		AddSecondaryTypeIDs:    bu.AddSecondaryTypeIDs,
		RemoveSecondaryTypeIDs: bu.RemoveSecondaryTypeIDs,
		Any:                    anyElements(bu.Extensions()),
	}
	for _, o := range bu.Objects {
		out.Objects = append(out.Objects, &wireObjectIDAndChangeToken{
			ID:          o.ID,
			NewID:       o.NewID,
			ChangeToken: o.ChangeToken,
			Any:         anyElements(o.Extensions()),
		})
	}
	return out, nil
}

func (d decoder) query(w *wireQuery) (*cmis.QueryStatement, error) {
	q := &cmis.QueryStatement{
		Statement:               w.Statement,
		SearchAllVersions:       w.SearchAllVersions,
		IncludeAllowableActions: w.IncludeAllowableActions,
		RenditionFilter:         w.RenditionFilter,
	}
	var err error
	if q.IncludeRelationships, err = parseEnum(d, "includeRelationships", "includeRelationships",
		w.IncludeRelationships, cmis.IncludeRelationships.Valid); err != nil {
		return nil, err
	}
	if q.MaxItems, err = d.integer("maxItems", w.MaxItems); err != nil {
		return nil, err
	}
	if q.SkipCount, err = d.integer("skipCount", w.SkipCount); err != nil {
		return nil, err
	}
	q.SetExtensions(extensions(w.Any))
	return q, nil
}

func (d decoder) bulkUpdate(w *wireBulkUpdate) (*cmis.BulkUpdate, error) {
	bu := &cmis.BulkUpdate{
		AddSecondaryTypeIDs:    w.AddSecondaryTypeIDs,
		RemoveSecondaryTypeIDs: w.RemoveSecondaryTypeIDs,
	}
	for _, wo := range w.Objects {
		o := &cmis.BulkUpdateObjectIDAndChangeToken{ID: wo.ID, NewID: wo.NewID, ChangeToken: wo.ChangeToken}
		o.SetExtensions(extensions(wo.Any))
		bu.Objects = append(bu.Objects, o)
	}
	var err error
	if bu.Properties, err = d.at("properties", 0).properties(w.Properties); err != nil {
		return nil, err
	}
	bu.SetExtensions(extensions(w.Any))
	return bu, nil
}
