// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package inmemory

import (
	"context"
	"math/big"
	"sort"
	"time"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// change is one change-log entry. Tokens are ULIDs, so the log is sorted
// by token.
type change struct {
	token    string
	objectID string
	base     cmis.BaseTypeID
	typeID   string
	kind     cmis.ChangeType
	time     time.Time
	// props is the object state after the change; nil for deletions.
	props *cmis.Properties
}

// record appends a change of o to the log.
func (r *Repository) record(o *object, kind cmis.ChangeType) {
	now := r.now()
	c := &change{
		token:    newID(now),
		objectID: o.id,
		base:     o.base,
		typeID:   o.typeID,
		kind:     kind,
		time:     cmis.TruncateDateTime(now),
	}
	if kind != cmis.ChangeTypeDeleted {
		c.props = r.properties(o)
	}
	r.changes = append(r.changes, c)
	r.log.Debug("change recorded",
		"object_id", o.id,
		"change_type", string(kind),
		"token", c.token)
}

func (r *Repository) latestToken() string {
	if len(r.changes) == 0 {
		return ""
	}
	return r.changes[len(r.changes)-1].token
}

// GetContentChanges implements [binding.DiscoveryService].
func (r *Repository) GetContentChanges(ctx context.Context, repositoryID, changeLogToken string, includeProperties bool, maxItems int) (*cmis.ObjectList, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	if changeLogToken != "" && !validToken(changeLogToken) {
		return nil, invalidArgument("invalid change log token %q", changeLogToken)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := sort.Search(len(r.changes), func(i int) bool {
		return r.changes[i].token >= changeLogToken
	})
	entries := r.changes[start:]
	total := len(entries)
	hasMore := false
	if maxItems > 0 && maxItems < total {
		entries, hasMore = entries[:maxItems], true
	}

	list := &cmis.ObjectList{HasMoreItems: hasMore, NumItems: big.NewInt(int64(total))}
	for _, c := range entries {
		props := cmis.NewProperties()
		if includeProperties && c.props != nil {
			props = c.props.Clone()
		}
		props.Set(cmis.NewIDProperty(cmis.PropObjectID, c.objectID))
		props.Set(cmis.NewIDProperty(cmis.PropBaseTypeID, string(c.base)))
		props.Set(cmis.NewIDProperty(cmis.PropObjectTypeID, c.typeID))
		props.Set(cmis.NewStringProperty(cmis.PropChangeToken, c.token))
		list.Objects = append(list.Objects, &cmis.ObjectData{
			Properties:      props,
			ChangeEventInfo: &cmis.ChangeEventInfo{ChangeType: c.kind, ChangeTime: c.time},
		})
	}
	return list, nil
}
