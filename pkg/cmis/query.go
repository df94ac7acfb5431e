// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package cmis

import (
	"math/big"
	"slices"
)

// QueryStatement is a query request as sent to a repository. The statement
// text is opaque to this package.
type QueryStatement struct {
	ExtensionHolder
	Statement               string
	SearchAllVersions       *bool
	IncludeAllowableActions *bool
	IncludeRelationships    IncludeRelationships
	RenditionFilter         string
	MaxItems                *big.Int
	SkipCount               *big.Int
}

// BulkUpdate is a bulk property update request. CMIS 1.1 only.
type BulkUpdate struct {
	ExtensionHolder
	Objects                []*BulkUpdateObjectIDAndChangeToken
	Properties             *Properties
	AddSecondaryTypeIDs    []string
	RemoveSecondaryTypeIDs []string
}

// BulkUpdateObjectIDAndChangeToken names one object of a bulk update and,
// in results, the id it ended up with.
type BulkUpdateObjectIDAndChangeToken struct {
	ExtensionHolder
	ID          string
	NewID       string
	ChangeToken string
}

// QueryStatementEqual compares two query requests.
func QueryStatementEqual(a, b *QueryStatement) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Statement == b.Statement &&
		boolPtrEqual(a.SearchAllVersions, b.SearchAllVersions) &&
		boolPtrEqual(a.IncludeAllowableActions, b.IncludeAllowableActions) &&
		a.IncludeRelationships == b.IncludeRelationships &&
		a.RenditionFilter == b.RenditionFilter &&
		bigEqual(a.MaxItems, b.MaxItems) &&
		bigEqual(a.SkipCount, b.SkipCount) &&
		ExtensionsEqual(a.Extensions(), b.Extensions())
}

// BulkUpdateEqual compares two bulk update requests.
func BulkUpdateEqual(a, b *BulkUpdate) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if len(a.Objects) != len(b.Objects) ||
		!PropertiesEqual(a.Properties, b.Properties) ||
		!slices.Equal(a.AddSecondaryTypeIDs, b.AddSecondaryTypeIDs) ||
		!slices.Equal(a.RemoveSecondaryTypeIDs, b.RemoveSecondaryTypeIDs) {
		return false
	}
	for i := range a.Objects {
		x, y := a.Objects[i], b.Objects[i]
		if x.ID != y.ID || x.NewID != y.NewID || x.ChangeToken != y.ChangeToken ||
			!ExtensionsEqual(x.Extensions(), y.Extensions()) {
			return false
		}
	}
	return ExtensionsEqual(a.Extensions(), b.Extensions())
}
