// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package cmis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gocmis/gocmis/pkg/cmis"
)

func TestAllowableActions_ListInSchemaOrder(t *testing.T) {
	aa := cmis.NewAllowableActions(cmis.ActionCanApplyACL, cmis.ActionCanDeleteObject, cmis.ActionCanGetChildren)

	assert.Equal(t, []cmis.Action{
		cmis.ActionCanDeleteObject,
		cmis.ActionCanGetChildren,
		cmis.ActionCanApplyACL,
	}, aa.List())
}

func TestAllowableActions_CreateItemDroppedFor10(t *testing.T) {
	aa := cmis.NewAllowableActions(cmis.ActionCanCreateItem, cmis.ActionCanCreateFolder)

	assert.Equal(t, []cmis.Action{cmis.ActionCanCreateFolder}, aa.For(cmis.Version10))
	assert.Equal(t, []cmis.Action{cmis.ActionCanCreateFolder, cmis.ActionCanCreateItem}, aa.For(cmis.Version11))
	assert.True(t, aa.Has(cmis.ActionCanCreateItem), "the set itself is unchanged")
}

func TestAllowableActions_NilSafe(t *testing.T) {
	var aa *cmis.AllowableActions
	assert.False(t, aa.Has(cmis.ActionCanGetACL))
	assert.Equal(t, 0, aa.Len())
}

func TestActionsFor(t *testing.T) {
	assert.Len(t, cmis.ActionsFor(cmis.Version11), len(cmis.Actions))
	assert.Len(t, cmis.ActionsFor(cmis.Version10), len(cmis.Actions)-1)
	assert.NotContains(t, cmis.ActionsFor(cmis.Version10), cmis.ActionCanCreateItem)
}
