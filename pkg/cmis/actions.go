// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package cmis

// Action is a capability flag in an object's allowable-actions set.
type Action string

// Allowable actions. ActionCanCreateItem exists only in CMIS 1.1.
const (
	ActionCanDeleteObject           Action = "canDeleteObject"
	ActionCanUpdateProperties       Action = "canUpdateProperties"
	ActionCanGetFolderTree          Action = "canGetFolderTree"
	ActionCanGetProperties          Action = "canGetProperties"
	ActionCanGetObjectRelationships Action = "canGetObjectRelationships"
	ActionCanGetObjectParents       Action = "canGetObjectParents"
	ActionCanGetFolderParent        Action = "canGetFolderParent"
	ActionCanGetDescendants         Action = "canGetDescendants"
	ActionCanMoveObject             Action = "canMoveObject"
	ActionCanDeleteContentStream    Action = "canDeleteContentStream"
	ActionCanCheckOut               Action = "canCheckOut"
	ActionCanCancelCheckOut         Action = "canCancelCheckOut"
	ActionCanCheckIn                Action = "canCheckIn"
	ActionCanSetContentStream       Action = "canSetContentStream"
	ActionCanGetAllVersions         Action = "canGetAllVersions"
	ActionCanAddObjectToFolder      Action = "canAddObjectToFolder"
	ActionCanRemoveObjectFromFolder Action = "canRemoveObjectFromFolder"
	ActionCanGetContentStream       Action = "canGetContentStream"
	ActionCanApplyPolicy            Action = "canApplyPolicy"
	ActionCanGetAppliedPolicies     Action = "canGetAppliedPolicies"
	ActionCanRemovePolicy           Action = "canRemovePolicy"
	ActionCanGetChildren            Action = "canGetChildren"
	ActionCanCreateDocument         Action = "canCreateDocument"
	ActionCanCreateFolder           Action = "canCreateFolder"
	ActionCanCreateRelationship     Action = "canCreateRelationship"
	ActionCanCreateItem             Action = "canCreateItem"
	ActionCanDeleteTree             Action = "canDeleteTree"
	ActionCanGetRenditions          Action = "canGetRenditions"
	ActionCanGetACL                 Action = "canGetACL"
	ActionCanApplyACL               Action = "canApplyACL"
)

// Actions lists every allowable action in schema order.
var Actions = []Action{
	ActionCanDeleteObject, ActionCanUpdateProperties, ActionCanGetFolderTree,
	ActionCanGetProperties, ActionCanGetObjectRelationships, ActionCanGetObjectParents,
	ActionCanGetFolderParent, ActionCanGetDescendants, ActionCanMoveObject,
	ActionCanDeleteContentStream, ActionCanCheckOut, ActionCanCancelCheckOut,
	ActionCanCheckIn, ActionCanSetContentStream, ActionCanGetAllVersions,
	ActionCanAddObjectToFolder, ActionCanRemoveObjectFromFolder, ActionCanGetContentStream,
	ActionCanApplyPolicy, ActionCanGetAppliedPolicies, ActionCanRemovePolicy,
	ActionCanGetChildren, ActionCanCreateDocument, ActionCanCreateFolder,
	ActionCanCreateRelationship, ActionCanCreateItem, ActionCanDeleteTree,
	ActionCanGetRenditions, ActionCanGetACL, ActionCanApplyACL,
}

var knownActions = func() map[Action]struct{} {
	m := make(map[Action]struct{}, len(Actions))
	for _, a := range Actions {
		m[a] = struct{}{}
	}
	return m
}()

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	_, ok := knownActions[a]
	return ok
}

// LegalIn reports whether a may be written in a document of version v.
func (a Action) LegalIn(v Version) bool {
	if a == ActionCanCreateItem {
		return v.Is11()
	}
	return a.Valid()
}

// ActionsFor returns the actions legal in v, in schema order.
func ActionsFor(v Version) []Action {
	out := make([]Action, 0, len(Actions))
	for _, a := range Actions {
		if a.LegalIn(v) {
			out = append(out, a)
		}
	}
	return out
}

// AllowableActions is the set of actions currently permitted on an object.
type AllowableActions struct {
	ExtensionHolder
	set map[Action]struct{}
}

// NewAllowableActions returns a set holding the given actions.
func NewAllowableActions(actions ...Action) *AllowableActions {
	aa := &AllowableActions{set: make(map[Action]struct{}, len(actions))}
	for _, a := range actions {
		aa.set[a] = struct{}{}
	}
	return aa
}

// Add puts a into the set.
func (aa *AllowableActions) Add(a Action) {
	if aa.set == nil {
		aa.set = make(map[Action]struct{})
	}
	aa.set[a] = struct{}{}
}

// Remove deletes a from the set.
func (aa *AllowableActions) Remove(a Action) {
	delete(aa.set, a)
}

// Has reports whether a is permitted.
func (aa *AllowableActions) Has(a Action) bool {
	if aa == nil {
		return false
	}
	_, ok := aa.set[a]
	return ok
}

// Len returns the number of permitted actions.
func (aa *AllowableActions) Len() int {
	if aa == nil {
		return 0
	}
	return len(aa.set)
}

// List returns the permitted actions in schema order.
func (aa *AllowableActions) List() []Action {
	out := make([]Action, 0, aa.Len())
	for _, a := range Actions {
		if aa.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

// For returns the permitted actions that are legal in v. Actions a
// version does not define are dropped, not rejected.
func (aa *AllowableActions) For(v Version) []Action {
	out := make([]Action, 0, aa.Len())
	for _, a := range aa.List() {
		if a.LegalIn(v) {
			out = append(out, a)
		}
	}
	return out
}
