// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package inmemory

import (
	"math/big"
	"slices"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// writeMode says which updatability classes a write may touch.
type writeMode int

const (
	modeCreate writeMode = iota
	modeUpdate
	// modeCheckedOut updates a private working copy.
	modeCheckedOut
)

// creatableType resolves the type named by props for a create operation
// of base type base.
func (r *Repository) creatableType(props *cmis.Properties, base cmis.BaseTypeID) (*cmis.TypeDefinition, error) {
	typeID := props.ObjectTypeID()
	if typeID == "" {
		return nil, invalidArgument("property %s is required", cmis.PropObjectTypeID)
	}
	td, ok := r.types.Type(typeID)
	if !ok {
		return nil, invalidArgument("unknown type %q", typeID)
	}
	if td.BaseTypeID() != base {
		return nil, invalidArgument("type %q is not a %s type", typeID, base)
	}
	if !td.Creatable() {
		return nil, constraint("type %q is not creatable", typeID)
	}
	return td, nil
}

// checkWrite validates props for a write to an object of type typeID with
// the given secondary types and returns the properties to store. Empty
// properties in an update mean "remove the value".
func (r *Repository) checkWrite(typeID string, secondary []string, props *cmis.Properties, mode writeMode) (set *cmis.Properties, unset []string, err error) {
	set = cmis.NewProperties()
	for _, p := range props.List() {
		id := p.Identity().ID
		pd, ok := r.lookupDefinition(typeID, secondary, id)
		if !ok {
			return nil, nil, constraint("property %q is not defined for type %q", id, typeID)
		}
		if !cmis.PropertyLegalIn(id, r.version) {
			return nil, nil, constraint("property %q is not available in CMIS %s", id, r.version)
		}
		if err := checkUpdatability(pd, mode); err != nil {
			return nil, nil, err
		}
		if err := pd.CheckProperty(p); err != nil {
			return nil, nil, constraint("%v", err)
		}
		if p.Len() == 0 {
			if pd.Required && mode != modeCreate {
				return nil, nil, constraint("required property %q cannot be removed", id)
			}
			unset = append(unset, id)
			continue
		}
		if err := checkValues(pd, p.AnyValues()); err != nil {
			return nil, nil, err
		}
		set.Set(p)
	}
	if mode == modeCreate {
		if err := r.applyDefaults(typeID, set); err != nil {
			return nil, nil, err
		}
	}
	return set, unset, nil
}

func (r *Repository) lookupDefinition(typeID string, secondary []string, id string) (*cmis.PropertyDefinition, bool) {
	if pd, ok := r.types.PropertyDefinition(typeID, id); ok {
		return pd, true
	}
	for _, st := range secondary {
		if pd, ok := r.types.PropertyDefinition(st, id); ok {
			return pd, true
		}
	}
	return nil, false
}

func checkUpdatability(pd *cmis.PropertyDefinition, mode writeMode) error {
	switch pd.Updatability {
	case cmis.UpdatabilityReadOnly:
		return constraint("property %q is read-only", pd.ID)
	case cmis.UpdatabilityOnCreate:
		if mode != modeCreate {
			return constraint("property %q can only be set on create", pd.ID)
		}
	case cmis.UpdatabilityWhenCheckedOut:
		if mode == modeUpdate {
			return constraint("property %q can only be updated on a private working copy", pd.ID)
		}
	}
	return nil
}

// applyDefaults fills in default values and fails on missing required
// properties.
func (r *Repository) applyDefaults(typeID string, set *cmis.Properties) error {
	for _, pd := range r.propertyDefinitions(typeID) {
		if set.Has(pd.ID) || pd.Updatability == cmis.UpdatabilityReadOnly {
			continue
		}
		if len(pd.DefaultValue) > 0 {
			p, err := cmis.NewPropertyFromValues(pd.PropertyType, pd.ID, pd.DefaultValue)
			if err != nil {
				return constraint("default of %q: %v", pd.ID, err)
			}
			set.Set(p)
			continue
		}
		if pd.Required {
			return constraint("required property %q is missing", pd.ID)
		}
	}
	return nil
}

// checkValues enforces length, range and closed choice lists.
func checkValues(pd *cmis.PropertyDefinition, values []any) error {
	for _, v := range values {
		switch tv := v.(type) {
		case string:
			if pd.MaxLength != nil && big.NewInt(int64(utf8.RuneCountInString(tv))).Cmp(pd.MaxLength) > 0 {
				return constraint("property %q exceeds maximum length %s", pd.ID, pd.MaxLength)
			}
		case *big.Int:
			if pd.MinInteger != nil && tv.Cmp(pd.MinInteger) < 0 {
				return constraint("property %q value %s is below minimum %s", pd.ID, tv, pd.MinInteger)
			}
			if pd.MaxInteger != nil && tv.Cmp(pd.MaxInteger) > 0 {
				return constraint("property %q value %s is above maximum %s", pd.ID, tv, pd.MaxInteger)
			}
		case decimal.Decimal:
			if pd.MinDecimal != nil && tv.LessThan(*pd.MinDecimal) {
				return constraint("property %q value %s is below minimum %s", pd.ID, tv, pd.MinDecimal)
			}
			if pd.MaxDecimal != nil && tv.GreaterThan(*pd.MaxDecimal) {
				return constraint("property %q value %s is above maximum %s", pd.ID, tv, pd.MaxDecimal)
			}
		}
		if closedChoices(pd) && !inChoices(pd.Choices, v) {
			return constraint("property %q value %v is not one of its choices", pd.ID, v)
		}
	}
	return nil
}

func closedChoices(pd *cmis.PropertyDefinition) bool {
	return len(pd.Choices) > 0 && pd.OpenChoice != nil && !*pd.OpenChoice
}

func inChoices(choices []cmis.Choice, v any) bool {
	return slices.ContainsFunc(choices, func(c cmis.Choice) bool {
		return slices.ContainsFunc(c.Values, func(cv any) bool { return cmis.ValueEqual(cv, v) }) ||
			inChoices(c.Choices, v)
	})
}

// secondaryTypes returns the secondary type ids of props, checking that
// each names a secondary type.
func (r *Repository) secondaryTypes(props *cmis.Properties) ([]string, error) {
	p, ok := props.Get(cmis.PropSecondaryObjectTypeIDs)
	if !ok {
		return nil, nil
	}
	var out []string
	for _, v := range p.AnyValues() {
		id, _ := v.(string)
		td, ok := r.types.Type(id)
		if !ok || td.BaseTypeID() != cmis.BaseTypeSecondary {
			return nil, invalidArgument("%q is not a secondary type", id)
		}
		out = append(out, id)
	}
	return out, nil
}

// mergeProperties applies a validated write to the stored properties.
func mergeProperties(stored, set *cmis.Properties, unset []string) {
	for _, p := range set.List() {
		stored.Set(p)
	}
	for _, id := range unset {
		stored.Remove(id)
	}
}
