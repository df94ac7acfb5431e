// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package inmemory

import (
	"strings"

	"github.com/gobwas/glob"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// alwaysSelected are returned whatever the property filter says.
var alwaysSelected = []string{cmis.PropObjectID, cmis.PropBaseTypeID, cmis.PropObjectTypeID}

// propertyFilter selects properties by query name. A nil filter selects
// everything.
type propertyFilter map[string]struct{}

func parsePropertyFilter(filter string) propertyFilter {
	filter = strings.TrimSpace(filter)
	if filter == "" || filter == "*" {
		return nil
	}
	f := propertyFilter{}
	for _, name := range strings.Split(filter, ",") {
		if name = strings.TrimSpace(name); name != "" {
			if name == "*" {
				return nil
			}
			f[name] = struct{}{}
		}
	}
	return f
}

// applyFilter returns the selected properties of an object of type typeID.
// Query names the type does not define are rejected.
func (r *Repository) applyFilter(f propertyFilter, typeID string, props *cmis.Properties) (*cmis.Properties, error) {
	if f == nil {
		return props, nil
	}
	byQueryName := map[string]string{}
	for _, pd := range r.propertyDefinitions(typeID) {
		byQueryName[pd.QueryName] = pd.ID
	}
	keep := map[string]struct{}{}
	for _, id := range alwaysSelected {
		keep[id] = struct{}{}
	}
	for name := range f {
		id, ok := byQueryName[name]
		if !ok {
			return nil, fault(cmis.ErrorKindFilterNotValid, "type %s has no property with query name %q", typeID, name)
		}
		keep[id] = struct{}{}
	}
	out := cmis.NewProperties()
	for _, p := range props.List() {
		if _, ok := keep[p.Identity().ID]; ok {
			out.Set(p)
		}
	}
	return out, nil
}

// renditionFilter matches renditions by kind or mime type. Terms are glob
// patterns such as "cmis:thumbnail" or "image/*".
type renditionFilter struct {
	all   bool
	terms []glob.Glob
}

func parseRenditionFilter(filter string) (renditionFilter, error) {
	var rf renditionFilter
	filter = strings.TrimSpace(filter)
	if filter == "" || filter == "cmis:none" {
		return rf, nil
	}
	for _, term := range strings.Split(filter, ",") {
		term = strings.TrimSpace(term)
		switch term {
		case "":
			continue
		case "*":
			return renditionFilter{all: true}, nil
		case "cmis:none":
			return rf, fault(cmis.ErrorKindFilterNotValid, "cmis:none cannot be combined with other terms")
		}
		g, err := glob.Compile(term, '/')
		if err != nil {
			return rf, fault(cmis.ErrorKindFilterNotValid, "rendition filter term %q: %v", term, err)
		}
		rf.terms = append(rf.terms, g)
	}
	return rf, nil
}

func (rf renditionFilter) none() bool {
	return !rf.all && len(rf.terms) == 0
}

func (rf renditionFilter) match(kind, mimeType string) bool {
	if rf.all {
		return true
	}
	for _, g := range rf.terms {
		if g.Match(kind) || g.Match(mimeType) {
			return true
		}
	}
	return false
}
