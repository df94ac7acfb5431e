// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package inmemory

import (
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/gocmis/gocmis/internal/binding"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// object is one stored CMIS object. props holds the properties clients
// can write plus the ones maintained on write (creator, dates, change
// token). Path, version and content properties are derived on read.
type object struct {
	id       string
	base     cmis.BaseTypeID
	typeID   string
	props    *cmis.Properties
	parents  []string
	aces     []*cmis.Ace
	policies []string

	content    *blob
	renditions []*rendition

	seriesID string
	label    string
	major    bool
	pwc      bool
}

// versionSeries groups the versions of one document. Documents are filed
// by series: folder child lists hold the series id and the series carries
// the parent folders, so every version shares them.
type versionSeries struct {
	id           string
	versions     []string
	pwc          string
	checkedOutBy string
	parents      []string
}

// latest returns the id of the newest checked-in version, or of the
// working copy when the document was created checked out.
func (s *versionSeries) latest() string {
	if len(s.versions) == 0 {
		return s.pwc
	}
	return s.versions[len(s.versions)-1]
}

func (o *object) name() string {
	return o.props.Name()
}

func (o *object) changeToken() string {
	return o.props.StringValue(cmis.PropChangeToken)
}

// stamp updates the maintained properties of o after a write.
func (r *Repository) stamp(o *object, now time.Time, created bool) {
	now = cmis.TruncateDateTime(now)
	if created {
		o.props.Set(cmis.NewIDProperty(cmis.PropObjectID, o.id))
		o.props.Set(cmis.NewIDProperty(cmis.PropBaseTypeID, string(o.base)))
		o.props.Set(cmis.NewIDProperty(cmis.PropObjectTypeID, o.typeID))
		o.props.Set(cmis.NewStringProperty(cmis.PropCreatedBy, r.principal))
		o.props.Set(cmis.NewDateTimeProperty(cmis.PropCreationDate, now))
	}
	o.props.Set(cmis.NewStringProperty(cmis.PropLastModifiedBy, r.principal))
	o.props.Set(cmis.NewDateTimeProperty(cmis.PropLastModificationDate, now))
	o.props.Set(cmis.NewStringProperty(cmis.PropChangeToken, newID(now)))
}

// lookup returns the object with the given id.
func (r *Repository) lookup(id string) (*object, error) {
	if id == "" {
		return nil, invalidArgument("object id is required")
	}
	o, ok := r.objects[id]
	if !ok {
		return nil, notFound("object %q", id)
	}
	return o, nil
}

// folder returns the folder with the given id.
func (r *Repository) folder(id string) (*object, error) {
	o, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	if o.base != cmis.BaseTypeFolder {
		return nil, invalidArgument("object %q is not a folder", id)
	}
	return o, nil
}

// parentIDs returns the folders o is filed in.
func (r *Repository) parentIDs(o *object) []string {
	if o.base == cmis.BaseTypeDocument {
		if s, ok := r.series[o.seriesID]; ok {
			return s.parents
		}
		return nil
	}
	return o.parents
}

// filingID is the id o is listed under in folder child lists.
func filingID(o *object) string {
	if o.base == cmis.BaseTypeDocument {
		return o.seriesID
	}
	return o.id
}

// resolve maps a folder child entry to the object it shows.
func (r *Repository) resolve(childID string) *object {
	if s, ok := r.series[childID]; ok {
		return r.objects[s.latest()]
	}
	return r.objects[childID]
}

// childObjects returns the objects filed in folderID, in filing order.
func (r *Repository) childObjects(folderID string) []*object {
	ids := r.children[folderID]
	out := make([]*object, 0, len(ids))
	for _, id := range ids {
		if o := r.resolve(id); o != nil {
			out = append(out, o)
		}
	}
	return out
}

// childByName finds the child of folderID called name.
func (r *Repository) childByName(folderID, name string) *object {
	for _, o := range r.childObjects(folderID) {
		if o.name() == name {
			return o
		}
	}
	return nil
}

// checkName fails when folderID already holds an object called name other
// than the one with filing id self.
func (r *Repository) checkName(folderID, name, self string) error {
	if c := r.childByName(folderID, name); c != nil && filingID(c) != self {
		return fault(cmis.ErrorKindNameConstraintViolation, "folder %q already contains an object named %q", folderID, name)
	}
	return nil
}

func (r *Repository) file(o *object, folderID string) {
	fid := filingID(o)
	r.children[folderID] = append(r.children[folderID], fid)
	if o.base == cmis.BaseTypeDocument {
		s := r.series[o.seriesID]
		s.parents = append(s.parents, folderID)
		return
	}
	o.parents = append(o.parents, folderID)
}

func (r *Repository) unfile(o *object, folderID string) {
	fid := filingID(o)
	r.children[folderID] = slices.DeleteFunc(r.children[folderID], func(id string) bool { return id == fid })
	drop := func(id string) bool { return id == folderID }
	if o.base == cmis.BaseTypeDocument {
		s := r.series[o.seriesID]
		s.parents = slices.DeleteFunc(s.parents, drop)
		return
	}
	o.parents = slices.DeleteFunc(o.parents, drop)
}

// path returns the path of a folder.
func (r *Repository) path(o *object) string {
	if o.id == r.rootID {
		return "/"
	}
	var segments []string
	for cur := o; cur != nil && cur.id != r.rootID; {
		segments = append(segments, cur.name())
		if len(cur.parents) == 0 {
			break
		}
		cur = r.objects[cur.parents[0]]
	}
	slices.Reverse(segments)
	return "/" + strings.Join(segments, "/")
}

// isAncestor reports whether folder ancestorID contains o, directly or
// below.
func (r *Repository) isAncestor(ancestorID string, o *object) bool {
	seen := map[string]bool{}
	queue := slices.Clone(r.parentIDs(o))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == ancestorID {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := r.objects[id]; ok {
			queue = append(queue, p.parents...)
		}
	}
	return false
}

// properties returns the full property set of o: stored properties plus
// the derived ones, each labelled from its definition.
func (r *Repository) properties(o *object) *cmis.Properties {
	ps := o.props.Clone()
	switch o.base {
	case cmis.BaseTypeFolder:
		if len(o.parents) > 0 {
			ps.Set(cmis.NewIDProperty(cmis.PropParentID, o.parents[0]))
		} else {
			ps.Set(cmis.NewIDProperty(cmis.PropParentID))
		}
		ps.Set(cmis.NewStringProperty(cmis.PropPath, r.path(o)))
		ps.Set(cmis.NewIDProperty(cmis.PropAllowedChildObjectTypeIDs))
	case cmis.BaseTypeDocument:
		r.versionProperties(o, ps)
		r.contentProperties(o, ps)
	}
	for _, p := range ps.List() {
		id := p.Identity().ID
		if pd, ok := r.definition(o, id); ok {
			p.SetIdentity(cmis.PropertyIdentity{
				ID:             pd.ID,
				LocalName:      pd.LocalName,
				LocalNamespace: pd.LocalNamespace,
				QueryName:      pd.QueryName,
				DisplayName:    pd.DisplayName,
			})
		} else if !cmis.PropertyLegalIn(id, r.version) {
			ps.Remove(id)
		}
	}
	return ps
}

func (r *Repository) versionProperties(o *object, ps *cmis.Properties) {
	s := r.series[o.seriesID]
	latest, latestMajor := false, false
	if s != nil && !o.pwc {
		latest = s.latest() == o.id
		for i := len(s.versions) - 1; i >= 0; i-- {
			if v := r.objects[s.versions[i]]; v != nil && v.major {
				latestMajor = v.id == o.id
				break
			}
		}
	}
	ps.Set(cmis.NewBooleanProperty(cmis.PropIsImmutable, false))
	ps.Set(cmis.NewBooleanProperty(cmis.PropIsLatestVersion, latest))
	ps.Set(cmis.NewBooleanProperty(cmis.PropIsMajorVersion, o.major && !o.pwc))
	ps.Set(cmis.NewBooleanProperty(cmis.PropIsLatestMajorVersion, latestMajor))
	if r.version.Is11() {
		ps.Set(cmis.NewBooleanProperty(cmis.PropIsPrivateWorkingCopy, o.pwc))
	}
	ps.Set(cmis.NewStringProperty(cmis.PropVersionLabel, o.label))
	ps.Set(cmis.NewIDProperty(cmis.PropVersionSeriesID, o.seriesID))
	checkedOut := s != nil && s.pwc != ""
	ps.Set(cmis.NewBooleanProperty(cmis.PropIsVersionSeriesCheckedOut, checkedOut))
	if checkedOut {
		ps.Set(cmis.NewStringProperty(cmis.PropVersionSeriesCheckedOutBy, s.checkedOutBy))
		ps.Set(cmis.NewIDProperty(cmis.PropVersionSeriesCheckedOutID, s.pwc))
	} else {
		ps.Set(cmis.NewStringProperty(cmis.PropVersionSeriesCheckedOutBy))
		ps.Set(cmis.NewIDProperty(cmis.PropVersionSeriesCheckedOutID))
	}
	if !ps.Has(cmis.PropCheckinComment) {
		ps.Set(cmis.NewStringProperty(cmis.PropCheckinComment))
	}
}

func (r *Repository) contentProperties(o *object, ps *cmis.Properties) {
	b := o.content
	if b == nil {
		ps.Set(cmis.NewIntegerProperty(cmis.PropContentStreamLength))
		ps.Set(cmis.NewStringProperty(cmis.PropContentStreamMimeType))
		ps.Set(cmis.NewStringProperty(cmis.PropContentStreamFileName))
		ps.Set(cmis.NewIDProperty(cmis.PropContentStreamID))
		return
	}
	ps.Set(cmis.NewIntegerProperty(cmis.PropContentStreamLength, big.NewInt(b.length)))
	ps.Set(cmis.NewStringProperty(cmis.PropContentStreamMimeType, b.mimeType))
	ps.Set(cmis.NewStringProperty(cmis.PropContentStreamFileName, b.filename))
	ps.Set(cmis.NewIDProperty(cmis.PropContentStreamID, contentStreamID(o)))
	if r.version.Is11() {
		ps.Set(cmis.NewStringProperty(cmis.PropContentStreamHash, b.hashes()...))
	}
}

// objectData builds the wire view of o as selected by opts.
func (r *Repository) objectData(o *object, opts binding.ObjectOptions) (*cmis.ObjectData, error) {
	props, err := r.applyFilter(parsePropertyFilter(opts.Filter), o.typeID, r.properties(o))
	if err != nil {
		return nil, err
	}
	od := &cmis.ObjectData{Properties: props}
	if opts.IncludeAllowableActions {
		od.AllowableActions = r.allowableActions(o)
	}
	if opts.IncludeACL {
		od.Acl = r.acl(o)
	}
	if opts.IncludePolicyIDs {
		od.PolicyIDs = &cmis.PolicyIDList{IDs: slices.Clone(o.policies)}
	}
	if o.base == cmis.BaseTypeDocument {
		rf, err := parseRenditionFilter(opts.RenditionFilter)
		if err != nil {
			return nil, err
		}
		if !rf.none() {
			od.Renditions = r.renditionsOf(o, rf)
		}
	}
	if opts.IncludeRelationships != "" && opts.IncludeRelationships != cmis.IncludeRelationshipsNone {
		if !opts.IncludeRelationships.Valid() {
			return nil, invalidArgument("unknown includeRelationships %q", opts.IncludeRelationships)
		}
		for _, rel := range r.relationshipsOf(o.id, relationshipDirection(opts.IncludeRelationships)) {
			od.Relationships = append(od.Relationships, &cmis.ObjectData{Properties: r.properties(rel)})
		}
	}
	return od, nil
}

// definition resolves a property of o against its type and secondary
// types.
func (r *Repository) definition(o *object, propertyID string) (*cmis.PropertyDefinition, bool) {
	if pd, ok := r.types.PropertyDefinition(o.typeID, propertyID); ok {
		return pd, true
	}
	if p, ok := o.props.Get(cmis.PropSecondaryObjectTypeIDs); ok {
		for _, v := range p.AnyValues() {
			if id, ok := v.(string); ok {
				if pd, ok := r.types.PropertyDefinition(id, propertyID); ok {
					return pd, true
				}
			}
		}
	}
	return nil, false
}

// propertyDefinitions returns every property definition of typeID,
// inherited ones included, nearest type first.
func (r *Repository) propertyDefinitions(typeID string) []*cmis.PropertyDefinition {
	var out []*cmis.PropertyDefinition
	seen := map[string]bool{}
	for td, ok := r.types.Type(typeID); ok; td, ok = r.types.ParentType(td.ID()) {
		for _, pd := range td.PropertyDefinitions() {
			if !seen[pd.ID] {
				seen[pd.ID] = true
				out = append(out, pd)
			}
		}
		if td.IsBaseType() {
			break
		}
	}
	return out
}

// page slices items according to p.
func page[T any](items []T, p binding.Paging) (out []T, hasMore bool) {
	skip := min(max(p.SkipCount, 0), len(items))
	end := len(items)
	if p.MaxItems > 0 && skip+p.MaxItems < end {
		end = skip + p.MaxItems
	}
	return items[skip:end], end < len(items)
}
