// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package inmemory

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// CheckOut implements [binding.VersioningService]. The working copy starts
// as a copy of the latest version, content included.
func (r *Repository) CheckOut(ctx context.Context, repositoryID, objectID string) (string, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	o, err := r.lookup(objectID)
	if err != nil {
		return "", err
	}
	if o.base != cmis.BaseTypeDocument {
		return "", constraint("object %q is not a document", objectID)
	}
	if td, ok := r.types.Type(o.typeID); !ok || !td.Versionable() {
		return "", constraint("type %q is not versionable", o.typeID)
	}
	s := r.series[o.seriesID]
	if s.pwc != "" {
		return "", versioning("document %q is already checked out", objectID)
	}
	if s.latest() != o.id {
		return "", versioning("object %q is not the latest version", objectID)
	}

	pwc := &object{
		base:     o.base,
		typeID:   o.typeID,
		props:    o.props.Clone(),
		aces:     slices.Clone(o.aces),
		policies: slices.Clone(o.policies),
		content:  o.content,
		seriesID: s.id,
		label:    pwcLabel,
		pwc:      true,
	}
	pwc.props.Remove(cmis.PropCheckinComment)
	r.create(pwc)
	s.pwc, s.checkedOutBy = pwc.id, r.principal
	r.record(pwc, cmis.ChangeTypeCreated)
	r.record(o, cmis.ChangeTypeUpdated)
	r.log.Debug("document checked out", "object_id", o.id, "pwc_id", pwc.id)
	return pwc.id, nil
}

// workingCopy resolves the private working copy named by objectID. Any
// version of a checked-out series names its working copy.
func (r *Repository) workingCopy(objectID string) (*object, *versionSeries, error) {
	o, err := r.lookup(objectID)
	if err != nil {
		return nil, nil, err
	}
	if o.base != cmis.BaseTypeDocument {
		return nil, nil, constraint("object %q is not a document", objectID)
	}
	s := r.series[o.seriesID]
	if s.pwc == "" {
		return nil, nil, versioning("document %q is not checked out", objectID)
	}
	return r.objects[s.pwc], s, nil
}

// CancelCheckOut implements [binding.VersioningService].
func (r *Repository) CancelCheckOut(ctx context.Context, repositoryID, objectID string) error {
	if err := r.begin(ctx, repositoryID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	_, s, err := r.workingCopy(objectID)
	if err != nil {
		return err
	}
	r.cancelCheckOut(s)
	return nil
}

// cancelCheckOut discards the working copy of s. A document created
// checked out has no other version and disappears with it.
func (r *Repository) cancelCheckOut(s *versionSeries) {
	pwc := r.objects[s.pwc]
	s.pwc, s.checkedOutBy = "", ""
	if pwc == nil {
		return
	}
	r.remove(pwc)
	if len(s.versions) == 0 {
		for _, parent := range slices.Clone(s.parents) {
			r.unfile(pwc, parent)
		}
		delete(r.series, s.id)
		return
	}
	r.record(r.objects[s.latest()], cmis.ChangeTypeUpdated)
}

// CheckIn implements [binding.VersioningService]. The working copy becomes
// the new latest version and keeps its id.
func (r *Repository) CheckIn(ctx context.Context, repositoryID, objectID string, major bool, props *cmis.Properties, content *cmis.ContentStream, comment string) (string, error) {
	defer content.Close()
	if err := r.begin(ctx, repositoryID); err != nil {
		return "", err
	}
	var b *blob
	if content != nil {
		var err error
		if b, err = storeContent(content, r.compress); err != nil {
			return "", err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	pwc, s, err := r.workingCopy(objectID)
	if err != nil {
		return "", err
	}
	if td, ok := r.types.Type(pwc.typeID); ok && b != nil && td.ContentStreamAllowed() == cmis.ContentStreamNotAllowed {
		return "", fault(cmis.ErrorKindStreamNotSupported, "type %q does not allow content", td.ID())
	}
	if props.Len() > 0 {
		secondary, _ := r.secondaryTypes(pwc.props)
		if props.Has(cmis.PropSecondaryObjectTypeIDs) {
			if secondary, err = r.secondaryTypes(props); err != nil {
				return "", err
			}
		}
		set, unset, err := r.checkWrite(pwc.typeID, secondary, props, modeCheckedOut)
		if err != nil {
			return "", err
		}
		if set.Has(cmis.PropName) {
			for _, parent := range s.parents {
				if err := r.checkName(parent, set.Name(), s.id); err != nil {
					return "", err
				}
			}
		}
		mergeProperties(pwc.props, set, unset)
		r.dropUndefined(pwc)
	}
	if b != nil {
		pwc.content = b
	}

	pwc.pwc = false
	pwc.major = major
	pwc.label = r.nextLabel(s, major)
	if comment != "" {
		pwc.props.Set(cmis.NewStringProperty(cmis.PropCheckinComment, comment))
	}
	s.versions = append(s.versions, pwc.id)
	s.pwc, s.checkedOutBy = "", ""
	r.stamp(pwc, r.now(), false)
	r.record(pwc, cmis.ChangeTypeUpdated)
	r.log.Debug("document checked in", "object_id", pwc.id, "version_label", pwc.label)
	return pwc.id, nil
}

// nextLabel numbers a new version: majors count up and reset the minor
// number, minors count up within the current major.
func (r *Repository) nextLabel(s *versionSeries, major bool) string {
	maj, minor := 0, 0
	if len(s.versions) > 0 {
		if prev := r.objects[s.latest()]; prev != nil {
			maj, minor = parseLabel(prev.label)
		}
	}
	if major {
		return fmt.Sprintf("%d.0", maj+1)
	}
	return fmt.Sprintf("%d.%d", maj, minor+1)
}

func parseLabel(label string) (major, minor int) {
	a, b, _ := strings.Cut(label, ".")
	major, _ = strconv.Atoi(a)
	minor, _ = strconv.Atoi(b)
	return major, minor
}

// GetAllVersions implements [binding.VersioningService]. The working copy
// comes first, then versions newest first.
func (r *Repository) GetAllVersions(ctx context.Context, repositoryID, objectID, filter string) ([]*cmis.ObjectData, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.series[objectID]
	if !ok {
		o, err := r.lookup(objectID)
		if err != nil {
			return nil, err
		}
		if o.base != cmis.BaseTypeDocument {
			return nil, constraint("object %q is not a document", objectID)
		}
		s = r.series[o.seriesID]
	}
	ids := slices.Clone(s.versions)
	if s.pwc != "" {
		ids = append(ids, s.pwc)
	}
	slices.Reverse(ids)

	f := parsePropertyFilter(filter)
	out := make([]*cmis.ObjectData, 0, len(ids))
	for _, id := range ids {
		v := r.objects[id]
		props, err := r.applyFilter(f, v.typeID, r.properties(v))
		if err != nil {
			return nil, err
		}
		out = append(out, &cmis.ObjectData{Properties: props})
	}
	return out, nil
}
