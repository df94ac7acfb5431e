// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package inmemory

import (
	"context"
	"slices"
	"strings"

	"github.com/gocmis/gocmis/internal/binding"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// Version labels.
const (
	firstMajorLabel = "1.0"
	firstMinorLabel = "0.1"
	pwcLabel        = "pwc"
)

// checkCreate validates the properties of a new object of type td and
// returns the ones to store.
func (r *Repository) checkCreate(td *cmis.TypeDefinition, props *cmis.Properties) (*cmis.Properties, error) {
	secondary, err := r.secondaryTypes(props)
	if err != nil {
		return nil, err
	}
	set, _, err := r.checkWrite(td.ID(), secondary, props, modeCreate)
	if err != nil {
		return nil, err
	}
	if td.Fileable() && strings.TrimSpace(set.Name()) == "" {
		return nil, constraint("property %s must not be empty", cmis.PropName)
	}
	return set, nil
}

// create assigns o an id, stamps it and stores it. The caller files it and
// records the creation.
func (r *Repository) create(o *object) {
	now := r.now()
	o.id = newID(now)
	r.stamp(o, now, true)
	r.objects[o.id] = o
}

// parentFolder resolves the folder a new object is filed in.
func (r *Repository) parentFolder(folderID string) (*object, error) {
	if folderID == "" {
		return nil, constraint("unfiling is not supported, a folder id is required")
	}
	return r.folder(folderID)
}

// CreateDocument implements [binding.ObjectService].
func (r *Repository) CreateDocument(ctx context.Context, repositoryID string, props *cmis.Properties, folderID string, content *cmis.ContentStream, state cmis.VersioningState) (string, error) {
	defer content.Close()
	if err := r.begin(ctx, repositoryID); err != nil {
		return "", err
	}
	if state != "" && !state.Valid() {
		return "", invalidArgument("unknown versioning state %q", state)
	}
	td, err := r.creatableType(props, cmis.BaseTypeDocument)
	if err != nil {
		return "", err
	}
	switch {
	case td.ContentStreamAllowed() == cmis.ContentStreamNotAllowed && content != nil:
		return "", fault(cmis.ErrorKindStreamNotSupported, "type %q does not allow content", td.ID())
	case td.ContentStreamAllowed() == cmis.ContentStreamRequired && content == nil:
		return "", constraint("type %q requires content", td.ID())
	}
	if !td.Versionable() && state != "" && state != cmis.VersioningStateNone {
		return "", constraint("type %q is not versionable", td.ID())
	}
	if td.Versionable() {
		switch state {
		case "":
			state = cmis.VersioningStateMajor
		case cmis.VersioningStateNone:
			return "", constraint("versionable type %q needs a versioning state other than none", td.ID())
		}
	}
	var b *blob
	if content != nil {
		if b, err = storeContent(content, r.compress); err != nil {
			return "", err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	parent, err := r.parentFolder(folderID)
	if err != nil {
		return "", err
	}
	set, err := r.checkCreate(td, props)
	if err != nil {
		return "", err
	}
	if err := r.checkName(parent.id, set.Name(), ""); err != nil {
		return "", err
	}

	o := &object{base: cmis.BaseTypeDocument, typeID: td.ID(), props: set, content: b}
	switch state {
	case cmis.VersioningStateCheckedOut:
		o.pwc, o.label = true, pwcLabel
	case cmis.VersioningStateMinor:
		o.label = firstMinorLabel
	default:
		o.label, o.major = firstMajorLabel, true
	}
	r.create(o)
	s := &versionSeries{id: newID(r.now())}
	if o.pwc {
		s.pwc, s.checkedOutBy = o.id, r.principal
	} else {
		s.versions = []string{o.id}
	}
	o.seriesID = s.id
	r.series[s.id] = s
	r.file(o, parent.id)
	r.record(o, cmis.ChangeTypeCreated)
	r.log.Debug("document created", "object_id", o.id, "type_id", o.typeID, "folder_id", parent.id)
	return o.id, nil
}

// CreateFolder implements [binding.ObjectService].
func (r *Repository) CreateFolder(ctx context.Context, repositoryID string, props *cmis.Properties, folderID string) (string, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return "", err
	}
	td, err := r.creatableType(props, cmis.BaseTypeFolder)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	parent, err := r.parentFolder(folderID)
	if err != nil {
		return "", err
	}
	set, err := r.checkCreate(td, props)
	if err != nil {
		return "", err
	}
	if err := r.checkName(parent.id, set.Name(), ""); err != nil {
		return "", err
	}
	o := &object{base: cmis.BaseTypeFolder, typeID: td.ID(), props: set}
	r.create(o)
	r.file(o, parent.id)
	r.record(o, cmis.ChangeTypeCreated)
	r.log.Debug("folder created", "object_id", o.id, "type_id", o.typeID, "folder_id", parent.id)
	return o.id, nil
}

// CreatePolicy implements [binding.ObjectService]. Policies may be
// created unfiled.
func (r *Repository) CreatePolicy(ctx context.Context, repositoryID string, props *cmis.Properties, folderID string) (string, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return "", err
	}
	td, err := r.creatableType(props, cmis.BaseTypePolicy)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	set, err := r.checkCreate(td, props)
	if err != nil {
		return "", err
	}
	var parent *object
	if folderID != "" {
		if parent, err = r.folder(folderID); err != nil {
			return "", err
		}
		if err := r.checkName(parent.id, set.Name(), ""); err != nil {
			return "", err
		}
	}
	o := &object{base: cmis.BaseTypePolicy, typeID: td.ID(), props: set}
	r.create(o)
	if parent != nil {
		r.file(o, parent.id)
	}
	r.record(o, cmis.ChangeTypeCreated)
	return o.id, nil
}

// GetObject implements [binding.ObjectService].
func (r *Repository) GetObject(ctx context.Context, repositoryID, objectID string, opts binding.ObjectOptions) (*cmis.ObjectData, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, err := r.lookup(objectID)
	if err != nil {
		return nil, err
	}
	return r.objectData(o, opts)
}

// GetObjectByPath implements [binding.ObjectService].
func (r *Repository) GetObjectByPath(ctx context.Context, repositoryID, path string, opts binding.ObjectOptions) (*cmis.ObjectData, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(path, "/") {
		return nil, invalidArgument("path %q is not absolute", path)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, err := r.byPath(path)
	if err != nil {
		return nil, err
	}
	return r.objectData(o, opts)
}

func (r *Repository) byPath(path string) (*object, error) {
	cur := r.objects[r.rootID]
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg == "" {
			continue
		}
		if cur.base != cmis.BaseTypeFolder {
			return nil, notFound("path %q", path)
		}
		next := r.childByName(cur.id, seg)
		if next == nil {
			return nil, notFound("path %q", path)
		}
		cur = next
	}
	return cur, nil
}

// GetProperties implements [binding.ObjectService].
func (r *Repository) GetProperties(ctx context.Context, repositoryID, objectID, filter string) (*cmis.Properties, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, err := r.lookup(objectID)
	if err != nil {
		return nil, err
	}
	return r.applyFilter(parsePropertyFilter(filter), o.typeID, r.properties(o))
}

// checkWritable fails when o is a document version that cannot change:
// an older version, or any version of a checked-out series other than its
// working copy.
func (r *Repository) checkWritable(o *object) error {
	if o.base != cmis.BaseTypeDocument || o.pwc {
		return nil
	}
	s := r.series[o.seriesID]
	if s.pwc != "" {
		return versioning("document %q is checked out", o.id)
	}
	if s.latest() != o.id {
		return versioning("object %q is not the latest version", o.id)
	}
	return nil
}

// update applies a property write to o.
func (r *Repository) update(o *object, changeToken string, props *cmis.Properties) error {
	if err := r.checkWritable(o); err != nil {
		return err
	}
	if changeToken != "" && changeToken != o.changeToken() {
		return fault(cmis.ErrorKindUpdateConflict, "object %q has changed since change token %q", o.id, changeToken)
	}
	secondary, err := r.secondaryTypes(props)
	if err != nil {
		return err
	}
	if !props.Has(cmis.PropSecondaryObjectTypeIDs) {
		secondary, _ = r.secondaryTypes(o.props)
	}
	mode := modeUpdate
	if o.pwc {
		mode = modeCheckedOut
	}
	set, unset, err := r.checkWrite(o.typeID, secondary, props, mode)
	if err != nil {
		return err
	}
	if set.Has(cmis.PropName) {
		name := set.Name()
		if strings.TrimSpace(name) == "" {
			return constraint("property %s must not be empty", cmis.PropName)
		}
		for _, parent := range r.parentIDs(o) {
			if err := r.checkName(parent, name, filingID(o)); err != nil {
				return err
			}
		}
	}
	mergeProperties(o.props, set, unset)
	r.dropUndefined(o)
	r.stamp(o, r.now(), false)
	r.record(o, cmis.ChangeTypeUpdated)
	return nil
}

// dropUndefined removes stored properties that neither the type nor the
// current secondary types define, as left behind by removing a secondary
// type.
func (r *Repository) dropUndefined(o *object) {
	for _, id := range o.props.IDs() {
		if _, ok := r.definition(o, id); !ok {
			o.props.Remove(id)
		}
	}
}

// UpdateProperties implements [binding.ObjectService].
func (r *Repository) UpdateProperties(ctx context.Context, repositoryID, objectID, changeToken string, props *cmis.Properties) (string, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	o, err := r.lookup(objectID)
	if err != nil {
		return "", err
	}
	if err := r.update(o, changeToken, props); err != nil {
		return "", err
	}
	return o.id, nil
}

// BulkUpdateProperties implements [binding.ObjectService]. Objects that
// cannot be updated are skipped.
func (r *Repository) BulkUpdateProperties(ctx context.Context, repositoryID string, bu *cmis.BulkUpdate) ([]*cmis.BulkUpdateObjectIDAndChangeToken, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	if !r.version.Is11() {
		return nil, fault(cmis.ErrorKindNotSupported, "bulk update requires CMIS %s", cmis.Version11)
	}
	if bu == nil {
		return nil, invalidArgument("bulk update is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*cmis.BulkUpdateObjectIDAndChangeToken
	for _, entry := range bu.Objects {
		o, ok := r.objects[entry.ID]
		if !ok {
			continue
		}
		props := bu.Properties.Clone()
		if props == nil {
			props = cmis.NewProperties()
		}
		if len(bu.AddSecondaryTypeIDs) > 0 || len(bu.RemoveSecondaryTypeIDs) > 0 {
			current, _ := r.secondaryTypes(o.props)
			next := slices.Clone(current)
			for _, id := range bu.AddSecondaryTypeIDs {
				if !slices.Contains(next, id) {
					next = append(next, id)
				}
			}
			next = slices.DeleteFunc(next, func(id string) bool { return slices.Contains(bu.RemoveSecondaryTypeIDs, id) })
			props.Set(cmis.NewIDProperty(cmis.PropSecondaryObjectTypeIDs, next...))
		}
		if err := r.update(o, entry.ChangeToken, props); err != nil {
			r.log.Debug("bulk update skipped object", "object_id", entry.ID, "error", err)
			continue
		}
		out = append(out, &cmis.BulkUpdateObjectIDAndChangeToken{ID: entry.ID, NewID: o.id, ChangeToken: o.changeToken()})
	}
	return out, nil
}

// DeleteObject implements [binding.ObjectService]. Deleting a private
// working copy cancels the check-out.
func (r *Repository) DeleteObject(ctx context.Context, repositoryID, objectID string, allVersions bool) error {
	if err := r.begin(ctx, repositoryID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	o, err := r.lookup(objectID)
	if err != nil {
		return err
	}
	if o.id == r.rootID {
		return constraint("the root folder cannot be deleted")
	}
	switch o.base {
	case cmis.BaseTypeFolder:
		if len(r.children[o.id]) > 0 {
			return constraint("folder %q is not empty", o.id)
		}
	case cmis.BaseTypePolicy:
		if r.policyInUse(o.id) {
			return constraint("policy %q is applied to objects", o.id)
		}
	case cmis.BaseTypeDocument:
		return r.deleteDocument(o, allVersions)
	}
	if len(r.relationshipsOf(o.id, binding.RelationshipDirectionEither)) > 0 {
		return constraint("object %q is part of relationships", o.id)
	}
	for _, parent := range slices.Clone(o.parents) {
		r.unfile(o, parent)
	}
	r.remove(o)
	return nil
}

func (r *Repository) deleteDocument(o *object, allVersions bool) error {
	s := r.series[o.seriesID]
	if o.pwc {
		r.cancelCheckOut(s)
		return nil
	}
	doomed := []*object{o}
	if allVersions {
		doomed = doomed[:0]
		for _, id := range append(slices.Clone(s.versions), s.pwc) {
			if v, ok := r.objects[id]; ok {
				doomed = append(doomed, v)
			}
		}
	}
	for _, v := range doomed {
		if len(r.relationshipsOf(v.id, binding.RelationshipDirectionEither)) > 0 {
			return constraint("object %q is part of relationships", v.id)
		}
	}
	for _, v := range doomed {
		s.versions = slices.DeleteFunc(s.versions, func(id string) bool { return id == v.id })
		if v.id == s.pwc {
			s.pwc, s.checkedOutBy = "", ""
		}
		r.remove(v)
	}
	if len(s.versions) == 0 && s.pwc == "" {
		for _, parent := range slices.Clone(s.parents) {
			r.unfile(o, parent)
		}
		delete(r.series, s.id)
	}
	return nil
}

// remove deletes o from the store and records the deletion.
func (r *Repository) remove(o *object) {
	r.record(o, cmis.ChangeTypeDeleted)
	delete(r.objects, o.id)
	r.log.Debug("object deleted", "object_id", o.id)
}

// GetContentStream implements [binding.ObjectService].
func (r *Repository) GetContentStream(ctx context.Context, repositoryID, objectID, streamID string) (*cmis.ContentStream, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, err := r.lookup(objectID)
	if err != nil {
		return nil, err
	}
	if streamID != "" && streamID != contentStreamID(o) {
		for _, rend := range o.renditions {
			if rend.streamID == streamID {
				return rend.blob.stream()
			}
		}
		return nil, invalidArgument("object %q has no stream %q", objectID, streamID)
	}
	if o.content == nil {
		return nil, constraint("object %q has no content stream", objectID)
	}
	return o.content.stream()
}

func contentStreamID(o *object) string {
	return o.id + "-content"
}

// contentTarget resolves the document a content write applies to.
func (r *Repository) contentTarget(objectID string) (*object, *cmis.TypeDefinition, error) {
	o, err := r.lookup(objectID)
	if err != nil {
		return nil, nil, err
	}
	if o.base != cmis.BaseTypeDocument {
		return nil, nil, constraint("object %q is not a document", objectID)
	}
	td, _ := r.types.Type(o.typeID)
	if err := r.checkWritable(o); err != nil {
		return nil, nil, err
	}
	return o, td, nil
}

// SetContentStream implements [binding.ObjectService].
func (r *Repository) SetContentStream(ctx context.Context, repositoryID, objectID string, overwrite bool, content *cmis.ContentStream) (string, error) {
	defer content.Close()
	if err := r.begin(ctx, repositoryID); err != nil {
		return "", err
	}
	if content == nil {
		return "", invalidArgument("content stream is required")
	}
	b, err := storeContent(content, r.compress)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	o, td, err := r.contentTarget(objectID)
	if err != nil {
		return "", err
	}
	if td != nil && td.ContentStreamAllowed() == cmis.ContentStreamNotAllowed {
		return "", fault(cmis.ErrorKindStreamNotSupported, "type %q does not allow content", td.ID())
	}
	if o.content != nil && !overwrite {
		return "", fault(cmis.ErrorKindContentAlreadyExists, "object %q already has content", objectID)
	}
	o.content = b
	r.stamp(o, r.now(), false)
	r.record(o, cmis.ChangeTypeUpdated)
	return o.id, nil
}

// DeleteContentStream implements [binding.ObjectService].
func (r *Repository) DeleteContentStream(ctx context.Context, repositoryID, objectID string) (string, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	o, td, err := r.contentTarget(objectID)
	if err != nil {
		return "", err
	}
	if td != nil && td.ContentStreamAllowed() == cmis.ContentStreamRequired {
		return "", constraint("type %q requires content", td.ID())
	}
	if o.content == nil {
		return "", constraint("object %q has no content stream", objectID)
	}
	o.content = nil
	r.stamp(o, r.now(), false)
	r.record(o, cmis.ChangeTypeUpdated)
	return o.id, nil
}

// MoveObject implements [binding.ObjectService].
func (r *Repository) MoveObject(ctx context.Context, repositoryID, objectID, targetFolderID, sourceFolderID string) (string, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	o, err := r.lookup(objectID)
	if err != nil {
		return "", err
	}
	if o.id == r.rootID {
		return "", constraint("the root folder cannot be moved")
	}
	parents := r.parentIDs(o)
	if len(parents) == 0 {
		return "", constraint("object %q is not filed", objectID)
	}
	if sourceFolderID == "" {
		if len(parents) > 1 {
			return "", invalidArgument("object %q is filed in several folders, a source folder is required", objectID)
		}
		sourceFolderID = parents[0]
	}
	if !slices.Contains(parents, sourceFolderID) {
		return "", invalidArgument("object %q is not filed in folder %q", objectID, sourceFolderID)
	}
	target, err := r.folder(targetFolderID)
	if err != nil {
		return "", err
	}
	if target.id == sourceFolderID {
		return o.id, nil
	}
	if slices.Contains(parents, target.id) {
		return "", constraint("object %q is already filed in folder %q", objectID, target.id)
	}
	if o.base == cmis.BaseTypeFolder && (target.id == o.id || r.isAncestor(o.id, target)) {
		return "", constraint("folder %q cannot be moved below itself", objectID)
	}
	if err := r.checkName(target.id, o.name(), filingID(o)); err != nil {
		return "", err
	}
	r.unfile(o, sourceFolderID)
	r.file(o, target.id)
	r.record(o, cmis.ChangeTypeUpdated)
	return o.id, nil
}
