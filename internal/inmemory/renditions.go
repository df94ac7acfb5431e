// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package inmemory

import (
	"context"
	"math/big"

	"github.com/gocmis/gocmis/internal/binding"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// Rendition kinds with a meaning defined by CMIS.
const KindThumbnail = "cmis:thumbnail"

type rendition struct {
	streamID string
	kind     string
	title    string
	width    int64
	height   int64
	blob     *blob
}

func (rd *rendition) data() *cmis.Rendition {
	out := &cmis.Rendition{
		StreamID: rd.streamID,
		MimeType: rd.blob.mimeType,
		Length:   big.NewInt(rd.blob.length),
		Kind:     rd.kind,
		Title:    rd.title,
	}
	if rd.width > 0 && rd.height > 0 {
		out.Width = big.NewInt(rd.width)
		out.Height = big.NewInt(rd.height)
	}
	return out
}

func (r *Repository) renditionsOf(o *object, rf renditionFilter) []*cmis.Rendition {
	var out []*cmis.Rendition
	for _, rd := range o.renditions {
		if rf.match(rd.kind, rd.blob.mimeType) {
			out = append(out, rd.data())
		}
	}
	return out
}

// RenditionSpec describes a rendition added with AddRendition. Width and
// Height are only reported when both are positive.
type RenditionSpec struct {
	Kind    string
	Title   string
	Width   int64
	Height  int64
	Content *cmis.ContentStream
}

// AddRendition attaches a rendition to a document and returns its stream
// id. Renditions are read-only through the services, so this is how they
// get into the repository.
func (r *Repository) AddRendition(ctx context.Context, repositoryID, objectID string, spec RenditionSpec) (string, error) {
	defer spec.Content.Close()
	if err := r.begin(ctx, repositoryID); err != nil {
		return "", err
	}
	if spec.Content == nil {
		return "", invalidArgument("rendition content is required")
	}
	if spec.Kind == "" {
		return "", invalidArgument("rendition kind is required")
	}
	b, err := storeContent(spec.Content, r.compress)
	if err != nil {
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
	rd := &rendition{
		streamID: newID(r.now()),
		kind:     spec.Kind,
		title:    spec.Title,
		width:    spec.Width,
		height:   spec.Height,
		blob:     b,
	}
	o.renditions = append(o.renditions, rd)
	return rd.streamID, nil
}

// GetRenditions implements [binding.ObjectService]. An empty filter
// selects no renditions.
func (r *Repository) GetRenditions(ctx context.Context, repositoryID, objectID, renditionFilter string, p binding.Paging) ([]*cmis.Rendition, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	rf, err := parseRenditionFilter(renditionFilter)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, err := r.lookup(objectID)
	if err != nil {
		return nil, err
	}
	if rf.none() {
		return nil, nil
	}
	out, _ := page(r.renditionsOf(o, rf), p)
	return out, nil
}
