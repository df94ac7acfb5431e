// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package codec

import (
	"mime"
	"slices"
	"strings"
	"sync"

	"github.com/samber/oops"
)

// Registry holds codecs by format name and content type.
// It is safe for concurrent use by multiple goroutines.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Codec
	byMedia map[string]Codec
	order   []string
}

// NewRegistry creates a registry holding codecs. The first codec is the
// default.
func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{
		byName:  make(map[string]Codec),
		byMedia: make(map[string]Codec),
	}
	for _, c := range codecs {
		r.Register(c)
	}
	return r
}

// Register adds c, replacing any codec with the same name.
func (r *Registry) Register(c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[c.Name()]; !ok {
		r.order = append(r.order, c.Name())
	}
	r.byName[c.Name()] = c
	media, _, err := mime.ParseMediaType(c.ContentType())
	if err == nil {
		if _, taken := r.byMedia[media]; !taken {
			r.byMedia[media] = c
		}
	}
}

// Names returns the registered format names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Lookup returns the codec named name.
func (r *Registry) Lookup(name string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, oops.Code(CodeUnknownFormat).
			With("format", name).
			Errorf("unknown format %q (known: %s)", name, strings.Join(r.order, ", "))
	}
	return c, nil
}

// ForContentType returns the codec producing contentType, ignoring
// parameters such as charset.
func (r *Registry) ForContentType(contentType string) (Codec, bool) {
	media, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byMedia[media]
	return c, ok
}

// Negotiate picks a codec for a response. An explicit format name wins;
// otherwise the first Accept entry naming a registered content type is
// used, and the default codec when none matches.
func (r *Registry) Negotiate(format, accept string) (Codec, error) {
	if format != "" {
		return r.Lookup(format)
	}
	for _, part := range strings.Split(accept, ",") {
		if c, ok := r.ForContentType(strings.TrimSpace(part)); ok {
			return c, nil
		}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.order) == 0 {
		return nil, oops.Code(CodeUnknownFormat).Errorf("no codecs registered")
	}
	return r.byName[r.order[0]], nil
}
