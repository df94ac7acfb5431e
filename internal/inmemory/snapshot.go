// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package inmemory

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/samber/oops"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// snapshotFormat is bumped whenever the snapshot layout changes.
const snapshotFormat = 1

var (
	snapshotEncMode cbor.EncMode
	snapshotDecMode cbor.DecMode
)

func init() {
	var err error
	snapshotEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("inmemory: CBOR encoder initialization failed: " + err.Error())
	}
	snapshotDecMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("inmemory: CBOR decoder initialization failed: " + err.Error())
	}
}

// The snapshot types mirror the repository state with every value in a
// plain encodable form. Blobs are shared between versions, so they are
// stored once and referenced by index.
type snapshotState struct {
	Format     int                 `cbor:"format"`
	Repository string              `cbor:"repository"`
	Version    string              `cbor:"version"`
	Root       string              `cbor:"root"`
	Objects    []snapshotObject    `cbor:"objects"`
	Series     []snapshotSeries    `cbor:"series"`
	Children   map[string][]string `cbor:"children"`
	Blobs      []snapshotBlob      `cbor:"blobs"`
	Changes    []snapshotChange    `cbor:"changes"`
}

type snapshotProperty struct {
	ID     string   `cbor:"id"`
	Type   string   `cbor:"type"`
	Values []string `cbor:"values"`
}

type snapshotAce struct {
	Principal   string   `cbor:"principal"`
	Permissions []string `cbor:"permissions"`
}

type snapshotRendition struct {
	StreamID string `cbor:"stream_id"`
	Kind     string `cbor:"kind"`
	Title    string `cbor:"title,omitempty"`
	Width    int64  `cbor:"width,omitempty"`
	Height   int64  `cbor:"height,omitempty"`
	Blob     int    `cbor:"blob"`
}

type snapshotObject struct {
	ID         string              `cbor:"id"`
	Base       string              `cbor:"base"`
	Type       string              `cbor:"type"`
	Properties []snapshotProperty  `cbor:"properties"`
	Parents    []string            `cbor:"parents,omitempty"`
	Aces       []snapshotAce       `cbor:"aces,omitempty"`
	Policies   []string            `cbor:"policies,omitempty"`
	Content    int                 `cbor:"content"`
	Renditions []snapshotRendition `cbor:"renditions,omitempty"`
	Series     string              `cbor:"series,omitempty"`
	Label      string              `cbor:"label,omitempty"`
	Major      bool                `cbor:"major,omitempty"`
	PWC        bool                `cbor:"pwc,omitempty"`
}

type snapshotSeries struct {
	ID           string   `cbor:"id"`
	Versions     []string `cbor:"versions"`
	PWC          string   `cbor:"pwc,omitempty"`
	CheckedOutBy string   `cbor:"checked_out_by,omitempty"`
	Parents      []string `cbor:"parents"`
}

type snapshotBlob struct {
	Data       []byte `cbor:"data"`
	Compressed bool   `cbor:"compressed"`
	Length     int64  `cbor:"length"`
	MimeType   string `cbor:"mime_type"`
	Filename   string `cbor:"filename"`
	SHA256     string `cbor:"sha256"`
	BLAKE3     string `cbor:"blake3"`
}

type snapshotChange struct {
	Token      string             `cbor:"token"`
	Object     string             `cbor:"object"`
	Base       string             `cbor:"base"`
	Type       string             `cbor:"type"`
	Kind       string             `cbor:"kind"`
	Time       time.Time          `cbor:"time"`
	Properties []snapshotProperty `cbor:"properties,omitempty"`
}

func snapshotProperties(ps *cmis.Properties) ([]snapshotProperty, error) {
	out := make([]snapshotProperty, 0, ps.Len())
	for _, p := range ps.List() {
		sp := snapshotProperty{ID: p.Identity().ID, Type: string(p.Type())}
		for _, v := range p.AnyValues() {
			s, err := cmis.FormatValue(p.Type(), v)
			if err != nil {
				return nil, oops.Code(CodeSnapshot).With("property", sp.ID).Wrap(err)
			}
			sp.Values = append(sp.Values, s)
		}
		out = append(out, sp)
	}
	return out, nil
}

func restoreProperties(sps []snapshotProperty) (*cmis.Properties, error) {
	ps := cmis.NewProperties()
	for _, sp := range sps {
		t := cmis.PropertyType(sp.Type)
		values := make([]any, 0, len(sp.Values))
		for _, s := range sp.Values {
			v, err := cmis.ParseValue(t, s)
			if err != nil {
				return nil, oops.Code(CodeSnapshot).With("property", sp.ID).Wrap(err)
			}
			values = append(values, v)
		}
		p, err := cmis.NewPropertyFromValues(t, sp.ID, values)
		if err != nil {
			return nil, oops.Code(CodeSnapshot).With("property", sp.ID).Wrap(err)
		}
		ps.Set(p)
	}
	return ps, nil
}

// blobTable numbers blobs in first-seen order. Index 0 means no blob.
type blobTable struct {
	index map[*blob]int
	blobs []snapshotBlob
}

func (t *blobTable) add(b *blob) int {
	if b == nil {
		return 0
	}
	if i, ok := t.index[b]; ok {
		return i
	}
	t.blobs = append(t.blobs, snapshotBlob{
		Data:       b.data,
		Compressed: b.compressed,
		Length:     b.length,
		MimeType:   b.mimeType,
		Filename:   b.filename,
		SHA256:     b.sha256,
		BLAKE3:     b.blake3,
	})
	t.index[b] = len(t.blobs)
	return len(t.blobs)
}

// Snapshot writes the complete repository state to w as zstd-compressed
// CBOR.
func (r *Repository) Snapshot(w io.Writer) error {
	r.mu.RLock()
	state, err := r.snapshotState()
	r.mu.RUnlock()
	if err != nil {
		return err
	}
	data, err := snapshotEncMode.Marshal(state)
	if err != nil {
		return oops.Code(CodeSnapshot).Wrapf(err, "encode snapshot")
	}
	if _, err := w.Write(zstdEncoder.EncodeAll(data, nil)); err != nil {
		return oops.Code(CodeSnapshot).Wrapf(err, "write snapshot")
	}
	r.log.Info("snapshot written", "objects", len(state.Objects), "changes", len(state.Changes))
	return nil
}

func (r *Repository) snapshotState() (*snapshotState, error) {
	state := &snapshotState{
		Format:     snapshotFormat,
		Repository: r.id,
		Version:    string(r.version),
		Root:       r.rootID,
		Children:   r.children,
	}
	blobs := &blobTable{index: map[*blob]int{}}
	for _, o := range r.objects {
		props, err := snapshotProperties(o.props)
		if err != nil {
			return nil, err
		}
		so := snapshotObject{
			ID:         o.id,
			Base:       string(o.base),
			Type:       o.typeID,
			Properties: props,
			Parents:    o.parents,
			Policies:   o.policies,
			Content:    blobs.add(o.content),
			Series:     o.seriesID,
			Label:      o.label,
			Major:      o.major,
			PWC:        o.pwc,
		}
		for _, ace := range o.aces {
			so.Aces = append(so.Aces, snapshotAce{Principal: ace.Principal.ID, Permissions: ace.Permissions})
		}
		for _, rd := range o.renditions {
			so.Renditions = append(so.Renditions, snapshotRendition{
				StreamID: rd.streamID,
				Kind:     rd.kind,
				Title:    rd.title,
				Width:    rd.width,
				Height:   rd.height,
				Blob:     blobs.add(rd.blob),
			})
		}
		state.Objects = append(state.Objects, so)
	}
	for _, s := range r.series {
		state.Series = append(state.Series, snapshotSeries{
			ID:           s.id,
			Versions:     s.versions,
			PWC:          s.pwc,
			CheckedOutBy: s.checkedOutBy,
			Parents:      s.parents,
		})
	}
	for _, c := range r.changes {
		sc := snapshotChange{
			Token:  c.token,
			Object: c.objectID,
			Base:   string(c.base),
			Type:   c.typeID,
			Kind:   string(c.kind),
			Time:   c.time,
		}
		if c.props != nil {
			props, err := snapshotProperties(c.props)
			if err != nil {
				return nil, err
			}
			sc.Properties = props
		}
		state.Changes = append(state.Changes, sc)
	}
	state.Blobs = blobs.blobs
	return state, nil
}

// Restore replaces the repository state with a snapshot written by
// Snapshot. The snapshot must come from a repository with the same id and
// CMIS version, and every type it uses must be registered. On error the
// current state is left unchanged.
func (r *Repository) Restore(rd io.Reader) error {
	packed, err := io.ReadAll(rd)
	if err != nil {
		return oops.Code(CodeSnapshot).Wrapf(err, "read snapshot")
	}
	data, err := zstdDecoder.DecodeAll(packed, nil)
	if err != nil {
		return oops.Code(CodeSnapshot).Wrapf(err, "decompress snapshot")
	}
	var state snapshotState
	if err := snapshotDecMode.Unmarshal(data, &state); err != nil {
		return oops.Code(CodeSnapshot).Wrapf(err, "decode snapshot")
	}
	errb := oops.Code(CodeSnapshot).With("repository_id", r.id)
	switch {
	case state.Format != snapshotFormat:
		return errb.Errorf("unsupported snapshot format %d", state.Format)
	case state.Repository != r.id:
		return errb.Errorf("snapshot belongs to repository %q", state.Repository)
	case cmis.Version(state.Version) != r.version:
		return errb.Errorf("snapshot is for CMIS %s, repository speaks %s", state.Version, r.version)
	}

	blobOf := func(i int) (*blob, error) {
		if i == 0 {
			return nil, nil
		}
		if i < 0 || i > len(state.Blobs) {
			return nil, errb.Errorf("blob reference %d out of range", i)
		}
		sb := state.Blobs[i-1]
		return &blob{
			data:       sb.Data,
			compressed: sb.Compressed,
			length:     sb.Length,
			mimeType:   sb.MimeType,
			filename:   sb.Filename,
			sha256:     sb.SHA256,
			blake3:     sb.BLAKE3,
		}, nil
	}
	// Blobs are rebuilt once per index so sharing survives the round trip.
	blobCache := map[int]*blob{}
	sharedBlob := func(i int) (*blob, error) {
		if b, ok := blobCache[i]; ok {
			return b, nil
		}
		b, err := blobOf(i)
		if err != nil {
			return nil, err
		}
		blobCache[i] = b
		return b, nil
	}

	objects := make(map[string]*object, len(state.Objects))
	for _, so := range state.Objects {
		if _, ok := r.types.Type(so.Type); !ok {
			return errb.With("object_id", so.ID).Errorf("object %q has unknown type %q", so.ID, so.Type)
		}
		props, err := restoreProperties(so.Properties)
		if err != nil {
			return err
		}
		o := &object{
			id:       so.ID,
			base:     cmis.BaseTypeID(so.Base),
			typeID:   so.Type,
			props:    props,
			parents:  so.Parents,
			policies: so.Policies,
			seriesID: so.Series,
			label:    so.Label,
			major:    so.Major,
			pwc:      so.PWC,
		}
		if o.content, err = sharedBlob(so.Content); err != nil {
			return err
		}
		for _, sa := range so.Aces {
			o.aces = append(o.aces, cmis.NewAce(sa.Principal, sa.Permissions...))
		}
		for _, sr := range so.Renditions {
			b, err := sharedBlob(sr.Blob)
			if err != nil {
				return err
			}
			if b == nil {
				return errb.With("object_id", so.ID).Errorf("rendition %q has no content", sr.StreamID)
			}
			o.renditions = append(o.renditions, &rendition{
				streamID: sr.StreamID,
				kind:     sr.Kind,
				title:    sr.Title,
				width:    sr.Width,
				height:   sr.Height,
				blob:     b,
			})
		}
		objects[o.id] = o
	}
	if _, ok := objects[state.Root]; !ok {
		return errb.Errorf("root folder %q missing from snapshot", state.Root)
	}

	series := make(map[string]*versionSeries, len(state.Series))
	for _, ss := range state.Series {
		series[ss.ID] = &versionSeries{
			id:           ss.ID,
			versions:     ss.Versions,
			pwc:          ss.PWC,
			checkedOutBy: ss.CheckedOutBy,
			parents:      ss.Parents,
		}
	}

	changes := make([]*change, 0, len(state.Changes))
	for _, sc := range state.Changes {
		c := &change{
			token:    sc.Token,
			objectID: sc.Object,
			base:     cmis.BaseTypeID(sc.Base),
			typeID:   sc.Type,
			kind:     cmis.ChangeType(sc.Kind),
			time:     sc.Time,
		}
		if sc.Properties != nil {
			props, err := restoreProperties(sc.Properties)
			if err != nil {
				return err
			}
			c.props = props
		}
		changes = append(changes, c)
	}

	children := state.Children
	if children == nil {
		children = map[string][]string{}
	}

	r.mu.Lock()
	r.rootID = state.Root
	r.objects = objects
	r.series = series
	r.children = children
	r.changes = changes
	r.mu.Unlock()

	r.log.Info("snapshot restored", "objects", len(objects), "changes", len(changes))
	return nil
}

// SaveFile writes a snapshot to path, replacing it atomically.
func (r *Repository) SaveFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return oops.Code(CodeSnapshot).With("path", path).Wrapf(err, "create snapshot directory")
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return oops.Code(CodeSnapshot).With("path", path).Wrapf(err, "create snapshot file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if err := r.Snapshot(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return oops.Code(CodeSnapshot).With("path", path).Wrapf(err, "close snapshot file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return oops.Code(CodeSnapshot).With("path", path).Wrapf(err, "replace snapshot file")
	}
	return nil
}

// LoadFile restores the snapshot at path. A missing file is reported with
// an error matching os.ErrNotExist.
func (r *Repository) LoadFile(path string) error {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return oops.Code(CodeSnapshot).With("path", path).Wrapf(err, "open snapshot file")
	}
	defer f.Close()
	return r.Restore(f)
}
