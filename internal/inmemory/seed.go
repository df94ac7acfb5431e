// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package inmemory

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// SeedFile is the YAML layout of a seed file: objects created in order,
// then relationships between them.
//
//	objects:
//	  - path: /reports
//	  - path: /reports/q1.txt
//	    type: cmis:document
//	    content: "first quarter"
//	    mimeType: text/plain
//	    properties:
//	      cmis:description: Quarterly report
//	relationships:
//	  - source: /reports/q1.txt
//	    target: /reports
type SeedFile struct {
	Objects       []SeedObject       `yaml:"objects"`
	Relationships []SeedRelationship `yaml:"relationships,omitempty"`
}

// SeedObject is one folder or document. Missing parent folders are
// created as cmis:folder. Type defaults to cmis:folder, or cmis:document
// when content is given.
type SeedObject struct {
	Path       string                `yaml:"path"`
	Type       string                `yaml:"type,omitempty"`
	Properties map[string]stringList `yaml:"properties,omitempty"`
	Content    *string               `yaml:"content,omitempty"`
	MimeType   string                `yaml:"mimeType,omitempty"`
	Versioning cmis.VersioningState  `yaml:"versioning,omitempty"`
}

// SeedRelationship links two seeded objects by path.
type SeedRelationship struct {
	Type       string                `yaml:"type,omitempty"`
	Source     string                `yaml:"source"`
	Target     string                `yaml:"target"`
	Properties map[string]stringList `yaml:"properties,omitempty"`
}

// stringList accepts a scalar or a sequence of scalars.
type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*l = []string{value.Value}
		return nil
	}
	var values []string
	if err := value.Decode(&values); err != nil {
		return err
	}
	*l = values
	return nil
}

// Seed creates the objects of a YAML seed file through the regular
// services, so every object is validated like a client request.
func (r *Repository) Seed(ctx context.Context, rd io.Reader) error {
	data, err := io.ReadAll(rd)
	if err != nil {
		return oops.Code(CodeSeed).Wrapf(err, "read seed file")
	}
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return oops.Code(CodeSeed).Wrapf(err, "parse seed file")
	}

	s := &seeder{r: r, ids: map[string]string{"/": r.RootFolderID()}}
	for _, so := range f.Objects {
		if err := s.object(ctx, so); err != nil {
			return oops.Code(CodeSeed).With("path", so.Path).Wrap(err)
		}
	}
	for _, sr := range f.Relationships {
		if err := s.relationship(ctx, sr); err != nil {
			return oops.Code(CodeSeed).With("source", sr.Source).With("target", sr.Target).Wrap(err)
		}
	}
	r.log.Info("repository seeded", "objects", len(f.Objects), "relationships", len(f.Relationships))
	return nil
}

type seeder struct {
	r   *Repository
	ids map[string]string
}

func cleanPath(p string) string {
	return path.Clean("/" + strings.TrimSpace(p))
}

// folder returns the id of the folder at p, creating it and its ancestors
// when needed.
func (s *seeder) folder(ctx context.Context, p string) (string, error) {
	if id, ok := s.ids[p]; ok {
		return id, nil
	}
	parentID, err := s.folder(ctx, path.Dir(p))
	if err != nil {
		return "", err
	}
	id, err := s.r.CreateFolder(ctx, s.r.id, cmis.NewProperties(
		cmis.NewIDProperty(cmis.PropObjectTypeID, string(cmis.BaseTypeFolder)),
		cmis.NewStringProperty(cmis.PropName, path.Base(p)),
	), parentID)
	if err != nil {
		return "", err
	}
	s.ids[p] = id
	return id, nil
}

func (s *seeder) object(ctx context.Context, so SeedObject) error {
	p := cleanPath(so.Path)
	if p == "/" {
		return oops.Errorf("the root folder cannot be seeded")
	}
	if _, ok := s.ids[p]; ok {
		return oops.Errorf("path %q is seeded twice", p)
	}
	typeID := so.Type
	if typeID == "" {
		typeID = string(cmis.BaseTypeFolder)
		if so.Content != nil {
			typeID = string(cmis.BaseTypeDocument)
		}
	}
	td, ok := s.r.types.Type(typeID)
	if !ok {
		return oops.Errorf("unknown type %q", typeID)
	}
	parentID, err := s.folder(ctx, path.Dir(p))
	if err != nil {
		return err
	}
	props, err := s.properties(typeID, so.Properties)
	if err != nil {
		return err
	}
	props.Set(cmis.NewIDProperty(cmis.PropObjectTypeID, typeID))
	if !props.Has(cmis.PropName) {
		props.Set(cmis.NewStringProperty(cmis.PropName, path.Base(p)))
	}

	var id string
	switch td.BaseTypeID() {
	case cmis.BaseTypeFolder:
		id, err = s.r.CreateFolder(ctx, s.r.id, props, parentID)
	case cmis.BaseTypeDocument:
		var cs *cmis.ContentStream
		if so.Content != nil {
			cs = cmis.NewContentStream(path.Base(p), so.MimeType, strings.NewReader(*so.Content), int64(len(*so.Content)))
		}
		id, err = s.r.CreateDocument(ctx, s.r.id, props, parentID, cs, so.Versioning)
	case cmis.BaseTypePolicy:
		id, err = s.r.CreatePolicy(ctx, s.r.id, props, parentID)
	default:
		return oops.Errorf("objects of base type %s cannot be seeded by path", td.BaseTypeID())
	}
	if err != nil {
		return err
	}
	s.ids[p] = id
	return nil
}

func (s *seeder) relationship(ctx context.Context, sr SeedRelationship) error {
	source, ok := s.ids[cleanPath(sr.Source)]
	if !ok {
		return oops.Errorf("unknown source %q", sr.Source)
	}
	target, ok := s.ids[cleanPath(sr.Target)]
	if !ok {
		return oops.Errorf("unknown target %q", sr.Target)
	}
	typeID := sr.Type
	if typeID == "" {
		typeID = string(cmis.BaseTypeRelationship)
	}
	props, err := s.properties(typeID, sr.Properties)
	if err != nil {
		return err
	}
	props.Set(cmis.NewIDProperty(cmis.PropObjectTypeID, typeID))
	props.Set(cmis.NewIDProperty(cmis.PropSourceID, source))
	props.Set(cmis.NewIDProperty(cmis.PropTargetID, target))
	if !props.Has(cmis.PropName) {
		props.Set(cmis.NewStringProperty(cmis.PropName, path.Base(sr.Source)+" to "+path.Base(sr.Target)))
	}
	_, err = s.r.CreateRelationship(ctx, s.r.id, props)
	return err
}

// properties parses seed values with the definitions of typeID and of
// the secondary types listed among them.
func (s *seeder) properties(typeID string, raw map[string]stringList) (*cmis.Properties, error) {
	secondary := raw[cmis.PropSecondaryObjectTypeIDs]
	props := cmis.NewProperties()
	for id, texts := range raw {
		pd, ok := s.r.lookupDefinition(typeID, secondary, id)
		if !ok {
			return nil, oops.With("property", id).Errorf("type %q has no property %q", typeID, id)
		}
		values := make([]any, 0, len(texts))
		for _, text := range texts {
			v, err := cmis.ParseValue(pd.PropertyType, text)
			if err != nil {
				return nil, oops.With("property", id).Wrap(err)
			}
			values = append(values, v)
		}
		p, err := cmis.NewPropertyFromValues(pd.PropertyType, id, values)
		if err != nil {
			return nil, err
		}
		props.Set(p)
	}
	return props, nil
}
