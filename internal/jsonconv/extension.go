// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package jsonconv

import (
	"strconv"
	"strings"

	"github.com/buger/jsonparser"

	"github.com/gocmis/gocmis/pkg/cmis"
)

const (
	attributePrefix = "@"
	textMember      = "#text"
	// runSeparator cannot occur in an XML name.
	runSeparator = "#"
)

// extensionKey names the member of ext inside an object binding ks under
// version v. Unqualified names that the object binds are written in the
// qualified form with an empty namespace so they decode as extensions.
func extensionKey(x cmis.ExtensionElement, ks keys, v cmis.Version) string {
	if x.Namespace() != "" || ks.bound(x.Name(), v) || strings.HasPrefix(x.Name(), "{") {
		return "{" + x.Namespace() + "}" + x.Name()
	}
	return x.Name()
}

// extensions appends ext to o after its known members. A run of elements
// sharing a member name becomes one array. A name that comes back after
// other elements gets a new member with a run suffix, so document order
// survives the round trip.
func (e encoder) extensions(o *object, ks keys, ext []cmis.ExtensionElement) {
	setExtensions(o, ext, func(x cmis.ExtensionElement) string { return extensionKey(x, ks, e.v) })
}

func setExtensions(o *object, ext []cmis.ExtensionElement, key func(cmis.ExtensionElement) string) {
	runs := map[string]int{}
	for i := 0; i < len(ext); {
		k := key(ext[i])
		j := i + 1
		for j < len(ext) && key(ext[j]) == k {
			j++
		}
		member := k
		if n := runs[k]; n > 0 {
			member = k + runSeparator + strconv.Itoa(n+1)
		}
		runs[k]++
		if j-i == 1 {
			o.Set(member, extensionValue(ext[i]))
		} else {
			vs := make([]any, 0, j-i)
			for _, x := range ext[i:j] {
				vs = append(vs, extensionValue(x))
			}
			o.Set(member, vs)
		}
		i = j
	}
}

// extensionValue converts one element to its JSON value.
func extensionValue(x cmis.ExtensionElement) any {
	names := x.AttributeNames()
	if x.IsLeaf() && len(names) == 0 {
		return x.Value()
	}
	o := newObject()
	for _, n := range names {
		v, _ := x.Attribute(n)
		o.Set(attributePrefix+n, v)
	}
	if x.IsLeaf() {
		setString(o, textMember, x.Value())
		return o
	}
	setExtensions(o, x.Children(), func(c cmis.ExtensionElement) string {
		if c.Namespace() != "" {
			return "{" + c.Namespace() + "}" + c.Name()
		}
		return c.Name()
	})
	return o
}

// splitKey parses a member name written by extensionKey, dropping any
// run suffix.
func splitKey(key string) (namespace, name string) {
	namespace, name = "", key
	if rest, ok := strings.CutPrefix(key, "{"); ok {
		if ns, local, ok := strings.Cut(rest, "}"); ok {
			namespace, name = ns, local
		}
	}
	if i := strings.LastIndex(name, runSeparator); i > 0 {
		if _, err := strconv.Atoi(name[i+1:]); err == nil {
			name = name[:i]
		}
	}
	return namespace, name
}

// extensions converts the member key into extension elements. An array
// yields one element per entry.
func (d decoder) extensions(key string, val value) ([]cmis.ExtensionElement, error) {
	ns, name := splitKey(key)
	if name == "" {
		return nil, d.malformed("empty extension name")
	}
	if val.typ != jsonparser.Array {
		x, err := d.extension(ns, name, val)
		if err != nil {
			return nil, err
		}
		return []cmis.ExtensionElement{x}, nil
	}
	var out []cmis.ExtensionElement
	err := d.each(val, func(d decoder, item value) error {
		if item.typ == jsonparser.Array {
			return d.malformed("nested array in extension %s", name)
		}
		x, err := d.extension(ns, name, item)
		if err != nil {
			return err
		}
		out = append(out, x)
		return nil
	})
	return out, err
}

func (d decoder) extension(ns, name string, val value) (cmis.ExtensionElement, error) {
	switch val.typ {
	case jsonparser.Object:
	case jsonparser.Null:
		return cmis.NewExtensionLeaf(ns, name, "", nil), nil
	default:
		s, err := d.scalar(val)
		if err != nil {
			return cmis.ExtensionElement{}, err
		}
		return cmis.NewExtensionLeaf(ns, name, s, nil), nil
	}

	var (
		attrs    map[string]string
		text     string
		children []cmis.ExtensionElement
	)
	err := d.members(val, func(key string, d decoder, val value) error {
		switch {
		case strings.HasPrefix(key, attributePrefix):
			s, err := d.scalar(val)
			if err != nil {
				return err
			}
			if attrs == nil {
				attrs = map[string]string{}
			}
			attrs[strings.TrimPrefix(key, attributePrefix)] = s
		case key == textMember:
			s, err := d.scalar(val)
			if err != nil {
				return err
			}
			text = s
		default:
			xs, err := d.extensions(key, val)
			if err != nil {
				return err
			}
			children = append(children, xs...)
		}
		return nil
	})
	if err != nil {
		return cmis.ExtensionElement{}, err
	}
	if len(children) == 0 {
		return cmis.NewExtensionLeaf(ns, name, text, attrs), nil
	}
	return cmis.NewExtensionNode(ns, name, attrs, children...), nil
}
