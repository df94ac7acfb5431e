// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package cmis

import (
	"maps"
	"slices"
)

// ExtensionElement is an opaque, namespaced element preserved across
// encode/decode round-trips. It is either a leaf holding a text value or a
// node holding child elements, never both.
type ExtensionElement struct {
	namespace string
	name      string
	attrs     map[string]string
	value     string
	children  []ExtensionElement
	leaf      bool
}

// NewExtensionLeaf creates an element holding a text value.
func NewExtensionLeaf(namespace, name, value string, attrs map[string]string) ExtensionElement {
	return ExtensionElement{
		namespace: namespace,
		name:      name,
		attrs:     maps.Clone(attrs),
		value:     value,
		leaf:      true,
	}
}

// NewExtensionNode creates an element holding children. An element without
// children cannot be told apart from an empty leaf on the wire, so a node
// built with no children is returned as a leaf with an empty value.
func NewExtensionNode(namespace, name string, attrs map[string]string, children ...ExtensionElement) ExtensionElement {
	if len(children) == 0 {
		return NewExtensionLeaf(namespace, name, "", attrs)
	}
	return ExtensionElement{
		namespace: namespace,
		name:      name,
		attrs:     maps.Clone(attrs),
		children:  slices.Clone(children),
	}
}

// Namespace returns the element namespace; empty means no namespace.
func (e ExtensionElement) Namespace() string { return e.namespace }

// Name returns the element local name.
func (e ExtensionElement) Name() string { return e.name }

// IsLeaf reports whether e holds a value rather than children.
func (e ExtensionElement) IsLeaf() bool { return e.leaf || len(e.children) == 0 }

// Value returns the text value of a leaf.
func (e ExtensionElement) Value() string { return e.value }

// Children returns a copy of the child elements of a node.
func (e ExtensionElement) Children() []ExtensionElement {
	return slices.Clone(e.children)
}

// Attributes returns a copy of the element attributes.
func (e ExtensionElement) Attributes() map[string]string {
	return maps.Clone(e.attrs)
}

// Attribute returns a single attribute value.
func (e ExtensionElement) Attribute(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// AttributeNames returns the attribute names in sorted order, which is the
// order encoders write them in.
func (e ExtensionElement) AttributeNames() []string {
	return slices.Sorted(maps.Keys(e.attrs))
}

// Equal compares name, namespace, attributes, value and children.
func (e ExtensionElement) Equal(o ExtensionElement) bool {
	if e.namespace != o.namespace || e.name != o.name || e.IsLeaf() != o.IsLeaf() {
		return false
	}
	if len(e.attrs) != len(o.attrs) {
		return false
	}
	for k, v := range e.attrs {
		if ov, ok := o.attrs[k]; !ok || ov != v {
			return false
		}
	}
	if e.IsLeaf() {
		return e.value == o.value
	}
	return ExtensionsEqual(e.children, o.children)
}

// ExtensionsEqual compares two extension lists element by element.
func ExtensionsEqual(a, b []ExtensionElement) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Extensible is implemented by every data object that carries extensions.
type Extensible interface {
	Extensions() []ExtensionElement
	SetExtensions(ext []ExtensionElement)
}

// ExtensionHolder is embedded in data objects to carry their extensions.
type ExtensionHolder struct {
	extensions []ExtensionElement
}

// Extensions returns the extension elements in document order.
func (h *ExtensionHolder) Extensions() []ExtensionElement {
	if h == nil {
		return nil
	}
	return h.extensions
}

// SetExtensions replaces the extension elements.
func (h *ExtensionHolder) SetExtensions(ext []ExtensionElement) {
	h.extensions = slices.Clone(ext)
}

// AddExtension appends one extension element.
func (h *ExtensionHolder) AddExtension(e ExtensionElement) {
	h.extensions = append(h.extensions, e)
}
