// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package cmistest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// AssertPropertiesEqual fails the test when the bags differ.
func AssertPropertiesEqual(t *testing.T, want, got *cmis.Properties) bool {
	t.Helper()
	return assert.True(t, cmis.PropertiesEqual(want, got),
		"properties differ\nwant:\n%s\ngot:\n%s", DescribeProperties(want), DescribeProperties(got))
}

// AssertObjectDataEqual fails the test when the objects differ.
func AssertObjectDataEqual(t *testing.T, want, got *cmis.ObjectData) bool {
	t.Helper()
	if want != nil && got != nil && !cmis.PropertiesEqual(want.Properties, got.Properties) {
		return AssertPropertiesEqual(t, want.Properties, got.Properties)
	}
	return assert.True(t, cmis.ObjectDataEqual(want, got),
		"object data differs\nwant:\n%s\ngot:\n%s", DescribeObject(want), DescribeObject(got))
}

// AssertTypeDefinitionEqual fails the test when the definitions differ.
func AssertTypeDefinitionEqual(t *testing.T, want, got *cmis.TypeDefinition) bool {
	t.Helper()
	return assert.True(t, cmis.TypeDefinitionEqual(want, got),
		"type definition %s differs", describeTypeID(want))
}

// AssertAclEqual fails the test when the ACLs differ. Entries are compared
// pairwise by position.
func AssertAclEqual(t *testing.T, want, got *cmis.Acl) bool {
	t.Helper()
	if want == nil || got == nil {
		return assert.Equal(t, want == nil, got == nil, "acl presence differs")
	}
	if !assert.Len(t, got.Aces, len(want.Aces)) {
		return false
	}
	ok := true
	for i := range want.Aces {
		ok = assert.True(t, cmis.AceEqual(want.Aces[i], got.Aces[i]),
			"ace %d differs: want %s got %s", i, describeAce(want.Aces[i]), describeAce(got.Aces[i])) && ok
	}
	return assert.True(t, cmis.AclEqual(want, got), "acl flags or extensions differ") && ok
}

// AssertExtensionsEqual fails the test when the extension lists differ.
func AssertExtensionsEqual(t *testing.T, want, got []cmis.ExtensionElement) bool {
	t.Helper()
	return assert.True(t, cmis.ExtensionsEqual(want, got),
		"extensions differ\nwant:\n%s\ngot:\n%s", DescribeExtensions(want), DescribeExtensions(got))
}

// DescribeProperties renders a bag one property per line.
func DescribeProperties(ps *cmis.Properties) string {
	if ps == nil {
		return "<nil>"
	}
	var b strings.Builder
	for _, p := range ps.List() {
		id := p.Identity()
		fmt.Fprintf(&b, "  %s (%s) %v", id.ID, p.Type(), p.AnyValues())
		if id.LocalName != "" || id.QueryName != "" || id.DisplayName != "" {
			fmt.Fprintf(&b, " [local=%q query=%q display=%q]", id.LocalName, id.QueryName, id.DisplayName)
		}
		b.WriteByte('\n')
	}
	if ext := ps.Extensions(); len(ext) > 0 {
		b.WriteString(DescribeExtensions(ext))
	}
	return b.String()
}

// DescribeObject renders the identifying parts of an object.
func DescribeObject(od *cmis.ObjectData) string {
	if od == nil {
		return "<nil>"
	}
	return fmt.Sprintf("id=%s actions=%v renditions=%d relationships=%d policies=%v extensions=%d",
		od.ID(), od.AllowableActions.List(), len(od.Renditions), len(od.Relationships),
		od.PolicyIDs, len(od.Extensions()))
}

// DescribeExtensions renders an extension tree with indentation.
func DescribeExtensions(ext []cmis.ExtensionElement) string {
	var b strings.Builder
	describeExtensions(&b, ext, 1)
	return b.String()
}

func describeExtensions(b *strings.Builder, ext []cmis.ExtensionElement, depth int) {
	for _, e := range ext {
		fmt.Fprintf(b, "%s{%s}%s %v", strings.Repeat("  ", depth), e.Namespace(), e.Name(), e.Attributes())
		if e.IsLeaf() {
			fmt.Fprintf(b, " = %q\n", e.Value())
			continue
		}
		b.WriteByte('\n')
		describeExtensions(b, e.Children(), depth+1)
	}
}

func describeAce(a *cmis.Ace) string {
	if a == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %v direct=%t", a.Principal.ID, a.Permissions, a.Direct)
}

func describeTypeID(td *cmis.TypeDefinition) string {
	if td == nil {
		return "<nil>"
	}
	return td.ID()
}
