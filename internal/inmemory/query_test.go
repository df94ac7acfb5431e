// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package inmemory

import (
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocmis/gocmis/internal/binding"
	"github.com/gocmis/gocmis/pkg/cmis"
)

func TestParseQuery(t *testing.T) {
	stmt, err := parseQuery("select cmis:name, cmis:objectId from cmis:document " +
		"where IN_TREE('f1') and cmis:name like 'a%' and cmis:description is not null " +
		"order by cmis:name desc")
	require.NoError(t, err)

	assert.False(t, stmt.All)
	assert.Equal(t, []string{"cmis:name", "cmis:objectId"}, stmt.Columns)
	assert.Equal(t, "cmis:document", stmt.From)
	require.Len(t, stmt.Where, 3)
	require.NotNil(t, stmt.Where[0].InTree)
	assert.Equal(t, "'f1'", *stmt.Where[0].InTree)
	assert.Equal(t, "like", stmt.Where[1].Comparison.Op)
	require.NotNil(t, stmt.Where[2].Comparison.Null)
	assert.True(t, stmt.Where[2].Comparison.Null.Not)
	require.NotNil(t, stmt.OrderBy)
	assert.True(t, stmt.OrderBy.Desc)
}

func TestParseQuery_Errors(t *testing.T) {
	tests := []string{
		"",
		"SELECT",
		"SELECT * FROM",
		"SELECT * FROM a JOIN b",
		"SELECT * FROM a WHERE x = 1 OR y = 2",
		"SELECT * FROM a WHERE x ==",
		"SELECT * FROM a ORDER cmis:name",
	}
	for _, tt := range tests {
		t.Run(tt, func(t *testing.T) {
			_, err := parseQuery(tt)
			assert.Equal(t, cmis.ErrorKindInvalidArgument, cmis.KindOf(err))
		})
	}
}

func TestLiteralText(t *testing.T) {
	s := func(v string) *string { return &v }
	tests := []struct {
		name string
		lit  literal
		want string
	}{
		{"doubled quote", literal{String: s(`'it''s'`)}, "it's"},
		{"escaped quote", literal{String: s(`'it\'s'`)}, "it's"},
		{"escaped backslash", literal{String: s(`'a\\b'`)}, `a\b`},
		{"signed number", literal{Number: s("+42")}, "42"},
		{"boolean", literal{Boolean: s("TRUE")}, "true"},
		{"timestamp", literal{Timestamp: s("'2026-01-02T03:04:05Z'")}, "2026-01-02T03:04:05Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.lit.text())
		})
	}
}

func TestLikePattern(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{"report%", "report-2026.txt", true},
		{"report%", "annual report", false},
		{"%.txt", "a.txt", true},
		{"a_c", "abc", true},
		{"a_c", "abbc", false},
		{`100\%`, "100%", true},
		{`100\%`, "1000", false},
		{"[draft]*", "[draft]*", true},
		{"[draft]*", "d", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.input, func(t *testing.T) {
			g, err := likePattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Match(tt.input))
		})
	}
}

func TestCompareValues(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		a, b any
		want int
		ok   bool
	}{
		{"strings", "a", "b", -1, true},
		{"booleans", true, false, 1, true},
		{"integers", big.NewInt(5), big.NewInt(5), 0, true},
		{"integer and decimal", big.NewInt(2), decimal.RequireFromString("1.5"), 1, true},
		{"decimals", decimal.RequireFromString("1.25"), decimal.RequireFromString("1.5"), -1, true},
		{"datetimes", now, now.Add(time.Hour), -1, true},
		{"mismatch", "1", big.NewInt(1), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := compareValues(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNextLabel(t *testing.T) {
	r := &Repository{objects: map[string]*object{}}
	s := &versionSeries{}
	assert.Equal(t, "1.0", r.nextLabel(s, true))
	assert.Equal(t, "0.1", r.nextLabel(s, false))

	r.objects["v1"] = &object{id: "v1", label: "1.3"}
	s.versions = []string{"v1"}
	assert.Equal(t, "2.0", r.nextLabel(s, true))
	assert.Equal(t, "1.4", r.nextLabel(s, false))
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		name    string
		p       binding.Paging
		want    []int
		hasMore bool
	}{
		{"everything", binding.Paging{}, items, false},
		{"first page", binding.Paging{MaxItems: 2}, []int{1, 2}, true},
		{"last page", binding.Paging{MaxItems: 2, SkipCount: 4}, []int{5}, false},
		{"skip past end", binding.Paging{SkipCount: 9}, []int{}, false},
		{"negative skip", binding.Paging{SkipCount: -1, MaxItems: 1}, []int{1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hasMore := page(items, tt.p)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.hasMore, hasMore)
		})
	}
}

func TestParseRenditionFilter(t *testing.T) {
	tests := []struct {
		filter string
		kind   string
		mime   string
		want   bool
	}{
		{"", KindThumbnail, "image/png", false},
		{"cmis:none", KindThumbnail, "image/png", false},
		{"*", "custom", "text/plain", true},
		{"image/*", "custom", "image/jpeg", true},
		{"image/*", "custom", "text/plain", false},
		{"cmis:thumbnail", KindThumbnail, "application/pdf", true},
		{"text/*, cmis:thumbnail", "custom", "text/html", true},
	}
	for _, tt := range tests {
		t.Run(tt.filter+"/"+tt.mime, func(t *testing.T) {
			rf, err := parseRenditionFilter(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, !rf.none() && rf.match(tt.kind, tt.mime))
		})
	}
}
