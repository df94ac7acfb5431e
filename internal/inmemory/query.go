// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package inmemory

import (
	"context"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/gobwas/glob"
	"github.com/shopspring/decimal"

	"github.com/gocmis/gocmis/internal/binding"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// queryLexer tokenizes the metadata subset of the CMIS query language.
// String literals double a quote or backslash-escape it.
var queryLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `'(?:[^'\\]|''|\\.)*'`},
	{Name: "Number", Pattern: `[-+]?\d+(?:\.\d+)?`},
	{Name: "Op", Pattern: `<>|<=|>=|[=<>]`},
	{Name: "Ident", Pattern: `[a-zA-Z_][\w:.]*`},
	{Name: "Punct", Pattern: `[(),*]`},
	{Name: "whitespace", Pattern: `\s+`},
})

// selectStatement is a parsed query.
//
// Grammar: SELECT (* | col {, col}) FROM type [WHERE pred {AND pred}] [ORDER BY col [ASC|DESC]]
type selectStatement struct {
	All     bool         `parser:"'SELECT' ( @'*'"`
	Columns []string     `parser:"         | @Ident (',' @Ident)* )"`
	From    string       `parser:"'FROM' @Ident"`
	Where   []*predicate `parser:"( 'WHERE' @@ ( 'AND' @@ )* )?"`
	OrderBy *orderBy     `parser:"( 'ORDER' 'BY' @@ )?"`
}

// predicate is one conjunct of a WHERE clause.
type predicate struct {
	InFolder   *string     `parser:"  'IN_FOLDER' '(' @String ')'"`
	InTree     *string     `parser:"| 'IN_TREE' '(' @String ')'"`
	Comparison *comparison `parser:"| @@"`
}

type comparison struct {
	Column string     `parser:"@Ident"`
	Op     string     `parser:"( @( Op | 'LIKE' )"`
	Value  *literal   `parser:"  @@"`
	Null   *nullCheck `parser:"| 'IS' @@ )"`
}

type nullCheck struct {
	Not bool `parser:"@'NOT'? 'NULL'"`
}

type literal struct {
	String    *string `parser:"  @String"`
	Number    *string `parser:"| @Number"`
	Boolean   *string `parser:"| @( 'TRUE' | 'FALSE' )"`
	Timestamp *string `parser:"| 'TIMESTAMP' @String"`
}

type orderBy struct {
	Column string `parser:"@Ident"`
	Desc   bool   `parser:"( @'DESC' | 'ASC' )?"`
}

var queryParser *participle.Parser[selectStatement]

func init() {
	queryParser = participle.MustBuild[selectStatement](
		participle.Lexer(queryLexer),
		participle.CaseInsensitive("Ident"),
		participle.UseLookahead(2),
	)
}

// parseQuery parses a statement. Syntax errors are invalid arguments.
func parseQuery(statement string) (*selectStatement, error) {
	stmt, err := queryParser.ParseString("", statement)
	if err != nil {
		return nil, invalidArgument("invalid query: %s", err.Error())
	}
	return stmt, nil
}

func unquote(s string) string {
	s = s[1 : len(s)-1]
	s = strings.ReplaceAll(s, "''", "'")
	s = strings.ReplaceAll(s, `\'`, "'")
	return strings.ReplaceAll(s, `\\`, `\`)
}

// text returns the literal as written, without quotes.
func (l *literal) text() string {
	switch {
	case l.String != nil:
		return unquote(*l.String)
	case l.Number != nil:
		return strings.TrimPrefix(*l.Number, "+")
	case l.Boolean != nil:
		return strings.ToLower(*l.Boolean)
	case l.Timestamp != nil:
		return unquote(*l.Timestamp)
	}
	return ""
}

// condition is a predicate bound to the queried type.
type condition func(r *Repository, o *object, props *cmis.Properties) bool

// plan is a query ready to run against the objects of one type.
type plan struct {
	from       *cmis.TypeDefinition
	filter     propertyFilter
	conditions []condition
	order      *cmis.PropertyDefinition
	desc       bool
}

func (r *Repository) queryType(queryName string) (*cmis.TypeDefinition, error) {
	for _, td := range r.types.Types() {
		if td.QueryName() == queryName {
			if !td.Queryable() {
				return nil, invalidArgument("type %q is not queryable", queryName)
			}
			return td, nil
		}
	}
	return nil, invalidArgument("unknown type %q", queryName)
}

func (r *Repository) plan(stmt *selectStatement) (*plan, error) {
	from, err := r.queryType(stmt.From)
	if err != nil {
		return nil, err
	}
	columns := map[string]*cmis.PropertyDefinition{}
	for _, pd := range r.propertyDefinitions(from.ID()) {
		columns[pd.QueryName] = pd
	}
	column := func(name string) (*cmis.PropertyDefinition, error) {
		pd, ok := columns[name]
		if !ok {
			return nil, invalidArgument("type %q has no property %q", stmt.From, name)
		}
		return pd, nil
	}

	p := &plan{from: from}
	if !stmt.All {
		p.filter = propertyFilter{}
		for _, name := range stmt.Columns {
			if _, err := column(name); err != nil {
				return nil, err
			}
			p.filter[name] = struct{}{}
		}
	}
	for _, pred := range stmt.Where {
		c, err := r.condition(pred, column)
		if err != nil {
			return nil, err
		}
		p.conditions = append(p.conditions, c)
	}
	if ob := stmt.OrderBy; ob != nil {
		pd, err := column(ob.Column)
		if err != nil {
			return nil, err
		}
		if !pd.Orderable {
			return nil, invalidArgument("property %q is not orderable", ob.Column)
		}
		p.order, p.desc = pd, ob.Desc
	}
	return p, nil
}

func (r *Repository) condition(pred *predicate, column func(string) (*cmis.PropertyDefinition, error)) (condition, error) {
	switch {
	case pred.InFolder != nil:
		folderID := unquote(*pred.InFolder)
		return func(r *Repository, o *object, _ *cmis.Properties) bool {
			return slices.Contains(r.parentIDs(o), folderID)
		}, nil
	case pred.InTree != nil:
		folderID := unquote(*pred.InTree)
		return func(r *Repository, o *object, _ *cmis.Properties) bool {
			return r.isAncestor(folderID, o)
		}, nil
	}

	cmp := pred.Comparison
	pd, err := column(cmp.Column)
	if err != nil {
		return nil, err
	}
	if !pd.Queryable {
		return nil, invalidArgument("property %q is not queryable", cmp.Column)
	}
	if cmp.Null != nil {
		want := cmp.Null.Not
		return func(_ *Repository, _ *object, props *cmis.Properties) bool {
			p, ok := props.Get(pd.ID)
			return (ok && p.Len() > 0) == want
		}, nil
	}

	if strings.EqualFold(cmp.Op, "LIKE") {
		if !isText(pd.PropertyType) || cmp.Value.String == nil {
			return nil, invalidArgument("LIKE needs a string property and a string pattern")
		}
		g, err := likePattern(cmp.Value.text())
		if err != nil {
			return nil, invalidArgument("invalid LIKE pattern: %s", err.Error())
		}
		return anyValue(pd.ID, func(v any) bool {
			s, ok := v.(string)
			return ok && g.Match(s)
		}), nil
	}

	want, err := cmis.ParseValue(pd.PropertyType, cmp.Value.text())
	if err != nil {
		return nil, invalidArgument("invalid literal for %q: %s", cmp.Column, err.Error())
	}
	if pd.PropertyType == cmis.PropertyTypeBoolean && cmp.Op != "=" && cmp.Op != "<>" {
		return nil, invalidArgument("booleans only compare with = and <>")
	}
	op := cmp.Op
	return anyValue(pd.ID, func(v any) bool {
		c, ok := compareValues(v, want)
		if !ok {
			return false
		}
		switch op {
		case "=":
			return c == 0
		case "<>":
			return c != 0
		case "<":
			return c < 0
		case ">":
			return c > 0
		case "<=":
			return c <= 0
		case ">=":
			return c >= 0
		}
		return false
	}), nil
}

// anyValue matches when one of the values of property id satisfies fn.
func anyValue(id string, fn func(v any) bool) condition {
	return func(_ *Repository, _ *object, props *cmis.Properties) bool {
		p, ok := props.Get(id)
		if !ok {
			return false
		}
		return slices.ContainsFunc(p.AnyValues(), fn)
	}
}

func isText(t cmis.PropertyType) bool {
	switch t {
	case cmis.PropertyTypeString, cmis.PropertyTypeID, cmis.PropertyTypeHTML, cmis.PropertyTypeURI:
		return true
	}
	return false
}

// likePattern turns a LIKE pattern into a glob: % matches any run and _
// one character. A backslash escapes the next character.
func likePattern(pattern string) (glob.Glob, error) {
	var b strings.Builder
	escaped := false
	for _, c := range pattern {
		switch {
		case escaped:
			b.WriteString(glob.QuoteMeta(string(c)))
			escaped = false
		case c == '\\':
			escaped = true
		case c == '%':
			b.WriteByte('*')
		case c == '_':
			b.WriteByte('?')
		default:
			b.WriteString(glob.QuoteMeta(string(c)))
		}
	}
	return glob.Compile(b.String())
}

// compareValues orders two values of the same property type.
func compareValues(a, b any) (int, bool) {
	switch a := a.(type) {
	case string:
		b, ok := b.(string)
		return strings.Compare(a, b), ok
	case bool:
		b, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if a == b {
			return 0, true
		}
		if !a {
			return -1, true
		}
		return 1, true
	case *big.Int:
		switch b := b.(type) {
		case *big.Int:
			return a.Cmp(b), true
		case decimal.Decimal:
			return decimal.NewFromBigInt(a, 0).Cmp(b), true
		}
	case decimal.Decimal:
		switch b := b.(type) {
		case decimal.Decimal:
			return a.Cmp(b), true
		case *big.Int:
			return a.Cmp(decimal.NewFromBigInt(b, 0)), true
		}
	case time.Time:
		b, ok := b.(time.Time)
		return a.Compare(b), ok
	}
	return 0, false
}

// candidates returns the objects a query over td can see: current versions
// of documents, or every checked-in version when allVersions is set.
// Private working copies are never searched.
func (r *Repository) candidates(td *cmis.TypeDefinition, allVersions bool) []*object {
	var out []*object
	for _, o := range r.objects {
		if o.pwc || !r.types.IsSubtypeOf(o.typeID, td.ID()) {
			continue
		}
		if o.base == cmis.BaseTypeDocument && !allVersions {
			if s, ok := r.series[o.seriesID]; !ok || s.latest() != o.id {
				continue
			}
		}
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b *object) int { return strings.Compare(a.id, b.id) })
	return out
}

// Query implements [binding.DiscoveryService]. It supports the metadata
// subset of the query language: one type, AND-joined comparisons,
// IN_FOLDER, IN_TREE and a single ORDER BY column. Joins and full-text
// search are not supported.
func (r *Repository) Query(ctx context.Context, repositoryID string, q *cmis.QueryStatement) (*cmis.ObjectList, error) {
	if err := r.begin(ctx, repositoryID); err != nil {
		return nil, err
	}
	if q == nil || strings.TrimSpace(q.Statement) == "" {
		return nil, invalidArgument("query statement is required")
	}
	stmt, err := parseQuery(q.Statement)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, err := r.plan(stmt)
	if err != nil {
		return nil, err
	}

	type hit struct {
		o     *object
		props *cmis.Properties
	}
	var hits []hit
	for _, o := range r.candidates(p.from, q.SearchAllVersions != nil && *q.SearchAllVersions) {
		props := r.properties(o)
		if !slices.ContainsFunc(p.conditions, func(c condition) bool { return !c(r, o, props) }) {
			hits = append(hits, hit{o, props})
		}
	}
	if p.order != nil {
		slices.SortStableFunc(hits, func(a, b hit) int {
			c := compareFirst(a.props, b.props, p.order.ID)
			if p.desc {
				return -c
			}
			return c
		})
	}

	total := len(hits)
	hits, hasMore := page(hits, pagingOf(q.MaxItems, q.SkipCount))
	opts := binding.ObjectOptions{
		IncludeAllowableActions: q.IncludeAllowableActions != nil && *q.IncludeAllowableActions,
		IncludeRelationships:    q.IncludeRelationships,
		RenditionFilter:         q.RenditionFilter,
	}
	list := &cmis.ObjectList{HasMoreItems: hasMore, NumItems: big.NewInt(int64(total))}
	for _, h := range hits {
		od, err := r.objectData(h.o, opts)
		if err != nil {
			return nil, err
		}
		if od.Properties, err = r.applyFilter(p.filter, h.o.typeID, od.Properties); err != nil {
			return nil, err
		}
		list.Objects = append(list.Objects, od)
	}
	return list, nil
}

// compareFirst orders by the first value of property id. Missing values
// sort first.
func compareFirst(a, b *cmis.Properties, id string) int {
	av, bv := firstValue(a, id), firstValue(b, id)
	switch {
	case av == nil && bv == nil:
		return 0
	case av == nil:
		return -1
	case bv == nil:
		return 1
	}
	c, _ := compareValues(av, bv)
	return c
}

func firstValue(ps *cmis.Properties, id string) any {
	if p, ok := ps.Get(id); ok {
		return p.AnyFirstValue()
	}
	return nil
}

func pagingOf(maxItems, skipCount *big.Int) binding.Paging {
	var p binding.Paging
	if maxItems != nil && maxItems.IsInt64() {
		p.MaxItems = int(maxItems.Int64())
	}
	if skipCount != nil && skipCount.IsInt64() {
		p.SkipCount = int(skipCount.Int64())
	}
	return p
}
