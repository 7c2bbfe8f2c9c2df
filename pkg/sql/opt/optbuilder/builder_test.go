// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package optbuilder_test

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/cat"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/opt/optbuilder"
	"github.com/cockroachdb/physopt/pkg/sql/opt/testutils/testcat"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
	"github.com/cockroachdb/physopt/pkg/util/leaktest"
	"github.com/cockroachdb/physopt/pkg/util/log"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestCatalog(t *testing.T) *testcat.Catalog {
	tc := testcat.New()
	_, err := tc.ExecuteDDL(`
table: t
columns: [id:int, arr:int[], name:string]
rows:
  - [1, [10, 20], a]
  - [2, [], b]
---
table: u
columns: [k:int, v:string]
`)
	require.NoError(t, err)
	return tc
}

func build(t *testing.T, tc *testcat.Catalog, src string) (*memo.Expr, *opt.Metadata, error) {
	t.Helper()
	var md opt.Metadata
	md.Init()
	e, err := optbuilder.New(context.Background(), tc, &md, []byte(src)).Build()
	return e, &md, err
}

func TestBuildExplode(t *testing.T) {
	defer leaktest.AfterTest(t)()
	defer log.Scope(t).Close(t)

	e, md, err := build(t, newTestCatalog(t), `
op: table-function
fn: explode
outer: [id]
params: [arr]
results: [elem]
filter: (gt elem 10)
project:
  - id
  - {as: twice, expr: (mult elem 2)}
limit: 5
input:
  op: values
  columns: [id:int, arr:int[]]
  rows:
    - [1, [10, 20]]
    - [2, []]
`)
	require.NoError(t, err)

	expected := strings.TrimLeft(`
table-function explode
 ├── columns: id:1 twice:4
 ├── outer: id:1
 ├── params: arr:2
 ├── results: elem:3
 ├── filter: (gt elem:3 10)
 ├── project
 │    ├── id:1
 │    └── twice:4 := (mult elem:3 2)
 ├── limit: 5
 └── values
      ├── columns: id:1 arr:2
      ├── (1, {10,20})
      └── (2, {})
`, "\n")
	actual := memo.FormatExpr(e, md, memo.ExprFmtShowAll)
	if actual != expected {
		t.Fatalf("unexpected output (-want +got):\n%s", cmp.Diff(expected, actual))
	}

	// The polymorphic result column takes the element type of the array.
	require.True(t, md.ColumnMeta(3).Type.Identical(types.Int))
	require.Equal(t, opt.ColList{1, 4}, memo.OutputCols(e))
	require.Equal(t, opt.ColList{1, 3}, memo.ProducedCols(e))
}

func TestBuildDefaults(t *testing.T) {
	defer leaktest.AfterTest(t)()
	defer log.Scope(t).Close(t)

	// Without results, the result columns are named after the function's
	// result schema; without outer, only the results are produced.
	e, md, err := build(t, newTestCatalog(t), `
op: table-function
fn: posexplode
params: [arr]
input: {op: scan, table: t}
`)
	require.NoError(t, err)
	require.Equal(t, opt.ColList{4, 5}, memo.OutputCols(e))
	require.Equal(t, "pos:4", md.QualifiedAlias(4))
	require.Equal(t, "val:5", md.QualifiedAlias(5))
	require.True(t, md.ColumnMeta(5).Type.Identical(types.Int))

	// A scan of the table prefix.
	e, md, err = build(t, newTestCatalog(t), `{op: scan, table: t, cols: [id, arr], limit: 0}`)
	require.NoError(t, err)
	require.Equal(t, opt.ColList{1, 2}, memo.OutputCols(e))
	require.Equal(t, "scan t\n ├── columns: id:1 arr:2\n └── limit: 0\n",
		memo.FormatExpr(e, md, memo.ExprFmtShowAll))
}

func TestBuildOperators(t *testing.T) {
	defer leaktest.AfterTest(t)()
	defer log.Scope(t).Close(t)

	testCases := []struct {
		name     string
		src      string
		expected string
	}{
		{
			name: "hash-join",
			src: `
op: hash-join
type: left
left-eq: [id]
right-eq: [k]
left: {op: scan, table: t, cols: [id]}
right: {op: scan, table: u}
`,
			expected: `
hash-join left
 ├── columns: id:1 k:4 v:5
 ├── equality
 │    └── id:1 = k:4
 ├── scan t
 │    └── columns: id:1
 └── scan u
      └── columns: k:4 v:5
`,
		},
		{
			name: "merge-join",
			src: `
op: merge-join
type: semi
left-ordering: [-id]
right-ordering: [-k]
left: {op: scan, table: t, cols: [id]}
right: {op: scan, table: u}
`,
			expected: `
merge-join semi
 ├── columns: id:1
 ├── left ordering: -id:1
 ├── right ordering: -k:4
 ├── scan t
 │    └── columns: id:1
 └── scan u
      └── columns: k:4 v:5
`,
		},
		{
			name: "nested-loop-join",
			src: `
op: nested-loop-join
on: (lt id k)
filter: (is-null v)
left: {op: scan, table: t, cols: [id]}
right: {op: scan, table: u}
`,
			expected: `
nested-loop-join inner
 ├── columns: id:1 k:4 v:5
 ├── on: (lt id:1 k:4)
 ├── filter: (is-null v:5)
 ├── scan t
 │    └── columns: id:1
 └── scan u
      └── columns: k:4 v:5
`,
		},
		{
			name: "hash-group-by",
			src: `
op: hash-group-by
grouping: [v]
aggs:
  - {fn: count-rows}
  - {as: total, fn: sum, arg: k}
input: {op: scan, table: u}
`,
			expected: `
hash-group-by
 ├── columns: v:2 count-rows:3 total:4
 ├── grouping columns: v:2
 ├── aggregations
 │    ├── count-rows:3 := count-rows()
 │    └── total:4 := sum(k:1)
 └── scan u
      └── columns: k:1 v:2
`,
		},
		{
			name: "stream-group-by",
			src: `
op: stream-group-by
grouping: [k]
aggs: [{fn: max, arg: v}]
input: {op: scan, table: u}
`,
			expected: `
stream-group-by
 ├── columns: k:1 max:3
 ├── grouping columns: k:1
 ├── aggregations
 │    └── max:3 := max(v:2)
 ├── ordering: +k:1
 └── scan u
      └── columns: k:1 v:2
`,
		},
		{
			name: "sort",
			src: `
op: sort
ordering: [-v, k]
project: [v]
limit: 1
input: {op: scan, table: u}
`,
			expected: `
sort
 ├── columns: v:2
 ├── ordering: -v:2 +k:1
 ├── project
 │    └── v:2
 ├── limit: 1
 └── scan u
      └── columns: k:1 v:2
`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, md, err := build(t, newTestCatalog(t), tc.src)
			require.NoError(t, err)
			expected := strings.TrimLeft(tc.expected, "\n")
			actual := memo.FormatExpr(e, md, memo.ExprFmtShowAll)
			if actual != expected {
				t.Fatalf("unexpected output (-want +got):\n%s", cmp.Diff(expected, actual))
			}
		})
	}
}

func TestBuildAggregateTypes(t *testing.T) {
	defer leaktest.AfterTest(t)()

	_, md, err := build(t, newTestCatalog(t), `
op: hash-group-by
aggs:
  - {fn: count, arg: v}
  - {fn: sum, arg: k}
  - {fn: min, arg: v}
input: {op: scan, table: u}
`)
	require.NoError(t, err)
	require.True(t, md.ColumnMeta(3).Type.Identical(types.Int))
	require.True(t, md.ColumnMeta(4).Type.Identical(types.Decimal))
	require.True(t, md.ColumnMeta(5).Type.Identical(types.String))
}

func TestBuildErrors(t *testing.T) {
	defer leaktest.AfterTest(t)()
	defer log.Scope(t).Close(t)

	testCases := []struct {
		name string
		src  string
		err  string
		mark error
	}{
		{name: "empty", src: "", err: "empty plan description"},
		{name: "not a mapping", src: "[scan]", err: "line 1: expected a plan node, found !!seq"},
		{name: "bad yaml", src: "op: [", err: "parsing plan description"},
		{name: "unknown op", src: "op: foo", err: `line 1: unknown operator "foo"`},
		{name: "scalar op", src: "op: gt", err: `unknown operator "gt"`},
		{
			name: "unknown field",
			src:  "{op: scan, table: t, lmit: 1}",
			err:  `scan at line 1: unknown field "lmit"`,
		},
		{
			name: "field of other operator",
			src:  "{op: scan, table: t, ordering: [id]}",
			err:  `unknown field "ordering"`,
		},
		{name: "missing input", src: "{op: sort, ordering: [id]}", err: "sort at line 1: missing input 0"},
		{
			name: "undefined table",
			src:  "{op: scan, table: missing}",
			err:  `table "missing" does not exist`,
			mark: testcat.ErrUndefinedTable,
		},
		{
			name: "scan not a prefix",
			src:  "{op: scan, table: t, cols: [arr]}",
			err:  `column 0 of table t is "id", found "arr"`,
		},
		{
			name: "undefined function",
			src: `
op: table-function
fn: nope
input: {op: scan, table: t}
`,
			err:  "unknown table function: nope()",
			mark: cat.ErrUndefinedFunction,
		},
		{
			name: "bad arity",
			src: `
op: table-function
fn: explode
params: [id, arr]
input: {op: scan, table: t}
`,
			err:  "table-function at line 2",
			mark: opt.ErrInvalidOperator,
		},
		{
			name: "param type mismatch",
			src: `
op: table-function
fn: explode
params: [name]
input: {op: scan, table: t}
`,
			mark: memo.ErrInvalidPlan,
		},
		{
			name: "unknown column",
			src: `
op: table-function
fn: explode
params: [elem]
input: {op: scan, table: t}
`,
			err: `params: column "elem" does not exist in scope (id:1, arr:2, name:3)`,
		},
		{
			name: "filter on dropped column",
			src: `
op: table-function
fn: explode
outer: [id]
params: [arr]
filter: (is-null name)
input: {op: scan, table: t}
`,
			err: `filter: column "name" does not exist in scope (id:1, elem:4)`,
		},
		{
			name: "ambiguous column",
			src: `
op: hash-join
left-eq: [id]
right-eq: [id]
filter: (gt id 1)
left: {op: scan, table: t, cols: [id]}
right: {op: scan, table: t, cols: [id]}
`,
			err: `filter: column reference "id" is ambiguous`,
		},
		{
			name: "negative limit",
			src:  "{op: scan, table: t, limit: -1}",
			err:  "limit must be non-negative, found -1",
			mark: opt.ErrInvalidOperator,
		},
		{
			name: "bad filter",
			src:  "{op: scan, table: t, filter: (gt id)}",
			err:  "scan at line 1: filter: gt takes 2 operands, found 1",
		},
		{
			name: "bad project item",
			src:  "{op: scan, table: t, project: [{col: id, expr: (+ id 1)}]}",
			err:  "project: item 0 has both a column and an expression",
		},
		{
			name: "values row length",
			src:  "{op: values, columns: [a:int], rows: [[1, 2]]}",
			err:  "row 0 has 2 values, expected 1",
		},
		{
			name: "values bad type",
			src:  "{op: values, columns: [a:nope]}",
			err:  "nope",
		},
		{
			name: "values untyped column",
			src:  "{op: values, columns: [a]}",
			err:  `column "a" has no type`,
		},
		{
			name: "join type",
			src: `
op: nested-loop-join
type: sideways
left: {op: scan, table: t}
right: {op: scan, table: u}
`,
			err: `unknown join type "sideways"`,
		},
		{
			name: "aggregate",
			src:  "{op: hash-group-by, aggs: [{fn: avg, arg: k}], input: {op: scan, table: u}}",
			err:  `unknown aggregate function "avg"`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := build(t, newTestCatalog(t), tc.src)
			require.Error(t, err)
			if tc.err != "" {
				require.ErrorContains(t, err, tc.err)
			}
			if tc.mark != nil {
				require.True(t, errors.Is(err, tc.mark), "expected %v, got %+v", tc.mark, err)
			}
		})
	}
}

func TestParseValue(t *testing.T) {
	defer leaktest.AfterTest(t)()

	parse := func(typ *types.T, src string) (tree.Datum, error) {
		var n yaml.Node
		require.NoError(t, yaml.Unmarshal([]byte(src), &n))
		return optbuilder.ParseValue(typ, n.Content[0])
	}

	d, err := parse(types.IntArray, "[1, null, 3]")
	require.NoError(t, err)
	require.Equal(t, "{1,NULL,3}", d.String())

	d, err = parse(types.IntArray, "'{4,5}'")
	require.NoError(t, err)
	require.Equal(t, "{4,5}", d.String())

	d, err = parse(types.String, "~")
	require.NoError(t, err)
	require.Equal(t, tree.DNull, d)

	_, err = parse(types.Int, "[1]")
	require.ErrorContains(t, err, "found a list for a value of type int")

	name, typ, err := optbuilder.ParseColumnDef("arr:string[]")
	require.NoError(t, err)
	require.Equal(t, "arr", name)
	require.True(t, typ.Identical(types.StringArray))
}
