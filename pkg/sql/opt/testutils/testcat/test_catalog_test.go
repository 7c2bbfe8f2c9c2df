// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package testcat_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt/cat"
	"github.com/cockroachdb/physopt/pkg/sql/opt/testutils/testcat"
	"github.com/cockroachdb/physopt/pkg/sql/sem/builtins"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
	"github.com/cockroachdb/physopt/pkg/util/leaktest"
	"github.com/stretchr/testify/require"
)

func TestExecuteDDL(t *testing.T) {
	defer leaktest.AfterTest(t)()

	tc := testcat.New()
	out, err := tc.ExecuteDDL(`
table: T
columns: [id:int, arr:int[]]
rows:
  - [1, [10, 20]]
  - [2, '{}']
---
table: empty
columns: [s:string]
`)
	require.NoError(t, err)
	require.Equal(t, `TABLE T
 ├── id int
 ├── arr int[]
 └── 2 rows
TABLE empty
 └── s string
`, out)

	tab, err := tc.ResolveTable(context.Background(), "t")
	require.NoError(t, err)
	require.Equal(t, "T", tab.Name())
	require.Equal(t, cat.StableID(101), tab.ID())
	require.True(t, tab.Column(1).Type.Identical(types.IntArray))

	rows := tc.Table("T").Rows
	require.Len(t, rows, 2)
	require.Equal(t, "(1, {10,20})", rows[0].String())
	require.Equal(t, "(2, {})", rows[1].String())

	require.Len(t, tc.Tables(), 2)
	require.Equal(t, "T", tc.Tables()[0].Name())

	_, err = tc.ResolveTable(context.Background(), "missing")
	require.True(t, errors.Is(err, testcat.ErrUndefinedTable))
}

func TestExecuteDDLErrors(t *testing.T) {
	defer leaktest.AfterTest(t)()

	testCases := []struct {
		ddl string
		err string
	}{
		{ddl: "columns: [a:int]", err: "table definition has no name"},
		{ddl: "table: t\ncolumns: [a]", err: `column "a" has no type`},
		{ddl: "table: t\ncolumns: [a:int]\nrows: [[1, 2]]", err: "table t: row 0: found 2 values, expected 1"},
		{ddl: "table: t\ncolumns: [a:int]\nrows: [[x]]", err: "table t: row 0: column a"},
		{ddl: "table: t\ncols: [a:int]", err: "parsing table definition"},
	}
	for _, tc := range testCases {
		t.Run(tc.ddl, func(t *testing.T) {
			_, err := testcat.New().ExecuteDDL(tc.ddl)
			require.ErrorContains(t, err, tc.err)
		})
	}
}

func TestTableFunctionsVTable(t *testing.T) {
	defer leaktest.AfterTest(t)()

	tc := testcat.New()
	tab, err := tc.ResolveTable(context.Background(), testcat.TableFunctionsTableName)
	require.NoError(t, err)
	require.Equal(t, 5, tab.ColumnCount())

	vt := tab.(*testcat.Table)
	require.Len(t, vt.Rows, len(builtins.Registry.Functions()))
	names := make(map[string]bool)
	for _, row := range vt.Rows {
		names[row[1].String()] = true
	}
	require.True(t, names["'explode'"])
	require.True(t, names["'generate_series'"])

	fn, err := tc.ResolveTableFunction(context.Background(), "EXPLODE")
	require.NoError(t, err)
	require.Equal(t, "explode", fn.Name())

	_, err = tc.ResolveTableFunction(context.Background(), "nope")
	require.True(t, errors.Is(err, cat.ErrUndefinedFunction))
}
