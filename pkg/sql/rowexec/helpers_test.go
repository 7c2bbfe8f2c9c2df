// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package rowexec

import (
	"context"
	"testing"

	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/cat"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/sem/builtins"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
	"github.com/stretchr/testify/require"
)

func intArray(vals ...int) *tree.DArray {
	a := tree.NewDArray(types.Int)
	for _, v := range vals {
		a.Array = append(a.Array, tree.NewDInt(tree.DInt(v)))
	}
	return a
}

func dint(v int) tree.Datum { return tree.NewDInt(tree.DInt(v)) }

func variable(col opt.ColumnID, typ *types.T) *memo.VariableExpr {
	return &memo.VariableExpr{Col: col, Typ: typ}
}

func constInt(v int) *memo.ConstExpr { return &memo.ConstExpr{Value: dint(v)} }

func cmpExpr(op opt.Operator, col opt.ColumnID, v int) memo.ScalarExpr {
	return &memo.ComparisonExpr{Operator: op, Left: variable(col, types.Int), Right: constInt(v)}
}

func limit(t *testing.T, n int64) opt.Limit {
	l, err := opt.MakeLimit(n)
	require.NoError(t, err)
	return l
}

func lookupFn(t *testing.T, name string) *cat.TableFunction {
	fn, err := builtins.Registry.Lookup(name)
	require.NoError(t, err)
	return fn
}

// explodeInput returns a values processor over the columns (id:1, arr:2) with
// the rows (1, {10,20}) and (2, {}).
func explodeInput(t *testing.T) RowSource {
	op, err := memo.NewValuesOp(opt.ColList{1, 2}, []tree.Datums{
		{dint(1), intArray(10, 20)},
		{dint(2), intArray()},
	}, memo.Attrs{})
	require.NoError(t, err)
	proc, err := NewValuesProcessor(op)
	require.NoError(t, err)
	return proc
}

// explodeProc returns a processor that applies explode to the arr column of
// explodeInput, emitting elem:3 next to id:1.
func explodeProc(t *testing.T, attrs memo.Attrs) RowSource {
	op, err := memo.NewTableFunctionOp(lookupFn(t, "explode"),
		opt.ColList{3}, opt.ColList{1}, opt.ColList{2}, attrs)
	require.NoError(t, err)
	proc, err := NewTableFunctionProcessor(op, explodeInput(t))
	require.NoError(t, err)
	return proc
}

// runProc drains src and returns its rows in string form.
func runProc(t *testing.T, src RowSource) []string {
	t.Helper()
	rows, err := Drain(context.Background(), src)
	require.NoError(t, err)
	res := make([]string, len(rows))
	for i := range rows {
		res[i] = rows[i].String()
	}
	return res
}

// catFunction returns a descriptor that is not registered as a builtin.
func catFunction(t *testing.T) *cat.TableFunction {
	_, err := builtins.Registry.Lookup("my_unnest")
	require.Error(t, err)
	return cat.NewTableFunction(99, "my_unnest",
		[]*types.T{types.AnyArray}, []cat.Column{{Name: "x", Type: types.Any}})
}
