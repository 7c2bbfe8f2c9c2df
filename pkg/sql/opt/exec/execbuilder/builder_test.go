// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package execbuilder_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/exec/execbuilder"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/rowexec"
	"github.com/cockroachdb/physopt/pkg/sql/sem/builtins"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
	"github.com/cockroachdb/physopt/pkg/util/leaktest"
	"github.com/cockroachdb/physopt/pkg/util/log"
	"github.com/stretchr/testify/require"
)

type testPlan struct {
	md     opt.Metadata
	id     opt.ColumnID
	arr    opt.ColumnID
	elem   opt.ColumnID
	values *memo.Expr
}

// makeTestPlan returns a plan fragment reading (id, arr) from the rows
// (1, {10,20}), (2, {}) and (3, {30}).
func makeTestPlan(t *testing.T) *testPlan {
	p := &testPlan{}
	p.md.Init()
	p.id = p.md.AddColumn("id", types.Int)
	p.arr = p.md.AddColumn("arr", types.IntArray)
	p.elem = p.md.AddColumn("elem", types.Int)

	arr := func(vals ...int) tree.Datum {
		a := tree.NewDArray(types.Int)
		for _, v := range vals {
			a.Array = append(a.Array, tree.NewDInt(tree.DInt(v)))
		}
		return a
	}
	values, err := memo.NewValuesOp(opt.ColList{p.id, p.arr}, []tree.Datums{
		{tree.NewDInt(1), arr(10, 20)},
		{tree.NewDInt(2), arr()},
		{tree.NewDInt(3), arr(30)},
	}, memo.Attrs{})
	require.NoError(t, err)
	p.values, err = memo.NewExpr(values)
	require.NoError(t, err)
	return p
}

func (p *testPlan) explode(t *testing.T, attrs memo.Attrs) *memo.Expr {
	fn, err := builtins.Registry.Lookup("explode")
	require.NoError(t, err)
	op, err := memo.NewTableFunctionOp(fn,
		opt.ColList{p.elem}, opt.ColList{p.id}, opt.ColList{p.arr}, attrs)
	require.NoError(t, err)
	e, err := memo.NewExpr(op, p.values)
	require.NoError(t, err)
	return e
}

func run(t *testing.T, md *opt.Metadata, e *memo.Expr) ([]string, opt.ColList) {
	t.Helper()
	ctx := context.Background()
	root, err := execbuilder.New(ctx, md, e).Build()
	require.NoError(t, err)
	rows, err := rowexec.Drain(ctx, root)
	require.NoError(t, err)
	res := make([]string, len(rows))
	for i := range rows {
		res[i] = rows[i].String()
	}
	return res, root.OutputCols()
}

func TestBuildTableFunction(t *testing.T) {
	defer leaktest.AfterTest(t)()
	defer log.Scope(t).Close(t)

	p := makeTestPlan(t)
	rows, cols := run(t, &p.md, p.explode(t, memo.Attrs{}))
	require.Equal(t, []string{"(1, 10)", "(1, 20)", "(3, 30)"}, rows)
	require.Equal(t, opt.ColList{p.id, p.elem}, cols)
}

func TestBuildSortOverTableFunction(t *testing.T) {
	defer leaktest.AfterTest(t)()
	defer log.Scope(t).Close(t)

	p := makeTestPlan(t)
	lim, err := opt.MakeLimit(2)
	require.NoError(t, err)
	sort, err := memo.NewSortOp(
		opt.Ordering{opt.MakeOrderingColumn(p.elem, true /* descending */)},
		memo.Attrs{
			Limit: lim,
			Projection: memo.NewProjection(memo.ProjectionItem{
				Col: p.elem, Element: &memo.VariableExpr{Col: p.elem, Typ: types.Int},
			}),
		})
	require.NoError(t, err)
	e, err := memo.NewExpr(sort, p.explode(t, memo.Attrs{}))
	require.NoError(t, err)

	rows, cols := run(t, &p.md, e)
	require.Equal(t, []string{"(30)", "(20)"}, rows)
	require.Equal(t, opt.ColList{p.elem}, cols)
}

func TestBuildErrors(t *testing.T) {
	defer leaktest.AfterTest(t)()
	defer log.Scope(t).Close(t)
	ctx := context.Background()

	p := makeTestPlan(t)

	// Joins are not executable.
	join, err := memo.NewNestedLoopJoinOp(memo.InnerJoin, nil /* on */, memo.Attrs{})
	require.NoError(t, err)
	other := makeTestPlan(t)
	right, err := memo.NewValuesOp(opt.ColList{4}, []tree.Datums{{tree.NewDInt(1)}}, memo.Attrs{})
	require.NoError(t, err)
	rightExpr, err := memo.NewExpr(right)
	require.NoError(t, err)
	e, err := memo.NewExpr(join, other.values, rightExpr)
	require.NoError(t, err)
	_, err = execbuilder.New(ctx, nil /* md */, e).Build()
	require.True(t, errors.HasUnimplementedError(err), "%v", err)
	require.ErrorContains(t, err, "execution of nested-loop-join is not supported")

	// Invalid plans are rejected before any processor is built.
	fn, err := builtins.Registry.Lookup("unnest")
	require.NoError(t, err)
	op, err := memo.NewTableFunctionOp(fn,
		opt.ColList{p.elem}, nil /* outerCols */, opt.ColList{9}, memo.Attrs{})
	require.NoError(t, err)
	e, err = memo.NewExpr(op, p.values)
	require.NoError(t, err)
	_, err = execbuilder.New(ctx, &p.md, e).Build()
	require.True(t, errors.Is(err, memo.ErrInvalidPlan), "%v", err)

	_, err = execbuilder.New(ctx, nil /* md */, nil /* e */).Build()
	require.True(t, errors.HasAssertionFailure(err))
}
