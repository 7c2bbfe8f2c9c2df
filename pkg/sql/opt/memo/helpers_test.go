// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo_test

import (
	"testing"

	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/cat"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
	"github.com/stretchr/testify/require"
)

type testTable struct {
	id   cat.StableID
	name string
	cols []cat.Column
}

func (t *testTable) ID() cat.StableID        { return t.id }
func (t *testTable) Name() string            { return t.name }
func (t *testTable) ColumnCount() int        { return len(t.cols) }
func (t *testTable) Column(i int) cat.Column { return t.cols[i] }

var (
	unnestFn = cat.NewTableFunction(1, "unnest",
		[]*types.T{types.AnyArray}, []cat.Column{{Name: "unnest", Type: types.Any}})

	posexplodeFn = cat.NewTableFunction(2, "posexplode",
		[]*types.T{types.AnyArray},
		[]cat.Column{{Name: "pos", Type: types.Int}, {Name: "val", Type: types.Any}})

	seriesFn = cat.NewTableFunction(3, "generate_series",
		[]*types.T{types.Int, types.Int}, []cat.Column{{Name: "generate_series", Type: types.Int}})

	tabT = &testTable{id: 53, name: "t", cols: []cat.Column{
		{Name: "id", Type: types.Int},
		{Name: "arr", Type: types.IntArray},
	}}
)

func intArray(vals ...int) *tree.DArray {
	a := tree.NewDArray(types.Int)
	for _, v := range vals {
		if err := a.Append(tree.NewDInt(tree.DInt(v))); err != nil {
			panic(err)
		}
	}
	return a
}

func variable(col opt.ColumnID, typ *types.T) *memo.VariableExpr {
	return &memo.VariableExpr{Col: col, Typ: typ}
}

func constInt(v int) *memo.ConstExpr {
	return &memo.ConstExpr{Value: tree.NewDInt(tree.DInt(v))}
}

func gt(left, right memo.ScalarExpr) memo.ScalarExpr {
	return &memo.ComparisonExpr{Operator: opt.GtOp, Left: left, Right: right}
}

func limit(t testing.TB, n int64) opt.Limit {
	l, err := opt.MakeLimit(n)
	require.NoError(t, err)
	return l
}

// explodeInput returns a values operator producing [id:1, arr:2] with the
// rows (1, {10,20}) and (2, {}).
func explodeInput(t testing.TB) *memo.ValuesOp {
	v, err := memo.NewValuesOp(opt.ColList{1, 2}, []tree.Datums{
		{tree.NewDInt(1), intArray(10, 20)},
		{tree.NewDInt(2), intArray()},
	}, memo.Attrs{})
	require.NoError(t, err)
	return v
}

// explodeOp returns unnest(arr:2) with outer [id:1] and result [elem:3].
func explodeOp(t testing.TB, attrs memo.Attrs) *memo.TableFunctionOp {
	op, err := memo.NewTableFunctionOp(
		unnestFn, opt.ColList{3}, opt.ColList{1}, opt.ColList{2}, attrs)
	require.NoError(t, err)
	return op
}

// allOperators returns one operator of every physical kind, in the order of
// opt.PhysicalOperators.
func allOperators(t testing.TB) []memo.PhysicalOperator {
	scan, err := memo.NewScanOp(tabT, opt.ColList{1, 2}, memo.Attrs{})
	require.NoError(t, err)
	hashJoin, err := memo.NewHashJoinOp(memo.InnerJoin, opt.ColList{1}, opt.ColList{4}, memo.Attrs{})
	require.NoError(t, err)
	mergeJoin, err := memo.NewMergeJoinOp(memo.LeftJoin,
		opt.Ordering{opt.MakeOrderingColumn(1, false)},
		opt.Ordering{opt.MakeOrderingColumn(4, false)}, memo.Attrs{})
	require.NoError(t, err)
	nlJoin, err := memo.NewNestedLoopJoinOp(memo.SemiJoin, gt(variable(1, types.Int), variable(4, types.Int)), memo.Attrs{})
	require.NoError(t, err)
	aggs := []memo.AggregateItem{{Col: 5, Func: memo.CountRowsAgg}}
	hashGroupBy, err := memo.NewHashGroupByOp(opt.ColList{1}, aggs, memo.Attrs{})
	require.NoError(t, err)
	streamGroupBy, err := memo.NewStreamGroupByOp(opt.ColList{1}, aggs,
		opt.Ordering{opt.MakeOrderingColumn(1, true)}, memo.Attrs{})
	require.NoError(t, err)
	sort, err := memo.NewSortOp(opt.Ordering{opt.MakeOrderingColumn(1, false)}, memo.Attrs{})
	require.NoError(t, err)

	return []memo.PhysicalOperator{
		scan,
		explodeInput(t),
		hashJoin,
		mergeJoin,
		nlJoin,
		hashGroupBy,
		streamGroupBy,
		sort,
		explodeOp(t, memo.Attrs{}),
	}
}
