// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package eval

import (
	"context"
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
	"github.com/cockroachdb/physopt/pkg/util/leaktest"
	"github.com/stretchr/testify/require"
)

func v(col opt.ColumnID, typ *types.T) memo.ScalarExpr {
	return &memo.VariableExpr{Col: col, Typ: typ}
}

func c(d tree.Datum) memo.ScalarExpr {
	return &memo.ConstExpr{Value: d}
}

func TestThreeValuedLogic(t *testing.T) {
	defer leaktest.AfterTest(t)()
	ctx := context.Background()

	tru, fls, null := c(tree.DBoolTrue), c(tree.DBoolFalse), c(tree.DNull)
	testCases := []struct {
		e        memo.ScalarExpr
		expected string
	}{
		{&memo.AndExpr{Left: tru, Right: tru}, "true"},
		{&memo.AndExpr{Left: tru, Right: fls}, "false"},
		{&memo.AndExpr{Left: null, Right: fls}, "false"},
		{&memo.AndExpr{Left: fls, Right: null}, "false"},
		{&memo.AndExpr{Left: tru, Right: null}, "NULL"},
		{&memo.AndExpr{Left: null, Right: tru}, "NULL"},
		{&memo.OrExpr{Left: fls, Right: fls}, "false"},
		{&memo.OrExpr{Left: null, Right: tru}, "true"},
		{&memo.OrExpr{Left: tru, Right: null}, "true"},
		{&memo.OrExpr{Left: fls, Right: null}, "NULL"},
		{&memo.OrExpr{Left: null, Right: null}, "NULL"},
		{&memo.NotExpr{Input: fls}, "true"},
		{&memo.NotExpr{Input: null}, "NULL"},
		{&memo.IsNullExpr{Input: null}, "true"},
		{&memo.IsNullExpr{Input: tru}, "false"},
	}
	for _, tc := range testCases {
		d, err := Expr(ctx, tc.e, Binding{}, nil)
		require.NoError(t, err)
		require.Equal(t, tc.expected, d.String(), "%s", memo.FormatScalar(tc.e, nil))
	}
}

func TestComparisonAndArithmetic(t *testing.T) {
	defer leaktest.AfterTest(t)()
	ctx := context.Background()

	b := MakeBinding(opt.ColList{3, 1})
	row := tree.Datums{tree.NewDInt(20), tree.DNull}

	eval := func(e memo.ScalarExpr) string {
		t.Helper()
		d, err := Expr(ctx, e, b, row)
		require.NoError(t, err)
		return d.String()
	}
	cmp := func(op opt.Operator, l, r memo.ScalarExpr) memo.ScalarExpr {
		return &memo.ComparisonExpr{Operator: op, Left: l, Right: r}
	}
	arith := func(op opt.Operator, l, r memo.ScalarExpr) memo.ScalarExpr {
		return &memo.ArithExpr{Operator: op, Left: l, Right: r}
	}
	ten := c(tree.NewDInt(10))

	require.Equal(t, "true", eval(cmp(opt.GtOp, v(3, types.Int), ten)))
	require.Equal(t, "false", eval(cmp(opt.LeOp, v(3, types.Int), ten)))
	require.Equal(t, "true", eval(cmp(opt.NeOp, v(3, types.Int), ten)))
	require.Equal(t, "NULL", eval(cmp(opt.EqOp, v(1, types.Int), ten)))
	require.Equal(t, "true", eval(cmp(opt.GeOp, v(3, types.Int), c(tree.NewDFloat(19.5)))))
	require.Equal(t, "30", eval(arith(opt.PlusOp, v(3, types.Int), ten)))
	require.Equal(t, "200", eval(arith(opt.MultOp, v(3, types.Int), ten)))
	require.Equal(t, "-10", eval(arith(opt.MinusOp, ten, v(3, types.Int))))
	require.Equal(t, "NULL", eval(arith(opt.PlusOp, v(1, types.Int), ten)))
	require.Equal(t, "-20", eval(&memo.UnaryMinusExpr{Input: v(3, types.Int)}))
	require.Equal(t, "20.5", eval(arith(opt.PlusOp, v(3, types.Int), c(tree.NewDFloat(0.5)))))

	dec, err := tree.ParseDDecimal("1.25")
	require.NoError(t, err)
	require.Equal(t, "21.25", eval(arith(opt.PlusOp, v(3, types.Int), c(dec))))

	ok, err := Filter(ctx, cmp(opt.EqOp, v(1, types.Int), ten), b, row)
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = Filter(ctx, nil, b, row)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvalErrors(t *testing.T) {
	defer leaktest.AfterTest(t)()
	ctx := context.Background()

	maxInt := c(tree.NewDInt(math.MaxInt64))
	minInt := c(tree.NewDInt(math.MinInt64))
	one := c(tree.NewDInt(1))

	for _, e := range []memo.ScalarExpr{
		&memo.ArithExpr{Operator: opt.PlusOp, Left: maxInt, Right: one},
		&memo.ArithExpr{Operator: opt.MinusOp, Left: minInt, Right: one},
		&memo.ArithExpr{Operator: opt.MultOp, Left: maxInt, Right: c(tree.NewDInt(2))},
		&memo.ArithExpr{Operator: opt.MultOp, Left: minInt, Right: c(tree.NewDInt(-1))},
		&memo.UnaryMinusExpr{Input: minInt},
	} {
		_, err := Expr(ctx, e, Binding{}, nil)
		require.True(t, errors.Is(err, tree.ErrIntOutOfRange), "%s: %v", memo.FormatScalar(e, nil), err)
	}

	_, err := Expr(ctx, v(7, types.Int), MakeBinding(opt.ColList{1}), tree.Datums{tree.DNull})
	require.True(t, errors.HasAssertionFailure(err))

	_, err = Expr(ctx, &memo.ComparisonExpr{
		Operator: opt.EqOp, Left: one, Right: c(tree.NewDString("a")),
	}, Binding{}, nil)
	require.ErrorContains(t, err, "unsupported comparison operator: int eq string")

	_, err = Expr(ctx, &memo.NotExpr{Input: one}, Binding{}, nil)
	require.ErrorContains(t, err, "expected bool, found int")
}
