// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package rowexec

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
	"github.com/cockroachdb/physopt/pkg/util/leaktest"
	"github.com/cockroachdb/physopt/pkg/util/log"
	"github.com/stretchr/testify/require"
)

func TestTableFunctionExplode(t *testing.T) {
	defer leaktest.AfterTest(t)()
	defer log.Scope(t).Close(t)

	proc := explodeProc(t, memo.Attrs{})
	require.Equal(t, opt.ColList{1, 3}, proc.OutputCols())
	require.Equal(t, []string{"(1, 10)", "(1, 20)"}, runProc(t, proc))
}

// TestTableFunctionAttrsOrder checks that the predicate is applied before the
// projection, and that the limit counts rows after both.
func TestTableFunctionAttrsOrder(t *testing.T) {
	defer leaktest.AfterTest(t)()
	defer log.Scope(t).Close(t)

	doubled := memo.ProjectionItem{Col: 4, Element: &memo.ArithExpr{
		Operator: opt.MultOp, Left: variable(3, types.Int), Right: constInt(2),
	}}
	elem := memo.ProjectionItem{Col: 3, Element: variable(3, types.Int)}

	testCases := []struct {
		name     string
		attrs    memo.Attrs
		cols     opt.ColList
		expected []string
	}{
		{
			name:     "filter",
			attrs:    memo.Attrs{Predicate: cmpExpr(opt.GtOp, 3, 10)},
			cols:     opt.ColList{1, 3},
			expected: []string{"(1, 20)"},
		},
		{
			name:     "filter before limit",
			attrs:    memo.Attrs{Predicate: cmpExpr(opt.GtOp, 3, 10), Limit: limit(t, 1)},
			cols:     opt.ColList{1, 3},
			expected: []string{"(1, 20)"},
		},
		{
			name:     "limit",
			attrs:    memo.Attrs{Limit: limit(t, 1)},
			cols:     opt.ColList{1, 3},
			expected: []string{"(1, 10)"},
		},
		{
			name:     "zero limit",
			attrs:    memo.Attrs{Limit: limit(t, 0)},
			cols:     opt.ColList{1, 3},
			expected: nil,
		},
		{
			name:     "project",
			attrs:    memo.Attrs{Projection: memo.NewProjection(doubled, elem)},
			cols:     opt.ColList{4, 3},
			expected: []string{"(20, 10)", "(40, 20)"},
		},
		{
			name: "filter then project then limit",
			attrs: memo.Attrs{
				Predicate:  cmpExpr(opt.GeOp, 3, 20),
				Projection: memo.NewProjection(doubled),
				Limit:      limit(t, 5),
			},
			cols:     opt.ColList{4},
			expected: []string{"(40)"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			proc := explodeProc(t, tc.attrs)
			require.Equal(t, tc.cols, proc.OutputCols())
			require.Equal(t, tc.expected, runProc(t, proc))
		})
	}
}

func TestTableFunctionArguments(t *testing.T) {
	defer leaktest.AfterTest(t)()
	defer log.Scope(t).Close(t)

	values := func(rows ...tree.Datums) RowSource {
		op, err := memo.NewValuesOp(opt.ColList{1, 2}, rows, memo.Attrs{})
		require.NoError(t, err)
		proc, err := NewValuesProcessor(op)
		require.NoError(t, err)
		return proc
	}
	series := func(input RowSource) RowSource {
		op, err := memo.NewTableFunctionOp(lookupFn(t, "generate_series"),
			opt.ColList{3}, opt.ColList{1}, opt.ColList{1, 2}, memo.Attrs{})
		require.NoError(t, err)
		proc, err := NewTableFunctionProcessor(op, input)
		require.NoError(t, err)
		return proc
	}

	// The outer column is also a parameter; a NULL argument produces nothing.
	proc := series(values(
		tree.Datums{dint(1), dint(3)},
		tree.Datums{tree.DNull, dint(2)},
		tree.Datums{dint(5), dint(4)},
		tree.Datums{dint(7), dint(7)},
	))
	require.Equal(t, []string{
		"(1, 1)", "(1, 2)", "(1, 3)", "(7, 7)",
	}, runProc(t, proc))

	// Argument errors surface from Next.
	proc = series(values(tree.Datums{dint(1), tree.NewDString("x")}))
	_, err := Drain(context.Background(), proc)
	require.ErrorContains(t, err, "generate_series: expected int arguments, found int and string")

	// Functions that are not builtins cannot be executed.
	other, err := memo.NewTableFunctionOp(
		catFunction(t), opt.ColList{3}, nil /* outerCols */, opt.ColList{2}, memo.Attrs{})
	require.NoError(t, err)
	_, err = NewTableFunctionProcessor(other, explodeInput(t))
	require.Error(t, err)
}

func TestProcessorCancellation(t *testing.T) {
	defer leaktest.AfterTest(t)()
	defer log.Scope(t).Close(t)

	ctx, cancel := context.WithCancel(context.Background())
	proc := explodeProc(t, memo.Attrs{})
	require.NoError(t, proc.Start(ctx))
	defer proc.Close(ctx)

	row, err := proc.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "(1, 10)", row.String())

	cancel()
	_, err = proc.Next(ctx)
	require.True(t, errors.Is(err, context.Canceled))

	// The processor stays exhausted.
	row, err = proc.Next(ctx)
	require.NoError(t, err)
	require.Nil(t, row)
}
