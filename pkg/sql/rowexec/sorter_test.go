// Copyright 2016 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package rowexec

import (
	"testing"

	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/physopt/pkg/util/leaktest"
	"github.com/cockroachdb/physopt/pkg/util/log"
	"github.com/stretchr/testify/require"
)

func TestSorter(t *testing.T) {
	defer leaktest.AfterTest(t)()
	defer log.Scope(t).Close(t)

	input := []tree.Datums{
		{dint(1), dint(2)},
		{dint(5), tree.DNull},
		{dint(2), dint(9)},
		{dint(5), dint(1)},
		{dint(1), dint(3)},
		{dint(0), dint(4)},
	}
	asc := func(col opt.ColumnID) opt.OrderingColumn { return opt.MakeOrderingColumn(col, false) }
	desc := func(col opt.ColumnID) opt.OrderingColumn { return opt.MakeOrderingColumn(col, true) }

	testCases := []struct {
		name     string
		ordering opt.Ordering
		attrs    memo.Attrs
		topK     bool
		expected []string
	}{
		{
			name:     "ascending stable",
			ordering: opt.Ordering{asc(1)},
			expected: []string{"(0, 4)", "(1, 2)", "(1, 3)", "(2, 9)", "(5, NULL)", "(5, 1)"},
		},
		{
			name:     "descending then ascending",
			ordering: opt.Ordering{desc(1), asc(2)},
			expected: []string{"(5, NULL)", "(5, 1)", "(2, 9)", "(1, 2)", "(1, 3)", "(0, 4)"},
		},
		{
			name:     "top k",
			ordering: opt.Ordering{desc(2)},
			attrs:    memo.Attrs{Limit: limit(t, 3)},
			topK:     true,
			expected: []string{"(2, 9)", "(0, 4)", "(1, 3)"},
		},
		{
			name:     "top k with ties",
			ordering: opt.Ordering{asc(1)},
			attrs:    memo.Attrs{Limit: limit(t, 3)},
			topK:     true,
			expected: []string{"(0, 4)", "(1, 2)", "(1, 3)"},
		},
		{
			name:     "top k larger than input",
			ordering: opt.Ordering{asc(2)},
			attrs:    memo.Attrs{Limit: limit(t, 10)},
			topK:     true,
			expected: []string{"(5, NULL)", "(5, 1)", "(1, 2)", "(1, 3)", "(0, 4)", "(2, 9)"},
		},
		{
			name:     "limit with filter",
			ordering: opt.Ordering{asc(2)},
			attrs:    memo.Attrs{Limit: limit(t, 2), Predicate: cmpExpr(opt.GtOp, 2, 2)},
			expected: []string{"(1, 3)", "(0, 4)"},
		},
		{
			name:     "zero limit",
			ordering: opt.Ordering{asc(1)},
			attrs:    memo.Attrs{Limit: limit(t, 0)},
			topK:     true,
			expected: nil,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			values, err := memo.NewValuesOp(opt.ColList{1, 2}, input, memo.Attrs{})
			require.NoError(t, err)
			in, err := NewValuesProcessor(values)
			require.NoError(t, err)
			op, err := memo.NewSortOp(tc.ordering, tc.attrs)
			require.NoError(t, err)
			proc, err := NewSorter(op, in)
			require.NoError(t, err)
			_, isTopK := proc.(*sortTopKProcessor)
			require.Equal(t, tc.topK, isTopK)
			require.Equal(t, opt.ColList{1, 2}, proc.OutputCols())
			require.Equal(t, tc.expected, runProc(t, proc))
		})
	}
}

func TestSorterUnknownColumn(t *testing.T) {
	defer leaktest.AfterTest(t)()

	in := explodeInput(t)
	op, err := memo.NewSortOp(opt.Ordering{opt.MakeOrderingColumn(7, false)}, memo.Attrs{})
	require.NoError(t, err)
	_, err = NewSorter(op, in)
	require.ErrorContains(t, err, "ordering column 7 is not produced by the sort input")
}
