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
	"github.com/cockroachdb/physopt/pkg/sql/opt/cat"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
	"github.com/cockroachdb/physopt/pkg/util/leaktest"
	"github.com/cockroachdb/physopt/pkg/util/log"
	"github.com/stretchr/testify/require"
)

type memTable struct {
	name string
	cols []cat.Column
	rows []tree.Datums
}

func (t *memTable) ID() cat.StableID        { return 100 }
func (t *memTable) Name() string            { return t.name }
func (t *memTable) ColumnCount() int        { return len(t.cols) }
func (t *memTable) Column(i int) cat.Column { return t.cols[i] }
func (t *memTable) RowCount() int           { return len(t.rows) }
func (t *memTable) Row(i int) tree.Datums   { return t.rows[i] }

// bareTable hides the rows of the embedded table.
type bareTable struct{ memTable }

func (t *bareTable) RowCount() {}

func TestValuesProcessor(t *testing.T) {
	defer leaktest.AfterTest(t)()
	defer log.Scope(t).Close(t)

	proc := explodeInput(t)
	require.Equal(t, opt.ColList{1, 2}, proc.OutputCols())
	require.Equal(t, []string{"(1, {10,20})", "(2, {})"}, runProc(t, proc))

	op, err := memo.NewValuesOp(opt.ColList{1}, []tree.Datums{{dint(1)}, {dint(2)}, {dint(3)}},
		memo.Attrs{Predicate: cmpExpr(opt.NeOp, 1, 2), Limit: limit(t, 5)})
	require.NoError(t, err)
	proc, err = NewValuesProcessor(op)
	require.NoError(t, err)
	require.Equal(t, []string{"(1)", "(3)"}, runProc(t, proc))
}

func TestTableReader(t *testing.T) {
	defer leaktest.AfterTest(t)()
	defer log.Scope(t).Close(t)

	tab := &memTable{
		name: "t",
		cols: []cat.Column{{Name: "a", Type: types.Int}, {Name: "b", Type: types.String}},
		rows: []tree.Datums{
			{dint(1), tree.NewDString("x")},
			{dint(2), tree.NewDString("y")},
		},
	}

	op, err := memo.NewScanOp(tab, opt.ColList{4, 5}, memo.Attrs{})
	require.NoError(t, err)
	proc, err := NewTableReader(op)
	require.NoError(t, err)
	require.Equal(t, []string{"(1, 'x')", "(2, 'y')"}, runProc(t, proc))

	// A scan of a prefix of the columns.
	op, err = memo.NewScanOp(tab, opt.ColList{4}, memo.Attrs{
		Predicate: cmpExpr(opt.GtOp, 4, 1), Limit: limit(t, 1),
	})
	require.NoError(t, err)
	proc, err = NewTableReader(op)
	require.NoError(t, err)
	require.Equal(t, []string{"(2)"}, runProc(t, proc))

	op, err = memo.NewScanOp(&bareTable{*tab}, opt.ColList{1}, memo.Attrs{})
	require.NoError(t, err)
	_, err = NewTableReader(op)
	require.True(t, errors.HasUnimplementedError(err))
}

func TestProcOutputHelper(t *testing.T) {
	defer leaktest.AfterTest(t)()
	ctx := context.Background()

	var h ProcOutputHelper
	require.NoError(t, h.Init(memo.Attrs{
		Projection: memo.NewProjection(
			memo.ProjectionItem{Col: 2, Element: variable(2, types.Int)},
			memo.ProjectionItem{Col: 5, Element: &memo.UnaryMinusExpr{Input: variable(1, types.Int)}},
		),
		Limit: limit(t, 2),
	}, opt.ColList{1, 2}))
	require.Equal(t, opt.ColList{2, 5}, h.OutputCols())
	require.Equal(t, []int{1, -1}, h.renderOrds)

	row := tree.Datums{dint(3), dint(4)}
	out, more, err := h.ProcessRow(ctx, row)
	require.NoError(t, err)
	require.True(t, more)
	require.Equal(t, "(4, -3)", out.String())

	out, more, err = h.ProcessRow(ctx, row)
	require.NoError(t, err)
	require.False(t, more)
	require.NotNil(t, out)
	require.EqualValues(t, 2, h.RowsEmitted())

	out, more, err = h.ProcessRow(ctx, row)
	require.NoError(t, err)
	require.False(t, more)
	require.Nil(t, out)

	_, _, err = h.ProcessRow(ctx, tree.Datums{dint(1)})
	require.NoError(t, err, "rows are not inspected once the limit is reached")

	require.NoError(t, h.Init(memo.Attrs{}, opt.ColList{1, 2}))
	_, _, err = h.ProcessRow(ctx, tree.Datums{dint(1)})
	require.True(t, errors.HasAssertionFailure(err))

	// Invalid bundles are rejected.
	err = h.Init(memo.Attrs{Predicate: cmpExpr(opt.EqOp, 9, 1)}, opt.ColList{1, 2})
	require.True(t, errors.HasAssertionFailure(err))
}
