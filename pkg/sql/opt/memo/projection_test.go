// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo_test

import (
	"testing"

	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
	"github.com/cockroachdb/physopt/pkg/util/leaktest"
	"github.com/stretchr/testify/require"
)

func TestProjectionAccessors(t *testing.T) {
	defer leaktest.AfterTest(t)()

	p := memo.NewProjection(
		memo.ProjectionItem{Col: 1, Element: variable(1, types.Int)},
		memo.ProjectionItem{Col: 4, Element: variable(3, types.Int)},
	)
	require.Equal(t, 2, p.Len())
	require.Equal(t, opt.ColumnID(4), p.Item(1).Col)
	require.True(t, p.IsPassthrough(0))
	require.False(t, p.IsPassthrough(1))
	require.Equal(t, opt.ColList{1, 4}, p.OutputCols())

	items := p.Items()
	items[0].Col = 9
	require.Equal(t, opt.ColumnID(1), p.Item(0).Col)

	// A nil projection behaves like an empty one.
	var none *memo.Projection
	require.Equal(t, 0, none.Len())
	require.Nil(t, none.Items())
	require.Empty(t, none.OutputCols())
	require.PanicsWithError(t, "projection item 0 out of range [0,0)", func() { none.Item(0) })
	require.PanicsWithError(t, "projection item 2 out of range [0,2)", func() { p.Item(2) })
	require.Panics(t, func() { none.IsPassthrough(0) })
}
