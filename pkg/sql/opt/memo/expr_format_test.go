// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo_test

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
	"github.com/cockroachdb/physopt/pkg/util/leaktest"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestFormatExpr(t *testing.T) {
	defer leaktest.AfterTest(t)()

	md := explodeMetadata()
	md.AddColumn("doubled", types.Int)
	values := mustExpr(t, explodeInput(t))
	tf := mustExpr(t, explodeOp(t, memo.Attrs{
		Limit:     limit(t, 10),
		Predicate: gt(variable(3, types.Int), constInt(10)),
		Projection: memo.NewProjection(
			memo.ProjectionItem{Col: 1, Element: variable(1, types.Int)},
			memo.ProjectionItem{Col: 4, Element: &memo.ArithExpr{
				Operator: opt.MultOp, Left: variable(3, types.Int), Right: constInt(2),
			}},
		),
	}), values)

	expected := strings.TrimLeft(`
table-function unnest
 ├── columns: id:1 doubled:4
 ├── outer: id:1
 ├── params: arr:2
 ├── results: elem:3
 ├── filter: (gt elem:3 10)
 ├── project
 │    ├── id:1
 │    └── doubled:4 := (mult elem:3 2)
 ├── limit: 10
 └── values
      ├── columns: id:1 arr:2
      ├── (1, {10,20})
      └── (2, {})
`, "\n")
	actual := memo.FormatExpr(tf, md, memo.ExprFmtShowAll)
	if actual != expected {
		t.Fatalf("unexpected output (-want +got):\n%s", cmp.Diff(expected, actual))
	}

	// Without metadata, columns are shown by id; memo groups are shown once
	// the tree is memoized.
	var m memo.Memo
	m.MemoizeExpr(context.Background(), tf)
	expected = strings.TrimLeft(`
table-function unnest [G2]
 ├── outer: @1
 ├── params: @2
 ├── results: @3
 ├── filter: (gt @3 10)
 ├── project
 │    ├── @1
 │    └── @4 := (mult @3 2)
 ├── limit: 10
 └── values [G1]
      ├── (1, {10,20})
      └── (2, {})
`, "\n")
	require.Equal(t, expected, memo.FormatExpr(tf, nil, memo.ExprFmtHideColumns))
}

func TestFormatAllKinds(t *testing.T) {
	defer leaktest.AfterTest(t)()

	for _, op := range allOperators(t) {
		inputs := make([]*memo.Expr, op.Op().ChildCount())
		for i := range inputs {
			inputs[i] = mustExpr(t, explodeInput(t))
		}
		e := mustExpr(t, op, inputs...)
		out := memo.FormatExpr(e, nil, memo.ExprFmtShowAll)
		require.True(t, strings.HasPrefix(out, op.Op().String()), out)
		require.NotEmpty(t, memo.FormatMemo(func() *memo.Memo {
			var m memo.Memo
			m.MemoizeExpr(context.Background(), e)
			return &m
		}(), nil, 0))
	}
}
