// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo_test

import (
	"context"
	"strings"
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

// buildExplodeTree returns sort(table-function(values)) for the explode
// scenario, built from fresh operators.
func buildExplodeTree(t *testing.T) *memo.Expr {
	values, err := memo.NewExpr(explodeInput(t))
	require.NoError(t, err)
	tf, err := memo.NewExpr(explodeOp(t, memo.Attrs{}), values)
	require.NoError(t, err)
	sort, err := memo.NewSortOp(opt.Ordering{opt.MakeOrderingColumn(3, true)}, memo.Attrs{})
	require.NoError(t, err)
	root, err := memo.NewExpr(sort, tf)
	require.NoError(t, err)
	return root
}

func TestMemoizeDeduplicatesIdenticalTrees(t *testing.T) {
	defer leaktest.AfterTest(t)()
	defer log.Scope(t).Close(t)
	ctx := context.Background()

	var m memo.Memo
	m.Init()
	first := buildExplodeTree(t)
	grp := m.MemoizeExpr(ctx, first)
	require.Equal(t, 3, m.GroupCount())
	require.Equal(t, 3, m.ExprCount())
	require.Equal(t, grp, first.Group())

	second := buildExplodeTree(t)
	require.True(t, first.Equals(second))
	require.Equal(t, grp, m.MemoizeExpr(ctx, second))
	require.Equal(t, 3, m.GroupCount())
	require.Equal(t, 3, m.ExprCount())
	require.Equal(t, 3, m.DedupCount())
	require.Equal(t, first.Child(0).Group(), second.Child(0).Group())

	// The same operator over a different input is a different expression.
	limited, err := memo.NewExpr(explodeOp(t, memo.Attrs{Limit: limit(t, 1)}), second.Child(0).Child(0))
	require.NoError(t, err)
	other := m.MemoizeExpr(ctx, limited)
	require.NotEqual(t, first.Child(0).Group(), other)
	require.Equal(t, 4, m.GroupCount())

	g, ok := m.Lookup(explodeOp(t, memo.Attrs{}), second.Child(0).Child(0).Group())
	require.True(t, ok)
	require.Equal(t, first.Child(0).Group(), g)
	_, ok = m.Lookup(explodeOp(t, memo.Attrs{Limit: limit(t, 2)}), second.Child(0).Child(0).Group())
	require.False(t, ok)

	extracted := m.ExtractExpr(grp)
	require.True(t, extracted.Equals(first))
	require.Positive(t, m.MemoryEstimate())
}

func TestMemoizeDeduplicatesEqualConstants(t *testing.T) {
	defer leaktest.AfterTest(t)()
	defer log.Scope(t).Close(t)
	ctx := context.Background()

	build := func(lit string) *memo.Expr {
		d, err := tree.ParseDDecimal(lit)
		require.NoError(t, err)
		values, err := memo.NewExpr(explodeInput(t))
		require.NoError(t, err)
		tf, err := memo.NewExpr(explodeOp(t, memo.Attrs{
			Predicate: gt(variable(1, types.Decimal), &memo.ConstExpr{Value: d}),
		}), values)
		require.NoError(t, err)
		return tf
	}

	var m memo.Memo
	m.Init()
	a := m.MemoizeExpr(ctx, build("1.0"))
	b := m.MemoizeExpr(ctx, build("1.00"))
	require.Equal(t, a, b)
	require.Equal(t, 2, m.GroupCount())
	require.Equal(t, 2, m.ExprCount())

	c := m.MemoizeExpr(ctx, build("1.01"))
	require.NotEqual(t, a, c)
	require.Equal(t, 3, m.GroupCount())
}

func TestMemoAddAlternative(t *testing.T) {
	defer leaktest.AfterTest(t)()
	defer log.Scope(t).Close(t)
	ctx := context.Background()

	var m memo.Memo
	root := buildExplodeTree(t)
	rootGrp := m.MemoizeExpr(ctx, root)
	tfGrp := root.Child(0).Group()
	valuesGrp := root.Child(0).Child(0).Group()

	// The memo does not check that alternatives are equivalent, only that
	// they are structurally distinct.
	alt := explodeOp(t, memo.Attrs{Limit: limit(t, 100)})
	added, err := m.AddAlternative(ctx, tfGrp, alt, valuesGrp)
	require.NoError(t, err)
	require.True(t, added)
	require.Equal(t, 2, m.GroupSize(tfGrp))
	require.Same(t, alt, m.Expr(tfGrp, 1).Op.(*memo.TableFunctionOp))

	// Adding it again is a no-op.
	added, err = m.AddAlternative(ctx, tfGrp, explodeOp(t, memo.Attrs{Limit: limit(t, 100)}), valuesGrp)
	require.NoError(t, err)
	require.False(t, added)

	// The expression already lives in another group.
	_, err = m.AddAlternative(ctx, rootGrp, explodeOp(t, memo.Attrs{}), valuesGrp)
	require.True(t, errors.Is(err, memo.ErrInvalidPlan))
	require.Contains(t, err.Error(), "already belongs to")

	// Wrong number of children.
	_, err = m.AddAlternative(ctx, tfGrp, explodeOp(t, memo.Attrs{Limit: limit(t, 7)}))
	require.True(t, errors.Is(err, memo.ErrInvalidPlan))

	// A group cannot be its own input.
	sort, err := memo.NewSortOp(opt.Ordering{opt.MakeOrderingColumn(1, false)}, memo.Attrs{})
	require.NoError(t, err)
	_, err = m.AddAlternative(ctx, tfGrp, sort, rootGrp)
	require.True(t, errors.Is(err, memo.ErrInvalidPlan))
	require.Contains(t, err.Error(), "depend on itself")

	_, err = m.AddAlternative(ctx, 42, sort, valuesGrp)
	require.True(t, errors.Is(err, memo.ErrInvalidPlan))
}

func TestAddAlternativeOverSharedInputs(t *testing.T) {
	defer leaktest.AfterTest(t)()
	defer log.Scope(t).Close(t)
	ctx := context.Background()

	var m memo.Memo
	values, err := memo.NewExpr(explodeInput(t))
	require.NoError(t, err)
	bottom := m.MemoizeExpr(ctx, values)

	asc, err := memo.NewSortOp(opt.Ordering{opt.MakeOrderingColumn(1, false)}, memo.Attrs{})
	require.NoError(t, err)
	desc, err := memo.NewSortOp(opt.Ordering{opt.MakeOrderingColumn(1, true)}, memo.Attrs{})
	require.NoError(t, err)

	// Every level has two expressions over the level below, so the number of
	// paths from the top doubles with each level.
	const depth = 64
	top := bottom
	for i := 0; i < depth; i++ {
		e, err := memo.NewExpr(asc, m.ExtractExpr(top))
		require.NoError(t, err)
		next := m.MemoizeExpr(ctx, e)
		added, err := m.AddAlternative(ctx, next, desc, top)
		require.NoError(t, err)
		require.True(t, added)
		top = next
	}
	require.Equal(t, depth+1, m.GroupCount())

	// The top is searched exhaustively when the target is unreachable.
	empty, err := memo.NewValuesOp(opt.ColList{1, 2}, nil, memo.Attrs{})
	require.NoError(t, err)
	emptyExpr, err := memo.NewExpr(empty)
	require.NoError(t, err)
	unrelated := m.MemoizeExpr(ctx, emptyExpr)
	added, err := m.AddAlternative(ctx, unrelated, asc, top)
	require.NoError(t, err)
	require.True(t, added)

	_, err = m.AddAlternative(ctx, bottom, desc, top)
	require.True(t, errors.Is(err, memo.ErrInvalidPlan))
	require.Contains(t, err.Error(), "depend on itself")
}

func TestFormatMemo(t *testing.T) {
	defer leaktest.AfterTest(t)()
	ctx := context.Background()

	var m memo.Memo
	root := buildExplodeTree(t)
	m.SetRoot(m.MemoizeExpr(ctx, root))

	expected := strings.TrimLeft(`
memo (3 groups, 3 exprs)
 ├── G1: (sort G2 -3) [root]
 ├── G2: (table-function G3 unnest,outer=(1),params=(2),results=(3))
 └── G3: (values rows=2,cols=(1,2))
`, "\n")
	require.Equal(t, expected, memo.FormatMemo(&m, nil, 0))

	raw := strings.TrimLeft(`
memo (3 groups, 3 exprs)
 ├── G1: (values rows=2,cols=(1,2))
 ├── G2: (table-function G1 unnest,outer=(1),params=(2),results=(3))
 └── G3: (sort G2 -3)
`, "\n")
	require.Equal(t, raw, memo.FormatMemo(&m, nil, memo.MemoFmtRaw))

	sized := memo.FormatMemo(&m, nil, memo.MemoFmtShowSize)
	require.Regexp(t, `^memo \(3 groups, 3 exprs, ~[0-9.]+ [KM]?i?B\)`, sized)
}
