// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package eval evaluates scalar expressions against rows of datums.
package eval

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
)

// Binding maps column ids to positions in a row.
type Binding struct {
	cols opt.ColList
	ords map[opt.ColumnID]int
}

// MakeBinding returns a binding for rows whose ith value belongs to cols[i].
func MakeBinding(cols opt.ColList) Binding {
	b := Binding{cols: cols.Copy(), ords: make(map[opt.ColumnID]int, len(cols))}
	for i, c := range cols {
		b.ords[c] = i
	}
	return b
}

// Cols returns the bound columns in row order.
func (b Binding) Cols() opt.ColList { return b.cols }

// Ordinal returns the position of col in the row.
func (b Binding) Ordinal(col opt.ColumnID) (int, bool) {
	ord, ok := b.ords[col]
	return ord, ok
}

// Expr evaluates e over row, whose layout is described by b. NULLs follow
// SQL semantics: comparisons and arithmetic with a NULL operand are NULL,
// and AND/OR use three-valued logic.
func Expr(ctx context.Context, e memo.ScalarExpr, b Binding, row tree.Datums) (tree.Datum, error) {
	switch t := e.(type) {
	case *memo.VariableExpr:
		ord, ok := b.Ordinal(t.Col)
		if !ok {
			return nil, errors.AssertionFailedf("column %d is not bound in %s", t.Col, b.cols)
		}
		return row[ord], nil

	case *memo.ConstExpr:
		return t.Value, nil

	case *memo.AndExpr:
		return evalLogical(ctx, t.Left, t.Right, false /* isOr */, b, row)

	case *memo.OrExpr:
		return evalLogical(ctx, t.Left, t.Right, true /* isOr */, b, row)

	case *memo.NotExpr:
		d, err := Expr(ctx, t.Input, b, row)
		if err != nil || d == tree.DNull {
			return d, err
		}
		v, err := mustBeBool(d)
		if err != nil {
			return nil, err
		}
		return tree.MakeDBool(tree.DBool(!v)), nil

	case *memo.IsNullExpr:
		d, err := Expr(ctx, t.Input, b, row)
		if err != nil {
			return nil, err
		}
		return tree.MakeDBool(d == tree.DNull), nil

	case *memo.ComparisonExpr:
		left, right, err := evalOperands(ctx, t.Left, t.Right, b, row)
		if err != nil || left == tree.DNull || right == tree.DNull {
			return tree.DNull, err
		}
		return ComparisonOp(t.Operator, left, right)

	case *memo.ArithExpr:
		left, right, err := evalOperands(ctx, t.Left, t.Right, b, row)
		if err != nil || left == tree.DNull || right == tree.DNull {
			return tree.DNull, err
		}
		return BinaryOp(t.Operator, left, right)

	case *memo.UnaryMinusExpr:
		d, err := Expr(ctx, t.Input, b, row)
		if err != nil || d == tree.DNull {
			return d, err
		}
		return UnaryMinus(d)
	}
	return nil, errors.AssertionFailedf("unhandled scalar expression %T", e)
}

// Filter evaluates a predicate over row. Rows for which the predicate is
// false or NULL are rejected. A nil predicate accepts every row.
func Filter(ctx context.Context, pred memo.ScalarExpr, b Binding, row tree.Datums) (bool, error) {
	if pred == nil {
		return true, nil
	}
	d, err := Expr(ctx, pred, b, row)
	if err != nil || d == tree.DNull {
		return false, err
	}
	return mustBeBool(d)
}

func evalOperands(
	ctx context.Context, left, right memo.ScalarExpr, b Binding, row tree.Datums,
) (l, r tree.Datum, err error) {
	if l, err = Expr(ctx, left, b, row); err != nil {
		return nil, nil, err
	}
	if r, err = Expr(ctx, right, b, row); err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

// evalLogical implements AND and OR. The right operand is not evaluated if
// the left operand decides the result.
func evalLogical(
	ctx context.Context, left, right memo.ScalarExpr, isOr bool, b Binding, row tree.Datums,
) (tree.Datum, error) {
	l, err := Expr(ctx, left, b, row)
	if err != nil {
		return nil, err
	}
	if l != tree.DNull {
		v, err := mustBeBool(l)
		if err != nil {
			return nil, err
		}
		if v == isOr {
			return tree.MakeDBool(tree.DBool(v)), nil
		}
	}
	r, err := Expr(ctx, right, b, row)
	if err != nil {
		return nil, err
	}
	if r == tree.DNull {
		return tree.DNull, nil
	}
	v, err := mustBeBool(r)
	if err != nil {
		return nil, err
	}
	if v == isOr {
		return tree.MakeDBool(tree.DBool(v)), nil
	}
	if l == tree.DNull {
		return tree.DNull, nil
	}
	return tree.MakeDBool(tree.DBool(v)), nil
}

func mustBeBool(d tree.Datum) (bool, error) {
	v, ok := d.(*tree.DBool)
	if !ok {
		return false, errors.Newf("expected bool, found %s", d.ResolvedType())
	}
	return bool(*v), nil
}
