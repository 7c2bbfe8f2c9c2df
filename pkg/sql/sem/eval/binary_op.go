// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package eval

import (
	"math"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
)

// DecimalCtx is the context for arithmetic on decimals.
var DecimalCtx = apd.BaseContext.WithPrecision(20)

// BinaryOp evaluates an arithmetic operator on two non-NULL numeric datums.
// Integer operations that overflow return tree.ErrIntOutOfRange. Mixed
// operands are widened: int to decimal or float, and decimal to float.
func BinaryOp(op opt.Operator, left, right tree.Datum) (tree.Datum, error) {
	if !op.IsArithmetic() {
		return nil, errors.AssertionFailedf("%s is not an arithmetic operator", op)
	}
	lf, rf := left.ResolvedType().Family(), right.ResolvedType().Family()
	switch {
	case lf == types.IntFamily && rf == types.IntFamily:
		return intOp(op, int64(*left.(*tree.DInt)), int64(*right.(*tree.DInt)))

	case lf == types.FloatFamily || rf == types.FloatFamily:
		l, err := toFloat(left)
		if err != nil {
			return nil, err
		}
		r, err := toFloat(right)
		if err != nil {
			return nil, err
		}
		return floatOp(op, l, r), nil

	case lf == types.DecimalFamily || rf == types.DecimalFamily:
		l, err := toDecimal(left)
		if err != nil {
			return nil, err
		}
		r, err := toDecimal(right)
		if err != nil {
			return nil, err
		}
		return decimalOp(op, l, r)
	}
	return nil, errors.Newf("unsupported binary operator: %s %s %s",
		left.ResolvedType(), op, right.ResolvedType())
}

func intOp(op opt.Operator, a, b int64) (tree.Datum, error) {
	var r int64
	switch op {
	case opt.PlusOp:
		r = a + b
		if (r < a) != (b < 0) {
			return nil, tree.ErrIntOutOfRange
		}
	case opt.MinusOp:
		r = a - b
		if (r < a) != (b > 0) {
			return nil, tree.ErrIntOutOfRange
		}
	case opt.MultOp:
		if a != 0 && b != 0 {
			if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
				return nil, tree.ErrIntOutOfRange
			}
			r = a * b
			if r/b != a {
				return nil, tree.ErrIntOutOfRange
			}
		}
	}
	return tree.NewDInt(tree.DInt(r)), nil
}

func floatOp(op opt.Operator, a, b float64) tree.Datum {
	switch op {
	case opt.PlusOp:
		return tree.NewDFloat(tree.DFloat(a + b))
	case opt.MinusOp:
		return tree.NewDFloat(tree.DFloat(a - b))
	}
	return tree.NewDFloat(tree.DFloat(a * b))
}

func decimalOp(op opt.Operator, a, b *apd.Decimal) (tree.Datum, error) {
	dd := &tree.DDecimal{}
	var err error
	switch op {
	case opt.PlusOp:
		_, err = DecimalCtx.Add(&dd.Decimal, a, b)
	case opt.MinusOp:
		_, err = DecimalCtx.Sub(&dd.Decimal, a, b)
	case opt.MultOp:
		_, err = DecimalCtx.Mul(&dd.Decimal, a, b)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decimal %s", op)
	}
	return dd, nil
}

func toFloat(d tree.Datum) (float64, error) {
	switch t := d.(type) {
	case *tree.DFloat:
		return float64(*t), nil
	case *tree.DInt:
		return float64(*t), nil
	case *tree.DDecimal:
		return t.Float64()
	}
	return 0, errors.Newf("cannot convert %s to float", d.ResolvedType())
}

func toDecimal(d tree.Datum) (*apd.Decimal, error) {
	switch t := d.(type) {
	case *tree.DDecimal:
		return &t.Decimal, nil
	case *tree.DInt:
		return apd.New(int64(*t), 0), nil
	}
	return nil, errors.Newf("cannot convert %s to decimal", d.ResolvedType())
}

// ComparisonOp compares two non-NULL datums of comparable types.
func ComparisonOp(op opt.Operator, left, right tree.Datum) (tree.Datum, error) {
	if !left.ResolvedType().Equivalent(right.ResolvedType()) && !(isNumeric(left) && isNumeric(right)) {
		return nil, errors.Newf("unsupported comparison operator: %s %s %s",
			left.ResolvedType(), op, right.ResolvedType())
	}
	c := left.Compare(right)
	var res bool
	switch op {
	case opt.EqOp:
		res = c == 0
	case opt.NeOp:
		res = c != 0
	case opt.LtOp:
		res = c < 0
	case opt.LeOp:
		res = c <= 0
	case opt.GtOp:
		res = c > 0
	case opt.GeOp:
		res = c >= 0
	default:
		return nil, errors.AssertionFailedf("%s is not a comparison operator", op)
	}
	return tree.MakeDBool(tree.DBool(res)), nil
}

func isNumeric(d tree.Datum) bool {
	switch d.ResolvedType().Family() {
	case types.IntFamily, types.FloatFamily, types.DecimalFamily:
		return true
	}
	return false
}
