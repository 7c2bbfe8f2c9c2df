// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"math"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
	"github.com/cockroachdb/physopt/pkg/util"
)

// ScalarExpr is a scalar expression tree used by predicates, projections and
// join conditions. Scalar expressions refer to columns only by ColumnID.
// They are treated as immutable once they are attached to an operator.
type ScalarExpr interface {
	// Op returns the scalar operator tag.
	Op() opt.Operator

	// ChildCount returns the number of scalar operands.
	ChildCount() int

	// Child returns the nth operand.
	Child(nth int) ScalarExpr

	// DataType returns the type of the value the expression produces.
	DataType() *types.T
}

// VariableExpr is a reference to a column.
type VariableExpr struct {
	Col opt.ColumnID
	Typ *types.T
}

// ConstExpr is a constant value.
type ConstExpr struct {
	Value tree.Datum
}

// AndExpr is the logical conjunction of its operands.
type AndExpr struct {
	Left, Right ScalarExpr
}

// OrExpr is the logical disjunction of its operands.
type OrExpr struct {
	Left, Right ScalarExpr
}

// NotExpr is the logical negation of its operand.
type NotExpr struct {
	Input ScalarExpr
}

// IsNullExpr is true if its operand is NULL.
type IsNullExpr struct {
	Input ScalarExpr
}

// ComparisonExpr compares two operands. Operator is one of EqOp, NeOp, LtOp,
// LeOp, GtOp or GeOp.
type ComparisonExpr struct {
	Operator    opt.Operator
	Left, Right ScalarExpr
}

// ArithExpr is a binary arithmetic operation. Operator is one of PlusOp,
// MinusOp or MultOp.
type ArithExpr struct {
	Operator    opt.Operator
	Left, Right ScalarExpr
}

// UnaryMinusExpr negates its numeric operand.
type UnaryMinusExpr struct {
	Input ScalarExpr
}

var _ ScalarExpr = &VariableExpr{}
var _ ScalarExpr = &ConstExpr{}
var _ ScalarExpr = &AndExpr{}
var _ ScalarExpr = &OrExpr{}
var _ ScalarExpr = &NotExpr{}
var _ ScalarExpr = &IsNullExpr{}
var _ ScalarExpr = &ComparisonExpr{}
var _ ScalarExpr = &ArithExpr{}
var _ ScalarExpr = &UnaryMinusExpr{}

func (e *VariableExpr) Op() opt.Operator          { return opt.VariableOp }
func (e *VariableExpr) ChildCount() int           { return 0 }
func (e *VariableExpr) Child(nth int) ScalarExpr  { panic(errChildOutOfRange(e, nth)) }
func (e *VariableExpr) DataType() *types.T        { return e.Typ }
func (e *ConstExpr) Op() opt.Operator             { return opt.ConstOp }
func (e *ConstExpr) ChildCount() int              { return 0 }
func (e *ConstExpr) Child(nth int) ScalarExpr     { panic(errChildOutOfRange(e, nth)) }
func (e *ConstExpr) DataType() *types.T           { return e.Value.ResolvedType() }
func (e *AndExpr) Op() opt.Operator               { return opt.AndOp }
func (e *AndExpr) ChildCount() int                { return 2 }
func (e *AndExpr) Child(nth int) ScalarExpr       { return binaryChild(e, e.Left, e.Right, nth) }
func (e *AndExpr) DataType() *types.T             { return types.Bool }
func (e *OrExpr) Op() opt.Operator                { return opt.OrOp }
func (e *OrExpr) ChildCount() int                 { return 2 }
func (e *OrExpr) Child(nth int) ScalarExpr        { return binaryChild(e, e.Left, e.Right, nth) }
func (e *OrExpr) DataType() *types.T              { return types.Bool }
func (e *NotExpr) Op() opt.Operator               { return opt.NotOp }
func (e *NotExpr) ChildCount() int                { return 1 }
func (e *NotExpr) Child(nth int) ScalarExpr       { return unaryChild(e, e.Input, nth) }
func (e *NotExpr) DataType() *types.T             { return types.Bool }
func (e *IsNullExpr) Op() opt.Operator            { return opt.IsNullOp }
func (e *IsNullExpr) ChildCount() int             { return 1 }
func (e *IsNullExpr) Child(nth int) ScalarExpr    { return unaryChild(e, e.Input, nth) }
func (e *IsNullExpr) DataType() *types.T          { return types.Bool }
func (e *ComparisonExpr) Op() opt.Operator        { return e.Operator }
func (e *ComparisonExpr) ChildCount() int         { return 2 }
func (e *ComparisonExpr) Child(nth int) ScalarExpr { return binaryChild(e, e.Left, e.Right, nth) }
func (e *ComparisonExpr) DataType() *types.T      { return types.Bool }
func (e *ArithExpr) Op() opt.Operator             { return e.Operator }
func (e *ArithExpr) ChildCount() int              { return 2 }
func (e *ArithExpr) Child(nth int) ScalarExpr     { return binaryChild(e, e.Left, e.Right, nth) }
func (e *UnaryMinusExpr) Op() opt.Operator        { return opt.UnaryMinusOp }
func (e *UnaryMinusExpr) ChildCount() int         { return 1 }
func (e *UnaryMinusExpr) Child(nth int) ScalarExpr { return unaryChild(e, e.Input, nth) }
func (e *UnaryMinusExpr) DataType() *types.T      { return e.Input.DataType() }

// DataType returns the numeric type of the result: float if either operand is
// a float, otherwise decimal if either is a decimal, otherwise int.
func (e *ArithExpr) DataType() *types.T {
	l, r := e.Left.DataType().Family(), e.Right.DataType().Family()
	switch {
	case l == types.FloatFamily || r == types.FloatFamily:
		return types.Float
	case l == types.DecimalFamily || r == types.DecimalFamily:
		return types.Decimal
	}
	return types.Int
}

func binaryChild(e ScalarExpr, left, right ScalarExpr, nth int) ScalarExpr {
	switch nth {
	case 0:
		return left
	case 1:
		return right
	}
	panic(errChildOutOfRange(e, nth))
}

func unaryChild(e ScalarExpr, input ScalarExpr, nth int) ScalarExpr {
	if nth == 0 {
		return input
	}
	panic(errChildOutOfRange(e, nth))
}

// ScalarEquals returns true if the two scalar trees are structurally
// identical: same operators, same columns and equal constants of the same
// type. Nil is only equal to nil.
func ScalarEquals(a, b ScalarExpr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Op() != b.Op() || a.ChildCount() != b.ChildCount() {
		return false
	}
	switch t := a.(type) {
	case *VariableExpr:
		return t.Col == b.(*VariableExpr).Col
	case *ConstExpr:
		return datumsEqual(t.Value, b.(*ConstExpr).Value)
	}
	for i, n := 0, a.ChildCount(); i < n; i++ {
		if !ScalarEquals(a.Child(i), b.Child(i)) {
			return false
		}
	}
	return true
}

// datumsEqual is true if both datums have identical types and compare equal.
// Two NULLs are equal.
func datumsEqual(a, b tree.Datum) bool {
	if !a.ResolvedType().Identical(b.ResolvedType()) {
		return false
	}
	return a.Compare(b) == 0
}

// checkScalar returns an error marked with opt.ErrInvalidOperator if the tree
// has a missing operand, an unknown or untyped column reference, a constant
// without a value or a mistagged comparison or arithmetic node. what names
// the tree in the error.
func checkScalar(op opt.Operator, what string, e ScalarExpr) error {
	if isNilScalar(e) {
		return opt.NewInvalidOperatorErrorf(op, "%s has a missing operand", what)
	}
	switch t := e.(type) {
	case *VariableExpr:
		if t.Col == 0 {
			return opt.NewInvalidOperatorErrorf(op, "%s references an unknown column", what)
		}
		if t.Typ == nil {
			return opt.NewInvalidOperatorErrorf(op, "%s references column %d with no type", what, t.Col)
		}
		return nil
	case *ConstExpr:
		if t.Value == nil {
			return opt.NewInvalidOperatorErrorf(op, "%s has a constant with no value", what)
		}
		return nil
	case *ComparisonExpr:
		if !t.Operator.IsComparison() {
			return opt.NewInvalidOperatorErrorf(op, "%s: %s is not a comparison", what, t.Operator)
		}
	case *ArithExpr:
		if !t.Operator.IsArithmetic() {
			return opt.NewInvalidOperatorErrorf(op, "%s: %s is not an arithmetic operator", what, t.Operator)
		}
	}
	for i, n := 0, e.ChildCount(); i < n; i++ {
		if err := checkScalar(op, what, e.Child(i)); err != nil {
			return err
		}
	}
	return nil
}

// isNilScalar is true for a nil interface and for a nil pointer of any
// scalar kind.
func isNilScalar(e ScalarExpr) bool {
	switch t := e.(type) {
	case nil:
		return true
	case *VariableExpr:
		return t == nil
	case *ConstExpr:
		return t == nil
	case *AndExpr:
		return t == nil
	case *OrExpr:
		return t == nil
	case *NotExpr:
		return t == nil
	case *IsNullExpr:
		return t == nil
	case *ComparisonExpr:
		return t == nil
	case *ArithExpr:
		return t == nil
	case *UnaryMinusExpr:
		return t == nil
	}
	return false
}

// OuterCols returns the set of columns referenced by the scalar expression.
func OuterCols(e ScalarExpr) opt.ColSet {
	var cols opt.ColSet
	collectOuterCols(e, &cols)
	return cols
}

func collectOuterCols(e ScalarExpr, cols *opt.ColSet) {
	if e == nil {
		return
	}
	if v, ok := e.(*VariableExpr); ok {
		cols.Add(int(v.Col))
		return
	}
	for i, n := 0, e.ChildCount(); i < n; i++ {
		collectOuterCols(e.Child(i), cols)
	}
}

// hashScalarShallow folds the root operator of e and the operators of its
// immediate operands into h. Leaf values are hashed in full. Deeper levels
// are left to Equals; the digest only needs to agree for equal trees.
func hashScalarShallow(h uint64, e ScalarExpr) uint64 {
	if e == nil {
		return util.FNV64AddToHash(h, 0)
	}
	h = hashScalarLeaf(h, e)
	for i, n := 0, e.ChildCount(); i < n; i++ {
		h = hashScalarLeaf(h, e.Child(i))
	}
	return h
}

func hashScalarLeaf(h uint64, e ScalarExpr) uint64 {
	h = util.FNV64AddToHash(h, int32(e.Op()))
	switch t := e.(type) {
	case *VariableExpr:
		h = util.FNV64AddToHash(h, int32(t.Col))
	case *ConstExpr:
		h = hashDatum(h, t.Value)
	}
	return h
}

// hashDatum folds d into h. Datums that compare equal hash equal, so numbers
// are hashed in a canonical form rather than by their literal text.
func hashDatum(h uint64, d tree.Datum) uint64 {
	h = util.FNV64AddUint64(h, uint64(d.ResolvedType().Oid()))
	switch t := d.(type) {
	case *tree.DFloat:
		f := float64(*t)
		switch {
		case math.IsNaN(f):
			return util.FNV64AddString(h, "NaN")
		case f == 0:
			// -0 compares equal to 0.
			f = 0
		}
		return util.FNV64AddUint64(h, math.Float64bits(f))
	case *tree.DDecimal:
		return util.FNV64AddString(h, canonicalDecimal(&t.Decimal))
	case *tree.DArray:
		h = util.FNV64AddUint64(h, uint64(t.Len()))
		for _, e := range t.Array {
			h = hashDatum(h, e)
		}
		return h
	}
	return util.FNV64AddString(h, d.String())
}

// canonicalDecimal returns the same string for every decimal that compares
// equal to d: trailing zeros are removed and all zeros and NaNs collapse.
func canonicalDecimal(d *apd.Decimal) string {
	switch {
	case d.Form == apd.NaN || d.Form == apd.NaNSignaling:
		return "NaN"
	case d.IsZero():
		return "0"
	}
	var r apd.Decimal
	r.Reduce(d)
	return r.Text('e')
}
