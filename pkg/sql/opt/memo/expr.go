// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
)

// GroupID identifies a memo group. Zero means the expression has not been
// added to a memo.
type GroupID uint32

// SafeValue implements redact.SafeValue.
func (GroupID) SafeValue() {}

// Expr is a node of a physical plan tree: an operator together with its
// inputs. An Expr wraps an operator with its position in the tree; the
// operator itself knows nothing about its inputs. Exprs are immutable apart
// from the memo group recorded by Memo.MemoizeExpr.
type Expr struct {
	op     PhysicalOperator
	inputs []*Expr
	group  GroupID
}

// NewExpr returns an expression for op with the given inputs. The number of
// inputs must match the operator kind.
func NewExpr(op PhysicalOperator, inputs ...*Expr) (*Expr, error) {
	if op == nil {
		return nil, errors.AssertionFailedf("expression has no operator")
	}
	if n := op.Op().ChildCount(); n != len(inputs) {
		return nil, opt.NewInvalidOperatorErrorf(op.Op(),
			"expected %d inputs, found %d", n, len(inputs))
	}
	for i, in := range inputs {
		if in == nil {
			return nil, opt.NewInvalidOperatorErrorf(op.Op(), "input %d is nil", i)
		}
	}
	return &Expr{op: op, inputs: append([]*Expr(nil), inputs...)}, nil
}

// Operator returns the physical operator.
func (e *Expr) Operator() PhysicalOperator { return e.op }

// Op returns the type tag of the operator.
func (e *Expr) Op() opt.Operator { return e.op.Op() }

// ChildCount returns the number of inputs.
func (e *Expr) ChildCount() int { return len(e.inputs) }

// Child returns the nth input.
func (e *Expr) Child(nth int) *Expr {
	if nth < 0 || nth >= len(e.inputs) {
		panic(errChildOutOfRange(e.op.Op(), nth))
	}
	return e.inputs[nth]
}

// Group returns the memo group of the expression, or 0 if it has not been
// memoized.
func (e *Expr) Group() GroupID { return e.group }

// Equals returns true if the two trees have equal operators at every
// position.
func (e *Expr) Equals(other *Expr) bool {
	if e == other {
		return true
	}
	if e == nil || other == nil || len(e.inputs) != len(other.inputs) {
		return false
	}
	if !e.op.Equals(other.op) {
		return false
	}
	for i := range e.inputs {
		if !e.inputs[i].Equals(other.inputs[i]) {
			return false
		}
	}
	return true
}

// String formats the tree without column names.
func (e *Expr) String() string {
	return FormatExpr(e, nil, ExprFmtShowAll)
}

type opLike interface {
	Op() opt.Operator
}

func errChildOutOfRange(e interface{}, nth int) error {
	if o, ok := e.(opLike); ok {
		e = o.Op()
	}
	return errors.AssertionFailedf("child %d out of range for %v", nth, e)
}
