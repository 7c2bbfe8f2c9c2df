// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
)

// HashJoinOp joins its two inputs on equality of LeftEq[i] and RightEq[i].
type HashJoinOp struct {
	physicalBase
	joinType JoinType
	leftEq   opt.ColList
	rightEq  opt.ColList
}

var _ PhysicalOperator = &HashJoinOp{}

// NewHashJoinOp returns a hash join. The equality column lists must be
// non-empty and of equal length.
func NewHashJoinOp(
	joinType JoinType, leftEq, rightEq opt.ColList, attrs Attrs,
) (*HashJoinOp, error) {
	if len(leftEq) == 0 || len(leftEq) != len(rightEq) {
		return nil, opt.NewInvalidOperatorErrorf(opt.HashJoinOp,
			"mismatched equality columns %s and %s", leftEq, rightEq)
	}
	for i := range leftEq {
		if leftEq[i] == 0 || rightEq[i] == 0 {
			return nil, opt.NewInvalidOperatorErrorf(opt.HashJoinOp, "equality on unknown column")
		}
	}
	if err := attrs.checkWellFormed(opt.HashJoinOp); err != nil {
		return nil, err
	}
	j := &HashJoinOp{joinType: joinType, leftEq: leftEq.Copy(), rightEq: rightEq.Copy()}
	j.attrs = attrs
	h := newHasher(opt.HashJoinOp, attrs)
	h.addInt(int(joinType))
	h.addColList(leftEq)
	h.addColList(rightEq)
	j.hash = h.h
	return j, nil
}

// Op is part of the PhysicalOperator interface.
func (j *HashJoinOp) Op() opt.Operator { return opt.HashJoinOp }

// JoinType returns the type of join.
func (j *HashJoinOp) JoinType() JoinType { return j.joinType }

// LeftEq returns a copy of the left equality columns.
func (j *HashJoinOp) LeftEq() opt.ColList { return j.leftEq.Copy() }

// RightEq returns a copy of the right equality columns.
func (j *HashJoinOp) RightEq() opt.ColList { return j.rightEq.Copy() }

// Equals is part of the PhysicalOperator interface.
func (j *HashJoinOp) Equals(other PhysicalOperator) bool {
	o, ok := sameKind[*HashJoinOp](other)
	return ok && j.joinType == o.joinType && j.leftEq.Equals(o.leftEq) &&
		j.rightEq.Equals(o.rightEq) && j.attrs.Equals(o.attrs)
}

func (j *HashJoinOp) accept(d dispatcher) { d.visitHashJoin(j) }

// MergeJoinOp joins two inputs sorted on the given orderings. The ith
// columns of both orderings are compared for equality.
type MergeJoinOp struct {
	physicalBase
	joinType      JoinType
	leftOrdering  opt.Ordering
	rightOrdering opt.Ordering
}

var _ PhysicalOperator = &MergeJoinOp{}

// NewMergeJoinOp returns a merge join. Both orderings must be valid, non-empty
// and have the same length and directions.
func NewMergeJoinOp(
	joinType JoinType, leftOrdering, rightOrdering opt.Ordering, attrs Attrs,
) (*MergeJoinOp, error) {
	if len(leftOrdering) == 0 || len(leftOrdering) != len(rightOrdering) {
		return nil, opt.NewInvalidOperatorErrorf(opt.MergeJoinOp,
			"mismatched orderings %s and %s", leftOrdering, rightOrdering)
	}
	for _, o := range []opt.Ordering{leftOrdering, rightOrdering} {
		if err := o.Validate(); err != nil {
			return nil, opt.NewInvalidOperatorErrorf(opt.MergeJoinOp, "%v", err)
		}
	}
	for i := range leftOrdering {
		if leftOrdering[i].Descending() != rightOrdering[i].Descending() {
			return nil, opt.NewInvalidOperatorErrorf(opt.MergeJoinOp,
				"ordering directions differ on column %d", i)
		}
	}
	if err := attrs.checkWellFormed(opt.MergeJoinOp); err != nil {
		return nil, err
	}
	j := &MergeJoinOp{
		joinType:      joinType,
		leftOrdering:  append(opt.Ordering(nil), leftOrdering...),
		rightOrdering: append(opt.Ordering(nil), rightOrdering...),
	}
	j.attrs = attrs
	h := newHasher(opt.MergeJoinOp, attrs)
	h.addInt(int(joinType))
	h.addOrdering(leftOrdering)
	h.addOrdering(rightOrdering)
	j.hash = h.h
	return j, nil
}

// Op is part of the PhysicalOperator interface.
func (j *MergeJoinOp) Op() opt.Operator { return opt.MergeJoinOp }

// JoinType returns the type of join.
func (j *MergeJoinOp) JoinType() JoinType { return j.joinType }

// LeftOrdering returns a copy of the ordering of the left input.
func (j *MergeJoinOp) LeftOrdering() opt.Ordering {
	return append(opt.Ordering(nil), j.leftOrdering...)
}

// RightOrdering returns a copy of the ordering of the right input.
func (j *MergeJoinOp) RightOrdering() opt.Ordering {
	return append(opt.Ordering(nil), j.rightOrdering...)
}

// Equals is part of the PhysicalOperator interface.
func (j *MergeJoinOp) Equals(other PhysicalOperator) bool {
	o, ok := sameKind[*MergeJoinOp](other)
	return ok && j.joinType == o.joinType && j.leftOrdering.Equals(o.leftOrdering) &&
		j.rightOrdering.Equals(o.rightOrdering) && j.attrs.Equals(o.attrs)
}

func (j *MergeJoinOp) accept(d dispatcher) { d.visitMergeJoin(j) }

// NestedLoopJoinOp evaluates On against every pair of input rows. A nil On
// condition is a cross join.
type NestedLoopJoinOp struct {
	physicalBase
	joinType JoinType
	on       ScalarExpr
}

var _ PhysicalOperator = &NestedLoopJoinOp{}

// NewNestedLoopJoinOp returns a nested loop join.
func NewNestedLoopJoinOp(joinType JoinType, on ScalarExpr, attrs Attrs) (*NestedLoopJoinOp, error) {
	if on != nil {
		if err := checkScalar(opt.NestedLoopJoinOp, "join condition", on); err != nil {
			return nil, err
		}
	}
	if err := attrs.checkWellFormed(opt.NestedLoopJoinOp); err != nil {
		return nil, err
	}
	if on != nil && on.DataType().Family() != types.BoolFamily {
		return nil, opt.NewInvalidOperatorErrorf(opt.NestedLoopJoinOp,
			"join condition must be of type bool, found %s", on.DataType())
	}
	j := &NestedLoopJoinOp{joinType: joinType, on: on}
	j.attrs = attrs
	h := newHasher(opt.NestedLoopJoinOp, attrs)
	h.addInt(int(joinType))
	h.addScalar(on)
	j.hash = h.h
	return j, nil
}

// Op is part of the PhysicalOperator interface.
func (j *NestedLoopJoinOp) Op() opt.Operator { return opt.NestedLoopJoinOp }

// JoinType returns the type of join.
func (j *NestedLoopJoinOp) JoinType() JoinType { return j.joinType }

// On returns the join condition, or nil for a cross join.
func (j *NestedLoopJoinOp) On() ScalarExpr { return j.on }

// Equals is part of the PhysicalOperator interface.
func (j *NestedLoopJoinOp) Equals(other PhysicalOperator) bool {
	o, ok := sameKind[*NestedLoopJoinOp](other)
	return ok && j.joinType == o.joinType && ScalarEquals(j.on, o.on) && j.attrs.Equals(o.attrs)
}

func (j *NestedLoopJoinOp) accept(d dispatcher) { d.visitNestedLoopJoin(j) }
