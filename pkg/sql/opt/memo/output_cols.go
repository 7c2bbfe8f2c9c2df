// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import "github.com/cockroachdb/physopt/pkg/sql/opt"

// OutputCols returns the columns emitted by the root of the tree, in order.
// The result is a fresh slice.
func OutputCols(e *Expr) opt.ColList {
	return e.Operator().Attrs().OutputCols(ProducedCols(e))
}

// ProducedCols returns the columns the root of the tree produces before its
// attributes are applied.
func ProducedCols(e *Expr) opt.ColList {
	return AcceptExpr[opt.ColList](e, producedColsBuilder{}, struct{}{})
}

// producedColsBuilder derives the columns produced by each operator kind from
// its fields and the output of its inputs.
type producedColsBuilder struct{}

var _ ExprVisitor[opt.ColList, struct{}] = producedColsBuilder{}

func (producedColsBuilder) VisitScan(_ *Expr, op *ScanOp, _ struct{}) opt.ColList {
	return op.Cols()
}

func (producedColsBuilder) VisitValues(_ *Expr, op *ValuesOp, _ struct{}) opt.ColList {
	return op.Cols()
}

func (producedColsBuilder) VisitHashJoin(e *Expr, op *HashJoinOp, _ struct{}) opt.ColList {
	return joinOutputCols(op.joinType, OutputCols(e.Child(0)), OutputCols(e.Child(1)))
}

func (producedColsBuilder) VisitMergeJoin(e *Expr, op *MergeJoinOp, _ struct{}) opt.ColList {
	return joinOutputCols(op.joinType, OutputCols(e.Child(0)), OutputCols(e.Child(1)))
}

func (producedColsBuilder) VisitNestedLoopJoin(
	e *Expr, op *NestedLoopJoinOp, _ struct{},
) opt.ColList {
	return joinOutputCols(op.joinType, OutputCols(e.Child(0)), OutputCols(e.Child(1)))
}

func (producedColsBuilder) VisitHashGroupBy(_ *Expr, op *HashGroupByOp, _ struct{}) opt.ColList {
	return op.ProducedCols()
}

func (producedColsBuilder) VisitStreamGroupBy(
	_ *Expr, op *StreamGroupByOp, _ struct{},
) opt.ColList {
	return op.ProducedCols()
}

func (producedColsBuilder) VisitSort(e *Expr, _ *SortOp, _ struct{}) opt.ColList {
	return OutputCols(e.Child(0))
}

func (producedColsBuilder) VisitTableFunction(
	_ *Expr, op *TableFunctionOp, _ struct{},
) opt.ColList {
	return op.ProducedCols()
}
