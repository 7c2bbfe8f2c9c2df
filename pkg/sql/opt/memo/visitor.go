// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import "github.com/cockroachdb/errors"

// OperatorVisitor has one method per physical operator kind. Accept calls
// exactly one of them, the one matching the operator's kind, and returns its
// result. C is an arbitrary context value threaded through to the method.
type OperatorVisitor[R, C any] interface {
	VisitScan(op *ScanOp, ctx C) R
	VisitValues(op *ValuesOp, ctx C) R
	VisitHashJoin(op *HashJoinOp, ctx C) R
	VisitMergeJoin(op *MergeJoinOp, ctx C) R
	VisitNestedLoopJoin(op *NestedLoopJoinOp, ctx C) R
	VisitHashGroupBy(op *HashGroupByOp, ctx C) R
	VisitStreamGroupBy(op *StreamGroupByOp, ctx C) R
	VisitSort(op *SortOp, ctx C) R
	VisitTableFunction(op *TableFunctionOp, ctx C) R
}

// ExprVisitor is like OperatorVisitor, except that each method also receives
// the expression that holds the operator, which gives access to its inputs
// and memo group.
type ExprVisitor[R, C any] interface {
	VisitScan(e *Expr, op *ScanOp, ctx C) R
	VisitValues(e *Expr, op *ValuesOp, ctx C) R
	VisitHashJoin(e *Expr, op *HashJoinOp, ctx C) R
	VisitMergeJoin(e *Expr, op *MergeJoinOp, ctx C) R
	VisitNestedLoopJoin(e *Expr, op *NestedLoopJoinOp, ctx C) R
	VisitHashGroupBy(e *Expr, op *HashGroupByOp, ctx C) R
	VisitStreamGroupBy(e *Expr, op *StreamGroupByOp, ctx C) R
	VisitSort(e *Expr, op *SortOp, ctx C) R
	VisitTableFunction(e *Expr, op *TableFunctionOp, ctx C) R
}

// Accept dispatches op to the visitor method for its kind. Visiting does not
// recurse into inputs; visitors that need to walk a tree do so explicitly.
// Accept panics with an assertion failure if op is nil.
func Accept[R, C any](op PhysicalOperator, v OperatorVisitor[R, C], ctx C) R {
	if op == nil {
		panic(errors.AssertionFailedf("dispatch of nil operator"))
	}
	d := opDispatcher[R, C]{v: v, ctx: ctx}
	op.accept(&d)
	return d.res
}

// AcceptExpr dispatches the operator held by e to the visitor method for its
// kind, passing e along with it. It panics with an assertion failure if e or
// its operator is nil.
func AcceptExpr[R, C any](e *Expr, v ExprVisitor[R, C], ctx C) R {
	if e == nil || e.op == nil {
		panic(errors.AssertionFailedf("dispatch of nil expression"))
	}
	d := exprDispatcher[R, C]{e: e, v: v, ctx: ctx}
	e.op.accept(&d)
	return d.res
}

// dispatcher is the non-generic half of the visitor protocol. Each operator
// kind calls exactly its own method from accept.
type dispatcher interface {
	visitScan(op *ScanOp)
	visitValues(op *ValuesOp)
	visitHashJoin(op *HashJoinOp)
	visitMergeJoin(op *MergeJoinOp)
	visitNestedLoopJoin(op *NestedLoopJoinOp)
	visitHashGroupBy(op *HashGroupByOp)
	visitStreamGroupBy(op *StreamGroupByOp)
	visitSort(op *SortOp)
	visitTableFunction(op *TableFunctionOp)
}

type opDispatcher[R, C any] struct {
	v   OperatorVisitor[R, C]
	ctx C
	res R
}

var _ dispatcher = &opDispatcher[int, int]{}

func (d *opDispatcher[R, C]) visitScan(op *ScanOp)     { d.res = d.v.VisitScan(op, d.ctx) }
func (d *opDispatcher[R, C]) visitValues(op *ValuesOp) { d.res = d.v.VisitValues(op, d.ctx) }
func (d *opDispatcher[R, C]) visitHashJoin(op *HashJoinOp) {
	d.res = d.v.VisitHashJoin(op, d.ctx)
}
func (d *opDispatcher[R, C]) visitMergeJoin(op *MergeJoinOp) {
	d.res = d.v.VisitMergeJoin(op, d.ctx)
}
func (d *opDispatcher[R, C]) visitNestedLoopJoin(op *NestedLoopJoinOp) {
	d.res = d.v.VisitNestedLoopJoin(op, d.ctx)
}
func (d *opDispatcher[R, C]) visitHashGroupBy(op *HashGroupByOp) {
	d.res = d.v.VisitHashGroupBy(op, d.ctx)
}
func (d *opDispatcher[R, C]) visitStreamGroupBy(op *StreamGroupByOp) {
	d.res = d.v.VisitStreamGroupBy(op, d.ctx)
}
func (d *opDispatcher[R, C]) visitSort(op *SortOp) { d.res = d.v.VisitSort(op, d.ctx) }
func (d *opDispatcher[R, C]) visitTableFunction(op *TableFunctionOp) {
	d.res = d.v.VisitTableFunction(op, d.ctx)
}

type exprDispatcher[R, C any] struct {
	e   *Expr
	v   ExprVisitor[R, C]
	ctx C
	res R
}

var _ dispatcher = &exprDispatcher[int, int]{}

func (d *exprDispatcher[R, C]) visitScan(op *ScanOp) { d.res = d.v.VisitScan(d.e, op, d.ctx) }
func (d *exprDispatcher[R, C]) visitValues(op *ValuesOp) {
	d.res = d.v.VisitValues(d.e, op, d.ctx)
}
func (d *exprDispatcher[R, C]) visitHashJoin(op *HashJoinOp) {
	d.res = d.v.VisitHashJoin(d.e, op, d.ctx)
}
func (d *exprDispatcher[R, C]) visitMergeJoin(op *MergeJoinOp) {
	d.res = d.v.VisitMergeJoin(d.e, op, d.ctx)
}
func (d *exprDispatcher[R, C]) visitNestedLoopJoin(op *NestedLoopJoinOp) {
	d.res = d.v.VisitNestedLoopJoin(d.e, op, d.ctx)
}
func (d *exprDispatcher[R, C]) visitHashGroupBy(op *HashGroupByOp) {
	d.res = d.v.VisitHashGroupBy(d.e, op, d.ctx)
}
func (d *exprDispatcher[R, C]) visitStreamGroupBy(op *StreamGroupByOp) {
	d.res = d.v.VisitStreamGroupBy(d.e, op, d.ctx)
}
func (d *exprDispatcher[R, C]) visitSort(op *SortOp) { d.res = d.v.VisitSort(d.e, op, d.ctx) }
func (d *exprDispatcher[R, C]) visitTableFunction(op *TableFunctionOp) {
	d.res = d.v.VisitTableFunction(d.e, op, d.ctx)
}
