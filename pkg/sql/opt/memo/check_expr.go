// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
)

// CheckExpr validates a plan tree as a whole. Operators validate their own
// fields when they are constructed; CheckExpr verifies what depends on the
// tree around them:
//
//   - every column an operator or its attributes refer to is emitted by its
//     inputs or produced by the operator itself;
//   - table function outer and parameter columns come from the input, while
//     result columns don't;
//   - every column is introduced by exactly one operator in the tree;
//   - if md is not nil, column types agree with the metadata and with the
//     signature of every called function.
//
// The returned error is marked with ErrInvalidPlan.
func CheckExpr(md *opt.Metadata, e *Expr) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Mark(opt.CatchOptimizerError(r), ErrInvalidPlan)
		}
	}()
	c := exprChecker{md: md, producers: make(map[opt.ColumnID]opt.Operator)}
	return c.check(e)
}

type exprChecker struct {
	md        *opt.Metadata
	producers map[opt.ColumnID]opt.Operator
}

func (c *exprChecker) check(e *Expr) error {
	for i := range e.inputs {
		if err := c.check(e.inputs[i]); err != nil {
			return err
		}
	}
	if err := AcceptExpr[error](e, c, struct{}{}); err != nil {
		return err
	}
	produced := ProducedCols(e)
	attrs := e.op.Attrs()
	if err := attrs.Validate(e.Op(), produced); err != nil {
		return errors.Mark(err, ErrInvalidPlan)
	}
	if attrs.Projection != nil {
		for i := range attrs.Projection.items {
			if !attrs.Projection.IsPassthrough(i) {
				if err := c.introduce(e.Op(), attrs.Projection.items[i].Col); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// introduce records op as the producer of the given columns.
func (c *exprChecker) introduce(op opt.Operator, cols ...opt.ColumnID) error {
	for _, col := range cols {
		if prev, ok := c.producers[col]; ok {
			return invalidPlanf("column %d is produced by both %s and %s", col, prev, op)
		}
		c.producers[col] = op
	}
	return nil
}

func (c *exprChecker) checkSubset(op opt.Operator, what string, cols opt.ColList, avail opt.ColList) error {
	availSet := avail.ToSet()
	for _, col := range cols {
		if !availSet.Contains(int(col)) {
			return invalidPlanf("%s: %s column %d is not an input column", op, what, col)
		}
	}
	return nil
}

func (c *exprChecker) checkDatumTypes(op opt.Operator, cols opt.ColList, row tree.Datums) error {
	if c.md == nil {
		return nil
	}
	for i, d := range row {
		if d == tree.DNull || !c.md.HasColumn(cols[i]) {
			continue
		}
		if want := c.md.ColumnMeta(cols[i]).Type; !d.ResolvedType().Equivalent(want) {
			return invalidPlanf("%s: value %s does not match type %s of column %d",
				op, d, want, cols[i])
		}
	}
	return nil
}

var _ ExprVisitor[error, struct{}] = &exprChecker{}

func (c *exprChecker) VisitScan(_ *Expr, op *ScanOp, _ struct{}) error {
	if c.md != nil {
		for i, col := range op.cols {
			if !c.md.HasColumn(col) {
				continue
			}
			want := op.table.Column(i).Type
			if got := c.md.ColumnMeta(col).Type; !got.Equivalent(want) {
				return invalidPlanf("scan: column %d has type %s, table column %q has type %s",
					col, got, op.table.Column(i).Name, want)
			}
		}
	}
	return c.introduce(opt.ScanOp, op.cols...)
}

func (c *exprChecker) VisitValues(_ *Expr, op *ValuesOp, _ struct{}) error {
	for _, row := range op.rows {
		if err := c.checkDatumTypes(opt.ValuesOp, op.cols, row); err != nil {
			return err
		}
	}
	return c.introduce(opt.ValuesOp, op.cols...)
}

func (c *exprChecker) VisitHashJoin(e *Expr, op *HashJoinOp, _ struct{}) error {
	if err := c.checkSubset(opt.HashJoinOp, "left equality", op.leftEq, OutputCols(e.Child(0))); err != nil {
		return err
	}
	return c.checkSubset(opt.HashJoinOp, "right equality", op.rightEq, OutputCols(e.Child(1)))
}

func (c *exprChecker) VisitMergeJoin(e *Expr, op *MergeJoinOp, _ struct{}) error {
	left, right := op.leftOrdering.ColList(), op.rightOrdering.ColList()
	if err := c.checkSubset(opt.MergeJoinOp, "left ordering", left, OutputCols(e.Child(0))); err != nil {
		return err
	}
	return c.checkSubset(opt.MergeJoinOp, "right ordering", right, OutputCols(e.Child(1)))
}

func (c *exprChecker) VisitNestedLoopJoin(e *Expr, op *NestedLoopJoinOp, _ struct{}) error {
	if op.on == nil {
		return nil
	}
	both := joinOutputCols(InnerJoin, OutputCols(e.Child(0)), OutputCols(e.Child(1)))
	return c.checkSubset(opt.NestedLoopJoinOp, "join condition", opt.ColSetToList(OuterCols(op.on)), both)
}

func (c *exprChecker) VisitHashGroupBy(e *Expr, op *HashGroupByOp, _ struct{}) error {
	return c.checkGroupBy(opt.HashGroupByOp, &op.groupByDef, OutputCols(e.Child(0)))
}

func (c *exprChecker) VisitStreamGroupBy(e *Expr, op *StreamGroupByOp, _ struct{}) error {
	return c.checkGroupBy(opt.StreamGroupByOp, &op.groupByDef, OutputCols(e.Child(0)))
}

func (c *exprChecker) checkGroupBy(op opt.Operator, g *groupByDef, input opt.ColList) error {
	if err := c.checkSubset(op, "grouping", g.grouping, input); err != nil {
		return err
	}
	for _, a := range g.aggs {
		if !a.Func.HasArg() {
			continue
		}
		if err := c.checkSubset(op, a.Func.String()+" argument", opt.ColList{a.Arg}, input); err != nil {
			return err
		}
	}
	for _, a := range g.aggs {
		if err := c.introduce(op, a.Col); err != nil {
			return err
		}
	}
	return nil
}

func (c *exprChecker) VisitSort(e *Expr, op *SortOp, _ struct{}) error {
	return c.checkSubset(opt.SortOp, "ordering", op.ordering.ColList(), OutputCols(e.Child(0)))
}

func (c *exprChecker) VisitTableFunction(e *Expr, op *TableFunctionOp, _ struct{}) error {
	const kind = opt.TableFunctionOp
	input := OutputCols(e.Child(0))
	if err := c.checkSubset(kind, "outer", op.outerCols, input); err != nil {
		return err
	}
	if err := c.checkSubset(kind, "parameter", op.paramCols, input); err != nil {
		return err
	}
	if overlap := op.resultCols.ToSet().Intersection(input.ToSet()); !overlap.Empty() {
		return invalidPlanf("%s: result columns %s are also input columns", kind, overlap)
	}
	if c.md != nil {
		for i, col := range op.paramCols {
			if !c.md.HasColumn(col) {
				continue
			}
			got, want := c.md.ColumnMeta(col).Type, op.fn.ParamType(i)
			if !got.Equivalent(want) {
				return invalidPlanf("%s: argument %d of %s must be %s, found column %d of type %s",
					kind, i+1, op.fn, want, col, got)
			}
		}
		for i, col := range op.resultCols {
			if !c.md.HasColumn(col) {
				continue
			}
			got, want := c.md.ColumnMeta(col).Type, op.fn.ResultColumn(i).Type
			if !got.Equivalent(want) {
				return invalidPlanf("%s: result %q of %s has type %s, found column %d of type %s",
					kind, op.fn.ResultColumn(i).Name, op.fn, want, col, got)
			}
		}
	}
	return c.introduce(kind, op.resultCols...)
}

func invalidPlanf(format string, args ...interface{}) error {
	return errors.Mark(errors.NewWithDepthf(1, format, args...), ErrInvalidPlan)
}
