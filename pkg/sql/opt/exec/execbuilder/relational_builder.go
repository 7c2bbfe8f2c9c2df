// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package execbuilder

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/rowexec"
	"github.com/cockroachdb/physopt/pkg/util/log"
)

type execPlan struct {
	root rowexec.RowSource
}

// outputCols returns the columns of the rows emitted by the plan.
func (ep execPlan) outputCols() opt.ColList {
	return ep.root.OutputCols()
}

// relationalBuilder builds the processor for the operator at each position of
// the tree. It panics with an error if the operator cannot be executed.
type relationalBuilder struct {
	b *Builder
}

var _ memo.ExprVisitor[execPlan, struct{}] = relationalBuilder{}

func (b *Builder) buildRelational(e *memo.Expr) execPlan {
	ep := memo.AcceptExpr[execPlan](e, relationalBuilder{b: b}, struct{}{})
	if want := memo.OutputCols(e); !ep.outputCols().Equals(want) {
		panic(errors.AssertionFailedf(
			"%s processor emits %s, expected %s", e.Op(), ep.outputCols(), want))
	}
	b.processors++
	log.VEventf(b.ctx, 2, "built %s processor for %s", e.Op(), ep.outputCols())
	return ep
}

func (rb relationalBuilder) VisitScan(_ *memo.Expr, op *memo.ScanOp, _ struct{}) execPlan {
	return makePlan(rowexec.NewTableReader(op))
}

func (rb relationalBuilder) VisitValues(_ *memo.Expr, op *memo.ValuesOp, _ struct{}) execPlan {
	return makePlan(rowexec.NewValuesProcessor(op))
}

func (rb relationalBuilder) VisitHashJoin(_ *memo.Expr, op *memo.HashJoinOp, _ struct{}) execPlan {
	panic(unsupportedOperatorError(op))
}

func (rb relationalBuilder) VisitMergeJoin(_ *memo.Expr, op *memo.MergeJoinOp, _ struct{}) execPlan {
	panic(unsupportedOperatorError(op))
}

func (rb relationalBuilder) VisitNestedLoopJoin(
	_ *memo.Expr, op *memo.NestedLoopJoinOp, _ struct{},
) execPlan {
	panic(unsupportedOperatorError(op))
}

func (rb relationalBuilder) VisitHashGroupBy(
	_ *memo.Expr, op *memo.HashGroupByOp, _ struct{},
) execPlan {
	panic(unsupportedOperatorError(op))
}

func (rb relationalBuilder) VisitStreamGroupBy(
	_ *memo.Expr, op *memo.StreamGroupByOp, _ struct{},
) execPlan {
	panic(unsupportedOperatorError(op))
}

func (rb relationalBuilder) VisitSort(e *memo.Expr, op *memo.SortOp, _ struct{}) execPlan {
	input := rb.b.buildRelational(e.Child(0))
	return makePlan(rowexec.NewSorter(op, input.root))
}

func (rb relationalBuilder) VisitTableFunction(
	e *memo.Expr, op *memo.TableFunctionOp, _ struct{},
) execPlan {
	input := rb.b.buildRelational(e.Child(0))
	return makePlan(rowexec.NewTableFunctionProcessor(op, input.root))
}

func makePlan(root rowexec.RowSource, err error) execPlan {
	if err != nil {
		panic(err)
	}
	return execPlan{root: root}
}

func unsupportedOperatorError(op memo.PhysicalOperator) error {
	return errors.UnimplementedErrorf(errors.IssueLink{},
		"execution of %s is not supported", op.Op())
}
