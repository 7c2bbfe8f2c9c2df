// Copyright 2020 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package explain

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/util/log"
	humanize "github.com/dustin/go-humanize"
)

// Emit produces the EXPLAIN output of the plan rooted at e against the given
// OutputBuilder. The OutputBuilder flags are taken into account. The
// metadata is used to name columns and may be nil.
func Emit(ctx context.Context, md *opt.Metadata, e *memo.Expr, ob *OutputBuilder) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = opt.CatchOptimizerError(r)
		}
	}()
	if e == nil {
		return errors.AssertionFailedf("explain of nil expression")
	}
	em := makeEmitter(ob, md)
	var walk func(e *memo.Expr)
	walk = func(e *memo.Expr) {
		name := memo.Accept[string](e.Operator(), nodeNamer{}, struct{}{})
		ob.EnterNode(name, em.resultColumns(memo.OutputCols(e)))
		memo.Accept[struct{}](e.Operator(), &em, struct{}{})
		em.emitAttrs(e.Operator().Attrs())
		for i := 0; i < e.ChildCount(); i++ {
			walk(e.Child(i))
		}
		ob.LeaveNode()
	}
	walk(e)
	log.VEventf(ctx, 2, "emitted %d explain entries", len(ob.entries))
	return nil
}

// nodeNamer returns the name of the EXPLAIN node for an operator.
type nodeNamer struct{}

var _ memo.OperatorVisitor[string, struct{}] = nodeNamer{}

func (nodeNamer) VisitScan(*memo.ScanOp, struct{}) string { return "scan" }

func (nodeNamer) VisitValues(op *memo.ValuesOp, _ struct{}) string {
	if op.RowCount() == 0 {
		return "norows"
	}
	return "values"
}

func (nodeNamer) VisitHashJoin(op *memo.HashJoinOp, _ struct{}) string {
	return joinNodeName("hash", op.JoinType())
}

func (nodeNamer) VisitMergeJoin(op *memo.MergeJoinOp, _ struct{}) string {
	return joinNodeName("merge", op.JoinType())
}

func (nodeNamer) VisitNestedLoopJoin(op *memo.NestedLoopJoinOp, _ struct{}) string {
	if op.On() == nil && op.JoinType() == memo.InnerJoin {
		return "cross join"
	}
	return joinNodeName("nested loop", op.JoinType())
}

func (nodeNamer) VisitHashGroupBy(*memo.HashGroupByOp, struct{}) string { return "group (hash)" }

func (nodeNamer) VisitStreamGroupBy(*memo.StreamGroupByOp, struct{}) string {
	return "group (streaming)"
}

func (nodeNamer) VisitSort(op *memo.SortOp, _ struct{}) string {
	if isTopK(op) {
		return "top-k"
	}
	return "sort"
}

func (nodeNamer) VisitTableFunction(*memo.TableFunctionOp, struct{}) string {
	return "table function"
}

func joinNodeName(algo string, joinType memo.JoinType) string {
	if joinType == memo.InnerJoin {
		return algo + " join"
	}
	return fmt.Sprintf("%s join (%s)", algo, joinType)
}

// isTopK returns true if the executor runs the sort as a top-k sort.
func isTopK(op *memo.SortOp) bool {
	attrs := op.Attrs()
	return attrs.Limit.IsSet() && attrs.Predicate == nil
}

// emitter emits the attributes of each operator kind.
type emitter struct {
	ob *OutputBuilder
	md *opt.Metadata
}

var _ memo.OperatorVisitor[struct{}, struct{}] = &emitter{}

func makeEmitter(ob *OutputBuilder, md *opt.Metadata) emitter {
	return emitter{ob: ob, md: md}
}

func (e *emitter) VisitScan(op *memo.ScanOp, _ struct{}) struct{} {
	e.ob.Attr("table", op.Table().Name())
	if n := len(op.Cols()); n < op.Table().ColumnCount() {
		e.ob.VAttr("prefix", fmt.Sprintf("%d of %d columns", n, op.Table().ColumnCount()))
	}
	return struct{}{}
}

func (e *emitter) VisitValues(op *memo.ValuesOp, _ struct{}) struct{} {
	numCols, numRows := len(op.Cols()), op.RowCount()
	e.ob.Attrf("size", "%d column%s, %s row%s",
		numCols, plural(int64(numCols)), humanize.Comma(int64(numRows)), plural(int64(numRows)))
	if e.ob.flags.Verbose {
		const maxRows = 10
		for i := 0; i < numRows; i++ {
			if i == maxRows-1 && numRows > maxRows {
				e.ob.AddField("...", "")
				i = numRows - 1
			}
			e.ob.Value(fmt.Sprintf("row %d", i), op.Row(i).String())
		}
	}
	return struct{}{}
}

func (e *emitter) VisitHashJoin(op *memo.HashJoinOp, _ struct{}) struct{} {
	e.ob.Attrf("equality", "(%s) = (%s)", e.colList(op.LeftEq()), e.colList(op.RightEq()))
	return struct{}{}
}

func (e *emitter) VisitMergeJoin(op *memo.MergeJoinOp, _ struct{}) struct{} {
	e.ob.Attr("left ordering", e.ordering(op.LeftOrdering()))
	e.ob.Attr("right ordering", e.ordering(op.RightOrdering()))
	return struct{}{}
}

func (e *emitter) VisitNestedLoopJoin(op *memo.NestedLoopJoinOp, _ struct{}) struct{} {
	if op.On() != nil {
		e.ob.Value("pred", e.scalar(op.On()))
	}
	return struct{}{}
}

func (e *emitter) VisitHashGroupBy(op *memo.HashGroupByOp, _ struct{}) struct{} {
	e.emitGroupByAttributes(op.Grouping(), op.Aggregations())
	return struct{}{}
}

func (e *emitter) VisitStreamGroupBy(op *memo.StreamGroupByOp, _ struct{}) struct{} {
	e.emitGroupByAttributes(op.Grouping(), op.Aggregations())
	e.ob.Attr("ordered", e.ordering(op.Ordering()))
	return struct{}{}
}

func (e *emitter) emitGroupByAttributes(grouping opt.ColList, aggs []memo.AggregateItem) {
	if len(grouping) > 0 {
		e.ob.Attr("group by", e.colList(grouping))
	}
	for i, a := range aggs {
		arg := ""
		if a.Func.HasArg() {
			arg = e.colName(a.Arg)
		}
		e.ob.Attrf(fmt.Sprintf("aggregate %d", i), "%s := %s(%s)", e.colName(a.Col), a.Func, arg)
	}
}

func (e *emitter) VisitSort(op *memo.SortOp, _ struct{}) struct{} {
	e.ob.Attr("order", e.ordering(op.Ordering()))
	if isTopK(op) {
		e.ob.Attr("k", humanize.Comma(op.Attrs().Limit.Rows()))
	}
	return struct{}{}
}

func (e *emitter) VisitTableFunction(op *memo.TableFunctionOp, _ struct{}) struct{} {
	e.ob.Attrf("function", "%s(%s)", op.Fn().Name(), e.colList(op.ParamCols()))
	if outer := op.OuterCols(); len(outer) > 0 {
		e.ob.Attr("outer", e.colList(outer))
	}
	e.ob.Attr("results", e.colList(op.ResultCols()))
	return struct{}{}
}

// emitAttrs emits the attribute bundle in the order in which it is applied.
func (e *emitter) emitAttrs(attrs memo.Attrs) {
	if attrs.Predicate != nil {
		e.ob.Value("filter", e.scalar(attrs.Predicate))
	}
	if p := attrs.Projection; p != nil {
		for i := 0; i < p.Len(); i++ {
			item := p.Item(i)
			if p.IsPassthrough(i) {
				e.ob.VAttr(fmt.Sprintf("render %d", i), e.colName(item.Col))
				continue
			}
			e.ob.Value(fmt.Sprintf("render %s", e.colName(item.Col)), e.scalar(item.Element))
		}
	}
	if attrs.Limit.IsSet() {
		e.ob.Attr("limit", humanize.Comma(attrs.Limit.Rows()))
	}
}

func (e *emitter) resultColumns(cols opt.ColList) ResultColumns {
	res := make(ResultColumns, len(cols))
	for i, col := range cols {
		res[i].Name = e.colName(col)
		if e.md != nil && e.md.HasColumn(col) {
			res[i].Typ = e.md.ColumnMeta(col).Type
		}
	}
	return res
}

func (e *emitter) colName(col opt.ColumnID) string {
	if e.md != nil && e.md.HasColumn(col) {
		return e.md.ColumnMeta(col).Alias
	}
	return fmt.Sprintf("@%d", col)
}

func (e *emitter) colList(cols opt.ColList) string {
	var buf bytes.Buffer
	for i, col := range cols {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(e.colName(col))
	}
	return buf.String()
}

func (e *emitter) ordering(o opt.Ordering) string {
	var buf bytes.Buffer
	for i, c := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		if c.Descending() {
			buf.WriteByte('-')
		} else {
			buf.WriteByte('+')
		}
		buf.WriteString(e.colName(c.ID()))
	}
	return buf.String()
}

func (e *emitter) scalar(s memo.ScalarExpr) string {
	return memo.FormatScalar(s, e.md)
}

func plural(n int64) string {
	if n == 1 {
		return ""
	}
	return "s"
}
