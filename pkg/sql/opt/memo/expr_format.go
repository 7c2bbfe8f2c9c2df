// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"bytes"
	"fmt"

	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/util/treeprinter"
)

// ExprFmtFlags controls which properties of the expression are shown in
// formatted output.
type ExprFmtFlags int

const (
	// ExprFmtShowAll shows all properties of the expression.
	ExprFmtShowAll ExprFmtFlags = 0

	// ExprFmtHideColumns removes the output column line.
	ExprFmtHideColumns ExprFmtFlags = 1 << (iota - 1)

	// ExprFmtHideGroups does not show memo group numbers.
	ExprFmtHideGroups
)

// HasFlags returns true if all the given flags are set.
func (f ExprFmtFlags) HasFlags(subset ExprFmtFlags) bool {
	return f&subset == subset
}

// ExprFmtCtx holds the state for formatting a plan tree.
type ExprFmtCtx struct {
	Flags ExprFmtFlags

	// Metadata is used to print column names. It may be nil, in which case
	// columns are printed as "@id".
	Metadata *opt.Metadata
}

// FormatExpr returns a multi-line rendering of the tree rooted at e.
func FormatExpr(e *Expr, md *opt.Metadata, flags ExprFmtFlags) string {
	f := ExprFmtCtx{Flags: flags, Metadata: md}
	tp := treeprinter.New()
	f.FormatExpr(tp, e)
	return tp.String()
}

// FormatExpr adds e and its inputs as a child of tp.
func (f *ExprFmtCtx) FormatExpr(tp treeprinter.Node, e *Expr) {
	var title bytes.Buffer
	title.WriteString(e.Op().String())
	if detail := Accept[string](e.op, exprTitleFormatter{}, f.Metadata); detail != "" {
		title.WriteByte(' ')
		title.WriteString(detail)
	}
	if e.group != 0 && !f.Flags.HasFlags(ExprFmtHideGroups) {
		fmt.Fprintf(&title, " [G%d]", e.group)
	}
	node := tp.Child(title.String())

	if !f.Flags.HasFlags(ExprFmtHideColumns) {
		if cols := OutputCols(e); len(cols) > 0 {
			node.Childf("columns: %s", f.colList(cols))
		} else {
			node.Child("columns: <none>")
		}
	}
	AcceptExpr[struct{}](e, exprFieldFormatter{f: f}, node)
	f.formatAttrs(node, e.op.Attrs())
	for i := range e.inputs {
		f.FormatExpr(node, e.inputs[i])
	}
}

func (f *ExprFmtCtx) formatAttrs(tp treeprinter.Node, a Attrs) {
	if a.Predicate != nil {
		tp.Childf("filter: %s", FormatScalar(a.Predicate, f.Metadata))
	}
	if a.Projection != nil {
		n := tp.Child("project")
		for i := range a.Projection.items {
			item := &a.Projection.items[i]
			if a.Projection.IsPassthrough(i) {
				n.Child(f.col(item.Col))
			} else {
				n.Childf("%s := %s", f.col(item.Col), FormatScalar(item.Element, f.Metadata))
			}
		}
	}
	if a.Limit.IsSet() {
		tp.Childf("limit: %s", a.Limit)
	}
}

func (f *ExprFmtCtx) col(col opt.ColumnID) string {
	return formatCol(col, f.Metadata)
}

func (f *ExprFmtCtx) colList(cols opt.ColList) string {
	return formatColList(cols, f.Metadata)
}

func (f *ExprFmtCtx) ordering(o opt.Ordering) string {
	var buf bytes.Buffer
	for i, c := range o {
		if i > 0 {
			buf.WriteByte(' ')
		}
		if c.Descending() {
			buf.WriteByte('-')
		} else {
			buf.WriteByte('+')
		}
		buf.WriteString(f.col(c.ID()))
	}
	return buf.String()
}

func formatCol(col opt.ColumnID, md *opt.Metadata) string {
	if md == nil {
		return fmt.Sprintf("@%d", col)
	}
	return md.QualifiedAlias(col)
}

func formatColList(cols opt.ColList, md *opt.Metadata) string {
	var buf bytes.Buffer
	for i, c := range cols {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(formatCol(c, md))
	}
	return buf.String()
}

// FormatScalar renders a scalar expression as an s-expression, such as
// "(gt elem:3 10)".
func FormatScalar(e ScalarExpr, md *opt.Metadata) string {
	var buf bytes.Buffer
	formatScalar(&buf, e, md)
	return buf.String()
}

func formatScalar(buf *bytes.Buffer, e ScalarExpr, md *opt.Metadata) {
	switch t := e.(type) {
	case nil:
		buf.WriteString("<nil>")
	case *VariableExpr:
		buf.WriteString(formatCol(t.Col, md))
	case *ConstExpr:
		buf.WriteString(t.Value.String())
	default:
		buf.WriteByte('(')
		buf.WriteString(e.Op().String())
		for i, n := 0, e.ChildCount(); i < n; i++ {
			buf.WriteByte(' ')
			formatScalar(buf, e.Child(i), md)
		}
		buf.WriteByte(')')
	}
}

// exprTitleFormatter returns the text following the operator name on the
// first line of each node.
type exprTitleFormatter struct{}

var _ OperatorVisitor[string, *opt.Metadata] = exprTitleFormatter{}

func (exprTitleFormatter) VisitScan(op *ScanOp, _ *opt.Metadata) string {
	return op.table.Name()
}

func (exprTitleFormatter) VisitValues(*ValuesOp, *opt.Metadata) string { return "" }

func (exprTitleFormatter) VisitHashJoin(op *HashJoinOp, _ *opt.Metadata) string {
	return op.joinType.String()
}

func (exprTitleFormatter) VisitMergeJoin(op *MergeJoinOp, _ *opt.Metadata) string {
	return op.joinType.String()
}

func (exprTitleFormatter) VisitNestedLoopJoin(op *NestedLoopJoinOp, _ *opt.Metadata) string {
	return op.joinType.String()
}

func (exprTitleFormatter) VisitHashGroupBy(*HashGroupByOp, *opt.Metadata) string { return "" }

func (exprTitleFormatter) VisitStreamGroupBy(*StreamGroupByOp, *opt.Metadata) string {
	return ""
}

func (exprTitleFormatter) VisitSort(*SortOp, *opt.Metadata) string { return "" }

func (exprTitleFormatter) VisitTableFunction(op *TableFunctionOp, _ *opt.Metadata) string {
	return op.fn.Name()
}

// exprFieldFormatter adds a line for each kind-specific field of an
// operator.
type exprFieldFormatter struct {
	f *ExprFmtCtx
}

var _ ExprVisitor[struct{}, treeprinter.Node] = exprFieldFormatter{}

func (v exprFieldFormatter) VisitScan(_ *Expr, op *ScanOp, tp treeprinter.Node) struct{} {
	return struct{}{}
}

func (v exprFieldFormatter) VisitValues(_ *Expr, op *ValuesOp, tp treeprinter.Node) struct{} {
	for _, row := range op.rows {
		tp.Child(row.String())
	}
	return struct{}{}
}

func (v exprFieldFormatter) VisitHashJoin(_ *Expr, op *HashJoinOp, tp treeprinter.Node) struct{} {
	n := tp.Child("equality")
	for i := range op.leftEq {
		n.Childf("%s = %s", v.f.col(op.leftEq[i]), v.f.col(op.rightEq[i]))
	}
	return struct{}{}
}

func (v exprFieldFormatter) VisitMergeJoin(
	_ *Expr, op *MergeJoinOp, tp treeprinter.Node,
) struct{} {
	tp.Childf("left ordering: %s", v.f.ordering(op.leftOrdering))
	tp.Childf("right ordering: %s", v.f.ordering(op.rightOrdering))
	return struct{}{}
}

func (v exprFieldFormatter) VisitNestedLoopJoin(
	_ *Expr, op *NestedLoopJoinOp, tp treeprinter.Node,
) struct{} {
	if op.on != nil {
		tp.Childf("on: %s", FormatScalar(op.on, v.f.Metadata))
	}
	return struct{}{}
}

func (v exprFieldFormatter) VisitHashGroupBy(
	_ *Expr, op *HashGroupByOp, tp treeprinter.Node,
) struct{} {
	v.formatGroupBy(&op.groupByDef, tp)
	return struct{}{}
}

func (v exprFieldFormatter) VisitStreamGroupBy(
	_ *Expr, op *StreamGroupByOp, tp treeprinter.Node,
) struct{} {
	v.formatGroupBy(&op.groupByDef, tp)
	tp.Childf("ordering: %s", v.f.ordering(op.ordering))
	return struct{}{}
}

func (v exprFieldFormatter) formatGroupBy(g *groupByDef, tp treeprinter.Node) {
	if len(g.grouping) > 0 {
		tp.Childf("grouping columns: %s", v.f.colList(g.grouping))
	}
	if len(g.aggs) == 0 {
		return
	}
	n := tp.Child("aggregations")
	for _, a := range g.aggs {
		if a.Func.HasArg() {
			n.Childf("%s := %s(%s)", v.f.col(a.Col), a.Func, v.f.col(a.Arg))
		} else {
			n.Childf("%s := %s()", v.f.col(a.Col), a.Func)
		}
	}
}

func (v exprFieldFormatter) VisitSort(_ *Expr, op *SortOp, tp treeprinter.Node) struct{} {
	tp.Childf("ordering: %s", v.f.ordering(op.ordering))
	return struct{}{}
}

func (v exprFieldFormatter) VisitTableFunction(
	_ *Expr, op *TableFunctionOp, tp treeprinter.Node,
) struct{} {
	if len(op.outerCols) > 0 {
		tp.Childf("outer: %s", v.f.colList(op.outerCols))
	}
	if len(op.paramCols) > 0 {
		tp.Childf("params: %s", v.f.colList(op.paramCols))
	}
	tp.Childf("results: %s", v.f.colList(op.resultCols))
	return struct{}{}
}
