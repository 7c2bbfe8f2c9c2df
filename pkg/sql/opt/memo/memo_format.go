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
	"github.com/dustin/go-humanize"
)

// MemoFmtFlags controls the output of FormatMemo.
type MemoFmtFlags int

const (
	// MemoFmtRaw prints groups with their internal numbers instead of
	// renumbering them from the root.
	MemoFmtRaw MemoFmtFlags = 1 << iota

	// MemoFmtShowSize adds the memory estimate to the header.
	MemoFmtShowSize
)

// HasFlags returns true if all the given flags are set.
func (f MemoFmtFlags) HasFlags(subset MemoFmtFlags) bool {
	return f&subset == subset
}

type memoFmtCtx struct {
	buf       bytes.Buffer
	flags     MemoFmtFlags
	md        *opt.Metadata
	ordering  []GroupID
	numbering []GroupID
}

// FormatMemo returns a tree listing every group and its alternatives. Unless
// MemoFmtRaw is set and a root is known, groups are numbered in depth-first
// order from the root, so that the root is G1. The metadata is optional and
// only used for names.
func FormatMemo(m *Memo, md *opt.Metadata, flags MemoFmtFlags) string {
	f := memoFmtCtx{flags: flags, md: md}
	if flags.HasFlags(MemoFmtRaw) || m.root == 0 {
		f.ordering = make([]GroupID, len(m.groups))
		for i := range f.ordering {
			f.ordering[i] = GroupID(i + 1)
		}
	} else {
		f.ordering = m.sortGroups(m.root)
	}
	f.numbering = make([]GroupID, len(m.groups)+1)
	for i, grp := range f.ordering {
		f.numbering[grp] = GroupID(i + 1)
	}

	tp := treeprinter.New()
	var root treeprinter.Node
	if flags.HasFlags(MemoFmtShowSize) {
		root = tp.Childf("memo (%d groups, %d exprs, ~%s)",
			len(f.ordering), m.ExprCount(), humanize.IBytes(uint64(m.MemoryEstimate())))
	} else {
		root = tp.Childf("memo (%d groups, %d exprs)", len(f.ordering), m.ExprCount())
	}
	for i, grp := range f.ordering {
		mgrp := &m.groups[grp-1]
		f.buf.Reset()
		for ord := range mgrp.exprs {
			if ord != 0 {
				f.buf.WriteByte(' ')
			}
			f.formatGroupExpr(&mgrp.exprs[ord])
		}
		if grp == m.root && !flags.HasFlags(MemoFmtRaw) {
			root.Childf("G%d: %s [root]", i+1, f.buf.String())
		} else {
			root.Childf("G%d: %s", i+1, f.buf.String())
		}
	}
	return tp.String()
}

func (f *memoFmtCtx) formatGroupExpr(ge *GroupExpr) {
	fmt.Fprintf(&f.buf, "(%s", ge.Op.Op())
	for _, c := range ge.Children {
		fmt.Fprintf(&f.buf, " G%d", f.numbering[c])
	}
	if private := Accept[string](ge.Op, memoPrivateFormatter{}, f.md); private != "" {
		f.buf.WriteByte(' ')
		f.buf.WriteString(private)
	}
	if a := ge.Op.Attrs(); !a.Empty() {
		f.buf.WriteString(" ")
		f.buf.WriteString(formatAttrsShort(a, f.md))
	}
	f.buf.WriteByte(')')
}

// sortGroups returns the groups reachable from root in depth-first order,
// root first. Unreachable groups are appended in id order.
func (m *Memo) sortGroups(root GroupID) []GroupID {
	visited := make([]bool, len(m.groups)+1)
	res := make([]GroupID, 0, len(m.groups))
	var visit func(grp GroupID)
	visit = func(grp GroupID) {
		if visited[grp] {
			return
		}
		visited[grp] = true
		res = append(res, grp)
		for _, ge := range m.groups[grp-1].exprs {
			for _, c := range ge.Children {
				visit(c)
			}
		}
	}
	visit(root)
	for i := 1; i <= len(m.groups); i++ {
		visit(GroupID(i))
	}
	return res
}

func formatAttrsShort(a Attrs, md *opt.Metadata) string {
	var buf bytes.Buffer
	sep := ""
	if a.Predicate != nil {
		fmt.Fprintf(&buf, "filter=%s", FormatScalar(a.Predicate, md))
		sep = ","
	}
	if a.Projection != nil {
		fmt.Fprintf(&buf, "%sproject=%s", sep, formatColList(a.Projection.OutputCols(), md))
		sep = ","
	}
	if a.Limit.IsSet() {
		fmt.Fprintf(&buf, "%slim=%s", sep, a.Limit)
	}
	return buf.String()
}

// memoPrivateFormatter renders the kind-specific fields of an operator in
// the compact form used by the memo listing.
type memoPrivateFormatter struct{}

var _ OperatorVisitor[string, *opt.Metadata] = memoPrivateFormatter{}

func (memoPrivateFormatter) VisitScan(op *ScanOp, md *opt.Metadata) string {
	return fmt.Sprintf("%s,cols=%s", op.Table().Name(), op.cols)
}

func (memoPrivateFormatter) VisitValues(op *ValuesOp, md *opt.Metadata) string {
	return fmt.Sprintf("rows=%d,cols=%s", len(op.rows), op.cols)
}

func (memoPrivateFormatter) VisitHashJoin(op *HashJoinOp, md *opt.Metadata) string {
	return fmt.Sprintf("%s,eq=%s=%s", op.joinType, op.leftEq, op.rightEq)
}

func (memoPrivateFormatter) VisitMergeJoin(op *MergeJoinOp, md *opt.Metadata) string {
	return fmt.Sprintf("%s,left=%s,right=%s", op.joinType, op.leftOrdering, op.rightOrdering)
}

func (memoPrivateFormatter) VisitNestedLoopJoin(op *NestedLoopJoinOp, md *opt.Metadata) string {
	if op.on == nil {
		return op.joinType.String()
	}
	return fmt.Sprintf("%s,on=%s", op.joinType, FormatScalar(op.on, md))
}

func (memoPrivateFormatter) VisitHashGroupBy(op *HashGroupByOp, md *opt.Metadata) string {
	return fmt.Sprintf("cols=%s", op.ProducedCols())
}

func (memoPrivateFormatter) VisitStreamGroupBy(op *StreamGroupByOp, md *opt.Metadata) string {
	return fmt.Sprintf("cols=%s,ordering=%s", op.ProducedCols(), op.ordering)
}

func (memoPrivateFormatter) VisitSort(op *SortOp, md *opt.Metadata) string {
	return op.ordering.String()
}

func (memoPrivateFormatter) VisitTableFunction(op *TableFunctionOp, md *opt.Metadata) string {
	return fmt.Sprintf("%s,outer=%s,params=%s,results=%s",
		op.fn.Name(), op.outerCols, op.paramCols, op.resultCols)
}
