// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package rowexec

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/sem/eval"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
)

// ProcOutputHelper applies an attribute bundle to the rows produced by a
// processor. Rows are filtered by the predicate first, then projected, and
// the limit counts the rows that survive both steps.
type ProcOutputHelper struct {
	attrs   memo.Attrs
	binding eval.Binding
	outCols opt.ColList

	// renderOrds[i] is the position of the ith projected column in the
	// produced row, or -1 if the projection item must be evaluated.
	renderOrds []int

	rowsEmitted int64
}

// Init prepares the helper for rows laid out according to produced.
func (h *ProcOutputHelper) Init(attrs memo.Attrs, produced opt.ColList) error {
	if err := attrs.Validate(opt.UnknownOp, produced); err != nil {
		return errors.NewAssertionErrorWithWrappedErrf(err, "cannot post-process rows")
	}
	*h = ProcOutputHelper{
		attrs:   attrs,
		binding: eval.MakeBinding(produced),
		outCols: attrs.OutputCols(produced),
	}
	if p := attrs.Projection; p != nil {
		h.renderOrds = make([]int, p.Len())
		for i := range h.renderOrds {
			h.renderOrds[i] = -1
			if v, ok := p.Item(i).Element.(*memo.VariableExpr); ok {
				if ord, ok := h.binding.Ordinal(v.Col); ok {
					h.renderOrds[i] = ord
				}
			}
		}
	}
	return nil
}

// OutputCols returns the columns of the rows returned by ProcessRow.
func (h *ProcOutputHelper) OutputCols() opt.ColList { return h.outCols }

// RowsEmitted returns the number of rows returned by ProcessRow so far.
func (h *ProcOutputHelper) RowsEmitted() int64 { return h.rowsEmitted }

// LimitReached returns true if no more rows may be emitted.
func (h *ProcOutputHelper) LimitReached() bool {
	return h.attrs.Limit.Reached(h.rowsEmitted)
}

// ProcessRow post-processes a produced row. It returns a nil row if the row
// was filtered out. moreRowsOK is false once the limit has been reached, in
// which case the caller must stop producing rows after emitting the returned
// row (if any).
func (h *ProcOutputHelper) ProcessRow(
	ctx context.Context, row tree.Datums,
) (_ tree.Datums, moreRowsOK bool, _ error) {
	if h.LimitReached() {
		return nil, false, nil
	}
	if len(row) != len(h.binding.Cols()) {
		return nil, false, errors.AssertionFailedf(
			"expected row with %d values, found %d", len(h.binding.Cols()), len(row))
	}

	passes, err := eval.Filter(ctx, h.attrs.Predicate, h.binding, row)
	if err != nil {
		return nil, false, err
	}
	if !passes {
		return nil, true, nil
	}

	var out tree.Datums
	if p := h.attrs.Projection; p != nil {
		out = make(tree.Datums, p.Len())
		for i, ord := range h.renderOrds {
			if ord >= 0 {
				out[i] = row[ord]
				continue
			}
			if out[i], err = eval.Expr(ctx, p.Item(i).Element, h.binding, row); err != nil {
				return nil, false, err
			}
		}
	} else {
		out = append(tree.Datums(nil), row...)
	}

	h.rowsEmitted++
	return out, !h.LimitReached(), nil
}
