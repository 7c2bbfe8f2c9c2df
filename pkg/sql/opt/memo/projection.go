// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"bytes"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
)

// ProjectionItem computes one output column of a projection.
type ProjectionItem struct {
	Col     opt.ColumnID
	Element ScalarExpr
}

// Projection is an ordered list of output columns, each computed by a scalar
// expression over the columns produced by an operator. A Projection is
// immutable once constructed.
type Projection struct {
	items []ProjectionItem
}

// NewProjection returns a projection over a copy of the given items.
func NewProjection(items ...ProjectionItem) *Projection {
	p := &Projection{items: make([]ProjectionItem, len(items))}
	copy(p.items, items)
	return p
}

// Len returns the number of output columns. A nil projection has no items.
func (p *Projection) Len() int {
	if p == nil {
		return 0
	}
	return len(p.items)
}

// Item returns the ith projection item. Like an empty projection, a nil
// projection has no items to return.
func (p *Projection) Item(i int) ProjectionItem {
	if i < 0 || i >= p.Len() {
		panic(errors.AssertionFailedf("projection item %d out of range [0,%d)", i, p.Len()))
	}
	return p.items[i]
}

// Items returns a copy of the projection items.
func (p *Projection) Items() []ProjectionItem {
	if p == nil {
		return nil
	}
	res := make([]ProjectionItem, len(p.items))
	copy(res, p.items)
	return res
}

// OutputCols returns the projected columns in order.
func (p *Projection) OutputCols() opt.ColList {
	cols := make(opt.ColList, p.Len())
	for i := range cols {
		cols[i] = p.items[i].Col
	}
	return cols
}

// Equals returns true if both projections have the same columns computed by
// structurally equal expressions. A nil projection only equals nil.
func (p *Projection) Equals(other *Projection) bool {
	if p == nil || other == nil {
		return p == nil && other == nil
	}
	if len(p.items) != len(other.items) {
		return false
	}
	for i := range p.items {
		if p.items[i].Col != other.items[i].Col {
			return false
		}
		if !ScalarEquals(p.items[i].Element, other.items[i].Element) {
			return false
		}
	}
	return true
}

// IsPassthrough returns true if item i simply forwards its own column.
func (p *Projection) IsPassthrough(i int) bool {
	item := p.Item(i)
	v, ok := item.Element.(*VariableExpr)
	return ok && v != nil && v.Col == item.Col
}

func (p *Projection) String() string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := 0; i < p.Len(); i++ {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%d=%s", p.items[i].Col, FormatScalar(p.items[i].Element, nil))
	}
	buf.WriteByte(']')
	return buf.String()
}
