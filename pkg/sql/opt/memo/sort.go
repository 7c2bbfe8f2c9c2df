// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import "github.com/cockroachdb/physopt/pkg/sql/opt"

// SortOp orders the rows of its input.
type SortOp struct {
	physicalBase
	ordering opt.Ordering
}

var _ PhysicalOperator = &SortOp{}

// NewSortOp returns a sort on the given non-empty ordering.
func NewSortOp(ordering opt.Ordering, attrs Attrs) (*SortOp, error) {
	if ordering.Empty() {
		return nil, opt.NewInvalidOperatorErrorf(opt.SortOp, "empty ordering")
	}
	if err := ordering.Validate(); err != nil {
		return nil, opt.NewInvalidOperatorErrorf(opt.SortOp, "%v", err)
	}
	if err := attrs.checkWellFormed(opt.SortOp); err != nil {
		return nil, err
	}
	s := &SortOp{ordering: append(opt.Ordering(nil), ordering...)}
	s.attrs = attrs
	h := newHasher(opt.SortOp, attrs)
	h.addOrdering(ordering)
	s.hash = h.h
	return s, nil
}

// Op is part of the PhysicalOperator interface.
func (s *SortOp) Op() opt.Operator { return opt.SortOp }

// Ordering returns a copy of the sort ordering.
func (s *SortOp) Ordering() opt.Ordering {
	return append(opt.Ordering(nil), s.ordering...)
}

// Equals is part of the PhysicalOperator interface.
func (s *SortOp) Equals(other PhysicalOperator) bool {
	o, ok := sameKind[*SortOp](other)
	return ok && s.ordering.Equals(o.ordering) && s.attrs.Equals(o.attrs)
}

func (s *SortOp) accept(d dispatcher) { d.visitSort(s) }
