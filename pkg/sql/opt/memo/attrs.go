// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"fmt"

	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
	"github.com/cockroachdb/physopt/pkg/util"
)

// Attrs is the bundle of optional attributes every physical operator carries.
// Rows produced by the operator are first filtered by Predicate, then shaped
// by Projection, then truncated to Limit. The zero value carries no
// attributes.
type Attrs struct {
	Limit      opt.Limit
	Predicate  ScalarExpr
	Projection *Projection
}

// Equals returns true if all three attributes are equal.
func (a Attrs) Equals(other Attrs) bool {
	return a.Limit == other.Limit &&
		ScalarEquals(a.Predicate, other.Predicate) &&
		a.Projection.Equals(other.Projection)
}

// Empty returns true if no attribute is set.
func (a Attrs) Empty() bool {
	return !a.Limit.IsSet() && a.Predicate == nil && a.Projection.Len() == 0
}

func (a Attrs) hash(h uint64) uint64 {
	if a.Limit.IsSet() {
		h = util.FNV64AddToHash(h, 1)
		h = util.FNV64AddUint64(h, uint64(a.Limit.Rows()))
	} else {
		h = util.FNV64AddToHash(h, 0)
	}
	h = hashScalarShallow(h, a.Predicate)
	if a.Projection == nil {
		return util.FNV64AddToHash(h, -1)
	}
	h = util.FNV64AddToHash(h, int32(a.Projection.Len()))
	for i := range a.Projection.items {
		h = util.FNV64AddToHash(h, int32(a.Projection.items[i].Col))
		h = hashScalarShallow(h, a.Projection.items[i].Element)
	}
	return h
}

// Validate checks the attributes against the columns produced by the
// operator before the attributes are applied:
//
//   - the predicate is boolean and only references produced columns;
//   - projection columns are distinct and non-zero;
//   - projection elements only reference produced columns;
//   - a projection column that is also a produced column forwards that
//     column unchanged.
//
// Errors are marked with opt.ErrInvalidOperator.
func (a Attrs) Validate(op opt.Operator, produced opt.ColList) error {
	if err := a.checkWellFormed(op); err != nil {
		return err
	}
	producedSet := produced.ToSet()
	if a.Predicate != nil {
		typ := a.Predicate.DataType()
		if typ.Family() != types.BoolFamily && typ.Family() != types.UnknownFamily {
			return opt.NewInvalidOperatorErrorf(op, "predicate must be of type bool, found %s", typ)
		}
		if cols := OuterCols(a.Predicate); !cols.SubsetOf(producedSet) {
			return opt.NewInvalidOperatorErrorf(op,
				"predicate references columns %s not produced by the operator",
				cols.Difference(producedSet))
		}
	}
	if a.Projection == nil {
		return nil
	}
	var seen opt.ColSet
	for i := range a.Projection.items {
		item := &a.Projection.items[i]
		if seen.Contains(int(item.Col)) {
			return opt.NewInvalidOperatorErrorf(op, "duplicate projection column %d", item.Col)
		}
		seen.Add(int(item.Col))
		if cols := OuterCols(item.Element); !cols.SubsetOf(producedSet) {
			return opt.NewInvalidOperatorErrorf(op,
				"projection of column %d references columns %s not produced by the operator",
				item.Col, cols.Difference(producedSet))
		}
		if producedSet.Contains(int(item.Col)) && !a.Projection.IsPassthrough(i) {
			return opt.NewInvalidOperatorErrorf(op,
				"projection redefines produced column %d", item.Col)
		}
	}
	return nil
}

// checkWellFormed checks the scalar trees of the attributes without regard to
// the columns the operator produces. Every constructor calls it before the
// attributes are hashed.
func (a Attrs) checkWellFormed(op opt.Operator) error {
	if a.Predicate != nil {
		if err := checkScalar(op, "predicate", a.Predicate); err != nil {
			return err
		}
	}
	for i := 0; i < a.Projection.Len(); i++ {
		item := &a.Projection.items[i]
		if item.Col == 0 {
			return opt.NewInvalidOperatorErrorf(op, "projection column %d has no id", i)
		}
		if item.Element == nil {
			return opt.NewInvalidOperatorErrorf(op, "projection column %d has no expression", item.Col)
		}
		if err := checkScalar(op, fmt.Sprintf("projection of column %d", item.Col), item.Element); err != nil {
			return err
		}
	}
	return nil
}

// OutputCols returns the columns emitted after the attributes are applied to
// an operator that produces the given columns. The result is always a fresh
// slice.
func (a Attrs) OutputCols(produced opt.ColList) opt.ColList {
	if a.Projection == nil {
		return produced.Copy()
	}
	return a.Projection.OutputCols()
}
