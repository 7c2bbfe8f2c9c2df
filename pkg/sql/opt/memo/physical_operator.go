// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/physopt/pkg/util"
)

// PhysicalOperator is implemented by every physical operator kind. Operators
// are immutable once constructed and may be shared across goroutines. The set
// of implementations is closed to this package: the unexported accept method
// ties every kind to a slot of the visitor protocol.
type PhysicalOperator interface {
	// Op returns the operator's type tag. It is constant for a given Go type.
	Op() opt.Operator

	// Attrs returns the limit, predicate and projection applied to the rows
	// the operator produces.
	Attrs() Attrs

	// Equals returns true if other is the same kind with structurally equal
	// attributes and kind-specific fields. It is the memo's deduplication
	// test.
	Equals(other PhysicalOperator) bool

	// Hash returns a digest that is equal for any two operators for which
	// Equals returns true. It is deterministic across processes.
	Hash() uint64

	// accept calls the dispatcher slot for the operator's kind.
	accept(d dispatcher)
}

// physicalBase holds the state shared by all operator kinds.
type physicalBase struct {
	attrs Attrs
	hash  uint64
}

// Attrs is part of the PhysicalOperator interface.
func (b *physicalBase) Attrs() Attrs { return b.attrs }

// Hash is part of the PhysicalOperator interface.
func (b *physicalBase) Hash() uint64 { return b.hash }

// hasher accumulates the FNV-64 digest of an operator under construction.
type hasher struct {
	h uint64
}

func newHasher(op opt.Operator, attrs Attrs) hasher {
	h := util.FNV64Init()
	h = util.FNV64AddToHash(h, int32(op))
	return hasher{h: attrs.hash(h)}
}

func (h *hasher) addInt(v int) {
	h.h = util.FNV64AddUint64(h.h, uint64(v))
}

func (h *hasher) addString(s string) {
	h.h = util.FNV64AddString(h.h, s)
}

func (h *hasher) addDatum(d tree.Datum) {
	h.h = hashDatum(h.h, d)
}

func (h *hasher) addColList(cols opt.ColList) {
	h.addInt(len(cols))
	for _, c := range cols {
		h.h = util.FNV64AddToHash(h.h, int32(c))
	}
}

func (h *hasher) addOrdering(o opt.Ordering) {
	h.addInt(len(o))
	for _, c := range o {
		h.h = util.FNV64AddToHash(h.h, int32(c))
	}
}

func (h *hasher) addScalar(e ScalarExpr) {
	h.h = hashScalarShallow(h.h, e)
}

// validateColList checks that a column list has no zero ids and no
// duplicates. The error names the list.
func validateColList(op opt.Operator, name string, cols opt.ColList) error {
	for _, c := range cols {
		if c == 0 {
			return opt.NewInvalidOperatorErrorf(op, "%s contain an unknown column", name)
		}
	}
	if dup, ok := cols.Duplicate(); ok {
		return opt.NewInvalidOperatorErrorf(op, "%s contain duplicate column %d", name, dup)
	}
	return nil
}

// sameKind returns other as the concrete type T if it is a non-nil operator
// of that type.
func sameKind[T PhysicalOperator](other PhysicalOperator) (T, bool) {
	var zero T
	if other == nil {
		return zero, false
	}
	t, ok := other.(T)
	if !ok {
		return zero, false
	}
	// Guard against typed nil pointers stored in the interface.
	if any(t) == any(zero) {
		return zero, false
	}
	return t, true
}

// JoinType selects the rows a join operator emits.
type JoinType uint8

const (
	InnerJoin JoinType = iota
	LeftJoin
	RightJoin
	FullJoin
	SemiJoin
	AntiJoin
)

var joinTypeNames = [...]string{
	InnerJoin: "inner",
	LeftJoin:  "left",
	RightJoin: "right",
	FullJoin:  "full",
	SemiJoin:  "semi",
	AntiJoin:  "anti",
}

func (t JoinType) String() string {
	if int(t) < len(joinTypeNames) {
		return joinTypeNames[t]
	}
	return "unknown"
}

// SafeValue implements redact.SafeValue.
func (JoinType) SafeValue() {}

// ParseJoinType returns the join type with the given name.
func ParseJoinType(name string) (JoinType, bool) {
	for i, n := range joinTypeNames {
		if n == name {
			return JoinType(i), true
		}
	}
	return 0, false
}

// OutputsRightCols returns true if rows emitted by a join of this type
// include the columns of the right input.
func (t JoinType) OutputsRightCols() bool {
	return t != SemiJoin && t != AntiJoin
}

// joinOutputCols returns the columns produced by a join before its attributes
// are applied.
func joinOutputCols(t JoinType, left, right opt.ColList) opt.ColList {
	if !t.OutputsRightCols() {
		return left.Copy()
	}
	res := make(opt.ColList, 0, len(left)+len(right))
	res = append(res, left...)
	return append(res, right...)
}
