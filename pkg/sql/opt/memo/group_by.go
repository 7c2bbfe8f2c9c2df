// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"fmt"

	"github.com/cockroachdb/physopt/pkg/sql/opt"
)

// AggregateFunc is an aggregate computed by a group-by operator.
type AggregateFunc uint8

const (
	CountRowsAgg AggregateFunc = iota
	CountAgg
	SumAgg
	MinAgg
	MaxAgg
)

var aggregateNames = [...]string{
	CountRowsAgg: "count-rows",
	CountAgg:     "count",
	SumAgg:       "sum",
	MinAgg:       "min",
	MaxAgg:       "max",
}

func (f AggregateFunc) String() string {
	if int(f) < len(aggregateNames) {
		return aggregateNames[f]
	}
	return fmt.Sprintf("agg(%d)", f)
}

// SafeValue implements redact.SafeValue.
func (AggregateFunc) SafeValue() {}

// HasArg returns false for aggregates that take no argument column.
func (f AggregateFunc) HasArg() bool { return f != CountRowsAgg }

// ParseAggregateFunc returns the aggregate with the given name.
func ParseAggregateFunc(name string) (AggregateFunc, bool) {
	for i, n := range aggregateNames {
		if n == name {
			return AggregateFunc(i), true
		}
	}
	return 0, false
}

// AggregateItem computes the aggregate Func over the Arg column of each group
// and stores the result in Col.
type AggregateItem struct {
	Col  opt.ColumnID
	Func AggregateFunc
	Arg  opt.ColumnID
}

func (a AggregateItem) String() string {
	if !a.Func.HasArg() {
		return fmt.Sprintf("%d=%s()", a.Col, a.Func)
	}
	return fmt.Sprintf("%d=%s(%d)", a.Col, a.Func, a.Arg)
}

// groupByDef holds the fields shared by both group-by kinds.
type groupByDef struct {
	grouping opt.ColList
	aggs     []AggregateItem
}

func makeGroupByDef(op opt.Operator, grouping opt.ColList, aggs []AggregateItem) (groupByDef, error) {
	if err := validateColList(op, "grouping columns", grouping); err != nil {
		return groupByDef{}, err
	}
	out := grouping.Copy()
	for _, a := range aggs {
		if a.Col == 0 {
			return groupByDef{}, opt.NewInvalidOperatorErrorf(op, "aggregate %s has no output column", a.Func)
		}
		if a.Func.HasArg() && a.Arg == 0 {
			return groupByDef{}, opt.NewInvalidOperatorErrorf(op, "aggregate %s requires an argument", a.Func)
		}
		if !a.Func.HasArg() && a.Arg != 0 {
			return groupByDef{}, opt.NewInvalidOperatorErrorf(op, "aggregate %s takes no argument", a.Func)
		}
		out = append(out, a.Col)
	}
	if dup, ok := out.Duplicate(); ok {
		return groupByDef{}, opt.NewInvalidOperatorErrorf(op, "column %d is produced twice", dup)
	}
	return groupByDef{grouping: grouping.Copy(), aggs: append([]AggregateItem(nil), aggs...)}, nil
}

func (g *groupByDef) addToHash(h *hasher) {
	h.addColList(g.grouping)
	h.addInt(len(g.aggs))
	for _, a := range g.aggs {
		h.addInt(int(a.Col))
		h.addInt(int(a.Func))
		h.addInt(int(a.Arg))
	}
}

func (g *groupByDef) equals(o *groupByDef) bool {
	if !g.grouping.Equals(o.grouping) || len(g.aggs) != len(o.aggs) {
		return false
	}
	for i := range g.aggs {
		if g.aggs[i] != o.aggs[i] {
			return false
		}
	}
	return true
}

// Grouping returns a copy of the grouping columns.
func (g *groupByDef) Grouping() opt.ColList { return g.grouping.Copy() }

// Aggregations returns a copy of the aggregates.
func (g *groupByDef) Aggregations() []AggregateItem {
	return append([]AggregateItem(nil), g.aggs...)
}

// ProducedCols returns the grouping columns followed by the aggregate
// columns, before attributes are applied.
func (g *groupByDef) ProducedCols() opt.ColList {
	res := make(opt.ColList, 0, len(g.grouping)+len(g.aggs))
	res = append(res, g.grouping...)
	for _, a := range g.aggs {
		res = append(res, a.Col)
	}
	return res
}

// HashGroupByOp groups its input using a hash table.
type HashGroupByOp struct {
	physicalBase
	groupByDef
}

var _ PhysicalOperator = &HashGroupByOp{}

// NewHashGroupByOp returns a hash group-by.
func NewHashGroupByOp(grouping opt.ColList, aggs []AggregateItem, attrs Attrs) (*HashGroupByOp, error) {
	def, err := makeGroupByDef(opt.HashGroupByOp, grouping, aggs)
	if err != nil {
		return nil, err
	}
	if err := attrs.Validate(opt.HashGroupByOp, def.ProducedCols()); err != nil {
		return nil, err
	}
	g := &HashGroupByOp{groupByDef: def}
	g.attrs = attrs
	h := newHasher(opt.HashGroupByOp, attrs)
	def.addToHash(&h)
	g.hash = h.h
	return g, nil
}

// Op is part of the PhysicalOperator interface.
func (g *HashGroupByOp) Op() opt.Operator { return opt.HashGroupByOp }

// Equals is part of the PhysicalOperator interface.
func (g *HashGroupByOp) Equals(other PhysicalOperator) bool {
	o, ok := sameKind[*HashGroupByOp](other)
	return ok && g.groupByDef.equals(&o.groupByDef) && g.attrs.Equals(o.attrs)
}

func (g *HashGroupByOp) accept(d dispatcher) { d.visitHashGroupBy(g) }

// StreamGroupByOp groups an input that is sorted on the grouping columns, so
// that each group is a contiguous run of rows.
type StreamGroupByOp struct {
	physicalBase
	groupByDef
	ordering opt.Ordering
}

var _ PhysicalOperator = &StreamGroupByOp{}

// NewStreamGroupByOp returns a streaming group-by. The ordering must cover
// exactly the grouping columns.
func NewStreamGroupByOp(
	grouping opt.ColList, aggs []AggregateItem, ordering opt.Ordering, attrs Attrs,
) (*StreamGroupByOp, error) {
	def, err := makeGroupByDef(opt.StreamGroupByOp, grouping, aggs)
	if err != nil {
		return nil, err
	}
	if err := ordering.Validate(); err != nil {
		return nil, opt.NewInvalidOperatorErrorf(opt.StreamGroupByOp, "%v", err)
	}
	if !ordering.ColSet().Equals(grouping.ToSet()) {
		return nil, opt.NewInvalidOperatorErrorf(opt.StreamGroupByOp,
			"ordering %s does not match grouping columns %s", ordering, grouping)
	}
	if err := attrs.Validate(opt.StreamGroupByOp, def.ProducedCols()); err != nil {
		return nil, err
	}
	g := &StreamGroupByOp{groupByDef: def, ordering: append(opt.Ordering(nil), ordering...)}
	g.attrs = attrs
	h := newHasher(opt.StreamGroupByOp, attrs)
	def.addToHash(&h)
	h.addOrdering(ordering)
	g.hash = h.h
	return g, nil
}

// Op is part of the PhysicalOperator interface.
func (g *StreamGroupByOp) Op() opt.Operator { return opt.StreamGroupByOp }

// Ordering returns a copy of the input ordering the operator relies on.
func (g *StreamGroupByOp) Ordering() opt.Ordering {
	return append(opt.Ordering(nil), g.ordering...)
}

// Equals is part of the PhysicalOperator interface.
func (g *StreamGroupByOp) Equals(other PhysicalOperator) bool {
	o, ok := sameKind[*StreamGroupByOp](other)
	return ok && g.groupByDef.equals(&o.groupByDef) && g.ordering.Equals(o.ordering) &&
		g.attrs.Equals(o.attrs)
}

func (g *StreamGroupByOp) accept(d dispatcher) { d.visitStreamGroupBy(g) }
