// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt

import (
	"fmt"

	"github.com/cockroachdb/redact"
)

// Operator is the type tag of a physical operator or scalar expression. The
// set of operators is closed: every value below numOperators has exactly one
// Go type that reports it.
type Operator uint16

const (
	// UnknownOp is the zero value, which never tags a valid expression.
	UnknownOp Operator = iota

	// -- Physical operators --

	// ScanOp reads the rows of a base table.
	ScanOp

	// ValuesOp produces a constant list of rows.
	ValuesOp

	// HashJoinOp joins two inputs by building a hash table on equality
	// columns of the right input.
	HashJoinOp

	// MergeJoinOp joins two inputs that are sorted on their equality columns.
	MergeJoinOp

	// NestedLoopJoinOp joins two inputs by evaluating a condition on every pair
	// of rows.
	NestedLoopJoinOp

	// HashGroupByOp groups rows using a hash table.
	HashGroupByOp

	// StreamGroupByOp groups rows of an input sorted on the grouping columns.
	StreamGroupByOp

	// SortOp orders the rows of its input.
	SortOp

	// TableFunctionOp calls a set-returning function once per input row and
	// pairs every produced row with the input row (an inner lateral join).
	TableFunctionOp

	// -- Scalar operators --

	// VariableOp is a reference to a column.
	VariableOp

	// ConstOp is a constant value.
	ConstOp

	AndOp
	OrOp
	NotOp

	EqOp
	NeOp
	LtOp
	LeOp
	GtOp
	GeOp

	IsNullOp

	PlusOp
	MinusOp
	MultOp

	UnaryMinusOp

	// This should be last.
	numOperators
)

// NumOperators is the number of defined operators, including UnknownOp.
const NumOperators = int(numOperators)

// operatorClass groups operators with shared behavior.
type operatorClass uint8

const (
	unknownClass operatorClass = iota
	physicalClass
	scalarClass
)

// operatorInfo stores static information about an operator.
type operatorInfo struct {
	// name of the operator, used when printing expressions.
	name string
	// class of the operator (see operatorClass).
	class operatorClass
	// childCount is the number of inputs of a physical operator.
	childCount int
}

// operatorTab stores static information about all operators.
var operatorTab = [numOperators]operatorInfo{
	UnknownOp: {name: "unknown"},

	ScanOp:           {name: "scan", class: physicalClass},
	ValuesOp:         {name: "values", class: physicalClass},
	HashJoinOp:       {name: "hash-join", class: physicalClass, childCount: 2},
	MergeJoinOp:      {name: "merge-join", class: physicalClass, childCount: 2},
	NestedLoopJoinOp: {name: "nested-loop-join", class: physicalClass, childCount: 2},
	HashGroupByOp:    {name: "hash-group-by", class: physicalClass, childCount: 1},
	StreamGroupByOp:  {name: "stream-group-by", class: physicalClass, childCount: 1},
	SortOp:           {name: "sort", class: physicalClass, childCount: 1},
	TableFunctionOp:  {name: "table-function", class: physicalClass, childCount: 1},

	VariableOp:   {name: "variable", class: scalarClass},
	ConstOp:      {name: "const", class: scalarClass},
	AndOp:        {name: "and", class: scalarClass},
	OrOp:         {name: "or", class: scalarClass},
	NotOp:        {name: "not", class: scalarClass},
	EqOp:         {name: "eq", class: scalarClass},
	NeOp:         {name: "ne", class: scalarClass},
	LtOp:         {name: "lt", class: scalarClass},
	LeOp:         {name: "le", class: scalarClass},
	GtOp:         {name: "gt", class: scalarClass},
	GeOp:         {name: "ge", class: scalarClass},
	IsNullOp:     {name: "is-null", class: scalarClass},
	PlusOp:       {name: "plus", class: scalarClass},
	MinusOp:      {name: "minus", class: scalarClass},
	MultOp:       {name: "mult", class: scalarClass},
	UnaryMinusOp: {name: "unary-minus", class: scalarClass},
}

// PhysicalOperators lists the tags of all physical operators, in declaration
// order.
var PhysicalOperators = func() []Operator {
	var ops []Operator
	for op := Operator(0); op < numOperators; op++ {
		if operatorTab[op].class == physicalClass {
			ops = append(ops, op)
		}
	}
	return ops
}()

func (op Operator) String() string {
	if op >= numOperators {
		return fmt.Sprintf("operator(%d)", op)
	}
	return operatorTab[op].name
}

// SafeFormat implements redact.SafeFormatter.
func (op Operator) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(op.String()))
}

// IsPhysical returns true if the operator is a physical operator.
func (op Operator) IsPhysical() bool {
	return op < numOperators && operatorTab[op].class == physicalClass
}

// IsScalar returns true if the operator is a scalar expression operator.
func (op Operator) IsScalar() bool {
	return op < numOperators && operatorTab[op].class == scalarClass
}

// ChildCount returns the number of inputs a physical operator has in a plan
// tree. It is zero for leaves and for scalar operators.
func (op Operator) ChildCount() int {
	if op >= numOperators {
		return 0
	}
	return operatorTab[op].childCount
}

// IsComparison returns true for the binary comparison operators.
func (op Operator) IsComparison() bool {
	switch op {
	case EqOp, NeOp, LtOp, LeOp, GtOp, GeOp:
		return true
	}
	return false
}

// IsArithmetic returns true for the binary arithmetic operators.
func (op Operator) IsArithmetic() bool {
	switch op {
	case PlusOp, MinusOp, MultOp:
		return true
	}
	return false
}

// OperatorByName returns the operator with the given printed name.
func OperatorByName(name string) (Operator, bool) {
	for op := Operator(1); op < numOperators; op++ {
		if operatorTab[op].name == name {
			return op, true
		}
	}
	return UnknownOp, false
}
