// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cat

import (
	"strings"

	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
	"github.com/cockroachdb/redact"
)

// TableFunction describes a set-returning function: its identity, the types
// of its parameters and the schema of the rows it produces for each call.
//
// A TableFunction is immutable once constructed and is shared by pointer
// between every operator that calls it. Its fields can only be read through
// the accessor methods.
type TableFunction struct {
	id         StableID
	name       string
	paramTypes []*types.T
	resultCols []Column
}

var _ Object = (*TableFunction)(nil)

// NewTableFunction constructs a function descriptor. The slices are copied.
func NewTableFunction(
	id StableID, name string, paramTypes []*types.T, resultCols []Column,
) *TableFunction {
	return &TableFunction{
		id:         id,
		name:       name,
		paramTypes: append([]*types.T(nil), paramTypes...),
		resultCols: append([]Column(nil), resultCols...),
	}
}

// ID is part of the Object interface.
func (f *TableFunction) ID() StableID { return f.id }

// Name returns the function name.
func (f *TableFunction) Name() string { return f.name }

// Arity returns the number of parameters the function takes.
func (f *TableFunction) Arity() int { return len(f.paramTypes) }

// ParamType returns the type of the i-th parameter.
func (f *TableFunction) ParamType(i int) *types.T { return f.paramTypes[i] }

// ResultColumnCount returns the number of columns in each result row.
func (f *TableFunction) ResultColumnCount() int { return len(f.resultCols) }

// ResultColumn returns the i-th column of the result schema.
func (f *TableFunction) ResultColumn(i int) Column { return f.resultCols[i] }

// Equals returns true if the two descriptors describe the same function. Two
// descriptors are the same if they have the same id and signature.
func (f *TableFunction) Equals(other *TableFunction) bool {
	if f == other {
		return true
	}
	if f == nil || other == nil || f.id != other.id || f.name != other.name {
		return false
	}
	if len(f.paramTypes) != len(other.paramTypes) || len(f.resultCols) != len(other.resultCols) {
		return false
	}
	for i := range f.paramTypes {
		if !f.paramTypes[i].Identical(other.paramTypes[i]) {
			return false
		}
	}
	for i := range f.resultCols {
		if f.resultCols[i].Name != other.resultCols[i].Name ||
			!f.resultCols[i].Type.Identical(other.resultCols[i].Type) {
			return false
		}
	}
	return true
}

// Signature formats the function as "name(p1, p2) -> (c1 t1, c2 t2)".
func (f *TableFunction) Signature() string {
	var buf strings.Builder
	buf.WriteString(f.name)
	buf.WriteByte('(')
	for i, t := range f.paramTypes {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(t.Name())
	}
	buf.WriteString(") -> (")
	for i, c := range f.resultCols {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(c.Name)
		buf.WriteByte(' ')
		buf.WriteString(c.Type.Name())
	}
	buf.WriteByte(')')
	return buf.String()
}

// String implements fmt.Stringer.
func (f *TableFunction) String() string { return f.name }

// SafeFormat implements redact.SafeFormatter. Function names come from the
// catalog and are not sensitive.
func (f *TableFunction) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(f.name))
}
