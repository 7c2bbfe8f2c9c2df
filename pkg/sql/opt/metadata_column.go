// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
	"github.com/cockroachdb/physopt/pkg/util"
)

// ColumnID uniquely identifies the usage of a column within the scope of a
// query. ColumnID 0 is reserved to mean "unknown column". Two references to
// the same column always carry the same ColumnID, so equality is identity.
// See the comment for Metadata for more details.
type ColumnID int32

// index returns the index of the column in Metadata.cols. It's biased by 1, so
// that ColumnID 0 can be reserved to mean "unknown column".
func (c ColumnID) index() int {
	return int(c - 1)
}

// SafeValue implements redact.SafeValue.
func (ColumnID) SafeValue() {}

// ColSet efficiently stores an unordered set of column ids.
type ColSet = util.FastIntSet

// MakeColSet returns a set initialized with the given columns.
func MakeColSet(vals ...ColumnID) ColSet {
	var res ColSet
	for _, v := range vals {
		res.Add(int(v))
	}
	return res
}

// ColList is an ordered list of column ids. Lists are compared element-wise,
// so order matters.
type ColList []ColumnID

// Equals returns true if the two lists have the same columns in the same
// order. A nil list equals an empty list.
func (cl ColList) Equals(other ColList) bool {
	if len(cl) != len(other) {
		return false
	}
	for i := range cl {
		if cl[i] != other[i] {
			return false
		}
	}
	return true
}

// ToSet converts the list to a column id set.
func (cl ColList) ToSet() ColSet {
	return ColListToSet(cl)
}

// Find returns the position of col in the list.
func (cl ColList) Find(col ColumnID) (idx int, ok bool) {
	for i := range cl {
		if cl[i] == col {
			return i, true
		}
	}
	return -1, false
}

// Copy returns a copy of the list which doesn't share storage with it.
func (cl ColList) Copy() ColList {
	if cl == nil {
		return nil
	}
	return append(make(ColList, 0, len(cl)), cl...)
}

// Duplicate returns the first column that appears more than once in the
// list.
func (cl ColList) Duplicate() (ColumnID, bool) {
	var seen ColSet
	for _, c := range cl {
		if seen.Contains(int(c)) {
			return c, true
		}
		seen.Add(int(c))
	}
	return 0, false
}

// String formats the list as "(1,3,2)".
func (cl ColList) String() string {
	var buf strings.Builder
	buf.WriteByte('(')
	for i, c := range cl {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Itoa(int(c)))
	}
	buf.WriteByte(')')
	return buf.String()
}

// ColumnMeta stores information about one of the columns stored in the
// metadata.
type ColumnMeta struct {
	// MetaID is the identifier for this column that is unique within the query
	// metadata.
	MetaID ColumnID

	// Alias is the best-effort name of this column. Since the same column in a
	// query can have multiple names (using aliasing), one of those is chosen to
	// be used for pretty-printing and debugging. This might be different than
	// what is stored in the physical properties and is presented to end users.
	Alias string

	// Type is the scalar SQL type of this column.
	Type *types.T

	// Table is the base table to which this column belongs.
	// If the column was synthesized (i.e. no base table), then it is 0.
	Table TableID
}

// LabeledColumn specifies the label and id of a column.
type LabeledColumn struct {
	Label string
	ID    ColumnID
}

// ColListToSet converts a column id list to a column id set.
func ColListToSet(colList ColList) ColSet {
	var r ColSet
	for _, col := range colList {
		r.Add(int(col))
	}
	return r
}

// ColSetToList converts a column id set to a column id list.
func ColSetToList(colSet ColSet) ColList {
	colList := make(ColList, 0, colSet.Len())
	colSet.ForEach(func(i int) {
		colList = append(colList, ColumnID(i))
	})
	return colList
}
