// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/cat"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
)

// ScanOp reads all rows of a base table. Cols[i] is the metadata column
// bound to the table's ith column.
type ScanOp struct {
	physicalBase
	table cat.Table
	cols  opt.ColList
}

var _ PhysicalOperator = &ScanOp{}

// NewScanOp returns a scan of the first len(cols) columns of table.
func NewScanOp(table cat.Table, cols opt.ColList, attrs Attrs) (*ScanOp, error) {
	if table == nil {
		return nil, opt.NewInvalidOperatorErrorf(opt.ScanOp, "no table")
	}
	if len(cols) > table.ColumnCount() {
		return nil, opt.NewInvalidOperatorErrorf(opt.ScanOp,
			"table %s has %d columns, found %d", table.Name(), table.ColumnCount(), len(cols))
	}
	if err := validateColList(opt.ScanOp, "columns", cols); err != nil {
		return nil, err
	}
	if err := attrs.Validate(opt.ScanOp, cols); err != nil {
		return nil, err
	}
	s := &ScanOp{table: table, cols: cols.Copy()}
	s.attrs = attrs
	h := newHasher(opt.ScanOp, attrs)
	h.addInt(int(table.ID()))
	h.addColList(cols)
	s.hash = h.h
	return s, nil
}

// Op is part of the PhysicalOperator interface.
func (s *ScanOp) Op() opt.Operator { return opt.ScanOp }

// Table returns the scanned table.
func (s *ScanOp) Table() cat.Table { return s.table }

// Cols returns a copy of the scanned columns.
func (s *ScanOp) Cols() opt.ColList { return s.cols.Copy() }

// Equals is part of the PhysicalOperator interface.
func (s *ScanOp) Equals(other PhysicalOperator) bool {
	o, ok := sameKind[*ScanOp](other)
	if !ok {
		return false
	}
	return s.table.ID() == o.table.ID() && s.cols.Equals(o.cols) && s.attrs.Equals(o.attrs)
}

func (s *ScanOp) accept(d dispatcher) { d.visitScan(s) }

// ValuesOp produces a constant list of rows.
type ValuesOp struct {
	physicalBase
	cols opt.ColList
	rows []tree.Datums
}

var _ PhysicalOperator = &ValuesOp{}

// NewValuesOp returns an operator producing rows, each of which must have
// one datum per column.
func NewValuesOp(cols opt.ColList, rows []tree.Datums, attrs Attrs) (*ValuesOp, error) {
	if err := validateColList(opt.ValuesOp, "columns", cols); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != len(cols) {
			return nil, opt.NewInvalidOperatorErrorf(opt.ValuesOp,
				"row %d has %d values, expected %d", i, len(row), len(cols))
		}
	}
	if err := attrs.Validate(opt.ValuesOp, cols); err != nil {
		return nil, err
	}
	v := &ValuesOp{cols: cols.Copy(), rows: make([]tree.Datums, len(rows))}
	for i := range rows {
		v.rows[i] = append(tree.Datums(nil), rows[i]...)
	}
	v.attrs = attrs
	h := newHasher(opt.ValuesOp, attrs)
	h.addColList(cols)
	h.addInt(len(rows))
	for _, row := range rows {
		for _, d := range row {
			h.addDatum(d)
		}
	}
	v.hash = h.h
	return v, nil
}

// Op is part of the PhysicalOperator interface.
func (v *ValuesOp) Op() opt.Operator { return opt.ValuesOp }

// Cols returns a copy of the produced columns.
func (v *ValuesOp) Cols() opt.ColList { return v.cols.Copy() }

// RowCount returns the number of rows.
func (v *ValuesOp) RowCount() int { return len(v.rows) }

// Row returns the ith row. The caller must not modify it.
func (v *ValuesOp) Row(i int) tree.Datums { return v.rows[i] }

// Equals is part of the PhysicalOperator interface.
func (v *ValuesOp) Equals(other PhysicalOperator) bool {
	o, ok := sameKind[*ValuesOp](other)
	if !ok || !v.cols.Equals(o.cols) || len(v.rows) != len(o.rows) {
		return false
	}
	for i := range v.rows {
		for j := range v.rows[i] {
			if !datumsEqual(v.rows[i][j], o.rows[i][j]) {
				return false
			}
		}
	}
	return v.attrs.Equals(o.attrs)
}

func (v *ValuesOp) accept(d dispatcher) { d.visitValues(v) }
