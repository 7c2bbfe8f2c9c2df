// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package rowexec

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt/cat"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
)

// valuesProcessor emits the constant rows of a values operator.
type valuesProcessor struct {
	processorBase

	op      *memo.ValuesOp
	nextRow int
}

var _ RowSource = &valuesProcessor{}

const valuesProcName = "values"

// NewValuesProcessor returns a processor for a values operator.
func NewValuesProcessor(op *memo.ValuesOp) (RowSource, error) {
	v := &valuesProcessor{op: op}
	if err := v.init(valuesProcName, op.Attrs(), op.Cols(), nil /* input */); err != nil {
		return nil, err
	}
	return v, nil
}

// Start is part of the RowSource interface.
func (v *valuesProcessor) Start(ctx context.Context) error {
	return v.startInternal(ctx)
}

// Next is part of the RowSource interface.
func (v *valuesProcessor) Next(ctx context.Context) (tree.Datums, error) {
	for v.state == stateRunning {
		if err := v.checkCancel(ctx); err != nil {
			return nil, err
		}
		if v.nextRow >= v.op.RowCount() {
			v.state = stateExhausted
			break
		}
		row := v.op.Row(v.nextRow)
		v.nextRow++
		out, err := v.processRowHelper(ctx, row)
		if err != nil {
			return nil, err
		}
		if out != nil {
			return out, nil
		}
	}
	return nil, nil
}

// TableRows is implemented by catalog tables whose rows are held in memory.
type TableRows interface {
	cat.Table

	// RowCount returns the number of rows in the table.
	RowCount() int

	// Row returns the ith row, with one value per table column.
	Row(i int) tree.Datums
}

// tableReader scans an in-memory table. The ith scanned column holds the
// values of the ith table column.
type tableReader struct {
	processorBase

	table   TableRows
	width   int
	nextRow int
}

var _ RowSource = &tableReader{}

const tableReaderProcName = "table reader"

// NewTableReader returns a processor for a scan operator. It fails with an
// unimplemented error if the scanned table does not hold its rows in memory.
func NewTableReader(op *memo.ScanOp) (RowSource, error) {
	table, ok := op.Table().(TableRows)
	if !ok {
		return nil, errors.UnimplementedErrorf(errors.IssueLink{},
			"scan of table %s without in-memory rows", op.Table().Name())
	}
	tr := &tableReader{table: table, width: len(op.Cols())}
	if err := tr.init(tableReaderProcName, op.Attrs(), op.Cols(), nil /* input */); err != nil {
		return nil, err
	}
	return tr, nil
}

// Start is part of the RowSource interface.
func (tr *tableReader) Start(ctx context.Context) error {
	return tr.startInternal(ctx)
}

// Next is part of the RowSource interface.
func (tr *tableReader) Next(ctx context.Context) (tree.Datums, error) {
	for tr.state == stateRunning {
		if err := tr.checkCancel(ctx); err != nil {
			return nil, err
		}
		if tr.nextRow >= tr.table.RowCount() {
			tr.state = stateExhausted
			break
		}
		row := tr.table.Row(tr.nextRow)
		tr.nextRow++
		if len(row) < tr.width {
			return nil, tr.moveToExhausted(errors.AssertionFailedf(
				"row %d of table %s has %d values, expected %d",
				tr.nextRow-1, tr.table.Name(), len(row), tr.table.ColumnCount()))
		}
		out, err := tr.processRowHelper(ctx, row[:tr.width])
		if err != nil {
			return nil, err
		}
		if out != nil {
			return out, nil
		}
	}
	return nil, nil
}
