// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package rowexec contains a row-at-a-time reference executor for physical
// operator trees. Each processor produces the rows of one operator and then
// applies the operator's attribute bundle through a ProcOutputHelper.
package rowexec

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/physopt/pkg/util/log"
)

// RowSource is a pull-based source of rows.
//
// Start must be called before Next. Next returns a nil row once the source is
// exhausted; after that, or after an error, Next keeps returning a nil row.
// Close releases the resources of the source and of its inputs and may be
// called at any point after Start.
type RowSource interface {
	// OutputCols returns the columns of the emitted rows, in order.
	OutputCols() opt.ColList
	Start(ctx context.Context) error
	Next(ctx context.Context) (tree.Datums, error)
	Close(ctx context.Context)
}

// procState is the state of a processor.
type procState uint8

const (
	// stateRunning is the state in which Next is producing rows.
	stateRunning procState = iota
	// stateExhausted is the state reached once the processor has emitted its
	// last row, hit its limit, or encountered an error.
	stateExhausted
)

// processorBase is embedded by all processors. It owns the output helper,
// which post-processes produced rows according to the attribute bundle, and
// the (optional) input.
type processorBase struct {
	name   string
	input  RowSource
	state  procState
	closed bool
	out    ProcOutputHelper
}

func (pb *processorBase) init(
	name string, attrs memo.Attrs, produced opt.ColList, input RowSource,
) error {
	pb.name = name
	pb.input = input
	return pb.out.Init(attrs, produced)
}

// OutputCols is part of the RowSource interface.
func (pb *processorBase) OutputCols() opt.ColList {
	return pb.out.OutputCols()
}

// startInternal starts the input, if any. A processor whose limit is zero
// never needs to produce a row.
func (pb *processorBase) startInternal(ctx context.Context) error {
	log.VEventf(log.WithTag(ctx, "proc", pb.name), 2, "starting")
	if pb.input != nil {
		if err := pb.input.Start(ctx); err != nil {
			return pb.moveToExhausted(err)
		}
	}
	if pb.out.LimitReached() {
		pb.state = stateExhausted
	}
	return nil
}

// processRowHelper applies the attribute bundle to a produced row. It returns
// nil if the row was filtered out. Once the limit is reached the processor
// moves to the exhausted state, although the returned row must still be
// emitted.
func (pb *processorBase) processRowHelper(ctx context.Context, row tree.Datums) (tree.Datums, error) {
	out, moreRowsOK, err := pb.out.ProcessRow(ctx, row)
	if err != nil {
		return nil, pb.moveToExhausted(err)
	}
	if !moreRowsOK {
		pb.state = stateExhausted
	}
	return out, nil
}

// checkCancel returns an error if ctx has been canceled.
func (pb *processorBase) checkCancel(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return pb.moveToExhausted(errors.Wrapf(err, "%s", pb.name))
	}
	return nil
}

func (pb *processorBase) moveToExhausted(err error) error {
	pb.state = stateExhausted
	return err
}

// Close is part of the RowSource interface.
func (pb *processorBase) Close(ctx context.Context) {
	if pb.closed {
		return
	}
	pb.closed = true
	pb.state = stateExhausted
	if pb.input != nil {
		pb.input.Close(ctx)
	}
	log.VEventf(log.WithTag(ctx, "proc", pb.name), 2, "closed after emitting %d rows", pb.out.RowsEmitted())
}

// Drain starts src, reads all of its rows and closes it.
func Drain(ctx context.Context, src RowSource) ([]tree.Datums, error) {
	if err := src.Start(ctx); err != nil {
		src.Close(ctx)
		return nil, err
	}
	defer src.Close(ctx)
	var rows []tree.Datums
	for {
		row, err := src.Next(ctx)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return rows, nil
		}
		rows = append(rows, row)
	}
}
