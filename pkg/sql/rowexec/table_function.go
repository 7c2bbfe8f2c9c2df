// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package rowexec

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/sem/builtins"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/physopt/pkg/util/log"
)

// tableFunctionProcessor applies a table function to every input row. For
// each input row, the function is called with the values of the parameter
// columns, and each row it returns is emitted together with the values of
// the outer columns. An input row for which the function returns no rows
// produces no output (inner lateral semantics).
type tableFunctionProcessor struct {
	processorBase

	op      *memo.TableFunctionOp
	factory builtins.GeneratorFactory

	// outerOrds and paramOrds are the positions of the outer and parameter
	// columns in the input rows.
	outerOrds []int
	paramOrds []int

	// gen is the generator for the current input row, or nil if the next
	// input row must be read.
	gen builtins.ValueGenerator

	produced tree.Datums
}

var _ RowSource = &tableFunctionProcessor{}

const tableFunctionProcName = "table function"

// NewTableFunctionProcessor returns a processor for a table function
// operator over the given input.
func NewTableFunctionProcessor(op *memo.TableFunctionOp, input RowSource) (RowSource, error) {
	factory, err := builtins.GetGenerator(op.Fn())
	if err != nil {
		return nil, err
	}
	inputCols := input.OutputCols()
	outerOrds, err := inputOrdinals(inputCols, op.OuterCols(), "outer")
	if err != nil {
		return nil, err
	}
	paramOrds, err := inputOrdinals(inputCols, op.ParamCols(), "parameter")
	if err != nil {
		return nil, err
	}
	tf := &tableFunctionProcessor{
		op:        op,
		factory:   factory,
		outerOrds: outerOrds,
		paramOrds: paramOrds,
		produced:  make(tree.Datums, len(outerOrds)+op.Fn().ResultColumnCount()),
	}
	if err := tf.init(tableFunctionProcName, op.Attrs(), op.ProducedCols(), input); err != nil {
		return nil, err
	}
	return tf, nil
}

func inputOrdinals(inputCols, cols opt.ColList, what string) ([]int, error) {
	ords := make([]int, len(cols))
	for i, col := range cols {
		ord, ok := inputCols.Find(col)
		if !ok {
			return nil, errors.AssertionFailedf(
				"%s column %d is not produced by the input %s", what, col, inputCols)
		}
		ords[i] = ord
	}
	return ords, nil
}

// Start is part of the RowSource interface.
func (tf *tableFunctionProcessor) Start(ctx context.Context) error {
	return tf.startInternal(ctx)
}

// Next is part of the RowSource interface.
func (tf *tableFunctionProcessor) Next(ctx context.Context) (tree.Datums, error) {
	for tf.state == stateRunning {
		if err := tf.checkCancel(ctx); err != nil {
			return nil, err
		}
		if tf.gen == nil {
			more, err := tf.nextInputRow(ctx)
			if err != nil {
				return nil, tf.moveToExhausted(err)
			}
			if !more {
				tf.state = stateExhausted
				break
			}
		}

		ok, err := tf.gen.Next(ctx)
		if err != nil {
			return nil, tf.moveToExhausted(err)
		}
		if !ok {
			tf.closeGenerator(ctx)
			continue
		}
		vals, err := tf.gen.Values()
		if err != nil {
			return nil, tf.moveToExhausted(err)
		}
		if len(vals) != tf.op.Fn().ResultColumnCount() {
			return nil, tf.moveToExhausted(errors.AssertionFailedf(
				"%s returned %d values, expected %d",
				tf.op.Fn(), len(vals), tf.op.Fn().ResultColumnCount()))
		}
		copy(tf.produced[len(tf.outerOrds):], vals)

		out, err := tf.processRowHelper(ctx, tf.produced)
		if err != nil {
			return nil, err
		}
		if out != nil {
			return out, nil
		}
	}
	return nil, nil
}

// nextInputRow reads the next input row and starts a generator for it. It
// returns false once the input is exhausted.
func (tf *tableFunctionProcessor) nextInputRow(ctx context.Context) (bool, error) {
	row, err := tf.input.Next(ctx)
	if err != nil || row == nil {
		return false, err
	}
	for i, ord := range tf.outerOrds {
		tf.produced[i] = row[ord]
	}
	args := make(tree.Datums, len(tf.paramOrds))
	for i, ord := range tf.paramOrds {
		args[i] = row[ord]
	}
	gen, err := tf.factory(ctx, args)
	if err != nil {
		return false, errors.Wrapf(err, "%s", tf.op.Fn())
	}
	if err := gen.Start(ctx); err != nil {
		gen.Close(ctx)
		return false, errors.Wrapf(err, "%s", tf.op.Fn())
	}
	log.VEventf(ctx, 3, "%s%s", tf.op.Fn(), args)
	tf.gen = gen
	return true, nil
}

func (tf *tableFunctionProcessor) closeGenerator(ctx context.Context) {
	if tf.gen != nil {
		tf.gen.Close(ctx)
		tf.gen = nil
	}
}

// Close is part of the RowSource interface.
func (tf *tableFunctionProcessor) Close(ctx context.Context) {
	tf.closeGenerator(ctx)
	tf.processorBase.Close(ctx)
}
