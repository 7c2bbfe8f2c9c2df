// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/cat"
)

// TableFunctionOp calls a set-returning function once for every row of its
// input, passing the values of the ParamCols columns as arguments. Each row
// the function returns is paired with the OuterCols values of the input row
// that produced it, so the operator behaves as an inner lateral join between
// its input and the function. An input row for which the function returns no
// rows contributes nothing to the output.
//
// The operator produces OuterCols followed by ResultCols; its attributes are
// then applied to those rows.
type TableFunctionOp struct {
	physicalBase
	fn         *cat.TableFunction
	resultCols opt.ColList
	outerCols  opt.ColList
	paramCols  opt.ColList
}

var _ PhysicalOperator = &TableFunctionOp{}

// NewTableFunctionOp returns a table function operator. It returns an error
// marked with opt.ErrInvalidOperator if:
//
//   - fn is nil;
//   - resultCols is empty or doesn't match the number of result columns of fn;
//   - paramCols doesn't match the arity of fn;
//   - any list contains a duplicate or unknown column;
//   - outerCols and resultCols share a column;
//   - attrs reference columns other than outerCols and resultCols.
//
// The column lists are copied.
func NewTableFunctionOp(
	fn *cat.TableFunction, resultCols, outerCols, paramCols opt.ColList, attrs Attrs,
) (*TableFunctionOp, error) {
	const op = opt.TableFunctionOp
	if fn == nil {
		return nil, opt.NewInvalidOperatorErrorf(op, "no function")
	}
	if len(resultCols) == 0 {
		return nil, opt.NewInvalidOperatorErrorf(op, "%s: no result columns", fn)
	}
	if len(resultCols) != fn.ResultColumnCount() {
		return nil, opt.NewInvalidOperatorErrorf(op,
			"%s: function returns %d columns, found %d result columns",
			fn, fn.ResultColumnCount(), len(resultCols))
	}
	if len(paramCols) != fn.Arity() {
		return nil, opt.NewInvalidOperatorErrorf(op,
			"%s: bad arity: function takes %d arguments, found %d parameter columns",
			fn, fn.Arity(), len(paramCols))
	}
	if err := validateColList(op, "result columns", resultCols); err != nil {
		return nil, err
	}
	if err := validateColList(op, "outer columns", outerCols); err != nil {
		return nil, err
	}
	if err := validateColList(op, "parameter columns", paramCols); err != nil {
		return nil, err
	}
	if overlap := outerCols.ToSet().Intersection(resultCols.ToSet()); !overlap.Empty() {
		return nil, opt.NewInvalidOperatorErrorf(op,
			"%s: outer columns and result columns overlap on %s", fn, overlap)
	}

	t := &TableFunctionOp{
		fn:         fn,
		resultCols: resultCols.Copy(),
		outerCols:  outerCols.Copy(),
		paramCols:  paramCols.Copy(),
	}
	if err := attrs.Validate(op, t.ProducedCols()); err != nil {
		return nil, err
	}
	t.attrs = attrs

	h := newHasher(op, attrs)
	h.addInt(int(fn.ID()))
	h.addString(fn.Name())
	h.addColList(resultCols)
	h.addColList(outerCols)
	h.addColList(paramCols)
	t.hash = h.h
	return t, nil
}

// Op is part of the PhysicalOperator interface.
func (t *TableFunctionOp) Op() opt.Operator { return opt.TableFunctionOp }

// Fn returns the descriptor of the called function.
func (t *TableFunctionOp) Fn() *cat.TableFunction { return t.fn }

// ResultCols returns a copy of the columns bound to the function's result.
func (t *TableFunctionOp) ResultCols() opt.ColList { return t.resultCols.Copy() }

// OuterCols returns a copy of the input columns carried into the output.
func (t *TableFunctionOp) OuterCols() opt.ColList { return t.outerCols.Copy() }

// ParamCols returns a copy of the input columns passed as arguments.
func (t *TableFunctionOp) ParamCols() opt.ColList { return t.paramCols.Copy() }

// ProducedCols returns OuterCols followed by ResultCols, which are the
// columns of the rows the operator builds before its attributes are applied.
func (t *TableFunctionOp) ProducedCols() opt.ColList {
	res := make(opt.ColList, 0, len(t.outerCols)+len(t.resultCols))
	res = append(res, t.outerCols...)
	return append(res, t.resultCols...)
}

// OutputCols returns OuterCols followed by ResultCols as a fresh slice. It
// ignores the attributes; the columns left after a projection are given by
// memo.OutputCols of the expression.
func (t *TableFunctionOp) OutputCols() opt.ColList {
	return t.ProducedCols()
}

// Equals is part of the PhysicalOperator interface.
func (t *TableFunctionOp) Equals(other PhysicalOperator) bool {
	o, ok := sameKind[*TableFunctionOp](other)
	if !ok {
		return false
	}
	return t.fn.Equals(o.fn) &&
		t.resultCols.Equals(o.resultCols) &&
		t.outerCols.Equals(o.outerCols) &&
		t.paramCols.Equals(o.paramCols) &&
		t.attrs.Equals(o.attrs)
}

func (t *TableFunctionOp) accept(d dispatcher) { d.visitTableFunction(t) }
