// Copyright 2022 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package eval

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
)

// UnaryMinus negates a numeric datum.
func UnaryMinus(d tree.Datum) (tree.Datum, error) {
	switch t := d.(type) {
	case *tree.DInt:
		if *t == math.MinInt64 {
			return nil, tree.ErrIntOutOfRange
		}
		return tree.NewDInt(-*t), nil
	case *tree.DFloat:
		return tree.NewDFloat(-*t), nil
	case *tree.DDecimal:
		dd := &tree.DDecimal{}
		dd.Decimal.Neg(&t.Decimal)
		return dd, nil
	}
	return nil, errors.Newf("unary minus: unsupported type %s", d.ResolvedType())
}
