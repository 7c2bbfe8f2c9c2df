// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt

import "github.com/cockroachdb/errors"

// ErrInvalidOperator marks errors returned when a physical operator is
// constructed with arguments that violate its invariants. Test for it with
// errors.Is.
var ErrInvalidOperator = errors.New("invalid physical operator")

// NewInvalidOperatorErrorf returns an error marked with ErrInvalidOperator
// whose message is prefixed by the operator name.
func NewInvalidOperatorErrorf(op Operator, format string, args ...interface{}) error {
	err := errors.NewWithDepthf(1, format, args...)
	return errors.Mark(errors.Wrapf(err, "%s", op), ErrInvalidOperator)
}
