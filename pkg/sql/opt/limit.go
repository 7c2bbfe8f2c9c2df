// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// Limit is the maximum number of rows an operator may emit. The zero value is
// the "unbounded" sentinel; MakeLimit constructs a bound, which may be zero.
type Limit struct {
	rows int64
	set  bool
}

// Unbounded is the Limit that never truncates the output.
var Unbounded = Limit{}

// MakeLimit returns a limit of the given number of rows. A negative number of
// rows is an error.
func MakeLimit(rows int64) (Limit, error) {
	if rows < 0 {
		return Limit{}, errors.Mark(
			errors.Newf("limit must be non-negative, found %d", rows), ErrInvalidOperator)
	}
	return Limit{rows: rows, set: true}, nil
}

// IsSet returns false for the unbounded limit.
func (l Limit) IsSet() bool { return l.set }

// Rows returns the bound; it is only meaningful if IsSet is true.
func (l Limit) Rows() int64 { return l.rows }

// Reached returns true if emitting n rows satisfies the limit.
func (l Limit) Reached(n int64) bool {
	return l.set && n >= l.rows
}

func (l Limit) String() string {
	if !l.set {
		return "unbounded"
	}
	return strconv.FormatInt(l.rows, 10)
}

// SafeFormat implements redact.SafeFormatter.
func (l Limit) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(l.String()))
}
