// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package tree

import (
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
)

// Datum represents a SQL value. Datums are immutable once constructed.
type Datum interface {
	// ResolvedType returns the type of the datum.
	ResolvedType() *types.T

	// Compare returns -1 if the receiver is less than other, 0 if receiver is
	// equal to other and +1 if receiver is greater than other. NULL sorts
	// before every other value and is equal to itself. Comparing datums of
	// incompatible types is an internal error and panics.
	Compare(other Datum) int

	// String returns the SQL literal form of the datum.
	String() string
}

// Datums is a slice of Datum values, typically a row.
type Datums []Datum

// String formats the row as "(d1, d2, ...)".
func (d Datums) String() string {
	var buf strings.Builder
	buf.WriteByte('(')
	for i, v := range d {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(v.String())
	}
	buf.WriteByte(')')
	return buf.String()
}

// Compare lexicographically compares two rows of the same length.
func (d Datums) Compare(other Datums) int {
	for i := range d {
		if c := d[i].Compare(other[i]); c != 0 {
			return c
		}
	}
	return 0
}

// ErrIntOutOfRange is reported when integer arithmetic overflows.
var ErrIntOutOfRange = errors.New("integer out of range")

// ErrDivByZero is reported on a division by zero.
var ErrDivByZero = errors.New("division by zero")

// DBool is the boolean Datum.
type DBool bool

// DBoolTrue is a pointer to the DBool(true) value and can be used in
// pointer comparison.
var DBoolTrue = &constDBoolTrue
var constDBoolTrue DBool = true

// DBoolFalse is a pointer to the DBool(false) value and can be used in
// pointer comparison.
var DBoolFalse = &constDBoolFalse
var constDBoolFalse DBool = false

// MakeDBool converts its argument to a *DBool, returning either DBoolTrue or
// DBoolFalse.
func MakeDBool(d DBool) *DBool {
	if d {
		return DBoolTrue
	}
	return DBoolFalse
}

// ResolvedType implements the Datum interface.
func (*DBool) ResolvedType() *types.T { return types.Bool }

// Compare implements the Datum interface.
func (d *DBool) Compare(other Datum) int {
	if other == DNull {
		return 1
	}
	v, ok := other.(*DBool)
	if !ok {
		panic(makeUnsupportedComparisonMessage(d, other))
	}
	switch {
	case !bool(*d) && bool(*v):
		return -1
	case bool(*d) && !bool(*v):
		return 1
	}
	return 0
}

func (d *DBool) String() string { return strconv.FormatBool(bool(*d)) }

// DInt is the int Datum.
type DInt int64

// NewDInt is a helper routine to create a *DInt initialized from its argument.
func NewDInt(d DInt) *DInt {
	return &d
}

// MustBeDInt attempts to retrieve a DInt from a Datum, panicking if the
// assertion fails.
func MustBeDInt(e Datum) DInt {
	i, ok := e.(*DInt)
	if !ok {
		panic(errors.AssertionFailedf("expected *DInt, found %T", e))
	}
	return *i
}

// ResolvedType implements the Datum interface.
func (*DInt) ResolvedType() *types.T { return types.Int }

// Compare implements the Datum interface.
func (d *DInt) Compare(other Datum) int {
	if other == DNull {
		return 1
	}
	switch v := other.(type) {
	case *DInt:
		return compareInts(int64(*d), int64(*v))
	case *DFloat:
		return compareFloats(float64(*d), float64(*v))
	case *DDecimal:
		var dd apd.Decimal
		dd.SetInt64(int64(*d))
		return dd.Cmp(&v.Decimal)
	}
	panic(makeUnsupportedComparisonMessage(d, other))
}

func (d *DInt) String() string { return strconv.FormatInt(int64(*d), 10) }

// DFloat is the float Datum.
type DFloat float64

// NewDFloat is a helper routine to create a *DFloat initialized from its
// argument.
func NewDFloat(d DFloat) *DFloat {
	return &d
}

// ResolvedType implements the Datum interface.
func (*DFloat) ResolvedType() *types.T { return types.Float }

// Compare implements the Datum interface.
func (d *DFloat) Compare(other Datum) int {
	if other == DNull {
		return 1
	}
	switch v := other.(type) {
	case *DFloat:
		return compareFloats(float64(*d), float64(*v))
	case *DInt:
		return compareFloats(float64(*d), float64(*v))
	case *DDecimal:
		var dd apd.Decimal
		if _, err := dd.SetFloat64(float64(*d)); err != nil {
			panic(errors.NewAssertionErrorWithWrappedErrf(err, "converting %v", *d))
		}
		return compareDecimals(&dd, &v.Decimal)
	}
	panic(makeUnsupportedComparisonMessage(d, other))
}

func (d *DFloat) String() string {
	f := float64(*d)
	if math.IsInf(f, 1) {
		return "+Inf"
	} else if math.IsInf(f, -1) {
		return "-Inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// DDecimal is the decimal Datum.
type DDecimal struct {
	apd.Decimal
}

// ParseDDecimal parses and returns the *DDecimal Datum value represented by
// the provided string, or an error if parsing is unsuccessful.
func ParseDDecimal(s string) (*DDecimal, error) {
	dd := &DDecimal{}
	if _, _, err := dd.SetString(strings.TrimSpace(s)); err != nil {
		return nil, errors.Wrapf(err, "could not parse %q as type decimal", s)
	}
	return dd, nil
}

// ResolvedType implements the Datum interface.
func (*DDecimal) ResolvedType() *types.T { return types.Decimal }

// Compare implements the Datum interface.
func (d *DDecimal) Compare(other Datum) int {
	if other == DNull {
		return 1
	}
	switch v := other.(type) {
	case *DDecimal:
		return compareDecimals(&d.Decimal, &v.Decimal)
	case *DInt, *DFloat:
		return -other.Compare(d)
	}
	panic(makeUnsupportedComparisonMessage(d, other))
}

func (d *DDecimal) String() string { return d.Decimal.String() }

// DString is the string Datum.
type DString string

// NewDString is a helper routine to create a *DString initialized from its
// argument.
func NewDString(d string) *DString {
	r := DString(d)
	return &r
}

// ResolvedType implements the Datum interface.
func (*DString) ResolvedType() *types.T { return types.String }

// Compare implements the Datum interface.
func (d *DString) Compare(other Datum) int {
	if other == DNull {
		return 1
	}
	v, ok := other.(*DString)
	if !ok {
		panic(makeUnsupportedComparisonMessage(d, other))
	}
	return strings.Compare(string(*d), string(*v))
}

func (d *DString) String() string {
	return "'" + strings.ReplaceAll(string(*d), "'", "''") + "'"
}

// DArray is the array Datum. Any Datum inserted into a DArray are treated as
// text during serialization.
type DArray struct {
	ParamTyp *types.T
	Array    Datums
}

// NewDArray returns a DArray containing elements of the specified type.
func NewDArray(paramTyp *types.T) *DArray {
	return &DArray{ParamTyp: paramTyp}
}

// Append appends a Datum to the array, whose parameterized type must be
// consistent with the type of the Datum.
func (d *DArray) Append(v Datum) error {
	if v != DNull && !d.ParamTyp.Equivalent(v.ResolvedType()) {
		return errors.AssertionFailedf(
			"cannot append %s to array containing %s", v.ResolvedType(), d.ParamTyp)
	}
	d.Array = append(d.Array, v)
	return nil
}

// Len returns the length of the array.
func (d *DArray) Len() int { return len(d.Array) }

// ResolvedType implements the Datum interface.
func (d *DArray) ResolvedType() *types.T { return types.MakeArray(d.ParamTyp) }

// Compare implements the Datum interface. Arrays compare element-wise, with
// a shorter prefix sorting first.
func (d *DArray) Compare(other Datum) int {
	if other == DNull {
		return 1
	}
	v, ok := other.(*DArray)
	if !ok {
		panic(makeUnsupportedComparisonMessage(d, other))
	}
	n := len(d.Array)
	if len(v.Array) < n {
		n = len(v.Array)
	}
	for i := 0; i < n; i++ {
		if c := d.Array[i].Compare(v.Array[i]); c != 0 {
			return c
		}
	}
	return compareInts(int64(len(d.Array)), int64(len(v.Array)))
}

func (d *DArray) String() string {
	var buf strings.Builder
	buf.WriteByte('{')
	for i, v := range d.Array {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(v.String())
	}
	buf.WriteByte('}')
	return buf.String()
}

type dNull struct{}

// DNull is the NULL Datum.
var DNull Datum = dNull{}

// ResolvedType implements the Datum interface.
func (dNull) ResolvedType() *types.T { return types.Unknown }

// Compare implements the Datum interface.
func (dNull) Compare(other Datum) int {
	if other == DNull {
		return 0
	}
	return -1
}

func (dNull) String() string { return "NULL" }

func compareInts(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloats(a, b float64) int {
	// NaN sorts before every other float.
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	case a == b:
		return 0
	case math.IsNaN(a):
		if math.IsNaN(b) {
			return 0
		}
		return -1
	}
	return 1
}

// compareDecimals orders decimals like compareFloats: NaN sorts before every
// other value and equals itself.
func compareDecimals(a, b *apd.Decimal) int {
	aNaN := a.Form == apd.NaN || a.Form == apd.NaNSignaling
	bNaN := b.Form == apd.NaN || b.Form == apd.NaNSignaling
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return -1
	case bNaN:
		return 1
	}
	return a.Cmp(b)
}

func makeUnsupportedComparisonMessage(d1, d2 Datum) error {
	return errors.AssertionFailedf("unsupported comparison: %s to %s",
		d1.ResolvedType(), d2.ResolvedType())
}
