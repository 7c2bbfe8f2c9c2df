// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package types describes the SQL types of columns and function signatures.
package types

import (
	"github.com/cockroachdb/redact"
	"github.com/lib/pq/oid"
)

// Family groups types that share a datum representation.
type Family int32

// Type families.
const (
	UnknownFamily Family = iota
	BoolFamily
	IntFamily
	FloatFamily
	DecimalFamily
	StringFamily
	ArrayFamily
	// AnyFamily is the family of the polymorphic "anyelement" type, which is
	// only valid in function signatures.
	AnyFamily
)

var familyNames = [...]string{
	UnknownFamily: "unknown",
	BoolFamily:    "bool",
	IntFamily:     "int",
	FloatFamily:   "float",
	DecimalFamily: "decimal",
	StringFamily:  "string",
	ArrayFamily:   "array",
	AnyFamily:     "anyelement",
}

// String implements fmt.Stringer.
func (f Family) String() string {
	if f < 0 || int(f) >= len(familyNames) {
		return "unknown"
	}
	return familyNames[f]
}

// T is an immutable SQL type. Types are shared by pointer; the predefined
// instances below can be compared with ==, other types with Identical.
type T struct {
	family        Family
	oid           oid.Oid
	arrayContents *T
}

var (
	// Unknown is the type of a NULL literal with no other context.
	Unknown = &T{family: UnknownFamily, oid: oid.T_unknown}
	// Bool is the type of a boolean true/false value.
	Bool = &T{family: BoolFamily, oid: oid.T_bool}
	// Int is the type of a 64-bit signed integer.
	Int = &T{family: IntFamily, oid: oid.T_int8}
	// Float is the type of a 64-bit IEEE 754 floating point number.
	Float = &T{family: FloatFamily, oid: oid.T_float8}
	// Decimal is the type of an arbitrary precision decimal number.
	Decimal = &T{family: DecimalFamily, oid: oid.T_numeric}
	// String is the type of a variable-length UTF-8 string.
	String = &T{family: StringFamily, oid: oid.T_text}
	// Any is a polymorphic type that matches every type. It is only used in
	// function signatures.
	Any = &T{family: AnyFamily, oid: oid.T_anyelement}
	// AnyArray matches an array of any element type.
	AnyArray = &T{family: ArrayFamily, oid: oid.T_anyarray, arrayContents: Any}

	// IntArray is the type of an array of Int values.
	IntArray = MakeArray(Int)
	// StringArray is the type of an array of String values.
	StringArray = MakeArray(String)
)

// MakeArray constructs an array type with the given element type.
func MakeArray(typ *T) *T {
	return &T{family: ArrayFamily, oid: CalcArrayOid(typ), arrayContents: typ}
}

// Family returns the type's family.
func (t *T) Family() Family { return t.family }

// Oid returns the Postgres object ID of the type.
func (t *T) Oid() oid.Oid { return t.oid }

// ArrayContents returns the element type of an array type, or nil.
func (t *T) ArrayContents() *T { return t.arrayContents }

// Identical returns true if the two types are exactly the same.
func (t *T) Identical(other *T) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil || t.family != other.family || t.oid != other.oid {
		return false
	}
	if t.arrayContents == nil || other.arrayContents == nil {
		return t.arrayContents == other.arrayContents
	}
	return t.arrayContents.Identical(other.arrayContents)
}

// Equivalent returns true if a value of type other can be used where type t
// is expected. The Any family is equivalent to everything, and Unknown (the
// type of NULL) is accepted anywhere.
func (t *T) Equivalent(other *T) bool {
	if t.family == AnyFamily || other.family == AnyFamily {
		return true
	}
	if t.family == UnknownFamily || other.family == UnknownFamily {
		return true
	}
	if t.family != other.family {
		return false
	}
	if t.family == ArrayFamily {
		return t.arrayContents.Equivalent(other.arrayContents)
	}
	return true
}

// Name returns the lower-case name of the type, like "int" or "string[]".
func (t *T) Name() string {
	switch t.family {
	case ArrayFamily:
		if t.arrayContents.family == AnyFamily {
			return "anyarray"
		}
		return t.arrayContents.Name() + "[]"
	default:
		return t.family.String()
	}
}

// String implements fmt.Stringer.
func (t *T) String() string { return t.Name() }

// SafeValue implements redact.SafeValue; type names are never sensitive.
func (*T) SafeValue() {}

var _ redact.SafeValue = (*T)(nil)

// SQLString returns the Postgres name of the type, like "INT8".
func (t *T) SQLString() string {
	if name, ok := oid.TypeName[t.oid]; ok {
		return name
	}
	return PGDisplayName(t)
}
