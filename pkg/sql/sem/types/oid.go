// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package types

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lib/pq/oid"
)

// OidToType maps Postgres object IDs to types. We export the map instead of a
// method so that other packages can iterate over the map directly.
var OidToType = map[oid.Oid]*T{
	oid.T_unknown:    Unknown,
	oid.T_anyelement: Any,
	oid.T_anyarray:   AnyArray,
	oid.T_bool:       Bool,
	oid.T__bool:      MakeArray(Bool),
	oid.T_int8:       Int,
	oid.T__int8:      IntArray,
	oid.T_float8:     Float,
	oid.T__float8:    MakeArray(Float),
	oid.T_numeric:    Decimal,
	oid.T__numeric:   MakeArray(Decimal),
	oid.T_text:       String,
	oid.T__text:      StringArray,
}

// aliasedOidToName maps Postgres object IDs to the names used when displaying
// them.
var aliasedOidToName = map[oid.Oid]string{
	oid.T_float8:   "float8",
	oid.T_int8:     "int8",
	oid.T_text:     "text",
	oid.T_numeric:  "numeric",
	oid.T_anyarray: "anyarray",
	oid.T__int8:    "_int8",
	oid.T__text:    "_text",
	oid.T__float8:  "_float8",
	oid.T__bool:    "_bool",
	oid.T__numeric: "_numeric",
}

// oidToArrayOid maps scalar type Oids to their corresponding array type Oid.
var oidToArrayOid = map[oid.Oid]oid.Oid{
	oid.T_anyelement: oid.T_anyarray,
	oid.T_bool:       oid.T__bool,
	oid.T_int8:       oid.T__int8,
	oid.T_text:       oid.T__text,
	oid.T_float8:     oid.T__float8,
	oid.T_numeric:    oid.T__numeric,
}

// CalcArrayOid returns the OID of the array type having elements of the given
// type, or oid.T_unknown if there is no such array type.
func CalcArrayOid(elemTyp *T) oid.Oid {
	if o, ok := oidToArrayOid[elemTyp.Oid()]; ok {
		return o
	}
	return oid.T_unknown
}

// PGDisplayName returns the Postgres display name for a given type.
func PGDisplayName(typ *T) string {
	if typname, ok := aliasedOidToName[typ.Oid()]; ok {
		return typname
	}
	return typ.Name()
}

// typeNames maps the names accepted by ParseType to types.
var typeNames = map[string]*T{
	"unknown":    Unknown,
	"bool":       Bool,
	"boolean":    Bool,
	"int":        Int,
	"int8":       Int,
	"integer":    Int,
	"float":      Float,
	"float8":     Float,
	"decimal":    Decimal,
	"numeric":    Decimal,
	"string":     String,
	"text":       String,
	"anyelement": Any,
	"anyarray":   AnyArray,
}

// ParseType resolves a type name like "int", "TEXT" or "int[]".
func ParseType(name string) (*T, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if strings.HasSuffix(lower, "[]") {
		elem, err := ParseType(strings.TrimSuffix(lower, "[]"))
		if err != nil {
			return nil, err
		}
		if elem.Family() == ArrayFamily {
			return nil, errors.Newf("nested array type %q is not supported", name)
		}
		if elem.Family() == AnyFamily {
			return AnyArray, nil
		}
		return MakeArray(elem), nil
	}
	if typ, ok := typeNames[lower]; ok {
		return typ, nil
	}
	return nil, errors.WithHint(
		errors.Newf("type %q does not exist", name),
		"supported types are bool, int, float, decimal, string and their arrays",
	)
}
