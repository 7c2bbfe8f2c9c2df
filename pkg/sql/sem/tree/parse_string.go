// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package tree

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
)

// ParseDatum reads s as a value of type t. The string "NULL" (in any case)
// is the NULL datum for every type. Arrays are written as "{1,2,3}". When t is
// a polymorphic or unknown type, the datum type is inferred from s.
func ParseDatum(t *types.T, s string) (Datum, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "NULL") {
		return DNull, nil
	}
	switch t.Family() {
	case types.BoolFamily:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, makeParseError(s, t, err)
		}
		return MakeDBool(DBool(b)), nil
	case types.IntFamily:
		i, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return nil, makeParseError(s, t, err)
		}
		return NewDInt(DInt(i)), nil
	case types.FloatFamily:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, makeParseError(s, t, err)
		}
		return NewDFloat(DFloat(f)), nil
	case types.DecimalFamily:
		return ParseDDecimal(s)
	case types.StringFamily:
		return NewDString(unquote(s)), nil
	case types.ArrayFamily:
		return ParseDArray(t.ArrayContents(), s)
	case types.AnyFamily, types.UnknownFamily:
		return inferDatum(s)
	}
	return nil, errors.AssertionFailedf("unknown type %s", t)
}

// ParseDArray parses a one-dimensional array literal like "{1,2,NULL}".
func ParseDArray(elemTyp *types.T, s string) (*DArray, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return nil, errors.Newf("malformed array literal %q", s)
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	if elemTyp.Family() == types.AnyFamily {
		elemTyp = types.Unknown
	}
	arr := NewDArray(elemTyp)
	if body == "" {
		return arr, nil
	}
	for _, part := range strings.Split(body, ",") {
		d, err := ParseDatum(elemTyp, part)
		if err != nil {
			return nil, err
		}
		if arr.ParamTyp.Family() == types.UnknownFamily && d != DNull {
			arr.ParamTyp = d.ResolvedType()
		}
		if err := arr.Append(d); err != nil {
			return nil, err
		}
	}
	return arr, nil
}

// inferDatum picks the narrowest type that can represent s.
func inferDatum(s string) (Datum, error) {
	if strings.HasPrefix(s, "{") {
		return ParseDArray(types.Unknown, s)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewDInt(DInt(i)), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return NewDFloat(DFloat(f)), nil
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return MakeDBool(DBool(b)), nil
	}
	return NewDString(unquote(s)), nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}

func makeParseError(s string, typ *types.T, err error) error {
	return errors.Wrapf(err, "could not parse %q as type %s", s, typ)
}
