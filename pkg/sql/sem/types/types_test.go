// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package types

import (
	"testing"

	"github.com/lib/pq/oid"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	testCases := []struct {
		in  string
		exp *T
	}{
		{"int", Int},
		{"INTEGER", Int},
		{"text", String},
		{"decimal", Decimal},
		{"int[]", IntArray},
		{"anyelement[]", AnyArray},
	}
	for _, tc := range testCases {
		typ, err := ParseType(tc.in)
		require.NoError(t, err, tc.in)
		require.True(t, tc.exp.Identical(typ), "%s: expected %s, got %s", tc.in, tc.exp, typ)
	}

	_, err := ParseType("geometry")
	require.Error(t, err)
	_, err = ParseType("int[][]")
	require.Error(t, err)
}

func TestTypeNames(t *testing.T) {
	require.Equal(t, "int[]", IntArray.Name())
	require.Equal(t, "anyarray", AnyArray.Name())
	require.Equal(t, oid.T__int8, IntArray.Oid())
	require.Equal(t, "INT8", Int.SQLString())
	require.Equal(t, "int8", PGDisplayName(Int))
}

func TestEquivalent(t *testing.T) {
	require.True(t, Any.Equivalent(Int))
	require.True(t, AnyArray.Equivalent(StringArray))
	require.False(t, AnyArray.Equivalent(String))
	require.True(t, Int.Equivalent(Unknown))
	require.False(t, Int.Equivalent(String))
	require.False(t, IntArray.Equivalent(StringArray))

	require.True(t, MakeArray(Int).Identical(IntArray))
	require.False(t, IntArray.Identical(StringArray))

	for o, typ := range OidToType {
		require.Equal(t, o, typ.Oid())
	}
}
