// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFNV64(t *testing.T) {
	h := FNV64Init()
	require.Equal(t, fnvBase, h)

	// The same sequence of values always produces the same hash.
	a := FNV64AddString(FNV64AddUint64(FNV64AddToHash(h, 7), 42), "unnest")
	b := FNV64AddString(FNV64AddUint64(FNV64AddToHash(h, 7), 42), "unnest")
	require.Equal(t, a, b)

	// Order matters.
	c := FNV64AddUint64(FNV64AddToHash(h, 42), 7)
	d := FNV64AddUint64(FNV64AddToHash(h, 7), 42)
	require.NotEqual(t, c, d)

	// String boundaries are folded in.
	e := FNV64AddString(FNV64AddString(h, "ab"), "c")
	f := FNV64AddString(FNV64AddString(h, "a"), "bc")
	require.NotEqual(t, e, f)

	require.Len(t, FNV64ToByteArray(a), 16)
	require.Equal(t, "0000000000000000", string(FNV64ToByteArray(0)))
}
