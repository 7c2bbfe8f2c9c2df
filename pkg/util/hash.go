// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package util

// Magic FNV Base constant as suitable for a FNV-64 hash.
const fnvBase = uint64(14695981039346656037)
const fnvPrime = 1099511628211

// FNV64Init returns the initial state of an FNV-64 hash.
func FNV64Init() uint64 {
	return fnvBase
}

// FNV64AddToHash folds a 32-bit value into the hash.
func FNV64AddToHash(s0 uint64, c int32) uint64 {
	s0 *= fnvPrime
	s0 ^= uint64(c)
	return s0
}

// FNV64AddUint64 folds a 64-bit value into the hash, one byte at a time.
func FNV64AddUint64(s0 uint64, v uint64) uint64 {
	for i := 0; i < 8; i++ {
		s0 *= fnvPrime
		s0 ^= v & 0xff
		v >>= 8
	}
	return s0
}

// FNV64AddString folds the bytes of s into the hash.
func FNV64AddString(s0 uint64, s string) uint64 {
	for i := 0; i < len(s); i++ {
		s0 *= fnvPrime
		s0 ^= uint64(s[i])
	}
	// Fold in the length so that adjacent strings can't run together.
	return FNV64AddToHash(s0, int32(len(s)))
}

// FNV64ToByteArray renders the hash as 16 hex digits, least significant
// nibble first.
func FNV64ToByteArray(s0 uint64) []byte {
	b := make([]byte, 16)
	const hex = "0123456789abcdef"
	for i := 0; i < 16; i++ {
		b[i] = hex[s0&0xf]
		s0 = s0 >> 4
	}
	return b
}
