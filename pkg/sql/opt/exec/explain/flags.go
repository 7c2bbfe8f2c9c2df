// Copyright 2020 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package explain

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Flags are modifiers for EXPLAIN.
type Flags struct {
	// Verbose indicates that more metadata is shown, and plan columns and
	// ordering are shown.
	Verbose bool
	// ShowTypes indicates that the types of columns are shown.
	// If ShowTypes is true, then Verbose is also true.
	ShowTypes bool
	// If HideValues is true, we hide fields that may contain values from the
	// plan (e.g. constant rows and literals in filters).
	// If HideValues is true, then Verbose must be false.
	HideValues bool
}

// MakeFlags creates Flags from a list of EXPLAIN options. The recognized
// options are "verbose", "types" and "shape".
func MakeFlags(options ...string) (Flags, error) {
	var f Flags
	for _, o := range options {
		switch strings.ToLower(strings.TrimSpace(o)) {
		case "":
		case "verbose":
			f.Verbose = true
		case "types":
			f.Verbose = true
			f.ShowTypes = true
		case "shape":
			f.HideValues = true
		default:
			return Flags{}, errors.WithHint(
				errors.Newf("unknown EXPLAIN option %q", o),
				"supported options are verbose, types and shape")
		}
	}
	if f.HideValues && f.Verbose {
		return Flags{}, errors.Newf("the shape option cannot be combined with verbose or types")
	}
	return f, nil
}
