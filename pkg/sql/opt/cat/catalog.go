// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package cat contains interfaces that are used by the query optimizer to
// avoid including specifics of sqlbase structures in the opt code.
package cat

import "context"

// Catalog is an interface to a database catalog, exposing only the
// information needed by the query optimizer.
//
// NOTE: Catalog implementations need not be thread-safe. However, the objects
// returned by the Resolve methods (tables and functions) must be immutable
// after construction, and therefore also thread-safe.
type Catalog interface {
	// ResolveTable locates a table with the given name and returns it. If no
	// such table exists, an error is returned.
	ResolveTable(ctx context.Context, name string) (Table, error)

	// ResolveTableFunction locates a table function with the given name and
	// returns its descriptor. If no such function exists, an error is
	// returned.
	ResolveTableFunction(ctx context.Context, name string) (*TableFunction, error)
}
