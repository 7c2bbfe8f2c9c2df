// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cat

import "github.com/cockroachdb/physopt/pkg/sql/sem/types"

// StableID permanently and uniquely identifies a catalog object (table or
// function) within its catalog.
type StableID uint64

// Object is implemented by all objects in the catalog.
type Object interface {
	// ID is the unique, stable identifier for this object.
	ID() StableID
}

// Column describes a single column of a data source.
type Column struct {
	// Name is the column name.
	Name string
	// Type is the column's data type.
	Type *types.T
}

// Table is an interface to a database table, exposing only the information
// needed by the optimizer.
type Table interface {
	Object

	// Name returns the unqualified name of the table.
	Name() string

	// ColumnCount returns the number of columns in the table.
	ColumnCount() int

	// Column returns the column at the given ordinal position.
	Column(ord int) Column
}
