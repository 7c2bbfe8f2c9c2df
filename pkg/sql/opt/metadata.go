// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt/cat"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
)

// Metadata assigns unique ids to the columns and tables that are referenced
// by a query plan. Operators refer to columns only by ColumnID; the metadata
// is where a ColumnID's name and type are found.
//
// Every column in the plan, including the result columns of table functions,
// gets its own id. Because ids are never reused, comparing two ColumnIDs is
// enough to know whether they refer to the same column.
//
// Metadata is not thread-safe. It is populated while a plan is built and is
// read-only afterwards.
type Metadata struct {
	// cols stores information about each metadata column, indexed by
	// ColumnID.index().
	cols []ColumnMeta

	// tables stores information about each metadata table, indexed by
	// TableID.index().
	tables []TableMeta
}

// Init prepares the metadata for use (or reuse).
func (md *Metadata) Init() {
	*md = Metadata{}
}

// AddColumn assigns a new unique id to a column within the query and records
// its alias and type. If the alias is empty, a "column<ID>" alias is created.
func (md *Metadata) AddColumn(alias string, typ *types.T) ColumnID {
	colID := ColumnID(len(md.cols) + 1)
	if alias == "" {
		alias = fmt.Sprintf("column%d", colID)
	}
	md.cols = append(md.cols, ColumnMeta{MetaID: colID, Alias: alias, Type: typ})
	return colID
}

// NumColumns returns the count of columns tracked by this Metadata instance.
func (md *Metadata) NumColumns() int {
	return len(md.cols)
}

// ColumnMeta looks up the metadata for the column associated with the given
// column id. The same column can be added multiple times to the query
// metadata and associated with multiple column ids.
func (md *Metadata) ColumnMeta(colID ColumnID) *ColumnMeta {
	if colID <= 0 || colID.index() >= len(md.cols) {
		panic(errors.AssertionFailedf("column %d does not exist in the metadata", colID))
	}
	return &md.cols[colID.index()]
}

// HasColumn returns true if the column id was allocated by this metadata.
func (md *Metadata) HasColumn(colID ColumnID) bool {
	return colID > 0 && colID.index() < len(md.cols)
}

// AddTable indexes a new reference to a table within the query. Separate
// references to the same table are assigned different table ids (e.g. in a
// self-join query). All columns are added to the metadata with sequential
// ids.
func (md *Metadata) AddTable(tab cat.Table, alias string) TableID {
	tabID := makeTableID(len(md.tables), ColumnID(len(md.cols)+1))
	md.tables = append(md.tables, TableMeta{MetaID: tabID, Table: tab, Alias: alias})

	for i, n := 0, tab.ColumnCount(); i < n; i++ {
		col := tab.Column(i)
		colID := md.AddColumn(col.Name, col.Type)
		md.cols[colID.index()].Table = tabID
	}
	return tabID
}

// TableMeta looks up the metadata for the table associated with the given
// table id.
func (md *Metadata) TableMeta(tabID TableID) *TableMeta {
	if tabID == 0 || tabID.index() >= len(md.tables) {
		panic(errors.AssertionFailedf("table %d does not exist in the metadata", tabID))
	}
	return &md.tables[tabID.index()]
}

// Table looks up the catalog table associated with the given metadata id.
func (md *Metadata) Table(tabID TableID) cat.Table {
	return md.TableMeta(tabID).Table
}

// AllTables returns the metadata for all tables.
func (md *Metadata) AllTables() []TableMeta {
	return md.tables
}

// QualifiedAlias returns the column alias followed by its id, like "elem:3".
func (md *Metadata) QualifiedAlias(colID ColumnID) string {
	if !md.HasColumn(colID) {
		return fmt.Sprintf("@%d", colID)
	}
	return fmt.Sprintf("%s:%d", md.ColumnMeta(colID).Alias, colID)
}
