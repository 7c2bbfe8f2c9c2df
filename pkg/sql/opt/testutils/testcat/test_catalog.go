// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package testcat provides an in-memory catalog for tests, the opt tester
// and the command line tool. Tables hold their rows in memory so that plans
// built against the catalog can be executed.
package testcat

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt/cat"
	"github.com/cockroachdb/physopt/pkg/sql/opt/optbuilder"
	"github.com/cockroachdb/physopt/pkg/sql/rowexec"
	"github.com/cockroachdb/physopt/pkg/sql/sem/builtins"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/physopt/pkg/util/treeprinter"
	"gopkg.in/yaml.v3"
)

// ErrUndefinedTable is returned, possibly wrapped, when a table name cannot
// be resolved.
var ErrUndefinedTable = errors.New("undefined table")

// Catalog implements the cat.Catalog interface for testing purposes.
type Catalog struct {
	tables    map[string]*Table
	functions *cat.FunctionRegistry
	counter   int
}

var _ cat.Catalog = &Catalog{}

// New creates a new empty instance of the test catalog, which resolves table
// functions to the builtin generators.
func New() *Catalog {
	return NewWithFunctions(builtins.Registry)
}

// NewWithFunctions creates an empty catalog that resolves table functions
// through the given registry.
func NewWithFunctions(functions *cat.FunctionRegistry) *Catalog {
	return &Catalog{
		tables:    make(map[string]*Table),
		functions: functions,
		// Leave room for the ids of virtual tables.
		counter: 100,
	}
}

// ResolveTable is part of the cat.Catalog interface.
func (tc *Catalog) ResolveTable(_ context.Context, name string) (cat.Table, error) {
	if tab, ok := tc.tables[strings.ToLower(name)]; ok {
		return tab, nil
	}
	if vt, ok := tc.resolveVTable(name); ok {
		return vt, nil
	}
	return nil, errors.Mark(errors.Newf("table %q does not exist", name), ErrUndefinedTable)
}

// ResolveTableFunction is part of the cat.Catalog interface.
func (tc *Catalog) ResolveTableFunction(
	_ context.Context, name string,
) (*cat.TableFunction, error) {
	return tc.functions.Lookup(name)
}

// Table returns the table with the given name, or nil.
func (tc *Catalog) Table(name string) *Table {
	return tc.tables[strings.ToLower(name)]
}

// Tables returns the tables of the catalog ordered by name.
func (tc *Catalog) Tables() []*Table {
	res := make([]*Table, 0, len(tc.tables))
	for _, tab := range tc.tables {
		res = append(res, tab)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].TabName < res[j].TabName })
	return res
}

// AddTable adds the given test table to the catalog. A table with the same
// name is replaced.
func (tc *Catalog) AddTable(tab *Table) {
	if tab.TabID == 0 {
		tab.TabID = tc.nextStableID()
	}
	tc.tables[strings.ToLower(tab.TabName)] = tab
}

// TableDef is the YAML form of a table definition:
//
//	table: t
//	columns: [id:int, arr:int[]]
//	rows:
//	  - [1, [10, 20]]
//	  - [2, []]
type TableDef struct {
	Table   string      `yaml:"table"`
	Columns []string    `yaml:"columns"`
	Rows    []yaml.Node `yaml:"rows"`
}

// ExecuteDDL parses one or more YAML table definitions, separated by "---",
// and adds the tables to the catalog. It returns the formatted tables.
func (tc *Catalog) ExecuteDDL(input string) (string, error) {
	dec := yaml.NewDecoder(strings.NewReader(input))
	dec.KnownFields(true)
	var buf strings.Builder
	for {
		var def TableDef
		if err := dec.Decode(&def); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", errors.Wrap(err, "parsing table definition")
		}
		tab, err := tc.CreateTable(&def)
		if err != nil {
			return "", err
		}
		buf.WriteString(tab.String())
	}
	return buf.String(), nil
}

// CreateTable creates a test table from a parsed definition and adds it to
// the catalog.
func (tc *Catalog) CreateTable(def *TableDef) (*Table, error) {
	if def.Table == "" {
		return nil, errors.New("table definition has no name")
	}
	tab := &Table{TabName: def.Table}
	for _, c := range def.Columns {
		name, typ, err := optbuilder.ParseColumnDef(c)
		if err != nil {
			return nil, err
		}
		tab.Columns = append(tab.Columns, cat.Column{Name: name, Type: typ})
	}
	for i := range def.Rows {
		row, err := parseRow(tab.Columns, &def.Rows[i])
		if err != nil {
			return nil, errors.Wrapf(err, "table %s: row %d", def.Table, i)
		}
		tab.Rows = append(tab.Rows, row)
	}
	tc.AddTable(tab)
	return tab, nil
}

func (tc *Catalog) nextStableID() cat.StableID {
	tc.counter++
	return cat.StableID(tc.counter)
}

// parseRow converts a YAML list of values to a row of the given columns.
func parseRow(cols []cat.Column, row *yaml.Node) (tree.Datums, error) {
	if row.Kind != yaml.SequenceNode {
		return nil, errors.New("expected a list of values")
	}
	if len(row.Content) != len(cols) {
		return nil, errors.Newf("found %d values, expected %d", len(row.Content), len(cols))
	}
	res := make(tree.Datums, len(cols))
	for i, val := range row.Content {
		d, err := optbuilder.ParseValue(cols[i].Type, val)
		if err != nil {
			return nil, errors.Wrapf(err, "column %s", cols[i].Name)
		}
		res[i] = d
	}
	return res, nil
}

// Table implements the cat.Table interface for testing purposes. Its rows
// are held in memory.
type Table struct {
	TabID   cat.StableID
	TabName string
	Columns []cat.Column
	Rows    []tree.Datums
}

var _ cat.Table = &Table{}
var _ rowexec.TableRows = &Table{}

func (tt *Table) String() string {
	tp := treeprinter.New()
	formatTable(tt, tp)
	return tp.String()
}

// ID is part of the cat.Object interface.
func (tt *Table) ID() cat.StableID {
	return tt.TabID
}

// Name is part of the cat.Table interface.
func (tt *Table) Name() string {
	return tt.TabName
}

// ColumnCount is part of the cat.Table interface.
func (tt *Table) ColumnCount() int {
	return len(tt.Columns)
}

// Column is part of the cat.Table interface.
func (tt *Table) Column(i int) cat.Column {
	return tt.Columns[i]
}

// RowCount is part of the rowexec.TableRows interface.
func (tt *Table) RowCount() int {
	return len(tt.Rows)
}

// Row is part of the rowexec.TableRows interface.
func (tt *Table) Row(i int) tree.Datums {
	return tt.Rows[i]
}

// formatTable nicely formats a catalog table using a treeprinter for
// debugging and testing.
func formatTable(tab cat.Table, tp treeprinter.Node) {
	child := tp.Childf("TABLE %s", tab.Name())
	for i := 0; i < tab.ColumnCount(); i++ {
		col := tab.Column(i)
		child.Childf("%s %s", col.Name, col.Type)
	}
	if rows, ok := tab.(rowexec.TableRows); ok && rows.RowCount() > 0 {
		child.Child(fmt.Sprintf("%d rows", rows.RowCount()))
	}
}
