// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package testcat

import (
	"strings"

	"github.com/cockroachdb/physopt/pkg/sql/opt/cat"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
)

// TableFunctionsTableName is the name of the virtual table that lists the
// table functions known to the catalog.
const TableFunctionsTableName = "information_schema.table_functions"

const tableFunctionsTableID cat.StableID = 1

var tableFunctionsColumns = []cat.Column{
	{Name: "function_id", Type: types.Int},
	{Name: "function_name", Type: types.String},
	{Name: "arity", Type: types.Int},
	{Name: "parameter_types", Type: types.StringArray},
	{Name: "signature", Type: types.String},
}

// resolveVTable returns the virtual table with the given name. Virtual table
// rows are computed when the table is resolved.
func (tc *Catalog) resolveVTable(name string) (*Table, bool) {
	switch strings.ToLower(name) {
	case TableFunctionsTableName:
		tab := &Table{
			TabID:   tableFunctionsTableID,
			TabName: TableFunctionsTableName,
			Columns: tableFunctionsColumns,
		}
		for _, fn := range tc.functions.Functions() {
			params := tree.NewDArray(types.String)
			for i := 0; i < fn.Arity(); i++ {
				params.Array = append(params.Array, tree.NewDString(fn.ParamType(i).Name()))
			}
			tab.Rows = append(tab.Rows, tree.Datums{
				tree.NewDInt(tree.DInt(fn.ID())),
				tree.NewDString(fn.Name()),
				tree.NewDInt(tree.DInt(fn.Arity())),
				params,
				tree.NewDString(fn.Signature()),
			})
		}
		return tab, true
	}
	return nil, false
}
