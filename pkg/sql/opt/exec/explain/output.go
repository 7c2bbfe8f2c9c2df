// Copyright 2020 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package explain

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
)

// ResultColumn describes a column emitted by a node.
type ResultColumn struct {
	Name string
	Typ  *types.T
}

// ResultColumns is the list of columns emitted by a node.
type ResultColumns []ResultColumn

// Row is a row of EXPLAIN output. Each node contributes a row with an empty
// Field, followed by one row per attribute.
type Row struct {
	Level       int
	Node        string
	Field       string
	Description string
}

// OutputBuilder is used to build the output of an explain tree.
//
// See ExampleOutputBuilder for sample usage.
type OutputBuilder struct {
	flags   Flags
	entries []entry

	// Current depth level (# of EnterNode() calls - # of LeaveNode() calls).
	level int
}

// NewOutputBuilder creates a new OutputBuilder.
//
// EnterNode / EnterMetaNode and AddField should be used to build up the
// output, after which one of the Build methods is called.
func NewOutputBuilder(flags Flags) *OutputBuilder {
	return &OutputBuilder{flags: flags}
}

type entry struct {
	level int
	node  string // if empty, the entry is a field.
	field string
	value string
}

func (e *entry) isNode() bool {
	return e.node != ""
}

// fieldStr returns a "field" or "field: value" string; only used when this
// entry is a field.
func (e *entry) fieldStr() string {
	if e.value == "" {
		return e.field
	}
	return fmt.Sprintf("%s: %s", e.field, e.value)
}

// EnterNode creates a new node as a child of the current node. In verbose
// mode, the columns of the node are added as its first field.
func (ob *OutputBuilder) EnterNode(name string, columns ResultColumns) {
	ob.EnterMetaNode(name)
	if ob.flags.Verbose {
		ob.AddField("columns", ob.columnsStr(columns))
	}
}

// EnterMetaNode is like EnterNode, but the output will always have empty
// strings for the columns.
func (ob *OutputBuilder) EnterMetaNode(name string) {
	ob.level++
	ob.entries = append(ob.entries, entry{level: ob.level, node: name})
}

// LeaveNode moves the current node back up the tree by one level.
func (ob *OutputBuilder) LeaveNode() {
	if ob.level == 0 {
		panic(errors.AssertionFailedf("LeaveNode called without a matching EnterNode"))
	}
	ob.level--
}

// AddField adds an information field under the current node. Fields added
// before any node are top-level fields.
func (ob *OutputBuilder) AddField(key, value string) {
	ob.entries = append(ob.entries, entry{level: ob.level, field: key, value: value})
}

// Attr adds an information field under the current node.
func (ob *OutputBuilder) Attr(key string, value interface{}) {
	ob.AddField(key, fmt.Sprint(value))
}

// Attrf is a formatter version of Attr.
func (ob *OutputBuilder) Attrf(key, format string, args ...interface{}) {
	ob.AddField(key, fmt.Sprintf(format, args...))
}

// VAttr adds an information field under the current node, if the Verbose
// flag is set.
func (ob *OutputBuilder) VAttr(key string, value interface{}) {
	if ob.flags.Verbose {
		ob.Attr(key, value)
	}
}

// Value adds a field whose value comes from the plan. The value is replaced
// with an underscore if the HideValues flag is set.
func (ob *OutputBuilder) Value(key string, value string) {
	if ob.flags.HideValues {
		value = "_"
	}
	ob.AddField(key, value)
}

func (ob *OutputBuilder) columnsStr(columns ResultColumns) string {
	var buf bytes.Buffer
	buf.WriteByte('(')
	for i := range columns {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(columns[i].Name)
		if ob.flags.ShowTypes && columns[i].Typ != nil {
			fmt.Fprintf(&buf, " %s", columns[i].Typ)
		}
	}
	buf.WriteByte(')')
	return buf.String()
}

// BuildExplainRows builds the output rows, one per node and one per field.
func (ob *OutputBuilder) BuildExplainRows() []Row {
	rows := make([]Row, 0, len(ob.entries))
	node := ""
	for i := range ob.entries {
		e := &ob.entries[i]
		if e.isNode() {
			node = e.node
			rows = append(rows, Row{Level: e.level, Node: e.node})
			continue
		}
		if e.level == 0 {
			rows = append(rows, Row{Field: e.field, Description: e.value})
			continue
		}
		rows = append(rows, Row{Level: e.level, Node: node, Field: e.field, Description: e.value})
	}
	return rows
}

// BuildStringRows creates a string representation of the plan information and
// returns it as a list of strings (one for each row). The strings do not
// include newlines.
//
// Sample output:
//
//	• table function
//	│ function: explode(arr)
//	│
//	└── • values
//	      size: 2 columns, 2 rows
func (ob *OutputBuilder) BuildStringRows() []string {
	var rows []string
	i := 0
	// Top-level fields.
	for ; i < len(ob.entries) && !ob.entries[i].isNode(); i++ {
		rows = append(rows, ob.entries[i].fieldStr())
	}
	if len(rows) > 0 && i < len(ob.entries) {
		rows = append(rows, "")
	}
	for i < len(ob.entries) {
		if !ob.entries[i].isNode() {
			rows = append(rows, ob.entries[i].fieldStr())
			i++
			continue
		}
		rows, i = ob.buildNode(rows, i, "", "")
		if i < len(ob.entries) {
			rows = append(rows, "")
		}
	}
	return rows
}

// buildNode appends the rows of the node at entry i and its subtree, and
// returns the index of the entry that follows the subtree.
func (ob *OutputBuilder) buildNode(rows []string, i int, first, rest string) ([]string, int) {
	n := &ob.entries[i]
	rows = append(rows, first+"• "+n.node)

	end := i + 1
	var fields, children []int
	for ; end < len(ob.entries); end++ {
		e := &ob.entries[end]
		if e.level < n.level || (e.isNode() && e.level == n.level) {
			break
		}
		switch {
		case !e.isNode() && e.level == n.level:
			fields = append(fields, end)
		case e.isNode() && e.level == n.level+1:
			children = append(children, end)
		}
	}

	fieldPrefix := rest + "  "
	if len(children) > 0 {
		fieldPrefix = rest + "│ "
	}
	for _, f := range fields {
		rows = append(rows, strings.TrimRight(fieldPrefix+ob.entries[f].fieldStr(), " "))
	}
	for c, idx := range children {
		rows = append(rows, rest+"│")
		if c == len(children)-1 {
			rows, _ = ob.buildNode(rows, idx, rest+"└── ", rest+"    ")
		} else {
			rows, _ = ob.buildNode(rows, idx, rest+"├── ", rest+"│   ")
		}
	}
	return rows, end
}

// BuildString creates a string representation of the plan information.
// The output string always ends in a newline (unless it is empty).
func (ob *OutputBuilder) BuildString() string {
	rows := ob.BuildStringRows()
	var buf bytes.Buffer
	for _, row := range rows {
		buf.WriteString(row)
		buf.WriteString("\n")
	}
	return buf.String()
}
