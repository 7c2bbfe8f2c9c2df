// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package optbuilder builds physical plan trees from YAML plan descriptions.
//
// A plan description is a tree of nodes, one per physical operator. Every
// node names its operator and inputs, the fields of that operator and,
// optionally, its attributes:
//
//	op: table-function
//	fn: explode
//	outer: [id]
//	params: [arr]
//	results: [elem]
//	filter: (gt elem 10)
//	limit: 5
//	input:
//	  op: values
//	  columns: [id:int, arr:int[]]
//	  rows:
//	    - [1, [10, 20]]
//	    - [2, []]
//
// Columns are referenced by name. Every node resolves names against the
// columns emitted by its inputs; the attributes of a node resolve names
// against the columns the node itself produces.
package optbuilder

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/cat"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
	"github.com/cockroachdb/physopt/pkg/util/log"
	"gopkg.in/yaml.v3"
)

// planNode is the decoded form of one node of a plan description. Which
// fields are allowed depends on the operator; see nodeFields.
type planNode struct {
	Op string `yaml:"op"`

	Input *yaml.Node `yaml:"input"`
	Left  *yaml.Node `yaml:"left"`
	Right *yaml.Node `yaml:"right"`

	// Scan.
	Table string   `yaml:"table"`
	Cols  []string `yaml:"cols"`

	// Values.
	Columns []string    `yaml:"columns"`
	Rows    []yaml.Node `yaml:"rows"`

	// Joins.
	Type          string   `yaml:"type"`
	LeftEq        []string `yaml:"left-eq"`
	RightEq       []string `yaml:"right-eq"`
	LeftOrdering  []string `yaml:"left-ordering"`
	RightOrdering []string `yaml:"right-ordering"`
	On            string   `yaml:"on"`

	// Group by.
	Grouping []string  `yaml:"grouping"`
	Aggs     []aggItem `yaml:"aggs"`

	// Sort and streaming group by.
	Ordering []string `yaml:"ordering"`

	// Table function.
	Fn      string   `yaml:"fn"`
	Params  []string `yaml:"params"`
	Outer   []string `yaml:"outer"`
	Results []string `yaml:"results"`

	// Attributes.
	Filter  string        `yaml:"filter"`
	Project []projectItem `yaml:"project"`
	Limit   *int64        `yaml:"limit"`
}

type aggItem struct {
	As  string `yaml:"as"`
	Fn  string `yaml:"fn"`
	Arg string `yaml:"arg"`
}

var attrFields = []string{"op", "filter", "project", "limit"}

// nodeFields lists the fields each operator accepts in addition to
// attrFields.
var nodeFields = map[opt.Operator][]string{
	opt.ScanOp:           {"table", "cols"},
	opt.ValuesOp:         {"columns", "rows"},
	opt.HashJoinOp:       {"left", "right", "type", "left-eq", "right-eq"},
	opt.MergeJoinOp:      {"left", "right", "type", "left-ordering", "right-ordering"},
	opt.NestedLoopJoinOp: {"left", "right", "type", "on"},
	opt.HashGroupByOp:    {"input", "grouping", "aggs"},
	opt.StreamGroupByOp:  {"input", "grouping", "aggs", "ordering"},
	opt.SortOp:           {"input", "ordering"},
	opt.TableFunctionOp:  {"input", "fn", "params", "outer", "results"},
}

// Builder holds the context needed for building a plan tree from a plan
// description. A Builder builds a single plan.
type Builder struct {
	ctx     context.Context
	catalog cat.Catalog
	md      *opt.Metadata
	src     []byte
}

// New creates a new Builder for the given plan description. Tables and
// functions are resolved through catalog; the columns of the plan are added
// to md.
func New(ctx context.Context, catalog cat.Catalog, md *opt.Metadata, src []byte) *Builder {
	return &Builder{
		ctx:     log.WithTag(ctx, "builder", nil),
		catalog: catalog,
		md:      md,
		src:     src,
	}
}

// Build parses the plan description and returns the plan tree. The tree is
// validated with memo.CheckExpr before it is returned.
func (b *Builder) Build() (_ *memo.Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = opt.CatchOptimizerError(r)
		}
	}()

	var doc yaml.Node
	if err := yaml.Unmarshal(b.src, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing plan description")
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, errors.New("empty plan description")
		}
		root = root.Content[0]
	}
	if root.Kind == 0 {
		return nil, errors.New("empty plan description")
	}

	e, outScope, err := b.buildNode(root)
	if err != nil {
		return nil, err
	}
	if err := memo.CheckExpr(b.md, e); err != nil {
		return nil, err
	}
	log.VEventf(b.ctx, 2, "built %s plan with output columns %s", e.Op(), outScope)
	return e, nil
}

// buildNode builds the plan tree rooted at node. It returns the tree and the
// scope holding the columns the root emits. Errors local to the node are
// prefixed with its operator and line.
func (b *Builder) buildNode(node *yaml.Node) (*memo.Expr, *scope, error) {
	if node.Kind != yaml.MappingNode {
		return nil, nil, errors.Newf("line %d: expected a plan node, found %s", node.Line, node.ShortTag())
	}
	var n planNode
	if err := node.Decode(&n); err != nil {
		return nil, nil, err
	}
	op, ok := opt.OperatorByName(n.Op)
	if !ok || !op.IsPhysical() {
		return nil, nil, errors.WithHintf(
			errors.Newf("line %d: unknown operator %q", node.Line, n.Op),
			"supported operators: %s", strings.Join(physicalOperatorNames(), ", "))
	}
	if err := checkFields(node, op); err != nil {
		return nil, nil, errors.Wrapf(err, "%s at line %d", op, node.Line)
	}

	var children []*yaml.Node
	switch op.ChildCount() {
	case 1:
		children = []*yaml.Node{n.Input}
	case 2:
		children = []*yaml.Node{n.Left, n.Right}
	}
	inputs := make([]*memo.Expr, len(children))
	inScopes := make([]*scope, len(children))
	for i, child := range children {
		if child == nil {
			return nil, nil, errors.Newf("%s at line %d: missing input %d", op, node.Line, i)
		}
		e, s, err := b.buildNode(child)
		if err != nil {
			return nil, nil, err
		}
		inputs[i], inScopes[i] = e, s
	}

	physOp, outScope, err := b.buildOperator(op, &n, inScopes)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s at line %d", op, node.Line)
	}
	e, err := memo.NewExpr(physOp, inputs...)
	if err != nil {
		return nil, nil, err
	}
	return e, outScope, nil
}

func (b *Builder) buildOperator(
	op opt.Operator, n *planNode, inScopes []*scope,
) (memo.PhysicalOperator, *scope, error) {
	switch op {
	case opt.ScanOp:
		return b.buildScan(n)
	case opt.ValuesOp:
		return b.buildValues(n)
	case opt.HashJoinOp, opt.MergeJoinOp, opt.NestedLoopJoinOp:
		return b.buildJoin(op, n, inScopes[0], inScopes[1])
	case opt.HashGroupByOp, opt.StreamGroupByOp:
		return b.buildGroupBy(op, n, inScopes[0])
	case opt.SortOp:
		return b.buildSort(n, inScopes[0])
	case opt.TableFunctionOp:
		return b.buildTableFunction(n, inScopes[0])
	}
	return nil, nil, errors.AssertionFailedf("unhandled operator %s", op)
}

func (b *Builder) newScope() *scope {
	return &scope{builder: b}
}

// buildScan builds a scan of a catalog table. A scan reads a prefix of the
// table's columns; if cols is given it must name that prefix.
func (b *Builder) buildScan(n *planNode) (memo.PhysicalOperator, *scope, error) {
	if n.Table == "" {
		return nil, nil, errors.New("missing table")
	}
	tab, err := b.catalog.ResolveTable(b.ctx, n.Table)
	if err != nil {
		return nil, nil, err
	}
	tabID := b.md.AddTable(tab, n.Table)

	count := tab.ColumnCount()
	if n.Cols != nil {
		if len(n.Cols) > count {
			return nil, nil, errors.Newf("table %s has %d columns, found %d", tab.Name(), count, len(n.Cols))
		}
		for i, name := range n.Cols {
			if tab.Column(i).Name != name {
				return nil, nil, errors.WithHint(
					errors.Newf("column %d of table %s is %q, found %q", i, tab.Name(), tab.Column(i).Name, name),
					"a scan reads a prefix of the table columns")
			}
		}
		count = len(n.Cols)
	}

	produced := b.newScope()
	for i := 0; i < count; i++ {
		col := tab.Column(i)
		produced.cols = append(produced.cols, scopeColumn{name: col.Name, id: tabID.ColumnID(i), typ: col.Type})
	}
	attrs, outScope, err := b.buildAttrs(n, produced)
	if err != nil {
		return nil, nil, err
	}
	scan, err := memo.NewScanOp(tab, produced.colList(), attrs)
	return scan, outScope, err
}

// buildValues builds a constant relation. Columns are declared as
// "name:type"; values are parsed as the type of their column.
func (b *Builder) buildValues(n *planNode) (memo.PhysicalOperator, *scope, error) {
	produced := b.newScope()
	for _, def := range n.Columns {
		name, typ, err := ParseColumnDef(def)
		if err != nil {
			return nil, nil, err
		}
		produced.addColumn(name, typ)
	}

	rows := make([]tree.Datums, len(n.Rows))
	for i := range n.Rows {
		row := &n.Rows[i]
		if row.Kind != yaml.SequenceNode {
			return nil, nil, errors.Newf("row %d: expected a list of values", i)
		}
		if len(row.Content) != len(produced.cols) {
			return nil, nil, errors.Newf("row %d has %d values, expected %d",
				i, len(row.Content), len(produced.cols))
		}
		rows[i] = make(tree.Datums, len(row.Content))
		for j, val := range row.Content {
			d, err := ParseValue(produced.cols[j].typ, val)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "row %d", i)
			}
			rows[i][j] = d
		}
	}

	attrs, outScope, err := b.buildAttrs(n, produced)
	if err != nil {
		return nil, nil, err
	}
	values, err := memo.NewValuesOp(produced.colList(), rows, attrs)
	return values, outScope, err
}

// ParseColumnDef parses a column declared as "name:type", like "arr:int[]".
func ParseColumnDef(def string) (name string, typ *types.T, err error) {
	name, typName, ok := strings.Cut(def, ":")
	if !ok {
		return "", nil, errors.WithHint(
			errors.Newf("column %q has no type", def), "columns are declared as name:type")
	}
	if typ, err = types.ParseType(typName); err != nil {
		return "", nil, err
	}
	return strings.TrimSpace(name), typ, nil
}

// ParseValue converts a YAML value to a datum of the given type. A YAML null
// is NULL; an array is written either as a YAML list or as a string like
// "{1,2}".
func ParseValue(typ *types.T, val *yaml.Node) (tree.Datum, error) {
	switch val.Kind {
	case yaml.ScalarNode:
		if val.ShortTag() == "!!null" {
			return tree.DNull, nil
		}
		return tree.ParseDatum(typ, val.Value)
	case yaml.SequenceNode:
		if typ.Family() != types.ArrayFamily {
			return nil, errors.Newf("found a list for a value of type %s", typ)
		}
		arr := tree.NewDArray(typ.ArrayContents())
		for _, elem := range val.Content {
			d, err := ParseValue(typ.ArrayContents(), elem)
			if err != nil {
				return nil, err
			}
			if err := arr.Append(d); err != nil {
				return nil, err
			}
		}
		return arr, nil
	}
	return nil, errors.Newf("line %d: unsupported value %s", val.Line, val.ShortTag())
}

func (b *Builder) buildJoin(
	op opt.Operator, n *planNode, left, right *scope,
) (memo.PhysicalOperator, *scope, error) {
	joinType := memo.InnerJoin
	if n.Type != "" {
		var ok bool
		if joinType, ok = memo.ParseJoinType(strings.ToLower(n.Type)); !ok {
			return nil, nil, errors.Newf("unknown join type %q", n.Type)
		}
	}

	both := left.push()
	both.appendColumns(left)
	both.appendColumns(right)
	produced := both
	if !joinType.OutputsRightCols() {
		produced = left.restrict(left.colList())
	}
	attrs, outScope, err := b.buildAttrs(n, produced)
	if err != nil {
		return nil, nil, err
	}

	switch op {
	case opt.HashJoinOp:
		leftEq, err := left.resolveColumns(n.LeftEq)
		if err != nil {
			return nil, nil, errors.Wrap(err, "left-eq")
		}
		rightEq, err := right.resolveColumns(n.RightEq)
		if err != nil {
			return nil, nil, errors.Wrap(err, "right-eq")
		}
		j, err := memo.NewHashJoinOp(joinType, leftEq, rightEq, attrs)
		return j, outScope, err

	case opt.MergeJoinOp:
		leftOrd, err := left.resolveOrdering(n.LeftOrdering)
		if err != nil {
			return nil, nil, errors.Wrap(err, "left-ordering")
		}
		rightOrd, err := right.resolveOrdering(n.RightOrdering)
		if err != nil {
			return nil, nil, errors.Wrap(err, "right-ordering")
		}
		j, err := memo.NewMergeJoinOp(joinType, leftOrd, rightOrd, attrs)
		return j, outScope, err

	default:
		var on memo.ScalarExpr
		if n.On != "" {
			if on, err = b.buildScalar(n.On, both); err != nil {
				return nil, nil, errors.Wrap(err, "on")
			}
		}
		j, err := memo.NewNestedLoopJoinOp(joinType, on, attrs)
		return j, outScope, err
	}
}

func (b *Builder) buildGroupBy(
	op opt.Operator, n *planNode, inScope *scope,
) (memo.PhysicalOperator, *scope, error) {
	grouping, err := inScope.resolveColumns(n.Grouping)
	if err != nil {
		return nil, nil, errors.Wrap(err, "grouping")
	}
	produced := inScope.restrict(grouping)

	aggs := make([]memo.AggregateItem, len(n.Aggs))
	for i, a := range n.Aggs {
		fn, ok := memo.ParseAggregateFunc(strings.ToLower(a.Fn))
		if !ok {
			return nil, nil, errors.Newf("unknown aggregate function %q", a.Fn)
		}
		var arg *scopeColumn
		if a.Arg != "" {
			if arg, err = inScope.resolveColumn(a.Arg); err != nil {
				return nil, nil, errors.Wrapf(err, "%s", fn)
			}
			aggs[i].Arg = arg.id
		}
		name := a.As
		if name == "" {
			name = fn.String()
		}
		aggs[i].Func = fn
		aggs[i].Col = produced.addColumn(name, aggregateType(fn, arg)).id
	}

	attrs, outScope, err := b.buildAttrs(n, produced)
	if err != nil {
		return nil, nil, err
	}
	if op == opt.HashGroupByOp {
		g, err := memo.NewHashGroupByOp(grouping, aggs, attrs)
		return g, outScope, err
	}

	var ordering opt.Ordering
	if n.Ordering != nil {
		if ordering, err = inScope.resolveOrdering(n.Ordering); err != nil {
			return nil, nil, errors.Wrap(err, "ordering")
		}
	} else {
		for _, col := range grouping {
			ordering = append(ordering, opt.MakeOrderingColumn(col, false /* descending */))
		}
	}
	g, err := memo.NewStreamGroupByOp(grouping, aggs, ordering, attrs)
	return g, outScope, err
}

// aggregateType returns the type of the column computed by an aggregate. The
// sum of integers is a decimal.
func aggregateType(fn memo.AggregateFunc, arg *scopeColumn) *types.T {
	switch fn {
	case memo.CountRowsAgg, memo.CountAgg:
		return types.Int
	case memo.SumAgg:
		if arg != nil && arg.typ.Family() == types.IntFamily {
			return types.Decimal
		}
	}
	if arg == nil {
		return types.Unknown
	}
	return arg.typ
}

func (b *Builder) buildSort(n *planNode, inScope *scope) (memo.PhysicalOperator, *scope, error) {
	ordering, err := inScope.resolveOrdering(n.Ordering)
	if err != nil {
		return nil, nil, errors.Wrap(err, "ordering")
	}
	attrs, outScope, err := b.buildAttrs(n, inScope)
	if err != nil {
		return nil, nil, err
	}
	s, err := memo.NewSortOp(ordering, attrs)
	return s, outScope, err
}

// buildTableFunction builds a call of a table function for every input row.
// Result columns are named by results, or after the function's result
// schema. A polymorphic result column takes the element type of the array
// passed to the function.
func (b *Builder) buildTableFunction(n *planNode, inScope *scope) (memo.PhysicalOperator, *scope, error) {
	if n.Fn == "" {
		return nil, nil, errors.New("missing fn")
	}
	fn, err := b.catalog.ResolveTableFunction(b.ctx, n.Fn)
	if err != nil {
		return nil, nil, err
	}
	outer, err := inScope.resolveColumns(n.Outer)
	if err != nil {
		return nil, nil, errors.Wrap(err, "outer")
	}
	params, err := inScope.resolveColumns(n.Params)
	if err != nil {
		return nil, nil, errors.Wrap(err, "params")
	}

	names := n.Results
	if names == nil {
		for i := 0; i < fn.ResultColumnCount(); i++ {
			names = append(names, fn.ResultColumn(i).Name)
		}
	}
	produced := inScope.restrict(outer)
	results := make(opt.ColList, len(names))
	for i, name := range names {
		typ := types.Unknown
		if i < fn.ResultColumnCount() {
			typ = b.resolveResultType(fn, fn.ResultColumn(i).Type, params, inScope)
		}
		results[i] = produced.addColumn(name, typ).id
	}

	attrs, outScope, err := b.buildAttrs(n, produced)
	if err != nil {
		return nil, nil, err
	}
	tf, err := memo.NewTableFunctionOp(fn, results, outer, params, attrs)
	return tf, outScope, err
}

func (b *Builder) resolveResultType(
	fn *cat.TableFunction, typ *types.T, params opt.ColList, inScope *scope,
) *types.T {
	if typ.Family() != types.AnyFamily {
		return typ
	}
	for i, id := range params {
		if i >= fn.Arity() || fn.ParamType(i).Family() != types.ArrayFamily {
			continue
		}
		col := inScope.findColumn(id)
		if col == nil || col.typ.Family() != types.ArrayFamily {
			continue
		}
		if elem := col.typ.ArrayContents(); elem.Family() != types.AnyFamily {
			return elem
		}
	}
	return typ
}

// checkFields returns an error for a field the operator doesn't accept.
func checkFields(node *yaml.Node, op opt.Operator) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if !containsString(attrFields, key) && !containsString(nodeFields[op], key) {
			return errors.WithHintf(errors.Newf("unknown field %q", key),
				"%s accepts: %s", op, strings.Join(append(nodeFields[op], attrFields[1:]...), ", "))
		}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func physicalOperatorNames() []string {
	names := make([]string, len(opt.PhysicalOperators))
	for i, op := range opt.PhysicalOperators {
		names[i] = op.String()
	}
	return names
}
