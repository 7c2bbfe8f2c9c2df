// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package optbuilder

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"gopkg.in/yaml.v3"
)

// projectItem is one entry of a "project" list. It is written either as a
// bare column reference, which passes the column through, or as a mapping:
//
//	project:
//	  - id
//	  - {as: twice, expr: (mult elem 2)}
type projectItem struct {
	As   string `yaml:"as"`
	Expr string `yaml:"expr"`
	Col  string `yaml:"col"`
}

// UnmarshalYAML accepts the bare column form.
func (p *projectItem) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		p.Col = value.Value
		return nil
	}
	type plain projectItem
	return value.Decode((*plain)(p))
}

// buildAttrs builds the attribute bundle of a plan node from its filter,
// project and limit fields. Expressions are resolved against the columns the
// operator produces; the returned scope holds the columns it emits once the
// attributes are applied.
func (b *Builder) buildAttrs(n *planNode, produced *scope) (memo.Attrs, *scope, error) {
	var attrs memo.Attrs
	outScope := produced

	if n.Filter != "" {
		pred, err := b.buildScalar(n.Filter, produced)
		if err != nil {
			return memo.Attrs{}, nil, errors.Wrap(err, "filter")
		}
		attrs.Predicate = pred
	}

	if n.Project != nil {
		proj, projScope, err := b.buildProjection(n.Project, produced)
		if err != nil {
			return memo.Attrs{}, nil, errors.Wrap(err, "project")
		}
		attrs.Projection = proj
		outScope = projScope
	}

	limit, err := b.buildLimit(n.Limit)
	if err != nil {
		return memo.Attrs{}, nil, err
	}
	attrs.Limit = limit
	return attrs, outScope, nil
}

// buildProjection builds a projection over the produced columns. Items that
// compute a value get a new column; an item that only references a column
// passes it through under its own id.
func (b *Builder) buildProjection(
	items []projectItem, produced *scope,
) (*memo.Projection, *scope, error) {
	outScope := produced.push()
	res := make([]memo.ProjectionItem, len(items))
	for i, item := range items {
		if item.Expr == "" {
			if item.Col == "" {
				return nil, nil, errors.Newf("item %d has neither a column nor an expression", i)
			}
			col, err := produced.resolveColumn(item.Col)
			if err != nil {
				return nil, nil, err
			}
			res[i] = memo.ProjectionItem{
				Col:     col.id,
				Element: &memo.VariableExpr{Col: col.id, Typ: col.typ},
			}
			outScope.cols = append(outScope.cols, *col)
			continue
		}
		if item.Col != "" {
			return nil, nil, errors.Newf("item %d has both a column and an expression", i)
		}
		elem, err := b.buildScalar(item.Expr, produced)
		if err != nil {
			return nil, nil, err
		}
		name := item.As
		if name == "" {
			name = formatScalarName(item.Expr)
		}
		col := outScope.addColumn(name, elem.DataType())
		res[i] = memo.ProjectionItem{Col: col.id, Element: elem}
	}
	return memo.NewProjection(res...), outScope, nil
}

// buildLimit converts the limit field. A missing field is unbounded; zero is a
// bound of zero rows.
func (b *Builder) buildLimit(limit *int64) (opt.Limit, error) {
	if limit == nil {
		return opt.Unbounded, nil
	}
	return opt.MakeLimit(*limit)
}

// formatScalarName derives a column name from an unnamed projection
// expression, like "mult_elem_2" for (mult elem 2).
func formatScalarName(src string) string {
	f := strings.FieldsFunc(src, func(r rune) bool {
		return r == '(' || r == ')' || r == ' ' || r == '\''
	})
	return strings.Join(f, "_")
}
