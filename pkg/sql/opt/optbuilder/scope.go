// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package optbuilder

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
)

// scopeColumn is a column that can be referenced by name within a scope.
type scopeColumn struct {
	name string
	id   opt.ColumnID
	typ  *types.T
}

// scope holds the columns that are visible to the expressions of one plan
// node, in order. Plan nodes don't see the columns of their parents, so
// unlike a SQL scope there is no parent chain.
type scope struct {
	builder *Builder
	cols    []scopeColumn
}

// push creates a new empty scope.
func (s *scope) push() *scope {
	return &scope{builder: s.builder}
}

// appendColumns adds the columns of src to this scope.
func (s *scope) appendColumns(src *scope) {
	s.cols = append(s.cols, src.cols...)
}

// addColumn allocates a new metadata column and makes it visible in this
// scope.
func (s *scope) addColumn(name string, typ *types.T) *scopeColumn {
	id := s.builder.md.AddColumn(name, typ)
	s.cols = append(s.cols, scopeColumn{name: name, id: id, typ: typ})
	return &s.cols[len(s.cols)-1]
}

// colList returns the ids of the columns in the scope, in order.
func (s *scope) colList() opt.ColList {
	res := make(opt.ColList, len(s.cols))
	for i := range s.cols {
		res[i] = s.cols[i].id
	}
	return res
}

// findColumn returns the column with the given id, or nil.
func (s *scope) findColumn(id opt.ColumnID) *scopeColumn {
	for i := range s.cols {
		if s.cols[i].id == id {
			return &s.cols[i]
		}
	}
	return nil
}

// resolveColumn finds the column referenced by name. A reference is either a
// column name, a qualified alias like "elem:3" or a bare id like "@3". An
// unqualified name that matches more than one column is ambiguous.
func (s *scope) resolveColumn(name string) (*scopeColumn, error) {
	if strings.HasPrefix(name, "@") {
		id, err := strconv.Atoi(name[1:])
		if err != nil {
			return nil, errors.Newf("invalid column reference %q", name)
		}
		if col := s.findColumn(opt.ColumnID(id)); col != nil {
			return col, nil
		}
		return nil, errors.Newf("column %s is not in scope %s", name, s)
	}
	if i := strings.LastIndexByte(name, ':'); i > 0 {
		if id, err := strconv.Atoi(name[i+1:]); err == nil {
			col := s.findColumn(opt.ColumnID(id))
			if col == nil || col.name != name[:i] {
				return nil, errors.Newf("column %q is not in scope %s", name, s)
			}
			return col, nil
		}
	}

	var found *scopeColumn
	for i := range s.cols {
		if s.cols[i].name != name {
			continue
		}
		if found != nil {
			return nil, errors.WithHintf(
				errors.Newf("column reference %q is ambiguous", name),
				"use %s:%d or %s:%d", name, found.id, name, s.cols[i].id)
		}
		found = &s.cols[i]
	}
	if found == nil {
		return nil, errors.Newf("column %q does not exist in scope %s", name, s)
	}
	return found, nil
}

// resolveColumns resolves a list of column references.
func (s *scope) resolveColumns(names []string) (opt.ColList, error) {
	res := make(opt.ColList, len(names))
	for i, name := range names {
		col, err := s.resolveColumn(name)
		if err != nil {
			return nil, err
		}
		res[i] = col.id
	}
	return res, nil
}

// resolveOrdering parses ordering columns written as "+name" (ascending, the
// default when no sign is given) or "-name".
func (s *scope) resolveOrdering(cols []string) (opt.Ordering, error) {
	res := make(opt.Ordering, len(cols))
	for i, c := range cols {
		desc := false
		switch {
		case strings.HasPrefix(c, "-"):
			desc, c = true, c[1:]
		case strings.HasPrefix(c, "+"):
			c = c[1:]
		}
		col, err := s.resolveColumn(strings.TrimSpace(c))
		if err != nil {
			return nil, err
		}
		res[i] = opt.MakeOrderingColumn(col.id, desc)
	}
	return res, nil
}

// restrict returns a scope holding the given columns of s, in the given
// order.
func (s *scope) restrict(cols opt.ColList) *scope {
	out := s.push()
	for _, id := range cols {
		if col := s.findColumn(id); col != nil {
			out.cols = append(out.cols, *col)
		}
	}
	return out
}

func (s *scope) String() string {
	var buf strings.Builder
	buf.WriteByte('(')
	for i := range s.cols {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(s.cols[i].name)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(int(s.cols[i].id)))
	}
	buf.WriteByte(')')
	return buf.String()
}
