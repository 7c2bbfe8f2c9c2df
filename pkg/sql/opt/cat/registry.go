// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cat

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUndefinedFunction is returned, possibly wrapped, when a function name
// does not resolve.
var ErrUndefinedFunction = errors.New("undefined function")

// FunctionRegistry interns table function descriptors by name and id. It is
// built once and never modified, so it can be read concurrently without
// locking. Resolving the same name twice returns the same *TableFunction.
type FunctionRegistry struct {
	byName map[string]*TableFunction
	byID   map[StableID]*TableFunction
	names  []string
}

// NewFunctionRegistry builds a registry from the given descriptors. Names are
// case-insensitive. Duplicate names or ids are an error.
func NewFunctionRegistry(fns ...*TableFunction) (*FunctionRegistry, error) {
	r := &FunctionRegistry{
		byName: make(map[string]*TableFunction, len(fns)),
		byID:   make(map[StableID]*TableFunction, len(fns)),
	}
	for _, fn := range fns {
		name := strings.ToLower(fn.Name())
		if _, ok := r.byName[name]; ok {
			return nil, errors.AssertionFailedf("duplicate table function %q", fn.Name())
		}
		if _, ok := r.byID[fn.ID()]; ok {
			return nil, errors.AssertionFailedf("duplicate table function id %d", fn.ID())
		}
		r.byName[name] = fn
		r.byID[fn.ID()] = fn
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Lookup returns the descriptor with the given name.
func (r *FunctionRegistry) Lookup(name string) (*TableFunction, error) {
	if fn, ok := r.byName[strings.ToLower(name)]; ok {
		return fn, nil
	}
	return nil, errors.Mark(errors.Newf("unknown table function: %s()", name), ErrUndefinedFunction)
}

// LookupByID returns the descriptor with the given id.
func (r *FunctionRegistry) LookupByID(id StableID) (*TableFunction, bool) {
	fn, ok := r.byID[id]
	return fn, ok
}

// Functions returns all descriptors ordered by name.
func (r *FunctionRegistry) Functions() []*TableFunction {
	res := make([]*TableFunction, len(r.names))
	for i, name := range r.names {
		res[i] = r.byName[name]
	}
	return res
}
