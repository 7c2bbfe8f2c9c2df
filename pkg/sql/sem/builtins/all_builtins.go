// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package builtins

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt/cat"
)

// Registry holds the descriptors of all builtin table functions. It is built
// once at init and never modified.
var Registry *cat.FunctionRegistry

// AllBuiltinNames contains the names of all builtin table functions, sorted
// in alphabetical order.
var AllBuiltinNames []string

var factories map[cat.StableID]GeneratorFactory

func init() {
	fns := make([]*cat.TableFunction, len(generators))
	factories = make(map[cat.StableID]GeneratorFactory, len(generators))
	for i := range generators {
		fns[i] = generators[i].fn
		factories[generators[i].fn.ID()] = generators[i].factory
		AllBuiltinNames = append(AllBuiltinNames, generators[i].fn.Name())
	}
	var err error
	Registry, err = cat.NewFunctionRegistry(fns...)
	if err != nil {
		panic(err)
	}
	sort.Strings(AllBuiltinNames)
}

// GetGenerator returns the implementation of a builtin table function. The
// descriptor must be the registered one or equal to it.
func GetGenerator(fn *cat.TableFunction) (GeneratorFactory, error) {
	registered, ok := Registry.LookupByID(fn.ID())
	if !ok || !registered.Equals(fn) {
		return nil, errors.Mark(
			errors.Newf("%s is not a builtin table function", fn.Signature()),
			cat.ErrUndefinedFunction)
	}
	return factories[fn.ID()], nil
}
