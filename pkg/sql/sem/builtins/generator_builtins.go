// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package builtins

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt/cat"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
)

// ValueGenerator produces the rows of a single call of a table function.
// The caller invokes Start once, then Next until it returns false, reading
// the current row with Values after each successful Next, and finally Close.
type ValueGenerator interface {
	// Start prepares the generator to produce rows.
	Start(ctx context.Context) error

	// Next advances to the next row. It returns false when there are no more
	// rows.
	Next(ctx context.Context) (bool, error)

	// Values returns the current row. The returned slice is only valid until
	// the next call to Next.
	Values() (tree.Datums, error)

	// Close releases resources held by the generator.
	Close(ctx context.Context)
}

// GeneratorFactory returns a generator for one call with the given
// arguments. The number of arguments matches the arity of the function.
type GeneratorFactory func(ctx context.Context, args tree.Datums) (ValueGenerator, error)

// generatorDef pairs a function descriptor with its implementation.
type generatorDef struct {
	fn      *cat.TableFunction
	factory GeneratorFactory
}

// Stable ids of the builtin table functions. They must never be reused.
const (
	unnestID cat.StableID = 1 + iota
	explodeID
	posexplodeID
	generateSeriesID
	stringToTableID
)

var generators = []generatorDef{
	{
		fn: cat.NewTableFunction(unnestID, "unnest",
			[]*types.T{types.AnyArray},
			[]cat.Column{{Name: "unnest", Type: types.Any}}),
		factory: makeArrayGenerator,
	},
	{
		fn: cat.NewTableFunction(explodeID, "explode",
			[]*types.T{types.AnyArray},
			[]cat.Column{{Name: "elem", Type: types.Any}}),
		factory: makeArrayGenerator,
	},
	{
		fn: cat.NewTableFunction(posexplodeID, "posexplode",
			[]*types.T{types.AnyArray},
			[]cat.Column{{Name: "pos", Type: types.Int}, {Name: "val", Type: types.Any}}),
		factory: makePosArrayGenerator,
	},
	{
		fn: cat.NewTableFunction(generateSeriesID, "generate_series",
			[]*types.T{types.Int, types.Int},
			[]cat.Column{{Name: "generate_series", Type: types.Int}}),
		factory: makeSeriesGenerator,
	},
	{
		fn: cat.NewTableFunction(stringToTableID, "string_to_table",
			[]*types.T{types.String, types.String},
			[]cat.Column{{Name: "string_to_table", Type: types.String}}),
		factory: makeStringToTableGenerator,
	},
}

// emptyGenerator produces no rows. It is returned for calls with NULL
// arguments.
type emptyGenerator struct{}

var _ ValueGenerator = emptyGenerator{}

func (emptyGenerator) Start(context.Context) error        { return nil }
func (emptyGenerator) Next(context.Context) (bool, error) { return false, nil }
func (emptyGenerator) Values() (tree.Datums, error)       { return nil, nil }
func (emptyGenerator) Close(context.Context)              {}

func arrayArg(name string, d tree.Datum) (*tree.DArray, error) {
	arr, ok := d.(*tree.DArray)
	if !ok {
		return nil, errors.Newf("%s: expected an array argument, found %s", name, d.ResolvedType())
	}
	return arr, nil
}

// arrayValueGenerator returns the elements of an array, optionally preceded
// by their position.
type arrayValueGenerator struct {
	array     *tree.DArray
	withPos   bool
	nextIndex int
	buf       [2]tree.Datum
}

var _ ValueGenerator = &arrayValueGenerator{}

func makeArrayGenerator(_ context.Context, args tree.Datums) (ValueGenerator, error) {
	if args[0] == tree.DNull {
		return emptyGenerator{}, nil
	}
	arr, err := arrayArg("unnest", args[0])
	if err != nil {
		return nil, err
	}
	return &arrayValueGenerator{array: arr}, nil
}

func makePosArrayGenerator(_ context.Context, args tree.Datums) (ValueGenerator, error) {
	if args[0] == tree.DNull {
		return emptyGenerator{}, nil
	}
	arr, err := arrayArg("posexplode", args[0])
	if err != nil {
		return nil, err
	}
	return &arrayValueGenerator{array: arr, withPos: true}, nil
}

// Start implements the ValueGenerator interface.
func (s *arrayValueGenerator) Start(_ context.Context) error {
	s.nextIndex = -1
	return nil
}

// Next implements the ValueGenerator interface.
func (s *arrayValueGenerator) Next(_ context.Context) (bool, error) {
	s.nextIndex++
	return s.nextIndex < s.array.Len(), nil
}

// Values implements the ValueGenerator interface.
func (s *arrayValueGenerator) Values() (tree.Datums, error) {
	if s.withPos {
		// Positions are zero-based.
		s.buf[0] = tree.NewDInt(tree.DInt(s.nextIndex))
		s.buf[1] = s.array.Array[s.nextIndex]
		return s.buf[:2], nil
	}
	s.buf[0] = s.array.Array[s.nextIndex]
	return s.buf[:1], nil
}

// Close implements the ValueGenerator interface.
func (s *arrayValueGenerator) Close(_ context.Context) {}

// seriesValueGenerator returns the integers from start to stop inclusive.
type seriesValueGenerator struct {
	start, stop tree.DInt
	value       tree.DInt
	nextOK      bool
	buf         [1]tree.Datum
}

var _ ValueGenerator = &seriesValueGenerator{}

func makeSeriesGenerator(_ context.Context, args tree.Datums) (ValueGenerator, error) {
	if args[0] == tree.DNull || args[1] == tree.DNull {
		return emptyGenerator{}, nil
	}
	start, ok1 := args[0].(*tree.DInt)
	stop, ok2 := args[1].(*tree.DInt)
	if !ok1 || !ok2 {
		return nil, errors.Newf("generate_series: expected int arguments, found %s and %s",
			args[0].ResolvedType(), args[1].ResolvedType())
	}
	return &seriesValueGenerator{start: *start, stop: *stop}, nil
}

// Start implements the ValueGenerator interface.
func (s *seriesValueGenerator) Start(_ context.Context) error {
	s.value = s.start
	s.nextOK = s.start <= s.stop
	return nil
}

// Next implements the ValueGenerator interface.
func (s *seriesValueGenerator) Next(_ context.Context) (bool, error) {
	if !s.nextOK {
		return false, nil
	}
	s.buf[0] = tree.NewDInt(s.value)
	// Stop after emitting the last value instead of overflowing past it.
	if s.value == s.stop {
		s.nextOK = false
	} else {
		s.value++
	}
	return true, nil
}

// Values implements the ValueGenerator interface.
func (s *seriesValueGenerator) Values() (tree.Datums, error) {
	return s.buf[:], nil
}

// Close implements the ValueGenerator interface.
func (s *seriesValueGenerator) Close(_ context.Context) {}

// stringToTableGenerator splits a string on a delimiter. A NULL delimiter
// splits the string into characters and an empty delimiter returns the whole
// string.
type stringToTableGenerator struct {
	parts []string
	idx   int
	buf   [1]tree.Datum
}

var _ ValueGenerator = &stringToTableGenerator{}

func makeStringToTableGenerator(_ context.Context, args tree.Datums) (ValueGenerator, error) {
	if args[0] == tree.DNull {
		return emptyGenerator{}, nil
	}
	str, ok := args[0].(*tree.DString)
	if !ok {
		return nil, errors.Newf("string_to_table: expected a string argument, found %s",
			args[0].ResolvedType())
	}
	s := string(*str)
	if s == "" {
		return emptyGenerator{}, nil
	}
	var parts []string
	switch delim := args[1].(type) {
	case *tree.DString:
		if *delim == "" {
			parts = []string{s}
		} else {
			parts = strings.Split(s, string(*delim))
		}
	default:
		if args[1] != tree.DNull {
			return nil, errors.Newf("string_to_table: expected a string delimiter, found %s",
				args[1].ResolvedType())
		}
		parts = strings.Split(s, "")
	}
	return &stringToTableGenerator{parts: parts}, nil
}

// Start implements the ValueGenerator interface.
func (g *stringToTableGenerator) Start(_ context.Context) error {
	g.idx = -1
	return nil
}

// Next implements the ValueGenerator interface.
func (g *stringToTableGenerator) Next(_ context.Context) (bool, error) {
	g.idx++
	return g.idx < len(g.parts), nil
}

// Values implements the ValueGenerator interface.
func (g *stringToTableGenerator) Values() (tree.Datums, error) {
	g.buf[0] = tree.NewDString(g.parts[g.idx])
	return g.buf[:], nil
}

// Close implements the ValueGenerator interface.
func (g *stringToTableGenerator) Close(_ context.Context) {}
