// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package optbuilder

import (
	"context"
	"testing"

	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
	"github.com/cockroachdb/physopt/pkg/util/leaktest"
	"github.com/stretchr/testify/require"
)

// makeScalarScope returns a scope with the columns a:1 (int), s:2 (string),
// b:3 (bool) and a:4 (int).
func makeScalarScope() (*opt.Metadata, *scope) {
	var md opt.Metadata
	md.Init()
	b := New(context.Background(), nil /* catalog */, &md, nil /* src */)
	s := b.newScope()
	s.addColumn("a", types.Int)
	s.addColumn("s", types.String)
	s.addColumn("b", types.Bool)
	s.addColumn("a", types.Int)
	return &md, s
}

func TestBuildScalar(t *testing.T) {
	defer leaktest.AfterTest(t)()

	md, s := makeScalarScope()
	testCases := []struct {
		src      string
		expected string
	}{
		{src: "(gt a:1 10)", expected: "(gt a:1 10)"},
		{src: "(> @4 -5)", expected: "(gt a:4 -5)"},
		{src: "(and (>= a:1 1) (< a:4 5) b)", expected: "(and (and (ge a:1 1) (lt a:4 5)) b:3)"},
		{src: "(or b (not b))", expected: "(or b:3 (not b:3))"},
		{src: "(= s 'it''s')", expected: "(eq s:2 'it''s')"},
		{src: "(<> s 'x')", expected: "(ne s:2 'x')"},
		{src: "(- a:1)", expected: "(unary-minus a:1)"},
		{src: "(- a:1 a:4)", expected: "(minus a:1 a:4)"},
		{src: "(+ a:1 1.5)", expected: "(plus a:1 1.5)"},
		{src: "(mult a:1 2)", expected: "(mult a:1 2)"},
		{src: "(is-null s)", expected: "(is-null s:2)"},
		{src: "(not NULL)", expected: "(not NULL)"},
		{src: "  ( eq  b  true )  ", expected: "(eq b:3 true)"},
		{src: "@2", expected: "s:2"},
		{src: "'abc'", expected: "'abc'"},
	}
	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			e, err := s.builder.buildScalar(tc.src, s)
			require.NoError(t, err)
			require.Equal(t, tc.expected, memo.FormatScalar(e, md))
		})
	}
}

func TestBuildScalarErrors(t *testing.T) {
	defer leaktest.AfterTest(t)()

	_, s := makeScalarScope()
	testCases := []struct {
		src string
		err string
	}{
		{src: "", err: "unexpected end of expression"},
		{src: "()", err: "empty scalar expression"},
		{src: "(gt a:1 1", err: `missing ) in "(gt a:1 1"`},
		{src: "(gt a:1 1))", err: `unexpected ")" at position 10`},
		{src: ")", err: "unexpected ) at position 0"},
		{src: "(eq s 'abc)", err: "unterminated string at position 6"},
		{src: "((gt a:1 1))", err: "expected operator name, found (gt a:1 1)"},
		{src: "(foo a:1)", err: `unknown scalar operator "foo"`},
		{src: "(scan a:1)", err: `unknown scalar operator "scan"`},
		{src: "(variable a:1)", err: `unknown scalar operator "variable"`},
		{src: "(gt a:1)", err: "gt takes 2 operands, found 1"},
		{src: "(not b b)", err: "not takes 1 operand, found 2"},
		{src: "(and b)", err: "and takes at least 2 operands, found 1"},
		{src: "(gt a:1 'x')", err: "unsupported comparison operator: int gt string"},
		{src: "(and a:1 b)", err: "and: expected bool operand, found int"},
		{src: "(not s)", err: "not: expected bool operand, found string"},
		{src: "(plus s 1)", err: "plus: expected numeric operand, found string"},
		{src: "(- s)", err: "unary-minus: expected numeric operand, found string"},
		{src: "(gt a 1)", err: `column reference "a" is ambiguous`},
		{src: "(gt x 1)", err: `column "x" does not exist in scope (a:1, s:2, b:3, a:4)`},
		{src: "(gt a:2 1)", err: `column "a:2" is not in scope`},
		{src: "(gt @9 1)", err: "column @9 is not in scope"},
		{src: "(gt @x 1)", err: `invalid column reference "@x"`},
		{src: "(gt a:1 1x)", err: `invalid number "1x"`},
	}
	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			_, err := s.builder.buildScalar(tc.src, s)
			require.ErrorContains(t, err, tc.err)
		})
	}
}

func TestResolveOrdering(t *testing.T) {
	defer leaktest.AfterTest(t)()

	_, s := makeScalarScope()
	ord, err := s.resolveOrdering([]string{"-s", "+a:1", "b"})
	require.NoError(t, err)
	require.Equal(t, opt.Ordering{
		opt.MakeOrderingColumn(2, true /* descending */),
		opt.MakeOrderingColumn(1, false /* descending */),
		opt.MakeOrderingColumn(3, false /* descending */),
	}, ord)

	_, err = s.resolveOrdering([]string{"-a"})
	require.ErrorContains(t, err, "ambiguous")
}

func TestFormatScalarName(t *testing.T) {
	defer leaktest.AfterTest(t)()

	require.Equal(t, "mult_elem_2", formatScalarName("(mult elem 2)"))
	require.Equal(t, "eq_s_x", formatScalarName("(eq s 'x')"))
}
