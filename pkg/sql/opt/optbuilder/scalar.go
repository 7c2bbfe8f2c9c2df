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
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
)

// Scalar expressions are written as s-expressions, in the same form
// memo.FormatScalar prints them:
//
//	(and (gt elem 10) (not (is-null id)))
//
// An operand is a nested expression, a column reference (see
// scope.resolveColumn), a quoted string like 'abc', NULL, true, false or a
// number. The symbols =, !=, <, <=, >, >=, +, - and * can be used in place
// of the operator names.
var scalarAliases = map[string]opt.Operator{
	"=":  opt.EqOp,
	"!=": opt.NeOp,
	"<>": opt.NeOp,
	"<":  opt.LtOp,
	"<=": opt.LeOp,
	">":  opt.GtOp,
	">=": opt.GeOp,
	"+":  opt.PlusOp,
	"-":  opt.MinusOp,
	"*":  opt.MultOp,
}

// sexpr is a parsed s-expression: either an atom or a list.
type sexpr struct {
	atom   string
	quoted bool
	list   []sexpr
	isList bool
}

type sexprParser struct {
	src string
	pos int
}

// parseSexpr parses exactly one s-expression from src.
func parseSexpr(src string) (sexpr, error) {
	p := sexprParser{src: src}
	e, err := p.parse()
	if err != nil {
		return sexpr{}, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return sexpr{}, errors.Newf("unexpected %q at position %d in %q", p.src[p.pos:], p.pos, src)
	}
	return e, nil
}

func (p *sexprParser) skipSpace() {
	for p.pos < len(p.src) && strings.IndexByte(" \t\r\n", p.src[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *sexprParser) parse() (sexpr, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return sexpr{}, errors.Newf("unexpected end of expression %q", p.src)
	}
	switch c := p.src[p.pos]; c {
	case '(':
		p.pos++
		res := sexpr{isList: true}
		for {
			p.skipSpace()
			if p.pos >= len(p.src) {
				return sexpr{}, errors.Newf("missing ) in %q", p.src)
			}
			if p.src[p.pos] == ')' {
				p.pos++
				return res, nil
			}
			child, err := p.parse()
			if err != nil {
				return sexpr{}, err
			}
			res.list = append(res.list, child)
		}
	case ')':
		return sexpr{}, errors.Newf("unexpected ) at position %d in %q", p.pos, p.src)
	case '\'':
		return p.parseString()
	default:
		start := p.pos
		for p.pos < len(p.src) && strings.IndexByte(" \t\r\n()'", p.src[p.pos]) < 0 {
			p.pos++
		}
		return sexpr{atom: p.src[start:p.pos]}, nil
	}
}

// parseString reads a single-quoted string; a doubled quote is an escaped
// quote.
func (p *sexprParser) parseString() (sexpr, error) {
	start := p.pos
	p.pos++
	var buf strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		p.pos++
		if c != '\'' {
			buf.WriteByte(c)
			continue
		}
		if p.pos < len(p.src) && p.src[p.pos] == '\'' {
			buf.WriteByte('\'')
			p.pos++
			continue
		}
		return sexpr{atom: buf.String(), quoted: true}, nil
	}
	return sexpr{}, errors.Newf("unterminated string at position %d in %q", start, p.src)
}

// buildScalar parses src and builds a scalar expression whose column
// references are resolved in inScope.
func (b *Builder) buildScalar(src string, inScope *scope) (memo.ScalarExpr, error) {
	e, err := parseSexpr(src)
	if err != nil {
		return nil, err
	}
	return b.buildScalarExpr(e, inScope)
}

func (b *Builder) buildScalarExpr(e sexpr, inScope *scope) (memo.ScalarExpr, error) {
	if !e.isList {
		return b.buildAtom(e, inScope)
	}
	if len(e.list) == 0 {
		return nil, errors.New("empty scalar expression ()")
	}
	head := e.list[0]
	if head.isList || head.quoted {
		return nil, errors.Newf("expected operator name, found %s", formatSexpr(head))
	}
	op, ok := scalarAliases[head.atom]
	if !ok {
		op, ok = opt.OperatorByName(head.atom)
	}
	if !ok || !op.IsScalar() || op == opt.VariableOp || op == opt.ConstOp {
		return nil, errors.Newf("unknown scalar operator %q", head.atom)
	}

	args := make([]memo.ScalarExpr, len(e.list)-1)
	for i := range args {
		arg, err := b.buildScalarExpr(e.list[i+1], inScope)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}

	// A single-operand minus is a negation.
	if op == opt.MinusOp && len(args) == 1 {
		op = opt.UnaryMinusOp
	}
	switch op {
	case opt.NotOp, opt.IsNullOp, opt.UnaryMinusOp:
		if len(args) != 1 {
			return nil, errors.Newf("%s takes 1 operand, found %d", op, len(args))
		}
	case opt.AndOp, opt.OrOp:
		if len(args) < 2 {
			return nil, errors.Newf("%s takes at least 2 operands, found %d", op, len(args))
		}
	default:
		if len(args) != 2 {
			return nil, errors.Newf("%s takes 2 operands, found %d", op, len(args))
		}
	}

	switch op {
	case opt.AndOp, opt.OrOp:
		for _, arg := range args {
			if err := requireType(op, arg, types.Bool); err != nil {
				return nil, err
			}
		}
		// (and a b c) is built left-deep as (and (and a b) c).
		res := args[0]
		for _, arg := range args[1:] {
			if op == opt.AndOp {
				res = &memo.AndExpr{Left: res, Right: arg}
			} else {
				res = &memo.OrExpr{Left: res, Right: arg}
			}
		}
		return res, nil

	case opt.NotOp:
		if err := requireType(op, args[0], types.Bool); err != nil {
			return nil, err
		}
		return &memo.NotExpr{Input: args[0]}, nil

	case opt.IsNullOp:
		return &memo.IsNullExpr{Input: args[0]}, nil

	case opt.UnaryMinusOp:
		if err := requireNumeric(op, args[0]); err != nil {
			return nil, err
		}
		return &memo.UnaryMinusExpr{Input: args[0]}, nil
	}

	if op.IsComparison() {
		l, r := args[0].DataType(), args[1].DataType()
		if !l.Equivalent(r) && !(isNumeric(l) && isNumeric(r)) {
			return nil, errors.Newf("unsupported comparison operator: %s %s %s", l, op, r)
		}
		return &memo.ComparisonExpr{Operator: op, Left: args[0], Right: args[1]}, nil
	}
	for _, arg := range args {
		if err := requireNumeric(op, arg); err != nil {
			return nil, err
		}
	}
	return &memo.ArithExpr{Operator: op, Left: args[0], Right: args[1]}, nil
}

// buildAtom builds a constant or a column reference.
func (b *Builder) buildAtom(e sexpr, inScope *scope) (memo.ScalarExpr, error) {
	if e.quoted {
		return &memo.ConstExpr{Value: tree.NewDString(e.atom)}, nil
	}
	switch strings.ToLower(e.atom) {
	case "null":
		return &memo.ConstExpr{Value: tree.DNull}, nil
	case "true":
		return &memo.ConstExpr{Value: tree.DBoolTrue}, nil
	case "false":
		return &memo.ConstExpr{Value: tree.DBoolFalse}, nil
	}
	if looksNumeric(e.atom) {
		d, err := tree.ParseDatum(types.Unknown, e.atom)
		if err != nil {
			return nil, err
		}
		if _, ok := d.(*tree.DString); ok {
			return nil, errors.Newf("invalid number %q", e.atom)
		}
		return &memo.ConstExpr{Value: d}, nil
	}
	col, err := inScope.resolveColumn(e.atom)
	if err != nil {
		return nil, err
	}
	return &memo.VariableExpr{Col: col.id, Typ: col.typ}, nil
}

// looksNumeric returns true if the atom starts like a number literal.
func looksNumeric(atom string) bool {
	if len(atom) > 1 && (atom[0] == '-' || atom[0] == '+') {
		atom = atom[1:]
	}
	c := atom[0]
	return c >= '0' && c <= '9' || c == '.'
}

func isNumeric(t *types.T) bool {
	switch t.Family() {
	case types.IntFamily, types.FloatFamily, types.DecimalFamily, types.UnknownFamily:
		return true
	}
	return false
}

func requireNumeric(op opt.Operator, e memo.ScalarExpr) error {
	if !isNumeric(e.DataType()) {
		return errors.Newf("%s: expected numeric operand, found %s", op, e.DataType())
	}
	return nil
}

func requireType(op opt.Operator, e memo.ScalarExpr, typ *types.T) error {
	if !e.DataType().Equivalent(typ) {
		return errors.Newf("%s: expected %s operand, found %s", op, typ, e.DataType())
	}
	return nil
}

func formatSexpr(e sexpr) string {
	if !e.isList {
		if e.quoted {
			return tree.NewDString(e.atom).String()
		}
		return e.atom
	}
	parts := make([]string, len(e.list))
	for i := range e.list {
		parts[i] = formatSexpr(e.list[i])
	}
	return "(" + strings.Join(parts, " ") + ")"
}
