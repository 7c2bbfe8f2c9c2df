// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package execbuilder

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/rowexec"
	"github.com/cockroachdb/physopt/pkg/util/log"
)

// Builder constructs a tree of processors (rowexec.RowSource) from a physical
// operator tree (memo.Expr).
type Builder struct {
	ctx context.Context
	md  *opt.Metadata
	e   *memo.Expr

	// processors counts the processors built so far.
	processors int
}

// New constructs an instance of the execution node builder using the given
// metadata to validate the tree. The metadata may be nil, in which case
// column types are not checked.
func New(ctx context.Context, md *opt.Metadata, e *memo.Expr) *Builder {
	return &Builder{ctx: log.WithTag(ctx, "exec", nil), md: md, e: e}
}

// Build validates the operator tree and returns the root of the processor
// tree if no error occurred. The caller is responsible for starting, draining
// and closing the returned RowSource.
func (b *Builder) Build() (_ rowexec.RowSource, err error) {
	if b.e == nil {
		return nil, errors.AssertionFailedf("building execution for nil expression")
	}
	if err := memo.CheckExpr(b.md, b.e); err != nil {
		return nil, err
	}
	ep, err := b.build(b.e)
	if err != nil {
		return nil, err
	}
	log.VEventf(b.ctx, 1, "built %d processors", b.processors)
	return ep.root, nil
}

func (b *Builder) build(e *memo.Expr) (_ execPlan, err error) {
	defer func() {
		if r := recover(); r != nil {
			// This code allows us to propagate errors without adding lots of checks
			// for `if err != nil` throughout the construction code. This is only
			// possible because the code does not update shared state and does not
			// manipulate locks.
			err = opt.CatchOptimizerError(r)
		}
	}()
	return b.buildRelational(e), nil
}
