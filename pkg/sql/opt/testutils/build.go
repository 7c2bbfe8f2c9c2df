// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package testutils

import (
	"context"
	"testing"

	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/cat"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/opt/optbuilder"
)

// BuildPlan builds the given YAML plan description against the catalog and
// returns the plan together with the metadata of its columns. It fails the
// test if the plan is invalid.
func BuildPlan(tb testing.TB, catalog cat.Catalog, src string) (*memo.Expr, *opt.Metadata) {
	tb.Helper()
	var md opt.Metadata
	md.Init()
	e, err := optbuilder.New(context.Background(), catalog, &md, []byte(src)).Build()
	if err != nil {
		tb.Fatalf("%s: %+v", src, err)
	}
	return e, &md
}
