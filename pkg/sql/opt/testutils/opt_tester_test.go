// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package testutils_test

import (
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/opt/testutils"
	"github.com/cockroachdb/physopt/pkg/sql/opt/testutils/testcat"
	"github.com/cockroachdb/physopt/pkg/util/leaktest"
	"github.com/cockroachdb/physopt/pkg/util/log"
	"github.com/stretchr/testify/require"
)

// TestOptTester runs data-driven testcases of the form
//
//	<command> [flags]
//	<YAML plan description>
//	----
//	<expected results>
//
// See OptTester.RunCommand for supported commands.
func TestOptTester(t *testing.T) {
	defer leaktest.AfterTest(t)()
	defer log.Scope(t).Close(t)

	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		catalog := testcat.New()
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			tester := testutils.NewOptTester(catalog, d.Input)
			tester.Flags.ExprFormat = memo.ExprFmtHideGroups
			return tester.RunCommand(t, d)
		})
	})
}

func TestBuildPlan(t *testing.T) {
	defer leaktest.AfterTest(t)()

	catalog := testcat.New()
	_, err := catalog.ExecuteDDL("{table: t, columns: [a:int, b:string]}")
	require.NoError(t, err)

	e, md := testutils.BuildPlan(t, catalog, "{op: scan, table: t, cols: [a]}")
	require.Equal(t, opt.ScanOp, e.Op())
	require.Equal(t, opt.ColList{1}, memo.OutputCols(e))
	require.Equal(t, "b:2", md.QualifiedAlias(2))
}
