// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/exec/execbuilder"
	"github.com/cockroachdb/physopt/pkg/sql/opt/exec/explain"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/opt/optbuilder"
	"github.com/cockroachdb/physopt/pkg/sql/opt/testutils/testcat"
	"github.com/cockroachdb/physopt/pkg/sql/rowexec"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/physopt/pkg/util/log"
	"github.com/spf13/cobra"
)

var formatCmd = &cobra.Command{
	Use:   "format [plan.yaml]",
	Short: "print the operator tree of a plan",
	Long: `
Builds the plan described in the given file, or on standard input, and prints
its operator tree with the attributes of every operator.
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFormat,
}

func runFormat(cmd *cobra.Command, args []string) error {
	e, md, err := buildPlan(cmd.Context(), args)
	if err != nil {
		return err
	}
	flags := memo.ExprFmtHideGroups
	if cliCtx.hideColumns {
		flags |= memo.ExprFmtHideColumns
	}
	fmt.Fprint(osStdout, memo.FormatExpr(e, md, flags))
	return nil
}

var explainCmd = &cobra.Command{
	Use:   "explain [plan.yaml]",
	Short: "print the EXPLAIN output of a plan",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExplain,
}

func runExplain(cmd *cobra.Command, args []string) error {
	flags, err := explain.MakeFlags(cliCtx.explainOptions...)
	if err != nil {
		return &flagError{cause: err}
	}
	e, md, err := buildPlan(cmd.Context(), args)
	if err != nil {
		return err
	}
	ob := explain.NewOutputBuilder(flags)
	if err := explain.Emit(cmd.Context(), md, e, ob); err != nil {
		return err
	}
	fmt.Fprint(osStdout, ob.BuildString())
	return nil
}

var execCmd = &cobra.Command{
	Use:   "exec [plan.yaml]",
	Short: "run a plan and print the rows it returns",
	Long: `
Builds the plan, runs it with the reference executor and prints the rows it
returns. Only scans, values, sorts and table functions can be run.
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExec,
}

func runExec(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, md, err := buildPlan(ctx, args)
	if err != nil {
		return err
	}
	return runPlan(ctx, e, md, cliCtx.maxRows)
}

// runPlan runs the plan and prints at most maxRows of its rows, or all of
// them if maxRows is zero.
func runPlan(ctx context.Context, e *memo.Expr, md *opt.Metadata, maxRows int) error {
	root, err := execbuilder.New(ctx, md, e).Build()
	if err != nil {
		return err
	}
	rows, err := rowexec.Drain(ctx, root)
	if err != nil {
		return err
	}

	outCols := root.OutputCols()
	cols := make([]string, len(outCols))
	for i, col := range outCols {
		cols[i] = md.ColumnMeta(col).Alias
	}
	truncated := maxRows > 0 && len(rows) > maxRows
	if truncated {
		rows = rows[:maxRows]
	}
	strRows := make([][]string, len(rows))
	for i, row := range rows {
		strRows[i] = make([]string, len(row))
		for j, d := range row {
			strRows[i][j] = formatDatum(d)
		}
	}
	return printQueryOutput(osStdout, cols, strRows, truncated, cliCtx.tableDisplayFormat)
}

// formatDatum prints strings without quotes, and other datums as they are
// formatted in plans.
func formatDatum(d tree.Datum) string {
	if s, ok := d.(*tree.DString); ok {
		return string(*s)
	}
	return d.String()
}

var memoCmd = &cobra.Command{
	Use:   "memo [plan.yaml]",
	Short: "print the memo built from one or more plans",
	Long: `
Adds every plan of the input, separated by "---" lines, to a single memo and
prints its groups. Equal subtrees of different plans share a group. The first
plan is the root of the memo.
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMemo,
}

func runMemo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	src, err := readInput(args)
	if err != nil {
		return err
	}
	catalog, err := makeCatalog()
	if err != nil {
		return err
	}

	var m memo.Memo
	m.Init()
	var rootMD *opt.Metadata
	for i, doc := range splitPlans(src) {
		md := &opt.Metadata{}
		md.Init()
		e, err := optbuilder.New(ctx, catalog, md, doc).Build()
		if err != nil {
			return errors.Wrapf(err, "plan %d", i)
		}
		grp := m.MemoizeExpr(ctx, e)
		if i == 0 {
			rootMD = md
			m.SetRoot(grp)
		}
	}
	if rootMD == nil {
		return errors.New("empty plan description")
	}
	var flags memo.MemoFmtFlags
	if cliCtx.showSize {
		flags |= memo.MemoFmtShowSize
	}
	fmt.Fprint(osStdout, memo.FormatMemo(&m, rootMD, flags))
	return nil
}

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "list the table functions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPlanSource(cmd.Context(), []byte(functionsPlan))
	},
}

// functionsPlan scans the virtual table listing the table functions.
var functionsPlan = fmt.Sprintf(`
op: scan
table: %s
project: [function_name, signature]
`, testcat.TableFunctionsTableName)

func runPlanSource(ctx context.Context, src []byte) error {
	catalog, err := makeCatalog()
	if err != nil {
		return err
	}
	md := &opt.Metadata{}
	md.Init()
	e, err := optbuilder.New(ctx, catalog, md, src).Build()
	if err != nil {
		return err
	}
	return runPlan(ctx, e, md, 0 /* maxRows */)
}

// splitPlans splits the input on "---" lines. Empty documents are dropped.
func splitPlans(src []byte) [][]byte {
	var docs [][]byte
	var cur bytes.Buffer
	flush := func() {
		if len(bytes.TrimSpace(cur.Bytes())) != 0 {
			docs = append(docs, append([]byte(nil), cur.Bytes()...))
		}
		cur.Reset()
	}
	for _, line := range bytes.Split(src, []byte("\n")) {
		if string(bytes.TrimSpace(line)) == "---" {
			flush()
			continue
		}
		cur.Write(line)
		cur.WriteByte('\n')
	}
	flush()
	return docs
}

// buildPlan builds the single plan described by the input.
func buildPlan(ctx context.Context, args []string) (*memo.Expr, *opt.Metadata, error) {
	src, err := readInput(args)
	if err != nil {
		return nil, nil, err
	}
	catalog, err := makeCatalog()
	if err != nil {
		return nil, nil, err
	}
	md := &opt.Metadata{}
	md.Init()
	e, err := optbuilder.New(ctx, catalog, md, src).Build()
	if err != nil {
		return nil, nil, err
	}
	return e, md, nil
}

// readInput returns the contents of the file named by args, or of standard
// input if there is none or it is "-".
func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		src, err := io.ReadAll(osStdin)
		return src, errors.Wrap(err, "reading standard input")
	}
	src, err := os.ReadFile(args[0])
	return src, errors.Wrap(err, "reading plan description")
}

// makeCatalog returns a catalog holding the tables of the schema files.
func makeCatalog() (*testcat.Catalog, error) {
	catalog := testcat.New()
	for _, path := range cliCtx.schemaFiles {
		ddl, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading schema file")
		}
		if _, err := catalog.ExecuteDDL(string(ddl)); err != nil {
			return nil, errors.Wrapf(err, "schema file %s", path)
		}
		log.VEventf(context.Background(), 1, "loaded schema file %s", path)
	}
	return catalog, nil
}
