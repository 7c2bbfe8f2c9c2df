// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package testutils

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"text/tabwriter"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/cat"
	"github.com/cockroachdb/physopt/pkg/sql/opt/exec/execbuilder"
	"github.com/cockroachdb/physopt/pkg/sql/opt/exec/explain"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/opt/optbuilder"
	"github.com/cockroachdb/physopt/pkg/sql/opt/testutils/testcat"
	"github.com/cockroachdb/physopt/pkg/sql/rowexec"
	"github.com/pmezard/go-difflib/difflib"
)

// OptTester is a helper for testing the various optimizer components. It
// contains the boiler-plate code for the following useful tasks:
//   - Build a plan tree from a YAML plan description
//   - Format the memo built from one or more plans
//   - Compare two plans for memo equality
//   - Build and run the processor tree of a plan
//   - Produce the EXPLAIN output of a plan
//
// The OptTester is used by tests in various sub-packages of the opt package.
type OptTester struct {
	Flags OptTesterFlags

	catalog cat.Catalog
	input   string
	ctx     context.Context

	builder strings.Builder
}

// OptTesterFlags are control knobs for tests. Note that specific testcases can
// override these defaults.
type OptTesterFlags struct {
	// ExprFormat controls the output detail of build and diff command
	// directives.
	ExprFormat memo.ExprFmtFlags

	// MemoFormat controls the output detail of memo command directives.
	MemoFormat memo.MemoFmtFlags

	// ExplainOptions are passed to explain.MakeFlags by the explain command.
	ExplainOptions []string

	// Verbose indicates whether verbose test debugging information will be
	// output to stdout when commands run. Only certain commands support this.
	Verbose bool
}

// NewOptTester constructs a new instance of the OptTester for the given plan
// descriptions. Tables and functions are resolved through the catalog.
func NewOptTester(catalog cat.Catalog, input string) *OptTester {
	return &OptTester{
		catalog: catalog,
		input:   input,
		ctx:     context.Background(),
	}
}

// RunCommand implements commands that are used by most tests:
//
//   - exec-ddl
//
//     Adds the YAML table definitions to the test catalog. This is only
//     available when using a TestCatalog.
//
//   - build [flags]
//
//     Builds a plan tree from a YAML plan description and outputs it, or the
//     error that made the plan invalid.
//
//   - exec
//
//     Builds a plan, runs it and outputs the rows it returns.
//
//   - explain [flags]
//
//     Builds a plan and outputs its EXPLAIN tree.
//
//   - memo [flags]
//
//     Builds every plan of the input, adds them all to one memo and outputs
//     the memo. Plans are separated by "---" lines and each is built with its
//     own column ids, so that equal subtrees of different plans share a group.
//     The group of the first plan is the root.
//
//   - equal
//
//     Builds the two plans of the input, each with its own column ids, and
//     outputs whether they are equal and whether their hashes match.
//
//   - diff [flags]
//
//     Builds the two plans of the input and outputs the unified diff of their
//     formatted trees.
//
// Supported flags:
//
//   - format: controls the formatting of expressions for build and diff.
//     Possible values: show-all, or any combination of hide-columns and
//     hide-groups. For example:
//     build format=(hide-columns,hide-groups)
//
//   - memo-format: controls the formatting of the memo command. Possible
//     values: raw, show-size.
//
//   - verbose, types, shape: EXPLAIN options for the explain command.
func (ot *OptTester) RunCommand(tb testing.TB, d *datadriven.TestData) string {
	// Allow testcases to override the flags.
	for _, a := range d.CmdArgs {
		if err := ot.Flags.Set(a); err != nil {
			d.Fatalf(tb, "%s", err)
		}
	}

	ot.Flags.Verbose = testing.Verbose()

	switch d.Cmd {
	case "exec-ddl":
		testCatalog, ok := ot.catalog.(*testcat.Catalog)
		if !ok {
			d.Fatalf(tb, "exec-ddl can only be used with TestCatalog")
		}
		s, err := testCatalog.ExecuteDDL(d.Input)
		if err != nil {
			d.Fatalf(tb, "%v", err)
		}
		return s

	case "build":
		e, md, err := ot.OptBuild()
		if err != nil {
			return formatError(err)
		}
		return memo.FormatExpr(e, md, ot.Flags.ExprFormat)

	case "exec":
		result, err := ot.Exec()
		if err != nil {
			return formatError(err)
		}
		return result

	case "explain":
		result, err := ot.Explain()
		if err != nil {
			return formatError(err)
		}
		return result

	case "memo":
		result, err := ot.Memo()
		if err != nil {
			d.Fatalf(tb, "%v", err)
		}
		return result

	case "equal":
		result, err := ot.Equal()
		if err != nil {
			d.Fatalf(tb, "%v", err)
		}
		return result

	case "diff":
		result, err := ot.Diff()
		if err != nil {
			d.Fatalf(tb, "%v", err)
		}
		return result

	default:
		d.Fatalf(tb, "unsupported command: %s", d.Cmd)
		return ""
	}
}

// formatError returns the output of a command that failed. Errors that carry
// a known mark are prefixed with the kind of error.
func formatError(err error) string {
	text := strings.TrimSpace(err.Error())
	if code := errorCode(err); code != "" {
		return fmt.Sprintf("error (%s): %s\n", code, text)
	}
	return fmt.Sprintf("error: %s\n", text)
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, opt.ErrInvalidOperator):
		return "invalid operator"
	case errors.Is(err, memo.ErrInvalidPlan):
		return "invalid plan"
	case errors.Is(err, testcat.ErrUndefinedTable):
		return "undefined table"
	case errors.Is(err, cat.ErrUndefinedFunction):
		return "undefined function"
	}
	return ""
}

// Set parses an argument that refers to a flag.
// See OptTester.RunCommand for supported flags.
func (f *OptTesterFlags) Set(arg datadriven.CmdArg) error {
	switch arg.Key {
	case "format":
		f.ExprFormat = 0
		if len(arg.Vals) == 0 {
			return fmt.Errorf("format flag requires value(s)")
		}
		for _, v := range arg.Vals {
			m := map[string]memo.ExprFmtFlags{
				"show-all":     memo.ExprFmtShowAll,
				"hide-columns": memo.ExprFmtHideColumns,
				"hide-groups":  memo.ExprFmtHideGroups,
			}
			if val, ok := m[v]; ok {
				f.ExprFormat |= val
			} else {
				return fmt.Errorf("unknown format value %s", v)
			}
		}

	case "memo-format":
		f.MemoFormat = 0
		for _, v := range arg.Vals {
			switch v {
			case "raw":
				f.MemoFormat |= memo.MemoFmtRaw
			case "show-size":
				f.MemoFormat |= memo.MemoFmtShowSize
			default:
				return fmt.Errorf("unknown memo-format value %s", v)
			}
		}

	case "verbose", "types", "shape":
		f.ExplainOptions = append(f.ExplainOptions, arg.Key)

	default:
		return fmt.Errorf("unknown argument: %s", arg.Key)
	}
	return nil
}

// OptBuild builds the plan tree of the input, which must hold a single plan
// description.
func (ot *OptTester) OptBuild() (*memo.Expr, *opt.Metadata, error) {
	docs := splitDocuments(ot.input)
	if len(docs) != 1 {
		return nil, nil, errors.Newf("expected one plan, found %d", len(docs))
	}
	return ot.buildDocument(docs[0])
}

// Exec builds the plan, runs it to completion and formats the rows it
// returns under a header of column names.
func (ot *OptTester) Exec() (string, error) {
	e, md, err := ot.OptBuild()
	if err != nil {
		return "", err
	}
	root, err := execbuilder.New(ot.ctx, md, e).Build()
	if err != nil {
		return "", err
	}
	rows, err := rowexec.Drain(ot.ctx, root)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 2, 1, 2, ' ', 0)
	for i, col := range root.OutputCols() {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, md.ColumnMeta(col).Alias)
	}
	fmt.Fprint(tw, "\n")
	for _, row := range rows {
		for i, d := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, d.String())
		}
		fmt.Fprint(tw, "\n")
	}
	_ = tw.Flush()
	ot.output("%s", buf.String())
	return buf.String(), nil
}

// Explain builds the plan and returns its EXPLAIN output.
func (ot *OptTester) Explain() (string, error) {
	flags, err := explain.MakeFlags(ot.Flags.ExplainOptions...)
	if err != nil {
		return "", err
	}
	e, md, err := ot.OptBuild()
	if err != nil {
		return "", err
	}
	ob := explain.NewOutputBuilder(flags)
	if err := explain.Emit(ot.ctx, md, e, ob); err != nil {
		return "", err
	}
	return ob.BuildString(), nil
}

// Memo adds every plan of the input to a single memo and returns the
// formatted memo. Columns are named after the metadata of the first plan.
func (ot *OptTester) Memo() (string, error) {
	var m memo.Memo
	m.Init()
	var firstMD *opt.Metadata
	var root memo.GroupID
	for i, doc := range splitDocuments(ot.input) {
		e, md, err := ot.buildDocument(doc)
		if err != nil {
			return "", errors.Wrapf(err, "plan %d", i)
		}
		grp := m.MemoizeExpr(ot.ctx, e)
		if i == 0 {
			firstMD, root = md, grp
		}
	}
	if root == 0 {
		return "", errors.New("no plan to memoize")
	}
	m.SetRoot(root)
	return memo.FormatMemo(&m, firstMD, ot.Flags.MemoFormat), nil
}

// Equal builds the two plans of the input and reports their equality.
func (ot *OptTester) Equal() (string, error) {
	left, right, err := ot.buildPair()
	if err != nil {
		return "", err
	}
	ot.builder.Reset()
	ot.output("equal: %t\n", left.Equals(right))
	ot.output("same hash: %t\n", left.Operator().Hash() == right.Operator().Hash())
	return ot.builder.String(), nil
}

// Diff builds the two plans of the input and returns the unified diff of
// their formatted trees.
func (ot *OptTester) Diff() (string, error) {
	docs := splitDocuments(ot.input)
	if len(docs) != 2 {
		return "", errors.Newf("expected two plans, found %d", len(docs))
	}
	var formatted [2]string
	for i, doc := range docs {
		e, md, err := ot.buildDocument(doc)
		if err != nil {
			return "", errors.Wrapf(err, "plan %d", i)
		}
		formatted[i] = memo.FormatExpr(e, md, ot.Flags.ExprFormat)
	}
	if formatted[0] == formatted[1] {
		return "no changes\n", nil
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(strings.TrimSuffix(formatted[0], "\n")),
		B:        difflib.SplitLines(strings.TrimSuffix(formatted[1], "\n")),
		FromFile: "first",
		ToFile:   "second",
		Context:  100,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", err
	}
	ot.builder.Reset()
	ot.output("%s", text)
	return ot.builder.String(), nil
}

func (ot *OptTester) buildPair() (left, right *memo.Expr, err error) {
	docs := splitDocuments(ot.input)
	if len(docs) != 2 {
		return nil, nil, errors.Newf("expected two plans, found %d", len(docs))
	}
	if left, _, err = ot.buildDocument(docs[0]); err != nil {
		return nil, nil, errors.Wrap(err, "plan 0")
	}
	if right, _, err = ot.buildDocument(docs[1]); err != nil {
		return nil, nil, errors.Wrap(err, "plan 1")
	}
	return left, right, nil
}

// buildDocument builds one plan description with fresh metadata.
func (ot *OptTester) buildDocument(doc string) (*memo.Expr, *opt.Metadata, error) {
	md := &opt.Metadata{}
	md.Init()
	e, err := optbuilder.New(ot.ctx, ot.catalog, md, []byte(doc)).Build()
	if err != nil {
		return nil, nil, err
	}
	return e, md, nil
}

// splitDocuments splits the input on "---" lines. Empty documents are
// dropped.
func splitDocuments(input string) []string {
	var docs []string
	var cur strings.Builder
	flush := func() {
		if strings.TrimSpace(cur.String()) != "" {
			docs = append(docs, cur.String())
		}
		cur.Reset()
	}
	for _, line := range strings.Split(input, "\n") {
		if strings.TrimSpace(line) == "---" {
			flush()
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
	}
	flush()
	return docs
}

func (ot *OptTester) output(format string, args ...interface{}) {
	fmt.Fprintf(&ot.builder, format, args...)
	if ot.Flags.Verbose {
		fmt.Printf(format, args...)
	}
}
