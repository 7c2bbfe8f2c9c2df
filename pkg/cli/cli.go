// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package cli implements the physopt command, which builds, formats,
// explains and runs physical plans described in YAML.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/cli/exit"
	"github.com/cockroachdb/physopt/pkg/sql/opt"
	"github.com/cockroachdb/physopt/pkg/sql/opt/cat"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/opt/testutils/testcat"
	"github.com/cockroachdb/physopt/pkg/util/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Proxies to allow overrides in tests.
var (
	osStdin  io.Reader = os.Stdin
	osStdout io.Writer = os.Stdout
	osStderr io.Writer = os.Stderr
)

// Main is the entry point for the physopt command.
func Main() {
	if err := Run(os.Args[1:]); err != nil {
		code := exitCodeFor(err)
		fmt.Fprintf(osStderr, "ERROR: %s\n", err)
		for _, h := range errors.GetAllHints(err) {
			fmt.Fprintf(osStderr, "HINT: %s\n", h)
		}
		log.Infof(context.Background(), "exiting with code %d (%s)", code.Int(), code)
		exit.WithCode(code)
	}
}

// Run executes the physopt command with the given arguments.
func Run(args []string) error {
	physoptCmd.SetArgs(args)
	return physoptCmd.Execute()
}

var physoptCmd = &cobra.Command{
	Use:   "physopt [command] (flags)",
	Short: "physical plan tool",
	Long: `
Builds physical plans from YAML plan descriptions, and formats, explains,
memoizes or runs them against tables defined in schema files.
`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// isInteractive indicates whether both stdin and stdout refer to the
// terminal.
var isInteractive = isatty.IsTerminal(os.Stdout.Fd()) &&
	isatty.IsTerminal(os.Stdin.Fd())

func init() {
	cobra.EnableCommandSorting = false

	physoptCmd.AddCommand(
		formatCmd,
		explainCmd,
		execCmd,
		memoCmd,
		functionsCmd,
	)
	physoptCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &flagError{cause: err}
	})
}

// flagError wraps errors in the command-line parameters or the
// configuration file.
type flagError struct {
	cause error
}

func (e *flagError) Error() string { return e.cause.Error() }
func (e *flagError) Unwrap() error { return e.cause }

// exitCodeFor maps an error returned by a command to the process exit code.
func exitCodeFor(err error) exit.Code {
	var fe *flagError
	switch {
	case errors.As(err, &fe):
		return exit.CommandLineFlagError()
	case errors.Is(err, opt.ErrInvalidOperator), errors.Is(err, memo.ErrInvalidPlan):
		return exit.InvalidPlan()
	case errors.Is(err, testcat.ErrUndefinedTable), errors.Is(err, cat.ErrUndefinedFunction):
		return exit.UndefinedObject()
	case strings.HasPrefix(err.Error(), "unknown command"),
		strings.HasPrefix(err.Error(), "unknown flag"),
		strings.HasPrefix(err.Error(), "unknown shorthand flag"):
		return exit.CommandLineFlagError()
	}
	return exit.UnspecifiedError()
}
