// Copyright 2020 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package exit defines the process exit codes of the physopt command.
package exit

import "os"

// Code represents an exit code.
type Code struct {
	code int
}

// String implements fmt.Stringer.
func (c Code) String() string {
	switch c.code {
	case 0:
		return "success"
	case 1:
		return "error"
	case 2:
		return "panic"
	case 4:
		return "flag error"
	case 7:
		return "fatal error"
	case 125:
		return "invalid plan"
	case 124:
		return "undefined object"
	}
	return "unknown"
}

// Int returns the numeric value of the code.
func (c Code) Int() int {
	return c.code
}

// WithCode terminates the process with the given exit code.
func WithCode(code Code) {
	os.Exit(code.code)
}

// Success (0) represents a normal process termination.
func Success() Code { return Code{0} }

// UnspecifiedError (1) indicates the process has terminated with an
// error condition. The specific cause of the error can be found in
// the logging output.
func UnspecifiedError() Code { return Code{1} }

// UnspecifiedGoPanic (2) indicates the process has terminated due to
// an uncaught Go panic or some other error in the Go runtime.
//
// The reporting of this exit code likely indicates a programming
// error inside physopt.
func UnspecifiedGoPanic() Code { return Code{2} }

// CommandLineFlagError (4) indicates there was an error in the
// command-line parameters or in the configuration file.
func CommandLineFlagError() Code { return Code{4} }

// FatalError (7) indicates that a logical error was detected and the
// process was terminated by log.Fatalf.
func FatalError() Code { return Code{7} }

// Command-specific exit codes are allocated down from 125.

// InvalidPlan (125) indicates that a plan description was rejected when
// its operators were constructed or validated.
func InvalidPlan() Code { return Code{125} }

// UndefinedObject (124) indicates that a plan description referenced a
// table or table function the catalog doesn't know.
func UndefinedObject() Code { return Code{124} }
