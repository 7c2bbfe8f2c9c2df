// Copyright 2019 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"os"
	"runtime/debug"

	"github.com/cockroachdb/physopt/pkg/cli/exit"
)

// SetExitFunc installs the function called by Fatalf to terminate the
// process. With hideStack set, the goroutine stack is not written to the log
// before exiting.
//
// Call with a nil function to undo.
func SetExitFunc(hideStack bool, f func(exit.Code)) {
	logging.mu.Lock()
	defer logging.mu.Unlock()

	logging.mu.exitOverride.f = f
	logging.mu.exitOverride.hideStack = hideStack
}

// ResetExitFunc undoes any prior call to SetExitFunc.
func ResetExitFunc() {
	logging.mu.Lock()
	defer logging.mu.Unlock()

	logging.mu.exitOverride.f = nil
	logging.mu.exitOverride.hideStack = false
}

// exitWithCode writes the stack unless hidden and terminates the process
// through the installed exit function, or os.Exit if there is none.
func exitWithCode(code exit.Code) {
	logging.mu.Lock()
	f, hideStack, out := logging.mu.exitOverride.f, logging.mu.exitOverride.hideStack, logging.mu.out
	logging.mu.Unlock()
	if !hideStack {
		_, _ = out.Write(debug.Stack())
	}
	if f != nil {
		f(code)
		return
	}
	os.Exit(code.Int())
}
