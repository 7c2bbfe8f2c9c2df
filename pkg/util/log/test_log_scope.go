// Copyright 2016 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"bytes"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/physopt/pkg/util/syncutil"
)

// TestLogScope represents the lifetime of a logging output redirection for a
// test. Log output is buffered and only shown if the test fails.
type TestLogScope struct {
	mu struct {
		syncutil.Mutex
		buf bytes.Buffer
	}
	restore      func()
	oldVerbosity int32
	oldThreshold Severity
}

// Scope creates a TestLogScope which captures all log output. It should be
// called at the start of tests as:
//
//	defer log.Scope(t).Close(t)
func Scope(t testing.TB) *TestLogScope {
	s := &TestLogScope{}
	s.oldVerbosity = atomic.LoadInt32(&logging.verbosity)
	logging.mu.Lock()
	s.oldThreshold = logging.mu.threshold
	logging.mu.Unlock()
	s.restore = SetOutput(scopeWriter{s})
	SetThreshold(Severity_INFO)
	return s
}

type scopeWriter struct {
	s *TestLogScope
}

func (w scopeWriter) Write(p []byte) (int, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	return w.s.mu.buf.Write(p)
}

// Output returns everything logged so far in the scope.
func (s *TestLogScope) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mu.buf.String()
}

// Close restores the previous logging configuration. The captured output is
// dumped into the test log if the test failed.
func (s *TestLogScope) Close(t testing.TB) {
	t.Helper()
	s.restore()
	SetVerbosity(s.oldVerbosity)
	SetThreshold(s.oldThreshold)
	if t.Failed() {
		if out := s.Output(); out != "" {
			t.Logf("captured log output:\n%s", out)
		}
	}
}
