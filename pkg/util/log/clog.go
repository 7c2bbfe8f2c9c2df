// Copyright 2013 Google Inc. All Rights Reserved.
// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/physopt/pkg/cli/exit"
	"github.com/cockroachdb/physopt/pkg/util/syncutil"
	"github.com/cockroachdb/redact"
)

// OrigStderr points to the original stderr stream when the process started.
var OrigStderr = os.Stderr

// loggingT collects all the global state of the logging setup.
type loggingT struct {
	// verbosity is the V() threshold; accessed atomically.
	verbosity int32

	mu struct {
		syncutil.Mutex
		// out is where formatted entries go.
		out io.Writer
		// threshold is the minimum severity that is written.
		threshold Severity
		// redactable keeps redaction markers in the output.
		redactable bool
		// color is the profile for the output, or nil for no color.
		color *colorProfile
		// exitOverride is used when shutting down the process after a
		// fatal error.
		exitOverride struct {
			f         func(exit.Code)
			hideStack bool
		}
	}
}

var logging = func() *loggingT {
	l := &loggingT{}
	l.mu.out = OrigStderr
	l.mu.threshold = Severity_INFO
	l.mu.color = stderrColorProfile
	return l
}()

// SetOutput redirects log output and returns a function that restores the
// previous output. Color is disabled on the new output unless it is the
// original stderr.
func SetOutput(w io.Writer) (restore func()) {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	prevOut, prevColor := logging.mu.out, logging.mu.color
	logging.mu.out = w
	if w != io.Writer(OrigStderr) {
		logging.mu.color = nil
	}
	return func() {
		logging.mu.Lock()
		defer logging.mu.Unlock()
		logging.mu.out, logging.mu.color = prevOut, prevColor
	}
}

// SetThreshold sets the minimum severity written to the output.
func SetThreshold(sev Severity) {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	logging.mu.threshold = sev
}

// SetRedactable configures whether redaction markers are kept in the output.
func SetRedactable(redactable bool) {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	logging.mu.redactable = redactable
}

// SetVerbosity sets the global verbosity level returned by V.
func SetVerbosity(level int32) {
	atomic.StoreInt32(&logging.verbosity, level)
}

// V returns true if the logging verbosity is set to the specified level or
// higher.
func V(level int32) bool {
	return level <= atomic.LoadInt32(&logging.verbosity)
}

// VDepth is like V, and exists for symmetry with the depth-aware log
// functions.
func VDepth(level int32, depth int) bool {
	return V(level)
}

// Infof logs to the INFO log.
// It extracts log tags from the context and logs them along with the given
// message. Arguments are handled in the manner of fmt.Printf.
func Infof(ctx context.Context, format string, args ...interface{}) {
	logDepth(ctx, 1, Severity_INFO, format, args)
}

// InfofDepth logs to the INFO log, offsetting the caller's stack frame by
// 'depth'.
func InfofDepth(ctx context.Context, depth int, format string, args ...interface{}) {
	logDepth(ctx, depth+1, Severity_INFO, format, args)
}

// Warningf logs to the WARNING and INFO logs.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	logDepth(ctx, 1, Severity_WARNING, format, args)
}

// Errorf logs to the ERROR, WARNING, and INFO logs.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	logDepth(ctx, 1, Severity_ERROR, format, args)
}

// Fatalf logs to the FATAL log and then exits the process with
// exit.FatalError, unless an exit function was installed with SetExitFunc.
func Fatalf(ctx context.Context, format string, args ...interface{}) {
	logDepth(ctx, 1, Severity_FATAL, format, args)
	exitWithCode(exit.FatalError())
}

// VEventf logs the message at INFO if the verbosity is at least level.
func VEventf(ctx context.Context, level int32, format string, args ...interface{}) {
	if V(level) {
		logDepth(ctx, 1, Severity_INFO, format, args)
	}
}

// Safe marks a value as safe for reporting: it is not redacted.
func Safe(v interface{}) redact.SafeValue {
	return redact.Safe(v)
}

func logDepth(ctx context.Context, depth int, sev Severity, format string, args []interface{}) {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	if sev < logging.mu.threshold {
		return
	}
	outputLocked(makeEntry(ctx, sev, depth+1, format, args))
}

// outputLocked writes the entry to the current output. logging.mu must be
// held.
func outputLocked(entry logEntry) {
	logging.mu.AssertHeld()
	var buf bytes.Buffer
	entry.format(&buf, logging.mu.redactable, logging.mu.color)
	_, _ = logging.mu.out.Write(buf.Bytes())
}

// logEntry is a single formatted log event.
type logEntry struct {
	sev     Severity
	time    time.Time
	file    string
	line    int
	tags    string
	message redact.RedactableString
}

func makeEntry(
	ctx context.Context, sev Severity, depth int, format string, args []interface{},
) logEntry {
	_, file, line, ok := runtime.Caller(depth + 1)
	if !ok {
		file, line = "???", 1
	} else {
		file = filepath.Join(filepath.Base(filepath.Dir(file)), filepath.Base(file))
	}
	var tagBuf bytes.Buffer
	formatTags(ctx, false /* brackets */, &tagBuf)
	var msg redact.RedactableString
	if len(args) == 0 {
		msg = redact.Sprint(redact.Safe(format))
	} else {
		msg = redact.Sprintf(format, args...)
	}
	return logEntry{
		sev:     sev,
		time:    time.Now(),
		file:    file,
		line:    line,
		tags:    tagBuf.String(),
		message: msg,
	}
}

// format writes the entry in the crdb-v1 layout:
//
//	I261019 14:03:05.123456 memo/memo.go:88  [memo] message
func (e logEntry) format(buf *bytes.Buffer, redactable bool, cp *colorProfile) {
	if cp != nil {
		switch e.sev {
		case Severity_INFO:
			buf.Write(cp.infoPrefix)
		case Severity_WARNING:
			buf.Write(cp.warnPrefix)
		default:
			buf.Write(cp.errorPrefix)
		}
	}
	buf.WriteByte(e.sev.char())
	if cp != nil {
		buf.Write(colorReset)
		buf.Write(cp.timePrefix)
	}
	buf.WriteString(e.time.UTC().Format("060102 15:04:05.000000"))
	if cp != nil {
		buf.Write(colorReset)
	}
	fmt.Fprintf(buf, " %s:%d ", e.file, e.line)
	if e.tags != "" {
		buf.WriteString(" [")
		buf.WriteString(e.tags)
		buf.WriteString("] ")
	}
	if redactable {
		buf.WriteString(string(e.message))
	} else {
		buf.WriteString(e.message.StripMarkers())
	}
	if buf.Len() == 0 || buf.Bytes()[buf.Len()-1] != '\n' {
		buf.WriteByte('\n')
	}
}
