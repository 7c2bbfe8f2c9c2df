// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Severity identifies the sort of log: info, warning etc.
type Severity int32

// Severities, in increasing order of importance.
const (
	Severity_UNKNOWN Severity = iota
	Severity_INFO
	Severity_WARNING
	Severity_ERROR
	Severity_FATAL
	// Severity_NONE is used to suppress output below any threshold.
	Severity_NONE
)

var severityNames = [...]string{
	Severity_UNKNOWN: "UNKNOWN",
	Severity_INFO:    "INFO",
	Severity_WARNING: "WARNING",
	Severity_ERROR:   "ERROR",
	Severity_FATAL:   "FATAL",
	Severity_NONE:    "NONE",
}

// String implements fmt.Stringer.
func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "UNKNOWN"
	}
	return severityNames[s]
}

// SafeValue implements redact.SafeValue.
func (Severity) SafeValue() {}

// char returns the single-character abbreviation used in log lines.
func (s Severity) char() byte {
	return s.String()[0]
}

// SeverityByName attempts to parse the passed in string into a severity.
// The first letter is sufficient.
func SeverityByName(s string) (Severity, error) {
	s = strings.ToUpper(s)
	if s == "" {
		return Severity_UNKNOWN, errors.New("empty severity")
	}
	for i, name := range severityNames {
		if i == int(Severity_UNKNOWN) {
			continue
		}
		if name == s || (len(s) == 1 && name[0] == s[0]) {
			return Severity(i), nil
		}
	}
	return Severity_UNKNOWN, errors.Newf("unknown severity %q", s)
}

// Set implements pflag.Value.
func (s *Severity) Set(value string) error {
	sev, err := SeverityByName(value)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// Type implements pflag.Value.
func (s *Severity) Type() string { return "<severity>" }
