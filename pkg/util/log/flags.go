// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import "github.com/spf13/pflag"

// Config is the logging configuration settable from the command line or a
// configuration file.
type Config struct {
	// Verbosity is the V() threshold.
	Verbosity int32 `yaml:"verbosity"`
	// Threshold is the minimum severity written to stderr.
	Threshold Severity `yaml:"-"`
	// Redactable keeps redaction markers in log output.
	Redactable bool `yaml:"redactable"`
	// NoColor disables colored output on terminals.
	NoColor bool `yaml:"no-color"`
}

// DefaultConfig returns the configuration used when no flags are given.
func DefaultConfig() Config {
	return Config{Threshold: Severity_WARNING}
}

// AddFlags registers the logging flags on fs, with c providing the defaults
// and receiving the parsed values.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.Int32VarP(&c.Verbosity, "verbosity", "v", c.Verbosity,
		"log verbosity level; higher values log more optimizer events")
	fs.Var(&c.Threshold, "log-level",
		"minimum severity of log messages written to stderr (INFO, WARNING, ERROR)")
	fs.BoolVar(&c.Redactable, "redactable-logs", c.Redactable,
		"keep redaction markers around sensitive values in log output")
	fs.BoolVar(&c.NoColor, "no-color", c.NoColor,
		"disable colors in log output")
}

// Apply installs the configuration in the global logger.
func (c *Config) Apply() {
	SetVerbosity(c.Verbosity)
	if c.Threshold != Severity_UNKNOWN {
		SetThreshold(c.Threshold)
	}
	SetRedactable(c.Redactable)
	if c.NoColor {
		DisableColor()
	}
}
