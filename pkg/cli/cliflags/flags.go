// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package cliflags describes the command-line flags of the physopt command.
package cliflags

import "strings"

// FlagInfo contains the static information for a CLI flag and helper
// to format the description.
type FlagInfo struct {
	// Name of the flag as used on the command line.
	Name string

	// Shorthand is the short form of the flag (optional).
	Shorthand string

	// ConfigKey is the key of the setting in the YAML configuration file, if
	// the flag can be set there.
	ConfigKey string

	// Description of the flag.
	Description string
}

// Usage returns a formatted usage string for the flag.
func (f FlagInfo) Usage() string {
	s := strings.TrimSpace(f.Description)
	if f.ConfigKey != "" {
		s += "\n(config file key: " + f.ConfigKey + ")"
	}
	return s
}

// Flags of the physopt command.
var (
	Config = FlagInfo{
		Name: "config",
		Description: `
Path to a YAML configuration file providing defaults for the other flags.
Flags given on the command line take precedence over the file.`,
	}

	Schema = FlagInfo{
		Name:      "schema",
		Shorthand: "s",
		ConfigKey: "schema",
		Description: `
Path to a YAML file of table definitions, separated by "---", that plans can
scan. May be given multiple times.`,
	}

	TableDisplayFormat = FlagInfo{
		Name:      "format",
		ConfigKey: "format",
		Description: `
Selects how rows are printed. Possible values: table, tsv, csv, records.
Defaults to table when printing to a terminal and tsv otherwise.`,
	}

	MaxRows = FlagInfo{
		Name:      "max-rows",
		ConfigKey: "max-rows",
		Description: `
Maximum number of result rows printed by exec. Zero prints all rows.`,
	}

	ExplainOptions = FlagInfo{
		Name:      "options",
		ConfigKey: "explain",
		Description: `
EXPLAIN options, a comma-separated list of verbose, types and shape.`,
	}

	HideColumns = FlagInfo{
		Name:        "hide-columns",
		Description: `Omit the output column line of every operator.`,
	}

	ShowMemoSize = FlagInfo{
		Name:        "show-size",
		Description: `Print the memory estimate of the memo in its header.`,
	}
)
