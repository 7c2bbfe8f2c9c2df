// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/cli/cliflags"
	"github.com/cockroachdb/physopt/pkg/util/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// cliContext holds the parameters of the physopt command, populated from
// the configuration file and the command line.
type cliContext struct {
	// configPath is the YAML configuration file given with --config.
	configPath string
	// schemaFiles hold table definitions added to the catalog.
	schemaFiles []string
	// tableDisplayFormat is how exec and functions print rows.
	tableDisplayFormat tableDisplayFormat
	// maxRows caps the rows printed by exec. Zero prints all rows.
	maxRows int
	// explainOptions are passed to explain.MakeFlags.
	explainOptions []string
	// hideColumns omits the column lines of formatted plans.
	hideColumns bool
	// showSize prints the memo's memory estimate.
	showSize bool

	logCfg log.Config
}

var cliCtx cliContext

// initCLIDefaults sets the defaults of cliCtx. Tests call it to reset the
// state left by a previous command.
func initCLIDefaults() {
	cliCtx = cliContext{logCfg: log.DefaultConfig()}
	if !isInteractive {
		cliCtx.tableDisplayFormat = tableDisplayTSV
	}
}

// fileConfig is the layout of the configuration file. Pointer fields
// distinguish settings that are absent from zero values.
type fileConfig struct {
	Format  *string        `yaml:"format"`
	MaxRows *int           `yaml:"max-rows"`
	Schema  []string       `yaml:"schema"`
	Explain []string       `yaml:"explain"`
	Logging *loggingConfig `yaml:"logging"`
}

type loggingConfig struct {
	Verbosity  *int32  `yaml:"verbosity"`
	LogLevel   *string `yaml:"log-level"`
	Redactable *bool   `yaml:"redactable"`
	NoColor    *bool   `yaml:"no-color"`
}

func stringFlag(f *pflag.FlagSet, valPtr *string, flagInfo cliflags.FlagInfo) {
	f.StringVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, *valPtr, flagInfo.Usage())
}

func intFlag(f *pflag.FlagSet, valPtr *int, flagInfo cliflags.FlagInfo) {
	f.IntVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, *valPtr, flagInfo.Usage())
}

func boolFlag(f *pflag.FlagSet, valPtr *bool, flagInfo cliflags.FlagInfo) {
	f.BoolVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, *valPtr, flagInfo.Usage())
}

func varFlag(f *pflag.FlagSet, value pflag.Value, flagInfo cliflags.FlagInfo) {
	f.VarP(value, flagInfo.Name, flagInfo.Shorthand, flagInfo.Usage())
}

func stringSliceFlag(f *pflag.FlagSet, valPtr *[]string, flagInfo cliflags.FlagInfo) {
	f.StringSliceVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, *valPtr, flagInfo.Usage())
}

func stringArrayFlag(f *pflag.FlagSet, valPtr *[]string, flagInfo cliflags.FlagInfo) {
	f.StringArrayVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, *valPtr, flagInfo.Usage())
}

func init() {
	initCLIDefaults()

	pf := physoptCmd.PersistentFlags()
	stringFlag(pf, &cliCtx.configPath, cliflags.Config)
	stringArrayFlag(pf, &cliCtx.schemaFiles, cliflags.Schema)
	cliCtx.logCfg.AddFlags(pf)

	varFlag(execCmd.Flags(), &cliCtx.tableDisplayFormat, cliflags.TableDisplayFormat)
	varFlag(functionsCmd.Flags(), &cliCtx.tableDisplayFormat, cliflags.TableDisplayFormat)
	intFlag(execCmd.Flags(), &cliCtx.maxRows, cliflags.MaxRows)
	stringSliceFlag(explainCmd.Flags(), &cliCtx.explainOptions, cliflags.ExplainOptions)
	boolFlag(formatCmd.Flags(), &cliCtx.hideColumns, cliflags.HideColumns)
	boolFlag(memoCmd.Flags(), &cliCtx.showSize, cliflags.ShowMemoSize)
}

// loadConfig reads the configuration file, if one was given, and applies
// its settings to every flag that was not set on the command line. It then
// installs the logging configuration.
func loadConfig(cmd *cobra.Command, _ []string) error {
	if cliCtx.configPath != "" {
		if err := applyConfigFile(cmd.Flags(), cliCtx.configPath); err != nil {
			return &flagError{cause: err}
		}
	}
	cliCtx.logCfg.Apply()
	log.VEventf(context.Background(), 1, "running %s with config %q", cmd.Name(), cliCtx.configPath)
	return nil
}

func applyConfigFile(fs *pflag.FlagSet, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading configuration file")
	}
	var cfg fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrapf(err, "parsing configuration file %s", path)
	}

	// unset reports whether the flag can take its value from the file. Flags
	// a command doesn't define are ignored.
	unset := func(name string) bool {
		f := fs.Lookup(name)
		return f != nil && !f.Changed
	}
	if cfg.Format != nil && unset(cliflags.TableDisplayFormat.Name) {
		if err := cliCtx.tableDisplayFormat.Set(*cfg.Format); err != nil {
			return errors.Wrapf(err, "%s: %s", path, cliflags.TableDisplayFormat.ConfigKey)
		}
	}
	if cfg.MaxRows != nil && unset(cliflags.MaxRows.Name) {
		if *cfg.MaxRows < 0 {
			return errors.Newf("%s: %s must be non-negative, found %d",
				path, cliflags.MaxRows.ConfigKey, *cfg.MaxRows)
		}
		cliCtx.maxRows = *cfg.MaxRows
	}
	if cfg.Schema != nil && unset(cliflags.Schema.Name) {
		cliCtx.schemaFiles = cfg.Schema
	}
	if cfg.Explain != nil && unset(cliflags.ExplainOptions.Name) {
		cliCtx.explainOptions = cfg.Explain
	}
	if l := cfg.Logging; l != nil {
		if l.Verbosity != nil && unset("verbosity") {
			cliCtx.logCfg.Verbosity = *l.Verbosity
		}
		if l.LogLevel != nil && unset("log-level") {
			if err := cliCtx.logCfg.Threshold.Set(*l.LogLevel); err != nil {
				return errors.Wrapf(err, "%s: logging.log-level", path)
			}
		}
		if l.Redactable != nil && unset("redactable-logs") {
			cliCtx.logCfg.Redactable = *l.Redactable
		}
		if l.NoColor != nil && unset("no-color") {
			cliCtx.logCfg.NoColor = *l.NoColor
		}
	}
	return nil
}
