// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// tableDisplayFormat identifies how rows are printed.
type tableDisplayFormat int

const (
	tableDisplayTable tableDisplayFormat = iota
	tableDisplayTSV
	tableDisplayCSV
	tableDisplayRecords
)

var tableDisplayFormats = []string{"table", "tsv", "csv", "records"}

// String implements the pflag.Value interface.
func (f *tableDisplayFormat) String() string {
	return tableDisplayFormats[*f]
}

// Set implements the pflag.Value interface.
func (f *tableDisplayFormat) Set(s string) error {
	for i, name := range tableDisplayFormats {
		if strings.EqualFold(s, name) {
			*f = tableDisplayFormat(i)
			return nil
		}
	}
	return errors.WithHintf(errors.Newf("invalid table display format: %q", s),
		"possible values: %s", strings.Join(tableDisplayFormats, ", "))
}

// Type implements the pflag.Value interface.
func (f *tableDisplayFormat) Type() string {
	return "string"
}

// printQueryOutput writes the rows under the given column names to w in the
// requested format. If truncated is set, a note says that more rows were
// produced than printed.
func printQueryOutput(
	w io.Writer, cols []string, rows [][]string, truncated bool, displayFormat tableDisplayFormat,
) error {
	switch displayFormat {
	case tableDisplayTable:
		// Initialize tablewriter and set column names as the header row.
		table := tablewriter.NewWriter(w)
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetHeader(cols)
		for _, row := range rows {
			for i, r := range row {
				row[i] = expandTabsAndNewLines(r)
			}
			table.Append(row)
		}
		table.Render()
		fmt.Fprintf(w, "(%s row%s%s)\n",
			humanize.Comma(int64(len(rows))), plural(len(rows)), truncatedNote(truncated))

	case tableDisplayTSV, tableDisplayCSV:
		fmt.Fprintf(w, "%d row%s%s\n", len(rows), plural(len(rows)), truncatedNote(truncated))
		csvWriter := csv.NewWriter(w)
		if displayFormat == tableDisplayTSV {
			csvWriter.Comma = '\t'
		}
		if err := csvWriter.Write(cols); err != nil {
			return err
		}
		if err := csvWriter.WriteAll(rows); err != nil {
			return err
		}

	case tableDisplayRecords:
		maxColWidth := 0
		for _, col := range cols {
			if colLen := utf8.RuneCountInString(col); colLen > maxColWidth {
				maxColWidth = colLen
			}
		}
		for i, row := range rows {
			fmt.Fprintf(w, "-[ RECORD %d ]\n", i+1)
			for j, r := range row {
				fmt.Fprintf(w, "%-*s | %s\n", maxColWidth, cols[j], r)
			}
		}
		if len(rows) == 0 {
			fmt.Fprintf(w, "(no rows)\n")
		} else if truncated {
			fmt.Fprintf(w, "(more rows not shown)\n")
		}

	default:
		return errors.AssertionFailedf("unknown display format %d", displayFormat)
	}
	return nil
}

func truncatedNote(truncated bool) string {
	if truncated {
		return ", more not shown"
	}
	return ""
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// expandTabsAndNewLines ensures that multi-line values are printed using
// escaped control characters.
func expandTabsAndNewLines(s string) string {
	return strings.NewReplacer("\t", `\t`, "\n", `\n`).Replace(s)
}
