// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"ntd-scan/internal/formatters"
	"ntd-scan/internal/summary"

	"github.com/fatih/color"
)

const (
	labelWidth = 60
	valueWidth = 10
)

// Formatter implements the fixed-width statistics report
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"yellow": color.New(color.FgYellow),
			"green":  color.New(color.FgGreen),
			"cyan":   color.New(color.FgCyan),
			"white":  color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Fixed-width column statistics for reading in a terminal"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(reports []*summary.Report, options formatters.FormatterOptions) (string, error) {
	sections := make([]string, 0, len(reports))
	for _, report := range reports {
		sections = append(sections, f.formatReport(report, options))
	}
	return strings.Join(sections, "\n\n"), nil
}

// formatReport renders one report. Without color the layout is:
//
//	--- Basic Column Statistics ---
//	doc_path - <source>
//	Total rows: <n>
//
//	<column padded to 60> : <"n flagged" right-aligned to 10>
//	...
//
//	Total flagged / Rows with comments / Rows with no comments
func (f *Formatter) formatReport(report *summary.Report, options formatters.FormatterOptions) string {
	var builder strings.Builder

	builder.WriteString(f.paint("white", "--- Basic Column Statistics ---", options))
	builder.WriteString("\n")
	fmt.Fprintf(&builder, "doc_path - %s\n", report.Source)
	fmt.Fprintf(&builder, "Total rows: %d\n\n", report.TotalRows)

	for _, col := range report.Columns {
		value := fmt.Sprintf("%*s", valueWidth, fmt.Sprintf("%d flagged", col.Flagged))
		if col.Flagged > 0 {
			value = f.paint("yellow", value, options)
		}
		fmt.Fprintf(&builder, "%-*s : %s\n", labelWidth, col.Column, value)
	}

	builder.WriteString("\n")
	f.appendTotal(&builder, "Total flagged", report.TotalFlagged, "cyan", options)
	builder.WriteString("\n")
	f.appendTotal(&builder, "Rows with comments", report.WithComments, "green", options)
	builder.WriteString("\n")
	f.appendTotal(&builder, "Rows with no comments", report.WithoutComments, "", options)

	return builder.String()
}

func (f *Formatter) appendTotal(builder *strings.Builder, label string, value int, colorName string, options formatters.FormatterOptions) {
	rendered := fmt.Sprintf("%*d", valueWidth, value)
	if colorName != "" {
		rendered = f.paint(colorName, rendered, options)
	}
	fmt.Fprintf(builder, "%-*s : %s", labelWidth, label, rendered)
}

func (f *Formatter) paint(name, s string, options formatters.FormatterOptions) string {
	if options.NoColor {
		return s
	}
	return f.colors[name].Sprint(s)
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
