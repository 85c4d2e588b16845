// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"fmt"
	"strings"

	"ntd-scan/internal/formatters"
	"ntd-scan/internal/summary"
)

// Formatter renders report statistics as comma-separated values
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated statistics for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(reports []*summary.Report, options formatters.FormatterOptions) (string, error) {
	rows := []string{"Source,Metric,Value"}

	for _, report := range reports {
		source := f.escapeCSVField(report.Source)
		for _, col := range report.Columns {
			rows = append(rows, strings.Join([]string{source, f.escapeCSVField(col.Column), fmt.Sprintf("%d", col.Flagged)}, ","))
		}
		rows = append(rows,
			fmt.Sprintf("%s,Total rows,%d", source, report.TotalRows),
			fmt.Sprintf("%s,Total flagged,%d", source, report.TotalFlagged),
			fmt.Sprintf("%s,Rows with comments,%d", source, report.WithComments),
			fmt.Sprintf("%s,Rows with no comments,%d", source, report.WithoutComments),
		)
	}

	return strings.Join(rows, "\n"), nil
}

// escapeCSVField properly escapes a field for CSV format and prevents CSV injection
func (f *Formatter) escapeCSVField(field string) string {
	field = f.sanitizeFormulaInjection(field)

	// If field contains comma, quote, or newline, wrap in quotes and escape internal quotes
	if strings.ContainsAny(field, ",\"\n\r") {
		escaped := strings.ReplaceAll(field, "\"", "\"\"")
		return fmt.Sprintf("\"%s\"", escaped)
	}
	return field
}

// sanitizeFormulaInjection prefixes fields that a spreadsheet would evaluate as a formula
func (f *Formatter) sanitizeFormulaInjection(field string) string {
	if len(field) == 0 {
		return field
	}

	switch field[0] {
	case '=', '+', '-', '@':
		return "'" + field
	}
	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
