// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package summary

import (
	"strings"

	"ntd-scan/internal/record"
)

// ColumnCount is the number of rows flagged in one column
type ColumnCount struct {
	Column  string `json:"column" yaml:"column"`
	Flagged int    `json:"flagged" yaml:"flagged"`
}

// Report aggregates the flags and comments of an annotated table
type Report struct {
	Source          string        `json:"source" yaml:"source"`
	TotalRows       int           `json:"total_rows" yaml:"total_rows"`
	Columns         []ColumnCount `json:"columns" yaml:"columns"`
	TotalFlagged    int           `json:"total_flagged" yaml:"total_flagged"`
	WithComments    int           `json:"rows_with_comments" yaml:"rows_with_comments"`
	WithoutComments int           `json:"rows_without_comments" yaml:"rows_without_comments"`
}

// Summarize counts flagged rows per flag column of the schema and rows with and
// without a comment. source names the input in the report header.
func Summarize(rows []record.Row, schema *record.Schema, source string) *Report {
	report := &Report{
		Source:    source,
		TotalRows: len(rows),
		Columns:   make([]ColumnCount, 0, len(schema.FlagColumns)),
	}

	for _, col := range schema.FlagColumns {
		flagged := 0
		for i := range rows {
			flagged += rows[i].Flags[col]
		}
		report.Columns = append(report.Columns, ColumnCount{Column: col, Flagged: flagged})
		report.TotalFlagged += flagged
	}

	for i := range rows {
		if strings.TrimSpace(rows[i].Comment) == "" {
			report.WithoutComments++
		} else {
			report.WithComments++
		}
	}

	return report
}
