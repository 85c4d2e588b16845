// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"fmt"
	"strings"
)

// Schema describes the columns of the input and output tables
type Schema struct {
	BaseColumns   []string `yaml:"base_columns" json:"base_columns"`
	FlagColumns   []string `yaml:"flag_columns" json:"flag_columns"`
	CommentColumn string   `yaml:"comment_column" json:"comment_column"`
}

// DefaultBaseColumns are the identifying columns every input must contain
func DefaultBaseColumns() []string {
	return []string{
		ColumnID,
		ColumnContent,
		ColumnEffectiveDate,
		ColumnRegistry,
		ColumnSafety,
		ColumnExternalID,
	}
}

// DefaultFlagColumns are the recognized categories that carry a 0/1 flag
func DefaultFlagColumns() []string {
	return []string{
		"Обрабатывается в ЦИМ",
		"Подлежит переводу в МПФ",
		"Передано подрядчику",
		"Наличие ссылок на другие НД, в которых содержатся требования",
		"Наличие ссылок на Задание на проектирование",
		"Наличие ссылок на другие пункы этого СП",
		"Наличие формул",
		"Упоминание расчетов",
		"Наличие таблиц",
		"Наличие рисунков/диаграмм",
		"Требование носит рекомендательный характер",
	}
}

// DefaultSchema returns the schema of the standard requirement export
func DefaultSchema() *Schema {
	return &Schema{
		BaseColumns:   DefaultBaseColumns(),
		FlagColumns:   DefaultFlagColumns(),
		CommentColumn: ColumnComment,
	}
}

// OutputColumns returns the header of the annotated table
func (s *Schema) OutputColumns() []string {
	cols := make([]string, 0, len(s.BaseColumns)+len(s.FlagColumns)+1)
	cols = append(cols, s.BaseColumns...)
	cols = append(cols, s.FlagColumns...)
	return append(cols, s.CommentColumn)
}

// IsFlagColumn reports whether name is a declared flag column
func (s *Schema) IsFlagColumn(name string) bool {
	for _, col := range s.FlagColumns {
		if col == name {
			return true
		}
	}
	return false
}

// Validate checks that the schema is usable for reading and writing tables
func (s *Schema) Validate() error {
	if s == nil {
		return &SchemaError{Message: "schema cannot be nil"}
	}
	if len(s.BaseColumns) == 0 {
		return &SchemaError{Message: "schema has no base columns"}
	}
	if strings.TrimSpace(s.CommentColumn) == "" {
		return &SchemaError{Message: "schema has no comment column"}
	}

	// Every base column must be one the row model knows how to carry
	var probe Row
	seen := make(map[string]string)
	for _, col := range s.BaseColumns {
		if _, ok := probe.Base(col); !ok {
			return &SchemaError{Column: col, Message: "unknown base column"}
		}
		if _, dup := seen[col]; dup {
			return &SchemaError{Column: col, Message: "duplicate column"}
		}
		seen[col] = "base"
	}
	for _, col := range s.FlagColumns {
		if strings.TrimSpace(col) == "" {
			return &SchemaError{Message: "blank flag column"}
		}
		if kind, dup := seen[col]; dup {
			return &SchemaError{Column: col, Message: fmt.Sprintf("flag column duplicates a %s column", kind)}
		}
		seen[col] = "flag"
	}
	if kind, dup := seen[s.CommentColumn]; dup {
		return &SchemaError{Column: s.CommentColumn, Message: fmt.Sprintf("comment column duplicates a %s column", kind)}
	}

	return nil
}

// Divergence lists catalog categories that have no flag column and flag columns
// that no catalog category feeds
func (s *Schema) Divergence(categories []string) (unflagged []string, unfed []string) {
	inCatalog := make(map[string]bool, len(categories))
	for _, c := range categories {
		inCatalog[c] = true
		if !s.IsFlagColumn(c) {
			unflagged = append(unflagged, c)
		}
	}
	for _, col := range s.FlagColumns {
		if !inCatalog[col] {
			unfed = append(unfed, col)
		}
	}
	return unflagged, unfed
}
