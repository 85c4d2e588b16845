// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package record

// Base column names of the requirement table export
const (
	ColumnID            = "ID"
	ColumnContent       = "Содержание"
	ColumnEffectiveDate = "Дата ввода требования в действие"
	ColumnRegistry      = "Реестр НТД"
	ColumnSafety        = "Требование безопасности"
	ColumnExternalID    = "ЮИН"

	// ColumnComment holds the accumulated comment trail
	ColumnComment = "Комментарии"
)

// Row represents one requirement record
type Row struct {
	// Position of the row in the source file, zero based
	Index int

	ID            string
	Content       *string // nil when the source cell was empty
	EffectiveDate string
	Registry      string
	Safety        string
	ExternalID    string

	// Flags maps flag column name to 0 or 1
	Flags map[string]int

	// Comment is the comment trail built during annotation
	Comment string
}

// NewRow creates a row with every schema flag zeroed and an empty comment
func NewRow(schema *Schema) Row {
	flags := make(map[string]int, len(schema.FlagColumns))
	for _, col := range schema.FlagColumns {
		flags[col] = 0
	}
	return Row{Flags: flags}
}

// HasFlag reports whether name is one of the row's flag columns
func (r *Row) HasFlag(name string) bool {
	_, ok := r.Flags[name]
	return ok
}

// Base returns the value of a base column by name
func (r *Row) Base(column string) (string, bool) {
	switch column {
	case ColumnID:
		return r.ID, true
	case ColumnContent:
		if r.Content == nil {
			return "", true
		}
		return *r.Content, true
	case ColumnEffectiveDate:
		return r.EffectiveDate, true
	case ColumnRegistry:
		return r.Registry, true
	case ColumnSafety:
		return r.Safety, true
	case ColumnExternalID:
		return r.ExternalID, true
	}
	return "", false
}

// SetBase assigns a base column by name. Unknown columns are ignored.
func (r *Row) SetBase(column, value string) {
	switch column {
	case ColumnID:
		r.ID = value
	case ColumnContent:
		if value == "" {
			r.Content = nil
			return
		}
		v := value
		r.Content = &v
	case ColumnEffectiveDate:
		r.EffectiveDate = value
	case ColumnRegistry:
		r.Registry = value
	case ColumnSafety:
		r.Safety = value
	case ColumnExternalID:
		r.ExternalID = value
	}
}

// Clone returns a copy of the row that shares nothing mutable with the original
func (r Row) Clone() Row {
	flags := make(map[string]int, len(r.Flags))
	for k, v := range r.Flags {
		flags[k] = v
	}
	r.Flags = flags
	return r
}
