// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"fmt"
	"strings"
)

// MissingColumnError is returned when required input columns are absent
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// SchemaError describes an invalid column schema or a catalog that does not fit it
type SchemaError struct {
	Column  string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Column == "" {
		return "schema error: " + e.Message
	}
	return fmt.Sprintf("schema error: %s: %q", e.Message, e.Column)
}
