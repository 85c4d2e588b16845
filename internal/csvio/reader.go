// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package csvio reads requirement tables and writes annotated ones.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ntd-scan/internal/record"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultDelimiter separates fields of the requirement export
const DefaultDelimiter = ';'

// Options controls how tables are decoded
type Options struct {
	Delimiter rune
	// Encoding of the input: "utf-8" (default) or "windows-1251"
	Encoding string
}

func (o Options) delimiter() rune {
	if o.Delimiter == 0 {
		return DefaultDelimiter
	}
	return o.Delimiter
}

// LookupEncoding resolves an encoding name accepted in configuration
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "windows-1251", "cp1251":
		return charmap.Windows1251, nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", name)
}

// ReadFile reads a requirement table from path
func ReadFile(path string, schema *record.Schema, opts Options) ([]record.Row, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("error opening input: %w", err)
	}
	defer f.Close()

	return Read(f, schema, opts)
}

// Read decodes a requirement table. The header must contain every base column of
// the schema; other columns are ignored. Empty lines are skipped, but a record of
// empty fields is kept as a row with null content. Rows come back with flags zeroed and an
// empty comment.
func Read(r io.Reader, schema *record.Schema, opts Options) ([]record.Row, error) {
	enc, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	// A byte order mark wins over the configured encoding
	decoded := transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.Comma = opts.delimiter()
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &record.MissingColumnError{Columns: append([]string(nil), schema.BaseColumns...)}
	}
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	index, err := columnIndex(header, schema.BaseColumns)
	if err != nil {
		return nil, err
	}

	var rows []record.Row
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading row %d: %w", len(rows)+1, err)
		}
		row := record.NewRow(schema)
		row.Index = len(rows)
		for _, col := range schema.BaseColumns {
			if i := index[col]; i < len(fields) {
				row.SetBase(col, fields[i])
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// columnIndex maps each required column to its position in header, reporting
// every missing column at once
func columnIndex(header []string, required []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	index := make(map[string]int, len(required))
	var missing []string
	for _, col := range required {
		i, ok := positions[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		index[col] = i
	}
	if len(missing) > 0 {
		return nil, &record.MissingColumnError{Columns: missing}
	}
	return index, nil
}
