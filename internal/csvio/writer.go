// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"ntd-scan/internal/record"
)

// Write encodes annotated rows as UTF-8: base columns, flag columns, then the comment
func Write(w io.Writer, rows []record.Row, schema *record.Schema, opts Options) error {
	cw := csv.NewWriter(w)
	cw.Comma = opts.delimiter()

	if err := cw.Write(schema.OutputColumns()); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	fields := make([]string, 0, len(schema.BaseColumns)+len(schema.FlagColumns)+1)
	for _, row := range rows {
		fields = fields[:0]
		for _, col := range schema.BaseColumns {
			v, _ := row.Base(col)
			fields = append(fields, v)
		}
		for _, col := range schema.FlagColumns {
			fields = append(fields, strconv.Itoa(row.Flags[col]))
		}
		fields = append(fields, row.Comment)

		if err := cw.Write(fields); err != nil {
			return fmt.Errorf("error writing row %s: %w", row.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes rows to path through a temporary file in the same directory,
// so a failed run never leaves a partial table behind
func WriteFile(path string, rows []record.Row, schema *record.Schema, opts Options) (err error) {
	cleanPath := filepath.Clean(path)
	dir := filepath.Dir(cleanPath)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(cleanPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating output: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = Write(tmp, rows, schema, opts); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("error flushing output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("error closing output: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("error setting output permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), cleanPath); err != nil {
		return fmt.Errorf("error replacing output: %w", err)
	}
	return nil
}
