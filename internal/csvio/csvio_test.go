// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csvio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ntd-scan/internal/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const header = "ID;Содержание;Дата ввода требования в действие;Реестр НТД;Требование безопасности;ЮИН"

func TestRead(t *testing.T) {
	input := header + ";Лишний\n" +
		"1;\"<p>Текст;\n\"\"в кавычках\"\"</p>\";01.01.2024;СП 20;Да;U-1;x\n" +
		"2;;02.02.2024;СП 21;Нет;U-2;y\n"

	rows, err := Read(strings.NewReader(input), record.DefaultSchema(), Options{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, "1", first.ID)
	require.NotNil(t, first.Content)
	assert.Equal(t, "<p>Текст;\n\"в кавычках\"</p>", *first.Content)
	assert.Equal(t, "01.01.2024", first.EffectiveDate)
	assert.Equal(t, "СП 20", first.Registry)
	assert.Equal(t, "Да", first.Safety)
	assert.Equal(t, "U-1", first.ExternalID)
	assert.Len(t, first.Flags, len(record.DefaultFlagColumns()))
	assert.Empty(t, first.Comment)

	assert.Nil(t, rows[1].Content, "empty content cell is null")
	assert.Equal(t, 1, rows[1].Index)
}

func TestRead_ColumnOrderIndependent(t *testing.T) {
	input := "ЮИН;Требование безопасности;Реестр НТД;Дата ввода требования в действие;Содержание;ID\n" +
		"U-9;Нет;Р;2020;текст;9\n"

	rows, err := Read(strings.NewReader(input), record.DefaultSchema(), Options{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "9", rows[0].ID)
	assert.Equal(t, "U-9", rows[0].ExternalID)
	assert.Equal(t, "текст", *rows[0].Content)
}

func TestRead_MissingColumns(t *testing.T) {
	input := "ID;Содержание;ЮИН\n1;x;y\n"

	_, err := Read(strings.NewReader(input), record.DefaultSchema(), Options{})
	var missing *record.MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{
		"Дата ввода требования в действие",
		"Реестр НТД",
		"Требование безопасности",
	}, missing.Columns)
	assert.Contains(t, err.Error(), "Реестр НТД")
}

func TestRead_EmptyInput(t *testing.T) {
	_, err := Read(strings.NewReader(""), record.DefaultSchema(), Options{})
	var missing *record.MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Len(t, missing.Columns, 6)
}

func TestRead_BOMAndBlankLines(t *testing.T) {
	input := "\xef\xbb\xbf" + header + "\n\n1;a;b;c;d;e\n;;;;;\n\n2;b;;;;\n"

	rows, err := Read(strings.NewReader(input), record.DefaultSchema(), Options{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "1", rows[0].ID)

	// A record of empty fields is a row, not a blank line
	assert.Equal(t, "", rows[1].ID)
	assert.Nil(t, rows[1].Content)
	assert.Equal(t, 1, rows[1].Index)

	assert.Equal(t, "2", rows[2].ID)
	assert.Equal(t, 2, rows[2].Index)
}

func TestRead_Windows1251(t *testing.T) {
	utf := header + "\n1;Таблица 1;d;r;s;e\n"
	encoded, err := charmap.Windows1251.NewEncoder().String(utf)
	require.NoError(t, err)

	rows, err := Read(strings.NewReader(encoded), record.DefaultSchema(), Options{Encoding: "windows-1251"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Таблица 1", *rows[0].Content)
}

func TestRead_CustomDelimiter(t *testing.T) {
	input := strings.ReplaceAll(header, ";", ",") + "\n1,a,b,c,d,e\n"
	rows, err := Read(strings.NewReader(input), record.DefaultSchema(), Options{Delimiter: ','})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "e", rows[0].ExternalID)
}

func TestLookupEncoding(t *testing.T) {
	for _, name := range []string{"", "utf-8", "UTF8", "windows-1251", "cp1251"} {
		_, err := LookupEncoding(name)
		assert.NoError(t, err, name)
	}
	_, err := LookupEncoding("koi8-r")
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	schema := &record.Schema{
		BaseColumns:   record.DefaultBaseColumns(),
		FlagColumns:   []string{"Наличие формул", "Наличие таблиц"},
		CommentColumn: record.ColumnComment,
	}
	row := record.NewRow(schema)
	row.ID = "7"
	row.SetBase(record.ColumnContent, "x = 5")
	row.ExternalID = "U-7"
	row.Flags["Наличие формул"] = 1
	row.Comment = "Наличие формул ['= 5']\n"

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []record.Row{row}, schema, Options{}))

	want := header + ";Наличие формул;Наличие таблиц;Комментарии\n" +
		"7;x = 5;;;;U-7;1;0;\"Наличие формул ['= 5']\n\"\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	schema := record.DefaultSchema()

	row := record.NewRow(schema)
	row.ID = "1"
	row.SetBase(record.ColumnContent, "текст")
	row.Comment = "Наличие таблиц\nНаличие таблиц\n"

	require.NoError(t, WriteFile(path, []record.Row{row}, schema, Options{}))

	rows, err := ReadFile(path, schema, Options{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "текст", *rows[0].Content)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must be renamed away")
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "absent", "out.csv"), nil, record.DefaultSchema(), Options{})
	assert.Error(t, err)
}
