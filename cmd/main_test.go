// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ntd-scan/internal/version"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "ID;Содержание;Дата ввода требования в действие;Реестр НТД;Требование безопасности;ЮИН\n"

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("NTD_SCAN_CONFIG_DIR", t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func fixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestAnnotate_PrintsReport(t *testing.T) {
	dir := t.TempDir()
	input := fixture(t, dir, "in.csv", header+"1;x = 5;;;;\n2;текст;;;;\n")
	catalog := fixture(t, dir, "patterns.json", `{"Наличие формул": ["=\\s*\\d"]}`)
	output := filepath.Join(dir, "out.csv")

	stdout, _, err := execute(t, "annotate", "-i", input, "-o", output, "--catalog", catalog)
	require.NoError(t, err)

	lines := strings.Split(stdout, "\n")
	assert.Equal(t, "--- Basic Column Statistics ---", lines[0])
	assert.Equal(t, "doc_path - "+input, lines[1])
	assert.Equal(t, "Total rows: 2", lines[2])
	assert.Contains(t, stdout, "Наличие формул"+strings.Repeat(" ", 60-len([]rune("Наличие формул")))+" :  1 flagged\n")
	assert.Contains(t, stdout, "Rows with no comments"+strings.Repeat(" ", 39)+" : "+"         1")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Наличие формул ['= 5']")
}

func TestAnnotate_JSONFormat(t *testing.T) {
	dir := t.TempDir()
	input := fixture(t, dir, "in.csv", header+"1;x = 5;;;;\n")
	catalog := fixture(t, dir, "patterns.json", `{"Наличие формул": ["=\\s*\\d"]}`)

	stdout, _, err := execute(t, "annotate", "-i", input, "-o", filepath.Join(dir, "out.csv"),
		"--catalog", catalog, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"total_rows": 1`)
}

func TestAnnotate_UnknownFormatFailsBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	input := fixture(t, dir, "in.csv", header+"1;x = 5;;;;\n")
	catalog := fixture(t, dir, "patterns.json", `{"Наличие формул": ["=\\s*\\d"]}`)
	output := filepath.Join(dir, "out.csv")

	_, _, err := execute(t, "annotate", "-i", input, "-o", output, "--catalog", catalog, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format 'xml'")
	assert.Contains(t, err.Error(), "json, text")
	assert.NoFileExists(t, output)
}

func TestAnnotate_MissingColumnsMessage(t *testing.T) {
	dir := t.TempDir()
	input := fixture(t, dir, "in.csv", "ID;Содержание\n1;x\n")
	catalog := fixture(t, dir, "patterns.json", `{}`)

	_, _, err := execute(t, "annotate", "-i", input, "-o", filepath.Join(dir, "out.csv"), "--catalog", catalog)
	require.Error(t, err)
	assert.Equal(t, "missing required columns: Дата ввода требования в действие, Реестр НТД, Требование безопасности, ЮИН", err.Error())
}

func TestAnnotate_RequiresPaths(t *testing.T) {
	_, _, err := execute(t, "annotate")
	assert.ErrorContains(t, err, "required flag(s)")
}

func TestAnnotate_UnknownProfile(t *testing.T) {
	_, _, err := execute(t, "annotate", "-i", "a", "-o", "b", "--profile", "nope")
	assert.ErrorContains(t, err, "profile 'nope' not found")
}

func TestAnnotate_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	input := fixture(t, dir, "in.csv", "ID,Содержание,Дата ввода требования в действие,Реестр НТД,Требование безопасности,ЮИН\n1,x = 5,,,,\n")
	catalog := fixture(t, dir, "patterns.json", `{"Наличие формул": ["=\\s*\\d"]}`)
	cfg := fixture(t, dir, "ntd.yaml", "defaults:\n  delimiter: ','\n  format: yaml\n  catalog: "+catalog+"\n")

	stdout, _, err := execute(t, "annotate", "-i", input, "-o", filepath.Join(dir, "out.csv"), "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "total_rows: 1")
}

func TestAnnotate_MetricsFile(t *testing.T) {
	dir := t.TempDir()
	input := fixture(t, dir, "in.csv", header+"1;x = 5;;;;\n")
	catalog := fixture(t, dir, "patterns.json", `{"Наличие формул": ["=\\s*\\d"]}`)
	metricsPath := filepath.Join(dir, "ntd.prom")

	_, _, err := execute(t, "annotate", "-i", input, "-o", filepath.Join(dir, "out.csv"),
		"--catalog", catalog, "--metrics-file", metricsPath)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ntd_scan_rows_annotated_total 1")
}

func TestBatch_PrintsReportPerFile(t *testing.T) {
	dir := t.TempDir()
	fixture(t, dir, "in/a.csv", header+"1;x = 5;;;;\n")
	fixture(t, dir, "in/b/c.csv", header+"1;текст;;;;\n")
	catalog := fixture(t, dir, "patterns.json", `{"Наличие формул": ["=\\s*\\d"]}`)

	stdout, _, err := execute(t, "batch", "--glob", filepath.Join(dir, "in", "**", "*.csv"),
		"--out-dir", filepath.Join(dir, "out"), "--catalog", catalog)
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(stdout, "--- Basic Column Statistics ---"))
	assert.FileExists(t, filepath.Join(dir, "out", "b", "c.csv"))
}

func TestCatalogValidate(t *testing.T) {
	dir := t.TempDir()
	good := fixture(t, dir, "good.json", `{"Наличие таблиц": ["таблиц[аеуы]"]}`)
	bad := fixture(t, dir, "bad.json", `{"Наличие таблиц": ["таблиц[а"]}`)

	stdout, _, err := execute(t, "catalog", "validate", good)
	require.NoError(t, err)
	assert.Equal(t, good+": 1 categories, 1 patterns OK\n", stdout)

	_, _, err = execute(t, "catalog", "validate", bad)
	assert.ErrorContains(t, err, "таблиц[а")

	_, _, err = execute(t, "catalog", "validate", good, "--strict-schema")
	assert.ErrorContains(t, err, "flag column has no catalog category")
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version.Get().Version+"\n", stdout)

	stdout, _, err = execute(t, "version", "--full")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "ntd-scan "+version.Get().Version+"\n"), stdout)
	assert.Contains(t, stdout, "platform: ")
}
