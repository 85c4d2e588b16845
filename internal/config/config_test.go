// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ntd-scan/internal/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Defaults.Format)
	assert.Equal(t, "utf-8", cfg.Defaults.Encoding)
	assert.Equal(t, ';', cfg.Defaults.DelimiterRune())
	assert.Equal(t, 0, cfg.Defaults.Workers)
	assert.False(t, cfg.Defaults.StrictSchema)
	assert.Equal(t, *record.DefaultSchema(), cfg.Schema)
}

func TestLoadConfig_ProfilesInitialized(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	strict := cfg.GetProfile(StrictProfile)
	require.NotNil(t, strict)
	assert.True(t, strict.StrictSchema)
	assert.Nil(t, cfg.GetProfile("missing"))
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
defaults:
  catalog: rules/catalog.json
  format: json
  encoding: windows-1251
  workers: 4
  match_timeout: 2s
schema:
  flag_columns:
    - Наличие формул
    - Наличие таблиц
profiles:
  ci:
    description: CI run
    format: yaml
    no_color: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "rules/catalog.json", cfg.Defaults.Catalog)
	assert.Equal(t, "json", cfg.Defaults.Format)
	assert.Equal(t, "windows-1251", cfg.Defaults.Encoding)
	assert.Equal(t, 4, cfg.Defaults.Workers)
	assert.Equal(t, 2*time.Second, cfg.Defaults.MatchTimeout)
	// Unset fields keep their built-in values
	assert.Equal(t, ';', cfg.Defaults.DelimiterRune())
	assert.Equal(t, record.DefaultBaseColumns(), cfg.Schema.BaseColumns)
	assert.Equal(t, record.ColumnComment, cfg.Schema.CommentColumn)
	assert.Equal(t, []string{"Наличие формул", "Наличие таблиц"}, cfg.Schema.FlagColumns)

	assert.Equal(t, []string{"ci", StrictProfile}, cfg.ListProfiles())
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", ":::invalid yaml:::", "error parsing config file"},
		{"bad encoding", "defaults:\n  encoding: koi8-r\n", "unsupported encoding"},
		{"long delimiter", "defaults:\n  delimiter: ';;'\n", "single character"},
		{"quote delimiter", "defaults:\n  delimiter: '\"'\n", "not allowed"},
		{"negative workers", "defaults:\n  workers: -1\n", "must not be negative"},
		{"bad profile", "profiles:\n  x:\n    encoding: latin1\n", "invalid profile 'x'"},
		{"flag equals base", "schema:\n  flag_columns: [ID]\n", "ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfig_SchemaError(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "schema:\n  comment_column: ''\n"))
	var schemaErr *record.SchemaError
	assert.True(t, errors.As(err, &schemaErr), "got %v", err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfigOrDefault(t *testing.T) {
	cfg, err := LoadConfigOrDefault("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "text", cfg.Defaults.Format)

	cfg, err = LoadConfigOrDefault(writeConfig(t, "defaults:\n  format: yaml\n"))
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Defaults.Format)
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("NTD_SCAN_CONFIG_DIR", filepath.Join(dir, "none"))
	t.Setenv("HOME", dir)

	assert.Equal(t, "", FindConfigFile())

	require.NoError(t, os.WriteFile(".ntd-scan.yaml", []byte("{}"), 0600))
	assert.Equal(t, ".ntd-scan.yaml", FindConfigFile())

	require.NoError(t, os.WriteFile("ntd-scan.yaml", []byte("{}"), 0600))
	assert.Equal(t, "ntd-scan.yaml", FindConfigFile())
}

func TestFindConfigFile_ConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(t.TempDir())
	t.Setenv("NTD_SCAN_CONFIG_DIR", dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0600))
	assert.Equal(t, path, FindConfigFile())
}

func TestResolve(t *testing.T) {
	cfg := Default()
	cfg.Defaults.Workers = 2
	cfg.Profiles["fast"] = Profile{Settings: Settings{Workers: 8, Format: "json"}}

	s, err := cfg.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, cfg.Defaults, s)

	s, err = cfg.Resolve("fast")
	require.NoError(t, err)
	assert.Equal(t, 8, s.Workers)
	assert.Equal(t, "json", s.Format)
	assert.Equal(t, "utf-8", s.Encoding)

	s, err = cfg.Resolve(StrictProfile)
	require.NoError(t, err)
	assert.True(t, s.StrictSchema)
	assert.Equal(t, 2, s.Workers)

	_, err = cfg.Resolve("nope")
	assert.ErrorContains(t, err, "profile 'nope' not found")
}

func TestSettings_CSVOptions(t *testing.T) {
	s := Settings{Delimiter: ",", Encoding: "cp1251"}
	opts := s.CSVOptions()
	assert.Equal(t, ',', opts.Delimiter)
	assert.Equal(t, "cp1251", opts.Encoding)
}
