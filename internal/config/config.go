// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
	"unicode/utf8"

	"ntd-scan/internal/csvio"
	"ntd-scan/internal/paths"
	"ntd-scan/internal/record"

	"gopkg.in/yaml.v3"
)

// StrictProfile is the built-in profile that rejects catalog/schema divergence
const StrictProfile = "strict"

// Settings are the run options shared by the defaults section and profiles
type Settings struct {
	Catalog      string        `yaml:"catalog"`
	Delimiter    string        `yaml:"delimiter"`
	Encoding     string        `yaml:"encoding"`
	Format       string        `yaml:"format"`
	Workers      int           `yaml:"workers"`
	NoColor      bool          `yaml:"no_color"`
	Debug        bool          `yaml:"debug"`
	StrictSchema bool          `yaml:"strict_schema"`
	MetricsFile  string        `yaml:"metrics_file"`
	MatchTimeout time.Duration `yaml:"match_timeout"`
}

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults Settings `yaml:"defaults"`

	// Columns of the input and output tables
	Schema record.Schema `yaml:"schema"`

	// Profiles for different annotation scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile represents a named override of the default settings. Zero values
// leave the defaults untouched.
type Profile struct {
	Description string `yaml:"description"`
	Settings    `yaml:",inline"`
}

// DelimiterRune returns the configured field separator
func (s Settings) DelimiterRune() rune {
	if s.Delimiter == "" {
		return csvio.DefaultDelimiter
	}
	r, _ := utf8.DecodeRuneInString(s.Delimiter)
	return r
}

// CSVOptions returns the table codec options for these settings
func (s Settings) CSVOptions() csvio.Options {
	return csvio.Options{
		Delimiter: s.DelimiterRune(),
		Encoding:  s.Encoding,
	}
}

// Overlay applies the non-zero fields of p on top of s
func (s Settings) Overlay(p Settings) Settings {
	if p.Catalog != "" {
		s.Catalog = p.Catalog
	}
	if p.Delimiter != "" {
		s.Delimiter = p.Delimiter
	}
	if p.Encoding != "" {
		s.Encoding = p.Encoding
	}
	if p.Format != "" {
		s.Format = p.Format
	}
	if p.Workers != 0 {
		s.Workers = p.Workers
	}
	if p.MetricsFile != "" {
		s.MetricsFile = p.MetricsFile
	}
	if p.MatchTimeout != 0 {
		s.MatchTimeout = p.MatchTimeout
	}
	s.NoColor = s.NoColor || p.NoColor
	s.Debug = s.Debug || p.Debug
	s.StrictSchema = s.StrictSchema || p.StrictSchema
	return s
}

// Default returns the built-in configuration
func Default() *Config {
	config := &Config{
		Schema:   *record.DefaultSchema(),
		Profiles: make(map[string]Profile),
	}

	config.Defaults.Catalog = "patterns.json"
	config.Defaults.Delimiter = string(csvio.DefaultDelimiter)
	config.Defaults.Encoding = "utf-8"
	config.Defaults.Format = "text"

	config.Profiles[StrictProfile] = Profile{
		Description: "Fails when catalog categories and schema flag columns diverge",
		Settings:    Settings{StrictSchema: true},
	}
	return config
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	builtin := config.Profiles
	config.Profiles = nil
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Built-in profiles stay available unless the file redefines them
	if config.Profiles == nil {
		config.Profiles = make(map[string]Profile)
	}
	for name, profile := range builtin {
		if _, ok := config.Profiles[name]; !ok {
			config.Profiles[name] = profile
		}
	}

	config.Defaults.Catalog = paths.NormalizePath(config.Defaults.Catalog)
	config.Defaults.MetricsFile = paths.NormalizePath(config.Defaults.MetricsFile)

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile() string {
	// Project-specific config in the current directory
	for _, name := range []string{"ntd-scan.yaml", "ntd-scan.yml", ".ntd-scan.yaml", ".ntd-scan.yml"} {
		if fileExists(name) {
			return name
		}
	}

	if standardConfig := paths.GetConfigFile(); standardConfig != "" && fileExists(standardConfig) {
		return standardConfig
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homeConfig := filepath.Join(home, ".ntd-scan.yaml")
	if fileExists(homeConfig) {
		return homeConfig
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the sorted names of available profiles
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// Resolve returns the defaults with the named profile applied. An empty name
// returns the defaults.
func (c *Config) Resolve(profileName string) (Settings, error) {
	if profileName == "" {
		return c.Defaults, nil
	}
	profile := c.GetProfile(profileName)
	if profile == nil {
		return Settings{}, fmt.Errorf("profile '%s' not found (available: %v)", profileName, c.ListProfiles())
	}
	return c.Defaults.Overlay(profile.Settings), nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if err := config.Schema.Validate(); err != nil {
		return err
	}

	if err := ValidateSettings(config.Defaults); err != nil {
		return fmt.Errorf("invalid defaults: %w", err)
	}

	for name, profile := range config.Profiles {
		if err := ValidateSettings(profile.Settings); err != nil {
			return fmt.Errorf("invalid profile '%s': %w", name, err)
		}
	}

	return nil
}

// ValidateSettings checks the values of a settings block
func ValidateSettings(s Settings) error {
	if s.Delimiter != "" {
		if utf8.RuneCountInString(s.Delimiter) != 1 {
			return fmt.Errorf("delimiter must be a single character, got %q", s.Delimiter)
		}
		if s.Delimiter == "\"" || s.Delimiter == "\n" || s.Delimiter == "\r" {
			return fmt.Errorf("delimiter %q is not allowed", s.Delimiter)
		}
	}
	if s.Encoding != "" {
		if _, err := csvio.LookupEncoding(s.Encoding); err != nil {
			return err
		}
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", s.Workers)
	}
	if s.MatchTimeout < 0 {
		return fmt.Errorf("match_timeout must not be negative, got %s", s.MatchTimeout)
	}
	if err := paths.ValidatePath(s.Catalog); err != nil {
		return fmt.Errorf("invalid catalog path: %w", err)
	}
	if err := paths.ValidatePath(s.MetricsFile); err != nil {
		return fmt.Errorf("invalid metrics file path: %w", err)
	}
	return nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard locations
// when configFile is empty). If loading fails, it returns the default configuration
// together with the error so the caller can report it.
func LoadConfigOrDefault(configFile string) (*Config, error) {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return Default(), err
	}
	return cfg, nil
}
