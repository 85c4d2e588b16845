// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ntd-scan/internal/config"
	"ntd-scan/internal/formatters"
	"ntd-scan/internal/metrics"
	"ntd-scan/internal/observability"

	"github.com/spf13/cobra"
)

// globalOptions holds the persistent command line flags
type globalOptions struct {
	configFile   string
	profile      string
	catalog      string
	delimiter    string
	encoding     string
	format       string
	workers      int
	noColor      bool
	debug        bool
	strictSchema bool
	metricsFile  string
	matchTimeout time.Duration
	logLevel     string
}

func (o *globalOptions) bind(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&o.configFile, "config", "", "Config file path (YAML)")
	f.StringVar(&o.profile, "profile", "", "Profile from the config file to apply")
	f.StringVar(&o.catalog, "catalog", "", "Pattern catalog (JSON object of category to patterns)")
	f.StringVar(&o.delimiter, "delimiter", "", "Field delimiter of input and output tables")
	f.StringVar(&o.encoding, "encoding", "", "Input encoding (utf-8, windows-1251)")
	f.StringVar(&o.format, "format", "", "Report format (text, json, yaml, csv)")
	f.IntVar(&o.workers, "workers", 0, "Rows annotated in parallel (0 = number of CPUs)")
	f.BoolVar(&o.noColor, "no-color", false, "Disable colored report output")
	f.BoolVar(&o.debug, "debug", false, "Log every processing step to stderr")
	f.BoolVar(&o.strictSchema, "strict-schema", false, "Fail when catalog categories and flag columns diverge")
	f.StringVar(&o.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")
	f.DurationVar(&o.matchTimeout, "match-timeout", 0, "Abort a single pattern match after this long (0 = no limit)")
	f.StringVar(&o.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

// runEnv is everything a command needs after configuration is resolved
type runEnv struct {
	cfg      *config.Config
	settings config.Settings
	logger   *slog.Logger
	observer *observability.StandardObserver
	metrics  *metrics.Metrics
}

// resolve loads the config file, applies the profile and then every flag the
// user set explicitly
func (o *globalOptions) resolve(cmd *cobra.Command) (*runEnv, error) {
	logger := newLogger(cmd.ErrOrStderr(), o.logLevel)

	cfg, err := loadConfiguration(o.configFile, logger)
	if err != nil {
		return nil, err
	}

	settings, err := cfg.Resolve(o.profile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("catalog") {
		settings.Catalog = o.catalog
	}
	if flags.Changed("delimiter") {
		settings.Delimiter = o.delimiter
	}
	if flags.Changed("encoding") {
		settings.Encoding = o.encoding
	}
	if flags.Changed("format") {
		settings.Format = o.format
	}
	if flags.Changed("workers") {
		settings.Workers = o.workers
	}
	if flags.Changed("no-color") {
		settings.NoColor = o.noColor
	}
	if flags.Changed("debug") {
		settings.Debug = o.debug
	}
	if flags.Changed("strict-schema") {
		settings.StrictSchema = o.strictSchema
	}
	if flags.Changed("metrics-file") {
		settings.MetricsFile = o.metricsFile
	}
	if flags.Changed("match-timeout") {
		settings.MatchTimeout = o.matchTimeout
	}
	if err := config.ValidateSettings(settings); err != nil {
		return nil, err
	}
	if _, ok := formatters.Get(settings.Format); !ok {
		return nil, fmt.Errorf("unsupported format '%s'. Available formats: %s", settings.Format, strings.Join(formatters.List(), ", "))
	}

	if !isTerminal(os.Stdout) {
		settings.NoColor = true
	}
	settings.Catalog = resolveCatalogPath(settings.Catalog)

	env := &runEnv{
		cfg:      cfg,
		settings: settings,
		logger:   logger,
		observer: observability.NewStandardObserver(observability.ObservabilityOff, cmd.ErrOrStderr()),
	}
	if settings.Debug {
		debugObs := observability.NewDebugObserver(cmd.ErrOrStderr())
		env.observer = debugObs.StandardObserver
	}
	if settings.MetricsFile != "" {
		env.metrics = metrics.New()
	}

	logger.Debug("Configuration resolved",
		"run_id", env.observer.RunID(),
		"profile", o.profile,
		"catalog", settings.Catalog,
		"workers", settings.Workers,
		"format", settings.Format)

	return env, nil
}

// loadConfiguration loads an explicit config file strictly. A config file found
// in a standard location that fails to load is reported and replaced by defaults.
func loadConfiguration(configFile string, logger *slog.Logger) (*config.Config, error) {
	if configFile != "" {
		return config.LoadConfig(configFile)
	}

	cfg, err := config.LoadConfigOrDefault("")
	if err != nil {
		logger.Warn("Error loading config file, using default configuration", "error", err)
	}
	return cfg, nil
}

// resolveCatalogPath falls back to the directory of the executable for a
// relative catalog path that does not exist in the working directory
func resolveCatalogPath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	exe, err := os.Executable()
	if err != nil {
		return path
	}
	candidate := filepath.Join(filepath.Dir(exe), path)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return path
}

// writeMetrics exports the run's metrics when a metrics file is configured
func (e *runEnv) writeMetrics() {
	if e.metrics == nil {
		return
	}
	if err := e.metrics.WriteTextfile(e.settings.MetricsFile); err != nil {
		e.logger.Warn("Metrics not written", "path", e.settings.MetricsFile, "error", err)
	}
}

// warnDivergence logs catalog categories without a flag column and flag columns
// without a category
func (e *runEnv) warnDivergence(unflagged, unfed []string) {
	if len(unflagged) > 0 {
		e.logger.Warn("Catalog categories without a flag column only add comments",
			"categories", strings.Join(unflagged, ", "))
	}
	if len(unfed) > 0 {
		e.logger.Warn("Flag columns with no catalog category stay 0",
			"columns", strings.Join(unfed, ", "))
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	lvl := slog.LevelWarn
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// progressPrinter reports progress of a debug run on stderr
func progressPrinter(w io.Writer) func(completed, total int) {
	step := 1
	return func(completed, total int) {
		if total >= 100 {
			step = total / 20
		}
		if completed == total || completed%step == 0 {
			fmt.Fprintf(w, "   progress: %d/%d rows\n", completed, total)
		}
	}
}
