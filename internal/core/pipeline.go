// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"fmt"
	"time"

	"ntd-scan/internal/annotator"
	"ntd-scan/internal/catalog"
	"ntd-scan/internal/csvio"
	"ntd-scan/internal/matcher"
	"ntd-scan/internal/metrics"
	"ntd-scan/internal/observability"
	"ntd-scan/internal/parallel"
	"ntd-scan/internal/record"
	"ntd-scan/internal/summary"
)

// RunConfig holds configuration for one annotation run.
type RunConfig struct {
	InputPath   string
	OutputPath  string
	CatalogPath string
	// Catalog, when non-nil, is used instead of loading CatalogPath.
	Catalog *catalog.Catalog

	// Schema defaults to record.DefaultSchema when nil.
	Schema       *record.Schema
	CSV          csvio.Options
	Workers      int
	StrictSchema bool
	MatchTimeout time.Duration

	// Matcher, when non-nil, is shared across runs so compiled patterns are reused.
	Matcher  *matcher.Matcher
	Observer *observability.StandardObserver
	Metrics  *metrics.Metrics
	Progress parallel.ProgressCallback
}

// RunResult holds the outcome of an annotation run.
type RunResult struct {
	Report *summary.Report
	Rows   []record.Row
	Stats  *parallel.ProcessingStats

	// Catalog categories with no flag column, and flag columns no category feeds
	Unflagged []string
	Unfed     []string
}

// Run validates the schema, loads the catalog, reads and annotates the input,
// writes the annotated table and summarizes it. Nothing is written unless every
// row is annotated.
func Run(ctx context.Context, rc RunConfig) (result *RunResult, err error) {
	start := time.Now()
	if rc.Metrics != nil {
		defer func() {
			rc.Metrics.ObserveRun(time.Since(start), err)
		}()
	}

	schema := rc.Schema
	if schema == nil {
		schema = record.DefaultSchema()
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	cat := rc.Catalog
	if cat == nil {
		cat, err = loadCatalog(rc.CatalogPath, rc.Observer)
		if err != nil {
			return nil, err
		}
	}

	unflagged, unfed, err := CheckDivergence(cat, schema, rc.StrictSchema)
	if err != nil {
		return nil, err
	}

	rows, err := readRows(rc.InputPath, schema, rc.CSV, rc.Observer)
	if err != nil {
		return nil, err
	}

	m := rc.Matcher
	if m == nil {
		m = NewMatcher(rc.MatchTimeout)
	}
	var opts []annotator.Option
	if rc.Metrics != nil {
		opts = append(opts, annotator.WithRecorder(rc.Metrics))
	}
	ann := annotator.New(cat, m, opts...)

	processor := parallel.NewParallelProcessor(rc.Workers, rc.Observer)
	if rc.Observer != nil && rc.Observer.DebugObserver != nil {
		rc.Observer.DebugObserver.LogDetail("parallel", fmt.Sprintf("%d rows on %d workers", len(rows), processor.Workers()))
	}
	annotated, stats, err := processor.ProcessRows(ctx, rows, ann, rc.Progress)
	if err != nil {
		return nil, fmt.Errorf("annotation failed: %w", err)
	}

	if err := writeRows(rc.OutputPath, annotated, schema, rc.CSV, rc.Observer); err != nil {
		return nil, err
	}
	if rc.Metrics != nil {
		rc.Metrics.AddRows(len(annotated))
	}

	return &RunResult{
		Report:    summary.Summarize(annotated, schema, rc.InputPath),
		Rows:      annotated,
		Stats:     stats,
		Unflagged: unflagged,
		Unfed:     unfed,
	}, nil
}

// NewMatcher creates a matcher with an optional per-match timeout
func NewMatcher(timeout time.Duration) *matcher.Matcher {
	if timeout > 0 {
		return matcher.New(matcher.WithTimeout(timeout))
	}
	return matcher.New()
}

// CheckDivergence compares catalog categories with the schema's flag columns. In
// strict mode any divergence is a SchemaError.
func CheckDivergence(cat *catalog.Catalog, schema *record.Schema, strict bool) (unflagged, unfed []string, err error) {
	unflagged, unfed = schema.Divergence(cat.Names())
	if !strict {
		return unflagged, unfed, nil
	}
	if len(unflagged) > 0 {
		return nil, nil, &record.SchemaError{Column: unflagged[0], Message: "catalog category has no flag column"}
	}
	if len(unfed) > 0 {
		return nil, nil, &record.SchemaError{Column: unfed[0], Message: "flag column has no catalog category"}
	}
	return unflagged, unfed, nil
}

func loadCatalog(path string, observer *observability.StandardObserver) (*catalog.Catalog, error) {
	finish := startStep(observer, "catalog", "load", path)
	cat, err := catalog.Load(path)
	if err != nil {
		finish(false, err.Error())
		return nil, err
	}
	if observer != nil && observer.DebugObserver != nil {
		for _, c := range cat.Categories {
			observer.DebugObserver.LogMetric("catalog", c.Name, len(c.Patterns))
		}
	}
	finish(true, fmt.Sprintf("%d categories, %d patterns", len(cat.Categories), cat.PatternCount()))
	return cat, nil
}

func readRows(path string, schema *record.Schema, opts csvio.Options, observer *observability.StandardObserver) ([]record.Row, error) {
	finish := startStep(observer, "csvio", "read", path)
	rows, err := csvio.ReadFile(path, schema, opts)
	if err != nil {
		finish(false, err.Error())
		return nil, err
	}
	finish(true, fmt.Sprintf("%d rows", len(rows)))
	return rows, nil
}

func writeRows(path string, rows []record.Row, schema *record.Schema, opts csvio.Options, observer *observability.StandardObserver) error {
	finish := startStep(observer, "csvio", "write", path)
	if err := csvio.WriteFile(path, rows, schema, opts); err != nil {
		finish(false, err.Error())
		return err
	}
	finish(true, fmt.Sprintf("%d rows", len(rows)))
	return nil
}

// startStep logs a step through the debug observer when one is attached and
// times it through the standard observer otherwise
func startStep(observer *observability.StandardObserver, component, step, path string) func(bool, string) {
	if observer == nil {
		return func(bool, string) {}
	}
	if observer.DebugObserver != nil {
		return observer.DebugObserver.StartStep(component, step, path)
	}
	finish := observer.StartTiming(component, step, path)
	return func(success bool, details string) {
		finish(success, map[string]interface{}{"details": details})
	}
}
