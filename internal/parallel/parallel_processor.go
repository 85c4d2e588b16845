// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"runtime"
	"sync"
	"time"

	"ntd-scan/internal/annotator"
	"ntd-scan/internal/observability"
	"ntd-scan/internal/record"

	"golang.org/x/sync/errgroup"
)

// maxWorkers caps the default worker count
const maxWorkers = 8

// ParallelProcessor annotates the rows of a table concurrently
type ParallelProcessor struct {
	workers  int
	observer *observability.StandardObserver
}

// ProcessingStats tracks parallel processing statistics
type ProcessingStats struct {
	TotalRows     int           `json:"total_rows"`
	AnnotatedRows int           `json:"annotated_rows"`
	TotalDuration time.Duration `json:"total_duration_ms"`
	WorkerCount   int           `json:"worker_count"`
	AvgRowTime    time.Duration `json:"avg_row_time_ms"`
}

// ProgressCallback is called when a row is completed
type ProgressCallback func(completed, total int)

// DefaultWorkers returns the worker count used when none is configured
func DefaultWorkers() int {
	workers := runtime.NumCPU()
	if workers > maxWorkers {
		workers = maxWorkers
	}
	return workers
}

// NewParallelProcessor creates a processor with the given number of workers.
// A value below one selects DefaultWorkers.
func NewParallelProcessor(workers int, observer *observability.StandardObserver) *ParallelProcessor {
	if workers < 1 {
		workers = DefaultWorkers()
	}
	return &ParallelProcessor{
		workers:  workers,
		observer: observer,
	}
}

// Workers returns the configured worker count
func (pp *ParallelProcessor) Workers() int {
	return pp.workers
}

// ProcessRows annotates every row and returns the results in input order. The
// first failure cancels the remaining rows and is returned with no results.
func (pp *ParallelProcessor) ProcessRows(ctx context.Context, rows []record.Row, a *annotator.Annotator, progress ProgressCallback) ([]record.Row, *ProcessingStats, error) {
	start := time.Now()

	var finishTiming func(bool, map[string]interface{})
	if pp.observer != nil {
		finishTiming = pp.observer.StartTiming("parallel_processor", "process_rows", "batch")
	}

	results := make([]record.Row, len(rows))
	var mu sync.Mutex
	completed := 0
	var rowTime time.Duration

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pp.workers)

	for i := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			rowStart := time.Now()
			annotated, err := a.Annotate(rows[i])
			if err != nil {
				return err
			}
			results[i] = annotated

			mu.Lock()
			completed++
			rowTime += time.Since(rowStart)
			if progress != nil {
				progress(completed, len(rows))
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if pp.observer != nil {
			pp.observer.LogOperation(observability.StandardObservabilityData{
				Component: "parallel_processor",
				Operation: "process_rows",
				Success:   false,
				Error:     err.Error(),
				RowCount:  len(rows),
			})
		}
		return nil, nil, err
	}

	stats := &ProcessingStats{
		TotalRows:     len(rows),
		AnnotatedRows: completed,
		TotalDuration: time.Since(start),
		WorkerCount:   pp.workers,
		AvgRowTime:    rowTime / time.Duration(max(completed, 1)),
	}

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"total_rows":   stats.TotalRows,
			"worker_count": stats.WorkerCount,
			"duration_ms":  stats.TotalDuration.Milliseconds(),
		})
	}

	return results, stats, nil
}
