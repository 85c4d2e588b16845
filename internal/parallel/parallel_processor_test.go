// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"ntd-scan/internal/annotator"
	"ntd-scan/internal/catalog"
	"ntd-scan/internal/matcher"
	"ntd-scan/internal/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRows(n int) []record.Row {
	schema := record.DefaultSchema()
	rows := make([]record.Row, n)
	for i := range rows {
		rows[i] = record.NewRow(schema)
		rows[i].Index = i
		rows[i].ID = fmt.Sprint(i)
		switch i % 3 {
		case 0:
			rows[i].SetBase(record.ColumnContent, fmt.Sprintf("см. таблицу %d, x = %d", i, i))
		case 1:
			rows[i].SetBase(record.ColumnContent, "Рекомендуется выполнять расчет")
		}
	}
	return rows
}

func testAnnotator(patterns ...string) *annotator.Annotator {
	if len(patterns) == 0 {
		patterns = []string{`таблиц[аеуы]`}
	}
	return annotator.New(&catalog.Catalog{Categories: []catalog.Category{
		{Name: annotator.CategoryTables, Patterns: patterns},
		{Name: "Наличие формул", Patterns: []string{`=\s*\d+`}},
		{Name: annotator.CategoryCalculations, Patterns: []string{`расч[её]т`}},
		{Name: annotator.CategoryRecommendation, Patterns: []string{`рекомендуется`}},
	}}, matcher.New())
}

func TestProcessRows_MatchesSequentialResult(t *testing.T) {
	rows := makeRows(50)
	a := testAnnotator()

	want := make([]record.Row, len(rows))
	for i, row := range rows {
		out, err := a.Annotate(row)
		require.NoError(t, err)
		want[i] = out
	}

	pp := NewParallelProcessor(4, nil)
	got, stats, err := pp.ProcessRows(context.Background(), rows, a, nil)
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, 50, stats.TotalRows)
	assert.Equal(t, 50, stats.AnnotatedRows)
	assert.Equal(t, 4, stats.WorkerCount)
}

func TestProcessRows_Progress(t *testing.T) {
	rows := makeRows(20)

	var mu sync.Mutex
	var seen []int
	pp := NewParallelProcessor(3, nil)
	_, _, err := pp.ProcessRows(context.Background(), rows, testAnnotator(), func(completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 20, total)
		seen = append(seen, completed)
	})
	require.NoError(t, err)

	require.Len(t, seen, 20)
	for i, c := range seen {
		assert.Equal(t, i+1, c)
	}
}

func TestProcessRows_PatternErrorAbortsBatch(t *testing.T) {
	rows := makeRows(30)

	pp := NewParallelProcessor(4, nil)
	got, stats, err := pp.ProcessRows(context.Background(), rows, testAnnotator(`таблиц[`), nil)

	var patErr *matcher.PatternError
	require.True(t, errors.As(err, &patErr), "got %v", err)
	assert.Nil(t, got)
	assert.Nil(t, stats)
}

func TestProcessRows_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pp := NewParallelProcessor(2, nil)
	_, _, err := pp.ProcessRows(ctx, makeRows(5), testAnnotator(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessRows_Empty(t *testing.T) {
	pp := NewParallelProcessor(2, nil)
	got, stats, err := pp.ProcessRows(context.Background(), nil, testAnnotator(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, stats.TotalRows)
}

func TestNewParallelProcessor_DefaultWorkers(t *testing.T) {
	pp := NewParallelProcessor(0, nil)
	assert.Equal(t, DefaultWorkers(), pp.Workers())
	assert.LessOrEqual(t, pp.Workers(), maxWorkers)
	assert.GreaterOrEqual(t, pp.Workers(), 1)
}
