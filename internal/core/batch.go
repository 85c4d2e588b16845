// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// BatchConfig holds configuration for annotating every table matched by a glob.
// Input and output paths of Run are ignored.
type BatchConfig struct {
	RunConfig

	// Pattern is a doublestar glob such as "exports/**/*.csv"
	Pattern string
	// OutDir receives one annotated table per input, at the input's path
	// relative to the non-glob prefix of Pattern
	OutDir string
}

// BatchItem pairs an input with its run result
type BatchItem struct {
	InputPath  string
	OutputPath string
	Result     *RunResult
}

// ExpandGlob returns the sorted files matched by pattern and the directory the
// pattern is rooted at
func ExpandGlob(pattern string) (base string, files []string, err error) {
	if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
		return "", nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}
	base, _ = doublestar.SplitPattern(filepath.ToSlash(pattern))

	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return "", nil, fmt.Errorf("error expanding %s: %w", pattern, err)
	}
	sort.Strings(matches)
	return filepath.FromSlash(base), matches, nil
}

// Batch annotates every file matched by the pattern. The catalog is loaded and
// checked once; the first failing file aborts the batch.
func Batch(ctx context.Context, bc BatchConfig) ([]BatchItem, error) {
	base, inputs, err := ExpandGlob(bc.Pattern)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no files match %s", bc.Pattern)
	}

	rc := bc.RunConfig
	if rc.Catalog == nil {
		rc.Catalog, err = loadCatalog(rc.CatalogPath, rc.Observer)
		if err != nil {
			return nil, err
		}
	}
	if rc.Matcher == nil {
		rc.Matcher = NewMatcher(rc.MatchTimeout)
	}

	items := make([]BatchItem, 0, len(inputs))
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rel, err := filepath.Rel(base, input)
		if err != nil {
			rel = filepath.Base(input)
		}
		output := filepath.Join(bc.OutDir, rel)
		if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
			return nil, fmt.Errorf("error creating output directory: %w", err)
		}

		rc.InputPath = input
		rc.OutputPath = output
		result, err := Run(ctx, rc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", input, err)
		}
		items = append(items, BatchItem{InputPath: input, OutputPath: output, Result: result})
	}
	return items, nil
}
