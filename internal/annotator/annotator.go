// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package annotator applies the pattern catalog to requirement rows, setting
// category flags and building each row's comment trail.
package annotator

import (
	"ntd-scan/internal/catalog"
	"ntd-scan/internal/matcher"
	"ntd-scan/internal/record"
	"ntd-scan/internal/textnorm"
)

// Recorder receives one call per matching pattern
type Recorder interface {
	RecordMatch(category string)
}

// Annotator holds the read-only state shared by all rows of a run
type Annotator struct {
	catalog  *catalog.Catalog
	matcher  *matcher.Matcher
	policies map[string]Policy
	recorder Recorder
}

// Option configures an Annotator
type Option func(*Annotator)

// WithPolicies replaces the category policy table
func WithPolicies(policies map[string]Policy) Option {
	return func(a *Annotator) {
		a.policies = policies
	}
}

// WithRecorder reports every matching pattern to r
func WithRecorder(r Recorder) Option {
	return func(a *Annotator) {
		a.recorder = r
	}
}

// New creates an annotator for the given catalog. A nil matcher gets a fresh one.
func New(c *catalog.Catalog, m *matcher.Matcher, opts ...Option) *Annotator {
	if m == nil {
		m = matcher.New()
	}
	a := &Annotator{
		catalog:  c,
		matcher:  m,
		policies: DefaultPolicies(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// PolicyFor returns the comment policy of a category
func (a *Annotator) PolicyFor(category string) Policy {
	if p, ok := a.policies[category]; ok {
		return p
	}
	return PolicyDefault
}

// Annotate returns a copy of row with flags set and the comment trail extended
// for every catalog pattern found in its content. The input row is not modified.
func (a *Annotator) Annotate(row record.Row) (record.Row, error) {
	out := row.Clone()
	content := textnorm.NormalizeContent(row.Content)
	trail := NewTrail(out.Comment)

	for _, cat := range a.catalog.Categories {
		policy := a.PolicyFor(cat.Name)

		for _, pattern := range cat.Patterns {
			found, ok, err := a.matcher.Extract(content, cat.Name, pattern)
			if err != nil {
				return row, err
			}
			if !ok {
				continue
			}

			if out.HasFlag(cat.Name) {
				out.Flags[cat.Name] = 1
			}
			if a.recorder != nil {
				a.recorder.RecordMatch(cat.Name)
			}
			if trail.Append(cat.Name, policy, found) {
				break
			}
		}
	}

	out.Comment = trail.String()
	return out, nil
}
