// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package annotator

import (
	"strings"

	"ntd-scan/internal/matcher"
)

// Category names with their own comment policy. Names are compared exactly.
const (
	CategoryTables         = "Наличие таблиц"
	CategoryCalculations   = "Упоминание расчетов"
	CategoryRecommendation = "Требование носит рекомендательный характер"

	// AmbiguousMarker labels the first recommendation match of a row
	AmbiguousMarker = "Неоднозначная формулировка"
)

// Policy decides what a matching pattern adds to the comment trail and whether
// the remaining patterns of the category are still checked
type Policy int

const (
	// PolicyDefault appends "<category> <matches>" and keeps checking
	PolicyDefault Policy = iota
	// PolicyNameOnly appends the category name alone for every matching pattern
	PolicyNameOnly
	// PolicyFirstMatch appends "<category> <matches>" and stops the category
	PolicyFirstMatch
	// PolicyAmbiguous labels the first match of the row with AmbiguousMarker and
	// appends later matches bare, without separator
	PolicyAmbiguous
)

func (p Policy) String() string {
	switch p {
	case PolicyNameOnly:
		return "name-only"
	case PolicyFirstMatch:
		return "first-match"
	case PolicyAmbiguous:
		return "ambiguous"
	default:
		return "default"
	}
}

// DefaultPolicies maps the categories with special handling to their policy.
// Every other category uses PolicyDefault.
func DefaultPolicies() map[string]Policy {
	return map[string]Policy{
		CategoryTables:         PolicyNameOnly,
		CategoryCalculations:   PolicyFirstMatch,
		CategoryRecommendation: PolicyAmbiguous,
	}
}

// Trail is the comment of one row under construction
type Trail struct {
	text string
}

// NewTrail starts a trail from an existing comment
func NewTrail(existing string) *Trail {
	return &Trail{text: existing}
}

// String returns the accumulated comment
func (t *Trail) String() string {
	return t.text
}

// Contains reports whether the trail already holds s
func (t *Trail) Contains(s string) bool {
	return strings.Contains(t.text, s)
}

// Append records one matching pattern of category under policy. It returns true
// when no further patterns of the category should be checked.
func (t *Trail) Append(category string, policy Policy, found matcher.Extraction) (stop bool) {
	switch policy {
	case PolicyNameOnly:
		t.text += category + "\n"
		return false
	case PolicyFirstMatch:
		t.text += category + " " + found.String() + "\n"
		return true
	case PolicyAmbiguous:
		// Substring check: any earlier text containing the marker counts
		if !t.Contains(AmbiguousMarker) {
			t.text += AmbiguousMarker + " " + found.String() + "\n"
		} else {
			t.text += found.String()
		}
		return false
	default:
		t.text += category + " " + found.String() + "\n"
		return false
	}
}
