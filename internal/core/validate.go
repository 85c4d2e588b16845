// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"ntd-scan/internal/catalog"
	"ntd-scan/internal/record"
)

// CatalogCheck describes a catalog that loaded and compiled cleanly
type CatalogCheck struct {
	Catalog   *catalog.Catalog
	Unflagged []string
	Unfed     []string
}

// ValidateCatalog loads the catalog at path and compiles every pattern. Schema
// divergence is reported, and is an error only in strict mode.
func ValidateCatalog(path string, schema *record.Schema, strict bool) (*CatalogCheck, error) {
	if schema == nil {
		schema = record.DefaultSchema()
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	cat, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}
	if err := NewMatcher(0).Precompile(cat); err != nil {
		return nil, err
	}

	unflagged, unfed, err := CheckDivergence(cat, schema, strict)
	if err != nil {
		return nil, err
	}
	return &CatalogCheck{Catalog: cat, Unflagged: unflagged, Unfed: unfed}, nil
}
