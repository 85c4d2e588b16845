// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package catalog loads the ordered category to pattern mapping that drives annotation.
//
// The catalog is a JSON object whose keys are category names and whose values are
// lists of regular expressions:
//
//	{
//	  "Наличие формул": ["=\\s*\\d", "формул[аеуы]"],
//	  "Наличие таблиц": ["табл\\.", "таблиц[аеуы]"]
//	}
//
// Declaration order matters both for categories and for the patterns inside each
// category, so JSON is decoded from the token stream rather than into a Go map.
// YAML documents with the same shape are accepted as well and go through a
// yaml.v3 node tree.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Category is a named group of patterns
type Category struct {
	Name     string
	Patterns []string
}

// Catalog is the ordered list of categories
type Catalog struct {
	Source     string
	Categories []Category
}

// PatternCatalogError is returned when the catalog cannot be read or has the wrong shape
type PatternCatalogError struct {
	Source  string
	Message string
	Err     error
}

func (e *PatternCatalogError) Error() string {
	msg := fmt.Sprintf("pattern catalog %s: %s", e.Source, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PatternCatalogError) Unwrap() error {
	return e.Err
}

// Load reads a catalog from a file
func Load(path string) (*Catalog, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, &PatternCatalogError{Source: cleanPath, Message: "cannot read file", Err: err}
	}
	return Parse(data, cleanPath)
}

// Read decodes a catalog from r. source names the resource in error messages.
func Read(r io.Reader, source string) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &PatternCatalogError{Source: source, Message: "cannot read", Err: err}
	}
	return Parse(data, source)
}

// Parse decodes a catalog document. A document opening with '{' is read as JSON,
// anything else as YAML.
func Parse(data []byte, source string) (*Catalog, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '{' {
		return parseJSON(trimmed, source)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &PatternCatalogError{Source: source, Message: "malformed document", Err: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &PatternCatalogError{Source: source, Message: "document is empty"}
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &PatternCatalogError{Source: source, Message: "top level must be an object of category to pattern list"}
	}

	c := newBuilder(source)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, &PatternCatalogError{Source: source, Message: fmt.Sprintf("line %d: category name must be text", key.Line)}
		}

		patterns, err := decodePatterns(key.Value, value)
		if err != nil {
			return nil, &PatternCatalogError{Source: source, Message: err.Error()}
		}
		c.add(key.Value, patterns)
	}

	return c.catalog, nil
}

// builder keeps categories in first-seen order
type builder struct {
	catalog  *Catalog
	position map[string]int
}

func newBuilder(source string) *builder {
	return &builder{catalog: &Catalog{Source: source}, position: make(map[string]int)}
}

// add appends a category. A repeated name keeps its first position and takes the last value.
func (b *builder) add(name string, patterns []string) {
	if idx, dup := b.position[name]; dup {
		b.catalog.Categories[idx].Patterns = patterns
		return
	}
	b.position[name] = len(b.catalog.Categories)
	b.catalog.Categories = append(b.catalog.Categories, Category{Name: name, Patterns: patterns})
}

// parseJSON walks the token stream so that key order survives and every JSON
// string escape is honoured
func parseJSON(data []byte, source string) (*Catalog, error) {
	malformed := func(err error) error {
		return &PatternCatalogError{Source: source, Message: "malformed document", Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if _, err := dec.Token(); err != nil {
		return nil, malformed(err)
	}

	c := newBuilder(source)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed(err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, malformed(fmt.Errorf("unexpected %v", tok))
		}

		patterns, err := decodeJSONPatterns(dec, name)
		if err != nil {
			var shape *shapeError
			if errors.As(err, &shape) {
				return nil, &PatternCatalogError{Source: source, Message: shape.msg}
			}
			return nil, malformed(err)
		}
		c.add(name, patterns)
	}

	if _, err := dec.Token(); err != nil {
		return nil, malformed(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("trailing data after top level object")
		}
		return nil, malformed(err)
	}

	return c.catalog, nil
}

// shapeError reports a well-formed document with the wrong structure
type shapeError struct {
	msg string
}

func (e *shapeError) Error() string { return e.msg }

func decodeJSONPatterns(dec *json.Decoder, category string) ([]string, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, &shapeError{msg: fmt.Sprintf("patterns of %q must be a list", category)}
	}

	patterns := []string{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		text, ok := tok.(string)
		if !ok {
			return nil, &shapeError{msg: fmt.Sprintf("pattern in %q must be text, got %s", category, describeToken(tok))}
		}
		patterns = append(patterns, text)
	}

	// closing bracket
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return patterns, nil
}

func describeToken(tok json.Token) string {
	switch v := tok.(type) {
	case nil:
		return "null"
	case json.Delim:
		if v == '[' {
			return "list"
		}
		return "object"
	case json.Number:
		return fmt.Sprintf("number %s", v)
	case bool:
		return fmt.Sprintf("bool %t", v)
	}
	return fmt.Sprintf("%v", tok)
}

func decodePatterns(category string, node *yaml.Node) ([]string, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: patterns of %q must be a list", node.Line, category)
	}

	patterns := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
			return nil, fmt.Errorf("line %d: pattern in %q must be text, got %s", item.Line, category, describe(item))
		}
		patterns = append(patterns, item.Value)
	}
	return patterns, nil
}

func describe(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "list"
	case yaml.MappingNode:
		return "object"
	case yaml.AliasNode:
		return "alias"
	}
	if n.ShortTag() == "!!null" {
		return "null"
	}
	return fmt.Sprintf("%s %q", n.ShortTag(), n.Value)
}

// Names returns category names in declaration order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		names[i] = cat.Name
	}
	return names
}

// PatternCount returns the total number of patterns across all categories
func (c *Catalog) PatternCount() int {
	total := 0
	for _, cat := range c.Categories {
		total += len(cat.Patterns)
	}
	return total
}
