// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package textnorm cleans requirement content before pattern matching.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	quoteRunRe = regexp.MustCompile(`"{2,}`)
	lineBreaks = strings.NewReplacer("\n", " ", "\r", " ")
)

// Normalize strips markup, collapses repeated double quotes, turns line breaks
// into spaces and trims the result.
func Normalize(text string) string {
	text = StripTags(text)
	text = quoteRunRe.ReplaceAllString(text, `"`)
	text = lineBreaks.Replace(text)
	return strings.TrimSpace(text)
}

// NormalizeContent is Normalize for nullable content. Nil passes through.
func NormalizeContent(content *string) *string {
	if content == nil {
		return nil
	}
	normalized := Normalize(*content)
	return &normalized
}

// StripTags returns the visible text of an HTML fragment with entities decoded.
// Comments and the bodies of script and style elements are dropped.
func StripTags(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}

	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	skipDepth := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF is the only error a strings.Reader can produce
			return sb.String()
		case html.TextToken:
			if skipDepth == 0 {
				sb.Write(z.Text())
			}
		case html.StartTagToken:
			if isRawTextElement(z) {
				skipDepth++
			}
		case html.EndTagToken:
			if skipDepth > 0 && isRawTextElement(z) {
				skipDepth--
			}
		}
	}
}

func isRawTextElement(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}
