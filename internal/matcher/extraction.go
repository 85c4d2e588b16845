// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package matcher

import (
	"fmt"
	"strings"
	"unicode"
)

// Hit is one match: the matched text, or the text of every capture group
type Hit []string

// Extraction is the ordered list of hits of a pattern in a text
type Extraction []Hit

// String renders the extraction as a bracketed list of quoted strings, e.g.
// ['= 5', '= 7']. Hits of patterns with several groups render as tuples.
func (e Extraction) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, h := range e {
		if i > 0 {
			sb.WriteString(", ")
		}
		h.writeTo(&sb)
	}
	sb.WriteByte(']')
	return sb.String()
}

func (h Hit) writeTo(sb *strings.Builder) {
	if len(h) == 1 {
		sb.WriteString(quote(h[0]))
		return
	}
	sb.WriteByte('(')
	for i, s := range h {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(quote(s))
	}
	sb.WriteByte(')')
}

// quote wraps s in single quotes, or double quotes when s contains a single
// quote and no double quote, escaping what cannot be shown as is
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			sb.WriteString(`\\`)
		case r == rune(q):
			sb.WriteByte('\\')
			sb.WriteByte(q)
		case r == '\t':
			sb.WriteString(`\t`)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case unicode.IsPrint(r):
			sb.WriteRune(r)
		case r < 0x100:
			fmt.Fprintf(&sb, `\x%02x`, r)
		case r < 0x10000:
			fmt.Fprintf(&sb, `\u%04x`, r)
		default:
			fmt.Fprintf(&sb, `\U%08x`, r)
		}
	}
	sb.WriteByte(q)
	return sb.String()
}
