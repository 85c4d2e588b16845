// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package matcher evaluates catalog patterns against normalized requirement text.
//
// Patterns are compiled with github.com/dlclark/regexp2 rather than the standard
// regexp package: rule authors write lookarounds and rely on \b and \w matching
// Cyrillic letters, neither of which RE2 supports.
package matcher

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"ntd-scan/internal/catalog"

	"github.com/dlclark/regexp2"
)

// PatternError identifies a pattern that failed to compile or evaluate
type PatternError struct {
	Category string
	Pattern  string
	Err      error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q in category %q: %v", e.Pattern, e.Category, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Matcher compiles patterns on first use and caches them. It is safe for
// concurrent use.
type Matcher struct {
	mu      sync.RWMutex
	cache   map[string]*regexp2.Regexp
	timeout time.Duration
}

// Option configures a Matcher
type Option func(*Matcher)

// WithTimeout bounds the time a single pattern evaluation may take.
// Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(m *Matcher) {
		m.timeout = d
	}
}

// New creates a matcher with an empty cache
func New(opts ...Option) *Matcher {
	m := &Matcher{cache: make(map[string]*regexp2.Regexp)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Compile returns the compiled form of pattern, compiling it if needed.
// category is only used to label errors.
func (m *Matcher) Compile(category, pattern string) (*regexp2.Regexp, error) {
	m.mu.RLock()
	re, ok := m.cache[pattern]
	m.mu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp2.Compile(translateNamedGroups(pattern), regexp2.IgnoreCase)
	if err != nil {
		return nil, &PatternError{Category: category, Pattern: pattern, Err: err}
	}
	if m.timeout > 0 {
		re.MatchTimeout = m.timeout
	}

	m.mu.Lock()
	if cached, ok := m.cache[pattern]; ok {
		re = cached
	} else {
		m.cache[pattern] = re
	}
	m.mu.Unlock()

	return re, nil
}

// Precompile compiles every pattern in the catalog and returns the first failure
func (m *Matcher) Precompile(c *catalog.Catalog) error {
	for _, cat := range c.Categories {
		for _, pattern := range cat.Patterns {
			if _, err := m.Compile(cat.Name, pattern); err != nil {
				return err
			}
		}
	}
	return nil
}

// Matches reports whether pattern occurs anywhere in text. Nil text never matches.
func (m *Matcher) Matches(text *string, category, pattern string) (bool, error) {
	if text == nil {
		return false, nil
	}
	re, err := m.Compile(category, pattern)
	if err != nil {
		return false, err
	}
	found, err := re.MatchString(*text)
	if err != nil {
		return false, &PatternError{Category: category, Pattern: pattern, Err: err}
	}
	return found, nil
}

// Extract returns every non-overlapping match of pattern in text, in order of
// occurrence. The boolean is false when there is nothing to report: nil text or
// no match at all.
func (m *Matcher) Extract(text *string, category, pattern string) (Extraction, bool, error) {
	if text == nil {
		return nil, false, nil
	}
	re, err := m.Compile(category, pattern)
	if err != nil {
		return nil, false, err
	}

	var out Extraction
	match, err := re.FindStringMatch(*text)
	for err == nil && match != nil {
		out = append(out, hitFromMatch(match))
		match, err = re.FindNextMatch(match)
	}
	if err != nil {
		return nil, false, &PatternError{Category: category, Pattern: pattern, Err: err}
	}

	if len(out) == 0 {
		return nil, false, nil
	}
	return out, true, nil
}

// hitFromMatch keeps the whole match when the pattern has no capture groups and
// the group texts otherwise
func hitFromMatch(match *regexp2.Match) Hit {
	groups := match.Groups()
	if len(groups) <= 1 {
		return Hit{match.String()}
	}
	hit := make(Hit, 0, len(groups)-1)
	for _, g := range groups[1:] {
		hit = append(hit, g.String())
	}
	return hit
}

// translateNamedGroups rewrites (?P<name>...) and (?P=name) into plain groups
// and numbered backreferences. Named groups stay in their left-to-right slot,
// where .NET syntax would number them after every unnamed group. A reference to
// an unknown name is left alone so that compilation reports it.
func translateNamedGroups(pattern string) string {
	if !strings.Contains(pattern, "(?P") {
		return pattern
	}

	var sb strings.Builder
	sb.Grow(len(pattern))
	groups := make(map[string]int)
	count := 0
	inClass := false

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\':
			sb.WriteByte(c)
			if i+1 < len(pattern) {
				i++
				sb.WriteByte(pattern[i])
			}
			continue
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
			sb.WriteByte(c)
			// a leading ] (after an optional ^) is a literal member
			if i+1 < len(pattern) && pattern[i+1] == '^' {
				i++
				sb.WriteByte('^')
			}
			if i+1 < len(pattern) && pattern[i+1] == ']' {
				i++
				sb.WriteByte(']')
			}
			continue
		case c == '(':
			rest := pattern[i:]
			if strings.HasPrefix(rest, "(?P<") {
				if end := strings.IndexByte(rest, '>'); end > 0 {
					count++
					groups[rest[4:end]] = count
					sb.WriteByte('(')
					i += end
					continue
				}
			}
			if strings.HasPrefix(rest, "(?P=") {
				if end := strings.IndexByte(rest, ')'); end > 0 {
					if n, ok := groups[rest[4:end]]; ok {
						sb.WriteString(`(?:\` + strconv.Itoa(n) + ")")
						i += end
						continue
					}
				}
			}
			if !strings.HasPrefix(rest, "(?") {
				count++
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
