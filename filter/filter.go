// Package filter applies regex allow/block lists to raw .eml content before
// it enters the sort.
package filter

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// Options captures the filtering configuration.
type Options struct {
	IncludeHeader []string
	IncludeBody   []string
	ExcludeHeader []string
	ExcludeBody   []string
}

type pattern struct {
	source string
	re     *regexp.Regexp
	hits   int
}

// Filter holds compiled regex patterns for filtering messages. It is used by
// a single worker; hit counting is not safe for concurrent use.
type Filter struct {
	includeMode   bool
	excludeMode   bool
	includeHeader []*pattern
	includeBody   []*pattern
	excludeHeader []*pattern
	excludeBody   []*pattern
}

// Stats reports per-pattern match counts observed so far.
type Stats struct {
	IncludeHeaderPatterns []string
	IncludeBodyPatterns   []string
	ExcludeHeaderPatterns []string
	ExcludeBodyPatterns   []string
	IncludeHeaderHits     map[string]int
	IncludeBodyHits       map[string]int
	ExcludeHeaderHits     map[string]int
	ExcludeBodyHits       map[string]int
}

// New creates a new Filter from the provided options.
func New(opts Options) (*Filter, error) {
	includeHeader, err := compilePatterns(opts.IncludeHeader)
	if err != nil {
		return nil, fmt.Errorf("compile include-header pattern: %w", err)
	}
	includeBody, err := compilePatterns(opts.IncludeBody)
	if err != nil {
		return nil, fmt.Errorf("compile include-body pattern: %w", err)
	}
	excludeHeader, err := compilePatterns(opts.ExcludeHeader)
	if err != nil {
		return nil, fmt.Errorf("compile exclude-header pattern: %w", err)
	}
	excludeBody, err := compilePatterns(opts.ExcludeBody)
	if err != nil {
		return nil, fmt.Errorf("compile exclude-body pattern: %w", err)
	}

	includeActive := len(includeHeader) > 0 || len(includeBody) > 0
	excludeActive := len(excludeHeader) > 0 || len(excludeBody) > 0
	if includeActive && excludeActive {
		return nil, fmt.Errorf("include and exclude filters are mutually exclusive")
	}

	return &Filter{
		includeMode:   includeActive,
		excludeMode:   excludeActive,
		includeHeader: includeHeader,
		includeBody:   includeBody,
		excludeHeader: excludeHeader,
		excludeBody:   excludeBody,
	}, nil
}

// Active reports whether any pattern is configured.
func (f *Filter) Active() bool {
	return f.includeMode || f.excludeMode
}

// Allows returns true if the message passes the filter criteria.
func (f *Filter) Allows(header, body []byte) bool {
	if f.includeMode {
		matched := matchAny(f.includeHeader, header) || matchAny(f.includeBody, body)
		return matched
	}

	if f.excludeMode {
		if matchAny(f.excludeHeader, header) || matchAny(f.excludeBody, body) {
			return false
		}
	}

	return true
}

// GetStats returns the configured patterns together with their hit counts.
func (f *Filter) GetStats() Stats {
	return Stats{
		IncludeHeaderPatterns: patternSources(f.includeHeader),
		IncludeBodyPatterns:   patternSources(f.includeBody),
		ExcludeHeaderPatterns: patternSources(f.excludeHeader),
		ExcludeBodyPatterns:   patternSources(f.excludeBody),
		IncludeHeaderHits:     patternHits(f.includeHeader),
		IncludeBodyHits:       patternHits(f.includeBody),
		ExcludeHeaderHits:     patternHits(f.excludeHeader),
		ExcludeBodyHits:       patternHits(f.excludeBody),
	}
}

// SplitRawMessage splits a raw email message into header and body parts.
func SplitRawMessage(raw []byte) (header, body []byte) {
	if len(raw) == 0 {
		return nil, nil
	}

	if idx := bytes.Index(raw, []byte("\r\n\r\n")); idx >= 0 {
		return raw[:idx], raw[idx+4:]
	}
	if idx := bytes.Index(raw, []byte("\n\n")); idx >= 0 {
		return raw[:idx], raw[idx+2:]
	}

	return raw, nil
}

func compilePatterns(sources []string) ([]*pattern, error) {
	compiled := make([]*pattern, 0, len(sources))
	for _, source := range sources {
		source = strings.TrimSpace(source)
		if source == "" {
			continue
		}
		re, err := regexp.Compile(source)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", source, err)
		}
		compiled = append(compiled, &pattern{source: source, re: re})
	}
	return compiled, nil
}

func matchAny(patterns []*pattern, text []byte) bool {
	matched := false
	for _, p := range patterns {
		if p.re.Match(text) {
			p.hits++
			matched = true
		}
	}
	return matched
}

func patternSources(patterns []*pattern) []string {
	if len(patterns) == 0 {
		return nil
	}
	sources := make([]string, 0, len(patterns))
	for _, p := range patterns {
		sources = append(sources, p.source)
	}
	return sources
}

func patternHits(patterns []*pattern) map[string]int {
	hits := make(map[string]int, len(patterns))
	for _, p := range patterns {
		hits[p.source] = p.hits
	}
	return hits
}
