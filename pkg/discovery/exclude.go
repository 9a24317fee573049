// Package discovery finds git repositories beneath a directory tree.
package discovery

import (
	"os"
	"path/filepath"
	"strings"
)

// ExcludeRules is a set of patterns matched against individual path segments.
//
// A segment is excluded when it equals a pattern or contains it as a
// substring. Both checks are kept: "node_modules" must catch
// "node_modules" itself, and "cache" must catch "__cache__". The substring
// rule over-excludes ("git" also drops "gitops"), which is accepted.
type ExcludeRules []string

// NewExcludeRules builds a rule set, dropping empty patterns since an empty
// substring would match every segment.
func NewExcludeRules(patterns []string) ExcludeRules {
	rules := make(ExcludeRules, 0, len(patterns))

	for _, p := range patterns {
		if p != "" {
			rules = append(rules, p)
		}
	}

	return rules
}

// Excludes reports whether any segment of path matches a rule.
func (r ExcludeRules) Excludes(path string) bool {
	return IsExcluded(path, r)
}

// IsExcluded reports whether any segment of path equals or contains one of
// the patterns. Matching is case-sensitive. An empty pattern set never excludes.
func IsExcluded(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	for _, segment := range Segments(path) {
		for _, pattern := range patterns {
			if pattern == "" {
				continue
			}

			if segment == pattern || strings.Contains(segment, pattern) {
				return true
			}
		}
	}

	return false
}

// Segments splits a path into its non-empty components.
func Segments(path string) []string {
	cleaned := filepath.Clean(filepath.FromSlash(path))
	cleaned = strings.TrimPrefix(cleaned, filepath.VolumeName(cleaned))

	parts := strings.Split(cleaned, string(os.PathSeparator))
	segments := parts[:0]

	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}

	return segments
}
