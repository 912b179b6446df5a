package fs

import (
	"path/filepath"
	"strings"
)

// DefaultExcludeFragments are always applied when walking project trees.
// Superseded archives hold retired drawings that must never count as
// live copies, and the tools folder holds the widget's own data files.
var DefaultExcludeFragments = []string{"supersede", "filing-widget-tools"}

// ExcludeMatcher checks directory names against a set of name fragments
// marking folders a tree walk must not descend into.
type ExcludeMatcher struct {
	fragments []string
}

// NewExcludeMatcher creates an ExcludeMatcher from raw fragments.
// Fragments are matched case-insensitively as substrings of a single
// directory name. Blank fragments are skipped.
func NewExcludeMatcher(rawFragments []string) *ExcludeMatcher {
	var fragments []string
	for _, raw := range rawFragments {
		raw = strings.ToLower(strings.TrimSpace(raw))
		if raw == "" {
			continue
		}
		fragments = append(fragments, raw)
	}
	return &ExcludeMatcher{fragments: fragments}
}

// MatchDir reports whether a single directory name is excluded.
func (m *ExcludeMatcher) MatchDir(name string) bool {
	lower := strings.ToLower(name)
	for _, f := range m.fragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

// MatchPath reports whether any segment of the given folder path is an
// excluded directory name. relativePath should be a folder path
// relative to the walk root, with the filename already stripped.
func (m *ExcludeMatcher) MatchPath(relativePath string) bool {
	if len(m.fragments) == 0 {
		return false
	}
	segments := strings.Split(filepath.ToSlash(relativePath), "/")
	for _, seg := range segments {
		if m.MatchDir(seg) {
			return true
		}
	}
	return false
}
