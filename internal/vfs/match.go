package vfs

import (
	"path/filepath"
	"strings"
)

// MatchName reports whether a file name matches a glob-like filter pattern.
// Matching is case-insensitive, so "*.md" accepts "README.MD". A malformed
// pattern matches nothing.
func MatchName(pattern, name string) bool {
	ok, err := filepath.Match(strings.ToLower(pattern), strings.ToLower(name))
	return err == nil && ok
}
