package vfs

import (
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
)

// defaultIgnoreRules apply to every disk root regardless of the ignore file.
var defaultIgnoreRules = []string{
	".git",
	"node_modules",
	".DS_Store",
	"Thumbs.db",
}

// IgnoreRules answers whether a root-relative path is excluded from listing.
// Parsed once per disk root from the configured ignore file (gitignore
// syntax) and immutable afterwards.
type IgnoreRules struct {
	matcher *gitignore.GitIgnore
}

// LoadIgnoreRules compiles the ignore file at root/name together with the
// built-in defaults. A missing ignore file leaves only the defaults active.
func LoadIgnoreRules(root, name string) (*IgnoreRules, error) {
	ignorePath := filepath.Join(root, name)

	if _, err := os.Stat(ignorePath); err == nil {
		matcher, err := gitignore.CompileIgnoreFileAndLines(ignorePath, defaultIgnoreRules...)
		if err != nil {
			return nil, err
		}
		return &IgnoreRules{matcher: matcher}, nil
	}

	return &IgnoreRules{matcher: gitignore.CompileIgnoreLines(defaultIgnoreRules...)}, nil
}

// Excluded reports whether the root-relative path matches an ignore rule.
func (r *IgnoreRules) Excluded(relPath string) bool {
	if r == nil || r.matcher == nil {
		return false
	}
	return r.matcher.MatchesPath(relPath)
}
