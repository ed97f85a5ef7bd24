package vfs

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	mderr "github.com/mdserve/mdserve/internal/errors"
)

// DiskBackend serves a directory tree rooted at an absolute path fixed at
// construction. Every resolved path must stay under the root; traversal
// attempts are rejected before any filesystem call.
type DiskBackend struct {
	root   string
	ignore *IgnoreRules
}

// NewDisk creates a backend over the directory at root, loading the
// ignore-rule file (if present) once.
func NewDisk(root, ignoreFileName string) (*DiskBackend, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, mderr.NotFound(root)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, mderr.NotFound(root)
	}

	ignore, err := LoadIgnoreRules(abs, ignoreFileName)
	if err != nil {
		return nil, err
	}

	return &DiskBackend{root: abs, ignore: ignore}, nil
}

// resolve maps a logical path to an absolute path under the root. Paths
// whose cleaned form escapes the root fail with access denied; no
// filesystem call happens before this check passes.
func (b *DiskBackend) resolve(path string) (string, error) {
	logical := NormalizePath(path)
	abs := filepath.Clean(filepath.Join(b.root, filepath.FromSlash(logical)))
	if abs != b.root && !strings.HasPrefix(abs, b.root+string(filepath.Separator)) {
		return "", mderr.AccessDenied(path)
	}
	return abs, nil
}

// Read returns the content of the document at the logical path.
func (b *DiskBackend) Read(path string) (string, error) {
	abs, err := b.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", mderr.NotFound(path)
		}
		return "", err
	}
	return string(data), nil
}

// Exists reports whether a regular file exists at the logical path. A path
// that escapes the root reports false without touching the filesystem.
func (b *DiskBackend) Exists(path string) bool {
	abs, err := b.resolve(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.Mode().IsRegular()
}

// List walks the tree depth-first, skipping hidden entries and ignored
// paths, and returns root-relative slash paths whose base name matches the
// pattern, sorted ascending. Sorting at the end keeps the ordering stable
// regardless of filesystem iteration order.
func (b *DiskBackend) List(pattern string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(b.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == b.root {
			return nil
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(b.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if b.ignore.Excluded(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.IsDir() && MatchName(pattern, name) {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// Close is a no-op; the backend holds no open handles.
func (b *DiskBackend) Close() error {
	return nil
}

// IsVirtual reports false: documents are real on-disk files.
func (b *DiskBackend) IsVirtual() bool {
	return false
}

// Root returns the absolute directory the backend serves.
func (b *DiskBackend) Root() string {
	return b.root
}
