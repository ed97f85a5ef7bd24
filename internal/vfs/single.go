package vfs

import (
	"os"
	"path/filepath"

	mderr "github.com/mdserve/mdserve/internal/errors"
)

// SingleFileBackend serves exactly one document. The only valid logical path
// is the file's base name; everything else is not found. One read is cheap,
// so there is no cache.
type SingleFileBackend struct {
	filePath string
	baseName string
}

// NewSingleFile wraps one on-disk document file.
func NewSingleFile(path string) (*SingleFileBackend, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, mderr.NotFound(path)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, mderr.NotFound(path)
	}
	return &SingleFileBackend{
		filePath: abs,
		baseName: filepath.Base(abs),
	}, nil
}

// Read returns the file content when path names the wrapped file.
func (b *SingleFileBackend) Read(path string) (string, error) {
	if NormalizePath(path) != b.baseName {
		return "", mderr.NotFound(path)
	}
	data, err := os.ReadFile(b.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", mderr.NotFound(path)
		}
		return "", err
	}
	return string(data), nil
}

// Exists reports whether path names the wrapped file.
func (b *SingleFileBackend) Exists(path string) bool {
	if NormalizePath(path) != b.baseName {
		return false
	}
	info, err := os.Stat(b.filePath)
	return err == nil && !info.IsDir()
}

// List returns the single file when it matches the filter, else nothing.
func (b *SingleFileBackend) List(pattern string) ([]string, error) {
	if MatchName(pattern, b.baseName) {
		return []string{b.baseName}, nil
	}
	return []string{}, nil
}

// Close is a no-op; there is nothing to release.
func (b *SingleFileBackend) Close() error {
	return nil
}

// IsVirtual reports false: the document is a real on-disk file.
func (b *SingleFileBackend) IsVirtual() bool {
	return false
}

// FilePath returns the absolute path of the wrapped file.
func (b *SingleFileBackend) FilePath() string {
	return b.filePath
}
