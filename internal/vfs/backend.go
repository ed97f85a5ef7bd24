// Package vfs provides the uniform virtual file access layer over the three
// document sources mdserve can serve: a single file, a disk directory tree,
// and a zip archive. Every consumer (page serving, search, packing checks)
// programs against the Backend interface and never learns which variant is
// active.
package vfs

import "strings"

// Backend is the uniform contract over a document source.
//
// Logical paths are forward-slash-separated and relative to the source root;
// leading slashes are stripped before any lookup. Implementations guarantee
// a path never resolves outside their root.
type Backend interface {
	// Read returns the text content of the document at the logical path.
	// Failures carry the typed categories of the errors package: not found,
	// access denied, encrypted, or corrupt.
	Read(path string) (string, error)

	// Exists reports whether a document exists at the logical path.
	Exists(path string) bool

	// List returns the logical paths of all documents whose file name
	// matches the filter pattern, sorted ascending. The ordering is
	// deterministic across calls for a static source.
	List(pattern string) ([]string, error)

	// Close releases any open container handle and clears any cache.
	// Idempotent: calling it twice is not an error.
	Close() error

	// IsVirtual reports whether documents exist only inside a container,
	// meaning on-disk metadata (size, modification time) is unavailable.
	IsVirtual() bool
}

// Compile-time interface compliance for the three variants.
var (
	_ Backend = (*SingleFileBackend)(nil)
	_ Backend = (*DiskBackend)(nil)
	_ Backend = (*ArchiveBackend)(nil)
)

// NormalizePath strips leading slashes from a logical path. Lookups across
// all variants run on the normalized form.
func NormalizePath(path string) string {
	return strings.TrimLeft(path, "/")
}
