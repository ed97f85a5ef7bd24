package vfs

import (
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/yeka/zip"

	"github.com/mdserve/mdserve/internal/cache"
	mderr "github.com/mdserve/mdserve/internal/errors"
)

// Entry is the immutable metadata for one member of an opened archive,
// produced once at container-open time.
type Entry struct {
	Path           string
	Dir            bool
	Encrypted      bool
	CompressedSize uint64
}

// EntriesFromZip derives Entry records from an opened zip container.
// Logical paths are slash-normalized with any trailing directory slash
// removed.
func EntriesFromZip(files []*zip.File) []Entry {
	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		entries = append(entries, Entry{
			Path:           strings.TrimSuffix(NormalizePath(f.Name), "/"),
			Dir:            f.FileInfo().IsDir(),
			Encrypted:      f.IsEncrypted(),
			CompressedSize: f.CompressedSize64,
		})
	}
	return entries
}

// ArchiveBackend serves documents out of an opened zip container. Reads go
// through the content cache so each entry is decompressed at most once while
// it stays cached; the cache fast path never touches the container.
type ArchiveBackend struct {
	mu       sync.Mutex
	files    map[string]*zip.File
	entries  []Entry
	password string
	cache    *cache.ContentCache
	closer   io.Closer
	closed   bool
}

// NewArchive constructs a backend from an already-opened container, its
// discovered entries, and an optional password. closer releases the
// container handle on Close and may be nil for in-memory containers.
func NewArchive(files []*zip.File, entries []Entry, password string, cacheBudget int64, closer io.Closer) *ArchiveBackend {
	byPath := make(map[string]*zip.File, len(files))
	for _, f := range files {
		byPath[strings.TrimSuffix(NormalizePath(f.Name), "/")] = f
	}
	return &ArchiveBackend{
		files:    byPath,
		entries:  entries,
		password: password,
		cache:    cache.New(cacheBudget),
		closer:   closer,
	}
}

// Read returns the decoded content of the archive entry at the logical
// path. Reads serialize on the backend mutex, so concurrent callers cannot
// decompress the same entry twice or interleave cache mutation.
func (b *ArchiveBackend) Read(p string) (string, error) {
	logical := NormalizePath(p)

	b.mu.Lock()
	defer b.mu.Unlock()

	if content, ok := b.cache.Get(logical); ok {
		return content, nil
	}

	f, ok := b.files[logical]
	if !ok || f.FileInfo().IsDir() {
		return "", mderr.NotFound(p)
	}

	if f.IsEncrypted() {
		if b.password == "" {
			return "", mderr.Encrypted(p)
		}
		f.SetPassword(b.password)
	}

	rc, err := f.Open()
	if err != nil {
		return "", mderr.Corrupt(p, err)
	}
	data, err := io.ReadAll(rc)
	closeErr := rc.Close()
	if err == nil {
		// CRC verification surfaces at stream close on some entries.
		err = closeErr
	}
	if err != nil {
		return "", mderr.Corrupt(p, err)
	}

	content := string(data)
	b.cache.Put(logical, content, int64(len(content)))
	return content, nil
}

// Exists reports whether a non-directory entry exists at the logical path.
func (b *ArchiveBackend) Exists(p string) bool {
	logical := NormalizePath(p)
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.files[logical]
	return ok && !f.FileInfo().IsDir()
}

// List returns the logical paths of non-directory entries whose file name
// matches the pattern, sorted ascending.
func (b *ArchiveBackend) List(pattern string) ([]string, error) {
	paths := make([]string, 0, len(b.entries))
	for _, e := range b.entries {
		if e.Dir {
			continue
		}
		if MatchName(pattern, path.Base(e.Path)) {
			paths = append(paths, e.Path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// WarmCache best-effort pre-reads entries whose base name matches one of
// the well-known names (case-insensitive, any depth), so the first page
// request does not pay decompression latency. Failures are swallowed.
func (b *ArchiveBackend) WarmCache(names []string) {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[strings.ToLower(n)] = true
	}
	for _, e := range b.entries {
		if e.Dir || !wanted[strings.ToLower(path.Base(e.Path))] {
			continue
		}
		b.Read(e.Path) //nolint:errcheck // pre-cache is best-effort only
	}
}

// Entries returns the immutable entry records discovered at open time.
func (b *ArchiveBackend) Entries() []Entry {
	return b.entries
}

// Close releases the container handle and clears the cache. Idempotent.
func (b *ArchiveBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.cache.Clear()
	if b.closer != nil {
		return b.closer.Close()
	}
	return nil
}

// IsVirtual reports true: entries exist only inside the container.
func (b *ArchiveBackend) IsVirtual() bool {
	return true
}

// CacheUsage exposes the current cache byte usage for logging.
func (b *ArchiveBackend) CacheUsage() int64 {
	return b.cache.Usage()
}
