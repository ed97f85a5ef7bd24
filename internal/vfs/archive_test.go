package vfs

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeka/zip"

	mderr "github.com/mdserve/mdserve/internal/errors"
)

// buildZip assembles an in-memory zip container and returns its parsed file
// handles. An empty password writes plain entries.
func buildZip(t *testing.T, files map[string]string, password string) []*zip.File {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		var (
			entry io.Writer
			err   error
		)
		if password != "" {
			entry, err = w.Encrypt(name, password, zip.AES256Encryption)
		} else {
			entry, err = w.Create(name)
		}
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	reader, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return reader.File
}

func newTestArchive(t *testing.T, files map[string]string, password string) *ArchiveBackend {
	t.Helper()
	zipFiles := buildZip(t, files, password)
	return NewArchive(zipFiles, EntriesFromZip(zipFiles), password, 1024*1024, nil)
}

func TestArchiveReadAndExists(t *testing.T) {
	backend := newTestArchive(t, map[string]string{
		"readme.md":    "# Readme",
		"docs/a.md":    "alpha",
		"docs/sub/":    "",
		"docs/b.txt":   "beta",
		"notes/faq.md": "faq",
	}, "")
	defer backend.Close()

	content, err := backend.Read("docs/a.md")
	require.NoError(t, err)
	assert.Equal(t, "alpha", content)

	// Leading slashes are stripped.
	content, err = backend.Read("/readme.md")
	require.NoError(t, err)
	assert.Equal(t, "# Readme", content)

	assert.True(t, backend.Exists("docs/a.md"))
	assert.False(t, backend.Exists("missing.md"))
	assert.False(t, backend.Exists("docs/sub"), "directory markers are not documents")

	_, err = backend.Read("docs/sub")
	assert.True(t, mderr.IsNotFound(err))
	_, err = backend.Read("missing.md")
	assert.True(t, mderr.IsNotFound(err))
}

func TestArchiveList(t *testing.T) {
	backend := newTestArchive(t, map[string]string{
		"readme.md":  "r",
		"docs/b.MD":  "b",
		"docs/a.md":  "a",
		"docs/c.txt": "c",
		"docs/sub/":  "",
	}, "")
	defer backend.Close()

	paths, err := backend.List("*.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/a.md", "docs/b.MD", "readme.md"}, paths)

	all, err := backend.List("*")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/a.md", "docs/b.MD", "docs/c.txt", "readme.md"}, all)
}

func TestArchiveReadPopulatesCache(t *testing.T) {
	backend := newTestArchive(t, map[string]string{"a.md": "alpha"}, "")
	defer backend.Close()

	assert.Zero(t, backend.CacheUsage())

	_, err := backend.Read("a.md")
	require.NoError(t, err)
	assert.Equal(t, int64(5), backend.CacheUsage())

	// Second read is served from cache and keeps usage unchanged.
	content, err := backend.Read("a.md")
	require.NoError(t, err)
	assert.Equal(t, "alpha", content)
	assert.Equal(t, int64(5), backend.CacheUsage())
}

func TestArchiveEncryptedWithoutPassword(t *testing.T) {
	zipFiles := buildZip(t, map[string]string{"secret.md": "classified"}, "hunter2")
	backend := NewArchive(zipFiles, EntriesFromZip(zipFiles), "", 1024, nil)
	defer backend.Close()

	_, err := backend.Read("secret.md")
	assert.True(t, mderr.IsEncrypted(err))

	// The entry is still listed and reported as existing; only reads fail.
	assert.True(t, backend.Exists("secret.md"))
	paths, err := backend.List("*.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"secret.md"}, paths)
}

func TestArchiveEncryptedReadRoundTrip(t *testing.T) {
	backend := newTestArchive(t, map[string]string{"secret.md": "classified"}, "hunter2")
	defer backend.Close()

	content, err := backend.Read("secret.md")
	require.NoError(t, err)
	assert.Equal(t, "classified", content)
}

func TestArchiveWrongPasswordIsCorrupt(t *testing.T) {
	zipFiles := buildZip(t, map[string]string{"secret.md": "classified"}, "hunter2")
	backend := NewArchive(zipFiles, EntriesFromZip(zipFiles), "wrong", 1024, nil)
	defer backend.Close()

	_, err := backend.Read("secret.md")
	require.Error(t, err)
	assert.True(t, mderr.IsCorrupt(err), "wrong password must fail, never return garbage")
}

func TestArchiveWarmCache(t *testing.T) {
	backend := newTestArchive(t, map[string]string{
		"README.md":    "readme",
		"docs/more.md": "more",
	}, "")
	defer backend.Close()

	backend.WarmCache([]string{"readme.md", "index.md"})
	assert.Equal(t, int64(len("readme")), backend.CacheUsage())
}

func TestArchiveEntriesMetadata(t *testing.T) {
	zipFiles := buildZip(t, map[string]string{"a.md": "alpha", "d/": ""}, "")
	entries := EntriesFromZip(zipFiles)

	byPath := make(map[string]Entry)
	for _, e := range entries {
		byPath[e.Path] = e
	}

	require.Contains(t, byPath, "a.md")
	assert.False(t, byPath["a.md"].Dir)
	assert.False(t, byPath["a.md"].Encrypted)

	require.Contains(t, byPath, "d")
	assert.True(t, byPath["d"].Dir)
}

func TestArchiveCloseIdempotent(t *testing.T) {
	backend := newTestArchive(t, map[string]string{"a.md": "alpha"}, "")

	_, err := backend.Read("a.md")
	require.NoError(t, err)

	assert.NoError(t, backend.Close())
	assert.Zero(t, backend.CacheUsage(), "close clears the cache")
	assert.NoError(t, backend.Close())
}

func TestArchiveIsVirtual(t *testing.T) {
	backend := newTestArchive(t, map[string]string{"a.md": "alpha"}, "")
	defer backend.Close()
	assert.True(t, backend.IsVirtual())
}
