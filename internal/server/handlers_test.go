package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdserve/mdserve/internal/config"
	"github.com/mdserve/mdserve/internal/search"
	"github.com/mdserve/mdserve/internal/vfs"
)

// newTestServer builds a server over a disk backend seeded with files.
func newTestServer(t *testing.T, files map[string]string) *Server {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0644))
	}

	backend, err := vfs.NewDisk(root, ".mdignore")
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	return New(config.Default(), backend, nil)
}

func doRequest(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t, map[string]string{"a.md": "x"})

	rec := doRequest(t, s, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<html")
}

func TestUnknownPathIs404(t *testing.T) {
	s := newTestServer(t, map[string]string{"a.md": "x"})
	rec := doRequest(t, s, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFileTree(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"guide.md":        "g",
		"docs/install.md": "i",
		"docs/sub/faq.md": "f",
		"skip.txt":        "not a doc",
	})

	rec := doRequest(t, s, "/api/files")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var tree map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))

	assert.Equal(t, true, tree["guide.md"])
	assert.NotContains(t, tree, "skip.txt")

	docs, ok := tree["docs"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, docs["install.md"])

	sub, ok := docs["sub"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, sub["faq.md"])
}

func TestFileContent(t *testing.T) {
	s := newTestServer(t, map[string]string{"docs/a.md": "# Alpha\n"})

	rec := doRequest(t, s, "/api/file?path=docs/a.md")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# Alpha\n", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestFileErrorMapping(t *testing.T) {
	s := newTestServer(t, map[string]string{"a.md": "x"})

	testCases := []struct {
		name   string
		target string
		status int
	}{
		{"missing path parameter", "/api/file", http.StatusBadRequest},
		{"not found", "/api/file?path=missing.md", http.StatusNotFound},
		{"traversal forbidden", "/api/file?path=..%2F..%2Fetc%2Fpasswd", http.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, s, tc.target)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRenderedHTML(t *testing.T) {
	s := newTestServer(t, map[string]string{"a.md": "# Heading\n"})

	rec := doRequest(t, s, "/api/html?path=a.md")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1")
}

func TestSearchAPI(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"a.md": "# Title\nintro\nalpha beta\n",
		"b.md": "nothing here\n",
	})

	rec := doRequest(t, s, "/api/search?q=alpha")
	require.Equal(t, http.StatusOK, rec.Code)

	var results []search.FileResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "a.md", results[0].Path)
	require.Len(t, results[0].Matches, 1)
	assert.Equal(t, 3, results[0].Matches[0].LineNumber)
}

func TestSearchAPIEmptyQuery(t *testing.T) {
	s := newTestServer(t, map[string]string{"a.md": "content"})

	rec := doRequest(t, s, "/api/search?q=")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
