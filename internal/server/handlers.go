package server

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"strings"

	mderr "github.com/mdserve/mdserve/internal/errors"
	"github.com/mdserve/mdserve/internal/renderer"
)

//go:embed static/index.html
var indexPage []byte

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexPage)
}

// handleFiles returns the nested file tree: directories map to subtrees,
// documents map to true.
func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	paths, err := s.backend.List(s.cfg.Documents.Pattern)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	tree := map[string]interface{}{}
	for _, p := range paths {
		node := tree
		parts := strings.Split(p, "/")
		for _, dir := range parts[:len(parts)-1] {
			child, ok := node[dir].(map[string]interface{})
			if !ok {
				child = map[string]interface{}{}
				node[dir] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = true
	}

	s.writeJSON(w, r, tree)
}

// handleFile returns the raw text of one document.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "missing path parameter", http.StatusBadRequest)
		return
	}

	content, err := s.backend.Read(path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(content))
}

// handleHTML returns one document rendered to an HTML fragment.
func (s *Server) handleHTML(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "missing path parameter", http.StatusBadRequest)
		return
	}

	content, err := s.backend.Read(path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	fragment, err := renderer.HTML(content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(fragment))
}

// handleSearch runs the content search engine and serializes its results.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		pattern = s.cfg.Documents.Pattern
	}

	results, err := s.engine.Search(s.backend, query, pattern)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, results)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn(r.Context(), err, "encoding response")
	}
}

// writeError maps the typed failure taxonomy onto HTTP statuses. Failures
// stay in-page: a failed read never crashes the process.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case mderr.IsNotFound(err):
		status = http.StatusNotFound
		message = "document not found"
	case mderr.IsAccessDenied(err):
		status = http.StatusForbidden
		message = "forbidden"
	case mderr.IsEncrypted(err):
		status = http.StatusForbidden
		message = "document is encrypted"
	case mderr.IsCorrupt(err):
		message = "document could not be extracted"
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), err, "request failed", "url", r.URL.String())
	} else {
		s.logger.Debug(r.Context(), "request rejected", "url", r.URL.String(), "status", status)
	}
	http.Error(w, message, status)
}
