// Package search implements line-oriented full-text search over whichever
// document backend is active. It builds only on the backend's read/list
// contract, so every source variant is searchable the same way.
package search

import (
	"context"
	"path"
	"strings"

	"github.com/mdserve/mdserve/internal/logging"
	"github.com/mdserve/mdserve/internal/vfs"
)

const (
	// maxMatchesPerFile bounds response size per document.
	maxMatchesPerFile = 5
	// maxLineLength truncates match and context lines.
	maxLineLength = 200
)

// ContextLine is one line of context surrounding a match.
type ContextLine struct {
	LineNumber int    `json:"lineNumber"`
	Text       string `json:"text"`
	IsMatch    bool   `json:"isMatch"`
}

// Match is a single matching line with up to one line of context on each
// side (omitted at file boundaries).
type Match struct {
	LineNumber   int           `json:"lineNumber"`
	Text         string        `json:"text"`
	ContextLines []ContextLine `json:"contextLines"`
}

// FileResult groups the matches found in one document.
type FileResult struct {
	Path      string  `json:"path"`
	FileName  string  `json:"fileName"`
	Directory string  `json:"directory"`
	Matches   []Match `json:"matches"`
}

// Engine scans candidate documents for a query string.
type Engine struct {
	logger logging.Logger
}

// NewEngine creates a search engine.
func NewEngine(logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{logger: logger.WithComponent("search")}
}

// Search lists candidate files via the backend using pattern, scans each
// line-by-line for query as a case-insensitive substring, and returns
// matches in the order List produced (ascending path). Files that fail to
// read are skipped and logged, never fatal to the overall search.
func (e *Engine) Search(backend vfs.Backend, query, pattern string) ([]FileResult, error) {
	results := []FileResult{}
	if strings.TrimSpace(query) == "" {
		return results, nil
	}

	paths, err := backend.List(pattern)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	for _, p := range paths {
		content, err := backend.Read(p)
		if err != nil {
			e.logger.Warn(context.Background(), err, "skipping unreadable document", "path", p)
			continue
		}

		matches := scanContent(content, needle)
		if len(matches) == 0 {
			continue
		}

		results = append(results, FileResult{
			Path:      p,
			FileName:  path.Base(p),
			Directory: directoryOf(p),
			Matches:   matches,
		})
	}
	return results, nil
}

// scanContent finds up to maxMatchesPerFile matching lines in content.
func scanContent(content, needle string) []Match {
	lines := strings.Split(content, "\n")

	var matches []Match
	for i, line := range lines {
		if len(matches) >= maxMatchesPerFile {
			break
		}
		if !strings.Contains(strings.ToLower(line), needle) {
			continue
		}

		match := Match{
			LineNumber: i + 1,
			Text:       truncateLine(line),
		}
		if i > 0 {
			match.ContextLines = append(match.ContextLines, ContextLine{
				LineNumber: i,
				Text:       truncateLine(lines[i-1]),
			})
		}
		match.ContextLines = append(match.ContextLines, ContextLine{
			LineNumber: i + 1,
			Text:       truncateLine(line),
			IsMatch:    true,
		})
		if i+1 < len(lines) {
			match.ContextLines = append(match.ContextLines, ContextLine{
				LineNumber: i + 2,
				Text:       truncateLine(lines[i+1]),
			})
		}
		matches = append(matches, match)
	}
	return matches
}

func truncateLine(line string) string {
	if len(line) <= maxLineLength {
		return line
	}
	return line[:maxLineLength]
}

func directoryOf(p string) string {
	dir := path.Dir(p)
	if dir == "." {
		return ""
	}
	return dir
}
