// Package renderer converts markdown document text into HTML fragments for
// the viewer page. Diagram code blocks (mermaid) pass through as fenced code
// so the client-side diagram renderer can pick them up.
package renderer

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// markdownInstance is initialized once and reused. The converter
// configuration never changes and goldmark.Markdown is safe to share;
// per-call state lives in the Convert invocation.
var (
	markdownInstance goldmark.Markdown
	markdownOnce     sync.Once
)

func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.DefinitionList,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
			),
		)
	})
	return markdownInstance
}

// HTML converts markdown source text to an HTML fragment.
func HTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := getMarkdown().Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}
