package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLHeading(t *testing.T) {
	out, err := HTML("# Title")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "Title")
}

func TestHTMLGFMTable(t *testing.T) {
	out, err := HTML("| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
}

func TestHTMLFencedCodeKeepsLanguage(t *testing.T) {
	out, err := HTML("```mermaid\ngraph TD; A-->B;\n```\n")
	require.NoError(t, err)
	assert.Contains(t, out, "language-mermaid")
	assert.Contains(t, out, "A--&gt;B")
}

func TestHTMLEscapesRawText(t *testing.T) {
	out, err := HTML("before <script>alert(1)</script> after")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>alert(1)</script>")
}

func TestHTMLEmptyInput(t *testing.T) {
	out, err := HTML("")
	require.NoError(t, err)
	assert.Empty(t, out)
}
