package markdownconv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parseFragment(t *testing.T, htmlStr string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(htmlStr))
	require.NoError(t, err)
	return doc
}

func TestRenderNode_NilNodeIsEmpty(t *testing.T) {
	r := New()
	out, err := r.RenderNode(nil)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestRenderNode_TableBecomesGFMTable(t *testing.T) {
	r := New()
	doc := parseFragment(t, `<table><tr><th>A</th><th>B</th></tr><tr><td>1</td><td>2</td></tr></table>`)
	out, err := r.RenderNode(doc)
	require.NoError(t, err)
	assert.Contains(t, out, "A")
	assert.Contains(t, out, "---")
}

func TestRenderNode_ListBecomesMarkdownList(t *testing.T) {
	r := New()
	doc := parseFragment(t, `<ul><li>first</li><li>second</li></ul>`)
	out, err := r.RenderNode(doc)
	require.NoError(t, err)
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "second")
}

func TestReparseMarkdown_ExtractsHeadingsAndHTML(t *testing.T) {
	md := "# Title\n\nSome intro text.\n\n## Section One\n\nBody text here.\n"
	html, headings := ReparseMarkdown(md)

	require.Len(t, headings, 2)
	assert.Equal(t, 1, headings[0].Level)
	assert.Equal(t, "Title", headings[0].Text)
	assert.Equal(t, 2, headings[1].Level)
	assert.Equal(t, "Section One", headings[1].Text)
	assert.Contains(t, html, "<h1>")
	assert.Contains(t, html, "<h2>")
}

func TestReparseMarkdown_NoHeadingsReturnsEmptySlice(t *testing.T) {
	_, headings := ReparseMarkdown("just a paragraph, no headings.")
	assert.Empty(t, headings)
}

func TestNormalizeTableRows_DropsSeparatorAndPipeDecoration(t *testing.T) {
	r := New()
	doc := parseFragment(t, `<table><tr><th>Name</th><th>Age</th></tr><tr><td>Ann</td><td>30</td></tr></table>`)
	md, err := r.RenderNode(doc)
	require.NoError(t, err)

	rows := NormalizeTableRows(md)
	assert.Contains(t, rows, "Name | Age")
	assert.Contains(t, rows, "Ann | 30")
	assert.NotContains(t, rows, "---")
	for _, line := range strings.Split(rows, "\n") {
		assert.False(t, strings.HasPrefix(line, "|"), "leading pipe kept: %q", line)
		assert.False(t, strings.HasSuffix(line, "|"), "trailing pipe kept: %q", line)
	}
}

func TestNormalizeListBullets_FlattensOrderedAndUnorderedMarkers(t *testing.T) {
	r := New()
	ul := parseFragment(t, `<ul><li>one</li><li>two</li></ul>`)
	md, err := r.RenderNode(ul)
	require.NoError(t, err)
	assert.Equal(t, "• one\n• two", NormalizeListBullets(md))

	ol := parseFragment(t, `<ol><li>first</li><li>second</li></ol>`)
	md, err = r.RenderNode(ol)
	require.NoError(t, err)
	assert.Equal(t, "• first\n• second", NormalizeListBullets(md))
}
