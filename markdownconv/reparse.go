package markdownconv

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"

	"github.com/iyulab/webflux/content"
)

// ReparseMarkdown turns a Reconstruct strategy's Markdown output back into
// HTML plus a heading skeleton, grounded on the teacher's
// internal/normalize.MarkdownConstraint (same parser.New()+ast.WalkFunc
// heading walk), so a Summarize/Rewrite/Expand/Enrich result can flow
// through the same DomStructure chunker as an ordinary fetched page
// instead of needing a parallel Markdown-native chunking path.
func ReparseMarkdown(text string) (rawHTML string, headings []content.Heading) {
	p := parser.New()
	doc := markdown.Parse([]byte(text), p)

	ast.WalkFunc(doc, func(n ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		if h, ok := n.(*ast.Heading); ok {
			headings = append(headings, content.Heading{
				Level: h.Level,
				Text:  headingText(h),
			})
		}
		return ast.GoToNext
	})

	html := markdown.ToHTML([]byte(text), p, nil)
	return string(html), headings
}

func headingText(h *ast.Heading) string {
	var out string
	ast.WalkFunc(h, func(n ast.Node, entering bool) ast.WalkStatus {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				out += string(t.Literal)
			}
		}
		return ast.GoToNext
	})
	return out
}
