// Package markdownconv renders sanitized DOM fragments to GitHub-Flavored
// Markdown using html-to-markdown/v2, grounded on the teacher's
// internal/mdconvert.StrictConversionRule (same plugin stack — base,
// commonmark, table — same semantic-fidelity-over-visual-fidelity
// stance), narrowed from "convert the whole document" to "convert one
// table or list fragment the DOM chunker has already isolated".
package markdownconv

import (
	"fmt"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
)

// Renderer converts html.Node fragments to Markdown. It is safe for
// concurrent use; html-to-markdown/v2's converter holds no per-call state.
type Renderer struct {
	conv *converter.Converter
}

// New builds a Renderer with the base, commonmark, and GFM table plugins —
// the same plugin set the teacher wires for whole-document conversion.
func New() *Renderer {
	return &Renderer{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// RenderNode converts n to Markdown. A nil node renders to "".
func (r *Renderer) RenderNode(n *html.Node) (string, error) {
	if n == nil {
		return "", nil
	}
	md, err := r.conv.ConvertNode(n)
	if err != nil {
		return "", fmt.Errorf("markdownconv: %w", err)
	}
	return string(md), nil
}
