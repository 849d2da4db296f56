package chunk

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/iyulab/webflux/content"
	"github.com/iyulab/webflux/markdownconv"
)

// tableListRenderer renders table/list fragments to GFM Markdown for
// DomStructure's typed chunks. A package-level instance is fine: the
// underlying converter holds no per-call state.
var tableListRenderer = markdownconv.New()

// mainContainerSelectors is the priority list DomStructure probes to
// isolate the document's content root, mirroring the teacher extractor's
// semantic-container-first approach (§4.7).
var mainContainerSelectors = []string{"article", "main", "[role='main']", "#content", ".content"}

// excludedSelectors are removed wholesale before traversal (§4.7).
var excludedSelectors = []string{"nav", "header", "footer", "aside", "script", "style", ".ads", ".sidebar"}

// DomStructureStrategy walks the sanitized DOM, tracking a live heading
// path and emitting one chunk per section boundary (splitting oversized
// sections at sentence boundaries), with pre/code, table, and list
// elements each becoming their own typed chunk (§4.7).
type DomStructureStrategy struct{}

func (DomStructureStrategy) Name() string { return "dom_structure" }

func (DomStructureStrategy) Chunk(_ context.Context, c content.ExtractedContent, opts Options) ([]content.Chunk, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(c.RawHTML))
	if err != nil || doc == nil {
		return nil, err
	}

	for _, sel := range excludedSelectors {
		doc.Find(sel).Remove()
	}

	root := mainContainer(doc)
	if root == nil {
		return nil, nil
	}

	w := &domWalker{
		maxSize:          opts.maxSize(),
		sectionSelectors: opts.SectionSelectors,
	}
	w.walk(root)
	w.flushText()

	chunks := mergeShortChunks(w.chunks, opts.minSize())
	return assignSequence(chunks, c.SourceURL), nil
}

func mainContainer(doc *goquery.Document) *html.Node {
	for _, sel := range mainContainerSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s.Nodes[0]
		}
	}
	if body := doc.Find("body").First(); body.Length() > 0 {
		return body.Nodes[0]
	}
	return nil
}

var sectionBoundaryElements = map[string]bool{"section": true, "article": true}

func isSectionBoundary(n *html.Node, extra []string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if sectionBoundaryElements[n.Data] {
		return true
	}
	class := nodeAttr(n, "class")
	if n.Data == "div" {
		for _, field := range strings.Fields(class) {
			if field == "section" {
				return true
			}
		}
	}
	for _, sel := range extra {
		if matchesSimpleSelector(n, sel) {
			return true
		}
	}
	return false
}

// matchesSimpleSelector handles the common ".class" / "tag" forms a
// caller might pass for SectionSelectors, without pulling in a full CSS
// selector engine for this narrow use.
func matchesSimpleSelector(n *html.Node, sel string) bool {
	if strings.HasPrefix(sel, ".") {
		class := nodeAttr(n, "class")
		want := sel[1:]
		for _, field := range strings.Fields(class) {
			if field == want {
				return true
			}
		}
		return false
	}
	return n.Data == sel
}

type domWalker struct {
	maxSize          int
	sectionSelectors []string

	headingPath  []string
	currentTitle string
	buf          strings.Builder
	chunks       []content.Chunk
}

func (w *domWalker) walk(n *html.Node) {
	if n == nil {
		return
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			w.flushText()
			level := int(n.Data[1] - '0')
			w.pushHeading(level, strings.TrimSpace(textContent(n)))
			return
		case "pre", "code":
			if n.Data == "code" && n.Parent != nil && n.Parent.Data == "pre" {
				break // handled by the parent <pre>
			}
			w.flushText()
			w.emitCode(n)
			return
		case "table":
			w.flushText()
			w.emitTable(n)
			return
		case "ul", "ol":
			w.flushText()
			w.emitList(n)
			return
		}

		if isSectionBoundary(n, w.sectionSelectors) {
			w.flushText()
		}
	}

	if n.Type == html.TextNode {
		text := strings.TrimSpace(n.Data)
		if text != "" {
			if w.buf.Len() > 0 {
				w.buf.WriteString(" ")
			}
			w.buf.WriteString(text)
		}
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}

	if n.Type == html.ElementNode && isSectionBoundary(n, w.sectionSelectors) {
		w.flushText()
	}
}

func (w *domWalker) pushHeading(level int, text string) {
	for len(w.headingPath) >= level {
		w.headingPath = w.headingPath[:len(w.headingPath)-1]
	}
	for len(w.headingPath) < level-1 {
		w.headingPath = append(w.headingPath, "")
	}
	w.headingPath = append(w.headingPath, text)
	w.currentTitle = text
}

func (w *domWalker) flushText() {
	text := strings.TrimSpace(w.buf.String())
	w.buf.Reset()
	if text == "" {
		return
	}
	for _, piece := range splitAtSentenceBoundary(text, w.maxSize) {
		w.chunks = append(w.chunks, content.Chunk{
			Content:      piece,
			Type:         content.ChunkTypeText,
			HeadingPath:  append([]string(nil), w.headingPath...),
			SectionTitle: w.currentTitle,
			StrategyName: "dom_structure",
		})
	}
}

func (w *domWalker) emitCode(n *html.Node) {
	w.chunks = append(w.chunks, content.Chunk{
		Content:      textContent(n),
		Type:         content.ChunkTypeCode,
		HeadingPath:  append([]string(nil), w.headingPath...),
		SectionTitle: w.currentTitle,
		StrategyName: "dom_structure",
	})
}

func (w *domWalker) emitTable(n *html.Node) {
	rows := ""
	if md, err := tableListRenderer.RenderNode(n); err == nil {
		rows = markdownconv.NormalizeTableRows(md)
	}
	if strings.TrimSpace(rows) == "" {
		rows = tableTextFallback(n)
	}
	w.chunks = append(w.chunks, content.Chunk{
		Content:      strings.TrimSpace(rows),
		Type:         content.ChunkTypeTable,
		HeadingPath:  append([]string(nil), w.headingPath...),
		SectionTitle: w.currentTitle,
		StrategyName: "dom_structure",
	})
}

// tableTextFallback renders a pipe-joined row dump when the Markdown
// converter can't parse a malformed table, so a table never disappears
// from the chunk stream entirely.
func tableTextFallback(n *html.Node) string {
	var rows []string
	collect := func(tr *html.Node) {
		var cells []string
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
				cells = append(cells, strings.TrimSpace(textContent(c)))
			}
		}
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, " | "))
		}
	}
	forEachChildByTag(n, "tr", collect)
	if len(rows) == 0 {
		for section := n.FirstChild; section != nil; section = section.NextSibling {
			forEachChildByTag(section, "tr", collect)
		}
	}
	return strings.Join(rows, "\n")
}

func (w *domWalker) emitList(n *html.Node) {
	bullets := ""
	if md, err := tableListRenderer.RenderNode(n); err == nil {
		bullets = markdownconv.NormalizeListBullets(md)
	}
	if strings.TrimSpace(bullets) == "" {
		var lines []string
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "li" {
				lines = append(lines, "• "+strings.TrimSpace(textContent(c)))
			}
		}
		bullets = strings.Join(lines, "\n")
	}
	w.chunks = append(w.chunks, content.Chunk{
		Content:      strings.TrimSpace(bullets),
		Type:         content.ChunkTypeList,
		HeadingPath:  append([]string(nil), w.headingPath...),
		SectionTitle: w.currentTitle,
		StrategyName: "dom_structure",
	})
}

func forEachChildByTag(n *html.Node, tag string, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			fn(c)
		}
	}
}

func nodeAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
