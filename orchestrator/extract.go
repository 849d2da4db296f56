package orchestrator

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/iyulab/webflux/content"
	"github.com/iyulab/webflux/metaextract"
	"github.com/iyulab/webflux/quality"
)

// mainContentSelectors mirrors chunk.DomStructureStrategy's priority list
// (§4.7) so the orchestrator's main-text extraction agrees with how the
// DomStructure chunker will later walk the same document.
var mainContentSelectors = []string{"article", "main", "[role='main']", "#content", ".content"}

var excludedContentSelectors = []string{"nav", "header", "footer", "aside", "script", "style", ".ads", ".sidebar"}

// extractContent parses rawHTML into a content.ExtractedContent: main
// text/title/headings/images/links via goquery, metadata via
// metaextract.Extract, and quality via quality.Evaluate (§4.5/§4.6).
func extractContent(rawHTML, sourceURL string, isHTTPS bool) (content.ExtractedContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return content.ExtractedContent{}, err
	}

	for _, sel := range excludedContentSelectors {
		doc.Find(sel).Remove()
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	var mainText string
	for _, sel := range mainContentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			mainText = strings.TrimSpace(s.Text())
			break
		}
	}
	if mainText == "" {
		mainText = strings.TrimSpace(doc.Find("body").First().Text())
	}

	headings := collectHeadings(doc)
	images := collectImages(doc, sourceURL)
	links := collectLinks(doc, sourceURL)

	c := content.ExtractedContent{
		SourceURL: sourceURL,
		RawHTML:   rawHTML,
		MainText:  mainText,
		Title:     title,
		Headings:  headings,
		Images:    images,
		Links:     links,
		Metadata:  metaextract.Extract(rawHTML, sourceURL),
	}
	c.Language = c.Metadata.Basic.Lang
	c.Quality = quality.Evaluate(c, rawHTML, isHTTPS)
	return c, nil
}

// resolveHref turns a possibly-relative href into an absolute URL against
// sourceURL, matching metaextract.resolveAgainst's behavior (duplicated
// locally since that helper is unexported in its own package).
func resolveHref(sourceURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(sourceURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func collectHeadings(doc *goquery.Document) []content.Heading {
	var out []content.Heading
	doc.Find("h1,h2,h3,h4,h5,h6").Each(func(_ int, s *goquery.Selection) {
		level := int(s.Nodes[0].Data[1] - '0')
		anchor, _ := s.Attr("id")
		out = append(out, content.Heading{Level: level, Text: strings.TrimSpace(s.Text()), Anchor: anchor})
	})
	return out
}

func collectImages(doc *goquery.Document, sourceURL string) []content.Image {
	var out []content.Image
	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src == "" {
			return
		}
		alt, _ := s.Attr("alt")
		out = append(out, content.Image{
			URL:      resolveHref(sourceURL, src),
			Alt:      alt,
			Position: i,
		})
	})
	return out
}

func collectLinks(doc *goquery.Document, sourceURL string) []content.Link {
	var out []content.Link
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" {
			return
		}
		out = append(out, content.Link{
			URL:  resolveHref(sourceURL, href),
			Text: strings.TrimSpace(s.Text()),
		})
	})
	return out
}
