// Package metaextract implements the Metadata Extractor (§4.5): it parses
// an HTML document into the content.MetadataBundle — basic tags,
// OpenGraph, Twitter Cards, Schema.org JSON-LD, Dublin Core, document
// structure, and accessibility — plus the bundle's own weighted quality
// score. It is grounded on the teacher's internal/extractor package for
// DOM-walking idiom (goquery over golang.org/x/net/html) generalized from
// "find the main content container" to "mine every metadata family".
package metaextract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/iyulab/webflux/content"
)

// Extract parses rawHTML and returns the full metadata bundle for
// baseURL (used to resolve relative canonical/alternate URLs).
// Malformed JSON-LD blocks are skipped silently; extraction never fails.
func Extract(rawHTML, baseURL string) content.MetadataBundle {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil || doc == nil {
		return content.MetadataBundle{}
	}

	bundle := content.MetadataBundle{
		Basic:     extractBasic(doc, baseURL),
		OpenGraph: extractOpenGraph(doc),
		Twitter:   extractTwitter(doc),
		SchemaOrg: extractSchemaOrg(doc),
		DublinCore: extractDublinCore(doc),
		Structure: extractStructure(doc),
	}
	bundle.Accessibility = extractAccessibility(doc, bundle.Structure)
	bundle.QualityScore = scoreBundle(bundle)
	return bundle
}

// headings walks the document in order, returning every h1-h6 with its
// anchor taken from the element's own id (empty when it has none;
// ancestor ids are not consulted).
func headings(doc *goquery.Document) []content.Heading {
	var out []content.Heading
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		level := int(s.Get(0).Data[1] - '0')
		anchor, _ := s.Attr("id")
		out = append(out, content.Heading{
			Level:  level,
			Text:   strings.TrimSpace(s.Text()),
			Anchor: anchor,
		})
	})
	return out
}

func attrOr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return v
}

func nodeAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}
