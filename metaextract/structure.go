package metaextract

import (
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/iyulab/webflux/content"
)

func extractStructure(doc *goquery.Document) content.DocumentStructure {
	heads := headings(doc)
	text := strings.TrimSpace(doc.Find("body").Text())
	wordCount := len(strings.Fields(text))

	s := content.DocumentStructure{
		Headings:       heads,
		SectionCount:   doc.Find("section").Length(),
		ParagraphCount: doc.Find("p").Length(),
		LinkCount:      doc.Find("a[href]").Length(),
		ImageCount:     doc.Find("img").Length(),
		TableCount:     doc.Find("table").Length(),
		ListCount:      doc.Find("ul, ol").Length(),
		CodeBlockCount: doc.Find("pre, code").Length(),
		ReadingTimeMin: int(math.Ceil(float64(wordCount) / 250.0)),
	}
	s.ComplexityScore = complexityScore(s, wordCount)
	return s
}

// complexityScore blends structural richness (headings, tables, code,
// lists relative to word count) into a [0,1] score used by downstream
// chunking-strategy scoring.
func complexityScore(s content.DocumentStructure, wordCount int) float64 {
	if wordCount == 0 {
		return 0
	}
	density := float64(len(s.Headings)+s.TableCount*2+s.CodeBlockCount*2+s.ListCount) / (float64(wordCount) / 100.0)
	score := density / 5.0
	if score > 1 {
		score = 1
	}
	return score
}
