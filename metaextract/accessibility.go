package metaextract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/iyulab/webflux/content"
)

func extractAccessibility(doc *goquery.Document, structure content.DocumentStructure) content.Accessibility {
	totalImgs := doc.Find("img").Length()
	imgsWithAlt := doc.Find("img[alt]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		alt, _ := s.Attr("alt")
		return strings.TrimSpace(alt) != ""
	}).Length()

	coverage := 1.0
	if totalImgs > 0 {
		coverage = float64(imgsWithAlt) / float64(totalImgs)
	}

	hierOK := headingHierarchyValid(structure.Headings)
	skipNav := hasSkipNav(doc)
	ariaCount := doc.Find("[aria-label], [aria-labelledby], [aria-describedby], [role]").Length()

	ariaSub := float64(ariaCount) / 5.0
	if ariaSub > 1 {
		ariaSub = 1
	}
	hierSub, skipSub := 0.0, 0.0
	if hierOK {
		hierSub = 1
	}
	if skipNav {
		skipSub = 1
	}

	score := 40*coverage + 25*hierSub + 15*skipSub + 20*ariaSub
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return content.Accessibility{
		AltTextCoverage:    coverage,
		HeadingHierarchyOK: hierOK,
		HasSkipNav:         skipNav,
		AriaUsageCount:     ariaCount,
		Score:              score,
	}
}

// headingHierarchyValid holds iff the first heading is h1 and no
// subsequent heading skips a level downward (e.g. h2 -> h4 is invalid,
// h4 -> h2 is fine).
func headingHierarchyValid(headings []content.Heading) bool {
	if len(headings) == 0 {
		return true
	}
	if headings[0].Level != 1 {
		return false
	}
	for i := 1; i < len(headings); i++ {
		if headings[i].Level > headings[i-1].Level+1 {
			return false
		}
	}
	return true
}

func hasSkipNav(doc *goquery.Document) bool {
	found := false
	doc.Find("a[href^='#']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(s.Text()))
		if strings.Contains(text, "skip to") || strings.Contains(text, "skip navigation") || strings.Contains(text, "skip nav") {
			found = true
			return false
		}
		return true
	})
	return found
}
