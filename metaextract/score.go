package metaextract

import "github.com/iyulab/webflux/content"

// scoreBundle computes the bundle-level QualityScore of §4.5: a weighted
// sum of five presence-checklist sub-scores, each already clipped to
// [0,1] by construction (count-present / count-checked).
func scoreBundle(b content.MetadataBundle) float64 {
	basic := basicSubScore(b.Basic)
	og := openGraphSubScore(b.OpenGraph)
	schema := schemaSubScore(b.SchemaOrg)
	structure := structureSubScore(b.Structure)
	technical := technicalSubScore(b.Basic)
	accessibility := b.Accessibility.Score / 100.0

	score := 0.25*basic + 0.20*og + 0.20*schema + 0.15*structure + 0.10*technical + 0.10*accessibility
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

func ratio(present, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(present) / float64(total)
}

func basicSubScore(m content.BasicMeta) float64 {
	checks := []bool{
		m.Title != "",
		m.Description != "",
		len(m.Keywords) > 0,
		m.Author != "",
		m.Canonical != "",
	}
	return ratio(countTrue(checks), len(checks))
}

func technicalSubScore(m content.BasicMeta) float64 {
	checks := []bool{
		m.Lang != "",
		m.Charset != "",
		m.Viewport != "",
		m.ThemeColor != "",
		len(m.Alternates) > 0,
	}
	return ratio(countTrue(checks), len(checks))
}

func openGraphSubScore(og content.OpenGraph) float64 {
	checks := []bool{
		og.Title != "",
		og.Type != "",
		og.Image != "",
		og.URL != "",
		og.SiteName != "",
		og.Description != "",
	}
	return ratio(countTrue(checks), len(checks))
}

func schemaSubScore(s content.SchemaOrg) float64 {
	checks := []bool{
		s.MainEntityType != "",
		s.Article != nil || s.Organization != nil || s.Person != nil || s.Software != nil || s.Product != nil || s.WebSite != nil,
		len(s.Breadcrumbs) > 0,
		len(s.FAQs) > 0,
		len(s.RawJSONLD) > 0,
	}
	return ratio(countTrue(checks), len(checks))
}

func structureSubScore(s content.DocumentStructure) float64 {
	checks := []bool{
		len(s.Headings) > 0,
		s.ParagraphCount > 0,
		s.SectionCount > 0 || s.ListCount > 0 || s.TableCount > 0,
		s.ReadingTimeMin > 0,
	}
	return ratio(countTrue(checks), len(checks))
}

func countTrue(checks []bool) int {
	n := 0
	for _, c := range checks {
		if c {
			n++
		}
	}
	return n
}
