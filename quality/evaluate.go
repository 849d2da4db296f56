// Package quality implements the Content Quality Evaluator (§4.6): a set
// of stateless keyword/ratio heuristics over (ExtractedContent, raw HTML)
// producing the content.QualityInfo bundle. It has no direct teacher
// counterpart — it is grounded on the teacher's keyword/pattern-matching
// idiom in internal/extractor/dom.go (hasChromeAttribute's lowercase-
// and-substring-match style) applied to a new domain.
package quality

import (
	"math"
	"strings"
	"unicode"

	"github.com/iyulab/webflux/content"
)

var paywallKeywords = []string{
	"subscribe to continue", "subscription required", "paywall",
	"become a member", "members only", "premium content",
	"se abonner pour continuer", "abonnement requis",
	"abonnieren sie", "mitgliederbereich",
	"订阅以继续", "会员专享",
	"구독하려면", "구독 후 이용", "구독이 필요합니다", "유료 회원",
}

var loginKeywords = []string{
	"please log in", "sign in to continue", "login required",
	"please sign in", "create an account to continue",
	"로그인하세요", "로그인이 필요합니다", "로그인 후 이용",
}

var ageKeywords = []string{
	"age verification", "must be 18", "must be 21",
	"confirm your age", "adults only",
}

var citationKeywords = []string{
	"references", "bibliography", "works cited", "citations",
}

var adIndicatorTokens = []string{
	"adsbygoogle", "advertisement", "sponsored", "ad-slot", "ad-container",
}

type typePattern struct {
	ct       content.ContentType
	keywords []string
}

var contentTypePatterns = []typePattern{
	{content.ContentTypeDocumentation, []string{"docs", "documentation", "api reference", "guide", "manual"}},
	{content.ContentTypeBlog, []string{"blog", "posted by", "/blog/"}},
	{content.ContentTypeArticle, []string{"article", "news", "published"}},
	{content.ContentTypeProduct, []string{"product", "buy now", "add to cart", "price"}},
	{content.ContentTypeForum, []string{"forum", "thread", "reply", "posted on"}},
}

// Evaluate computes the QualityInfo for c given its raw HTML (used for
// keyword/density checks that the extracted main text alone can't answer).
func Evaluate(c content.ExtractedContent, rawHTML string, isHTTPS bool) content.QualityInfo {
	htmlLower := strings.ToLower(rawHTML)
	textLower := strings.ToLower(c.MainText)
	combined := htmlLower + " " + textLower

	words := len(strings.Fields(c.MainText))
	hasPaywall := containsAny(combined, paywallKeywords) ||
		(len(c.MainText) < 500 && strings.Contains(htmlLower, "subscribe"))

	info := content.QualityInfo{
		ContentType:       classifyContentType(c.Title, c.MainText, c.SourceURL),
		Language:          detectLanguage(c.MainText),
		ReadingMinutes:    int(math.Ceil(float64(words) / 250.0)),
		WordCount:         words,
		HasPaywall:        hasPaywall,
		RequiresLogin:     containsAny(combined, loginKeywords),
		AgeRestricted:     containsAny(combined, ageKeywords),
		HasStructuredData: c.Metadata.SchemaOrg.MainEntityType != "" || len(c.Metadata.SchemaOrg.RawJSONLD) > 0,
		HasAuthor:         c.Metadata.Basic.Author != "" || (c.Metadata.SchemaOrg.Article != nil && c.Metadata.SchemaOrg.Article.Author != ""),
		HasCitations:      containsAny(combined, citationKeywords),
		IsHTTPS:           isHTTPS,
	}

	if c.Metadata.SchemaOrg.Article != nil {
		info.PublishDate = c.Metadata.SchemaOrg.Article.DatePublished
	}

	info.AdDensity = adDensity(htmlLower)
	info.ContentHTMLRatio = contentRatio(c.MainText, rawHTML)
	info.EstimatedTokens = estimatedTokens(c.MainText)
	info.NoiseRatio = 1 - info.ContentHTMLRatio
	if info.ContentHTMLRatio == 0 && len(rawHTML) == 0 {
		info.NoiseRatio = 0
	}

	hasMetadata := c.Metadata.Basic.Title != "" || c.Metadata.Basic.Description != "" ||
		c.Metadata.OpenGraph.Title != "" || c.Metadata.SchemaOrg.MainEntityType != ""

	info.Overall = overallScore(info, words, len(c.Headings), hasMetadata)
	info.LLMSuitability = llmSuitability(info, words)

	return info
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func classifyContentType(title, mainText, sourceURL string) content.ContentType {
	haystack := strings.ToLower(title + " " + mainText + " " + sourceURL)
	for _, p := range contentTypePatterns {
		if containsAny(haystack, p.keywords) {
			return p.ct
		}
	}
	return content.ContentTypeGeneral
}

// detectLanguage counts Korean/Chinese/Japanese glyphs and applies a
// fixed precedence (Korean, then Chinese, then Japanese) when more than
// one script crosses the 0.1 ratio threshold.
func detectLanguage(text string) string {
	var total, korean, chinese, japanese int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		switch {
		case r >= 0xAC00 && r <= 0xD7A3:
			korean++
		case r >= 0x4E00 && r <= 0x9FFF:
			chinese++
		case unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r):
			japanese++
		}
	}
	if total == 0 {
		return "en"
	}
	if float64(korean)/float64(total) > 0.1 {
		return "ko"
	}
	if float64(chinese)/float64(total) > 0.1 {
		return "zh"
	}
	if float64(japanese)/float64(total) > 0.1 {
		return "ja"
	}
	return "en"
}

func adDensity(htmlLower string) float64 {
	count := 0
	for _, tok := range adIndicatorTokens {
		count += strings.Count(htmlLower, tok)
	}
	count += countAdTags(htmlLower)
	d := float64(count) / 20.0
	if d > 1 {
		d = 1
	}
	return d
}

var adNetworkMarkers = []string{"adsense", "doubleclick", "googlesyndication"}

func countAdTags(htmlLower string) int {
	count := 0
	for _, tag := range []string{"<ins", "<iframe"} {
		start := 0
		for {
			idx := strings.Index(htmlLower[start:], tag)
			if idx < 0 {
				break
			}
			abs := start + idx
			end := strings.Index(htmlLower[abs:], ">")
			if end < 0 {
				break
			}
			tagContent := htmlLower[abs : abs+end]
			if containsAny(tagContent, adNetworkMarkers) {
				count++
			}
			start = abs + end + 1
		}
	}
	return count
}

func contentRatio(mainText, rawHTML string) float64 {
	if len(mainText) == 0 || len(rawHTML) == 0 {
		return 0
	}
	r := 3 * float64(len(mainText)) / float64(len(rawHTML))
	if r > 1 {
		r = 1
	}
	return r
}

func estimatedTokens(text string) int {
	latin, cjk := 0, 0
	for _, r := range text {
		switch {
		case r >= 0xAC00 && r <= 0xD7A3, r >= 0x4E00 && r <= 0x9FFF,
			unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r):
			cjk++
		default:
			latin++
		}
	}
	return int(float64(latin)/4.0 + float64(cjk)/1.5)
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func overallScore(info content.QualityInfo, words, headingCount int, hasMetadata bool) float64 {
	score := 0.5
	if info.HasPaywall {
		score -= 0.3
	}
	if info.RequiresLogin {
		score -= 0.2
	}
	score -= 0.2 * info.AdDensity
	score += 0.2 * info.ContentHTMLRatio

	switch {
	case words >= 100 && words <= 5000:
		score += 0.1
	case words > 5000:
		score += 0.05
	}
	if headingCount >= 2 {
		score += 0.05
	}
	if hasMetadata {
		score += 0.05
	}
	return clip01(score)
}

func llmSuitability(info content.QualityInfo, words int) float64 {
	score := 0.5
	score += 0.3 * info.ContentHTMLRatio
	score -= 0.2 * info.AdDensity

	switch {
	case words >= 500 && words <= 3000:
		score += 0.2
	case words < 500:
		score -= 0.1
	}

	switch {
	case info.EstimatedTokens <= 8000:
		score += 0.1
	case info.EstimatedTokens > 32000:
		score -= 0.2
	}

	return clip01(score)
}
