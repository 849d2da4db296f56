// Package tokencount implements the Token Counter (§4.4): model-family
// length heuristics, a bounded fingerprinted cache, token-budget
// truncation, and per-model usage statistics. It has no teacher
// counterpart (the teacher repo never counted tokens); it is grounded on
// the teacher's general "small stateless estimator + bounded cache"
// shape, reusing pkg/hashutil's blake3 hashing for cache fingerprints
// instead of the collision-prone short-prefix approach it warns against.
package tokencount

import (
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/iyulab/webflux/pkg/hashutil"
)

// Model is a model-family identifier understood by the built-in
// heuristics. Unknown models fall back to the generic heuristic.
type Model string

const (
	ModelGPT3      Model = "gpt-3"
	ModelGPT4      Model = "gpt-4"
	ModelGPT4Turbo Model = "gpt-4-turbo"
	ModelClaude    Model = "claude"
	ModelLlama2    Model = "llama-2"
	ModelLlama3    Model = "llama-3"
	ModelGeneric   Model = "generic"
)

var charsPerToken = map[Model]float64{
	ModelGPT3:      4.0,
	ModelGPT4:      3.5,
	ModelGPT4Turbo: 3.8,
	ModelClaude:    3.5,
	ModelLlama2:    3.0,
	ModelLlama3:    3.2,
}

// cjkRatioThreshold is the minimum fraction of CJK runes in text before the
// CJK-aware estimate is blended in (§4.4 "when mixed with Latin text").
const cjkRatioThreshold = 0.1

// Counter is the Token Counter: a bounded, fingerprinted cache over the
// family heuristics plus per-model statistics.
type Counter struct {
	mu         sync.Mutex
	cache      map[cacheKey]int
	order      []cacheKey
	maxEntries int
	stats      map[Model]*modelStats
}

type cacheKey struct {
	model       Model
	fingerprint string
}

type modelStats struct {
	requests   int64
	cacheHits  int64
	cacheMiss  int64
	totalToken int64
}

// DefaultCacheSize is §4.4's default bounded cache size.
const DefaultCacheSize = 10000

func New() *Counter {
	return NewWithCacheSize(DefaultCacheSize)
}

func NewWithCacheSize(maxEntries int) *Counter {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheSize
	}
	return &Counter{
		cache:      make(map[cacheKey]int),
		maxEntries: maxEntries,
		stats:      make(map[Model]*modelStats),
	}
}

// fingerprint distinguishes short and long texts and never collides
// across models (the model is part of cacheKey, not the fingerprint
// itself): short texts (<=256 bytes) use the literal text so near-
// duplicates with identical content still hit the cache without hashing
// overhead; longer texts use a blake3 hash plus length, since length
// alone cannot disambiguate same-length different-content strings.
func fingerprint(text string) string {
	if len(text) <= 256 {
		return "lit:" + text
	}
	sum, _ := hashutil.HashBytes([]byte(text), hashutil.HashAlgoBLAKE3)
	return "h:" + sum + ":" + strconv.Itoa(len(text))
}

func (c *Counter) statsFor(model Model) *modelStats {
	s, ok := c.stats[model]
	if !ok {
		s = &modelStats{}
		c.stats[model] = s
	}
	return s
}

// CountTokens estimates the token count of text for model, using the
// bounded cache.
func (c *Counter) CountTokens(text string, model Model) int {
	key := cacheKey{model: model, fingerprint: fingerprint(text)}

	c.mu.Lock()
	s := c.statsFor(model)
	s.requests++
	if n, ok := c.cache[key]; ok {
		s.cacheHits++
		c.mu.Unlock()
		return n
	}
	s.cacheMiss++
	c.mu.Unlock()

	n := estimate(text, model)

	c.mu.Lock()
	s.totalToken += int64(n)
	c.put(key, n)
	c.mu.Unlock()

	return n
}

func (c *Counter) put(key cacheKey, n int) {
	if _, exists := c.cache[key]; !exists {
		if len(c.order) >= c.maxEntries {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.cache, oldest)
		}
		c.order = append(c.order, key)
	}
	c.cache[key] = n
}

// estimate applies the §4.4 model-family heuristics.
func estimate(text string, model Model) int {
	if text == "" {
		return 0
	}

	cjkCount, totalRunes := 0, 0
	for _, r := range text {
		totalRunes++
		if isCJK(r) {
			cjkCount++
		}
	}
	cjkRatio := 0.0
	if totalRunes > 0 {
		cjkRatio = float64(cjkCount) / float64(totalRunes)
	}

	if cjkRatio >= cjkRatioThreshold {
		latinRunes := totalRunes - cjkCount
		cjkTokens := math.Ceil(float64(cjkCount) / 1.5)
		latinTokens := genericEstimate(stripCJK(text))
		if latinRunes == 0 {
			return int(cjkTokens)
		}
		return int(cjkTokens) + latinTokens
	}

	if model == ModelGeneric || model == "" {
		return genericEstimate(text)
	}
	if divisor, ok := charsPerToken[model]; ok {
		return int(math.Ceil(float64(len(text)) / divisor))
	}
	return genericEstimate(text)
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r)
}

func stripCJK(text string) string {
	var b strings.Builder
	for _, r := range text {
		if !isCJK(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// genericEstimate counts words plus standalone punctuation marks.
func genericEstimate(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			inWord = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if !inWord {
				count++
				inWord = true
			}
		default:
			inWord = false
			count++ // standalone punctuation mark
		}
	}
	return count
}

// TruncateToTokenLimit trims text to approximately n tokens for model,
// applying a 10% safety margin and preferring a whitespace boundary.
func (c *Counter) TruncateToTokenLimit(text string, n int, model Model) string {
	if n <= 0 {
		return ""
	}
	total := c.CountTokens(text, model)
	if total <= n {
		return text
	}

	target := int(float64(n) * 0.9)
	if target <= 0 {
		target = 1
	}

	lo, hi := 0, len(text)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if c.CountTokens(text[:mid], model) <= target {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	cut := lo
	if cut < len(text) {
		if idx := strings.LastIndexFunc(text[:cut], unicode.IsSpace); idx > 0 {
			cut = idx
		}
	}
	return strings.TrimRight(text[:cut], " \t\n\r")
}

// Statistics is the per-model usage summary of §4.4.
type Statistics struct {
	Model      Model
	Requests   int64
	CacheHits  int64
	CacheMiss  int64
	TotalTokens int64
	MeanTokens float64
}

// Stats returns the statistics for model, or for every model with data
// when model is empty.
func (c *Counter) Stats(model Model) []Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Statistics
	for m, s := range c.stats {
		if model != "" && m != model {
			continue
		}
		mean := 0.0
		if s.requests > 0 {
			mean = float64(s.totalToken) / float64(s.requests)
		}
		out = append(out, Statistics{
			Model: m, Requests: s.requests, CacheHits: s.cacheHits,
			CacheMiss: s.cacheMiss, TotalTokens: s.totalToken, MeanTokens: mean,
		})
	}
	return out
}
