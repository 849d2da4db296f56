// Package config carries the pipeline's three configuration surfaces —
// CrawlConfiguration, ReconstructOptions, ChunkingOptions — generalized
// from the teacher's internal/config DTO-plus-validation pattern: private
// fields, WithX functional-option builders over a default-populated value,
// a Build() that validates, and a JSON configDTO for file-based overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// CrawlConfiguration governs the orchestrator's frontier, fetch, and
// politeness behavior (spec §6).
type CrawlConfiguration struct {
	maxDepth           int
	maxURLs            int
	allowPatterns      []string
	denyPatterns       []string
	sameOrigin         bool
	userAgent          string
	perHostConcurrency int
	globalWorkers      int
	fetchTimeout       time.Duration
	crawlDelay         time.Duration
	retryBudget        int
}

type crawlConfigurationDTO struct {
	MaxDepth           int      `json:"maxDepth,omitempty"`
	MaxURLs            int      `json:"maxUrls,omitempty"`
	AllowPatterns      []string `json:"allowPatterns,omitempty"`
	DenyPatterns       []string `json:"denyPatterns,omitempty"`
	SameOrigin         *bool    `json:"sameOrigin,omitempty"`
	UserAgent          string   `json:"userAgent,omitempty"`
	PerHostConcurrency int      `json:"perHostConcurrency,omitempty"`
	GlobalWorkers      int      `json:"globalWorkers,omitempty"`
	FetchTimeoutMs     int      `json:"fetchTimeoutMs,omitempty"`
	CrawlDelayMs       int      `json:"crawlDelayMs,omitempty"`
	RetryBudget        int      `json:"retryBudget,omitempty"`
}

// DefaultCrawlConfiguration mirrors the teacher's WithDefault: a fully
// populated, immediately usable configuration.
func DefaultCrawlConfiguration() *CrawlConfiguration {
	return &CrawlConfiguration{
		maxDepth:           3,
		maxURLs:            500,
		allowPatterns:      nil,
		denyPatterns:       nil,
		sameOrigin:         true,
		userAgent:          "webflux/1.0",
		perHostConcurrency: 2,
		globalWorkers:      10,
		fetchTimeout:       30 * time.Second,
		crawlDelay:         time.Second,
		retryBudget:        5,
	}
}

func (c *CrawlConfiguration) WithMaxDepth(d int) *CrawlConfiguration           { c.maxDepth = d; return c }
func (c *CrawlConfiguration) WithMaxURLs(n int) *CrawlConfiguration            { c.maxURLs = n; return c }
func (c *CrawlConfiguration) WithAllowPatterns(p []string) *CrawlConfiguration { c.allowPatterns = p; return c }
func (c *CrawlConfiguration) WithDenyPatterns(p []string) *CrawlConfiguration  { c.denyPatterns = p; return c }
func (c *CrawlConfiguration) WithSameOrigin(v bool) *CrawlConfiguration        { c.sameOrigin = v; return c }
func (c *CrawlConfiguration) WithUserAgent(ua string) *CrawlConfiguration     { c.userAgent = ua; return c }
func (c *CrawlConfiguration) WithPerHostConcurrency(n int) *CrawlConfiguration { c.perHostConcurrency = n; return c }
func (c *CrawlConfiguration) WithGlobalWorkers(n int) *CrawlConfiguration     { c.globalWorkers = n; return c }
func (c *CrawlConfiguration) WithFetchTimeout(d time.Duration) *CrawlConfiguration { c.fetchTimeout = d; return c }
func (c *CrawlConfiguration) WithCrawlDelay(d time.Duration) *CrawlConfiguration   { c.crawlDelay = d; return c }
func (c *CrawlConfiguration) WithRetryBudget(n int) *CrawlConfiguration       { c.retryBudget = n; return c }

// Build validates and returns the immutable configuration value.
func (c *CrawlConfiguration) Build() (CrawlConfiguration, error) {
	if c.maxDepth < 0 {
		return CrawlConfiguration{}, fmt.Errorf("config: maxDepth must be >= 0")
	}
	if c.perHostConcurrency < 1 {
		return CrawlConfiguration{}, fmt.Errorf("config: perHostConcurrency must be >= 1")
	}
	if c.globalWorkers < 1 {
		return CrawlConfiguration{}, fmt.Errorf("config: globalWorkers must be >= 1")
	}
	return *c, nil
}

func (c CrawlConfiguration) MaxDepth() int              { return c.maxDepth }
func (c CrawlConfiguration) MaxURLs() int               { return c.maxURLs }
func (c CrawlConfiguration) AllowPatterns() []string    { return append([]string(nil), c.allowPatterns...) }
func (c CrawlConfiguration) DenyPatterns() []string     { return append([]string(nil), c.denyPatterns...) }
func (c CrawlConfiguration) SameOrigin() bool           { return c.sameOrigin }
func (c CrawlConfiguration) UserAgent() string          { return c.userAgent }
func (c CrawlConfiguration) PerHostConcurrency() int    { return c.perHostConcurrency }
func (c CrawlConfiguration) GlobalWorkers() int         { return c.globalWorkers }
func (c CrawlConfiguration) FetchTimeout() time.Duration { return c.fetchTimeout }
func (c CrawlConfiguration) CrawlDelay() time.Duration  { return c.crawlDelay }
func (c CrawlConfiguration) RetryBudget() int           { return c.retryBudget }

// LoadCrawlConfigurationFile reads a JSON crawlConfigurationDTO from path
// and layers it over DefaultCrawlConfiguration, the way the teacher's
// WithConfigFile layers configDTO over WithDefault.
func LoadCrawlConfigurationFile(path string) (CrawlConfiguration, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return CrawlConfiguration{}, fmt.Errorf("config: read crawl config file: %w", err)
	}
	var dto crawlConfigurationDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return CrawlConfiguration{}, fmt.Errorf("config: parse crawl config file: %w", err)
	}
	cfg := DefaultCrawlConfiguration()
	if dto.MaxDepth != 0 {
		cfg.maxDepth = dto.MaxDepth
	}
	if dto.MaxURLs != 0 {
		cfg.maxURLs = dto.MaxURLs
	}
	if len(dto.AllowPatterns) > 0 {
		cfg.allowPatterns = dto.AllowPatterns
	}
	if len(dto.DenyPatterns) > 0 {
		cfg.denyPatterns = dto.DenyPatterns
	}
	if dto.SameOrigin != nil {
		cfg.sameOrigin = *dto.SameOrigin
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if dto.PerHostConcurrency != 0 {
		cfg.perHostConcurrency = dto.PerHostConcurrency
	}
	if dto.GlobalWorkers != 0 {
		cfg.globalWorkers = dto.GlobalWorkers
	}
	if dto.FetchTimeoutMs != 0 {
		cfg.fetchTimeout = time.Duration(dto.FetchTimeoutMs) * time.Millisecond
	}
	if dto.CrawlDelayMs != 0 {
		cfg.crawlDelay = time.Duration(dto.CrawlDelayMs) * time.Millisecond
	}
	if dto.RetryBudget != 0 {
		cfg.retryBudget = dto.RetryBudget
	}
	return cfg.Build()
}
