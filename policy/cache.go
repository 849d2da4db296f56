// Package policy implements the Policy Cache (§4.1): per-host robots.txt
// and web-app-manifest retrieval, parsing, TTL caching, and the allow/deny
// decision used by the orchestrator's admission choke point before a URL
// is ever enqueued. It is grounded on the teacher repo's internal/robots
// package (fetcher.go, mapper.go, data.go, cache/) generalized to also
// cover manifests, Request-rate/Visit-time and sitemap discovery.
package policy

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iyulab/webflux/capability"
	"github.com/iyulab/webflux/pkg/failure"
	"github.com/iyulab/webflux/pkg/retry"
	"github.com/iyulab/webflux/pkg/timeutil"
)

const (
	// DefaultTTL is how long a host's policy snapshot is trusted before a
	// fresh fetch is attempted (§4.1).
	DefaultTTL = 4 * time.Hour

	defaultUserAgent = "WebFluxBot/1.0 (+https://github.com/iyulab/webflux)"
)

// Cache is the Policy Cache: an in-memory, TTL-bounded, at-most-one-
// fetch-in-flight store of per-host robots/manifest snapshots.
type Cache struct {
	http      capability.HTTPDoer
	userAgent string
	ttl       time.Duration
	retryParam retry.RetryParam
	now       func() time.Time

	mu        sync.RWMutex
	snapshots map[string]Snapshot

	sf singleflight.Group
}

// Option configures a Cache at construction time.
type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

func WithUserAgent(ua string) Option {
	return func(c *Cache) { c.userAgent = ua }
}

func WithRetryParam(p retry.RetryParam) Option {
	return func(c *Cache) { c.retryParam = p }
}

// WithClock overrides the cache's notion of "now", for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func NewCache(httpDoer capability.HTTPDoer, opts ...Option) *Cache {
	c := &Cache{
		http:      httpDoer,
		userAgent: defaultUserAgent,
		ttl:       DefaultTTL,
		now:       time.Now,
		snapshots: make(map[string]Snapshot),
		retryParam: retry.NewRetryParam(
			500*time.Millisecond,
			200*time.Millisecond,
			0,
			3,
			timeutil.NewBackoffParam(500*time.Millisecond, 2.0, 10*time.Second),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the policy snapshot for the host of rawURL, fetching and
// caching it if absent or expired. Concurrent callers for the same host
// share a single in-flight fetch (singleflight), so a burst of admission
// checks for the same host never issues more than one robots.txt request.
func (c *Cache) Get(ctx context.Context, rawURL string) (Snapshot, failure.ClassifiedError) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return Snapshot{}, failure.New(failure.KindParseError, failure.SeverityRecoverable, "invalid URL for policy lookup: "+rawURL)
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	key := scheme + "://" + u.Host

	if snap, ok := c.lookup(key); ok {
		return snap, nil
	}

	result, err2, _ := c.sf.Do(key, func() (interface{}, error) {
		snap := c.fetch(ctx, scheme, u.Host)
		c.store(key, snap)
		return snap, nil
	})
	if err2 != nil {
		return Snapshot{}, failure.Wrap(failure.KindInternal, failure.SeverityRecoverable, "policy fetch failed", err2)
	}
	return result.(Snapshot), nil
}

// Decide answers whether agent may fetch path on host, using the cached
// (or freshly fetched) snapshot.
func (c *Cache) Decide(ctx context.Context, rawURL, agent string) (Decision, failure.ClassifiedError) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Decision{}, failure.New(failure.KindParseError, failure.SeverityRecoverable, "invalid URL for decision: "+rawURL)
	}
	snap, cerr := c.Get(ctx, rawURL)
	if cerr != nil {
		return Decision{}, cerr
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return IsAllowed(snap.Robots, agent, path), nil
}

func (c *Cache) lookup(key string) (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.snapshots[key]
	if !ok || snap.Expired(c.ttl, c.now()) {
		return Snapshot{}, false
	}
	return snap, true
}

func (c *Cache) store(key string, snap Snapshot) {
	c.mu.Lock()
	c.snapshots[key] = snap
	c.mu.Unlock()
}

// fetch builds a fresh Snapshot for host, always returning a usable
// (possibly permissive or conservative default) result: robots/manifest
// fetch failures never propagate as hard errors, per §4.1's fallback
// rules.
func (c *Cache) fetch(ctx context.Context, scheme, host string) Snapshot {
	robotsURL := scheme + "://" + host + "/robots.txt"
	robots := c.fetchRobots(ctx, robotsURL, scheme, host)
	manifest := c.fetchManifest(ctx, scheme, host, robots)

	return Snapshot{
		Host:      host,
		Robots:    robots,
		Manifest:  manifest,
		FetchedAt: c.now(),
	}
}

func (c *Cache) fetchRobots(ctx context.Context, robotsURL, scheme, host string) RobotsMetadata {
	type fetchOutcome struct {
		body       string
		statusCode int
	}

	// lastCause records whether the final attempt saw a 5xx, since Retry
	// wraps exhausted attempts in a *retry.RetryError.
	var lastCause FetchCause
	result := retry.Retry(c.retryParam, func() (fetchOutcome, failure.ClassifiedError) {
		lastCause = ""
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
		if err != nil {
			return fetchOutcome{}, &FetchError{Message: "build robots request: " + err.Error(), Cause: CauseHTTPFailure, Retryable: false}
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "text/plain, */*;q=0.8")

		resp, err := c.http.Do(req)
		if err != nil {
			return fetchOutcome{}, &FetchError{Message: "fetch robots.txt: " + err.Error(), Cause: CauseHTTPFailure, Retryable: true}
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return fetchOutcome{body: string(body), statusCode: resp.StatusCode}, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			return fetchOutcome{statusCode: resp.StatusCode}, &FetchError{Message: "robots.txt rate limited", Cause: CauseTooManyRequests, Retryable: true}
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			// Permissive fallback: treat missing/forbidden robots.txt as
			// "no rules" rather than retrying or failing.
			return fetchOutcome{statusCode: resp.StatusCode}, nil
		case resp.StatusCode >= 500:
			lastCause = CauseServerError
			return fetchOutcome{statusCode: resp.StatusCode}, &FetchError{Message: "robots.txt server error", Cause: CauseServerError, Retryable: true}
		default:
			return fetchOutcome{statusCode: resp.StatusCode}, &FetchError{Message: "unexpected robots.txt status", Cause: CauseUnexpectedStatus, Retryable: false}
		}
	})

	base := scheme + "://" + host + "/"

	if !result.Ok() {
		if lastCause == CauseServerError {
			// Exhausted retries against a consistently-failing server:
			// conservative disallow-all rather than crawling unchecked.
			return RobotsMetadata{
				BaseURL: base,
				Groups: []UserAgentGroup{{
					UserAgents: []string{"*"},
					Rules:      []PathRule{{Type: RuleDisallow, Pattern: "/"}},
				}},
				FetchedAt: c.now(),
			}
		}
		// Any other failure (network, 429 exhausted, parse-unreachable):
		// permissive default-allow, no crawl-delay.
		return RobotsMetadata{BaseURL: base, FetchedAt: c.now()}
	}

	outcome := result.Value()
	if outcome.statusCode >= 400 {
		// 4xx: no robots.txt present, permissive default-allow.
		return RobotsMetadata{BaseURL: base, FetchedAt: c.now()}
	}

	meta := ParseRobots(outcome.body, base)
	meta.FetchedAt = c.now()
	return meta
}

// fetchManifest probes the well-known manifest locations in order, then
// falls back to nil (no manifest) rather than failing the policy fetch.
func (c *Cache) fetchManifest(ctx context.Context, scheme, host string, _ RobotsMetadata) *ManifestInfo {
	for _, path := range manifestCandidatePaths {
		manifestURL := scheme + "://" + host + path
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURL, nil)
		if err != nil {
			continue
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/manifest+json, application/json;q=0.9, */*;q=0.5")

		resp, err := c.http.Do(req)
		if err != nil {
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			continue
		}
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		if readErr != nil {
			continue
		}

		info, parseErr := ParseManifest(body, scheme+"://"+host+path)
		if parseErr != nil {
			continue
		}
		return info
	}
	return nil
}
