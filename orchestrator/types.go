// Package orchestrator implements the Crawl Orchestrator of §4.10: the
// frontier, fetch stage, worker pool, and per-URL state machine that
// drives Extract → Reconstruct → Chunk end to end and publishes progress
// snapshots and events. It is grounded on the teacher's
// internal/scheduler.Scheduler (single control-plane authority, admission
// choke point, sequential per-URL pipeline with per-stage Fatal/Recoverable
// branching) and internal/frontier (FIFO queue + visited set), generalized
// from a single synchronous worker to a golang.org/x/sync/errgroup worker
// pool and from file-based Markdown output to streaming content.Chunk
// emission over the progress/events fabric.
package orchestrator

import (
	"net/url"
	"time"
)

// URLState is a URL record's position in the per-URL state machine of
// §4.10: Discovered → Scheduled → Fetching → Extracted → (Reconstructed)
// → Chunked → Emitted, with a terminal Failed reachable from any state.
type URLState string

const (
	StateDiscovered    URLState = "Discovered"
	StateScheduled     URLState = "Scheduled"
	StateFetching      URLState = "Fetching"
	StateExtracted     URLState = "Extracted"
	StateReconstructed URLState = "Reconstructed"
	StateChunked       URLState = "Chunked"
	StateEmitted       URLState = "Emitted"
	StateFailed        URLState = "Failed"
)

// DiscoveryReason records how a URL entered the frontier (§3 "URL record").
type DiscoveryReason string

const (
	ReasonSeed    DiscoveryReason = "seed"
	ReasonLink    DiscoveryReason = "link"
	ReasonSitemap DiscoveryReason = "sitemap"
)

// URLRecord is one frontier entry (§3).
type URLRecord struct {
	URL        url.URL
	Depth      int
	ParentURL  string
	Reason     DiscoveryReason
	InsertedAt time.Time
}

// FetchResult is the raw output of the fetch stage (§3).
type FetchResult struct {
	StatusCode      int
	Body            []byte
	ContentType     string
	EffectiveURL    url.URL
	ResponseTime    time.Duration
	Size            int
}
