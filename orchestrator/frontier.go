package orchestrator

import (
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/iyulab/webflux/config"
	"github.com/iyulab/webflux/pkg/urlutil"
)

// fifoQueue is the teacher's frontier.FIFOQueue generalized to hold
// URLRecord instead of CrawlToken.
type fifoQueue []URLRecord

func (q *fifoQueue) enqueue(item URLRecord) { *q = append(*q, item) }

func (q *fifoQueue) dequeue() (URLRecord, bool) {
	if len(*q) == 0 {
		return URLRecord{}, false
	}
	first := (*q)[0]
	*q = (*q)[1:]
	return first, true
}

// Frontier maintains BFS ordering, canonical-URL dedup, and bounded depth,
// generalized from the teacher's frontier.Frontier+Set[T] pair.
type Frontier struct {
	mu       sync.Mutex
	queue    fifoQueue
	visited  map[string]struct{}
	cfg      config.CrawlConfiguration
	seedHost string
	drained  bool
}

// NewFrontier builds an empty Frontier bound to cfg's scope rules.
func NewFrontier(cfg config.CrawlConfiguration) *Frontier {
	return &Frontier{visited: make(map[string]struct{}), cfg: cfg}
}

// Enqueue admits rec if it passes scope rules and has not been seen before
// (by canonical URL). It is the only mutator of queue/visited — the
// equivalent of the teacher's Frontier.Submit, called only after the
// orchestrator's admission checks (robots, policy) have passed.
func (f *Frontier) Enqueue(rec URLRecord) bool {
	if rec.Reason == ReasonSeed {
		f.mu.Lock()
		if f.seedHost == "" {
			f.seedHost = strings.ToLower(rec.URL.Host)
		}
		f.mu.Unlock()
	}
	if !f.InScope(rec.URL) {
		return false
	}
	if f.cfg.MaxDepth() > 0 && rec.Depth > f.cfg.MaxDepth() {
		return false
	}

	canonical := urlutil.Canonicalize(rec.URL).String()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.drained {
		return false
	}
	if f.cfg.MaxURLs() > 0 && len(f.visited) >= f.cfg.MaxURLs() {
		return false
	}
	if _, seen := f.visited[canonical]; seen {
		return false
	}
	f.visited[canonical] = struct{}{}
	f.queue.enqueue(rec)
	return true
}

// InScope evaluates same-origin and allow/deny patterns at enqueue time
// (§4.10 "evaluated at enqueue time").
func (f *Frontier) InScope(u url.URL) bool {
	f.mu.Lock()
	seedHost := f.seedHost
	f.mu.Unlock()

	if f.cfg.SameOrigin() && seedHost != "" && strings.ToLower(u.Host) != seedHost {
		return false
	}
	for _, deny := range f.cfg.DenyPatterns() {
		if matchPattern(deny, u.Path) {
			return false
		}
	}
	allow := f.cfg.AllowPatterns()
	if len(allow) == 0 {
		return true
	}
	for _, pat := range allow {
		if matchPattern(pat, u.Path) {
			return true
		}
	}
	return false
}

// matchPattern treats pattern as a glob where "*" matches any run of
// characters; an empty pattern matches nothing.
func matchPattern(pattern, path string) bool {
	if pattern == "" {
		return false
	}
	escaped := regexp.QuoteMeta(pattern)
	expanded := strings.ReplaceAll(escaped, `\*`, ".*")
	re, err := regexp.Compile("^" + expanded + "$")
	if err != nil {
		return false
	}
	return re.MatchString(path)
}

// Dequeue pops the next admitted URL in FIFO order. ok is false whenever
// the queue is currently empty, whether or not more URLs may still be
// enqueued.
func (f *Frontier) Dequeue() (URLRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.dequeue()
}

// Drain marks the frontier as no longer accepting new URLs; subsequent
// Enqueue calls are rejected and Dequeue eventually returns ok=false,
// matching §5's "new frontier dequeues return drained" on cancellation.
func (f *Frontier) Drain() {
	f.mu.Lock()
	f.drained = true
	f.mu.Unlock()
}

// VisitedCount returns the number of canonical URLs ever admitted.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}

// Pending returns the number of URLs queued but not yet dequeued.
func (f *Frontier) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}
