package orchestrator

import (
	"context"
	"net/url"

	"github.com/iyulab/webflux/events"
	"github.com/iyulab/webflux/policy"
)

// admitURL is the single admission choke point, generalized from the
// teacher's Scheduler.SubmitUrlForAdmission: the only place that decides
// whether a URL may enter the frontier. It runs the Policy Cache decision
// first (robots.txt), then the frontier's own scope checks (same-origin,
// allow/deny, depth, dedup) — nothing else may call Frontier.Enqueue.
func (o *Orchestrator) admitURL(ctx context.Context, rec URLRecord) {
	decision, err := o.policyCache.Decide(ctx, rec.URL.String(), o.cfg.UserAgent())
	if err != nil {
		o.countError()
		return
	}

	if !decision.Allowed {
		o.publishURLFailed(rec.URL.String(), "RobotsDisallow", "disallowed by robots.txt", 0, 0, 0)
		return
	}

	if decision.CrawlDelay > 0 {
		o.rateLimiter.SetCrawlDelay(rec.URL.Host, decision.CrawlDelay)
	}

	o.frontier.Enqueue(rec)
}

func (o *Orchestrator) publishURLFailed(rawURL, failureType, message string, statusCode, retries int, responseTimeMS int64) {
	o.tracker.FailUrl(rawURL, failureType, message, statusCode, retries, responseTimeMS)
	o.bus.Publish(events.Event{
		Kind:    events.UrlProcessingFailed,
		JobID:   o.jobID,
		Payload: map[string]any{"url": rawURL, "type": failureType, "message": message},
	})
}

func (o *Orchestrator) countError() {
	o.errMu.Lock()
	o.errCount++
	o.errMu.Unlock()
}

// seedURL builds the URLRecord for one configured seed URL.
func seedURL(u url.URL) URLRecord {
	return URLRecord{URL: u, Depth: 0, Reason: ReasonSeed}
}
