package orchestrator

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/iyulab/webflux/pkg/failure"
)

// http.Client's DefaultClient follows up to 10 redirects, matching §6's
// "follow ≤10 redirects" without any extra CheckRedirect wiring.
const (
	fetchBackoffBase   = 500 * time.Millisecond
	fetchBackoffFactor = 2.0
	fetchMaxAttempts   = 5
	fetchMinRetryAfter = time.Second
	fetchMaxRetryAfter = 60 * time.Second
)

// fetchError is a ClassifiedError reporting why a fetch attempt failed
// (§7 NetworkTransient/NetworkPermanent).
type fetchError struct {
	message    string
	statusCode int
	retryable  bool
}

func (e *fetchError) Error() string   { return e.message }
func (e *fetchError) StatusCode() int { return e.statusCode }
func (e *fetchError) Severity() failure.Severity {
	if e.retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
func (e *fetchError) Kind() failure.Kind {
	if e.retryable {
		return failure.KindNetworkTransient
	}
	return failure.KindNetworkPermanent
}

// fetch performs a GET against u with exponential backoff on transient
// failures (base 500ms, factor 2, max 5 attempts), per §4.10. 4xx other
// than 429 is terminal (no retry).
func (o *Orchestrator) fetch(ctx context.Context, u url.URL) (FetchResult, failure.ClassifiedError) {
	var lastErr failure.ClassifiedError
	for attempt := 1; attempt <= fetchMaxAttempts; attempt++ {
		ctxAttempt, cancel := context.WithTimeout(ctx, o.cfg.FetchTimeout())
		result, retryAfter, err := o.fetchOnce(ctxAttempt, u)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if err.Severity() == failure.SeverityFatal {
			return FetchResult{}, err
		}
		if attempt == fetchMaxAttempts {
			break
		}
		delay := backoffDelay(attempt, retryAfter)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return FetchResult{}, &fetchError{message: "fetch: cancelled", retryable: false}
		case <-timer.C:
		}
	}
	return FetchResult{}, lastErr
}

func (o *Orchestrator) fetchOnce(ctx context.Context, u url.URL) (FetchResult, time.Duration, failure.ClassifiedError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return FetchResult{}, 0, &fetchError{message: fmt.Sprintf("fetch: build request: %v", err), retryable: false}
	}
	req.Header.Set("User-Agent", o.cfg.UserAgent())

	start := time.Now()
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return FetchResult{}, 0, &fetchError{message: fmt.Sprintf("fetch: %v", err), retryable: true}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		return FetchResult{}, 0, &fetchError{message: fmt.Sprintf("fetch: read body: %v", err), retryable: true}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return FetchResult{}, parseRetryAfter(resp.Header.Get("Retry-After")),
			&fetchError{message: "fetch: 429 too many requests", statusCode: resp.StatusCode, retryable: true}
	}
	if resp.StatusCode >= 500 {
		return FetchResult{}, 0, &fetchError{message: fmt.Sprintf("fetch: server error %d", resp.StatusCode), statusCode: resp.StatusCode, retryable: true}
	}
	if resp.StatusCode >= 400 {
		return FetchResult{}, 0, &fetchError{message: fmt.Sprintf("fetch: client error %d", resp.StatusCode), statusCode: resp.StatusCode, retryable: false}
	}

	effective := u
	if resp.Request != nil && resp.Request.URL != nil {
		effective = *resp.Request.URL
	}

	return FetchResult{
		StatusCode:   resp.StatusCode,
		Body:         body,
		ContentType:  resp.Header.Get("Content-Type"),
		EffectiveURL: effective,
		ResponseTime: elapsed,
		Size:         len(body),
	}, 0, nil
}

// parseRetryAfter reads a Retry-After header (seconds form) clamped to
// [1s, 60s], per §6's wire-level expectations.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if d < fetchMinRetryAfter {
		d = fetchMinRetryAfter
	}
	if d > fetchMaxRetryAfter {
		d = fetchMaxRetryAfter
	}
	return d
}

// backoffDelay computes base*factor^(attempt-1) with ±20% jitter, honoring
// a Retry-After hint when present (§4.10).
func backoffDelay(attempt int, retryAfterHint time.Duration) time.Duration {
	if retryAfterHint > 0 {
		return retryAfterHint
	}
	delay := float64(fetchBackoffBase)
	for i := 1; i < attempt; i++ {
		delay *= fetchBackoffFactor
	}
	jitterRange := delay * 0.2
	jittered := delay - jitterRange + rand.Float64()*2*jitterRange
	if jittered < 0 {
		jittered = 0
	}
	return time.Duration(jittered)
}
