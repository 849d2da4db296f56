package policy

import "github.com/iyulab/webflux/pkg/failure"

// FetchCause enumerates why a robots.txt/manifest fetch failed, grounded on
// the teacher's internal/robots/errors.go RobotsErrorCause table.
type FetchCause string

const (
	CauseHTTPFailure       FetchCause = "http_failure"
	CauseTooManyRequests   FetchCause = "too_many_requests"
	CauseServerError       FetchCause = "server_error"
	CauseUnexpectedStatus  FetchCause = "unexpected_status"
	CauseParseError        FetchCause = "parse_error"
)

// FetchError is the ClassifiedError raised while fetching robots.txt; it is
// always Severity=Recoverable (a policy-fetch failure degrades to a
// permissive or conservative default rather than aborting the crawl — see
// cache.go) but still distinguishes retryable transient causes so pkg/retry
// knows whether to retry before giving up.
type FetchError struct {
	Message   string
	Cause     FetchCause
	Retryable bool
}

func (e *FetchError) Error() string           { return e.Message }
func (e *FetchError) Severity() failure.Severity { return failure.SeverityRecoverable }
func (e *FetchError) Kind() failure.Kind {
	if e.Retryable {
		return failure.KindNetworkTransient
	}
	return failure.KindNetworkPermanent
}
func (e *FetchError) IsRetryable() bool { return e.Retryable }

var _ failure.ClassifiedError = (*FetchError)(nil)
