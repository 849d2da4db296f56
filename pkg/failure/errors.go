package failure

// Severity controls whether a ClassifiedError may be retried/continued past,
// or must terminate the enclosing job. Only the orchestrator interprets it.
type Severity int

const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

// Kind is the closed, observability-oriented error taxonomy of spec §7.
// Kind MUST NOT be used to derive retry/continuation/abort decisions —
// Severity and the per-package Retryable flags are the only things that do.
type Kind string

const (
	KindNetworkTransient      Kind = "NetworkTransient"
	KindNetworkPermanent      Kind = "NetworkPermanent"
	KindRobotsDisallow        Kind = "RobotsDisallow"
	KindParseError            Kind = "ParseError"
	KindQuotaExceeded         Kind = "QuotaExceeded"
	KindCancelled             Kind = "Cancelled"
	KindCapabilityUnavailable Kind = "CapabilityUnavailable"
	KindInternal              Kind = "Internal"
)

// ClassifiedError is the common error shape threaded through every stage.
// Implementations additionally expose a Kind() for observability.
type ClassifiedError interface {
	error
	Severity() Severity
}

// Kinded is implemented by ClassifiedErrors that also carry a §7 Kind.
// Not every ClassifiedError needs one (e.g. ad-hoc internal bugs), so this
// is a separate, optional interface rather than baked into ClassifiedError.
type Kinded interface {
	Kind() Kind
}

// Basic is a minimal ClassifiedError for packages that don't need a richer
// local error type.
type Basic struct {
	Message  string
	Sev      Severity
	KindTag  Kind
	Wrapped  error
}

func New(kind Kind, sev Severity, message string) *Basic {
	return &Basic{Message: message, Sev: sev, KindTag: kind}
}

func Wrap(kind Kind, sev Severity, message string, err error) *Basic {
	return &Basic{Message: message, Sev: sev, KindTag: kind, Wrapped: err}
}

func (e *Basic) Error() string {
	if e.Wrapped != nil {
		return e.Message + ": " + e.Wrapped.Error()
	}
	return e.Message
}

func (e *Basic) Severity() Severity { return e.Sev }
func (e *Basic) Kind() Kind         { return e.KindTag }
func (e *Basic) Unwrap() error      { return e.Wrapped }
