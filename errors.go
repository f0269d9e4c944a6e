package enrichment

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoIdentity is returned when no usable identifier claim exists in
	// the claim set. Recoverable: the caller proceeds without enrichment.
	ErrNoIdentity = errors.New("no usable identity in claim set")

	// ErrNoDelegatedToken is returned when enrichment was requested but
	// the access token claim was never captured at authentication time.
	// This is an upstream flow error, not a transient condition; it is
	// never retried here.
	ErrNoDelegatedToken = errors.New("no delegated access token in claim set")

	// ErrUpstream is the sentinel matched by every *UpstreamError via
	// errors.Is.
	ErrUpstream = errors.New("userinfo request failed")
)

// UpstreamKind classifies an upstream failure.
type UpstreamKind string

const (
	// KindNetwork covers transport-level failures before any HTTP status
	// was received.
	KindNetwork UpstreamKind = "network"

	// KindServer covers non-2xx responses other than rate limiting.
	KindServer UpstreamKind = "server"

	// KindRateLimited means the provider answered 429, or the local
	// limiter refused to dispatch.
	KindRateLimited UpstreamKind = "rate_limited"

	// KindTimeout means the caller's deadline elapsed while the request
	// was in flight.
	KindTimeout UpstreamKind = "timeout"
)

// UpstreamError describes a failed userinfo call. Failures are surfaced
// verbatim and never retried internally: retrying a rate-limited endpoint
// without the caller's backoff decision would worsen the condition.
type UpstreamError struct {
	// Kind classifies the failure.
	Kind UpstreamKind

	// Detail is a human-readable description of what went wrong.
	Detail string

	// RetryAfter is the provider's Retry-After hint for KindRateLimited,
	// or the local limiter's reservation delay. Zero when no hint exists.
	RetryAfter time.Duration

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s: %s (%s)", ErrUpstream, e.Detail, e.Kind)
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(", retry after %s", e.RetryAfter)
	}
	return msg
}

// Unwrap returns the underlying error for error unwrapping.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is allows the error to be matched against ErrUpstream.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}
