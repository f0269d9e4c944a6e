package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/auth0/go-claims-enrichment/claims"
	"github.com/auth0/go-claims-enrichment/identity"
	"github.com/auth0/go-claims-enrichment/internal/oidc"
)

const (
	// DefaultCacheTTL is how long a fetched profile stays fresh. Profiles
	// are user-editable upstream, so the window is kept short.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultCacheMaxEntries bounds the default profile cache.
	DefaultCacheMaxEntries = 1000

	// maxProfileBytes limits the response body read from the userinfo
	// endpoint. 1MB is generous for a profile document.
	maxProfileBytes = 1 * 1024 * 1024
)

// Enricher fetches the full external profile for the identity carried by
// a claim set, using the delegated access token captured at
// authentication time.
//
// The userinfo endpoint is rate limited by the provider, so the Enricher
// is built around not calling it: fresh cache entries short-circuit
// without a network request, and concurrent enrichments for the same
// identity are coalesced into a single in-flight call. Enrichment is
// always caller-initiated; there is no background refresh.
type Enricher struct {
	httpClient *http.Client
	resolver   *identity.Resolver
	cache      ProfileCache
	cacheTTL   time.Duration
	maxEntries int
	limiter    *rate.Limiter
	logger     Logger
	metrics    Metrics
	tracer     Tracer

	group singleflight.Group

	// userinfo endpoint - configured directly or discovered lazily from
	// the issuer's well-known configuration. A failed discovery is
	// retried on the next call rather than latched.
	issuerURL  *url.URL
	endpointMu sync.Mutex
	endpoint   string

	// now is swappable for tests.
	now func() time.Time
}

// New builds and returns a new *Enricher.
//
// Required options (one of):
//   - WithUserInfoURL: the userinfo endpoint to call
//   - WithIssuerURL: OIDC issuer URL for userinfo endpoint discovery
//
// Optional options:
//   - WithHTTPClient, WithResolver, WithProfileCache,
//     WithCacheTTL, WithCacheMaxEntries, WithRateLimiter,
//     WithLogger, WithMetrics, WithTracer
//
// Example:
//
//	enricher, err := enrichment.New(
//	    enrichment.WithIssuerURL(issuerURL),
//	    enrichment.WithCacheTTL(2*time.Minute),
//	)
func New(opts ...Option) (*Enricher, error) {
	e := &Enricher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		resolver:   identity.NewResolver(),
		cacheTTL:   DefaultCacheTTL,
		maxEntries: DefaultCacheMaxEntries,
		logger:     &DefaultLogger{},
		metrics:    &NoopMetrics{},
		tracer:     &NoopTracer{},
		now:        time.Now,
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if e.endpoint == "" && e.issuerURL == nil {
		return nil, errors.New("userinfo endpoint is required (use WithUserInfoURL or WithIssuerURL)")
	}

	if e.cache == nil {
		cache, err := newLRUProfileCache(e.maxEntries)
		if err != nil {
			return nil, err
		}
		e.cache = cache
	}

	return e, nil
}

// Cache returns the profile cache, so tests and operational tooling can
// clear it.
func (e *Enricher) Cache() ProfileCache {
	return e.cache
}

// Enrich returns the full external profile for the identity in set.
//
// A fresh cache entry is returned without a network call. On a miss, the
// delegated token is read from the AccessToken claim and exactly one
// request is made; concurrent callers for the same identity share that
// request. Failures are surfaced verbatim and never cached:
//
//   - ErrNoIdentity when no identifier claim resolves
//   - ErrNoDelegatedToken when the token claim is absent
//   - *UpstreamError (matches ErrUpstream) when the call fails
//
// A caller deadline on ctx abandons the shared request rather than
// cancelling it; other waiters, and the cache, still receive its result.
func (e *Enricher) Enrich(ctx context.Context, set *claims.Set) (Profile, error) {
	id, ok := e.resolver.Resolve(set)
	if !ok {
		return nil, ErrNoIdentity
	}

	if entry, ok := e.cache.Get(id.ExternalID); ok && e.fresh(entry) {
		e.metrics.IncCounter("enrichment_cache_hits_total", nil)
		return entry.Profile, nil
	}
	e.metrics.IncCounter("enrichment_cache_misses_total", nil)

	token, ok := set.FirstValue(claims.AccessToken)
	if !ok || token == "" {
		return nil, ErrNoDelegatedToken
	}

	// Coalesce concurrent enrichments per identity: at most one upstream
	// call in flight, later callers await its result. The flight runs on
	// a context detached from this caller so an abandoning caller cannot
	// cancel it for the others; the HTTP client timeout still bounds it.
	flightCtx := context.WithoutCancel(ctx)
	ch := e.group.DoChan(id.ExternalID, func() (any, error) {
		return e.fetchProfile(flightCtx, id.ExternalID, token)
	})

	select {
	case <-ctx.Done():
		e.metrics.IncCounter("enrichment_upstream_errors_total", map[string]string{"kind": string(KindTimeout)})
		return nil, &UpstreamError{
			Kind:   KindTimeout,
			Detail: "caller deadline elapsed while the userinfo request was in flight",
			Err:    ctx.Err(),
		}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Profile), nil
	}
}

func (e *Enricher) fresh(entry CacheEntry) bool {
	return e.now().Sub(entry.FetchedAt) < e.cacheTTL
}

// fetchProfile performs the single upstream request and stores the result
// on success. Failed attempts never create or refresh a cache entry.
func (e *Enricher) fetchProfile(ctx context.Context, externalID, token string) (Profile, error) {
	// Another flight may have completed between our cache miss and this
	// call; recheck so a stale caller does not trigger a redundant fetch.
	if entry, ok := e.cache.Get(externalID); ok && e.fresh(entry) {
		return entry.Profile, nil
	}

	if e.limiter != nil {
		if err := e.reserveLocal(); err != nil {
			e.metrics.IncCounter("enrichment_upstream_errors_total", map[string]string{"kind": string(KindRateLimited)})
			return nil, err
		}
	}

	endpoint, err := e.userInfoEndpoint(ctx)
	if err != nil {
		e.metrics.IncCounter("enrichment_upstream_errors_total", map[string]string{"kind": string(KindNetwork)})
		return nil, &UpstreamError{Kind: KindNetwork, Detail: "userinfo endpoint discovery failed", Err: err}
	}

	span := e.tracer.StartSpan("enrichment.userinfo")
	defer span.Finish()
	span.SetTag("identity.external_id", externalID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &UpstreamError{Kind: KindNetwork, Detail: "could not build userinfo request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	e.metrics.IncCounter("enrichment_upstream_requests_total", nil)
	start := time.Now()
	resp, err := e.httpClient.Do(req)
	e.metrics.ObserveHistogram("enrichment_upstream_duration_seconds", time.Since(start).Seconds(), nil)
	if err != nil {
		kind := KindNetwork
		if errors.Is(err, context.DeadlineExceeded) {
			kind = KindTimeout
		}
		e.logger.Errorf("userinfo request for %s failed: %v", externalID, err)
		e.metrics.IncCounter("enrichment_upstream_errors_total", map[string]string{"kind": string(kind)})
		return nil, &UpstreamError{Kind: kind, Detail: "userinfo request failed", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"), e.now())
		e.logger.Warnf("userinfo endpoint rate limited enrichment for %s, retry after %s", externalID, retryAfter)
		e.metrics.IncCounter("enrichment_upstream_errors_total", map[string]string{"kind": string(KindRateLimited)})
		return nil, &UpstreamError{
			Kind:       KindRateLimited,
			Detail:     "userinfo endpoint rate limited the request",
			RetryAfter: retryAfter,
		}
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		e.metrics.IncCounter("enrichment_upstream_errors_total", map[string]string{"kind": string(KindServer)})
		return nil, &UpstreamError{
			Kind:   KindServer,
			Detail: fmt.Sprintf("userinfo request returned status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBytes))
	if err != nil {
		e.metrics.IncCounter("enrichment_upstream_errors_total", map[string]string{"kind": string(KindNetwork)})
		return nil, &UpstreamError{Kind: KindNetwork, Detail: "could not read userinfo response body", Err: err}
	}
	if !json.Valid(body) {
		e.metrics.IncCounter("enrichment_upstream_errors_total", map[string]string{"kind": string(KindServer)})
		return nil, &UpstreamError{Kind: KindServer, Detail: "userinfo response is not valid JSON"}
	}

	profile := Profile(body)
	e.cache.Set(CacheEntry{
		ExternalID: externalID,
		Profile:    profile,
		FetchedAt:  e.now(),
	})
	e.logger.Debugf("cached profile for %s", externalID)

	return profile, nil
}

// reserveLocal consults the optional local limiter before dispatching.
// When the budget is exhausted it fails fast as rate limited, with the
// reservation delay as the retry hint, instead of burning one of the
// provider's requests on a guaranteed 429.
func (e *Enricher) reserveLocal() error {
	reservation := e.limiter.Reserve()
	if !reservation.OK() {
		return &UpstreamError{
			Kind:   KindRateLimited,
			Detail: "local rate limit cannot ever grant this request",
		}
	}
	if delay := reservation.Delay(); delay > 0 {
		reservation.Cancel()
		return &UpstreamError{
			Kind:       KindRateLimited,
			Detail:     "local rate limit exceeded",
			RetryAfter: delay,
		}
	}
	return nil
}

// userInfoEndpoint returns the configured endpoint, discovering it from
// the issuer's well-known configuration on first use. The mutex is held
// across the discovery request so concurrent callers do not duplicate
// it; a failed discovery leaves the endpoint unset so the next call
// tries again.
func (e *Enricher) userInfoEndpoint(ctx context.Context) (string, error) {
	e.endpointMu.Lock()
	defer e.endpointMu.Unlock()

	if e.endpoint != "" {
		return e.endpoint, nil
	}

	wkEndpoints, err := oidc.GetWellKnownEndpointsFromIssuerURL(ctx, e.httpClient, *e.issuerURL)
	if err != nil {
		return "", err
	}
	if wkEndpoints.UserInfoEndpoint == "" {
		return "", fmt.Errorf("issuer %s advertises no userinfo endpoint", e.issuerURL)
	}

	e.endpoint = wkEndpoints.UserInfoEndpoint
	return e.endpoint, nil
}

// parseRetryAfter interprets a Retry-After header value, either delay
// seconds or an HTTP-date (RFC 9110 §10.2.3). Returns 0 for absent or
// unparseable values, or dates in the past.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		if seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil {
		if delay := at.Sub(now); delay > 0 {
			return delay
		}
	}

	return 0
}
