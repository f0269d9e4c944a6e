package enrichment

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/auth0/go-claims-enrichment/identity"
)

// Option configures the Enricher. Returns error for validation failures.
type Option func(*Enricher) error

// WithUserInfoURL sets the userinfo endpoint to call directly, skipping
// discovery.
func WithUserInfoURL(u *url.URL) Option {
	return func(e *Enricher) error {
		if u == nil {
			return errors.New("userinfo URL cannot be nil")
		}
		e.endpoint = u.String()
		return nil
	}
}

// WithIssuerURL sets the OIDC issuer whose well-known configuration is
// consulted lazily to discover the userinfo endpoint. Discovery happens
// at most once per process when it succeeds; failures are retried on
// the next enrichment.
func WithIssuerURL(u *url.URL) Option {
	return func(e *Enricher) error {
		if u == nil {
			return errors.New("issuer URL cannot be nil")
		}
		e.issuerURL = u
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client for the userinfo call and for
// endpoint discovery. The client's timeout bounds the shared in-flight
// request even after every caller has abandoned it.
//
// Default: &http.Client{Timeout: 30 * time.Second}
func WithHTTPClient(client *http.Client) Option {
	return func(e *Enricher) error {
		if client == nil {
			return errors.New("HTTP client cannot be nil")
		}
		e.httpClient = client
		return nil
	}
}

// WithResolver sets the identity resolver used to derive the cache key
// and enrichment subject from a claim set.
//
// Default: identity.NewResolver()
func WithResolver(r *identity.Resolver) Option {
	return func(e *Enricher) error {
		if r == nil {
			return errors.New("resolver cannot be nil")
		}
		e.resolver = r
		return nil
	}
}

// WithCacheTTL sets how long a fetched profile stays fresh. Within the
// window, repeated enrichment for the same identity returns the cached
// profile without a network call.
//
// Default: DefaultCacheTTL
func WithCacheTTL(ttl time.Duration) Option {
	return func(e *Enricher) error {
		if ttl <= 0 {
			return errors.New("cache TTL must be positive")
		}
		e.cacheTTL = ttl
		return nil
	}
}

// WithCacheMaxEntries bounds the default LRU profile cache. Ignored when
// WithProfileCache supplies a custom cache.
//
// Default: DefaultCacheMaxEntries
func WithCacheMaxEntries(n int) Option {
	return func(e *Enricher) error {
		if n <= 0 {
			return errors.New("cache max entries must be positive")
		}
		e.maxEntries = n
		return nil
	}
}

// WithProfileCache sets a custom cache implementation, e.g. one backed by
// an external store shared between processes.
func WithProfileCache(cache ProfileCache) Option {
	return func(e *Enricher) error {
		if cache == nil {
			return errors.New("profile cache cannot be nil")
		}
		e.cache = cache
		return nil
	}
}

// WithRateLimiter sets a local limiter consulted before dispatching an
// upstream request. When the budget is exhausted the enrichment fails
// fast as rate limited instead of spending one of the provider's
// requests.
//
// Default: no local limiting
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(e *Enricher) error {
		if limiter == nil {
			return errors.New("rate limiter cannot be nil")
		}
		e.limiter = limiter
		return nil
	}
}

// WithLogger sets the logger used for enrichment diagnostics.
//
// Default: DefaultLogger (standard library log)
func WithLogger(logger Logger) Option {
	return func(e *Enricher) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		e.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics sink for cache and upstream counters.
//
// Default: NoopMetrics
func WithMetrics(metrics Metrics) Option {
	return func(e *Enricher) error {
		if metrics == nil {
			return errors.New("metrics cannot be nil")
		}
		e.metrics = metrics
		return nil
	}
}

// WithTracer sets the tracer used to span the upstream call.
//
// Default: NoopTracer
func WithTracer(tracer Tracer) Option {
	return func(e *Enricher) error {
		if tracer == nil {
			return errors.New("tracer cannot be nil")
		}
		e.tracer = tracer
		return nil
	}
}
