/*
Package enrichment provides claims-based identity extraction and profile
enrichment for already-verified tokens.

The library sits downstream of JWT validation: the authentication layer
verifies the token, builds a claims.Set (capturing the raw access token
with claims.WithAccessToken when enrichment will be needed), and hands the
set to application code. From there two paths exist:

  - identity.Resolver derives a stable external identifier from the set.
    Pure, no I/O, always safe; use it as the foreign key for application
    records on routine requests.
  - Enricher fetches the full profile from the provider's userinfo
    endpoint using the delegated access token. The endpoint is rate
    limited, so results are cached per identity with a TTL and concurrent
    enrichments for one identity share a single upstream call.

# Quick Start

	import (
	    enrichment "github.com/auth0/go-claims-enrichment"
	    "github.com/auth0/go-claims-enrichment/claims"
	)

	func main() {
	    issuerURL, _ := url.Parse("https://your-domain.auth0.com/")
	    enricher, err := enrichment.New(
	        enrichment.WithIssuerURL(issuerURL),
	        enrichment.WithCacheTTL(5*time.Minute),
	    )
	    if err != nil {
	        log.Fatal(err)
	    }

	    // In a handler, after authentication:
	    set, _ := claims.FromContext(r.Context())
	    profile, err := enricher.Enrich(r.Context(), set)
	    switch {
	    case errors.Is(err, enrichment.ErrNoIdentity):
	        // proceed without enrichment
	    case errors.Is(err, enrichment.ErrUpstream):
	        // surface or schedule a retry; never retried internally
	    }
	    _ = profile
	}

Enrichment failures carry a kind (network, server, rate_limited, timeout)
and, for rate limiting, the provider's Retry-After hint. The library never
retries on its own and never caches failures.
*/
package enrichment
