// Package echoidentity exposes resolved identity to Echo handlers.
//
// The middleware runs after the authentication layer has stored a
// *claims.Set in the request context; it performs no token validation of
// its own.
package echoidentity

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/auth0/go-claims-enrichment/claims"
	"github.com/auth0/go-claims-enrichment/identity"
)

const (
	// DefaultIdentityKey is the Echo context key the resolved identity is
	// stored under.
	DefaultIdentityKey = "identity"

	// DefaultClaimsKey is the Echo context key the claim set is stored
	// under.
	DefaultClaimsKey = "claims"
)

// middlewareConfig holds all configuration for the middleware.
type middlewareConfig struct {
	resolver        *identity.Resolver
	identityKey     string
	claimsKey       string
	requireIdentity bool
	errorHandler    func(echo.Context, error)
}

// Middleware resolves the identity from the claim set in the request
// context and stores both in the Echo context for handlers.
//
// When no claim set or no identity is present, the request proceeds
// unless WithRequireIdentity is set, in which case the error handler
// responds (401 by default) and the chain stops.
func Middleware(opts ...Option) echo.MiddlewareFunc {
	config := &middlewareConfig{
		resolver:     identity.NewResolver(),
		identityKey:  DefaultIdentityKey,
		claimsKey:    DefaultClaimsKey,
		errorHandler: defaultErrorHandler,
	}

	for _, opt := range opts {
		opt(config)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			set, ok := claims.FromContext(c.Request().Context())
			if ok {
				c.Set(config.claimsKey, set)
			}

			id, resolved := config.resolver.Resolve(set)
			if resolved {
				c.Set(config.identityKey, id)
			} else if config.requireIdentity {
				config.errorHandler(c, echo.ErrUnauthorized)
				return nil
			}

			return next(c)
		}
	}
}

func defaultErrorHandler(c echo.Context, err error) {
	_ = c.JSON(http.StatusUnauthorized, map[string]string{
		"message": "no identity in request",
	})
}

// CurrentIdentity extracts the resolved identity from the Echo context.
// The key defaults to DefaultIdentityKey; pass the custom key when the
// middleware was configured with WithIdentityKey.
func CurrentIdentity(c echo.Context, identityKey ...string) (identity.UserIdentity, bool) {
	key := DefaultIdentityKey
	if len(identityKey) > 0 {
		key = identityKey[0]
	}
	id, ok := c.Get(key).(identity.UserIdentity)
	return id, ok
}

// CurrentClaims extracts the claim set from the Echo context. The key
// defaults to DefaultClaimsKey; pass the custom key when the middleware
// was configured with WithClaimsKey.
func CurrentClaims(c echo.Context, claimsKey ...string) (*claims.Set, bool) {
	key := DefaultClaimsKey
	if len(claimsKey) > 0 {
		key = claimsKey[0]
	}
	set, ok := c.Get(key).(*claims.Set)
	return set, ok
}
