// Package ginidentity exposes resolved identity to Gin handlers.
//
// The middleware runs after the authentication layer has stored a
// *claims.Set in the request context; it performs no token validation of
// its own.
package ginidentity

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/auth0/go-claims-enrichment/claims"
	"github.com/auth0/go-claims-enrichment/identity"
)

const (
	// DefaultIdentityKey is the Gin context key the resolved identity is
	// stored under.
	DefaultIdentityKey = "identity"

	// DefaultClaimsKey is the Gin context key the claim set is stored
	// under.
	DefaultClaimsKey = "claims"
)

type middlewareConfig struct {
	resolver        *identity.Resolver
	identityKey     string
	claimsKey       string
	requireIdentity bool
	errorHandler    func(*gin.Context)
}

// Middleware resolves the identity from the claim set in the request
// context and stores both in the Gin context for handlers.
//
// When no claim set or no identity is present, the request proceeds
// unless WithRequireIdentity is set, in which case the error handler
// responds (401 by default) and the chain aborts.
func Middleware(opts ...Option) gin.HandlerFunc {
	config := &middlewareConfig{
		resolver:     identity.NewResolver(),
		identityKey:  DefaultIdentityKey,
		claimsKey:    DefaultClaimsKey,
		errorHandler: defaultErrorHandler,
	}

	for _, opt := range opts {
		opt(config)
	}

	return func(c *gin.Context) {
		set, ok := claims.FromContext(c.Request.Context())
		if ok {
			c.Set(config.claimsKey, set)
		}

		id, resolved := config.resolver.Resolve(set)
		if resolved {
			c.Set(config.identityKey, id)
		} else if config.requireIdentity {
			config.errorHandler(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

func defaultErrorHandler(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"message": "no identity in request"})
}

// CurrentIdentity extracts the resolved identity from the Gin context.
// The key defaults to DefaultIdentityKey; pass the custom key when the
// middleware was configured with WithIdentityKey.
func CurrentIdentity(c *gin.Context, identityKey ...string) (identity.UserIdentity, bool) {
	key := DefaultIdentityKey
	if len(identityKey) > 0 {
		key = identityKey[0]
	}
	id, ok := c.Get(key)
	if !ok {
		return identity.UserIdentity{}, false
	}
	userIdentity, ok := id.(identity.UserIdentity)
	return userIdentity, ok
}

// CurrentClaims extracts the claim set from the Gin context. The key
// defaults to DefaultClaimsKey; pass the custom key when the middleware
// was configured with WithClaimsKey.
func CurrentClaims(c *gin.Context, claimsKey ...string) (*claims.Set, bool) {
	key := DefaultClaimsKey
	if len(claimsKey) > 0 {
		key = claimsKey[0]
	}
	value, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	set, ok := value.(*claims.Set)
	return set, ok
}
