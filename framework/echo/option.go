package echoidentity

import (
	"github.com/labstack/echo/v4"

	"github.com/auth0/go-claims-enrichment/identity"
)

// Option is a function that configures the middleware.
type Option func(*middlewareConfig)

// WithResolver sets a custom identity resolver.
func WithResolver(r *identity.Resolver) Option {
	return func(config *middlewareConfig) {
		if r != nil {
			config.resolver = r
		}
	}
}

// WithIdentityKey sets a custom context key to store the identity.
func WithIdentityKey(key string) Option {
	return func(config *middlewareConfig) {
		config.identityKey = key
	}
}

// WithClaimsKey sets a custom context key to store the claim set.
func WithClaimsKey(key string) Option {
	return func(config *middlewareConfig) {
		config.claimsKey = key
	}
}

// WithRequireIdentity rejects requests whose claim set yields no
// identity.
func WithRequireIdentity() Option {
	return func(config *middlewareConfig) {
		config.requireIdentity = true
	}
}

// WithErrorHandler sets a custom handler invoked when identity is
// required but absent.
func WithErrorHandler(handler func(echo.Context, error)) Option {
	return func(config *middlewareConfig) {
		if handler != nil {
			config.errorHandler = handler
		}
	}
}
