package identity

import (
	"github.com/auth0/go-claims-enrichment/claims"
)

// UserIdentity is the stable external identifier derived from a claim
// set. It is recomputed on demand and never stored independently; use
// ExternalID as the foreign key when associating application records with
// a user.
type UserIdentity struct {
	ExternalID string
}

// DefaultPrecedence is the claim lookup order used when no override is
// configured: the registered "sub" claim first, then the WS-Federation
// name-identifier URI emitted by .NET-side claims transformations.
var DefaultPrecedence = []claims.Name{claims.Subject, claims.NameIdentifier}

// Resolver derives a UserIdentity from a claim set by fixed claim-name
// precedence. It performs no I/O and is safe for concurrent use.
//
// Resolving an identity is cheap and always safe; prefer it over full
// profile enrichment for routine requests.
type Resolver struct {
	precedence []claims.Name
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPrecedence overrides the claim names consulted, in order. Empty
// input leaves the default precedence in place.
func WithPrecedence(names ...claims.Name) Option {
	return func(r *Resolver) {
		if len(names) > 0 {
			r.precedence = names
		}
	}
}

// NewResolver builds a Resolver with DefaultPrecedence unless overridden.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{precedence: DefaultPrecedence}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve walks the configured precedence and returns the first non-empty
// claim value as the external identifier. The second return is false when
// no recognized identifier claim is present — a normal outcome for
// malformed or anonymous upstream tokens, never an error.
func (r *Resolver) Resolve(set *claims.Set) (UserIdentity, bool) {
	for _, name := range r.precedence {
		if value, ok := set.FirstValue(name); ok && value != "" {
			return UserIdentity{ExternalID: value}, true
		}
	}
	return UserIdentity{}, false
}
