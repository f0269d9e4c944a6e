package claims

import "context"

// contextKey is an unexported type for context keys to prevent collisions
// with keys set by other packages.
type contextKey int

const setKey contextKey = iota

// NewContext returns a copy of ctx carrying the given Set. The
// authentication layer calls this after it has verified the token and
// built the Set, so downstream handlers can retrieve it with FromContext.
func NewContext(ctx context.Context, s *Set) context.Context {
	return context.WithValue(ctx, setKey, s)
}

// FromContext retrieves the Set stored by NewContext. The second return
// is false when no Set is present.
func FromContext(ctx context.Context) (*Set, bool) {
	s, ok := ctx.Value(setKey).(*Set)
	return s, ok
}
