package claims

// Name identifies a claim within a verified token.
//
// Claims this library acts on are enumerated as typed constants so that
// lookups are checked at compile time instead of being free-form strings.
// Callers may still construct a Name from any string for provider-specific
// claims.
type Name string

const (
	// Subject is the registered "sub" claim, the primary identifier an
	// issuer assigns to the end user (RFC 7519 §4.1.2).
	Subject Name = "sub"

	// NameIdentifier is the WS-Federation name-identifier claim URI.
	// Tokens that passed through a .NET claims transformation carry the
	// subject under this name instead of (or in addition to) "sub".
	NameIdentifier Name = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"

	// AccessToken is the claim under which the authentication layer
	// captures the raw delegated access token at validation time. It is
	// the credential the enricher presents to the userinfo endpoint.
	AccessToken Name = "access_token"

	// Issuer is the registered "iss" claim.
	Issuer Name = "iss"

	// Email is the conventional email claim.
	Email Name = "email"

	// FullName is the conventional display-name claim.
	FullName Name = "name"
)

// Claim is a single (name, value) assertion from a verified token.
// Claims are immutable; multiple claims may share a name.
type Claim struct {
	Name  Name
	Value string
}

// Set is an immutable, ordered collection of claims. Order is the
// insertion order from the token and is preserved, but carries no meaning
// beyond first-match lookups. A Set must not be mutated after
// construction; its lifetime is bounded to the authenticated request or
// session that produced it.
type Set struct {
	claims []Claim
}

// NewSet builds a Set from the given claims. The input is copied, so the
// caller's slice may be reused freely afterwards.
func NewSet(claims ...Claim) *Set {
	copied := make([]Claim, len(claims))
	copy(copied, claims)
	return &Set{claims: copied}
}

// All returns every claim in original order. The returned slice is a
// copy; callers may iterate or modify it without affecting the Set.
func (s *Set) All() []Claim {
	if s == nil {
		return nil
	}
	copied := make([]Claim, len(s.claims))
	copy(copied, s.claims)
	return copied
}

// Len returns the number of claims in the Set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.claims)
}

// FirstValue returns the value of the first claim matching name. A claim
// being absent is a normal outcome, not an error: the second return is
// false and the value is empty in that case.
func (s *Set) FirstValue(name Name) (string, bool) {
	if s == nil {
		return "", false
	}
	for _, c := range s.claims {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// Values returns the values of every claim matching name, in original
// order. Useful for multi-valued claims such as roles. Returns nil when
// none match.
func (s *Set) Values(name Name) []string {
	if s == nil {
		return nil
	}
	var values []string
	for _, c := range s.claims {
		if c.Name == name {
			values = append(values, c.Value)
		}
	}
	return values
}
