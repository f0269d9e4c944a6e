package claims

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ErrNilToken is returned by FromToken when passed a nil token.
var ErrNilToken = errors.New("token is nil")

// TokenOption configures FromToken.
type TokenOption func(*tokenConfig)

type tokenConfig struct {
	accessToken string
}

// WithAccessToken captures the raw delegated access token as the
// AccessToken claim. The authentication layer is expected to call this at
// validation time, since the raw token is only available there; the
// enricher later reads the claim but never re-derives it.
func WithAccessToken(raw string) TokenOption {
	return func(c *tokenConfig) {
		c.accessToken = raw
	}
}

// FromToken flattens an already-verified token into a Set.
//
// Registered claims come first in RFC 7519 order, followed by private
// claims in sorted-name order so the result is deterministic. Non-string
// claim values are rendered as their JSON form; array-valued claims
// produce one Claim per element. FromToken performs no validation: the
// token must have been verified by the caller.
func FromToken(token jwt.Token, opts ...TokenOption) (*Set, error) {
	if token == nil {
		return nil, ErrNilToken
	}

	var cfg tokenConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var cs []Claim
	if iss := token.Issuer(); iss != "" {
		cs = append(cs, Claim{Name: Issuer, Value: iss})
	}
	if sub := token.Subject(); sub != "" {
		cs = append(cs, Claim{Name: Subject, Value: sub})
	}
	for _, aud := range token.Audience() {
		cs = append(cs, Claim{Name: "aud", Value: aud})
	}
	if exp := token.Expiration(); !exp.IsZero() {
		cs = append(cs, Claim{Name: "exp", Value: formatNumericDate(exp)})
	}
	if nbf := token.NotBefore(); !nbf.IsZero() {
		cs = append(cs, Claim{Name: "nbf", Value: formatNumericDate(nbf)})
	}
	if iat := token.IssuedAt(); !iat.IsZero() {
		cs = append(cs, Claim{Name: "iat", Value: formatNumericDate(iat)})
	}
	if jti := token.JwtID(); jti != "" {
		cs = append(cs, Claim{Name: "jti", Value: jti})
	}

	private := token.PrivateClaims()
	names := make([]string, 0, len(private))
	for name := range private {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		values, err := stringifyClaimValue(private[name])
		if err != nil {
			return nil, fmt.Errorf("could not render claim %q: %w", name, err)
		}
		for _, v := range values {
			cs = append(cs, Claim{Name: Name(name), Value: v})
		}
	}

	if cfg.accessToken != "" {
		cs = append(cs, Claim{Name: AccessToken, Value: cfg.accessToken})
	}

	return NewSet(cs...), nil
}

func formatNumericDate(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

// stringifyClaimValue renders a decoded claim value as one or more claim
// strings. Arrays fan out into one value per element.
func stringifyClaimValue(value any) ([]string, error) {
	switch v := value.(type) {
	case string:
		return []string{v}, nil
	case bool:
		return []string{strconv.FormatBool(v)}, nil
	case float64:
		return []string{strconv.FormatFloat(v, 'f', -1, 64)}, nil
	case json.Number:
		return []string{v.String()}, nil
	case time.Time:
		return []string{formatNumericDate(v)}, nil
	case []any:
		values := make([]string, 0, len(v))
		for _, elem := range v {
			rendered, err := stringifyClaimValue(elem)
			if err != nil {
				return nil, err
			}
			values = append(values, rendered...)
		}
		return values, nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return []string{string(encoded)}, nil
	}
}
