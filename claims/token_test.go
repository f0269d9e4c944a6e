package claims

import (
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromToken(t *testing.T) {
	t.Run("nil token", func(t *testing.T) {
		_, err := FromToken(nil)
		assert.ErrorIs(t, err, ErrNilToken)
	})

	t.Run("flattens registered and private claims", func(t *testing.T) {
		token := jwt.New()
		require.NoError(t, token.Set(jwt.IssuerKey, "https://issuer.example.com/"))
		require.NoError(t, token.Set(jwt.SubjectKey, "auth0|123"))
		require.NoError(t, token.Set(jwt.AudienceKey, []string{"api-one", "api-two"}))
		require.NoError(t, token.Set("email", "a@b.com"))
		require.NoError(t, token.Set("roles", []any{"admin", "editor"}))

		set, err := FromToken(token)
		require.NoError(t, err)

		issuer, ok := set.FirstValue(Issuer)
		require.True(t, ok)
		assert.Equal(t, "https://issuer.example.com/", issuer)

		subject, ok := set.FirstValue(Subject)
		require.True(t, ok)
		assert.Equal(t, "auth0|123", subject)

		assert.Equal(t, []string{"api-one", "api-two"}, set.Values("aud"))

		email, ok := set.FirstValue(Email)
		require.True(t, ok)
		assert.Equal(t, "a@b.com", email)

		assert.Equal(t, []string{"admin", "editor"}, set.Values("roles"))

		// Registered claims come before private ones.
		all := set.All()
		assert.Equal(t, Issuer, all[0].Name)
		assert.Equal(t, Subject, all[1].Name)
	})

	t.Run("renders time claims as numeric dates", func(t *testing.T) {
		expiry := time.Date(2030, time.January, 2, 3, 4, 5, 0, time.UTC)

		token := jwt.New()
		require.NoError(t, token.Set(jwt.SubjectKey, "auth0|123"))
		require.NoError(t, token.Set(jwt.ExpirationKey, expiry))

		set, err := FromToken(token)
		require.NoError(t, err)

		exp, ok := set.FirstValue("exp")
		require.True(t, ok)
		assert.Equal(t, "1893553445", exp)
	})

	t.Run("private claims are sorted by name for determinism", func(t *testing.T) {
		token := jwt.New()
		require.NoError(t, token.Set("zeta", "z"))
		require.NoError(t, token.Set("alpha", "a"))

		set, err := FromToken(token)
		require.NoError(t, err)

		all := set.All()
		require.Len(t, all, 2)
		assert.Equal(t, Name("alpha"), all[0].Name)
		assert.Equal(t, Name("zeta"), all[1].Name)
	})

	t.Run("WithAccessToken captures the delegated token", func(t *testing.T) {
		token := jwt.New()
		require.NoError(t, token.Set(jwt.SubjectKey, "auth0|123"))

		set, err := FromToken(token, WithAccessToken("tok1"))
		require.NoError(t, err)

		raw, ok := set.FirstValue(AccessToken)
		require.True(t, ok)
		assert.Equal(t, "tok1", raw)
	})

	t.Run("no capture hook means no access token claim", func(t *testing.T) {
		token := jwt.New()
		require.NoError(t, token.Set(jwt.SubjectKey, "auth0|123"))

		set, err := FromToken(token)
		require.NoError(t, err)

		_, ok := set.FirstValue(AccessToken)
		assert.False(t, ok)
	})
}
