package echoidentity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auth0/go-claims-enrichment/claims"
	"github.com/auth0/go-claims-enrichment/identity"
)

func newRequestWithClaims(set *claims.Set) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if set != nil {
		req = req.WithContext(claims.NewContext(req.Context(), set))
	}
	return req
}

func TestMiddleware(t *testing.T) {
	t.Run("stores identity and claims for handlers", func(t *testing.T) {
		set := claims.NewSet(claims.Claim{Name: claims.Subject, Value: "auth0|123"})

		e := echo.New()
		req := newRequestWithClaims(set)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := Middleware()(func(c echo.Context) error {
			id, ok := CurrentIdentity(c)
			require.True(t, ok)
			assert.Equal(t, "auth0|123", id.ExternalID)

			got, ok := CurrentClaims(c)
			require.True(t, ok)
			assert.Same(t, set, got)

			return c.NoContent(http.StatusOK)
		})

		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("request without identity proceeds by default", func(t *testing.T) {
		e := echo.New()
		req := newRequestWithClaims(nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := Middleware()(func(c echo.Context) error {
			_, ok := CurrentIdentity(c)
			assert.False(t, ok)
			return c.NoContent(http.StatusOK)
		})

		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("WithRequireIdentity rejects requests without identity", func(t *testing.T) {
		e := echo.New()
		req := newRequestWithClaims(claims.NewSet(claims.Claim{Name: claims.Email, Value: "a@b.com"}))
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		nextCalled := false
		handler := Middleware(WithRequireIdentity())(func(c echo.Context) error {
			nextCalled = true
			return c.NoContent(http.StatusOK)
		})

		require.NoError(t, handler(c))
		assert.False(t, nextCalled)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("custom resolver and keys", func(t *testing.T) {
		set := claims.NewSet(claims.Claim{Name: claims.Email, Value: "a@b.com"})

		e := echo.New()
		req := newRequestWithClaims(set)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		middleware := Middleware(
			WithResolver(identity.NewResolver(identity.WithPrecedence(claims.Email))),
			WithIdentityKey("user"),
		)

		handler := middleware(func(c echo.Context) error {
			id, ok := CurrentIdentity(c, "user")
			require.True(t, ok)
			assert.Equal(t, "a@b.com", id.ExternalID)
			return c.NoContent(http.StatusOK)
		})

		require.NoError(t, handler(c))
	})
}
