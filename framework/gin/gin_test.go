package ginidentity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auth0/go-claims-enrichment/claims"
	"github.com/auth0/go-claims-enrichment/identity"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(router *gin.Engine, set *claims.Set) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if set != nil {
		req = req.WithContext(claims.NewContext(req.Context(), set))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware(t *testing.T) {
	t.Run("stores identity and claims for handlers", func(t *testing.T) {
		set := claims.NewSet(claims.Claim{Name: claims.Subject, Value: "auth0|123"})

		router := gin.New()
		router.Use(Middleware())
		router.GET("/me", func(c *gin.Context) {
			id, ok := CurrentIdentity(c)
			require.True(t, ok)
			assert.Equal(t, "auth0|123", id.ExternalID)

			got, ok := CurrentClaims(c)
			require.True(t, ok)
			assert.Same(t, set, got)

			c.Status(http.StatusOK)
		})

		rec := performRequest(router, set)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("request without identity proceeds by default", func(t *testing.T) {
		router := gin.New()
		router.Use(Middleware())
		router.GET("/me", func(c *gin.Context) {
			_, ok := CurrentIdentity(c)
			assert.False(t, ok)
			c.Status(http.StatusOK)
		})

		rec := performRequest(router, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("WithRequireIdentity rejects requests without identity", func(t *testing.T) {
		router := gin.New()
		router.Use(Middleware(WithRequireIdentity()))

		nextCalled := false
		router.GET("/me", func(c *gin.Context) {
			nextCalled = true
			c.Status(http.StatusOK)
		})

		rec := performRequest(router, claims.NewSet(claims.Claim{Name: claims.Email, Value: "a@b.com"}))
		assert.False(t, nextCalled)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("custom resolver and keys", func(t *testing.T) {
		set := claims.NewSet(claims.Claim{Name: claims.Email, Value: "a@b.com"})

		router := gin.New()
		router.Use(Middleware(
			WithResolver(identity.NewResolver(identity.WithPrecedence(claims.Email))),
			WithIdentityKey("user"),
		))
		router.GET("/me", func(c *gin.Context) {
			id, ok := CurrentIdentity(c, "user")
			require.True(t, ok)
			assert.Equal(t, "a@b.com", id.ExternalID)
			c.Status(http.StatusOK)
		})

		rec := performRequest(router, set)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
