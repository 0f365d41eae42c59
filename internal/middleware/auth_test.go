package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codecollab/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	t.Run("extracts bearer token", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer abc123")
		assert.Equal(t, "abc123", BearerToken(r))
	})

	t.Run("accepts a bare token", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "abc123")
		assert.Equal(t, "abc123", BearerToken(r))
	})

	t.Run("empty without header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		assert.Equal(t, "", BearerToken(r))
	})
}

func TestAuthMiddleware(t *testing.T) {
	verifier := auth.NewVerifier("test-secret")
	wrapped := AuthMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(UserID(r.Context())))
	}))

	t.Run("valid token passes and exposes the user id", func(t *testing.T) {
		token, err := verifier.Issue("user-9", time.Hour)
		require.NoError(t, err)

		r := httptest.NewRequest("GET", "/api/projects", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-9", w.Body.String())
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/projects", nil)
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/projects", nil)
		r.Header.Set("Authorization", "Bearer bogus")
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
