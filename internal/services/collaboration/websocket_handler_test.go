package collaboration

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codecollab/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A bad credential refuses the connection outright; there is no degraded
// anonymous mode.
func TestHandleEditorConnectionAuth(t *testing.T) {
	verifier := auth.NewVerifier("test-secret")
	relay := newTestRelay(&fakeAccess{}, newFakeStore())
	handler := NewWebSocketHandler(relay, verifier)

	t.Run("missing token is refused", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws/editor", nil)
		w := httptest.NewRecorder()

		handler.HandleEditorConnection(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token is refused", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws/editor?token=bogus", nil)
		w := httptest.NewRecorder()

		handler.HandleEditorConnection(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token without upgrade headers fails the upgrade, not auth", func(t *testing.T) {
		token, err := verifier.Issue("u1", time.Hour)
		require.NoError(t, err)

		r := httptest.NewRequest("GET", "/ws/editor?token="+token, nil)
		w := httptest.NewRecorder()

		handler.HandleEditorConnection(w, r)

		assert.NotEqual(t, http.StatusUnauthorized, w.Code)
	})
}
