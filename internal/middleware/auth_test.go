package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoOperator() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		op, _ := OperatorFromContext(r.Context())
		w.Write([]byte(op))
	})
}

func TestAuthMiddleware(t *testing.T) {
	const secret = "test-secret"
	handler := NewAuthMiddleware(secret)(echoOperator())

	serve := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	t.Run("valid token", func(t *testing.T) {
		token, err := GenerateToken(secret, "teller-7", time.Hour)
		require.NoError(t, err)

		w := serve("Bearer " + token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "teller-7", w.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		w := serve("")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Authorization header required")
	})

	t.Run("wrong scheme", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve("Basic abc").Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateToken("other-secret", "teller-7", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, serve("Bearer "+token).Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := GenerateToken(secret, "teller-7", -time.Minute)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, serve("Bearer "+token).Code)
	})

	t.Run("no subject", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString([]byte(secret))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, serve("Bearer "+token).Code)
	})

	t.Run("other algorithm rejected", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
			Subject: "teller-7",
		}).SignedString([]byte(secret))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, serve("Bearer "+token).Code)
	})
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	handler := NewAuthMiddleware("")(echoOperator())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	_, err := GenerateToken("", "x", time.Minute)
	assert.Error(t, err)
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeaders(echoOperator()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}
