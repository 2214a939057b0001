package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campaign-server/internal/auth"
	"campaign-server/internal/shared/cookies"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestAuthenticator(t *testing.T) (*Authenticator, *auth.TokenManager) {
	t.Helper()
	tokens, err := auth.NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)
	return NewAuthenticator(tokens), tokens
}

func tokenFor(t *testing.T, tokens *auth.TokenManager, role string) string {
	t.Helper()
	token, err := tokens.Generate(auth.Identity{DiscordID: "42", Username: "warden", Role: role})
	require.NoError(t, err)
	return token
}

func echoClaims(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetUserFromContext(r)
		require.NotNil(t, claims)
		_, _ = w.Write([]byte(claims.Username))
	})
}

func TestJWTMiddleware(t *testing.T) {
	a, tokens := newTestAuthenticator(t)
	handler := a.JWTMiddleware(echoClaims(t))

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, tokens, auth.RolePlayer))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "warden", rec.Body.String())
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.AddCookie(&http.Cookie{Name: cookies.AuthCookieName, Value: tokenFor(t, tokens, auth.RolePlayer)})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	a, tokens := newTestAuthenticator(t)
	handler := a.RequireAdmin(echoClaims(t))

	tests := []struct {
		name string
		role string
		want int
	}{
		{"player is forbidden", auth.RolePlayer, http.StatusForbidden},
		{"admin passes", auth.RoleAdmin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/phase/close", nil)
			req.Header.Set("Authorization", "Bearer "+tokenFor(t, tokens, tt.role))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	t.Run("admin middleware without claims", func(t *testing.T) {
		rec := httptest.NewRecorder()
		AdminMiddleware(echoClaims(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
