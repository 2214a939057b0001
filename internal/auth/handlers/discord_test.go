package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"campaign-server/internal/auth"
	"campaign-server/internal/auth/providers"
	"campaign-server/internal/shared/config"
	"campaign-server/internal/shared/cookies"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeProvider struct {
	user        *providers.OAuthUser
	exchangeErr error
}

func (p *fakeProvider) Name() string { return "discord" }

func (p *fakeProvider) GetAuthURL(state string) string {
	return "https://discord.example/authorize?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return &oauth2.Token{AccessToken: "access-" + code}, nil
}

func (p *fakeProvider) GetUserInfo(ctx context.Context, token *oauth2.Token) (*providers.OAuthUser, error) {
	return p.user, nil
}

type fixture struct {
	handler *DiscordAuthHandler
	states  *auth.StateManager
	tokens  *auth.TokenManager
}

func newFixture(t *testing.T, provider *fakeProvider) *fixture {
	t.Helper()
	tokens, err := auth.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	require.NoError(t, err)

	cfg := &config.Config{
		Auth:     config.AuthConfig{TokenExpiration: time.Hour, AdminDiscordIDs: []string{"100"}},
		Frontend: config.FrontendConfig{URL: "http://localhost:3000"},
		OAuth: config.OAuthConfig{Discord: config.DiscordOAuthConfig{
			ClientID:     "client",
			ClientSecret: "secret",
		}},
	}
	states := auth.NewStateManager()
	return &fixture{
		handler: NewDiscordAuthHandler(provider, states, tokens, cfg),
		states:  states,
		tokens:  tokens,
	}
}

func authCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookies.AuthCookieName {
			return c
		}
	}
	return nil
}

func TestHandleAuthRedirectsWithState(t *testing.T) {
	f := newFixture(t, &fakeProvider{})

	rec := httptest.NewRecorder()
	f.handler.HandleAuth(rec, httptest.NewRequest(http.MethodGet, "/auth/discord", nil))

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.NotEmpty(t, location.Query().Get("state"))
	assert.Equal(t, 1, f.states.Pending())
}

func TestHandleCallback(t *testing.T) {
	tests := []struct {
		name      string
		user      *providers.OAuthUser
		wantAdmin bool
	}{
		{"player", &providers.OAuthUser{ID: "7", Username: "scout", Name: "Scout"}, false},
		{"configured admin", &providers.OAuthUser{ID: "100", Username: "warden", Name: "Warden"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, &fakeProvider{user: tt.user})
			state, err := f.states.GenerateState("discord", "test-agent")
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/auth/discord/callback?code=abc&state="+url.QueryEscape(state), nil)
			req.Header.Set("User-Agent", "test-agent")
			rec := httptest.NewRecorder()
			f.handler.HandleCallback(rec, req)

			require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
			assert.Equal(t, "http://localhost:3000/auth/callback?success=true", rec.Header().Get("Location"))

			cookie := authCookie(rec)
			require.NotNil(t, cookie)
			claims, err := f.tokens.Validate(cookie.Value)
			require.NoError(t, err)
			assert.Equal(t, tt.user.ID, claims.DiscordID)
			assert.Equal(t, tt.user.Name, claims.Username)
			assert.Equal(t, tt.wantAdmin, claims.IsAdmin())
		})
	}
}

func TestHandleCallbackFailures(t *testing.T) {
	t.Run("denied", func(t *testing.T) {
		f := newFixture(t, &fakeProvider{})
		rec := httptest.NewRecorder()
		f.handler.HandleCallback(rec, httptest.NewRequest(http.MethodGet, "/auth/discord/callback?error=access_denied", nil))
		assert.Equal(t, "http://localhost:3000/auth/error?error=oauth_denied", rec.Header().Get("Location"))
	})

	t.Run("unknown state", func(t *testing.T) {
		f := newFixture(t, &fakeProvider{})
		rec := httptest.NewRecorder()
		f.handler.HandleCallback(rec, httptest.NewRequest(http.MethodGet, "/auth/discord/callback?code=abc&state=forged", nil))
		assert.Equal(t, "http://localhost:3000/auth/error?error=oauth_error", rec.Header().Get("Location"))
		assert.Nil(t, authCookie(rec))
	})

	t.Run("exchange error", func(t *testing.T) {
		f := newFixture(t, &fakeProvider{exchangeErr: fmt.Errorf("boom")})
		state, err := f.states.GenerateState("discord", "")
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		f.handler.HandleCallback(rec, httptest.NewRequest(http.MethodGet, "/auth/discord/callback?code=abc&state="+url.QueryEscape(state), nil))
		assert.Equal(t, "http://localhost:3000/auth/error?error=oauth_error", rec.Header().Get("Location"))
	})
}

func TestHandleLogoutClearsCookie(t *testing.T) {
	f := newFixture(t, &fakeProvider{})
	rec := httptest.NewRecorder()
	f.handler.HandleLogout(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	cookie := authCookie(rec)
	require.NotNil(t, cookie)
	assert.Equal(t, -1, cookie.MaxAge)
}
