package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"campaign-server/internal/auth"
	"campaign-server/internal/auth/providers"
	"campaign-server/internal/shared/config"
	"campaign-server/internal/shared/cookies"
	"campaign-server/internal/shared/errors"
	"campaign-server/internal/shared/response"
)

type DiscordAuthHandler struct {
	provider providers.OAuthProvider
	states   *auth.StateManager
	tokens   *auth.TokenManager
	cfg      *config.Config
}

func NewDiscordAuthHandler(provider providers.OAuthProvider, states *auth.StateManager, tokens *auth.TokenManager, cfg *config.Config) *DiscordAuthHandler {
	return &DiscordAuthHandler{
		provider: provider,
		states:   states,
		tokens:   tokens,
		cfg:      cfg,
	}
}

func (h *DiscordAuthHandler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "discord_oauth_init")

	if !h.cfg.DiscordOAuthConfigured() {
		response.Error(w, r, logger, errors.External("Discord OAuth is not properly configured"))
		return
	}

	state, err := h.states.GenerateState(h.provider.Name(), r.UserAgent())
	if err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to initialize OAuth flow", err))
		return
	}

	http.Redirect(w, r, h.provider.GetAuthURL(state), http.StatusTemporaryRedirect)
}

func (h *DiscordAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	errorParam := r.URL.Query().Get("error")

	logger := slog.With(
		"handler", "discord_oauth_callback",
		"user_agent", r.UserAgent(),
		"ip", r.RemoteAddr,
		"has_code", code != "",
		"has_state", state != "",
	)

	if errorParam != "" {
		logger.Warn("Discord OAuth authorization denied",
			"oauth_error", errorParam,
			"error_description", r.URL.Query().Get("error_description"))
		h.redirectWithError(w, r, "oauth_denied")
		return
	}

	if code == "" {
		logger.Error("Discord OAuth callback missing authorization code")
		h.redirectWithError(w, r, "oauth_error")
		return
	}

	if err := h.states.ValidateState(state, h.provider.Name(), r.UserAgent()); err != nil {
		logger.Error("OAuth state validation failed", "error", err)
		h.redirectWithError(w, r, "oauth_error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	token, err := h.provider.ExchangeCode(ctx, code)
	if err != nil {
		logger.Error("Failed to exchange Discord authorization code", "error", err)
		h.redirectWithError(w, r, "oauth_error")
		return
	}

	user, err := h.provider.GetUserInfo(ctx, token)
	if err != nil {
		logger.Error("Failed to get user info from Discord", "error", err)
		h.redirectWithError(w, r, "oauth_error")
		return
	}

	role := auth.RolePlayer
	if h.cfg.IsAdminDiscordID(user.ID) {
		role = auth.RoleAdmin
	}

	userLogger := logger.With("discord_user_id", user.ID, "user_name", user.Name, "role", role)

	jwtToken, err := h.tokens.Generate(auth.Identity{
		DiscordID: user.ID,
		Username:  user.Name,
		Role:      role,
	})
	if err != nil {
		userLogger.Error("Failed to generate JWT token", "error", err)
		h.redirectWithError(w, r, "auth_error")
		return
	}

	cookies.SetAuthCookie(w, h.cfg, jwtToken)

	userLogger.Info("Discord OAuth authentication successful")

	successURL := fmt.Sprintf("%s/auth/callback?success=true", h.cfg.Frontend.URL)
	http.Redirect(w, r, successURL, http.StatusTemporaryRedirect)
}

func (h *DiscordAuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	cookies.ClearAuthCookie(w, h.cfg)
	response.Success(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
