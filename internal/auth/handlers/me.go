package handlers

import (
	"log/slog"
	"net/http"

	"campaign-server/internal/middleware"
	"campaign-server/internal/shared/errors"
	"campaign-server/internal/shared/response"
)

type MeResponse struct {
	DiscordID string `json:"discord_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Admin     bool   `json:"admin"`
}

// HandleMe reports the identity carried by the caller's token.
func HandleMe(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "auth_me")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	response.Success(w, http.StatusOK, MeResponse{
		DiscordID: claims.DiscordID,
		Username:  claims.Username,
		Role:      claims.Role,
		Admin:     claims.IsAdmin(),
	})
}
