package handlers

import (
	"fmt"
	"net/http"
	"net/url"
)

// redirectWithError redirects to the frontend error page
func (h *DiscordAuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, errorType string) {
	errorURL := fmt.Sprintf("%s/auth/error?error=%s", h.cfg.Frontend.URL, url.QueryEscape(errorType))
	http.Redirect(w, r, errorURL, http.StatusTemporaryRedirect)
}
