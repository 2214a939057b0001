package server

import (
	"log/slog"
	"net/http"

	authHandlers "campaign-server/internal/auth/handlers"
	"campaign-server/internal/campaign"
	campaignHandlers "campaign-server/internal/campaign/handlers"
	"campaign-server/internal/middleware"
	serverHandlers "campaign-server/internal/server/handlers"
)

type Routes struct {
	service       *campaign.Service
	authenticator *middleware.Authenticator
	discordAuth   *authHandlers.DiscordAuthHandler
	logger        *slog.Logger
}

// NewRoutes wires the HTTP surface. discordAuth may be nil when Discord OAuth
// is not configured; the OAuth endpoints are then not registered.
func NewRoutes(service *campaign.Service, authenticator *middleware.Authenticator, discordAuth *authHandlers.DiscordAuthHandler, logger *slog.Logger) *Routes {
	return &Routes{
		service:       service,
		authenticator: authenticator,
		discordAuth:   discordAuth,
		logger:        logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := r.logger.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.service.Backend())
	h := campaignHandlers.NewCampaignHandler(r.service)

	authenticated := func(fn http.HandlerFunc) http.Handler {
		return r.authenticator.JWTMiddleware(fn)
	}
	admin := func(fn http.HandlerFunc) http.Handler {
		return r.authenticator.RequireAdmin(fn)
	}

	// Public endpoints
	mux.Handle("/api/server/health", healthHandler)
	mux.HandleFunc("/api/phase", h.GetPhase)
	mux.HandleFunc("/api/phase/history", h.GetPhaseHistory)
	mux.HandleFunc("/api/planets", h.ListPlanets)
	mux.HandleFunc("/api/planets/{name}", h.GetPlanet)
	mux.HandleFunc("/api/systems", h.ListSystems)
	mux.HandleFunc("/api/systems/{name}", h.GetSystem)
	mux.HandleFunc("/api/reports/active-systems", h.GetActiveSystems)
	mux.HandleFunc("/api/reports/factions", h.GetFactionReport)
	mux.HandleFunc("/api/factions", h.ListFactions)
	mux.HandleFunc("/api/honor/keywords", h.ListHonorKeywords)

	// Protected endpoints (authenticated users)
	mux.Handle("/api/me", authenticated(authHandlers.HandleMe))
	mux.Handle("/api/battles", authenticated(h.RecordBattle))
	mux.Handle("/api/honor/draw", authenticated(h.DrawHonor))

	// Admin-only endpoints (authenticated + admin role)
	mux.Handle("/api/admin/battles/backdated", admin(h.RecordBackdatedBattle))
	mux.Handle("/api/admin/phase/close", admin(h.ClosePhase))
	mux.Handle("/api/admin/stats", admin(h.ModifyStats))
	mux.Handle("/api/admin/systems", admin(h.AddSystem))
	mux.Handle("/api/admin/systems/{name}/planets", admin(h.AddPlanet))
	mux.Handle("/api/admin/systems/{name}/active", admin(h.SetSystemActive))
	mux.Handle("/api/admin/systems/{name}/rule", admin(h.SetSystemRule))
	mux.Handle("/api/admin/honor/keywords", admin(h.RefreshHonorKeywords))
	mux.Handle("/api/admin/reload", admin(h.Reload))

	authEndpoints := []string{}
	if r.discordAuth != nil {
		mux.HandleFunc("/auth/discord", r.discordAuth.HandleAuth)
		mux.HandleFunc("/auth/discord/callback", r.discordAuth.HandleCallback)
		mux.HandleFunc("/auth/logout", r.discordAuth.HandleLogout)
		authEndpoints = append(authEndpoints, "/auth/discord", "/auth/logout")
	} else {
		logger.Warn("Discord OAuth not configured, login endpoints disabled")
	}

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"/api/server/health", "/api/phase", "/api/planets", "/api/systems", "/api/reports", "/api/factions", "/api/honor/keywords"},
		"protected_endpoints", []string{"/api/me", "/api/battles", "/api/honor/draw"},
		"admin_endpoints", []string{"/api/admin/battles/backdated", "/api/admin/phase/close", "/api/admin/stats", "/api/admin/systems", "/api/admin/honor/keywords", "/api/admin/reload"},
		"auth_endpoints", authEndpoints,
	)

	return mux
}
