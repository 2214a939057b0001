package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campaign-server/internal/auth"
	authHandlers "campaign-server/internal/auth/handlers"
	"campaign-server/internal/auth/providers"
	"campaign-server/internal/middleware"
	"campaign-server/internal/server"
	"campaign-server/internal/shared/config"
	"campaign-server/internal/shared/logger"
	"campaign-server/internal/storage"
)

func main() {
	if err := config.Init(); err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}
	logger.Init()

	cfg := config.GlobalConfig
	log := slog.With("component", "main")
	log.Info("Starting campaign server",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"state_backend", cfg.State.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state, err := server.OpenState(ctx, cfg, slog.Default())
	if err != nil {
		log.Error("Failed to open campaign state", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	if state.File != nil && cfg.State.Watch {
		watcher, err := storage.NewWatcher(state.File, state.Store, cfg.State.WatchDebounce, slog.Default())
		if err != nil {
			log.Warn("State file watcher disabled", "error", err)
		} else {
			go watcher.Run(ctx)
		}
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiration)
	if err != nil {
		log.Error("Failed to initialize token manager", "error", err)
		os.Exit(1)
	}

	var discordAuth *authHandlers.DiscordAuthHandler
	if cfg.DiscordOAuthConfigured() {
		states := auth.NewStateManager()
		go states.RunCleanup(ctx, 5*time.Minute)

		discord := cfg.OAuth.Discord
		provider := providers.NewDiscordProvider(providers.NewDiscordOAuthConfig(
			discord.ClientID, discord.ClientSecret, discord.RedirectURL, discord.Scopes))
		discordAuth = authHandlers.NewDiscordAuthHandler(provider, states, tokens, cfg)
	}

	routes := server.NewRoutes(state.Service, middleware.NewAuthenticator(tokens), discordAuth, slog.Default())
	var handler http.Handler = routes.Setup()

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit)
		go limiter.RunCleanup(ctx)
		handler = limiter.Middleware(handler)
	}
	handler = middleware.NewCORS(cfg.Frontend).Middleware(handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr, "url", cfg.Server.URL)
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}
	log.Info("Campaign server stopped")
}
