package server

import (
	"context"
	"fmt"
	"log/slog"

	"campaign-server/internal/campaign"
	"campaign-server/internal/honor"
	"campaign-server/internal/shared/config"
	"campaign-server/internal/shared/database"
	sharedredis "campaign-server/internal/shared/redis"
	"campaign-server/internal/storage"
	"campaign-server/migrations"
)

// State bundles the campaign service with the connections behind it.
type State struct {
	Service *campaign.Service
	Store   *campaign.Store
	Repo    storage.Repository
	// File is set when the document lives on disk.
	File     *storage.FileRepository
	Postgres *storage.PostgresRepository

	db    *database.DB
	redis *sharedredis.Client
}

// OpenRepository connects the configured state backend, mirrored to Redis
// when requested.
func OpenRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*State, error) {
	st := &State{}

	var err error
	if cfg.Redis.Enabled {
		st.redis, err = sharedredis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
	}

	switch cfg.State.Backend {
	case config.StateBackendPostgres:
		st.db, err = database.Connect(ctx, cfg.Database)
		if err != nil {
			st.Close()
			return nil, err
		}
		if err := st.db.RunMigrations(ctx, migrations.FS); err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		st.Postgres = storage.NewPostgresRepository(st.db, cfg.Database.HistoryRetention, logger)
		st.Repo = st.Postgres
	case config.StateBackendRedis:
		st.Repo = storage.NewRedisRepository(st.redis, cfg.Redis.StateKey, logger)
	default:
		st.File = storage.NewFileRepository(cfg.State.File, logger)
		st.Repo = st.File
	}

	if cfg.State.MirrorToRedis && cfg.State.Backend != config.StateBackendRedis {
		mirror := storage.NewRedisRepository(st.redis, cfg.Redis.StateKey, logger)
		st.Repo = storage.NewMirroredRepository(st.Repo, mirror, logger)
	}
	return st, nil
}

// OpenState loads the campaign from the configured backend and builds the
// service around it.
func OpenState(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*State, error) {
	seed, err := campaign.LoadSeed(cfg.Campaign.SeedPath)
	if err != nil {
		return nil, err
	}

	st, err := OpenRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	st.Store = campaign.Open(ctx, st.Repo, seed, logger)
	st.Store.SetSaveTimeout(cfg.State.SaveTimeout)

	drawer := honor.NewDrawer(honor.MatchMode(cfg.Campaign.HonorMatch), cfg.Campaign.MinHonors, nil, logger)
	st.Service = campaign.NewService(st.Store, drawer, logger)
	return st, nil
}

func (st *State) Close() {
	if st.db != nil {
		if err := st.db.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}
	if err := st.redis.Close(); err != nil {
		slog.Warn("Failed to close redis", "error", err)
	}
}
