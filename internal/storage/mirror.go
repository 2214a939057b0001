package storage

import (
	"context"
	"log/slog"
)

// Repository is the load/save contract shared by every backend.
type Repository interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Name() string
}

// MirroredRepository reads and writes a primary repository and copies every
// saved document to a mirror. Mirror failures are logged and otherwise
// ignored.
type MirroredRepository struct {
	primary Repository
	mirror  Repository
	logger  *slog.Logger
}

func NewMirroredRepository(primary, mirror Repository, logger *slog.Logger) *MirroredRepository {
	logger.Debug("Initializing mirrored state repository",
		"primary", primary.Name(), "mirror", mirror.Name())
	return &MirroredRepository{primary: primary, mirror: mirror, logger: logger}
}

func (r *MirroredRepository) Name() string {
	return r.primary.Name() + "+" + r.mirror.Name()
}

func (r *MirroredRepository) Load(ctx context.Context) ([]byte, error) {
	return r.primary.Load(ctx)
}

func (r *MirroredRepository) Save(ctx context.Context, data []byte) error {
	if err := r.primary.Save(ctx, data); err != nil {
		return err
	}
	if err := r.mirror.Save(ctx, data); err != nil {
		r.logger.Warn("Failed to mirror campaign state",
			"component", "mirrored_state",
			"mirror", r.mirror.Name(),
			"error", err)
	}
	return nil
}
