package campaign

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"campaign-server/internal/shared/errors"
	"campaign-server/internal/storage"
)

// Store owns the live campaign. Reads share a consistent snapshot; mutations
// and reloads are serialized on the same lock.
type Store struct {
	mu       sync.RWMutex
	campaign *Campaign
	repo     storage.Repository
	roster   []Faction
	timeout  time.Duration
	logger   *slog.Logger
}

// Open loads the persisted campaign. When nothing is persisted yet the seed
// is used and saved; when the document cannot be read or decoded the seed is
// used in memory only and the failure logged.
func Open(ctx context.Context, repo storage.Repository, seed *Seed, logger *slog.Logger) *Store {
	logger = logger.With("component", "campaign_store", "backend", repo.Name())
	logger.Debug("Initializing campaign store")

	s := &Store{
		repo:    repo,
		roster:  seed.Roster(),
		timeout: 10 * time.Second,
		logger:  logger,
	}

	c, err := s.load(ctx)
	switch {
	case err == nil:
		s.campaign = c
		logger.Info("Campaign state loaded",
			"sector", c.Phase.Sector,
			"sub_sector", c.Phase.SubSector,
			"phase", c.Phase.Number)
		return s
	case stderrors.Is(err, storage.ErrNotFound):
		logger.Info("No persisted campaign state, starting from seed")
		s.campaign = seed.Campaign()
		if err := s.flush(ctx); err != nil {
			logger.Warn("Seeded campaign state was not persisted", "error", err)
		}
	default:
		// The unreadable document is left in place until the next mutation.
		logger.Error("Failed to load campaign state, starting from seed", "error", err)
		s.campaign = seed.Campaign()
	}
	return s
}

// SetSaveTimeout bounds each repository write.
func (s *Store) SetSaveTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

func (s *Store) load(ctx context.Context) (*Campaign, error) {
	data, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Decode(data, s.roster)
}

// View runs fn against the campaign under the read lock. fn must not retain
// or modify the campaign.
func (s *Store) View(fn func(c *Campaign) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.campaign)
}

// Mutate runs fn under the write lock and flushes the full document when fn
// succeeds. A failed flush leaves the in-memory state in place and is
// reported through persisted=false.
func (s *Store) Mutate(ctx context.Context, op string, fn func(c *Campaign) error) (persisted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.campaign); err != nil {
		return false, err
	}

	if err := s.flush(ctx); err != nil {
		s.logger.Error("Failed to persist campaign state",
			"operation", op,
			"error", err)
		return false, nil
	}
	return true, nil
}

// flush must be called with the write lock held.
func (s *Store) flush(ctx context.Context) error {
	data, err := Encode(s.campaign)
	if err != nil {
		return errors.WrapCoded(ErrPersistenceWriteFailed, "failed to encode campaign state", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.Save(ctx, data); err != nil {
		return errors.WrapCoded(ErrPersistenceWriteFailed, "failed to save campaign state", err)
	}
	return nil
}

// Reload replaces the in-memory campaign with the persisted one. On failure
// the current state is kept.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(ctx)
	if err != nil {
		s.logger.Error("Failed to reload campaign state, keeping current state", "error", err)
		return errors.WrapCoded(ErrPersistenceReadFailed, "failed to reload campaign state", err)
	}
	s.campaign = c
	s.logger.Info("Campaign state reloaded",
		"sub_sector", c.Phase.SubSector,
		"phase", c.Phase.Number)
	return nil
}

// Snapshot returns the serialized document of the current state.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Encode(s.campaign)
}

func (s *Store) Backend() string {
	return s.repo.Name()
}
