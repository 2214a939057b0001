package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campaign-server/internal/shared/database"
)

// PostgresRepository keeps the document in the single-row campaign_state
// table and a bounded trail of previous documents in campaign_state_history.
type PostgresRepository struct {
	db        *database.DB
	retention int
	logger    *slog.Logger
}

func NewPostgresRepository(db *database.DB, retention int, logger *slog.Logger) *PostgresRepository {
	logger.Debug("Initializing postgres state repository", "retention", retention)
	return &PostgresRepository{db: db, retention: retention, logger: logger}
}

func (r *PostgresRepository) Name() string {
	return "postgres"
}

func (r *PostgresRepository) Load(ctx context.Context) ([]byte, error) {
	var document string
	err := r.db.QueryRowContext(ctx, `SELECT document FROM campaign_state WHERE id = 1`).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query campaign state: %w", err)
	}
	return []byte(document), nil
}

func (r *PostgresRepository) Save(ctx context.Context, data []byte) error {
	logger := r.logger.With("component", "postgres_state", "operation", "save")

	tx, err := r.db.BeginTxContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			logger.Error("Failed to rollback transaction", "error", err)
		}
	}()

	digest := DigestString(data)
	query := `
		INSERT INTO campaign_state (id, document, digest, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE
		SET document = EXCLUDED.document, digest = EXCLUDED.digest, updated_at = EXCLUDED.updated_at`
	if _, err := tx.ExecContext(ctx, query, string(data), digest); err != nil {
		return fmt.Errorf("upsert campaign state: %w", err)
	}

	if r.retention > 0 {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO campaign_state_history (document, digest) VALUES ($1, $2)`,
			string(data), digest); err != nil {
			return fmt.Errorf("record campaign state history: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM campaign_state_history
			WHERE id NOT IN (
				SELECT id FROM campaign_state_history ORDER BY id DESC LIMIT $1
			)`, r.retention); err != nil {
			return fmt.Errorf("prune campaign state history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit campaign state: %w", err)
	}

	logger.Debug("Campaign state saved", "digest", digest, "bytes", len(data))
	return nil
}

// Revision is a previously saved document.
type Revision struct {
	ID      int64     `json:"id"`
	Digest  string    `json:"digest"`
	SavedAt time.Time `json:"saved_at"`
	Size    int       `json:"size"`
}

// Revisions lists the most recent saved documents, newest first.
func (r *PostgresRepository) Revisions(ctx context.Context, limit int) ([]Revision, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, digest, saved_at, LENGTH(document::text)
		FROM campaign_state_history
		ORDER BY id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	var revisions []Revision
	for rows.Next() {
		var rev Revision
		if err := rows.Scan(&rev.ID, &rev.Digest, &rev.SavedAt, &rev.Size); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revisions = append(revisions, rev)
	}
	return revisions, rows.Err()
}
