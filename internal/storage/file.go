package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileRepository keeps the document in a single file, replaced atomically on
// every save.
type FileRepository struct {
	path   string
	logger *slog.Logger

	mu         sync.Mutex
	lastDigest uint64
	known      bool
}

func NewFileRepository(path string, logger *slog.Logger) *FileRepository {
	logger.Debug("Initializing file state repository", "path", path)
	return &FileRepository{
		path:   filepath.Clean(path),
		logger: logger,
	}
}

func (r *FileRepository) Name() string {
	return "file"
}

func (r *FileRepository) Path() string {
	return r.path
}

func (r *FileRepository) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) || (err == nil && len(data) == 0) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}

	r.remember(data)
	return data, nil
}

func (r *FileRepository) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Remember before the rename so a watcher never sees our own write as
	// foreign.
	r.remember(data)
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace %s: %w", r.path, err)
	}

	r.logger.Debug("Campaign state written", "path", r.path, "bytes", len(data))
	return nil
}

func (r *FileRepository) remember(data []byte) {
	r.mu.Lock()
	r.lastDigest = Digest(data)
	r.known = true
	r.mu.Unlock()
}

// IsCurrent reports whether data is the content last read or written by
// this repository.
func (r *FileRepository) IsCurrent(data []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.known && r.lastDigest == Digest(data)
}
