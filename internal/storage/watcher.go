package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader replaces in-memory state with the persisted document.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Watcher reloads the campaign when its state file is edited outside the
// process. Bursts of events are coalesced and the repository's own writes are
// ignored.
type Watcher struct {
	repo     *FileRepository
	target   Reloader
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
}

func NewWatcher(repo *FileRepository, target Reloader, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	// Watch the directory: atomic saves replace the file, which drops a
	// watch held on the file itself.
	dir := filepath.Dir(repo.Path())
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		repo:     repo,
		target:   target,
		debounce: debounce,
		watcher:  fw,
		logger:   logger.With("component", "state_watcher", "path", repo.Path()),
	}, nil
}

// Run processes events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	w.logger.Info("Watching campaign state file")

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("State watcher stopped")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.repo.Path() {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("State watcher error", "error", err)

		case <-timer.C:
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	data, err := os.ReadFile(w.repo.Path())
	if err != nil {
		w.logger.Warn("State file unreadable after change", "error", err)
		return
	}
	if len(data) == 0 || w.repo.IsCurrent(data) {
		return
	}

	w.logger.Info("State file changed on disk, reloading")
	if err := w.target.Reload(ctx); err != nil {
		w.logger.Error("Failed to reload campaign state", "error", err)
	}
}
