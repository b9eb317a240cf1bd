// Package watch hot-reloads the keyword taxonomy when its YAML file changes on disk.
package watch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grievease/petition-triage/internal/core/classification"
)

const DefaultDebounce = 500 * time.Millisecond

// TaxonomyApplier receives every successfully parsed taxonomy.
type TaxonomyApplier interface {
	ApplyTaxonomy(t *classification.Taxonomy)
}

// TaxonomyWatcher watches the file's directory, since editors and config-map mounts
// replace files by rename rather than writing in place.
type TaxonomyWatcher struct {
	path     string
	applier  TaxonomyApplier
	debounce time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	lastHash [sha256.Size]byte
}

func NewTaxonomyWatcher(path string, applier TaxonomyApplier, debounce time.Duration, logger *slog.Logger) *TaxonomyWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaxonomyWatcher{
		path:     filepath.Clean(path),
		applier:  applier,
		debounce: debounce,
		logger:   logger,
	}
}

// LoadNow reads the file once and applies it when its content changed.
func (w *TaxonomyWatcher) LoadNow() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("read taxonomy %s: %w", w.path, err)
	}
	sum := sha256.Sum256(data)

	w.mu.Lock()
	unchanged := bytes.Equal(sum[:], w.lastHash[:])
	w.mu.Unlock()
	if unchanged {
		return nil
	}

	taxonomy, err := classification.ParseTaxonomy(data)
	if err != nil {
		return fmt.Errorf("parse taxonomy %s: %w", w.path, err)
	}
	w.applier.ApplyTaxonomy(taxonomy)

	w.mu.Lock()
	w.lastHash = sum
	w.mu.Unlock()
	w.logger.Info("taxonomy_applied", "path", w.path, "departments", len(taxonomy.Departments))
	return nil
}

// Run blocks until ctx is done. A file that fails to parse is logged and the
// previous taxonomy stays in effect.
func (w *TaxonomyWatcher) Run(ctx context.Context, ready chan<- struct{}) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create taxonomy watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	if ready != nil {
		close(ready)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := w.LoadNow(); err != nil {
				w.logger.Warn("taxonomy_reload_failed", "path", w.path, "error", err)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("taxonomy_watch_error", "path", w.path, "error", err)
		}
	}
}
