// Package watcher triggers corpus rescans when files change on disk.
// Events are debounced so a burst of writes (an unpacking archive, an
// editor save cascade) causes one rescan, not one per file.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/cerebro/internal/core/domain"
	"github.com/custodia-labs/cerebro/internal/core/ports/driving"
	"github.com/custodia-labs/cerebro/internal/logger"
)

// DefaultDebounce is the quiet period after the last event before a
// rescan fires.
const DefaultDebounce = 10 * time.Second

// Watcher observes the corpus root recursively and drives the ingestor.
type Watcher struct {
	root     string
	debounce time.Duration
	ingestor driving.Ingestor

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New creates a watcher over the corpus root.
func New(root string, debounce time.Duration, ingestor driving.Ingestor) (*Watcher, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: empty watch root", domain.ErrInvalidInput)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{root: root, debounce: debounce, ingestor: ingestor}, nil
}

// Start begins watching. It blocks until the context is cancelled or
// Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	w.wg.Add(1)
	defer w.wg.Done()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := watchTree(fsw, w.root); err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}

	logger.Info("Watching %s (debounce %s)", w.root, w.debounce)

	// The timer stays parked until the first relevant event.
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-stopCh:
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			// New directories must be watched before their files
			// generate events.
			if event.Op.Has(fsnotify.Create) {
				if err := watchTree(fsw, event.Name); err != nil {
					logger.Debug("Cannot watch %s: %v", event.Name, err)
				}
			}
			logger.Debug("Change detected: %s", event)
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-timer.C:
			report, err := w.ingestor.Scan(ctx)
			if err != nil {
				logger.Error("Rescan after change failed: %v", err)
				continue
			}
			if report.Ingested > 0 {
				logger.Info("Rescan ingested %d documents (%d chunks)", report.Ingested, report.ChunksAdded)
			}
		}
	}
}

// Stop ends the watch loop and waits for it to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	w.wg.Wait()
}

// relevant filters events that could introduce or change documents.
func relevant(event fsnotify.Event) bool {
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	return event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Rename)
}

// watchTree adds path and every directory below it to the watcher.
// Non-directory paths are ignored.
func watchTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// The path may be gone already; events race deletions.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}
