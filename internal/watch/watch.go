// Package watch re-runs an action whenever a file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses the burst of events an editor produces on save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher runs Action after each change to Path.
type Watcher struct {
	Path     string
	Debounce time.Duration
	Action   func() error
	Log      *zap.Logger
}

// Run blocks until ctx is done. The directory holding Path is watched, not
// the file itself, so saves that replace the file are still seen. Action
// failures are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	target, err := filepath.Abs(w.Path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}
	log.Info("watching", zap.String("file", target))

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event, target) {
				continue
			}
			log.Debug("change", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))

		case <-timer.C:
			if err := w.Action(); err != nil {
				log.Error("action failed", zap.String("file", target), zap.Error(err))
			}
		}
	}
}

func relevant(event fsnotify.Event, target string) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
