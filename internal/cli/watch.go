package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrNotWatchable is returned for sources that are not on the local filesystem.
var ErrNotWatchable = errors.New("source cannot be watched")

// WatchDebounce is how long the source must stay quiet before a reload.
var WatchDebounce = 300 * time.Millisecond

// Reloader is implemented by *arbor.Engine.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Watch reloads target whenever source changes on disk. It blocks until ctx is done.
// A failed reload keeps the previous tree and is only logged.
func Watch(ctx context.Context, source string, target Reloader, logger *slog.Logger) error {
	if strings.Contains(source, "://") {
		return fmt.Errorf("%w: %s", ErrNotWatchable, source)
	}
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotWatchable, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Editors often replace files by rename, so the parent directory is watched.
	match := func(string) bool { return true }
	if info.IsDir() {
		err = filepath.WalkDir(source, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if p != source && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return watcher.Add(p)
		})
	} else {
		want := filepath.Clean(source)
		match = func(name string) bool { return filepath.Clean(name) == want }
		err = watcher.Add(filepath.Dir(source))
	}
	if err != nil {
		return fmt.Errorf("watching %s: %w", source, err)
	}
	logger.Info("watching content tree", "source", source)

	timer := time.NewTimer(WatchDebounce)
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
			if event.Op == fsnotify.Chmod || !match(event.Name) {
				continue
			}
			if event.Op&fsnotify.Create != 0 && info.IsDir() {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			timer.Reset(WatchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)
		case <-timer.C:
			if err := target.Reload(ctx); err != nil {
				logger.Error("reload failed, keeping previous tree", "err", err)
				continue
			}
			logger.Info("content tree reloaded", "source", source)
		}
	}
}
