package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teslashibe/go-vibewave/internal/log"
)

// settle is how long the file must stay quiet before a reload. Editors often
// write a file in several steps.
const settle = 100 * time.Millisecond

// Watcher reloads a config file when it changes.
type Watcher struct {
	path   string
	fsw    *fsnotify.Watcher
	logger *slog.Logger
}

// NewWatcher starts watching path. The parent directory is watched so that
// editors which replace the file are still seen.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:   filepath.Clean(abs),
		fsw:    fsw,
		logger: log.With("component", "config.watcher", "path", abs),
	}, nil
}

// Run calls fn with each successfully reloaded config until ctx is done.
// A file that fails to load or validate is logged and skipped.
func (w *Watcher) Run(ctx context.Context, fn func(Config)) error {
	defer w.fsw.Close()

	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(settle)
			} else {
				timer.Reset(settle)
			}
			reload = timer.C

		case <-reload:
			reload = nil
			cfg, err := Load(w.path)
			if err != nil {
				w.logger.Warn("config reload failed", "error", err)
				continue
			}
			w.logger.Info("config reloaded")
			fn(cfg)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// Watch reloads path on change until ctx is done.
func Watch(ctx context.Context, path string, fn func(Config)) error {
	w, err := NewWatcher(path)
	if err != nil {
		return err
	}
	return w.Run(ctx, fn)
}
