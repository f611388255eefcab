package config

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the config file when it changes on disk and hands the
// result to a handler. Only playback preferences are expected to take effect
// live; server changes need a restart.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	handler func(*Config)
	done    chan struct{}
}

// NewWatcher creates a watcher for the default config path.
func NewWatcher(handler func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	path := ConfigPath()
	// Watch the directory, not the file: editors replace the file on save
	// and a file watch would go stale after the first write.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch config dir: %w", err)
	}

	return &Watcher{
		watcher: fsw,
		path:    path,
		handler: handler,
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching for config changes. This blocks until Stop is called.
func (w *Watcher) Start() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := LoadFrom(w.path)
			if err != nil {
				slog.Warn("config reload failed", "path", w.path, "error", err)
				continue
			}
			slog.Info("config reloaded", "path", w.path)
			w.handler(cfg)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher error", "error", err)
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
	w.watcher.Close()
}
