package config

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors path and calls onChange with a freshly loaded Config each
// time the file is rewritten. It blocks until ctx is cancelled.
//
// A failed reload (invalid YAML, validation error) is logged and swallowed:
// the previous config stays active and onChange is not called.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}
	slog.Info("config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if cfg := reloadOn(event, path); cfg != nil {
				onChange(cfg)
				// An atomic save replaces the inode; re-add so the next
				// write is still observed.
				_ = watcher.Add(path)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

// reloadOn loads the config when event is a write or create on path.
// Editors often save via rename, which surfaces as fsnotify.Create.
// Returns nil when the event is irrelevant or the reload failed.
func reloadOn(event fsnotify.Event, path string) *Config {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return nil
	}

	cfg, err := Load(path)
	if err != nil {
		slog.Error("config: reload failed — keeping previous config",
			"path", path, "err", err)
		return nil
	}

	slog.Info("config: reloaded", "path", path)
	return cfg
}
