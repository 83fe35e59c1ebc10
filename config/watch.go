package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the file at path whenever it is written or replaced and
// calls onChange with the new config from the watcher goroutine. Files that
// fail to load are logged and skipped. The watcher stops when ctx is done.
func Watch(ctx context.Context, path string, onChange func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watch: %w", err)
	}
	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("config watch %q: %w", path, err)
	}
	target := filepath.Clean(path)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, ok, err := reload(path)
				if err != nil {
					slog.Error("config reload failed", "path", path, "err", err)
					continue
				}
				if !ok {
					continue
				}
				slog.Info("config reloaded", "path", path)
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("config watcher error", "err", err)
			}
		}
	}()
	return nil
}

// reload loads path unless the file is empty. Editors truncate before
// writing, and an empty file would otherwise decode as the defaults.
func reload(path string) (Config, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Config{}, false, fmt.Errorf("config: %w", err)
	}
	if info.Size() == 0 {
		return Config{}, false, nil
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, false, err
	}
	return cfg, true, nil
}
