package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the file at path whenever it is written or replaced and
// passes every valid result to apply. Invalid files are logged and
// skipped. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, logger *slog.Logger, apply func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	defer w.Close()
	// Editors often replace the file, so the directory is watched.
	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				logger.WarnContext(ctx, "config reload failed", "path", path, "error", err)
				continue
			}
			logger.InfoContext(ctx, "config reloaded", "path", path)
			apply(cfg)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.WarnContext(ctx, "config watcher error", "error", err)
		}
	}
}

// SlowQueryThresholder is implemented by drivers whose slow-query
// threshold can change at runtime.
type SlowQueryThresholder interface {
	SetSlowThreshold(time.Duration)
}

// Reloader applies the settings that take effect without a restart:
// log.level and database.slow_query_threshold.
type Reloader struct {
	Level  *slog.LevelVar
	Driver SlowQueryThresholder
}

// Apply updates the live settings from cfg.
func (r *Reloader) Apply(cfg *Config) {
	if r.Level != nil {
		if level, err := cfg.Log.SlogLevel(); err == nil {
			r.Level.Set(level)
		}
	}
	if r.Driver != nil {
		r.Driver.SetSlowThreshold(cfg.Database.SlowQueryThreshold)
	}
}
