package render

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the registry whenever a *.tmpl file under dir changes. It
// blocks until ctx is done. Used in dev mode only.
func (r *Registry) Watch(ctx context.Context, dir string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// fsnotify is not recursive; register every directory.
	if err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	}); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".tmpl") || ev.Op == fsnotify.Chmod {
				continue
			}
			if err := r.Reload(); err != nil {
				logger.Warn("template reload failed", zap.String("file", ev.Name), zap.Error(err))
				continue
			}
			logger.Info("templates reloaded", zap.String("file", ev.Name))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("template watcher error", zap.Error(err))
		}
	}
}
