package builder

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch rebuilds the whole index whenever a matching file in the source
// directory changes, once no further change has arrived for delay. It runs
// until ctx is cancelled. onBuild, if set, sees every rebuild outcome.
func (b *Builder) Watch(ctx context.Context, delay time.Duration, onBuild func(*Report, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(b.opts.SourceDir); err != nil {
		return fmt.Errorf("%w: %w", ErrNoSourceDir, err)
	}
	b.log.Info("watching for changes", "source_dir", b.opts.SourceDir, "delay", delay.String())

	timer := time.NewTimer(delay)
	timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !b.relevant(ev) {
				continue
			}
			b.log.Debug("source changed", "file", filepath.Base(ev.Name), "op", ev.Op.String())
			timer.Reset(delay)
			pending = true

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			b.log.Warn("watcher error", "error", err)

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			report, err := b.Build()
			if err != nil {
				b.log.Error("rebuild failed", "error", err)
			}
			if onBuild != nil {
				onBuild(report, err)
			}
		}
	}
}

// relevant filters out events the index does not depend on, including
// writes to the artifact itself when it lives in the source directory.
func (b *Builder) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if abs(ev.Name) == abs(b.opts.OutputPath) {
		return false
	}
	return b.wants(filepath.Base(ev.Name))
}

func abs(p string) string {
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return filepath.Clean(p)
}
