package pages

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeFunc is called after the watcher applied a change to the site.
type ChangeFunc func(kind, path string)

// resyncDelay debounces reconciliation after renames and new directories.
const resyncDelay = 200 * time.Millisecond

// Watch keeps site in step with its directory until ctx is cancelled,
// calling cb after each applied change.
//
// fsnotify reports a rename on the old name only, so renames and new
// directories schedule a debounced Sync that picks up whatever appeared.
func Watch(ctx context.Context, site *Site, logger *slog.Logger, cb ChangeFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := site.Dir().Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root))

	notify := func(kind, path string) {
		if cb != nil {
			cb(kind, path)
		}
	}

	var resync *time.Timer
	var resyncCh <-chan time.Time
	scheduleResync := func() {
		if resync == nil {
			resync = time.NewTimer(resyncDelay)
			resyncCh = resync.C
			return
		}
		resync.Reset(resyncDelay)
	}

	for {
		select {
		case <-ctx.Done():
			if resync != nil {
				resync.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-resyncCh:
			changes, err := site.Sync()
			if err != nil {
				logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
				continue
			}
			for _, c := range changes {
				logger.Debug("watcher: synced", slog.String("path", c.Path), slog.String("op", c.Kind))
				notify(c.Kind, c.Path)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					scheduleResync()
					continue
				}
			}
			if !IsPage(ev.Name) {
				continue
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				kind, err := site.Refresh(rel)
				if err != nil {
					logger.Warn("watcher: load failed", slog.String("path", rel), slog.String("error", err.Error()))
					continue
				}
				if kind == "" {
					continue
				}
				logger.Debug("watcher: loaded", slog.String("path", rel), slog.String("op", kind))
				notify(kind, rel)

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if site.Remove(rel) {
					logger.Debug("watcher: dropped", slog.String("path", rel))
					notify(KindDeleted, rel)
				}
				if ev.Op&fsnotify.Rename != 0 {
					scheduleResync()
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
