package docstore

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// ExternalCallback is called for every document that appears in a watched
// collection without having been created through this FS instance.
type ExternalCallback func(collection string, doc Document)

// Watch observes collection on disk until ctx is cancelled and reports
// documents dropped into it by other writers. Documents written through f
// itself are skipped.
func (f *FS) Watch(ctx context.Context, collection string, logger *slog.Logger, cb ExternalCallback) error {
	dir, err := f.collectionDir(collection)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("dir", dir))

	// Plain writers produce Create followed by one or more Writes; report
	// each document once, as soon as it decodes.
	seen := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if !isDocFile(name) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			id := strings.TrimSuffix(name, docExt)
			if _, done := seen[id]; done || f.ownWrite(id) {
				continue
			}
			doc, readErr := readDoc(ev.Name)
			if readErr != nil {
				logger.Debug("watcher: document not readable yet", slog.String("path", name), slog.String("error", readErr.Error()))
				continue
			}
			seen[id] = struct{}{}
			logger.Debug("watcher: external document", slog.String("id", id))
			if cb != nil {
				cb(collection, doc)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
