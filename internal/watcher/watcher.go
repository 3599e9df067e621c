// Package watcher bridges filesystem notifications into index change
// notifications. It watches the vault recursively and forwards
// create, write, remove and rename events to the indexer, which does
// its own per-path debouncing.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/memento-labs/vaultsearch/internal/core/domain"
	"github.com/memento-labs/vaultsearch/internal/core/ports/driving"
	"github.com/memento-labs/vaultsearch/internal/logger"
)

// defaultEventRate bounds how many filesystem events per second are
// forwarded. Bursts beyond the limit are delayed, not dropped.
const defaultEventRate = 200

// Watcher forwards vault filesystem events to the indexer.
type Watcher struct {
	indexer driving.IndexerService
	root    string
	limiter *rate.Limiter
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithEventRate overrides the per-second event forwarding limit.
func WithEventRate(perSecond float64) Option {
	return func(w *Watcher) {
		if perSecond > 0 {
			w.limiter = rate.NewLimiter(rate.Limit(perSecond), int(perSecond))
		}
	}
}

// New creates a watcher over the vault root.
func New(indexer driving.IndexerService, root string, opts ...Option) *Watcher {
	w := &Watcher{
		indexer: indexer,
		root:    root,
		limiter: rate.NewLimiter(rate.Limit(defaultEventRate), defaultEventRate),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the vault until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := addRecursive(fw, w.root); err != nil {
		return fmt.Errorf("watching %s: %w", w.root, err)
	}
	logger.Info("Watching %s", w.root)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if err := w.limiter.Wait(ctx); err != nil {
				return err
			}
			w.handle(ctx, fw, event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher: %v", err)
		}
	}
}

// handle dispatches one filesystem event to the indexer.
func (w *Watcher) handle(ctx context.Context, fw *fsnotify.Watcher, event fsnotify.Event) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	rel = domain.ToSlashPath(rel)
	if isHiddenPath(rel) {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			// New directory: watch it and index anything already inside.
			if err := addRecursive(fw, event.Name); err != nil {
				logger.Warn("Watching new directory %s: %v", rel, err)
			}
			w.indexSubtree(ctx, event.Name)
			return
		}
		w.notifyChanged(ctx, event.Name, rel, info.ModTime())

	case event.Op.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return
		}
		w.notifyChanged(ctx, event.Name, rel, info.ModTime())

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		// The path is gone; classify by shape. A rename produces a
		// Create for the new path, which re-indexes the content.
		if LooksLikeDocument(rel) {
			logger.Debug("Watcher: removed %s", rel)
			if err := w.indexer.OnDocumentDeleted(ctx, rel); err != nil {
				logger.Error("Removing %s: %v", rel, err)
			}
			return
		}
		if looksLikeFolder(rel) {
			if err := w.indexer.OnFolderRemoved(ctx, rel); err != nil {
				logger.Error("Removing folder %s: %v", rel, err)
			}
		}
	}
}

// notifyChanged reads the file and forwards an upsert notification.
func (w *Watcher) notifyChanged(ctx context.Context, full, rel string, modTime time.Time) {
	if !LooksLikeDocument(rel) {
		return
	}
	data, err := os.ReadFile(full)
	if err != nil {
		logger.Warn("Reading %s: %v", rel, err)
		return
	}
	logger.Debug("Watcher: changed %s", rel)
	if err := w.indexer.OnDocumentChanged(ctx, domain.DocumentChange{
		Path:         rel,
		Content:      string(data),
		LastModified: modTime.UTC(),
	}); err != nil {
		logger.Error("Indexing %s: %v", rel, err)
	}
}

// indexSubtree forwards change notifications for every indexable file
// under a freshly created directory.
func (w *Watcher) indexSubtree(ctx context.Context, dir string) {
	filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error { //nolint:errcheck
		if err != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(w.root, p)
		if err != nil {
			return nil
		}
		rel = domain.ToSlashPath(rel)
		if info, err := os.Stat(p); err == nil {
			w.notifyChanged(ctx, p, rel, info.ModTime())
		}
		return nil
	})
}

// addRecursive watches dir and all non-hidden subdirectories.
func addRecursive(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); strings.HasPrefix(name, ".") && p != dir {
			return filepath.SkipDir
		}
		return fw.Add(p)
	})
}

// LooksLikeDocument reports whether the vault path names an indexable
// document.
func LooksLikeDocument(rel string) bool {
	switch strings.ToLower(filepath.Ext(rel)) {
	case ".md", ".txt":
		return true
	default:
		return false
	}
}

// looksLikeFolder reports whether a removed path most likely named a
// directory. Removed paths cannot be stat'd, so the extension is all
// there is to go on.
func looksLikeFolder(rel string) bool {
	return filepath.Ext(rel) == ""
}

// isHiddenPath reports whether any segment of the vault path is
// hidden, e.g. .obsidian/workspace.md.
func isHiddenPath(rel string) bool {
	for _, segment := range strings.Split(rel, "/") {
		if strings.HasPrefix(segment, ".") && segment != "." {
			return true
		}
	}
	return false
}
