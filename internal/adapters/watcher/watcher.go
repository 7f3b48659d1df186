// Package watcher reports changes below a project root using fsnotify.
package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/immut/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// skipDirs are never watched.
var skipDirs = map[string]bool{
	".git":                   true,
	".jj":                    true,
	"node_modules":           true,
	"vendor":                 true,
	domain.DefaultImmutPath(): true,
}

const eventBuffer = 100

// Watcher implements ports.Watcher on fsnotify. A Watcher is started at most once.
type Watcher struct {
	mu        sync.Mutex
	fsWatcher *fsnotify.Watcher
	logger    ports.Logger
	events    chan ports.WatchEvent
	stopped   bool
}

// NewWatcher creates a watcher. Errors reported by the platform watcher are
// passed to logger and do not stop the watch.
func NewWatcher(logger ports.Logger) *Watcher {
	return &Watcher{
		logger: logger,
		events: make(chan ports.WatchEvent, eventBuffer),
	}
}

// Start watches every directory below root and forwards events until ctx is
// cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context, root string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fsWatcher != nil || w.stopped {
		return domain.Annotate(domain.ErrWatcherFailed, "reason", "already started")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return domain.Wrap(err, domain.ErrWatcherFailed)
	}
	for dir := range walkDirs(root) {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return zerr.With(domain.Wrap(err, domain.ErrWatcherFailed), "dir", dir)
		}
	}
	w.fsWatcher = fsw
	go w.process(ctx, fsw)
	return nil
}

// Stop releases the platform watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	if w.fsWatcher == nil {
		close(w.events)
		return nil
	}
	return w.fsWatcher.Close()
}

// Events yields events until the watcher stops.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

func walkDirs(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // Unreadable directories are skipped
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && skipDirs[d.Name()] {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Watcher) process(ctx context.Context, fsw *fsnotify.Watcher) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			converted, ok := convert(event)
			if !ok {
				continue
			}

			select {
			case w.events <- converted:
			case <-ctx.Done():
				return
			}

			if converted.Operation == ports.OpCreate {
				addTree(fsw, event.Name)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error(domain.Wrap(err, domain.ErrWatcherFailed))
		}
	}
}

// addTree starts watching a directory created after Start.
func addTree(fsw *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || skipDirs[info.Name()] {
		return
	}
	for dir := range walkDirs(path) {
		_ = fsw.Add(dir)
	}
}

func convert(event fsnotify.Event) (ports.WatchEvent, bool) {
	switch {
	case event.Has(fsnotify.Write):
		return ports.WatchEvent{Path: event.Name, Operation: ports.OpWrite}, true
	case event.Has(fsnotify.Create):
		return ports.WatchEvent{Path: event.Name, Operation: ports.OpCreate}, true
	case event.Has(fsnotify.Remove):
		return ports.WatchEvent{Path: event.Name, Operation: ports.OpRemove}, true
	case event.Has(fsnotify.Rename):
		return ports.WatchEvent{Path: event.Name, Operation: ports.OpRename}, true
	default:
		return ports.WatchEvent{}, false
	}
}
