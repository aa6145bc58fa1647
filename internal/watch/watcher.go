// Package watch monitors a directory of document files and triggers a
// re-chunk whenever one of them settles after a burst of edits. It is pure
// caller-side wiring around the stateless core — spec.md §1 explicitly
// treats file-system monitoring as outside the planner's scope.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kara-engine/kara/internal/errors"
	"github.com/kara-engine/kara/internal/logger"
)

// FileEvent classifies a settled file-system change.
type FileEvent string

const (
	FileEventCreate FileEvent = "create"
	FileEventModify FileEvent = "modify"
	FileEventDelete FileEvent = "delete"
)

// ChangeHandler is invoked once a file's edits have settled.
type ChangeHandler func(ctx context.Context, path string, event FileEvent) error

// DirectoryWatcher watches one or more directories and calls a
// ChangeHandler after debouncing bursts of events per path.
type DirectoryWatcher struct {
	watcher          *fsnotify.Watcher
	handler          ChangeHandler
	debounceDuration time.Duration

	mu    sync.Mutex
	paths []string

	pendingMu sync.Mutex
	pending   map[string]*time.Timer
}

// NewDirectoryWatcher returns a watcher that calls handler, debouncing
// repeated events for the same path within debounceDuration (defaulting
// to 500ms if non-positive).
func NewDirectoryWatcher(handler ChangeHandler, debounceDuration time.Duration) (*DirectoryWatcher, error) {
	if handler == nil {
		return nil, errors.InvalidConfigurationError("watch: change handler cannot be nil")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.ExternalError("failed to create file watcher", err)
	}

	if debounceDuration <= 0 {
		debounceDuration = 500 * time.Millisecond
	}

	return &DirectoryWatcher{
		watcher:          w,
		handler:          handler,
		debounceDuration: debounceDuration,
		pending:          make(map[string]*time.Timer),
	}, nil
}

// AddPath recursively watches path and every subdirectory beneath it,
// skipping hidden directories and common noise (node_modules, vendor).
func (w *DirectoryWatcher) AddPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.ExternalError("failed to resolve watch path", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var dirsAdded int
	err = filepath.Walk(absPath, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		name := info.Name()
		if strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor" {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			logger.Warn("failed to watch directory", "path", p, "error", err)
			return nil
		}
		dirsAdded++
		return nil
	})
	if err != nil {
		return errors.ExternalError("failed to walk watch path", err)
	}

	w.paths = append(w.paths, absPath)
	logger.Info("added watch path", "root", absPath, "dirs_watched", dirsAdded)
	return nil
}

// Start blocks, dispatching debounced events to the handler until ctx is
// cancelled.
func (w *DirectoryWatcher) Start(ctx context.Context) error {
	logger.Info("starting directory watcher", "paths", len(w.paths))

	for {
		select {
		case <-ctx.Done():
			logger.Info("directory watcher stopped")
			return w.watcher.Close()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("directory watcher error", "error", err)
		}
	}
}

func (w *DirectoryWatcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	var fileEvent FileEvent
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		fileEvent = FileEventCreate
	case event.Op&fsnotify.Write == fsnotify.Write:
		fileEvent = FileEventModify
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		fileEvent = FileEventDelete
	default:
		return
	}

	path := event.Name

	w.pendingMu.Lock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounceDuration, func() {
		w.pendingMu.Lock()
		delete(w.pending, path)
		w.pendingMu.Unlock()

		if err := w.handler(ctx, path, fileEvent); err != nil {
			logger.Error("change handler failed", "path", path, "event", fileEvent, "error", err)
		}
	})
	w.pendingMu.Unlock()
}

// Stop cancels every pending debounce timer and closes the underlying
// fsnotify watcher.
func (w *DirectoryWatcher) Stop() error {
	w.pendingMu.Lock()
	for _, t := range w.pending {
		t.Stop()
	}
	w.pending = make(map[string]*time.Timer)
	w.pendingMu.Unlock()
	return w.watcher.Close()
}
