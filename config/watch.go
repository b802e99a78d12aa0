package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher hot-reloads a SuperConfig from a file whenever it changes, using
// fsnotify on the containing directory rather than the file itself —
// editors and config-management tools commonly replace a file via
// rename-into-place, which a watch on the file's own inode would miss.
type Watcher struct {
	path     string
	onChange func(SuperConfig)
	onError  func(error)
	fsw      *fsnotify.Watcher

	mu     sync.Mutex
	closed bool
}

// NewWatcher creates a Watcher for path. onChange is invoked with the
// freshly loaded, validated SuperConfig after each write or create event
// naming the file, provided the
// file still parses and validates;
// parse/validate failures go to onError (if non-nil) instead, so a
// transient partial write never reaches onChange or kills Run.
func NewWatcher(path string, onChange func(SuperConfig), onError func(error)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: new watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", dir, err)
	}
	return &Watcher{path: path, onChange: onChange, onError: onError, fsw: fsw}, nil
}

// Run processes filesystem events for the watched directory until ctx is
// cancelled or Close is called, reloading only on events naming the
// watched file.
func (w *Watcher) Run(ctx context.Context) error {
	target := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.reportError(err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load[SuperConfig](w.path)
	if err != nil {
		w.reportError(err)
		return
	}
	if err := ValidateSuperConfig(&cfg); err != nil {
		w.reportError(err)
		return
	}
	w.onChange(cfg)
}

func (w *Watcher) reportError(err error) {
	if w.onError != nil {
		w.onError(err)
	}
}

// Close stops the underlying fsnotify watcher, causing a concurrent Run to
// return once fsnotify drains its channels. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsw.Close()
}
