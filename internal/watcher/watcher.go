// Package watcher provides debounced watching of org files and the agenda
// config.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay is the time to wait after the last file event before triggering
// a callback. This coalesces an editor's write-rename-chmod burst into a
// single notification.
const debounceDelay = 100 * time.Millisecond

const orgExt = ".org"

// Watcher watches the directories of a set of files and invokes a callback
// with the changed paths, debounced.
type Watcher struct {
	fsw      *fsnotify.Watcher
	files    map[string]bool
	mu       sync.Mutex
	timer    *time.Timer
	pending  []string
	callback func(changed []string)
}

// New creates a Watcher for files. Their parent directories are watched so
// that files replaced by rename and new .org files are noticed too.
func New(files []string, callback func(changed []string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{fsw: fsw, files: make(map[string]bool, len(files)), callback: callback}
	var dirs []string
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("resolving %s: %w", f, err)
		}
		w.files[abs] = true
		if dir := filepath.Dir(abs); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	for _, d := range dirs {
		if err := fsw.Add(d); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", d, err)
		}
	}
	return w, nil
}

// Run starts the watch loop. It blocks until the context is canceled.
// Errors from the underlying watcher are passed to the optional errFn callback.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}
			w.debounce(event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errFn != nil {
				errFn(err)
			}
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// relevant accepts watched files and any other .org file in a watched
// directory.
func (w *Watcher) relevant(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	return w.files[abs] || filepath.Ext(abs) == orgExt
}

func (w *Watcher) debounce(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !slices.Contains(w.pending, name) {
		w.pending = append(w.pending, name)
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	changed := w.pending
	w.pending = nil
	w.mu.Unlock()
	if len(changed) > 0 {
		w.callback(changed)
	}
}
