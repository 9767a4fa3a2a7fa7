// Package watch re-runs the pre-build pipeline when a generation input
// changes. It backs the CLI watch command only; the core pipeline stays a
// one-shot run.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/buildprep/internal/logfields"
)

// Watcher monitors a fixed set of input files and invokes a callback after a
// debounce window whenever one of them changes.
type Watcher struct {
	files    map[string]struct{} // absolute paths of watched files
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func(ctx context.Context)
	runMu    sync.Mutex // serializes onChange invocations
}

// New creates a Watcher over the given input files.
func New(paths []string, debounce time.Duration, onChange func(ctx context.Context)) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths to watch")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	files := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to resolve watch path %s: %w", p, err)
		}
		files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	// Watch the containing directories; watching files directly breaks on
	// editors that replace files via rename.
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &Watcher{
		files:    files,
		watcher:  fsw,
		debounce: debounce,
		onChange: onChange,
	}, nil
}

// Run blocks processing events until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	slog.Info("Watching build inputs for changes", slog.Int("files", len(w.files)))

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			slog.Debug("Input change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() { w.invoke(ctx) })
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Watcher error", logfields.Error(err))
		}
	}
}

// invoke runs the callback under the run lock. Debounce timers fire on their
// own goroutines; a change arriving while a previous run is still in flight
// waits for it instead of running concurrently against the same output
// directory and state file.
func (w *Watcher) invoke(ctx context.Context) {
	w.runMu.Lock()
	defer w.runMu.Unlock()
	if ctx.Err() != nil {
		return
	}
	w.onChange(ctx)
}

// relevant filters events down to writes, creates, and renames of watched files.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	if _, watched := w.files[abs]; !watched {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}
