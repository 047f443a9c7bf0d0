// Package watch runs a callback when the model files of a directory tree
// change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is the quiet period after the last change before the
// callback runs.
const DefaultDelay = 500 * time.Millisecond

// Watcher watches the files of a directory tree.
type Watcher struct {
	root     string
	exts     []string
	delay    time.Duration
	logger   *slog.Logger
	callback func(ctx context.Context, changed []string) error
	watcher  *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithExtensions restricts the watched files to the given extensions.
// Defaults to .yml and .yaml.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) { w.exts = exts }
}

// WithLogger sets the logger receiving watch errors.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New watches root and its subdirectories. Hidden directories are
// skipped.
func New(root string, callback func(ctx context.Context, changed []string) error, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	w := &Watcher{
		root:     root,
		exts:     []string{".yml", ".yaml"},
		delay:    DefaultDelay,
		logger:   slog.Default(),
		callback: callback,
		watcher:  fw,
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
}

// Run calls the callback with the changed files once no change happened
// for the debounce delay, until ctx is done. Callback errors are logged
// and do not stop the watch.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	timer := time.NewTimer(w.delay)
	timer.Stop()
	var (
		fire    <-chan time.Time
		changed []string
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("watch directory", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if !w.relevant(event) {
				continue
			}
			if !slices.Contains(changed, event.Name) {
				changed = append(changed, event.Name)
			}
			timer.Reset(w.delay)
			fire = timer.C
		case <-fire:
			fire = nil
			files := changed
			changed = nil
			slices.Sort(files)
			if err := w.callback(ctx, files); err != nil {
				w.logger.Error("watch callback", "error", err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return slices.Contains(w.exts, filepath.Ext(event.Name))
}

// Close stops watching without running Run.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
