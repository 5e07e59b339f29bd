package shutter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last write before reloading.
const DefaultDebounce = 500 * time.Millisecond

var (
	_ Shutter    = (*Watcher)(nil)
	_ Identifier = (*Watcher)(nil)
)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger used for reload messages.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithOnReload registers a callback invoked with every successfully reloaded list.
func WithOnReload(fn func(*AllowList)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// Watcher is a Shutter backed by an allow-list file that is reloaded when it changes. Its
// identity changes with every reload, so cached resolutions made under older grants are not
// reused.
type Watcher struct {
	path     string
	logger   *slog.Logger
	debounce time.Duration
	onReload func(*AllowList)

	current    atomic.Pointer[AllowList]
	generation atomic.Uint64

	mu      sync.Mutex
	running bool
}

// NewWatcher loads path and returns a Watcher serving it. Call Run to follow changes.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	w := &Watcher{
		path:     abs,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("allowlist", abs)

	if err := w.Reload(); err != nil {
		return nil, err
	}
	return w, nil
}

// Current returns the allow-list in effect.
func (w *Watcher) Current() *AllowList {
	return w.current.Load()
}

// Identity changes every time a new allow-list is published.
func (w *Watcher) Identity() string {
	return fmt.Sprintf("watcher:%s:%d", w.path, w.generation.Load())
}

// Reload reads the file again. On error the previous list stays in effect.
func (w *Watcher) Reload() error {
	list, err := LoadFile(w.path)
	if err != nil {
		return err
	}
	w.current.Store(list)
	gen := w.generation.Add(1)
	w.logger.Debug("Allow-list loaded", "generation", gen, "types", len(list.grants))
	if w.onReload != nil {
		w.onReload(list)
	}
	return nil
}

// Run follows the file until ctx is cancelled. The parent directory is watched so editors that
// replace the file on save are handled.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrWatcherRunning
	}
	w.running = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if err := fsw.Close(); err != nil {
			w.logger.Warn("Failed to close file watcher", "error", err)
		}
	}()
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(w.debounce, func() {
				if err := w.Reload(); err != nil {
					w.logger.Error("Allow-list reload failed", "error", err)
					return
				}
				w.logger.Info("Allow-list reloaded")
			})

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", "error", err)
		}
	}
}

func (w *Watcher) FieldVisible(t reflect.Type, f reflect.StructField) bool {
	return w.Current().FieldVisible(t, f)
}

func (w *Watcher) MethodVisible(t reflect.Type, m reflect.Method) bool {
	return w.Current().MethodVisible(t, m)
}

func (w *Watcher) ConstructorVisible(t reflect.Type, name string, fn reflect.Type) bool {
	return w.Current().ConstructorVisible(t, name, fn)
}
