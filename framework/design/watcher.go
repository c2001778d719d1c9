package design

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// BundleHandler receives a freshly reloaded bundle.
type BundleHandler func(b Bundle)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a locale's bundle whenever its file changes.
//
// The directory is watched rather than the file so editors that save by
// renaming a temp file are seen too. Bursts of events are debounced and the
// handler is called from a single goroutine.
type Watcher struct {
	dir      string
	locale   string
	handler  BundleHandler
	debounce time.Duration
	logger   *slog.Logger

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher for BundlePath(dir, locale). A zero debounce
// means DefaultDebounce; a nil logger means slog.Default().
func NewWatcher(dir, locale string, handler BundleHandler, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		dir:      dir,
		locale:   locale,
		handler:  handler,
		debounce: debounce,
		logger:   logger.With(slog.String("component", "bundle-watcher"), slog.String("locale", locale)),
		watcher:  fw,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. It returns once the directory is registered;
// events are processed until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}
	go w.loop(ctx)
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *Watcher) loop(ctx context.Context) {
	target := filepath.Clean(BundlePath(w.dir, w.locale))
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", slog.Any("error", err))
		case <-timer.C:
			b, err := LoadBundle(w.dir, w.locale)
			if err != nil {
				// Half-written file; the next event retries.
				w.logger.Warn("bundle reload failed", slog.Any("error", err))
				continue
			}
			w.logger.Info("bundle reloaded", slog.Int("pages", len(b)))
			w.handler(b)
		}
	}
}
