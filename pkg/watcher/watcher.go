// Package watcher reports changes to a task file so the layout can be rebuilt.
//
// The watcher observes the file's parent directory with fsnotify, which also
// catches atomic saves (write to a temporary file, then rename over the
// target). Bursts of events are debounced into one change notification.
// When fsnotify is unavailable, or polling is forced, the file is polled for
// modification time and size changes instead.
//
//	w, err := watcher.New("tasks.json",
//	    watcher.WithOnChange(reload),
//	    watcher.WithOnError(func(err error) { logger.Warn("watch", "err", err) }),
//	)
//	err = w.Run(ctx) // blocks until ctx is done
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the stat interval in polling mode.
const DefaultPollInterval = 2 * time.Second

var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrAlreadyRunning = errors.New("watcher already running")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the debounce window.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithOnChange sets the callback invoked after a debounced change.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError sets the callback invoked on watch errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// WithForcePoll selects polling even when fsnotify works.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// Watcher monitors one file.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	forcePoll    bool
	onChange     func()
	onError      func(error)

	mu        sync.Mutex
	running   bool
	polling   bool
	debouncer *Debouncer
	lastMtime time.Time
	lastSize  int64
}

// New creates a watcher for path. Nothing is watched until Run.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		onChange:     func() {},
		onError:      func(error) {},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// IsPolling reports whether the running watcher fell back to polling.
func (w *Watcher) IsPolling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

// Run watches until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}
	w.running = true
	if info, err := os.Stat(w.path); err == nil {
		w.lastMtime, w.lastSize = info.ModTime(), info.Size()
	}
	w.mu.Unlock()

	defer func() {
		w.debouncer.Cancel()
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	if !w.forcePoll {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			if err := fsw.Add(filepath.Dir(w.path)); err == nil {
				defer fsw.Close()
				w.setPolling(false)
				w.watchEvents(ctx, fsw)
				return nil
			}
			fsw.Close()
		}
	}
	w.setPolling(true)
	w.watchPolling(ctx)
	return nil
}

func (w *Watcher) setPolling(p bool) {
	w.mu.Lock()
	w.polling = p
	w.mu.Unlock()
}

func (w *Watcher) watchEvents(ctx context.Context, fsw *fsnotify.Watcher) {
	target := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			switch {
			case event.Has(fsnotify.Remove):
				w.onError(ErrFileRemoved)
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create), event.Has(fsnotify.Rename):
				w.debouncer.Trigger(w.onChange)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) watchPolling(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		info, err := os.Stat(w.path)
		if err != nil {
			w.mu.Lock()
			hadFile := !w.lastMtime.IsZero()
			w.lastMtime, w.lastSize = time.Time{}, 0
			w.mu.Unlock()
			switch {
			case errors.Is(err, os.ErrNotExist):
				if hadFile {
					w.onError(ErrFileRemoved)
				}
			default:
				w.onError(err)
			}
			continue
		}

		w.mu.Lock()
		changed := !info.ModTime().Equal(w.lastMtime) || info.Size() != w.lastSize
		w.lastMtime, w.lastSize = info.ModTime(), info.Size()
		w.mu.Unlock()
		if changed {
			w.debouncer.Trigger(w.onChange)
		}
	}
}
