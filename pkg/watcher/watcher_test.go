package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	if n := calls.Load(); n != 1 {
		t.Errorf("callback ran %d times, want 1", n)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() { called.Store(true) })
	d.Cancel()
	time.Sleep(100 * time.Millisecond)

	if called.Load() {
		t.Error("callback ran after Cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	if d := NewDebouncer(0); d.Duration() != DefaultDebounceDuration {
		t.Errorf("Duration() = %v, want %v", d.Duration(), DefaultDebounceDuration)
	}
}

// runWatcher starts w and returns a stop function that waits for Run to exit.
func runWatcher(t *testing.T, w *Watcher) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)
	return func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run() error = %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Run() did not return after cancel")
		}
	}
}

func waitFor(ch <-chan struct{}, d time.Duration) bool {
	select {
	case <-ch:
		return true
	case <-time.After(d):
		return false
	}
}

func TestWatcher_DetectsWrite(t *testing.T) {
	for _, poll := range []bool{false, true} {
		name := "fsnotify"
		if poll {
			name = "polling"
		}
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tasks.json")
			if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
				t.Fatal(err)
			}

			changed := make(chan struct{}, 1)
			w, err := New(path,
				WithForcePoll(poll),
				WithPollInterval(20*time.Millisecond),
				WithDebounceDuration(20*time.Millisecond),
				WithOnChange(func() {
					select {
					case changed <- struct{}{}:
					default:
					}
				}),
			)
			if err != nil {
				t.Fatal(err)
			}
			stop := runWatcher(t, w)
			defer stop()

			if w.IsPolling() != poll {
				t.Errorf("IsPolling() = %v, want %v", w.IsPolling(), poll)
			}
			if err := os.WriteFile(path, []byte(`[{"id":1}]`), 0o644); err != nil {
				t.Fatal(err)
			}
			if !waitFor(changed, 2*time.Second) {
				t.Error("change not detected")
			}
		})
	}
}

func TestWatcher_DetectsAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan struct{}, 1)
	w, _ := New(path,
		WithDebounceDuration(20*time.Millisecond),
		WithOnChange(func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		}),
	)
	stop := runWatcher(t, w)
	defer stop()

	tmp := filepath.Join(dir, ".tasks-tmp")
	if err := os.WriteFile(tmp, []byte(`[{"id":2}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
	if !waitFor(changed, 2*time.Second) {
		t.Error("atomic replace not detected")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	_ = os.WriteFile(path, []byte("[]"), 0o644)

	var calls atomic.Int32
	w, _ := New(path,
		WithDebounceDuration(20*time.Millisecond),
		WithOnChange(func() { calls.Add(1) }),
	)
	stop := runWatcher(t, w)
	defer stop()

	_ = os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644)
	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("onChange ran %d times for an unrelated file", n)
	}
}

func TestWatcher_ReportsRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	_ = os.WriteFile(path, []byte("[]"), 0o644)

	removed := make(chan struct{}, 1)
	w, _ := New(path,
		WithForcePoll(true),
		WithPollInterval(20*time.Millisecond),
		WithOnError(func(err error) {
			if errors.Is(err, ErrFileRemoved) {
				select {
				case removed <- struct{}{}:
				default:
				}
			}
		}),
	)
	stop := runWatcher(t, w)
	defer stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if !waitFor(removed, 2*time.Second) {
		t.Error("removal not reported")
	}
}

func TestWatcher_RunTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	w, _ := New(path, WithForcePoll(true))
	stop := runWatcher(t, w)
	defer stop()

	if err := w.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
}
