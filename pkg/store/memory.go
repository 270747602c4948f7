package store

import (
	"context"
	"sync"

	"github.com/matzehuels/taskdag/pkg/command"
	"github.com/matzehuels/taskdag/pkg/task"
)

// MemoryStore keeps the task list in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records []task.Record
	focus   int
	focused bool
	closed  bool
}

// NewMemoryStore creates a store holding a copy of records.
func NewMemoryStore(records []task.Record) *MemoryStore {
	return &MemoryStore{records: task.CloneAll(records)}
}

// Load returns a copy of the task list.
func (s *MemoryStore) Load(ctx context.Context) ([]task.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return task.CloneAll(s.records), nil
}

// Apply executes cmd. A failed command leaves the list unchanged.
func (s *MemoryStore) Apply(ctx context.Context, cmd command.Command) error {
	if err := checkCommand(cmd); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if cmd.Kind == command.KindFocusTask {
		if task.Index(s.records, cmd.TaskID) < 0 {
			return notFound(cmd.TaskID)
		}
		s.focus, s.focused = cmd.TaskID, true
		return nil
	}

	next := task.CloneAll(s.records)
	if err := applyToRecords(next, cmd); err != nil {
		return err
	}
	s.records = next
	return nil
}

// Focus returns the focused task id.
func (s *MemoryStore) Focus(ctx context.Context) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, false, ErrClosed
	}
	return s.focus, s.focused, nil
}

// Replace swaps the task list.
func (s *MemoryStore) Replace(ctx context.Context, records []task.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.records = task.CloneAll(records)
	s.focus, s.focused = 0, false
	return nil
}

// Close marks the store closed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
