package store

import (
	"context"
	"errors"
	"io/fs"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taskdag/pkg/command"
	dagerrors "github.com/matzehuels/taskdag/pkg/errors"
	"github.com/matzehuels/taskdag/pkg/task"
)

// FileStore keeps the task list in a JSON or YAML file. Each Apply reads the
// file, changes it and writes it back atomically, so external edits made
// between commands are preserved. Focus is kept in memory only.
type FileStore struct {
	path   string
	logger *log.Logger

	mu      sync.Mutex
	focus   int
	focused bool
}

// NewFileStore creates a store backed by the file at path. The file does not
// need to exist yet; a missing file loads as an empty list.
func NewFileStore(path string, logger *log.Logger) *FileStore {
	if logger == nil {
		logger = log.Default()
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the task file path.
func (s *FileStore) Path() string { return s.path }

// Load reads the task file.
func (s *FileStore) Load(ctx context.Context) ([]task.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) load() ([]task.Record, error) {
	records, err := task.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []task.Record{}, nil
	}
	if err != nil {
		return nil, dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "load tasks")
	}
	return records, nil
}

// Apply executes cmd against the file.
func (s *FileStore) Apply(ctx context.Context, cmd command.Command) error {
	if err := checkCommand(cmd); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	if cmd.Kind == command.KindFocusTask {
		if task.Index(records, cmd.TaskID) < 0 {
			return notFound(cmd.TaskID)
		}
		s.focus, s.focused = cmd.TaskID, true
		return nil
	}

	if err := applyToRecords(records, cmd); err != nil {
		return err
	}
	if err := task.WriteFile(s.path, records); err != nil {
		return dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "write tasks")
	}
	s.logger.Debug("task file updated", "path", s.path, "command", cmd.String())
	return nil
}

// Focus returns the focused task id.
func (s *FileStore) Focus(ctx context.Context) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focus, s.focused, nil
}

// Replace overwrites the task file.
func (s *FileStore) Replace(ctx context.Context, records []task.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := task.WriteFile(s.path, records); err != nil {
		return dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "write tasks")
	}
	s.focus, s.focused = 0, false
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
