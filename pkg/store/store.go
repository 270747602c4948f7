// Package store keeps the task list that the layout engine renders and
// applies the commands emitted by interactive surfaces.
//
// Every backend implements [Store]. Applying a command never touches a built
// graph; callers reload the task list and rebuild the layout afterwards.
//
// # Backends
//
//   - [MemoryStore]: in-process, for tests and one-shot CLI runs
//   - [FileStore]: a JSON or YAML task file, rewritten atomically
//   - [SQLiteStore]: a SQLite database (pure Go driver, no cgo)
//   - [MongoStore]: one MongoDB document per task
//
// # Command Semantics
//
//   - AddDependency appends ToID to FromID's successors unless already present
//   - RemoveDependency removes ToID from FromID's successors; removing a
//     dependency that does not exist is a no-op
//   - FocusTask records the focused task
//
// Commands naming a task that does not exist fail with NOT_FOUND.
// Stores do not run the cycle guard; that is the controller's job.
package store

import (
	"context"
	"errors"
	"slices"

	"github.com/matzehuels/taskdag/pkg/command"
	dagerrors "github.com/matzehuels/taskdag/pkg/errors"
	"github.com/matzehuels/taskdag/pkg/task"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// Store holds a task list.
type Store interface {
	// Load returns the current task list in display order.
	Load(ctx context.Context) ([]task.Record, error)

	// Apply executes a command against the task list.
	Apply(ctx context.Context, cmd command.Command) error

	// Focus returns the focused task id, if any.
	Focus(ctx context.Context) (int, bool, error)

	// Replace swaps the whole task list, clearing the focus.
	Replace(ctx context.Context, records []task.Record) error

	// Close releases resources held by the store.
	Close() error
}

// Compile-time interface checks.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MongoStore)(nil)
)

// applyToRecords executes a dependency command on an in-memory task list.
// The input is modified in place. FocusTask is not handled here.
func applyToRecords(records []task.Record, cmd command.Command) error {
	switch cmd.Kind {
	case command.KindAddDependency, command.KindRemoveDependency:
	default:
		return dagerrors.New(dagerrors.ErrCodeUnsupported, "command %s", cmd.Kind)
	}

	from := task.Index(records, cmd.FromID)
	if from < 0 {
		return notFound(cmd.FromID)
	}
	if task.Index(records, cmd.ToID) < 0 {
		return notFound(cmd.ToID)
	}

	r := &records[from]
	switch cmd.Kind {
	case command.KindAddDependency:
		if !r.HasSuccessor(cmd.ToID) {
			r.SuccessorIDs = append(r.SuccessorIDs, cmd.ToID)
		}
	case command.KindRemoveDependency:
		r.SuccessorIDs = slices.DeleteFunc(r.SuccessorIDs, func(id int) bool { return id == cmd.ToID })
	}
	return nil
}

func notFound(id int) error {
	return dagerrors.New(dagerrors.ErrCodeNotFound, "task %d not found", id)
}

func checkCommand(cmd command.Command) error {
	if err := cmd.Validate(); err != nil {
		return dagerrors.Wrap(dagerrors.ErrCodeInvalidInput, err, "invalid command")
	}
	return nil
}
