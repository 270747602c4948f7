// Package command defines the mutation commands emitted by interactive
// surfaces and the controller that turns raw interactions into them.
//
// Commands are the only output of an interaction. They are applied by a
// [Sink] (normally a task store); the layout is then rebuilt from the
// updated task list. Nothing in this package mutates a graph.
package command

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind names a command.
type Kind string

// Command kinds.
const (
	KindFocusTask        Kind = "FocusTask"
	KindRemoveDependency Kind = "RemoveDependency"
	KindAddDependency    Kind = "AddDependency"
)

// Command is one requested change. TaskID is set for FocusTask; FromID and
// ToID are set for the dependency commands, where ToID is (or was) a
// successor of FromID. Every command carries a fresh uuid.
type Command struct {
	ID     string `json:"id" bson:"id"`
	Kind   Kind   `json:"kind" bson:"kind"`
	TaskID int    `json:"taskId" bson:"task_id"`
	FromID int    `json:"fromId" bson:"from_id"`
	ToID   int    `json:"toId" bson:"to_id"`
}

// FocusTask asks to focus the given task.
func FocusTask(id int) Command {
	return Command{ID: uuid.NewString(), Kind: KindFocusTask, TaskID: id}
}

// RemoveDependency asks to drop toID from fromID's successors.
func RemoveDependency(fromID, toID int) Command {
	return Command{ID: uuid.NewString(), Kind: KindRemoveDependency, FromID: fromID, ToID: toID}
}

// AddDependency asks to append toID to fromID's successors. Only emit it for
// an edge the cycle guard accepted.
func AddDependency(fromID, toID int) Command {
	return Command{ID: uuid.NewString(), Kind: KindAddDependency, FromID: fromID, ToID: toID}
}

func (c Command) String() string {
	switch c.Kind {
	case KindFocusTask:
		return fmt.Sprintf("%s(%d)", c.Kind, c.TaskID)
	default:
		return fmt.Sprintf("%s(%d, %d)", c.Kind, c.FromID, c.ToID)
	}
}

// Validate checks that the command has a known kind and an id.
func (c Command) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("command has no id")
	}
	switch c.Kind {
	case KindFocusTask, KindRemoveDependency, KindAddDependency:
		return nil
	default:
		return fmt.Errorf("unknown command kind %q", c.Kind)
	}
}
