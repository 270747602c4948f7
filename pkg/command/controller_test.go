package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taskdag/pkg/dag"
	dagerrors "github.com/matzehuels/taskdag/pkg/errors"
	"github.com/matzehuels/taskdag/pkg/guard"
	"github.com/matzehuels/taskdag/pkg/observability"
	"github.com/matzehuels/taskdag/pkg/task"
)

type recorder struct {
	cmds []Command
	err  error
}

func (r *recorder) Apply(_ context.Context, cmd Command) error {
	if r.err != nil {
		return r.err
	}
	r.cmds = append(r.cmds, cmd)
	return nil
}

func setup(t *testing.T) (*Controller, *recorder, *dag.Graph, *bytes.Buffer) {
	t.Helper()
	g, err := dag.Build([]task.Record{
		{ID: 1, SuccessorIDs: []int{2, 3}},
		{ID: 2, SuccessorIDs: []int{4}},
		{ID: 3, SuccessorIDs: []int{4}},
		{ID: 4},
	})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	rec := &recorder{}
	return NewController(rec, logger), rec, g, &buf
}

func TestSelectNode(t *testing.T) {
	c, rec, g, _ := setup(t)

	cmd, err := c.SelectNode(context.Background(), g, float64(3))
	if err != nil {
		t.Fatalf("SelectNode() error = %v", err)
	}
	if cmd.Kind != KindFocusTask || cmd.TaskID != 3 || cmd.ID == "" {
		t.Errorf("SelectNode() = %+v", cmd)
	}
	if len(rec.cmds) != 1 || rec.cmds[0].ID != cmd.ID {
		t.Errorf("sink got %v", rec.cmds)
	}
}

func TestSelectNodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		code    dagerrors.Code
	}{
		{"fractional id", 2.5, dagerrors.ErrCodeMalformedPayload},
		{"missing id", nil, dagerrors.ErrCodeMalformedPayload},
		{"wrong type", []any{1}, dagerrors.ErrCodeMalformedPayload},
		{"unknown task", 42, dagerrors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec, g, _ := setup(t)
			_, err := c.SelectNode(context.Background(), g, tt.payload)
			if got := dagerrors.GetCode(err); got != tt.code {
				t.Errorf("SelectNode() code = %v, want %v (err %v)", got, tt.code, err)
			}
			if len(rec.cmds) != 0 {
				t.Errorf("command emitted on error: %v", rec.cmds)
			}
		})
	}
}

func TestSelectEdge(t *testing.T) {
	c, rec, g, _ := setup(t)

	cmd, err := c.SelectEdge(context.Background(), g, 1, "2")
	if err != nil {
		t.Fatalf("SelectEdge() error = %v", err)
	}
	if cmd.Kind != KindRemoveDependency || cmd.FromID != 1 || cmd.ToID != 2 {
		t.Errorf("SelectEdge() = %+v", cmd)
	}

	if _, err := c.SelectEdge(context.Background(), g, 2, 1); !dagerrors.Is(err, dagerrors.ErrCodeNotFound) {
		t.Errorf("SelectEdge(2, 1) error = %v, want NOT_FOUND", err)
	}
	if len(rec.cmds) != 1 {
		t.Errorf("sink got %d commands, want 1", len(rec.cmds))
	}
}

func TestProposeEdge(t *testing.T) {
	tests := []struct {
		name     string
		src, dst any
		want     guard.Decision
		emitted  bool
		logged   bool
		logLevel string
	}{
		{name: "accepted", src: 2, dst: 3, want: guard.Accept, emitted: true},
		{name: "cycle", src: 4, dst: 1, want: guard.Decision{Reason: guard.ReasonCycle}, logged: true, logLevel: "INFO"},
		{name: "self loop", src: 2, dst: 2, want: guard.Decision{Reason: guard.ReasonSelfLoop}, logged: true, logLevel: "INFO"},
		{name: "duplicate", src: 1, dst: 2, want: guard.Decision{Reason: guard.ReasonDuplicate}, logged: true, logLevel: "DEBU"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec, g, buf := setup(t)
			cmd, d, err := c.ProposeEdge(context.Background(), g, tt.src, tt.dst)
			if d != tt.want {
				t.Errorf("decision = %v, want %v", d, tt.want)
			}
			if tt.emitted {
				if err != nil {
					t.Fatalf("ProposeEdge() error = %v", err)
				}
				if cmd.Kind != KindAddDependency || len(rec.cmds) != 1 {
					t.Errorf("ProposeEdge() = %+v, sink %v", cmd, rec.cmds)
				}
				return
			}
			if !dagerrors.Is(err, dagerrors.ErrCodeEdgeRejected) {
				t.Errorf("ProposeEdge() error = %v, want EDGE_REJECTED", err)
			}
			if len(rec.cmds) != 0 {
				t.Errorf("rejected proposal emitted %v", rec.cmds)
			}
			if tt.logged && !strings.Contains(buf.String(), tt.logLevel) {
				t.Errorf("log = %q, want level %s", buf.String(), tt.logLevel)
			}
		})
	}
}

type proposals struct {
	observability.NoopGuardHooks
	seen []string
}

func (p *proposals) OnEdgeProposed(_ context.Context, src, dst int, accepted bool, reason string) {
	p.seen = append(p.seen, fmt.Sprintf("%d->%d %v %s", src, dst, accepted, reason))
}

func TestProposeEdgeHooks(t *testing.T) {
	hooks := &proposals{}
	observability.SetGuardHooks(hooks)
	t.Cleanup(observability.Reset)

	c, _, g, _ := setup(t)
	_, _, _ = c.ProposeEdge(context.Background(), g, 2, 3)
	_, _, _ = c.ProposeEdge(context.Background(), g, 4, 1)

	want := []string{"2->3 true ", "4->1 false CYCLE"}
	if strings.Join(hooks.seen, "|") != strings.Join(want, "|") {
		t.Errorf("hooks saw %q, want %q", hooks.seen, want)
	}
}

func TestProposeEdgeMalformed(t *testing.T) {
	c, _, g, _ := setup(t)
	_, _, err := c.ProposeEdge(context.Background(), g, "one", 2)
	if !dagerrors.Is(err, dagerrors.ErrCodeMalformedPayload) {
		t.Errorf("ProposeEdge() error = %v, want MALFORMED_PAYLOAD", err)
	}
}

func TestSinkError(t *testing.T) {
	c, rec, g, _ := setup(t)
	rec.err = errors.New("store offline")
	if _, err := c.SelectNode(context.Background(), g, 1); !errors.Is(err, rec.err) {
		t.Errorf("SelectNode() error = %v, want %v", err, rec.err)
	}
}

func TestCommandConstructors(t *testing.T) {
	a, b := FocusTask(1), FocusTask(1)
	if a.ID == b.ID {
		t.Error("commands share an id")
	}
	if got := RemoveDependency(1, 2).String(); got != "RemoveDependency(1, 2)" {
		t.Errorf("String() = %q", got)
	}
	if err := AddDependency(1, 2).Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := (Command{ID: "x", Kind: "Rename"}).Validate(); err == nil {
		t.Error("Validate() accepted an unknown kind")
	}
	if err := (Command{Kind: KindFocusTask}).Validate(); err == nil {
		t.Error("Validate() accepted a command without id")
	}
}
