package transform_test

import (
	"errors"
	"fmt"

	"github.com/matzehuels/taskdag/pkg/dag"
	"github.com/matzehuels/taskdag/pkg/dag/transform"
	"github.com/matzehuels/taskdag/pkg/task"
)

func ExampleLayout() {
	g, _ := dag.Build([]task.Record{
		{ID: 1, Text: "design", Completed: true, SuccessorIDs: []int{2, 3}},
		{ID: 2, Text: "api", SuccessorIDs: []int{4}},
		{ID: 3, Text: "ui", SuccessorIDs: []int{4}},
		{ID: 4, Text: "launch"},
	})

	if err := transform.Layout(g); err != nil {
		panic(err)
	}

	for _, n := range g.Nodes() {
		fmt.Printf("%-6s layer=%d column=%d %s\n", n.Task.Text, n.Layer, n.Column, n.Status)
	}
	// Output:
	// design layer=0 column=0 DONE
	// api    layer=1 column=0 ACTIONABLE
	// ui     layer=1 column=1 ACTIONABLE
	// launch layer=2 column=1 BLOCKED
}

func ExampleAssignLayers_cycle() {
	g, _ := dag.Build([]task.Record{
		{ID: 1, SuccessorIDs: []int{2}},
		{ID: 2, SuccessorIDs: []int{3}},
		{ID: 3, SuccessorIDs: []int{1}},
	})

	err := transform.AssignLayers(g)

	var cerr *transform.CycleError
	if errors.As(err, &cerr) {
		fmt.Println("cycles:", cerr.Cycles)
	}
	// Output:
	// cycles: [[1 2 3]]
}
