package task

import (
	"fmt"
	"slices"
	"strings"
)

// Filter selects which tasks take part in a layout.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters lists the accepted filter values in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

// ParseFilter converts a user supplied name into a Filter. The empty string
// selects FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("unknown filter %q (want all, active or completed)", s)
	}
}

func (f Filter) keep(r Record) bool {
	switch f {
	case FilterActive:
		return !r.Completed
	case FilterCompleted:
		return r.Completed
	default:
		return true
	}
}

// Apply returns the records selected by f, in input order.
//
// FilterAll returns the batch unchanged, so dangling successor ids still
// surface as integrity errors when the graph is built. The other filters drop
// successor ids that point at tasks removed by the filter; the result is a
// deep copy and the input is left untouched.
func (f Filter) Apply(records []Record) []Record {
	if f == "" || f == FilterAll {
		return records
	}

	kept := make(map[int]bool, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.keep(r) {
			kept[r.ID] = true
			out = append(out, r.Clone())
		}
	}
	for i := range out {
		out[i].SuccessorIDs = slices.DeleteFunc(out[i].SuccessorIDs, func(id int) bool {
			return !kept[id]
		})
	}
	return out
}
