// Package task defines the task records that feed the layout engine, along
// with visibility filters and file codecs.
//
// A batch is an ordered slice of [Record]. Order matters: it is the
// tie-breaker for column placement, so every reader in this package preserves
// it.
//
// # Files
//
// [ReadFile] and [WriteFile] handle JSON and YAML task files. The format is
// chosen from the file extension (.yaml and .yml are YAML, anything else is
// JSON):
//
//	tasks:
//	  - id: 1
//	    text: Write outline
//	    completed: true
//	    successorIds: [2]
//	  - id: 2
//	    text: Draft chapter
//	    completed: false
//	    successorIds: []
//
// # Filters
//
// [FilterActive] and [FilterCompleted] hide tasks from the layout. Successor
// ids pointing at hidden tasks are pruned so the remaining batch still builds.
package task
