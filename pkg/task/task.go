package task

import "slices"

// Record is one task as supplied by the outside world. A batch of records is
// the single input of every layout; records are never mutated by the layout
// engine.
//
// SuccessorIDs lists the tasks that depend on this one, in display order.
// Every successor id must name another record of the same batch.
type Record struct {
	ID           int    `json:"id" yaml:"id" bson:"_id"`
	Text         string `json:"text" yaml:"text" bson:"text"`
	Completed    bool   `json:"completed" yaml:"completed" bson:"completed"`
	SuccessorIDs []int  `json:"successorIds" yaml:"successorIds" bson:"successor_ids"`
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	r.SuccessorIDs = slices.Clone(r.SuccessorIDs)
	return r
}

// HasSuccessor reports whether id is listed among r's successors.
func (r Record) HasSuccessor(id int) bool {
	return slices.Contains(r.SuccessorIDs, id)
}

// CloneAll deep-copies a batch.
func CloneAll(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// Index returns the position of the record with the given id, or -1.
func Index(records []Record, id int) int {
	return slices.IndexFunc(records, func(r Record) bool { return r.ID == id })
}
