package session

import "classpulse/internal/model"

// History is the append-only record of closed polls. Records are never
// mutated after insertion; like the registry it relies on the
// coordinator goroutine for serialization.
type History struct {
	records []model.PollRecord
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Append(rec model.PollRecord) {
	h.records = append(h.records, rec)
}

func (h *History) Len() int {
	return len(h.records)
}

// All returns a copy of the records in append order.
func (h *History) All() []model.PollRecord {
	return append([]model.PollRecord(nil), h.records...)
}
