package pipeline

import (
	"sync"

	"cinescout/internal/domain"
)

// Results is the shared result sink. Every detail worker appends
// concurrently; ordering across workers is unconstrained.
type Results struct {
	mu      sync.Mutex
	records []domain.ResultRecord
}

func NewResults() *Results {
	return &Results{}
}

func (r *Results) Append(record domain.ResultRecord) {
	r.mu.Lock()
	r.records = append(r.records, record)
	r.mu.Unlock()
}

// List returns a copy of everything appended so far.
func (r *Results) List() []domain.ResultRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ResultRecord, len(r.records))
	copy(out, r.records)
	return out
}
