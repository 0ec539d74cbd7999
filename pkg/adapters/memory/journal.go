package memory

import (
	"context"
	"sync"

	"github.com/aretw0/pageflow/pkg/domain"
)

// DefaultCapacity is the number of records kept by NewJournal.
const DefaultCapacity = 1000

// Journal implements ports.ErrorJournal in memory.
// It keeps the newest records up to its capacity. Safe for concurrent use.
type Journal struct {
	mu       sync.RWMutex
	records  []domain.ErrorRecord
	capacity int
}

// NewJournal creates a journal keeping up to capacity records.
// A capacity <= 0 uses DefaultCapacity.
func NewJournal(capacity int) *Journal {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Journal{capacity: capacity}
}

// Record appends a record, dropping the oldest once full.
func (j *Journal) Record(ctx context.Context, record domain.ErrorRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.records = append(j.records, record)
	if over := len(j.records) - j.capacity; over > 0 {
		j.records = append(j.records[:0:0], j.records[over:]...)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]domain.ErrorRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	n := len(j.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.ErrorRecord, 0, n)
	for i := len(j.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, j.records[i])
	}
	return out, nil
}

// Len returns the number of records kept.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.records)
}
