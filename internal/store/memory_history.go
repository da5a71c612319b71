package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryHistory keeps the most recent records in memory.
type MemoryHistory struct {
	mu      sync.Mutex
	records []AdRecord
	max     int
	stats   Stats
}

// NewMemoryHistory creates an in-memory history holding at most max records.
// Stats cover every record ever added, not only the retained ones.
func NewMemoryHistory(max int) *MemoryHistory {
	if max <= 0 {
		max = 1000
	}
	return &MemoryHistory{max: max, stats: newStats()}
}

// RecordAd appends a record, dropping the oldest one when full.
func (m *MemoryHistory) RecordAd(_ context.Context, rec AdRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, rec)
	if len(m.records) > m.max {
		m.records = m.records[len(m.records)-m.max:]
	}
	m.stats.add(rec)
	return nil
}

// Recent returns up to limit records, newest first.
func (m *MemoryHistory) Recent(_ context.Context, limit int) ([]AdRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 || limit > len(m.records) {
		limit = len(m.records)
	}
	out := make([]AdRecord, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

// Stats returns a copy of the running totals.
func (m *MemoryHistory) Stats(_ context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := newStats()
	out.Total = m.stats.Total
	out.Shown = m.stats.Shown
	for k, v := range m.stats.ByReason {
		out.ByReason[k] = v
	}
	for k, v := range m.stats.ByKind {
		out.ByKind[k] = v
	}
	return out, nil
}
