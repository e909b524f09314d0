package postgres

import (
	"context"
	"sync"

	"github.com/weatherlookup/backend/internal/domain"
)

// mockCapacity bounds the in-memory log
const mockCapacity = 100

// MockRepository implements domain.LookupRepository in memory for demo mode
type MockRepository struct {
	mu      sync.Mutex
	records []domain.LookupRecord
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

// SaveLookup keeps the newest mockCapacity records
func (r *MockRepository) SaveLookup(ctx context.Context, rec domain.LookupRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, rec)
	if over := len(r.records) - mockCapacity; over > 0 {
		r.records = append(r.records[:0:0], r.records[over:]...)
	}
	return nil
}

// RecentLookups returns up to limit records, newest first
func (r *MockRepository) RecentLookups(ctx context.Context, limit int) ([]domain.LookupRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.records)
	if limit < n {
		n = limit
	}
	out := make([]domain.LookupRecord, 0, n)
	for i := len(r.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}
