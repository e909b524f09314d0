package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/weatherlookup/backend/internal/domain"
)

// LookupLog persists settled lookups in the background
type LookupLog struct {
	repo LookupRepository
	now  func() time.Time

	wgBg sync.WaitGroup // tracks background goroutines for graceful shutdown
}

// NewLookupLog creates a new lookup log
func NewLookupLog(repo LookupRepository) *LookupLog {
	return &LookupLog{
		repo: repo,
		now:  time.Now,
	}
}

// Record saves a settled lookup asynchronously. Idle outcomes are skipped.
func (l *LookupLog) Record(query string, outcome domain.Outcome) {
	if outcome.State() == domain.StateIdle {
		return
	}
	rec := domain.NewLookupRecord(query, outcome, l.now())

	l.wgBg.Add(1)
	go func() {
		defer l.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.repo.SaveLookup(bgCtx, rec); err != nil {
			log.Printf("Failed to save lookup: %v", err)
		}
	}()
}

// Recent returns the newest logged lookups
func (l *LookupLog) Recent(ctx context.Context, limit int) ([]domain.LookupRecord, error) {
	return l.repo.RecentLookups(ctx, limit)
}

// Health checks the underlying storage
func (l *LookupLog) Health(ctx context.Context) error {
	return l.repo.Health(ctx)
}

// WaitBackground blocks until all background save goroutines complete.
// Call during graceful shutdown to avoid dropped writes.
func (l *LookupLog) WaitBackground() {
	l.wgBg.Wait()
}
