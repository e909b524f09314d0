package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/weatherlookup/backend/internal/domain"
)

// Snapshot is a consistent copy of a lookup's state
type Snapshot struct {
	Query   string
	Outcome domain.Outcome
}

// Result describes what a submission did
type Result struct {
	Snapshot

	// Alert is set when the submission failed for any reason other than
	// an unknown location. It belongs to this result only.
	Alert bool

	// Stale is set when a newer submission started before this one
	// resolved; the session state was left untouched.
	Stale bool

	// Err is the provider error behind Alert, if any
	Err error
}

// WeatherLookup owns the query and the latest outcome of one UI session
type WeatherLookup struct {
	provider WeatherProvider
	recorder Recorder

	mu         sync.Mutex
	query      string
	outcome    domain.Outcome
	generation uint64
}

// NewWeatherLookup creates an idle lookup. recorder may be nil.
func NewWeatherLookup(provider WeatherProvider, recorder Recorder) *WeatherLookup {
	return &WeatherLookup{
		provider: provider,
		recorder: recorder,
		outcome:  domain.Idle(),
	}
}

// UpdateQuery replaces the query text; the outcome is not touched
func (l *WeatherLookup) UpdateQuery(text string) {
	l.mu.Lock()
	l.query = text
	l.mu.Unlock()
}

// Snapshot returns the current query and outcome
func (l *WeatherLookup) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *WeatherLookup) snapshotLocked() Snapshot {
	return Snapshot{Query: l.query, Outcome: l.outcome}
}

// Submit looks up the current query and settles the outcome.
// Only the most recent submission may change state.
func (l *WeatherLookup) Submit(ctx context.Context) Result {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	query := l.query
	if l.outcome.IsNotFound() {
		l.outcome = domain.Idle()
	}
	l.mu.Unlock()

	view, err := l.provider.CurrentByCity(ctx, query)

	var (
		next  domain.Outcome
		alert bool
	)
	switch {
	case err == nil:
		next = domain.Found(view)
	case errors.Is(err, domain.ErrLocationNotFound):
		next = domain.NotFound()
	default:
		next = domain.Idle()
		alert = true
	}

	l.mu.Lock()
	if gen != l.generation {
		snap := l.snapshotLocked()
		l.mu.Unlock()
		log.Printf("lookup: discarding stale response for %q", query)
		return Result{Snapshot: snap, Stale: true}
	}
	l.outcome = next
	snap := l.snapshotLocked()
	l.mu.Unlock()

	if alert {
		log.Printf("lookup: %q failed: %v", query, err)
		return Result{Snapshot: snap, Alert: true, Err: err}
	}

	if l.recorder != nil {
		l.recorder.Record(query, next)
	}
	return Result{Snapshot: snap}
}
