package domain

import (
	"context"
	"time"
)

// LookupRecord is one entry of the operator lookup log
type LookupRecord struct {
	Query       string       `json:"query"`
	State       OutcomeState `json:"state"`
	Condition   Condition    `json:"condition,omitempty"`
	Description string       `json:"description,omitempty"`
	Temp        *int         `json:"temp,omitempty"`
	Humidity    *int         `json:"humidity,omitempty"`
	WindSpeed   *float64     `json:"wind_speed,omitempty"`
	City        string       `json:"city,omitempty"`
	Country     string       `json:"country,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

// NewLookupRecord builds a log entry for a settled outcome
func NewLookupRecord(query string, outcome Outcome, at time.Time) LookupRecord {
	rec := LookupRecord{
		Query:     query,
		State:     outcome.State(),
		Timestamp: at,
	}
	if view, ok := outcome.Weather(); ok {
		temp, humidity, wind := view.Temperature.Temp, view.Humidity, view.WindSpeed
		rec.Condition = view.Condition
		rec.Description = view.Description
		rec.Temp = &temp
		rec.Humidity = &humidity
		rec.WindSpeed = &wind
		rec.City = view.City
		rec.Country = view.Country
	}
	return rec
}

// LookupRepository defines the interface for the lookup log.
// The log is write-mostly and never feeds session state.
type LookupRepository interface {
	// SaveLookup persists a settled lookup
	SaveLookup(ctx context.Context, rec LookupRecord) error

	// RecentLookups returns the newest entries first
	RecentLookups(ctx context.Context, limit int) ([]LookupRecord, error)

	// Health checks storage connectivity
	Health(ctx context.Context) error
}
