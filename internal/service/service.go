package service

import (
	"context"

	"github.com/weatherlookup/backend/internal/domain"
)

// LookupRepository is re-exported from domain for convenience
type LookupRepository = domain.LookupRepository

// WeatherProvider resolves current conditions for a free-text location
type WeatherProvider interface {
	CurrentByCity(ctx context.Context, city string) (domain.WeatherView, error)
}

// Recorder receives settled lookups
type Recorder interface {
	Record(query string, outcome domain.Outcome)
}
