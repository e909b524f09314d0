package domain

import (
	"errors"
	"fmt"
)

// Condition is the provider's condition category for a location
type Condition string

// Supported condition categories
const (
	ConditionClear  Condition = "Clear"
	ConditionClouds Condition = "Clouds"
	ConditionMist   Condition = "Mist"
	ConditionRain   Condition = "Rain"
	ConditionSnow   Condition = "Snow"
)

// Conditions lists every supported category in display order
var Conditions = []Condition{
	ConditionClear,
	ConditionClouds,
	ConditionMist,
	ConditionRain,
	ConditionSnow,
}

var (
	// ErrLocationNotFound is returned when the provider does not know the queried location
	ErrLocationNotFound = errors.New("location not found")

	// ErrMalformedResponse is returned when the provider body cannot be turned into a WeatherView
	ErrMalformedResponse = errors.New("malformed weather response")

	// ErrUpstream is returned for any other non-2xx provider answer
	ErrUpstream = errors.New("weather provider error")
)

// ParseCondition validates a raw category tag
func ParseCondition(tag string) (Condition, error) {
	for _, c := range Conditions {
		if string(c) == tag {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown condition %q", ErrMalformedResponse, tag)
}

// Temperature groups the temperature readings of a lookup.
// Temp is rounded to the nearest whole degree, the others are kept as received.
type Temperature struct {
	Temp      int     `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
}

// WeatherView is the UI-facing projection of a provider response
type WeatherView struct {
	Condition   Condition   `json:"condition"`
	Description string      `json:"description"`
	Temperature Temperature `json:"temperature"`
	Humidity    int         `json:"humidity"`
	WindSpeed   float64     `json:"wind_speed"`

	// City and Country are informational and only used by the lookup log
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// OutcomeState names the variant held by an Outcome
type OutcomeState string

const (
	StateIdle     OutcomeState = "idle"
	StateFound    OutcomeState = "found"
	StateNotFound OutcomeState = "not_found"
)

// Outcome is the result of the latest lookup: Idle, Found(view) or NotFound.
// The zero value is Idle.
type Outcome struct {
	state OutcomeState
	view  WeatherView
}

// Idle returns the outcome shown before any lookup or after a failed one
func Idle() Outcome { return Outcome{state: StateIdle} }

// Found returns an outcome carrying a weather view
func Found(view WeatherView) Outcome { return Outcome{state: StateFound, view: view} }

// NotFound returns the outcome for an unknown location
func NotFound() Outcome { return Outcome{state: StateNotFound} }

// State reports which variant o holds
func (o Outcome) State() OutcomeState {
	if o.state == "" {
		return StateIdle
	}
	return o.state
}

// Weather returns the view when o is Found
func (o Outcome) Weather() (WeatherView, bool) {
	if o.state != StateFound {
		return WeatherView{}, false
	}
	return o.view, true
}

// IsNotFound reports whether o is the not-found variant
func (o Outcome) IsNotFound() bool {
	return o.state == StateNotFound
}
