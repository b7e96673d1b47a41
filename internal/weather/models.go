package weather

import (
	"context"
	"errors"
)

var (
	// ErrLocationNotFound is returned when geocoding resolves zero results.
	ErrLocationNotFound = errors.New("location not found")

	// ErrGeocodingFailed is returned on a geocoding transport/HTTP failure.
	ErrGeocodingFailed = errors.New("geocoding failed")

	// ErrProviderUnavailable is returned when the weather provider cannot
	// serve the forecast call.
	ErrProviderUnavailable = errors.New("weather provider unavailable")
)

// Query identifies a place either by free-text location or by explicit
// coordinates. Coordinates, when both present, take precedence and skip
// geocoding.
type Query struct {
	Location  string
	Latitude  *float64
	Longitude *float64
}

// Place is a resolved location.
type Place struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country,omitempty"`
}

// Summary is the normalized weather view returned to callers: four derived
// scalars over the past six days plus today.
type Summary struct {
	Location       Place   `json:"location"`
	RainfallMmWeek float64 `json:"rainfallMmWeek"`
	AvgTempC       float64 `json:"avgTempC"`
	HumidityPct    float64 `json:"humidityPct"`
	WindKmh        float64 `json:"windKmh"`
}

// Source abstracts one way of answering a weather query (e.g. the proxy
// endpoint, or the geocoding+forecast providers called directly). Every
// source must produce identical metric derivation.
type Source interface {
	Name() string
	Resolve(ctx context.Context, q Query) (Summary, error)
}
