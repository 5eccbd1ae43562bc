// Package location turns user-selected place names into coordinates: it plans
// the candidate geocoding queries for a gazetteer entry, drives the sequential
// resolution over an external Geocoder, and labels coordinates through a
// ReverseGeocoder.
package location

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Result is one geocoding hit. Only the coordinates are required.
type Result struct {
	Name        string  `json:"name,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Admin1      string  `json:"admin1,omitempty"`
	Admin2      string  `json:"admin2,omitempty"`
	CountryCode string  `json:"countryCode,omitempty"`
}

// Valid reports whether the coordinates are finite and inside WGS84 bounds.
func (r Result) Valid() bool {
	return ValidCoordinates(r.Latitude, r.Longitude)
}

// ValidCoordinates reports whether lat/lon are finite and in range.
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Geocoder resolves a free-text place name. A nil error with no results means
// the service knows nothing about the query.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, query string) ([]Result, error)
}

// ReverseGeocoder labels coordinates with a human readable place name.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

// ErrLocationNotFound is the terminal failure of a resolution attempt: every
// candidate query came back empty or failed.
var ErrLocationNotFound = errors.New("해당 장소의 정보가 제공되지 않습니다")

// ErrNoCandidates is returned when there is nothing to query.
var ErrNoCandidates = errors.New("no geocoding candidates")

// ServiceError wraps a failed call to a geocoding collaborator.
type ServiceError struct {
	Provider string
	Query    string
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("geocoder %s failed for %q: %v", e.Provider, e.Query, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// FilterValid drops results with unusable coordinates.
func FilterValid(in []Result) []Result {
	out := in[:0:0]
	for _, r := range in {
		if r.Valid() {
			out = append(out, r)
		}
	}
	return out
}

// Chain tries each geocoder in order and returns the first non-empty answer.
// When none answered, the failures of any members are reported together so
// that callers can tell an outage from a genuine miss.
type Chain []Geocoder

func (c Chain) Name() string { return "chain" }

func (c Chain) Geocode(ctx context.Context, query string) ([]Result, error) {
	var errs []error
	for _, g := range c {
		res, err := g.Geocode(ctx, query)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(res) > 0 {
			return res, nil
		}
	}
	return nil, errors.Join(errs...)
}
