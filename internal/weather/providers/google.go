package providers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-browser/internal/common"
	"github.com/i474232898/weather-browser/internal/location"
	"github.com/i474232898/weather-browser/internal/metrics"
)

var errGoogleKey = errors.New("google geocoder api key is not configured")

// The client library keeps its key in a package variable.
var googleKeyOnce sync.Once

// GoogleGeocoder implements location.Geocoder and location.ReverseGeocoder
// through the Google Maps geocoding API.
type GoogleGeocoder struct {
	name    string
	country string

	// Overridable in tests.
	forward func(geocoder.Address) (geocoder.Location, error)
	reverse func(geocoder.Location) ([]geocoder.Address, error)
}

func NewGoogleGeocoder(apiKey, country string) (*GoogleGeocoder, error) {
	if apiKey == "" {
		return nil, errGoogleKey
	}
	googleKeyOnce.Do(func() { geocoder.ApiKey = apiKey })
	return &GoogleGeocoder{
		name:    "google",
		country: country,
		forward: geocoder.Geocoding,
		reverse: geocoder.GeocodingReverse,
	}, nil
}

func (g *GoogleGeocoder) Name() string { return g.name }

// isNoResults recognises the API's empty-answer status.
func isNoResults(err error) bool {
	msg := strings.ToLower(err.Error())
	return common.HasAny(msg, "zero_results", "no results")
}

// The client library is blocking; callGoogle runs fn but gives up when ctx ends.
func callGoogle[T any](ctx context.Context, provider string, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	start := time.Now()
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-ch:
		metrics.GeocodeDurationMs.WithLabelValues(provider).Observe(float64(time.Since(start).Milliseconds()))
		return r.v, r.err
	}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, query string) ([]location.Result, error) {
	query = strings.TrimSpace(query)
	if common.RuneLen(query) < minQueryRunes {
		return nil, nil
	}
	loc, err := callGoogle(ctx, g.name, func() (geocoder.Location, error) {
		return g.forward(geocoder.Address{City: query, Country: g.country})
	})
	if err != nil {
		if isNoResults(err) {
			return nil, nil
		}
		return nil, err
	}
	return location.FilterValid([]location.Result{{
		Name:      query,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}}), nil
}

// Reverse names coordinates as "State City District".
func (g *GoogleGeocoder) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	addrs, err := callGoogle(ctx, g.name+"-reverse", func() ([]geocoder.Address, error) {
		return g.reverse(geocoder.Location{Latitude: lat, Longitude: lon})
	})
	if err != nil {
		if isNoResults(err) {
			return "", nil
		}
		return "", err
	}
	if len(addrs) == 0 {
		return "", nil
	}
	a := addrs[0]
	district := a.District
	if district == "" {
		district = a.Neighborhood
	}
	name := location.ComposeName(a.State, a.City, district)
	if name == "" {
		name = strings.TrimSpace(a.FormattedAddress)
	}
	return name, nil
}
