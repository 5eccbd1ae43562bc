// Package store keeps weather snapshots and hourly forecasts in memory,
// keyed by the location's geohash cell.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-browser/internal/weather"
)

// ErrNotFound is returned when no data is available for a given location.
var ErrNotFound = errors.New("no weather data for location")

// history is one cell's snapshots in save order.
type history []weather.WeatherSnapshot

// trim applies retention. The newest snapshot always survives.
func (h history) trim(maxLen int, cutoff time.Time) history {
	if maxLen > 0 && len(h) > maxLen {
		h = h[len(h)-maxLen:]
	}
	if !cutoff.IsZero() {
		for len(h) > 1 && h[0].Timestamp.Before(cutoff) {
			h = h[1:]
		}
	}
	return h
}

// between copies out the snapshots observed in [from, to].
func (h history) between(from, to time.Time) []weather.WeatherSnapshot {
	var out []weather.WeatherSnapshot
	for _, s := range h {
		if !s.Timestamp.Before(from) && !s.Timestamp.After(to) {
			out = append(out, s)
		}
	}
	return out
}

// MemoryStore implements weather.Store. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	snaps    map[string]history
	forecast map[string]weather.HourlySeries

	maxHistory int           // per cell, <= 0 means unlimited
	maxAge     time.Duration // <= 0 means unlimited

	now func() time.Time
}

// NewMemoryStore creates a store with the given retention limits.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		snaps:      make(map[string]history),
		forecast:   make(map[string]weather.HourlySeries),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

func (s *MemoryStore) cutoff() time.Time {
	if s.maxAge <= 0 {
		return time.Time{}
	}
	return s.now().Add(-s.maxAge)
}

// SaveSnapshot appends snapshot to loc's cell and applies retention.
func (s *MemoryStore) SaveSnapshot(loc weather.Location, snapshot weather.WeatherSnapshot) {
	key := loc.Key()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[key] = append(s.snaps[key], snapshot).trim(s.maxHistory, s.cutoff())
}

// GetLatest returns the most recently saved snapshot for loc's cell.
func (s *MemoryStore) GetLatest(loc weather.Location) (weather.WeatherSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.snaps[loc.Key()]
	if len(h) == 0 {
		return weather.WeatherSnapshot{}, ErrNotFound
	}
	return h[len(h)-1], nil
}

// GetRange returns the snapshots observed between from and to, inclusive.
func (s *MemoryStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.WeatherSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.snaps[loc.Key()].between(from, to)
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// SaveHourly replaces the hourly forecast kept for loc's cell.
func (s *MemoryStore) SaveHourly(loc weather.Location, series weather.HourlySeries) {
	s.mu.Lock()
	s.forecast[loc.Key()] = series
	s.mu.Unlock()
}

// GetHourly returns the last hourly forecast saved for loc's cell.
func (s *MemoryStore) GetHourly(loc weather.Location) (weather.HourlySeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.forecast[loc.Key()]
	if !ok {
		return weather.HourlySeries{}, ErrNotFound
	}
	return series, nil
}
