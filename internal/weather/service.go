package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/i474232898/weather-browser/internal/logger"
	"github.com/i474232898/weather-browser/internal/metrics"
)

var (
	// ErrNoProviders is returned when the service has nothing to fetch from.
	ErrNoProviders = errors.New("no weather providers configured")
	// ErrNoReadings is returned when every provider failed.
	ErrNoReadings = errors.New("no successful provider readings")
	// ErrNoHourlyProvider is returned when no provider forecasts by the hour.
	ErrNoHourlyProvider = errors.New("no hourly forecast provider configured")
)

// Service orchestrates fetching from multiple providers and persisting snapshots.
// Snapshots younger than the stale window are served from the store.
type Service struct {
	store      Store
	providers  []Provider
	staleAfter time.Duration
	now        func() time.Time
}

// NewService creates a new Service. staleAfter <= 0 disables reuse of stored
// data.
func NewService(store Store, providers []Provider, staleAfter time.Duration) *Service {
	return &Service{
		store:      store,
		providers:  providers,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

func (s *Service) fresh(fetchedAt time.Time) bool {
	return s.staleAfter > 0 && !fetchedAt.IsZero() && s.now().Sub(fetchedAt) < s.staleAfter
}

// Current returns current conditions for loc, refreshing from providers
// when the stored snapshot is stale. A stale snapshot is still served when
// every provider fails.
func (s *Service) Current(ctx context.Context, loc Location) (WeatherSnapshot, error) {
	cached, cacheErr := s.store.GetLatest(loc)
	if cacheErr == nil && s.fresh(cached.FetchedAt) {
		metrics.WeatherCacheTotal.WithLabelValues("hit").Inc()
		return relabel(cached, loc), nil
	}
	metrics.WeatherCacheTotal.WithLabelValues("miss").Inc()

	snap, err := s.FetchAndStore(ctx, loc)
	if err != nil {
		if cacheErr == nil {
			logger.L().Warn("weather_serving_stale", "location", loc.Key(), "err", err)
			return relabel(cached, loc), nil
		}
		return WeatherSnapshot{}, err
	}
	return snap, nil
}

// relabel applies the caller's name; nearby locations share a store key.
func relabel(snap WeatherSnapshot, loc Location) WeatherSnapshot {
	snap.Location = loc
	return snap
}

// FetchAndStore fetches data from all providers concurrently for the given location,
// aggregates successful readings, and stores a snapshot. When every provider
// fails the last good snapshot is kept and ErrNoReadings is returned.
func (s *Service) FetchAndStore(ctx context.Context, loc Location) (WeatherSnapshot, error) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		readings = make([]*ProviderReading, len(s.providers))
	)

	logger.L().Debug("weather_fetch", "location", loc.Key(), "providers", len(s.providers))
	if len(s.providers) == 0 {
		return WeatherSnapshot{}, ErrNoProviders
	}

	for i, p := range s.providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()

			r, err := p.Fetch(ctx, loc)
			if err != nil {
				// Partial success is fine.
				metrics.WeatherFetchTotal.WithLabelValues(p.Name(), "error").Inc()
				logger.L().Warn("weather_provider_failed", "provider", p.Name(), "location", loc.Key(), "err", err)
				return
			}
			metrics.WeatherFetchTotal.WithLabelValues(p.Name(), "ok").Inc()

			mu.Lock()
			readings[i] = &r
			mu.Unlock()
		}(i, p)
	}

	wg.Wait()

	// Keep provider order so the primary provider's extras win.
	ok := make([]ProviderReading, 0, len(readings))
	for _, r := range readings {
		if r != nil {
			ok = append(ok, *r)
		}
	}
	if len(ok) == 0 {
		logger.L().Warn("weather_no_readings", "location", loc.Key())
		return WeatherSnapshot{}, ErrNoReadings
	}

	snapshot := AggregateReadings(loc, ok)
	snapshot.FetchedAt = s.now().UTC()
	s.store.SaveSnapshot(loc, snapshot)
	return snapshot, nil
}

// Hourly returns the forecast strip for loc from the first provider that
// forecasts by the hour.
func (s *Service) Hourly(ctx context.Context, loc Location) (Hourly, error) {
	if series, err := s.store.GetHourly(loc); err == nil && s.fresh(series.FetchedAt) {
		metrics.WeatherCacheTotal.WithLabelValues("hit").Inc()
		return SelectHourly(series, s.now()), nil
	}
	metrics.WeatherCacheTotal.WithLabelValues("miss").Inc()

	var lastErr error = ErrNoHourlyProvider
	for _, p := range s.providers {
		hp, ok := p.(HourlyProvider)
		if !ok {
			continue
		}
		series, err := hp.FetchHourly(ctx, loc)
		if err != nil {
			metrics.WeatherFetchTotal.WithLabelValues(p.Name(), "error").Inc()
			logger.L().Warn("weather_hourly_failed", "provider", p.Name(), "location", loc.Key(), "err", err)
			lastErr = fmt.Errorf("%s hourly: %w", p.Name(), err)
			continue
		}
		metrics.WeatherFetchTotal.WithLabelValues(p.Name(), "ok").Inc()
		series.FetchedAt = s.now().UTC()
		s.store.SaveHourly(loc, series)
		return SelectHourly(series, s.now()), nil
	}
	return nil, lastErr
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(loc Location) (WeatherSnapshot, error) {
	return s.store.GetLatest(loc)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(loc Location, from, to time.Time) ([]WeatherSnapshot, error) {
	return s.store.GetRange(loc, from, to)
}
