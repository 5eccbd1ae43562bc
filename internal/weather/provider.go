package weather

import (
	"context"
	"time"
)

// ProviderReading represents a single provider's normalized reading
// that can be aggregated into a WeatherSnapshot.
type ProviderReading struct {
	ProviderName string
	Timestamp    time.Time

	TemperatureC float64
	HumidityPct  float64
	WindSpeedMS  float64
	PressureHpa  float64
	PrecipMm     float64
	Condition    Condition

	// Optional extras; only some providers report them.
	FeelsLikeC  *float64
	TempMinC    *float64
	TempMaxC    *float64
	WeatherCode *int
	Sunrise     time.Time
	Sunset      time.Time
}

// HourlyReading is one hour of a provider's forecast.
type HourlyReading struct {
	Time         time.Time // in the forecast timezone
	TemperatureC float64
	WeatherCode  int
	PrecipProb   float64 // percent, 0..100
}

// HourlySeries is a provider's raw hourly forecast with the day's sun times.
type HourlySeries struct {
	FetchedAt time.Time
	Readings  []HourlyReading
	Sunrise   time.Time
	Sunset    time.Time
}

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (ProviderReading, error)
}

// HourlyProvider is implemented by providers that also forecast by the hour.
type HourlyProvider interface {
	Provider
	FetchHourly(ctx context.Context, loc Location) (HourlySeries, error)
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
type Store interface {
	SaveSnapshot(loc Location, snapshot WeatherSnapshot)
	GetLatest(loc Location) (WeatherSnapshot, error)
	GetRange(loc Location, from, to time.Time) ([]WeatherSnapshot, error)
	SaveHourly(loc Location, series HourlySeries)
	GetHourly(loc Location) (HourlySeries, error)
}
