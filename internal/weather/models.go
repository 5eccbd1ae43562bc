package weather

import (
	"fmt"
	"time"

	geohash "github.com/TomiHiltunen/geohash-golang"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// keyPrecision is a ~150m cell; nearby requests share a snapshot.
const keyPrecision = 7

// Location is a named point for which we fetch weather.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return geohash.EncodeWithPrecision(l.Latitude, l.Longitude, keyPrecision)
}

// Label is the name shown for the location, or its rounded coordinates.
func (l Location) Label() string {
	if l.Name != "" {
		return l.Name
	}
	return fmt.Sprintf("%.2f, %.2f", l.Latitude, l.Longitude)
}

// WeatherSnapshot is the normalized, aggregated weather view at a point in time.
type WeatherSnapshot struct {
	Location    Location  `json:"location"`
	Timestamp   time.Time `json:"timestamp"` // observation time, UTC
	FetchedAt   time.Time `json:"fetchedAt"`
	Temperature float64   `json:"temperatureC"`
	FeelsLike   float64   `json:"feelsLikeC"`
	TempMin     float64   `json:"tempMinC"`
	TempMax     float64   `json:"tempMaxC"`
	Humidity    float64   `json:"humidityPercent"`
	WindSpeed   float64   `json:"windSpeed"`
	Pressure    float64   `json:"pressureHpa,omitempty"`
	PrecipMM    float64   `json:"precipMm"`
	Condition   Condition `json:"condition"`

	// Presentation derived from the WMO code (or the condition when no
	// provider reported one).
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Icon        string `json:"icon"`

	Sunrise time.Time `json:"sunrise,omitempty"`
	Sunset  time.Time `json:"sunset,omitempty"`

	// Providers contributing to this snapshot.
	Providers []ProviderContribution `json:"providers,omitempty"`
}

// HourlySlot is one entry of the short-range forecast strip.
type HourlySlot struct {
	Time        string    `json:"time"` // "15:00" in the forecast timezone
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperatureC"`
	Icon        string    `json:"icon"`
	Summary     string    `json:"condition"`
	PoP         float64   `json:"pop"` // 0..1
}

// Hourly is a forecast strip ordered by Timestamp ascending.
type Hourly []HourlySlot

// ProviderContribution describes data coming from a single provider used in aggregation.
type ProviderContribution struct {
	ProviderName string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"`
}
