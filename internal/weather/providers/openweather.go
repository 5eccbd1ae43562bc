package providers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/weather-browser/internal/weather"
)

var errOpenWeatherKey = errors.New("openweather api key is not configured")

// OpenWeatherProvider reads current conditions from OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	api     *upstream
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		api:     newUpstream("openweather", client),
	}
}

func (p *OpenWeatherProvider) Name() string { return p.name }

// openWeatherCurrent is the subset of /data/2.5/weather we read.
type openWeatherCurrent struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneH   float64 `json:"1h"`
		ThreeH float64 `json:"3h"`
	} `json:"rain"`
	Snow struct {
		OneH float64 `json:"1h"`
	} `json:"snow"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

// precipitation prefers the last hour of rain, then the 3h total, then snow.
func (c *openWeatherCurrent) precipitation() float64 {
	for _, v := range []float64{c.Rain.OneH, c.Rain.ThreeH, c.Snow.OneH} {
		if v > 0 {
			return v
		}
	}
	return 0
}

func (c *openWeatherCurrent) reading(provider string) weather.ProviderReading {
	ts := time.Now().UTC()
	if c.Dt > 0 {
		ts = time.Unix(c.Dt, 0).UTC()
	}
	var main string
	if len(c.Weather) > 0 {
		main = c.Weather[0].Main
	}

	feels, lo, hi := c.Main.FeelsLike, c.Main.TempMin, c.Main.TempMax
	r := weather.ProviderReading{
		ProviderName: provider,
		Timestamp:    ts,
		TemperatureC: c.Main.Temp,
		HumidityPct:  c.Main.Humidity,
		WindSpeedMS:  c.Wind.Speed,
		PressureHpa:  c.Main.Pressure,
		PrecipMm:     c.precipitation(),
		Condition:    mapOpenWeatherCondition(main),
		FeelsLikeC:   &feels,
		TempMinC:     &lo,
		TempMaxC:     &hi,
	}
	if c.Sys.Sunrise > 0 && c.Sys.Sunset > 0 {
		r.Sunrise = time.Unix(c.Sys.Sunrise, 0).UTC()
		r.Sunset = time.Unix(c.Sys.Sunset, 0).UTC()
	}
	return r
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	if p.apiKey == "" {
		return weather.ProviderReading{}, errOpenWeatherKey
	}

	q := url.Values{
		"appid": {p.apiKey},
		"units": {"metric"},
		"lang":  {"kr"},
		"lat":   {strconv.FormatFloat(loc.Latitude, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(loc.Longitude, 'f', -1, 64)},
	}
	var payload openWeatherCurrent
	if err := p.api.getJSON(ctx, p.baseURL, q, &payload); err != nil {
		return weather.ProviderReading{}, err
	}
	return payload.reading(p.name), nil
}

var openWeatherConditions = map[string]weather.Condition{
	"Clear":        weather.ConditionClear,
	"Clouds":       weather.ConditionCloudy,
	"Rain":         weather.ConditionRain,
	"Drizzle":      weather.ConditionRain,
	"Snow":         weather.ConditionSnow,
	"Thunderstorm": weather.ConditionStorm,
	"Mist":         weather.ConditionMist,
	"Fog":          weather.ConditionMist,
	"Haze":         weather.ConditionMist,
	"Smoke":        weather.ConditionMist,
	"Dust":         weather.ConditionMist,
}

func mapOpenWeatherCondition(main string) weather.Condition {
	if c, ok := openWeatherConditions[main]; ok {
		return c
	}
	return weather.ConditionUnknown
}
