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

// OpenMeteoProvider implements weather.HourlyProvider for the Open-Meteo
// forecast API. It needs no API key.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	timezone string
	api      *upstream
}

func NewOpenMeteoProvider(client *http.Client, timezone string) *OpenMeteoProvider {
	if timezone == "" {
		timezone = "auto"
	}
	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  "https://api.open-meteo.com/v1/forecast",
		timezone: timezone,
		api:      newUpstream("openmeteo", client),
	}
}

func (p *OpenMeteoProvider) Name() string { return p.name }

// openMeteoForecast is the subset of the forecast response we read. Times
// are local to the requested timezone and carry no offset.
type openMeteoForecast struct {
	UTCOffsetSeconds int    `json:"utc_offset_seconds"`
	Abbreviation     string `json:"timezone_abbreviation"`
	Current          *struct {
		Time          string  `json:"time"`
		Temperature   float64 `json:"temperature_2m"`
		Humidity      float64 `json:"relative_humidity_2m"`
		ApparentTemp  float64 `json:"apparent_temperature"`
		WeatherCode   int     `json:"weather_code"`
		WindSpeed     float64 `json:"wind_speed_10m"`
		Pressure      float64 `json:"surface_pressure"`
		Precipitation float64 `json:"precipitation"`
	} `json:"current"`
	Hourly *struct {
		Time        []string   `json:"time"`
		Temperature []float64  `json:"temperature_2m"`
		WeatherCode []int      `json:"weather_code"`
		PrecipProb  []*float64 `json:"precipitation_probability"`
	} `json:"hourly"`
	Daily *struct {
		TempMax []float64 `json:"temperature_2m_max"`
		TempMin []float64 `json:"temperature_2m_min"`
		Sunrise []string  `json:"sunrise"`
		Sunset  []string  `json:"sunset"`
	} `json:"daily"`
}

const openMeteoTimeLayout = "2006-01-02T15:04"

var errIncompleteForecast = errors.New("openmeteo: incomplete forecast payload")

func (f *openMeteoForecast) zone() *time.Location {
	return time.FixedZone(f.Abbreviation, f.UTCOffsetSeconds)
}

func (f *openMeteoForecast) parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(openMeteoTimeLayout, s, f.zone())
}

func (f *openMeteoForecast) sun() (sunrise, sunset time.Time) {
	if f.Daily == nil || len(f.Daily.Sunrise) == 0 || len(f.Daily.Sunset) == 0 {
		return time.Time{}, time.Time{}
	}
	sunrise, _ = f.parseTime(f.Daily.Sunrise[0])
	sunset, _ = f.parseTime(f.Daily.Sunset[0])
	return sunrise, sunset
}

func (p *OpenMeteoProvider) forecast(ctx context.Context, loc weather.Location) (*openMeteoForecast, error) {
	q := url.Values{
		"latitude":        {strconv.FormatFloat(loc.Latitude, 'f', -1, 64)},
		"longitude":       {strconv.FormatFloat(loc.Longitude, 'f', -1, 64)},
		"current":         {"temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,wind_speed_10m,surface_pressure,precipitation"},
		"hourly":          {"temperature_2m,weather_code,precipitation_probability"},
		"daily":           {"temperature_2m_max,temperature_2m_min,sunrise,sunset"},
		"wind_speed_unit": {"ms"},
		"timezone":        {p.timezone},
		"forecast_days":   {"2"},
	}
	var payload openMeteoForecast
	if err := p.api.getJSON(ctx, p.baseURL, q, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	payload, err := p.forecast(ctx, loc)
	if err != nil {
		return weather.ProviderReading{}, err
	}
	if payload.Current == nil {
		return weather.ProviderReading{}, errIncompleteForecast
	}
	cur := payload.Current

	ts, err := payload.parseTime(cur.Time)
	if err != nil {
		ts = time.Now()
	}

	code := cur.WeatherCode
	feels := cur.ApparentTemp
	r := weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts.UTC(),
		TemperatureC: cur.Temperature,
		HumidityPct:  cur.Humidity,
		WindSpeedMS:  cur.WindSpeed,
		PressureHpa:  cur.Pressure,
		PrecipMm:     cur.Precipitation,
		Condition:    weather.ConditionForCode(code),
		FeelsLikeC:   &feels,
		WeatherCode:  &code,
	}
	if d := payload.Daily; d != nil && len(d.TempMin) > 0 && len(d.TempMax) > 0 {
		lo, hi := d.TempMin[0], d.TempMax[0]
		r.TempMinC, r.TempMaxC = &lo, &hi
	}
	r.Sunrise, r.Sunset = payload.sun()
	return r, nil
}

func (p *OpenMeteoProvider) FetchHourly(ctx context.Context, loc weather.Location) (weather.HourlySeries, error) {
	payload, err := p.forecast(ctx, loc)
	if err != nil {
		return weather.HourlySeries{}, err
	}
	h := payload.Hourly
	if h == nil {
		return weather.HourlySeries{}, errIncompleteForecast
	}

	series := weather.HourlySeries{Readings: make([]weather.HourlyReading, 0, len(h.Time))}
	series.Sunrise, series.Sunset = payload.sun()
	for i, raw := range h.Time {
		if i >= len(h.Temperature) || i >= len(h.WeatherCode) {
			break
		}
		ts, err := payload.parseTime(raw)
		if err != nil {
			continue
		}
		r := weather.HourlyReading{
			Time:         ts,
			TemperatureC: h.Temperature[i],
			WeatherCode:  h.WeatherCode[i],
		}
		if i < len(h.PrecipProb) && h.PrecipProb[i] != nil {
			r.PrecipProb = *h.PrecipProb[i]
		}
		series.Readings = append(series.Readings, r)
	}
	return series, nil
}
