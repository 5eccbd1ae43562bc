package providers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weather-browser/internal/common"
	"github.com/i474232898/weather-browser/internal/weather"
)

var errWeatherAPIKey = errors.New("weatherapi api key is not configured")

// WeatherAPIProvider reads current conditions from WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	api     *upstream
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		api:     newUpstream("weatherapi", client),
	}
}

func (p *WeatherAPIProvider) Name() string { return p.name }

type weatherAPICurrent struct {
	Current struct {
		LastUpdatedEpoch int64   `json:"last_updated_epoch"`
		TempC            float64 `json:"temp_c"`
		FeelsLikeC       float64 `json:"feelslike_c"`
		Humidity         float64 `json:"humidity"`
		WindKph          float64 `json:"wind_kph"`
		PressureMb       float64 `json:"pressure_mb"`
		PrecipMm         float64 `json:"precip_mm"`
		Condition        struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	if p.apiKey == "" {
		return weather.ProviderReading{}, errWeatherAPIKey
	}

	// "q" takes "lat,lon".
	coords := strconv.FormatFloat(loc.Latitude, 'f', 4, 64) + "," + strconv.FormatFloat(loc.Longitude, 'f', 4, 64)
	var payload weatherAPICurrent
	if err := p.api.getJSON(ctx, p.baseURL, url.Values{"key": {p.apiKey}, "q": {coords}}, &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	cur := payload.Current
	ts := time.Now().UTC()
	if cur.LastUpdatedEpoch > 0 {
		ts = time.Unix(cur.LastUpdatedEpoch, 0).UTC()
	}
	feels := cur.FeelsLikeC

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts,
		TemperatureC: cur.TempC,
		HumidityPct:  cur.Humidity,
		WindSpeedMS:  cur.WindKph / 3.6,
		PressureHpa:  cur.PressureMb,
		PrecipMm:     cur.PrecipMm,
		Condition:    mapWeatherAPICondition(cur.Condition.Text),
		FeelsLikeC:   &feels,
	}, nil
}

// mapWeatherAPICondition classifies WeatherAPI's free-text condition. The
// order matters: "light rain with thunder" is a storm.
func mapWeatherAPICondition(text string) weather.Condition {
	text = strings.ToLower(text)
	switch {
	case text == "":
		return weather.ConditionUnknown
	case common.HasAny(text, "thunder", "storm"):
		return weather.ConditionStorm
	case common.HasAny(text, "snow", "sleet", "blizzard", "ice pellets"):
		return weather.ConditionSnow
	case common.HasAny(text, "rain", "shower", "drizzle"):
		return weather.ConditionRain
	case common.HasAny(text, "fog", "mist"):
		return weather.ConditionMist
	case common.HasAny(text, "cloud", "overcast"):
		return weather.ConditionCloudy
	case common.HasAny(text, "sunny", "clear"):
		return weather.ConditionClear
	default:
		return weather.ConditionUnknown
	}
}
