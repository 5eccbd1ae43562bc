package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/weather-browser/internal/common"
	"github.com/i474232898/weather-browser/internal/location"
)

// minQueryRunes is the shortest name worth sending to the geocoder.
const minQueryRunes = 2

// OpenMeteoGeocoder implements location.Geocoder over the Open-Meteo
// geocoding search API.
type OpenMeteoGeocoder struct {
	name     string
	baseURL  string
	language string
	country  string
	count    int
	api      *upstream
}

// NewOpenMeteoGeocoder builds the geocoder. An empty country disables the
// country filter.
func NewOpenMeteoGeocoder(client *http.Client, language, country string, count int) *OpenMeteoGeocoder {
	if count <= 0 {
		count = 5
	}
	return &OpenMeteoGeocoder{
		name:     "openmeteo-geocoding",
		baseURL:  "https://geocoding-api.open-meteo.com/v1/search",
		language: language,
		country:  strings.ToUpper(country),
		count:    count,
		api:      newUpstream("openmeteo-geocoding", client),
	}
}

func (g *OpenMeteoGeocoder) Name() string { return g.name }

func (g *OpenMeteoGeocoder) Geocode(ctx context.Context, query string) ([]location.Result, error) {
	query = strings.TrimSpace(query)
	if common.RuneLen(query) < minQueryRunes {
		return nil, nil
	}

	q := url.Values{
		"name":   {query},
		"count":  {strconv.Itoa(g.count)},
		"format": {"json"},
	}
	if g.language != "" {
		q.Set("language", g.language)
	}

	var payload struct {
		Results []struct {
			Name        string  `json:"name"`
			Latitude    float64 `json:"latitude"`
			Longitude   float64 `json:"longitude"`
			CountryCode string  `json:"country_code"`
			Admin1      string  `json:"admin1"`
			Admin2      string  `json:"admin2"`
		} `json:"results"`
	}
	if err := g.api.getJSON(ctx, g.baseURL, q, &payload); err != nil {
		return nil, err
	}

	out := make([]location.Result, 0, len(payload.Results))
	for _, r := range payload.Results {
		if g.country != "" && !strings.EqualFold(r.CountryCode, g.country) {
			continue
		}
		out = append(out, location.Result{
			Name:        r.Name,
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
			Admin1:      r.Admin1,
			Admin2:      r.Admin2,
			CountryCode: r.CountryCode,
		})
	}
	return location.FilterValid(out), nil
}
