// Package metrics declares the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	GazetteerSearchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "weather_browser_gazetteer_searches_total",
		Help: "Total gazetteer searches with a non-empty query",
	})
	GeocodeQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_browser_geocode_queries_total",
		Help: "Candidate geocode queries by outcome (hit, empty, error)",
	}, []string{"outcome"})
	GeocodeDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "weather_browser_geocode_duration_ms",
		Help:    "Geocoding provider call duration in milliseconds",
		Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000},
	}, []string{"provider"})
	GeocodeCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_browser_geocode_cache_total",
		Help: "Geocode cache lookups by result (hit, miss)",
	}, []string{"kind", "result"})
	ResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_browser_resolutions_total",
		Help: "Location resolution attempts by terminal outcome (resolved, exhausted, superseded)",
	}, []string{"outcome"})
	FavoritesCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "weather_browser_favorites",
		Help: "Number of saved favorite locations",
	})
	FavoritesRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_browser_favorites_rejected_total",
		Help: "Rejected favorite additions by reason",
	}, []string{"reason"})
	WeatherFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_browser_weather_fetch_total",
		Help: "Weather provider fetches by provider and status",
	}, []string{"provider", "status"})
	WeatherCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_browser_weather_cache_total",
		Help: "Weather snapshot cache lookups by result (hit, miss)",
	}, []string{"result"})
	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_browser_upstream_requests_total",
		Help: "Outbound HTTP attempts by upstream and result (ok, retry, error, open)",
	}, []string{"upstream", "result"})
)

func init() {
	prometheus.MustRegister(GazetteerSearchesTotal)
	prometheus.MustRegister(GeocodeQueriesTotal)
	prometheus.MustRegister(GeocodeDurationMs)
	prometheus.MustRegister(GeocodeCacheTotal)
	prometheus.MustRegister(ResolutionsTotal)
	prometheus.MustRegister(FavoritesCount)
	prometheus.MustRegister(FavoritesRejectedTotal)
	prometheus.MustRegister(WeatherFetchTotal)
	prometheus.MustRegister(WeatherCacheTotal)
	prometheus.MustRegister(UpstreamRequestsTotal)
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler { return promhttp.Handler() }
