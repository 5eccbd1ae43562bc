package location

import (
	"context"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	gocachestore "github.com/eko/gocache/store/go_cache/v4"
	gocache "github.com/patrickmn/go-cache"

	"github.com/i474232898/weather-browser/internal/logger"
	"github.com/i474232898/weather-browser/internal/metrics"
)

// CachedGeocoder memoises answers of the wrapped Geocoder per query string.
// Empty answers are cached too; failures are not.
type CachedGeocoder struct {
	next  Geocoder
	cache cache.CacheInterface[[]Result]
	ttl   time.Duration
}

// NewCachedGeocoder wraps next with an in-process cache holding entries for ttl.
func NewCachedGeocoder(next Geocoder, ttl time.Duration) *CachedGeocoder {
	client := gocache.New(ttl, 2*ttl)
	return &CachedGeocoder{
		next:  next,
		cache: cache.New[[]Result](gocachestore.NewGoCache(client)),
		ttl:   ttl,
	}
}

func (c *CachedGeocoder) Name() string { return c.next.Name() }

func (c *CachedGeocoder) Geocode(ctx context.Context, query string) ([]Result, error) {
	key := "geocode:" + query
	if res, err := c.cache.Get(ctx, key); err == nil {
		metrics.GeocodeCacheTotal.WithLabelValues("geocode", "hit").Inc()
		return append([]Result(nil), res...), nil
	}
	metrics.GeocodeCacheTotal.WithLabelValues("geocode", "miss").Inc()

	res, err := c.next.Geocode(ctx, query)
	if err != nil {
		return nil, err
	}
	stored := append([]Result{}, res...)
	if err := c.cache.Set(ctx, key, stored, store.WithExpiration(c.ttl)); err != nil {
		logger.L().Warn("geocode_cache_set_failed", "query", query, "err", err)
	}
	return res, nil
}

// CachedReverseGeocoder memoises labels by coordinates rounded to 0.001°.
type CachedReverseGeocoder struct {
	next  ReverseGeocoder
	cache cache.CacheInterface[string]
	ttl   time.Duration
}

// NewCachedReverseGeocoder wraps next with an in-process cache.
func NewCachedReverseGeocoder(next ReverseGeocoder, ttl time.Duration) *CachedReverseGeocoder {
	client := gocache.New(ttl, 2*ttl)
	return &CachedReverseGeocoder{
		next:  next,
		cache: cache.New[string](gocachestore.NewGoCache(client)),
		ttl:   ttl,
	}
}

func (c *CachedReverseGeocoder) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	key := CoordKey(lat, lon)
	if name, err := c.cache.Get(ctx, key); err == nil && name != "" {
		metrics.GeocodeCacheTotal.WithLabelValues("reverse", "hit").Inc()
		return name, nil
	}
	metrics.GeocodeCacheTotal.WithLabelValues("reverse", "miss").Inc()

	name, err := c.next.Reverse(ctx, lat, lon)
	if err != nil {
		return "", err
	}
	if name != "" {
		if err := c.cache.Set(ctx, key, name, store.WithExpiration(c.ttl)); err != nil {
			logger.L().Warn("reverse_cache_set_failed", "key", key, "err", err)
		}
	}
	return name, nil
}

// CoordKey quantises coordinates to roughly 100m for cache keys.
func CoordKey(lat, lon float64) string {
	return fmt.Sprintf("revgeo:%.3f:%.3f", lat, lon)
}
