package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-browser/internal/api/http"
	"github.com/i474232898/weather-browser/internal/browse"
	"github.com/i474232898/weather-browser/internal/config"
	"github.com/i474232898/weather-browser/internal/favorites"
	"github.com/i474232898/weather-browser/internal/gazetteer"
	"github.com/i474232898/weather-browser/internal/kv"
	"github.com/i474232898/weather-browser/internal/location"
	"github.com/i474232898/weather-browser/internal/logger"
	"github.com/i474232898/weather-browser/internal/scheduler"
	"github.com/i474232898/weather-browser/internal/store"
	"github.com/i474232898/weather-browser/internal/theme"
	"github.com/i474232898/weather-browser/internal/weather"
	"github.com/i474232898/weather-browser/internal/weather/providers"
)

func main() {
	logger.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		logger.L().Error("weather_browser_failed", "err", err)
		os.Exit(1)
	}
}

// run wires the service and serves until ctx is cancelled.
func run(ctx context.Context) error {
	log := logger.L()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	kvStore, err := kv.Open(ctx, kv.Options{
		Driver:    cfg.Storage.Driver,
		DSN:       cfg.Storage.DSN,
		RedisAddr: cfg.Storage.RedisAddr,
		RedisPass: cfg.Storage.RedisPass,
		RedisDB:   cfg.Storage.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer kvStore.Close()

	ledger, err := favorites.New(ctx, kvStore)
	if err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}
	themes, err := theme.New(ctx, kvStore, theme.Theme(cfg.ThemeSystemDefault))
	if err != nil {
		return fmt.Errorf("load theme: %w", err)
	}

	gaz, err := gazetteer.Default()
	if err != nil {
		return fmt.Errorf("load gazetteer: %w", err)
	}

	// Geocoding: Open-Meteo first, Google when a key is configured.
	chain := location.Chain{
		providers.NewOpenMeteoGeocoder(httpClient, cfg.Geocode.Language, cfg.Geocode.Country, cfg.Geocode.ResultCount),
	}
	var reverse location.ReverseGeocoder
	if cfg.GoogleAPIKey != "" {
		google, err := providers.NewGoogleGeocoder(cfg.GoogleAPIKey, cfg.Geocode.Country)
		if err != nil {
			return fmt.Errorf("google geocoder: %w", err)
		}
		chain = append(chain, google)
		reverse = location.NewCachedReverseGeocoder(google, cfg.Geocode.ReverseCacheTTL)
	} else {
		log.Info("reverse_geocoding_disabled", "reason", "no google api key")
	}
	geo := location.NewCachedGeocoder(chain, cfg.Geocode.CacheTTL)

	resolveOpts := location.Options{
		QueryTimeout: cfg.Geocode.QueryTimeout,
		AdvanceDelay: cfg.Geocode.AdvanceDelay,
	}
	session := browse.New(location.NewResolver(geo, resolveOpts), reverse, location.Resolved{
		Name:      cfg.DefaultLocation.Name,
		Latitude:  cfg.DefaultLocation.Latitude,
		Longitude: cfg.DefaultLocation.Longitude,
	})
	defer session.Shutdown()

	// Providers with resilience (backoff + circuit breaker). Open-Meteo needs
	// no key and is the only hourly source.
	provs := []weather.Provider{providers.NewOpenMeteoProvider(httpClient, cfg.Weather.Timezone)}
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey))
	}
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey))
	}

	memStore := store.NewMemoryStore(cfg.Weather.StoreMaxHistory, cfg.Weather.StoreMaxAge)
	service := weather.NewService(memStore, provs, cfg.Weather.StaleTime)

	// Keep favorites warm in the background.
	sched := scheduler.New(func() []weather.Location {
		favs := ledger.List()
		locs := make([]weather.Location, 0, len(favs))
		for _, f := range favs {
			locs = append(locs, weather.Location{Name: f.Name, Latitude: f.Latitude, Longitude: f.Longitude})
		}
		return locs
	}, cfg.Weather.RefreshInterval, service)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-browser",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          40 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-browser",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Gazetteer:      gaz,
		Geocoder:       geo,
		ResolveOptions: resolveOpts,
		SearchLimit:    cfg.SearchLimit,
		Session:        session,
		Favorites:      ledger,
		Theme:          themes,
		Weather:        service,
	})

	go func() {
		log.Info("http_listen", "port", cfg.Port, "entries", gaz.Len(), "providers", len(provs), "storage", cfg.Storage.Driver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber_server_stopped", "err", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
