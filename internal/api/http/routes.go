package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/i474232898/weather-browser/internal/browse"
	"github.com/i474232898/weather-browser/internal/favorites"
	"github.com/i474232898/weather-browser/internal/gazetteer"
	"github.com/i474232898/weather-browser/internal/location"
	"github.com/i474232898/weather-browser/internal/logger"
	"github.com/i474232898/weather-browser/internal/metrics"
	"github.com/i474232898/weather-browser/internal/theme"
	"github.com/i474232898/weather-browser/internal/weather"
)

var validate = validator.New()

// Deps are the components the API serves.
type Deps struct {
	Gazetteer      *gazetteer.Index
	Geocoder       location.Geocoder
	ResolveOptions location.Options
	SearchLimit    int

	Session   *browse.Session
	Favorites *favorites.Ledger
	Theme     *theme.Store
	Weather   *weather.Service
}

type handlers struct {
	Deps
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	if d.SearchLimit <= 0 {
		d.SearchLimit = gazetteer.DefaultLimit
	}
	h := &handlers{Deps: d}

	v1 := app.Group("/api/v1")

	v1.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "weather-browser"})
	})
	v1.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	v1.Get("/locations/search", h.searchLocations)
	v1.Get("/locations/:id/plan", h.planLocation)
	v1.Post("/locations/resolve", h.resolveLocation)

	v1.Get("/session", h.sessionStatus)
	v1.Post("/session/position", h.reportPosition)
	v1.Post("/session/select", h.selectLocation)
	v1.Post("/session/reset", h.resetSession)
	v1.Delete("/session/error", h.dismissError)

	v1.Get("/weather/current", h.currentWeather)
	v1.Get("/weather/hourly", h.hourlyWeather)
	v1.Get("/weather/history", h.weatherHistory)

	v1.Get("/favorites", h.listFavorites)
	v1.Post("/favorites", h.addFavorite)
	v1.Post("/favorites/reorder", h.reorderFavorites)
	v1.Get("/favorites/:id", h.getFavorite)
	v1.Delete("/favorites/:id", h.removeFavorite)
	v1.Put("/favorites/:id/alias", h.updateAlias)
	v1.Post("/favorites/:id/alias/reset", h.resetAlias)
	v1.Get("/favorites/:id/weather", h.favoriteWeather)

	v1.Get("/theme", h.getTheme)
	v1.Put("/theme", h.setTheme)
	v1.Post("/theme/toggle", h.toggleTheme)
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		logger.L().Error("http_error", "method", c.Method(), "path", c.Path(), "err", err)
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// bindJSON parses and validates a request body.
func bindJSON(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}
