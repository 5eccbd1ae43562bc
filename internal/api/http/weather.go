package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-browser/internal/logger"
	"github.com/i474232898/weather-browser/internal/store"
	"github.com/i474232898/weather-browser/internal/weather"
)

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	Lat  *float64 `validate:"required,gte=-90,lte=90"`
	Lon  *float64 `validate:"required,gte=-180,lte=180"`
	Name string   `validate:"max=100"`
}

func (l locationQuery) toLocation() weather.Location {
	return weather.Location{
		Name:      l.Name,
		Latitude:  *l.Lat,
		Longitude: *l.Lon,
	}
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New(key + " must be a number")
	}
	return &v, nil
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	q := locationQuery{Name: c.Query("name")}

	var err error
	if q.Lat, err = queryFloat(c, "lat"); err != nil {
		return q, err
	}
	if q.Lon, err = queryFloat(c, "lon"); err != nil {
		return q, err
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

// weatherError maps service failures onto status codes.
func weatherError(err error) error {
	switch {
	case errors.Is(err, weather.ErrNoProviders), errors.Is(err, weather.ErrNoHourlyProvider):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		return fiber.NewError(fiber.StatusBadGateway, "날씨 정보를 불러오는데 실패했습니다.")
	}
}

func (h *handlers) currentWeather(c *fiber.Ctx) error {
	q, err := parseLocationQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	snapshot, err := h.Weather.Current(c.UserContext(), q.toLocation())
	if err != nil {
		logger.L().Warn("current_weather_failed", "lat", *q.Lat, "lon", *q.Lon, "err", err)
		return weatherError(err)
	}
	return c.JSON(snapshot)
}

func (h *handlers) hourlyWeather(c *fiber.Ctx) error {
	q, err := parseLocationQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	loc := q.toLocation()
	hourly, err := h.Weather.Hourly(c.UserContext(), loc)
	if err != nil {
		logger.L().Warn("hourly_weather_failed", "lat", *q.Lat, "lon", *q.Lon, "err", err)
		return weatherError(err)
	}
	return c.JSON(fiber.Map{
		"location": loc,
		"hourly":   hourly,
	})
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location locationQuery
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (hq *historyQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	hq.Location = loc

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	hq.From = from
	hq.To = to
	return nil
}

func (h *handlers) weatherHistory(c *fiber.Ctx) error {
	var req historyQuery
	if err := req.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	loc := req.Location.toLocation()
	snapshots, err := h.Weather.GetRange(loc, req.From, req.To)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
	}

	return c.JSON(fiber.Map{
		"location":  loc,
		"from":      req.From,
		"to":        req.To,
		"snapshots": snapshots,
	})
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
