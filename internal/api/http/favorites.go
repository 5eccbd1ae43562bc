package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-browser/internal/favorites"
	"github.com/i474232898/weather-browser/internal/logger"
	"github.com/i474232898/weather-browser/internal/weather"
)

// favoritesError maps ledger failures onto status codes.
func favoritesError(err error) error {
	switch {
	case errors.Is(err, favorites.ErrDuplicateCoordinate):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, favorites.ErrCapacityExceeded):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, favorites.ErrEmptyAlias), errors.Is(err, favorites.ErrInvalidCoordinates):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, favorites.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

func (h *handlers) listFavorites(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"favorites": h.Favorites.List(),
		"max":       favorites.MaxFavorites,
		"canAdd":    h.Favorites.CanAdd(),
	})
}

type addFavoriteRequest struct {
	Name         string   `json:"name" validate:"required,max=100"`
	OriginalName string   `json:"originalName" validate:"max=100"`
	Latitude     *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

func (h *handlers) addFavorite(c *fiber.Ctx) error {
	var req addFavoriteRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	f, err := h.Favorites.Add(c.UserContext(), favorites.Candidate{
		Name:         req.Name,
		OriginalName: req.OriginalName,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
	})
	if err != nil {
		return favoritesError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(f)
}

func (h *handlers) favoriteParam(c *fiber.Ctx) (favorites.Favorite, error) {
	f, ok := h.Favorites.Get(c.Params("id"))
	if !ok {
		return favorites.Favorite{}, favoritesError(favorites.ErrNotFound)
	}
	return f, nil
}

func (h *handlers) getFavorite(c *fiber.Ctx) error {
	f, err := h.favoriteParam(c)
	if err != nil {
		return err
	}
	return c.JSON(f)
}

func (h *handlers) removeFavorite(c *fiber.Ctx) error {
	if err := h.Favorites.Remove(c.UserContext(), c.Params("id")); err != nil {
		return favoritesError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type aliasRequest struct {
	Alias string `json:"alias" validate:"max=100"`
}

func (h *handlers) updateAlias(c *fiber.Ctx) error {
	var req aliasRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	f, err := h.Favorites.UpdateAlias(c.UserContext(), c.Params("id"), req.Alias)
	if err != nil {
		return favoritesError(err)
	}
	return c.JSON(f)
}

func (h *handlers) resetAlias(c *fiber.Ctx) error {
	f, err := h.Favorites.ResetAlias(c.UserContext(), c.Params("id"))
	if err != nil {
		return favoritesError(err)
	}
	return c.JSON(f)
}

type reorderRequest struct {
	ActiveID string `json:"activeId" validate:"required"`
	OverID   string `json:"overId" validate:"required"`
}

func (h *handlers) reorderFavorites(c *fiber.Ctx) error {
	var req reorderRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := h.Favorites.Reorder(c.UserContext(), req.ActiveID, req.OverID); err != nil {
		return favoritesError(err)
	}
	return c.JSON(fiber.Map{"favorites": h.Favorites.List()})
}

// favoriteWeather is the detail view: current conditions plus the hourly
// strip, labelled with the favorite's alias. A failed forecast leaves the
// strip empty.
func (h *handlers) favoriteWeather(c *fiber.Ctx) error {
	f, err := h.favoriteParam(c)
	if err != nil {
		return err
	}
	loc := weather.Location{Name: f.Name, Latitude: f.Latitude, Longitude: f.Longitude}

	current, err := h.Weather.Current(c.UserContext(), loc)
	if err != nil {
		logger.L().Warn("favorite_weather_failed", "id", f.ID, "err", err)
		return weatherError(err)
	}
	hourly, err := h.Weather.Hourly(c.UserContext(), loc)
	if err != nil {
		logger.L().Warn("favorite_hourly_failed", "id", f.ID, "err", err)
		hourly = weather.Hourly{}
	}
	return c.JSON(fiber.Map{
		"favorite": f,
		"current":  current,
		"hourly":   hourly,
	})
}
