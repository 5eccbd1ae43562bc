package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-browser/internal/gazetteer"
	"github.com/i474232898/weather-browser/internal/location"
)

type searchQuery struct {
	Q     string `validate:"max=50"`
	Limit int    `validate:"gte=0,lte=100"`
}

func (h *handlers) searchLocations(c *fiber.Ctx) error {
	q := searchQuery{Q: c.Query("q"), Limit: c.QueryInt("limit", h.SearchLimit)}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{
		"query":   q.Q,
		"results": h.Gazetteer.Search(q.Q, q.Limit),
	})
}

func (h *handlers) entryParam(c *fiber.Ctx) (gazetteer.Entry, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return gazetteer.Entry{}, fiber.NewError(fiber.StatusBadRequest, "id must be an integer")
	}
	return h.entry(id)
}

func (h *handlers) entry(id int) (gazetteer.Entry, error) {
	e, ok := h.Gazetteer.Get(id)
	if !ok {
		return gazetteer.Entry{}, fiber.NewError(fiber.StatusNotFound, "unknown location entry")
	}
	return e, nil
}

func (h *handlers) planLocation(c *fiber.Ctx) error {
	e, err := h.entryParam(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"entry":   e,
		"queries": location.Plan(e),
	})
}

type entryRequest struct {
	EntryID *int `json:"entryId" validate:"required,gte=0"`
}

func (h *handlers) resolveLocation(c *fiber.Ctx) error {
	var req entryRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	e, err := h.entry(*req.EntryID)
	if err != nil {
		return err
	}

	res, err := location.ResolveEntry(c.UserContext(), h.Geocoder, e, h.ResolveOptions)
	switch {
	case errors.Is(err, location.ErrLocationNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case err != nil:
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return c.JSON(fiber.Map{
		"entry":    e,
		"location": res,
	})
}
