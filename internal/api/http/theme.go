package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-browser/internal/theme"
)

func (h *handlers) themeBody(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"theme":    h.Theme.Get(),
		"resolved": h.Theme.Resolved(),
	})
}

func (h *handlers) getTheme(c *fiber.Ctx) error {
	return h.themeBody(c)
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark system"`
}

func (h *handlers) setTheme(c *fiber.Ctx) error {
	var req themeRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := h.Theme.Set(c.UserContext(), theme.Theme(req.Theme)); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return h.themeBody(c)
}

func (h *handlers) toggleTheme(c *fiber.Ctx) error {
	if _, err := h.Theme.Toggle(c.UserContext()); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return h.themeBody(c)
}
