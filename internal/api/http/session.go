package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-browser/internal/location"
)

// maxSelectWait bounds ?wait=true on /session/select.
const maxSelectWait = 30 * time.Second

func (h *handlers) sessionStatus(c *fiber.Ctx) error {
	return c.JSON(h.Session.Status())
}

type positionRequest struct {
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Error     string   `json:"error" validate:"omitempty,oneof=permission_denied position_unavailable timeout unknown"`
}

func (h *handlers) reportPosition(c *fiber.Ctx) error {
	var req positionRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.Error != "" {
		h.Session.ReportPositionError(location.ParsePositionErrorKind(req.Error))
		return c.JSON(h.Session.Status())
	}
	if req.Latitude == nil || req.Longitude == nil {
		return fiber.NewError(fiber.StatusBadRequest, "latitude and longitude are required without error")
	}
	if err := h.Session.ReportPosition(c.UserContext(), *req.Latitude, *req.Longitude); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(h.Session.Status())
}

func (h *handlers) selectLocation(c *fiber.Ctx) error {
	var req entryRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	e, err := h.entry(*req.EntryID)
	if err != nil {
		return err
	}

	gen := h.Session.Select(e)
	if !c.QueryBool("wait") {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"generation": gen})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), maxSelectWait)
	defer cancel()
	_, err = h.Session.Wait(ctx, gen)
	switch {
	case errors.Is(err, location.ErrLocationNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, location.ErrSuperseded):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case err != nil:
		return fiber.NewError(fiber.StatusGatewayTimeout, err.Error())
	}
	return c.JSON(h.Session.Status())
}

func (h *handlers) resetSession(c *fiber.Ctx) error {
	h.Session.ResetToCurrentLocation()
	return c.JSON(h.Session.Status())
}

func (h *handlers) dismissError(c *fiber.Ctx) error {
	h.Session.DismissError()
	return c.SendStatus(fiber.StatusNoContent)
}
