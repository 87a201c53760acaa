package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/moviehall/cinema-booking/internal/model"
	"github.com/moviehall/cinema-booking/internal/pricing"
	"github.com/moviehall/cinema-booking/internal/repository"
)

// TariffHandler serves the tariff CRUD endpoints.
type TariffHandler struct {
	Tariffs *repository.TariffRepo
}

func NewTariffHandler(tariffs *repository.TariffRepo) *TariffHandler {
	return &TariffHandler{Tariffs: tariffs}
}

// List handles GET /v1/tariffs.
func (h *TariffHandler) List(c echo.Context) error {
	tariffs, err := h.Tariffs.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": tariffs})
}

func validWindow(start, end string) bool {
	if _, err := pricing.ParseTimeOfDay(start); err != nil {
		return false
	}
	if _, err := pricing.ParseTimeOfDay(end); err != nil {
		return false
	}
	return start < end
}

// Create handles POST /v1/tariffs.
func (h *TariffHandler) Create(c echo.Context) error {
	var body struct {
		Name            string          `json:"name"`
		StartTime       string          `json:"startTime"`
		EndTime         string          `json:"endTime"`
		PriceMultiplier decimal.Decimal `json:"priceMultiplier"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if !validWindow(body.StartTime, body.EndTime) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "startTime and endTime must be HH:MM:SS with startTime before endTime"})
	}
	if !body.PriceMultiplier.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "priceMultiplier must be positive"})
	}

	t := &model.Tariff{
		Name:            body.Name,
		StartTime:       body.StartTime,
		EndTime:         body.EndTime,
		PriceMultiplier: body.PriceMultiplier,
	}
	if err := h.Tariffs.Create(c.Request().Context(), t); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "tariff name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create tariff failed"})
	}
	return c.JSON(http.StatusCreated, t)
}

// Update handles PATCH /v1/tariffs/:id.
func (h *TariffHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name            *string          `json:"name"`
		StartTime       *string          `json:"startTime"`
		EndTime         *string          `json:"endTime"`
		PriceMultiplier *decimal.Decimal `json:"priceMultiplier"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.Name != nil && strings.TrimSpace(*body.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must not be empty"})
	}
	if body.StartTime != nil {
		if _, err := pricing.ParseTimeOfDay(*body.StartTime); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "startTime must be HH:MM:SS"})
		}
	}
	if body.EndTime != nil {
		if _, err := pricing.ParseTimeOfDay(*body.EndTime); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "endTime must be HH:MM:SS"})
		}
	}
	if body.PriceMultiplier != nil && !body.PriceMultiplier.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "priceMultiplier must be positive"})
	}

	upd := repository.TariffUpdate{Name: body.Name, StartTime: body.StartTime, EndTime: body.EndTime}
	if body.PriceMultiplier != nil {
		s := body.PriceMultiplier.String()
		upd.PriceMultiplier = &s
	}

	t, err := h.Tariffs.Update(c.Request().Context(), id, upd)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTariffNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tariff not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "tariff name already exists"})
		case errors.Is(err, repository.ErrTariffWindow):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "startTime must be before endTime"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update tariff failed"})
	}
	return c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /v1/tariffs/:id.  A tariff referenced by
// active seat bookings cannot be deleted.
func (h *TariffHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Tariffs.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrTariffNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tariff not found"})
		case errors.Is(err, repository.ErrTariffHasBookings):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "tariff is referenced by active bookings"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete tariff failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "tariff deleted"})
}
