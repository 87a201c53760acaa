package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moviehall/cinema-booking/internal/model"
	"github.com/moviehall/cinema-booking/internal/repository"
	"github.com/moviehall/cinema-booking/internal/service"
)

// ShowtimeService is the showtime lifecycle consumed by the handler.
type ShowtimeService interface {
	ListUpcoming(ctx context.Context) ([]service.MovieShowtimes, error)
	GetDetails(ctx context.Context, showtimeID uint64) (*repository.ShowtimeDetails, error)
	HallPlan(ctx context.Context, showtimeID uint64) (*service.ShowtimePlan, error)
	Create(ctx context.Context, in service.ShowtimeInput) (*model.Showtime, error)
	Update(ctx context.Context, showtimeID uint64, upd service.ShowtimeUpdate) (*model.Showtime, error)
	Delete(ctx context.Context, showtimeID uint64) error
}

// ShowtimeHandler serves the showtime endpoints.
type ShowtimeHandler struct {
	Showtimes ShowtimeService
}

func NewShowtimeHandler(showtimes ShowtimeService) *ShowtimeHandler {
	return &ShowtimeHandler{Showtimes: showtimes}
}

// List handles GET /v1/showtimes: the next seven days grouped per
// movie.
func (h *ShowtimeHandler) List(c echo.Context) error {
	grouped, err := h.Showtimes.ListUpcoming(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": grouped})
}

// Get handles GET /v1/showtimes/:id.
func (h *ShowtimeHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	d, err := h.Showtimes.GetDetails(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, d)
}

// Seats handles GET /v1/showtimes/:id/seats: the hall plan with
// availability and prices.
func (h *ShowtimeHandler) Seats(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	plan, err := h.Showtimes.HallPlan(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrShowtimeNotFound) || errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, plan)
}

// Create handles POST /v1/showtimes.
func (h *ShowtimeHandler) Create(c echo.Context) error {
	var in service.ShowtimeInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if in.HallID == 0 || in.MovieID == 0 || in.ShowDate == "" || in.ShowTime == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hallId, movieId, showDate and showTime are required"})
	}

	st, err := h.Showtimes.Create(c.Request().Context(), in)
	if err != nil {
		if resp := showtimeError(c, err); resp != nil {
			return resp
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create showtime failed"})
	}
	return c.JSON(http.StatusCreated, st)
}

// Update handles PATCH /v1/showtimes/:id.
func (h *ShowtimeHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		HallID   *uint64 `json:"hallId"`
		MovieID  *uint64 `json:"movieId"`
		ShowDate *string `json:"showDate"`
		ShowTime *string `json:"showTime"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	st, err := h.Showtimes.Update(c.Request().Context(), id, service.ShowtimeUpdate{
		HallID:   body.HallID,
		MovieID:  body.MovieID,
		ShowDate: body.ShowDate,
		ShowTime: body.ShowTime,
	})
	if err != nil {
		if resp := showtimeError(c, err); resp != nil {
			return resp
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update showtime failed"})
	}
	return c.JSON(http.StatusOK, st)
}

// Delete handles DELETE /v1/showtimes/:id.
func (h *ShowtimeHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Showtimes.Delete(c.Request().Context(), id); err != nil {
		if resp := showtimeError(c, err); resp != nil {
			return resp
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete showtime failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "showtime deleted"})
}

// showtimeError maps the showtime lifecycle errors shared by create,
// update and delete.  Returns nil for unrecognized errors.
func showtimeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrShowtimeNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
	case errors.Is(err, repository.ErrHallNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
	case errors.Is(err, repository.ErrMovieNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	case errors.Is(err, service.ErrInvalidSchedule):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "showDate must be YYYY-MM-DD and showTime HH:MM:SS"})
	case errors.Is(err, service.ErrShowtimeInPast):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "showtime must not be in the past"})
	case errors.Is(err, service.ErrShowtimeHasBookings):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "showtime has active bookings"})
	case errors.Is(err, service.ErrNoActiveTariff):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no tariff covers this show time"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "this hall is already booked for that date and time"})
	}
	return nil
}
