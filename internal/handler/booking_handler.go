package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moviehall/cinema-booking/internal/middleware"
	"github.com/moviehall/cinema-booking/internal/model"
	"github.com/moviehall/cinema-booking/internal/repository"
	"github.com/moviehall/cinema-booking/internal/service"
)

// BookingService is the booking engine surface consumed by the
// handler.
type BookingService interface {
	BookSeats(ctx context.Context, userID, showtimeID uint64, seatIDs []uint64) (*model.Booking, error)
	CancelBooking(ctx context.Context, bookingID, actorID uint64, admin bool) (*model.Booking, error)
	GetBooking(ctx context.Context, bookingID, actorID uint64, admin bool) (*repository.BookingDetails, error)
	ListUserBookings(ctx context.Context, userID uint64, limit, offset int) ([]repository.BookingDetails, int, error)
	ListShowtimeBookings(ctx context.Context, showtimeID uint64, limit, offset int) ([]repository.BookingDetails, int, error)
}

// BookingHandler serves the booking endpoints.
type BookingHandler struct {
	Bookings BookingService
}

func NewBookingHandler(bookings BookingService) *BookingHandler {
	return &BookingHandler{Bookings: bookings}
}

func isAdmin(c echo.Context) bool { return middleware.Role(c) == model.RoleAdmin }

// Create handles POST /v1/showtimes/:id/bookings.  The booking is made
// for the authenticated user; admins may book on behalf of another
// user via userId.
func (h *BookingHandler) Create(c echo.Context) error {
	showtimeID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		UserID uint64   `json:"userId"`
		Seats  []uint64 `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(body.Seats) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats are required"})
	}

	userID := middleware.UserID(c)
	if body.UserID != 0 && isAdmin(c) {
		userID = body.UserID
	}

	b, err := h.Bookings.BookSeats(c.Request().Context(), userID, showtimeID, body.Seats)
	if err != nil {
		var notFound *service.SeatsNotFoundError
		var taken *service.SeatsAlreadyBookedError
		switch {
		case errors.Is(err, service.ErrShowtimeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		case errors.As(err, &notFound):
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "some seats do not exist in this hall", "seats": notFound.SeatIDs})
		case errors.As(err, &taken):
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "some seats are already booked", "seats": taken.SeatIDs})
		case errors.Is(err, service.ErrNoActiveTariff):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no tariff covers the current time"})
		case errors.Is(err, service.ErrNoSeatsRequested):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats are required"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}
	return c.JSON(http.StatusOK, b)
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	d, err := h.Bookings.GetBooking(c.Request().Context(), id, middleware.UserID(c), isAdmin(c))
	if err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, d)
}

// Cancel handles DELETE /v1/bookings/:id.  Cancelling releases the
// seats for rebooking.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if _, err := h.Bookings.CancelBooking(c.Request().Context(), id, middleware.UserID(c), isAdmin(c)); err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel booking failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "booking cancelled"})
}

// ListByShowtime handles GET /v1/showtimes/:id/bookings (admin).
func (h *BookingHandler) ListByShowtime(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	page, limit, offset := pageParams(c)
	items, total, err := h.Bookings.ListShowtimeBookings(c.Request().Context(), id, limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, paged(items, total, page, limit))
}

// ListByUser handles GET /v1/users/:id/bookings.  Users see their own
// bookings; admins see anyone's.
func (h *BookingHandler) ListByUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if id != middleware.UserID(c) && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	page, limit, offset := pageParams(c)
	items, total, err := h.Bookings.ListUserBookings(c.Request().Context(), id, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, paged(items, total, page, limit))
}
