package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/moviehall/cinema-booking/internal/model"
	"github.com/moviehall/cinema-booking/internal/repository"
)

// HallHandler serves the cinema hall CRUD endpoints.
type HallHandler struct {
	Halls *repository.HallRepo
}

func NewHallHandler(halls *repository.HallRepo) *HallHandler {
	return &HallHandler{Halls: halls}
}

// List handles GET /v1/halls.
func (h *HallHandler) List(c echo.Context) error {
	halls, err := h.Halls.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": halls})
}

// Get handles GET /v1/halls/:id and includes the hall's seats.
func (h *HallHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	hall, err := h.Halls.GetDetails(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, hall)
}

type seatReq struct {
	SeatID     uint64          `json:"seatId"`
	RowNumber  int             `json:"rowNumber"`
	SeatNumber int             `json:"seatNumber"`
	SeatType   string          `json:"seatType"`
	BasePrice  decimal.Decimal `json:"basePrice"`
	Delete     bool            `json:"delete"`
}

func validSeat(s seatReq) bool {
	if s.Delete {
		return s.SeatID != 0
	}
	typeOK := s.SeatType == model.SeatTypeStandard || s.SeatType == model.SeatTypeVIP
	return s.RowNumber > 0 && s.SeatNumber > 0 && typeOK && s.BasePrice.IsPositive()
}

// Create handles POST /v1/halls with an optional nested seat layout.
func (h *HallHandler) Create(c echo.Context) error {
	var body struct {
		HallNumber int       `json:"hallNumber"`
		Capacity   int       `json:"capacity"`
		Seats      []seatReq `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.HallNumber <= 0 || body.Capacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hallNumber and capacity must be positive"})
	}

	hall := &model.CinemaHall{HallNumber: body.HallNumber, Capacity: body.Capacity}
	for _, s := range body.Seats {
		if s.Delete || !validSeat(s) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat definition"})
		}
		hall.Seats = append(hall.Seats, model.Seat{
			RowNumber:  s.RowNumber,
			SeatNumber: s.SeatNumber,
			SeatType:   s.SeatType,
			BasePrice:  s.BasePrice,
		})
	}

	if err := h.Halls.Create(c.Request().Context(), hall); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "hall number or seat position already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create hall failed"})
	}
	return c.JSON(http.StatusCreated, hall)
}

// Update handles PATCH /v1/halls/:id.  Seats may be added (no seatId),
// changed (seatId set) or removed (delete flag) in the same request.
func (h *HallHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		HallNumber *int      `json:"hallNumber"`
		Capacity   *int      `json:"capacity"`
		Seats      []seatReq `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if (body.HallNumber != nil && *body.HallNumber <= 0) || (body.Capacity != nil && *body.Capacity <= 0) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hallNumber and capacity must be positive"})
	}

	upd := repository.HallUpdate{HallNumber: body.HallNumber, Capacity: body.Capacity}
	now := time.Now()
	for _, s := range body.Seats {
		if !validSeat(s) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat definition"})
		}
		seat := model.Seat{
			ID:         s.SeatID,
			RowNumber:  s.RowNumber,
			SeatNumber: s.SeatNumber,
			SeatType:   s.SeatType,
			BasePrice:  s.BasePrice,
		}
		if s.Delete {
			seat.DeletedAt = &now
		}
		upd.Seats = append(upd.Seats, seat)
	}

	hall, err := h.Halls.Update(c.Request().Context(), id, upd)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrHallNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
		case errors.Is(err, repository.ErrSeatNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat does not belong to this hall"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "hall number or seat position already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update hall failed"})
	}
	return c.JSON(http.StatusOK, hall)
}

// Delete handles DELETE /v1/halls/:id.  A hall with scheduled
// showtimes cannot be deleted; otherwise its seats are soft-deleted
// with it.
func (h *HallHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Halls.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrHallNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
		case errors.Is(err, repository.ErrHallHasShowtimes):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "hall has scheduled showtimes"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete hall failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "hall deleted"})
}
