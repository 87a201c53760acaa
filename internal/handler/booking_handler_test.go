package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviehall/cinema-booking/internal/middleware"
	"github.com/moviehall/cinema-booking/internal/model"
	"github.com/moviehall/cinema-booking/internal/repository"
	"github.com/moviehall/cinema-booking/internal/service"
)

// --- Mock BookingService ---

type mockBookingService struct {
	bookFn         func(ctx context.Context, userID, showtimeID uint64, seatIDs []uint64) (*model.Booking, error)
	cancelFn       func(ctx context.Context, bookingID, actorID uint64, admin bool) (*model.Booking, error)
	getFn          func(ctx context.Context, bookingID, actorID uint64, admin bool) (*repository.BookingDetails, error)
	listUserFn     func(ctx context.Context, userID uint64, limit, offset int) ([]repository.BookingDetails, int, error)
	listShowtimeFn func(ctx context.Context, showtimeID uint64, limit, offset int) ([]repository.BookingDetails, int, error)
}

func (m *mockBookingService) BookSeats(ctx context.Context, userID, showtimeID uint64, seatIDs []uint64) (*model.Booking, error) {
	return m.bookFn(ctx, userID, showtimeID, seatIDs)
}
func (m *mockBookingService) CancelBooking(ctx context.Context, bookingID, actorID uint64, admin bool) (*model.Booking, error) {
	return m.cancelFn(ctx, bookingID, actorID, admin)
}
func (m *mockBookingService) GetBooking(ctx context.Context, bookingID, actorID uint64, admin bool) (*repository.BookingDetails, error) {
	return m.getFn(ctx, bookingID, actorID, admin)
}
func (m *mockBookingService) ListUserBookings(ctx context.Context, userID uint64, limit, offset int) ([]repository.BookingDetails, int, error) {
	return m.listUserFn(ctx, userID, limit, offset)
}
func (m *mockBookingService) ListShowtimeBookings(ctx context.Context, showtimeID uint64, limit, offset int) ([]repository.BookingDetails, int, error) {
	return m.listShowtimeFn(ctx, showtimeID, limit, offset)
}

func bookingContext(t *testing.T, method, target, body string, userID uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserID, userID)
	c.Set(middleware.CtxRole, role)
	return c, rec
}

func TestCreateBooking_Success(t *testing.T) {
	svc := &mockBookingService{
		bookFn: func(ctx context.Context, userID, showtimeID uint64, seatIDs []uint64) (*model.Booking, error) {
			assert.Equal(t, uint64(7), userID)
			assert.Equal(t, uint64(3), showtimeID)
			assert.Equal(t, []uint64{10, 11}, seatIDs)
			return &model.Booking{
				ID:          1,
				UserID:      userID,
				ShowtimeID:  showtimeID,
				TotalPrice:  decimal.RequireFromString("240.00"),
				Status:      model.BookingStatusPending,
				BookingDate: time.Now(),
				Seats: []model.BookingSeat{
					{SeatID: 10, FinalPrice: decimal.RequireFromString("120.00"), Status: model.BookingSeatStatusActive},
					{SeatID: 11, FinalPrice: decimal.RequireFromString("120.00"), Status: model.BookingSeatStatusActive},
				},
			}, nil
		},
	}

	c, rec := bookingContext(t, http.MethodPost, "/v1/showtimes/3/bookings", `{"seats":[10,11]}`, 7, model.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("3")

	require.NoError(t, NewBookingHandler(svc).Create(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp model.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(1), resp.ID)
	assert.Equal(t, model.BookingStatusPending, resp.Status)
	assert.Len(t, resp.Seats, 2)
	assert.True(t, resp.TotalPrice.Equal(decimal.RequireFromString("240.00")))
}

func TestCreateBooking_ShowtimeNotFound(t *testing.T) {
	svc := &mockBookingService{
		bookFn: func(ctx context.Context, userID, showtimeID uint64, seatIDs []uint64) (*model.Booking, error) {
			return nil, service.ErrShowtimeNotFound
		},
	}

	c, rec := bookingContext(t, http.MethodPost, "/v1/showtimes/99/bookings", `{"seats":[1]}`, 7, model.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("99")

	require.NoError(t, NewBookingHandler(svc).Create(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBooking_SeatsAlreadyBooked(t *testing.T) {
	svc := &mockBookingService{
		bookFn: func(ctx context.Context, userID, showtimeID uint64, seatIDs []uint64) (*model.Booking, error) {
			return nil, &service.SeatsAlreadyBookedError{SeatIDs: []uint64{11}}
		},
	}

	c, rec := bookingContext(t, http.MethodPost, "/v1/showtimes/3/bookings", `{"seats":[10,11]}`, 7, model.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("3")

	require.NoError(t, NewBookingHandler(svc).Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error string   `json:"error"`
		Seats []uint64 `json:"seats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []uint64{11}, resp.Seats)
}

func TestCreateBooking_SeatsNotFound(t *testing.T) {
	svc := &mockBookingService{
		bookFn: func(ctx context.Context, userID, showtimeID uint64, seatIDs []uint64) (*model.Booking, error) {
			return nil, &service.SeatsNotFoundError{SeatIDs: []uint64{42}}
		},
	}

	c, rec := bookingContext(t, http.MethodPost, "/v1/showtimes/3/bookings", `{"seats":[42]}`, 7, model.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("3")

	require.NoError(t, NewBookingHandler(svc).Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBooking_NoActiveTariff(t *testing.T) {
	svc := &mockBookingService{
		bookFn: func(ctx context.Context, userID, showtimeID uint64, seatIDs []uint64) (*model.Booking, error) {
			return nil, service.ErrNoActiveTariff
		},
	}

	c, rec := bookingContext(t, http.MethodPost, "/v1/showtimes/3/bookings", `{"seats":[10]}`, 7, model.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("3")

	require.NoError(t, NewBookingHandler(svc).Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBooking_EmptySeats(t *testing.T) {
	c, rec := bookingContext(t, http.MethodPost, "/v1/showtimes/3/bookings", `{"seats":[]}`, 7, model.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("3")

	require.NoError(t, NewBookingHandler(&mockBookingService{}).Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBooking_InvalidShowtimeID(t *testing.T) {
	c, rec := bookingContext(t, http.MethodPost, "/v1/showtimes/abc/bookings", `{"seats":[1]}`, 7, model.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	require.NoError(t, NewBookingHandler(&mockBookingService{}).Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBooking_AdminBooksForOtherUser(t *testing.T) {
	var gotUser uint64
	svc := &mockBookingService{
		bookFn: func(ctx context.Context, userID, showtimeID uint64, seatIDs []uint64) (*model.Booking, error) {
			gotUser = userID
			return &model.Booking{ID: 5, UserID: userID, ShowtimeID: showtimeID, Status: model.BookingStatusPending}, nil
		},
	}

	c, rec := bookingContext(t, http.MethodPost, "/v1/showtimes/3/bookings", `{"userId":42,"seats":[1]}`, 7, model.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("3")

	require.NoError(t, NewBookingHandler(svc).Create(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(42), gotUser)
}

func TestCancelBooking_Success(t *testing.T) {
	svc := &mockBookingService{
		cancelFn: func(ctx context.Context, bookingID, actorID uint64, admin bool) (*model.Booking, error) {
			assert.Equal(t, uint64(9), bookingID)
			assert.Equal(t, uint64(7), actorID)
			assert.False(t, admin)
			return &model.Booking{ID: bookingID, Status: model.BookingStatusCancelled}, nil
		},
	}

	c, rec := bookingContext(t, http.MethodDelete, "/v1/bookings/9", "", 7, model.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, NewBookingHandler(svc).Cancel(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCancelBooking_NotFound(t *testing.T) {
	svc := &mockBookingService{
		cancelFn: func(ctx context.Context, bookingID, actorID uint64, admin bool) (*model.Booking, error) {
			return nil, service.ErrBookingNotFound
		},
	}

	c, rec := bookingContext(t, http.MethodDelete, "/v1/bookings/9", "", 7, model.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, NewBookingHandler(svc).Cancel(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBooking_Success(t *testing.T) {
	svc := &mockBookingService{
		getFn: func(ctx context.Context, bookingID, actorID uint64, admin bool) (*repository.BookingDetails, error) {
			return &repository.BookingDetails{BookingID: bookingID, UserID: actorID, Status: model.BookingStatusPending}, nil
		},
	}

	c, rec := bookingContext(t, http.MethodGet, "/v1/bookings/9", "", 7, model.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, NewBookingHandler(svc).Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListByUser_ForbiddenForOthers(t *testing.T) {
	c, rec := bookingContext(t, http.MethodGet, "/v1/users/8/bookings", "", 7, model.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("8")

	require.NoError(t, NewBookingHandler(&mockBookingService{}).ListByUser(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListByUser_PaginationEnvelope(t *testing.T) {
	svc := &mockBookingService{
		listUserFn: func(ctx context.Context, userID uint64, limit, offset int) ([]repository.BookingDetails, int, error) {
			assert.Equal(t, 5, limit)
			assert.Equal(t, 5, offset)
			return []repository.BookingDetails{{BookingID: 1}}, 11, nil
		},
	}

	c, rec := bookingContext(t, http.MethodGet, "/v1/users/7/bookings?page=2&pageSize=5", "", 7, model.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("7")

	require.NoError(t, NewBookingHandler(svc).ListByUser(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []repository.BookingDetails `json:"data"`
		Meta pageMeta                    `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 11, resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.LastPage)
}
