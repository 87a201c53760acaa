package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviehall/cinema-booking/internal/model"
	"github.com/moviehall/cinema-booking/internal/repository"
	"github.com/moviehall/cinema-booking/internal/service"
)

type mockShowtimeService struct {
	listFn    func(ctx context.Context) ([]service.MovieShowtimes, error)
	detailsFn func(ctx context.Context, showtimeID uint64) (*repository.ShowtimeDetails, error)
	planFn    func(ctx context.Context, showtimeID uint64) (*service.ShowtimePlan, error)
	createFn  func(ctx context.Context, in service.ShowtimeInput) (*model.Showtime, error)
	updateFn  func(ctx context.Context, showtimeID uint64, upd service.ShowtimeUpdate) (*model.Showtime, error)
	deleteFn  func(ctx context.Context, showtimeID uint64) error
}

func (m *mockShowtimeService) ListUpcoming(ctx context.Context) ([]service.MovieShowtimes, error) {
	return m.listFn(ctx)
}
func (m *mockShowtimeService) GetDetails(ctx context.Context, id uint64) (*repository.ShowtimeDetails, error) {
	return m.detailsFn(ctx, id)
}
func (m *mockShowtimeService) HallPlan(ctx context.Context, id uint64) (*service.ShowtimePlan, error) {
	return m.planFn(ctx, id)
}
func (m *mockShowtimeService) Create(ctx context.Context, in service.ShowtimeInput) (*model.Showtime, error) {
	return m.createFn(ctx, in)
}
func (m *mockShowtimeService) Update(ctx context.Context, id uint64, upd service.ShowtimeUpdate) (*model.Showtime, error) {
	return m.updateFn(ctx, id, upd)
}
func (m *mockShowtimeService) Delete(ctx context.Context, id uint64) error {
	return m.deleteFn(ctx, id)
}

func showtimeContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
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
	return e.NewContext(req, rec), rec
}

func TestShowtimeList_GroupsByMovie(t *testing.T) {
	svc := &mockShowtimeService{
		listFn: func(ctx context.Context) ([]service.MovieShowtimes, error) {
			return []service.MovieShowtimes{{
				MovieID: 1,
				Title:   "Heat",
				Showtimes: []service.ShowtimeSlot{
					{ShowtimeID: 4, ShowDate: "2026-09-02", ShowTime: "18:30:00"},
				},
			}}, nil
		},
	}

	c, rec := showtimeContext(t, http.MethodGet, "/v1/showtimes", "")
	require.NoError(t, NewShowtimeHandler(svc).List(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []service.MovieShowtimes `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Heat", resp.Data[0].Title)
	assert.Len(t, resp.Data[0].Showtimes, 1)
}

func TestShowtimeGet_NotFound(t *testing.T) {
	svc := &mockShowtimeService{
		detailsFn: func(ctx context.Context, id uint64) (*repository.ShowtimeDetails, error) {
			return nil, service.ErrShowtimeNotFound
		},
	}

	c, rec := showtimeContext(t, http.MethodGet, "/v1/showtimes/12", "")
	c.SetParamNames("id")
	c.SetParamValues("12")

	require.NoError(t, NewShowtimeHandler(svc).Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShowtimeSeats_Plan(t *testing.T) {
	svc := &mockShowtimeService{
		planFn: func(ctx context.Context, id uint64) (*service.ShowtimePlan, error) {
			assert.Equal(t, uint64(3), id)
			return &service.ShowtimePlan{
				ShowtimeID: 3,
				MovieTitle: "Heat",
				HallNumber: 2,
				ShowDate:   "2026-09-02",
				ShowTime:   "18:30:00",
				Seats: []service.PlanSeat{
					{SeatID: 1, RowNumber: 1, SeatNumber: 1, SeatType: model.SeatTypeStandard, IsBooked: true},
					{SeatID: 2, RowNumber: 1, SeatNumber: 2, SeatType: model.SeatTypeVIP},
				},
			}, nil
		},
	}

	c, rec := showtimeContext(t, http.MethodGet, "/v1/showtimes/3/seats", "")
	c.SetParamNames("id")
	c.SetParamValues("3")

	require.NoError(t, NewShowtimeHandler(svc).Seats(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var plan service.ShowtimePlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	require.Len(t, plan.Seats, 2)
	assert.True(t, plan.Seats[0].IsBooked)
	assert.False(t, plan.Seats[1].IsBooked)
}

func TestShowtimeCreate_Success(t *testing.T) {
	svc := &mockShowtimeService{
		createFn: func(ctx context.Context, in service.ShowtimeInput) (*model.Showtime, error) {
			assert.Equal(t, uint64(2), in.HallID)
			assert.Equal(t, uint64(1), in.MovieID)
			assert.Equal(t, "2026-09-02", in.ShowDate)
			assert.Equal(t, "18:30:00", in.ShowTime)
			return &model.Showtime{ID: 9, HallID: in.HallID, MovieID: in.MovieID}, nil
		},
	}

	body := `{"hallId":2,"movieId":1,"showDate":"2026-09-02","showTime":"18:30:00"}`
	c, rec := showtimeContext(t, http.MethodPost, "/v1/showtimes", body)

	require.NoError(t, NewShowtimeHandler(svc).Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestShowtimeCreate_MissingFields(t *testing.T) {
	c, rec := showtimeContext(t, http.MethodPost, "/v1/showtimes", `{"hallId":2}`)
	require.NoError(t, NewShowtimeHandler(&mockShowtimeService{}).Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShowtimeCreate_SlotConflict(t *testing.T) {
	svc := &mockShowtimeService{
		createFn: func(ctx context.Context, in service.ShowtimeInput) (*model.Showtime, error) {
			return nil, repository.ErrConflict
		},
	}

	body := `{"hallId":2,"movieId":1,"showDate":"2026-09-02","showTime":"18:30:00"}`
	c, rec := showtimeContext(t, http.MethodPost, "/v1/showtimes", body)

	require.NoError(t, NewShowtimeHandler(svc).Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestShowtimeCreate_PastSlot(t *testing.T) {
	svc := &mockShowtimeService{
		createFn: func(ctx context.Context, in service.ShowtimeInput) (*model.Showtime, error) {
			return nil, service.ErrShowtimeInPast
		},
	}

	body := `{"hallId":2,"movieId":1,"showDate":"2020-01-01","showTime":"18:30:00"}`
	c, rec := showtimeContext(t, http.MethodPost, "/v1/showtimes", body)

	require.NoError(t, NewShowtimeHandler(svc).Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShowtimeUpdate_HasBookings(t *testing.T) {
	svc := &mockShowtimeService{
		updateFn: func(ctx context.Context, id uint64, upd service.ShowtimeUpdate) (*model.Showtime, error) {
			require.NotNil(t, upd.ShowTime)
			assert.Equal(t, "20:00:00", *upd.ShowTime)
			return nil, service.ErrShowtimeHasBookings
		},
	}

	c, rec := showtimeContext(t, http.MethodPatch, "/v1/showtimes/9", `{"showTime":"20:00:00"}`)
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, NewShowtimeHandler(svc).Update(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShowtimeDelete_HasBookings(t *testing.T) {
	svc := &mockShowtimeService{
		deleteFn: func(ctx context.Context, id uint64) error {
			return service.ErrShowtimeHasBookings
		},
	}

	c, rec := showtimeContext(t, http.MethodDelete, "/v1/showtimes/9", "")
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, NewShowtimeHandler(svc).Delete(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShowtimeDelete_Success(t *testing.T) {
	svc := &mockShowtimeService{
		deleteFn: func(ctx context.Context, id uint64) error { return nil },
	}

	c, rec := showtimeContext(t, http.MethodDelete, "/v1/showtimes/9", "")
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, NewShowtimeHandler(svc).Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
