package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moviehall/cinema-booking/internal/model"
	"github.com/moviehall/cinema-booking/internal/pricing"
	"github.com/moviehall/cinema-booking/internal/repository"
)

const dateLayout = "2006-01-02"

// ErrInvalidSchedule rejects malformed show dates or times.
var ErrInvalidSchedule = errors.New("invalid show date or time")

// ShowtimeService implements the showtime lifecycle: create, update
// and delete with their guards, plus the read-side composition of the
// hall plan.
type ShowtimeService struct {
	db        *sql.DB
	showtimes *repository.ShowtimeRepo
	halls     *repository.HallRepo
	tariffs   *repository.TariffRepo
	bookings  *repository.BookingRepo
	now       func() time.Time
}

// NewShowtimeService wires a ShowtimeService.
func NewShowtimeService(db *sql.DB, showtimes *repository.ShowtimeRepo, halls *repository.HallRepo,
	tariffs *repository.TariffRepo, bookings *repository.BookingRepo) *ShowtimeService {
	return &ShowtimeService{
		db:        db,
		showtimes: showtimes,
		halls:     halls,
		tariffs:   tariffs,
		bookings:  bookings,
		now:       time.Now,
	}
}

// ShowtimeInput carries the fields of a create request.
type ShowtimeInput struct {
	HallID   uint64 `json:"hallId"`
	MovieID  uint64 `json:"movieId"`
	ShowDate string `json:"showDate"`
	ShowTime string `json:"showTime"`
}

// Create schedules a showtime.  The hall and movie must exist, the
// slot must not be in the past and a tariff window must cover the show
// time; that tariff is stored with the showtime and drives the hall
// plan prices.  A duplicate (hall, date, time) slot surfaces as
// repository.ErrConflict.
func (s *ShowtimeService) Create(ctx context.Context, in ShowtimeInput) (*model.Showtime, error) {
	if err := s.validateSchedule(in.ShowDate, in.ShowTime); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ok, err := s.showtimes.HallExistsTx(ctx, tx, in.HallID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrHallNotFound
	}
	ok, err = s.showtimes.MovieExistsTx(ctx, tx, in.MovieID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrMovieNotFound
	}

	tariff, err := s.tariffs.ResolveForTimeTx(ctx, tx, in.ShowTime)
	if err != nil {
		if errors.Is(err, repository.ErrTariffNotFound) {
			return nil, ErrNoActiveTariff
		}
		return nil, err
	}

	st := &model.Showtime{
		HallID:   in.HallID,
		MovieID:  in.MovieID,
		ShowDate: in.ShowDate,
		ShowTime: in.ShowTime,
		TariffID: tariff.ID,
	}
	if err := s.showtimes.CreateTx(ctx, tx, st); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return st, nil
}

// ShowtimeUpdate carries the optional fields of an update request.
// Nil pointers keep the stored values.
type ShowtimeUpdate struct {
	HallID   *uint64
	MovieID  *uint64
	ShowDate *string
	ShowTime *string
}

// Update reschedules a showtime under a FOR UPDATE lock.  Changing the
// show time while active seat bookings exist is rejected with
// ErrShowtimeHasBookings; a time change also re-resolves the stored
// tariff.  The effective slot must not be in the past.
func (s *ShowtimeService) Update(ctx context.Context, showtimeID uint64, upd ShowtimeUpdate) (*model.Showtime, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	st, err := s.showtimes.GetForUpdateTx(ctx, tx, showtimeID)
	if err != nil {
		return nil, err
	}

	timeChanged := upd.ShowTime != nil && *upd.ShowTime != st.ShowTime
	if timeChanged {
		n, err := s.bookings.CountActiveByShowtimeTx(ctx, tx, st.ID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, ErrShowtimeHasBookings
		}
	}

	if upd.HallID != nil && *upd.HallID != st.HallID {
		ok, err := s.showtimes.HallExistsTx(ctx, tx, *upd.HallID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, repository.ErrHallNotFound
		}
		st.HallID = *upd.HallID
	}
	if upd.MovieID != nil && *upd.MovieID != st.MovieID {
		ok, err := s.showtimes.MovieExistsTx(ctx, tx, *upd.MovieID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, repository.ErrMovieNotFound
		}
		st.MovieID = *upd.MovieID
	}
	if upd.ShowDate != nil {
		st.ShowDate = *upd.ShowDate
	}
	if upd.ShowTime != nil {
		st.ShowTime = *upd.ShowTime
	}
	if err := s.validateSchedule(st.ShowDate, st.ShowTime); err != nil {
		return nil, err
	}

	if timeChanged {
		tariff, err := s.tariffs.ResolveForTimeTx(ctx, tx, st.ShowTime)
		if err != nil {
			if errors.Is(err, repository.ErrTariffNotFound) {
				return nil, ErrNoActiveTariff
			}
			return nil, err
		}
		st.TariffID = tariff.ID
	}

	if err := s.showtimes.UpdateTx(ctx, tx, st); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return st, nil
}

// Delete soft-deletes a showtime under a FOR UPDATE lock.  Rejected
// with ErrShowtimeHasBookings while active seat bookings exist.
func (s *ShowtimeService) Delete(ctx context.Context, showtimeID uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	st, err := s.showtimes.GetForUpdateTx(ctx, tx, showtimeID)
	if err != nil {
		return err
	}
	n, err := s.bookings.CountActiveByShowtimeTx(ctx, tx, st.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrShowtimeHasBookings
	}
	if err := s.showtimes.SoftDeleteTx(ctx, tx, st.ID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// validateSchedule checks formats and rejects slots in the past.
func (s *ShowtimeService) validateSchedule(showDate, showTime string) error {
	if _, err := pricing.ParseTimeOfDay(showTime); err != nil {
		return ErrInvalidSchedule
	}
	at, err := time.ParseInLocation(dateLayout+" "+pricing.TimeLayout, showDate+" "+showTime, time.Local)
	if err != nil {
		return ErrInvalidSchedule
	}
	if at.Before(s.now()) {
		return ErrShowtimeInPast
	}
	return nil
}

// MovieShowtimes groups the upcoming showtimes of one movie.
type MovieShowtimes struct {
	MovieID   uint64         `json:"movieId"`
	Title     string         `json:"title"`
	Showtimes []ShowtimeSlot `json:"showtimes"`
}

// ShowtimeSlot is one (date, time) entry of the upcoming listing.
type ShowtimeSlot struct {
	ShowtimeID uint64 `json:"showtimeId"`
	ShowDate   string `json:"showDate"`
	ShowTime   string `json:"showTime"`
}

// ListUpcoming returns the next seven days of showtimes grouped per
// movie, movies ordered by their earliest slot.
func (s *ShowtimeService) ListUpcoming(ctx context.Context) ([]MovieShowtimes, error) {
	items, err := s.showtimes.ListUpcoming(ctx)
	if err != nil {
		return nil, err
	}
	grouped := make([]MovieShowtimes, 0)
	index := make(map[uint64]int)
	for _, it := range items {
		i, ok := index[it.MovieID]
		if !ok {
			i = len(grouped)
			index[it.MovieID] = i
			grouped = append(grouped, MovieShowtimes{MovieID: it.MovieID, Title: it.MovieTitle})
		}
		grouped[i].Showtimes = append(grouped[i].Showtimes, ShowtimeSlot{
			ShowtimeID: it.ShowtimeID,
			ShowDate:   it.ShowDate,
			ShowTime:   it.ShowTime,
		})
	}
	return grouped, nil
}

// GetDetails returns a showtime joined with its movie, hall and
// tariff.
func (s *ShowtimeService) GetDetails(ctx context.Context, showtimeID uint64) (*repository.ShowtimeDetails, error) {
	return s.showtimes.GetDetails(ctx, showtimeID)
}

// PlanSeat is one seat of the hall plan, annotated with availability
// and the price under the showtime's tariff.
type PlanSeat struct {
	SeatID     uint64          `json:"seatId"`
	RowNumber  int             `json:"rowNumber"`
	SeatNumber int             `json:"seatNumber"`
	SeatType   string          `json:"seatType"`
	FinalPrice decimal.Decimal `json:"finalPrice"`
	IsBooked   bool            `json:"isBooked"`
}

// ShowtimePlan is the seat map of a showtime.
type ShowtimePlan struct {
	ShowtimeID uint64     `json:"showtimeId"`
	MovieTitle string     `json:"title"`
	HallNumber int        `json:"hallNumber"`
	ShowDate   string     `json:"showDate"`
	ShowTime   string     `json:"showTime"`
	Seats      []PlanSeat `json:"seats"`
}

// HallPlan returns every non-deleted seat of the showtime's hall with
// an isBooked flag and the final price under the showtime's stored
// tariff.
func (s *ShowtimeService) HallPlan(ctx context.Context, showtimeID uint64) (*ShowtimePlan, error) {
	details, err := s.showtimes.GetDetails(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	hall, err := s.halls.GetDetails(ctx, details.HallID)
	if err != nil {
		return nil, err
	}
	booked, err := s.bookings.ActiveSeatIDs(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	plan := &ShowtimePlan{
		ShowtimeID: details.ShowtimeID,
		MovieTitle: details.MovieTitle,
		HallNumber: details.HallNumber,
		ShowDate:   details.ShowDate,
		ShowTime:   details.ShowTime,
		Seats:      make([]PlanSeat, 0, len(hall.Seats)),
	}
	for _, seat := range hall.Seats {
		plan.Seats = append(plan.Seats, PlanSeat{
			SeatID:     seat.ID,
			RowNumber:  seat.RowNumber,
			SeatNumber: seat.SeatNumber,
			SeatType:   seat.SeatType,
			FinalPrice: pricing.FinalPrice(seat.BasePrice, details.PriceMultiplier),
			IsBooked:   booked[seat.ID],
		})
	}
	return plan, nil
}
