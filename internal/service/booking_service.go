package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moviehall/cinema-booking/internal/model"
	"github.com/moviehall/cinema-booking/internal/pricing"
	"github.com/moviehall/cinema-booking/internal/queue"
	"github.com/moviehall/cinema-booking/internal/repository"
)

// EventPublisher sends booking lifecycle events to the broker.
// Publishing is best effort: failures are logged by the publisher and
// never fail the request.
type EventPublisher interface {
	BookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
	BookingCancelled(ctx context.Context, ev queue.BookingCancelledEvent) error
}

// BookingService runs the seat booking and cancellation transactions.
// Seat uniqueness ultimately rests on the partial unique index over
// active booking_seat rows; everything else here is advisory checking
// and atomicity.
type BookingService struct {
	db        *sql.DB
	showtimes *repository.ShowtimeRepo
	halls     *repository.HallRepo
	tariffs   *repository.TariffRepo
	bookings  *repository.BookingRepo
	publisher EventPublisher
	now       func() time.Time
}

// NewBookingService wires a BookingService.  publisher may be nil when
// no broker is configured.
func NewBookingService(db *sql.DB, showtimes *repository.ShowtimeRepo, halls *repository.HallRepo,
	tariffs *repository.TariffRepo, bookings *repository.BookingRepo, publisher EventPublisher) *BookingService {
	return &BookingService{
		db:        db,
		showtimes: showtimes,
		halls:     halls,
		tariffs:   tariffs,
		bookings:  bookings,
		publisher: publisher,
		now:       time.Now,
	}
}

// BookSeats books the given seats of a showtime for a user in one
// transaction.  On success the returned booking carries its seat-lines
// and the total price.  Failure modes:
//
//   - ErrShowtimeNotFound: unknown or deleted showtime.
//   - SeatsNotFoundError: some seats are not in the showtime's hall.
//   - SeatsAlreadyBookedError: some seats hold an active booking.
//   - ErrNoActiveTariff: no tariff window covers the current time.
//
// Every failure aborts the whole transaction; no partial booking is
// ever observable.
func (s *BookingService) BookSeats(ctx context.Context, userID, showtimeID uint64, seatIDs []uint64) (*model.Booking, error) {
	ids := dedupeIDs(seatIDs)
	if len(ids) == 0 {
		return nil, ErrNoSeatsRequested
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

	st, err := s.showtimes.GetByIDTx(ctx, tx, showtimeID)
	if err != nil {
		return nil, err
	}

	seats, err := s.halls.SeatsByIDsTx(ctx, tx, st.HallID, ids)
	if err != nil {
		return nil, err
	}
	var missing []uint64
	for _, id := range ids {
		if _, ok := seats[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &SeatsNotFoundError{SeatIDs: missing}
	}

	// Advisory pre-check; the partial unique index is authoritative.
	taken, err := s.bookings.ActiveSeatLinesTx(ctx, tx, showtimeID, ids)
	if err != nil {
		return nil, err
	}
	if len(taken) > 0 {
		return nil, &SeatsAlreadyBookedError{SeatIDs: taken}
	}

	clock := pricing.ClockFrom(s.now())
	tariff, err := s.tariffs.ResolveForTimeTx(ctx, tx, clock)
	if err != nil {
		if errors.Is(err, repository.ErrTariffNotFound) {
			return nil, ErrNoActiveTariff
		}
		return nil, err
	}

	total := decimal.Zero
	lines := make([]model.BookingSeat, 0, len(ids))
	for _, id := range ids {
		price := pricing.FinalPrice(seats[id].BasePrice, tariff.PriceMultiplier)
		total = total.Add(price)
		lines = append(lines, model.BookingSeat{
			ShowtimeID: showtimeID,
			SeatID:     id,
			TariffID:   tariff.ID,
			FinalPrice: price,
			Status:     model.BookingSeatStatusActive,
		})
	}

	b := &model.Booking{
		UserID:     userID,
		ShowtimeID: showtimeID,
		TotalPrice: total,
		Status:     model.BookingStatusPending,
	}
	if err := s.bookings.CreateTx(ctx, tx, b); err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].BookingID = b.ID
	}
	if err := s.bookings.CreateSeatLinesTx(ctx, tx, lines); err != nil {
		if errors.Is(err, repository.ErrSeatTaken) {
			// Lost the race.  Roll back, then re-read outside the
			// poisoned transaction to name the conflicting seats.
			_ = tx.Rollback()
			conflicting, rerr := s.bookings.ActiveSeatLines(ctx, showtimeID, ids)
			if rerr != nil || len(conflicting) == 0 {
				conflicting = ids
			}
			return nil, &SeatsAlreadyBookedError{SeatIDs: conflicting}
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	b.Seats = lines

	if s.publisher != nil {
		_ = s.publisher.BookingConfirmed(ctx, queue.BookingConfirmedEvent{
			BookingID:  b.ID,
			UserID:     b.UserID,
			ShowtimeID: b.ShowtimeID,
			SeatIDs:    ids,
			TotalPrice: b.TotalPrice.StringFixed(2),
			BookedAt:   b.BookingDate.UTC().Format(time.RFC3339),
		})
	}
	return b, nil
}

// CancelBooking cancels a pending or confirmed booking and releases
// its seats in one transaction.  Non-admin callers may only cancel
// their own bookings; foreign and already-cancelled bookings read as
// ErrBookingNotFound.  Cancelling is idempotent per seat-line.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, actorID uint64, admin bool) (*model.Booking, error) {
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

	b, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == model.BookingStatusCancelled {
		return nil, ErrBookingNotFound
	}
	if !admin && b.UserID != actorID {
		return nil, ErrBookingNotFound
	}

	if err := s.bookings.UpdateStatusTx(ctx, tx, b.ID, model.BookingStatusCancelled); err != nil {
		return nil, err
	}
	released, err := s.bookings.CancelSeatLinesTx(ctx, tx, b.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	b.Status = model.BookingStatusCancelled

	if s.publisher != nil {
		_ = s.publisher.BookingCancelled(ctx, queue.BookingCancelledEvent{
			BookingID:   b.ID,
			UserID:      b.UserID,
			ShowtimeID:  b.ShowtimeID,
			SeatIDs:     released,
			CancelledAt: s.now().UTC().Format(time.RFC3339),
		})
	}
	return b, nil
}

// GetBooking returns booking details with seat-lines.  Non-admin
// callers only see their own bookings.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, actorID uint64, admin bool) (*repository.BookingDetails, error) {
	d, err := s.bookings.GetDetails(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !admin && d.UserID != actorID {
		return nil, ErrBookingNotFound
	}
	return d, nil
}

// ListUserBookings returns a page of a user's bookings plus the total
// count.
func (s *BookingService) ListUserBookings(ctx context.Context, userID uint64, limit, offset int) ([]repository.BookingDetails, int, error) {
	return s.bookings.ListByUser(ctx, userID, limit, offset)
}

// ListShowtimeBookings returns a page of a showtime's bookings plus
// the total count.  The showtime must exist.
func (s *BookingService) ListShowtimeBookings(ctx context.Context, showtimeID uint64, limit, offset int) ([]repository.BookingDetails, int, error) {
	if _, err := s.showtimes.GetDetails(ctx, showtimeID); err != nil {
		return nil, 0, err
	}
	return s.bookings.ListByShowtime(ctx, showtimeID, limit, offset)
}

// dedupeIDs drops duplicate IDs preserving first-seen order.
func dedupeIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
