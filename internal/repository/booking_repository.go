package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/moviehall/cinema-booking/internal/model"
)

// Booking repository errors.
var (
	ErrBookingNotFound = errors.New("booking not found")
	// ErrSeatTaken is returned when inserting seat-lines trips the
	// partial unique index on (showtime_id, seat_id) WHERE
	// status = 'active'.  The booking service re-reads the conflicting
	// seats after rollback to name them.
	ErrSeatTaken = errors.New("seat already booked for this showtime")
)

const seatUniqueConstraint = "partial_unique_showtime_seat"

// BookingRepo manages bookings and their seat-lines.  The booking and
// cancellation transactions are driven by the booking service; this
// type supplies the Tx building blocks plus the read side.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts the booking header within an existing transaction
// and populates the generated ID and timestamps.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO booking (user_id, showtime_id, total_price, status)
	           VALUES ($1, $2, $3, $4)
	           RETURNING booking_id, booking_date, updated_at`
	return tx.QueryRowContext(ctx, q, b.UserID, b.ShowtimeID, b.TotalPrice, b.Status).
		Scan(&b.ID, &b.BookingDate, &b.UpdatedAt)
}

// CreateSeatLinesTx bulk-inserts the seat-lines of a booking within an
// existing transaction.  A violation of the active-seat partial unique
// index maps to ErrSeatTaken; the transaction is poisoned at that
// point and must be rolled back by the caller.
func (r *BookingRepo) CreateSeatLinesTx(ctx context.Context, tx *sql.Tx, lines []model.BookingSeat) error {
	if len(lines) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO booking_seat (showtime_id, seat_id, booking_id, tariff_id, final_price, status) VALUES `)
	args := make([]interface{}, 0, len(lines)*6)
	for i, l := range lines {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 6
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6)
		args = append(args, l.ShowtimeID, l.SeatID, l.BookingID, l.TariffID, l.FinalPrice, l.Status)
	}
	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		if isUniqueViolation(err, seatUniqueConstraint) {
			return ErrSeatTaken
		}
		return err
	}
	return nil
}

// ActiveSeatLinesTx returns the seat IDs from the given set that
// already have an active seat-line for the showtime.  Used as the
// pre-insert conflict check; the partial unique index remains the
// authoritative guard.
func (r *BookingRepo) ActiveSeatLinesTx(ctx context.Context, tx *sql.Tx, showtimeID uint64, seatIDs []uint64) ([]uint64, error) {
	const q = `SELECT seat_id FROM booking_seat
	           WHERE showtime_id = $1 AND seat_id = ANY($2) AND status = 'active'`
	rows, err := tx.QueryContext(ctx, q, showtimeID, int64Array(seatIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var taken []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		taken = append(taken, id)
	}
	return taken, rows.Err()
}

// ActiveSeatLines is ActiveSeatLinesTx outside a transaction, used to
// name the conflicting seats after a unique-violation rollback.
func (r *BookingRepo) ActiveSeatLines(ctx context.Context, showtimeID uint64, seatIDs []uint64) ([]uint64, error) {
	const q = `SELECT seat_id FROM booking_seat
	           WHERE showtime_id = $1 AND seat_id = ANY($2) AND status = 'active'`
	rows, err := r.db.QueryContext(ctx, q, showtimeID, int64Array(seatIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var taken []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		taken = append(taken, id)
	}
	return taken, rows.Err()
}

// ActiveSeatIDs returns the set of seats with an active seat-line for
// the showtime.  Backs the isBooked flags on the hall plan.
func (r *BookingRepo) ActiveSeatIDs(ctx context.Context, showtimeID uint64) (map[uint64]bool, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_id FROM booking_seat WHERE showtime_id = $1 AND status = 'active'`, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	booked := make(map[uint64]bool)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		booked[id] = true
	}
	return booked, rows.Err()
}

// CountActiveByShowtimeTx counts active seat-lines of a showtime
// within a transaction.  Backs the showtime reschedule and delete
// guards.
func (r *BookingRepo) CountActiveByShowtimeTx(ctx context.Context, tx *sql.Tx, showtimeID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM booking_seat WHERE showtime_id = $1 AND status = 'active'`, showtimeID).Scan(&n)
	return n, err
}

// GetForUpdateTx loads a booking by ID with a FOR UPDATE lock,
// serializing concurrent cancellations of the same booking.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (*model.Booking, error) {
	const q = `SELECT booking_id, user_id, showtime_id, total_price, status, booking_date, updated_at
	           FROM booking WHERE booking_id = $1 FOR UPDATE`
	var b model.Booking
	err := tx.QueryRowContext(ctx, q, bookingID).Scan(
		&b.ID, &b.UserID, &b.ShowtimeID, &b.TotalPrice, &b.Status, &b.BookingDate, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// UpdateStatusTx sets the booking status within an existing
// transaction.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, bookingID uint64, status string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE booking SET status = $1, updated_at = now() WHERE booking_id = $2`, status, bookingID)
	return err
}

// CancelSeatLinesTx flips every active seat-line of the booking to
// cancelled, releasing the seats for rebooking.  Returns the seat IDs
// that were released.
func (r *BookingRepo) CancelSeatLinesTx(ctx context.Context, tx *sql.Tx, bookingID uint64) ([]uint64, error) {
	const q = `UPDATE booking_seat SET status = 'cancelled', updated_at = now()
	           WHERE booking_id = $1 AND status = 'active'
	           RETURNING seat_id`
	rows, err := tx.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var released []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		released = append(released, id)
	}
	return released, rows.Err()
}

// BookedSeat is one seat-line of a booking joined with its seat
// position.
type BookedSeat struct {
	SeatID     uint64          `json:"seatId"`
	RowNumber  int             `json:"rowNumber"`
	SeatNumber int             `json:"seatNumber"`
	SeatType   string          `json:"seatType"`
	FinalPrice decimal.Decimal `json:"finalPrice"`
	Status     string          `json:"status"`
}

// BookingDetails is a booking joined with its showtime, movie and
// seat-lines.
type BookingDetails struct {
	BookingID   uint64          `json:"bookingId"`
	UserID      uint64          `json:"userId"`
	ShowtimeID  uint64          `json:"showtimeId"`
	MovieTitle  string          `json:"title"`
	HallNumber  int             `json:"hallNumber"`
	ShowDate    string          `json:"showDate"`
	ShowTime    string          `json:"showTime"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	Status      string          `json:"status"`
	BookingDate string          `json:"bookingDate"`
	Seats       []BookedSeat    `json:"seats"`
}

const bookingDetailsColumns = `b.booking_id, b.user_id, b.showtime_id, m.title, h.hall_number,
	to_char(s.show_date, 'YYYY-MM-DD'), to_char(s.show_time, 'HH24:MI:SS'),
	b.total_price, b.status, to_char(b.booking_date, 'YYYY-MM-DD"T"HH24:MI:SSZ')`

// GetDetails loads a booking with its showtime, movie and seat-lines,
// or ErrBookingNotFound.
func (r *BookingRepo) GetDetails(ctx context.Context, bookingID uint64) (*BookingDetails, error) {
	q := `SELECT ` + bookingDetailsColumns + `
	      FROM booking b
	      JOIN showtime s ON s.showtime_id = b.showtime_id
	      JOIN movie m ON m.movie_id = s.movie_id
	      JOIN cinema_hall h ON h.hall_id = s.hall_id
	      WHERE b.booking_id = $1`
	var d BookingDetails
	err := r.db.QueryRowContext(ctx, q, bookingID).Scan(
		&d.BookingID, &d.UserID, &d.ShowtimeID, &d.MovieTitle, &d.HallNumber,
		&d.ShowDate, &d.ShowTime, &d.TotalPrice, &d.Status, &d.BookingDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	seats, err := r.seatsOfBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	d.Seats = seats
	return &d, nil
}

func (r *BookingRepo) seatsOfBooking(ctx context.Context, bookingID uint64) ([]BookedSeat, error) {
	const q = `SELECT bs.seat_id, st.row_number, st.seat_number, st.seat_type, bs.final_price, bs.status
	           FROM booking_seat bs
	           JOIN seat st ON st.seat_id = bs.seat_id
	           WHERE bs.booking_id = $1
	           ORDER BY st.row_number, st.seat_number`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]BookedSeat, 0)
	for rows.Next() {
		var s BookedSeat
		if err := rows.Scan(&s.SeatID, &s.RowNumber, &s.SeatNumber, &s.SeatType, &s.FinalPrice, &s.Status); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// ListByUser returns the user's bookings, newest first, with their
// seat-lines, plus the total count for pagination.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]BookingDetails, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM booking WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	q := `SELECT ` + bookingDetailsColumns + `
	      FROM booking b
	      JOIN showtime s ON s.showtime_id = b.showtime_id
	      JOIN movie m ON m.movie_id = s.movie_id
	      JOIN cinema_hall h ON h.hall_id = s.hall_id
	      WHERE b.user_id = $1
	      ORDER BY b.booking_date DESC
	      LIMIT $2 OFFSET $3`
	return r.listDetails(ctx, q, total, userID, limit, offset)
}

// ListByShowtime returns every booking of a showtime, newest first,
// with seat-lines, plus the total count for pagination.
func (r *BookingRepo) ListByShowtime(ctx context.Context, showtimeID uint64, limit, offset int) ([]BookingDetails, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM booking WHERE showtime_id = $1`, showtimeID).Scan(&total); err != nil {
		return nil, 0, err
	}
	q := `SELECT ` + bookingDetailsColumns + `
	      FROM booking b
	      JOIN showtime s ON s.showtime_id = b.showtime_id
	      JOIN movie m ON m.movie_id = s.movie_id
	      JOIN cinema_hall h ON h.hall_id = s.hall_id
	      WHERE b.showtime_id = $1
	      ORDER BY b.booking_date DESC
	      LIMIT $2 OFFSET $3`
	return r.listDetails(ctx, q, total, showtimeID, limit, offset)
}

func (r *BookingRepo) listDetails(ctx context.Context, q string, total int, args ...interface{}) ([]BookingDetails, int, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := make([]BookingDetails, 0)
	for rows.Next() {
		var d BookingDetails
		if err := rows.Scan(
			&d.BookingID, &d.UserID, &d.ShowtimeID, &d.MovieTitle, &d.HallNumber,
			&d.ShowDate, &d.ShowTime, &d.TotalPrice, &d.Status, &d.BookingDate); err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range items {
		seats, err := r.seatsOfBooking(ctx, items[i].BookingID)
		if err != nil {
			return nil, 0, err
		}
		items[i].Seats = seats
	}
	return items, total, nil
}
