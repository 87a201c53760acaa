package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/moviehall/cinema-booking/internal/model"
)

// ErrShowtimeNotFound indicates that a showtime was not located in the
// DB or is soft-deleted.
var ErrShowtimeNotFound = errors.New("showtime not found")

// ShowtimeRepo manages persistence for showtimes.  Lifecycle guards
// (no delete or reschedule while active seat bookings exist) are
// orchestrated by the showtime service using the Tx methods below so
// that the lock, the guard and the write share one transaction.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo constructs a ShowtimeRepo with the given DB handle.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

// ShowtimeListItem is one row of the public showtime listing.
type ShowtimeListItem struct {
	ShowtimeID uint64 `json:"showtimeId"`
	ShowDate   string `json:"showDate"`
	ShowTime   string `json:"showTime"`
	MovieID    uint64 `json:"movieId"`
	MovieTitle string `json:"title"`
}

// ListUpcoming returns non-deleted showtimes of non-deleted movies
// scheduled within the next seven days, ordered by date and time.
func (r *ShowtimeRepo) ListUpcoming(ctx context.Context) ([]ShowtimeListItem, error) {
	const q = `SELECT s.showtime_id, to_char(s.show_date, 'YYYY-MM-DD'), to_char(s.show_time, 'HH24:MI:SS'),
	                  m.movie_id, m.title
	           FROM showtime s
	           JOIN movie m ON m.movie_id = s.movie_id AND m.deleted_at IS NULL
	           WHERE s.deleted_at IS NULL
	             AND s.show_date >= CURRENT_DATE
	             AND s.show_date < CURRENT_DATE + INTERVAL '7 days'
	           ORDER BY s.show_date, s.show_time`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]ShowtimeListItem, 0)
	for rows.Next() {
		var it ShowtimeListItem
		if err := rows.Scan(&it.ShowtimeID, &it.ShowDate, &it.ShowTime, &it.MovieID, &it.MovieTitle); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ShowtimeDetails joins a showtime with its movie, hall and tariff.
type ShowtimeDetails struct {
	ShowtimeID      uint64          `json:"showtimeId"`
	ShowDate        string          `json:"showDate"`
	ShowTime        string          `json:"showTime"`
	MovieID         uint64          `json:"movieId"`
	MovieTitle      string          `json:"title"`
	HallID          uint64          `json:"hallId"`
	HallNumber      int             `json:"hallNumber"`
	TariffID        uint64          `json:"tariffId"`
	TariffName      string          `json:"tariffName"`
	PriceMultiplier decimal.Decimal `json:"priceMultiplier"`
}

// GetDetails returns the showtime joined with movie, hall and tariff
// information, or ErrShowtimeNotFound.
func (r *ShowtimeRepo) GetDetails(ctx context.Context, showtimeID uint64) (*ShowtimeDetails, error) {
	const q = `SELECT s.showtime_id, to_char(s.show_date, 'YYYY-MM-DD'), to_char(s.show_time, 'HH24:MI:SS'),
	                  m.movie_id, m.title, h.hall_id, h.hall_number,
	                  t.tariff_id, t.name, t.price_multiplier
	           FROM showtime s
	           JOIN movie m ON m.movie_id = s.movie_id AND m.deleted_at IS NULL
	           JOIN cinema_hall h ON h.hall_id = s.hall_id AND h.deleted_at IS NULL
	           JOIN tariff t ON t.tariff_id = s.tariff_id
	           WHERE s.showtime_id = $1 AND s.deleted_at IS NULL`
	var d ShowtimeDetails
	err := r.db.QueryRowContext(ctx, q, showtimeID).Scan(
		&d.ShowtimeID, &d.ShowDate, &d.ShowTime,
		&d.MovieID, &d.MovieTitle, &d.HallID, &d.HallNumber,
		&d.TariffID, &d.TariffName, &d.PriceMultiplier,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowtimeNotFound
		}
		return nil, err
	}
	return &d, nil
}

// GetByIDTx returns a non-deleted showtime by ID within a transaction.
func (r *ShowtimeRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, showtimeID uint64) (*model.Showtime, error) {
	const q = `SELECT showtime_id, hall_id, movie_id, to_char(show_date, 'YYYY-MM-DD'),
	                  to_char(show_time, 'HH24:MI:SS'), tariff_id
	           FROM showtime WHERE showtime_id = $1 AND deleted_at IS NULL`
	return r.scanOneTx(ctx, tx, q, showtimeID)
}

// GetForUpdateTx is GetByIDTx with a FOR UPDATE lock, serializing
// concurrent mutators of the same showtime.
func (r *ShowtimeRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, showtimeID uint64) (*model.Showtime, error) {
	const q = `SELECT showtime_id, hall_id, movie_id, to_char(show_date, 'YYYY-MM-DD'),
	                  to_char(show_time, 'HH24:MI:SS'), tariff_id
	           FROM showtime WHERE showtime_id = $1 AND deleted_at IS NULL FOR UPDATE`
	return r.scanOneTx(ctx, tx, q, showtimeID)
}

func (r *ShowtimeRepo) scanOneTx(ctx context.Context, tx *sql.Tx, q string, showtimeID uint64) (*model.Showtime, error) {
	var s model.Showtime
	err := tx.QueryRowContext(ctx, q, showtimeID).Scan(
		&s.ID, &s.HallID, &s.MovieID, &s.ShowDate, &s.ShowTime, &s.TariffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowtimeNotFound
		}
		return nil, err
	}
	return &s, nil
}

// CreateTx inserts a showtime within an existing transaction and
// populates the generated ID.  Duplicate (hall, date, time) slots
// surface as ErrConflict.  The caller resolves the tariff first.
func (r *ShowtimeRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Showtime) error {
	const q = `INSERT INTO showtime (hall_id, movie_id, show_date, show_time, tariff_id)
	           VALUES ($1, $2, $3, $4, $5)
	           RETURNING showtime_id, created_at, updated_at`
	err := tx.QueryRowContext(ctx, q, s.HallID, s.MovieID, s.ShowDate, s.ShowTime, s.TariffID).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return translateUnique(err)
}

// UpdateTx writes the mutable showtime fields within an existing
// transaction.  The caller holds the row lock and has already applied
// the lifecycle guards.
func (r *ShowtimeRepo) UpdateTx(ctx context.Context, tx *sql.Tx, s *model.Showtime) error {
	const q = `UPDATE showtime SET hall_id = $1, movie_id = $2, show_date = $3,
	                               show_time = $4, tariff_id = $5, updated_at = now()
	           WHERE showtime_id = $6`
	_, err := tx.ExecContext(ctx, q, s.HallID, s.MovieID, s.ShowDate, s.ShowTime, s.TariffID, s.ID)
	return translateUnique(err)
}

// SoftDeleteTx marks a showtime deleted within an existing
// transaction.
func (r *ShowtimeRepo) SoftDeleteTx(ctx context.Context, tx *sql.Tx, showtimeID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE showtime SET deleted_at = now() WHERE showtime_id = $1`, showtimeID)
	return err
}

// HallExistsTx reports whether a non-deleted hall exists.
func (r *ShowtimeRepo) HallExistsTx(ctx context.Context, tx *sql.Tx, hallID uint64) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cinema_hall WHERE hall_id = $1 AND deleted_at IS NULL`, hallID).Scan(&n)
	return n > 0, err
}

// MovieExistsTx reports whether a non-deleted movie exists.
func (r *ShowtimeRepo) MovieExistsTx(ctx context.Context, tx *sql.Tx, movieID uint64) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM movie WHERE movie_id = $1 AND deleted_at IS NULL`, movieID).Scan(&n)
	return n > 0, err
}
