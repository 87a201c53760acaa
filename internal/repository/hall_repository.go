package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/moviehall/cinema-booking/internal/model"
)

// Hall repository sentinels.
var (
	ErrHallNotFound     = errors.New("cinema hall not found")
	ErrHallHasShowtimes = errors.New("cinema hall has scheduled showtimes")
	ErrSeatNotFound     = errors.New("seat not found")
)

// HallRepo manages persistence for cinema halls and their seats.
// Seats never exist outside a hall; nested create/update/delete all
// run in a single transaction with the hall row locked.
type HallRepo struct {
	db *sql.DB
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo { return &HallRepo{db: db} }

// List returns all non-deleted halls without seats.
func (r *HallRepo) List(ctx context.Context) ([]model.CinemaHall, error) {
	const q = `SELECT hall_id, hall_number, capacity FROM cinema_hall
	           WHERE deleted_at IS NULL ORDER BY hall_number`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	halls := make([]model.CinemaHall, 0)
	for rows.Next() {
		var h model.CinemaHall
		if err := rows.Scan(&h.ID, &h.HallNumber, &h.Capacity); err != nil {
			return nil, err
		}
		halls = append(halls, h)
	}
	return halls, rows.Err()
}

// GetDetails returns a hall with its non-deleted seats ordered by row
// and seat number, or ErrHallNotFound.
func (r *HallRepo) GetDetails(ctx context.Context, hallID uint64) (*model.CinemaHall, error) {
	const q = `SELECT hall_id, hall_number, capacity FROM cinema_hall
	           WHERE hall_id = $1 AND deleted_at IS NULL`
	var h model.CinemaHall
	if err := r.db.QueryRowContext(ctx, q, hallID).Scan(&h.ID, &h.HallNumber, &h.Capacity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHallNotFound
		}
		return nil, err
	}
	seats, err := r.seatsOfHall(ctx, hallID)
	if err != nil {
		return nil, err
	}
	h.Seats = seats
	return &h, nil
}

func (r *HallRepo) seatsOfHall(ctx context.Context, hallID uint64) ([]model.Seat, error) {
	const q = `SELECT seat_id, hall_id, row_number, seat_number, seat_type, base_price
	           FROM seat WHERE hall_id = $1 AND deleted_at IS NULL
	           ORDER BY row_number, seat_number`
	rows, err := r.db.QueryContext(ctx, q, hallID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.HallID, &s.RowNumber, &s.SeatNumber, &s.SeatType, &s.BasePrice); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// Create inserts a hall together with its initial seats as one atomic
// unit.  Duplicate hall numbers and duplicate (row, number) pairs both
// surface as ErrConflict and roll back everything.
func (r *HallRepo) Create(ctx context.Context, h *model.CinemaHall) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO cinema_hall (hall_number, capacity) VALUES ($1, $2)
	           RETURNING hall_id, created_at, updated_at`
	if err := tx.QueryRowContext(ctx, q, h.HallNumber, h.Capacity).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return translateUnique(err)
	}
	for i := range h.Seats {
		h.Seats[i].HallID = h.ID
		if err := r.insertSeatTx(ctx, tx, &h.Seats[i]); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (r *HallRepo) insertSeatTx(ctx context.Context, tx *sql.Tx, s *model.Seat) error {
	const q = `INSERT INTO seat (hall_id, row_number, seat_number, seat_type, base_price)
	           VALUES ($1, $2, $3, $4, $5) RETURNING seat_id`
	err := tx.QueryRowContext(ctx, q, s.HallID, s.RowNumber, s.SeatNumber, s.SeatType, s.BasePrice).Scan(&s.ID)
	return translateUnique(err)
}

// HallUpdate carries optional hall field changes plus seat mutations.
// A seat with ID==0 is added, one with DeletedAt set is soft-deleted,
// any other is updated in place.
type HallUpdate struct {
	HallNumber *int
	Capacity   *int
	Seats      []model.Seat
}

// Update mutates a hall and its seats under a FOR UPDATE lock on the
// hall row.  Updating a seat that does not belong to the hall fails
// with ErrSeatNotFound and rolls back the entire update.
func (r *HallRepo) Update(ctx context.Context, hallID uint64, upd HallUpdate) (*model.CinemaHall, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var h model.CinemaHall
	const sel = `SELECT hall_id, hall_number, capacity FROM cinema_hall
	             WHERE hall_id = $1 AND deleted_at IS NULL FOR UPDATE`
	if err := tx.QueryRowContext(ctx, sel, hallID).Scan(&h.ID, &h.HallNumber, &h.Capacity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHallNotFound
		}
		return nil, err
	}

	if upd.HallNumber != nil {
		h.HallNumber = *upd.HallNumber
	}
	if upd.Capacity != nil {
		h.Capacity = *upd.Capacity
	}
	const uq = `UPDATE cinema_hall SET hall_number = $1, capacity = $2, updated_at = now() WHERE hall_id = $3`
	if _, err := tx.ExecContext(ctx, uq, h.HallNumber, h.Capacity, hallID); err != nil {
		return nil, translateUnique(err)
	}

	for i := range upd.Seats {
		s := &upd.Seats[i]
		switch {
		case s.ID != 0 && s.DeletedAt != nil:
			const dq = `UPDATE seat SET deleted_at = now()
			            WHERE seat_id = $1 AND hall_id = $2 AND deleted_at IS NULL`
			res, err := tx.ExecContext(ctx, dq, s.ID, hallID)
			if err != nil {
				return nil, err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return nil, err
			}
			if n == 0 {
				return nil, ErrSeatNotFound
			}
		case s.ID != 0:
			const sq = `UPDATE seat SET row_number = $1, seat_number = $2, seat_type = $3,
			                            base_price = $4, updated_at = now()
			            WHERE seat_id = $5 AND hall_id = $6 AND deleted_at IS NULL`
			res, err := tx.ExecContext(ctx, sq, s.RowNumber, s.SeatNumber, s.SeatType, s.BasePrice, s.ID, hallID)
			if err != nil {
				return nil, translateUnique(err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return nil, err
			}
			if n == 0 {
				return nil, ErrSeatNotFound
			}
		default:
			s.HallID = hallID
			if err := r.insertSeatTx(ctx, tx, s); err != nil {
				return nil, err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.GetDetails(ctx, hallID)
}

// Delete soft-deletes a hall and all of its seats, refusing with
// ErrHallHasShowtimes while non-deleted showtimes reference the hall.
// The existence check, the guard and both soft-deletes run in one
// transaction under a hall row lock.
func (r *HallRepo) Delete(ctx context.Context, hallID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var id uint64
	const sel = `SELECT hall_id FROM cinema_hall WHERE hall_id = $1 AND deleted_at IS NULL FOR UPDATE`
	if err := tx.QueryRowContext(ctx, sel, hallID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrHallNotFound
		}
		return err
	}

	var showtimes int
	const cnt = `SELECT COUNT(*) FROM showtime WHERE hall_id = $1 AND deleted_at IS NULL`
	if err := tx.QueryRowContext(ctx, cnt, hallID).Scan(&showtimes); err != nil {
		return err
	}
	if showtimes > 0 {
		return ErrHallHasShowtimes
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE seat SET deleted_at = now() WHERE hall_id = $1 AND deleted_at IS NULL`, hallID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE cinema_hall SET deleted_at = now() WHERE hall_id = $1`, hallID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// SeatsByIDsTx returns the non-deleted seats among ids that belong to
// hallID, keyed by seat ID.  Callers diff the result against the
// request to report missing seats.
func (r *HallRepo) SeatsByIDsTx(ctx context.Context, tx *sql.Tx, hallID uint64, ids []uint64) (map[uint64]model.Seat, error) {
	if len(ids) == 0 {
		return map[uint64]model.Seat{}, nil
	}
	const q = `SELECT seat_id, hall_id, row_number, seat_number, seat_type, base_price
	           FROM seat
	           WHERE hall_id = $1 AND seat_id = ANY($2) AND deleted_at IS NULL`
	rows, err := tx.QueryContext(ctx, q, hallID, int64Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make(map[uint64]model.Seat, len(ids))
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.HallID, &s.RowNumber, &s.SeatNumber, &s.SeatType, &s.BasePrice); err != nil {
			return nil, err
		}
		seats[s.ID] = s
	}
	return seats, rows.Err()
}
