package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/moviehall/cinema-booking/internal/model"
	"github.com/moviehall/cinema-booking/internal/pricing"
)

// Tariff repository sentinels.
var (
	ErrTariffNotFound    = errors.New("tariff not found")
	ErrTariffHasBookings = errors.New("tariff has active bookings")
	ErrTariffWindow      = errors.New("tariff start time must be before end time")
)

// TariffRepo manages persistence for tariffs and resolves the tariff
// applicable to a time of day.  Resolution relies on the half-open
// [start_time, end_time) window; configuration is trusted to keep
// windows non-overlapping.
type TariffRepo struct {
	db *sql.DB
}

// NewTariffRepo constructs a TariffRepo with the given DB handle.
func NewTariffRepo(db *sql.DB) *TariffRepo { return &TariffRepo{db: db} }

const tariffColumns = `tariff_id, name, to_char(start_time, 'HH24:MI:SS'), to_char(end_time, 'HH24:MI:SS'), price_multiplier`

func scanTariff(row interface{ Scan(...interface{}) error }, t *model.Tariff) error {
	return row.Scan(&t.ID, &t.Name, &t.StartTime, &t.EndTime, &t.PriceMultiplier)
}

// List returns all non-deleted tariffs ordered by start time.
func (r *TariffRepo) List(ctx context.Context) ([]model.Tariff, error) {
	const q = `SELECT ` + tariffColumns + ` FROM tariff WHERE deleted_at IS NULL ORDER BY start_time`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tariffs := make([]model.Tariff, 0)
	for rows.Next() {
		var t model.Tariff
		if err := scanTariff(rows, &t); err != nil {
			return nil, err
		}
		tariffs = append(tariffs, t)
	}
	return tariffs, rows.Err()
}

// ResolveForTimeTx returns the tariff whose window contains the given
// "15:04:05" clock value, or ErrTariffNotFound when no window covers
// it.  It loads the live tariffs inside the caller's transaction and
// delegates the window rule to pricing.ResolveTariff, so resolution is
// consistent with the rest of the booking or scheduling work and there
// is a single implementation of the matching rule.
func (r *TariffRepo) ResolveForTimeTx(ctx context.Context, tx *sql.Tx, clock string) (*model.Tariff, error) {
	const q = `SELECT ` + tariffColumns + ` FROM tariff WHERE deleted_at IS NULL ORDER BY start_time`
	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tariffs []model.Tariff
	for rows.Next() {
		var t model.Tariff
		if err := scanTariff(rows, &t); err != nil {
			return nil, err
		}
		tariffs = append(tariffs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	t, err := pricing.ResolveTariff(tariffs, clock)
	if err != nil {
		return nil, ErrTariffNotFound
	}
	return t, nil
}

// Create inserts a tariff.  Duplicate names surface as ErrConflict.
func (r *TariffRepo) Create(ctx context.Context, t *model.Tariff) error {
	const q = `INSERT INTO tariff (name, start_time, end_time, price_multiplier)
	           VALUES ($1, $2, $3, $4)
	           RETURNING tariff_id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, q, t.Name, t.StartTime, t.EndTime, t.PriceMultiplier).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	return translateUnique(err)
}

// TariffUpdate carries optional field changes for Update.
type TariffUpdate struct {
	Name            *string
	StartTime       *string
	EndTime         *string
	PriceMultiplier *string
}

// Update mutates a tariff under a FOR UPDATE row lock.  Returns
// ErrTariffNotFound when absent and ErrConflict on duplicate names.
func (r *TariffRepo) Update(ctx context.Context, tariffID uint64, upd TariffUpdate) (*model.Tariff, error) {
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

	const sel = `SELECT ` + tariffColumns + ` FROM tariff
	             WHERE tariff_id = $1 AND deleted_at IS NULL FOR UPDATE`
	var t model.Tariff
	if err := scanTariff(tx.QueryRowContext(ctx, sel, tariffID), &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTariffNotFound
		}
		return nil, err
	}

	if upd.Name != nil {
		t.Name = *upd.Name
	}
	if upd.StartTime != nil {
		t.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		t.EndTime = *upd.EndTime
	}
	multiplier := t.PriceMultiplier.String()
	if upd.PriceMultiplier != nil {
		multiplier = *upd.PriceMultiplier
	}
	// Matches the CHECK constraint; caught here so partial updates
	// that invert the window fail cleanly.
	if t.StartTime >= t.EndTime {
		return nil, ErrTariffWindow
	}

	const uq = `UPDATE tariff SET name = $1, start_time = $2, end_time = $3,
	                              price_multiplier = $4, updated_at = now()
	            WHERE tariff_id = $5`
	if _, err := tx.ExecContext(ctx, uq, t.Name, t.StartTime, t.EndTime, multiplier, tariffID); err != nil {
		return nil, translateUnique(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.getByID(ctx, tariffID)
}

func (r *TariffRepo) getByID(ctx context.Context, tariffID uint64) (*model.Tariff, error) {
	const q = `SELECT ` + tariffColumns + ` FROM tariff WHERE tariff_id = $1 AND deleted_at IS NULL`
	var t model.Tariff
	if err := scanTariff(r.db.QueryRowContext(ctx, q, tariffID), &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTariffNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Delete soft-deletes a tariff under a row lock, refusing with
// ErrTariffHasBookings while active seat-lines still reference it.
func (r *TariffRepo) Delete(ctx context.Context, tariffID uint64) error {
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
	const sel = `SELECT tariff_id FROM tariff WHERE tariff_id = $1 AND deleted_at IS NULL FOR UPDATE`
	if err := tx.QueryRowContext(ctx, sel, tariffID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTariffNotFound
		}
		return err
	}

	var active int
	const cnt = `SELECT COUNT(*) FROM booking_seat WHERE tariff_id = $1 AND status = 'active'`
	if err := tx.QueryRowContext(ctx, cnt, tariffID).Scan(&active); err != nil {
		return err
	}
	if active > 0 {
		return ErrTariffHasBookings
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE tariff SET deleted_at = now() WHERE tariff_id = $1`, tariffID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
