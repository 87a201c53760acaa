package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/moviehall/cinema-booking/internal/model"
)

// User repository errors.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailConflict = errors.New("email already registered")
)

// UserRepo manages account persistence.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo constructs a UserRepo with the given DB handle.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `user_id, first_name, last_name, email, password, role, created_at, updated_at`

func scanUser(row *sql.Row, u *model.User) error {
	return row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
}

// Create inserts a new account and populates the generated ID.
// Duplicate emails surface as ErrEmailConflict.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `INSERT INTO users (first_name, last_name, email, password, role)
	           VALUES ($1, $2, $3, $4, $5)
	           RETURNING user_id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, q, u.FirstName, u.LastName, u.Email, u.Password, u.Role).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return ErrEmailConflict
		}
		return err
	}
	return nil
}

// GetByEmail returns a non-deleted account by email, or
// ErrUserNotFound.  Used by login.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND deleted_at IS NULL`
	var u model.User
	if err := scanUser(r.db.QueryRowContext(ctx, q, email), &u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID returns a non-deleted account by ID, or ErrUserNotFound.
func (r *UserRepo) GetByID(ctx context.Context, userID uint64) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1 AND deleted_at IS NULL`
	var u model.User
	if err := scanUser(r.db.QueryRowContext(ctx, q, userID), &u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UserUpdate carries the optional profile fields of an update request.
// Nil pointers keep the stored values.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Password  *string // already hashed by the caller
}

// Update applies a partial profile update under a row lock.
func (r *UserRepo) Update(ctx context.Context, userID uint64, upd UserUpdate) (*model.User, error) {
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

	q := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1 AND deleted_at IS NULL FOR UPDATE`
	var u model.User
	err = tx.QueryRowContext(ctx, q, userID).Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Password != nil {
		u.Password = *upd.Password
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE users SET first_name = $1, last_name = $2, password = $3, updated_at = now() WHERE user_id = $4`,
		u.FirstName, u.LastName, u.Password, u.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &u, nil
}

// Delete soft-deletes an account.
func (r *UserRepo) Delete(ctx context.Context, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET deleted_at = now() WHERE user_id = $1 AND deleted_at IS NULL`, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
