package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/moviehall/cinema-booking/internal/model"
)

// ErrGenreNotFound indicates that a genre was not located in the DB.
var ErrGenreNotFound = errors.New("genre not found")

// GenreRepo manages persistence for genres.
type GenreRepo struct {
	db *sql.DB
}

// NewGenreRepo constructs a GenreRepo with the given DB handle.
func NewGenreRepo(db *sql.DB) *GenreRepo { return &GenreRepo{db: db} }

// List returns all non-deleted genres ordered by name.
func (r *GenreRepo) List(ctx context.Context) ([]model.Genre, error) {
	const q = `SELECT genre_id, name FROM genre WHERE deleted_at IS NULL ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	genres := make([]model.Genre, 0)
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// Create inserts a new genre and populates the generated ID.  A
// duplicate name among non-deleted rows surfaces as ErrConflict.
func (r *GenreRepo) Create(ctx context.Context, g *model.Genre) error {
	const q = `INSERT INTO genre (name) VALUES ($1) RETURNING genre_id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, q, g.Name).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	return translateUnique(err)
}

// Update renames a genre inside a transaction, taking a write lock on
// the row to serialize concurrent mutators.  It returns
// ErrGenreNotFound when the genre is absent or soft-deleted and
// ErrConflict on a duplicate name.
func (r *GenreRepo) Update(ctx context.Context, genreID uint64, name string) (*model.Genre, error) {
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

	var g model.Genre
	const sel = `SELECT genre_id, name FROM genre WHERE genre_id = $1 AND deleted_at IS NULL FOR UPDATE`
	if err := tx.QueryRowContext(ctx, sel, genreID).Scan(&g.ID, &g.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGenreNotFound
		}
		return nil, err
	}

	const upd = `UPDATE genre SET name = $1, updated_at = now() WHERE genre_id = $2`
	if _, err := tx.ExecContext(ctx, upd, name, genreID); err != nil {
		return nil, translateUnique(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	g.Name = name
	return &g, nil
}

// Delete soft-deletes a genre.  The movie_genre links are left in
// place; joins filter on genre.deleted_at.
func (r *GenreRepo) Delete(ctx context.Context, genreID uint64) error {
	const q = `UPDATE genre SET deleted_at = now() WHERE genre_id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, genreID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrGenreNotFound
	}
	return nil
}

// CountExistingTx returns how many of the given genre IDs exist and are
// not soft-deleted.  Used when linking genres to movies.
func (r *GenreRepo) CountExistingTx(ctx context.Context, tx *sql.Tx, ids []uint64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const q = `SELECT COUNT(*) FROM genre WHERE genre_id = ANY($1) AND deleted_at IS NULL`
	var n int
	err := tx.QueryRowContext(ctx, q, int64Array(ids)).Scan(&n)
	return n, err
}
