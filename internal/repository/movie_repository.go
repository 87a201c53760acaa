package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/moviehall/cinema-booking/internal/model"
)

// Movie repository sentinels.
var (
	ErrMovieNotFound      = errors.New("movie not found")
	ErrMovieHasShowtimes  = errors.New("movie has scheduled showtimes")
	ErrSomeGenresNotFound = errors.New("some genres not found")
)

// MovieRepo manages persistence for movies and their genre links.
type MovieRepo struct {
	db        *sql.DB
	genreRepo *GenreRepo
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db, genreRepo: NewGenreRepo(db)}
}

// List returns all non-deleted movies without genre links, together
// with the total count for pagination.
func (r *MovieRepo) List(ctx context.Context, limit, offset int) ([]model.Movie, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM movie WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}
	const q = `SELECT movie_id, title, age_limit, duration_min, release_year, description
	           FROM movie WHERE deleted_at IS NULL
	           ORDER BY movie_id
	           LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	movies := make([]model.Movie, 0)
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.AgeLimit, &m.DurationMin, &m.ReleaseYear, &m.Description); err != nil {
			return nil, 0, err
		}
		movies = append(movies, m)
	}
	return movies, total, rows.Err()
}

// GetDetails returns a movie with its non-deleted genres, or
// ErrMovieNotFound when the movie is absent or soft-deleted.
func (r *MovieRepo) GetDetails(ctx context.Context, movieID uint64) (*model.Movie, error) {
	const q = `SELECT movie_id, title, age_limit, duration_min, release_year, description
	           FROM movie WHERE movie_id = $1 AND deleted_at IS NULL`
	var m model.Movie
	err := r.db.QueryRowContext(ctx, q, movieID).Scan(
		&m.ID, &m.Title, &m.AgeLimit, &m.DurationMin, &m.ReleaseYear, &m.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	const gq = `SELECT g.genre_id, g.name
	            FROM movie_genre mg
	            JOIN genre g ON g.genre_id = mg.genre_id AND g.deleted_at IS NULL
	            WHERE mg.movie_id = $1
	            ORDER BY g.name`
	rows, err := r.db.QueryContext(ctx, gq, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	m.Genres = make([]model.Genre, 0)
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		m.Genres = append(m.Genres, g)
	}
	return &m, rows.Err()
}

// Create inserts a movie and its genre links in one transaction.  All
// referenced genres must exist; otherwise ErrSomeGenresNotFound aborts
// the whole insert.  A duplicate title surfaces as ErrConflict.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie, genreIDs []uint64) error {
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

	const q = `INSERT INTO movie (title, age_limit, duration_min, release_year, description)
	           VALUES ($1, $2, $3, $4, COALESCE(NULLIF($5, ''), 'No description'))
	           RETURNING movie_id, description, created_at, updated_at`
	err = tx.QueryRowContext(ctx, q, m.Title, m.AgeLimit, m.DurationMin, m.ReleaseYear, m.Description).
		Scan(&m.ID, &m.Description, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return translateUnique(err)
	}

	if err := r.linkGenresTx(ctx, tx, m, genreIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Update modifies a movie and optionally replaces its genre links.
// The movie row is locked for the duration of the transaction.  Nil
// pointer fields keep their current value; a non-nil genreIDs slice
// replaces the link set.
func (r *MovieRepo) Update(ctx context.Context, movieID uint64, upd MovieUpdate) (*model.Movie, error) {
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

	var m model.Movie
	const sel = `SELECT movie_id, title, age_limit, duration_min, release_year, description
	             FROM movie WHERE movie_id = $1 AND deleted_at IS NULL FOR UPDATE`
	err = tx.QueryRowContext(ctx, sel, movieID).Scan(
		&m.ID, &m.Title, &m.AgeLimit, &m.DurationMin, &m.ReleaseYear, &m.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}

	if upd.Title != nil {
		m.Title = *upd.Title
	}
	if upd.AgeLimit != nil {
		m.AgeLimit = *upd.AgeLimit
	}
	if upd.DurationMin != nil {
		m.DurationMin = *upd.DurationMin
	}
	if upd.ReleaseYear != nil {
		m.ReleaseYear = *upd.ReleaseYear
	}
	if upd.Description != nil {
		m.Description = *upd.Description
	}

	const uq = `UPDATE movie SET title = $1, age_limit = $2, duration_min = $3,
	                             release_year = $4, description = $5, updated_at = now()
	            WHERE movie_id = $6`
	if _, err := tx.ExecContext(ctx, uq, m.Title, m.AgeLimit, m.DurationMin, m.ReleaseYear, m.Description, movieID); err != nil {
		return nil, translateUnique(err)
	}

	if upd.GenreIDs != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM movie_genre WHERE movie_id = $1`, movieID); err != nil {
			return nil, err
		}
		if err := r.linkGenresTx(ctx, tx, &m, upd.GenreIDs); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &m, nil
}

// MovieUpdate carries optional field changes for Update.  A nil
// pointer leaves the field untouched; a nil GenreIDs slice keeps the
// current genre links.
type MovieUpdate struct {
	Title       *string
	AgeLimit    *int
	DurationMin *int
	ReleaseYear *int
	Description *string
	GenreIDs    []uint64
}

// Delete soft-deletes a movie after verifying, under a row lock, that
// no non-deleted showtimes reference it.
func (r *MovieRepo) Delete(ctx context.Context, movieID uint64) error {
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
	const sel = `SELECT movie_id FROM movie WHERE movie_id = $1 AND deleted_at IS NULL FOR UPDATE`
	if err := tx.QueryRowContext(ctx, sel, movieID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMovieNotFound
		}
		return err
	}

	var showtimes int
	const cnt = `SELECT COUNT(*) FROM showtime WHERE movie_id = $1 AND deleted_at IS NULL`
	if err := tx.QueryRowContext(ctx, cnt, movieID).Scan(&showtimes); err != nil {
		return err
	}
	if showtimes > 0 {
		return ErrMovieHasShowtimes
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE movie SET deleted_at = now() WHERE movie_id = $1`, movieID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (r *MovieRepo) linkGenresTx(ctx context.Context, tx *sql.Tx, m *model.Movie, genreIDs []uint64) error {
	if len(genreIDs) == 0 {
		return nil
	}
	n, err := r.genreRepo.CountExistingTx(ctx, tx, genreIDs)
	if err != nil {
		return err
	}
	if n != len(genreIDs) {
		return ErrSomeGenresNotFound
	}
	const q = `INSERT INTO movie_genre (movie_id, genre_id)
	           SELECT $1, g FROM unnest($2::int[]) AS g
	           ON CONFLICT DO NOTHING`
	_, err = tx.ExecContext(ctx, q, m.ID, int64Array(genreIDs))
	return err
}
