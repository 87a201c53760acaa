package model

import "time"

// Movie describes a film that can be scheduled in showtimes.  Movies
// carry an age limit, a running time and may be linked to any number
// of genres through the movie_genre join table.  Titles are unique
// among non-deleted rows.
type Movie struct {
	ID          uint64     `json:"movieId"`     // movie.movie_id
	Title       string     `json:"title"`       // movie.title
	AgeLimit    int        `json:"ageLimit"`    // movie.age_limit
	DurationMin int        `json:"durationMin"` // movie.duration_min
	ReleaseYear int        `json:"releaseYear"` // movie.release_year
	Description string     `json:"description"` // movie.description
	Genres      []Genre    `json:"genres,omitempty"`
	CreatedAt   time.Time  `json:"-"` // movie.created_at
	UpdatedAt   time.Time  `json:"-"` // movie.updated_at
	DeletedAt   *time.Time `json:"-"` // movie.deleted_at (nullable)
}
