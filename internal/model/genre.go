package model

import "time"

// Genre is a named movie category.  Genre names are unique among
// non-deleted rows.
type Genre struct {
	ID        uint64     `json:"genreId"` // genre.genre_id
	Name      string     `json:"name"`    // genre.name
	CreatedAt time.Time  `json:"-"`       // genre.created_at
	UpdatedAt time.Time  `json:"-"`       // genre.updated_at
	DeletedAt *time.Time `json:"-"`       // genre.deleted_at (nullable)
}
