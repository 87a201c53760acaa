package model

import "time"

// CinemaHall is a physical auditorium.  Halls own their seats and are
// referenced by showtimes.  The hall number is unique among
// non-deleted halls.
type CinemaHall struct {
	ID         uint64     `json:"hallId"`     // cinema_hall.hall_id
	HallNumber int        `json:"hallNumber"` // cinema_hall.hall_number
	Capacity   int        `json:"capacity"`   // cinema_hall.capacity
	Seats      []Seat     `json:"seats,omitempty"`
	CreatedAt  time.Time  `json:"-"` // cinema_hall.created_at
	UpdatedAt  time.Time  `json:"-"` // cinema_hall.updated_at
	DeletedAt  *time.Time `json:"-"` // cinema_hall.deleted_at (nullable)
}
