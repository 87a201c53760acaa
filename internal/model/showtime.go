package model

import "time"

// Showtime schedules a movie in a hall at a (date, time) slot.  The
// tuple (hall, date, time) is unique.  Every showtime references the
// tariff that covered its show_time when it was created or last
// rescheduled; that tariff drives the prices displayed on the hall
// plan.  A showtime cannot be deleted, nor have its time changed,
// while it has active seat bookings.
//
// ShowDate is handled as "2006-01-02" and ShowTime as "15:04:05",
// matching the DATE/TIME column formats and the wire format.
type Showtime struct {
	ID        uint64     `json:"showtimeId"` // showtime.showtime_id
	HallID    uint64     `json:"hallId"`     // showtime.hall_id
	MovieID   uint64     `json:"movieId"`    // showtime.movie_id
	ShowDate  string     `json:"showDate"`   // showtime.show_date ("2006-01-02")
	ShowTime  string     `json:"showTime"`   // showtime.show_time ("15:04:05")
	TariffID  uint64     `json:"tariffId"`   // showtime.tariff_id
	CreatedAt time.Time  `json:"-"`          // showtime.created_at
	UpdatedAt time.Time  `json:"-"`          // showtime.updated_at
	DeletedAt *time.Time `json:"-"`          // showtime.deleted_at (nullable)
}
