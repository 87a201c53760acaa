// Package service implements the transactional business logic on top
// of the repository layer: the seat booking engine, cancellations and
// the showtime lifecycle guards.
package service

import (
	"errors"
	"fmt"

	"github.com/moviehall/cinema-booking/internal/repository"
)

// Sentinel errors surfaced to handlers.  Repository not-found
// sentinels are re-exported so handlers depend on one package.
var (
	ErrShowtimeNotFound = repository.ErrShowtimeNotFound
	ErrBookingNotFound  = repository.ErrBookingNotFound

	// ErrNoSeatsRequested rejects booking requests with an empty or
	// all-duplicate seat list.
	ErrNoSeatsRequested = errors.New("no seats requested")

	// ErrNoActiveTariff means no tariff window covers the relevant
	// time of day, so no price can be computed.
	ErrNoActiveTariff = errors.New("no active tariff covers this time")

	// ErrShowtimeInPast rejects creating or moving a showtime to a
	// date and time that already passed.
	ErrShowtimeInPast = errors.New("showtime is in the past")

	// ErrShowtimeHasBookings blocks deleting a showtime, or changing
	// its time, while active seat bookings exist.
	ErrShowtimeHasBookings = errors.New("showtime has active bookings")
)

// SeatsNotFoundError reports requested seats that do not exist in the
// showtime's hall or are soft-deleted.  The whole booking is rejected.
type SeatsNotFoundError struct {
	SeatIDs []uint64
}

func (e *SeatsNotFoundError) Error() string {
	return fmt.Sprintf("seats not found: %v", e.SeatIDs)
}

// SeatsAlreadyBookedError reports requested seats that already have an
// active booking for the showtime.
type SeatsAlreadyBookedError struct {
	SeatIDs []uint64
}

func (e *SeatsAlreadyBookedError) Error() string {
	return fmt.Sprintf("seats already booked: %v", e.SeatIDs)
}
