package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking statuses stored in booking.status.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Seat-line statuses stored in booking_seat.status.
const (
	BookingSeatStatusActive    = "active"
	BookingSeatStatusCancelled = "cancelled"
)

// Booking records a user's reservation for one showtime.  It
// aggregates one or more seat-lines booked in a single transaction and
// carries the total of their final prices.  Bookings are never
// soft-deleted; cancellation flips the status and releases the seats.
type Booking struct {
	ID          uint64          `json:"bookingId"`  // booking.booking_id
	UserID      uint64          `json:"userId"`     // booking.user_id
	ShowtimeID  uint64          `json:"showtimeId"` // booking.showtime_id
	TotalPrice  decimal.Decimal `json:"totalPrice"` // booking.total_price
	Status      string          `json:"status"`     // booking.status
	BookingDate time.Time       `json:"bookingDate"`
	UpdatedAt   time.Time       `json:"-"`
	Seats       []BookingSeat   `json:"seats,omitempty"`
}

// BookingSeat is one seat's reservation record within a booking: the
// atomic unit of seat occupancy.  Each row names the tariff used and
// the final price computed at booking time.  Rows are append-only per
// (showtime, seat) pair, and at most one row with status=active may
// exist for a pair at any time; the partial unique index
// partial_unique_showtime_seat enforces this.
type BookingSeat struct {
	ID         uint64          `json:"bookingSeatId"` // booking_seat.booking_seat_id
	ShowtimeID uint64          `json:"showtimeId"`    // booking_seat.showtime_id
	SeatID     uint64          `json:"seatId"`        // booking_seat.seat_id
	BookingID  uint64          `json:"bookingId"`     // booking_seat.booking_id
	TariffID   uint64          `json:"tariffId"`      // booking_seat.tariff_id
	FinalPrice decimal.Decimal `json:"finalPrice"`    // booking_seat.final_price
	Status     string          `json:"status"`        // booking_seat.status
	CreatedAt  time.Time       `json:"-"`             // booking_seat.created_at
	UpdatedAt  time.Time       `json:"-"`             // booking_seat.updated_at
	DeletedAt  *time.Time      `json:"-"`             // booking_seat.deleted_at (nullable)
}
