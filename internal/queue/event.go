// Package queue defines the message payloads exchanged over RabbitMQ
// and the publisher/consumer working with them.
package queue

// Queue names used for booking lifecycle events.
const (
	BookingConfirmedQueue = "booking.confirmed"
	BookingCancelledQueue = "booking.cancelled"
)

// BookingConfirmedEvent is published after a booking transaction
// commits.  It carries enough for downstream consumers to log or
// notify without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID  uint64   `json:"booking_id"`
	UserID     uint64   `json:"user_id"`
	ShowtimeID uint64   `json:"showtime_id"`
	SeatIDs    []uint64 `json:"seat_ids"`
	TotalPrice string   `json:"total_price"`
	BookedAt   string   `json:"booked_at"`
}

// BookingCancelledEvent is published after a cancellation commits.
// SeatIDs lists the seats released back for booking.
type BookingCancelledEvent struct {
	BookingID   uint64   `json:"booking_id"`
	UserID      uint64   `json:"user_id"`
	ShowtimeID  uint64   `json:"showtime_id"`
	SeatIDs     []uint64 `json:"seat_ids"`
	CancelledAt string   `json:"cancelled_at"`
}
