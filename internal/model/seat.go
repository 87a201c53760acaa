package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Seat types supported by the seat.seat_type column.
const (
	SeatTypeStandard = "standard"
	SeatTypeVIP      = "vip"
)

// Seat describes a physical seat in a hall.  Seats are uniquely
// identified by (hall, row, seat number) among non-deleted rows and
// carry the base price that tariffs multiply into a final price.
type Seat struct {
	ID         uint64          `json:"seatId"`     // seat.seat_id
	HallID     uint64          `json:"hallId"`     // seat.hall_id
	RowNumber  int             `json:"rowNumber"`  // seat.row_number
	SeatNumber int             `json:"seatNumber"` // seat.seat_number
	SeatType   string          `json:"seatType"`   // seat.seat_type
	BasePrice  decimal.Decimal `json:"basePrice"`  // seat.base_price
	CreatedAt  time.Time       `json:"-"`          // seat.created_at
	UpdatedAt  time.Time       `json:"-"`          // seat.updated_at
	DeletedAt  *time.Time      `json:"-"`          // seat.deleted_at (nullable)
}
