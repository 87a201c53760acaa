package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tariff is a time-of-day pricing rule.  A tariff applies to every
// instant within its half-open [StartTime, EndTime) window and scales a
// seat's base price by PriceMultiplier.  The configuration is trusted
// to keep windows non-overlapping; the resolver picks the single
// matching tariff for a given time of day.
//
// StartTime and EndTime are stored as TIME columns and handled as
// "15:04:05" strings throughout, matching the wire format.
type Tariff struct {
	ID              uint64          `json:"tariffId"`        // tariff.tariff_id
	Name            string          `json:"name"`            // tariff.name
	StartTime       string          `json:"startTime"`       // tariff.start_time ("15:04:05")
	EndTime         string          `json:"endTime"`         // tariff.end_time ("15:04:05")
	PriceMultiplier decimal.Decimal `json:"priceMultiplier"` // tariff.price_multiplier
	CreatedAt       time.Time       `json:"-"`               // tariff.created_at
	UpdatedAt       time.Time       `json:"-"`               // tariff.updated_at
	DeletedAt       *time.Time      `json:"-"`               // tariff.deleted_at (nullable)
}
