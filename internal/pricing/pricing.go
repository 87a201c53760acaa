// Package pricing implements the tariff resolution and price
// computation rules.  A tariff covers the half-open time-of-day window
// [start, end) and scales a seat's base price by its multiplier.  All
// money values are decimals with two fractional digits.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moviehall/cinema-booking/internal/model"
)

// TimeLayout is the wire and column format for time-of-day values.
const TimeLayout = "15:04:05"

// ErrNoTariff is returned when no configured tariff window covers a
// given time of day.  Booking and showtime scheduling both treat this
// as a fatal precondition.
var ErrNoTariff = errors.New("no applicable tariff found for the given show time")

// ParseTimeOfDay validates a "15:04:05" string and returns it
// normalized.  Seconds are required; the value must be a valid wall
// clock time.
func ParseTimeOfDay(s string) (string, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Format(TimeLayout), nil
}

// ClockFrom extracts the time-of-day string from a full timestamp.
func ClockFrom(t time.Time) string {
	return t.Format(TimeLayout)
}

// WindowContains reports whether the half-open window [start, end)
// contains the given clock value.  All three arguments use TimeLayout;
// lexicographic comparison is exact for fixed-width "HH:MM:SS".
func WindowContains(start, end, clock string) bool {
	return start <= clock && clock < end
}

// ResolveTariff returns the first tariff whose window contains clock.
// The configuration is trusted to keep windows non-overlapping, so at
// most one tariff matches.  ErrNoTariff is returned when no window
// covers the instant.
func ResolveTariff(tariffs []model.Tariff, clock string) (*model.Tariff, error) {
	for i := range tariffs {
		if WindowContains(tariffs[i].StartTime, tariffs[i].EndTime, clock) {
			return &tariffs[i], nil
		}
	}
	return nil, ErrNoTariff
}

// FinalPrice computes the price for a seat under a tariff: base price
// times the multiplier, rounded half-up to two decimal places.
func FinalPrice(basePrice, multiplier decimal.Decimal) decimal.Decimal {
	return basePrice.Mul(multiplier).Round(2)
}
