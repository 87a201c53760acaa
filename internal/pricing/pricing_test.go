package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviehall/cinema-booking/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestFinalPrice_Deterministic(t *testing.T) {
	got := FinalPrice(dec("100.00"), dec("1.20"))
	assert.True(t, got.Equal(dec("120.00")), "got %s", got)
	assert.Equal(t, "120.00", got.StringFixed(2))
}

func TestFinalPrice_RoundsHalfUp(t *testing.T) {
	// 33.33 * 1.15 = 38.3295 -> 38.33
	assert.Equal(t, "38.33", FinalPrice(dec("33.33"), dec("1.15")).StringFixed(2))
	// 10.05 * 1.25 = 12.5625 -> 12.56
	assert.Equal(t, "12.56", FinalPrice(dec("10.05"), dec("1.25")).StringFixed(2))
	// exact half rounds up: 1.25 * 1.10 = 1.375 -> 1.38
	assert.Equal(t, "1.38", FinalPrice(dec("1.25"), dec("1.10")).StringFixed(2))
}

func TestFinalPrice_IdentityMultiplier(t *testing.T) {
	assert.Equal(t, "100.00", FinalPrice(dec("100"), dec("1.00")).StringFixed(2))
}

func TestWindowContains_HalfOpen(t *testing.T) {
	start, end := "10:00:00", "22:00:00"

	assert.True(t, WindowContains(start, end, "10:00:00"), "start is inclusive")
	assert.True(t, WindowContains(start, end, "18:00:00"))
	assert.True(t, WindowContains(start, end, "21:59:59"))
	assert.False(t, WindowContains(start, end, "22:00:00"), "end is exclusive")
	assert.False(t, WindowContains(start, end, "09:59:59"))
}

func TestResolveTariff(t *testing.T) {
	tariffs := []model.Tariff{
		{ID: 1, Name: "Morning", StartTime: "08:00:00", EndTime: "12:00:00", PriceMultiplier: dec("0.80")},
		{ID: 2, Name: "Day", StartTime: "12:00:00", EndTime: "18:00:00", PriceMultiplier: dec("1.00")},
		{ID: 3, Name: "Evening", StartTime: "18:00:00", EndTime: "23:00:00", PriceMultiplier: dec("1.20")},
	}

	got, err := ResolveTariff(tariffs, "10:30:00")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.ID)

	// boundary between two windows belongs to the later one
	got, err = ResolveTariff(tariffs, "12:00:00")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.ID)

	_, err = ResolveTariff(tariffs, "23:30:00")
	assert.ErrorIs(t, err, ErrNoTariff)

	_, err = ResolveTariff(nil, "12:00:00")
	assert.ErrorIs(t, err, ErrNoTariff)
}

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("18:00:00")
	require.NoError(t, err)
	assert.Equal(t, "18:00:00", got)

	_, err = ParseTimeOfDay("25:00:00")
	assert.Error(t, err)

	_, err = ParseTimeOfDay("18:00")
	assert.Error(t, err)
}

func TestClockFrom(t *testing.T) {
	ts := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, "18:00:00", ClockFrom(ts))
}
