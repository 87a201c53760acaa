package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(t *testing.T, value string) func() time.Time {
	t.Helper()
	at, err := time.ParseInLocation("2006-01-02 15:04:05", value, time.Local)
	if err != nil {
		t.Fatalf("bad clock value %q: %v", value, err)
	}
	return func() time.Time { return at }
}

func TestValidateSchedule_FutureSlot(t *testing.T) {
	s := &ShowtimeService{now: fixedClock(t, "2026-09-01 12:00:00")}
	assert.NoError(t, s.validateSchedule("2026-09-02", "18:30:00"))
}

func TestValidateSchedule_SameDayLaterTime(t *testing.T) {
	s := &ShowtimeService{now: fixedClock(t, "2026-09-01 12:00:00")}
	assert.NoError(t, s.validateSchedule("2026-09-01", "12:00:01"))
}

func TestValidateSchedule_PastSlot(t *testing.T) {
	s := &ShowtimeService{now: fixedClock(t, "2026-09-01 12:00:00")}
	assert.ErrorIs(t, s.validateSchedule("2026-09-01", "11:59:59"), ErrShowtimeInPast)
}

func TestValidateSchedule_BadDate(t *testing.T) {
	s := &ShowtimeService{now: fixedClock(t, "2026-09-01 12:00:00")}
	assert.ErrorIs(t, s.validateSchedule("02-09-2026", "18:30:00"), ErrInvalidSchedule)
}

func TestValidateSchedule_BadTime(t *testing.T) {
	s := &ShowtimeService{now: fixedClock(t, "2026-09-01 12:00:00")}
	assert.ErrorIs(t, s.validateSchedule("2026-09-02", "6pm"), ErrInvalidSchedule)
}
