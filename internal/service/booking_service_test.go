package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeIDs(t *testing.T) {
	assert.Equal(t, []uint64{3, 1, 2}, dedupeIDs([]uint64{3, 1, 3, 2, 1}))
	assert.Equal(t, []uint64{7}, dedupeIDs([]uint64{7, 7, 7}))
	assert.Empty(t, dedupeIDs(nil))
}

func TestSeatsAlreadyBookedError_Message(t *testing.T) {
	err := &SeatsAlreadyBookedError{SeatIDs: []uint64{4, 9}}
	assert.Equal(t, "seats already booked: [4 9]", err.Error())
}

func TestSeatsNotFoundError_Message(t *testing.T) {
	err := &SeatsNotFoundError{SeatIDs: []uint64{42}}
	assert.Equal(t, "seats not found: [42]", err.Error())
}
