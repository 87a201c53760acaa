package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSeatIDs(t *testing.T) {
	assert.Equal(t, "[]", formatSeatIDs(nil))
	assert.Equal(t, "[7]", formatSeatIDs([]uint64{7}))
	assert.Equal(t, "[1,2,3]", formatSeatIDs([]uint64{1, 2, 3}))
}
