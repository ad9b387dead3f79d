package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeekdayIndex(t *testing.T) {
	cases := []struct {
		day  Weekday
		want int
	}{
		{Sunday, 0},
		{Monday, 1},
		{Tuesday, 2},
		{Wednesday, 3},
		{Thursday, 4},
		{Friday, 5},
		{Saturday, 6},
	}
	for _, tc := range cases {
		idx, ok := tc.day.Index()
		assert.True(t, ok, "day %s", tc.day)
		assert.Equal(t, tc.want, idx, "day %s", tc.day)
	}
}

func TestWeekdayIndex_Unknown(t *testing.T) {
	_, ok := Weekday("Someday").Index()
	assert.False(t, ok)
}

func TestParseWeekday(t *testing.T) {
	d, ok := ParseWeekday("Wednesday")
	assert.True(t, ok)
	assert.Equal(t, Wednesday, d)

	// Only full capitalized names are accepted.
	_, ok = ParseWeekday("wednesday")
	assert.False(t, ok)
	_, ok = ParseWeekday("Wed")
	assert.False(t, ok)
}
