package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeekdayOf(t *testing.T) {
	tests := []struct {
		day  int
		want Weekday
		ok   bool
	}{
		{0, Monday, true},
		{4, Friday, true},
		{5, Monday, true},
		{13, Thursday, true},
		{-1, 0, false},
	}
	for _, tc := range tests {
		got, ok := WeekdayOf(tc.day)
		assert.Equal(t, tc.ok, ok, "day %d", tc.day)
		assert.Equal(t, tc.want, got, "day %d", tc.day)
	}
}

func TestWeekAvailability_On(t *testing.T) {
	w := Weekdays(Wednesday)
	assert.True(t, w.On(2))
	assert.True(t, w.On(7))
	assert.False(t, w.On(3))
	assert.False(t, w.On(-3))
	assert.False(t, EveryWeekday.On(-1))
	assert.True(t, EveryWeekday.On(1000))
}
