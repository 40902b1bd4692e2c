package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"07:00", 420, false},
		{"23:59", 1439, false},
		{"7:05", 425, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"", 0, true},
		{"-1:30", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestLoadZone(t *testing.T) {
	loc, err := LoadZone("Asia/Ho_Chi_Minh")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Ho_Chi_Minh", loc.String())

	for _, bad := range []string{"", "Local", "local", "Nowhere/City"} {
		_, err := LoadZone(bad)
		assert.Error(t, err, "zone %q", bad)
	}
}

func TestMinuteOfDayAndFormatting(t *testing.T) {
	loc, err := LoadZone("Asia/Ho_Chi_Minh")
	require.NoError(t, err)

	ts := time.Date(2025, time.March, 10, 6, 45, 30, 0, loc)
	assert.Equal(t, 405, MinuteOfDay(ts))
	assert.Equal(t, "2025-03-10", LocalDate(ts))
	assert.Equal(t, "06:45", ClockString(ts))
}
