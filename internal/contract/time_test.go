package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.November, 3, 10, 0, 0, 0, time.UTC)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		ok       bool
	}{
		{"trailing Z", "2020-06-01T12:30:00Z", time.Date(2020, 6, 1, 12, 30, 0, 0, time.UTC), true},
		{"explicit offset", "2020-06-01T12:30:00+02:00", time.Date(2020, 6, 1, 10, 30, 0, 0, time.UTC), true},
		{"fractional seconds", "2020-06-01T12:30:00.123Z", time.Date(2020, 6, 1, 12, 30, 0, 123000000, time.UTC), true},
		{"no offset", "2020-06-01T12:30:00", time.Date(2020, 6, 1, 12, 30, 0, 0, time.UTC), true},
		{"space separated", "2020-06-01 12:30:00", time.Date(2020, 6, 1, 12, 30, 0, 0, time.UTC), true},
		{"date only", "2020-06-01", time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), true},
		{"surrounding whitespace", "  2020-06-01  ", time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "not a date", time.Time{}, false},
		{"invalid month", "2020-13-01", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.expected.Equal(got), "expected %v, got %v", tt.expected, got)
		})
	}
}

func TestParseTimestampPtr(t *testing.T) {
	assert.Nil(t, ParseTimestampPtr("bogus"))
	got := ParseTimestampPtr("2021-01-01")
	require.NotNil(t, got)
	assert.Equal(t, 2021, got.Year())
}

func TestParseRelativeTime(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		{"plural months mixed case", "3 MoNtHs AgO", fixedNow.AddDate(0, -3, 0), false},
		{"singular week", "1 Week Ago", fixedNow.AddDate(0, 0, -7), false},
		{"days upper case", "10 DAYS AGO", fixedNow.AddDate(0, 0, -10), false},
		{"years", "2 years ago", fixedNow.AddDate(-2, 0, 0), false},
		{"missing ago", "2 years", time.Time{}, true},
		{"unsupported unit", "5 fortnights ago", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRelativeTime(tt.input, fixedNow)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseWindowBound(t *testing.T) {
	start, err := ParseWindowBound("2018", fixedNow, false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), start)

	end, err := ParseWindowBound("2018", fixedNow, true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2018, 12, 31, 23, 59, 59, 0, time.UTC), end)

	abs, err := ParseWindowBound("2018-05-01T00:00:00Z", fixedNow, false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2018, 5, 1, 0, 0, 0, 0, time.UTC), abs)

	rel, err := ParseWindowBound("1 year ago", fixedNow, false)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.AddDate(-1, 0, 0), rel)

	_, err = ParseWindowBound("soon", fixedNow, false)
	assert.Error(t, err)
}
