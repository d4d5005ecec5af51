package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func TestIsMaintainer(t *testing.T) {
	tl := New(map[string][]Period{
		"p":    {{Start: day("2020-01-01"), End: dayPtr("2021-01-01")}},
		"open": {{Start: day("2019-03-01")}},
		"two": {
			{Start: day("2015-01-01"), End: dayPtr("2016-01-01")},
			{Start: day("2018-01-01"), End: dayPtr("2019-01-01")},
		},
	})

	tests := []struct {
		name     string
		id       string
		at       *time.Time
		expected bool
	}{
		{"inside interval", "p", dayPtr("2020-06-01"), true},
		{"after interval", "p", dayPtr("2021-06-01"), false},
		{"ever a maintainer", "p", nil, true},
		{"inclusive start", "p", dayPtr("2020-01-01"), true},
		{"inclusive end", "p", dayPtr("2021-01-01"), true},
		{"before start", "p", dayPtr("2019-12-31"), false},
		{"open end far future", "open", dayPtr("2099-01-01"), true},
		{"gap between periods", "two", dayPtr("2017-01-01"), false},
		{"second period", "two", dayPtr("2018-06-01"), true},
		{"unknown at time", "nobody", dayPtr("2020-06-01"), false},
		{"unknown ever", "nobody", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tl.IsMaintainer(tt.id, tt.at))
		})
	}
}

func TestNewMergesOverlappingPeriods(t *testing.T) {
	tl := New(map[string][]Period{
		"a": {
			{Start: day("2018-01-01"), End: dayPtr("2019-06-01")},
			{Start: day("2016-01-01"), End: dayPtr("2018-03-01")},
			{Start: day("2019-06-01")},
		},
		"inverted": {{Start: day("2020-01-01"), End: dayPtr("2019-01-01")}},
	})

	periods := tl.Periods("a")
	require.Len(t, periods, 1)
	assert.Equal(t, day("2016-01-01"), periods[0].Start)
	assert.Nil(t, periods[0].End)

	assert.Empty(t, tl.Periods("inverted"))
	assert.Equal(t, []string{"a"}, tl.Maintainers())
}

func TestNilTimeline(t *testing.T) {
	var tl *Timeline
	assert.False(t, tl.IsMaintainer("x", nil))
	assert.Nil(t, tl.Maintainers())

	empty := New(nil)
	assert.False(t, empty.IsMaintainer("x", nil))
	assert.Empty(t, empty.Maintainers())
}
