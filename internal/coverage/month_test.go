package coverage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthKey_String(t *testing.T) {
	tests := []struct {
		name     string
		key      MonthKey
		expected string
	}{
		{"january", MonthKey{2020, time.January}, "2020-01"},
		{"december", MonthKey{2020, time.December}, "2020-12"},
		{"early year", MonthKey{999, time.March}, "0999-03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.key.String())
		})
	}
}

func TestMonthKey_NextWrapsYear(t *testing.T) {
	assert.Equal(t, MonthKey{2021, time.January}, MonthKey{2020, time.December}.Next())
	assert.Equal(t, MonthKey{2020, time.March}, MonthKey{2020, time.February}.Next())
}

func TestMonthKey_Days(t *testing.T) {
	assert.Equal(t, 31, MonthKey{2020, time.January}.Days())
	assert.Equal(t, 29, MonthKey{2020, time.February}.Days())
	assert.Equal(t, 28, MonthKey{2021, time.February}.Days())
	assert.Equal(t, 30, MonthKey{2021, time.April}.Days())
}

func TestMonthKey_Before(t *testing.T) {
	assert.True(t, MonthKey{2019, time.December}.Before(MonthKey{2020, time.January}))
	assert.True(t, MonthKey{2020, time.January}.Before(MonthKey{2020, time.February}))
	assert.False(t, MonthKey{2020, time.February}.Before(MonthKey{2020, time.February}))
	assert.False(t, MonthKey{2021, time.January}.Before(MonthKey{2020, time.December}))
}

func TestMonthOf_UsesUTC(t *testing.T) {
	tz := time.FixedZone("UTC+2", 2*60*60)
	local := time.Date(2020, time.March, 1, 1, 0, 0, 0, tz)

	assert.Equal(t, MonthKey{2020, time.February}, MonthOf(local))
}
