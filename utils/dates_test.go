package utils

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name   string
		from   time.Time
		months int
		anchor int
		want   time.Time
	}{
		{"leap february", date(2024, time.January, 31), 1, 31, date(2024, time.February, 29)},
		{"common february", date(2023, time.January, 31), 1, 31, date(2023, time.February, 28)},
		{"back to anchor", date(2024, time.February, 29), 1, 31, date(2024, time.March, 31)},
		{"thirty day month", date(2024, time.March, 31), 1, 31, date(2024, time.April, 30)},
		{"quarter across year", date(2024, time.November, 30), 3, 30, date(2025, time.February, 28)},
		{"year from leap day", date(2024, time.February, 29), 12, 29, date(2025, time.February, 28)},
		{"short anchor", date(2024, time.January, 15), 1, 15, date(2024, time.February, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonthsClamped(tt.from, tt.months, tt.anchor))
		})
	}
}

func TestDayHelpers(t *testing.T) {
	at := time.Date(2024, time.May, 17, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, date(2024, time.May, 17), BeginningOfDay(at))
	assert.Equal(t, date(2024, time.May, 18).Add(-time.Nanosecond), EndOfDay(at))
	assert.Equal(t, date(2024, time.May, 1), BeginningOfMonth(at))
	assert.Equal(t, date(2024, time.April, 1), QuarterStart(at))
	assert.Equal(t, date(2024, time.January, 1), QuarterStart(date(2024, time.March, 31)))

	assert.Equal(t, 35, DaysBetween(date(2024, time.February, 9), date(2024, time.March, 15)))
	assert.Equal(t, -16, DaysBetween(date(2024, time.March, 31), date(2024, time.March, 15)))

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	springForward := time.Date(2024, time.March, 10, 0, 0, 0, 0, ny)
	assert.Equal(t, 1, DaysBetween(springForward, springForward.AddDate(0, 0, 1)))
	assert.Equal(t, 30, DaysBetween(time.Date(2024, time.March, 1, 0, 0, 0, 0, ny), time.Date(2024, time.March, 31, 0, 0, 0, 0, ny)))

	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 31, DaysIn(2024, time.December))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.Local), d)

	d, err = ParseDate("2024-03-15T10:00:00Z")
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)))

	_, err = ParseDate("15/03/2024")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}
