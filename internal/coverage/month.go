package coverage

import (
	"fmt"
	"time"
)

// MonthKey identifies one calendar month. It is the unit of completeness
// and of fetch granularity.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t, evaluated in UTC
func MonthOf(t time.Time) MonthKey {
	t = t.UTC()
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// String renders the key as "YYYY-MM"
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Start returns the first instant of the month in UTC
func (k MonthKey) Start() time.Time {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following month
func (k MonthKey) Next() MonthKey {
	return MonthOf(k.Start().AddDate(0, 1, 0))
}

// Before reports whether k is chronologically earlier than other
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// Days returns the number of days in the month
func (k MonthKey) Days() int {
	return k.Next().Start().AddDate(0, 0, -1).Day()
}
