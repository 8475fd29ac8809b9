package coverage

import (
	"fmt"
	"time"
)

// MonthCoverage holds the expected and observed hourly record counts for
// one month
type MonthCoverage struct {
	Month    MonthKey
	Expected int
	Observed int
}

// Incomplete reports whether fewer records were observed than expected
func (m MonthCoverage) Incomplete() bool {
	return m.Observed < m.Expected
}

// Table is the coverage of every month in an analysis domain, in
// chronological order with no gaps
type Table []MonthCoverage

// NewTable builds the expected coverage for the hourly domain running from
// the first hour of start's month up to and including now. Observed counts
// start at zero.
func NewTable(start, now time.Time) (Table, error) {
	start, now = start.UTC(), now.UTC()
	if start.After(now) {
		return nil, fmt.Errorf("%w: start=%s now=%s", ErrInvalidDateRange,
			start.Format(time.RFC3339), now.Format(time.RFC3339))
	}

	first := MonthOf(start)
	last := MonthOf(now)
	domainStart := first.Start()

	// Exclusive upper bound of the hourly domain
	domainEnd := now.Truncate(time.Hour).Add(time.Hour)

	var table Table
	for k := first; !last.Before(k); k = k.Next() {
		lo := k.Start()
		if lo.Before(domainStart) {
			lo = domainStart
		}
		hi := k.Next().Start()
		if hi.After(domainEnd) {
			hi = domainEnd
		}

		expected := 0
		if hi.After(lo) {
			expected = int(hi.Sub(lo) / time.Hour)
		}
		table = append(table, MonthCoverage{Month: k, Expected: expected})
	}

	return table, nil
}

// Observe counts timestamps into the months of the table. Timestamps that
// fall outside the domain are ignored. When dedupe is false, repeated
// timestamps are counted once per occurrence.
func (t Table) Observe(timestamps []time.Time, dedupe bool) {
	index := make(map[MonthKey]int, len(t))
	for i, m := range t {
		index[m.Month] = i
	}

	seen := make(map[int64]struct{})
	for _, ts := range timestamps {
		i, ok := index[MonthOf(ts)]
		if !ok {
			continue
		}
		if dedupe {
			key := ts.Unix()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		t[i].Observed++
	}
}

// Incomplete returns the months with fewer observed than expected records
func (t Table) Incomplete() []MonthKey {
	var months []MonthKey
	for _, m := range t {
		if m.Incomplete() {
			months = append(months, m.Month)
		}
	}
	return months
}

// ExpectedHours returns the total number of hours in the domain
func (t Table) ExpectedHours() int {
	total := 0
	for _, m := range t {
		total += m.Expected
	}
	return total
}
