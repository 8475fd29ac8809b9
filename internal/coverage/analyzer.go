package coverage

import (
	"context"
	"time"

	"github.com/smukkama/era5-sync/internal/logger"
)

// TimestampSource reads the valid times already stored locally for a
// variable. found is false when no file for the variable exists under dir.
type TimestampSource interface {
	Timestamps(ctx context.Context, dir, variable string) (timestamps []time.Time, found bool, err error)
}

// Analyzer compares observed against expected hourly coverage per month
type Analyzer struct {
	source TimestampSource
	dedupe bool
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithDedupe counts each distinct timestamp once. By default repeated
// timestamps within a month are all counted.
func WithDedupe() Option {
	return func(a *Analyzer) {
		a.dedupe = true
	}
}

// NewAnalyzer creates a new analyzer reading local timestamps from source
func NewAnalyzer(source TimestampSource, opts ...Option) *Analyzer {
	a := &Analyzer{source: source}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Coverage returns the per-month coverage table for variable under
// regionPath, from start's month through now's month
func (a *Analyzer) Coverage(ctx context.Context, variable, regionPath string, start, now time.Time) (Table, error) {
	table, err := NewTable(start, now)
	if err != nil {
		return nil, err
	}

	timestamps, found, err := a.source.Timestamps(ctx, regionPath, variable)
	if err != nil {
		return nil, &DataReadError{Variable: variable, Path: regionPath, Err: err}
	}

	log := logger.FromContext(ctx)
	if !found {
		log.Debug().
			Str("path", regionPath).
			Msg("no local files, every month is incomplete")
		return table, nil
	}

	table.Observe(timestamps, a.dedupe)
	log.Debug().
		Str("path", regionPath).
		Int("timestamps", len(timestamps)).
		Int("months", len(table)).
		Msg("observed local coverage")

	return table, nil
}

// Analyze returns, in chronological order, the months whose local coverage
// is incomplete
func (a *Analyzer) Analyze(ctx context.Context, variable, regionPath string, start, now time.Time) ([]MonthKey, error) {
	table, err := a.Coverage(ctx, variable, regionPath, start, now)
	if err != nil {
		return nil, err
	}
	return table.Incomplete(), nil
}
