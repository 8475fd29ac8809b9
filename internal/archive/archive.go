package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/smukkama/era5-sync/internal/logger"
)

// Archive reads the local file series of a region
type Archive struct {
	readAxis func(path string) (timeAxis, error)
}

// NewArchive creates an archive reader for NetCDF files
func NewArchive() *Archive {
	return &Archive{readAxis: readNetCDFTimeAxis}
}

// Timestamps returns every valid time stored in the files of variable under
// dir, in file order. found is false when no such file exists.
func (a *Archive) Timestamps(ctx context.Context, dir, variable string) ([]time.Time, bool, error) {
	files, err := Files(dir, variable)
	if err != nil {
		return nil, false, err
	}
	if len(files) == 0 {
		return nil, false, nil
	}

	log := logger.FromContext(ctx)
	var timestamps []time.Time
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, true, err
		}

		axis, err := a.readAxis(path)
		if err != nil {
			return nil, true, err
		}

		units, err := ParseTimeUnits(axis.units)
		if err != nil {
			return nil, true, fmt.Errorf("%s: %w", path, err)
		}

		times, err := units.Decode(axis.values)
		if err != nil {
			return nil, true, fmt.Errorf("%s: %w", path, err)
		}

		log.Debug().Str("file", path).Int("records", len(times)).Msg("read time axis")
		timestamps = append(timestamps, times...)
	}

	return timestamps, true, nil
}
