package planner

import (
	"fmt"
	"time"

	"github.com/smukkama/era5-sync/internal/archive"
	"github.com/smukkama/era5-sync/internal/coverage"
	"github.com/smukkama/era5-sync/pkg/config"
)

// FetchJob is one remote request for one variable, one month and one
// region's area
type FetchJob struct {
	Region   string
	Variable string
	Year     int
	Month    int
	Area     [4]float64
	Path     string
}

// Key returns the month the job fetches
func (j FetchJob) Key() coverage.MonthKey {
	return coverage.MonthKey{Year: j.Year, Month: time.Month(j.Month)}
}

func (j FetchJob) String() string {
	return fmt.Sprintf("%s/%s %d-%02d", j.Region, j.Variable, j.Year, j.Month)
}

func newJob(region config.Region, variable string, month coverage.MonthKey) FetchJob {
	dir := archive.RegionDir(region.Path, region.Name)
	return FetchJob{
		Region:   region.Name,
		Variable: variable,
		Year:     month.Year,
		Month:    int(month.Month),
		Area:     region.Area,
		Path:     archive.DestinationPath(dir, variable, month.Year, int(month.Month)),
	}
}
