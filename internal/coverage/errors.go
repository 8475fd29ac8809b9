package coverage

import (
	"errors"
	"fmt"
)

// ErrInvalidDateRange occurs when the start date is after the analysis time
var ErrInvalidDateRange = errors.New("invalid date range: start is after now")

// DataReadError wraps a failure to read timestamps from existing local files
type DataReadError struct {
	Variable string
	Path     string
	Err      error
}

func (e *DataReadError) Error() string {
	return fmt.Sprintf("failed to read %s data under %s: %v", e.Variable, e.Path, e.Err)
}

func (e *DataReadError) Unwrap() error {
	return e.Err
}
