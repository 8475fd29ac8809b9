package database

import (
	"time"
)

// SyncRun is one execution of the loader
type SyncRun struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string
	Variables  int
	Fetched    int
	Error      *string
}

// FetchJobRecord is one month requested from the remote archive
type FetchJobRecord struct {
	ID         int64
	RunID      string
	Region     string
	Variable   string
	Year       int
	Month      int
	Area       []float64
	Path       string
	Status     string
	Error      *string
	StartedAt  time.Time
	FinishedAt *time.Time
}

const (
	StatusRunning   = "RUNNING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

// statusFor maps an outcome to a stored status and error text
func statusFor(err error) (string, *string) {
	if err == nil {
		return StatusSucceeded, nil
	}
	msg := err.Error()
	return StatusFailed, &msg
}
