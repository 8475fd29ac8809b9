package planner

import "fmt"

// FetchError reports a failed fetch. It halts the run.
type FetchError struct {
	Job FetchJob
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Job, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
