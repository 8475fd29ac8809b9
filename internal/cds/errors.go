package cds

import "fmt"

// APIError is a non-success HTTP response from the data store
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
}

// JobError reports a retrieve job that ended without a result
type JobError struct {
	JobID  string
	Status string
	Detail string
}

func (e *JobError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("job %s %s: %s", e.JobID, e.Status, e.Detail)
	}
	return fmt.Sprintf("job %s %s", e.JobID, e.Status)
}
