package cds

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/smukkama/era5-sync/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	statusAccepted   = "accepted"
	statusRunning    = "running"
	statusSuccessful = "successful"
	statusFailed     = "failed"
	statusRejected   = "rejected"
	statusDismissed  = "dismissed"
)

// Config holds the data store endpoint and credentials
type Config struct {
	URL            string
	Key            string
	PollInterval   time.Duration
	RequestTimeout time.Duration
}

// Client talks to the Climate Data Store retrieve API. One client is
// created from credentials at startup and passed to whoever fetches.
type Client struct {
	baseURL        string
	key            string
	pollInterval   time.Duration
	requestTimeout time.Duration
	http           *http.Client
}

// NewClient creates a new data store client
func NewClient(cfg Config) *Client {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = time.Minute
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.URL, "/"),
		key:            cfg.Key,
		pollInterval:   pollInterval,
		requestTimeout: requestTimeout,
		// No client timeout: downloads are bounded by the context
		http: &http.Client{},
	}
}

type jobStatus struct {
	JobID  string `json:"jobID"`
	Status string `json:"status"`
}

type jobResults struct {
	Asset struct {
		Value struct {
			Href string `json:"href"`
			Size int64  `json:"file:size"`
		} `json:"value"`
	} `json:"asset"`
}

type problem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Retrieve submits a request for dataset, waits for the job to finish and
// downloads the result to dest. It blocks until the file is written or the
// job fails.
func (c *Client) Retrieve(ctx context.Context, dataset string, req Request, dest string) error {
	log := logger.FromContext(ctx)

	job, err := c.submit(ctx, dataset, req)
	if err != nil {
		return fmt.Errorf("failed to submit request: %w", err)
	}
	log.Info().
		Str("job_id", job.JobID).
		Str("dataset", dataset).
		Str("variable", req.Variable).
		Int("year", req.Year).
		Int("month", req.Month).
		Msg("request submitted")

	if err := c.wait(ctx, job); err != nil {
		return err
	}

	results, err := c.results(ctx, job.JobID)
	if err != nil {
		return fmt.Errorf("failed to get results: %w", err)
	}

	n, err := c.download(ctx, results.Asset.Value.Href, dest)
	if err != nil {
		return fmt.Errorf("failed to download result: %w", err)
	}
	if size := results.Asset.Value.Size; size > 0 && n != size {
		return fmt.Errorf("short download of %s: got %d of %d bytes", dest, n, size)
	}

	log.Info().Str("job_id", job.JobID).Str("file", dest).Int64("bytes", n).Msg("result downloaded")
	return nil
}

func (c *Client) submit(ctx context.Context, dataset string, req Request) (*jobStatus, error) {
	body, err := json.Marshal(map[string]interface{}{"inputs": req.inputs()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/retrieve/v1/processes/%s/execution", c.baseURL, url.PathEscape(dataset))
	var job jobStatus
	if err := c.call(ctx, http.MethodPost, endpoint, body, &job); err != nil {
		return nil, err
	}
	if job.JobID == "" {
		return nil, fmt.Errorf("response from %s has no job ID", endpoint)
	}
	return &job, nil
}

// wait polls the job until it reaches a final status
func (c *Client) wait(ctx context.Context, job *jobStatus) error {
	log := logger.FromContext(ctx)
	endpoint := fmt.Sprintf("%s/retrieve/v1/jobs/%s", c.baseURL, url.PathEscape(job.JobID))

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	status := job.Status
	for {
		switch status {
		case statusSuccessful:
			return nil
		case statusFailed, statusRejected, statusDismissed:
			return &JobError{JobID: job.JobID, Status: status, Detail: c.failureDetail(ctx, job.JobID)}
		case statusAccepted, statusRunning, "":
		default:
			log.Warn().Str("job_id", job.JobID).Str("status", status).Msg("unknown job status")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		var current jobStatus
		if err := c.call(ctx, http.MethodGet, endpoint, nil, &current); err != nil {
			return fmt.Errorf("failed to poll job %s: %w", job.JobID, err)
		}
		if current.Status != status {
			log.Debug().Str("job_id", job.JobID).Str("status", current.Status).Msg("job status changed")
		}
		status = current.Status
	}
}

func (c *Client) results(ctx context.Context, jobID string) (*jobResults, error) {
	endpoint := fmt.Sprintf("%s/retrieve/v1/jobs/%s/results", c.baseURL, url.PathEscape(jobID))

	var res jobResults
	if err := c.call(ctx, http.MethodGet, endpoint, nil, &res); err != nil {
		return nil, err
	}
	if res.Asset.Value.Href == "" {
		return nil, fmt.Errorf("job %s has no result link", jobID)
	}
	return &res, nil
}

// failureDetail asks the results endpoint why a job failed. The results
// call of a failed job answers with a problem document.
func (c *Client) failureDetail(ctx context.Context, jobID string) string {
	_, err := c.results(ctx, jobID)
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Detail
	}
	return ""
}

// call performs one API request and decodes a JSON response into out
func (c *Client) call(ctx context.Context, method, endpoint string, body []byte, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("PRIVATE-TOKEN", c.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Method: method, URL: endpoint, StatusCode: resp.StatusCode}
		var p problem
		if json.Unmarshal(data, &p) == nil {
			apiErr.Detail = strings.TrimSpace(p.Title + " " + p.Detail)
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	return nil
}

// download streams href into dest and returns the number of bytes written
func (c *Client) download(ctx context.Context, href, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &APIError{Method: http.MethodGet, URL: href, StatusCode: resp.StatusCode}
	}

	out, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dest, err)
	}

	n, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return n, nil
}
