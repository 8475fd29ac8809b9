package database

import (
	"context"
	"fmt"
	"time"

	"github.com/smukkama/era5-sync/internal/planner"
)

// Ledger records sync runs and fetch jobs in Postgres
type Ledger struct {
	db  *DB
	now func() time.Time
}

// NewLedger creates a ledger on an open, migrated database
func NewLedger(db *DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

// StartRun implements planner.Ledger
func (l *Ledger) StartRun(ctx context.Context, runID string, startedAt time.Time) error {
	run := &SyncRun{
		RunID:     runID,
		StartedAt: startedAt.UTC(),
		Status:    StatusRunning,
	}
	if err := l.db.InsertRun(ctx, run); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", runID, err)
	}
	return nil
}

// FinishRun implements planner.Ledger
func (l *Ledger) FinishRun(ctx context.Context, summary planner.Summary, runErr error) error {
	finished := l.now().UTC()
	status, msg := statusFor(runErr)
	run := &SyncRun{
		RunID:      summary.RunID,
		StartedAt:  summary.StartedAt,
		FinishedAt: &finished,
		Status:     status,
		Variables:  summary.Variables,
		Fetched:    summary.Fetched,
		Error:      msg,
	}
	if err := l.db.UpdateRunFinished(ctx, run); err != nil {
		return fmt.Errorf("failed to update run %s: %w", summary.RunID, err)
	}
	return nil
}

// StartJob implements planner.Ledger
func (l *Ledger) StartJob(ctx context.Context, runID string, job planner.FetchJob) (int64, error) {
	rec := jobRecord(runID, job, l.now())
	if err := l.db.InsertFetchJob(ctx, rec); err != nil {
		return 0, fmt.Errorf("failed to insert fetch job %s: %w", job, err)
	}
	return rec.ID, nil
}

// FinishJob implements planner.Ledger
func (l *Ledger) FinishJob(ctx context.Context, jobID int64, jobErr error) error {
	finished := l.now().UTC()
	status, msg := statusFor(jobErr)
	rec := &FetchJobRecord{
		ID:         jobID,
		Status:     status,
		Error:      msg,
		FinishedAt: &finished,
	}
	if err := l.db.UpdateFetchJobFinished(ctx, rec); err != nil {
		return fmt.Errorf("failed to update fetch job %d: %w", jobID, err)
	}
	return nil
}

func jobRecord(runID string, job planner.FetchJob, startedAt time.Time) *FetchJobRecord {
	return &FetchJobRecord{
		RunID:     runID,
		Region:    job.Region,
		Variable:  job.Variable,
		Year:      job.Year,
		Month:     job.Month,
		Area:      job.Area[:],
		Path:      job.Path,
		Status:    StatusRunning,
		StartedAt: startedAt.UTC(),
	}
}
