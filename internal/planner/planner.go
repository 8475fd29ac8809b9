package planner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/smukkama/era5-sync/internal/archive"
	"github.com/smukkama/era5-sync/internal/cds"
	"github.com/smukkama/era5-sync/internal/coverage"
	"github.com/smukkama/era5-sync/internal/logger"
	"github.com/smukkama/era5-sync/pkg/config"
)

// Analyzer finds the incomplete months of one variable's local files
type Analyzer interface {
	Analyze(ctx context.Context, variable, regionPath string, start, now time.Time) ([]coverage.MonthKey, error)
	Coverage(ctx context.Context, variable, regionPath string, start, now time.Time) (coverage.Table, error)
}

// Retriever fetches one request from the remote archive into dest
type Retriever interface {
	Retrieve(ctx context.Context, dataset string, req cds.Request, dest string) error
}

// Ledger records runs and jobs for auditing. It is never read back.
type Ledger interface {
	StartRun(ctx context.Context, runID string, startedAt time.Time) error
	FinishRun(ctx context.Context, summary Summary, runErr error) error
	StartJob(ctx context.Context, runID string, job FetchJob) (int64, error)
	FinishJob(ctx context.Context, jobID int64, jobErr error) error
}

// Publisher announces month files that landed in the archive
type Publisher interface {
	PublishArchiveUpdated(ctx context.Context, runID string, job FetchJob) error
}

// Summary describes one run
type Summary struct {
	RunID     string
	StartedAt time.Time
	Variables int
	Fetched   int
}

// VariableCoverage is the coverage table of one region and variable
type VariableCoverage struct {
	Region   string
	Variable string
	Table    coverage.Table
}

// Planner drives the sync: for every region and variable it analyzes local
// coverage and fetches each incomplete month, one request at a time
type Planner struct {
	analyzer  Analyzer
	retriever Retriever
	dataset   string
	now       func() time.Time
	ledger    Ledger
	publisher Publisher
}

// Option configures a Planner
type Option func(*Planner)

// WithClock replaces the wall clock used as the end of every analysis
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		p.now = now
	}
}

// WithLedger records runs and jobs in l
func WithLedger(l Ledger) Option {
	return func(p *Planner) {
		p.ledger = l
	}
}

// WithPublisher announces fetched files through pub
func WithPublisher(pub Publisher) Option {
	return func(p *Planner) {
		p.publisher = pub
	}
}

// New creates a new planner fetching dataset through retriever
func New(analyzer Analyzer, retriever Retriever, dataset string, opts ...Option) *Planner {
	p := &Planner{
		analyzer:  analyzer,
		retriever: retriever,
		dataset:   dataset,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan returns the jobs a run would issue, without fetching anything
func (p *Planner) Plan(ctx context.Context, regions []config.Region) ([]FetchJob, error) {
	now := p.now()
	if err := checkRanges(regions, now); err != nil {
		return nil, err
	}

	var jobs []FetchJob
	err := p.each(ctx, regions, now, func(ctx context.Context, region config.Region, variable string, months []coverage.MonthKey) error {
		for _, m := range months {
			jobs = append(jobs, newJob(region, variable, m))
		}
		return nil
	})
	return jobs, err
}

// Coverage returns the coverage table of every region and variable
func (p *Planner) Coverage(ctx context.Context, regions []config.Region) ([]VariableCoverage, error) {
	now := p.now()
	if err := checkRanges(regions, now); err != nil {
		return nil, err
	}

	var out []VariableCoverage
	for _, region := range regions {
		dir := archive.RegionDir(region.Path, region.Name)
		for _, variable := range region.Variables {
			table, err := p.analyzer.Coverage(ctx, variable, dir, region.Start, now)
			if err != nil {
				return nil, fmt.Errorf("%s/%s: %w", region.Name, variable, err)
			}
			out = append(out, VariableCoverage{Region: region.Name, Variable: variable, Table: table})
		}
	}
	return out, nil
}

// Run fetches every incomplete month of every region and variable. The
// first failure stops the run. A region starting after now fails the run
// before anything is fetched.
func (p *Planner) Run(ctx context.Context, regions []config.Region) (Summary, error) {
	now := p.now()
	summary := Summary{RunID: uuid.NewString(), StartedAt: now}
	if err := checkRanges(regions, now); err != nil {
		return summary, err
	}

	ctx = logger.WithRunID(ctx, summary.RunID)
	log := logger.FromContext(ctx)

	if p.ledger != nil {
		if err := p.ledger.StartRun(ctx, summary.RunID, summary.StartedAt); err != nil {
			log.Warn().Err(err).Msg("failed to record run start")
		}
	}

	log.Info().Int("regions", len(regions)).Msg("sync run started")
	err := p.each(ctx, regions, now, func(ctx context.Context, region config.Region, variable string, months []coverage.MonthKey) error {
		summary.Variables++
		for _, m := range months {
			job := newJob(region, variable, m)
			if err := p.fetch(ctx, summary.RunID, job); err != nil {
				return &FetchError{Job: job, Err: err}
			}
			summary.Fetched++
		}
		return nil
	})

	if p.ledger != nil {
		if lerr := p.ledger.FinishRun(context.WithoutCancel(ctx), summary, err); lerr != nil {
			log.Warn().Err(lerr).Msg("failed to record run finish")
		}
	}

	if err != nil {
		return summary, err
	}
	log.Info().Int("variables", summary.Variables).Int("fetched", summary.Fetched).Msg("sync run finished")
	return summary, nil
}

type visitFunc func(ctx context.Context, region config.Region, variable string, months []coverage.MonthKey) error

// checkRanges rejects the whole region list when any start lies after now
func checkRanges(regions []config.Region, now time.Time) error {
	for _, region := range regions {
		if region.Start.After(now) {
			return fmt.Errorf("%s: %w: start=%s now=%s", region.Name, coverage.ErrInvalidDateRange,
				region.Start.UTC().Format(time.RFC3339), now.UTC().Format(time.RFC3339))
		}
	}
	return nil
}

// each analyzes regions and variables in order against one end time and
// hands each result to fn
func (p *Planner) each(ctx context.Context, regions []config.Region, now time.Time, fn visitFunc) error {
	for _, region := range regions {
		dir := archive.RegionDir(region.Path, region.Name)
		for _, variable := range region.Variables {
			vctx := logger.WithRegion(ctx, region.Name, variable)

			months, err := p.analyzer.Analyze(vctx, variable, dir, region.Start, now)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", region.Name, variable, err)
			}

			log := logger.FromContext(vctx)
			if len(months) == 0 {
				log.Info().Msg("archive complete")
			} else {
				log.Info().
					Int("incomplete", len(months)).
					Str("first", months[0].String()).
					Str("last", months[len(months)-1].String()).
					Msg("incomplete months found")
			}

			if err := fn(vctx, region, variable, months); err != nil {
				return err
			}
		}
	}
	return nil
}

// fetch downloads one job to a hidden part file and moves it into place
func (p *Planner) fetch(ctx context.Context, runID string, job FetchJob) error {
	log := logger.FromContext(ctx)

	if err := os.MkdirAll(filepath.Dir(job.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", job.Path, err)
	}

	var ledgerID int64
	if p.ledger != nil {
		id, err := p.ledger.StartJob(ctx, runID, job)
		if err != nil {
			log.Warn().Err(err).Str("job", job.String()).Msg("failed to record job start")
		}
		ledgerID = id
	}

	log.Info().Str("job", job.String()).Str("file", job.Path).Msg("fetching month")
	part := archive.PartPath(job.Path)
	req := cds.MonthRequest(job.Variable, job.Year, job.Month, job.Area)

	err := p.retriever.Retrieve(ctx, p.dataset, req, part)
	if err == nil {
		err = os.Rename(part, job.Path)
	}
	if err != nil {
		os.Remove(part)
	}

	if p.ledger != nil && ledgerID != 0 {
		if lerr := p.ledger.FinishJob(context.WithoutCancel(ctx), ledgerID, err); lerr != nil {
			log.Warn().Err(lerr).Str("job", job.String()).Msg("failed to record job finish")
		}
	}
	if err != nil {
		return err
	}

	if p.publisher != nil {
		if perr := p.publisher.PublishArchiveUpdated(ctx, runID, job); perr != nil {
			log.Warn().Err(perr).Str("job", job.String()).Msg("failed to publish archive update")
		}
	}
	return nil
}
