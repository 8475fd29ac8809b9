package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/lib/pq"

	"github.com/smukkama/era5-sync/internal/logger"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// Connect establishes a connection to the database
func Connect(ctx context.Context, connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// A sync run holds one connection at a time
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)

	return &DB{db}, nil
}

// migrationFiles lists the embedded SQL migrations in order
func migrationFiles() ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)
	return sqlFiles, nil
}

// RunMigrations executes all embedded SQL migrations in order. Every
// migration is idempotent.
func (db *DB) RunMigrations(ctx context.Context) error {
	sqlFiles, err := migrationFiles()
	if err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	for _, filename := range sqlFiles {
		log.Debug().Str("migration", filename).Msg("running migration")

		content, err := fs.ReadFile(migrationsFS, "migrations/"+filename)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}
	}

	log.Debug().Int("migrations", len(sqlFiles)).Msg("all migrations completed")
	return nil
}

// InsertRun records the start of a sync run
func (db *DB) InsertRun(ctx context.Context, run *SyncRun) error {
	query := `
		INSERT INTO sync_runs (run_id, started_at, status)
		VALUES ($1, $2, $3)
	`
	_, err := db.ExecContext(ctx, query, run.RunID, run.StartedAt, run.Status)
	return err
}

// UpdateRunFinished records the outcome of a sync run
func (db *DB) UpdateRunFinished(ctx context.Context, run *SyncRun) error {
	query := `
		UPDATE sync_runs
		SET finished_at = $1, status = $2, variables = $3, fetched = $4, error = $5
		WHERE run_id = $6
	`
	_, err := db.ExecContext(ctx, query,
		run.FinishedAt, run.Status, run.Variables, run.Fetched, run.Error, run.RunID)
	return err
}

// InsertFetchJob records a month request and sets its ID
func (db *DB) InsertFetchJob(ctx context.Context, job *FetchJobRecord) error {
	query := `
		INSERT INTO fetch_jobs (
			run_id, region, variable, year, month, area, path, status, started_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	return db.QueryRowContext(ctx, query,
		job.RunID,
		job.Region,
		job.Variable,
		job.Year,
		job.Month,
		pq.Array(job.Area),
		job.Path,
		job.Status,
		job.StartedAt,
	).Scan(&job.ID)
}

// UpdateFetchJobFinished records the outcome of a month request
func (db *DB) UpdateFetchJobFinished(ctx context.Context, job *FetchJobRecord) error {
	query := `
		UPDATE fetch_jobs
		SET status = $1, error = $2, finished_at = $3
		WHERE id = $4
	`
	_, err := db.ExecContext(ctx, query, job.Status, job.Error, job.FinishedAt, job.ID)
	return err
}
