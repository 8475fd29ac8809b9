package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	"github.com/smukkama/era5-sync/internal/archive"
	"github.com/smukkama/era5-sync/internal/cds"
	"github.com/smukkama/era5-sync/internal/coverage"
	"github.com/smukkama/era5-sync/internal/database"
	"github.com/smukkama/era5-sync/internal/lock"
	"github.com/smukkama/era5-sync/internal/logger"
	"github.com/smukkama/era5-sync/internal/planner"
	"github.com/smukkama/era5-sync/internal/queue"
	"github.com/smukkama/era5-sync/internal/report"
	"github.com/smukkama/era5-sync/pkg/config"
)

type options struct {
	configsFile string
	dryRun      bool
	reportPath  string
	dedupe      bool
}

// app owns the planner and the optional backing services of one process
type app struct {
	opts    options
	planner *planner.Planner
	locker  *lock.Locker
	closers []io.Closer
}

func newApp(ctx context.Context, cfg *config.Config, opts options) (*app, error) {
	a := &app{opts: opts}
	log := logger.FromContext(ctx)

	if !opts.dryRun && cfg.CDS.Key == "" {
		return nil, errors.New("no data store key: set CDSAPI_KEY or create ~/.cdsapirc")
	}

	client := cds.NewClient(cds.Config{
		URL:            cfg.CDS.URL,
		Key:            cfg.CDS.Key,
		PollInterval:   cfg.CDS.PollInterval,
		RequestTimeout: cfg.CDS.RequestTimeout,
	})

	var analyzerOpts []coverage.Option
	if opts.dedupe {
		analyzerOpts = append(analyzerOpts, coverage.WithDedupe())
	}
	analyzer := coverage.NewAnalyzer(archive.NewArchive(), analyzerOpts...)

	var plannerOpts []planner.Option

	// Dry runs and reports never touch the backing services
	if !opts.dryRun {
		if cfg.Database.Enabled {
			db, err := database.Connect(ctx, cfg.Database.ConnectionString())
			if err != nil {
				a.Close()
				return nil, err
			}
			a.closers = append(a.closers, db)
			if err := db.RunMigrations(ctx); err != nil {
				a.Close()
				return nil, err
			}
			plannerOpts = append(plannerOpts, planner.WithLedger(database.NewLedger(db)))
			fmt.Println("Connected to database")
		}

		if cfg.Redis.Addr != "" {
			redisClient := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			a.closers = append(a.closers, redisClient)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				a.Close()
				return nil, fmt.Errorf("failed to connect to Redis: %w", err)
			}
			a.locker = lock.New(redisClient, cfg.Redis.LockKey, cfg.Redis.LockTTL)
			fmt.Println("Connected to Redis")
		}

		if len(cfg.Kafka.Brokers) > 0 {
			compression, err := queue.ParseCompression(cfg.Kafka.Compression)
			if err != nil {
				a.Close()
				return nil, err
			}
			if err := queue.CreateTopic(ctx, cfg.Kafka.Brokers, cfg.Kafka.TopicUpdates, cfg.Kafka.NumPartitions, 1); err != nil {
				log.Warn().Err(err).Str("topic", cfg.Kafka.TopicUpdates).Msg("topic not created")
			}
			producer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicUpdates, compression)
			a.closers = append(a.closers, producer)
			plannerOpts = append(plannerOpts, planner.WithPublisher(producer))
			fmt.Println("Archive update producer initialized")
		}
	}

	a.planner = planner.New(analyzer, client, cfg.CDS.Dataset, plannerOpts...)
	return a, nil
}

// runOnce reloads the region file and performs one sync
func (a *app) runOnce(ctx context.Context) error {
	regions, err := config.LoadRegions(a.opts.configsFile)
	if err != nil {
		return err
	}

	if a.opts.reportPath != "" {
		cov, err := a.planner.Coverage(ctx, regions)
		if err != nil {
			return err
		}
		if err := report.WriteFile(a.opts.reportPath, cov); err != nil {
			return err
		}
		logger.FromContext(ctx).Info().Str("path", a.opts.reportPath).Msg("coverage report written")
	}

	if a.opts.dryRun {
		jobs, err := a.planner.Plan(ctx, regions)
		if err != nil {
			return err
		}
		for _, job := range jobs {
			fmt.Printf("%s -> %s\n", job, job.Path)
		}
		fmt.Printf("%d months to fetch\n", len(jobs))
		return nil
	}

	if a.locker != nil {
		lease, err := a.locker.Acquire(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := lease.Release(context.Background()); err != nil {
				logger.FromContext(ctx).Warn().Err(err).Msg("failed to release lock")
			}
		}()

		held, stop := lease.Hold(ctx)
		defer stop()

		_, err = a.planner.Run(held, regions)
		if cause := context.Cause(held); errors.Is(cause, lock.ErrLeaseLost) {
			return cause
		}
		return err
	}

	_, err = a.planner.Run(ctx, regions)
	return err
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
}
