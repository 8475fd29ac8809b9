package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/smukkama/era5-sync/internal/logger"
	"github.com/smukkama/era5-sync/internal/schedule"
	"github.com/smukkama/era5-sync/pkg/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	var opts options
	flag.StringVar(&opts.configsFile, "c", "", "region config file (.json, .yaml or .yml)")
	flag.StringVar(&opts.configsFile, "configs-file", "", "region config file (same as -c)")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "print the months that would be fetched and exit")
	flag.StringVar(&opts.reportPath, "report", "", "write a per-month coverage CSV to this path")
	flag.BoolVar(&opts.dedupe, "dedupe", false, "count each distinct hour once")
	at := flag.String("at", "", "run daily at HH:MM local time instead of once")
	flag.Parse()

	if opts.configsFile == "" {
		fmt.Fprintln(os.Stderr, "a region config file is required (-c)")
		flag.Usage()
		return 2
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	lg := logger.Get()

	var daily schedule.TimeOfDay
	if *at != "" {
		if daily, err = schedule.ParseTimeOfDay(*at); err != nil {
			lg.Error().Err(err).Msg("invalid -at")
			return 2
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println("Starting ERA5 sync...")

	a, err := newApp(ctx, cfg, opts)
	if err != nil {
		lg.Error().Err(err).Msg("startup failed")
		return 1
	}
	defer a.Close()

	if *at == "" {
		if err := a.runOnce(ctx); err != nil {
			lg.Error().Err(err).Msg("sync failed")
			return 1
		}
		return 0
	}

	fmt.Printf("\n✓ ERA5 sync scheduled daily at %s\n", daily)
	fmt.Println("✓ Press Ctrl+C to stop")

	err = schedule.RunDaily(ctx, daily, func(ctx context.Context) {
		if err := a.runOnce(ctx); err != nil {
			lg.Error().Err(err).Msg("sync failed")
		}
	})
	if err != nil {
		lg.Error().Err(err).Msg("scheduler failed")
		return 1
	}

	fmt.Println("\nShutting down gracefully...")
	return 0
}
