package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/propline/internal/app"
	"github.com/riskibarqy/propline/internal/config"
	"github.com/riskibarqy/propline/internal/observability"
	"github.com/riskibarqy/propline/internal/platform/logging"
	"github.com/riskibarqy/propline/internal/usecase"
)

func main() {
	once := flag.Bool("once", false, "run a single ingestion pass even when INGEST_INTERVAL is set")
	printResults := flag.Bool("print", false, "print run results as JSON to stdout")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownObservability, err := observability.Setup(cfg, logger)
	if err != nil {
		logger.Error("init observability", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownObservability(shutdownCtx); err != nil {
			logger.Warn("observability shutdown failed", "error", err)
		}
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close app", "error", err)
		}
	}()

	reportStaleRuns(ctx, a, cfg, logger)

	opts := usecase.RunOptions{Limit: cfg.IngestBatchLimit, DisableUpsert: cfg.IngestDisableUpsert}
	if *once || cfg.IngestInterval <= 0 {
		if err := runPass(ctx, a, opts, *printResults, logger); err != nil {
			os.Exit(1)
		}
		return
	}

	logger.Info("ingest loop starting", "interval", cfg.IngestInterval.String())
	ticker := time.NewTicker(cfg.IngestInterval)
	defer ticker.Stop()
	for {
		_ = runPass(ctx, a, opts, *printResults, logger)

		select {
		case <-ctx.Done():
			logger.Info("ingest loop stopped")
			return
		case <-ticker.C:
		}
	}
}

func runPass(ctx context.Context, a *app.App, opts usecase.RunOptions, printResults bool, logger *logging.Logger) error {
	results, err := a.Coordinator.RunAll(ctx, opts)
	for _, result := range results {
		if result.RunID == 0 {
			continue
		}
		logger.InfoContext(ctx, "ingest pass result",
			"source", result.Source,
			"status", result.Status,
			"total_raw", result.Counts.TotalRaw,
			"new_quotes", result.Counts.NewQuotes,
			"line_changes", result.Counts.LineChanges,
			"errors", len(result.Errors),
		)
	}
	if printResults {
		if out, encErr := sonic.ConfigStd.MarshalIndent(results, "", "  "); encErr == nil {
			fmt.Println(string(out))
		}
	}
	if err != nil {
		logger.ErrorContext(ctx, "ingest pass failed", "error", err)
	}
	return err
}

func reportStaleRuns(ctx context.Context, a *app.App, cfg config.Config, logger *logging.Logger) {
	if len(a.Services) == 0 {
		return
	}
	// every service shares the run repository
	stale, err := a.Services[0].StaleRuns(ctx, cfg.IngestStaleRunThreshold)
	if err != nil {
		logger.WarnContext(ctx, "list stale ingest runs failed", "error", err)
		return
	}
	for _, run := range stale {
		logger.WarnContext(ctx, "stale ingest run",
			"run_id", run.ID,
			"source", run.Source,
			"started_at", run.StartedAt,
			"threshold", cfg.IngestStaleRunThreshold.String(),
		)
	}
}
