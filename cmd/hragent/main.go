// Command hragent runs the resume-screening service: a cycle orchestrator
// over the durable item store and a standalone stall sweeper.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/starORAIT/HRAgent/pkg/ai"
	"github.com/starORAIT/HRAgent/pkg/batch"
	"github.com/starORAIT/HRAgent/pkg/config"
	"github.com/starORAIT/HRAgent/pkg/resilient"
	"github.com/starORAIT/HRAgent/pkg/schedule"
	"github.com/starORAIT/HRAgent/pkg/screen"
	"github.com/starORAIT/HRAgent/pkg/storage"
	"github.com/starORAIT/HRAgent/pkg/sweep"
)

func main() {
	cfg := config.Load()
	logger := cfg.Logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("service exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	db, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		return err
	}
	store, err := storage.NewGormStorageWithPool(db,
		storage.MaxOpenConns(cfg.Screening.WorkerCount*2+5))
	if err != nil {
		return err
	}
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	client := ai.NewClient(cfg.AI)

	policy := resilient.Policy{
		MaxAttempts: cfg.Screening.MaxRetryAttempts,
		BaseTimeout: cfg.Screening.BaseTimeout.Std(),
	}
	coord := screen.New(store, client, client,
		screen.WithLogger(logger),
		screen.WithPolicy(policy))

	orch := batch.New(store, coord, batch.Config{
		ClaimBatchLimit: cfg.Screening.ClaimBatchLimit,
		ChunkSize:       cfg.Screening.ChunkSize,
		WorkerCount:     cfg.Screening.WorkerCount,
		StallTimeout:    cfg.Screening.StallTimeout.Std(),
		ChunkTimeout:    cfg.Screening.ChunkTimeout.Std(),
		CycleSchedule:   schedule.Every(cfg.Screening.CycleInterval.Std()),
	}, logger)

	sweeper := sweep.NewDetector(store,
		cfg.Screening.StallTimeout.Std(), sweepSchedule(cfg.Screening, logger), logger)

	logger.Info("hragent starting",
		"worker_id", coord.WorkerID(),
		"workers", cfg.Screening.WorkerCount,
		"cycle_interval", cfg.Screening.CycleInterval)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := orch.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("orchestrator stopped", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("stall sweeper stopped", "error", err)
		}
	}()

	<-ctx.Done()
	wg.Wait()
	logger.Info("hragent stopped")
	return ctx.Err()
}

// sweepSchedule prefers a cron expression when one is configured. A bad
// expression is logged and the fixed interval applies.
func sweepSchedule(cfg config.ScreeningConfig, logger *slog.Logger) schedule.Schedule {
	if cfg.SweepCron != "" {
		sched, err := schedule.ParseCron(cfg.SweepCron)
		if err == nil {
			return sched
		}
		logger.Warn("invalid sweep cron expression, using sweep interval",
			"expression", cfg.SweepCron, "error", err)
	}
	return schedule.Every(cfg.SweepInterval.Std())
}
