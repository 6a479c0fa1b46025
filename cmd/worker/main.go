package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/uleam/vehicle-gate/internal/app"
	jobmetrics "github.com/uleam/vehicle-gate/internal/jobs"
	"github.com/uleam/vehicle-gate/internal/platform/cache"
	"github.com/uleam/vehicle-gate/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	st, err := app.OpenStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("open storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer st.Close()
	if st.Sweeper == nil || cfg.StorageBackend == app.BackendMemory {
		logger.Info("storage backend needs no sweep worker", slog.String("backend", cfg.StorageBackend))
		return
	}

	redisOpts, err := cache.AsynqOpt(cfg.RedisAddr)
	if err != nil {
		logger.Error("parse redis address", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Sweep:     jobs.NewStorageSweepJob(st.Sweeper, logger, jobmetrics.NewMetrics(nil)),
		Schedule:  cfg.SweepCron,
		Retention: cfg.SweepRetention,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started", slog.String("sweep_cron", cfg.SweepCron), slog.Duration("retention", cfg.SweepRetention))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
