package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/uleam/vehicle-gate/internal/app"
	jobmetrics "github.com/uleam/vehicle-gate/internal/jobs"
	"github.com/uleam/vehicle-gate/internal/platform/cache"
	"github.com/uleam/vehicle-gate/jobs"
)

const evictInterval = time.Minute

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
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

	var inspector *asynq.Inspector
	if cfg.StorageBackend != app.BackendMemory {
		opt, err := cache.AsynqOpt(cfg.RedisAddr)
		if err != nil {
			logger.Warn("job queue disabled", slog.Any("error", err))
		} else {
			inspector = asynq.NewInspector(opt)
			defer inspector.Close()
		}
	}

	application, err := app.New(cfg, logger, st.Provider, inspector)
	if err != nil {
		logger.Error("init app", slog.Any("error", err))
		os.Exit(1)
	}

	var sweep *jobs.StorageSweepJob
	if cfg.StorageBackend == app.BackendMemory && st.Sweeper != nil {
		sweep = jobs.NewStorageSweepJob(st.Sweeper, logger, jobmetrics.NewMetrics(application.Metrics.Registerer()))
	}

	srv := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           application.Handler,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: cfg.AppReadTimeout,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", slog.String("addr", cfg.AppAddr), slog.String("storage", cfg.StorageBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(evictInterval)
		defer ticker.Stop()
		lastSweep := time.Now()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
			}
			if n := application.Registry.Evict(cfg.ProfileIdleTimeout); n > 0 {
				logger.Debug("evicted idle profiles", slog.Int("count", n))
			}
			if sweep == nil || time.Since(lastSweep) < time.Hour {
				continue
			}
			lastSweep = time.Now()
			task, err := jobs.NewStorageSweepTask(cfg.SweepRetention)
			if err != nil {
				return err
			}
			if err := sweep.Handle(gctx, task); err != nil {
				logger.Warn("storage sweep", slog.Any("error", err))
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
