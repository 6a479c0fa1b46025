package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/uleam/vehicle-gate/internal/jobs"
	"github.com/uleam/vehicle-gate/internal/storage"
)

// DefaultSweepRetention applies when a task carries no retention.
const DefaultSweepRetention = 30 * 24 * time.Hour

// StorageSweepJob deletes the storage of idle browser profiles.
type StorageSweepJob struct {
	Sweeper storage.Sweeper
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewStorageSweepJob initialises the sweep handler.
func NewStorageSweepJob(sweeper storage.Sweeper, logger *slog.Logger, metrics *jobmetrics.Metrics) *StorageSweepJob {
	return &StorageSweepJob{Sweeper: sweeper, Logger: logger, Metrics: metrics}
}

// Handle executes one sweep.
func (j *StorageSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Sweeper == nil {
		return errors.New("storage sweep: handler not configured")
	}
	var payload StorageSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Retention <= 0 {
		payload.Retention = DefaultSweepRetention
	}

	start := time.Now()
	tracker := j.Metrics.Track(TaskStorageSweep)
	removed, err := j.Sweeper.Sweep(ctx, payload.Retention)
	if err != nil {
		j.logger().Error("storage sweep failed", slog.Any("error", err))
		return tracker.End(err)
	}
	j.Metrics.AddSwept(removed)
	j.logger().Info("storage sweep completed",
		slog.Int64("profiles", removed),
		slog.Duration("retention", payload.Retention),
		slog.Duration("duration", time.Since(start)),
	)
	return tracker.End(nil)
}

func (j *StorageSweepJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return j.Logger
}
