package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// WorkerConfig describes the sweep worker.
type WorkerConfig struct {
	RedisOpts asynq.RedisClientOpt
	Logger    *slog.Logger
	Sweep     *StorageSweepJob
	// Schedule is a cron spec for periodic sweeps. Empty only serves
	// enqueued tasks.
	Schedule  string
	Retention time.Duration
}

// Worker serves storage:sweep tasks and optionally schedules them.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

// NewWorker validates cfg and prepares the server and scheduler.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Sweep == nil {
		return nil, errors.New("worker: sweep job is required")
	}
	logger := cfg.Sweep.logger()
	if cfg.Logger != nil {
		logger = cfg.Logger
	}

	// One sweep at a time; overlapping sweeps would delete the same rows.
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{Concurrency: 1})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskStorageSweep, cfg.Sweep.Handle)

	w := &Worker{server: srv, mux: mux, logger: logger}
	if cfg.Schedule == "" {
		return w, nil
	}
	task, err := NewStorageSweepTask(cfg.Retention)
	if err != nil {
		return nil, err
	}
	w.scheduler = asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: time.UTC})
	if _, err := w.scheduler.Register(cfg.Schedule, task, asynq.MaxRetry(3), asynq.Unique(time.Hour)); err != nil {
		return nil, fmt.Errorf("worker: schedule %q: %w", cfg.Schedule, err)
	}
	return w, nil
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			w.server.Shutdown()
			return err
		}
	}
	w.logger.Info("sweep worker running", slog.Bool("scheduled", w.scheduler != nil))

	<-ctx.Done()
	if w.scheduler != nil {
		w.scheduler.Shutdown()
	}
	w.server.Shutdown()
	return ctx.Err()
}

// Client queues sweeps for the worker.
type Client struct {
	client *asynq.Client
}

// NewClient constructs a Client.
func NewClient(redisOpts asynq.RedisClientOpt) (*Client, error) {
	return &Client{client: asynq.NewClient(redisOpts)}, nil
}

// EnqueueStorageSweep queues a one-off sweep. A sweep already queued within
// the hour is not duplicated.
func (c *Client) EnqueueStorageSweep(ctx context.Context, retention time.Duration) (*asynq.TaskInfo, error) {
	task, err := NewStorageSweepTask(retention)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Unique(time.Hour))
}

// Close releases the client connection.
func (c *Client) Close() error {
	return c.client.Close()
}
