package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/uleam/vehicle-gate/internal/platform/cache"
	"github.com/uleam/vehicle-gate/internal/platform/db"
	"github.com/uleam/vehicle-gate/internal/storage"
)

// Storage is the opened profile storage backend.
type Storage struct {
	Provider storage.Provider
	// Sweeper is nil for backends that expire data on their own.
	Sweeper storage.Sweeper
	closers []func()
}

// Close releases backend connections.
func (s *Storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// OpenStorage connects the backend selected by STORAGE_BACKEND.
func OpenStorage(ctx context.Context, cfg *Config, logger *slog.Logger) (*Storage, error) {
	switch cfg.StorageBackend {
	case BackendMemory:
		mem := storage.NewMemory()
		return &Storage{Provider: mem, Sweeper: mem}, nil
	case BackendRedis:
		client, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		closeClient := func() {
			if err := client.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
		return &Storage{Provider: storage.NewRedis(client, cfg.StorageTTL), closers: []func(){closeClient}}, nil
	case BackendPostgres:
		pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
		if err != nil {
			return nil, err
		}
		backend := storage.NewPostgres(pool)
		if err := backend.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return &Storage{Provider: backend, Sweeper: backend, closers: []func(){pool.Close}}, nil
	}
	return nil, fmt.Errorf("app: unknown storage backend %q", cfg.StorageBackend)
}
