package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/uleam/vehicle-gate/cmd/gatectl/cli"
	"github.com/uleam/vehicle-gate/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	root := cli.NewRootCmd(cli.Deps{
		Config: cfg,
		Logger: logger,
		OpenStorage: func(ctx context.Context) (*app.Storage, error) {
			return app.OpenStorage(ctx, cfg, logger)
		},
		Out: os.Stdout,
	})
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
