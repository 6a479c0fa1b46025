package app

import (
	"log/slog"
	"net/http"

	"github.com/hibiken/asynq"

	"github.com/uleam/vehicle-gate/internal/auth"
	"github.com/uleam/vehicle-gate/internal/guard"
	"github.com/uleam/vehicle-gate/internal/observability"
	"github.com/uleam/vehicle-gate/internal/pages"
	"github.com/uleam/vehicle-gate/internal/rbac"
	"github.com/uleam/vehicle-gate/internal/shared"
	"github.com/uleam/vehicle-gate/internal/storage"
	"github.com/uleam/vehicle-gate/internal/users"
	"github.com/uleam/vehicle-gate/internal/view"
	"github.com/uleam/vehicle-gate/jobs"
)

// App is the assembled gate: the profile registry plus its HTTP handler.
type App struct {
	Registry *auth.Registry
	Guard    *guard.Guard
	Metrics  *observability.Metrics
	Handler  http.Handler
}

// ServiceOptions derives the auth.Service options from configuration.
func ServiceOptions(cfg *Config, logger *slog.Logger, rec auth.LoginRecorder) []auth.Option {
	opts := []auth.Option{auth.WithLogger(logger), auth.WithLoginRecorder(rec)}
	if cfg != nil {
		opts = append(opts,
			auth.WithBcryptCost(cfg.BcryptCost),
			auth.WithNotificationDuration(cfg.NotificationDuration),
		)
	}
	return opts
}

// New wires every component over provider. inspector may be nil when no
// queue is configured.
func New(cfg *Config, logger *slog.Logger, provider storage.Provider, inspector *asynq.Inspector) (*App, error) {
	templates, err := view.NewEngine()
	if err != nil {
		return nil, err
	}
	metrics := observability.NewMetrics()
	registry := auth.NewRegistry(provider, ServiceOptions(cfg, logger, metrics)...)
	metrics.ObserveProfiles(registry.Len)

	g := guard.New(guard.MustDefaultTable(), guard.Config{
		ShowPermission: cfg.DenialShowsPermission,
		Logger:         logger,
		Recorder:       metrics,
	})
	csrf := shared.NewCSRFManager(cfg.CSRFSecret)
	rbacMW := RBACMiddleware(logger)

	handler := NewRouter(RouterParams{
		Logger:             logger,
		Config:             cfg,
		Profiles:           shared.NewProfileManager(cfg.ProfileCookie, cfg.ProfileTTL, cfg.IsProduction()),
		Registry:           registry,
		CSRFManager:        csrf,
		Guard:              g,
		AuthHandler:        auth.NewHandler(logger, templates, csrf),
		SessionAPI:         auth.NewAPI(),
		PagesHandler:       pages.NewHandler(logger, templates, csrf, g.Table()),
		UsersHandler:       users.NewHandler(logger, rbacMW),
		PermissionsHandler: rbac.NewPermissionsHandler(rbac.NewService(), rbacMW),
		JobHandler:         jobs.NewHandler(inspector, logger),
		Metrics:            metrics,
	})
	return &App{Registry: registry, Guard: g, Metrics: metrics, Handler: handler}, nil
}
