package app

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/uleam/vehicle-gate/internal/auth"
	"github.com/uleam/vehicle-gate/internal/guard"
	"github.com/uleam/vehicle-gate/internal/observability"
	"github.com/uleam/vehicle-gate/internal/pages"
	"github.com/uleam/vehicle-gate/internal/rbac"
	"github.com/uleam/vehicle-gate/internal/shared"
	"github.com/uleam/vehicle-gate/internal/users"
	"github.com/uleam/vehicle-gate/jobs"
	"github.com/uleam/vehicle-gate/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Profiles           *shared.ProfileManager
	Registry           *auth.Registry
	CSRFManager        *shared.CSRFManager
	Guard              *guard.Guard
	AuthHandler        *auth.Handler
	SessionAPI         *auth.API
	PagesHandler       *pages.Handler
	UsersHandler       *users.Handler
	PermissionsHandler *rbac.PermissionsHandler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with the gate defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	mwCfg := MiddlewareConfig{
		Logger:   params.Logger,
		Config:   params.Config,
		Metrics:  params.Metrics,
		Profiles: params.Profiles,
		Registry: params.Registry,
		CSRF:     params.CSRFManager,
	}
	for _, mw := range MiddlewareStack(mwCfg) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	r.Group(func(r chi.Router) {
		r.Use(ProfileMiddleware(mwCfg), CSRFMiddleware(mwCfg))

		loginLimit := 10
		if params.Config != nil && params.Config.LoginRateLimit > 0 {
			loginLimit = params.Config.LoginRateLimit
		}
		r.With(httprate.LimitByIP(loginLimit, time.Minute)).Route("/auth", params.AuthHandler.MountRoutes)

		r.Route("/api", func(r chi.Router) {
			params.SessionAPI.MountRoutes(r)
			if params.PermissionsHandler != nil {
				r.Route("/roles", params.PermissionsHandler.MountRoutes)
			}
			if params.UsersHandler != nil {
				r.Route("/users", params.UsersHandler.MountRoutes)
			}
		})

		guarded := params.Guard.Middleware(guardSession)(params.PagesHandler)
		r.Method(http.MethodGet, "/", guarded)
		r.Method(http.MethodGet, "/*", guarded)
	})

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
