package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/unrolled/secure"

	"github.com/uleam/vehicle-gate/internal/auth"
	"github.com/uleam/vehicle-gate/internal/guard"
	"github.com/uleam/vehicle-gate/internal/observability"
	"github.com/uleam/vehicle-gate/internal/rbac"
	"github.com/uleam/vehicle-gate/internal/shared"
)

// MiddlewareConfig aggregates dependencies shared by the middleware stack.
type MiddlewareConfig struct {
	Logger   *slog.Logger
	Config   *Config
	Metrics  *observability.Metrics
	Profiles *shared.ProfileManager
	Registry *auth.Registry
	CSRF     *shared.CSRFManager
}

// MiddlewareStack installs the base middleware chain shared by every route.
func MiddlewareStack(cfg MiddlewareConfig) []func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		SSLRedirect:           cfg.Config != nil && cfg.Config.IsProduction(),
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	})

	timeout := 30 * time.Second
	if cfg.Config != nil && cfg.Config.AppRequestTimeout > 0 {
		timeout = cfg.Config.AppRequestTimeout
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Timeout(timeout),
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := secureMiddleware.Process(w, r); err != nil {
					cfg.Logger.Warn("secure headers blocked request", slog.Any("error", err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				next.ServeHTTP(w, r)
			})
		},
		middleware.Compress(5),
	}
	if cfg.Metrics != nil {
		middlewares = append(middlewares, cfg.Metrics.Middleware)
	}
	return middlewares
}

// ProfileMiddleware identifies the browser profile, refreshes its cookie,
// restores a persisted session into an unauthenticated service and binds the
// profile's auth service to the request context.
func ProfileMiddleware(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, isNew, err := cfg.Profiles.Load(r)
			if err != nil {
				cfg.Logger.Error("failed to load profile", slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			svc, err := cfg.Registry.Service(r.Context(), id)
			if err != nil {
				cfg.Logger.Error("failed to open profile", slog.String("profile", id), slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
			if isNew {
				cfg.Logger.Debug("issued browser profile", slog.String("profile", id))
			} else if !svc.IsAuthenticated() {
				// An evicted service comes back empty; restore before any
				// handler reads permissions. Failures leave it signed out.
				if _, err := svc.CheckSession(r.Context()); err != nil {
					cfg.Logger.Warn("profile session restore", slog.String("profile", id), slog.Any("error", err))
				}
			}
			cfg.Profiles.Commit(w, id)

			ctx := shared.ContextWithProfile(r.Context(), id)
			ctx = auth.ContextWithService(ctx, svc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CSRFMiddleware rejects unsafe requests without the profile's token.
func CSRFMiddleware(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			token := r.PostFormValue(shared.CSRFFormField)
			if token == "" {
				token = r.Header.Get("X-CSRF-Token")
			}
			if err := cfg.CSRF.VerifyToken(shared.ProfileFromContext(r.Context()), token); err != nil {
				cfg.Logger.Warn("csrf validation failed", slog.String("path", r.URL.Path), slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// guardSession adapts the context service for the guard, keeping a missing
// service a nil interface.
func guardSession(r *http.Request) guard.Session {
	if svc := auth.ServiceFromContext(r.Context()); svc != nil {
		return svc
	}
	return nil
}

func rbacChecker(r *http.Request) rbac.Checker {
	if svc := auth.ServiceFromContext(r.Context()); svc != nil {
		return svc
	}
	return nil
}

// RBACMiddleware returns the rbac middleware bound to the request's profile.
func RBACMiddleware(logger *slog.Logger) rbac.Middleware {
	return rbac.Middleware{Lookup: rbacChecker, Logger: logger}
}
