package rbac

import (
	"log/slog"
	"net/http"
	"strings"
)

// Checker answers permission questions for the caller of a request.
type Checker interface {
	IsAuthenticated() bool
	HasPermission(token string) bool
}

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	// Lookup resolves the checker bound to the request's browser profile.
	Lookup func(r *http.Request) Checker
	Logger *slog.Logger
}

// RequireAuthenticated rejects requests without an active session.
func (m Middleware) RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := m.checker(r); !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny ensures the current session matches at least one of perms.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			checker, ok := m.checker(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if len(normalized) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			for _, p := range normalized {
				if checker.HasPermission(p) {
					next.ServeHTTP(w, r)
					return
				}
			}
			if m.Logger != nil {
				m.Logger.Warn("rbac require any denied", slog.String("path", r.URL.Path), slog.Any("required", normalized))
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

func (m Middleware) checker(r *http.Request) (Checker, bool) {
	if m.Lookup == nil {
		return nil, false
	}
	checker := m.Lookup(r)
	if checker == nil || !checker.IsAuthenticated() {
		return nil, false
	}
	return checker, true
}

func normalizePermissions(perms []string) []string {
	seen := make(map[string]struct{}, len(perms))
	normalized := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized
}
