package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/uleam/vehicle-gate/internal/platform/httpx"
)

// API exposes the profile's session state as JSON.
type API struct{}

// NewAPI builds an API instance.
func NewAPI() *API {
	return &API{}
}

// MountRoutes registers the session endpoints.
func (a *API) MountRoutes(r chi.Router) {
	r.Get("/session", a.session)
	r.Get("/permissions/{token}", a.permission)
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	Session       *Session     `json:"session,omitempty"`
	Notification  Notification `json:"notification"`
}

func (a *API) session(w http.ResponseWriter, r *http.Request) {
	svc := ServiceFromContext(r.Context())
	if svc == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	if !svc.IsAuthenticated() {
		if _, err := svc.CheckSession(r.Context()); err != nil {
			httpx.RespondError(w, err)
			return
		}
	}
	sess := svc.CurrentSession()
	if sess == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	httpx.JSON(w, http.StatusOK, sessionResponse{
		Authenticated: true,
		Session:       sess,
		Notification:  svc.Notification(),
	})
}

func (a *API) permission(w http.ResponseWriter, r *http.Request) {
	svc := ServiceFromContext(r.Context())
	if svc == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	token := strings.TrimSpace(chi.URLParam(r, "token"))
	if token == "" {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"permission": token,
		"granted":    svc.HasPermission(token),
	})
}
