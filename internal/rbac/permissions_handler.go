package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/uleam/vehicle-gate/internal/platform/httpx"
)

// PermissionsHandler exposes the role catalogue over JSON.
type PermissionsHandler struct {
	service *Service
	rbac    Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(service *Service, rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{service: service, rbac: rbac}
}

// MountRoutes registers catalogue routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(PermUserManagement))
		r.Get("/", h.listRoles)
		r.Get("/permissions", h.listPermissions)
	})
}

func (h *PermissionsHandler) listRoles(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": h.service.ListRoles()})
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": h.service.ListPermissions()})
}
