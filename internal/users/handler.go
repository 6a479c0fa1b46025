package users

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/uleam/vehicle-gate/internal/auth"
	"github.com/uleam/vehicle-gate/internal/platform/httpx"
	"github.com/uleam/vehicle-gate/internal/rbac"
	"github.com/uleam/vehicle-gate/internal/shared"
)

type listResponse struct {
	Users      []User            `json:"users"`
	Pagination shared.Pagination `json:"pagination"`
}

// Handler manages user management endpoints. Users live in each profile's
// storage, so the service is built per request.
type Handler struct {
	logger *slog.Logger
	rbac   rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, rbac: rbac}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermUserManagement))
		r.Get("/", h.listUsers)
		r.Get("/{id}", h.getUser)
	})
}

func (h *Handler) service(r *http.Request) (*Service, bool) {
	svc := auth.ServiceFromContext(r.Context())
	if svc == nil {
		return nil, false
	}
	return NewService(auth.NewRepository(svc.Store())), true
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	service, ok := h.service(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	users, err := service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	page := shared.PaginationFromRequest(r, len(users))
	start, end := page.Bounds()
	httpx.JSON(w, http.StatusOK, listResponse{Users: users[start:end], Pagination: page})
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	service, ok := h.service(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	user, err := service.GetUser(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
