// Package pages renders the views behind the navigation guard.
package pages

import (
	"log/slog"
	"net/http"

	"github.com/uleam/vehicle-gate/internal/auth"
	"github.com/uleam/vehicle-gate/internal/guard"
	"github.com/uleam/vehicle-gate/internal/shared"
	"github.com/uleam/vehicle-gate/internal/view"
)

// Handler renders the route the guard allowed.
type Handler struct {
	logger    *slog.Logger
	templates *view.Engine
	csrf      *shared.CSRFManager
	table     *guard.Table
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, table *guard.Table) *Handler {
	return &Handler{logger: logger, templates: templates, csrf: csrf, table: table}
}

// ServeHTTP renders the route stored in context by the guard middleware.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt, ok := guard.RouteFromContext(r.Context())
	if !ok {
		http.NotFound(w, r)
		return
	}
	svc := auth.ServiceFromContext(r.Context())
	data := h.baseData(r, rt, svc)

	if rt.Path == guard.PathDashboard && svc != nil {
		stats, err := LoadStats(r.Context(), svc.Store())
		if err != nil {
			h.logger.Error("load dashboard stats", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		data.Data = stats
	}

	if err := h.templates.Render(w, rt.View, data); err != nil {
		h.logger.Error("render view", slog.String("view", rt.View), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) baseData(r *http.Request, rt guard.Route, svc *auth.Service) view.TemplateData {
	csrfToken, _ := h.csrf.Token(shared.ProfileFromContext(r.Context()))
	data := view.TemplateData{
		Title:       view.Label(rt.Path),
		CSRFToken:   csrfToken,
		CurrentPath: rt.Path,
	}
	if rt.Path == guard.PathLogin {
		data.Title = "Iniciar sesión"
	}
	if svc == nil {
		return data
	}
	if n := svc.Notification(); n.Visible {
		data.Flash = &shared.FlashMessage{Kind: string(n.Severity), Message: n.Message}
	}
	if sess := svc.CurrentSession(); sess != nil {
		data.User = sess.Username
		data.Role = sess.Role.String()
		data.Nav = Menu(h.table, svc, rt.Path)
	}
	return data
}

// Menu lists the authenticated views the session may open, in route order.
func Menu(table *guard.Table, checker interface{ HasPermission(string) bool }, current string) []view.NavItem {
	var items []view.NavItem
	for _, rt := range table.Views() {
		if !rt.Meta.RequiresAuth {
			continue
		}
		if rt.Meta.Permission != "" && !checker.HasPermission(rt.Meta.Permission) {
			continue
		}
		items = append(items, view.NavItem{Path: rt.Path, Name: view.Label(rt.Path), Active: rt.Path == current})
	}
	return items
}
