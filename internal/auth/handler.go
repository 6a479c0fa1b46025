package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/uleam/vehicle-gate/internal/shared"
	"github.com/uleam/vehicle-gate/internal/view"
)

// Form paths used after a login attempt.
const (
	loginPath     = "/login"
	dashboardPath = "/dashboard"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger      *slog.Logger
	templates   *view.Engine
	csrfManager *shared.CSRFManager
	validator   *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:      logger,
		templates:   templates,
		csrfManager: csrf,
		validator:   validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Identifier string `validate:"required"`
	Password   string `validate:"required"`
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	svc := ServiceFromContext(r.Context())
	if svc == nil {
		h.logger.Error("profile service missing during login")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	form := loginForm{
		Identifier: strings.TrimSpace(r.PostFormValue("identifier")),
		Password:   r.PostFormValue("password"),
	}
	errors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errors[fieldErr.Field()] = fieldErr.Error()
		}
		errors["general"] = "Ingrese usuario y contraseña"
	}

	if len(errors) == 0 {
		ok, err := svc.Login(r.Context(), form.Identifier, form.Password)
		switch {
		case err != nil:
			h.logger.Error("login storage failure", slog.Any("error", err))
			errors["general"] = "No se pudo iniciar sesión. Intente nuevamente"
		case !ok:
			errors["general"] = "Usuario o contraseña incorrectos"
		default:
			svc.ShowNotification("Bienvenido, "+svc.CurrentSession().Username, SeveritySuccess, 0)
			http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
			return
		}
	}

	csrfToken, _ := h.csrfManager.Token(shared.ProfileFromContext(r.Context()))
	viewData := view.TemplateData{
		Title:       "Iniciar sesión",
		CSRFToken:   csrfToken,
		CurrentPath: loginPath,
		Data:        loginPageData{Form: loginForm{Identifier: form.Identifier}, Errors: errors},
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	if err := h.templates.Render(w, "pages/login.html", viewData); err != nil {
		h.logger.Error("render login invalid", slog.Any("error", err))
	}
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if svc := ServiceFromContext(r.Context()); svc != nil {
		if err := svc.Logout(r.Context()); err != nil {
			h.logger.Warn("logout", slog.Any("error", err))
		}
	}
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}
