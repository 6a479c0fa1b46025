package guard

import (
	"fmt"
	"strings"

	"github.com/uleam/vehicle-gate/internal/rbac"
)

// Well-known paths.
const (
	PathRoot      = "/"
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
)

// Meta holds the requirements a route declares.
type Meta struct {
	RequiresAuth bool
	Permission   string
}

// Route is one entry of the route table. A route with Redirect set has no
// view and forwards navigation to Redirect.
type Route struct {
	Path     string
	Name     string
	View     string
	Meta     Meta
	Redirect string
}

// IsRedirect reports whether the route only forwards navigation.
func (r Route) IsRedirect() bool {
	return r.Redirect != ""
}

// Table resolves request paths to routes. Paths with no declared route
// resolve to a redirect to the fallback path.
type Table struct {
	routes   []Route
	byPath   map[string]Route
	fallback string
}

// NewTable validates routes and builds a Table.
func NewTable(routes []Route, fallback string) (*Table, error) {
	byPath := make(map[string]Route, len(routes))
	names := make(map[string]struct{}, len(routes))
	for _, rt := range routes {
		path := normalizePath(rt.Path)
		if _, dup := byPath[path]; dup {
			return nil, fmt.Errorf("guard: duplicate route path %q", path)
		}
		if !rt.IsRedirect() {
			if rt.Name == "" || rt.View == "" {
				return nil, fmt.Errorf("guard: route %q needs a name and a view", path)
			}
			if _, dup := names[rt.Name]; dup {
				return nil, fmt.Errorf("guard: duplicate route name %q", rt.Name)
			}
			names[rt.Name] = struct{}{}
		}
		rt.Path = path
		byPath[path] = rt
	}
	if _, ok := byPath[normalizePath(fallback)]; !ok {
		return nil, fmt.Errorf("guard: fallback %q is not a declared route", fallback)
	}
	out := make([]Route, 0, len(routes))
	for _, rt := range routes {
		out = append(out, byPath[normalizePath(rt.Path)])
	}
	return &Table{routes: out, byPath: byPath, fallback: normalizePath(fallback)}, nil
}

// DefaultRoutes returns the route table of the vehicle registry.
func DefaultRoutes() []Route {
	view := func(path, name string, perm string) Route {
		return Route{
			Path: path,
			Name: name,
			View: "pages/section.html",
			Meta: Meta{RequiresAuth: true, Permission: perm},
		}
	}
	dashboard := view(PathDashboard, "Dashboard", rbac.PermDashboard)
	dashboard.View = "pages/dashboard.html"
	return []Route{
		{Path: PathRoot, Redirect: PathLogin},
		{Path: PathLogin, Name: "Login", View: "pages/login.html", Meta: Meta{RequiresAuth: false}},
		dashboard,
		view("/registro-ingreso", "RegistroIngreso", rbac.PermEntryRecord),
		view("/registro-salida", "RegistroSalida", rbac.PermExitRecord),
		view("/consulta-ingresos", "ConsultaIngresos", rbac.PermEntryQuery),
		view("/vehiculos-registrados", "VehiculosRegistrados", rbac.PermRegisteredVehicles),
		view("/gestion-usuarios", "GestionUsuarios", rbac.PermUserManagement),
		view("/reportes", "Reportes", rbac.PermReports),
	}
}

// MustDefaultTable builds the default table, panicking on a broken declaration.
func MustDefaultTable() *Table {
	t, err := NewTable(DefaultRoutes(), PathDashboard)
	if err != nil {
		panic(err)
	}
	return t
}

// Resolve returns the route for path. Unknown paths yield a redirect to the
// fallback route.
func (t *Table) Resolve(path string) Route {
	path = normalizePath(path)
	if rt, ok := t.byPath[path]; ok {
		return rt
	}
	return Route{Path: path, Redirect: t.fallback}
}

// Lookup returns the declared route for path.
func (t *Table) Lookup(path string) (Route, bool) {
	rt, ok := t.byPath[normalizePath(path)]
	return rt, ok
}

// Views returns the routes that render a view, in declaration order.
func (t *Table) Views() []Route {
	out := make([]Route, 0, len(t.routes))
	for _, rt := range t.routes {
		if !rt.IsRedirect() {
			out = append(out, rt)
		}
	}
	return out
}

func normalizePath(path string) string {
	if path == "" {
		return PathRoot
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = PathRoot
		}
	}
	return path
}
