package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionsForEveryRoleIsNonEmptyAndStable(t *testing.T) {
	for _, role := range Roles() {
		first := PermissionsFor(role)
		require.NotEmpty(t, first, role)
		assert.Equal(t, first, PermissionsFor(role), role)
	}
}

func TestPermissionsForReturnsCopy(t *testing.T) {
	perms := PermissionsFor(RoleGuard)
	perms[0] = "tampered"
	assert.Equal(t, "dashboard", PermissionsFor(RoleGuard)[0])
}

func TestPermissionsForUnknownRole(t *testing.T) {
	perms := PermissionsFor(Role("VISITANTE"))
	require.NotNil(t, perms)
	assert.Empty(t, perms)
}

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"ADMINISTRADOR": RoleAdmin,
		"admin":         RoleAdmin,
		" supervisor ":  RoleSupervisor,
		"GUARDIA":       RoleGuard,
		"guard":         RoleGuard,
	}
	for raw, want := range cases {
		got, ok := ParseRole(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got)
	}
	_, ok := ParseRole("root")
	assert.False(t, ok)
}

func TestMatches(t *testing.T) {
	cases := []struct {
		granted, requested string
		want               bool
	}{
		{"dashboard", "dashboard", true},
		{"vehiculos-registrados-r", "vehiculos-rw", true},
		{"vehiculos-rw", "vehiculos-registrados", true},
		{"reportes-limitado", "reportes-full", true},
		{"reportes", "reportes-full", true},
		{"consulta-ingresos-limitado", "consulta-ingresos", true},
		{"registro-ingreso", "registro-salida", true},
		{"dashboard", "vehiculos-rw", false},
		{"reportes-limitado", "gestion-usuarios", false},
		{"dash", "dashboard", true},
		{"dashboard", "dash-x", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Matches(tc.granted, tc.requested), "%s vs %s", tc.granted, tc.requested)
	}
}

func TestGranted(t *testing.T) {
	assert.True(t, Granted([]string{"vehiculos-registrados-r"}, "vehiculos-rw"))
	assert.False(t, Granted([]string{"dashboard"}, "vehiculos-rw"))
	assert.False(t, Granted(nil, "dashboard"))
	assert.False(t, Granted(PermissionsFor(RoleGuard), PermUserManagement))
	assert.True(t, Granted(PermissionsFor(RoleSupervisor), PermUserManagement))
}

func TestServiceListPermissionsDistinctSorted(t *testing.T) {
	perms := NewService().ListPermissions()
	require.NotEmpty(t, perms)
	seen := map[string]bool{}
	for i, p := range perms {
		assert.False(t, seen[p], p)
		seen[p] = true
		if i > 0 {
			assert.Less(t, perms[i-1], p)
		}
	}
	assert.True(t, seen["vehiculos-full"])
}

type fakeChecker struct {
	authed bool
	perms  []string
}

func (f fakeChecker) IsAuthenticated() bool { return f.authed }

func (f fakeChecker) HasPermission(token string) bool {
	return f.authed && Granted(f.perms, token)
}

func TestMiddlewareRequireAny(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	serve := func(c Checker) int {
		mw := Middleware{Lookup: func(*http.Request) Checker { return c }}
		rr := httptest.NewRecorder()
		mw.RequireAny(PermUserManagement)(ok).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/roles", nil))
		return rr.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(nil))
	assert.Equal(t, http.StatusUnauthorized, serve(fakeChecker{}))
	assert.Equal(t, http.StatusForbidden, serve(fakeChecker{authed: true, perms: PermissionsFor(RoleGuard)}))
	assert.Equal(t, http.StatusNoContent, serve(fakeChecker{authed: true, perms: PermissionsFor(RoleAdmin)}))
}
