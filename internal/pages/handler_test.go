package pages

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/uleam/vehicle-gate/internal/auth"
	"github.com/uleam/vehicle-gate/internal/guard"
	"github.com/uleam/vehicle-gate/internal/shared"
	"github.com/uleam/vehicle-gate/internal/storage"
	"github.com/uleam/vehicle-gate/internal/view"
)

func newService(t *testing.T) *auth.Service {
	t.Helper()
	svc := auth.NewService(storage.NewMemory().Profile("p1"), auth.WithBcryptCost(bcrypt.MinCost))
	t.Cleanup(svc.Close)
	require.NoError(t, svc.InitializeSeedData(context.Background()))
	return svc
}

func newPages(t *testing.T, svc *auth.Service) http.Handler {
	t.Helper()
	engine, err := view.NewEngine()
	require.NoError(t, err)
	g := guard.New(guard.MustDefaultTable(), guard.Config{ShowPermission: true})
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), engine, shared.NewCSRFManager("secret"), g.Table())

	guarded := g.Middleware(func(*http.Request) guard.Session { return svc })(h)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.ContextWithProfile(r.Context(), "p1")
		guarded.ServeHTTP(w, r.WithContext(auth.ContextWithService(ctx, svc)))
	})
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestLoginPageRendersForAnonymous(t *testing.T) {
	h := newPages(t, newService(t))

	rr := get(h, "/login")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `action="/auth/login"`)
	assert.NotContains(t, rr.Body.String(), "Cerrar sesión")
}

func TestDashboardShowsStatsAndMenu(t *testing.T) {
	svc := newService(t)
	ok, err := svc.Login(context.Background(), "guardia", "guardia12345")
	require.NoError(t, err)
	require.True(t, ok)
	h := newPages(t, svc)

	rr := get(h, "/dashboard")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "500")
	assert.Contains(t, body, "Guardia Principal")
	assert.Contains(t, body, `href="/reportes"`)
	assert.NotContains(t, body, `href="/gestion-usuarios"`)
}

func TestDeniedNavigationFlashesOnDashboard(t *testing.T) {
	svc := newService(t)
	ok, err := svc.Login(context.Background(), "guardia", "guardia12345")
	require.NoError(t, err)
	require.True(t, ok)
	h := newPages(t, svc)

	rr := get(h, "/gestion-usuarios")
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, guard.PathDashboard, rr.Header().Get("Location"))

	rr = get(h, "/dashboard")
	assert.Contains(t, rr.Body.String(), "No tiene permiso para: gestion-usuarios")
}

func TestMenuFollowsPermissions(t *testing.T) {
	svc := newService(t)
	ok, err := svc.Login(context.Background(), "admin", "admin12345")
	require.NoError(t, err)
	require.True(t, ok)

	items := Menu(guard.MustDefaultTable(), svc, "/reportes")
	paths := make([]string, 0, len(items))
	for _, it := range items {
		paths = append(paths, it.Path)
		assert.Equal(t, it.Path == "/reportes", it.Active)
	}
	assert.Equal(t, []string{"/dashboard", "/registro-ingreso", "/registro-salida", "/consulta-ingresos", "/vehiculos-registrados", "/gestion-usuarios", "/reportes"}, paths)
}

func TestLoadStatsToleratesMalformedData(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory().Profile("p1")
	require.NoError(t, store.Set(ctx, storage.KeyMaxCapacity, "abc"))
	require.NoError(t, store.Set(ctx, storage.KeyVehicles, `[{"id":1},{"id":2},{"id":3}]`))
	require.NoError(t, store.Set(ctx, storage.KeyEntries, `{`))

	stats, err := LoadStats(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, Stats{Capacity: 0, Vehicles: 3, Entries: 0}, stats)
}
