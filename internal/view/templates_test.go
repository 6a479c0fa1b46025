package view

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uleam/vehicle-gate/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Registro Ingreso", Label("/registro-ingreso"))
	assert.Equal(t, "Dashboard", Label("dashboard"))
}

func TestRenderShowsFlashAndNav(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	err = engine.Render(rr, "pages/dashboard.html", TemplateData{
		Title: "Dashboard",
		Flash: &shared.FlashMessage{Kind: "error", Message: "Acceso denegado. No tiene permiso para: gestion-usuarios"},
		User:  "Guardia Principal",
		Nav:   []NavItem{{Path: "/dashboard", Name: "Dashboard", Active: true}, {Path: "/reportes", Name: "Reportes"}},
		Data:  map[string]any{"Capacity": 500, "Vehicles": 2, "Entries": 0},
	})
	require.NoError(t, err)
	body := rr.Body.String()
	assert.Contains(t, body, "Acceso denegado")
	assert.Contains(t, body, `href="/reportes"`)
	assert.Contains(t, body, "Guardia Principal")
	assert.Contains(t, body, "500")
}
