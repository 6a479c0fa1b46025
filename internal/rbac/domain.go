package rbac

import "strings"

// Role represents a high-level permission grouping. The set is closed.
type Role string

// Roles known to the gate. Values are the strings persisted in profile storage.
const (
	RoleAdmin      Role = "ADMINISTRADOR"
	RoleSupervisor Role = "SUPERVISOR"
	RoleGuard      Role = "GUARDIA"
)

// Permission tokens declared by routes and granted to roles.
const (
	PermDashboard          = "dashboard"
	PermEntryRecord        = "registro-ingreso"
	PermExitRecord         = "registro-salida"
	PermEntryQuery         = "consulta-ingresos"
	PermRegisteredVehicles = "vehiculos-registrados"
	PermUserManagement     = "gestion-usuarios"
	PermReports            = "reportes"
)

var allRoles = []Role{RoleAdmin, RoleSupervisor, RoleGuard}

// Roles lists every role in declaration order.
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// ParseRole maps a stored or user-supplied name onto a Role.
func ParseRole(raw string) (Role, bool) {
	candidate := Role(strings.ToUpper(strings.TrimSpace(raw)))
	switch candidate {
	case "ADMIN":
		return RoleAdmin, true
	case "GUARD":
		return RoleGuard, true
	}
	if candidate.Valid() {
		return candidate, true
	}
	return "", false
}

// Valid reports whether r is one of the closed set.
func (r Role) Valid() bool {
	for _, known := range allRoles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
