package rbac

import "strings"

// table is built once at start and never mutated; lookups hand out copies.
var table = map[Role][]string{
	RoleAdmin: {
		"dashboard", "registro-ingreso", "registro-salida", "consulta-ingresos",
		"gestion-usuarios", "reportes", "vehiculos-registrados-r",
		"vehiculos-registrados-rw", "vehiculos-full",
	},
	RoleSupervisor: {
		"dashboard", "registro-ingreso", "registro-salida", "consulta-ingresos-full",
		"gestion-usuarios-full", "reportes-full", "vehiculos-registrados-r", "vehiculos-rw",
	},
	RoleGuard: {
		"dashboard", "registro-ingreso", "registro-salida", "consulta-ingresos-limitado",
		"reportes-limitado", "vehiculos-registrados-r",
	},
}

// PermissionsFor returns the tokens granted to role. Unknown roles yield an
// empty, non-nil slice.
func PermissionsFor(role Role) []string {
	perms, ok := table[role]
	if !ok {
		return []string{}
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// Matches reports whether a granted token satisfies a requested one.
//
// Tokens are compared on their head, the text before the first '-': the
// request is satisfied when the tokens are equal, when granted starts with the
// request's head, or when the request starts with granted's head. This means
// "reportes-limitado" satisfies "reportes-full".
func Matches(granted, requested string) bool {
	if granted == requested {
		return true
	}
	return strings.HasPrefix(granted, head(requested)) || strings.HasPrefix(requested, head(granted))
}

// Granted reports whether any token in perms matches requested.
func Granted(perms []string, requested string) bool {
	for _, p := range perms {
		if Matches(p, requested) {
			return true
		}
	}
	return false
}

func head(token string) string {
	if idx := strings.IndexByte(token, '-'); idx >= 0 {
		return token[:idx]
	}
	return token
}
