package rbac

import "sort"

// RoleGrant pairs a role with the tokens it is granted.
type RoleGrant struct {
	Role        Role     `json:"role"`
	Permissions []string `json:"permissions"`
}

// Service exposes read-only views over the static permission table.
type Service struct{}

// NewService constructs a Service.
func NewService() *Service {
	return &Service{}
}

// ListRoles returns every role with a copy of its grants.
func (s *Service) ListRoles() []RoleGrant {
	roles := Roles()
	grants := make([]RoleGrant, 0, len(roles))
	for _, role := range roles {
		grants = append(grants, RoleGrant{Role: role, Permissions: PermissionsFor(role)})
	}
	return grants
}

// ListPermissions returns the distinct tokens across all roles, sorted.
func (s *Service) ListPermissions() []string {
	unique := make(map[string]struct{})
	for _, role := range Roles() {
		for _, p := range table[role] {
			unique[p] = struct{}{}
		}
	}
	perms := make([]string, 0, len(unique))
	for p := range unique {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms
}

// Check evaluates requested against the grants of role.
func (s *Service) Check(role Role, requested string) bool {
	return Granted(table[role], requested)
}
