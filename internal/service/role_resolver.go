package service

import (
	"crypto/subtle"
	"strings"

	"github.com/noah-isme/assa-portal-api/internal/models"
)

// adminTierLevel is the minimum level granted when a route names no roles.
const adminTierLevel = 2

// RoleTable holds the immutable role data the resolver consults.
type RoleTable struct {
	Aliases     map[string]models.Role
	Levels      map[models.Role]int
	Permissions map[models.Role][]string
}

// DefaultRoleTable returns the production alias, hierarchy and permission tables.
func DefaultRoleTable() RoleTable {
	return RoleTable{
		Aliases: map[string]models.Role{
			"super admin":     models.RoleSuperAdmin,
			"superadmin":      models.RoleSuperAdmin,
			"super_admin":     models.RoleSuperAdmin,
			"super_directeur": models.RoleSuperAdmin,
			"administrateur":  models.RoleAdministrateur,
			"admin":           models.RoleAdministrateur,
			"superviseur":     models.RoleSuperviseur,
			"company":         models.RoleCompany,
			"compagnie":       models.RoleCompany,
		},
		Levels: map[models.Role]int{
			models.RoleSuperAdmin:     4,
			models.RoleAdministrateur: 3,
			models.RoleSuperviseur:    2,
			models.RoleCompany:        1,
		},
		Permissions: map[models.Role][]string{
			models.RoleSuperAdmin: {
				models.PermManageAdmins, models.PermCreateCompany, models.PermViewStats, models.PermAllAccess,
			},
			models.RoleAdministrateur: {
				models.PermManageAdmins, models.PermCreateCompany, models.PermViewStats,
			},
			models.RoleSuperviseur: {
				models.PermViewCompanies, models.PermViewStats,
			},
			models.RoleCompany: {
				models.PermViewOwnDashboard,
			},
		},
	}
}

// ElevationSecret maps a special login password to the role it grants.
type ElevationSecret struct {
	Password string
	Role     models.Role
}

// RoleResolver maps stored profiles and token roles to canonical roles,
// permissions and authorization decisions.
type RoleResolver struct {
	table     RoleTable
	elevation []ElevationSecret
}

// NewRoleResolver copies the provided tables so later mutation by the caller has no effect.
// Elevation entries with an empty password are ignored.
func NewRoleResolver(table RoleTable, elevation ...ElevationSecret) *RoleResolver {
	cloned := RoleTable{
		Aliases:     make(map[string]models.Role, len(table.Aliases)),
		Levels:      make(map[models.Role]int, len(table.Levels)),
		Permissions: make(map[models.Role][]string, len(table.Permissions)),
	}
	for alias, role := range table.Aliases {
		cloned.Aliases[strings.ToLower(strings.TrimSpace(alias))] = role
	}
	for role, level := range table.Levels {
		cloned.Levels[role] = level
	}
	for role, perms := range table.Permissions {
		cloned.Permissions[role] = append([]string(nil), perms...)
	}

	secrets := make([]ElevationSecret, 0, len(elevation))
	for _, e := range elevation {
		if e.Password != "" {
			secrets = append(secrets, e)
		}
	}
	return &RoleResolver{table: cloned, elevation: secrets}
}

// ResolveLoginRole returns the role a successful admin login should carry.
func (r *RoleResolver) ResolveLoginRole(storedProfile, submittedPassword string) models.Role {
	if role, ok := r.elevatedRoleForPassword(submittedPassword); ok {
		return role
	}
	return r.NormalizeRole(storedProfile)
}

// elevatedRoleForPassword is the only place where a password can override a stored profile.
func (r *RoleResolver) elevatedRoleForPassword(password string) (models.Role, bool) {
	for _, e := range r.elevation {
		if subtle.ConstantTimeCompare([]byte(e.Password), []byte(password)) == 1 {
			return e.Role, true
		}
	}
	return models.RoleNone, false
}

// PermissionsFor returns a fresh copy of the role's permissions, empty for unknown roles.
func (r *RoleResolver) PermissionsFor(role models.Role) []string {
	perms := r.table.Permissions[role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// NormalizeRole maps a raw label to its canonical role. Unknown labels map to RoleNone.
func (r *RoleResolver) NormalizeRole(raw string) models.Role {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return models.RoleNone
	}
	if role, ok := r.table.Aliases[key]; ok {
		return role
	}
	return models.RoleNone
}

// Level returns the hierarchy level of a raw role label, zero when unknown.
func (r *RoleResolver) Level(raw string) int {
	return r.table.Levels[r.NormalizeRole(raw)]
}

// Authorize reports whether principalRole satisfies any of the required roles.
// With no required roles the principal must be at least a Superviseur.
func (r *RoleResolver) Authorize(principalRole string, required ...string) bool {
	level := r.Level(principalRole)
	if level == 0 {
		return false
	}
	if len(required) == 0 {
		return level >= adminTierLevel
	}
	for _, req := range required {
		needed := r.Level(req)
		if needed > 0 && level >= needed {
			return true
		}
	}
	return false
}
