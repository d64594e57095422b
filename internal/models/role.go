package models

// Role is a canonical role label carried in tokens and sessions.
type Role string

const (
	RoleNone           Role = ""
	RoleSuperAdmin     Role = "Super Admin"
	RoleAdministrateur Role = "Administrateur"
	RoleSuperviseur    Role = "Superviseur"
	RoleCompany        Role = "Company"
)

// Stored admin profiles and legacy labels still found in older tokens.
const (
	ProfileAdmin        = "Admin"
	ProfileSuperviseur  = "Superviseur"
	ProfileSuperAdmin   = "Super Admin"
	LegacyRoleCompagnie = "Compagnie"
)

// Permission names issued inside tokens.
const (
	PermManageAdmins     = "manage_admins"
	PermCreateCompany    = "create_company"
	PermViewStats        = "view_stats"
	PermViewCompanies    = "view_companies"
	PermAllAccess        = "all_access"
	PermViewOwnDashboard = "view_own_dashboard"
)

// PrincipalKind tags a session as belonging to an admin or a company.
type PrincipalKind string

const (
	PrincipalAdmin   PrincipalKind = "admin"
	PrincipalCompany PrincipalKind = "company"
)

// Operational status values. Archived is tracked separately.
const (
	StatusActive   = "Actif"
	StatusInactive = "Inactif"
)
