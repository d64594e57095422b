package models

import "time"

// SystemOnlyPassword marks a credential that can never match a submitted password.
const SystemOnlyPassword = "SYSTEM_ONLY"

// Admin is a staff principal stored in the admins table.
type Admin struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"nom_complet" json:"nom_complet"`
	Profile      string     `db:"profile" json:"profile"`
	CompanyID    *string    `db:"id_companie" json:"id_companie"`
	Status       string     `db:"status" json:"status"`
	Archived     bool       `db:"archived" json:"archived"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// AdminLoginRequest carries admin credentials.
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SuperAdminLoginRequest drives the bootstrap flow. Email and FullName are only
// required when no super admin exists yet.
type SuperAdminLoginRequest struct {
	SuperSecret string `json:"super_secret" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
	FullName    string `json:"nom_complet"`
}

// CreateAdminRequest is submitted by the super admin.
type CreateAdminRequest struct {
	FullName  string  `json:"nom_complet" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=6"`
	Profile   string  `json:"profile" validate:"required,oneof=Admin Superviseur"`
	CompanyID *string `json:"id_companie"`
}

// ChangePasswordRequest is shared by admins and companies.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}
