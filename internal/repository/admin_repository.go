package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/assa-portal-api/internal/models"
)

const adminColumns = `id, email, password_hash, nom_complet, profile, id_companie, status, archived, last_login, created_at, updated_at`

// AdminRepository provides database access for admin principals.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository creates a new instance of AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByEmail returns an admin by email, archived rows included. Matching is case-insensitive.
func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE LOWER(email) = LOWER($1) LIMIT 1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, strings.TrimSpace(email)); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by email: %w", err)
	}
	return &admin, nil
}

// FindByID returns an admin by identifier.
func (r *AdminRepository) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1 LIMIT 1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by id: %w", err)
	}
	return &admin, nil
}

// FindSuperAdmin returns the single super admin row if it exists.
func (r *AdminRepository) FindSuperAdmin(ctx context.Context) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE profile = $1 ORDER BY created_at ASC LIMIT 1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, models.ProfileSuperAdmin); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find super admin: %w", err)
	}
	return &admin, nil
}

// List returns admins filtered by archived flag, newest first.
func (r *AdminRepository) List(ctx context.Context, archived bool) ([]models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE archived = $1 ORDER BY created_at DESC`
	var admins []models.Admin
	if err := r.db.SelectContext(ctx, &admins, query, archived); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// ListActiveByCompany returns non-archived admins linked to a company.
func (r *AdminRepository) ListActiveByCompany(ctx context.Context, companyID string) ([]models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id_companie = $1 AND archived = FALSE ORDER BY created_at ASC`
	var admins []models.Admin
	if err := r.db.SelectContext(ctx, &admins, query, companyID); err != nil {
		return nil, fmt.Errorf("list admins by company: %w", err)
	}
	return admins, nil
}

// Create inserts a new admin. A unique violation is reported as ErrDuplicate.
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = now
	}
	admin.UpdatedAt = now
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))

	const query = `INSERT INTO admins (id, email, password_hash, nom_complet, profile, id_companie, status, archived, created_at, updated_at) VALUES (:id, :email, :password_hash, :nom_complet, :profile, :id_companie, :status, :archived, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, admin); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// UpdateStatus sets the operational status flag.
func (r *AdminRepository) UpdateStatus(ctx context.Context, id, status string) error {
	const query = `UPDATE admins SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update admin status: %w", err)
	}
	return nil
}

// UpdateLastLogin stamps last_login.
func (r *AdminRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE admins SET last_login = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("update admin last login: %w", err)
	}
	return nil
}

// UpdatePassword updates the stored password hash.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE admins SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, time.Now().UTC()); err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	return nil
}

// LinkCompany scopes an admin to a company.
func (r *AdminRepository) LinkCompany(ctx context.Context, id, companyID string) error {
	const query = `UPDATE admins SET id_companie = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, companyID, time.Now().UTC()); err != nil {
		return fmt.Errorf("link admin company: %w", err)
	}
	return nil
}

// SetArchived flips the archived flag. It reports sql.ErrNoRows when the admin does not exist.
func (r *AdminRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	const query = `UPDATE admins SET archived = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, archived, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set admin archived: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
