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

const companyColumns = `id, company_name, representative_name, email, phone_number, full_address, country, city, airport_code, logo_url, status, archived, password_hash, otp_hash, otp_expiry, temp_password_hash, last_login, created_at, updated_at`

// CompanyRepository provides database access for company principals.
type CompanyRepository struct {
	db *sqlx.DB
}

// NewCompanyRepository creates a new instance of CompanyRepository.
func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// FindByEmail returns a company by email. Matching is case-insensitive.
func (r *CompanyRepository) FindByEmail(ctx context.Context, email string) (*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE LOWER(email) = LOWER($1) LIMIT 1`
	var company models.Company
	if err := r.db.GetContext(ctx, &company, query, strings.TrimSpace(email)); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find company by email: %w", err)
	}
	return &company, nil
}

// FindByID returns a company by identifier.
func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1 LIMIT 1`
	var company models.Company
	if err := r.db.GetContext(ctx, &company, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find company by id: %w", err)
	}
	return &company, nil
}

// List returns companies filtered by archived flag, newest first.
func (r *CompanyRepository) List(ctx context.Context, archived bool) ([]models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE archived = $1 ORDER BY created_at DESC`
	var companies []models.Company
	if err := r.db.SelectContext(ctx, &companies, query, archived); err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

// Create inserts a new company. A unique violation is reported as ErrDuplicate.
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	if company.ID == "" {
		company.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if company.CreatedAt.IsZero() {
		company.CreatedAt = now
	}
	company.UpdatedAt = now
	company.Email = strings.ToLower(strings.TrimSpace(company.Email))

	const query = `INSERT INTO companies (id, company_name, representative_name, email, phone_number, full_address, country, city, airport_code, logo_url, status, archived, created_at, updated_at) VALUES (:id, :company_name, :representative_name, :email, :phone_number, :full_address, :country, :city, :airport_code, :logo_url, :status, :archived, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, company); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create company: %w", err)
	}
	return nil
}

// Update writes the editable profile columns. It reports sql.ErrNoRows when the
// company does not exist and ErrDuplicate when the new email is taken.
func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	company.UpdatedAt = time.Now().UTC()
	company.Email = strings.ToLower(strings.TrimSpace(company.Email))

	const query = `UPDATE companies SET company_name = :company_name, representative_name = :representative_name, email = :email, phone_number = :phone_number, full_address = :full_address, country = :country, city = :city, airport_code = :airport_code, logo_url = :logo_url, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, company)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update company: %w", err)
	}
	return expectOneRow(res)
}

// SaveOTPChallenge stores a fresh OTP challenge. Only a company that never set
// a permanent password is moved back to inactive.
func (r *CompanyRepository) SaveOTPChallenge(ctx context.Context, challenge models.OTPChallenge) error {
	const query = `UPDATE companies SET otp_hash = $2, otp_expiry = $3, temp_password_hash = $4, status = CASE WHEN password_hash IS NULL THEN $5 ELSE status END, updated_at = $6 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, challenge.CompanyID, challenge.OTPHash, challenge.Expiry, challenge.TempPasswordHash, models.StatusInactive, time.Now().UTC()); err != nil {
		return fmt.Errorf("save otp challenge: %w", err)
	}
	return nil
}

// CompleteOTP sets the permanent password and clears the challenge. The update only
// applies while the challenge hash still matches, so a code is consumed at most once.
func (r *CompanyRepository) CompleteOTP(ctx context.Context, id, otpHash, passwordHash string, ts time.Time) error {
	const query = `UPDATE companies SET password_hash = $3, otp_hash = NULL, otp_expiry = NULL, temp_password_hash = NULL, status = $4, last_login = $5, updated_at = $5 WHERE id = $1 AND otp_hash = $2`
	res, err := r.db.ExecContext(ctx, query, id, otpHash, passwordHash, models.StatusActive, ts)
	if err != nil {
		return fmt.Errorf("complete otp: %w", err)
	}
	return expectOneRow(res)
}

// UpdateLastLogin stamps last_login.
func (r *CompanyRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE companies SET last_login = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("update company last login: %w", err)
	}
	return nil
}

// UpdatePassword updates the stored password hash.
func (r *CompanyRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE companies SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, time.Now().UTC()); err != nil {
		return fmt.Errorf("update company password: %w", err)
	}
	return nil
}

// SetArchived flips the archived flag. It reports sql.ErrNoRows when the company does not exist.
func (r *CompanyRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	const query = `UPDATE companies SET archived = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, archived, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set company archived: %w", err)
	}
	return expectOneRow(res)
}
