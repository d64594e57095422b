package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/assa-portal-api/internal/models"
	"github.com/noah-isme/assa-portal-api/internal/repository"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
)

type superAdminRepository interface {
	FindSuperAdmin(ctx context.Context) (*models.Admin, error)
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) error
}

// SuperAdminConfig holds the bootstrap secret.
type SuperAdminConfig struct {
	Secret       string
	StoreTimeout time.Duration
}

// SuperAdminService implements the bootstrap login and admin provisioning.
// The IP allow-list and rate limiter run in middleware before Bootstrap is reached.
type SuperAdminService struct {
	repo      superAdminRepository
	tokens    *TokenService
	roles     *RoleResolver
	journal   activityRecorder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    SuperAdminConfig
}

// NewSuperAdminService constructs the service.
func NewSuperAdminService(repo superAdminRepository, tokens *TokenService, roles *RoleResolver, journal activityRecorder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config SuperAdminConfig) *SuperAdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SuperAdminService{
		repo:      repo,
		tokens:    tokens,
		roles:     roles,
		journal:   recorderOrNoop(journal),
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
	}
}

// Bootstrap verifies the super secret and returns tokens for the single super
// admin, creating it with a system-only credential on first use.
func (s *SuperAdminService) Bootstrap(ctx context.Context, req models.SuperAdminLoginRequest) (*models.LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "super_secret is required")
	}
	if s.config.Secret == "" || subtle.ConstantTimeCompare([]byte(s.config.Secret), []byte(req.SuperSecret)) != 1 {
		s.metrics.ObserveAuthAttempt(flowSuperAdmin, OutcomeFailure)
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid super admin secret")
	}

	storeCtx, cancel := storeContext(ctx, s.config.StoreTimeout)
	defer cancel()

	admin, err := s.repo.FindSuperAdmin(storeCtx)
	switch {
	case err == nil:
	case isNotFound(err):
		admin, err = s.createSuperAdmin(storeCtx, req)
		if err != nil {
			return nil, err
		}
	default:
		s.logger.Error("super admin lookup failed", zap.Error(err))
		return nil, unavailable(err, "authentication temporarily unavailable")
	}

	if admin.Archived {
		s.metrics.ObserveAuthAttempt(flowSuperAdmin, OutcomeBlocked)
		return nil, appErrors.Clone(appErrors.ErrForbidden, "super admin account is archived")
	}

	claims := models.JWTClaims{
		PrincipalID: admin.ID,
		Email:       admin.Email,
		Role:        models.RoleSuperAdmin,
		FullName:    admin.FullName,
		Permissions: s.roles.PermissionsFor(models.RoleSuperAdmin),
	}
	resp, err := issueLoginResponse(s.tokens, claims, admin.Status)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveAuthAttempt(flowSuperAdmin, OutcomeSuccess)
	s.journal.Record(ctx, models.Activity{
		AdminID:     &admin.ID,
		Type:        "connexion",
		Category:    models.ActivityCategoryAuth,
		Module:      "super_admin",
		Description: "super admin login",
	})
	return resp, nil
}

func (s *SuperAdminService) createSuperAdmin(ctx context.Context, req models.SuperAdminLoginRequest) (*models.Admin, error) {
	email := normalizeEmail(req.Email)
	fullName := strings.TrimSpace(req.FullName)
	if email == "" || fullName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "email and nom_complet are required to create the super admin")
	}

	admin := &models.Admin{
		Email:        email,
		PasswordHash: models.SystemOnlyPassword,
		FullName:     fullName,
		Profile:      models.ProfileSuperAdmin,
		Status:       models.StatusActive,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, unavailable(err, "failed to create super admin")
		}
		// Another request won the race, or the email belongs to a regular admin.
		existing, findErr := s.repo.FindSuperAdmin(ctx)
		if findErr != nil {
			if isNotFound(findErr) {
				return nil, appErrors.Clone(appErrors.ErrConflict, "email already used by another admin")
			}
			return nil, unavailable(findErr, "failed to load super admin")
		}
		return existing, nil
	}

	s.logger.Info("super admin created", zap.String("admin_id", admin.ID))
	return admin, nil
}

// CreateAdmin provisions an Admin or Superviseur. Only a session whose role is
// exactly Super Admin may call it.
func (s *SuperAdminService) CreateAdmin(ctx context.Context, actor *models.Session, req models.CreateAdminRequest) (*models.Admin, error) {
	if actor == nil || actor.Role != models.RoleSuperAdmin {
		role := models.RoleNone
		if actor != nil {
			role = actor.Role
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the super admin can create admins (role: "+string(role)+")")
	}
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "nom_complet, email, password (min 6) and profile (Admin or Superviseur) are required")
	}

	storeCtx, cancel := storeContext(ctx, s.config.StoreTimeout)
	defer cancel()

	email := normalizeEmail(req.Email)
	if _, err := s.repo.FindByEmail(storeCtx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an admin with this email already exists")
	} else if !isNotFound(err) {
		return nil, unavailable(err, "failed to check admin email")
	}

	hash, err := hashSecret(req.Password)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to hash password")
	}

	admin := &models.Admin{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Profile:      req.Profile,
		Status:       models.StatusInactive,
	}
	if req.Profile == models.ProfileAdmin && req.CompanyID != nil && *req.CompanyID != "" {
		admin.CompanyID = req.CompanyID
	}

	if err := s.repo.Create(storeCtx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "an admin with this email already exists")
		}
		return nil, unavailable(err, "failed to create admin")
	}

	s.journal.Record(ctx, models.Activity{
		AdminID:     &actor.ID,
		Type:        "creation_admin",
		Category:    models.ActivityCategoryAdmin,
		Module:      "super_admin",
		Reference:   &admin.ID,
		Description: "created " + admin.Profile + " " + admin.Email,
	})
	return admin, nil
}
