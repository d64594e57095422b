package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/assa-portal-api/internal/models"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
)

const (
	flowAdminLogin   = "admin_login"
	flowRefresh      = "refresh"
	flowSuperAdmin   = "super_admin"
	flowCompanyLogin = "company_login"
	flowCompanyOTP   = "company_otp"
)

type authAdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	StoreTimeout time.Duration
}

// AuthService provides admin authentication use cases.
type AuthService struct {
	repo      authAdminRepository
	tokens    *TokenService
	roles     *RoleResolver
	journal   activityRecorder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authAdminRepository, tokens *TokenService, roles *RoleResolver, journal activityRecorder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{
		repo:      repo,
		tokens:    tokens,
		roles:     roles,
		journal:   recorderOrNoop(journal),
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       systemClock,
	}
}

// Login authenticates an admin. Unknown email, wrong password and the system-only
// sentinel all produce the same error.
func (s *AuthService) Login(ctx context.Context, req models.AdminLoginRequest) (*models.LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "email and password are required")
	}

	storeCtx, cancel := storeContext(ctx, s.config.StoreTimeout)
	defer cancel()

	admin, err := s.repo.FindByEmail(storeCtx, req.Email)
	if err != nil {
		if isNotFound(err) {
			s.metrics.ObserveAuthAttempt(flowAdminLogin, OutcomeFailure)
			return nil, appErrors.ErrInvalidCredentials
		}
		s.logger.Error("admin lookup failed", zap.Error(err))
		return nil, unavailable(err, "authentication temporarily unavailable")
	}

	if !secretMatches(admin.PasswordHash, req.Password) {
		s.metrics.ObserveAuthAttempt(flowAdminLogin, OutcomeFailure)
		return nil, appErrors.ErrInvalidCredentials
	}
	if admin.Archived {
		s.metrics.ObserveAuthAttempt(flowAdminLogin, OutcomeBlocked)
		return nil, appErrors.ErrArchivedAccount
	}

	role := s.roles.ResolveLoginRole(admin.Profile, req.Password)
	if role == models.RoleNone {
		s.logger.Warn("admin has unrecognised profile", zap.String("admin_id", admin.ID), zap.String("profile", admin.Profile))
		return nil, appErrors.Clone(appErrors.ErrForbidden, "account profile is not recognised")
	}

	claims := models.JWTClaims{
		PrincipalID: admin.ID,
		Email:       admin.Email,
		Role:        role,
		FullName:    admin.FullName,
		CompanyID:   admin.CompanyID,
		Permissions: s.roles.PermissionsFor(role),
	}
	resp, err := issueLoginResponse(s.tokens, claims, admin.Status)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateLastLogin(storeCtx, admin.ID, s.now()); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}
	s.metrics.ObserveAuthAttempt(flowAdminLogin, OutcomeSuccess)
	s.journal.Record(ctx, models.Activity{
		AdminID:     &admin.ID,
		Type:        "connexion",
		Category:    models.ActivityCategoryAuth,
		Module:      "admins",
		Description: "admin login as " + string(role),
	})

	return resp, nil
}

// Logout marks the admin inactive. Issued tokens stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, session *models.Session) error {
	if !session.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "only admins can log out here")
	}

	storeCtx, cancel := storeContext(ctx, s.config.StoreTimeout)
	defer cancel()
	if err := s.repo.UpdateStatus(storeCtx, session.ID, models.StatusInactive); err != nil {
		return unavailable(err, "failed to update admin status")
	}

	s.journal.Record(ctx, models.Activity{
		AdminID:     &session.ID,
		Type:        "deconnexion",
		Category:    models.ActivityCategoryAuth,
		Module:      "admins",
		Description: "admin logout",
	})
	return nil
}

// Refresh exchanges a refresh token for an access token with the same claims.
func (s *AuthService) Refresh(ctx context.Context, req models.RefreshTokenRequest) (*models.RefreshTokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "refresh_token is required")
	}
	token, _, err := s.tokens.Refresh(req.RefreshToken)
	if err != nil {
		s.metrics.ObserveAuthAttempt(flowRefresh, OutcomeFailure)
		return nil, err
	}
	s.metrics.ObserveAuthAttempt(flowRefresh, OutcomeSuccess)
	return &models.RefreshTokenResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.tokens.AccessTTL().Seconds()),
		IssuedAt:    s.now(),
	}, nil
}

// ChangePassword updates the admin's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, session *models.Session, req models.ChangePasswordRequest) error {
	if !session.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "only admins can change their password here")
	}
	if err := validatePasswordChange(s.validator, req); err != nil {
		return err
	}

	storeCtx, cancel := storeContext(ctx, s.config.StoreTimeout)
	defer cancel()

	admin, err := s.repo.FindByID(storeCtx, session.ID)
	if err != nil {
		if isNotFound(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return unavailable(err, "failed to load admin")
	}
	if !secretMatches(admin.PasswordHash, req.CurrentPassword) {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "current password is incorrect")
	}

	hash, err := hashSecret(req.NewPassword)
	if err != nil {
		return appErrors.WrapAs(err, appErrors.ErrInternal, "failed to hash password")
	}
	if err := s.repo.UpdatePassword(storeCtx, admin.ID, hash); err != nil {
		return unavailable(err, "failed to update password")
	}

	s.journal.Record(ctx, models.Activity{
		AdminID:     &admin.ID,
		Type:        "modification_mot_de_passe",
		Category:    models.ActivityCategoryAuth,
		Module:      "admins",
		Description: "admin password changed",
	})
	return nil
}

func validatePasswordChange(validate *validator.Validate, req models.ChangePasswordRequest) error {
	if err := validate.Struct(req); err != nil {
		return invalid(err, "current_password, new_password (min 6) and confirm_password are required")
	}
	if req.NewPassword != req.ConfirmPassword {
		return appErrors.Clone(appErrors.ErrValidation, "new_password and confirm_password do not match")
	}
	return nil
}

func issueLoginResponse(tokens *TokenService, claims models.JWTClaims, status string) (*models.LoginResponse, error) {
	access, _, err := tokens.IssueAccessToken(claims)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to create access token")
	}
	refresh, _, err := tokens.IssueRefreshToken(claims)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to create refresh token")
	}
	return &models.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(tokens.AccessTTL().Seconds()),
		IssuedAt:     tokens.now(),
		Principal: models.PrincipalInfo{
			ID:          claims.PrincipalID,
			Email:       claims.Email,
			FullName:    claims.FullName,
			Role:        claims.Role,
			Permissions: claims.Permissions,
			CompanyID:   claims.CompanyID,
			CompanyName: claims.CompanyName,
			Status:      status,
		},
	}, nil
}
