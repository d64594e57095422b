package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/assa-portal-api/internal/models"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
	"github.com/noah-isme/assa-portal-api/pkg/notify"
)

type companyAuthRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Company, error)
	FindByID(ctx context.Context, id string) (*models.Company, error)
	SaveOTPChallenge(ctx context.Context, challenge models.OTPChallenge) error
	CompleteOTP(ctx context.Context, id, otpHash, passwordHash string, ts time.Time) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// CompanyAuthConfig tunes the OTP flow.
type CompanyAuthConfig struct {
	OTPTTL        time.Duration
	StoreTimeout  time.Duration
	NotifyTimeout time.Duration
}

// CompanyAuthService implements first-login OTP onboarding and company login.
type CompanyAuthService struct {
	repo      companyAuthRepository
	tokens    *TokenService
	roles     *RoleResolver
	notifier  notify.Notifier
	journal   activityRecorder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    CompanyAuthConfig
	now       func() time.Time
}

// NewCompanyAuthService constructs the service.
func NewCompanyAuthService(repo companyAuthRepository, tokens *TokenService, roles *RoleResolver, notifier notify.Notifier, journal activityRecorder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config CompanyAuthConfig) *CompanyAuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	if config.OTPTTL <= 0 {
		config.OTPTTL = 10 * time.Minute
	}
	if config.NotifyTimeout <= 0 {
		config.NotifyTimeout = 10 * time.Second
	}
	return &CompanyAuthService{
		repo:      repo,
		tokens:    tokens,
		roles:     roles,
		notifier:  notifier,
		journal:   recorderOrNoop(journal),
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       systemClock,
	}
}

// RequestOTP issues a fresh OTP challenge and tries to email it. Delivery failure
// does not fail the request; the response reports it.
func (s *CompanyAuthService) RequestOTP(ctx context.Context, req models.RequestOTPRequest) (*models.RequestOTPResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "a valid email is required")
	}

	storeCtx, cancel := storeContext(ctx, s.config.StoreTimeout)
	defer cancel()

	company, err := s.repo.FindByEmail(storeCtx, req.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return nil, unavailable(err, "failed to load company")
	}
	if company.Archived {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
	}

	otp, err := generateOTP()
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to generate otp")
	}
	tempPassword, err := generateTempPassword()
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to generate temporary password")
	}
	otpHash, err := hashSecret(otp)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to hash otp")
	}
	tempHash, err := hashSecret(tempPassword)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to hash temporary password")
	}

	expiry := s.now().Add(s.config.OTPTTL)
	if err := s.repo.SaveOTPChallenge(storeCtx, models.OTPChallenge{
		CompanyID:        company.ID,
		OTPHash:          otpHash,
		TempPasswordHash: tempHash,
		Expiry:           expiry,
	}); err != nil {
		return nil, unavailable(err, "failed to store otp")
	}

	delivery := s.deliver(ctx, company, otp, tempPassword)
	s.metrics.ObserveAuthAttempt(flowCompanyOTP, "requested")
	s.journal.Record(ctx, models.Activity{
		CompanyID:   &company.ID,
		Type:        "demande_otp",
		Category:    models.ActivityCategoryAuth,
		Module:      "companies",
		Description: "first-login otp requested",
	})

	message := "otp generated and sent by email"
	if !delivery.Sent {
		message = "otp generated but the email could not be sent"
	}
	return &models.RequestOTPResponse{
		Message:      message,
		EmailSent:    delivery.Sent,
		Notification: delivery,
		ExpiresAt:    expiry,
	}, nil
}

func (s *CompanyAuthService) deliver(ctx context.Context, company *models.Company, otp, tempPassword string) models.DeliveryStatus {
	notifyCtx, cancel := context.WithTimeout(ctx, s.config.NotifyTimeout)
	defer cancel()

	err := s.notifier.Send(notifyCtx, company.Email, notify.TemplateCompanyOTP, map[string]string{
		"company_name":  company.CompanyName,
		"otp":           otp,
		"temp_password": tempPassword,
		"ttl_minutes":   strconv.Itoa(int(s.config.OTPTTL.Minutes())),
	})
	s.metrics.ObserveNotification(string(notify.TemplateCompanyOTP), err == nil)
	if err != nil {
		s.logger.Warn("otp email not delivered", zap.String("company_id", company.ID), zap.Error(err))
		return models.DeliveryStatus{Sent: false, Reason: "email delivery failed"}
	}
	return models.DeliveryStatus{Sent: true}
}

// ValidateOTP consumes the pending challenge, sets the permanent password and
// logs the company in. An OTP is accepted strictly before its expiry instant.
func (s *CompanyAuthService) ValidateOTP(ctx context.Context, req models.ValidateOTPRequest) (*models.LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.OTP = strings.TrimSpace(req.OTP)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "email, a 6 digit otp and new_password (min 6) are required")
	}

	storeCtx, cancel := storeContext(ctx, s.config.StoreTimeout)
	defer cancel()

	company, err := s.repo.FindByEmail(storeCtx, req.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return nil, unavailable(err, "failed to load company")
	}
	if company.Archived {
		return nil, appErrors.ErrArchivedAccount
	}
	if !company.HasPendingOTP() {
		s.metrics.ObserveAuthAttempt(flowCompanyOTP, OutcomeFailure)
		return nil, appErrors.ErrOTPMissing
	}

	now := s.now()
	if !now.Before(*company.OTPExpiry) {
		s.metrics.ObserveAuthAttempt(flowCompanyOTP, OutcomeFailure)
		return nil, appErrors.ErrOTPExpired
	}
	if !secretMatches(*company.OTPHash, req.OTP) {
		s.metrics.ObserveAuthAttempt(flowCompanyOTP, OutcomeFailure)
		return nil, appErrors.ErrOTPInvalid
	}

	hash, err := hashSecret(req.NewPassword)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to hash password")
	}
	if err := s.repo.CompleteOTP(storeCtx, company.ID, *company.OTPHash, hash, now); err != nil {
		if isNotFound(err) {
			return nil, appErrors.ErrOTPMissing
		}
		return nil, unavailable(err, "failed to complete otp validation")
	}
	company.Status = models.StatusActive

	resp, err := issueLoginResponse(s.tokens, s.companyClaims(company), company.Status)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveAuthAttempt(flowCompanyOTP, OutcomeSuccess)
	s.journal.Record(ctx, models.Activity{
		CompanyID:   &company.ID,
		Type:        "validation_otp",
		Category:    models.ActivityCategoryAuth,
		Module:      "companies",
		Description: "first-login otp validated",
	})
	return resp, nil
}

// Login authenticates a company with its permanent password, or with the
// temporary password emailed alongside a pending OTP.
func (s *CompanyAuthService) Login(ctx context.Context, req models.CompanyLoginRequest) (*models.LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "email and password are required")
	}

	storeCtx, cancel := storeContext(ctx, s.config.StoreTimeout)
	defer cancel()

	company, err := s.repo.FindByEmail(storeCtx, req.Email)
	if err != nil {
		if isNotFound(err) {
			s.metrics.ObserveAuthAttempt(flowCompanyLogin, OutcomeFailure)
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, unavailable(err, "authentication temporarily unavailable")
	}
	usedTemp, ok := s.credentialMatches(company, req.Password)
	if !ok {
		s.metrics.ObserveAuthAttempt(flowCompanyLogin, OutcomeFailure)
		return nil, appErrors.ErrInvalidCredentials
	}
	if company.Archived {
		s.metrics.ObserveAuthAttempt(flowCompanyLogin, OutcomeBlocked)
		return nil, appErrors.ErrArchivedAccount
	}

	if err := s.repo.UpdateLastLogin(storeCtx, company.ID, s.now()); err != nil {
		s.logger.Warn("failed to update company last login", zap.Error(err))
	}

	resp, err := issueLoginResponse(s.tokens, s.companyClaims(company), company.Status)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveAuthAttempt(flowCompanyLogin, OutcomeSuccess)
	s.journal.Record(ctx, models.Activity{
		CompanyID:   &company.ID,
		Type:        "connexion",
		Category:    models.ActivityCategoryAuth,
		Module:      "companies",
		Description: loginDescription(usedTemp),
	})
	return resp, nil
}

// credentialMatches accepts the permanent password, or the emailed temporary
// password while its OTP challenge is still pending and unexpired. The first
// result reports whether the temporary password was the one checked.
func (s *CompanyAuthService) credentialMatches(company *models.Company, password string) (bool, bool) {
	if company.HasPassword() && secretMatches(*company.PasswordHash, password) {
		return false, true
	}
	if company.TempPasswordHash == nil || !company.HasPendingOTP() || !s.now().Before(*company.OTPExpiry) {
		return false, false
	}
	return true, secretMatches(*company.TempPasswordHash, password)
}

func loginDescription(usedTemp bool) string {
	if usedTemp {
		return "company login with temporary password"
	}
	return "company login"
}

// ChangePassword updates the company's password after checking the current one.
func (s *CompanyAuthService) ChangePassword(ctx context.Context, session *models.Session, req models.ChangePasswordRequest) error {
	if !session.IsCompany() || session.CompanyID == nil {
		return appErrors.Clone(appErrors.ErrForbidden, "only companies can change their password here")
	}
	if err := validatePasswordChange(s.validator, req); err != nil {
		return err
	}

	storeCtx, cancel := storeContext(ctx, s.config.StoreTimeout)
	defer cancel()

	company, err := s.repo.FindByID(storeCtx, *session.CompanyID)
	if err != nil {
		if isNotFound(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return unavailable(err, "failed to load company")
	}
	if !company.HasPassword() || !secretMatches(*company.PasswordHash, req.CurrentPassword) {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "current password is incorrect")
	}

	hash, err := hashSecret(req.NewPassword)
	if err != nil {
		return appErrors.WrapAs(err, appErrors.ErrInternal, "failed to hash password")
	}
	if err := s.repo.UpdatePassword(storeCtx, company.ID, hash); err != nil {
		return unavailable(err, "failed to update password")
	}

	s.journal.Record(ctx, models.Activity{
		CompanyID:   &company.ID,
		Type:        "modification_mot_de_passe",
		Category:    models.ActivityCategoryAuth,
		Module:      "companies",
		Description: "company password changed",
	})
	return nil
}

func (s *CompanyAuthService) companyClaims(company *models.Company) models.JWTClaims {
	id := company.ID
	return models.JWTClaims{
		PrincipalID: company.ID,
		Email:       company.Email,
		Role:        models.RoleCompany,
		FullName:    company.RepresentativeName,
		CompanyID:   &id,
		CompanyName: company.CompanyName,
		Permissions: s.roles.PermissionsFor(models.RoleCompany),
	}
}
