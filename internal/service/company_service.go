package service

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/assa-portal-api/internal/models"
	"github.com/noah-isme/assa-portal-api/internal/repository"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
	"github.com/noah-isme/assa-portal-api/pkg/notify"
)

var defaultLogoMIME = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

type companyRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Company, error)
	FindByID(ctx context.Context, id string) (*models.Company, error)
	List(ctx context.Context, archived bool) ([]models.Company, error)
	Create(ctx context.Context, company *models.Company) error
	Update(ctx context.Context, company *models.Company) error
}

type adminCompanyLinker interface {
	LinkCompany(ctx context.Context, id, companyID string) error
}

type blobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(key string) error
}

// CompanyConfig tunes company provisioning.
type CompanyConfig struct {
	DefaultLogoURL  string
	MaxLogoBytes    int64
	AllowedLogoMIME []string
	StoreTimeout    time.Duration
	NotifyTimeout   time.Duration
}

// CompanyService manages the company directory.
type CompanyService struct {
	repo      companyRepository
	admins    adminCompanyLinker
	blobs     blobStore
	notifier  notify.Notifier
	journal   activityRecorder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    CompanyConfig
	allowed   map[string]struct{}
}

// NewCompanyService constructs a CompanyService.
func NewCompanyService(repo companyRepository, admins adminCompanyLinker, blobs blobStore, notifier notify.Notifier, journal activityRecorder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config CompanyConfig) *CompanyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	if config.MaxLogoBytes <= 0 {
		config.MaxLogoBytes = 5 * 1024 * 1024
	}
	if config.NotifyTimeout <= 0 {
		config.NotifyTimeout = 10 * time.Second
	}
	mimes := config.AllowedLogoMIME
	if len(mimes) == 0 {
		mimes = defaultLogoMIME
	}
	allowed := make(map[string]struct{}, len(mimes))
	for _, m := range mimes {
		allowed[strings.ToLower(strings.TrimSpace(m))] = struct{}{}
	}
	return &CompanyService{
		repo:      repo,
		admins:    admins,
		blobs:     blobs,
		notifier:  notifier,
		journal:   recorderOrNoop(journal),
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
		allowed:   allowed,
	}
}

// Create provisions a company without a password. The company activates itself
// through the first-login OTP flow. An Administrateur creator is linked to it.
func (s *CompanyService) Create(ctx context.Context, actor *models.Session, req models.CreateCompanyRequest, logo *models.Upload) (*models.Company, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can create companies")
	}
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "company_name, representative_name, email, phone_number and full_address are required")
	}

	storeCtx, cancel := storeContext(ctx, s.config.StoreTimeout)
	defer cancel()

	email := normalizeEmail(req.Email)
	if _, err := s.repo.FindByEmail(storeCtx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a company with this email already exists")
	} else if !isNotFound(err) {
		return nil, unavailable(err, "failed to check company email")
	}

	logoURL, logoKey, err := s.storeLogo(storeCtx, logo)
	if err != nil {
		return nil, err
	}

	company := &models.Company{
		CompanyName:        strings.TrimSpace(req.CompanyName),
		RepresentativeName: strings.TrimSpace(req.RepresentativeName),
		Email:              email,
		PhoneNumber:        strings.TrimSpace(req.PhoneNumber),
		FullAddress:        strings.TrimSpace(req.FullAddress),
		Country:            strings.TrimSpace(req.Country),
		City:               strings.TrimSpace(req.City),
		AirportCode:        strings.ToUpper(strings.TrimSpace(req.AirportCode)),
		LogoURL:            logoURL,
		Status:             models.StatusInactive,
	}
	if err := s.repo.Create(storeCtx, company); err != nil {
		s.discardLogo(logoKey)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a company with this email already exists")
		}
		return nil, unavailable(err, "failed to create company")
	}

	if actor.Role == models.RoleAdministrateur && actor.CompanyID == nil {
		if err := s.admins.LinkCompany(storeCtx, actor.ID, company.ID); err != nil {
			s.logger.Warn("failed to link admin to company", zap.String("admin_id", actor.ID), zap.String("company_id", company.ID), zap.Error(err))
		}
	}

	s.welcome(ctx, company)
	s.journal.Record(ctx, models.Activity{
		AdminID:     &actor.ID,
		CompanyID:   &company.ID,
		Type:        "creation_compagnie",
		Category:    models.ActivityCategoryCompany,
		Module:      "companies",
		Reference:   &company.ID,
		Description: "created company " + company.CompanyName,
	})
	return company, nil
}

// Update lets an admin edit a company profile. Blank fields are left unchanged
// and a non-empty logo replaces the stored one.
func (s *CompanyService) Update(ctx context.Context, actor *models.Session, id string, req models.UpdateCompanyRequest, logo *models.Upload) (*models.Company, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can edit companies")
	}
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "email must be a valid address")
	}

	company, err := s.edit(ctx, id, req.Email, logo, func(c *models.Company) {
		assignTrimmed(&c.CompanyName, req.CompanyName)
		assignTrimmed(&c.RepresentativeName, req.RepresentativeName)
		assignTrimmed(&c.PhoneNumber, req.PhoneNumber)
		assignTrimmed(&c.FullAddress, req.FullAddress)
		assignTrimmed(&c.Country, req.Country)
		assignTrimmed(&c.City, req.City)
		assignTrimmed(&c.AirportCode, strings.ToUpper(req.AirportCode))
	})
	if err != nil {
		return nil, err
	}

	s.journal.Record(ctx, models.Activity{
		AdminID:     &actor.ID,
		CompanyID:   &company.ID,
		Type:        "modification_compagnie",
		Category:    models.ActivityCategoryCompany,
		Module:      "companies",
		Reference:   &company.ID,
		Description: "updated company " + company.CompanyName,
	})
	return company, nil
}

// UpdateOwn lets a company edit its own contact details and logo.
func (s *CompanyService) UpdateOwn(ctx context.Context, session *models.Session, req models.UpdateCompanyInfoRequest, logo *models.Upload) (*models.Company, error) {
	if !session.IsCompany() || session.CompanyID == nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "company session required")
	}
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "email must be a valid address")
	}

	company, err := s.edit(ctx, *session.CompanyID, req.Email, logo, func(c *models.Company) {
		assignTrimmed(&c.CompanyName, req.CompanyName)
		assignTrimmed(&c.PhoneNumber, req.PhoneNumber)
		assignTrimmed(&c.FullAddress, req.FullAddress)
	})
	if err != nil {
		return nil, err
	}

	s.journal.Record(ctx, models.Activity{
		CompanyID:   &company.ID,
		Type:        "modification_profil",
		Category:    models.ActivityCategoryCompany,
		Module:      "companies",
		Reference:   &company.ID,
		Description: "company updated its profile",
	})
	return company, nil
}

func (s *CompanyService) edit(ctx context.Context, id, email string, logo *models.Upload, apply func(*models.Company)) (*models.Company, error) {
	storeCtx, cancel := storeContext(ctx, s.config.StoreTimeout)
	defer cancel()

	company, err := s.repo.FindByID(storeCtx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return nil, unavailable(err, "failed to load company")
	}
	if company.Archived {
		return nil, appErrors.Clone(appErrors.ErrConflict, "archived companies cannot be edited")
	}

	if email != "" && email != company.Email {
		other, err := s.repo.FindByEmail(storeCtx, email)
		switch {
		case err == nil && other.ID != company.ID:
			return nil, appErrors.Clone(appErrors.ErrConflict, "a company with this email already exists")
		case err != nil && !isNotFound(err):
			return nil, unavailable(err, "failed to check company email")
		}
		company.Email = email
	}
	apply(company)

	var logoKey string
	if logo != nil && len(logo.Data) > 0 {
		url, key, err := s.storeLogo(storeCtx, logo)
		if err != nil {
			return nil, err
		}
		company.LogoURL, logoKey = url, key
	}

	if err := s.repo.Update(storeCtx, company); err != nil {
		s.discardLogo(logoKey)
		switch {
		case isNotFound(err):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
		case errors.Is(err, repository.ErrDuplicate):
			return nil, appErrors.Clone(appErrors.ErrConflict, "a company with this email already exists")
		}
		return nil, unavailable(err, "failed to update company")
	}
	return company, nil
}

func assignTrimmed(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

func (s *CompanyService) storeLogo(ctx context.Context, logo *models.Upload) (string, string, error) {
	if logo == nil || len(logo.Data) == 0 {
		return s.config.DefaultLogoURL, "", nil
	}
	if int64(len(logo.Data)) > s.config.MaxLogoBytes {
		return "", "", appErrors.Clone(appErrors.ErrValidation, "logo exceeds the maximum allowed size")
	}
	detected := http.DetectContentType(logo.Data)
	if idx := strings.Index(detected, ";"); idx >= 0 {
		detected = detected[:idx]
	}
	if _, ok := s.allowed[detected]; !ok {
		return "", "", appErrors.Clone(appErrors.ErrValidation, "logo must be an image ("+detected+" not allowed)")
	}
	if s.blobs == nil {
		return "", "", appErrors.Clone(appErrors.ErrServiceUnavailable, "logo storage is not configured")
	}

	ext := strings.ToLower(filepath.Ext(logo.Filename))
	key := "logos/" + uuid.NewString() + ext
	url, err := s.blobs.Upload(ctx, key, logo.Data, detected)
	if err != nil {
		return "", "", unavailable(err, "failed to store logo")
	}
	return url, key, nil
}

func (s *CompanyService) discardLogo(key string) {
	if key == "" || s.blobs == nil {
		return
	}
	if err := s.blobs.Delete(key); err != nil {
		s.logger.Warn("failed to remove orphaned logo", zap.String("key", key), zap.Error(err))
	}
}

func (s *CompanyService) welcome(ctx context.Context, company *models.Company) {
	notifyCtx, cancel := context.WithTimeout(ctx, s.config.NotifyTimeout)
	defer cancel()
	err := s.notifier.Send(notifyCtx, company.Email, notify.TemplateCompanyCreated, map[string]string{
		"company_name":        company.CompanyName,
		"representative_name": company.RepresentativeName,
	})
	s.metrics.ObserveNotification(string(notify.TemplateCompanyCreated), err == nil)
	if err != nil {
		s.logger.Warn("company welcome email not delivered", zap.String("company_id", company.ID), zap.Error(err))
	}
}

// List returns companies, archived or not.
func (s *CompanyService) List(ctx context.Context, archived bool) ([]models.Company, error) {
	storeCtx, cancel := storeContext(ctx, s.config.StoreTimeout)
	defer cancel()

	companies, err := s.repo.List(storeCtx, archived)
	if err != nil {
		s.logger.Error("list companies failed", zap.Bool("archived", archived), zap.Error(err))
		return nil, unavailable(err, "failed to list companies")
	}
	if companies == nil {
		companies = []models.Company{}
	}
	return companies, nil
}

// Get returns one company by id, archived included.
func (s *CompanyService) Get(ctx context.Context, id string) (*models.Company, error) {
	storeCtx, cancel := storeContext(ctx, s.config.StoreTimeout)
	defer cancel()

	company, err := s.repo.FindByID(storeCtx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return nil, unavailable(err, "failed to load company")
	}
	return company, nil
}

// Me returns the company behind a company session.
func (s *CompanyService) Me(ctx context.Context, session *models.Session) (*models.Company, error) {
	if !session.IsCompany() || session.CompanyID == nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "company session required")
	}
	return s.Get(ctx, *session.CompanyID)
}
