package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/assa-portal-api/internal/models"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
)

type archiveAdminRepository interface {
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	ListActiveByCompany(ctx context.Context, companyID string) ([]models.Admin, error)
	SetArchived(ctx context.Context, id string, archived bool) error
}

type archiveCompanyRepository interface {
	FindByID(ctx context.Context, id string) (*models.Company, error)
	SetArchived(ctx context.Context, id string, archived bool) error
}

type archiveInvoiceRepository interface {
	FindByID(ctx context.Context, id string) (*models.Invoice, error)
	ListActiveByCompany(ctx context.Context, companyID string) ([]models.Invoice, error)
	SetArchived(ctx context.Context, id string, archived bool) error
}

type archiveRecordRepository interface {
	Append(ctx context.Context, record *models.ArchiveRecord) error
	List(ctx context.Context, filter models.ArchiveFilter) ([]models.ArchiveRecord, error)
	ListByReference(ctx context.Context, reference string) ([]models.ArchiveRecord, error)
}

// ArchiveService flips the archived flag on admins, companies and invoices and
// appends one archive record per flip.
type ArchiveService struct {
	admins    archiveAdminRepository
	companies archiveCompanyRepository
	invoices  archiveInvoiceRepository
	records   archiveRecordRepository
	journal   activityRecorder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	timeout   time.Duration
	now       func() time.Time
}

// NewArchiveService constructs the lifecycle service.
func NewArchiveService(admins archiveAdminRepository, companies archiveCompanyRepository, invoices archiveInvoiceRepository, records archiveRecordRepository, journal activityRecorder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, timeout time.Duration) *ArchiveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ArchiveService{
		admins:    admins,
		companies: companies,
		invoices:  invoices,
		records:   records,
		journal:   recorderOrNoop(journal),
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		timeout:   timeout,
		now:       systemClock,
	}
}

// Archive soft-deletes an entity. Archiving a company first archives its active
// invoices, then its active admins, then the company itself. The first failing
// step aborts the rest and earlier flips are kept.
func (s *ArchiveService) Archive(ctx context.Context, actor *models.Session, kind models.EntityKind, id string) (*models.ArchiveOutcome, error) {
	return s.transition(ctx, actor, kind, id, models.ActionArchive)
}

// Restore clears the archived flag. Restoring a company does not restore its dependents.
func (s *ArchiveService) Restore(ctx context.Context, actor *models.Session, kind models.EntityKind, id string) (*models.ArchiveOutcome, error) {
	return s.transition(ctx, actor, kind, id, models.ActionRestore)
}

func (s *ArchiveService) transition(ctx context.Context, actor *models.Session, kind models.EntityKind, id string, action models.ArchiveAction) (*models.ArchiveOutcome, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown entity kind: "+string(kind))
	}
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "id is required")
	}

	outcome := &models.ArchiveOutcome{Kind: kind, ID: id, Action: action, Records: []models.ArchiveRecord{}}
	var err error
	switch kind {
	case models.EntityAdmin:
		err = s.adminTransition(ctx, actor, id, action, outcome)
	case models.EntityInvoice:
		err = s.invoiceTransition(ctx, actor, id, action, outcome)
	case models.EntityCompany:
		err = s.companyTransition(ctx, actor, id, action, outcome)
	}
	if err != nil {
		if len(outcome.Records) > 0 {
			s.logger.Warn("archive sequence aborted after partial progress",
				zap.String("kind", string(kind)),
				zap.String("id", id),
				zap.Int("records", len(outcome.Records)),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.journal.Record(ctx, models.Activity{
		AdminID:     actorAdminID(actor),
		CompanyID:   actor.CompanyID,
		Type:        models.ArchiveLabel(kind, action),
		Category:    models.ActivityCategoryArchive,
		Module:      string(kind),
		Reference:   &id,
		Description: string(action) + " " + string(kind) + " " + id,
	})
	return outcome, nil
}

func (s *ArchiveService) adminTransition(ctx context.Context, actor *models.Session, id string, action models.ArchiveAction, outcome *models.ArchiveOutcome) error {
	if !actor.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "only admins can archive admins")
	}
	storeCtx, cancel := storeContext(ctx, s.timeout)
	admin, err := s.admins.FindByID(storeCtx, id)
	cancel()
	if err != nil {
		return lookupFailure(err, "admin not found")
	}
	return s.flip(ctx, actor, models.EntityAdmin, action, admin.ID, s.admins.SetArchived, models.ArchiveRecord{
		Reference: admin.ID,
		Subject:   stringPtr(admin.Email),
	}, outcome)
}

func (s *ArchiveService) invoiceTransition(ctx context.Context, actor *models.Session, id string, action models.ArchiveAction, outcome *models.ArchiveOutcome) error {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	invoice, err := s.invoices.FindByID(storeCtx, id)
	cancel()
	if err != nil {
		return lookupFailure(err, "invoice not found")
	}
	if actor.IsCompany() && (actor.CompanyID == nil || *actor.CompanyID != invoice.CompanyID) {
		return appErrors.Clone(appErrors.ErrForbidden, "companies can only archive their own invoices")
	}
	return s.archiveInvoice(ctx, actor, invoice, action, outcome)
}

func (s *ArchiveService) archiveInvoice(ctx context.Context, actor *models.Session, invoice *models.Invoice, action models.ArchiveAction, outcome *models.ArchiveOutcome) error {
	return s.flip(ctx, actor, models.EntityInvoice, action, invoice.ID, s.invoices.SetArchived, models.ArchiveRecord{
		Reference:   invoice.InvoiceNumber,
		CompanyName: invoice.CompanyName,
		Amount:      invoice.Amount,
		Subject:     invoice.Subject,
		FileURL:     invoice.FileURL,
	}, outcome)
}

func (s *ArchiveService) companyTransition(ctx context.Context, actor *models.Session, id string, action models.ArchiveAction, outcome *models.ArchiveOutcome) error {
	if !actor.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "only admins can archive companies")
	}
	storeCtx, cancel := storeContext(ctx, s.timeout)
	company, err := s.companies.FindByID(storeCtx, id)
	cancel()
	if err != nil {
		return lookupFailure(err, "company not found")
	}

	if action == models.ActionArchive {
		if err := s.archiveDependents(ctx, actor, company, outcome); err != nil {
			return err
		}
	}

	return s.flip(ctx, actor, models.EntityCompany, action, company.ID, s.companies.SetArchived, models.ArchiveRecord{
		Reference:   company.ID,
		CompanyName: stringPtr(company.CompanyName),
		Subject:     stringPtr(company.Email),
		FileURL:     stringPtr(company.LogoURL),
	}, outcome)
}

func (s *ArchiveService) archiveDependents(ctx context.Context, actor *models.Session, company *models.Company, outcome *models.ArchiveOutcome) error {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	invoices, err := s.invoices.ListActiveByCompany(storeCtx, company.ID)
	cancel()
	if err != nil {
		return unavailable(err, "failed to list company invoices")
	}
	for i := range invoices {
		if invoices[i].CompanyName == nil {
			invoices[i].CompanyName = stringPtr(company.CompanyName)
		}
		if err := s.archiveInvoice(ctx, actor, &invoices[i], models.ActionArchive, outcome); err != nil {
			return err
		}
	}

	storeCtx, cancel = storeContext(ctx, s.timeout)
	admins, err := s.admins.ListActiveByCompany(storeCtx, company.ID)
	cancel()
	if err != nil {
		return unavailable(err, "failed to list company admins")
	}
	for _, admin := range admins {
		if err := s.flip(ctx, actor, models.EntityAdmin, models.ActionArchive, admin.ID, s.admins.SetArchived, models.ArchiveRecord{
			Reference:   admin.ID,
			CompanyName: stringPtr(company.CompanyName),
			Subject:     stringPtr(admin.Email),
		}, outcome); err != nil {
			return err
		}
	}
	return nil
}

type archiveSetter func(ctx context.Context, id string, archived bool) error

// flip sets the flag, then appends the record. A failed append after a
// successful flip is reported as ErrArchiveAuditFailed.
func (s *ArchiveService) flip(ctx context.Context, actor *models.Session, kind models.EntityKind, action models.ArchiveAction, id string, set archiveSetter, record models.ArchiveRecord, outcome *models.ArchiveOutcome) error {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	if err := set(storeCtx, id, action == models.ActionArchive); err != nil {
		return lookupFailure(err, string(kind)+" not found")
	}
	s.metrics.ObserveArchiveTransition(string(kind), string(action))

	record.Type = models.ArchiveLabel(kind, action)
	record.ActorID = actorAdminID(actor)
	record.ClosedAt = s.now()
	if err := s.records.Append(storeCtx, &record); err != nil {
		s.logger.Error("archive record append failed",
			zap.String("kind", string(kind)),
			zap.String("id", id),
			zap.String("action", string(action)),
			zap.Error(err),
		)
		return appErrors.WrapAs(err, appErrors.ErrArchiveAuditFailed,
			appErrors.ErrArchiveAuditFailed.Message+": "+string(kind)+" "+id)
	}
	outcome.Records = append(outcome.Records, record)
	return nil
}

// ListRecords returns archive records, optionally for one month.
func (s *ArchiveService) ListRecords(ctx context.Context, filter models.ArchiveFilter) ([]models.ArchiveRecord, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, invalid(err, "mois must be 1-12 and annee a four digit year")
	}
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	records, err := s.records.List(storeCtx, filter)
	if err != nil {
		return nil, unavailable(err, "failed to list archive records")
	}
	if records == nil {
		records = []models.ArchiveRecord{}
	}
	return records, nil
}

// History returns every record written for one reference in write order.
func (s *ArchiveService) History(ctx context.Context, reference string) ([]models.ArchiveRecord, error) {
	if reference == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reference is required")
	}
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	records, err := s.records.ListByReference(storeCtx, reference)
	if err != nil {
		return nil, unavailable(err, "failed to load archive history")
	}
	if records == nil {
		records = []models.ArchiveRecord{}
	}
	return records, nil
}

func lookupFailure(err error, notFound string) error {
	if isNotFound(err) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return unavailable(err, "credential store unavailable")
}

func actorAdminID(actor *models.Session) *string {
	if actor.IsAdmin() {
		id := actor.ID
		return &id
	}
	return nil
}
