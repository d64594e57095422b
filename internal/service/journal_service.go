package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/assa-portal-api/internal/models"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
	"github.com/noah-isme/assa-portal-api/pkg/jobs"
)

const (
	journalJobType     = "activity"
	defaultRecentLimit = 10
)

type activityRepository interface {
	Create(ctx context.Context, entry *models.Activity) error
	List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, error)
}

type activityEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// activityRecorder is what other services use to journal actions.
type activityRecorder interface {
	Record(ctx context.Context, entry models.Activity)
}

// JournalService writes the best-effort activity journal and serves its listings.
type JournalService struct {
	repo    activityRepository
	queue   activityEnqueuer
	logger  *zap.Logger
	metrics *MetricsService
	timeout time.Duration
}

// NewJournalService constructs the journal. Without a queue, entries are written inline.
func NewJournalService(repo activityRepository, logger *zap.Logger, metrics *MetricsService, timeout time.Duration) *JournalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalService{repo: repo, logger: logger, metrics: metrics, timeout: timeout}
}

// UseQueue routes future entries through the worker queue.
func (s *JournalService) UseQueue(queue activityEnqueuer) {
	s.queue = queue
}

// Record journals an entry. Failures are logged and counted, never returned.
func (s *JournalService) Record(ctx context.Context, entry models.Activity) {
	if s == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}

	if s.queue != nil {
		err := s.queue.Enqueue(jobs.Job{ID: entry.ID, Type: journalJobType, Payload: entry})
		if err == nil {
			return
		}
		s.logger.Warn("journal queue unavailable, writing inline", zap.Error(err))
	}

	if err := s.write(context.WithoutCancel(ctx), entry); err != nil {
		s.dropped(entry, err)
	}
}

// HandleJob is the queue handler for journal entries.
func (s *JournalService) HandleJob(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(models.Activity)
	if !ok {
		s.dropped(models.Activity{ID: job.ID}, fmt.Errorf("unexpected payload %T", job.Payload))
		return nil
	}
	return s.write(ctx, entry)
}

// List returns the journal visible to the session. Company sessions only see their own entries.
func (s *JournalService) List(ctx context.Context, session *models.Session, filter models.ActivityFilter) ([]models.Activity, error) {
	if session == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if session.IsCompany() {
		if session.CompanyID == nil {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "company session has no company link")
		}
		if filter.CompanyID != "" && filter.CompanyID != *session.CompanyID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "companies can only read their own journal")
		}
		filter.CompanyID = *session.CompanyID
		filter.AdminID = ""
	}

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	entries, err := s.repo.List(storeCtx, filter)
	if err != nil {
		s.logger.Error("list journal failed", zap.Error(err))
		return nil, unavailable(err, "failed to load activity journal")
	}
	if entries == nil {
		entries = []models.Activity{}
	}
	return entries, nil
}

// Recent returns the latest entries visible to the session.
func (s *JournalService) Recent(ctx context.Context, session *models.Session, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return s.List(ctx, session, models.ActivityFilter{Limit: limit})
}

func (s *JournalService) write(ctx context.Context, entry models.Activity) error {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	return s.repo.Create(storeCtx, &entry)
}

func (s *JournalService) dropped(entry models.Activity, err error) {
	s.metrics.ObserveJournalDropped()
	s.logger.Warn("activity journal write failed",
		zap.String("entry_id", entry.ID),
		zap.String("type", entry.Type),
		zap.Error(err),
	)
}
