package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/assa-portal-api/internal/models"
)

type adminListRepository interface {
	List(ctx context.Context, archived bool) ([]models.Admin, error)
}

// AdminService serves admin directory listings.
type AdminService struct {
	repo    adminListRepository
	logger  *zap.Logger
	timeout time.Duration
}

// NewAdminService constructs an AdminService.
func NewAdminService(repo adminListRepository, logger *zap.Logger, timeout time.Duration) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{repo: repo, logger: logger, timeout: timeout}
}

// List returns admins, archived or not.
func (s *AdminService) List(ctx context.Context, archived bool) ([]models.Admin, error) {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	admins, err := s.repo.List(storeCtx, archived)
	if err != nil {
		s.logger.Error("list admins failed", zap.Bool("archived", archived), zap.Error(err))
		return nil, unavailable(err, "failed to list admins")
	}
	if admins == nil {
		admins = []models.Admin{}
	}
	return admins, nil
}
