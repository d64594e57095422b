package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/assa-portal-api/api/swagger"
	"github.com/noah-isme/assa-portal-api/internal/handler"
	"github.com/noah-isme/assa-portal-api/internal/models"
	"github.com/noah-isme/assa-portal-api/internal/repository"
	"github.com/noah-isme/assa-portal-api/internal/router"
	"github.com/noah-isme/assa-portal-api/internal/service"
	"github.com/noah-isme/assa-portal-api/pkg/cache"
	"github.com/noah-isme/assa-portal-api/pkg/config"
	"github.com/noah-isme/assa-portal-api/pkg/database"
	"github.com/noah-isme/assa-portal-api/pkg/jobs"
	"github.com/noah-isme/assa-portal-api/pkg/logger"
	"github.com/noah-isme/assa-portal-api/pkg/notify"
	"github.com/noah-isme/assa-portal-api/pkg/ratelimit"
	"github.com/noah-isme/assa-portal-api/pkg/storage"
)

// @title ASSA Portal API
// @version 1.0.0
// @description Multi-tenant invoicing portal: admin and company authentication, archive lifecycle and activity journal.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	tokens, err := service.NewTokenService(service.TokenConfig{
		AccessSecret:  cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.Expiration,
		RefreshTTL:    cfg.JWT.RefreshExpiration,
		Issuer:        cfg.JWT.Issuer,
	})
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := database.NewPostgres(connectCtx, cfg.Database)
	cancel()
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := database.Migrate(ctx, db)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if len(applied) > 0 {
		logr.Info("migrations applied", zap.Strings("files", applied))
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var superLimiter ratelimit.Limiter = ratelimit.NewMemoryLimiter(cfg.SuperAdmin.RateLimit, cfg.SuperAdmin.RateLimitWindow)
	if redisClient != nil {
		defer redisClient.Close()
		superLimiter = ratelimit.NewRedisLimiter(redisClient, "assa:super_admin", cfg.SuperAdmin.RateLimit, cfg.SuperAdmin.RateLimitWindow)
		logr.Info("super admin rate limit shared through redis")
	}

	var notifier notify.Notifier = notify.NoopNotifier{}
	if cfg.SMTP.Host != "" {
		smtp, err := notify.NewSMTPNotifier(cfg.SMTP, logr)
		if err != nil {
			return err
		}
		notifier = smtp
	} else {
		logr.Warn("SMTP_HOST not set, emails will not be delivered")
	}

	blobs, err := storage.NewLocalStorage(cfg.Storage.Dir, cfg.Storage.PublicBaseURL)
	if err != nil {
		return err
	}

	metrics := service.NewMetricsService()
	validate := validator.New()
	roles := service.NewRoleResolver(service.DefaultRoleTable(),
		service.ElevationSecret{Password: cfg.Elevation.AdminSecret, Role: models.RoleAdministrateur},
		service.ElevationSecret{Password: cfg.Elevation.SuperAdminSecret, Role: models.RoleSuperAdmin},
	)

	adminRepo := repository.NewAdminRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	archiveRepo := repository.NewArchiveRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	journal := service.NewJournalService(activityRepo, logr, metrics, cfg.Timeouts.Store)
	journalQueue := jobs.NewQueue("journal", journal.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Journal.Workers,
		BufferSize: cfg.Journal.BufferSize,
		MaxRetries: 2,
		Logger:     logr,
	})
	journalQueue.Start(context.WithoutCancel(ctx))
	defer journalQueue.Stop()
	journal.UseQueue(journalQueue)

	authSvc := service.NewAuthService(adminRepo, tokens, roles, journal, metrics, validate, logr, service.AuthConfig{StoreTimeout: cfg.Timeouts.Store})
	superSvc := service.NewSuperAdminService(adminRepo, tokens, roles, journal, metrics, validate, logr, service.SuperAdminConfig{
		Secret:       cfg.SuperAdmin.Secret,
		StoreTimeout: cfg.Timeouts.Store,
	})
	companyAuthSvc := service.NewCompanyAuthService(companyRepo, tokens, roles, notifier, journal, metrics, validate, logr, service.CompanyAuthConfig{
		OTPTTL:        cfg.OTP.TTL,
		StoreTimeout:  cfg.Timeouts.Store,
		NotifyTimeout: cfg.Timeouts.Notify,
	})
	companySvc := service.NewCompanyService(companyRepo, adminRepo, blobs, notifier, journal, metrics, validate, logr, service.CompanyConfig{
		DefaultLogoURL:  cfg.Storage.DefaultLogoURL,
		MaxLogoBytes:    cfg.Storage.MaxLogoBytes,
		AllowedLogoMIME: cfg.Storage.AllowedLogoMIME,
		StoreTimeout:    cfg.Timeouts.Store,
		NotifyTimeout:   cfg.Timeouts.Notify,
	})
	adminSvc := service.NewAdminService(adminRepo, logr, cfg.Timeouts.Store)
	archiveSvc := service.NewArchiveService(adminRepo, companyRepo, invoiceRepo, archiveRepo, journal, metrics, validate, logr, cfg.Timeouts.Store)
	exportSvc := service.NewExportService(archiveSvc, logr)

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	engine := router.New(router.Deps{
		Config:       cfg,
		Logger:       logr,
		Metrics:      metrics,
		Tokens:       tokens,
		Roles:        roles,
		Journal:      journal,
		SuperLimiter: superLimiter,
		UploadsDir:   blobs.Dir(),
	}, router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		SuperAdmin: handler.NewSuperAdminHandler(superSvc),
		Admins:     handler.NewAdminHandler(adminSvc, archiveSvc),
		Companies:  handler.NewCompanyHandler(companyAuthSvc, companySvc, archiveSvc, cfg.Storage.MaxLogoBytes),
		Invoices:   handler.NewInvoiceHandler(archiveSvc),
		Archives:   handler.NewArchiveHandler(archiveSvc, exportSvc),
		Journal:    handler.NewJournalHandler(journal),
		Probes:     handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
