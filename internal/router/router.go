// Package router assembles the gin engine and its route table.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/assa-portal-api/internal/handler"
	"github.com/noah-isme/assa-portal-api/internal/middleware"
	"github.com/noah-isme/assa-portal-api/internal/models"
	"github.com/noah-isme/assa-portal-api/internal/service"
	"github.com/noah-isme/assa-portal-api/pkg/config"
	"github.com/noah-isme/assa-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/assa-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/assa-portal-api/pkg/middleware/requestid"
	"github.com/noah-isme/assa-portal-api/pkg/ratelimit"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Auth       *handler.AuthHandler
	SuperAdmin *handler.SuperAdminHandler
	Admins     *handler.AdminHandler
	Companies  *handler.CompanyHandler
	Invoices   *handler.InvoiceHandler
	Archives   *handler.ArchiveHandler
	Journal    *handler.JournalHandler
	Probes     *handler.MetricsHandler
}

// Deps holds the cross-cutting collaborators the middleware needs.
type Deps struct {
	Config       *config.Config
	Logger       *zap.Logger
	Metrics      *service.MetricsService
	Tokens       *service.TokenService
	Roles        *service.RoleResolver
	Journal      *service.JournalService
	SuperLimiter ratelimit.Limiter
	UploadsDir   string
}

// New builds the engine with every route under the configured prefix.
func New(deps Deps, h Handlers) *gin.Engine {
	cfg := deps.Config
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		deps.Logger.Warn("invalid trusted proxies, ignoring forwarded headers", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.MaxMultipartMemory = cfg.Storage.MaxLogoBytes + 1<<20

	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", h.Probes.Health)
	r.GET("/ready", h.Probes.Ready)
	r.GET("/metrics", h.Probes.Prometheus)
	if deps.UploadsDir != "" {
		r.Static("/uploads", deps.UploadsDir)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "route not found"})
	})

	api := r.Group(cfg.APIPrefix)
	throttle := middleware.NewThrottle(cfg.Throttle.PerMinute, cfg.Throttle.Burst).Handler()

	// Public credential endpoints.
	api.POST("/admins/login", throttle, h.Auth.Login)
	api.POST("/auth/token/refresh", throttle, h.Auth.Refresh)
	api.POST("/companies/first-login-otp", throttle, h.Companies.RequestOTP)
	api.POST("/companies/validate-otp", throttle, h.Companies.ValidateOTP)
	api.POST("/companies/login", throttle, h.Companies.Login)
	api.POST("/auth/super/login",
		middleware.AttemptLimit(deps.SuperLimiter, "super_admin", deps.Metrics, deps.Logger),
		middleware.IPAllowList(cfg.SuperAdmin.AllowedIPs, deps.Metrics, deps.Logger),
		h.SuperAdmin.Login,
	)

	secured := api.Group("")
	secured.Use(middleware.AccessJournal(deps.Journal), middleware.Authenticate(deps.Tokens))

	anyAdmin := middleware.RequireRoles(deps.Roles)
	administrateur := middleware.RequireRoles(deps.Roles, models.RoleAdministrateur)
	anyPrincipal := middleware.RequireRoles(deps.Roles, models.RoleCompany)
	company := middleware.RequireCompany()

	secured.POST("/auth/super/create-admin", middleware.RequireExactRole(models.RoleSuperAdmin), h.SuperAdmin.CreateAdmin)

	admins := secured.Group("/admins")
	admins.POST("/logout", anyAdmin, h.Auth.Logout)
	admins.POST("/update-password", anyAdmin, h.Auth.ChangePassword)
	admins.GET("", administrateur, h.Admins.List)
	admins.GET("/archived", administrateur, h.Admins.ListArchived)
	admins.PATCH("/:id/archive", administrateur, h.Admins.Archive)
	admins.PATCH("/:id/restore", administrateur, h.Admins.Restore)

	companies := secured.Group("/companies")
	companies.GET("/me", company, h.Companies.Me)
	companies.PUT("/me", company, h.Companies.UpdateOwn)
	companies.PUT("/update-password", company, h.Companies.ChangePassword)
	companies.GET("", anyAdmin, h.Companies.List)
	companies.GET("/archived", anyAdmin, h.Companies.ListArchived)
	companies.POST("", administrateur, h.Companies.Create)
	companies.GET("/:id", anyAdmin, h.Companies.Get)
	companies.PUT("/:id", administrateur, h.Companies.Update)
	companies.DELETE("/:id", administrateur, h.Companies.Archive)
	companies.PATCH("/:id/restore", administrateur, h.Companies.Restore)

	invoices := secured.Group("/invoices")
	invoices.DELETE("/:id", anyPrincipal, h.Invoices.Archive)
	invoices.PATCH("/:id/restore", administrateur, h.Invoices.Restore)

	archives := secured.Group("/archives", anyAdmin)
	archives.GET("", h.Archives.List)
	archives.GET("/export", h.Archives.Export)
	archives.GET("/reference/:reference", h.Archives.History)

	journal := secured.Group("/journal")
	journal.GET("", anyPrincipal, h.Journal.List)
	journal.GET("/recent", anyPrincipal, h.Journal.Recent)
	journal.GET("/admin/:id", anyAdmin, h.Journal.ByAdmin)
	journal.GET("/company/:id", anyPrincipal, h.Journal.ByCompany)

	return r
}
