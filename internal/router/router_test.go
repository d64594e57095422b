package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/assa-portal-api/internal/handler"
	"github.com/noah-isme/assa-portal-api/internal/models"
	"github.com/noah-isme/assa-portal-api/internal/service"
	"github.com/noah-isme/assa-portal-api/pkg/config"
	"github.com/noah-isme/assa-portal-api/pkg/ratelimit"
)

func newTestRouter(t *testing.T) (*gin.Engine, *service.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := service.NewTokenService(service.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
		Issuer:        "assa-test",
	})
	require.NoError(t, err)

	cfg := &config.Config{
		Env:       "test",
		APIPrefix: "/api/v1",
		Throttle:  config.ThrottleConfig{PerMinute: 600, Burst: 50},
		SuperAdmin: config.SuperAdminConfig{
			AllowedIPs: []string{"10.0.0.0/8"},
		},
	}
	metrics := service.NewMetricsService()
	engine := New(Deps{
		Config:       cfg,
		Logger:       zap.NewNop(),
		Metrics:      metrics,
		Tokens:       tokens,
		Roles:        service.NewRoleResolver(service.DefaultRoleTable()),
		SuperLimiter: ratelimit.NewMemoryLimiter(5, time.Minute),
	}, Handlers{
		Auth:       &handler.AuthHandler{},
		SuperAdmin: &handler.SuperAdminHandler{},
		Admins:     &handler.AdminHandler{},
		Companies:  &handler.CompanyHandler{},
		Invoices:   &handler.InvoiceHandler{},
		Archives:   &handler.ArchiveHandler{},
		Journal:    &handler.JournalHandler{},
		Probes:     handler.NewMetricsHandler(metrics, nil),
	})
	return engine, tokens
}

func bearer(t *testing.T, tokens *service.TokenService, role models.Role) string {
	t.Helper()
	token, _, err := tokens.IssueAccessToken(models.JWTClaims{PrincipalID: "p1", Email: "p1@assa.test", Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func serve(engine *gin.Engine, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "192.0.2.10:4000"
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRouterProbes(t *testing.T) {
	engine, _ := newTestRouter(t)

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/unknown", "").Code)
}

func TestRouterRequiresToken(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := serve(engine, http.MethodGet, "/api/v1/companies", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_MISSING")

	w = serve(engine, http.MethodGet, "/api/v1/companies", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_INVALID")
}

func TestRouterEnforcesRoles(t *testing.T) {
	engine, tokens := newTestRouter(t)

	cases := []struct {
		name   string
		method string
		path   string
		role   models.Role
	}{
		{"superviseur cannot list admins", http.MethodGet, "/api/v1/admins", models.RoleSuperviseur},
		{"superviseur cannot archive companies", http.MethodDelete, "/api/v1/companies/c1", models.RoleSuperviseur},
		{"company cannot read archives", http.MethodGet, "/api/v1/archives", models.RoleCompany},
		{"company cannot use admin logout", http.MethodPost, "/api/v1/admins/logout", models.RoleCompany},
		{"admin cannot read company profile", http.MethodGet, "/api/v1/companies/me", models.RoleAdministrateur},
		{"superviseur cannot edit companies", http.MethodPut, "/api/v1/companies/c1", models.RoleSuperviseur},
		{"admin cannot edit company profile", http.MethodPut, "/api/v1/companies/me", models.RoleAdministrateur},
		{"administrateur cannot create admins", http.MethodPost, "/api/v1/auth/super/create-admin", models.RoleAdministrateur},
		{"company cannot restore invoices", http.MethodPatch, "/api/v1/invoices/i1/restore", models.RoleCompany},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(engine, tc.method, tc.path, bearer(t, tokens, tc.role))
			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}

func TestRouterSuperAdminLoginOutsideAllowList(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := serve(engine, http.MethodPost, "/api/v1/auth/super/login", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
