package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assa-portal-api/internal/models"
	"github.com/noah-isme/assa-portal-api/pkg/response"
)

type superAdminService interface {
	Bootstrap(ctx context.Context, req models.SuperAdminLoginRequest) (*models.LoginResponse, error)
	CreateAdmin(ctx context.Context, actor *models.Session, req models.CreateAdminRequest) (*models.Admin, error)
}

// SuperAdminHandler exposes the bootstrap login and admin provisioning.
type SuperAdminHandler struct {
	service superAdminService
}

// NewSuperAdminHandler constructs the handler.
func NewSuperAdminHandler(svc superAdminService) *SuperAdminHandler {
	return &SuperAdminHandler{service: svc}
}

// Login godoc
// @Summary Super admin bootstrap login
// @Description Rate limited per IP, then restricted to the allow-list, then checked against the super secret. Creates the super admin on first use.
// @Tags Super Admin
// @Accept json
// @Produce json
// @Param payload body models.SuperAdminLoginRequest true "Bootstrap payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /auth/super/login [post]
func (h *SuperAdminHandler) Login(c *gin.Context) {
	var req models.SuperAdminLoginRequest
	if !bindJSON(c, &req, "invalid super admin payload") {
		return
	}
	res, err := h.service.Bootstrap(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// CreateAdmin godoc
// @Summary Create an admin or superviseur
// @Tags Super Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body models.CreateAdminRequest true "Admin payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/super/create-admin [post]
func (h *SuperAdminHandler) CreateAdmin(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req models.CreateAdminRequest
	if !bindJSON(c, &req, "invalid admin payload") {
		return
	}
	admin, err := h.service.CreateAdmin(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, admin)
}
