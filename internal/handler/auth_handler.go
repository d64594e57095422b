package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assa-portal-api/internal/models"
	"github.com/noah-isme/assa-portal-api/pkg/response"
)

type adminAuthService interface {
	Login(ctx context.Context, req models.AdminLoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, session *models.Session) error
	Refresh(ctx context.Context, req models.RefreshTokenRequest) (*models.RefreshTokenResponse, error)
	ChangePassword(ctx context.Context, session *models.Session, req models.ChangePasswordRequest) error
}

// AuthHandler wires admin authentication endpoints.
type AuthHandler struct {
	service adminAuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc adminAuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Admin login
// @Description Authenticate an admin by email and password. An elevation secret submitted as password overrides the stored profile.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.AdminLoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admins/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.AdminLoginRequest
	if !bindJSON(c, &req, "invalid login payload") {
		return
	}
	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Logout godoc
// @Summary Admin logout
// @Description Marks the admin inactive. Issued tokens remain valid until expiry.
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admins/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	if err := h.service.Logout(c.Request.Context(), session); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "logged out")
}

// Refresh godoc
// @Summary Refresh access token
// @Description Exchange a refresh token for an access token carrying the same claims
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RefreshTokenRequest true "Refresh payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/token/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshTokenRequest
	if !bindJSON(c, &req, "invalid refresh payload") {
		return
	}
	res, err := h.service.Refresh(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// ChangePassword godoc
// @Summary Change admin password
// @Tags Authentication
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body models.ChangePasswordRequest true "Change password payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admins/update-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req models.ChangePasswordRequest
	if !bindJSON(c, &req, "invalid change password payload") {
		return
	}
	if err := h.service.ChangePassword(c.Request.Context(), session, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "password updated")
}
