package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assa-portal-api/internal/models"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
	"github.com/noah-isme/assa-portal-api/pkg/response"
)

type companyAuthService interface {
	RequestOTP(ctx context.Context, req models.RequestOTPRequest) (*models.RequestOTPResponse, error)
	ValidateOTP(ctx context.Context, req models.ValidateOTPRequest) (*models.LoginResponse, error)
	Login(ctx context.Context, req models.CompanyLoginRequest) (*models.LoginResponse, error)
	ChangePassword(ctx context.Context, session *models.Session, req models.ChangePasswordRequest) error
}

type companyDirectory interface {
	Create(ctx context.Context, actor *models.Session, req models.CreateCompanyRequest, logo *models.Upload) (*models.Company, error)
	List(ctx context.Context, archived bool) ([]models.Company, error)
	Get(ctx context.Context, id string) (*models.Company, error)
	Me(ctx context.Context, session *models.Session) (*models.Company, error)
	Update(ctx context.Context, actor *models.Session, id string, req models.UpdateCompanyRequest, logo *models.Upload) (*models.Company, error)
	UpdateOwn(ctx context.Context, session *models.Session, req models.UpdateCompanyInfoRequest, logo *models.Upload) (*models.Company, error)
}

// CompanyHandler serves company onboarding, login and the admin-side directory.
type CompanyHandler struct {
	auth      companyAuthService
	companies companyDirectory
	archives  archiveLifecycle
	logoLimit int64
}

// NewCompanyHandler constructs the handler. logoLimit caps how many logo bytes
// are buffered from a multipart upload.
func NewCompanyHandler(auth companyAuthService, companies companyDirectory, archives archiveLifecycle, logoLimit int64) *CompanyHandler {
	if logoLimit <= 0 {
		logoLimit = 5 * 1024 * 1024
	}
	return &CompanyHandler{auth: auth, companies: companies, archives: archives, logoLimit: logoLimit}
}

// RequestOTP godoc
// @Summary Request a first-login OTP
// @Description Generates an OTP and temporary password and tries to email them. email_sent reports delivery.
// @Tags Companies
// @Accept json
// @Produce json
// @Param payload body models.RequestOTPRequest true "Company email"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /companies/first-login-otp [post]
func (h *CompanyHandler) RequestOTP(c *gin.Context) {
	var req models.RequestOTPRequest
	if !bindJSON(c, &req, "invalid otp request") {
		return
	}
	res, err := h.auth.RequestOTP(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// ValidateOTP godoc
// @Summary Validate the OTP and set the permanent password
// @Tags Companies
// @Accept json
// @Produce json
// @Param payload body models.ValidateOTPRequest true "OTP validation"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /companies/validate-otp [post]
func (h *CompanyHandler) ValidateOTP(c *gin.Context) {
	var req models.ValidateOTPRequest
	if !bindJSON(c, &req, "invalid otp validation payload") {
		return
	}
	res, err := h.auth.ValidateOTP(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Login godoc
// @Summary Company login
// @Tags Companies
// @Accept json
// @Produce json
// @Param payload body models.CompanyLoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /companies/login [post]
func (h *CompanyHandler) Login(c *gin.Context) {
	var req models.CompanyLoginRequest
	if !bindJSON(c, &req, "invalid login payload") {
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Me godoc
// @Summary Current company profile
// @Tags Companies
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /companies/me [get]
func (h *CompanyHandler) Me(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	company, err := h.companies.Me(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, company)
}

// ChangePassword godoc
// @Summary Change company password
// @Tags Companies
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body models.ChangePasswordRequest true "Change password payload"
// @Success 200 {object} response.Envelope
// @Router /companies/update-password [put]
func (h *CompanyHandler) ChangePassword(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req models.ChangePasswordRequest
	if !bindJSON(c, &req, "invalid change password payload") {
		return
	}
	if err := h.auth.ChangePassword(c.Request.Context(), session, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "password updated")
}

// List godoc
// @Summary List active companies
// @Tags Companies
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	h.list(c, false)
}

// ListArchived godoc
// @Summary List archived companies
// @Tags Companies
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /companies/archived [get]
func (h *CompanyHandler) ListArchived(c *gin.Context) {
	h.list(c, true)
}

func (h *CompanyHandler) list(c *gin.Context, archived bool) {
	companies, err := h.companies.List(c.Request.Context(), archived)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, companies, len(companies))
}

// Get godoc
// @Summary Get a company
// @Tags Companies
// @Security BearerAuth
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /companies/{id} [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	company, err := h.companies.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, company)
}

// Create godoc
// @Summary Create a company
// @Description Accepts multipart form data with an optional logo file, or JSON without a logo.
// @Tags Companies
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param company_name formData string true "Company name"
// @Param representative_name formData string true "Representative"
// @Param email formData string true "Email"
// @Param phone_number formData string true "Phone"
// @Param full_address formData string true "Address"
// @Param country formData string false "Country"
// @Param city formData string false "City"
// @Param airport_code formData string false "Airport code"
// @Param logo formData file false "Logo image"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /companies [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req models.CreateCompanyRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid company payload"))
		return
	}

	logo, err := h.readLogo(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	company, err := h.companies.Create(c.Request.Context(), session, req, logo)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, company)
}

// Update godoc
// @Summary Edit a company
// @Description Blank fields keep their stored value. A logo file replaces the current logo.
// @Tags Companies
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Company ID"
// @Param company_name formData string false "Company name"
// @Param representative_name formData string false "Representative"
// @Param email formData string false "Email"
// @Param phone_number formData string false "Phone"
// @Param full_address formData string false "Address"
// @Param country formData string false "Country"
// @Param city formData string false "City"
// @Param airport_code formData string false "Airport code"
// @Param logo formData file false "Logo image"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /companies/{id} [put]
func (h *CompanyHandler) Update(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req models.UpdateCompanyRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid company payload"))
		return
	}
	logo, err := h.readLogo(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	company, err := h.companies.Update(c.Request.Context(), session, c.Param("id"), req, logo)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, company)
}

// UpdateOwn godoc
// @Summary Edit the current company profile
// @Tags Companies
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param company_name formData string false "Company name"
// @Param email formData string false "Email"
// @Param phone_number formData string false "Phone"
// @Param full_address formData string false "Address"
// @Param logo formData file false "Logo image"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /companies/me [put]
func (h *CompanyHandler) UpdateOwn(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req models.UpdateCompanyInfoRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid profile payload"))
		return
	}
	logo, err := h.readLogo(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	company, err := h.companies.UpdateOwn(c.Request.Context(), session, req, logo)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, company)
}

func (h *CompanyHandler) readLogo(c *gin.Context) (*models.Upload, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}
	header, err := c.FormFile("logo")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid logo upload")
	}
	if header.Size > h.logoLimit {
		return nil, appErrors.Clone(appErrors.ErrValidation, "logo exceeds the maximum allowed size")
	}
	src, err := header.Open()
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to open logo")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.logoLimit+1))
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to read logo")
	}
	return &models.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// Archive godoc
// @Summary Archive a company with its invoices and admins
// @Description Archives active invoices first, then linked admins, then the company. Each flip writes an archive record.
// @Tags Companies
// @Security BearerAuth
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /companies/{id} [delete]
func (h *CompanyHandler) Archive(c *gin.Context) {
	transition(c, h.archives.Archive, models.EntityCompany)
}

// Restore godoc
// @Summary Restore a company
// @Description Restores the company only. Archived invoices and admins stay archived.
// @Tags Companies
// @Security BearerAuth
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /companies/{id}/restore [patch]
func (h *CompanyHandler) Restore(c *gin.Context) {
	transition(c, h.archives.Restore, models.EntityCompany)
}
