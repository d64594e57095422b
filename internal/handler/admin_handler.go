package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assa-portal-api/internal/models"
	"github.com/noah-isme/assa-portal-api/pkg/response"
)

type adminDirectory interface {
	List(ctx context.Context, archived bool) ([]models.Admin, error)
}

type archiveLifecycle interface {
	Archive(ctx context.Context, actor *models.Session, kind models.EntityKind, id string) (*models.ArchiveOutcome, error)
	Restore(ctx context.Context, actor *models.Session, kind models.EntityKind, id string) (*models.ArchiveOutcome, error)
}

// AdminHandler serves admin listings and admin archive transitions.
type AdminHandler struct {
	admins   adminDirectory
	archives archiveLifecycle
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(admins adminDirectory, archives archiveLifecycle) *AdminHandler {
	return &AdminHandler{admins: admins, archives: archives}
}

// List godoc
// @Summary List active admins
// @Tags Admins
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admins [get]
func (h *AdminHandler) List(c *gin.Context) {
	h.list(c, false)
}

// ListArchived godoc
// @Summary List archived admins
// @Tags Admins
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admins/archived [get]
func (h *AdminHandler) ListArchived(c *gin.Context) {
	h.list(c, true)
}

func (h *AdminHandler) list(c *gin.Context, archived bool) {
	admins, err := h.admins.List(c.Request.Context(), archived)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, admins, len(admins))
}

// Archive godoc
// @Summary Archive an admin
// @Tags Admins
// @Security BearerAuth
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admins/{id}/archive [patch]
func (h *AdminHandler) Archive(c *gin.Context) {
	transition(c, h.archives.Archive, models.EntityAdmin)
}

// Restore godoc
// @Summary Restore an admin
// @Tags Admins
// @Security BearerAuth
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admins/{id}/restore [patch]
func (h *AdminHandler) Restore(c *gin.Context) {
	transition(c, h.archives.Restore, models.EntityAdmin)
}

type transitionFunc func(ctx context.Context, actor *models.Session, kind models.EntityKind, id string) (*models.ArchiveOutcome, error)

func transition(c *gin.Context, fn transitionFunc, kind models.EntityKind) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	outcome, err := fn(c.Request.Context(), session, kind, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome)
}
