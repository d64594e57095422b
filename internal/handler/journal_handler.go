package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assa-portal-api/internal/models"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
	"github.com/noah-isme/assa-portal-api/pkg/response"
)

type journalReader interface {
	List(ctx context.Context, session *models.Session, filter models.ActivityFilter) ([]models.Activity, error)
	Recent(ctx context.Context, session *models.Session, limit int) ([]models.Activity, error)
}

// JournalHandler serves the activity journal.
type JournalHandler struct {
	journal journalReader
}

// NewJournalHandler constructs the handler.
func NewJournalHandler(journal journalReader) *JournalHandler {
	return &JournalHandler{journal: journal}
}

func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive number"))
		return 0, false
	}
	return limit, true
}

// List godoc
// @Summary List journal entries
// @Description Company sessions only see their own entries.
// @Tags Journal
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Envelope
// @Router /journal [get]
func (h *JournalHandler) List(c *gin.Context) {
	h.list(c, models.ActivityFilter{})
}

// Recent godoc
// @Summary Latest journal entries
// @Tags Journal
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Maximum entries (default 10)"
// @Success 200 {object} response.Envelope
// @Router /journal/recent [get]
func (h *JournalHandler) Recent(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	entries, err := h.journal.Recent(c.Request.Context(), session, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, entries, len(entries))
}

// ByAdmin godoc
// @Summary Journal entries for one admin
// @Tags Journal
// @Security BearerAuth
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} response.Envelope
// @Router /journal/admin/{id} [get]
func (h *JournalHandler) ByAdmin(c *gin.Context) {
	h.list(c, models.ActivityFilter{AdminID: c.Param("id")})
}

// ByCompany godoc
// @Summary Journal entries for one company
// @Tags Journal
// @Security BearerAuth
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} response.Envelope
// @Router /journal/company/{id} [get]
func (h *JournalHandler) ByCompany(c *gin.Context) {
	h.list(c, models.ActivityFilter{CompanyID: c.Param("id")})
}

func (h *JournalHandler) list(c *gin.Context, filter models.ActivityFilter) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	filter.Limit = limit
	entries, err := h.journal.List(c.Request.Context(), session, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, entries, len(entries))
}
