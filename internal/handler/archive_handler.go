package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assa-portal-api/internal/models"
	"github.com/noah-isme/assa-portal-api/internal/service"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
	"github.com/noah-isme/assa-portal-api/pkg/response"
)

type archiveRecords interface {
	ListRecords(ctx context.Context, filter models.ArchiveFilter) ([]models.ArchiveRecord, error)
	History(ctx context.Context, reference string) ([]models.ArchiveRecord, error)
}

type archiveExporter interface {
	ExportArchives(ctx context.Context, filter models.ArchiveFilter, format string) (*service.ExportFile, error)
}

// ArchiveHandler serves the archive record log.
type ArchiveHandler struct {
	records  archiveRecords
	exporter archiveExporter
}

// NewArchiveHandler constructs the handler.
func NewArchiveHandler(records archiveRecords, exporter archiveExporter) *ArchiveHandler {
	return &ArchiveHandler{records: records, exporter: exporter}
}

func bindArchiveFilter(c *gin.Context) (models.ArchiveFilter, bool) {
	var filter models.ArchiveFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "mois and annee must be numbers"))
		return filter, false
	}
	return filter, true
}

// List godoc
// @Summary List archive records
// @Tags Archives
// @Security BearerAuth
// @Produce json
// @Param mois query int false "Month (1-12)"
// @Param annee query int false "Year"
// @Success 200 {object} response.Envelope
// @Router /archives [get]
func (h *ArchiveHandler) List(c *gin.Context) {
	filter, ok := bindArchiveFilter(c)
	if !ok {
		return
	}
	records, err := h.records.ListRecords(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, records, len(records))
}

// History godoc
// @Summary Archive records for one reference
// @Tags Archives
// @Security BearerAuth
// @Produce json
// @Param reference path string true "Entity reference"
// @Success 200 {object} response.Envelope
// @Router /archives/reference/{reference} [get]
func (h *ArchiveHandler) History(c *gin.Context) {
	records, err := h.records.History(c.Request.Context(), c.Param("reference"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, records, len(records))
}

// Export godoc
// @Summary Export archive records
// @Tags Archives
// @Security BearerAuth
// @Produce text/csv
// @Produce application/pdf
// @Param mois query int false "Month (1-12)"
// @Param annee query int false "Year"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /archives/export [get]
func (h *ArchiveHandler) Export(c *gin.Context) {
	filter, ok := bindArchiveFilter(c)
	if !ok {
		return
	}
	file, err := h.exporter.ExportArchives(c.Request.Context(), filter, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Data)
}
