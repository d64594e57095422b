package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assa-portal-api/internal/models"
)

// InvoiceHandler exposes invoice archive transitions.
type InvoiceHandler struct {
	archives archiveLifecycle
}

// NewInvoiceHandler constructs the handler.
func NewInvoiceHandler(archives archiveLifecycle) *InvoiceHandler {
	return &InvoiceHandler{archives: archives}
}

// Archive godoc
// @Summary Archive an invoice
// @Description Admins may archive any invoice; a company only its own.
// @Tags Invoices
// @Security BearerAuth
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Archive(c *gin.Context) {
	transition(c, h.archives.Archive, models.EntityInvoice)
}

// Restore godoc
// @Summary Restore an invoice
// @Tags Invoices
// @Security BearerAuth
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /invoices/{id}/restore [patch]
func (h *InvoiceHandler) Restore(c *gin.Context) {
	transition(c, h.archives.Restore, models.EntityInvoice)
}
