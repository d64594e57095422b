package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/assa-portal-api/internal/models"
)

const invoiceSelect = `SELECT f.id, f.numero_facture, f.id_companie, c.company_name, f.montant, f.objet, f.fichier_url, f.statut, f.archived, f.created_at FROM factures f LEFT JOIN companies c ON c.id = f.id_companie`

// InvoiceRepository exposes the invoice fields the archive lifecycle needs.
type InvoiceRepository struct {
	db *sqlx.DB
}

// NewInvoiceRepository creates a new instance of InvoiceRepository.
func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// FindByID returns an invoice with its company name.
func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*models.Invoice, error) {
	query := invoiceSelect + ` WHERE f.id = $1 LIMIT 1`
	var invoice models.Invoice
	if err := r.db.GetContext(ctx, &invoice, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find invoice by id: %w", err)
	}
	return &invoice, nil
}

// ListActiveByCompany returns non-archived invoices of a company.
func (r *InvoiceRepository) ListActiveByCompany(ctx context.Context, companyID string) ([]models.Invoice, error) {
	query := invoiceSelect + ` WHERE f.id_companie = $1 AND f.archived = FALSE ORDER BY f.created_at ASC`
	var invoices []models.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, companyID); err != nil {
		return nil, fmt.Errorf("list invoices by company: %w", err)
	}
	return invoices, nil
}

// SetArchived flips the archived flag. Archiving also sets statut to the archived label.
func (r *InvoiceRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	query := `UPDATE factures SET archived = $2 WHERE id = $1`
	args := []interface{}{id, archived}
	if archived {
		query = `UPDATE factures SET archived = $2, statut = $3 WHERE id = $1`
		args = append(args, models.InvoiceStatusArchived)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set invoice archived: %w", err)
	}
	return expectOneRow(res)
}
