package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/assa-portal-api/internal/models"
)

func TestInvoiceRepositoryListActiveByCompany(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	rows := sqlmock.NewRows([]string{"id", "numero_facture", "id_companie", "company_name", "montant", "objet", "fichier_url", "statut", "archived", "created_at"}).
		AddRow("f1", "F-001", "c1", "Acme", 100.0, "Fret", nil, "Impayée", false, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE f.id_companie = $1 AND f.archived = FALSE")).
		WithArgs("c1").
		WillReturnRows(rows)

	invoices, err := repo.ListActiveByCompany(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "F-001", invoices[0].InvoiceNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositorySetArchivedWritesStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE factures SET archived = $2, statut = $3 WHERE id = $1")).
		WithArgs("f1", true, models.InvoiceStatusArchived).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE factures SET archived = $2 WHERE id = $1")).
		WithArgs("f1", false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetArchived(context.Background(), "f1", true))
	require.NoError(t, repo.SetArchived(context.Background(), "f1", false))
	assert.NoError(t, mock.ExpectationsWereMet())
}
