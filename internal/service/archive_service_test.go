package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/assa-portal-api/internal/models"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
)

var archiveClock = time.Date(2025, 3, 15, 16, 30, 0, 0, time.UTC)

type archiveFixture struct {
	svc       *ArchiveService
	admins    *memAdmins
	companies *memCompanies
	invoices  *memInvoices
	records   *memRecords
	journal   *recordingJournal
}

func newArchiveFixture(t *testing.T) *archiveFixture {
	t.Helper()
	f := &archiveFixture{
		admins: newMemAdmins(
			&models.Admin{ID: "a-root", Email: "root@assa.test", Profile: models.ProfileSuperAdmin},
			&models.Admin{ID: "a-linked", Email: "linked@assa.test", Profile: models.ProfileAdmin, CompanyID: ptr("c1")},
		),
		companies: newMemCompanies(&models.Company{ID: "c1", CompanyName: "Air Test", Email: "ops@airtest.test", LogoURL: "/uploads/logos/c1.png"}),
		invoices: newMemInvoices(
			&models.Invoice{ID: "i1", InvoiceNumber: "FAC-001", CompanyID: "c1", Amount: ptr(120.5), Subject: ptr("Handling")},
			&models.Invoice{ID: "i2", InvoiceNumber: "FAC-002", CompanyID: "c1", CompanyName: ptr("Air Test SA")},
			&models.Invoice{ID: "i3", InvoiceNumber: "FAC-003", CompanyID: "c2"},
		),
		records: &memRecords{},
		journal: &recordingJournal{},
	}
	f.svc = NewArchiveService(f.admins, f.companies, f.invoices, f.records, f.journal, nil, nil, nil, time.Second)
	f.svc.now = func() time.Time { return archiveClock }
	return f
}

func TestArchiveCompanyCascadesInOrder(t *testing.T) {
	f := newArchiveFixture(t)
	actor := adminSession("a-root", models.RoleSuperAdmin)

	outcome, err := f.svc.Archive(context.Background(), actor, models.EntityCompany, "c1")
	require.NoError(t, err)
	require.Len(t, outcome.Records, 4)

	want := []struct{ typ, ref string }{
		{"Archivage facture", "FAC-001"},
		{"Archivage facture", "FAC-002"},
		{"Archivage admin", "a-linked"},
		{"Archivage compagnie", "c1"},
	}
	for i, w := range want {
		assert.Equal(t, w.typ, outcome.Records[i].Type, i)
		assert.Equal(t, w.ref, outcome.Records[i].Reference, i)
		assert.Equal(t, archiveClock, outcome.Records[i].ClosedAt)
		require.NotNil(t, outcome.Records[i].ActorID)
		assert.Equal(t, "a-root", *outcome.Records[i].ActorID)
	}
	assert.Equal(t, "Air Test", *outcome.Records[0].CompanyName)
	assert.Equal(t, "Air Test SA", *outcome.Records[1].CompanyName)
	assert.Equal(t, 120.5, *outcome.Records[0].Amount)
	assert.Len(t, f.records.records, 4)

	assert.True(t, f.companies.byID["c1"].Archived)
	assert.True(t, f.invoices.byID["i1"].Archived)
	assert.Equal(t, models.InvoiceStatusArchived, f.invoices.byID["i2"].Status)
	assert.False(t, f.invoices.byID["i3"].Archived)
	assert.True(t, f.admins.byID["a-linked"].Archived)
	assert.False(t, f.admins.byID["a-root"].Archived)

	assert.Equal(t, []string{"Archivage compagnie"}, f.journal.types())
}

func TestArchiveCompanyAgainSkipsArchivedDependents(t *testing.T) {
	f := newArchiveFixture(t)
	actor := adminSession("a-root", models.RoleAdministrateur)

	_, err := f.svc.Archive(context.Background(), actor, models.EntityCompany, "c1")
	require.NoError(t, err)

	outcome, err := f.svc.Archive(context.Background(), actor, models.EntityCompany, "c1")
	require.NoError(t, err)
	require.Len(t, outcome.Records, 1)
	assert.Equal(t, "Archivage compagnie", outcome.Records[0].Type)
	assert.True(t, f.companies.byID["c1"].Archived)
}

func TestRestoreCompanyDoesNotCascade(t *testing.T) {
	f := newArchiveFixture(t)
	actor := adminSession("a-root", models.RoleAdministrateur)

	_, err := f.svc.Archive(context.Background(), actor, models.EntityCompany, "c1")
	require.NoError(t, err)

	outcome, err := f.svc.Restore(context.Background(), actor, models.EntityCompany, "c1")
	require.NoError(t, err)
	require.Len(t, outcome.Records, 1)
	assert.Equal(t, "Restauration compagnie", outcome.Records[0].Type)
	assert.False(t, f.companies.byID["c1"].Archived)
	assert.True(t, f.invoices.byID["i1"].Archived)
	assert.True(t, f.admins.byID["a-linked"].Archived)
}

func TestArchiveCascadeStopsAtFirstFailure(t *testing.T) {
	f := newArchiveFixture(t)
	f.admins.setErr["a-linked"] = errors.New("lock timeout")

	_, err := f.svc.Archive(context.Background(), adminSession("a-root", models.RoleAdministrateur), models.EntityCompany, "c1")
	requireCode(t, err, appErrors.ErrServiceUnavailable)

	assert.True(t, f.invoices.byID["i1"].Archived)
	assert.True(t, f.invoices.byID["i2"].Archived)
	assert.False(t, f.companies.byID["c1"].Archived)
	assert.Len(t, f.records.records, 2)
	assert.Empty(t, f.journal.types())
}

func TestArchiveAuditFailureIsReported(t *testing.T) {
	f := newArchiveFixture(t)
	f.records.appendErr = errors.New("archives table gone")

	_, err := f.svc.Archive(context.Background(), adminSession("a-root", models.RoleAdministrateur), models.EntityAdmin, "a-linked")
	requireCode(t, err, appErrors.ErrArchiveAuditFailed)
	assert.Contains(t, err.Error(), "admin a-linked")
	assert.True(t, f.admins.byID["a-linked"].Archived)
}

func TestArchiveNotFound(t *testing.T) {
	f := newArchiveFixture(t)
	actor := adminSession("a-root", models.RoleAdministrateur)

	for _, kind := range []models.EntityKind{models.EntityAdmin, models.EntityCompany, models.EntityInvoice} {
		_, err := f.svc.Archive(context.Background(), actor, kind, "missing")
		requireCode(t, err, appErrors.ErrNotFound)
	}
	assert.Empty(t, f.records.records)
}

func TestArchiveIsIdempotentPerCall(t *testing.T) {
	f := newArchiveFixture(t)
	actor := adminSession("a-root", models.RoleAdministrateur)

	for i := 0; i < 2; i++ {
		outcome, err := f.svc.Archive(context.Background(), actor, models.EntityInvoice, "i3")
		require.NoError(t, err)
		require.Len(t, outcome.Records, 1)
	}
	assert.True(t, f.invoices.byID["i3"].Archived)
	assert.Len(t, f.records.records, 2)

	_, err := f.svc.Restore(context.Background(), actor, models.EntityInvoice, "i3")
	require.NoError(t, err)
	assert.False(t, f.invoices.byID["i3"].Archived)

	history, err := f.svc.History(context.Background(), "FAC-003")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "Restauration facture", history[2].Type)
}

func TestCompanyMayArchiveOnlyItsOwnInvoices(t *testing.T) {
	f := newArchiveFixture(t)

	outcome, err := f.svc.Archive(context.Background(), companySession("c1"), models.EntityInvoice, "i1")
	require.NoError(t, err)
	assert.Nil(t, outcome.Records[0].ActorID)

	_, err = f.svc.Archive(context.Background(), companySession("c1"), models.EntityInvoice, "i3")
	requireCode(t, err, appErrors.ErrForbidden)

	_, err = f.svc.Archive(context.Background(), companySession("c1"), models.EntityCompany, "c1")
	requireCode(t, err, appErrors.ErrForbidden)
	_, err = f.svc.Archive(context.Background(), companySession("c1"), models.EntityAdmin, "a-linked")
	requireCode(t, err, appErrors.ErrForbidden)
}

func TestArchiveRejectsBadInput(t *testing.T) {
	f := newArchiveFixture(t)

	_, err := f.svc.Archive(context.Background(), nil, models.EntityAdmin, "a-linked")
	requireCode(t, err, appErrors.ErrUnauthorized)
	_, err = f.svc.Archive(context.Background(), adminSession("a-root", models.RoleAdministrateur), "ticket", "x")
	requireCode(t, err, appErrors.ErrValidation)
	_, err = f.svc.Restore(context.Background(), adminSession("a-root", models.RoleAdministrateur), models.EntityAdmin, "")
	requireCode(t, err, appErrors.ErrValidation)
}

func TestListRecords(t *testing.T) {
	f := newArchiveFixture(t)

	records, err := f.svc.ListRecords(context.Background(), models.ArchiveFilter{})
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	_, err = f.svc.ListRecords(context.Background(), models.ArchiveFilter{Month: 13, Year: 2025})
	requireCode(t, err, appErrors.ErrValidation)

	_, err = f.svc.ListRecords(context.Background(), models.ArchiveFilter{Month: 3, Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, models.ArchiveFilter{Month: 3, Year: 2025}, f.records.filters[len(f.records.filters)-1])

	f.records.listErr = errors.New("down")
	_, err = f.svc.ListRecords(context.Background(), models.ArchiveFilter{})
	requireCode(t, err, appErrors.ErrServiceUnavailable)

	_, err = f.svc.History(context.Background(), "")
	requireCode(t, err, appErrors.ErrValidation)
}
