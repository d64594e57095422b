package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/assa-portal-api/internal/models"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
)

type stubArchiveLister struct {
	records []models.ArchiveRecord
	err     error
	filter  models.ArchiveFilter
}

func (s *stubArchiveLister) ListRecords(_ context.Context, filter models.ArchiveFilter) ([]models.ArchiveRecord, error) {
	s.filter = filter
	return s.records, s.err
}

func sampleArchiveRecords() []models.ArchiveRecord {
	return []models.ArchiveRecord{{
		Type:        "Archivage facture",
		Reference:   "FAC-001",
		CompanyName: ptr("Air Test"),
		Amount:      ptr(1250.0),
		Subject:     ptr("Handling mars"),
		ClosedAt:    time.Date(2025, 3, 15, 16, 30, 0, 0, time.UTC),
	}}
}

func TestExportArchivesCSV(t *testing.T) {
	lister := &stubArchiveLister{records: sampleArchiveRecords()}
	svc := NewExportService(lister, nil)

	file, err := svc.ExportArchives(context.Background(), models.ArchiveFilter{Month: 3, Year: 2025}, "")
	require.NoError(t, err)
	assert.Equal(t, "archives-2025-03.csv", file.Filename)
	assert.True(t, strings.HasPrefix(file.ContentType, "text/csv"))
	assert.Equal(t, models.ArchiveFilter{Month: 3, Year: 2025}, lister.filter)

	body := string(bytes.TrimPrefix(file.Data, []byte("\xef\xbb\xbf")))
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Type;Référence;Compagnie;Montant;Objet;Fichier;Date de clôture", strings.TrimSpace(lines[0]))
	assert.Equal(t, "Archivage facture;FAC-001;Air Test;1250.00;Handling mars;;2025-03-15 16:30", strings.TrimSpace(lines[1]))
}

func TestExportArchivesPDF(t *testing.T) {
	svc := NewExportService(&stubArchiveLister{records: sampleArchiveRecords()}, nil)

	file, err := svc.ExportArchives(context.Background(), models.ArchiveFilter{Year: 2025}, "PDF")
	require.NoError(t, err)
	assert.Equal(t, "archives-2025.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestExportArchivesRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(&stubArchiveLister{}, nil)

	_, err := svc.ExportArchives(context.Background(), models.ArchiveFilter{}, "xlsx")
	requireCode(t, err, appErrors.ErrValidation)
}

func TestExportArchivesPropagatesListError(t *testing.T) {
	svc := NewExportService(&stubArchiveLister{err: appErrors.ErrServiceUnavailable}, nil)

	_, err := svc.ExportArchives(context.Background(), models.ArchiveFilter{}, "csv")
	requireCode(t, err, appErrors.ErrServiceUnavailable)
}

func TestArchiveTitle(t *testing.T) {
	assert.Equal(t, "Archives 03/2025", archiveTitle(models.ArchiveFilter{Month: 3, Year: 2025}))
	assert.Equal(t, "Archives 2025", archiveTitle(models.ArchiveFilter{Year: 2025}))
	assert.Equal(t, "Archives", archiveTitle(models.ArchiveFilter{Month: 3}))
}
