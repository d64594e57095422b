package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/assa-portal-api/internal/models"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
	"github.com/noah-isme/assa-portal-api/pkg/export"
)

type archiveLister interface {
	ListRecords(ctx context.Context, filter models.ArchiveFilter) ([]models.ArchiveRecord, error)
}

// ExportFile is a rendered archive report.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders archive records as CSV or PDF.
type ExportService struct {
	archives archiveLister
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(archives archiveLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{archives: archives, logger: logger}
}

var archiveColumns = []string{"Type", "Référence", "Compagnie", "Montant", "Objet", "Fichier", "Date de clôture"}

// ExportArchives renders the records matching filter in the requested format.
func (s *ExportService) ExportArchives(ctx context.Context, filter models.ArchiveFilter, rawFormat string) (*ExportFile, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, invalid(err, "format must be csv or pdf")
	}

	records, err := s.archives.ListRecords(ctx, filter)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Type,
			r.Reference,
			deref(r.CompanyName),
			formatAmount(r.Amount),
			deref(r.Subject),
			deref(r.FileURL),
			r.ClosedAt.Format("2006-01-02 15:04"),
		})
	}

	data, err := export.Render(format, export.Dataset{
		Title:   archiveTitle(filter),
		Columns: archiveColumns,
		Rows:    rows,
	})
	if err != nil {
		if errors.Is(err, export.ErrUnsupportedFormat) {
			return nil, invalid(err, "format must be csv or pdf")
		}
		s.logger.Error("render archive export failed", zap.Error(err))
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to render export")
	}

	return &ExportFile{
		Filename:    archiveFilename(filter, format),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

func archiveTitle(filter models.ArchiveFilter) string {
	if filter.Month > 0 && filter.Year > 0 {
		return fmt.Sprintf("Archives %02d/%d", filter.Month, filter.Year)
	}
	if filter.Year > 0 {
		return fmt.Sprintf("Archives %d", filter.Year)
	}
	return "Archives"
}

func archiveFilename(filter models.ArchiveFilter, format export.Format) string {
	name := "archives"
	if filter.Year > 0 {
		name += "-" + strconv.Itoa(filter.Year)
		if filter.Month > 0 {
			name += fmt.Sprintf("-%02d", filter.Month)
		}
	}
	return name + "." + string(format)
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
