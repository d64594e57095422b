package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/assa-portal-api/internal/models"
)

const archiveColumns = `id, type_archive, reference, nom_compagnie, montant, objet, fichier_url, id_admin, date_cloture`

// ArchiveRepository persists archive records. Rows are only ever inserted.
type ArchiveRepository struct {
	db *sqlx.DB
}

// NewArchiveRepository constructs the repository.
func NewArchiveRepository(db *sqlx.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// Append inserts one archive record.
func (r *ArchiveRepository) Append(ctx context.Context, record *models.ArchiveRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.ClosedAt.IsZero() {
		record.ClosedAt = time.Now().UTC()
	}
	const query = `INSERT INTO archives
	(id, type_archive, reference, nom_compagnie, montant, objet, fichier_url, id_admin, date_cloture)
	VALUES (:id, :type_archive, :reference, :nom_compagnie, :montant, :objet, :fichier_url, :id_admin, :date_cloture)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("append archive record: %w", err)
	}
	return nil
}

// List returns records newest first, optionally narrowed to a month and year.
func (r *ArchiveRepository) List(ctx context.Context, filter models.ArchiveFilter) ([]models.ArchiveRecord, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + archiveColumns + ` FROM archives`)
	args := make([]interface{}, 0, 2)
	conditions := make([]string, 0, 2)

	if filter.Month > 0 {
		args = append(args, filter.Month)
		conditions = append(conditions, fmt.Sprintf("EXTRACT(MONTH FROM date_cloture) = $%d", len(args)))
	}
	if filter.Year > 0 {
		args = append(args, filter.Year)
		conditions = append(conditions, fmt.Sprintf("EXTRACT(YEAR FROM date_cloture) = $%d", len(args)))
	}

	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY date_cloture DESC")

	var records []models.ArchiveRecord
	if err := r.db.SelectContext(ctx, &records, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list archive records: %w", err)
	}
	return records, nil
}

// ListByReference returns every record written for one entity, oldest first.
func (r *ArchiveRepository) ListByReference(ctx context.Context, reference string) ([]models.ArchiveRecord, error) {
	query := `SELECT ` + archiveColumns + ` FROM archives WHERE reference = $1 ORDER BY date_cloture ASC`
	var records []models.ArchiveRecord
	if err := r.db.SelectContext(ctx, &records, query, reference); err != nil {
		return nil, fmt.Errorf("list archive records by reference: %w", err)
	}
	return records, nil
}
