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

const activityColumns = `id, id_admin, id_companie, type_activite, categorie, module, reference, description, date_activite`

// ActivityRepository persists the activity journal.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create inserts one journal entry.
func (r *ActivityRepository) Create(ctx context.Context, entry *models.Activity) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}
	const query = `INSERT INTO journal_activite (` + activityColumns + `) VALUES (:id, :id_admin, :id_companie, :type_activite, :categorie, :module, :reference, :description, :date_activite)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// List returns entries newest first, filtered by actor when set.
func (r *ActivityRepository) List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + activityColumns + ` FROM journal_activite`)
	args := make([]interface{}, 0, 2)
	conditions := make([]string, 0, 2)

	if filter.AdminID != "" {
		args = append(args, filter.AdminID)
		conditions = append(conditions, fmt.Sprintf("id_admin = $%d", len(args)))
	}
	if filter.CompanyID != "" {
		args = append(args, filter.CompanyID)
		conditions = append(conditions, fmt.Sprintf("id_companie = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY date_activite DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d", limit))

	var entries []models.Activity
	if err := r.db.SelectContext(ctx, &entries, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return entries, nil
}
