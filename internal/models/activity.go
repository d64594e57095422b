package models

import "time"

// Activity categories used by the journal.
const (
	ActivityCategoryAuth    = "auth"
	ActivityCategoryAdmin   = "admin"
	ActivityCategoryCompany = "company"
	ActivityCategoryArchive = "archive"
)

// Activity is one entry of the best-effort activity journal.
type Activity struct {
	ID          string    `db:"id" json:"id"`
	AdminID     *string   `db:"id_admin" json:"id_admin,omitempty"`
	CompanyID   *string   `db:"id_companie" json:"id_companie,omitempty"`
	Type        string    `db:"type_activite" json:"type_activite"`
	Category    string    `db:"categorie" json:"categorie"`
	Module      string    `db:"module" json:"module"`
	Reference   *string   `db:"reference" json:"reference,omitempty"`
	Description string    `db:"description" json:"description"`
	OccurredAt  time.Time `db:"date_activite" json:"date_activite"`
}

// ActivityFilter narrows journal listings.
type ActivityFilter struct {
	AdminID   string
	CompanyID string
	Limit     int
}
