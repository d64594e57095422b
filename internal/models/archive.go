package models

import "time"

// EntityKind names the archivable entity families.
type EntityKind string

const (
	EntityAdmin   EntityKind = "admin"
	EntityCompany EntityKind = "company"
	EntityInvoice EntityKind = "invoice"
)

// Valid reports whether the kind is one of the archivable families.
func (k EntityKind) Valid() bool {
	switch k {
	case EntityAdmin, EntityCompany, EntityInvoice:
		return true
	}
	return false
}

// ArchiveAction distinguishes archive from restore transitions.
type ArchiveAction string

const (
	ActionArchive ArchiveAction = "archive"
	ActionRestore ArchiveAction = "restore"
)

var archiveLabels = map[EntityKind]map[ArchiveAction]string{
	EntityAdmin:   {ActionArchive: "Archivage admin", ActionRestore: "Restauration admin"},
	EntityCompany: {ActionArchive: "Archivage compagnie", ActionRestore: "Restauration compagnie"},
	EntityInvoice: {ActionArchive: "Archivage facture", ActionRestore: "Restauration facture"},
}

// ArchiveLabel returns the type_archive label stored on a record.
func ArchiveLabel(kind EntityKind, action ArchiveAction) string {
	return archiveLabels[kind][action]
}

// ArchiveRecord is an append-only audit row written on every archive or restore.
type ArchiveRecord struct {
	ID          string    `db:"id" json:"id"`
	Type        string    `db:"type_archive" json:"type_archive"`
	Reference   string    `db:"reference" json:"reference"`
	CompanyName *string   `db:"nom_compagnie" json:"nom_compagnie"`
	Amount      *float64  `db:"montant" json:"montant"`
	Subject     *string   `db:"objet" json:"objet"`
	FileURL     *string   `db:"fichier_url" json:"fichier_url"`
	ActorID     *string   `db:"id_admin" json:"id_admin,omitempty"`
	ClosedAt    time.Time `db:"date_cloture" json:"date_cloture"`
}

// ArchiveFilter narrows the record listing to a calendar month.
type ArchiveFilter struct {
	Month int `form:"mois" validate:"omitempty,min=1,max=12"`
	Year  int `form:"annee" validate:"omitempty,min=2000,max=2100"`
}

// ArchiveOutcome summarises one lifecycle call.
type ArchiveOutcome struct {
	Kind    EntityKind      `json:"kind"`
	ID      string          `json:"id"`
	Action  ArchiveAction   `json:"action"`
	Records []ArchiveRecord `json:"records"`
}
