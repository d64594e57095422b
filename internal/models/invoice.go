package models

import "time"

// InvoiceStatusArchived is written to statut when an invoice is archived.
const InvoiceStatusArchived = "Archivée"

// Invoice carries only the fields the archive lifecycle reads.
type Invoice struct {
	ID            string    `db:"id" json:"id"`
	InvoiceNumber string    `db:"numero_facture" json:"numero_facture"`
	CompanyID     string    `db:"id_companie" json:"id_companie"`
	CompanyName   *string   `db:"company_name" json:"company_name,omitempty"`
	Amount        *float64  `db:"montant" json:"montant"`
	Subject       *string   `db:"objet" json:"objet"`
	FileURL       *string   `db:"fichier_url" json:"fichier_url"`
	Status        string    `db:"statut" json:"statut"`
	Archived      bool      `db:"archived" json:"archived"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
