package models

import (
	"github.com/kerimovok/go-pkg-database/sql"
)

// Patient represents a patient account able to own medical records. The
// OwnerAddress is the patient's ledger account; it must be set before any of
// the patient's records can be notarized.
type Patient struct {
	sql.BaseModel
	Name         string `json:"name" gorm:"not null"`
	Email        string `json:"email" gorm:"not null;uniqueIndex"`
	OwnerAddress string `json:"ownerAddress" gorm:"uniqueIndex"`
}

// Provider represents a healthcare provider account. The LedgerAddress is the
// address grants are issued against on the ledger side.
type Provider struct {
	sql.BaseModel
	Name          string `json:"name" gorm:"not null"`
	Email         string `json:"email" gorm:"not null;uniqueIndex"`
	Speciality    string `json:"speciality"`
	LedgerAddress string `json:"ledgerAddress" gorm:"uniqueIndex"`
}
