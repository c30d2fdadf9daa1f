package models

import (
	"github.com/google/uuid"
	"github.com/kerimovok/go-pkg-database/sql"
	"gorm.io/datatypes"
)

// Bind status values for the two-phase upload write. A record is persisted as
// pending before the ledger call, flipped to bound once the contract commit
// confirms, and marked orphaned by the reconciliation sweep when it never does.
const (
	BindStatusPending  = "pending"
	BindStatusBound    = "bound"
	BindStatusOrphaned = "orphaned"
)

// MedicalRecord binds a stored file to its content hash, ledger record id and
// owning patient. ContentHash and LedgerRecordID are immutable after creation;
// the only mutable fields are IsActive and the bind status.
type MedicalRecord struct {
	sql.BaseModel
	PatientID             uuid.UUID      `json:"patientId" gorm:"type:uuid;not null;index"`
	ProviderID            uuid.UUID      `json:"providerId" gorm:"type:uuid;not null;index"`
	RecordType            string         `json:"recordType" gorm:"not null"`
	Description           string         `json:"description"`
	FileName              string         `json:"fileName" gorm:"not null"`
	MimeType              string         `json:"mimeType"`
	FileSizeBytes         int64          `json:"fileSizeBytes" gorm:"not null"`
	StoragePointer        string         `json:"storagePointer" gorm:"not null"`
	ContentHash           string         `json:"contentHash" gorm:"not null;index"`
	LedgerRecordID        string         `json:"ledgerRecordId" gorm:"uniqueIndex"`
	LedgerContractAddress string         `json:"ledgerContractAddress"`
	BindStatus            string         `json:"bindStatus" gorm:"not null;default:'pending'"`
	Metadata              datatypes.JSON `json:"metadata,omitempty"`
	IsActive              bool           `json:"isActive" gorm:"not null;default:true"`
}

// PermissionGrant is the application-level record of a patient authorizing a
// provider. At most one grant exists per (patient, provider) pair; revocation
// toggles IsActive rather than deleting the row.
type PermissionGrant struct {
	sql.BaseModel
	PatientID    uuid.UUID `json:"patientId" gorm:"type:uuid;not null;uniqueIndex:idx_grant_patient_provider"`
	ProviderID   uuid.UUID `json:"providerId" gorm:"type:uuid;not null;uniqueIndex:idx_grant_patient_provider"`
	DocumentType string    `json:"documentType" gorm:"not null;default:'All'"`
	Scope        string    `json:"scope" gorm:"not null;default:'Full Record'"`
	IsActive     bool      `json:"isActive" gorm:"not null;default:true"`
}
